package stubserver

import (
	"strconv"
	"sync"
	"time"
)

// store holds the stub backend's in-memory world: rooms, groups, message
// history, and unread counts. Everything resets on restart.
type store struct {
	mu       sync.Mutex
	rooms    []roomRecord
	groups   []groupRecord
	messages map[string][]messageRecord
	members  map[string][]participantRecord
	unread   map[string]int
	nextID   int64
}

type roomRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type groupRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type messageRecord struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	SenderName string    `json:"sender_name,omitempty"`
	AuthorName string    `json:"author_name,omitempty"`
	SenderID   int64     `json:"sender_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	RoomID     string    `json:"room_id,omitempty"`
	GroupID    int64     `json:"group_id,omitempty"`
}

type participantRecord struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
	Role     string    `json:"role"`
}

// newStore seeds a small plant-community world so the widget has something to
// show on first launch.
func newStore() *store {
	now := time.Now().UTC()
	s := &store{
		rooms: []roomRecord{
			{ID: "general", Name: "General", Description: "Everything green", Type: "public"},
			{ID: "plant-help", Name: "Plant Help Desk", Description: "Ask about ailing plants", Type: "public"},
		},
		groups: []groupRecord{
			{ID: 1, Name: "Succulent Lovers", Description: "Low water, high spirits"},
		},
		messages: make(map[string][]messageRecord),
		members:  make(map[string][]participantRecord),
		unread:   make(map[string]int),
		nextID:   100,
	}
	s.messages["general"] = []messageRecord{
		{ID: 1, Content: "Welcome to Green Buddy chat!", SenderName: "greenbot", SenderID: 1, CreatedAt: now.Add(-time.Hour), RoomID: "general"},
	}
	s.messages["group_1"] = []messageRecord{
		{ID: 2, Content: "My echeveria finally bloomed", AuthorName: "fern", CreatedAt: now.Add(-30 * time.Minute), GroupID: 1},
	}
	s.members["general"] = []participantRecord{
		{ID: 1, Username: "greenbot", JoinedAt: now.Add(-24 * time.Hour), Role: "admin"},
	}
	s.members["group_1"] = []participantRecord{
		{ID: 2, Username: "fern", JoinedAt: now.Add(-48 * time.Hour), Role: "owner"},
	}
	return s
}

func (s *store) listRooms() []roomRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]roomRecord(nil), s.rooms...)
}

func (s *store) listGroups() []groupRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]groupRecord(nil), s.groups...)
}

func (s *store) roomExists(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.ID == roomID {
			return true
		}
	}
	_, ok := s.messages[roomID]
	return ok
}

func (s *store) groupExists(groupID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.ID == groupID {
			return true
		}
	}
	return false
}

// roomMessages returns the room's history newest-first, the order the REST
// API promises.
func (s *store) roomMessages(roomID string) []messageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.messages[roomID]
	out := make([]messageRecord, len(history))
	for i, msg := range history {
		out[len(history)-1-i] = msg
	}
	return out
}

func (s *store) roomParticipants(roomID string) []participantRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]participantRecord(nil), s.members[roomID]...)
}

// appendRoomMessage stores a generic room message and returns the record.
func (s *store) appendRoomMessage(roomID, sender, content string) messageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg := messageRecord{
		ID:         s.nextID,
		Content:    content,
		SenderName: sender,
		CreatedAt:  time.Now().UTC(),
		RoomID:     roomID,
	}
	s.messages[roomID] = append(s.messages[roomID], msg)
	s.unread[roomID]++
	return msg
}

// appendGroupMessage stores a group chat message and returns the record.
func (s *store) appendGroupMessage(groupID int64, author, content string) messageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	roomID := "group_" + strconv.FormatInt(groupID, 10)
	msg := messageRecord{
		ID:         s.nextID,
		Content:    content,
		AuthorName: author,
		CreatedAt:  time.Now().UTC(),
		GroupID:    groupID,
	}
	s.messages[roomID] = append(s.messages[roomID], msg)
	s.unread[roomID]++
	return msg
}

func (s *store) joinRoom(roomID, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.members[roomID] {
		if p.Username == username {
			return
		}
	}
	s.nextID++
	s.members[roomID] = append(s.members[roomID], participantRecord{
		ID:       s.nextID,
		Username: username,
		JoinedAt: time.Now().UTC(),
		Role:     "member",
	})
}

func (s *store) leaveRoom(roomID, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.members[roomID]
	kept := members[:0]
	for _, p := range members {
		if p.Username != username {
			kept = append(kept, p)
		}
	}
	s.members[roomID] = kept
}

func (s *store) unreadCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.unread))
	for roomID, n := range s.unread {
		out[roomID] = n
	}
	return out
}
