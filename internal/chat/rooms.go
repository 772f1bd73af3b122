// Package chat implements the Green Buddy chat session coordinator: the room
// directory, the single joined room, its message history and participants,
// and the unread-count bookkeeping that survives room switches.
//
// The coordinator mediates between the REST API (room listing, history,
// membership) and the socket transport (live joins and message pushes) so the
// embedding UI only ever sees one logical "current room".
package chat

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// RoomKind is the backend's room type.
type RoomKind string

const (
	RoomPublic  RoomKind = "public"
	RoomPrivate RoomKind = "private"
	RoomGroup   RoomKind = "group"
)

// RoomCategory groups rooms into the widget's navigation sections.
type RoomCategory string

const (
	CategoryGlobal  RoomCategory = "global"
	CategorySupport RoomCategory = "support"
	CategoryGroups  RoomCategory = "groups"
	CategoryPrivate RoomCategory = "private"
)

// groupRoomPrefix marks synthetic rooms derived from group memberships.
const groupRoomPrefix = "group_"

// Room is a chat channel, either a generic room managed by the chat service
// or a synthetic room representing a community group's chat. Rooms are
// fetched, never created, by this package.
type Room struct {
	ID          string
	Name        string
	Description string
	Kind        RoomKind
	Category    RoomCategory
	IsMember    bool
	GroupID     int64 // non-zero only for group rooms
}

// IsGroup reports whether the room is backed by a community group and is
// therefore reached purely over REST, without a socket join.
func (r Room) IsGroup() bool {
	return r.Kind == RoomGroup
}

// Message is a single chat message in arrival order.
type Message struct {
	ID         int64
	Content    string
	SenderName string
	SenderID   int64
	CreatedAt  time.Time
	RoomID     string
	Read       bool
}

// Participant is a member of the currently viewed room.
type Participant struct {
	ID       int64
	Username string
	JoinedAt time.Time
	Role     string
}

// Group is a community group membership as returned by the groups service.
type Group struct {
	ID          int64
	Name        string
	Description string
}

// GroupRoomID derives the synthetic room id for a group's chat.
func GroupRoomID(groupID int64) string {
	return groupRoomPrefix + strconv.FormatInt(groupID, 10)
}

// GroupIDFromRoomID extracts the group id from a synthetic group room id.
func GroupIDFromRoomID(roomID string) (int64, bool) {
	rest, ok := strings.CutPrefix(roomID, groupRoomPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsGroupRoomID reports whether the room id names a synthetic group room.
func IsGroupRoomID(roomID string) bool {
	_, ok := GroupIDFromRoomID(roomID)
	return ok
}

// classifyRoom assigns a navigation category to a generic room.
//
// Backends that return an explicit category win. The name-keyword fallback is
// a compatibility shim for older backends that only send a room type; it is
// not meant to outlive them.
func classifyRoom(kind RoomKind, name string, explicit RoomCategory) RoomCategory {
	switch explicit {
	case CategoryGlobal, CategorySupport, CategoryGroups, CategoryPrivate:
		return explicit
	}
	if kind == RoomPrivate {
		return CategoryPrivate
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, "support") || strings.Contains(lower, "help") || strings.Contains(lower, "off-topic") {
		return CategorySupport
	}
	return CategoryGlobal
}

// roomForGroup synthesizes the widget-side room for a group membership.
func roomForGroup(g Group) Room {
	name := g.Name
	if strings.TrimSpace(name) == "" {
		name = "Unnamed Group"
	}
	return Room{
		ID:          GroupRoomID(g.ID),
		Name:        name,
		Description: g.Description,
		Kind:        RoomGroup,
		Category:    CategoryGroups,
		IsMember:    true,
		GroupID:     g.ID,
	}
}

// mergeRooms concatenates generic and group rooms, dropping duplicate ids.
// The first occurrence wins so the chat service's own view of a room is never
// shadowed by a synthetic one.
func mergeRooms(generic, group []Room) []Room {
	merged := make([]Room, 0, len(generic)+len(group))
	seen := make(map[string]struct{}, len(generic)+len(group))
	for _, r := range append(append([]Room{}, generic...), group...) {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
	}
	return merged
}

// flexID decodes a JSON id that some endpoints send as a number and others as
// a string, normalizing to the string form used throughout the widget.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) String() string { return string(f) }
