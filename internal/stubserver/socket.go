package stubserver

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/educatedpolarbear/green-buddy-chat/internal/auth"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3
	maxMessageRunes        = 2000
)

// wsFrame is the socket envelope. Emits that expect acknowledgment carry a
// request id; the ack echoes it back with an optional error.
type wsFrame struct {
	Event     string          `json:"event"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type wsAck struct {
	Error string `json:"error,omitempty"`
}

type wsRoomPayload struct {
	RoomID string `json:"room_id"`
}

type wsSendPayload struct {
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
}

type wsMembershipPayload struct {
	Username string `json:"username"`
	RoomID   string `json:"room_id"`
}

// wsPeer serializes frame writes for one connection.
type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(encoder *json.Encoder) *wsPeer {
	return &wsPeer{encoder: encoder}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// wsSession tracks one connection's identity and joined room.
type wsSession struct {
	mu       sync.Mutex
	username string
	roomID   string
	peer     *wsPeer
}

func newWSSession(username string, peer *wsPeer) *wsSession {
	return &wsSession{username: username, peer: peer}
}

func (s *wsSession) setRoom(roomID string) string {
	s.mu.Lock()
	previous := s.roomID
	s.roomID = roomID
	s.mu.Unlock()
	return previous
}

func (s *wsSession) currentRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

// roomHub tracks which peers subscribe to which rooms and fans out pushes.
type roomHub struct {
	mu    sync.Mutex
	rooms map[string]map[*wsPeer]struct{}
	all   map[*wsPeer]struct{}
}

func newRoomHub() *roomHub {
	return &roomHub{
		rooms: make(map[string]map[*wsPeer]struct{}),
		all:   make(map[*wsPeer]struct{}),
	}
}

func (h *roomHub) register(peer *wsPeer) {
	h.mu.Lock()
	h.all[peer] = struct{}{}
	h.mu.Unlock()
}

func (h *roomHub) unregister(peer *wsPeer) {
	h.mu.Lock()
	delete(h.all, peer)
	for _, peers := range h.rooms {
		delete(peers, peer)
	}
	h.mu.Unlock()
}

func (h *roomHub) join(roomID string, peer *wsPeer) {
	h.mu.Lock()
	peers, ok := h.rooms[roomID]
	if !ok {
		peers = make(map[*wsPeer]struct{})
		h.rooms[roomID] = peers
	}
	peers[peer] = struct{}{}
	h.mu.Unlock()
}

func (h *roomHub) leave(roomID string, peer *wsPeer) {
	h.mu.Lock()
	delete(h.rooms[roomID], peer)
	h.mu.Unlock()
}

// broadcastRoom sends the frame to every subscriber of the room.
func (h *roomHub) broadcastRoom(roomID string, frame wsFrame) {
	h.mu.Lock()
	peers := make([]*wsPeer, 0, len(h.rooms[roomID]))
	for peer := range h.rooms[roomID] {
		peers = append(peers, peer)
	}
	h.mu.Unlock()
	for _, peer := range peers {
		if err := peer.writeFrame(frame); err != nil {
			log.Printf("stub: broadcast to room %s: %v", roomID, err)
		}
	}
}

// broadcastAll sends the frame to every connected peer. Group chat events are
// not scoped to a socket room because group membership lives in the REST
// layer.
func (h *roomHub) broadcastAll(frame wsFrame) {
	h.mu.Lock()
	peers := make([]*wsPeer, 0, len(h.all))
	for peer := range h.all {
		peers = append(peers, peer)
	}
	h.mu.Unlock()
	for _, peer := range peers {
		if err := peer.writeFrame(frame); err != nil {
			log.Printf("stub: broadcast: %v", err)
		}
	}
}

// handleWSConn runs one connection's frame loop until the peer disconnects,
// floods, or sends too much garbage.
func handleWSConn(conn *websocket.Conn, store *store, hub *roomHub) {
	defer func() {
		_ = conn.Close()
	}()

	username := "guest"
	if request := conn.Request(); request != nil {
		token := request.URL.Query().Get("token")
		if identity, err := auth.PeekIdentity(token); err == nil && identity.Username != "" {
			username = identity.Username
		}
	}

	peer := newWSPeer(json.NewEncoder(conn))
	session := newWSSession(username, peer)
	hub.register(peer)
	defer func() {
		if roomID := session.currentRoom(); roomID != "" {
			leaveSocketRoom(store, hub, session, roomID)
		}
		hub.unregister(peer)
	}()

	decoder := json.NewDecoder(conn)
	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeAck(peer, frame.RequestID, "invalid frame")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeAck(peer, frame.RequestID, "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeAck(peer, frame.RequestID, "rate limit exceeded")
			return
		}

		switch frame.Event {
		case "join_chat":
			handleJoinFrame(store, hub, session, frame)
		case "leave_chat":
			handleLeaveFrame(store, hub, session, frame)
		case "send_message":
			handleSendFrame(store, hub, session, frame)
		default:
			_ = writeAck(peer, frame.RequestID, "unsupported event")
		}
	}
}

func handleJoinFrame(store *store, hub *roomHub, session *wsSession, frame wsFrame) {
	var payload wsRoomPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeAck(session.peer, frame.RequestID, "invalid join payload")
		return
	}
	roomID := strings.TrimSpace(payload.RoomID)
	if roomID == "" {
		_ = writeAck(session.peer, frame.RequestID, "room_id is required")
		return
	}
	if !store.roomExists(roomID) {
		_ = writeAck(session.peer, frame.RequestID, "room not found")
		return
	}

	previous := session.setRoom(roomID)
	if previous != "" && previous != roomID {
		leaveSocketRoom(store, hub, session, previous)
	}
	hub.join(roomID, session.peer)
	store.joinRoom(roomID, session.username)
	_ = writeAck(session.peer, frame.RequestID, "")

	hub.broadcastRoom(roomID, wsFrame{
		Event:   "user_joined",
		Payload: mustJSON(wsMembershipPayload{Username: session.username, RoomID: roomID}),
	})
}

func handleLeaveFrame(store *store, hub *roomHub, session *wsSession, frame wsFrame) {
	var payload wsRoomPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeAck(session.peer, frame.RequestID, "invalid leave payload")
		return
	}
	roomID := strings.TrimSpace(payload.RoomID)
	if roomID == "" {
		_ = writeAck(session.peer, frame.RequestID, "room_id is required")
		return
	}

	if session.currentRoom() == roomID {
		session.setRoom("")
	}
	leaveSocketRoom(store, hub, session, roomID)
	_ = writeAck(session.peer, frame.RequestID, "")
}

func leaveSocketRoom(store *store, hub *roomHub, session *wsSession, roomID string) {
	hub.leave(roomID, session.peer)
	store.leaveRoom(roomID, session.username)
	hub.broadcastRoom(roomID, wsFrame{
		Event:   "user_left",
		Payload: mustJSON(wsMembershipPayload{Username: session.username, RoomID: roomID}),
	})
}

func handleSendFrame(store *store, hub *roomHub, session *wsSession, frame wsFrame) {
	var payload wsSendPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeAck(session.peer, frame.RequestID, "invalid send payload")
		return
	}
	roomID := strings.TrimSpace(payload.RoomID)
	content := strings.TrimSpace(payload.Content)
	if roomID == "" || content == "" {
		_ = writeAck(session.peer, frame.RequestID, "room_id and content are required")
		return
	}
	if len([]rune(content)) > maxMessageRunes {
		_ = writeAck(session.peer, frame.RequestID, "message too long")
		return
	}
	if session.currentRoom() != roomID {
		_ = writeAck(session.peer, frame.RequestID, "must join room before sending")
		return
	}

	msg := store.appendRoomMessage(roomID, session.username, content)
	_ = writeAck(session.peer, frame.RequestID, "")

	// The sender receives the broadcast too; clients append from the push,
	// not the ack.
	hub.broadcastRoom(roomID, wsFrame{
		Event:   "new_message",
		Payload: mustJSON(msg),
	})
}

func writeAck(peer *wsPeer, requestID, errMessage string) error {
	if requestID == "" && errMessage == "" {
		return nil
	}
	return peer.writeFrame(wsFrame{
		Event:     "ack",
		RequestID: requestID,
		Payload:   mustJSON(wsAck{Error: errMessage}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("stub: marshal frame payload: %v", err)
		return nil
	}
	return b
}
