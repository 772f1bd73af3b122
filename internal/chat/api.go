package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/educatedpolarbear/green-buddy-chat/internal/platform/timeouts"
)

// maxResponseBytes caps how much of a REST response body is read.
const maxResponseBytes = 4 << 20

// Client is the bearer-authenticated JSON client for the Green Buddy chat and
// groups endpoints. Calls never retry: a single failed attempt surfaces an
// error and leaves the coordinator's prior state in place.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a REST client for the backend at baseURL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeouts.HTTPRequest,
		},
	}
}

// ListRooms fetches the generic rooms managed by the chat service.
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	body, err := c.get(ctx, "/api/chat/rooms")
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	var wire []wireRoom
	if err := decodeArray(body, &wire); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	rooms := make([]Room, 0, len(wire))
	for _, w := range wire {
		rooms = append(rooms, w.toRoom())
	}
	return rooms, nil
}

// ListGroupMemberships fetches the groups the user belongs to.
func (c *Client) ListGroupMemberships(ctx context.Context) ([]Group, error) {
	body, err := c.get(ctx, "/api/groups/memberships")
	if err != nil {
		return nil, fmt.Errorf("list group memberships: %w", err)
	}
	var wire []wireGroup
	if err := decodeArray(body, &wire); err != nil {
		return nil, fmt.Errorf("list group memberships: %w", err)
	}
	groups := make([]Group, 0, len(wire))
	for _, w := range wire {
		groups = append(groups, Group{ID: w.ID, Name: w.Name, Description: w.Description})
	}
	return groups, nil
}

// RoomMessages fetches a generic room's history. The backend returns messages
// newest-first; callers normalize the order.
func (c *Client) RoomMessages(ctx context.Context, roomID string) ([]Message, error) {
	body, err := c.get(ctx, "/api/chat/rooms/"+url.PathEscape(roomID)+"/messages")
	if err != nil {
		return nil, fmt.Errorf("room messages: %w", err)
	}
	messages, err := decodeMessageList(body)
	if err != nil {
		return nil, fmt.Errorf("room messages: %w", err)
	}
	return messages, nil
}

// RoomParticipants fetches a generic room's participant list.
func (c *Client) RoomParticipants(ctx context.Context, roomID string) ([]Participant, error) {
	body, err := c.get(ctx, "/api/chat/rooms/"+url.PathEscape(roomID)+"/participants")
	if err != nil {
		return nil, fmt.Errorf("room participants: %w", err)
	}
	participants, err := decodeParticipantList(body)
	if err != nil {
		return nil, fmt.Errorf("room participants: %w", err)
	}
	return participants, nil
}

// JoinRoom records room membership over REST. The socket join is the
// authoritative subscription step; failures here are logged by the caller and
// never block a room switch.
func (c *Client) JoinRoom(ctx context.Context, roomID string) error {
	if _, err := c.post(ctx, "/api/chat/rooms/"+url.PathEscape(roomID)+"/join", nil); err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	return nil
}

// GroupMessages fetches a group chat's history, newest-first.
func (c *Client) GroupMessages(ctx context.Context, groupID int64) ([]Message, error) {
	body, err := c.get(ctx, "/api/groups/"+strconv.FormatInt(groupID, 10)+"/chat/messages")
	if err != nil {
		return nil, fmt.Errorf("group messages: %w", err)
	}
	var wire []wireMessage
	if err := decodeArray(body, &wire); err != nil {
		return nil, fmt.Errorf("group messages: %w", err)
	}
	return messagesFromWire(wire), nil
}

// SendGroupMessage posts a message to a group chat and returns the created
// message.
func (c *Client) SendGroupMessage(ctx context.Context, groupID int64, content string) (Message, error) {
	body, err := c.post(ctx, "/api/groups/"+strconv.FormatInt(groupID, 10)+"/chat/messages", map[string]string{
		"content": content,
	})
	if err != nil {
		return Message{}, fmt.Errorf("send group message: %w", err)
	}
	var wire wireMessage
	if err := json.Unmarshal(body, &wire); err != nil {
		return Message{}, fmt.Errorf("send group message: %w: %v", ErrDataFormat, err)
	}
	msg := wire.toMessage()
	if msg.RoomID == "" {
		msg.RoomID = GroupRoomID(groupID)
	}
	return msg, nil
}

// GroupMembers fetches a group's member list mapped to participants.
func (c *Client) GroupMembers(ctx context.Context, groupID int64) ([]Participant, error) {
	body, err := c.get(ctx, "/api/groups/"+strconv.FormatInt(groupID, 10)+"/members")
	if err != nil {
		return nil, fmt.Errorf("group members: %w", err)
	}
	var wire []wireParticipant
	if err := decodeArray(body, &wire); err != nil {
		return nil, fmt.Errorf("group members: %w", err)
	}
	participants := make([]Participant, 0, len(wire))
	for _, w := range wire {
		participants = append(participants, w.toParticipant())
	}
	return participants, nil
}

// UnreadCounts fetches the server's per-room unread map.
func (c *Client) UnreadCounts(ctx context.Context) (map[string]int, error) {
	body, err := c.get(ctx, "/api/chat/rooms/unread")
	if err != nil {
		return nil, fmt.Errorf("unread counts: %w", err)
	}
	var envelope struct {
		Success      bool           `json:"success"`
		UnreadCounts map[string]int `json:"unread_counts"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("unread counts: %w: %v", ErrDataFormat, err)
	}
	if envelope.UnreadCounts == nil {
		return nil, fmt.Errorf("unread counts: %w: missing unread_counts", ErrDataFormat)
	}
	return envelope.UnreadCounts, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, payload)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s %s returned status %d", ErrNetwork, method, path, resp.StatusCode)
	}
	return data, nil
}

// Wire shapes. Ids arrive as numbers from some endpoints and strings from
// others; flexID normalizes them.

type wireRoom struct {
	ID          flexID `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	IsMember    bool   `json:"is_member"`
}

func (w wireRoom) toRoom() Room {
	kind := RoomKind(w.Type)
	if kind == "" {
		kind = RoomPublic
	}
	return Room{
		ID:          w.ID.String(),
		Name:        w.Name,
		Description: w.Description,
		Kind:        kind,
		Category:    classifyRoom(kind, w.Name, RoomCategory(w.Category)),
		IsMember:    w.IsMember,
	}
}

type wireGroup struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type wireMessage struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	SenderName string    `json:"sender_name"`
	AuthorName string    `json:"author_name"`
	SenderID   int64     `json:"sender_id"`
	CreatedAt  time.Time `json:"created_at"`
	RoomID     flexID    `json:"room_id"`
	GroupID    int64     `json:"group_id"`
	Read       bool      `json:"read"`
}

func (w wireMessage) toMessage() Message {
	sender := w.SenderName
	if sender == "" {
		sender = w.AuthorName
	}
	roomID := w.RoomID.String()
	if roomID == "" && w.GroupID > 0 {
		roomID = GroupRoomID(w.GroupID)
	}
	return Message{
		ID:         w.ID,
		Content:    w.Content,
		SenderName: sender,
		SenderID:   w.SenderID,
		CreatedAt:  w.CreatedAt,
		RoomID:     roomID,
		Read:       w.Read,
	}
}

func messagesFromWire(wire []wireMessage) []Message {
	messages := make([]Message, 0, len(wire))
	for _, w := range wire {
		messages = append(messages, w.toMessage())
	}
	return messages
}

type wireParticipant struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
	Role     string    `json:"role"`
}

func (w wireParticipant) toParticipant() Participant {
	return Participant{ID: w.ID, Username: w.Username, JoinedAt: w.JoinedAt, Role: w.Role}
}

// decodeArray decodes a bare JSON array, rejecting every other shape.
func decodeArray(data []byte, target any) error {
	if firstJSONByte(data) != '[' {
		return fmt.Errorf("%w: expected array", ErrDataFormat)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrDataFormat, err)
	}
	return nil
}

// decodeMessageList accepts the two documented history shapes, a bare array
// or a {success, messages} envelope, and fails fast on anything else instead
// of cascading through fallback shapes.
func decodeMessageList(data []byte) ([]Message, error) {
	switch firstJSONByte(data) {
	case '[':
		var wire []wireMessage
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataFormat, err)
		}
		return messagesFromWire(wire), nil
	case '{':
		var envelope struct {
			Success  bool          `json:"success"`
			Messages []wireMessage `json:"messages"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataFormat, err)
		}
		if envelope.Messages == nil {
			return nil, fmt.Errorf("%w: missing messages field", ErrDataFormat)
		}
		return messagesFromWire(envelope.Messages), nil
	default:
		return nil, fmt.Errorf("%w: expected array or envelope", ErrDataFormat)
	}
}

// decodeParticipantList accepts a bare array or a {participants} envelope.
func decodeParticipantList(data []byte) ([]Participant, error) {
	switch firstJSONByte(data) {
	case '[':
		var wire []wireParticipant
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataFormat, err)
		}
		participants := make([]Participant, 0, len(wire))
		for _, w := range wire {
			participants = append(participants, w.toParticipant())
		}
		return participants, nil
	case '{':
		var envelope struct {
			Participants []wireParticipant `json:"participants"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataFormat, err)
		}
		if envelope.Participants == nil {
			return nil, fmt.Errorf("%w: missing participants field", ErrDataFormat)
		}
		participants := make([]Participant, 0, len(envelope.Participants))
		for _, w := range envelope.Participants {
			participants = append(participants, w.toParticipant())
		}
		return participants, nil
	default:
		return nil, fmt.Errorf("%w: expected array or envelope", ErrDataFormat)
	}
}

func firstJSONByte(data []byte) byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
