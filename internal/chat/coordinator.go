package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/educatedpolarbear/green-buddy-chat/internal/platform/timeouts"
	"github.com/educatedpolarbear/green-buddy-chat/internal/socket"
)

// View is the widget's navigation position.
type View int

const (
	ViewMenu View = iota
	ViewRooms
	ViewChat
)

// Socket is the live connection the coordinator drives. It is injected so the
// transport stays an explicitly owned resource rather than ambient state.
type Socket interface {
	Connected() bool
	WaitConnected(ctx context.Context) error
	Emit(ctx context.Context, event string, payload any) error
	EmitNoAck(event string, payload any) error
	On(event string, handler socket.Handler)
}

// Config tunes coordinator timing. Zero values take the shared defaults; tests
// shrink them.
type Config struct {
	Token              string
	ConnectWait        time.Duration
	JoinAckTimeout     time.Duration
	SendAckTimeout     time.Duration
	LeaveGrace         time.Duration
	RefreshInterval    time.Duration
	UnreadPollInterval time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.ConnectWait <= 0 {
		cfg.ConnectWait = timeouts.SocketConnect
	}
	if cfg.JoinAckTimeout <= 0 {
		cfg.JoinAckTimeout = timeouts.JoinAck
	}
	if cfg.SendAckTimeout <= 0 {
		cfg.SendAckTimeout = timeouts.SendAck
	}
	if cfg.LeaveGrace <= 0 {
		cfg.LeaveGrace = timeouts.LeaveGrace
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = timeouts.RoomsRefresh
	}
	if cfg.UnreadPollInterval <= 0 {
		cfg.UnreadPollInterval = timeouts.UnreadPoll
	}
	return cfg
}

// Coordinator presents one logical current chat room over two structurally
// different backends: generic rooms with socket join/leave plus live push,
// and group rooms that are purely REST-polled.
//
// The socket is the source of truth for "is the user subscribed to this
// room's live feed"; REST hydrates the initial view. A join must be
// acknowledged before live events are trusted to belong to this session.
type Coordinator struct {
	api    *Client
	socket Socket
	cfg    Config

	unread  *UnreadTracker
	refresh *refreshLimiter

	mu            sync.Mutex
	rooms         []Room
	roomsByID     map[string]Room
	currentRoomID string
	joinedRoomID  string // last socket-joined generic room; outlives view changes
	view          View
	open          bool
	minimized     bool
	messages      []Message
	participants  []Participant
	activeGroupID int64 // group whose dedicated page the host app is showing
	lastErr       string
	switchSeq     uint64
	notify        func()
}

// NewCoordinator builds a coordinator around the REST client and socket.
func NewCoordinator(api *Client, sock Socket, cfg Config) *Coordinator {
	cfg = cfg.withDefaults()
	return &Coordinator{
		api:       api,
		socket:    sock,
		cfg:       cfg,
		unread:    NewUnreadTracker(),
		refresh:   newRefreshLimiter(cfg.RefreshInterval),
		roomsByID: make(map[string]Room),
	}
}

// Bind registers the coordinator's push handlers on the socket. Call once
// before the widget starts interacting.
func (c *Coordinator) Bind() {
	c.socket.On(socket.EventNewMessage, c.handleNewMessage)
	c.socket.On(socket.EventGroupChatMessage, c.handleGroupMessage)
	c.socket.On(socket.EventGroupChatMessageDeleted, c.handleGroupMessageDeleted)
	c.socket.On(socket.EventUserJoined, c.handleMembershipEvent)
	c.socket.On(socket.EventUserLeft, c.handleMembershipEvent)
	c.socket.On(socket.EventError, c.handleSocketError)
	c.socket.On(socket.EventConnect, c.handleConnect)
	c.socket.On(socket.EventDisconnect, c.handleDisconnect)
}

// SetNotify registers a callback fired after state changes, outside the
// coordinator lock. The TUI uses it to trigger re-renders.
func (c *Coordinator) SetNotify(notify func()) {
	c.mu.Lock()
	c.notify = notify
	c.mu.Unlock()
}

func (c *Coordinator) notifyChanged() {
	c.mu.Lock()
	notify := c.notify
	c.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// RefreshRooms merges the chat service's rooms with the user's group
// memberships. Calls within the refresh interval of the previous attempt are
// dropped. Partial failure keeps whichever side succeeded.
func (c *Coordinator) RefreshRooms(ctx context.Context) error {
	if !c.refresh.Allow() {
		return nil
	}

	generic, genericErr := c.api.ListRooms(ctx)
	groups, groupsErr := c.api.ListGroupMemberships(ctx)

	if genericErr != nil && groupsErr != nil {
		return c.fail(fmt.Errorf("refresh rooms: %w", errors.Join(genericErr, groupsErr)))
	}

	groupRooms := make([]Room, 0, len(groups))
	for _, g := range groups {
		groupRooms = append(groupRooms, roomForGroup(g))
	}
	merged := mergeRooms(generic, groupRooms)

	c.mu.Lock()
	c.rooms = merged
	c.roomsByID = make(map[string]Room, len(merged))
	for _, r := range merged {
		c.roomsByID[r.ID] = r
	}
	c.mu.Unlock()
	c.notifyChanged()

	if genericErr != nil {
		return c.fail(fmt.Errorf("refresh rooms: %w", genericErr))
	}
	if groupsErr != nil {
		return c.fail(fmt.Errorf("refresh rooms: %w", groupsErr))
	}
	return nil
}

// SelectRoom switches the current room. Generic rooms require an acknowledged
// socket join before any state changes; group rooms skip the socket entirely.
// A switch superseded by a newer one discards its late results silently.
func (c *Coordinator) SelectRoom(ctx context.Context, roomID string) error {
	c.mu.Lock()
	room, ok := c.roomsByID[roomID]
	if !ok {
		c.mu.Unlock()
		return c.fail(fmt.Errorf("%w: %s", ErrInvalidRoom, roomID))
	}
	c.switchSeq++
	seq := c.switchSeq
	previousJoined := c.joinedRoomID
	c.lastErr = ""
	c.mu.Unlock()

	if room.IsGroup() {
		return c.selectGroupRoom(ctx, room, seq)
	}
	return c.selectGenericRoom(ctx, room, previousJoined, seq)
}

func (c *Coordinator) selectGroupRoom(ctx context.Context, room Room, seq uint64) error {
	var (
		messages     []Message
		participants []Participant
		msgErr       error
		memberErr    error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		messages, msgErr = c.api.GroupMessages(gctx, room.GroupID)
		return nil
	})
	g.Go(func() error {
		participants, memberErr = c.api.GroupMembers(gctx, room.GroupID)
		return nil
	})
	_ = g.Wait()

	c.mu.Lock()
	if c.switchSeq != seq {
		c.mu.Unlock()
		return nil
	}
	// The switch happens even when one fetch fails; the failed piece keeps
	// its prior value and only the error text surfaces.
	c.currentRoomID = room.ID
	c.view = ViewChat
	if msgErr == nil {
		c.messages = reverseMessages(messages)
	}
	if memberErr == nil {
		c.participants = participants
	}
	c.mu.Unlock()
	c.unread.Reset(room.ID)
	c.notifyChanged()

	if msgErr != nil || memberErr != nil {
		return c.fail(fmt.Errorf("select group room: %w", errors.Join(msgErr, memberErr)))
	}
	return nil
}

func (c *Coordinator) selectGenericRoom(ctx context.Context, room Room, previousJoined string, seq uint64) error {
	if !c.socket.Connected() {
		waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectWait)
		err := c.socket.WaitConnected(waitCtx)
		cancel()
		if err != nil {
			return c.fail(fmt.Errorf("%w: %v", ErrConnectionTimeout, err))
		}
	}

	if previousJoined != "" && previousJoined != room.ID {
		c.leaveRoom(previousJoined)
	}

	// REST join is best-effort bookkeeping; the socket join below is the
	// authoritative subscription.
	if err := c.api.JoinRoom(ctx, room.ID); err != nil {
		log.Printf("chat: rest join for room %s failed: %v", room.ID, err)
	}

	joinCtx, cancel := context.WithTimeout(ctx, c.cfg.JoinAckTimeout)
	err := c.socket.Emit(joinCtx, socket.EventJoinChat, roomEventPayload{RoomID: room.ID, Token: c.cfg.Token})
	cancel()
	if err != nil {
		return c.fail(mapSocketErr("join room", err, ErrJoinTimeout))
	}

	c.mu.Lock()
	if c.switchSeq != seq {
		c.mu.Unlock()
		// A newer switch won while the ack was in flight; undo the stray
		// server-side subscription and drop the result.
		c.leaveRoom(room.ID)
		return nil
	}
	c.joinedRoomID = room.ID
	c.mu.Unlock()

	var (
		messages     []Message
		participants []Participant
		msgErr       error
		partErr      error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		messages, msgErr = c.api.RoomMessages(gctx, room.ID)
		return nil
	})
	g.Go(func() error {
		participants, partErr = c.api.RoomParticipants(gctx, room.ID)
		return nil
	})
	_ = g.Wait()

	c.mu.Lock()
	if c.switchSeq != seq {
		c.mu.Unlock()
		return nil
	}
	c.currentRoomID = room.ID
	c.view = ViewChat
	if msgErr == nil {
		c.messages = reverseMessages(messages)
	}
	if partErr == nil {
		c.participants = participants
	}
	c.mu.Unlock()
	c.unread.Reset(room.ID)
	c.notifyChanged()

	if msgErr != nil || partErr != nil {
		return c.fail(fmt.Errorf("select room: %w", errors.Join(msgErr, partErr)))
	}
	return nil
}

// leaveRoom emits a best-effort leave with a short grace period. A missing
// acknowledgment never blocks the caller. The leave is skipped when the host
// app is showing that group's own page, so the page's independent chat view
// keeps its subscription.
func (c *Coordinator) leaveRoom(roomID string) {
	if groupID, ok := GroupIDFromRoomID(roomID); ok {
		c.mu.Lock()
		onGroupPage := c.activeGroupID == groupID
		c.mu.Unlock()
		if onGroupPage {
			return
		}
	}

	leaveCtx, cancel := context.WithTimeout(context.Background(), c.cfg.LeaveGrace)
	defer cancel()
	if err := c.socket.Emit(leaveCtx, socket.EventLeaveChat, roomEventPayload{RoomID: roomID, Token: c.cfg.Token}); err != nil {
		log.Printf("chat: leave room %s: %v", roomID, err)
	}

	c.mu.Lock()
	if c.joinedRoomID == roomID {
		c.joinedRoomID = ""
	}
	c.mu.Unlock()
}

// SendMessage delivers text to the current room. Whitespace-only input is a
// no-op with no network traffic. For generic rooms the authoritative append
// comes from the server's push, never from the ack, so the same message is
// not inserted twice when the broadcast includes the sender.
func (c *Coordinator) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	roomID := c.currentRoomID
	room, ok := c.roomsByID[roomID]
	seq := c.switchSeq
	c.mu.Unlock()
	if roomID == "" || !ok {
		return c.fail(fmt.Errorf("%w: no active room", ErrInvalidRoom))
	}

	if room.IsGroup() {
		msg, err := c.api.SendGroupMessage(ctx, room.GroupID, text)
		if err != nil {
			return c.fail(fmt.Errorf("send message: %w", err))
		}
		c.mu.Lock()
		if c.switchSeq == seq && c.currentRoomID == roomID {
			c.messages = append(c.messages, msg)
		}
		c.mu.Unlock()
		c.notifyChanged()
		return nil
	}

	if !c.socket.Connected() {
		return c.fail(fmt.Errorf("%w: cannot send", ErrConnectionTimeout))
	}
	sendCtx, cancel := context.WithTimeout(ctx, c.cfg.SendAckTimeout)
	err := c.socket.Emit(sendCtx, socket.EventSendMessage, sendEventPayload{RoomID: roomID, Content: text, Token: c.cfg.Token})
	cancel()
	if err != nil {
		return c.fail(mapSocketErr("send message", err, ErrSendTimeout))
	}
	return nil
}

// Push handlers. Each re-derives the current room at execution time so a
// message racing a room switch is attributed to whichever room is current
// when the handler actually runs.

func (c *Coordinator) handleNewMessage(payload json.RawMessage) {
	var wire wireMessage
	if err := json.Unmarshal(payload, &wire); err != nil {
		log.Printf("chat: malformed new_message payload: %v", err)
		return
	}
	msg := wire.toMessage()
	if msg.ID == 0 || msg.Content == "" || msg.SenderName == "" {
		return
	}

	c.mu.Lock()
	viewing := msg.RoomID == c.currentRoomID && c.open && !c.minimized
	if viewing {
		c.messages = append(c.messages, msg)
	}
	c.mu.Unlock()
	if !viewing {
		c.unread.Increment(msg.RoomID)
	}
	c.notifyChanged()
}

func (c *Coordinator) handleGroupMessage(payload json.RawMessage) {
	var wire wireMessage
	if err := json.Unmarshal(payload, &wire); err != nil {
		log.Printf("chat: malformed group_chat_message payload: %v", err)
		return
	}
	if wire.ID == 0 || wire.Content == "" || wire.GroupID == 0 {
		return
	}
	msg := wire.toMessage()
	roomID := GroupRoomID(wire.GroupID)
	msg.RoomID = roomID

	c.mu.Lock()
	// When the group's own page is open elsewhere its independent chat view
	// renders this message; appending here too would duplicate it.
	onGroupPage := c.activeGroupID == wire.GroupID
	viewing := roomID == c.currentRoomID && c.open && !c.minimized && !onGroupPage
	if viewing {
		c.messages = append(c.messages, msg)
	}
	c.mu.Unlock()
	if !viewing {
		c.unread.Increment(roomID)
	}
	c.notifyChanged()
}

func (c *Coordinator) handleGroupMessageDeleted(payload json.RawMessage) {
	var event struct {
		MessageID int64 `json:"message_id"`
		GroupID   int64 `json:"group_id"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("chat: malformed group_chat_message_deleted payload: %v", err)
		return
	}
	roomID := GroupRoomID(event.GroupID)

	c.mu.Lock()
	if roomID == c.currentRoomID {
		kept := c.messages[:0]
		for _, m := range c.messages {
			if m.ID != event.MessageID {
				kept = append(kept, m)
			}
		}
		c.messages = kept
	}
	c.mu.Unlock()
	c.notifyChanged()
}

func (c *Coordinator) handleMembershipEvent(payload json.RawMessage) {
	var event struct {
		Username string `json:"username"`
		RoomID   flexID `json:"room_id"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("chat: malformed membership payload: %v", err)
		return
	}

	c.mu.Lock()
	roomID := c.currentRoomID
	seq := c.switchSeq
	c.mu.Unlock()
	if roomID == "" || roomID != event.RoomID.String() || IsGroupRoomID(roomID) {
		return
	}
	go c.refreshParticipants(roomID, seq)
}

func (c *Coordinator) refreshParticipants(roomID string, seq uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.HTTPRequest)
	defer cancel()
	participants, err := c.api.RoomParticipants(ctx, roomID)
	if err != nil {
		log.Printf("chat: refresh participants for room %s: %v", roomID, err)
		return
	}

	c.mu.Lock()
	if c.switchSeq == seq && c.currentRoomID == roomID {
		c.participants = participants
	}
	c.mu.Unlock()
	c.notifyChanged()
}

func (c *Coordinator) handleSocketError(payload json.RawMessage) {
	var event struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &event); err != nil || event.Message == "" {
		return
	}
	c.setError(event.Message)
	c.notifyChanged()
}

// handleConnect re-joins the current generic room after a reconnect so the
// live feed resumes. The rejoin runs off the read loop: emitting from a
// socket handler would deadlock waiting for an ack the blocked loop can
// never read.
func (c *Coordinator) handleConnect(json.RawMessage) {
	c.mu.Lock()
	roomID := c.joinedRoomID
	c.mu.Unlock()
	if roomID == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.JoinAckTimeout)
		defer cancel()
		if err := c.socket.Emit(ctx, socket.EventJoinChat, roomEventPayload{RoomID: roomID, Token: c.cfg.Token}); err != nil {
			log.Printf("chat: rejoin room %s after reconnect: %v", roomID, err)
			c.setError("Chat connection interrupted")
			c.notifyChanged()
		}
	}()
}

func (c *Coordinator) handleDisconnect(json.RawMessage) {
	log.Printf("chat: socket disconnected")
}

// StartUnreadPolling reconciles push-updated counts against the server while
// the widget is closed or minimized. Polling pauses while the widget is open
// and focused so it cannot clobber counts actively being zeroed by viewing.
func (c *Coordinator) StartUnreadPolling(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.cfg.UnreadPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			c.mu.Lock()
			active := c.open && !c.minimized
			c.mu.Unlock()
			if active {
				continue
			}

			counts, err := c.api.UnreadCounts(ctx)
			if err != nil {
				log.Printf("chat: unread poll: %v", err)
				continue
			}
			c.unread.ReplaceAll(counts)
			c.notifyChanged()
		}
	}()
}

// Widget state transitions.

// SetOpen opens or closes the widget. Opening un-minimizes and zeroes the
// current room's unread count.
func (c *Coordinator) SetOpen(open bool) {
	c.mu.Lock()
	c.open = open
	if open {
		c.minimized = false
	}
	c.resetCurrentUnreadLocked()
	c.mu.Unlock()
	c.notifyChanged()
}

// SetMinimized minimizes or restores the open widget.
func (c *Coordinator) SetMinimized(minimized bool) {
	c.mu.Lock()
	c.minimized = minimized
	c.resetCurrentUnreadLocked()
	c.mu.Unlock()
	c.notifyChanged()
}

func (c *Coordinator) resetCurrentUnreadLocked() {
	if c.open && !c.minimized && c.currentRoomID != "" {
		c.unread.Reset(c.currentRoomID)
	}
}

// SetView navigates the widget. Leaving the chat view clears the current
// room: the view invariant is that a room is current only while chatting.
// The socket-joined room is left alone; the next generic join leaves it.
func (c *Coordinator) SetView(view View) {
	c.mu.Lock()
	c.view = view
	if view != ViewChat {
		c.currentRoomID = ""
		c.messages = nil
		c.participants = nil
	}
	c.mu.Unlock()
	c.notifyChanged()
}

// SetActiveGroupView tells the coordinator the host app is showing the given
// group's dedicated page. Leave skipping and push-append suppression key off
// this instead of inspecting any ambient location state.
func (c *Coordinator) SetActiveGroupView(groupID int64) {
	c.mu.Lock()
	c.activeGroupID = groupID
	c.mu.Unlock()
}

// ClearActiveGroupView reports that no group page is showing.
func (c *Coordinator) ClearActiveGroupView() {
	c.mu.Lock()
	c.activeGroupID = 0
	c.mu.Unlock()
}

// Accessors.

// Snapshot is an immutable copy of the coordinator's renderable state.
type Snapshot struct {
	View         View
	Open         bool
	Minimized    bool
	CurrentRoom  Room
	HasRoom      bool
	Rooms        []Room
	Messages     []Message
	Participants []Participant
	LastError    string
	Unread       map[string]int
	UnreadTotal  int
}

// Snapshot copies the current state for rendering.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		View:         c.view,
		Open:         c.open,
		Minimized:    c.minimized,
		Rooms:        append([]Room(nil), c.rooms...),
		Messages:     append([]Message(nil), c.messages...),
		Participants: append([]Participant(nil), c.participants...),
		LastError:    c.lastErr,
	}
	if room, ok := c.roomsByID[c.currentRoomID]; ok && c.currentRoomID != "" {
		snap.CurrentRoom = room
		snap.HasRoom = true
	}
	c.mu.Unlock()
	snap.Unread = c.unread.Snapshot()
	snap.UnreadTotal = c.unread.Total()
	return snap
}

// CurrentRoomID returns the id of the room in chat view, or "".
func (c *Coordinator) CurrentRoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentRoomID
}

// Messages copies the current room's history, oldest first.
func (c *Coordinator) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// Participants copies the current room's participant list.
func (c *Coordinator) Participants() []Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Participant(nil), c.participants...)
}

// Rooms copies the last fetched room list.
func (c *Coordinator) Rooms() []Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Room(nil), c.rooms...)
}

// Unread exposes the unread counters.
func (c *Coordinator) Unread() *UnreadTracker {
	return c.unread
}

// LastError returns the most recent user-visible error text, or "".
func (c *Coordinator) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError discards the recorded error text.
func (c *Coordinator) ClearError() {
	c.mu.Lock()
	c.lastErr = ""
	c.mu.Unlock()
}

// fail records err's user-visible form and returns err.
func (c *Coordinator) fail(err error) error {
	c.setError(userMessage(err))
	c.notifyChanged()
	return err
}

func (c *Coordinator) setError(message string) {
	c.mu.Lock()
	c.lastErr = message
	c.mu.Unlock()
}

// userMessage maps taxonomy errors to the strings the widget shows.
func userMessage(err error) string {
	var serverErr *socket.ServerError
	switch {
	case errors.Is(err, ErrInvalidRoom):
		return "Invalid room selection"
	case errors.Is(err, ErrConnectionTimeout):
		return "Chat connection not ready"
	case errors.Is(err, ErrJoinTimeout):
		return "Joining the room timed out"
	case errors.Is(err, ErrSendTimeout):
		return "Sending the message timed out"
	case errors.As(err, &serverErr):
		return serverErr.Message
	case errors.Is(err, ErrServerAck):
		return "The chat service rejected the request"
	case errors.Is(err, ErrDataFormat):
		return "Unexpected response from the chat service"
	case errors.Is(err, ErrNetwork):
		return "Failed to reach the chat service"
	default:
		return "Chat request failed"
	}
}

// mapSocketErr folds transport errors into the coordinator taxonomy.
func mapSocketErr(op string, err error, timeoutSentinel error) error {
	var serverErr *socket.ServerError
	switch {
	case errors.As(err, &serverErr):
		return fmt.Errorf("%s: %w: %w", op, ErrServerAck, serverErr)
	case errors.Is(err, socket.ErrAckTimeout) || errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, timeoutSentinel)
	case errors.Is(err, socket.ErrNotConnected) || errors.Is(err, socket.ErrClosed):
		return fmt.Errorf("%s: %w: %v", op, ErrConnectionTimeout, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// reverseMessages flips a newest-first history into chronological order.
// Every history endpoint returns newest-first; display order is uniformly
// oldest-first for both room kinds.
func reverseMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	for i, m := range messages {
		out[len(messages)-1-i] = m
	}
	return out
}

// Payloads for emitted socket events. The token rides along with every event
// in addition to the connection query, matching the backend contract.

type roomEventPayload struct {
	RoomID string `json:"room_id"`
	Token  string `json:"token"`
}

type sendEventPayload struct {
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
	Token   string `json:"token"`
}
