// Package socket implements the widget side of the chat event protocol: a
// JSON frame stream over a single WebSocket connection, with per-request
// acknowledgments and server-pushed events.
//
// The connection is an explicitly owned resource handed to the coordinator;
// nothing in this package knows about rooms or messages beyond raw payloads.
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/educatedpolarbear/green-buddy-chat/internal/platform/timeouts"
)

// Event names on the chat socket.
const (
	EventJoinChat                = "join_chat"
	EventLeaveChat               = "leave_chat"
	EventSendMessage             = "send_message"
	EventNewMessage              = "new_message"
	EventGroupChatMessage        = "group_chat_message"
	EventGroupChatMessageDeleted = "group_chat_message_deleted"
	EventUserJoined              = "user_joined"
	EventUserLeft                = "user_left"
	EventError                   = "error"

	// Synthetic events dispatched by the transport itself.
	EventConnect    = "connect"
	EventDisconnect = "disconnect"

	eventAck = "ack"
)

// Frame is the wire envelope for every socket exchange. Emits that expect an
// acknowledgment carry a request id; the matching ack echoes it back.
type Frame struct {
	Event     string          `json:"event"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type ackPayload struct {
	Error string `json:"error,omitempty"`
}

// ErrAckTimeout means no acknowledgment arrived before the caller's deadline.
var ErrAckTimeout = errors.New("no acknowledgment before deadline")

// ErrNotConnected means the socket has no live connection.
var ErrNotConnected = errors.New("socket is not connected")

// ErrClosed means the connection was closed by its owner.
var ErrClosed = errors.New("socket is closed")

// ServerError is an acknowledgment that carried an error payload.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server error: " + e.Message
}

// Handler receives a pushed event's raw payload.
type Handler func(payload json.RawMessage)

// Conn owns one logical chat connection. After a drop it redials at a fixed
// interval until closed; each successful dial dispatches a synthetic
// "connect" event so the owner can re-join its room.
type Conn struct {
	wsURL  string
	origin string

	mu        sync.Mutex
	ws        *websocket.Conn
	encoder   *json.Encoder
	connected bool
	closed    bool
	handlers  map[string][]Handler
	pending   map[string]chan ackPayload
	waiters   []chan struct{}

	redialInterval time.Duration
	done           chan struct{}
}

// Dial opens a chat connection to the backend at baseURL, authenticating via
// the token in the connection query. The connection lives until Close or ctx
// cancellation.
func Dial(ctx context.Context, baseURL, token string) (*Conn, error) {
	wsURL, origin, err := socketURL(baseURL, token)
	if err != nil {
		return nil, err
	}

	c := &Conn{
		wsURL:          wsURL,
		origin:         origin,
		handlers:       make(map[string][]Handler),
		pending:        make(map[string]chan ackPayload),
		redialInterval: timeouts.SocketRedial,
		done:           make(chan struct{}),
	}
	go c.manage(ctx)
	return c, nil
}

// socketURL derives the websocket endpoint and origin from an http(s) base.
func socketURL(baseURL, token string) (string, string, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", "", fmt.Errorf("parse socket base url: %w", err)
	}
	origin := parsed.String()
	switch parsed.Scheme {
	case "http", "ws":
		parsed.Scheme = "ws"
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		return "", "", fmt.Errorf("unsupported socket scheme %q", parsed.Scheme)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/socket"
	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), origin, nil
}

// manage dials, reads until failure, and redials until the connection is
// closed or the context ends.
func (c *Conn) manage(ctx context.Context) {
	for {
		ws, err := websocket.Dial(c.wsURL, "", c.origin)
		if err != nil {
			log.Printf("socket: dial failed: %v", err)
		} else {
			c.setConnection(ws)
			c.dispatch(EventConnect, nil)
			c.readLoop(ws)
			c.clearConnection(ws)
			c.dispatch(EventDisconnect, nil)
		}

		if c.isClosed() {
			return
		}
		select {
		case <-ctx.Done():
			c.Close()
			return
		case <-c.done:
			return
		case <-time.After(c.redialInterval):
		}
	}
}

func (c *Conn) readLoop(ws *websocket.Conn) {
	decoder := json.NewDecoder(ws)
	for {
		var frame Frame
		if err := decoder.Decode(&frame); err != nil {
			if !errors.Is(err, io.EOF) && !c.isClosed() {
				log.Printf("socket: read failed: %v", err)
			}
			return
		}

		if frame.Event == eventAck {
			c.resolveAck(frame)
			continue
		}
		c.dispatch(frame.Event, frame.Payload)
	}
}

func (c *Conn) setConnection(ws *websocket.Conn) {
	c.mu.Lock()
	c.ws = ws
	c.encoder = json.NewEncoder(ws)
	c.connected = true
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()
	for _, waiter := range waiters {
		close(waiter)
	}
}

func (c *Conn) clearConnection(ws *websocket.Conn) {
	c.mu.Lock()
	if c.ws == ws {
		c.ws = nil
		c.encoder = nil
		c.connected = false
	}
	pending := c.pending
	c.pending = make(map[string]chan ackPayload)
	c.mu.Unlock()
	_ = ws.Close()
	// In-flight emits fail fast instead of waiting out their deadlines.
	for _, ch := range pending {
		close(ch)
	}
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Connected reports whether a live connection is up.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// WaitConnected blocks until the socket is connected or ctx ends.
func (c *Conn) WaitConnected(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	waiter := make(chan struct{})
	c.waiters = append(c.waiters, waiter)
	c.mu.Unlock()

	select {
	case <-waiter:
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return ErrClosed
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// On registers a handler for a pushed event. Handlers run on the read loop,
// so they must not block on socket operations.
func (c *Conn) On(event string, handler Handler) {
	if handler == nil {
		return
	}
	c.mu.Lock()
	c.handlers[event] = append(c.handlers[event], handler)
	c.mu.Unlock()
}

func (c *Conn) dispatch(event string, payload json.RawMessage) {
	c.mu.Lock()
	handlers := append([]Handler(nil), c.handlers[event]...)
	c.mu.Unlock()
	for _, handler := range handlers {
		handler(payload)
	}
}

// Emit sends an event and waits for its acknowledgment. A missing ack before
// ctx's deadline yields ErrAckTimeout; an ack carrying an error yields a
// *ServerError.
func (c *Conn) Emit(ctx context.Context, event string, payload any) error {
	requestID := uuid.NewString()
	ackCh := make(chan ackPayload, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.connected || c.encoder == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.pending[requestID] = ackCh
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, requestID)
		c.mu.Unlock()
	}()

	if err := c.writeFrame(event, requestID, payload); err != nil {
		return err
	}

	select {
	case ack, ok := <-ackCh:
		if !ok {
			return ErrNotConnected
		}
		if ack.Error != "" {
			return &ServerError{Message: ack.Error}
		}
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrAckTimeout, event)
		}
		return ctx.Err()
	}
}

// EmitNoAck sends an event without waiting for acknowledgment.
func (c *Conn) EmitNoAck(event string, payload any) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.connected || c.encoder == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.mu.Unlock()
	return c.writeFrame(event, "", payload)
}

func (c *Conn) writeFrame(event, requestID string, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", event, err)
		}
		raw = data
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.encoder == nil {
		return ErrNotConnected
	}
	if err := c.encoder.Encode(Frame{Event: event, RequestID: requestID, Payload: raw}); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrNotConnected, event, err)
	}
	return nil
}

func (c *Conn) resolveAck(frame Frame) {
	if frame.RequestID == "" {
		return
	}
	var ack ackPayload
	if len(frame.Payload) > 0 {
		if err := json.Unmarshal(frame.Payload, &ack); err != nil {
			log.Printf("socket: malformed ack payload for request %s: %v", frame.RequestID, err)
		}
	}

	c.mu.Lock()
	ch, ok := c.pending[frame.RequestID]
	if ok {
		delete(c.pending, frame.RequestID)
	}
	c.mu.Unlock()
	if ok {
		ch <- ack
	}
}

// Close tears down the connection and stops redialing.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	ws := c.ws
	c.ws = nil
	c.encoder = nil
	c.connected = false
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	close(c.done)
	// Blocked WaitConnected callers see ErrClosed instead of waiting out
	// their deadlines.
	for _, waiter := range waiters {
		close(waiter)
	}
	if ws != nil {
		_ = ws.Close()
	}
}
