package socket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/net/websocket"
)

// dialTest builds a Conn with a fast redial so reconnect tests do not sleep
// through the production interval.
func dialTest(t *testing.T, ctx context.Context, baseURL string) *Conn {
	t.Helper()
	wsURL, origin, err := socketURL(baseURL, "test-token")
	if err != nil {
		t.Fatalf("socketURL: %v", err)
	}
	c := &Conn{
		wsURL:          wsURL,
		origin:         origin,
		handlers:       make(map[string][]Handler),
		pending:        make(map[string]chan ackPayload),
		redialInterval: 10 * time.Millisecond,
		done:           make(chan struct{}),
	}
	t.Cleanup(c.Close)
	go c.manage(ctx)
	return c
}

// echoServer acks join_chat, rejects forbidden_room joins, stays silent on
// no_reply, and pushes one new_message after a successful join.
func echoServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var conns atomic.Int32
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		conns.Add(1)
		if ws.Request().URL.Query().Get("token") != "test-token" {
			ws.Close()
			return
		}
		dec := json.NewDecoder(ws)
		enc := json.NewEncoder(ws)
		for {
			var frame Frame
			if err := dec.Decode(&frame); err != nil {
				return
			}
			switch frame.Event {
			case EventJoinChat:
				var payload struct {
					RoomID string `json:"room_id"`
				}
				_ = json.Unmarshal(frame.Payload, &payload)
				if payload.RoomID == "forbidden_room" {
					body, _ := json.Marshal(ackPayload{Error: "not allowed"})
					enc.Encode(Frame{Event: "ack", RequestID: frame.RequestID, Payload: body})
					continue
				}
				enc.Encode(Frame{Event: "ack", RequestID: frame.RequestID})
				push, _ := json.Marshal(map[string]any{"id": 1, "content": "welcome", "room_id": payload.RoomID})
				enc.Encode(Frame{Event: EventNewMessage, Payload: push})
			case "no_reply":
				// Intentionally silent.
			case "drop":
				return
			default:
				enc.Encode(Frame{Event: "ack", RequestID: frame.RequestID})
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &conns
}

func TestSocketURL(t *testing.T) {
	tests := []struct {
		base    string
		wantURL string
	}{
		{"http://example.com", "ws://example.com/socket"},
		{"https://example.com/chat/", "wss://example.com/chat/socket"},
		{"ws://example.com", "ws://example.com/socket"},
	}
	for _, tc := range tests {
		got, _, err := socketURL(tc.base, "tok")
		if err != nil {
			t.Fatalf("socketURL(%q): %v", tc.base, err)
		}
		parsed, err := url.Parse(got)
		if err != nil {
			t.Fatalf("parse %q: %v", got, err)
		}
		if parsed.Query().Get("token") != "tok" {
			t.Errorf("socketURL(%q) lost the token: %q", tc.base, got)
		}
		parsed.RawQuery = ""
		if parsed.String() != tc.wantURL {
			t.Errorf("socketURL(%q) = %q, want %q", tc.base, parsed.String(), tc.wantURL)
		}
	}

	if _, _, err := socketURL("ftp://example.com", "tok"); err == nil {
		t.Error("ftp scheme accepted")
	}
}

func TestEmitAck(t *testing.T) {
	srv, _ := echoServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := dialTest(t, ctx, srv.URL)

	waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
	defer waitCancel()
	if err := c.WaitConnected(waitCtx); err != nil {
		t.Fatalf("WaitConnected: %v", err)
	}
	if !c.Connected() {
		t.Fatal("Connected() = false after WaitConnected")
	}

	emitCtx, emitCancel := context.WithTimeout(ctx, time.Second)
	defer emitCancel()
	if err := c.Emit(emitCtx, EventJoinChat, map[string]string{"room_id": "general"}); err != nil {
		t.Fatalf("Emit join: %v", err)
	}
}

func TestEmitServerError(t *testing.T) {
	srv, _ := echoServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := dialTest(t, ctx, srv.URL)
	waitForConnection(t, c)

	emitCtx, emitCancel := context.WithTimeout(ctx, time.Second)
	defer emitCancel()
	err := c.Emit(emitCtx, EventJoinChat, map[string]string{"room_id": "forbidden_room"})
	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("Emit = %v, want *ServerError", err)
	}
	if serverErr.Message != "not allowed" {
		t.Errorf("server message = %q", serverErr.Message)
	}
}

func TestEmitAckTimeout(t *testing.T) {
	srv, _ := echoServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := dialTest(t, ctx, srv.URL)
	waitForConnection(t, c)

	emitCtx, emitCancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer emitCancel()
	if err := c.Emit(emitCtx, "no_reply", nil); !errors.Is(err, ErrAckTimeout) {
		t.Errorf("silent server returned %v, want ErrAckTimeout", err)
	}
}

func TestPushDispatch(t *testing.T) {
	srv, _ := echoServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := dialTest(t, ctx, srv.URL)

	received := make(chan json.RawMessage, 1)
	c.On(EventNewMessage, func(payload json.RawMessage) {
		select {
		case received <- payload:
		default:
		}
	})
	waitForConnection(t, c)

	emitCtx, emitCancel := context.WithTimeout(ctx, time.Second)
	defer emitCancel()
	if err := c.Emit(emitCtx, EventJoinChat, map[string]string{"room_id": "general"}); err != nil {
		t.Fatalf("Emit join: %v", err)
	}

	select {
	case payload := <-received:
		var msg struct {
			Content string `json:"content"`
			RoomID  string `json:"room_id"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("unmarshal push: %v", err)
		}
		if msg.Content != "welcome" || msg.RoomID != "general" {
			t.Errorf("push payload = %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no push within a second of the join ack")
	}
}

func TestReconnectDispatchesConnect(t *testing.T) {
	srv, conns := echoServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := dialTest(t, ctx, srv.URL)

	connects := make(chan struct{}, 4)
	c.On(EventConnect, func(json.RawMessage) { connects <- struct{}{} })
	disconnects := make(chan struct{}, 4)
	c.On(EventDisconnect, func(json.RawMessage) { disconnects <- struct{}{} })
	waitForConnection(t, c)

	// Ask the server to drop the connection, then expect a redial.
	if err := c.EmitNoAck("drop", nil); err != nil {
		t.Fatalf("EmitNoAck drop: %v", err)
	}

	select {
	case <-disconnects:
	case <-time.After(2 * time.Second):
		t.Fatal("no disconnect event after server drop")
	}
	// Events are dispatched in order from one goroutine, so once the
	// disconnect arrives the initial dial's connect (if the handler caught
	// it) is already buffered. Discard it; the next one is the redial's.
	select {
	case <-connects:
	default:
	}
	select {
	case <-connects:
	case <-time.After(2 * time.Second):
		t.Fatal("no connect event after redial")
	}

	deadline := time.Now().Add(2 * time.Second)
	for conns.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := conns.Load(); got < 2 {
		t.Errorf("server saw %d connections, want at least 2", got)
	}
}

func TestEmitWhenNotConnected(t *testing.T) {
	c := &Conn{
		handlers: make(map[string][]Handler),
		pending:  make(map[string]chan ackPayload),
		done:     make(chan struct{}),
	}
	if err := c.Emit(context.Background(), EventJoinChat, nil); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Emit without connection = %v, want ErrNotConnected", err)
	}

	c.Close()
	if err := c.Emit(context.Background(), EventJoinChat, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Emit after Close = %v, want ErrClosed", err)
	}
	if err := c.WaitConnected(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("WaitConnected after Close = %v, want ErrClosed", err)
	}
}

func TestCloseWakesConnectionWaiters(t *testing.T) {
	c := &Conn{
		handlers: make(map[string][]Handler),
		pending:  make(map[string]chan ackPayload),
		done:     make(chan struct{}),
	}

	errs := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs <- c.WaitConnected(ctx)
	}()

	// Give the waiter a moment to register; if Close wins the race the
	// waiter still sees ErrClosed immediately.
	time.Sleep(20 * time.Millisecond)
	c.Close()

	select {
	case err := <-errs:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("WaitConnected = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitConnected still blocked after Close")
	}
}

func waitForConnection(t *testing.T, c *Conn) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.WaitConnected(ctx); err != nil {
		t.Fatalf("WaitConnected: %v", err)
	}
}
