package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token")
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})

	if _, err := client.ListRooms(context.Background()); err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want Bearer test-token", gotAuth)
	}
}

func TestListRoomsClassifies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/rooms" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id": "general", "name": "General", "type": "public"},
			{"id": 12, "name": "Support Desk", "type": "public"},
			{"id": "dm-3", "name": "Alice", "type": "private"}
		]`))
	})

	rooms, err := client.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if len(rooms) != 3 {
		t.Fatalf("got %d rooms, want 3", len(rooms))
	}
	if rooms[0].Category != CategoryGlobal {
		t.Errorf("General categorized as %q", rooms[0].Category)
	}
	if rooms[1].ID != "12" || rooms[1].Category != CategorySupport {
		t.Errorf("numeric-id support room decoded as %+v", rooms[1])
	}
	if rooms[2].Category != CategoryPrivate {
		t.Errorf("private room categorized as %q", rooms[2].Category)
	}
}

func TestRoomMessagesAcceptsBothShapes(t *testing.T) {
	bodies := map[string]string{
		"bare array": `[{"id": 2, "content": "later", "sender_name": "bob"}, {"id": 1, "content": "first", "sender_name": "alice"}]`,
		"envelope":   `{"success": true, "messages": [{"id": 2, "content": "later", "sender_name": "bob"}, {"id": 1, "content": "first", "sender_name": "alice"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			messages, err := client.RoomMessages(context.Background(), "general")
			if err != nil {
				t.Fatalf("RoomMessages: %v", err)
			}
			if len(messages) != 2 || messages[0].ID != 2 || messages[1].SenderName != "alice" {
				t.Errorf("unexpected messages: %+v", messages)
			}
		})
	}
}

func TestRoomMessagesRejectsUnknownShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true}`))
	})
	if _, err := client.RoomMessages(context.Background(), "general"); !errors.Is(err, ErrDataFormat) {
		t.Errorf("envelope without messages returned %v, want ErrDataFormat", err)
	}

	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"nope"`))
	})
	if _, err := client.RoomMessages(context.Background(), "general"); !errors.Is(err, ErrDataFormat) {
		t.Errorf("string body returned %v, want ErrDataFormat", err)
	}
}

func TestRoomParticipantsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"participants": [{"id": 1, "username": "alice", "role": "admin"}]}`))
	})
	participants, err := client.RoomParticipants(context.Background(), "general")
	if err != nil {
		t.Fatalf("RoomParticipants: %v", err)
	}
	if len(participants) != 1 || participants[0].Username != "alice" || participants[0].Role != "admin" {
		t.Errorf("unexpected participants: %+v", participants)
	}
}

func TestSendGroupMessageFillsRoomID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Write([]byte(`{"id": 9, "content": "hi", "author_name": "alice"}`))
	})

	msg, err := client.SendGroupMessage(context.Background(), 5, "hi")
	if err != nil {
		t.Fatalf("SendGroupMessage: %v", err)
	}
	if msg.RoomID != "group_5" {
		t.Errorf("RoomID = %q, want group_5", msg.RoomID)
	}
	if msg.SenderName != "alice" {
		t.Errorf("author_name not mapped to sender, got %q", msg.SenderName)
	}
}

func TestUnreadCountsRequiresField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "unread_counts": {"general": 3}}`))
	})
	counts, err := client.UnreadCounts(context.Background())
	if err != nil {
		t.Fatalf("UnreadCounts: %v", err)
	}
	if counts["general"] != 3 {
		t.Errorf("counts = %v", counts)
	}

	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true}`))
	})
	if _, err := client.UnreadCounts(context.Background()); !errors.Is(err, ErrDataFormat) {
		t.Errorf("missing unread_counts returned %v, want ErrDataFormat", err)
	}
}

func TestClientStatusErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	if _, err := client.ListRooms(context.Background()); !errors.Is(err, ErrNetwork) {
		t.Errorf("500 returned %v, want ErrNetwork", err)
	}

	client = NewClient("http://127.0.0.1:1", "t")
	if _, err := client.ListRooms(context.Background()); !errors.Is(err, ErrNetwork) {
		t.Errorf("connection refused returned %v, want ErrNetwork", err)
	}
}
