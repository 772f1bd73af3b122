// Package stubserver hosts a self-contained Green Buddy chat backend for
// local development and integration tests. It serves the REST endpoints and
// the socket protocol the widget speaks, backed by in-memory state.
package stubserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	"github.com/educatedpolarbear/green-buddy-chat/internal/auth"
	"github.com/educatedpolarbear/green-buddy-chat/internal/platform/timeouts"
)

// Config defines the stub server's listener settings.
type Config struct {
	HTTPAddr          string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the stub HTTP/WebSocket process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

// NewHandler creates the stub routes over fresh in-memory state. Tests mount
// it on httptest servers.
func NewHandler() http.Handler {
	return newHandler(newStore(), newRoomHub())
}

func newHandler(store *store, hub *roomHub) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.Handle("/socket", websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, store, hub)
	}))

	mux.HandleFunc("GET /api/chat/rooms", requireToken(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, store.listRooms())
	}))

	mux.HandleFunc("GET /api/chat/rooms/unread", requireToken(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "unread_counts": store.unreadCounts()})
	}))

	mux.HandleFunc("GET /api/chat/rooms/{room}/messages", requireToken(func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("room")
		if !store.roomExists(roomID) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"success": true, "messages": store.roomMessages(roomID)})
	}))

	mux.HandleFunc("GET /api/chat/rooms/{room}/participants", requireToken(func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("room")
		if !store.roomExists(roomID) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"participants": store.roomParticipants(roomID)})
	}))

	mux.HandleFunc("POST /api/chat/rooms/{room}/join", requireToken(func(w http.ResponseWriter, r *http.Request) {
		roomID := r.PathValue("room")
		if !store.roomExists(roomID) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		store.joinRoom(roomID, requestUsername(r))
		writeJSON(w, map[string]any{"success": true})
	}))

	mux.HandleFunc("GET /api/groups/memberships", requireToken(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, store.listGroups())
	}))

	mux.HandleFunc("GET /api/groups/{group}/chat/messages", requireToken(func(w http.ResponseWriter, r *http.Request) {
		groupID, ok := groupIDFromPath(w, r, store)
		if !ok {
			return
		}
		writeJSON(w, store.roomMessages("group_"+strconv.FormatInt(groupID, 10)))
	}))

	mux.HandleFunc("POST /api/groups/{group}/chat/messages", requireToken(func(w http.ResponseWriter, r *http.Request) {
		groupID, ok := groupIDFromPath(w, r, store)
		if !ok {
			return
		}
		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Content) == "" {
			http.Error(w, "content is required", http.StatusBadRequest)
			return
		}

		msg := store.appendGroupMessage(groupID, requestUsername(r), strings.TrimSpace(body.Content))
		hub.broadcastAll(wsFrame{Event: "group_chat_message", Payload: mustJSON(msg)})
		writeJSON(w, msg)
	}))

	mux.HandleFunc("GET /api/groups/{group}/members", requireToken(func(w http.ResponseWriter, r *http.Request) {
		groupID, ok := groupIDFromPath(w, r, store)
		if !ok {
			return
		}
		writeJSON(w, store.roomParticipants("group_"+strconv.FormatInt(groupID, 10)))
	}))

	return mux
}

// requireToken rejects API calls without a bearer token. The stub trusts any
// token; it only needs one to attribute activity to a username.
func requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")) == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// requestUsername extracts the caller's username from the bearer token, or
// "guest" when the token is opaque.
func requestUsername(r *http.Request) string {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if identity, err := auth.PeekIdentity(strings.TrimSpace(token)); err == nil && identity.Username != "" {
		return identity.Username
	}
	return "guest"
}

func groupIDFromPath(w http.ResponseWriter, r *http.Request, store *store) (int64, bool) {
	groupID, err := strconv.ParseInt(r.PathValue("group"), 10, 64)
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return 0, false
	}
	if !store.groupExists(groupID) {
		http.Error(w, "group not found", http.StatusNotFound)
		return 0, false
	}
	return groupID, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("stub: encode response: %v", err)
	}
}

// NewServer builds a configured stub server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           NewHandler(),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
	}, nil
}

// Run creates and serves a stub server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init stub server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve stub: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("stub server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("stub server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}
