// Package timeouts defines shared timeout and interval constants used across
// the widget. Centralizing these values keeps the coordinator, the socket
// transport, and the stub backend in agreement about the durations the chat
// protocol tolerates.
package timeouts

import "time"

// SocketConnect caps how long a room switch waits for the socket to come up
// before the switch is abandoned.
const SocketConnect = 5 * time.Second

// JoinAck caps the wait for a join_chat acknowledgment.
const JoinAck = 5 * time.Second

// SendAck caps the wait for a send_message acknowledgment.
const SendAck = 5 * time.Second

// LeaveGrace bounds the best-effort leave_chat acknowledgment. Leaves are
// fire-and-forget; a missing ack never blocks the room switch.
const LeaveGrace = 1 * time.Second

// HTTPRequest caps a single REST call against the Green Buddy backend.
const HTTPRequest = 15 * time.Second

// RoomsRefresh is the minimum spacing between room list fetches. Calls
// arriving earlier are dropped as redundant.
const RoomsRefresh = 5 * time.Second

// UnreadPoll is the interval of the background unread-count reconciliation
// while the widget is closed or minimized.
const UnreadPoll = 30 * time.Second

// SocketRedial is the fixed delay between reconnection attempts after the
// socket drops.
const SocketRedial = 2 * time.Second

// ReadHeader limits how long the stub HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the stub HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
