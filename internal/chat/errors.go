package chat

import "errors"

// Error taxonomy for coordinator operations. Every failure is matched with
// errors.Is against one of these sentinels; operations additionally record a
// user-visible error string readable via LastError. Nothing here is fatal: a
// failed operation leaves the widget in its prior state and the user may
// simply try again.
var (
	// ErrNetwork covers rejected requests and non-OK REST responses.
	ErrNetwork = errors.New("chat network request failed")

	// ErrConnectionTimeout means the socket did not come up within the
	// bounded wait that precedes a generic room switch.
	ErrConnectionTimeout = errors.New("chat connection not ready")

	// ErrJoinTimeout means the join_chat acknowledgment never arrived.
	ErrJoinTimeout = errors.New("room join timed out")

	// ErrSendTimeout means the send_message acknowledgment never arrived.
	ErrSendTimeout = errors.New("message send timed out")

	// ErrServerAck means the server acknowledged with an error payload.
	ErrServerAck = errors.New("server rejected chat request")

	// ErrInvalidRoom means the room id is absent from the last room listing.
	ErrInvalidRoom = errors.New("invalid room selection")

	// ErrDataFormat means a response decoded into none of the documented
	// shapes for its endpoint.
	ErrDataFormat = errors.New("unexpected response format")
)
