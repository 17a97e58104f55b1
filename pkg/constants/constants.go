// Package constants defines application-wide constants for timeouts, limits, and durations.
package constants

import "time"

// Time-related constants
const (
	// DefaultTimeout is the default timeout for most operations
	DefaultTimeout = 30 * time.Second

	// GracefulShutdownTimeout is the timeout for graceful server shutdown
	GracefulShutdownTimeout = 30 * time.Second
)

// WebSocket-related constants
const (
	// WebSocketAuthGracePeriod is how long an unauthenticated connection may
	// stay open before it is closed
	WebSocketAuthGracePeriod = 30 * time.Second

	// WebSocketHeartbeatTimeout is how long a connection may go without a
	// heartbeat or pong before it is considered dead
	WebSocketHeartbeatTimeout = 60 * time.Second

	// WebSocketWriteTimeout is the deadline for a single frame write
	WebSocketWriteTimeout = 10 * time.Second

	// WebSocketSendBuffer is the per-client outbound frame buffer size
	WebSocketSendBuffer = 256

	// WebSocketMaxFrameSize caps inbound frame size; SDP offers run a few
	// KB, so 64KB leaves plenty of headroom
	WebSocketMaxFrameSize = 64 * 1024
)

// JWT-related constants
const (
	// AccessTokenExpiry is the default access token lifetime
	AccessTokenExpiry = 7 * 24 * time.Hour

	// SessionExpiry is the default session lifetime
	SessionExpiry = 7 * 24 * time.Hour
)

// Presence constants
const (
	// PresenceTTL is how long a presence key lives without a heartbeat refresh
	PresenceTTL = 5 * time.Minute
)

// Call-related constants
const (
	// CallRingTimeout is how long a call may ring before it is marked missed
	CallRingTimeout = 45 * time.Second

	// CallStatusRinging indicates a call is waiting to be answered
	CallStatusRinging = "ringing"

	// CallStatusAccepted indicates a call is in progress
	CallStatusAccepted = "accepted"

	// CallStatusRejected indicates the callee declined the call
	CallStatusRejected = "rejected"

	// CallStatusEnded indicates a call has ended
	CallStatusEnded = "ended"

	// CallStatusMissed indicates a call rang out or was cancelled before answer
	CallStatusMissed = "missed"

	// CallKindVoice indicates a voice-only call
	CallKindVoice = "voice"

	// CallKindVideo indicates a video call
	CallKindVideo = "video"
)

// Validation constants
const (
	// MinUsernameLength is the minimum allowed username length
	MinUsernameLength = 3

	// MaxUsernameLength is the maximum allowed username length
	MaxUsernameLength = 20

	// MinPasswordLength is the minimum allowed password length
	MinPasswordLength = 6

	// MaxEmailLength is the maximum allowed email length
	MaxEmailLength = 255
)

// Message constants
const (
	// MaxMessageLength is the maximum stored message length; longer content
	// is truncated, not rejected
	MaxMessageLength = 1000
)

// Pagination constants
const (
	// DefaultPageSize is the default number of items per page
	DefaultPageSize = 50

	// MaxPageSize is the maximum number of items per page
	MaxPageSize = 100
)
