package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"gamerchat-backend/internal/domain"
)

// Client-originated frame types
const (
	FrameTypeAuth         = "auth"
	FrameTypeHeartbeat    = "heartbeat"
	FrameTypeCallSignal   = "call_signal"
	FrameTypeICECandidate = "call_ice_candidate"
)

// Server-originated message types
const (
	MessageTypeAuthSuccess           = "auth_success"
	MessageTypeAuthError             = "auth_error"
	MessageTypeHeartbeatResponse     = "heartbeat_response"
	MessageTypeCallSignal            = "call_signal"
	MessageTypeICECandidate          = "call_ice_candidate"
	MessageTypeIncomingCall          = "incoming_call"
	MessageTypeCallResponse          = "call_response"
	MessageTypeCallEnded             = "call_ended"
	MessageTypeNewMessage            = "new_message"
	MessageTypeFriendRequest         = "friend_request"
	MessageTypeFriendRequestResponse = "friend_request_response"
	MessageTypeError                 = "error"
)

// Frame is a client-to-server message. Payload and Candidate are kept
// raw so signaling content passes through untouched.
type Frame struct {
	Type         string          `json:"type"`
	Token        string          `json:"token,omitempty"`
	CallID       uuid.UUID       `json:"call_id,omitempty"`
	TargetUserID uuid.UUID       `json:"target_user_id,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Candidate    json.RawMessage `json:"candidate,omitempty"`
}

// AuthSuccessMessage confirms a successful auth frame
type AuthSuccessMessage struct {
	Type   string    `json:"type"`
	UserID uuid.UUID `json:"user_id"`
}

// AuthErrorMessage rejects an auth frame; the connection closes after it
type AuthErrorMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// HeartbeatResponseMessage answers a heartbeat frame
type HeartbeatResponseMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// SignalMessage is a relayed signaling frame, stamped with the sender
type SignalMessage struct {
	Type       string          `json:"type"`
	CallID     uuid.UUID       `json:"call_id"`
	FromUserID uuid.UUID       `json:"from_user_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Candidate  json.RawMessage `json:"candidate,omitempty"`
}

// IncomingCallMessage notifies the callee of a new ringing call
type IncomingCallMessage struct {
	Type string       `json:"type"`
	Call *domain.Call `json:"call"`
}

// CallResponseMessage notifies the caller of the callee's answer
type CallResponseMessage struct {
	Type   string       `json:"type"`
	CallID uuid.UUID    `json:"call_id"`
	Action string       `json:"action"`
	Call   *domain.Call `json:"call"`
}

// CallEndedMessage notifies a participant that the call reached a
// terminal state
type CallEndedMessage struct {
	Type   string       `json:"type"`
	CallID uuid.UUID    `json:"call_id"`
	Call   *domain.Call `json:"call"`
}

// NewMessageNotification pushes a just-sent direct message to its recipient
type NewMessageNotification struct {
	Type    string                  `json:"type"`
	Message *domain.MessageResponse `json:"message"`
}

// FriendRequestNotification pushes a new friend request to its target
type FriendRequestNotification struct {
	Type    string                        `json:"type"`
	Request *domain.FriendRequestResponse `json:"request"`
}

// FriendRequestResponseNotification tells the sender their request was answered
type FriendRequestResponseNotification struct {
	Type     string    `json:"type"`
	ByUserID uuid.UUID `json:"by_user_id"`
	Username string    `json:"username"`
	Action   string    `json:"action"`
}

// ErrorMessage reports a structured, non-fatal error on the socket
type ErrorMessage struct {
	Type   string `json:"type"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}
