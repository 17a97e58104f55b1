package domain

import (
	"time"

	"github.com/google/uuid"
)

// Call represents a voice/video call between exactly two users.
// The in-memory call table owned by the call manager is the source of
// truth; terminal records are also persisted for history queries.
type Call struct {
	CallID      uuid.UUID  `json:"call_id"`
	CallerID    uuid.UUID  `json:"caller_id"`
	CalleeID    uuid.UUID  `json:"callee_id"`
	Kind        string     `json:"kind"`   // voice, video
	Status      string     `json:"status"` // ringing, accepted, rejected, ended, missed
	CreatedAt   time.Time  `json:"created_at"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	Duration    int        `json:"duration"` // seconds, meaningful only once terminal
}

// IsTerminal reports whether the call has reached a final state
func (c *Call) IsTerminal() bool {
	switch c.Status {
	case "rejected", "ended", "missed":
		return true
	}
	return false
}

// HasParticipant reports whether the given user is the caller or callee
func (c *Call) HasParticipant(userID uuid.UUID) bool {
	return c.CallerID == userID || c.CalleeID == userID
}

// OtherParticipant returns the peer of the given participant.
// Callers must check HasParticipant first.
func (c *Call) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.CallerID == userID {
		return c.CalleeID
	}
	return c.CallerID
}
