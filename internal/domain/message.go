package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents a direct message between two users
// Maps to Cassandra messages table, partitioned by conversation key
type Message struct {
	MessageID  uuid.UUID  `json:"id" cql:"message_id"`
	SenderID   uuid.UUID  `json:"sender_id" cql:"sender_id"`
	ReceiverID uuid.UUID  `json:"receiver_id" cql:"receiver_id"`
	Content    string     `json:"content" cql:"content"`
	Edited     bool       `json:"edited" cql:"edited"`
	EditedAt   *time.Time `json:"edited_at,omitempty" cql:"edited_at"`
	CreatedAt  time.Time  `json:"timestamp" cql:"created_at"`
}

// MessageResponse is the message representation returned to clients,
// enriched with the sender's display name
type MessageResponse struct {
	Message
	SenderName string `json:"sender_name"`
}

// ConversationKey returns the canonical partition key for a DM pair.
// Both directions of a conversation map to the same key.
func ConversationKey(a, b uuid.UUID) string {
	sa, sb := a.String(), b.String()
	if sa < sb {
		return sa + ":" + sb
	}
	return sb + ":" + sa
}
