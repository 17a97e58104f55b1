package cassandra

import (
	"fmt"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"gamerchat-backend/internal/domain"
)

// MessageRepository handles direct message storage in Cassandra.
// Messages partition on the canonical conversation key (the two user
// IDs sorted and joined), with a TIMEUUID clustering column ordered
// descending so recent history reads are a single-partition scan.
type MessageRepository struct {
	session *gocql.Session
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(session *gocql.Session) *MessageRepository {
	return &MessageRepository{session: session}
}

// Save inserts a new message
func (r *MessageRepository) Save(message *domain.Message) error {
	if message.MessageID == uuid.Nil {
		message.MessageID = uuid.UUID(gocql.TimeUUID())
	}

	conversationKey := domain.ConversationKey(message.SenderID, message.ReceiverID)

	query := `
		INSERT INTO messages (
			conversation_key, message_id, sender_id, receiver_id,
			content, edited, edited_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := r.session.Query(query,
		conversationKey,
		message.MessageID,
		message.SenderID,
		message.ReceiverID,
		message.Content,
		message.Edited,
		message.EditedAt,
		message.CreatedAt,
	).Exec()

	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	return nil
}

// GetConversation retrieves messages between two users, newest first,
// with cursor-based pagination via Cassandra page state
func (r *MessageRepository) GetConversation(userA, userB uuid.UUID, limit int, pageState []byte) ([]*domain.Message, []byte, error) {
	conversationKey := domain.ConversationKey(userA, userB)

	query := `
		SELECT message_id, sender_id, receiver_id, content, edited, edited_at, created_at
		FROM messages
		WHERE conversation_key = ?
		LIMIT ?
	`

	iter := r.session.Query(query, conversationKey, limit).PageState(pageState).Iter()

	var messages []*domain.Message
	for {
		message := &domain.Message{}
		if !iter.Scan(
			&message.MessageID,
			&message.SenderID,
			&message.ReceiverID,
			&message.Content,
			&message.Edited,
			&message.EditedAt,
			&message.CreatedAt,
		) {
			break
		}
		messages = append(messages, message)
	}

	nextPageState := iter.PageState()

	if err := iter.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	return messages, nextPageState, nil
}

// GetByID retrieves a specific message in a conversation
func (r *MessageRepository) GetByID(userA, userB, messageID uuid.UUID) (*domain.Message, error) {
	conversationKey := domain.ConversationKey(userA, userB)

	query := `
		SELECT message_id, sender_id, receiver_id, content, edited, edited_at, created_at
		FROM messages
		WHERE conversation_key = ? AND message_id = ?
		LIMIT 1
	`

	message := &domain.Message{}
	err := r.session.Query(query, conversationKey, messageID).Scan(
		&message.MessageID,
		&message.SenderID,
		&message.ReceiverID,
		&message.Content,
		&message.Edited,
		&message.EditedAt,
		&message.CreatedAt,
	)

	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, fmt.Errorf("message not found")
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return message, nil
}

// UpdateContent edits a message's content in place
func (r *MessageRepository) UpdateContent(userA, userB, messageID uuid.UUID, content string) error {
	conversationKey := domain.ConversationKey(userA, userB)

	query := `
		UPDATE messages
		SET content = ?, edited = true, edited_at = toTimestamp(now())
		WHERE conversation_key = ? AND message_id = ?
	`

	err := r.session.Query(query, content, conversationKey, messageID).Exec()
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}

	return nil
}

// Delete removes a message from a conversation
func (r *MessageRepository) Delete(userA, userB, messageID uuid.UUID) error {
	conversationKey := domain.ConversationKey(userA, userB)

	query := `DELETE FROM messages WHERE conversation_key = ? AND message_id = ?`

	err := r.session.Query(query, conversationKey, messageID).Exec()
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}
