package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gamerchat-backend/internal/domain"
	"gamerchat-backend/internal/handler/ws"
	"gamerchat-backend/pkg/constants"
	"gamerchat-backend/pkg/errors"
	"gamerchat-backend/pkg/logger"
	"gamerchat-backend/pkg/sanitize"
)

// MessageRepository interface
type MessageRepository interface {
	Save(message *domain.Message) error
	GetConversation(userA, userB uuid.UUID, limit int, pageState []byte) ([]*domain.Message, []byte, error)
	GetByID(userA, userB, messageID uuid.UUID) (*domain.Message, error)
	UpdateContent(userA, userB, messageID uuid.UUID, content string) error
	Delete(userA, userB, messageID uuid.UUID) error
}

// UserRepository interface
type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// ContactPolicy decides whether two users may message each other.
// Implemented by the friend service (friendship plus block checks).
type ContactPolicy interface {
	CanContact(ctx context.Context, userA, userB uuid.UUID) error
}

// Notifier pushes notifications to connected users
type Notifier interface {
	Push(userID uuid.UUID, message any) bool
}

// Service handles direct messages between friends
type Service struct {
	messageRepo MessageRepository
	userRepo    UserRepository
	policy      ContactPolicy
	notifier    Notifier
}

// NewService creates a new chat service
func NewService(messageRepo MessageRepository, userRepo UserRepository, policy ContactPolicy, notifier Notifier) *Service {
	return &Service{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		policy:      policy,
		notifier:    notifier,
	}
}

// Send stores a message and notifies the recipient if connected.
// Content beyond the length cap is truncated, not rejected.
func (s *Service) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*domain.Message, error) {
	if senderID == receiverID {
		return nil, errors.ValidationError("You cannot message yourself")
	}

	content = sanitize.Message(content)
	if content == "" {
		return nil, errors.ValidationError("Message content is required")
	}

	if err := s.policy.CanContact(ctx, senderID, receiverID); err != nil {
		return nil, err
	}

	message := &domain.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    truncate(content, constants.MaxMessageLength),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.messageRepo.Save(message); err != nil {
		return nil, errors.DatabaseError(err)
	}

	senderName := ""
	if sender, err := s.userRepo.GetByID(ctx, senderID); err == nil {
		senderName = sender.Username
	}

	s.notifier.Push(receiverID, &ws.NewMessageNotification{
		Type: ws.MessageTypeNewMessage,
		Message: &domain.MessageResponse{
			Message:    *message,
			SenderName: senderName,
		},
	})

	logger.Debug("Message sent",
		zap.String("sender_id", senderID.String()),
		zap.String("receiver_id", receiverID.String()))

	return message, nil
}

// GetConversation returns messages between two users, newest first,
// with an opaque cursor for older pages
func (s *Service) GetConversation(ctx context.Context, userID, peerID uuid.UUID, limit int, pageState []byte) ([]*domain.Message, []byte, error) {
	if err := s.policy.CanContact(ctx, userID, peerID); err != nil {
		return nil, nil, err
	}

	messages, nextPage, err := s.messageRepo.GetConversation(userID, peerID, limit, pageState)
	if err != nil {
		return nil, nil, errors.DatabaseError(err)
	}

	return messages, nextPage, nil
}

// Edit replaces a message's content. Only the sender may edit.
func (s *Service) Edit(ctx context.Context, editorID, peerID, messageID uuid.UUID, content string) (*domain.Message, error) {
	content = sanitize.Message(content)
	if content == "" {
		return nil, errors.ValidationError("Message content is required")
	}

	message, err := s.messageRepo.GetByID(editorID, peerID, messageID)
	if err != nil {
		return nil, errors.NotFoundError("Message")
	}
	if message.SenderID != editorID {
		return nil, errors.ForbiddenError("You can only edit your own messages")
	}

	content = truncate(content, constants.MaxMessageLength)
	if err := s.messageRepo.UpdateContent(editorID, peerID, messageID, content); err != nil {
		return nil, errors.DatabaseError(err)
	}

	now := time.Now().UTC()
	message.Content = content
	message.Edited = true
	message.EditedAt = &now

	return message, nil
}

// Delete removes a message. Only the sender may delete.
func (s *Service) Delete(ctx context.Context, requesterID, peerID, messageID uuid.UUID) error {
	message, err := s.messageRepo.GetByID(requesterID, peerID, messageID)
	if err != nil {
		return errors.NotFoundError("Message")
	}
	if message.SenderID != requesterID {
		return errors.ForbiddenError("You can only delete your own messages")
	}

	if err := s.messageRepo.Delete(requesterID, peerID, messageID); err != nil {
		return errors.DatabaseError(err)
	}

	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Cut on a rune boundary
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
