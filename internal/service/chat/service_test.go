package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gamerchat-backend/internal/domain"
	"gamerchat-backend/internal/handler/ws"
	"gamerchat-backend/pkg/constants"
	"gamerchat-backend/pkg/errors"
)

// MockMessageRepository is a mock implementation of MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Save(message *domain.Message) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *MockMessageRepository) GetConversation(userA, userB uuid.UUID, limit int, pageState []byte) ([]*domain.Message, []byte, error) {
	args := m.Called(userA, userB, limit, pageState)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var next []byte
	if args.Get(1) != nil {
		next = args.Get(1).([]byte)
	}
	return args.Get(0).([]*domain.Message), next, args.Error(2)
}

func (m *MockMessageRepository) GetByID(userA, userB, messageID uuid.UUID) (*domain.Message, error) {
	args := m.Called(userA, userB, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) UpdateContent(userA, userB, messageID uuid.UUID, content string) error {
	args := m.Called(userA, userB, messageID, content)
	return args.Error(0)
}

func (m *MockMessageRepository) Delete(userA, userB, messageID uuid.UUID) error {
	args := m.Called(userA, userB, messageID)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// stubPolicy allows or forbids all contact
type stubPolicy struct {
	err error
}

func (p *stubPolicy) CanContact(ctx context.Context, userA, userB uuid.UUID) error {
	return p.err
}

// recordingNotifier captures pushed notifications
type recordingNotifier struct {
	pushes []any
}

func (n *recordingNotifier) Push(userID uuid.UUID, message any) bool {
	n.pushes = append(n.pushes, message)
	return true
}

func TestSend(t *testing.T) {
	ctx := context.Background()
	sender := uuid.New()
	receiver := uuid.New()

	senderUser := &domain.User{UserID: sender, Username: "proplayer"}

	t.Run("stores and notifies", func(t *testing.T) {
		messageRepo := new(MockMessageRepository)
		userRepo := new(MockUserRepository)
		notifier := &recordingNotifier{}
		svc := NewService(messageRepo, userRepo, &stubPolicy{}, notifier)

		messageRepo.On("Save", mock.AnythingOfType("*domain.Message")).Return(nil)
		userRepo.On("GetByID", ctx, sender).Return(senderUser, nil)

		message, err := svc.Send(ctx, sender, receiver, "gg wp")
		require.NoError(t, err)
		assert.Equal(t, "gg wp", message.Content)
		assert.Equal(t, sender, message.SenderID)

		require.Len(t, notifier.pushes, 1)
		notification := notifier.pushes[0].(*ws.NewMessageNotification)
		assert.Equal(t, ws.MessageTypeNewMessage, notification.Type)
		assert.Equal(t, "proplayer", notification.Message.SenderName)
	})

	t.Run("truncates long content", func(t *testing.T) {
		messageRepo := new(MockMessageRepository)
		userRepo := new(MockUserRepository)
		svc := NewService(messageRepo, userRepo, &stubPolicy{}, &recordingNotifier{})

		messageRepo.On("Save", mock.AnythingOfType("*domain.Message")).Return(nil)
		userRepo.On("GetByID", ctx, sender).Return(senderUser, nil)

		long := strings.Repeat("a", constants.MaxMessageLength+500)
		message, err := svc.Send(ctx, sender, receiver, long)
		require.NoError(t, err)
		assert.Len(t, message.Content, constants.MaxMessageLength)
	})

	t.Run("policy refusal propagates", func(t *testing.T) {
		svc := NewService(new(MockMessageRepository), new(MockUserRepository),
			&stubPolicy{err: errors.ForbiddenError("You can only contact friends")}, &recordingNotifier{})

		_, err := svc.Send(ctx, sender, receiver, "hey")
		assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))
	})

	t.Run("rejects self and empty messages", func(t *testing.T) {
		svc := NewService(new(MockMessageRepository), new(MockUserRepository), &stubPolicy{}, &recordingNotifier{})

		_, err := svc.Send(ctx, sender, sender, "hi me")
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))

		_, err = svc.Send(ctx, sender, receiver, "")
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	})
}

func TestEdit(t *testing.T) {
	ctx := context.Background()
	sender := uuid.New()
	peer := uuid.New()
	messageID := uuid.New()

	stored := &domain.Message{
		MessageID:  messageID,
		SenderID:   sender,
		ReceiverID: peer,
		Content:    "original",
	}

	t.Run("sender edits own message", func(t *testing.T) {
		messageRepo := new(MockMessageRepository)
		svc := NewService(messageRepo, new(MockUserRepository), &stubPolicy{}, &recordingNotifier{})

		messageRepo.On("GetByID", sender, peer, messageID).Return(stored, nil)
		messageRepo.On("UpdateContent", sender, peer, messageID, "edited").Return(nil)

		edited, err := svc.Edit(ctx, sender, peer, messageID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", edited.Content)
		assert.True(t, edited.Edited)
		assert.NotNil(t, edited.EditedAt)
	})

	t.Run("recipient cannot edit", func(t *testing.T) {
		messageRepo := new(MockMessageRepository)
		svc := NewService(messageRepo, new(MockUserRepository), &stubPolicy{}, &recordingNotifier{})

		messageRepo.On("GetByID", peer, sender, messageID).Return(stored, nil)

		_, err := svc.Edit(ctx, peer, sender, messageID, "hijacked")
		assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	sender := uuid.New()
	peer := uuid.New()
	messageID := uuid.New()

	stored := &domain.Message{
		MessageID:  messageID,
		SenderID:   sender,
		ReceiverID: peer,
	}

	t.Run("sender deletes own message", func(t *testing.T) {
		messageRepo := new(MockMessageRepository)
		svc := NewService(messageRepo, new(MockUserRepository), &stubPolicy{}, &recordingNotifier{})

		messageRepo.On("GetByID", sender, peer, messageID).Return(stored, nil)
		messageRepo.On("Delete", sender, peer, messageID).Return(nil)

		require.NoError(t, svc.Delete(ctx, sender, peer, messageID))
		messageRepo.AssertExpectations(t)
	})

	t.Run("recipient cannot delete", func(t *testing.T) {
		messageRepo := new(MockMessageRepository)
		svc := NewService(messageRepo, new(MockUserRepository), &stubPolicy{}, &recordingNotifier{})

		messageRepo.On("GetByID", peer, sender, messageID).Return(stored, nil)

		err := svc.Delete(ctx, peer, sender, messageID)
		assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))
	})
}

func TestGetConversation(t *testing.T) {
	ctx := context.Background()
	userA := uuid.New()
	userB := uuid.New()

	t.Run("returns messages and cursor", func(t *testing.T) {
		messageRepo := new(MockMessageRepository)
		svc := NewService(messageRepo, new(MockUserRepository), &stubPolicy{}, &recordingNotifier{})

		stored := []*domain.Message{
			{MessageID: uuid.New(), SenderID: userA, ReceiverID: userB, Content: "newer"},
			{MessageID: uuid.New(), SenderID: userB, ReceiverID: userA, Content: "older"},
		}
		messageRepo.On("GetConversation", userA, userB, 50, []byte(nil)).Return(stored, []byte("cursor"), nil)

		messages, next, err := svc.GetConversation(ctx, userA, userB, 50, nil)
		require.NoError(t, err)
		assert.Len(t, messages, 2)
		assert.Equal(t, []byte("cursor"), next)
	})

	t.Run("policy refusal propagates", func(t *testing.T) {
		svc := NewService(new(MockMessageRepository), new(MockUserRepository),
			&stubPolicy{err: errors.ForbiddenError("You can only contact friends")}, &recordingNotifier{})

		_, _, err := svc.GetConversation(ctx, userA, userB, 50, nil)
		assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))
	})
}
