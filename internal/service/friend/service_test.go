package friend

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gamerchat-backend/internal/domain"
	"gamerchat-backend/internal/handler/ws"
	"gamerchat-backend/pkg/errors"
)

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

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, userIDs []uuid.UUID) ([]*domain.User, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// MockFriendshipRepository is a mock implementation of FriendshipRepository
type MockFriendshipRepository struct {
	mock.Mock
}

func (m *MockFriendshipRepository) CreateRequest(ctx context.Context, req *domain.FriendRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockFriendshipRepository) GetRequest(ctx context.Context, requestID uuid.UUID) (*domain.FriendRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendshipRepository) GetPendingRequests(ctx context.Context, userID uuid.UUID) ([]*domain.FriendRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendshipRepository) RequestExists(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendshipRepository) DeleteRequest(ctx context.Context, requestID uuid.UUID) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *MockFriendshipRepository) CreateFriendship(ctx context.Context, userA, userB uuid.UUID) error {
	args := m.Called(ctx, userA, userB)
	return args.Error(0)
}

func (m *MockFriendshipRepository) AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendshipRepository) GetFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockFriendshipRepository) RemoveFriendship(ctx context.Context, userA, userB uuid.UUID) error {
	args := m.Called(ctx, userA, userB)
	return args.Error(0)
}

// MockBlockedUserRepository is a mock implementation of BlockedUserRepository
type MockBlockedUserRepository struct {
	mock.Mock
}

func (m *MockBlockedUserRepository) BlockUser(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Error(0)
}

func (m *MockBlockedUserRepository) UnblockUser(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	args := m.Called(ctx, blockerID, blockedID)
	return args.Error(0)
}

func (m *MockBlockedUserRepository) IsBlockedEither(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

// stubPresence reports everyone offline
type stubPresence struct{}

func (stubPresence) IsUserOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	return false, nil
}

// recordingNotifier captures pushed notifications
type recordingNotifier struct {
	pushes []any
}

func (n *recordingNotifier) Push(userID uuid.UUID, message any) bool {
	n.pushes = append(n.pushes, message)
	return true
}

type fixture struct {
	userRepo    *MockUserRepository
	friendRepo  *MockFriendshipRepository
	blockedRepo *MockBlockedUserRepository
	notifier    *recordingNotifier
	svc         *Service
}

func newFixture() *fixture {
	f := &fixture{
		userRepo:    new(MockUserRepository),
		friendRepo:  new(MockFriendshipRepository),
		blockedRepo: new(MockBlockedUserRepository),
		notifier:    &recordingNotifier{},
	}
	f.svc = NewService(f.userRepo, f.friendRepo, f.blockedRepo, stubPresence{}, f.notifier)
	return f
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()
	alice := &domain.User{UserID: uuid.New(), Username: "alice"}
	bob := &domain.User{UserID: uuid.New(), Username: "bob"}

	t.Run("creates request and notifies target", func(t *testing.T) {
		f := newFixture()
		f.userRepo.On("GetByUsername", ctx, "bob").Return(bob, nil)
		f.blockedRepo.On("IsBlockedEither", ctx, alice.UserID, bob.UserID).Return(false, nil)
		f.friendRepo.On("AreFriends", ctx, alice.UserID, bob.UserID).Return(false, nil)
		f.friendRepo.On("RequestExists", ctx, alice.UserID, bob.UserID).Return(false, nil)
		f.friendRepo.On("CreateRequest", ctx, mock.AnythingOfType("*domain.FriendRequest")).Return(nil)
		f.userRepo.On("GetByID", ctx, alice.UserID).Return(alice, nil)

		req, err := f.svc.SendRequest(ctx, alice.UserID, "bob")
		require.NoError(t, err)
		assert.Equal(t, alice.UserID, req.FromUserID)
		assert.Equal(t, bob.UserID, req.ToUserID)

		require.Len(t, f.notifier.pushes, 1)
		notification := f.notifier.pushes[0].(*ws.FriendRequestNotification)
		assert.Equal(t, "alice", notification.Request.FromUser.Username)
	})

	t.Run("rejects self", func(t *testing.T) {
		f := newFixture()
		f.userRepo.On("GetByUsername", ctx, "alice").Return(alice, nil)

		_, err := f.svc.SendRequest(ctx, alice.UserID, "alice")
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	})

	t.Run("block looks like missing user", func(t *testing.T) {
		f := newFixture()
		f.userRepo.On("GetByUsername", ctx, "bob").Return(bob, nil)
		f.blockedRepo.On("IsBlockedEither", ctx, alice.UserID, bob.UserID).Return(true, nil)

		_, err := f.svc.SendRequest(ctx, alice.UserID, "bob")
		assert.True(t, errors.HasCode(err, errors.ErrCodeUserNotFound))
		assert.Empty(t, f.notifier.pushes)
	})

	t.Run("conflicts when already friends", func(t *testing.T) {
		f := newFixture()
		f.userRepo.On("GetByUsername", ctx, "bob").Return(bob, nil)
		f.blockedRepo.On("IsBlockedEither", ctx, alice.UserID, bob.UserID).Return(false, nil)
		f.friendRepo.On("AreFriends", ctx, alice.UserID, bob.UserID).Return(true, nil)

		_, err := f.svc.SendRequest(ctx, alice.UserID, "bob")
		assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))
	})

	t.Run("conflicts when a request is pending", func(t *testing.T) {
		f := newFixture()
		f.userRepo.On("GetByUsername", ctx, "bob").Return(bob, nil)
		f.blockedRepo.On("IsBlockedEither", ctx, alice.UserID, bob.UserID).Return(false, nil)
		f.friendRepo.On("AreFriends", ctx, alice.UserID, bob.UserID).Return(false, nil)
		f.friendRepo.On("RequestExists", ctx, alice.UserID, bob.UserID).Return(true, nil)

		_, err := f.svc.SendRequest(ctx, alice.UserID, "bob")
		assert.True(t, errors.HasCode(err, errors.ErrCodeConflict))
	})
}

func TestRespond(t *testing.T) {
	ctx := context.Background()
	alice := &domain.User{UserID: uuid.New(), Username: "alice"}
	bob := &domain.User{UserID: uuid.New(), Username: "bob"}
	req := &domain.FriendRequest{
		RequestID:  uuid.New(),
		FromUserID: alice.UserID,
		ToUserID:   bob.UserID,
	}

	t.Run("accept creates friendship and consumes request", func(t *testing.T) {
		f := newFixture()
		f.friendRepo.On("GetRequest", ctx, req.RequestID).Return(req, nil)
		f.friendRepo.On("CreateFriendship", ctx, alice.UserID, bob.UserID).Return(nil)
		f.friendRepo.On("DeleteRequest", ctx, req.RequestID).Return(nil)
		f.userRepo.On("GetByID", ctx, bob.UserID).Return(bob, nil)

		require.NoError(t, f.svc.Respond(ctx, req.RequestID, bob.UserID, true))
		f.friendRepo.AssertExpectations(t)

		require.Len(t, f.notifier.pushes, 1)
		notification := f.notifier.pushes[0].(*ws.FriendRequestResponseNotification)
		assert.Equal(t, "accepted", notification.Action)
		assert.Equal(t, bob.UserID, notification.ByUserID)
	})

	t.Run("reject consumes request without friendship", func(t *testing.T) {
		f := newFixture()
		f.friendRepo.On("GetRequest", ctx, req.RequestID).Return(req, nil)
		f.friendRepo.On("DeleteRequest", ctx, req.RequestID).Return(nil)
		f.userRepo.On("GetByID", ctx, bob.UserID).Return(bob, nil)

		require.NoError(t, f.svc.Respond(ctx, req.RequestID, bob.UserID, false))
		f.friendRepo.AssertNotCalled(t, "CreateFriendship", mock.Anything, mock.Anything, mock.Anything)

		require.Len(t, f.notifier.pushes, 1)
		notification := f.notifier.pushes[0].(*ws.FriendRequestResponseNotification)
		assert.Equal(t, "rejected", notification.Action)
	})

	t.Run("only the addressee may respond", func(t *testing.T) {
		f := newFixture()
		f.friendRepo.On("GetRequest", ctx, req.RequestID).Return(req, nil)

		err := f.svc.Respond(ctx, req.RequestID, alice.UserID, true)
		assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))
		f.friendRepo.AssertNotCalled(t, "DeleteRequest", mock.Anything, mock.Anything)
	})
}

func TestBlock(t *testing.T) {
	ctx := context.Background()
	alice := &domain.User{UserID: uuid.New(), Username: "alice"}
	bob := &domain.User{UserID: uuid.New(), Username: "bob"}

	t.Run("blocks and severs friendship", func(t *testing.T) {
		f := newFixture()
		f.userRepo.On("GetByID", ctx, bob.UserID).Return(bob, nil)
		f.blockedRepo.On("BlockUser", ctx, alice.UserID, bob.UserID).Return(nil)
		f.friendRepo.On("RemoveFriendship", ctx, alice.UserID, bob.UserID).Return(nil)

		require.NoError(t, f.svc.Block(ctx, alice.UserID, bob.UserID))
		f.blockedRepo.AssertExpectations(t)
		f.friendRepo.AssertExpectations(t)
	})

	t.Run("rejects blocking yourself", func(t *testing.T) {
		f := newFixture()
		err := f.svc.Block(ctx, alice.UserID, alice.UserID)
		assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	})
}

func TestCanContact(t *testing.T) {
	ctx := context.Background()
	userA := uuid.New()
	userB := uuid.New()

	t.Run("allows friends with no block", func(t *testing.T) {
		f := newFixture()
		f.blockedRepo.On("IsBlockedEither", ctx, userA, userB).Return(false, nil)
		f.friendRepo.On("AreFriends", ctx, userA, userB).Return(true, nil)

		assert.NoError(t, f.svc.CanContact(ctx, userA, userB))
	})

	t.Run("forbids blocked pairs", func(t *testing.T) {
		f := newFixture()
		f.blockedRepo.On("IsBlockedEither", ctx, userA, userB).Return(true, nil)

		err := f.svc.CanContact(ctx, userA, userB)
		assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))
	})

	t.Run("forbids non-friends", func(t *testing.T) {
		f := newFixture()
		f.blockedRepo.On("IsBlockedEither", ctx, userA, userB).Return(false, nil)
		f.friendRepo.On("AreFriends", ctx, userA, userB).Return(false, nil)

		err := f.svc.CanContact(ctx, userA, userB)
		assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))
	})
}

func TestListPending(t *testing.T) {
	ctx := context.Background()
	alice := &domain.User{UserID: uuid.New(), Username: "alice"}
	bob := &domain.User{UserID: uuid.New(), Username: "bob"}
	req := &domain.FriendRequest{
		RequestID:  uuid.New(),
		FromUserID: alice.UserID,
		ToUserID:   bob.UserID,
	}

	f := newFixture()
	f.friendRepo.On("GetPendingRequests", ctx, bob.UserID).Return([]*domain.FriendRequest{req}, nil)
	f.userRepo.On("GetByIDs", ctx, []uuid.UUID{alice.UserID}).Return([]*domain.User{alice}, nil)

	pending, err := f.svc.ListPending(ctx, bob.UserID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, req.RequestID, pending[0].RequestID)
	require.NotNil(t, pending[0].FromUser)
	assert.Equal(t, "alice", pending[0].FromUser.Username)
}
