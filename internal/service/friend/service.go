package friend

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gamerchat-backend/internal/domain"
	"gamerchat-backend/internal/handler/ws"
	"gamerchat-backend/pkg/errors"
	"gamerchat-backend/pkg/logger"
)

// UserRepository interface
type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByIDs(ctx context.Context, userIDs []uuid.UUID) ([]*domain.User, error)
}

// FriendshipRepository interface
type FriendshipRepository interface {
	CreateRequest(ctx context.Context, req *domain.FriendRequest) error
	GetRequest(ctx context.Context, requestID uuid.UUID) (*domain.FriendRequest, error)
	GetPendingRequests(ctx context.Context, userID uuid.UUID) ([]*domain.FriendRequest, error)
	RequestExists(ctx context.Context, userA, userB uuid.UUID) (bool, error)
	DeleteRequest(ctx context.Context, requestID uuid.UUID) error
	CreateFriendship(ctx context.Context, userA, userB uuid.UUID) error
	AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error)
	GetFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	RemoveFriendship(ctx context.Context, userA, userB uuid.UUID) error
}

// BlockedUserRepository interface
type BlockedUserRepository interface {
	BlockUser(ctx context.Context, blockerID, blockedID uuid.UUID) error
	UnblockUser(ctx context.Context, blockerID, blockedID uuid.UUID) error
	IsBlockedEither(ctx context.Context, userA, userB uuid.UUID) (bool, error)
}

// PresenceRepository interface
type PresenceRepository interface {
	IsUserOnline(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Notifier pushes notifications to connected users
type Notifier interface {
	Push(userID uuid.UUID, message any) bool
}

// Service handles friend requests, friendships and blocks
type Service struct {
	userRepo    UserRepository
	friendRepo  FriendshipRepository
	blockedRepo BlockedUserRepository
	presence    PresenceRepository
	notifier    Notifier
}

// NewService creates a new friend service
func NewService(userRepo UserRepository, friendRepo FriendshipRepository, blockedRepo BlockedUserRepository, presence PresenceRepository, notifier Notifier) *Service {
	return &Service{
		userRepo:    userRepo,
		friendRepo:  friendRepo,
		blockedRepo: blockedRepo,
		presence:    presence,
		notifier:    notifier,
	}
}

// SendRequest creates a friend request addressed by username
func (s *Service) SendRequest(ctx context.Context, fromUserID uuid.UUID, toUsername string) (*domain.FriendRequest, error) {
	target, err := s.userRepo.GetByUsername(ctx, toUsername)
	if err != nil {
		return nil, errors.UserNotFoundError()
	}

	if target.UserID == fromUserID {
		return nil, errors.ValidationError("You cannot add yourself as a friend")
	}

	blocked, err := s.blockedRepo.IsBlockedEither(ctx, fromUserID, target.UserID)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if blocked {
		// Do not reveal the block; behave as if the user does not exist
		return nil, errors.UserNotFoundError()
	}

	friends, err := s.friendRepo.AreFriends(ctx, fromUserID, target.UserID)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if friends {
		return nil, errors.ConflictError("You are already friends")
	}

	pending, err := s.friendRepo.RequestExists(ctx, fromUserID, target.UserID)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if pending {
		return nil, errors.ConflictError("A friend request is already pending")
	}

	req := &domain.FriendRequest{
		RequestID:  uuid.New(),
		FromUserID: fromUserID,
		ToUserID:   target.UserID,
	}
	if err := s.friendRepo.CreateRequest(ctx, req); err != nil {
		return nil, errors.DatabaseError(err)
	}

	if sender, err := s.userRepo.GetByID(ctx, fromUserID); err == nil {
		s.notifier.Push(target.UserID, &ws.FriendRequestNotification{
			Type: ws.MessageTypeFriendRequest,
			Request: &domain.FriendRequestResponse{
				FriendRequest: *req,
				FromUser:      sender.ToResponse(),
			},
		})
	}

	logger.Info("Friend request sent",
		zap.String("from_user_id", fromUserID.String()),
		zap.String("to_user_id", target.UserID.String()))

	return req, nil
}

// Respond accepts or rejects a pending friend request. Only the
// addressee may respond; either way the request is consumed.
func (s *Service) Respond(ctx context.Context, requestID, responderID uuid.UUID, accept bool) error {
	req, err := s.friendRepo.GetRequest(ctx, requestID)
	if err != nil {
		return errors.NotFoundError("Friend request")
	}

	if req.ToUserID != responderID {
		return errors.ForbiddenError("This friend request is not addressed to you")
	}

	if accept {
		if err := s.friendRepo.CreateFriendship(ctx, req.FromUserID, req.ToUserID); err != nil {
			return errors.DatabaseError(err)
		}
	}

	if err := s.friendRepo.DeleteRequest(ctx, requestID); err != nil {
		logger.Warn("Failed to delete consumed friend request",
			zap.String("request_id", requestID.String()),
			zap.Error(err))
	}

	action := "rejected"
	if accept {
		action = "accepted"
	}

	if responder, err := s.userRepo.GetByID(ctx, responderID); err == nil {
		s.notifier.Push(req.FromUserID, &ws.FriendRequestResponseNotification{
			Type:     ws.MessageTypeFriendRequestResponse,
			ByUserID: responderID,
			Username: responder.Username,
			Action:   action,
		})
	}

	logger.Info("Friend request answered",
		zap.String("request_id", requestID.String()),
		zap.String("action", action))

	return nil
}

// ListPending returns requests addressed to the user, with sender info
func (s *Service) ListPending(ctx context.Context, userID uuid.UUID) ([]*domain.FriendRequestResponse, error) {
	requests, err := s.friendRepo.GetPendingRequests(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}

	senderIDs := make([]uuid.UUID, 0, len(requests))
	for _, req := range requests {
		senderIDs = append(senderIDs, req.FromUserID)
	}

	senders, err := s.userRepo.GetByIDs(ctx, senderIDs)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	sendersByID := make(map[uuid.UUID]*domain.User, len(senders))
	for _, sender := range senders {
		sendersByID[sender.UserID] = sender
	}

	responses := make([]*domain.FriendRequestResponse, 0, len(requests))
	for _, req := range requests {
		resp := &domain.FriendRequestResponse{FriendRequest: *req}
		if sender, ok := sendersByID[req.FromUserID]; ok {
			resp.FromUser = sender.ToResponse()
		}
		responses = append(responses, resp)
	}

	return responses, nil
}

// ListFriends returns the user's friends with presence flags
func (s *Service) ListFriends(ctx context.Context, userID uuid.UUID) ([]*domain.UserResponse, error) {
	friendIDs, err := s.friendRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}

	friends, err := s.userRepo.GetByIDs(ctx, friendIDs)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}

	responses := make([]*domain.UserResponse, 0, len(friends))
	for _, friend := range friends {
		resp := friend.ToResponse()
		if online, err := s.presence.IsUserOnline(ctx, friend.UserID); err == nil {
			resp.IsOnline = online
		}
		responses = append(responses, resp)
	}

	return responses, nil
}

// RemoveFriend deletes a friendship
func (s *Service) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	if err := s.friendRepo.RemoveFriendship(ctx, userID, friendID); err != nil {
		return errors.NotFoundError("Friendship")
	}
	return nil
}

// Block blocks another user and severs the friendship if one exists
func (s *Service) Block(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if blockerID == blockedID {
		return errors.ValidationError("You cannot block yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, blockedID); err != nil {
		return errors.UserNotFoundError()
	}

	if err := s.blockedRepo.BlockUser(ctx, blockerID, blockedID); err != nil {
		return errors.DatabaseError(err)
	}

	// Blocking removes any existing friendship; ignore absence
	if err := s.friendRepo.RemoveFriendship(ctx, blockerID, blockedID); err != nil {
		logger.Debug("No friendship to sever on block",
			zap.String("blocker_id", blockerID.String()),
			zap.String("blocked_id", blockedID.String()))
	}

	return nil
}

// Unblock removes a block
func (s *Service) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if err := s.blockedRepo.UnblockUser(ctx, blockerID, blockedID); err != nil {
		return errors.NotFoundError("Block")
	}
	return nil
}

// CanContact reports whether two users are friends with no block in
// either direction. Chat and call endpoints gate on this.
func (s *Service) CanContact(ctx context.Context, userA, userB uuid.UUID) error {
	blocked, err := s.blockedRepo.IsBlockedEither(ctx, userA, userB)
	if err != nil {
		return errors.DatabaseError(err)
	}
	if blocked {
		return errors.ForbiddenError("You cannot contact this user")
	}

	friends, err := s.friendRepo.AreFriends(ctx, userA, userB)
	if err != nil {
		return errors.DatabaseError(err)
	}
	if !friends {
		return errors.ForbiddenError("You can only contact friends")
	}

	return nil
}
