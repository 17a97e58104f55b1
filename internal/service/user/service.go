package user

import (
	"context"

	"github.com/google/uuid"

	"gamerchat-backend/internal/domain"
	"gamerchat-backend/pkg/errors"
)

// UserRepository interface
type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ListActive(ctx context.Context, excludeUserID uuid.UUID, limit, offset int) ([]*domain.User, error)
	SearchByUsername(ctx context.Context, query string, excludeUserID uuid.UUID, limit int) ([]*domain.User, error)
}

// PresenceRepository interface
type PresenceRepository interface {
	IsUserOnline(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Service exposes user listing and lookup with presence annotations
type Service struct {
	userRepo     UserRepository
	presenceRepo PresenceRepository
}

// NewService creates a new user service
func NewService(userRepo UserRepository, presenceRepo PresenceRepository) *Service {
	return &Service{
		userRepo:     userRepo,
		presenceRepo: presenceRepo,
	}
}

// Get returns a single user by ID
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.UserNotFoundError()
	}
	return s.withPresence(ctx, user), nil
}

// List returns active users other than the requester, with online flags
func (s *Service) List(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]*domain.UserResponse, error) {
	users, err := s.userRepo.ListActive(ctx, requesterID, limit, offset)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	return s.annotate(ctx, users), nil
}

// Search finds users by username fragment
func (s *Service) Search(ctx context.Context, requesterID uuid.UUID, query string, limit int) ([]*domain.UserResponse, error) {
	if query == "" {
		return []*domain.UserResponse{}, nil
	}

	users, err := s.userRepo.SearchByUsername(ctx, query, requesterID, limit)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	return s.annotate(ctx, users), nil
}

func (s *Service) annotate(ctx context.Context, users []*domain.User) []*domain.UserResponse {
	responses := make([]*domain.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, s.withPresence(ctx, user))
	}
	return responses
}

func (s *Service) withPresence(ctx context.Context, user *domain.User) *domain.UserResponse {
	resp := user.ToResponse()
	// Presence is advisory; a redis failure just shows the user offline
	online, err := s.presenceRepo.IsUserOnline(ctx, user.UserID)
	if err == nil {
		resp.IsOnline = online
	}
	return resp
}
