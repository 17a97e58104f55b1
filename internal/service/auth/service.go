package auth

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gamerchat-backend/internal/domain"
	"gamerchat-backend/internal/repository/redis"
	"gamerchat-backend/pkg/constants"
	"gamerchat-backend/pkg/errors"
	"gamerchat-backend/pkg/jwt"
	"gamerchat-backend/pkg/logger"
	"gamerchat-backend/pkg/password"
	"gamerchat-backend/pkg/sanitize"
)

// UserRepository interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// SessionRepository interface
type SessionRepository interface {
	CreateSession(ctx context.Context, session *redis.Session, ttl time.Duration) error
	SessionExists(ctx context.Context, sessionID string) (bool, error)
	DeleteSession(ctx context.Context, sessionID string, userID uuid.UUID) error
	DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error
}

// Service handles authentication business logic. Every issued token is
// backed by a redis session keyed on the token's jti claim; deleting
// the session revokes the token for both REST and WebSocket auth.
type Service struct {
	userRepo    UserRepository
	sessionRepo SessionRepository
	jwtManager  *jwt.Manager
}

// NewService creates a new auth service
func NewService(userRepo UserRepository, sessionRepo SessionRepository, jwtManager *jwt.Manager) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtManager:  jwtManager,
	}
}

// RegisterInput contains user registration data
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// AuthOutput contains the result of register/login
type AuthOutput struct {
	User  *domain.UserResponse
	Token string
}

// Register creates a new user account and logs it in
func (s *Service) Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	input.Email = sanitize.Email(input.Email)
	input.Username = sanitize.Username(input.Username)

	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	emailExists, err := s.userRepo.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if emailExists {
		return nil, errors.EmailExistsError()
	}

	usernameExists, err := s.userRepo.UsernameExists(ctx, input.Username)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if usernameExists {
		return nil, errors.ConflictError("Username already taken")
	}

	passwordHash, err := password.Hash(input.Password)
	if err != nil {
		return nil, errors.InternalError("failed to process password")
	}

	now := time.Now().UTC()
	user := &domain.User{
		UserID:       uuid.New(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: passwordHash,
		AvatarURL:    AvatarURL(input.Username),
		IsActive:     true,
		LastLogin:    now,
		CreatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, errors.DatabaseError(err)
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Info("User registered",
		zap.String("user_id", user.UserID.String()),
		zap.String("username", user.Username))

	return &AuthOutput{User: user.ToResponse(), Token: token}, nil
}

// LoginInput contains login credentials
type LoginInput struct {
	Email    string
	Password string
}

// Login authenticates a user and issues a token
func (s *Service) Login(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, sanitize.Email(input.Email))
	if err != nil {
		return nil, errors.InvalidCredentialsError()
	}

	if !user.IsActive {
		return nil, errors.InvalidCredentialsError()
	}

	if !password.Compare(user.PasswordHash, input.Password) {
		return nil, errors.InvalidCredentialsError()
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.UserID); err != nil {
		logger.Warn("Failed to update last login",
			zap.String("user_id", user.UserID.String()),
			zap.Error(err))
	}
	user.LastLogin = time.Now().UTC()

	logger.Info("User logged in",
		zap.String("user_id", user.UserID.String()))

	return &AuthOutput{User: user.ToResponse(), Token: token}, nil
}

// Logout revokes the presented token by deleting its session
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, tokenString string) error {
	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return errors.InvalidTokenError("invalid token")
	}
	if claims.UserID != userID {
		return errors.ForbiddenError("token does not belong to user")
	}

	if err := s.sessionRepo.DeleteSession(ctx, claims.ID, userID); err != nil {
		return errors.DatabaseError(err)
	}

	logger.Info("User logged out",
		zap.String("user_id", userID.String()))

	return nil
}

// Verify resolves a token to its user, for session restore on page load
func (s *Service) Verify(ctx context.Context, tokenString string) (*domain.UserResponse, error) {
	userID, err := s.VerifyToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.UserNotFoundError()
	}

	return user.ToResponse(), nil
}

// VerifyToken validates a token's signature and its session, returning
// the user it belongs to. This is the auth check used by the WebSocket
// handshake and by HTTP middleware revocation.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (uuid.UUID, error) {
	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, errors.AuthRejectedError("invalid or expired token")
	}

	live, err := s.sessionRepo.SessionExists(ctx, claims.ID)
	if err != nil {
		// Redis down; fall back to signature-only validation rather
		// than locking everyone out
		logger.Warn("Session check unavailable", zap.Error(err))
		return claims.UserID, nil
	}
	if !live {
		return uuid.Nil, errors.AuthRejectedError("token has been revoked")
	}

	return claims.UserID, nil
}

// issueToken generates a JWT and records its backing session
func (s *Service) issueToken(ctx context.Context, user *domain.User) (string, error) {
	token, err := s.jwtManager.GenerateToken(user.UserID, user.Email, user.Username)
	if err != nil {
		return "", errors.InternalError("failed to generate token")
	}

	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return "", errors.InternalError("failed to read issued token")
	}

	session := &redis.Session{
		SessionID: claims.ID,
		UserID:    user.UserID,
		Username:  user.Username,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: claims.ExpiresAt.Time,
	}

	if err := s.sessionRepo.CreateSession(ctx, session, constants.SessionExpiry); err != nil {
		return "", errors.DatabaseError(err)
	}

	return token, nil
}

// AvatarURL derives a deterministic avatar for a username
func AvatarURL(username string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/bottts/svg?seed=%s", url.QueryEscape(username))
}

func validateRegisterInput(input *RegisterInput) error {
	if input.Email == "" || len(input.Email) > constants.MaxEmailLength {
		return errors.ValidationError("a valid email is required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return errors.ValidationError("a valid email is required")
	}
	if len(input.Username) < constants.MinUsernameLength || len(input.Username) > constants.MaxUsernameLength {
		return errors.ValidationError(fmt.Sprintf(
			"username must be between %d and %d characters",
			constants.MinUsernameLength, constants.MaxUsernameLength))
	}
	if err := password.Validate(input.Password); err != nil {
		return errors.ValidationError(err.Error())
	}
	return nil
}
