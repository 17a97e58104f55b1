package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionRepository handles user session management in Redis.
// A session exists for every issued token; deleting the session
// revokes the token before its JWT expiry.
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Session represents a logged-in device for a user. SessionID is the
// token's jti claim, so a token maps to exactly one session.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateSession stores a new session
func (r *SessionRepository) CreateSession(ctx context.Context, session *Session, ttl time.Duration) error {
	key := fmt.Sprintf("session:%s", session.SessionID)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = r.client.Set(ctx, key, data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	// user_id -> session_id index for logout-everywhere
	userSessionKey := fmt.Sprintf("user:sessions:%s", session.UserID)
	err = r.client.SAdd(ctx, userSessionKey, session.SessionID).Err()
	if err != nil {
		return fmt.Errorf("failed to add session to user index: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	key := fmt.Sprintf("session:%s", sessionID)

	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("session not found")
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	err = json.Unmarshal([]byte(data), &session)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// SessionExists reports whether the session is still live, i.e. the
// token it backs has not been revoked.
func (r *SessionRepository) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	key := fmt.Sprintf("session:%s", sessionID)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return exists > 0, nil
}

// DeleteSession removes a session, revoking its token
func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string, userID uuid.UUID) error {
	key := fmt.Sprintf("session:%s", sessionID)

	err := r.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	userSessionKey := fmt.Sprintf("user:sessions:%s", userID)
	r.client.SRem(ctx, userSessionKey, sessionID)

	return nil
}

// DeleteAllUserSessions removes all sessions for a user
func (r *SessionRepository) DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	userSessionKey := fmt.Sprintf("user:sessions:%s", userID)

	sessionIDs, err := r.client.SMembers(ctx, userSessionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get user sessions: %w", err)
	}

	for _, sessionID := range sessionIDs {
		key := fmt.Sprintf("session:%s", sessionID)
		r.client.Del(ctx, key)
	}

	r.client.Del(ctx, userSessionKey)

	return nil
}

// RefreshSessionTTL extends session expiration
func (r *SessionRepository) RefreshSessionTTL(ctx context.Context, sessionID string, ttl time.Duration) error {
	key := fmt.Sprintf("session:%s", sessionID)
	return r.client.Expire(ctx, key, ttl).Err()
}
