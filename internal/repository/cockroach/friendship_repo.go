package cockroach

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gamerchat-backend/internal/domain"
)

// FriendshipRepository handles friend requests and friendships in CockroachDB.
// A friendship is stored as a single row with user IDs in canonical order
// (lower UUID first) so the pair has exactly one row.
type FriendshipRepository struct {
	pool *pgxpool.Pool
}

// NewFriendshipRepository creates a new FriendshipRepository
func NewFriendshipRepository(pool *pgxpool.Pool) *FriendshipRepository {
	return &FriendshipRepository{pool: pool}
}

func orderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}

// CreateRequest inserts a pending friend request
func (r *FriendshipRepository) CreateRequest(ctx context.Context, req *domain.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (request_id, from_user_id, to_user_id, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		req.RequestID,
		req.FromUserID,
		req.ToUserID,
	).Scan(&req.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create friend request: %w", err)
	}

	return nil
}

// GetRequest retrieves a friend request by ID
func (r *FriendshipRepository) GetRequest(ctx context.Context, requestID uuid.UUID) (*domain.FriendRequest, error) {
	query := `
		SELECT request_id, from_user_id, to_user_id, created_at
		FROM friend_requests
		WHERE request_id = $1
	`

	req := &domain.FriendRequest{}
	err := r.pool.QueryRow(ctx, query, requestID).Scan(
		&req.RequestID,
		&req.FromUserID,
		&req.ToUserID,
		&req.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("friend request not found")
		}
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}

	return req, nil
}

// GetPendingRequests retrieves requests addressed to a user, newest first
func (r *FriendshipRepository) GetPendingRequests(ctx context.Context, userID uuid.UUID) ([]*domain.FriendRequest, error) {
	query := `
		SELECT request_id, from_user_id, to_user_id, created_at
		FROM friend_requests
		WHERE to_user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*domain.FriendRequest, 0)
	for rows.Next() {
		req := &domain.FriendRequest{}
		err := rows.Scan(&req.RequestID, &req.FromUserID, &req.ToUserID, &req.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// RequestExists checks for a pending request in either direction
func (r *FriendshipRepository) RequestExists(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE (from_user_id = $1 AND to_user_id = $2)
			   OR (from_user_id = $2 AND to_user_id = $1)
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, userA, userB).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friend request: %w", err)
	}

	return exists, nil
}

// DeleteRequest removes a friend request
func (r *FriendshipRepository) DeleteRequest(ctx context.Context, requestID uuid.UUID) error {
	query := `DELETE FROM friend_requests WHERE request_id = $1`

	cmdTag, err := r.pool.Exec(ctx, query, requestID)
	if err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("friend request not found")
	}

	return nil
}

// CreateFriendship records a friendship between two users
func (r *FriendshipRepository) CreateFriendship(ctx context.Context, userA, userB uuid.UUID) error {
	first, second := orderPair(userA, userB)

	query := `
		INSERT INTO friendships (user_a, user_b, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_a, user_b) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, first, second)
	if err != nil {
		return fmt.Errorf("failed to create friendship: %w", err)
	}

	return nil
}

// AreFriends checks whether two users are friends
func (r *FriendshipRepository) AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	first, second := orderPair(userA, userB)

	query := `SELECT EXISTS(SELECT 1 FROM friendships WHERE user_a = $1 AND user_b = $2)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, first, second).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}

	return exists, nil
}

// GetFriendIDs retrieves the IDs of all friends of a user
func (r *FriendshipRepository) GetFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT CASE WHEN user_a = $1 THEN user_b ELSE user_a END
		FROM friendships
		WHERE user_a = $1 OR user_b = $1
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan friend id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// RemoveFriendship deletes the friendship between two users
func (r *FriendshipRepository) RemoveFriendship(ctx context.Context, userA, userB uuid.UUID) error {
	first, second := orderPair(userA, userB)

	query := `DELETE FROM friendships WHERE user_a = $1 AND user_b = $2`

	cmdTag, err := r.pool.Exec(ctx, query, first, second)
	if err != nil {
		return fmt.Errorf("failed to remove friendship: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("friendship not found")
	}

	return nil
}
