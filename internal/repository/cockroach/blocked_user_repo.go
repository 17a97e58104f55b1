package cockroach

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gamerchat-backend/internal/domain"
)

// BlockedUserRepository handles blocked user data operations in CockroachDB
type BlockedUserRepository struct {
	pool *pgxpool.Pool
}

// NewBlockedUserRepository creates a new BlockedUserRepository
func NewBlockedUserRepository(pool *pgxpool.Pool) *BlockedUserRepository {
	return &BlockedUserRepository{pool: pool}
}

// BlockUser blocks another user
func (r *BlockedUserRepository) BlockUser(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	query := `
		INSERT INTO blocked_users (blocker_id, blocked_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, blockerID, blockedID)
	if err != nil {
		return fmt.Errorf("failed to block user: %w", err)
	}

	return nil
}

// UnblockUser unblocks a user
func (r *BlockedUserRepository) UnblockUser(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	query := `
		DELETE FROM blocked_users
		WHERE blocker_id = $1 AND blocked_id = $2
		RETURNING blocker_id
	`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query, blockerID, blockedID).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("blocked user relationship not found")
		}
		return fmt.Errorf("failed to unblock user: %w", err)
	}

	return nil
}

// IsBlocked checks if blockerID has blocked blockedID
func (r *BlockedUserRepository) IsBlocked(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM blocked_users WHERE blocker_id = $1 AND blocked_id = $2)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, blockerID, blockedID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check if user is blocked: %w", err)
	}

	return exists, nil
}

// IsBlockedEither checks for a block in either direction. Calls and
// messages are refused whichever side placed the block.
func (r *BlockedUserRepository) IsBlockedEither(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM blocked_users
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, userA, userB).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check block status: %w", err)
	}

	return exists, nil
}

// GetBlockedUsers retrieves list of users blocked by blockerID
func (r *BlockedUserRepository) GetBlockedUsers(ctx context.Context, blockerID uuid.UUID, limit, offset int) ([]*domain.User, error) {
	query := `
		SELECT u.user_id, u.email, u.username, u.password_hash, u.avatar_url, u.is_active, u.last_login, u.created_at
		FROM users u
		INNER JOIN blocked_users b ON b.blocked_id = u.user_id
		WHERE b.blocker_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, blockerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get blocked users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
