package cockroach

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gamerchat-backend/internal/domain"
)

// CallRepository persists finished call records for history.
// Live call state is held in memory by the call manager; a row is
// written once per call when it reaches a terminal status.
type CallRepository struct {
	pool *pgxpool.Pool
}

// NewCallRepository creates a new call repository
func NewCallRepository(pool *pgxpool.Pool) *CallRepository {
	return &CallRepository{pool: pool}
}

// Record inserts a terminal call record
func (r *CallRepository) Record(ctx context.Context, call *domain.Call) error {
	query := `
		INSERT INTO calls (
			call_id, caller_id, callee_id, kind, status,
			created_at, connected_at, ended_at, duration
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		call.CallID,
		call.CallerID,
		call.CalleeID,
		call.Kind,
		call.Status,
		call.CreatedAt,
		call.ConnectedAt,
		call.EndedAt,
		call.Duration,
	)

	if err != nil {
		return fmt.Errorf("failed to record call: %w", err)
	}

	return nil
}

// GetByID retrieves a call record by ID
func (r *CallRepository) GetByID(ctx context.Context, callID uuid.UUID) (*domain.Call, error) {
	query := `
		SELECT call_id, caller_id, callee_id, kind, status,
		       created_at, connected_at, ended_at, duration
		FROM calls
		WHERE call_id = $1
	`

	call := &domain.Call{}
	err := r.pool.QueryRow(ctx, query, callID).Scan(
		&call.CallID,
		&call.CallerID,
		&call.CalleeID,
		&call.Kind,
		&call.Status,
		&call.CreatedAt,
		&call.ConnectedAt,
		&call.EndedAt,
		&call.Duration,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("call not found")
		}
		return nil, fmt.Errorf("failed to get call: %w", err)
	}

	return call, nil
}

// GetUserCalls retrieves call history for a user, newest first
func (r *CallRepository) GetUserCalls(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Call, error) {
	query := `
		SELECT call_id, caller_id, callee_id, kind, status,
		       created_at, connected_at, ended_at, duration
		FROM calls
		WHERE caller_id = $1 OR callee_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get user calls: %w", err)
	}
	defer rows.Close()

	var calls []*domain.Call
	for rows.Next() {
		call := &domain.Call{}
		err := rows.Scan(
			&call.CallID,
			&call.CallerID,
			&call.CalleeID,
			&call.Kind,
			&call.Status,
			&call.CreatedAt,
			&call.ConnectedAt,
			&call.EndedAt,
			&call.Duration,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		calls = append(calls, call)
	}

	return calls, rows.Err()
}

// CountUserCalls returns the total number of call records for a user
func (r *CallRepository) CountUserCalls(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM calls WHERE caller_id = $1 OR callee_id = $1`

	var count int64
	err := r.pool.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user calls: %w", err)
	}

	return count, nil
}
