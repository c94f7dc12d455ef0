package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hangout-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const requestColumns = `id, from_profile_id, to_profile_id, status, message, expires_at, created_at, updated_at`

// HangoutRequestRepository handles database operations for hangout requests
type HangoutRequestRepository struct {
	db *pgxpool.Pool
}

// NewHangoutRequestRepository creates a new hangout request repository
func NewHangoutRequestRepository(db *pgxpool.Pool) *HangoutRequestRepository {
	return &HangoutRequestRepository{db: db}
}

// Create inserts a new pending request. The transaction pre-checks for an
// existing pending request for the same ordered pair; the partial unique
// index on (from_profile_id, to_profile_id) WHERE status='pending' remains
// the authority when two creates race past the check.
func (r *HangoutRequestRepository) Create(ctx context.Context, req *models.HangoutRequest) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM hangout_requests
			WHERE from_profile_id = $1 AND to_profile_id = $2 AND status = 'pending'
		)`,
		req.FromProfileID, req.ToProfileID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check pending request: %w", err)
	}
	if exists {
		return models.ErrDuplicatePending
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO hangout_requests (id, from_profile_id, to_profile_id, status, message, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		req.ID, req.FromProfileID, req.ToProfileID, req.Status, req.Message,
		req.ExpiresAt, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.ErrDuplicatePending
		}
		return fmt.Errorf("failed to create hangout request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit hangout request: %w", err)
	}
	return nil
}

// Respond applies a respond attempt under a row lock so the expiry check and
// the status mutation cannot interleave with a concurrent respond. The lazy
// transition to expired is persisted even though the call returns
// models.ErrRequestExpired.
func (r *HangoutRequestRepository) Respond(ctx context.Context, requestID, responderID string, accept bool, now time.Time) (*models.HangoutRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var req models.HangoutRequest
	err = tx.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM hangout_requests WHERE id = $1 FOR UPDATE`,
		requestID,
	).Scan(
		&req.ID, &req.FromProfileID, &req.ToProfileID, &req.Status,
		&req.Message, &req.ExpiresAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get hangout request: %w", err)
	}

	next, resolveErr := models.ResolveResponse(&req, responderID, accept, now)
	if resolveErr != nil && !errors.Is(resolveErr, models.ErrRequestExpired) {
		return nil, resolveErr
	}

	_, err = tx.Exec(ctx,
		`UPDATE hangout_requests SET status = $1, updated_at = $2 WHERE id = $3`,
		next, now, requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update hangout request: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit response: %w", err)
	}

	if resolveErr != nil {
		return nil, resolveErr
	}

	req.Status = next
	req.UpdatedAt = now
	return &req, nil
}

// ListForUser retrieves a user's requests partitioned by role, newest first.
// Pending rows past their expiry are transitioned to expired before the read
// so listings never report a stale pending status.
func (r *HangoutRequestRepository) ListForUser(ctx context.Context, userID string) (sent, received []*models.HangoutRequest, err error) {
	_, err = r.db.Exec(ctx,
		`UPDATE hangout_requests
		 SET status = 'expired', updated_at = now()
		 WHERE (from_profile_id = $1 OR to_profile_id = $1)
		   AND status = 'pending'
		   AND expires_at < now()`,
		userID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to expire stale requests: %w", err)
	}

	sent, err = r.listByColumn(ctx, "from_profile_id", userID)
	if err != nil {
		return nil, nil, err
	}
	received, err = r.listByColumn(ctx, "to_profile_id", userID)
	if err != nil {
		return nil, nil, err
	}
	return sent, received, nil
}

func (r *HangoutRequestRepository) listByColumn(ctx context.Context, column, userID string) ([]*models.HangoutRequest, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM hangout_requests WHERE %s = $1 ORDER BY created_at DESC`,
		requestColumns, column,
	)
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hangout requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.HangoutRequest
	for rows.Next() {
		var req models.HangoutRequest
		err := rows.Scan(
			&req.ID, &req.FromProfileID, &req.ToProfileID, &req.Status,
			&req.Message, &req.ExpiresAt, &req.CreatedAt, &req.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hangout request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hangout requests: %w", err)
	}

	return requests, nil
}
