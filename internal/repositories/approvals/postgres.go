// Package approvals provides the PostgreSQL-backed repository for the
// pending approval request queue.
package approvals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mfgquality/burnin/internal/common"
	"github.com/mfgquality/burnin/internal/dbx"
	"github.com/mfgquality/burnin/internal/models"
)

// uniqueViolation is the PostgreSQL error code raised by the partial unique
// index when a second pending request is inserted for the same device.
const uniqueViolation = "23505"

// PostgresRepository implements request storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, req *models.ApprovalRequest) error {
	query := `
		INSERT INTO approval_requests (id, device_id, from_tier, to_tier, file_count, created_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.DeviceID, req.FromTier, req.ToTier, req.FileCount, req.CreatedAt, req.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const requestColumns = `id, device_id, from_tier, to_tier, file_count, created_at, status, decided_by, decided_at`

func scanRequest(row interface{ Scan(dest ...any) error }) (*models.ApprovalRequest, error) {
	var req models.ApprovalRequest
	var decidedBy sql.NullString
	var decidedAt sql.NullTime
	if err := row.Scan(
		&req.ID, &req.DeviceID, &req.FromTier, &req.ToTier, &req.FileCount,
		&req.CreatedAt, &req.Status, &decidedBy, &decidedAt,
	); err != nil {
		return nil, err
	}
	req.CreatedAt = req.CreatedAt.UTC()
	req.DecidedBy = decidedBy.String
	if decidedAt.Valid {
		t := decidedAt.Time.UTC()
		req.DecidedAt = &t
	}
	return &req, nil
}

// Get returns the request by id, or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.ApprovalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM approval_requests WHERE id = $1`
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return req, nil
}

// ListPending returns all undecided requests, oldest first.
func (r *PostgresRepository) ListPending(ctx context.Context) ([]*models.ApprovalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM approval_requests WHERE status = 'pending' ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending requests: %w", err)
	}
	defer rows.Close()

	var result []*models.ApprovalRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkDecided is the first-decision-wins gate: the UPDATE only matches a
// still-pending row.
func (r *PostgresRepository) MarkDecided(ctx context.Context, id string, status models.RequestStatus, decidedBy string, decidedAt time.Time) error {
	query := `
		UPDATE approval_requests SET status = $2, decided_by = $3, decided_at = $4
		WHERE id = $1 AND status = 'pending';
	`
	res, err := r.db.ExecContext(ctx, query, id, status, decidedBy, decidedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrAlreadyDecided
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
