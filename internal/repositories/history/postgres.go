// Package history provides the PostgreSQL-backed audit log of tier
// advancement decisions.
package history

import (
	"context"
	"fmt"

	"github.com/mfgquality/burnin/internal/dbx"
	"github.com/mfgquality/burnin/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, entry *models.DecisionHistoryEntry) error {
	query := `
		INSERT INTO decision_history
			(id, request_id, device_id, from_tier, to_tier, file_count, requested_at, decided_by, decided_at, verdict)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.RequestID, entry.DeviceID, entry.FromTier, entry.ToTier,
		entry.FileCount, entry.RequestedAt, entry.DecidedBy, entry.DecidedAt, entry.Verdict)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns decisions newest first. An empty deviceID lists all devices;
// limit <= 0 means no limit.
func (r *PostgresRepository) List(ctx context.Context, deviceID string, limit int) ([]*models.DecisionHistoryEntry, error) {
	query := `
		SELECT id, request_id, device_id, from_tier, to_tier, file_count, requested_at, decided_by, decided_at, verdict
		FROM decision_history
		WHERE ($1 = '' OR device_id = $1)
		ORDER BY decided_at DESC
		LIMIT CASE WHEN $2 <= 0 THEN NULL ELSE $2 END;
	`
	rows, err := r.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select decision history: %w", err)
	}
	defer rows.Close()

	var result []*models.DecisionHistoryEntry
	for rows.Next() {
		var e models.DecisionHistoryEntry
		if err := rows.Scan(
			&e.ID, &e.RequestID, &e.DeviceID, &e.FromTier, &e.ToTier,
			&e.FileCount, &e.RequestedAt, &e.DecidedBy, &e.DecidedAt, &e.Verdict,
		); err != nil {
			return nil, err
		}
		e.RequestedAt = e.RequestedAt.UTC()
		e.DecidedAt = e.DecidedAt.UTC()
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
