// Package devices provides the PostgreSQL-backed repository for persisted
// device records.
package devices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mfgquality/burnin/internal/common"
	"github.com/mfgquality/burnin/internal/dbx"
	"github.com/mfgquality/burnin/internal/models"
)

// PostgresRepository implements device storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const deviceColumns = `id, enabled, current_tier, count_since_threshold, last_scan_at,
		production_start, bootstrap, bootstrap_completed, paused, exclude_final, version`

func scanDevice(row interface{ Scan(dest ...any) error }) (*models.Device, error) {
	var d models.Device
	var lastScan sql.NullTime
	if err := row.Scan(
		&d.ID, &d.Enabled, &d.CurrentTier, &d.CountSinceThreshold, &lastScan,
		&d.ProductionStart, &d.Bootstrap, &d.BootstrapCompleted, &d.Paused,
		&d.ExcludeFinal, &d.Version,
	); err != nil {
		return nil, err
	}
	if lastScan.Valid {
		t := lastScan.Time.UTC()
		d.LastScanAt = &t
	}
	d.ProductionStart = d.ProductionStart.UTC()
	return &d, nil
}

// Get returns the device record by id, or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = $1`
	d, err := scanDevice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// List returns every device record ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select devices: %w", err)
	}
	defer rows.Close()

	var result []*models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpsertSettings inserts the device on first sight; on conflict it syncs
// only the configuration-owned fields and bumps the version, and only when
// one of them actually changed.
func (r *PostgresRepository) UpsertSettings(ctx context.Context, dev *models.Device) error {
	query := `
		INSERT INTO devices (id, enabled, current_tier, count_since_threshold, last_scan_at,
			production_start, bootstrap, bootstrap_completed, paused, exclude_final, version)
		VALUES ($1, $2, $3, 0, NULL, $4, $5, false, false, $6, 1)
		ON CONFLICT (id)
		DO UPDATE SET
			enabled = EXCLUDED.enabled,
			production_start = EXCLUDED.production_start,
			bootstrap = EXCLUDED.bootstrap,
			exclude_final = EXCLUDED.exclude_final,
			version = devices.version + 1
		WHERE devices.enabled IS DISTINCT FROM EXCLUDED.enabled
			OR devices.production_start IS DISTINCT FROM EXCLUDED.production_start
			OR devices.bootstrap IS DISTINCT FROM EXCLUDED.bootstrap
			OR devices.exclude_final IS DISTINCT FROM EXCLUDED.exclude_final;
	`
	_, err := r.db.ExecContext(ctx, query,
		dev.ID, dev.Enabled, dev.CurrentTier, dev.ProductionStart, dev.Bootstrap, dev.ExcludeFinal)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update commits the mutable scan/decision fields under an optimistic
// version check. RowsAffected 0 means a concurrent writer got there first.
func (r *PostgresRepository) Update(ctx context.Context, dev *models.Device, expectedVersion int64) error {
	query := `
		UPDATE devices SET
			current_tier = $2,
			count_since_threshold = $3,
			last_scan_at = $4,
			bootstrap_completed = $5,
			paused = $6,
			version = version + 1
		WHERE id = $1 AND version = $7;
	`
	var lastScan sql.NullTime
	if dev.LastScanAt != nil {
		lastScan = sql.NullTime{Time: *dev.LastScanAt, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, query,
		dev.ID, dev.CurrentTier, dev.CountSinceThreshold, lastScan,
		dev.BootstrapCompleted, dev.Paused, expectedVersion)
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
		return common.ErrStaleVersion
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
