// Package state owns all mutations of persisted device records. Every
// change goes through a transaction here, so a crash never leaves a paused
// device without its pending request or a decided request without its
// device update.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mfgquality/burnin/internal/config"
	"github.com/mfgquality/burnin/internal/dbx"
	"github.com/mfgquality/burnin/internal/logging"
	"github.com/mfgquality/burnin/internal/models"
	"github.com/mfgquality/burnin/internal/repositories/repomanager"
	"github.com/mfgquality/burnin/internal/tier"
)

// Manager applies state transitions atomically on top of the repository
// layer.
type Manager struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	log logging.Logger
}

func NewManager(db *sql.DB, rm repomanager.RepositoryManager, log logging.Logger) *Manager {
	return &Manager{db: db, rm: rm, log: log.With("component", "state")}
}

// EnsureFromConfig creates rows for newly configured devices and syncs the
// configuration-owned fields of existing ones. Scan-owned fields (tier,
// count, pause) are never touched here; removing a device from the
// configuration disables it implicitly because the scanner only visits
// configured devices.
func (m *Manager) EnsureFromConfig(ctx context.Context, cfg *config.Config) error {
	for name, dc := range cfg.Devices {
		startTier, err := tier.Parse(dc.CurrentTier)
		if err != nil {
			return fmt.Errorf("device %q: %w", name, err)
		}
		dev := &models.Device{
			ID:              name,
			Enabled:         dc.Enabled,
			CurrentTier:     startTier,
			ProductionStart: cfg.DeviceProductionStart(name).UTC(),
			Bootstrap:       dc.Bootstrap,
			ExcludeFinal:    dc.Exclude2h,
		}
		if err := m.rm.Devices(m.db).UpsertSettings(ctx, dev); err != nil {
			return fmt.Errorf("device %q: %w", name, err)
		}
	}
	return nil
}

func (m *Manager) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	return m.rm.Devices(m.db).Get(ctx, id)
}

func (m *Manager) ListDevices(ctx context.Context) ([]*models.Device, error) {
	return m.rm.Devices(m.db).List(ctx)
}

func (m *Manager) GetRequest(ctx context.Context, id string) (*models.ApprovalRequest, error) {
	return m.rm.Approvals(m.db).Get(ctx, id)
}

func (m *Manager) PendingRequests(ctx context.Context) ([]*models.ApprovalRequest, error) {
	return m.rm.Approvals(m.db).ListPending(ctx)
}

func (m *Manager) History(ctx context.Context, deviceID string, limit int) ([]*models.DecisionHistoryEntry, error) {
	return m.rm.History(m.db).List(ctx, deviceID, limit)
}

// CommitScan persists the outcome of one device scan: the updated record
// and, when the machine emitted a CreateRequest effect, the pending
// approval request, in a single transaction. The created request (if any)
// is returned so the caller can notify approvers.
//
// The device write is version-checked against expectedVersion; a concurrent
// writer surfaces as common.ErrStaleVersion and nothing is committed.
func (m *Manager) CommitScan(ctx context.Context, dev models.Device, expectedVersion int64, effects []tier.Effect) (*models.ApprovalRequest, error) {
	var created *models.ApprovalRequest

	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := m.rm.Devices(tx).Update(ctx, &dev, expectedVersion); err != nil {
			return err
		}
		for _, eff := range effects {
			cr, ok := eff.(tier.CreateRequest)
			if !ok {
				return fmt.Errorf("unsupported effect %T", eff)
			}
			req := &models.ApprovalRequest{
				ID:        uuid.NewString(),
				DeviceID:  dev.ID,
				FromTier:  cr.From,
				ToTier:    cr.To,
				FileCount: cr.FileCount,
				CreatedAt: time.Now().UTC(),
				Status:    models.RequestStatusPending,
			}
			if err := m.rm.Approvals(tx).Create(ctx, req); err != nil {
				return err
			}
			created = req
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created != nil {
		m.log.Info(ctx, "advancement request created",
			"device", dev.ID, "request", created.ID,
			"from", created.FromTier, "to", created.ToTier, "files", created.FileCount)
	}
	return created, nil
}

// CommitDecision resolves a pending request and applies the verdict to the
// device in a single transaction: the request flips to its terminal status,
// the device advances (or just unpauses on reject), and an audit entry is
// appended.
//
// A request that is already decided surfaces as common.ErrAlreadyDecided; a
// concurrent device write as common.ErrStaleVersion. Either way nothing is
// committed.
func (m *Manager) CommitDecision(ctx context.Context, requestID string, verdict models.Verdict, decidedBy string) (*models.ApprovalRequest, error) {
	status := models.RequestStatusRejected
	if verdict == models.VerdictApprove {
		status = models.RequestStatusApproved
	}
	decidedAt := time.Now().UTC()

	var decided *models.ApprovalRequest
	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		req, err := m.rm.Approvals(tx).Get(ctx, requestID)
		if err != nil {
			return err
		}
		if err := m.rm.Approvals(tx).MarkDecided(ctx, requestID, status, decidedBy, decidedAt); err != nil {
			return err
		}

		dev, err := m.rm.Devices(tx).Get(ctx, req.DeviceID)
		if err != nil {
			return err
		}
		updated, err := tier.ApplyDecision(*dev, verdict)
		if err != nil {
			return err
		}
		if err := m.rm.Devices(tx).Update(ctx, &updated, dev.Version); err != nil {
			return err
		}

		entry := &models.DecisionHistoryEntry{
			ID:          uuid.NewString(),
			RequestID:   req.ID,
			DeviceID:    req.DeviceID,
			FromTier:    req.FromTier,
			ToTier:      req.ToTier,
			FileCount:   req.FileCount,
			RequestedAt: req.CreatedAt,
			DecidedBy:   decidedBy,
			DecidedAt:   decidedAt,
			Verdict:     verdict,
		}
		if err := m.rm.History(tx).Append(ctx, entry); err != nil {
			return err
		}

		req.Status = status
		req.DecidedBy = decidedBy
		req.DecidedAt = &decidedAt
		decided = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info(ctx, "advancement request decided",
		"device", decided.DeviceID, "request", decided.ID,
		"verdict", verdict, "by", decidedBy)
	return decided, nil
}
