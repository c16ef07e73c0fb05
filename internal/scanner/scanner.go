// Package scanner drives one scan pass over all configured devices:
// enumerate each device's output directory, count files newer than the
// device's cutoff, fold the count through the tier state machine and
// commit the outcome. Devices are independent; one unreachable path never
// blocks the rest of the pass.
package scanner

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/mfgquality/burnin/internal/collector"
	"github.com/mfgquality/burnin/internal/common"
	"github.com/mfgquality/burnin/internal/config"
	"github.com/mfgquality/burnin/internal/counter"
	"github.com/mfgquality/burnin/internal/logging"
	"github.com/mfgquality/burnin/internal/models"
	"github.com/mfgquality/burnin/internal/notify"
	"github.com/mfgquality/burnin/internal/tier"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

// Store is the slice of the state manager the scanner needs.
type Store interface {
	GetDevice(ctx context.Context, id string) (*models.Device, error)
	CommitScan(ctx context.Context, dev models.Device, expectedVersion int64, effects []tier.Effect) (*models.ApprovalRequest, error)
}

// DeviceResult summarizes the outcome for one device in a pass.
type DeviceResult struct {
	DeviceID  string
	Skipped   bool
	Tier      models.Tier
	Count     int64
	NewFiles  int64
	Total     int64
	Requested bool
	Err       error
}

// PassReport aggregates one full scan pass.
type PassReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []DeviceResult
}

// Failed counts devices whose scan errored.
func (r *PassReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

type Scanner struct {
	cfg        *config.Config
	reqs       tier.Requirements
	coll       *collector.Collector
	st         Store
	dispatcher notify.Dispatcher
	log        logging.Logger

	now        func() time.Time
	retryBase  time.Duration
	maxRetries uint64
}

func New(cfg *config.Config, reqs tier.Requirements, coll *collector.Collector, st Store, dispatcher notify.Dispatcher, log logging.Logger) *Scanner {
	return &Scanner{
		cfg:        cfg,
		reqs:       reqs,
		coll:       coll,
		st:         st,
		dispatcher: dispatcher,
		log:        log.With("component", "scanner"),
		now:        time.Now,
		retryBase:  50 * time.Millisecond,
		maxRetries: 3,
	}
}

// RunPass scans every configured device once, bounded by the configured
// parallelism. Per-device failures are recorded in the report, not
// returned; RunPass itself only fails when the context is cancelled.
func (s *Scanner) RunPass(ctx context.Context) (*PassReport, error) {
	report := &PassReport{StartedAt: s.now().UTC()}

	ids := make([]string, 0, len(s.cfg.Devices))
	for id := range s.cfg.Devices {
		ids = append(ids, id)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ScanParallelism)

	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := s.scanDevice(gctx, id)
			if res.Err != nil {
				s.log.Error(gctx, "device scan failed", "device", id, "error", res.Err)
			}
			mu.Lock()
			report.Results = append(report.Results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.FinishedAt = s.now().UTC()
	s.log.Info(ctx, "scan pass finished",
		"devices", len(report.Results),
		"failed", report.Failed(),
		"duration", report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}

// scanDevice runs the full pipeline for one device. The device record is
// loaded before the filesystem snapshot, so the version check at commit
// time catches any decision applied in between.
func (s *Scanner) scanDevice(ctx context.Context, id string) DeviceResult {
	res := DeviceResult{DeviceID: id}

	dev, err := s.st.GetDevice(ctx, id)
	if err != nil {
		res.Err = err
		return res
	}
	res.Tier = dev.CurrentTier
	res.Count = dev.CountSinceThreshold
	if !dev.Enabled || dev.Paused {
		res.Skipped = true
		s.log.Debug(ctx, "device skipped", "device", id, "enabled", dev.Enabled, "paused", dev.Paused)
		return res
	}

	dir := filepath.Join(s.cfg.ScanRoot, id, s.cfg.DeviceSubdir)
	snap, err := s.coll.Collect(ctx, id, dir)
	if err != nil {
		if errors.Is(err, common.ErrPathUnavailable) {
			s.log.Warn(ctx, "device path unavailable, keeping previous state", "device", id, "dir", dir)
		}
		res.Err = err
		return res
	}

	scanAt := s.now().UTC()
	res.Total = int64(snap.TotalFiles())

	// A decision landing between our read and the commit bumps the
	// device version. The snapshot stays valid, so re-read the record,
	// recount against the (possibly moved) cutoff and try again.
	var (
		created *models.ApprovalRequest
		updated models.Device
	)
	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewConstant(s.retryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		newFiles := int64(counter.CountAfter(snap.ModTimes, dev.CutoffFor()))
		var effects []tier.Effect
		updated, effects = tier.EvaluateScan(*dev, newFiles, scanAt, s.reqs)

		created, err = s.st.CommitScan(ctx, updated, dev.Version, effects)
		if err == nil {
			res.NewFiles = newFiles
			return nil
		}
		if !errors.Is(err, common.ErrStaleVersion) {
			return err
		}
		fresh, readErr := s.st.GetDevice(ctx, id)
		if readErr != nil {
			return readErr
		}
		dev = fresh
		return retry.RetryableError(err)
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.Requested = created != nil
	res.Tier = updated.CurrentTier
	res.Count = updated.CountSinceThreshold

	if created != nil {
		if err := s.dispatcher.RequestCreated(ctx, created); err != nil {
			s.log.Error(ctx, "notification delivery failed", "device", id, "request", created.ID, "error", err)
		}
	}

	s.log.Info(ctx, "device scanned",
		"device", id, "tier", res.Tier,
		"new_files", res.NewFiles, "count", res.Count,
		"request_created", res.Requested)
	return res
}
