package tier

import (
	"fmt"
	"time"

	"github.com/mfgquality/burnin/internal/models"
)

// Effect is a side effect the state machine wants performed after a
// transition. Effects are carried out by the caller (state manager,
// notification dispatcher), never here.
type Effect interface {
	isEffect()
}

// CreateRequest asks the approval workflow to open a pending request for
// the device and is always paired with Paused=true on the returned record.
type CreateRequest struct {
	From      models.Tier
	To        models.Tier
	FileCount int64
}

func (CreateRequest) isEffect() {}

// EvaluateScan folds one scan result into the device record.
//
// newFiles is the number of files strictly newer than the device's cutoff,
// as produced by the counter. The returned record has the scan timestamp
// and count applied, plus Paused=true with a CreateRequest effect when the
// advancement threshold is reached.
//
// A paused device is returned unchanged: accumulation is frozen until the
// pending request is decided.
func EvaluateScan(dev models.Device, newFiles int64, scanAt time.Time, reqs Requirements) (models.Device, []Effect) {
	if !dev.Enabled || dev.Paused {
		return dev, nil
	}

	next := dev

	// On the very first recorded scan a bootstrap-mode device treats the
	// whole backlog as historical: the count stays at its baseline.
	firstScan := !next.BootstrapCompleted
	if firstScan && next.Bootstrap {
		newFiles = 0
	}

	next.CountSinceThreshold += newFiles
	next.LastScanAt = &scanAt
	next.BootstrapCompleted = true

	threshold, ok := reqs.ThresholdFor(next.CurrentTier)
	if !ok || next.CountSinceThreshold < threshold {
		return next, nil
	}

	to, ok := Next(next.CurrentTier)
	if !ok {
		return next, nil
	}
	if to == Terminal && next.ExcludeFinal {
		return next, nil
	}

	next.Paused = true
	return next, []Effect{CreateRequest{
		From:      dev.CurrentTier,
		To:        to,
		FileCount: next.CountSinceThreshold,
	}}
}

// ApplyDecision folds a human decision into the device record.
//
// Approve advances the device exactly one tier, resets the count and
// unpauses. Reject unpauses and retains the accumulated count, so the
// device keeps working toward the same threshold.
func ApplyDecision(dev models.Device, verdict models.Verdict) (models.Device, error) {
	next := dev
	switch verdict {
	case models.VerdictApprove:
		to, ok := Next(next.CurrentTier)
		if !ok {
			return dev, fmt.Errorf("tier %q has no successor", next.CurrentTier)
		}
		next.CurrentTier = to
		next.CountSinceThreshold = 0
		next.Paused = false
	case models.VerdictReject:
		next.Paused = false
	default:
		return dev, fmt.Errorf("unknown verdict %q", verdict)
	}
	return next, nil
}
