// Package approval implements the human decision workflow on top of the
// state manager: listing pending advancement requests, applying verdicts
// idempotently, and exposing the audit trail.
package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mfgquality/burnin/internal/common"
	"github.com/mfgquality/burnin/internal/logging"
	"github.com/mfgquality/burnin/internal/models"
	"github.com/sethvargo/go-retry"
)

// Store is the persistence surface the workflow needs; *state.Manager
// satisfies it.
type Store interface {
	GetRequest(ctx context.Context, id string) (*models.ApprovalRequest, error)
	PendingRequests(ctx context.Context) ([]*models.ApprovalRequest, error)
	History(ctx context.Context, deviceID string, limit int) ([]*models.DecisionHistoryEntry, error)
	CommitDecision(ctx context.Context, requestID string, verdict models.Verdict, decidedBy string) (*models.ApprovalRequest, error)
}

// DecisionOutcome reports the result of one verdict in a bulk submission.
type DecisionOutcome struct {
	RequestID string
	Request   *models.ApprovalRequest
	Err       error
}

type Service struct {
	store Store
	log   logging.Logger

	// retryBase paces retries after a concurrent device write. Scans and
	// decisions rarely collide, so a couple of quick attempts suffice.
	retryBase  time.Duration
	maxRetries uint64
}

func NewService(store Store, log logging.Logger) *Service {
	return &Service{
		store:      store,
		log:        log.With("component", "approval"),
		retryBase:  50 * time.Millisecond,
		maxRetries: 3,
	}
}

// ParseVerdict validates an operator-supplied verdict string.
func ParseVerdict(s string) (models.Verdict, error) {
	switch models.Verdict(s) {
	case models.VerdictApprove:
		return models.VerdictApprove, nil
	case models.VerdictReject:
		return models.VerdictReject, nil
	}
	return "", fmt.Errorf("unknown verdict %q", s)
}

// Decide applies one verdict to a pending request. The decision is
// first-decision-wins: a replay surfaces common.ErrAlreadyDecided and
// changes nothing. Unknown request ids surface common.ErrUnknownRequest.
//
// A concurrent scan commit on the same device shows up as a version
// conflict; those attempts are retried a few times with constant backoff
// since the decision itself remains valid.
func (s *Service) Decide(ctx context.Context, requestID string, verdict models.Verdict, decidedBy string) (*models.ApprovalRequest, error) {
	var decided *models.ApprovalRequest

	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewConstant(s.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := s.store.CommitDecision(ctx, requestID, verdict, decidedBy)
		if err != nil {
			if errors.Is(err, common.ErrStaleVersion) {
				return retry.RetryableError(err)
			}
			return err
		}
		decided = req
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("request %s: %w", requestID, common.ErrUnknownRequest)
		}
		return nil, err
	}
	return decided, nil
}

// DecideBulk applies one verdict per request id, isolating failures: a
// request that is unknown or already decided does not stop the rest of the
// batch. Outcomes preserve submission order.
func (s *Service) DecideBulk(ctx context.Context, requestIDs []string, verdict models.Verdict, decidedBy string) []DecisionOutcome {
	outcomes := make([]DecisionOutcome, 0, len(requestIDs))
	for _, id := range requestIDs {
		req, err := s.Decide(ctx, id, verdict, decidedBy)
		if err != nil {
			s.log.Warn(ctx, "bulk decision skipped", "request", id, "error", err)
		}
		outcomes = append(outcomes, DecisionOutcome{RequestID: id, Request: req, Err: err})
	}
	return outcomes
}

func (s *Service) GetRequest(ctx context.Context, id string) (*models.ApprovalRequest, error) {
	req, err := s.store.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("request %s: %w", id, common.ErrUnknownRequest)
		}
		return nil, err
	}
	return req, nil
}

func (s *Service) ListPending(ctx context.Context) ([]*models.ApprovalRequest, error) {
	return s.store.PendingRequests(ctx)
}

func (s *Service) ListHistory(ctx context.Context, deviceID string, limit int) ([]*models.DecisionHistoryEntry, error) {
	return s.store.History(ctx, deviceID, limit)
}
