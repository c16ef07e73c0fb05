package approvals

import (
	"context"
	"time"

	"github.com/mfgquality/burnin/internal/models"
)

type Repository interface {
	// Create inserts a new pending request. Returns common.ErrConflict when
	// the device already has a pending request (enforced by a partial
	// unique index, so the invariant holds even across concurrent writers).
	Create(ctx context.Context, req *models.ApprovalRequest) error

	Get(ctx context.Context, id string) (*models.ApprovalRequest, error)
	ListPending(ctx context.Context) ([]*models.ApprovalRequest, error)

	// MarkDecided flips a pending request to its terminal status. Returns
	// common.ErrAlreadyDecided when the request exists but is no longer
	// pending, so replayed decisions cannot be reapplied.
	MarkDecided(ctx context.Context, id string, status models.RequestStatus, decidedBy string, decidedAt time.Time) error
}
