// Package notify delivers approval workflow notifications. Delivery is
// fire-and-forget: a failed send is logged and never blocks or rolls back
// the state change it announces.
package notify

import (
	"context"

	"github.com/mfgquality/burnin/internal/models"
)

// Dispatcher sends a notification about a newly created advancement
// request to the configured approvers.
type Dispatcher interface {
	RequestCreated(ctx context.Context, req *models.ApprovalRequest) error
}

// Noop discards all notifications. Used when email is disabled.
type Noop struct{}

func (Noop) RequestCreated(ctx context.Context, req *models.ApprovalRequest) error {
	return nil
}
