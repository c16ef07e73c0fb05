package history

import (
	"context"

	"github.com/mfgquality/burnin/internal/models"
)

// Repository stores the append-only audit trail of resolved approval
// requests. Entries are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, entry *models.DecisionHistoryEntry) error
	List(ctx context.Context, deviceID string, limit int) ([]*models.DecisionHistoryEntry, error)
}
