package devices

import (
	"context"

	"github.com/mfgquality/burnin/internal/models"
)

type Repository interface {
	Get(ctx context.Context, id string) (*models.Device, error)
	List(ctx context.Context) ([]*models.Device, error)

	// UpsertSettings creates the device row on first sight and syncs the
	// configuration-owned fields (enabled, production start, exclusion)
	// afterwards, bumping the version only when something changed.
	UpsertSettings(ctx context.Context, dev *models.Device) error

	// Update commits the scan- and decision-owned fields. The write only
	// lands when the persisted version still equals expectedVersion;
	// otherwise ErrStaleVersion is returned and nothing changes.
	Update(ctx context.Context, dev *models.Device, expectedVersion int64) error
}
