package users

import (
	"context"

	"github.com/mfgquality/burnin/internal/models"
)

// Repository stores approver accounts for the dashboard API.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
