package repomanager

import (
	"context"
	"database/sql"

	"github.com/mfgquality/burnin/internal/dbx"
	"github.com/mfgquality/burnin/internal/repositories/approvals"
	"github.com/mfgquality/burnin/internal/repositories/devices"
	"github.com/mfgquality/burnin/internal/repositories/history"
	"github.com/mfgquality/burnin/internal/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Devices(db dbx.DBTX) devices.Repository
	Approvals(db dbx.DBTX) approvals.Repository
	History(db dbx.DBTX) history.Repository
	Users(db dbx.DBTX) users.Repository
}
