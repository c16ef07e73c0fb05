// Package server initializes and runs the approval service: it connects to
// the database, applies migrations, syncs configured devices and serves the
// dashboard HTTP API until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mfgquality/burnin/internal/approval"
	"github.com/mfgquality/burnin/internal/config"
	"github.com/mfgquality/burnin/internal/httpapi"
	"github.com/mfgquality/burnin/internal/logging"
	"github.com/mfgquality/burnin/internal/repositories/repomanager"
	"github.com/mfgquality/burnin/internal/state"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	ctx := context.Background()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	manager := state.NewManager(db, rm, logger)
	if err := manager.EnsureFromConfig(ctx, cfg); err != nil {
		return nil, fmt.Errorf("device sync error: %w", err)
	}

	svc := approval.NewService(manager, logger)
	api := httpapi.New(cfg.EndpointAddrHTTP, svc, manager, rm.Users(db),
		[]byte(cfg.SecretKey), cfg.TokenValidityDuration, logger)

	return &App{config: cfg, logger: logger, db: db, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting approval service", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.api.Start(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
