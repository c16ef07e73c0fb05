// The scanner runs one scan pass over all configured devices and prints a
// summary. It is meant to be invoked from a scheduler; overlapping runs are
// the scheduler's responsibility.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mfgquality/burnin/internal/collector"
	"github.com/mfgquality/burnin/internal/config"
	"github.com/mfgquality/burnin/internal/logging"
	"github.com/mfgquality/burnin/internal/notify"
	"github.com/mfgquality/burnin/internal/report"
	"github.com/mfgquality/burnin/internal/repositories/repomanager"
	"github.com/mfgquality/burnin/internal/scanner"
	"github.com/mfgquality/burnin/internal/state"
	"github.com/mfgquality/burnin/internal/tier"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	reqs, err := tier.ParseRequirements(cfg.TierRequirements)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	manager := state.NewManager(db, rm, logger)
	if err := manager.EnsureFromConfig(ctx, cfg); err != nil {
		return fmt.Errorf("device sync error: %w", err)
	}

	var dispatcher notify.Dispatcher = notify.Noop{}
	if cfg.Email.Enabled {
		dispatcher = notify.NewSMTPDispatcher(cfg.Email)
	}

	coll := collector.New(collector.NewFilter(cfg.FileFiltering), cfg.ScanTimeout, logger)
	s := scanner.New(cfg, reqs, coll, manager, dispatcher, logger)

	pass, err := s.RunPass(ctx)
	if err != nil {
		return err
	}

	rep := report.Build(pass)
	report.PrintSummary(os.Stdout, rep)

	var archiver report.Archiver = report.NoopArchiver{}
	if cfg.Archive.Enabled {
		archiver = report.NewS3Archiver(cfg.Archive)
	}
	if key, err := archiver.Archive(ctx, rep); err != nil {
		logger.Error(ctx, "report archive failed", "error", err)
	} else if key != "" {
		logger.Info(ctx, "report archived", "key", key)
	}

	return nil
}
