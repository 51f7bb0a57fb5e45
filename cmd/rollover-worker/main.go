package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"contable/internal/backend"
	"contable/internal/config"
	applog "contable/internal/log"
	"contable/internal/reminder"
	"contable/internal/store"
)

const maxConcurrentOwners = 8

// rollover-worker advances overdue reminders for every owner on a fixed
// interval. The API process already rolls reminders for owners with an open
// session; this worker covers owners who have not signed in, so their due
// dates are current the moment they come back.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentRollover)
	applog.SetDefault(logger)

	logger.Info("Starting rollover-worker")

	// Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	st, err := backend.Open(backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.RolloverInterval)
	defer ticker.Stop()

	logger.Info("Rollover loop started", "interval", cfg.RolloverInterval)

	// One sweep at startup, then on every tick.
	runSweep(ctx, st, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker stopped gracefully")
			return
		case <-ticker.C:
			runSweep(ctx, st, logger)
		}
	}
}

// runSweep rolls every owner's reminders forward. A pass advances each
// overdue reminder one period, so a sweep repeats per owner until the pass
// stops writing. Owner failures are logged and skipped; one broken owner must
// not stall the rest.
func runSweep(ctx context.Context, st store.Store, logger *applog.Logger) {
	started := time.Now()

	owners, err := st.Owners(ctx)
	if err != nil {
		logger.Error("Failed to list owners", "error", err)
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOwners)

	for _, owner := range owners {
		g.Go(func() error {
			if err := rollOwner(ctx, st, owner); err != nil {
				logger.Error("Rollover failed for owner", "owner", owner, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("Rollover sweep complete",
		"owners", len(owners),
		"duration", time.Since(started))
}

func rollOwner(ctx context.Context, st store.Store, owner string) error {
	now := time.Now()
	for {
		reminders, err := st.ListReminders(ctx, owner)
		if err != nil {
			return err
		}
		res := reminder.RunPass(ctx, now, reminders, st)
		if res.Advanced == 0 && res.Deactivated == 0 {
			return nil
		}
	}
}
