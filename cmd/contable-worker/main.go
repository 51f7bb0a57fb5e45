package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"contable/internal/config"
	applog "contable/internal/log"
	"contable/internal/notify"
)

// contable-worker consumes due alerts from the broker and delivers them. The
// delivery channel is the process log for now; swapping in email or push is a
// matter of replacing the handler.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting contable-worker")

	// Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := func(alert *notify.DueAlert) error {
		logger.Info("Due alert delivered",
			"owner", alert.Owner,
			"due_count", alert.DueCount,
			"date", alert.Date)
		return nil
	}

	err := notify.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, handler)
	if err != nil && err != context.Canceled {
		logger.Error("Alert consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
