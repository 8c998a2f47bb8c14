// Package main runs one vote counter reconciliation pass and exits.
// Exit code 0 means the counters were consistent or were repaired;
// any error exits non-zero so schedulers can alert on it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/quotewall/quotewall/internal/adapters/postgres"
	"github.com/quotewall/quotewall/internal/app"
	"github.com/quotewall/quotewall/internal/platform/config"
	"github.com/quotewall/quotewall/internal/platform/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	workers := flag.Int("workers", 4, "number of quotes reconciled concurrently")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run deadline")
	flag.Parse()

	// Optional .env for local development; environment wins over file.
	_ = godotenv.Load()

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	reconciler := app.NewReconciler(app.ReconcilerConfig{
		Quotes:  postgres.NewQuoteRepository(store),
		Votes:   postgres.NewVoteRepository(store),
		Workers: *workers,
		Logger:  logger,
	})

	report, err := reconciler.Run(ctx)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	logger.Info("reconciliation finished",
		slog.Int("checked", report.Checked),
		slog.Int("repaired", report.Repaired),
	)

	return nil
}
