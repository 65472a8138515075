package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ogulcanaydogan/tokalator/internal/config"
	"github.com/ogulcanaydogan/tokalator/internal/server"
	"github.com/ogulcanaydogan/tokalator/pkg/providers"
	"github.com/ogulcanaydogan/tokalator/pkg/storage"
	"github.com/ogulcanaydogan/tokalator/pkg/tracker"
)

// version is set at build time via ldflags.
var version = "0.4.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("TOKALATOR_CONFIG"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(cfg)

	registry, err := providers.NewDefaultRegistry(cfg.Pricing.Dir)
	if err != nil {
		return fmt.Errorf("load pricing: %w", err)
	}

	var usageTracker *tracker.UsageTracker
	if cfg.Storage.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return fmt.Errorf("create storage directory: %w", err)
		}
		store, err := storage.NewSQLite(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		usageTracker = tracker.NewUsageTracker(store, logger)
		defer usageTracker.Close()
	}

	apiServer := server.NewServer(server.OptionsFromConfig(cfg.Server, version), registry.Table(), usageTracker, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return apiServer.ListenAndServe(ctx, cfg.Server)
}

func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}
	if cfg.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
