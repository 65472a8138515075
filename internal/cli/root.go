package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/tokalator/internal/config"
	"github.com/ogulcanaydogan/tokalator/pkg/providers"
	"github.com/ogulcanaydogan/tokalator/pkg/storage"
	"github.com/ogulcanaydogan/tokalator/pkg/tracker"
)

// Version is set at build time via ldflags.
var Version = "0.4.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tokalator",
	Short: "Tokalator - token economics calculators and usage export normalizer",
	Long: `Tokalator normalizes LLM usage exports from Anthropic, OpenAI and Google
into one record shape, prices them, and evaluates the token-economics
calculators: the quality score, the prompt-cache break-even curve and the
caching ROI analysis. It can also serve everything as an HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.tokalator/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// initRegistry loads the bundled pricing, overridden by files in pricing.dir.
func initRegistry(cfg *config.Config) (*providers.Registry, error) {
	registry, err := providers.NewDefaultRegistry(cfg.Pricing.Dir)
	if err != nil {
		return nil, fmt.Errorf("load pricing: %w", err)
	}
	return registry, nil
}

// initTable snapshots the configured pricing into a lookup table.
func initTable(cfg *config.Config) (*providers.Table, error) {
	registry, err := initRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return registry.Table(), nil
}

// initTracker opens the import history database at storage.path.
func initTracker(cfg *config.Config, logger *slog.Logger) (*tracker.UsageTracker, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	store, err := storage.NewSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	return tracker.NewUsageTracker(store, logger), nil
}
