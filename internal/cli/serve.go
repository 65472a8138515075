package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/tokalator/internal/server"
	"github.com/ogulcanaydogan/tokalator/pkg/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculators and CSV normalizer over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "Listen address (default from config)")
	serveCmd.Flags().Bool("history", false, "Enable import history (same as storage.enabled)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}
	if history, _ := cmd.Flags().GetBool("history"); history {
		cfg.Storage.Enabled = true
	}

	logger := newLogger(cfg)

	table, err := initTable(cfg)
	if err != nil {
		return err
	}

	var usageTracker *tracker.UsageTracker
	if cfg.Storage.Enabled {
		usageTracker, err = initTracker(cfg, logger)
		if err != nil {
			return err
		}
		defer usageTracker.Close()
	}

	apiServer := server.NewServer(server.OptionsFromConfig(cfg.Server, Version), table, usageTracker, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Tokalator API listening on %s%s\n", cfg.Server.Listen, cfg.Server.BasePath)
	return apiServer.ListenAndServe(ctx, cfg.Server)
}
