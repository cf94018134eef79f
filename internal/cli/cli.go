package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pfrederiksen/matchcentre/internal/config"
	"github.com/pfrederiksen/matchcentre/internal/logger"
	"github.com/pfrederiksen/matchcentre/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagDataDir string
	flagFormat  string
	flagVerbose bool

	// cfg is loaded once per invocation before any subcommand runs.
	cfg *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchcentre",
		Short: "Extract football match-centre data into summary and event tables",
		Long: `A CLI tool to extract the match data embedded in a football match-centre page.
Produces a match summary table and a flattened per-event table, prints them
and optionally saves them as CSV, JSON, Parquet or SQLite.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", config.DefaultDataDir, "Data directory for saved records and tables")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newScrapeCmd(), newEventsCmd(), newSummaryCmd())

	return cmd
}

// setup loads configuration and the logger. Flags override the environment.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	if flagChanged(cmd, "data-dir") {
		cfg.DataDir = flagDataDir
	}

	if flagVerbose {
		if cfg.EnvFile != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Loaded environment from %s\n", cfg.EnvFile)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Data directory: %s\n", cfg.DataDir)
	}
	return nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func outputFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	return format, nil
}

func openStorage() (*storage.Storage, error) {
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

// logMetrics dumps the run's metrics at DEBUG.
func logMetrics() {
	logger.Debug("Run metrics", logger.Fields{"metrics": logger.MetricsSnapshot()})
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
