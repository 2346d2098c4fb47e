package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edp1096/audio-spice/internal/logging"
	"github.com/edp1096/audio-spice/internal/observability"
)

var (
	logLevel     string
	logFormat    string
	traceEnabled bool

	logger          logging.Logger = logging.Noop()
	tracingShutdown func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "audiospice",
	Short: "Audio-band circuit analysis",
	Long: `Run DC, AC, transient, noise and Fourier/THD analyses over a board
topology exported as JSON.

Examples:
  audiospice run board.json --kind ac --param numPoints=50
  audiospice run board.json --kind dc --param voltageSources=VCC:3.3
  audiospice sweep --type AUDIO --start 20 --stop 80000 --points 200`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "warn"),
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", envOr("LOG_FORMAT", "text"),
		"log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&traceEnabled, "trace", false,
		"export OpenTelemetry spans (AUDIOSPICE_TRACING_* variables select the exporter)")
}

func setup(cmd *cobra.Command, _ []string) error {
	logger = logging.New(logging.Config{
		Level:  logLevel,
		Format: logFormat,
		Output: cmd.ErrOrStderr(),
	})

	cfg := observability.TracingConfigFromEnv()
	cfg.Enabled = cfg.Enabled || traceEnabled
	if cfg.Exporter == "stdout" {
		cfg.Writer = cmd.ErrOrStderr()
	}
	shutdown, err := observability.InitTracing(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	tracingShutdown = shutdown
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	observability.ShutdownWithTimeout(context.Background(), tracingShutdown, logger)
	tracingShutdown = nil
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
