package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edp1096/audio-spice/pkg/engine"
	"github.com/edp1096/audio-spice/pkg/topology"
)

var (
	runKind    string
	runParams  []string
	runRows    int
	runWorkers int
	runMetrics bool
)

var runCmd = &cobra.Command{
	Use:   "run <topology.json>",
	Short: "Run one analysis over a board topology",
	Long: `Load a board topology exported as JSON and run one analysis over it.
Parameters use the request names, e.g. startFrequency, numPoints,
highPrecision, voltageSources (NET:volts,NET:volts) or windowType.
Parameters that are not given keep their defaults.

Examples:
  audiospice run board.json --kind ac -p startFrequency=20 -p stopFrequency=20000
  audiospice run board.json --kind fourier -p fundamentalFrequency=440
  audiospice run board.json --kind transient --rows 0
  audiospice run board.json --kind dc --metrics`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalysis,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runKind, "kind", "k", "ac",
		"analysis kind (dc, ac, transient, noise, fourier)")
	runCmd.Flags().StringArrayVarP(&runParams, "param", "p", nil,
		"analysis parameter as key=value (repeatable)")
	runCmd.Flags().IntVar(&runRows, "rows", 10,
		"series rows to print per analysis, 0 for summary only")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0,
		"per-net worker goroutines (default AUDIOSPICE_WORKERS or GOMAXPROCS)")
	runCmd.Flags().BoolVar(&runMetrics, "metrics", false,
		"print the engine's Prometheus metrics after the result")
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	params, err := parseParams(runParams)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open topology: %w", err)
	}
	defer f.Close()

	topo, err := topology.Load(f)
	if err != nil {
		return err
	}

	cfg := engine.ConfigFromEnv()
	cfg.Logger = logger
	if runWorkers > 0 {
		cfg.Workers = runWorkers
	}
	eng, err := engine.New(engine.StaticTopology{Topology: topo}, cfg)
	if err != nil {
		return err
	}

	res := eng.Run(cmd.Context(), runKind, params)
	if !res.Success {
		return errors.New(res.ErrorMessage)
	}
	printResult(cmd.OutOrStdout(), res, runRows)
	if runMetrics {
		fmt.Fprintln(cmd.OutOrStdout())
		if err := eng.WriteMetrics(cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	return nil
}

// parseParams turns key=value pairs into a parameter map. Values stay
// strings; the request parser converts them.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", pair)
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}
