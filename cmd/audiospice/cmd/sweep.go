package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edp1096/audio-spice/pkg/sweep"
	"github.com/edp1096/audio-spice/pkg/util"
)

var (
	sweepType   string
	sweepStart  float64
	sweepStop   float64
	sweepPoints int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Print the frequency points of a sweep",
	Long: `Print the frequency points generated for a sweep. AUDIO is the
audio-weighted sweep used by the AC and noise analyses.

Examples:
  audiospice sweep --type DEC --start 10 --stop 100000 --points 31
  audiospice sweep --type AUDIO --points 200`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVarP(&sweepType, "type", "t", "AUDIO", "sweep type (DEC, OCT, LIN, AUDIO)")
	sweepCmd.Flags().Float64Var(&sweepStart, "start", 20, "start frequency in Hz")
	sweepCmd.Flags().Float64Var(&sweepStop, "stop", 80000, "stop frequency in Hz")
	sweepCmd.Flags().IntVarP(&sweepPoints, "points", "n", 200, "number of points")
}

func runSweep(cmd *cobra.Command, _ []string) error {
	t, err := sweep.ParseType(sweepType)
	if err != nil {
		return err
	}
	freqs, err := sweep.Points(t, sweepStart, sweepStop, sweepPoints)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s sweep, %d points\n", t, len(freqs))
	for i, f := range freqs {
		fmt.Fprintf(w, "%4d  %s\n", i, util.FormatFrequency(f))
	}
	return nil
}
