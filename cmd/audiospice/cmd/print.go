package cmd

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/edp1096/audio-spice/pkg/analysis"
	"github.com/edp1096/audio-spice/pkg/measure"
	"github.com/edp1096/audio-spice/pkg/util"
)

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// rowIndices picks at most rows evenly spaced indices of an n-point series,
// always including the last one.
func rowIndices(n, rows int) []int {
	if rows <= 0 || n == 0 {
		return nil
	}
	if rows >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	if rows == 1 {
		return []int{0}
	}
	idx := make([]int, rows)
	for i := range idx {
		idx[i] = i * (n - 1) / (rows - 1)
	}
	return idx
}

func printResult(w io.Writer, res *analysis.Result, rows int) {
	md := res.Metadata
	fmt.Fprintf(w, "%s analysis  fingerprint=%s  run=%s  elapsed=%s\n",
		strings.ToUpper(string(res.Kind)), md.Fingerprint, md.RunID, md.ExecutionTime)
	fmt.Fprintf(w, "circuit: %d components, %d nets (%d power, %d ground, %d signal), %d tracks, %d vias\n",
		md.Circuit.Components, md.Circuit.Nets, md.Circuit.PowerNets, md.Circuit.GroundNets,
		md.Circuit.SignalNets, md.Circuit.Tracks, md.Circuit.Vias)

	switch data := res.Data.(type) {
	case *analysis.DCData:
		printDC(w, data)
	case *analysis.ACData:
		printAC(w, data, rows)
	case *analysis.TransientData:
		printTransient(w, data, rows)
	case *analysis.NoiseData:
		printNoise(w, data)
	case *analysis.FourierData:
		printFourier(w, data)
	}
}

func printDC(w io.Writer, data *analysis.DCData) {
	fmt.Fprintln(w, "\nNode Voltages:")
	for _, net := range sortedKeys(data.NodeVoltages) {
		fmt.Fprintf(w, "  %-12s V=%-12s I=%-12s Rtrack=%s\n", net,
			util.FormatValueFactor(data.NodeVoltages[net], "V"),
			util.FormatValueFactor(data.BranchCurrents[net], "A"),
			util.FormatValueFactor(data.TrackResistance[net], "Ohm"))
	}
	fmt.Fprintln(w, "\nPower Dissipation:")
	for _, ref := range sortedKeys(data.PowerDissipation) {
		fmt.Fprintf(w, "  %-12s %s\n", ref, util.FormatValueFactor(data.PowerDissipation[ref], "W"))
	}
	fmt.Fprintf(w, "  %-12s %s\n", "total", util.FormatValueFactor(data.TotalPower, "W"))
}

func printBandwidth(w io.Writer, name string, bw measure.BandwidthAnalysis) {
	fmt.Fprintf(w, "  %-12s -3dB %s .. %s  BW=%s  flatness=%s  phase var=%s deg\n", name,
		util.FormatFrequency(bw.LowFreq3dB), util.FormatFrequency(bw.HighFreq3dB),
		util.FormatValueFactor(bw.Bandwidth, "Hz"), util.FormatMagnitude(bw.Flatness),
		util.FormatPhase(bw.PhaseVariation))
}

func printAC(w io.Writer, data *analysis.ACData, rows int) {
	nets := sortedKeys(data.MagnitudeResponse)
	p := data.Precision
	fmt.Fprintf(w, "\nAC Analysis Results (%d frequency points, %.1f points/decade, %d in audio band):\n",
		p.Points, p.PointsPerDecade, p.AudioBandPoints)

	fmt.Fprintln(w, "\nBandwidth:")
	for _, net := range nets {
		printBandwidth(w, net, data.Bandwidth[net])
	}
	printBandwidth(w, "overall", data.Overall)

	if len(data.TransferFunction) > 0 {
		ref := data.Source
		if !data.SourceAnalysed {
			ref += " (ideal)"
		}
		fmt.Fprintf(w, "\nTransfer function against %s at %s:\n", ref, util.FormatFrequency(data.Frequencies[0]))
		for _, net := range sortedKeys(data.TransferFunction) {
			tf := data.TransferFunction[net]
			fmt.Fprintf(w, "  %-12s %s  %s deg\n", net, util.FormatDecibel(tf.Magnitude[0]), util.FormatPhase(tf.Phase[0]))
		}
	}

	idx := rowIndices(len(data.Frequencies), rows)
	if len(idx) == 0 {
		return
	}
	fmt.Fprintln(w, "\nFrequency      Node Voltages (Magnitude/Phase)")
	fmt.Fprintln(w, "-----------------------------------------------------------------------------")
	for _, i := range idx {
		fmt.Fprintf(w, "%-13s", util.FormatFrequency(data.Frequencies[i]))
		for _, net := range nets {
			fmt.Fprintf(w, "%s  ", util.FormatMagnitudePhase("V("+net+")", data.MagnitudeResponse[net][i], data.PhaseResponse[net][i]))
		}
		fmt.Fprintln(w)
	}
}

func printTransient(w io.Writer, data *analysis.TransientData, rows int) {
	nets := sortedKeys(data.Voltage)
	fmt.Fprintf(w, "\nTransient Analysis Results (%d time points):\n", len(data.Time))
	for _, net := range nets {
		s := data.Spectrum[net]
		peak := 0.0
		for _, v := range data.Current[net] {
			peak = math.Max(peak, math.Abs(v))
		}
		fmt.Fprintf(w, "  %-12s peak I=%-12s dominant=%s  centroid=%s\n", net,
			util.FormatValueFactor(peak, "A"), util.FormatFrequency(s.DominantFrequency),
			util.FormatFrequency(s.SpectralCentroid))
	}

	idx := rowIndices(len(data.Time), rows)
	if len(idx) == 0 {
		return
	}
	fmt.Fprintln(w, "\nTime        Input        Node Voltages")
	fmt.Fprintln(w, "------------------------------------------------")
	for _, i := range idx {
		fmt.Fprintf(w, "%9s  %-11s  ", util.FormatValueFactor(data.Time[i], "s"), util.FormatValueFactor(data.Input[i], "V"))
		for _, net := range nets {
			fmt.Fprintf(w, "V(%s)=%s  ", net, util.FormatValueFactor(data.Voltage[net][i], "V"))
		}
		fmt.Fprintln(w)
	}
}

func printNoise(w io.Writer, data *analysis.NoiseData) {
	fmt.Fprintf(w, "\nNoise Analysis Results (%d frequency points):\n", len(data.Frequencies))
	for _, net := range sortedKeys(data.Spectrum) {
		s := data.Spectrum[net]
		fmt.Fprintf(w, "  %-12s rms=%s/rtHz  floor=%s/rtHz  peak=%s/rtHz\n", net,
			util.FormatValueFactor(s.RMSNoise, "V"), util.FormatValueFactor(s.NoiseFloor, "V"),
			util.FormatValueFactor(s.PeakNoise, "V"))
		for _, band := range []struct {
			name string
			b    *measure.BandNoise
		}{{"low", s.Low}, {"mid", s.Mid}, {"high", s.High}} {
			if band.b == nil {
				continue
			}
			fmt.Fprintf(w, "  %-12s %-4s %3d points, dominant %s\n", "", band.name, band.b.Points, band.b.DominantSource)
		}
	}
}

func printFourier(w io.Writer, data *analysis.FourierData) {
	fmt.Fprintf(w, "\nFourier Analysis Results (fundamental %s, %d harmonics, %s window):\n",
		util.FormatFrequency(data.Harmonics[0]), len(data.Harmonics), data.Window)
	for _, net := range sortedKeys(data.THD) {
		fmt.Fprintf(w, "  %-12s THD=%s (%s)\n", net, util.FormatPercent(data.THDPercent[net]), util.FormatDecibel(data.THD[net]))
	}
}
