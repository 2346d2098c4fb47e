package sweep

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/edp1096/audio-spice/internal/consts"
)

type Type string

const (
	DEC   Type = "DEC" // Decade
	OCT   Type = "OCT" // Octave
	LIN   Type = "LIN" // Linear
	AUDIO Type = "AUDIO"
)

// ParseType accepts the sweep keywords case-insensitively.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToUpper(s)); t {
	case DEC, OCT, LIN, AUDIO:
		return t, nil
	}
	return "", fmt.Errorf("unknown sweep type %q", s)
}

// Points generates n frequency points from start to stop.
func Points(sweepType Type, start, stop float64, n int) ([]float64, error) {
	if n <= 0 {
		return []float64{}, nil
	}
	if sweepType != LIN && (start <= 0 || stop <= 0) {
		return nil, fmt.Errorf("%s sweep needs positive frequencies (start=%g, stop=%g)", sweepType, start, stop)
	}

	switch sweepType {
	case DEC:
		return logSweep(start, stop, n), nil

	case AUDIO:
		return GenerateAudioFrequencies(start, stop, n, true), nil

	case OCT:
		freqs := make([]float64, n)
		if n == 1 {
			freqs[0] = start
			return freqs, nil
		}
		logStart := math.Log2(start)
		logStop := math.Log2(stop)
		step := (logStop - logStart) / float64(n-1)
		for i := range n {
			freqs[i] = math.Pow(2, logStart+float64(i)*step)
		}
		return freqs, nil

	case LIN:
		freqs := make([]float64, n)
		if n == 1 {
			freqs[0] = start
			return freqs, nil
		}
		return floats.Span(freqs, start, stop), nil
	}

	return nil, fmt.Errorf("unknown sweep type %q", sweepType)
}

// GenerateAudioFrequencies returns a strictly increasing set of at most count
// frequencies between start and stop.
//
// With highPrecision the points are split 30/40/30 between [start, 1 kHz],
// [1 kHz, 20 kHz] and [20 kHz, stop], which puts most of the resolution
// inside the audible band while still reaching into the ultrasonic range.
// Points shared by adjacent bands are removed. Without highPrecision a single
// logarithmic sweep of exactly count points is returned.
func GenerateAudioFrequencies(start, stop float64, count int, highPrecision bool) []float64 {
	if count <= 0 || start <= 0 || stop <= 0 {
		return []float64{}
	}
	if !highPrecision {
		return logSweep(start, stop, count)
	}

	lowPoints := int(float64(count) * 0.3)
	midPoints := int(float64(count) * 0.4)
	highPoints := int(float64(count) * 0.3)
	if lowPoints+midPoints+highPoints == 0 {
		return logSweep(start, stop, count)
	}

	freqs := make([]float64, 0, count)
	freqs = append(freqs, bandSweep(start, math.Min(stop, consts.MidBandStart), lowPoints)...)
	freqs = append(freqs, bandSweep(math.Max(start, consts.MidBandStart), math.Min(stop, consts.AudioBandEdge), midPoints)...)
	freqs = append(freqs, bandSweep(math.Max(start, consts.AudioBandEdge), stop, highPoints)...)

	return dedupSorted(freqs)
}

// bandSweep sweeps one sub-range; an inverted range contributes nothing.
func bandSweep(start, stop float64, n int) []float64 {
	if n <= 0 || stop < start {
		return nil
	}
	return logSweep(start, stop, n)
}

func logSweep(start, stop float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if n == 1 {
		return []float64{start}
	}
	freqs := floats.LogSpan(make([]float64, n), start, stop)
	// pin the endpoints so adjacent bands meet on identical values
	freqs[0], freqs[n-1] = start, stop
	return freqs
}

func dedupSorted(freqs []float64) []float64 {
	sort.Float64s(freqs)

	out := freqs[:0]
	for i, f := range freqs {
		if i > 0 && f-out[len(out)-1] <= 1e-12*f {
			continue
		}
		out = append(out, f)
	}
	return out
}
