package measure

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type BandwidthAnalysis struct {
	LowFreq3dB     float64   `json:"lowFreq3dB"`
	HighFreq3dB    float64   `json:"highFreq3dB"`
	Bandwidth      float64   `json:"bandwidth"`
	Flatness       float64   `json:"flatness"`
	PhaseVariation float64   `json:"phaseVariation"`
	MaxMagnitude   float64   `json:"maxMagnitude"`
	GroupDelay     []float64 `json:"groupDelay,omitempty"`
	PhaseLinearity float64   `json:"phaseLinearity,omitempty"`
}

// Bandwidth locates the -3 dB passband of a magnitude response. phase is in
// degrees. Group delay and phase linearity are only computed for
// highPrecision.
func Bandwidth(freqs, magnitude, phase []float64, highPrecision bool) BandwidthAnalysis {
	var ba BandwidthAnalysis
	n := min(len(freqs), len(magnitude))
	if n == 0 {
		return ba
	}
	freqs, magnitude = freqs[:n], magnitude[:n]

	ba.MaxMagnitude = floats.Max(magnitude)
	threshold := ba.MaxMagnitude / math.Sqrt2

	lo, hi := -1, -1
	for i, m := range magnitude {
		if m >= threshold {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	if lo < 0 {
		return ba
	}

	ba.LowFreq3dB = freqs[lo]
	ba.HighFreq3dB = freqs[hi]
	ba.Bandwidth = ba.HighFreq3dB - ba.LowFreq3dB

	passband := magnitude[lo : hi+1]
	if maxPass := floats.Max(passband); maxPass > 0 {
		ba.Flatness = floats.Min(passband) / maxPass
	}
	if len(phase) > hi {
		passPhase := phase[lo : hi+1]
		ba.PhaseVariation = floats.Max(passPhase) - floats.Min(passPhase)
	}

	if highPrecision && len(phase) >= n {
		ba.GroupDelay = GroupDelay(freqs, phase[:n])
		ba.PhaseLinearity = PhaseLinearity(freqs, phase[:n])
	}
	return ba
}

// GroupDelay differentiates phase (degrees) against frequency. The first
// sample repeats the second so the result stays aligned with freqs.
func GroupDelay(freqs, phase []float64) []float64 {
	n := min(len(freqs), len(phase))
	delay := make([]float64, n)
	if n < 2 {
		return delay
	}

	for i := 1; i < n; i++ {
		df := freqs[i] - freqs[i-1]
		if df == 0 {
			continue
		}
		dphi := (phase[i] - phase[i-1]) * math.Pi / 180
		delay[i] = -dphi / (2 * math.Pi * df)
	}
	delay[0] = delay[1]
	return delay
}

// PhaseLinearity scores from 0 to 1 how closely phase follows the straight
// line through its endpoints.
func PhaseLinearity(freqs, phase []float64) float64 {
	n := min(len(freqs), len(phase))
	if n < 3 {
		return 1.0
	}

	freqRange := freqs[n-1] - freqs[0]
	if freqRange == 0 {
		return 1.0
	}
	slope := (phase[n-1] - phase[0]) / freqRange

	sumSq := 0.0
	for i := range n {
		ideal := phase[0] + slope*(freqs[i]-freqs[0])
		d := phase[i] - ideal
		sumSq += d * d
	}
	rms := math.Sqrt(sumSq / float64(n))

	phaseRange := floats.Max(phase[:n]) - floats.Min(phase[:n])
	if phaseRange == 0 {
		return 1.0
	}
	return math.Max(0, 1-rms/phaseRange)
}
