package measure

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/edp1096/audio-spice/internal/consts"
)

// NoiseSeries holds per-source noise densities aligned with a frequency axis.
type NoiseSeries struct {
	Thermal       []float64
	Shot          []float64
	Flicker       []float64
	HighFrequency []float64
	Total         []float64
}

type BandNoise struct {
	Points         int     `json:"points"`
	DominantSource string  `json:"dominantSource"`
	MeanThermal    float64 `json:"meanThermal"`
	MeanCompeting  float64 `json:"meanCompeting"`
	MeanTotal      float64 `json:"meanTotal"`
}

type NoiseSpectrumAnalysis struct {
	Low          *BandNoise `json:"low,omitempty"`
	Mid          *BandNoise `json:"mid,omitempty"`
	High         *BandNoise `json:"high,omitempty"`
	RMSNoise     float64    `json:"rmsNoise"`
	PeakNoise    float64    `json:"peakNoise"`
	NoiseFloor   float64    `json:"noiseFloor"`
	DynamicRange float64    `json:"dynamicRange"`
	MeanNoise    float64    `json:"meanNoise"`
}

type noiseBand struct {
	competing string
	pick      func(NoiseSeries) []float64
	contains  func(f float64) bool
}

var noiseBands = [3]noiseBand{
	{"flicker", func(s NoiseSeries) []float64 { return s.Flicker }, func(f float64) bool { return f <= consts.FlickerCorner }},
	{"shot", func(s NoiseSeries) []float64 { return s.Shot }, func(f float64) bool { return f > consts.FlickerCorner && f <= consts.AudioBandEdge }},
	{"highFrequency", func(s NoiseSeries) []float64 { return s.HighFrequency }, func(f float64) bool { return f > consts.AudioBandEdge }},
}

// NoiseSpectrum splits the spectrum into low (<= 1 kHz), mid (1-20 kHz) and
// high (> 20 kHz) bands and names the dominant source in each populated band,
// then computes aggregate statistics of the total noise.
func NoiseSpectrum(freqs []float64, s NoiseSeries) NoiseSpectrumAnalysis {
	var nsa NoiseSpectrumAnalysis

	bands := [3]**BandNoise{&nsa.Low, &nsa.Mid, &nsa.High}
	for b, band := range noiseBands {
		var thermal, competing, total []float64
		other := band.pick(s)
		for i, f := range freqs {
			if !band.contains(f) || i >= len(s.Thermal) || i >= len(other) || i >= len(s.Total) {
				continue
			}
			thermal = append(thermal, s.Thermal[i])
			competing = append(competing, other[i])
			total = append(total, s.Total[i])
		}
		if len(thermal) == 0 {
			continue
		}

		bn := &BandNoise{
			Points:        len(thermal),
			MeanThermal:   stat.Mean(thermal, nil),
			MeanCompeting: stat.Mean(competing, nil),
			MeanTotal:     stat.Mean(total, nil),
		}
		bn.DominantSource = "thermal"
		if bn.MeanCompeting > bn.MeanThermal {
			bn.DominantSource = band.competing
		}
		*bands[b] = bn
	}

	if len(s.Total) == 0 {
		return nsa
	}
	nsa.RMSNoise = RMS(s.Total)
	nsa.PeakNoise = floats.Max(s.Total)
	nsa.NoiseFloor = floats.Min(s.Total)
	nsa.MeanNoise = stat.Mean(s.Total, nil)
	if nsa.NoiseFloor == 0 {
		nsa.DynamicRange = math.Inf(1)
	} else {
		nsa.DynamicRange = nsa.PeakNoise / nsa.NoiseFloor
	}
	return nsa
}

// RMS calculates root mean square.
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return math.Sqrt(floats.Dot(data, data) / float64(len(data)))
}
