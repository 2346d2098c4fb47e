package measure

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strings"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

var windows = map[string]func(int) []float64{
	"hann":        window.Hann,
	"hanning":     window.Hann,
	"hamming":     window.Hamming,
	"blackman":    window.Blackman,
	"bartlett":    window.Bartlett,
	"flattop":     window.FlatTop,
	"rectangular": window.Rectangular,
	"none":        window.Rectangular,
}

// WindowNames lists the accepted window names in sorted order.
func WindowNames() []string {
	names := make([]string, 0, len(windows))
	for name := range windows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidWindow reports whether name is a known window. Matching ignores case.
func ValidWindow(name string) bool {
	_, ok := windows[strings.ToLower(name)]
	return ok
}

type Spectrum struct {
	Window            string  `json:"window"`
	Bins              int     `json:"bins"`
	Resolution        float64 `json:"resolution"`
	DominantFrequency float64 `json:"dominantFrequency"`
	DominantMagnitude float64 `json:"dominantMagnitude"`
	SpectralCentroid  float64 `json:"spectralCentroid"`
	DCComponent       float64 `json:"dcComponent"`
}

// SpectrumSummary windows the samples and reports the strongest non-DC bin of
// their one-sided FFT magnitude together with the spectral centroid.
func SpectrumSummary(samples []float64, sampleRate float64, windowName string) (Spectrum, error) {
	name := strings.ToLower(windowName)
	fn, ok := windows[name]
	if !ok {
		return Spectrum{}, fmt.Errorf("unknown window %q", windowName)
	}
	sp := Spectrum{Window: name}
	if len(samples) < 2 || sampleRate <= 0 {
		return sp, nil
	}

	x := make([]float64, len(samples))
	copy(x, samples)
	window.Apply(x, fn)

	coeffs := fft.FFTReal(x)
	n := len(coeffs)
	half := n/2 + 1
	sp.Bins = half
	sp.Resolution = sampleRate / float64(n)

	mags := make([]float64, half)
	for k := range half {
		mags[k] = cmplx.Abs(coeffs[k]) / float64(n)
	}
	sp.DCComponent = mags[0]

	var weighted, total float64
	for k := 1; k < half; k++ {
		f := float64(k) * sp.Resolution
		if mags[k] > sp.DominantMagnitude {
			sp.DominantMagnitude = mags[k]
			sp.DominantFrequency = f
		}
		weighted += f * mags[k]
		total += mags[k]
	}
	if total > 0 && !math.IsNaN(weighted) {
		sp.SpectralCentroid = weighted / total
	}
	return sp, nil
}
