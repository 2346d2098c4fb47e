package response

import (
	"fmt"
	"math"

	"github.com/edp1096/audio-spice/internal/consts"
	"github.com/edp1096/audio-spice/pkg/topology"
)

type SignalKind string

const (
	SignalStep   SignalKind = "step"
	SignalSine   SignalKind = "sine"
	SignalSquare SignalKind = "square"
)

// InputSignal samples the stimulus at the given times. freq applies to the
// periodic kinds and defaults to 1 kHz.
func InputSignal(times []float64, kind SignalKind, amplitude, freq float64) ([]float64, error) {
	if freq <= 0 {
		freq = consts.DefaultSignalHz
	}

	signal := make([]float64, len(times))
	switch kind {
	case SignalStep:
		for i, t := range times {
			if t >= 0 {
				signal[i] = amplitude
			}
		}
	case SignalSine:
		for i, t := range times {
			signal[i] = amplitude * math.Sin(2*math.Pi*freq*t)
		}
	case SignalSquare:
		for i, t := range times {
			if math.Sin(2*math.Pi*freq*t) >= 0 {
				signal[i] = amplitude
			} else {
				signal[i] = -amplitude
			}
		}
	default:
		return nil, fmt.Errorf("unknown input signal %q", kind)
	}
	return signal, nil
}

// TransientVoltage is the first-order RC response of the net to the input
// sample at t. The input is indexed at a fixed 1 MHz rate.
func (m *Model) TransientVoltage(net topology.Net, t float64, input []float64) float64 {
	m.evaluations.Add(1)

	if t < 0 || len(input) == 0 {
		return 0
	}
	idx := int(t * consts.TransientRate)
	if idx >= len(input) {
		idx = len(input) - 1
	}
	return input[idx] * (1 - math.Exp(-t/consts.TransientTau))
}

func (m *Model) TransientCurrent(net topology.Net, voltage float64) float64 {
	return voltage / m.Impedance(net, consts.ReferenceFreq)
}

// FourierMagnitude falls off as 1/n for the n-th harmonic.
func FourierMagnitude(freq, fundamental float64) float64 {
	if fundamental <= 0 {
		return 0
	}
	harmonic := freq / fundamental
	if harmonic < 1 {
		return 0
	}
	return 1 / harmonic
}

func FourierPhase(freq, fundamental float64) float64 {
	if fundamental <= 0 {
		return 0
	}
	return 45 * freq / fundamental
}
