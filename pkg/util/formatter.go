// Package util formats analysis values for terminal output.
package util

import (
	"fmt"
	"math"
)

type siPrefix struct {
	scale  float64
	symbol string
}

// descending; values below the last prefix fall through to exponent notation
var siPrefixes = []siPrefix{
	{1e6, "M"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
	{1e-15, "f"},
}

// FormatValueFactor renders value with an SI prefix, e.g. 0.0042 V as
// "4.200 mV". Values from 1 to 1000 keep no prefix.
func FormatValueFactor(value float64, unit string) string {
	switch {
	case value == 0:
		return fmt.Sprintf("0.000 %s", unit)
	case math.IsNaN(value) || math.IsInf(value, 0):
		return fmt.Sprintf("%v %s", value, unit)
	}

	abs := math.Abs(value)
	if abs >= 1 && abs < 1e3 {
		return fmt.Sprintf("%.3f %s", value, unit)
	}
	for _, p := range siPrefixes {
		if abs >= p.scale {
			return fmt.Sprintf("%.3f %s%s", value/p.scale, p.symbol, unit)
		}
	}
	return fmt.Sprintf("%.3e %s", value, unit)
}

// FormatFrequency renders a frequency in a fixed-width column.
func FormatFrequency(freq float64) string {
	switch {
	case freq >= 1e6:
		return fmt.Sprintf("%7.3f MHz", freq/1e6)
	case freq >= 1e3:
		return fmt.Sprintf("%7.3f kHz", freq/1e3)
	default:
		return fmt.Sprintf("%7.3f Hz ", freq)
	}
}

func FormatMagnitude(value float64) string {
	if value >= 1000 || (value < 0.001 && value != 0) {
		return fmt.Sprintf("%8.2e", value)
	}
	return fmt.Sprintf("%8.3g", value)
}

func FormatPhase(value float64) string {
	return fmt.Sprintf("%6.1f", value)
}

// FormatMagnitudePhase renders a phasor as name=mag<phase.
func FormatMagnitudePhase(name string, value, phase float64) string {
	return fmt.Sprintf("%s=%s<%sdeg", name, FormatMagnitude(value), FormatPhase(phase))
}

// FormatDecibel renders a ratio in dB; a zero ratio reads "-inf dB".
func FormatDecibel(ratio float64) string {
	if ratio <= 0 {
		return "-inf dB"
	}
	return fmt.Sprintf("%.2f dB", 20*math.Log10(ratio))
}

func FormatPercent(value float64) string {
	return fmt.Sprintf("%.4f %%", value)
}
