package util

import (
	"math"
	"testing"
)

func TestFormatValueFactor(t *testing.T) {
	tests := []struct {
		value float64
		unit  string
		want  string
	}{
		{0, "V", "0.000 V"},
		{5, "V", "5.000 V"},
		{0.0042, "V", "4.200 mV"},
		{-2.5e-6, "A", "-2.500 uA"},
		{3.3e-9, "s", "3.300 ns"},
		{47e3, "Ohm", "47.000 kOhm"},
		{2.2e6, "Hz", "2.200 MHz"},
		{1e-18, "V", "1.000e-18 V"},
		{math.Inf(1), "V", "+Inf V"},
	}
	for _, tt := range tests {
		if got := FormatValueFactor(tt.value, tt.unit); got != tt.want {
			t.Fatalf("FormatValueFactor(%v, %q) = %q, want %q", tt.value, tt.unit, got, tt.want)
		}
	}
}

func TestFormatFrequency(t *testing.T) {
	tests := map[float64]string{
		20:    " 20.000 Hz ",
		1000:  "  1.000 kHz",
		80000: " 80.000 kHz",
		2e6:   "  2.000 MHz",
	}
	for freq, want := range tests {
		if got := FormatFrequency(freq); got != want {
			t.Fatalf("FormatFrequency(%v) = %q, want %q", freq, got, want)
		}
	}
}

func TestFormatMagnitudePhase(t *testing.T) {
	if got := FormatMagnitudePhase("OUT", 1, -45); got != "OUT=       1< -45.0deg" {
		t.Fatalf("FormatMagnitudePhase = %q", got)
	}
	if got := FormatMagnitude(5e-5); got != "5.00e-05" {
		t.Fatalf("FormatMagnitude small = %q", got)
	}
}

func TestFormatDecibel(t *testing.T) {
	if got := FormatDecibel(1); got != "0.00 dB" {
		t.Fatalf("FormatDecibel(1) = %q", got)
	}
	if got := FormatDecibel(0.1); got != "-20.00 dB" {
		t.Fatalf("FormatDecibel(0.1) = %q", got)
	}
	if got := FormatDecibel(0); got != "-inf dB" {
		t.Fatalf("FormatDecibel(0) = %q", got)
	}
	if got := FormatPercent(12.5); got != "12.5000 %" {
		t.Fatalf("FormatPercent = %q", got)
	}
}
