package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/edp1096/audio-spice/internal/consts"
	"github.com/edp1096/audio-spice/pkg/measure"
	"github.com/edp1096/audio-spice/pkg/response"
)

type Kind string

const (
	KindDC        Kind = "dc"
	KindAC        Kind = "ac"
	KindTransient Kind = "transient"
	KindNoise     Kind = "noise"
	KindFourier   Kind = "fourier"
)

// Kinds lists every supported analysis kind.
var Kinds = []Kind{KindDC, KindAC, KindTransient, KindNoise, KindFourier}

// ParseKind accepts the kind names case-insensitively, plus "tran".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDC, KindAC, KindTransient, KindNoise, KindFourier:
		return k, nil
	case "tran":
		return KindTransient, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Request is one of DCRequest, ACRequest, TransientRequest, NoiseRequest or
// FourierRequest.
type Request interface {
	Kind() Kind
	Validate() error
	isRequest()
}

// maxTimePoints bounds the transient grid.
const maxTimePoints = 10_000_000

type DCRequest struct {
	VoltageSources map[string]float64 `json:"voltageSources"`
	CurrentSources map[string]float64 `json:"currentSources"`
	Tolerance      float64            `json:"tolerance"`
	MaxIterations  int                `json:"maxIterations"`
	Temperature    float64            `json:"temperature"`
}

func DefaultDC() DCRequest {
	return DCRequest{
		VoltageSources: map[string]float64{},
		CurrentSources: map[string]float64{},
		Tolerance:      1e-6,
		MaxIterations:  100,
		Temperature:    consts.TNOM,
	}
}

func (DCRequest) Kind() Kind { return KindDC }
func (DCRequest) isRequest() {}

func (r DCRequest) Validate() error {
	for name, v := range r.VoltageSources {
		if !finite(v) {
			return invalid("voltage source %q is not finite", name)
		}
	}
	for name, v := range r.CurrentSources {
		if !finite(v) {
			return invalid("current source %q is not finite", name)
		}
	}
	if r.Tolerance < 0 || r.MaxIterations < 0 {
		return invalid("tolerance and maxIterations must not be negative")
	}
	if r.Temperature <= 0 {
		return invalid("temperature must be positive, got %g", r.Temperature)
	}
	return nil
}

type ACRequest struct {
	StartFrequency float64 `json:"startFrequency"`
	StopFrequency  float64 `json:"stopFrequency"`
	NumPoints      int     `json:"numPoints"`
	Source         string  `json:"acSource"`
	Amplitude      float64 `json:"acAmplitude"`
	HighPrecision  bool    `json:"highPrecision"`
}

func DefaultAC() ACRequest {
	return ACRequest{
		StartFrequency: 20,
		StopFrequency:  80000,
		NumPoints:      200,
		Source:         "V1",
		Amplitude:      1.0,
		HighPrecision:  true,
	}
}

func (ACRequest) Kind() Kind { return KindAC }
func (ACRequest) isRequest() {}

func (r ACRequest) Validate() error {
	if err := validateSweep(r.StartFrequency, r.StopFrequency, r.NumPoints); err != nil {
		return err
	}
	if !finite(r.Amplitude) {
		return invalid("acAmplitude is not finite")
	}
	return nil
}

type TransientRequest struct {
	StartTime      float64 `json:"startTime"`
	StopTime       float64 `json:"stopTime"`
	TimeStep       float64 `json:"timeStep"`
	InputSignal    string  `json:"inputSignal"`
	InputAmplitude float64 `json:"inputAmplitude"`
	InputFrequency float64 `json:"inputFrequency"`
	Window         string  `json:"window"`
}

func DefaultTransient() TransientRequest {
	return TransientRequest{
		StartTime:      0,
		StopTime:       1e-3,
		TimeStep:       1e-6,
		InputSignal:    string(response.SignalStep),
		InputAmplitude: 1.0,
		InputFrequency: consts.DefaultSignalHz,
		Window:         "hann",
	}
}

func (TransientRequest) Kind() Kind { return KindTransient }
func (TransientRequest) isRequest() {}

func (r TransientRequest) Validate() error {
	if !finite(r.StartTime) || !finite(r.StopTime) || !finite(r.InputAmplitude) || !finite(r.InputFrequency) {
		return invalid("transient parameters must be finite")
	}
	if r.TimeStep <= 0 {
		return invalid("timeStep must be positive, got %g", r.TimeStep)
	}
	if r.StopTime < r.StartTime {
		return invalid("stopTime %g is before startTime %g", r.StopTime, r.StartTime)
	}
	if (r.StopTime-r.StartTime)/r.TimeStep >= maxTimePoints {
		return invalid("time grid exceeds %d points", maxTimePoints)
	}
	switch response.SignalKind(r.InputSignal) {
	case response.SignalStep, response.SignalSine, response.SignalSquare:
	default:
		return invalid("unknown inputSignal %q", r.InputSignal)
	}
	if !measure.ValidWindow(r.Window) {
		return invalid("unknown window %q", r.Window)
	}
	return nil
}

type NoiseRequest struct {
	StartFrequency     float64 `json:"startFrequency"`
	StopFrequency      float64 `json:"stopFrequency"`
	NumPoints          int     `json:"numPoints"`
	Temperature        float64 `json:"temperature"`
	ReferenceImpedance float64 `json:"referenceImpedance"`
	HighPrecision      bool    `json:"highPrecision"`
	SignalLevel        float64 `json:"signalLevel"`
}

func DefaultNoise() NoiseRequest {
	return NoiseRequest{
		StartFrequency:     20,
		StopFrequency:      80000,
		NumPoints:          200,
		Temperature:        consts.ROOMTEMP,
		ReferenceImpedance: 50,
		HighPrecision:      true,
		SignalLevel:        1.0,
	}
}

func (NoiseRequest) Kind() Kind { return KindNoise }
func (NoiseRequest) isRequest() {}

func (r NoiseRequest) Validate() error {
	if err := validateSweep(r.StartFrequency, r.StopFrequency, r.NumPoints); err != nil {
		return err
	}
	if !finite(r.Temperature) || r.Temperature < 0 {
		return invalid("temperature must be a non-negative number, got %g", r.Temperature)
	}
	if !finite(r.ReferenceImpedance) || r.ReferenceImpedance <= 0 {
		return invalid("referenceImpedance must be positive, got %g", r.ReferenceImpedance)
	}
	if !finite(r.SignalLevel) {
		return invalid("signalLevel is not finite")
	}
	return nil
}

type FourierRequest struct {
	FundamentalFrequency float64 `json:"fundamentalFrequency"`
	NumHarmonics         int     `json:"numHarmonics"`
	WindowType           string  `json:"windowType"`
}

func DefaultFourier() FourierRequest {
	return FourierRequest{
		FundamentalFrequency: consts.ReferenceFreq,
		NumHarmonics:         10,
		WindowType:           "hann",
	}
}

func (FourierRequest) Kind() Kind { return KindFourier }
func (FourierRequest) isRequest() {}

func (r FourierRequest) Validate() error {
	if !finite(r.FundamentalFrequency) || r.FundamentalFrequency <= 0 {
		return invalid("fundamentalFrequency must be positive, got %g", r.FundamentalFrequency)
	}
	if r.NumHarmonics < 1 {
		return invalid("numHarmonics must be at least 1, got %d", r.NumHarmonics)
	}
	// windowType is echoed, not applied, so any name is accepted
	return nil
}

func validateSweep(start, stop float64, n int) error {
	if !finite(start) || !finite(stop) {
		return invalid("sweep bounds must be finite")
	}
	if start <= 0 {
		return invalid("startFrequency must be positive, got %g", start)
	}
	if stop < start {
		return invalid("stopFrequency %g is below startFrequency %g", stop, start)
	}
	if n < 1 {
		return invalid("numPoints must be at least 1, got %d", n)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
