package analysis

import (
	"time"

	"github.com/edp1096/audio-spice/pkg/measure"
	"github.com/edp1096/audio-spice/pkg/topology"
)

// Result is the outcome of one analysis run. Data is nil unless Success.
// A Result must not be modified once returned; the engine hands the same
// pointer to every caller asking for an identical request.
type Result struct {
	Kind         Kind     `json:"kind"`
	Success      bool     `json:"success"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
	Data         Data     `json:"data,omitempty"`
	Metadata     Metadata `json:"metadata"`
}

type Metadata struct {
	Parameters    map[string]any        `json:"parameters"`
	Fingerprint   string                `json:"fingerprint"`
	RunID         string                `json:"runId"`
	ExecutionTime time.Duration         `json:"executionTime"`
	Circuit       topology.CircuitStats `json:"circuit"`
}

// Data is one of *DCData, *ACData, *TransientData, *NoiseData or
// *FourierData.
type Data interface {
	isData()
}

type DCData struct {
	NodeVoltages     map[string]float64 `json:"nodeVoltages"`
	BranchCurrents   map[string]float64 `json:"branchCurrents"`
	PowerDissipation map[string]float64 `json:"powerDissipation"`
	TrackResistance  map[string]float64 `json:"trackResistance"`
	TotalPower       float64            `json:"totalPower"`
}

type TransferFunction struct {
	Magnitude []float64 `json:"magnitude"`
	Phase     []float64 `json:"phase"`
}

type ACData struct {
	Frequencies       []float64                            `json:"frequencies"`
	MagnitudeResponse map[string][]float64                 `json:"magnitudeResponse"`
	PhaseResponse     map[string][]float64                 `json:"phaseResponse"`
	Impedance         map[string][]float64                 `json:"impedance"`
	TransferFunction  map[string]TransferFunction          `json:"transferFunction"`
	Bandwidth         map[string]measure.BandwidthAnalysis `json:"bandwidth"`
	Overall           measure.BandwidthAnalysis            `json:"overall"`
	Precision         measure.PrecisionMetrics             `json:"precision"`
	Source            string                               `json:"source"`
	SourceAnalysed    bool                                 `json:"sourceAnalysed"`
}

type TransientData struct {
	Time     []float64                   `json:"time"`
	Input    []float64                   `json:"input"`
	Voltage  map[string][]float64        `json:"voltage"`
	Current  map[string][]float64        `json:"current"`
	Power    map[string][]float64        `json:"power"`
	Spectrum map[string]measure.Spectrum `json:"spectrum"`
}

type NoiseData struct {
	Frequencies   []float64                                `json:"frequencies"`
	Thermal       map[string][]float64                     `json:"thermalNoise"`
	Shot          map[string][]float64                     `json:"shotNoise"`
	Flicker       map[string][]float64                     `json:"flickerNoise"`
	HighFrequency map[string][]float64                     `json:"highFrequencyNoise"`
	Total         map[string][]float64                     `json:"totalNoise"`
	NoiseFigure   map[string][]float64                     `json:"noiseFigure"`
	SNR           map[string][]float64                     `json:"snr"`
	Spectrum      map[string]measure.NoiseSpectrumAnalysis `json:"spectrumAnalysis"`
}

type FourierData struct {
	Harmonics       []float64            `json:"harmonics"`
	Magnitude       map[string][]float64 `json:"magnitude"`
	Phase           map[string][]float64 `json:"phase"`
	HarmonicContent map[string][]float64 `json:"harmonicContent"`
	PowerSpectrum   map[string][]float64 `json:"powerSpectrum"`
	THD             map[string]float64   `json:"thd"`
	THDPercent      map[string]float64   `json:"thdPercent"`
	Window          string               `json:"window"`
}

func (*DCData) isData()        {}
func (*ACData) isData()        {}
func (*TransientData) isData() {}
func (*NoiseData) isData()     {}
func (*FourierData) isData()   {}
