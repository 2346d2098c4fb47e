package analysis

import (
	"context"
	"fmt"

	"github.com/edp1096/audio-spice/pkg/measure"
	"github.com/edp1096/audio-spice/pkg/response"
	"github.com/edp1096/audio-spice/pkg/sweep"
)

type NoiseAnalysis struct {
	BaseAnalysis
	req         NoiseRequest
	frequencies []float64
	data        *NoiseData
}

func NewNoise(req NoiseRequest, opts Options) *NoiseAnalysis {
	return &NoiseAnalysis{
		BaseAnalysis: *NewBaseAnalysis(opts),
		req:          req,
	}
}

type netNoise struct {
	series measure.NoiseSeries
	nf     []float64
	snr    []float64
}

func (na *NoiseAnalysis) Execute(ctx context.Context) error {
	if na.Topology == nil {
		return fmt.Errorf("topology not set")
	}

	na.frequencies = sweep.GenerateAudioFrequencies(na.req.StartFrequency, na.req.StopFrequency, na.req.NumPoints, na.req.HighPrecision)
	nf := len(na.frequencies)

	nets := na.nets
	results := make([]netNoise, len(nets))

	err := forEach(ctx, len(nets), na.Workers, func(i int) error {
		r := netNoise{
			series: measure.NoiseSeries{
				Thermal:       make([]float64, nf),
				Shot:          make([]float64, nf),
				Flicker:       make([]float64, nf),
				HighFrequency: make([]float64, nf),
				Total:         make([]float64, nf),
			},
			nf:  make([]float64, nf),
			snr: make([]float64, nf),
		}
		for j, f := range na.frequencies {
			n := na.Model.Noise(nets[i], f, na.req.Temperature, na.req.SignalLevel)
			r.series.Thermal[j] = n.Thermal
			r.series.Shot[j] = n.Shot
			r.series.Flicker[j] = n.Flicker
			r.series.HighFrequency[j] = n.HighFrequency
			r.series.Total[j] = n.Total
			r.nf[j] = response.NoiseFigure(n.Total, f, na.req.ReferenceImpedance)
			r.snr[j] = response.SNR(na.req.SignalLevel, n.Total)
		}
		results[i] = r
		return nil
	})
	if err != nil {
		return err
	}
	if err := na.checkContext(ctx); err != nil {
		return err
	}

	data := &NoiseData{
		Frequencies:   na.frequencies,
		Thermal:       make(map[string][]float64, len(nets)),
		Shot:          make(map[string][]float64, len(nets)),
		Flicker:       make(map[string][]float64, len(nets)),
		HighFrequency: make(map[string][]float64, len(nets)),
		Total:         make(map[string][]float64, len(nets)),
		NoiseFigure:   make(map[string][]float64, len(nets)),
		SNR:           make(map[string][]float64, len(nets)),
		Spectrum:      make(map[string]measure.NoiseSpectrumAnalysis, len(nets)),
	}
	for i, net := range nets {
		r := results[i]
		data.Thermal[net.Name] = r.series.Thermal
		data.Shot[net.Name] = r.series.Shot
		data.Flicker[net.Name] = r.series.Flicker
		data.HighFrequency[net.Name] = r.series.HighFrequency
		data.Total[net.Name] = r.series.Total
		data.NoiseFigure[net.Name] = r.nf
		data.SNR[net.Name] = r.snr
		data.Spectrum[net.Name] = measure.NoiseSpectrum(na.frequencies, r.series)
	}

	na.data = data
	return nil
}

func (na *NoiseAnalysis) Data() Data {
	return na.data
}
