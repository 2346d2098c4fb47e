package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/edp1096/audio-spice/pkg/measure"
	"github.com/edp1096/audio-spice/pkg/response"
)

// FourierAnalysis evaluates the harmonic series of every non-ground net. The
// window type is echoed but does not shape the magnitudes.
type FourierAnalysis struct {
	BaseAnalysis
	req       FourierRequest
	harmonics []float64
	data      *FourierData
}

func NewFourier(req FourierRequest, opts Options) *FourierAnalysis {
	return &FourierAnalysis{
		BaseAnalysis: *NewBaseAnalysis(opts),
		req:          req,
	}
}

type netHarmonics struct {
	magnitude []float64
	phase     []float64
	content   []float64
	power     []float64
	thd       float64
}

func (fa *FourierAnalysis) Execute(ctx context.Context) error {
	if fa.Topology == nil {
		return fmt.Errorf("topology not set")
	}

	f0 := fa.req.FundamentalFrequency
	fa.harmonics = make([]float64, fa.req.NumHarmonics)
	for k := range fa.harmonics {
		fa.harmonics[k] = float64(k+1) * f0
	}
	nh := len(fa.harmonics)

	nets := fa.nets
	results := make([]netHarmonics, len(nets))

	err := forEach(ctx, len(nets), fa.Workers, func(i int) error {
		r := netHarmonics{
			magnitude: make([]float64, nh),
			phase:     make([]float64, nh),
			content:   make([]float64, nh),
			power:     make([]float64, nh),
		}
		for k, f := range fa.harmonics {
			r.magnitude[k] = response.FourierMagnitude(f, f0)
			r.phase[k] = response.FourierPhase(f, f0)
			r.power[k] = r.magnitude[k] * r.magnitude[k]
		}
		if fund := r.magnitude[0]; fund != 0 {
			for k, m := range r.magnitude {
				r.content[k] = m / fund
			}
		}
		r.thd = measure.THD(r.content)
		results[i] = r
		return nil
	})
	if err != nil {
		return err
	}
	if err := fa.checkContext(ctx); err != nil {
		return err
	}

	data := &FourierData{
		Harmonics:       fa.harmonics,
		Magnitude:       make(map[string][]float64, len(nets)),
		Phase:           make(map[string][]float64, len(nets)),
		HarmonicContent: make(map[string][]float64, len(nets)),
		PowerSpectrum:   make(map[string][]float64, len(nets)),
		THD:             make(map[string]float64, len(nets)),
		THDPercent:      make(map[string]float64, len(nets)),
		Window:          strings.ToLower(fa.req.WindowType),
	}
	for i, net := range nets {
		r := results[i]
		data.Magnitude[net.Name] = r.magnitude
		data.Phase[net.Name] = r.phase
		data.HarmonicContent[net.Name] = r.content
		data.PowerSpectrum[net.Name] = r.power
		data.THD[net.Name] = r.thd
		data.THDPercent[net.Name] = 100 * r.thd
	}

	fa.data = data
	return nil
}

func (fa *FourierAnalysis) Data() Data {
	return fa.data
}
