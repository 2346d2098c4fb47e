package analysis

import (
	"context"
	"fmt"

	"github.com/edp1096/audio-spice/pkg/measure"
	"github.com/edp1096/audio-spice/pkg/sweep"
)

type ACAnalysis struct {
	BaseAnalysis
	req         ACRequest
	frequencies []float64
	data        *ACData
}

func NewAC(req ACRequest, opts Options) *ACAnalysis {
	return &ACAnalysis{
		BaseAnalysis: *NewBaseAnalysis(opts),
		req:          req,
	}
}

func (ac *ACAnalysis) Execute(ctx context.Context) error {
	if ac.Topology == nil {
		return fmt.Errorf("topology not set")
	}

	ac.frequencies = sweep.GenerateAudioFrequencies(ac.req.StartFrequency, ac.req.StopFrequency, ac.req.NumPoints, ac.req.HighPrecision)
	nf := len(ac.frequencies)

	nets := ac.nets
	mag := make([][]float64, len(nets))
	phase := make([][]float64, len(nets))
	imp := make([][]float64, len(nets))

	err := forEach(ctx, len(nets), ac.Workers, func(i int) error {
		net := nets[i]
		mag[i] = make([]float64, nf)
		phase[i] = make([]float64, nf)
		imp[i] = make([]float64, nf)
		for j, f := range ac.frequencies {
			mag[i][j] = ac.Model.Magnitude(net, f, ac.req.Amplitude)
			phase[i][j] = ac.Model.Phase(net, f)
			imp[i][j] = ac.Model.Impedance(net, f)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := ac.checkContext(ctx); err != nil {
		return err
	}

	data := &ACData{
		Frequencies:       ac.frequencies,
		MagnitudeResponse: make(map[string][]float64, len(nets)),
		PhaseResponse:     make(map[string][]float64, len(nets)),
		Impedance:         make(map[string][]float64, len(nets)),
		TransferFunction:  make(map[string]TransferFunction, len(nets)),
		Bandwidth:         make(map[string]measure.BandwidthAnalysis, len(nets)),
		Precision:         measure.Precision(ac.frequencies),
		Source:            ac.req.Source,
	}
	for i, net := range nets {
		data.MagnitudeResponse[net.Name] = mag[i]
		data.PhaseResponse[net.Name] = phase[i]
		data.Impedance[net.Name] = imp[i]
		data.Bandwidth[net.Name] = measure.Bandwidth(ac.frequencies, mag[i], phase[i], ac.req.HighPrecision)
	}

	// Without an analysed source net the reference is an ideal source of
	// the requested amplitude at 0 degrees.
	refMag, refPhase := data.MagnitudeResponse[ac.req.Source], data.PhaseResponse[ac.req.Source]
	data.SourceAnalysed = refMag != nil
	if !data.SourceAnalysed {
		refMag, refPhase = make([]float64, nf), make([]float64, nf)
		for j := range refMag {
			refMag[j] = ac.req.Amplitude
		}
	}
	for i, net := range nets {
		if net.Name == ac.req.Source {
			continue
		}
		tf := TransferFunction{Magnitude: make([]float64, nf), Phase: make([]float64, nf)}
		for j := range nf {
			if refMag[j] != 0 {
				tf.Magnitude[j] = mag[i][j] / refMag[j]
			}
			tf.Phase[j] = phase[i][j] - refPhase[j]
		}
		data.TransferFunction[net.Name] = tf
	}

	if len(nets) > 0 {
		meanMag, meanPhase := make([]float64, nf), make([]float64, nf)
		for i := range nets {
			for j := range nf {
				meanMag[j] += mag[i][j]
				meanPhase[j] += phase[i][j]
			}
		}
		for j := range nf {
			meanMag[j] /= float64(len(nets))
			meanPhase[j] /= float64(len(nets))
		}
		data.Overall = measure.Bandwidth(ac.frequencies, meanMag, meanPhase, ac.req.HighPrecision)
	}

	ac.data = data
	return nil
}

func (ac *ACAnalysis) Data() Data {
	return ac.data
}
