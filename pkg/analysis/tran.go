package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/edp1096/audio-spice/pkg/measure"
	"github.com/edp1096/audio-spice/pkg/response"
)

type Transient struct {
	BaseAnalysis
	req   TransientRequest
	times []float64
	input []float64
	data  *TransientData
}

func NewTransient(req TransientRequest, opts Options) *Transient {
	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(opts),
		req:          req,
	}
}

// timeGrid spans start to stop inclusive in fixed steps.
func timeGrid(start, stop, step float64) []float64 {
	n := int(math.Floor((stop-start)/step+1e-9)) + 1
	times := make([]float64, n)
	for i := range times {
		times[i] = start + float64(i)*step
	}
	return times
}

func (tr *Transient) Execute(ctx context.Context) error {
	if tr.Topology == nil {
		return fmt.Errorf("topology not set")
	}

	var err error
	tr.times = timeGrid(tr.req.StartTime, tr.req.StopTime, tr.req.TimeStep)
	tr.input, err = response.InputSignal(tr.times, response.SignalKind(tr.req.InputSignal), tr.req.InputAmplitude, tr.req.InputFrequency)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	nets := tr.nets
	nt := len(tr.times)
	voltage := make([][]float64, len(nets))
	current := make([][]float64, len(nets))
	power := make([][]float64, len(nets))
	spectra := make([]measure.Spectrum, len(nets))

	err = forEach(ctx, len(nets), tr.Workers, func(i int) error {
		net := nets[i]
		voltage[i] = make([]float64, nt)
		current[i] = make([]float64, nt)
		power[i] = make([]float64, nt)
		for j, t := range tr.times {
			v := tr.Model.TransientVoltage(net, t, tr.input)
			c := tr.Model.TransientCurrent(net, v)
			voltage[i][j], current[i][j], power[i][j] = v, c, v*c
		}

		sp, err := measure.SpectrumSummary(voltage[i], 1/tr.req.TimeStep, tr.req.Window)
		if err != nil {
			return fmt.Errorf("net %s: %w", net.Name, err)
		}
		spectra[i] = sp
		return nil
	})
	if err != nil {
		return err
	}
	if err := tr.checkContext(ctx); err != nil {
		return err
	}

	data := &TransientData{
		Time:     tr.times,
		Input:    tr.input,
		Voltage:  make(map[string][]float64, len(nets)),
		Current:  make(map[string][]float64, len(nets)),
		Power:    make(map[string][]float64, len(nets)),
		Spectrum: make(map[string]measure.Spectrum, len(nets)),
	}
	for i, net := range nets {
		data.Voltage[net.Name] = voltage[i]
		data.Current[net.Name] = current[i]
		data.Power[net.Name] = power[i]
		data.Spectrum[net.Name] = spectra[i]
	}

	tr.data = data
	return nil
}

func (tr *Transient) Data() Data {
	return tr.data
}
