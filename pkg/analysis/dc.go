package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/edp1096/audio-spice/internal/consts"
	"github.com/edp1096/audio-spice/pkg/circuit"
	"github.com/edp1096/audio-spice/pkg/device"
	"github.com/edp1096/audio-spice/pkg/topology"
)

// Heuristic supply levels and per-class dissipation.
const (
	powerNetVoltage = 5.0
	powerNetCurrent = 0.1
	signalCurrent   = consts.SignalCurrent

	ampPower       = 0.1
	regulatorPower = 0.5
	capacitorPower = 0.001
	resistorPower  = 0.01
	defaultPower   = 0.05
)

// DCAnalysis estimates the operating point of every net, ground included.
type DCAnalysis struct {
	BaseAnalysis
	req  DCRequest
	data *DCData
}

func NewDC(req DCRequest, opts Options) *DCAnalysis {
	return &DCAnalysis{
		BaseAnalysis: *NewBaseAnalysis(opts),
		req:          req,
	}
}

func (dc *DCAnalysis) Execute(ctx context.Context) error {
	if dc.Topology == nil {
		return fmt.Errorf("topology not set")
	}

	names := dc.Topology.NetNames()
	voltages := make([]float64, len(names))
	currents := make([]float64, len(names))
	trackR := make([]float64, len(names))
	thickness := dc.Topology.Board.CopperThickness()

	err := forEach(ctx, len(names), dc.Workers, func(i int) error {
		net := dc.Topology.Net(names[i])

		r, err := circuit.TrackResistance(net.Name, net.Tracks, thickness, dc.req.Temperature)
		if err != nil {
			return fmt.Errorf("net %s: %w", net.Name, err)
		}
		trackR[i] = r

		v, err := dc.nodeVoltage(net, thickness)
		if err != nil {
			return fmt.Errorf("net %s: %w", net.Name, err)
		}
		voltages[i] = v
		currents[i] = dc.branchCurrent(net)
		return nil
	})
	if err != nil {
		return err
	}
	if err := dc.checkContext(ctx); err != nil {
		return err
	}

	data := &DCData{
		NodeVoltages:     make(map[string]float64, len(names)),
		BranchCurrents:   make(map[string]float64, len(names)),
		PowerDissipation: make(map[string]float64, len(dc.Topology.Components)),
		TrackResistance:  make(map[string]float64, len(names)),
	}
	for i, name := range names {
		data.NodeVoltages[name] = voltages[i]
		data.BranchCurrents[name] = currents[i]
		data.TrackResistance[name] = trackR[i]
	}

	refs := make([]string, 0, len(dc.Topology.Components))
	for ref := range dc.Topology.Components {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		p := ComponentPower(dc.Topology.Components[ref])
		data.PowerDissipation[ref] = p
		data.TotalPower += p
	}

	dc.data = data
	return nil
}

func (dc *DCAnalysis) nodeVoltage(net topology.Net, thickness float64) (float64, error) {
	if v, ok := dc.req.VoltageSources[net.Name]; ok {
		return v, nil
	}
	switch net.Role {
	case topology.RolePower:
		return powerNetVoltage, nil
	case topology.RoleGround:
		return 0, nil
	}
	if len(net.Tracks) == 0 {
		return 0, nil
	}

	// mean IR drop of the signal current across each segment
	drops := make([]float64, len(net.Tracks))
	for i, t := range net.Tracks {
		width := t.Width
		if width <= 0 {
			width = consts.DefaultTrackWidthMM
		}
		seg, err := device.NewTrackSegment(fmt.Sprintf("T%d", i+1), nil, t.Length()*1e-3, width*1e-3, thickness)
		if err != nil {
			return 0, err
		}
		drops[i] = signalCurrent * seg.Resistance(dc.req.Temperature)
	}
	return stat.Mean(drops, nil), nil
}

func (dc *DCAnalysis) branchCurrent(net topology.Net) float64 {
	if i, ok := dc.req.CurrentSources[net.Name]; ok {
		return i
	}
	switch net.Role {
	case topology.RolePower:
		return powerNetCurrent
	case topology.RoleGround:
		return 0
	}
	return signalCurrent
}

// ComponentPower is the heuristic dissipation of a component in watts.
func ComponentPower(c topology.Component) float64 {
	value := strings.ToLower(c.Value)
	ref := strings.ToUpper(c.Reference)

	switch {
	case strings.Contains(value, "amp"):
		return ampPower
	case strings.Contains(value, "regulator"), strings.Contains(value, "ldo"), strings.HasPrefix(ref, "VR"):
		return regulatorPower
	case strings.HasPrefix(ref, "C"):
		return capacitorPower
	case strings.HasPrefix(ref, "R"):
		return resistorPower
	}
	return defaultPower
}

func (dc *DCAnalysis) Data() Data {
	return dc.data
}
