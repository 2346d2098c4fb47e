package device

import (
	"fmt"

	"github.com/edp1096/audio-spice/internal/consts"
	"github.com/edp1096/audio-spice/pkg/matrix"
)

type Resistor struct {
	BaseDevice
	Tc1  float64
	Tc2  float64
	Tnom float64
}

func NewResistor(name string, nodeNames []string, value float64) *Resistor {
	return &Resistor{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     value,
		},
		Tc1:  0.0,
		Tc2:  0.0,
		Tnom: consts.TNOM,
	}
}

// NewTrackSegment models a copper track as a resistor R = rho*L/(w*t).
// Dimensions are in metres.
func NewTrackSegment(name string, nodeNames []string, length, width, thickness float64) (*Resistor, error) {
	if width <= 0 || thickness <= 0 {
		return nil, fmt.Errorf("track %s: width and thickness must be positive", name)
	}
	r := NewResistor(name, nodeNames, consts.CopperResistivity*length/(width*thickness))
	r.Tc1 = consts.CopperTempCoeff
	return r, nil
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(r.Nodes) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.Name)
	}

	value := r.Resistance(status.Temp)
	if value <= 0 {
		// zero-length segment: the endpoints are already the same node
		return nil
	}
	g := 1.0 / value // G = 1/R

	n1, n2 := r.Nodes[0], r.Nodes[1]
	if n1 != 0 {
		matrix.AddElement(n1, n1, g)
		if n2 != 0 {
			matrix.AddElement(n1, n2, -g)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			matrix.AddElement(n2, n1, -g)
		}
		matrix.AddElement(n2, n2, g)
	}

	return nil
}

// Resistance returns the value at temp (K). A non-positive temp means
// nominal temperature.
func (r *Resistor) Resistance(temp float64) float64 {
	if temp <= 0 {
		return r.Value
	}
	dt := temp - r.Tnom
	factor := 1.0 + r.Tc1*dt + r.Tc2*dt*dt
	return r.Value * factor
}
