package device

import (
	"fmt"

	"github.com/edp1096/audio-spice/pkg/matrix"
)

// CurrentSource is an ideal DC source driving Value amperes into its first
// node and out of its second.
type CurrentSource struct {
	BaseDevice
}

func NewDCCurrentSource(name string, nodeNames []string, value float64) *CurrentSource {
	return &CurrentSource{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     value,
		},
	}
}

func (i *CurrentSource) GetType() string { return "I" }

func (i *CurrentSource) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(i.Nodes) != 2 {
		return fmt.Errorf("current source %s: requires exactly 2 nodes", i.Name)
	}

	n1, n2 := i.Nodes[0], i.Nodes[1]

	// By KCL, Current flow into n1 and out of n2
	if n1 != 0 {
		matrix.AddRHS(n1, i.Value)
	}
	if n2 != 0 {
		matrix.AddRHS(n2, -i.Value)
	}
	return nil
}
