// Package response holds the per-net numeric model shared by the AC, noise,
// transient and Fourier analyses. Every method is a pure function of its
// arguments, so nets can be evaluated concurrently.
package response

import (
	"math"
	"sync/atomic"

	"github.com/edp1096/audio-spice/internal/consts"
	"github.com/edp1096/audio-spice/pkg/topology"
)

type Model struct {
	CornerFrequency float64

	evaluations atomic.Uint64
}

func NewModel() *Model {
	return &Model{CornerFrequency: consts.CornerFrequency}
}

// Evaluations returns how many net evaluations the model has served.
func (m *Model) Evaluations() uint64 {
	return m.evaluations.Load()
}

func (m *Model) corner() float64 {
	if m.CornerFrequency > 0 {
		return m.CornerFrequency
	}
	return consts.CornerFrequency
}

// Magnitude is a single-pole low-pass estimate of the net's response.
func (m *Model) Magnitude(net topology.Net, freq, amplitude float64) float64 {
	m.evaluations.Add(1)

	fc := m.corner()
	if freq <= fc {
		return amplitude
	}
	ratio := freq / fc
	return amplitude / math.Sqrt(1+ratio*ratio)
}

// Phase returns the heuristic phase roll-off in degrees.
func (m *Model) Phase(net topology.Net, freq float64) float64 {
	fc := m.corner()
	if freq <= fc {
		return 0
	}
	return -45 * math.Log10(freq/fc)
}

// Impedance returns a fixed value per net role.
func (m *Model) Impedance(net topology.Net, freq float64) float64 {
	switch net.Role {
	case topology.RolePower:
		return 0.1
	case topology.RoleGround:
		return 0.01
	default:
		return 50.0
	}
}
