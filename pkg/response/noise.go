package response

import (
	"math"

	"github.com/edp1096/audio-spice/internal/consts"
	"github.com/edp1096/audio-spice/pkg/topology"
)

// NoiseComponents are voltage spectral densities in V/sqrt(Hz).
type NoiseComponents struct {
	Thermal       float64
	Shot          float64
	Flicker       float64
	HighFrequency float64
	Total         float64
}

func noiseBandwidth(freq float64) float64 {
	if freq > consts.AudioBandEdge {
		return consts.NoiseBandwidthHF
	}
	return consts.NoiseBandwidth
}

func (m *Model) ThermalNoise(net topology.Net, freq, temp float64) float64 {
	r := m.Impedance(net, freq)
	v := math.Sqrt(4 * consts.BOLTZMANN * temp * r * noiseBandwidth(freq))
	if freq > consts.AudioBandEdge {
		// skin effect
		v *= math.Sqrt(freq / consts.AudioBandEdge)
	}
	return v
}

// ShotNoise estimates the DC current from the signal level and the net
// impedance.
func (m *Model) ShotNoise(net topology.Net, freq, signalLevel float64) float64 {
	r := m.Impedance(net, freq)
	current := math.Abs(signalLevel) / r
	v := math.Sqrt(2*consts.CHARGE*current*noiseBandwidth(freq)) * r
	if freq > consts.AudioBandEdge {
		v *= 1 + 0.1*math.Log10(freq/consts.AudioBandEdge)
	}
	return v
}

func (m *Model) FlickerNoise(net topology.Net, freq float64) float64 {
	if freq <= 0 {
		return 0
	}
	base := consts.NoiseFloorVolts / math.Sqrt(freq)
	if freq <= consts.FlickerCorner {
		return base
	}
	tail := 0.1 * base * math.Exp(-freq/consts.FlickerTailDecay)
	return base*math.Sqrt(consts.FlickerCorner/freq) + tail
}

// HighFrequencyNoise is zero inside the audio band. Above it the dielectric,
// skin-effect, radiation and parasitic loss terms are summed in quadrature.
func (m *Model) HighFrequencyNoise(net topology.Net, freq, temp float64) float64 {
	if freq <= consts.AudioBandEdge {
		return 0
	}
	r := freq / consts.AudioBandEdge
	sr := math.Sqrt(r)

	dielectric := 0.5 * consts.NoiseFloorVolts * r
	skin := 1.0 * consts.NoiseFloorVolts * sr
	radiation := 0.1 * consts.NoiseFloorVolts * r
	parasitic := 0.2 * consts.NoiseFloorVolts * sr

	rss := math.Sqrt(dielectric*dielectric + skin*skin + radiation*radiation + parasitic*parasitic)
	return rss * math.Sqrt(math.Max(temp, 0)/consts.ROOMTEMP)
}

func (m *Model) TotalNoise(net topology.Net, freq, temp, signalLevel float64) float64 {
	return m.Noise(net, freq, temp, signalLevel).Total
}

// Noise evaluates every noise source of a net at one frequency.
func (m *Model) Noise(net topology.Net, freq, temp, signalLevel float64) NoiseComponents {
	m.evaluations.Add(1)

	n := NoiseComponents{
		Thermal:       m.ThermalNoise(net, freq, temp),
		Shot:          m.ShotNoise(net, freq, signalLevel),
		Flicker:       m.FlickerNoise(net, freq),
		HighFrequency: m.HighFrequencyNoise(net, freq, temp),
	}
	n.Total = math.Sqrt(n.Thermal*n.Thermal + n.Shot*n.Shot + n.Flicker*n.Flicker + n.HighFrequency*n.HighFrequency)
	return n
}

// NoiseFigure compares the available noise power per hertz delivered into the
// reference impedance against kT0.
func NoiseFigure(totalNoise, freq, referenceImpedance float64) float64 {
	if referenceImpedance <= 0 {
		return 0
	}
	available := totalNoise * totalNoise / (4 * referenceImpedance)
	if available <= 0 {
		return 0
	}
	nf := 10 * math.Log10(available/(consts.BOLTZMANN*consts.T0))
	if freq > consts.AudioBandEdge {
		nf += 0.5 * math.Log10(freq/consts.AudioBandEdge)
	}
	return nf
}

// SNR in dB, capped for a noiseless net.
func SNR(signalLevel, totalNoise float64) float64 {
	if totalNoise == 0 {
		return consts.SNRCeilingDB
	}
	return 20 * math.Log10(math.Abs(signalLevel)/totalNoise)
}
