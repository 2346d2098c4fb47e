package measure

import (
	"math"

	"github.com/edp1096/audio-spice/internal/consts"
)

// PrecisionMetrics describes how densely a frequency sweep samples the band.
type PrecisionMetrics struct {
	Points            int     `json:"points"`
	Decades           float64 `json:"decades"`
	PointsPerDecade   float64 `json:"pointsPerDecade"`
	AudioBandPoints   int     `json:"audioBandPoints"`
	AudioBandFraction float64 `json:"audioBandFraction"`
	MinStepRatio      float64 `json:"minStepRatio"`
	MaxStepRatio      float64 `json:"maxStepRatio"`
}

func Precision(freqs []float64) PrecisionMetrics {
	pm := PrecisionMetrics{Points: len(freqs)}
	if len(freqs) == 0 {
		return pm
	}

	for _, f := range freqs {
		if f >= consts.AudioBandStart && f <= consts.AudioBandEdge {
			pm.AudioBandPoints++
		}
	}
	pm.AudioBandFraction = float64(pm.AudioBandPoints) / float64(pm.Points)

	first, last := freqs[0], freqs[len(freqs)-1]
	if first > 0 && last > first {
		pm.Decades = math.Log10(last / first)
		pm.PointsPerDecade = float64(pm.Points) / pm.Decades
	}

	for i := 1; i < len(freqs); i++ {
		if freqs[i-1] <= 0 {
			continue
		}
		ratio := freqs[i] / freqs[i-1]
		if pm.MinStepRatio == 0 || ratio < pm.MinStepRatio {
			pm.MinStepRatio = ratio
		}
		if ratio > pm.MaxStepRatio {
			pm.MaxStepRatio = ratio
		}
	}
	return pm
}
