package measure

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// THD is the ratio of the RSS of the overtones to the fundamental, h[0].
func THD(harmonics []float64) float64 {
	if len(harmonics) == 0 || harmonics[0] == 0 {
		return 0
	}
	overtones := harmonics[1:]
	return math.Sqrt(floats.Dot(overtones, overtones)) / math.Abs(harmonics[0])
}
