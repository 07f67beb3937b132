package econ

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// TravelCost is the investment for a trip: years × distance.
func TravelCost(years, distance int) float64 {
	return float64(years) * float64(distance)
}

// ValueBand is the expected total item value for an investment under a
// given turn multiplier, spanning the generation variance.
type ValueBand struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// ExpectedValue estimates the item value band for an investment:
// investment × multiplier × [varianceMin, varianceMax].
func ExpectedValue(investment, multiplier, varianceMin, varianceMax float64) ValueBand {
	return ValueBand{
		Min: Round2(investment * multiplier * varianceMin),
		Max: Round2(investment * multiplier * varianceMax),
		Avg: Round2(investment * multiplier * (varianceMin + varianceMax) / 2),
	}
}

// Turbulence scores how chaotic a destination era feels, in [0, 1].
// Sampled from a fixed simplex-noise field over (years, distance) so the
// same destination always reads the same. Display-only: it colors the
// travel preview's risk tag and never feeds value generation.
func Turbulence(years, distance int) float64 {
	n := turbulenceNoise.Eval2(float64(years)*0.013, float64(distance)*0.0021)
	return math.Round((n+1)/2*1000) / 1000
}

// TurbulenceLabel buckets a turbulence score for display.
func TurbulenceLabel(t float64) string {
	switch {
	case t >= 0.75:
		return "Severe"
	case t >= 0.5:
		return "Choppy"
	case t >= 0.25:
		return "Mild"
	default:
		return "Calm"
	}
}

// Fixed seed keeps the turbulence field stable across runs.
var turbulenceNoise = opensimplex.New(727)
