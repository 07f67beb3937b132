package econ

import (
	"fmt"
	"math"
	"math/rand"
)

// TotalAssets is cash plus the summed base value of held inventory.
func TotalAssets(cash float64, baseValues []float64) float64 {
	total := cash
	for _, v := range baseValues {
		total += v
	}
	return Round2(total)
}

// FixedCost is the per-purchase maintenance charge: a flat rate on
// total assets, independent of the purchase parameters.
func FixedCost(assets, rate float64) float64 {
	return Round2(assets * rate)
}

// CanAfford reports whether assets cover the fixed cost plus the
// investment, with a human-readable explanation either way.
func CanAfford(assets, fixedCost, investment float64) (bool, string) {
	required := fixedCost + investment
	if assets < required {
		shortage := required - assets
		return false, fmt.Sprintf("insufficient funds: short %.2f (need %.2f, holding %.2f)",
			shortage, required, assets)
	}
	return true, fmt.Sprintf("affordable (%.2f remaining after purchase)", assets-required)
}

// IsGameOver reports whether assets can no longer cover the fixed cost.
// Always false when game-over checking is disabled.
func IsGameOver(assets, fixedCost float64, enabled bool) bool {
	if !enabled {
		return false
	}
	return assets < fixedCost
}

// SampleTargetMultiplier draws a cycle target log-uniformly over
// [min, max], so low and high outcomes are equally likely in relative
// terms. Rounded to 2 decimals.
func SampleTargetMultiplier(rng *rand.Rand, min, max float64) float64 {
	logMin := math.Log(min)
	logMax := math.Log(max)
	u := logMin + rng.Float64()*(logMax-logMin)
	return Round2(math.Exp(u))
}

// MultiplierOutlook describes a target multiplier for display.
func MultiplierOutlook(multiplier float64) string {
	switch {
	case multiplier >= 7.0:
		return "surging — aggressive buying favored"
	case multiplier >= 5.0:
		return "strong growth expected"
	case multiplier >= 3.0:
		return "growth expected"
	case multiplier >= 2.0:
		return "steady gains"
	default:
		return "conservative period — buy with care"
	}
}
