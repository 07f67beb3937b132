// Package econ provides the pure economic formulas of the game:
// rarity scoring, asset accounting, and value estimation. Everything
// here is stateless — analysis tooling calls these directly.
package econ

import "math"

// Rarity tier names, lowest to highest.
const (
	TierCommon    = "Common"
	TierRare      = "Rare"
	TierUltraRare = "Ultra Rare"
	TierLegendary = "Legendary"
	TierMythic    = "Mythic"
)

// RarityMultiplier derives an item's rarity scalar from travel parameters.
// Three additive bonuses, each independently capped: years ×0.02 up to 2.0,
// distance ×0.001 up to 1.5, and a years×distance synergy up to 1.0.
// The caps bound maximum rarity at 5.5; result is rounded to 2 decimals.
func RarityMultiplier(years, distance int) float64 {
	yearBonus := math.Min(float64(years)*0.02, 2.0)
	distanceBonus := math.Min(float64(distance)*0.001, 1.5)
	comboBonus := math.Min(float64(years)*float64(distance)*0.00001, 1.0)
	return Round2(1.0 + yearBonus + distanceBonus + comboBonus)
}

// RarityTierName maps a rarity multiplier onto its display band.
// Bands are upper-exclusive: <1.5, <2.5, <4.0, <5.5, else Mythic.
func RarityTierName(multiplier float64) string {
	switch {
	case multiplier < 1.5:
		return TierCommon
	case multiplier < 2.5:
		return TierRare
	case multiplier < 4.0:
		return TierUltraRare
	case multiplier < 5.5:
		return TierLegendary
	default:
		return TierMythic
	}
}

// ConditionWeights returns the A/B/C sampling weights for an item
// acquired `years` back. Older eras degrade: A falls and C rises by
// 1% per year, B stays fixed. The weights are used as-is, unnormalized.
func ConditionWeights(years int) (a, b, c float64) {
	a = math.Max(0.1, 1.0-float64(years)*0.01)
	b = 0.5
	c = math.Min(0.9, float64(years)*0.01)
	return a, b, c
}

// Round2 rounds to 2 decimal places, the game's money precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to 3 decimal places, used for interest scores.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
