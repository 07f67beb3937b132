package econ

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRarityMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		years    int
		distance int
		want     float64
	}{
		{"minimal trip", 1, 0, 1.02},
		{"short hop", 10, 10, 1.21},
		{"year cap alone", 100, 0, 3.0},
		{"all caps hit", 1_000_000, 1_000_000, 5.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, RarityMultiplier(tc.years, tc.distance), 1e-9)
		})
	}
}

func TestRarityMultiplierMonotonic(t *testing.T) {
	prev := 0.0
	for _, years := range []int{1, 10, 50, 100, 1000, 100000} {
		got := RarityMultiplier(years, 500)
		assert.GreaterOrEqual(t, got, prev, "years=%d", years)
		prev = got
	}
}

func TestRarityTierName(t *testing.T) {
	tests := []struct {
		mult float64
		want string
	}{
		{1.0, TierCommon},
		{1.49, TierCommon},
		{1.5, TierRare},
		{2.49, TierRare},
		{2.5, TierUltraRare},
		{3.99, TierUltraRare},
		{4.0, TierLegendary},
		{5.49, TierLegendary},
		{5.5, TierMythic},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, RarityTierName(tc.mult), "mult=%v", tc.mult)
	}
}

func TestConditionWeights(t *testing.T) {
	a, b, c := ConditionWeights(0)
	assert.Equal(t, 1.0, a)
	assert.Equal(t, 0.5, b)
	assert.Equal(t, 0.0, c)

	a, b, c = ConditionWeights(50)
	assert.InDelta(t, 0.5, a, 1e-9)
	assert.Equal(t, 0.5, b)
	assert.InDelta(t, 0.5, c, 1e-9)

	// Deep past: mint floors at 0.1, worn caps at 0.9.
	a, _, c = ConditionWeights(10_000)
	assert.Equal(t, 0.1, a)
	assert.Equal(t, 0.9, c)
}

func TestTotalAssetsAndFixedCost(t *testing.T) {
	assets := TotalAssets(1000, []float64{50, 25.5})
	assert.Equal(t, 1075.5, assets)
	assert.Equal(t, 53.78, FixedCost(assets, 0.05))

	assert.Equal(t, 1000.0, TotalAssets(1000, nil))
}

func TestCanAfford(t *testing.T) {
	ok, _ := CanAfford(1000, 50, 100)
	assert.True(t, ok)

	ok, reason := CanAfford(100, 50, 100)
	assert.False(t, ok)
	assert.Contains(t, reason, "short 50.00")

	// Exact cover counts as affordable.
	ok, _ = CanAfford(150, 50, 100)
	assert.True(t, ok)
}

func TestIsGameOver(t *testing.T) {
	assert.True(t, IsGameOver(10, 20, true))
	assert.False(t, IsGameOver(20, 20, true))
	assert.False(t, IsGameOver(10, 20, false))
}

func TestSampleTargetMultiplierRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		m := SampleTargetMultiplier(rng, 1.0, 10.0)
		assert.GreaterOrEqual(t, m, 1.0)
		assert.LessOrEqual(t, m, 10.0)
	}
}

func TestSampleTargetMultiplierLogUniform(t *testing.T) {
	// Log-uniform: below/above the geometric midpoint sqrt(10)≈3.16
	// should each land ~50% of the time.
	rng := rand.New(rand.NewSource(7))
	low := 0
	const n = 5000
	for i := 0; i < n; i++ {
		if SampleTargetMultiplier(rng, 1.0, 10.0) < 3.1623 {
			low++
		}
	}
	ratio := float64(low) / n
	assert.InDelta(t, 0.5, ratio, 0.03)
}

func TestTravelCost(t *testing.T) {
	assert.Equal(t, 100.0, TravelCost(10, 10))
	assert.Equal(t, 0.0, TravelCost(10, 0))
}

func TestExpectedValue(t *testing.T) {
	band := ExpectedValue(100, 1.5, 0.9, 1.1)
	assert.Equal(t, 135.0, band.Min)
	assert.Equal(t, 165.0, band.Max)
	assert.Equal(t, 150.0, band.Avg)
}

func TestTurbulence(t *testing.T) {
	// Stable for a fixed destination, always in [0, 1].
	first := Turbulence(120, 4500)
	assert.Equal(t, first, Turbulence(120, 4500))
	for _, yd := range [][2]int{{1, 0}, {50, 100}, {9999, 31337}} {
		v := Turbulence(yd[0], yd[1])
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestTurbulenceLabel(t *testing.T) {
	assert.Equal(t, "Calm", TurbulenceLabel(0.1))
	assert.Equal(t, "Mild", TurbulenceLabel(0.25))
	assert.Equal(t, "Choppy", TurbulenceLabel(0.6))
	assert.Equal(t, "Severe", TurbulenceLabel(0.9))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 1.24, Round2(1.2449))
	assert.Equal(t, 1.25, Round2(1.245))
	assert.Equal(t, 0.123, Round3(0.12349))
}
