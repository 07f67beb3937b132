package item

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/chronotrade/internal/config"
	"github.com/talgya/chronotrade/internal/econ"
)

func testGenerator(seed int64) *Generator {
	cfg := config.Default()
	return NewGenerator(cfg.Items, cfg.Travel, rand.New(rand.NewSource(seed)))
}

func TestValidateParams(t *testing.T) {
	g := testGenerator(1)
	assert.NoError(t, g.ValidateParams(1, 0))
	assert.NoError(t, g.ValidateParams(1_000_000, 1_000_000))
	assert.Error(t, g.ValidateParams(0, 100))
	assert.Error(t, g.ValidateParams(-5, 100))
	assert.Error(t, g.ValidateParams(100, -1))
	assert.Error(t, g.ValidateParams(1_000_001, 0))
}

func TestRollFailureDisabledByDefault(t *testing.T) {
	g := testGenerator(2)
	for i := 0; i < 1000; i++ {
		assert.False(t, g.RollFailure())
	}
}

func TestRollFailureEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Travel.FailureEnabled = true
	g := NewGenerator(cfg.Items, cfg.Travel, rand.New(rand.NewSource(3)))

	failures := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if g.RollFailure() {
			failures++
		}
	}
	assert.InDelta(t, 0.10, float64(failures)/n, 0.02)
}

func TestRollCountRange(t *testing.T) {
	g := testGenerator(4)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		n := g.RollCount()
		assert.GreaterOrEqual(t, n, 2)
		assert.LessOrEqual(t, n, 5)
		seen[n] = true
	}
	assert.Len(t, seen, 4, "all counts 2..5 should occur")
}

func TestTargetTotalVariance(t *testing.T) {
	g := testGenerator(5)
	for i := 0; i < 500; i++ {
		total := g.TargetTotal(100, 1.5)
		assert.GreaterOrEqual(t, total, 135.0)
		assert.LessOrEqual(t, total, 165.0)
	}
}

func TestDistributeValueSumsToTarget(t *testing.T) {
	g := testGenerator(6)
	for i := 0; i < 200; i++ {
		values := g.DistributeValue(100, 4)
		require.Len(t, values, 4)
		sum := 0.0
		for _, v := range values {
			assert.GreaterOrEqual(t, v, 1.0)
			sum += v
		}
		assert.InDelta(t, 100.0, sum, 1e-9)
	}
}

func TestDistributeValueFloors(t *testing.T) {
	g := testGenerator(7)
	// Target too small for 5 items: every slot still gets the floor.
	values := g.DistributeValue(2, 5)
	require.Len(t, values, 5)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 1.0)
	}
}

func TestDistributeValueSingleItem(t *testing.T) {
	g := testGenerator(8)
	values := g.DistributeValue(42.5, 1)
	require.Len(t, values, 1)
	assert.Equal(t, 42.5, values[0])

	assert.Nil(t, g.DistributeValue(100, 0))
}

func TestGenerateFields(t *testing.T) {
	g := testGenerator(9)
	it := g.Generate(55.559, 100, 500)

	assert.Equal(t, int64(1), it.ID)
	assert.Contains(t, Genres[:], it.Genre)
	assert.Contains(t, []Condition{ConditionA, ConditionB, ConditionC}, it.Condition)
	assert.Equal(t, ConditionName(it.Condition), it.ConditionName)
	assert.Equal(t, ConditionMultiplier(it.Condition), it.ConditionMult)
	assert.Equal(t, econ.RarityMultiplier(100, 500), it.RarityMultiplier)
	assert.Equal(t, econ.RarityTierName(it.RarityMultiplier), it.RarityTier)
	assert.Equal(t, 55.56, it.BaseValue)
	assert.Equal(t, 55.56, it.EstimatedSalePrice) // sell rate 1.0
	assert.Equal(t, 100, it.Years)
	assert.Equal(t, 500, it.Distance)
	assert.False(t, it.CreatedAt.IsZero())
}

func TestGenerateBatchIDsAreSequential(t *testing.T) {
	g := testGenerator(10)
	items := g.GenerateBatch([]float64{10, 20, 30}, 10, 10)
	require.Len(t, items, 3)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, int64(2), items[1].ID)
	assert.Equal(t, int64(3), items[2].ID)
}

func TestSetNextIDOnlyRaises(t *testing.T) {
	g := testGenerator(11)
	g.SetNextID(100)
	it := g.Generate(10, 1, 1)
	assert.Equal(t, int64(100), it.ID)

	g.SetNextID(5) // lower value must not rewind the counter
	it = g.Generate(10, 1, 1)
	assert.Equal(t, int64(101), it.ID)
}

func TestConditionSkewsWornForOldEras(t *testing.T) {
	g := testGenerator(12)

	countWorn := func(years, n int) int {
		worn := 0
		for i := 0; i < n; i++ {
			if it := g.Generate(10, years, 0); it.Condition == ConditionC {
				worn++
			}
		}
		return worn
	}

	recent := countWorn(1, 2000)
	ancient := countWorn(500, 2000)
	assert.Greater(t, ancient, recent)
}

func TestDisplayBaseValue(t *testing.T) {
	it := Item{BaseValue: 100, ConditionMult: 0.8, RarityMultiplier: 2.0}
	assert.Equal(t, 62.5, it.DisplayBaseValue())

	// Zero multipliers fall back to the raw value.
	it = Item{BaseValue: 100}
	assert.Equal(t, 100.0, it.DisplayBaseValue())
}
