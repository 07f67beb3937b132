package item

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/talgya/chronotrade/internal/config"
	"github.com/talgya/chronotrade/internal/econ"
)

// Generator turns an investment into a batch of items. IDs are issued
// from a monotonic counter so items stay unique across a session.
type Generator struct {
	cfg    config.Items
	travel config.Travel
	rng    *rand.Rand
	nextID int64
}

// NewGenerator creates an item generator sharing the game's rng stream.
func NewGenerator(cfg config.Items, travel config.Travel, rng *rand.Rand) *Generator {
	return &Generator{cfg: cfg, travel: travel, rng: rng, nextID: 1}
}

// SetNextID sets the next item ID to be issued (used when restoring a
// saved game, so new items never collide with loaded ones).
func (g *Generator) SetNextID(id int64) {
	if id > g.nextID {
		g.nextID = id
	}
}

// ValidateParams checks travel parameters against configured bounds.
func (g *Generator) ValidateParams(years, distance int) error {
	if years < g.travel.YearsMin || years > g.travel.YearsMax {
		return fmt.Errorf("years must be between %d and %d, got %d",
			g.travel.YearsMin, g.travel.YearsMax, years)
	}
	if distance < g.travel.DistanceMin || distance > g.travel.DistanceMax {
		return fmt.Errorf("distance must be between %d and %d, got %d",
			g.travel.DistanceMin, g.travel.DistanceMax, distance)
	}
	return nil
}

// RollFailure reports whether this purchase fails outright (charged,
// no items). Always false unless the failure roll is enabled.
func (g *Generator) RollFailure() bool {
	if !g.travel.FailureEnabled {
		return false
	}
	return g.rng.Float64() < g.travel.FailureRate
}

// RollCount draws how many items a successful purchase yields.
func (g *Generator) RollCount() int {
	span := g.cfg.CountMax - g.cfg.CountMin + 1
	return g.cfg.CountMin + g.rng.Intn(span)
}

// TargetTotal computes the batch's combined value target:
// investment × turn multiplier × a variance draw.
func (g *Generator) TargetTotal(investment, multiplier float64) float64 {
	variance := g.cfg.VarianceMin + g.rng.Float64()*(g.cfg.VarianceMax-g.cfg.VarianceMin)
	return investment * multiplier * variance
}

// DistributeValue splits a target total across n items. Each of the
// first n-1 draws lands within ±40% of the running per-item average,
// never below the floor and never above 80% of what remains for the
// rest; the last item takes the remainder (floor-clamped). The sum of
// the returned values equals the target up to the final floor clamp.
func (g *Generator) DistributeValue(targetTotal float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	values := make([]float64, 0, n)
	remaining := targetTotal

	for i := 0; i < n-1; i++ {
		avg := remaining / float64(n-i)

		lo := avg * 0.6
		if lo < g.cfg.ValueFloor {
			lo = g.cfg.ValueFloor
		}
		hi := avg * 1.4
		if maxShare := remaining * 0.8; hi > maxShare {
			hi = maxShare
		}
		if hi <= lo {
			hi = lo * 1.1 // widen rather than invert the range
		}

		v := lo + g.rng.Float64()*(hi-lo)
		values = append(values, v)
		remaining -= v
	}

	if remaining < g.cfg.ValueFloor {
		remaining = g.cfg.ValueFloor
	}
	values = append(values, remaining)
	return values
}

// Generate builds one item carrying a predetermined realized value.
// Genre is uniform over the fixed ten; condition is a weighted draw
// that skews worn for older eras; rarity comes from the travel
// parameters.
func (g *Generator) Generate(value float64, years, distance int) Item {
	genre := Genres[g.rng.Intn(len(Genres))]
	cond := g.rollCondition(years)

	rarityMult := econ.RarityMultiplier(years, distance)

	id := g.nextID
	g.nextID++

	base := econ.Round2(value)
	return Item{
		ID:                 id,
		Genre:              genre,
		Condition:          cond,
		ConditionName:      ConditionName(cond),
		ConditionMult:      ConditionMultiplier(cond),
		RarityTier:         econ.RarityTierName(rarityMult),
		RarityMultiplier:   rarityMult,
		BaseValue:          base,
		EstimatedSalePrice: econ.Round2(base * g.cfg.SellRate),
		Years:              years,
		Distance:           distance,
		CreatedAt:          time.Now(),
	}
}

// GenerateBatch builds items for each allocated value.
func (g *Generator) GenerateBatch(values []float64, years, distance int) []Item {
	items := make([]Item, 0, len(values))
	for _, v := range values {
		items = append(items, g.Generate(v, years, distance))
	}
	return items
}

// rollCondition is a weighted draw over the condition weights. The
// weights do not sum to 1; the cumulative scan handles that without
// normalizing, matching the reference behavior.
func (g *Generator) rollCondition(years int) Condition {
	a, b, c := econ.ConditionWeights(years)
	r := g.rng.Float64() * (a + b + c)
	switch {
	case r < a:
		return ConditionA
	case r < a+b:
		return ConditionB
	default:
		return ConditionC
	}
}
