// Package auction simulates price discovery: a pool of synthetic
// buyers bids on listed items across discrete rounds.
package auction

import (
	"math/rand"

	"github.com/talgya/chronotrade/internal/econ"
	"github.com/talgya/chronotrade/internal/item"
)

// Buyer is one synthetic bidder. Preferences are rolled at pool
// creation and fixed for the run.
type Buyer struct {
	ID                  int      `json:"id"`
	InterestedGenres    []string `json:"interested_genres"`
	ConditionPreference float64  `json:"condition_preference"` // 0.5–1.0
	RarityPreference    float64  `json:"rarity_preference"`    // 0.8–1.5
	PriceSensitivity    float64  `json:"price_sensitivity"`    // 0.5–1.2

	genreSet map[string]bool
}

// Interest scores how much this buyer wants the item at the asking
// price. Zero for genres outside the buyer's interests; otherwise the
// product of condition taste, rarity taste, and a price factor capped
// at 2× (cheap relative to value reads as a bargain). Rounded to 3
// decimals.
func (b *Buyer) Interest(it item.Item, price float64) float64 {
	if !b.genreSet[it.Genre] {
		return 0
	}

	interest := 1.0
	interest *= item.ConditionMultiplier(it.Condition) * b.ConditionPreference
	interest *= it.RarityMultiplier * b.RarityPreference

	if price > 0 {
		valueRatio := it.BaseValue / price
		priceFactor := valueRatio * b.PriceSensitivity
		if priceFactor > 2.0 {
			priceFactor = 2.0
		}
		interest *= priceFactor
	}

	return econ.Round3(interest)
}

// NewPool rolls a fresh buyer population. Each buyer picks 2–4 genres
// from the fixed ten and draws its preference scalars.
func NewPool(count int, rng *rand.Rand) []*Buyer {
	buyers := make([]*Buyer, 0, count)
	for i := 0; i < count; i++ {
		genres := sampleGenres(rng, 2+rng.Intn(3))

		genreSet := make(map[string]bool, len(genres))
		for _, g := range genres {
			genreSet[g] = true
		}

		buyers = append(buyers, &Buyer{
			ID:                  i,
			InterestedGenres:    genres,
			ConditionPreference: 0.5 + rng.Float64()*0.5,
			RarityPreference:    0.8 + rng.Float64()*0.7,
			PriceSensitivity:    0.5 + rng.Float64()*0.7,
			genreSet:            genreSet,
		})
	}
	return buyers
}

// sampleGenres draws n distinct genres by partial shuffle.
func sampleGenres(rng *rand.Rand, n int) []string {
	pool := make([]string, len(item.Genres))
	copy(pool, item.Genres[:])

	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
