package auction

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/chronotrade/internal/config"
	"github.com/talgya/chronotrade/internal/item"
)

func testItem(genre string) item.Item {
	return item.Item{
		ID:               1,
		Genre:            genre,
		Condition:        item.ConditionA,
		ConditionMult:    1.0,
		RarityTier:       "Rare",
		RarityMultiplier: 2.0,
		BaseValue:        100,
	}
}

func TestBuyerInterestOutsideGenres(t *testing.T) {
	b := &Buyer{
		ID:                  0,
		InterestedGenres:    []string{"Toys"},
		ConditionPreference: 1.0,
		RarityPreference:    1.0,
		PriceSensitivity:    1.0,
		genreSet:            map[string]bool{"Toys": true},
	}
	assert.Equal(t, 0.0, b.Interest(testItem("Art"), 50))
}

func TestBuyerInterestScoring(t *testing.T) {
	b := &Buyer{
		InterestedGenres:    []string{"Art"},
		ConditionPreference: 0.8,
		RarityPreference:    1.2,
		PriceSensitivity:    1.0,
		genreSet:            map[string]bool{"Art": true},
	}

	// condition 1.0×0.8 × rarity 2.0×1.2 × price factor (100/100×1.0).
	assert.Equal(t, 1.92, b.Interest(testItem("Art"), 100))

	// Cheap listings cap the price factor at 2×.
	assert.Equal(t, 3.84, b.Interest(testItem("Art"), 1))

	// Overpriced listings shrink interest toward zero.
	assert.Less(t, b.Interest(testItem("Art"), 10_000), 0.05)
}

func TestNewPoolPreferenceRanges(t *testing.T) {
	buyers := NewPool(200, rand.New(rand.NewSource(1)))
	require.Len(t, buyers, 200)
	for _, b := range buyers {
		assert.GreaterOrEqual(t, len(b.InterestedGenres), 2)
		assert.LessOrEqual(t, len(b.InterestedGenres), 4)
		assert.GreaterOrEqual(t, b.ConditionPreference, 0.5)
		assert.LessOrEqual(t, b.ConditionPreference, 1.0)
		assert.GreaterOrEqual(t, b.RarityPreference, 0.8)
		assert.LessOrEqual(t, b.RarityPreference, 1.5)
		assert.GreaterOrEqual(t, b.PriceSensitivity, 0.5)
		assert.LessOrEqual(t, b.PriceSensitivity, 1.2)

		// Genres are distinct.
		seen := map[string]bool{}
		for _, g := range b.InterestedGenres {
			assert.False(t, seen[g], "duplicate genre %s", g)
			seen[g] = true
		}
	}
}

func TestRunSellsUnderpricedItem(t *testing.T) {
	cfg := config.Default().Auction
	cfg.BuyerCount = 40 // wide pool so some buyer always wants the genre

	e := NewEngine(cfg, rand.New(rand.NewSource(2)))
	l := NewListing(testItem("Books"), 10)

	result := e.Run([]*Listing{l})
	require.Len(t, result.Results, 1)
	r := result.Results[0]

	assert.True(t, r.Sold)
	assert.True(t, l.Sold)
	assert.Greater(t, r.BidCount, 0)
	assert.Greater(t, r.FinalPrice, r.StartPrice)
	assert.NotNil(t, r.WinnerID)
	assert.InDelta(t, r.FinalPrice*0.9, r.Proceeds, 0.01)
	assert.Len(t, r.BidHistory, r.BidCount)
	assert.NotEmpty(t, result.RunID)
}

func TestRunLeavesOverpricedItemUnsold(t *testing.T) {
	e := NewEngine(config.Default().Auction, rand.New(rand.NewSource(3)))
	l := NewListing(testItem("Books"), 1_000_000)

	result := e.Run([]*Listing{l})
	r := result.Results[0]

	assert.False(t, r.Sold)
	assert.Equal(t, 0, r.BidCount)
	assert.Equal(t, l.StartPrice, l.CurrentPrice)
	assert.Zero(t, r.Proceeds)
	assert.Equal(t, 0, result.SoldCount)
}

func TestRunBidHistoryIsCoherent(t *testing.T) {
	cfg := config.Default().Auction
	cfg.BuyerCount = 40
	e := NewEngine(cfg, rand.New(rand.NewSource(4)))
	l := NewListing(testItem("Toys"), 20)

	e.Run([]*Listing{l})

	prev := l.StartPrice
	lastRound := 0
	for _, bid := range l.BidHistory {
		assert.Greater(t, bid.Round, lastRound)
		assert.Equal(t, prev, bid.PreviousPrice)
		assert.Greater(t, bid.BidAmount, bid.PreviousPrice)
		prev = bid.BidAmount
		lastRound = bid.Round
	}
	assert.Equal(t, prev, l.CurrentPrice)
}

func TestFeeAndProceeds(t *testing.T) {
	e := NewEngine(config.Default().Auction, rand.New(rand.NewSource(5)))
	assert.Equal(t, 10.0, e.Fee(100))
	assert.Equal(t, 90.0, e.Proceeds(100))
}

func TestPreviewConfidence(t *testing.T) {
	cfg := config.Default().Auction
	cfg.BuyerCount = 40
	e := NewEngine(cfg, rand.New(rand.NewSource(6)))

	cheap := NewListing(testItem("Apparel"), 5)
	hopeless := NewListing(testItem("Apparel"), 1_000_000)

	pv := e.Preview([]*Listing{cheap, hopeless})
	require.Len(t, pv.Previews, 2)

	assert.Equal(t, "High", pv.Previews[0].Confidence)
	assert.GreaterOrEqual(t, pv.Previews[0].InterestedBuyers, 3)
	assert.Greater(t, pv.Previews[0].EstimatedFinalPrice, cheap.StartPrice)

	assert.Equal(t, "Low", pv.Previews[1].Confidence)
	assert.Equal(t, 0, pv.Previews[1].InterestedBuyers)
	assert.Equal(t, hopeless.StartPrice, pv.Previews[1].EstimatedFinalPrice)

	// Preview never mutates the listings.
	assert.Equal(t, 0, cheap.BidCount)
	assert.False(t, cheap.Sold)
	assert.Equal(t, cheap.StartPrice, cheap.CurrentPrice)
}
