package auction

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/chronotrade/internal/config"
	"github.com/talgya/chronotrade/internal/econ"
	"github.com/talgya/chronotrade/internal/item"
)

// Bid records one successful raise.
type Bid struct {
	Round         int     `json:"round"`
	BidderID      int     `json:"bidder_id"`
	BidAmount     float64 `json:"bid_amount"`
	PreviousPrice float64 `json:"previous_price"`
}

// Listing wraps an item put up for auction. Mutated only by Engine.Run;
// an unsold listing keeps its raised price and bid count for re-runs.
type Listing struct {
	Item         item.Item `json:"item"`
	StartPrice   float64   `json:"start_price"`
	CurrentPrice float64   `json:"current_price"`
	BidCount     int       `json:"bid_count"`
	Sold         bool      `json:"sold"`
	WinnerID     *int      `json:"winner_id,omitempty"`
	BidHistory   []Bid     `json:"bid_history"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewListing lists an item at a start price.
func NewListing(it item.Item, startPrice float64) *Listing {
	return &Listing{
		Item:         it,
		StartPrice:   startPrice,
		CurrentPrice: startPrice,
		CreatedAt:    time.Now(),
	}
}

// ItemResult is the outcome of one listing's auction.
type ItemResult struct {
	ItemID     int64   `json:"item_id"`
	Sold       bool    `json:"sold"`
	StartPrice float64 `json:"start_price"`
	FinalPrice float64 `json:"final_price"`
	BidCount   int     `json:"bid_count"`
	WinnerID   *int    `json:"winner_id,omitempty"`
	Proceeds   float64 `json:"proceeds"` // final price net of fee; 0 if unsold
	BidHistory []Bid   `json:"bid_history"`
}

// RunResult is the outcome of one full auction run.
type RunResult struct {
	RunID        string       `json:"run_id"`
	Results      []ItemResult `json:"results"`
	SoldCount    int          `json:"sold_count"`
	TotalRevenue float64      `json:"total_revenue"`
	TotalProfit  float64      `json:"total_profit"` // net of fees
	TotalBids    int          `json:"total_bids"`
}

// Engine runs the bidding simulation. The buyer population is rolled
// fresh at the start of every run.
type Engine struct {
	cfg config.Auction
	rng *rand.Rand
}

// NewEngine creates an auction engine sharing the game's rng stream.
func NewEngine(cfg config.Auction, rng *rand.Rand) *Engine {
	return &Engine{cfg: cfg, rng: rng}
}

// Fee returns the fee charged on a sale price.
func (e *Engine) Fee(salePrice float64) float64 {
	return econ.Round2(salePrice * e.cfg.FeeRate)
}

// Proceeds returns the seller's take after the fee.
func (e *Engine) Proceeds(salePrice float64) float64 {
	return econ.Round2(salePrice * (1 - e.cfg.FeeRate))
}

// Run simulates every listing through the configured rounds against a
// freshly rolled buyer pool. Listings are mutated in place; crediting
// proceeds and removing sold listings is the caller's job.
func (e *Engine) Run(listings []*Listing) RunResult {
	buyers := NewPool(e.cfg.BuyerCount, e.rng)

	result := RunResult{RunID: uuid.NewString()}
	for _, l := range listings {
		r := e.runOne(l, buyers)
		result.Results = append(result.Results, r)
		result.TotalBids += r.BidCount
		if r.Sold {
			result.SoldCount++
			result.TotalRevenue += r.FinalPrice
			result.TotalProfit += r.Proceeds
		}
	}
	result.TotalRevenue = econ.Round2(result.TotalRevenue)
	result.TotalProfit = econ.Round2(result.TotalProfit)

	slog.Info("auction run complete",
		"run_id", result.RunID,
		"listings", len(listings),
		"sold", result.SoldCount,
		"total_bids", result.TotalBids,
		"revenue", result.TotalRevenue,
	)
	return result
}

// runOne plays the configured rounds for a single listing. Each round
// the highest-scoring buyer above the threshold raises the price by
// 5–15% scaled by interest (capped at 2×); rounds with no interested
// buyer leave the price alone.
func (e *Engine) runOne(l *Listing, buyers []*Buyer) ItemResult {
	for round := 1; round <= e.cfg.DurationRounds; round++ {
		var best *Buyer
		bestScore := 0.0
		for _, b := range buyers {
			score := b.Interest(l.Item, l.CurrentPrice)
			if score >= e.cfg.BidThreshold && score > bestScore {
				best = b
				bestScore = score
			}
		}
		if best == nil {
			continue
		}

		raiseRate := e.cfg.RaiseMin + e.rng.Float64()*(e.cfg.RaiseMax-e.cfg.RaiseMin)
		scale := bestScore
		if scale > 2.0 {
			scale = 2.0
		}

		previous := l.CurrentPrice
		l.CurrentPrice = econ.Round2(previous + previous*raiseRate*scale)
		l.BidCount++
		winner := best.ID
		l.WinnerID = &winner
		l.BidHistory = append(l.BidHistory, Bid{
			Round:         round,
			BidderID:      best.ID,
			BidAmount:     l.CurrentPrice,
			PreviousPrice: previous,
		})
	}

	l.Sold = l.BidCount > 0

	r := ItemResult{
		ItemID:     l.Item.ID,
		Sold:       l.Sold,
		StartPrice: l.StartPrice,
		FinalPrice: l.CurrentPrice,
		BidCount:   l.BidCount,
		WinnerID:   l.WinnerID,
		BidHistory: l.BidHistory,
	}
	if l.Sold {
		r.Proceeds = e.Proceeds(l.CurrentPrice)
	}
	return r
}

// ItemEstimate previews one listing's prospects.
type ItemEstimate struct {
	ItemID              int64   `json:"item_id"`
	StartPrice          float64 `json:"start_price"`
	InterestedBuyers    int     `json:"interested_buyers"`
	EstimatedFinalPrice float64 `json:"estimated_final_price"`
	EstimatedProceeds   float64 `json:"estimated_proceeds"`
	Confidence          string  `json:"confidence"` // High / Medium / Low
}

// PreviewResult aggregates listing estimates.
type PreviewResult struct {
	Previews         []ItemEstimate `json:"previews"`
	EstimatedRevenue float64        `json:"total_estimated_revenue"`
	EstimatedProfit  float64        `json:"total_estimated_profit"`
}

// Preview estimates outcomes without mutating any listing. It samples
// a throwaway buyer population (the real one is rolled at run time
// anyway), counts buyers above the threshold at the start price, and
// extrapolates a final price from the strongest interest.
func (e *Engine) Preview(listings []*Listing) PreviewResult {
	buyers := NewPool(e.cfg.BuyerCount, e.rng)

	var out PreviewResult
	for _, l := range listings {
		interested := 0
		maxScore := 0.0
		for _, b := range buyers {
			score := b.Interest(l.Item, l.StartPrice)
			if score >= e.cfg.BidThreshold {
				interested++
				if score > maxScore {
					maxScore = score
				}
			}
		}

		estimated := econ.Round2(l.StartPrice * (1 + maxScore*0.2))

		confidence := "Low"
		switch {
		case interested >= 3:
			confidence = "High"
		case interested >= 1:
			confidence = "Medium"
		}

		out.Previews = append(out.Previews, ItemEstimate{
			ItemID:              l.Item.ID,
			StartPrice:          l.StartPrice,
			InterestedBuyers:    interested,
			EstimatedFinalPrice: estimated,
			EstimatedProceeds:   e.Proceeds(estimated),
			Confidence:          confidence,
		})
		out.EstimatedRevenue += estimated
		out.EstimatedProfit += e.Proceeds(estimated)
	}
	out.EstimatedRevenue = econ.Round2(out.EstimatedRevenue)
	out.EstimatedProfit = econ.Round2(out.EstimatedProfit)
	return out
}
