// Package game orchestrates a single session: cash, inventory, the
// turn cycle, and auctions, behind one engine the HTTP and CLI layers
// drive. The engine is not safe for concurrent use — callers serialize.
package game

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/talgya/chronotrade/internal/auction"
	"github.com/talgya/chronotrade/internal/config"
	"github.com/talgya/chronotrade/internal/econ"
	"github.com/talgya/chronotrade/internal/item"
	"github.com/talgya/chronotrade/internal/turn"
)

// Engine holds one game session. All randomness flows through the
// single rng handed in at construction, so a seeded engine replays
// deterministically.
type Engine struct {
	cfg config.Config
	rng *rand.Rand

	cash      float64
	inventory []item.Item
	listings  []*auction.Listing

	turns     *turn.System
	generator *item.Generator
	auctions  *auction.Engine

	stats Stats
}

// NewEngine creates a session with starting cash and a fresh cycle.
func NewEngine(cfg config.Config, rng *rand.Rand) *Engine {
	return &Engine{
		cfg:       cfg,
		rng:       rng,
		cash:      cfg.StartingCash,
		turns:     turn.New(cfg.Turns, rng),
		generator: item.NewGenerator(cfg.Items, cfg.Travel, rng),
		auctions:  auction.NewEngine(cfg.Auction, rng),
	}
}

// Reset wipes the session back to starting cash and a fresh cycle.
// Item IDs keep counting up so logs stay unambiguous across resets.
func (e *Engine) Reset() {
	e.cash = e.cfg.StartingCash
	e.inventory = nil
	e.listings = nil
	e.stats = Stats{}
	e.turns.Reset()
	slog.Info("game reset", "starting_cash", e.cash)
}

// baseValues collects inventory base values for asset accounting.
// Listed items are out of the inventory and excluded on purpose.
func (e *Engine) baseValues() []float64 {
	vals := make([]float64, len(e.inventory))
	for i, it := range e.inventory {
		vals[i] = it.BaseValue
	}
	return vals
}

// TotalAssets is cash plus held inventory value.
func (e *Engine) TotalAssets() float64 {
	return econ.TotalAssets(e.cash, e.baseValues())
}

// FixedCost is the maintenance charge the next purchase would carry.
func (e *Engine) FixedCost() float64 {
	return econ.FixedCost(e.TotalAssets(), e.cfg.Items.FixedCostRate)
}

// GameOver reports whether assets can no longer cover the fixed cost.
func (e *Engine) GameOver() bool {
	return econ.IsGameOver(e.TotalAssets(), e.FixedCost(), e.cfg.EnableGameOver)
}

// State snapshots the full session. Idempotent.
func (e *Engine) State() StateView {
	inv := make([]item.Item, len(e.inventory))
	copy(inv, e.inventory)
	return StateView{
		Cash:        econ.Round2(e.cash),
		TotalAssets: e.TotalAssets(),
		FixedCost:   e.FixedCost(),
		Inventory:   inv,
		Listings:    e.listings,
		Turn:        e.turns.Info(),
		Stats:       e.stats,
		GameOver:    e.GameOver(),
	}
}

// Summary snapshots the compact header numbers. Idempotent.
func (e *Engine) Summary() Summary {
	listed := 0.0
	for _, l := range e.listings {
		listed += l.CurrentPrice
	}
	return Summary{
		Cash:           econ.Round2(e.cash),
		TotalAssets:    e.TotalAssets(),
		FixedCost:      e.FixedCost(),
		InventoryCount: len(e.inventory),
		ListingCount:   len(e.listings),
		ListedValue:    econ.Round2(listed),
		NetProfit:      e.stats.CumulativeProfit,
		MajorTurn:      e.turns.Major(),
		MinorTurn:      e.turns.Minor(),
		CurrentMult:    e.turns.CurrentMultiplier(),
		Outlook:        econ.MultiplierOutlook(e.turns.Target()),
		GameOver:       e.GameOver(),
	}
}

// Inventory returns a copy of the held items.
func (e *Engine) Inventory() []item.Item {
	out := make([]item.Item, len(e.inventory))
	copy(out, e.inventory)
	return out
}

// TravelEstimate is the non-mutating purchase preview.
type TravelEstimate struct {
	Years         int            `json:"years"`
	Distance      int            `json:"distance"`
	Investment    float64        `json:"investment"`
	FixedCost     float64        `json:"fixed_cost"`
	TotalCost     float64        `json:"total_cost"`
	Affordable    bool           `json:"affordable"`
	Assessment    string         `json:"assessment"`
	RarityTier    string         `json:"rarity"`
	RarityMult    float64        `json:"rarity_multiplier"`
	ExpectedValue econ.ValueBand `json:"expected_value"`
	Turbulence    float64        `json:"turbulence"`
	TurbulenceTag string         `json:"turbulence_label"`
}

// PreviewTravel estimates what a purchase at (years, distance) would
// cost and yield under the current multiplier. Never mutates state.
func (e *Engine) PreviewTravel(years, distance int) (TravelEstimate, error) {
	if err := e.generator.ValidateParams(years, distance); err != nil {
		return TravelEstimate{}, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	investment := econ.TravelCost(years, distance)
	fixedCost := e.FixedCost()
	affordable, assessment := econ.CanAfford(e.TotalAssets(), fixedCost, investment)
	rarityMult := econ.RarityMultiplier(years, distance)
	turb := econ.Turbulence(years, distance)

	return TravelEstimate{
		Years:      years,
		Distance:   distance,
		Investment: econ.Round2(investment),
		FixedCost:  fixedCost,
		TotalCost:  econ.Round2(investment + fixedCost),
		Affordable: affordable,
		Assessment: assessment,
		RarityTier: econ.RarityTierName(rarityMult),
		RarityMult: rarityMult,
		ExpectedValue: econ.ExpectedValue(investment, e.turns.CurrentMultiplier(),
			e.cfg.Items.VarianceMin, e.cfg.Items.VarianceMax),
		Turbulence:    turb,
		TurbulenceTag: econ.TurbulenceLabel(turb),
	}, nil
}

// PurchaseResult reports one completed purchase.
type PurchaseResult struct {
	Items        []item.Item `json:"items"`
	Investment   float64     `json:"investment"`
	FixedCost    float64     `json:"fixed_cost"`
	TotalCharged float64     `json:"total_charged"`
	CashAfter    float64     `json:"cash_after"`
	Failed       bool        `json:"failed"`
	Multiplier   float64     `json:"applied_multiplier"`
	NewMajorTurn bool        `json:"new_major_turn"`
	Turn         turn.Info   `json:"turn"`
	GameOver     bool        `json:"game_over"`
}

// Purchase executes one trip: charge investment (years × distance) plus
// the fixed cost, generate items under the current turn multiplier, and
// consume a minor turn. A rejected purchase — bad parameters or
// unaffordable — leaves the session untouched. A failed trip (when the
// failure roll is enabled) still charges and still consumes the turn.
func (e *Engine) Purchase(years, distance int) (PurchaseResult, error) {
	if err := e.generator.ValidateParams(years, distance); err != nil {
		return PurchaseResult{}, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	investment := econ.TravelCost(years, distance)
	fixedCost := e.FixedCost()
	if ok, assessment := econ.CanAfford(e.TotalAssets(), fixedCost, investment); !ok {
		return PurchaseResult{}, fmt.Errorf("%w: %s", ErrInsufficientFunds, assessment)
	}

	multiplier := e.turns.CurrentMultiplier()
	total := econ.Round2(investment + fixedCost)
	e.cash = econ.Round2(e.cash - total)
	e.stats.CumulativeSpent = econ.Round2(e.stats.CumulativeSpent + total)
	e.stats.CumulativeProfit = econ.Round2(e.stats.CumulativeProfit - total)
	e.stats.PurchaseCount++

	result := PurchaseResult{
		Investment:   econ.Round2(investment),
		FixedCost:    fixedCost,
		TotalCharged: total,
		Multiplier:   multiplier,
	}

	if e.generator.RollFailure() {
		e.stats.FailedPurchases++
		result.Failed = true
		slog.Warn("purchase failed in transit",
			"years", years, "distance", distance, "charged", total)
	} else {
		count := e.generator.RollCount()
		targetTotal := e.generator.TargetTotal(investment, multiplier)
		values := e.generator.DistributeValue(targetTotal, count)
		items := e.generator.GenerateBatch(values, years, distance)

		e.inventory = append(e.inventory, items...)
		e.stats.ItemsAcquired += len(items)
		result.Items = items

		slog.Info("purchase complete",
			"years", years, "distance", distance,
			"charged", total, "items", len(items), "multiplier", multiplier)
	}

	result.NewMajorTurn = e.turns.Advance()
	result.CashAfter = econ.Round2(e.cash)
	result.Turn = e.turns.Info()
	result.GameOver = e.GameOver()
	return result, nil
}

// ListForAuction moves an inventory item onto the auction block at a
// start price. The item leaves the inventory until sold or cancelled.
func (e *Engine) ListForAuction(itemID int64, startPrice float64) (*auction.Listing, error) {
	if startPrice <= 0 {
		return nil, fmt.Errorf("%w: start price must be positive, got %v", ErrInvalidParameters, startPrice)
	}
	if len(e.listings) >= e.cfg.Auction.MaxListings {
		return nil, fmt.Errorf("%w: at most %d concurrent listings", ErrTooManyListings, e.cfg.Auction.MaxListings)
	}

	for i, it := range e.inventory {
		if it.ID == itemID {
			e.inventory = append(e.inventory[:i], e.inventory[i+1:]...)
			l := auction.NewListing(it, econ.Round2(startPrice))
			e.listings = append(e.listings, l)
			slog.Info("item listed", "item_id", itemID, "start_price", l.StartPrice)
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: item %d not in inventory", ErrNotFound, itemID)
}

// CancelListing takes an item off the block and back into inventory.
// Any accrued bids are discarded.
func (e *Engine) CancelListing(itemID int64) (item.Item, error) {
	for i, l := range e.listings {
		if l.Item.ID == itemID {
			e.listings = append(e.listings[:i], e.listings[i+1:]...)
			e.inventory = append(e.inventory, l.Item)
			slog.Info("listing cancelled", "item_id", itemID)
			return l.Item, nil
		}
	}
	return item.Item{}, fmt.Errorf("%w: item %d not listed", ErrNotFound, itemID)
}

// Listings returns the active auction listings.
func (e *Engine) Listings() []*auction.Listing {
	return e.listings
}

// AuctionOutcome is one auction run plus its effect on the session.
type AuctionOutcome struct {
	auction.RunResult
	CashAfter float64 `json:"cash_after"`
	Remaining int     `json:"remaining_listings"`
}

// RunAuction plays every listing through the bidding simulation,
// credits net proceeds for sold items, and drops them from the block.
// Unsold listings stay listed.
func (e *Engine) RunAuction() (AuctionOutcome, error) {
	if len(e.listings) == 0 {
		return AuctionOutcome{}, fmt.Errorf("%w: no active listings", ErrNotFound)
	}

	run := e.auctions.Run(e.listings)

	kept := e.listings[:0]
	for _, l := range e.listings {
		if l.Sold {
			continue
		}
		kept = append(kept, l)
	}
	e.listings = kept

	e.cash = econ.Round2(e.cash + run.TotalProfit)
	e.stats.CumulativeEarned = econ.Round2(e.stats.CumulativeEarned + run.TotalProfit)
	e.stats.CumulativeProfit = econ.Round2(e.stats.CumulativeProfit + run.TotalProfit)
	e.stats.AuctionRuns++
	e.stats.ItemsSold += run.SoldCount

	return AuctionOutcome{
		RunResult: run,
		CashAfter: econ.Round2(e.cash),
		Remaining: len(e.listings),
	}, nil
}

// PreviewAuction estimates outcomes for the active listings without
// running them.
func (e *Engine) PreviewAuction() (auction.PreviewResult, error) {
	if len(e.listings) == 0 {
		return auction.PreviewResult{}, fmt.Errorf("%w: no active listings", ErrNotFound)
	}
	return e.auctions.Preview(e.listings), nil
}

// Stats returns the session counters.
func (e *Engine) Stats() Stats { return e.stats }

// Export serializes the session for a save slot.
func (e *Engine) Export() SavedState {
	var maxID int64
	for _, it := range e.inventory {
		if it.ID > maxID {
			maxID = it.ID
		}
	}
	for _, l := range e.listings {
		if l.Item.ID > maxID {
			maxID = l.Item.ID
		}
	}

	inv := make([]item.Item, len(e.inventory))
	copy(inv, e.inventory)

	return SavedState{
		Cash:       econ.Round2(e.cash),
		Inventory:  inv,
		Listings:   e.listings,
		NextItemID: maxID + 1,
		MajorTurn:  e.turns.Major(),
		MinorTurn:  e.turns.Minor(),
		Target:     e.turns.Target(),
		Curve:      e.turns.Curve(),
		Stats:      e.stats,
		SavedAt:    time.Now(),
	}
}

// Import replaces the session with a saved one. The raw JSON must
// carry cash, inventory, and auction_listings keys; anything else is
// rejected as malformed without touching the running session.
func (e *Engine) Import(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	for _, key := range []string{"cash", "inventory", "auction_listings"} {
		if _, ok := probe[key]; !ok {
			return fmt.Errorf("%w: missing %q", ErrMalformedState, key)
		}
	}

	var saved SavedState
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if saved.Cash < 0 {
		return fmt.Errorf("%w: negative cash", ErrMalformedState)
	}

	e.cash = saved.Cash
	e.inventory = saved.Inventory
	e.listings = saved.Listings
	e.stats = saved.Stats

	if saved.MajorTurn >= 1 && saved.MinorTurn >= 1 &&
		saved.MinorTurn <= len(saved.Curve) {
		e.turns.Restore(saved.MajorTurn, saved.MinorTurn, saved.Target, saved.Curve)
	} else {
		e.turns.Reset()
	}

	nextID := saved.NextItemID
	for _, it := range e.inventory {
		if it.ID >= nextID {
			nextID = it.ID + 1
		}
	}
	for _, l := range e.listings {
		if l.Item.ID >= nextID {
			nextID = l.Item.ID + 1
		}
	}
	e.generator.SetNextID(nextID)

	slog.Info("state imported",
		"cash", e.cash, "inventory", len(e.inventory), "listings", len(e.listings))
	return nil
}
