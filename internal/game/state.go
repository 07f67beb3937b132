package game

import (
	"time"

	"github.com/talgya/chronotrade/internal/auction"
	"github.com/talgya/chronotrade/internal/item"
	"github.com/talgya/chronotrade/internal/turn"
)

// Stats accumulates across a session. Profit is auction proceeds minus
// everything charged for purchases.
type Stats struct {
	CumulativeSpent  float64 `json:"cumulative_spent"`
	CumulativeEarned float64 `json:"cumulative_earned"`
	CumulativeProfit float64 `json:"cumulative_profit"`
	PurchaseCount    int     `json:"purchase_count"`
	FailedPurchases  int     `json:"failed_purchases"`
	AuctionRuns      int     `json:"auction_runs"`
	ItemsAcquired    int     `json:"items_acquired"`
	ItemsSold        int     `json:"items_sold"`
}

// StateView is the full game state in wire form. Reading it never
// mutates anything.
type StateView struct {
	Cash        float64            `json:"cash"`
	TotalAssets float64            `json:"total_assets"`
	FixedCost   float64            `json:"fixed_cost"`
	Inventory   []item.Item        `json:"inventory"`
	Listings    []*auction.Listing `json:"auction_listings"`
	Turn        turn.Info          `json:"turn"`
	Stats       Stats              `json:"stats"`
	GameOver    bool               `json:"game_over"`
}

// Summary is the compact header view: the numbers a client shows on
// every screen.
type Summary struct {
	Cash           float64 `json:"cash"`
	TotalAssets    float64 `json:"total_assets"`
	FixedCost      float64 `json:"fixed_cost"`
	InventoryCount int     `json:"inventory_count"`
	ListingCount   int     `json:"listing_count"`
	ListedValue    float64 `json:"listed_value"`
	NetProfit      float64 `json:"net_profit"`
	MajorTurn      int     `json:"major_turn"`
	MinorTurn      int     `json:"minor_turn"`
	CurrentMult    float64 `json:"current_multiplier"`
	Outlook        string  `json:"outlook"`
	GameOver       bool    `json:"game_over"`
}

// SavedState is the serialized form written to save slots. Field names
// are the wire contract: Cash, Inventory, and Listings must be present
// for an import to be accepted.
type SavedState struct {
	Cash       float64            `json:"cash"`
	Inventory  []item.Item        `json:"inventory"`
	Listings   []*auction.Listing `json:"auction_listings"`
	NextItemID int64              `json:"next_item_id"`
	MajorTurn  int                `json:"major_turn"`
	MinorTurn  int                `json:"minor_turn"`
	Target     float64            `json:"target_multiplier"`
	Curve      []float64          `json:"price_curve"`
	Stats      Stats              `json:"stats"`
	SavedAt    time.Time          `json:"saved_at"`
}
