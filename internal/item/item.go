// Package item defines collectible goods and their generation from a
// purchase investment.
package item

import (
	"time"

	"github.com/talgya/chronotrade/internal/econ"
)

// Genres is the fixed set of item genres.
var Genres = [10]string{
	"Electronics",
	"Toys",
	"Apparel",
	"Books",
	"Art",
	"Instruments",
	"Sporting Goods",
	"Tools",
	"Tableware",
	"Accessories",
}

// Condition is an item's physical grade.
type Condition string

const (
	ConditionA Condition = "A" // Mint
	ConditionB Condition = "B" // Good
	ConditionC Condition = "C" // Worn
)

// conditionInfo carries a condition's display name and value multiplier.
type conditionInfo struct {
	Name       string
	Multiplier float64
}

var conditions = map[Condition]conditionInfo{
	ConditionA: {Name: "Mint", Multiplier: 1.0},
	ConditionB: {Name: "Good", Multiplier: 0.8},
	ConditionC: {Name: "Worn", Multiplier: 0.6},
}

// ConditionMultiplier returns the display value multiplier for a grade.
func ConditionMultiplier(c Condition) float64 {
	return conditions[c].Multiplier
}

// ConditionName returns the display name for a grade.
func ConditionName(c Condition) string {
	return conditions[c].Name
}

// Item is one collectible. Immutable after generation; it moves between
// the inventory and at most one auction listing, never both.
type Item struct {
	ID                 int64     `json:"id"`
	Genre              string    `json:"genre"`
	Condition          Condition `json:"condition"`
	ConditionName      string    `json:"condition_name"`
	ConditionMult      float64   `json:"condition_multiplier"`
	RarityTier         string    `json:"rarity"`
	RarityMultiplier   float64   `json:"rarity_multiplier"`
	BaseValue          float64   `json:"base_value"`
	EstimatedSalePrice float64   `json:"estimated_sale_price"`
	Years              int       `json:"years"`
	Distance           int       `json:"distance"`
	CreatedAt          time.Time `json:"created_at"`
}

// DisplayBaseValue back-derives the pre-modifier value shown in the UI:
// the realized value divided by the condition and rarity multipliers.
func (it Item) DisplayBaseValue() float64 {
	div := it.ConditionMult * it.RarityMultiplier
	if div == 0 {
		return it.BaseValue
	}
	return econ.Round2(it.BaseValue / div)
}
