// Package pricing holds the pure price rules of the market. All prices are
// non-negative integers in won; fractions always round down.
package pricing

import (
	"time"

	"github.com/maeulmarket/server/model"
)

// cleaningCostDivisor: cleaning an item costs 1/10 of its base price.
const cleaningCostDivisor = 10

// InitialOffer computes the opening price of a negotiation.
// Buying starts at the listed base price. Selling starts at half the base
// price unless the item has been cleaned, which restores full value.
func InitialOffer(mode model.TradeMode, basePrice int64, isCleaned bool) int64 {
	if basePrice < 0 {
		return 0
	}
	if mode == model.TradeSell && !isCleaned {
		return basePrice / 2
	}
	return basePrice
}

// CleaningCost is what an account pays to clean an owned item.
func CleaningCost(basePrice int64) int64 {
	if basePrice < 0 {
		return 0
	}
	return basePrice / cleaningCostDivisor
}

// Spoiled reports whether a food item has rotted. Non-food items and items
// without a recorded purchase time never spoil.
func Spoiled(isFood bool, purchaseTime *time.Time, now time.Time, rotAfter time.Duration) bool {
	if !isFood || purchaseTime == nil {
		return false
	}
	return now.Sub(*purchaseTime) > rotAfter
}
