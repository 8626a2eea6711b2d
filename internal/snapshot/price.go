package snapshot

import (
	"github.com/shopspring/decimal"

	"github.com/rickgao/orderbook-recorder/internal/model"
)

// bestPrice folds over levels keeping the price that beats the accumulator.
// Levels whose price does not parse never win and are counted in invalid.
// found is false when no level had a parseable price.
func bestPrice(levels []model.PriceLevel, beats func(candidate, best decimal.Decimal) bool) (price string, found bool, invalid int) {
	var best decimal.Decimal

	for _, level := range levels {
		p, err := decimal.NewFromString(level.Price)
		if err != nil {
			invalid++
			continue
		}
		if !found || beats(p, best) {
			best = p
			price = level.Price
			found = true
		}
	}

	return price, found, invalid
}

// BestBid returns the highest parseable bid price as received.
func BestBid(bids []model.PriceLevel) (string, bool) {
	p, ok, _ := bestPrice(bids, decimal.Decimal.GreaterThan)
	return p, ok
}

// BestAsk returns the lowest parseable ask price as received.
func BestAsk(asks []model.PriceLevel) (string, bool) {
	p, ok, _ := bestPrice(asks, decimal.Decimal.LessThan)
	return p, ok
}
