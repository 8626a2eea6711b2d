package api

import "github.com/rickgao/orderbook-recorder/internal/market"

// ToInstruments maps markets to registry entries keyed by slug and outcome.
// Markets without a slug and tokens without an id or outcome are skipped.
func ToInstruments(markets []Market) market.Instruments {
	out := make(market.Instruments)
	for _, m := range markets {
		if m.MarketSlug == "" {
			continue
		}
		for _, t := range m.Tokens {
			if t.TokenID == "" || t.Outcome == "" {
				continue
			}
			sides, ok := out[m.MarketSlug]
			if !ok {
				sides = make(map[string]string)
				out[m.MarketSlug] = sides
			}
			sides[t.Outcome] = t.TokenID
		}
	}
	return out
}
