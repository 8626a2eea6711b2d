package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Sentinels used when a feed message cannot be attributed.
const (
	UnknownMarket = "unknown_market"
	UnknownSide   = "unknown"
)

// TimestampLayout is ISO 8601 with microseconds and a numeric offset.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Label is the human-readable identity of a tradable outcome.
type Label struct {
	Market string // Market slug (e.g., "epl-tot-che-2025-11-01-tot")
	Side   string // Outcome within the market (e.g., "Yes", "Over")
}

// UnknownLabel is returned for identifiers missing from the registry.
var UnknownLabel = Label{Market: UnknownMarket, Side: UnknownSide}

// String returns "market-side".
func (l Label) String() string {
	return l.Market + "-" + l.Side
}

// HumanReadable returns the operator-facing description of the label.
func (l Label) HumanReadable() string {
	return "Market " + l.Market + " (" + l.Side + ")"
}

// IsUnknown reports whether l is the unknown sentinel.
func (l Label) IsUnknown() bool {
	return l == UnknownLabel
}

// PriceLevel represents a single price level in an order book.
// Values are kept as received and parsed only when compared.
type PriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// Snapshot is one normalized, timestamped order-book update.
type Snapshot struct {
	CapturedAt time.Time // Single wall/monotonic reading taken at build time

	MarketID string // Market/session id as reported by the feed (unvalidated)
	TokenID  string // Subscription identifier
	Label    Label

	BestBid string // Empty when absent
	BestAsk string // Empty when absent

	// Parsed view of each side, used for best-price selection.
	Bids []PriceLevel
	Asks []PriceLevel

	// Each side exactly as received, as compact JSON. Elements that are not
	// price levels and keys beyond price and size are kept here.
	RawBids json.RawMessage
	RawAsks json.RawMessage
}

// HasBestBid reports whether a best bid could be computed.
func (s Snapshot) HasBestBid() bool { return s.BestBid != "" }

// HasBestAsk reports whether a best ask could be computed.
func (s Snapshot) HasBestAsk() bool { return s.BestAsk != "" }

// UTC returns the capture time formatted in UTC.
func (s Snapshot) UTC() string {
	return s.CapturedAt.UTC().Format(TimestampLayout)
}

// LocalTime returns the capture time formatted in the local zone.
func (s Snapshot) LocalTime() string {
	return s.CapturedAt.Local().Format(TimestampLayout)
}

// BidsJSON returns the bid side as compact JSON, preferring the received
// sequence over the parsed levels.
func (s Snapshot) BidsJSON() string {
	if len(s.RawBids) > 0 {
		return string(s.RawBids)
	}
	return EncodeLevels(s.Bids)
}

// AsksJSON returns the ask side as compact JSON, preferring the received
// sequence over the parsed levels.
func (s Snapshot) AsksJSON() string {
	if len(s.RawAsks) > 0 {
		return string(s.RawAsks)
	}
	return EncodeLevels(s.Asks)
}

// EncodeLevels serializes levels as a compact JSON array with fixed key order.
// A nil slice encodes as "[]".
func EncodeLevels(levels []PriceLevel) string {
	if len(levels) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(levels); err != nil {
		// PriceLevel holds only strings; Encode cannot fail.
		return "[]"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// DecodeLevels parses the output of EncodeLevels.
func DecodeLevels(data string) ([]PriceLevel, error) {
	var levels []PriceLevel
	if err := json.Unmarshal([]byte(data), &levels); err != nil {
		return nil, err
	}
	return levels, nil
}
