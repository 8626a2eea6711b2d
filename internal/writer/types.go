package writer

import (
	"context"
	"errors"

	"github.com/rickgao/orderbook-recorder/internal/model"
)

// Errors
var (
	ErrSinkClosed     = errors.New("sink closed")
	ErrSinkNotStarted = errors.New("sink not started")
)

// Sink durably appends snapshots.
type Sink interface {
	// Append stores one snapshot and returns once it is durable.
	Append(ctx context.Context, s model.Snapshot) error

	// Close releases the underlying store.
	Close() error
}

// Columns is the fixed row schema shared by every sink.
var Columns = []string{
	"ts_utc",
	"ts_local",
	"market_id",
	"token_id",
	"market_name",
	"side",
	"label",
	"human_readable",
	"best_bid",
	"best_ask",
	"bids_json",
	"asks_json",
}

// row flattens a snapshot into Columns order.
func row(s model.Snapshot) []string {
	return []string{
		s.UTC(),
		s.LocalTime(),
		s.MarketID,
		s.TokenID,
		s.Label.Market,
		s.Label.Side,
		s.Label.String(),
		s.Label.HumanReadable(),
		s.BestBid,
		s.BestAsk,
		s.BidsJSON(),
		s.AsksJSON(),
	}
}

// Stats holds counters for a sink.
type Stats struct {
	Appends int64
	Errors  int64
}
