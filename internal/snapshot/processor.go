package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/orderbook-recorder/internal/envelope"
	"github.com/rickgao/orderbook-recorder/internal/model"
)

// Payload field names, in priority order where several are listed.
var (
	identifierFields = []string{"asset_id", "id"}
	marketFields     = []string{"market"}
)

// LabelSource resolves subscription identifiers to labels.
type LabelSource interface {
	Lookup(id string) (model.Label, bool)
}

// Appender durably stores one snapshot.
type Appender interface {
	Append(ctx context.Context, s model.Snapshot) error
}

// Stats contains processor counters.
type Stats struct {
	Written          int64 // Records accepted by the sink
	WriteErrors      int64 // Records the sink failed to store
	NoIdentifier     int64 // Payloads without an identifier
	EmptyBook        int64 // Payloads with both sides empty
	UnknownLabel     int64 // Records built with the unknown sentinel label
	PriceParseErrors int64 // Levels whose price could not be parsed
}

// Processor builds snapshots from payloads and hands them to the sink.
// It holds no per-connection state and may be shared between loops.
type Processor struct {
	labels LabelSource
	sink   Appender
	logger *slog.Logger
	now    func() time.Time

	written          atomic.Int64
	writeErrors      atomic.Int64
	noIdentifier     atomic.Int64
	emptyBook        atomic.Int64
	unknownLabel     atomic.Int64
	priceParseErrors atomic.Int64
}

// NewProcessor creates a Processor.
func NewProcessor(labels LabelSource, sink Appender, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		labels: labels,
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

// Stats returns current counters.
func (p *Processor) Stats() Stats {
	return Stats{
		Written:          p.written.Load(),
		WriteErrors:      p.writeErrors.Load(),
		NoIdentifier:     p.noIdentifier.Load(),
		EmptyBook:        p.emptyBook.Load(),
		UnknownLabel:     p.unknownLabel.Load(),
		PriceParseErrors: p.priceParseErrors.Load(),
	}
}

// Process turns one payload into a snapshot, appends it to the sink and
// updates cache. It returns nil when the payload is discarded (no
// identifier, or both sides empty). A non-nil error reports a failed sink
// write; the snapshot is still returned and the cache still updated.
func (p *Processor) Process(ctx context.Context, payload envelope.Object, cache *Cache) (*model.Snapshot, error) {
	tokenID, ok := payload.FirstText(identifierFields...)
	if !ok {
		p.noIdentifier.Add(1)
		return nil, nil
	}

	marketID, ok := payload.FirstText(marketFields...)
	if !ok {
		marketID = model.UnknownMarket
	}

	bidSeq, _ := payload.Sequence(envelope.FieldBids)
	askSeq, _ := payload.Sequence(envelope.FieldAsks)
	if len(bidSeq) == 0 && len(askSeq) == 0 {
		p.emptyBook.Add(1)
		p.logger.Debug("empty book, skipping", "token_id", tokenID)
		return nil, nil
	}

	bids := levels(bidSeq)
	asks := levels(askSeq)

	bestBid, _, badBids := bestPrice(bids, decimal.Decimal.GreaterThan)
	bestAsk, _, badAsks := bestPrice(asks, decimal.Decimal.LessThan)
	if bad := badBids + badAsks; bad > 0 {
		p.priceParseErrors.Add(int64(bad))
		p.logger.Warn("price parse error",
			"token_id", tokenID,
			"invalid_bids", badBids,
			"invalid_asks", badAsks,
		)
	}

	label, ok := p.labels.Lookup(tokenID)
	if !ok {
		label = model.UnknownLabel
		p.unknownLabel.Add(1)
	}

	snap := model.Snapshot{
		CapturedAt: p.now(),
		MarketID:   marketID,
		TokenID:    tokenID,
		Label:      label,
		BestBid:    bestBid,
		BestAsk:    bestAsk,
		Bids:       bids,
		Asks:       asks,
		RawBids:    p.received(tokenID, envelope.FieldBids, bidSeq),
		RawAsks:    p.received(tokenID, envelope.FieldAsks, askSeq),
	}

	// A built record is always handed over; shutdown must not drop it.
	var appendErr error
	if err := p.sink.Append(context.WithoutCancel(ctx), snap); err != nil {
		p.writeErrors.Add(1)
		appendErr = fmt.Errorf("append snapshot %s: %w", tokenID, err)
	} else {
		p.written.Add(1)
		p.logger.Info("order book",
			"market", label.Market,
			"side", label.Side,
			"token_id", tokenID,
			"market_id", marketID,
			"best_bid", bestBid,
			"best_ask", bestAsk,
		)
	}

	cache.Put(tokenID, Book{Bids: bids, Asks: asks})

	return &snap, appendErr
}

// received encodes one side as it arrived. A missing side is "[]". On an
// encoding failure the parsed levels are stored instead.
func (p *Processor) received(tokenID, side string, seq envelope.Sequence) json.RawMessage {
	if len(seq) == 0 {
		return json.RawMessage("[]")
	}
	raw, err := envelope.Encode(seq)
	if err != nil {
		p.logger.Warn("cannot encode received side, storing parsed levels",
			"token_id", tokenID,
			"side", side,
			"error", err,
		)
		return nil
	}
	return raw
}

// levels is the parsed view of one side. Elements that are not objects
// are left out.
func levels(seq envelope.Sequence) []model.PriceLevel {
	if len(seq) == 0 {
		return nil
	}

	out := make([]model.PriceLevel, 0, len(seq))
	for _, item := range seq {
		obj, ok := item.(envelope.Object)
		if !ok {
			continue
		}
		price, _ := obj.Text("price")
		size, _ := obj.Text("size")
		out = append(out, model.PriceLevel{Price: price, Size: size})
	}
	return out
}
