package writer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/orderbook-recorder/internal/model"
)

// Execer is the subset of *pgxpool.Pool used by PostgresSink.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresConfig configures PostgresSink.
type PostgresConfig struct {
	Table        string        // Table name (created if missing)
	WriteTimeout time.Duration // Per-statement deadline
}

// DefaultPostgresConfig returns sensible defaults.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Table:        "orderbook_snapshots",
		WriteTimeout: 5 * time.Second,
	}
}

// PostgresSink inserts one row per snapshot. Each INSERT runs in its own
// implicit transaction, so an acknowledged append is committed.
type PostgresSink struct {
	cfg    PostgresConfig
	db     Execer
	table  string // sanitized identifier
	logger *slog.Logger

	mu     sync.Mutex
	ready  bool
	closed bool
	stats  Stats
}

// NewPostgresSink creates a PostgresSink. The table is created on first append.
func NewPostgresSink(cfg PostgresConfig, db Execer, logger *slog.Logger) *PostgresSink {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Table == "" {
		cfg.Table = DefaultPostgresConfig().Table
	}
	return &PostgresSink{
		cfg:    cfg,
		db:     db,
		table:  pgx.Identifier{cfg.Table}.Sanitize(),
		logger: logger,
	}
}

// Append inserts one snapshot.
func (s *PostgresSink) Append(ctx context.Context, snap model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	if s.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.WriteTimeout)
		defer cancel()
	}

	if !s.ready {
		if _, err := s.db.Exec(ctx, s.createTableSQL()); err != nil {
			s.stats.Errors++
			return fmt.Errorf("create table %s: %w", s.table, err)
		}
		s.ready = true
		s.logger.Info("snapshot table ready", "table", s.cfg.Table)
	}

	if _, err := s.db.Exec(ctx, s.insertSQL(), insertArgs(snap)...); err != nil {
		s.stats.Errors++
		return fmt.Errorf("insert snapshot: %w", err)
	}

	s.stats.Appends++
	return nil
}

// Stats returns current counters.
func (s *PostgresSink) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close marks the sink closed. The pool is owned by the caller.
func (s *PostgresSink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *PostgresSink) createTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
		ts_utc         TIMESTAMPTZ NOT NULL,
		ts_local       TEXT NOT NULL,
		market_id      TEXT NOT NULL,
		token_id       TEXT NOT NULL,
		market_name    TEXT NOT NULL,
		side           TEXT NOT NULL,
		label          TEXT NOT NULL,
		human_readable TEXT NOT NULL,
		best_bid       TEXT,
		best_ask       TEXT,
		bids_json      JSONB NOT NULL,
		asks_json      JSONB NOT NULL
	)`
}

func (s *PostgresSink) insertSQL() string {
	return `INSERT INTO ` + s.table + ` (ts_utc, ts_local, market_id, token_id, market_name, side, label, human_readable, best_bid, best_ask, bids_json, asks_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12::jsonb)`
}

// insertArgs maps a snapshot to insert parameters. Absent best prices are NULL.
func insertArgs(snap model.Snapshot) []any {
	return []any{
		snap.CapturedAt.UTC(),
		snap.LocalTime(),
		snap.MarketID,
		snap.TokenID,
		snap.Label.Market,
		snap.Label.Side,
		snap.Label.String(),
		snap.Label.HumanReadable(),
		nullable(snap.BestBid),
		nullable(snap.BestAsk),
		snap.BidsJSON(),
		snap.AsksJSON(),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
