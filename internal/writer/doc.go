// Package writer implements the Persistence Sink.
//
// Sinks:
//   - CSV file sink (default): one row per snapshot, header on first use
//   - Postgres sink: one committed INSERT per snapshot, table created on first use
//   - Serial sink: single goroutine owning another sink, for several connections
//
// All sinks are append-only (never update, never compact). A write is
// acknowledged only after it has been flushed and synced to storage. A failed
// write is returned to the caller and not retried; the record is lost.
package writer
