// Package model defines shared data types used across the order-book recorder.
//
// Conventions:
//   - Prices and sizes: decimal strings exactly as received from the feed
//   - Timestamps: time.Time captured once per snapshot
//   - IDs: opaque feed token strings
package model
