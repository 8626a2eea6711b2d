// Package market implements the Subscription Registry.
//
// The Registry:
//   - Maps (market, side) labels to feed subscription identifiers
//   - Resolves identifiers back to labels for every inbound update
//   - Is built once from configuration and never mutated afterwards,
//     so it is shared by all connections without locking
package market
