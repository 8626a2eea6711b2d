// Package api provides the market catalog REST client.
//
// Endpoint:
//   - https://clob.polymarket.com/markets (cursor paginated via next_cursor)
//
// The catalog is used offline to find subscription identifiers for the
// recorder's instrument registry.
package api
