// Package connection implements the Connection Supervisor component.
//
// A Supervisor owns one feed connection:
//   - Dials the feed and sends a single subscribe message for its identifiers
//   - Sends a text heartbeat on a fixed cadence from the receive loop
//   - Bounds every receive wait so the heartbeat is never starved
//   - Drives frames through the envelope normalizer and snapshot processor
//   - Reconnects after a fixed delay, forever, with a fresh book cache
package connection
