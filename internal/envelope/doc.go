// Package envelope implements the Payload Normalizer.
//
// Feed frames arrive in several shapes: a bare order-book object, an object
// wrapping it under "payload" (possibly several levels deep), or a sequence
// of either. Parse decodes a frame into the closed Value variant and Extract
// locates the innermost object carrying order-book marker fields.
//
// Nothing in this package returns an error for an unrecognized shape;
// unusable input simply yields no payload.
package envelope
