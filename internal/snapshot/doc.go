// Package snapshot implements the Snapshot Processor.
//
// A Processor turns one normalized payload into a model.Snapshot: it resolves
// the subscription identifier through the registry, computes best bid and
// best ask, appends the record to the sink and overwrites the book cache
// entry for that identifier.
//
// A Cache belongs to exactly one receive loop and is never shared.
package snapshot
