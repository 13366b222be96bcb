// Package pebbledb implements the engine.Engine interface on top of
// cockroachdb/pebble, an embedded ordered key-value store.
//
// Namespaces are rendered as key prefixes: a data key is stored as the
// namespace name, a 0x00 separator, then the user key. This keeps every
// namespace an independently ordered, disjoint slice of pebble's key space
// while still allowing a single atomic write batch to span namespaces.
// Provisioned namespaces are recorded as marker keys under a reserved meta
// prefix so that a reopened store can report which namespaces it holds.
//
// Durability and atomicity are delegated entirely to pebble: point writes and
// batch commits go through pebble's write-ahead log, and a batch is committed
// as one WAL record (all entries visible or none).
//
// The package is safe for concurrent use; pebble performs its own internal
// concurrency control. Lifecycle exclusion (never calling into a closed
// engine) is the caller's responsibility, as stated in the engine package.
package pebbledb
