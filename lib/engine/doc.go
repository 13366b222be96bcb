// Package engine provides a standardized interface for embedded ordered
// key-value engines with namespaced key spaces. It defines the Engine
// interface that allows consistent interaction with various storage backends
// while abstracting implementation details.
//
// The package focuses on:
//   - A unified interface for namespaced point operations (Get, Set, Delete, Has)
//   - Atomic multi-entry write batches (NewBatch, Apply)
//   - Namespace provisioning and discovery
//   - Feature discovery through capability flags
//   - Standardized metadata reporting
//
// Key Components:
//
//   - Engine Interface: The core interface that all engine implementations
//     must satisfy. Keys and values are opaque byte sequences; each namespace
//     is an independently ordered partition of the key space.
//
//   - Batch Interface: An ordered staging area for writes. Entries staged in
//     a batch become visible only after a successful Apply, which commits
//     them as a single indivisible unit. A batch that is discarded without
//     being applied leaves no trace in the engine.
//
//   - Feature Flags: The Feature type defines capability flags that
//     implementations advertise through SupportsFeature, allowing clients to
//     discover supported operations at runtime.
//
//   - Implementation Identifiers: The Implementation type provides string
//     constants for the available backends ("pebble", "memkv").
//
// Implementations:
//
// The engines/pebbledb package provides a persistent implementation backed by
// cockroachdb/pebble. Namespaces are rendered as key prefixes so that each
// namespace keeps engine-native key ordering, and batches map directly onto
// pebble's atomic write batches.
//
// The engines/memkv package provides an in-memory implementation with sharded
// concurrent maps and optional binary snapshot persistence. It is primarily
// used in tests and for ephemeral stores.
//
// The testing package (lib/engine/testing) provides a standardized test suite
// for validating implementations of the Engine interface.
package engine
