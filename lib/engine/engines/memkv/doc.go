// Package memkv implements the engine.Engine interface with sharded
// in-memory concurrent maps.
//
// Keys are distributed over the shards with a seeded FNV-1a hash, so hot
// namespaces spread across all shards. Batch atomicity is provided by a
// reader-writer guard: point operations run in shared mode and rely on the
// concurrent maps for per-key consistency, while Apply takes exclusive mode
// and publishes all staged operations as one unit.
//
// The engine is not durable on its own, but Save/Load produce and restore
// versioned binary snapshots of the full state (namespace registry plus all
// entries), which is how callers that need persistence across restarts can
// use it.
//
// memkv is primarily used by tests that need engine semantics without disk
// I/O, and as an ephemeral backend.
package memkv
