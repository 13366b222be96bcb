// Package store implements a column-family keyed KV store on top of the
// pluggable engine layer.
//
// Every store carries the same fixed set of six column families (id2str,
// str2id, spo, pos, osp, derived). The set is closed: families are
// provisioned when the store is opened and no API exists to add or remove
// one afterwards. Operations addressing any other name fail with
// CodeInvalidColumnFamily regardless of store state.
//
// # Lifecycle
//
// A store is created with Open and lives until the first successful or
// failing Close. Closed is terminal: a closed store rejects every operation
// with CodeStoreClosed and a second Close reports CodeAlreadyClosed. The
// handle is never reopened, callers create a new store instead.
//
// # Concurrency
//
// Point operations (Get, Put, Delete, Exists) and batches share a
// read-write guard in read mode, Close takes it in write mode. Close
// therefore drains in-flight operations before tearing down the engine, and
// an operation never observes a partially closed store.
//
// # Batches
//
// Apply commits a slice of Operations atomically. The batch is validated in
// full before anything touches the engine: one invalid family or malformed
// operation rejects the whole batch with no partial effects. WriteBatch and
// DeleteBatch are thin wrappers over Apply for homogeneous batches.
//
// # Errors
//
// All failures are reported as *Error carrying an ErrCode. Callers branch
// on the code (via CodeOf or a type assertion), never on message text.
package store
