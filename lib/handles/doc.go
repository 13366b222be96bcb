// Package handles provides the mapping between numeric store handles and
// open store instances.
//
// The RPC surface never ships store pointers over the wire. Instead a
// server opens stores locally, hands the client an opaque uint64 handle and
// resolves that handle on every subsequent request. Handles are allocated
// from a monotonically increasing counter and never reused, so a stale
// handle from a closed store can never alias a newer store.
package handles
