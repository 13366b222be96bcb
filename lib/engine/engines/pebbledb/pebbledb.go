package pebbledb

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/trikv-io/triKV/lib/engine"
)

// --------------------------------------------------------------------------
// Constants and Key Layout
// --------------------------------------------------------------------------

/*
	Key layout: every data key is stored as

		<namespace bytes> 0x00 <user key bytes>

	The 0x00 separator keeps namespaces disjoint (namespace names never
	contain 0x00) and preserves pebble's byte-wise key ordering within each
	namespace. Provisioned namespaces are recorded as marker keys under a
	reserved meta prefix starting with 0x00, which no data key can collide
	with since namespace names are non-empty.
*/

var nsMarkerPrefix = []byte{0x00, 'n', 's', 0x00}

const nsSeparator = byte(0x00)

// dataKey renders the namespaced engine key for a user key.
func dataKey(ns engine.Namespace, key []byte) []byte {
	k := make([]byte, 0, len(ns)+1+len(key))
	k = append(k, ns...)
	k = append(k, nsSeparator)
	k = append(k, key...)
	return k
}

// markerKey renders the meta key recording a provisioned namespace.
func markerKey(ns engine.Namespace) []byte {
	return append(append([]byte{}, nsMarkerPrefix...), ns...)
}

// --------------------------------------------------------------------------
// Core Pebble Engine Structure
// --------------------------------------------------------------------------

// pebbleImpl implements engine.Engine on top of a pebble store.
type pebbleImpl struct {
	db   *pebble.DB
	path string
	wo   *pebble.WriteOptions
}

// DBOptions configures the pebble engine during initialization
type DBOptions struct {
	// Sync controls whether writes are synced to stable storage before they
	// are acknowledged. Disabling sync trades durability for throughput.
	Sync bool
}

// DefaultOptions returns the default pebble engine options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		Sync: true,
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// Open opens (or creates) a pebble store at the given path with the
// specified options (optional).
//
// Opening the same path twice from one process is rejected by pebble's
// directory lock, so each path has at most one live engine instance.
func Open(path string, opts *DBOptions) (engine.Engine, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open %s: %w", path, err)
	}

	wo := pebble.Sync
	if !opts.Sync {
		wo = pebble.NoSync
	}

	return &pebbleImpl{
		db:   db,
		path: path,
		wo:   wo,
	}, nil
}

// Factory returns an engine.Factory that opens pebble stores with the given
// options (nil = defaults).
func Factory(opts *DBOptions) engine.Factory {
	return func(path string) (engine.Engine, error) {
		return Open(path, opts)
	}
}

// --------------------------------------------------------------------------
// Core Engine Interface Methods - Point Operations
// --------------------------------------------------------------------------

// Get retrieves the value for a key within a namespace.
// The returned value is a copy of the stored data and safe to retain.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (p *pebbleImpl) Get(ns engine.Namespace, key []byte) ([]byte, bool, error) {
	val, closer, err := p.db.Get(dataKey(ns, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	// The slice returned by pebble is only valid until the closer is closed,
	// so hand out a copy.
	out := make([]byte, len(val))
	copy(out, val)

	if err := closer.Close(); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Set inserts or overwrites the value for a key within a namespace.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (p *pebbleImpl) Set(ns engine.Namespace, key, value []byte) error {
	return p.db.Set(dataKey(ns, key), value, p.wo)
}

// Delete removes the entry for a key within a namespace.
// Deleting an absent key writes a tombstone and is not an error.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (p *pebbleImpl) Delete(ns engine.Namespace, key []byte) error {
	return p.db.Delete(dataKey(ns, key), p.wo)
}

// Has reports whether a value exists for a key within a namespace.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (p *pebbleImpl) Has(ns engine.Namespace, key []byte) (bool, error) {
	_, closer, err := p.db.Get(dataKey(ns, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

// --------------------------------------------------------------------------
// Core Engine Interface Methods - Batch Operations
// --------------------------------------------------------------------------

// pebbleBatch wraps a pebble.Batch as an engine.Batch.
type pebbleBatch struct {
	b *pebble.Batch
}

func (b *pebbleBatch) Set(ns engine.Namespace, key, value []byte) {
	// Staging into a write-only pebble batch never fails.
	_ = b.b.Set(dataKey(ns, key), value, nil)
}

func (b *pebbleBatch) Delete(ns engine.Namespace, key []byte) {
	_ = b.b.Delete(dataKey(ns, key), nil)
}

func (b *pebbleBatch) Len() int {
	return int(b.b.Count())
}

func (b *pebbleBatch) Close() error {
	return b.b.Close()
}

// NewBatch creates an empty write batch backed by a pebble batch.
func (p *pebbleImpl) NewBatch() engine.Batch {
	return &pebbleBatch{b: p.db.NewBatch()}
}

// Apply commits the batch atomically. Pebble batches are committed through a
// single WAL record, so either every staged entry becomes visible or none do.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (p *pebbleImpl) Apply(b engine.Batch) error {
	pb, ok := b.(*pebbleBatch)
	if !ok {
		return fmt.Errorf("pebble apply: foreign batch type %T", b)
	}
	return p.db.Apply(pb.b, p.wo)
}

// --------------------------------------------------------------------------
// Core Engine Interface Methods - Namespace Management
// --------------------------------------------------------------------------

// EnsureNamespace records the namespace marker if it is missing. Namespaces
// need no physical structure in pebble, so provisioning is a single
// idempotent marker write.
func (p *pebbleImpl) EnsureNamespace(ns engine.Namespace) error {
	mk := markerKey(ns)
	_, closer, err := p.db.Get(mk)
	if err == nil {
		return closer.Close()
	}
	if !errors.Is(err, pebble.ErrNotFound) {
		return err
	}
	return p.db.Set(mk, []byte{}, p.wo)
}

// Namespaces lists all provisioned namespaces by scanning the marker range.
func (p *pebbleImpl) Namespaces() ([]engine.Namespace, error) {
	upper := append(append([]byte{}, nsMarkerPrefix...), 0xff)
	iter := p.db.NewIter(&pebble.IterOptions{
		LowerBound: nsMarkerPrefix,
		UpperBound: upper,
	})

	var nss []engine.Namespace
	for iter.First(); iter.Valid(); iter.Next() {
		nss = append(nss, engine.Namespace(iter.Key()[len(nsMarkerPrefix):]))
	}
	if err := iter.Error(); err != nil {
		_ = iter.Close()
		return nil, err
	}
	return nss, iter.Close()
}

// --------------------------------------------------------------------------
// Engine Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

func (p *pebbleImpl) Path() string {
	return p.path
}

// SupportsFeature checks if this implementation supports a specific feature
func (p *pebbleImpl) SupportsFeature(feature engine.Feature) bool {
	supportedFeatures := engine.FeatureGet |
		engine.FeatureSet |
		engine.FeatureDelete |
		engine.FeatureHas |
		engine.FeatureBatch |
		engine.FeatureNamespaceCreate |
		engine.FeaturePersistent
	return supportedFeatures&feature == feature
}

// GetInfo returns statistics about the engine
func (p *pebbleImpl) GetInfo() engine.EngineInfo {
	// Full-range disk usage estimate; cheap but approximate.
	size, _ := p.db.EstimateDiskUsage([]byte{0x00}, []byte{0xff})

	return engine.EngineInfo{
		Path:       p.path,
		SizeBytes:  int(size),
		EngineType: engine.ImplPebble,
		SupportedFeatures: []engine.Feature{
			engine.FeatureGet, engine.FeatureSet,
			engine.FeatureDelete, engine.FeatureHas,
			engine.FeatureBatch, engine.FeatureNamespaceCreate,
			engine.FeaturePersistent,
		},
		Metadata: p.db.Metrics(),
	}
}

// Close flushes and closes the underlying pebble store.
func (p *pebbleImpl) Close() error {
	return p.db.Close()
}
