package memkv

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/trikv-io/triKV/lib/engine"
	"github.com/trikv-io/triKV/lib/engine/util"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Constants for snapshot format and structure
const (
	magicNum     = "MEMKVDB\x00" // Snapshot format identifier
	memkvVersion = 1             // Snapshot format version
	nsSeparator  = byte(0x00)    // Separator between namespace and key
)

// --------------------------------------------------------------------------
// Core memkv engine structure
// --------------------------------------------------------------------------

// memImpl implements engine.Engine with sharded in-memory maps.
//
// Point operations run under the shared mode of the batch guard and rely on
// the xsync maps for per-key consistency. Apply and Load take the exclusive
// mode so that no concurrent reader ever observes a half-applied batch.
type memImpl struct {
	path      string // nominal path, reported but not used for storage
	numShards int
	seed      uint64 // Seed for hash function

	// guard for batch atomicity: shared for point ops, exclusive for Apply/Load
	batchMu sync.RWMutex

	shards     []*xsync.MapOf[string, []byte]
	namespaces *xsync.MapOf[string, struct{}]
}

// DBOptions configures the memkv engine during initialization
type DBOptions struct {
	NumShards int // Number of shards (0 = auto)
}

// DefaultOptions returns the default memkv options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		NumShards: runtime.NumCPU(), // Auto-determine based on CPU count
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// Open creates a new memkv engine with the specified options (optional).
// The path is retained for reporting only; memkv keeps all data in memory.
//
// Thread-safety: This function is not thread-safe and should only be called
// once during initialization.
func Open(path string, opts *DBOptions) (engine.Engine, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NumShards < 1 {
		opts.NumShards = 1
	}

	shards := make([]*xsync.MapOf[string, []byte], opts.NumShards)
	for i := range shards {
		shards[i] = xsync.NewMapOf[string, []byte]()
	}

	return &memImpl{
		path:       path,
		numShards:  opts.NumShards,
		seed:       util.GenerateSeed(),
		shards:     shards,
		namespaces: xsync.NewMapOf[string, struct{}](),
	}, nil
}

// Factory returns an engine.Factory that creates memkv engines with the
// given options (nil = defaults).
func Factory(opts *DBOptions) engine.Factory {
	return func(path string) (engine.Engine, error) {
		return Open(path, opts)
	}
}

// --------------------------------------------------------------------------
// Internal Helpers
// --------------------------------------------------------------------------

// storedKey renders the namespaced map key for a user key.
func storedKey(ns engine.Namespace, key []byte) string {
	k := make([]byte, 0, len(ns)+1+len(key))
	k = append(k, ns...)
	k = append(k, nsSeparator)
	k = append(k, key...)
	return string(k)
}

// shardFor selects the shard responsible for a stored key
func (m *memImpl) shardFor(sk string) *xsync.MapOf[string, []byte] {
	h := util.HashString(sk, m.seed)
	return m.shards[uint64(h)%uint64(m.numShards)]
}

// --------------------------------------------------------------------------
// Core Engine Interface Methods - Point Operations
// --------------------------------------------------------------------------

// Get retrieves the value for a key within a namespace.
// The returned value is a copy of the stored data and safe to retain.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memImpl) Get(ns engine.Namespace, key []byte) ([]byte, bool, error) {
	m.batchMu.RLock()
	defer m.batchMu.RUnlock()

	sk := storedKey(ns, key)
	val, ok := m.shardFor(sk).Load(sk)
	if !ok {
		return nil, false, nil
	}

	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

// Set inserts or overwrites the value for a key within a namespace.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memImpl) Set(ns engine.Namespace, key, value []byte) error {
	m.batchMu.RLock()
	defer m.batchMu.RUnlock()

	// Copy value to prevent memory corruption from caller-side reuse
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	sk := storedKey(ns, key)
	m.shardFor(sk).Store(sk, valueCopy)
	return nil
}

// Delete removes the entry for a key within a namespace.
// Deleting an absent key is a no-op.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memImpl) Delete(ns engine.Namespace, key []byte) error {
	m.batchMu.RLock()
	defer m.batchMu.RUnlock()

	sk := storedKey(ns, key)
	m.shardFor(sk).Delete(sk)
	return nil
}

// Has reports whether a value exists for a key within a namespace.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memImpl) Has(ns engine.Namespace, key []byte) (bool, error) {
	m.batchMu.RLock()
	defer m.batchMu.RUnlock()

	sk := storedKey(ns, key)
	_, ok := m.shardFor(sk).Load(sk)
	return ok, nil
}

// --------------------------------------------------------------------------
// Core Engine Interface Methods - Batch Operations
// --------------------------------------------------------------------------

type stagedOp struct {
	key    string
	value  []byte
	delete bool
}

// memBatch stages operations in order until Apply commits them.
type memBatch struct {
	ops []stagedOp
}

func (b *memBatch) Set(ns engine.Namespace, key, value []byte) {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	b.ops = append(b.ops, stagedOp{key: storedKey(ns, key), value: valueCopy})
}

func (b *memBatch) Delete(ns engine.Namespace, key []byte) {
	b.ops = append(b.ops, stagedOp{key: storedKey(ns, key), delete: true})
}

func (b *memBatch) Len() int {
	return len(b.ops)
}

func (b *memBatch) Close() error {
	b.ops = nil
	return nil
}

// NewBatch creates an empty write batch.
func (m *memImpl) NewBatch() engine.Batch {
	return &memBatch{}
}

// Apply commits the batch under the exclusive mode of the batch guard, so
// the staged operations become visible to readers as one unit, in order.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memImpl) Apply(b engine.Batch) error {
	mb, ok := b.(*memBatch)
	if !ok {
		return fmt.Errorf("memkv apply: foreign batch type %T", b)
	}

	m.batchMu.Lock()
	defer m.batchMu.Unlock()

	for _, op := range mb.ops {
		shard := m.shardFor(op.key)
		if op.delete {
			shard.Delete(op.key)
		} else {
			shard.Store(op.key, op.value)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Core Engine Interface Methods - Namespace Management
// --------------------------------------------------------------------------

// EnsureNamespace records the namespace. Namespaces need no physical
// structure in memkv, so provisioning is a single idempotent registry write.
func (m *memImpl) EnsureNamespace(ns engine.Namespace) error {
	m.namespaces.Store(string(ns), struct{}{})
	return nil
}

// Namespaces lists all provisioned namespaces.
func (m *memImpl) Namespaces() ([]engine.Namespace, error) {
	var nss []engine.Namespace
	m.namespaces.Range(func(name string, _ struct{}) bool {
		nss = append(nss, engine.Namespace(name))
		return true
	})
	return nss, nil
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save persists a snapshot of the engine to the writer.
//
// Thread-safety: This function takes the exclusive mode of the batch guard
// so the snapshot is a consistent point-in-time view.
func (m *memImpl) Save(w io.Writer) error {
	m.batchMu.Lock()
	defer m.batchMu.Unlock()

	// Use a buffered writer for better performance
	bw := bufio.NewWriterSize(w, 1024*1024) // 1 MB buffer

	// Write file header
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(memkvVersion)); err != nil {
		return err
	}

	// Write namespace registry
	var names []string
	m.namespaces.Range(func(name string, _ struct{}) bool {
		names = append(names, name)
		return true
	})
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(names))); err != nil {
		return err
	}
	for _, name := range names {
		if err := writeBlob(bw, []byte(name)); err != nil {
			return err
		}
	}

	// Count entries across shards
	var total uint64
	for _, shard := range m.shards {
		total += uint64(shard.Size())
	}
	if err := binary.Write(bw, binary.LittleEndian, total); err != nil {
		return err
	}

	// Write entries
	var werr error
	for _, shard := range m.shards {
		shard.Range(func(key string, value []byte) bool {
			if werr = writeBlob(bw, []byte(key)); werr != nil {
				return false
			}
			if werr = writeBlob(bw, value); werr != nil {
				return false
			}
			return true
		})
		if werr != nil {
			return werr
		}
	}

	// Flush buffer to ensure all data is written
	return bw.Flush()
}

// Load restores an engine snapshot from the reader, replacing all data.
//
// Thread-safety: This function takes the exclusive mode of the batch guard.
func (m *memImpl) Load(r io.Reader) error {
	m.batchMu.Lock()
	defer m.batchMu.Unlock()

	// Use a buffered reader for better performance
	br := bufio.NewReaderSize(r, 1024*1024) // 1 MB buffer

	// Read and verify magic number
	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}
	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid snapshot format: magic number mismatch")
	}

	// Read and verify version
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}
	if int(version) != memkvVersion {
		return fmt.Errorf("unsupported snapshot version: %d (expected %d)", version, memkvVersion)
	}

	// Read namespace registry
	var nsCount uint32
	if err := binary.Read(br, binary.LittleEndian, &nsCount); err != nil {
		return err
	}
	namespaces := xsync.NewMapOf[string, struct{}]()
	for i := uint32(0); i < nsCount; i++ {
		name, err := readBlob(br)
		if err != nil {
			return err
		}
		namespaces.Store(string(name), struct{}{})
	}

	// Recreate empty shards
	shards := make([]*xsync.MapOf[string, []byte], m.numShards)
	for i := range shards {
		shards[i] = xsync.NewMapOf[string, []byte]()
	}
	m.shards = shards
	m.namespaces = namespaces

	// Read entries
	var total uint64
	if err := binary.Read(br, binary.LittleEndian, &total); err != nil {
		return err
	}
	for i := uint64(0); i < total; i++ {
		key, err := readBlob(br)
		if err != nil {
			return err
		}
		value, err := readBlob(br)
		if err != nil {
			return err
		}
		sk := string(key)
		m.shardFor(sk).Store(sk, value)
	}

	return nil
}

// writeBlob writes a length-prefixed byte sequence
func writeBlob(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// readBlob reads a length-prefixed byte sequence
func readBlob(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// --------------------------------------------------------------------------
// Engine Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

func (m *memImpl) Path() string {
	return m.path
}

// SupportsFeature checks if this implementation supports a specific feature
func (m *memImpl) SupportsFeature(feature engine.Feature) bool {
	supportedFeatures := engine.FeatureGet |
		engine.FeatureSet |
		engine.FeatureDelete |
		engine.FeatureHas |
		engine.FeatureBatch |
		engine.FeatureNamespaceCreate |
		engine.FeatureSave |
		engine.FeatureLoad
	return supportedFeatures&feature == feature
}

// GetInfo returns statistics about the engine
func (m *memImpl) GetInfo() engine.EngineInfo {
	// create a size histogram for the info
	histogram := util.NewSizeHistogram()
	samplesPerShard := 100

	shardSizes := make([]float64, len(m.shards))
	for i, shard := range m.shards {
		count := 0
		shard.Range(func(_ string, value []byte) bool {
			histogram.AddSample(len(value))

			// only sample a few entries per shard
			count++
			return count < samplesPerShard
		})
		shardSizes[i] = float64(shard.Size())
	}

	// weighted estimate (60% median, 40% average)
	medianSize := histogram.MedianEstimate()
	avgSize := histogram.AverageSize()
	sizeBytes := (medianSize*60 + avgSize*40) / 100

	meta := &struct {
		ShardCount        int                    `json:"shard_count"`
		ShardDistribution util.DistributionStats `json:"shard_distribution"`
		Info              string                 `json:"info"`
	}{
		ShardCount:        len(m.shards),
		ShardDistribution: util.NewDistributionStats(shardSizes),
		Info:              "All values (including SizeBytes) are estimates and may vary depending on the engine state.",
	}

	return engine.EngineInfo{
		Path:       m.path,
		SizeBytes:  sizeBytes,
		EngineType: engine.ImplMemKV,
		SupportedFeatures: []engine.Feature{
			engine.FeatureGet, engine.FeatureSet,
			engine.FeatureDelete, engine.FeatureHas,
			engine.FeatureBatch, engine.FeatureNamespaceCreate,
			engine.FeatureSave, engine.FeatureLoad,
		},
		Metadata: meta,
	}
}

// Close releases the shard tables.
func (m *memImpl) Close() error {
	m.batchMu.Lock()
	defer m.batchMu.Unlock()
	m.shards = nil
	return nil
}
