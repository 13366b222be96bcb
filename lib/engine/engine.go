package engine

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplPebble Implementation = "pebble"
	ImplMemKV  Implementation = "memkv"
)

// Namespace identifies an independently ordered partition of the key space
// within one engine store. Engines treat the namespace as opaque; the set of
// namespaces in use is decided by the caller.
type Namespace string

// Feature represents engine features as bit flags
type Feature uint64

const (
	FeatureGet             Feature = 1 << iota // Support for Get operations
	FeatureSet                                 // Support for Set operations
	FeatureDelete                              // Support for Delete operations
	FeatureHas                                 // Support for Has operations
	FeatureBatch                               // Support for atomic batches
	FeatureNamespaceCreate                     // Support for provisioning namespaces
	FeaturePersistent                          // Data survives Close/reopen of the same path
	FeatureSave                                // Support for snapshot Save operations
	FeatureLoad                                // Support for snapshot Load operations
)

func (f Feature) String() string {
	switch f {
	case FeatureGet:
		return "Get"
	case FeatureSet:
		return "Set"
	case FeatureDelete:
		return "Delete"
	case FeatureHas:
		return "Has"
	case FeatureBatch:
		return "Batch"
	case FeatureNamespaceCreate:
		return "NamespaceCreate"
	case FeaturePersistent:
		return "Persistent"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

type EngineInfo struct {
	Path              string         `json:"path"`
	SizeBytes         int            `json:"size_bytes"`
	EngineType        Implementation `json:"engine_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Engine Interface
// --------------------------------------------------------------------------

// Factory is a function type that opens or creates the engine store backing a
// path. It is used to abstract the engine construction from its consumers.
type Factory func(path string) (Engine, error)

// Engine defines an interface for embedded ordered key-value engines with
// namespaced key spaces. Keys and values are opaque byte sequences; the
// engine orders keys byte-wise within each namespace.
//
// All methods must be safe for concurrent use. The engine owns durability and
// per-key concurrency control; callers own lifecycle exclusion (no calls may
// race with or follow Close).
type Engine interface {

	// --------------------------------------------------------------------------
	// Point Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value stored under key in the given namespace.
	// The boolean return value indicates whether the key was found.
	// The returned slice is a copy and safe to retain.
	Get(ns Namespace, key []byte) (value []byte, found bool, err error)

	// Set inserts or overwrites the value stored under key in the given namespace.
	Set(ns Namespace, key, value []byte) (err error)

	// Delete removes the entry stored under key in the given namespace.
	// Deleting an absent key is not an error.
	Delete(ns Namespace, key []byte) (err error)

	// Has reports whether a Get for key in the given namespace would find a value.
	Has(ns Namespace, key []byte) (found bool, err error)

	// --------------------------------------------------------------------------
	// Batch Operations
	// --------------------------------------------------------------------------

	// NewBatch creates an empty write batch. Staged entries become visible
	// only after a successful Apply. A batch that is never applied must be
	// discarded with Close and leaves no trace in the engine.
	NewBatch() Batch

	// Apply commits all entries staged in the batch as a single atomic unit:
	// either every entry takes effect or none do. The batch must have been
	// created by NewBatch on the same engine.
	Apply(b Batch) (err error)

	// --------------------------------------------------------------------------
	// Namespace Management
	// --------------------------------------------------------------------------

	// EnsureNamespace provisions the namespace if it does not yet exist.
	// Calling it for an existing namespace is a no-op.
	EnsureNamespace(ns Namespace) (err error)

	// Namespaces lists the provisioned namespaces in unspecified order.
	Namespaces() (nss []Namespace, err error)

	// --------------------------------------------------------------------------
	// Metadata and Lifecycle
	// --------------------------------------------------------------------------

	// Path returns the on-disk path the engine was opened with.
	// Engines without an on-disk representation return the path they were
	// nominally opened with.
	Path() string

	// SupportsFeature checks if the engine implementation supports the
	// specified feature. Multiple features can be checked at once using the
	// bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the engine.
	GetInfo() (info EngineInfo)

	// Close releases all resources held by the engine. No method may be
	// called after Close returns.
	Close() (err error)
}

// Batch is an ordered staging area for writes that are committed atomically
// by Engine.Apply. Implementations are not required to be thread-safe; a
// batch is built and applied by one caller.
type Batch interface {
	// Set stages an insert-or-overwrite of key in the given namespace.
	Set(ns Namespace, key, value []byte)
	// Delete stages a removal of key in the given namespace.
	Delete(ns Namespace, key []byte)
	// Len returns the number of staged entries.
	Len() int
	// Close discards the batch. Applying a closed batch is undefined.
	Close() (err error)
}
