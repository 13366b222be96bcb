package handles

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/trikv-io/triKV/lib/store"
)

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

// Registry maps numeric handles to open stores. Handles are never reused:
// a released handle stays invalid for the lifetime of the registry.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	next   atomic.Uint64
	stores *xsync.MapOf[uint64, *store.Store]
}

// NewRegistry creates an empty registry. Handle numbering starts at 1 so
// that the zero value of a handle is always invalid.
func NewRegistry() *Registry {
	return &Registry{
		stores: xsync.NewMapOf[uint64, *store.Store](),
	}
}

// Add registers s and returns its freshly allocated handle.
func (r *Registry) Add(s *store.Store) uint64 {
	id := r.next.Add(1)
	r.stores.Store(id, s)
	return id
}

// Get resolves a handle to its store. The second return value reports
// whether the handle is known.
func (r *Registry) Get(id uint64) (*store.Store, bool) {
	return r.stores.Load(id)
}

// Remove unregisters a handle and returns the store it pointed to. The
// store itself is not closed, that is the caller's responsibility.
func (r *Registry) Remove(id uint64) (*store.Store, bool) {
	return r.stores.LoadAndDelete(id)
}

// Len returns the number of registered stores.
func (r *Registry) Len() int {
	return r.stores.Size()
}

// Range calls fn for every registered handle until fn returns false.
func (r *Registry) Range(fn func(id uint64, s *store.Store) bool) {
	r.stores.Range(fn)
}

// CloseAll removes every handle and closes the stores behind them. The
// first close error is returned, later ones are discarded. Intended for
// server shutdown.
func (r *Registry) CloseAll() error {
	var firstErr error
	r.stores.Range(func(id uint64, _ *store.Store) bool {
		if s, ok := r.stores.LoadAndDelete(id); ok {
			if err := s.Close(); err != nil && firstErr == nil {
				if store.CodeOf(err) != store.CodeAlreadyClosed {
					firstErr = err
				}
			}
		}
		return true
	})
	return firstErr
}
