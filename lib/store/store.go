package store

import (
	"sync"

	"github.com/trikv-io/triKV/lib/engine"
)

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

// Store is a column-family keyed KV database bound to a single engine
// instance. A store moves through exactly two states: open (after a
// successful Open) and closed (after the first Close). Closed is terminal,
// the handle cannot be reopened.
//
// Thread-safety: all methods are safe for concurrent use. Point and batch
// operations share the guard, Close takes it exclusively and therefore waits
// for in-flight operations to drain before tearing the engine down.
type Store struct {
	mu     sync.RWMutex
	eng    engine.Engine
	path   string
	closed bool
}

// Open creates a store at path using the given engine factory. All six
// column families are provisioned up front so that reads against an empty
// family behave uniformly. If provisioning fails the engine is torn down
// again and an error with CodeOpenFailed is returned.
func Open(path string, factory engine.Factory) (*Store, error) {
	eng, err := factory(path)
	if err != nil {
		return nil, errEngine(CodeOpenFailed, err)
	}
	for _, cf := range Families() {
		if err := eng.EnsureNamespace(cf.namespace()); err != nil {
			_ = eng.Close()
			return nil, errEngine(CodeOpenFailed, err)
		}
	}
	return &Store{eng: eng, path: path}, nil
}

// Get returns the value stored under key in the given family. The second
// return value reports whether the key was present; an absent key is not an
// error. The family is validated before the store state is consulted, so an
// invalid name reports CodeInvalidColumnFamily even on a closed store.
func (s *Store) Get(cf ColumnFamily, key []byte) ([]byte, bool, error) {
	if !cf.Valid() {
		return nil, false, errInvalidFamily(cf.String())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, errStoreClosed()
	}

	value, found, err := s.eng.Get(cf.namespace(), key)
	if err != nil {
		return nil, false, errEngine(CodeGetFailed, err)
	}
	return value, found, nil
}

// Put stores value under key in the given family, replacing any previous
// value.
func (s *Store) Put(cf ColumnFamily, key, value []byte) error {
	if !cf.Valid() {
		return errInvalidFamily(cf.String())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return errStoreClosed()
	}

	if err := s.eng.Set(cf.namespace(), key, value); err != nil {
		return errEngine(CodePutFailed, err)
	}
	return nil
}

// Delete removes key from the given family. Deleting an absent key succeeds.
func (s *Store) Delete(cf ColumnFamily, key []byte) error {
	if !cf.Valid() {
		return errInvalidFamily(cf.String())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return errStoreClosed()
	}

	if err := s.eng.Delete(cf.namespace(), key); err != nil {
		return errEngine(CodeDeleteFailed, err)
	}
	return nil
}

// Exists reports whether key is present in the given family without loading
// its value. Exists and Get always agree on presence.
func (s *Store) Exists(cf ColumnFamily, key []byte) (bool, error) {
	if !cf.Valid() {
		return false, errInvalidFamily(cf.String())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, errStoreClosed()
	}

	found, err := s.eng.Has(cf.namespace(), key)
	if err != nil {
		return false, errEngine(CodeGetFailed, err)
	}
	return found, nil
}

// Close transitions the store to the closed state and tears the engine
// down. The first call wins; every later call returns an error with
// CodeAlreadyClosed and has no further effect. The store is marked closed
// before the engine teardown runs, so even a failing teardown (reported as
// CodeCloseFailed) leaves the handle unusable rather than half-open.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &Error{Code: CodeAlreadyClosed}
	}

	eng := s.eng
	s.closed = true
	s.eng = nil

	if err := eng.Close(); err != nil {
		return errEngine(CodeCloseFailed, err)
	}
	return nil
}

// IsOpen reports whether the store still accepts operations.
func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// Path returns the filesystem path the store was opened at. The path stays
// readable after Close.
func (s *Store) Path() string {
	return s.path
}
