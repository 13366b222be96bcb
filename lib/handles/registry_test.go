package handles_test

import (
	"sync"
	"testing"

	"github.com/trikv-io/triKV/lib/engine/engines/memkv"
	"github.com/trikv-io/triKV/lib/handles"
	"github.com/trikv-io/triKV/lib/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir(), memkv.Factory(nil))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return s
}

func TestAddGetRemove(t *testing.T) {
	r := handles.NewRegistry()
	s := openStore(t)
	defer func() { _ = s.Close() }()

	id := r.Add(s)
	if id == 0 {
		t.Fatal("handle 0 allocated, zero must stay invalid")
	}

	got, ok := r.Get(id)
	if !ok || got != s {
		t.Fatalf("get %d: expected registered store, got (%v,%v)", id, got, ok)
	}

	removed, ok := r.Remove(id)
	if !ok || removed != s {
		t.Fatalf("remove %d: expected registered store, got (%v,%v)", id, removed, ok)
	}
	if _, ok := r.Get(id); ok {
		t.Error("handle still resolvable after remove")
	}
	if _, ok := r.Remove(id); ok {
		t.Error("second remove succeeded")
	}
}

func TestHandlesAreNeverReused(t *testing.T) {
	r := handles.NewRegistry()
	seen := make(map[uint64]bool)

	for i := 0; i < 10; i++ {
		s := openStore(t)
		id := r.Add(s)
		if seen[id] {
			t.Fatalf("handle %d allocated twice", id)
		}
		seen[id] = true
		if _, ok := r.Remove(id); !ok {
			t.Fatalf("remove %d failed", id)
		}
		_ = s.Close()
	}
}

func TestUnknownHandle(t *testing.T) {
	r := handles.NewRegistry()
	if _, ok := r.Get(0); ok {
		t.Error("handle 0 resolved on empty registry")
	}
	if _, ok := r.Get(12345); ok {
		t.Error("arbitrary handle resolved on empty registry")
	}
}

func TestConcurrentAddAndResolve(t *testing.T) {
	r := handles.NewRegistry()
	const workers = 8

	var wg sync.WaitGroup
	ids := make([]uint64, workers)
	stores := make([]*store.Store, workers)
	for w := 0; w < workers; w++ {
		stores[w] = openStore(t)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids[w] = r.Add(stores[w])
			if got, ok := r.Get(ids[w]); !ok || got != stores[w] {
				t.Errorf("worker %d: own handle does not resolve", w)
			}
		}(w)
	}
	wg.Wait()

	if r.Len() != workers {
		t.Errorf("expected %d registered stores, got %d", workers, r.Len())
	}
	for w := 0; w < workers; w++ {
		_ = stores[w].Close()
	}
}

func TestCloseAll(t *testing.T) {
	r := handles.NewRegistry()
	stores := make([]*store.Store, 3)
	for i := range stores {
		stores[i] = openStore(t)
		r.Add(stores[i])
	}

	if err := r.CloseAll(); err != nil {
		t.Fatalf("close all failed: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("expected empty registry after CloseAll, got %d entries", r.Len())
	}
	for i, s := range stores {
		if s.IsOpen() {
			t.Errorf("store %d still open after CloseAll", i)
		}
	}
}
