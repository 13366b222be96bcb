package store_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/trikv-io/triKV/lib/engine"
	"github.com/trikv-io/triKV/lib/engine/engines/memkv"
	"github.com/trikv-io/triKV/lib/engine/engines/pebbledb"
	"github.com/trikv-io/triKV/lib/store"
)

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

type engineCase struct {
	name    string
	factory func(tb testing.TB) engine.Factory
}

var engineCases = []engineCase{
	{
		name: "memkv",
		factory: func(tb testing.TB) engine.Factory {
			return memkv.Factory(nil)
		},
	},
	{
		name: "pebbledb",
		factory: func(tb testing.TB) engine.Factory {
			return pebbledb.Factory(&pebbledb.DBOptions{Sync: false})
		},
	},
}

// forEachEngine runs fn once per backing engine implementation.
func forEachEngine(t *testing.T, fn func(t *testing.T, s *store.Store)) {
	t.Helper()
	for _, ec := range engineCases {
		t.Run(ec.name, func(t *testing.T) {
			s, err := store.Open(t.TempDir(), ec.factory(t))
			if err != nil {
				t.Fatalf("failed to open store: %v", err)
			}
			defer func() { _ = s.Close() }()
			fn(t, s)
		})
	}
}

func mustPut(t *testing.T, s *store.Store, cf store.ColumnFamily, key, value string) {
	t.Helper()
	if err := s.Put(cf, []byte(key), []byte(value)); err != nil {
		t.Fatalf("put %s/%s failed: %v", cf, key, err)
	}
}

func mustGet(t *testing.T, s *store.Store, cf store.ColumnFamily, key string) ([]byte, bool) {
	t.Helper()
	value, found, err := s.Get(cf, []byte(key))
	if err != nil {
		t.Fatalf("get %s/%s failed: %v", cf, key, err)
	}
	return value, found
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

func TestOpenProvisionsAllFamilies(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		if !s.IsOpen() {
			t.Fatal("freshly opened store reports closed")
		}
		for _, cf := range store.Families() {
			if _, found := mustGet(t, s, cf, "missing"); found {
				t.Errorf("family %s: phantom key in empty family", cf)
			}
		}
	})
}

func TestOpenFailedOnBadPath(t *testing.T) {
	// A regular file where the engine expects a directory.
	path := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(path, []byte("occupied"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	_, err := store.Open(path, pebbledb.Factory(nil))
	if err == nil {
		t.Fatal("expected open to fail on a regular file")
	}
	if store.CodeOf(err) != store.CodeOpenFailed {
		t.Errorf("expected CodeOpenFailed, got %v", err)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		mustPut(t, s, store.FamilySPO, "k", "v")

		if err := s.Close(); err != nil {
			t.Fatalf("first close failed: %v", err)
		}
		if s.IsOpen() {
			t.Error("store reports open after close")
		}

		// Second close is benign but reported.
		err := s.Close()
		if store.CodeOf(err) != store.CodeAlreadyClosed {
			t.Errorf("expected CodeAlreadyClosed on repeated close, got %v", err)
		}

		// Every operation on the closed store fails with StoreClosed.
		if _, _, err := s.Get(store.FamilySPO, []byte("k")); store.CodeOf(err) != store.CodeStoreClosed {
			t.Errorf("get on closed store: expected CodeStoreClosed, got %v", err)
		}
		if err := s.Put(store.FamilySPO, []byte("k"), []byte("v")); store.CodeOf(err) != store.CodeStoreClosed {
			t.Errorf("put on closed store: expected CodeStoreClosed, got %v", err)
		}
		if err := s.Delete(store.FamilySPO, []byte("k")); store.CodeOf(err) != store.CodeStoreClosed {
			t.Errorf("delete on closed store: expected CodeStoreClosed, got %v", err)
		}
		if _, err := s.Exists(store.FamilySPO, []byte("k")); store.CodeOf(err) != store.CodeStoreClosed {
			t.Errorf("exists on closed store: expected CodeStoreClosed, got %v", err)
		}
		if err := s.Apply([]store.Operation{store.Put(store.FamilySPO, []byte("k"), []byte("v"))}); store.CodeOf(err) != store.CodeStoreClosed {
			t.Errorf("apply on closed store: expected CodeStoreClosed, got %v", err)
		}
	})
}

func TestPathSurvivesClose(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(dir, memkv.Factory(nil))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if s.Path() != dir {
		t.Errorf("expected path %q, got %q", dir, s.Path())
	}
	_ = s.Close()
	if s.Path() != dir {
		t.Errorf("path changed after close: %q", s.Path())
	}
}

// --------------------------------------------------------------------------
// Point Operations
// --------------------------------------------------------------------------

func TestPutGetRoundTrip(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		mustPut(t, s, store.FamilyID2Str, "id:1", "alpha")

		value, found := mustGet(t, s, store.FamilyID2Str, "id:1")
		if !found {
			t.Fatal("key not found after put")
		}
		if !bytes.Equal(value, []byte("alpha")) {
			t.Errorf("expected %q, got %q", "alpha", value)
		}

		// Overwrite replaces the value.
		mustPut(t, s, store.FamilyID2Str, "id:1", "beta")
		value, _ = mustGet(t, s, store.FamilyID2Str, "id:1")
		if !bytes.Equal(value, []byte("beta")) {
			t.Errorf("expected %q after overwrite, got %q", "beta", value)
		}
	})
}

func TestDeleteThenGetNotFound(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		mustPut(t, s, store.FamilyStr2ID, "alpha", "1")

		if err := s.Delete(store.FamilyStr2ID, []byte("alpha")); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, found := mustGet(t, s, store.FamilyStr2ID, "alpha"); found {
			t.Error("key still present after delete")
		}

		// Deleting an absent key is not an error.
		if err := s.Delete(store.FamilyStr2ID, []byte("never-existed")); err != nil {
			t.Errorf("delete of absent key failed: %v", err)
		}
	})
}

func TestExistsAgreesWithGet(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		keys := []string{"a", "b", "c"}
		mustPut(t, s, store.FamilyPOS, "a", "1")
		mustPut(t, s, store.FamilyPOS, "c", "3")

		for _, k := range keys {
			_, getFound := mustGet(t, s, store.FamilyPOS, k)
			existsFound, err := s.Exists(store.FamilyPOS, []byte(k))
			if err != nil {
				t.Fatalf("exists %s failed: %v", k, err)
			}
			if getFound != existsFound {
				t.Errorf("key %s: get found=%v but exists found=%v", k, getFound, existsFound)
			}
		}
	})
}

func TestFamiliesAreIsolated(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		mustPut(t, s, store.FamilySPO, "shared", "spo-value")

		for _, cf := range store.Families() {
			if cf == store.FamilySPO {
				continue
			}
			if _, found := mustGet(t, s, cf, "shared"); found {
				t.Errorf("family %s sees key written to spo", cf)
			}
		}
	})
}

func TestInvalidFamilyRejectedEvenWhenClosed(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		bogus := store.ColumnFamily(42)

		if _, _, err := s.Get(bogus, []byte("k")); store.CodeOf(err) != store.CodeInvalidColumnFamily {
			t.Errorf("get: expected CodeInvalidColumnFamily, got %v", err)
		}

		_ = s.Close()

		// Family validation runs before the state check.
		if err := s.Put(bogus, []byte("k"), []byte("v")); store.CodeOf(err) != store.CodeInvalidColumnFamily {
			t.Errorf("put on closed store: expected CodeInvalidColumnFamily, got %v", err)
		}
	})
}

// --------------------------------------------------------------------------
// Concurrency
// --------------------------------------------------------------------------

func TestConcurrentPointOps(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		const workers = 8
		const keysPerWorker = 50

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				cf := store.Families()[w%len(store.Families())]
				for i := 0; i < keysPerWorker; i++ {
					key := []byte(fmt.Sprintf("w%d-k%d", w, i))
					if err := s.Put(cf, key, []byte("v")); err != nil {
						t.Errorf("worker %d: put failed: %v", w, err)
						return
					}
					if _, found, err := s.Get(cf, key); err != nil || !found {
						t.Errorf("worker %d: readback failed: found=%v err=%v", w, found, err)
						return
					}
				}
			}(w)
		}
		wg.Wait()
	})
}

func TestCloseDrainsInFlightOps(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		const workers = 4

		var wg sync.WaitGroup
		start := make(chan struct{})
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				<-start
				for i := 0; i < 100; i++ {
					key := []byte(fmt.Sprintf("w%d-k%d", w, i))
					err := s.Put(store.FamilyDerived, key, []byte("v"))
					if err != nil {
						// Once closed, only StoreClosed is acceptable.
						if store.CodeOf(err) != store.CodeStoreClosed {
							t.Errorf("worker %d: unexpected error: %v", w, err)
						}
						return
					}
				}
			}(w)
		}

		close(start)
		if err := s.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		wg.Wait()
	})
}

// --------------------------------------------------------------------------
// Scenarios
// --------------------------------------------------------------------------

// TestIndexMaintenanceScenario walks a store through a realistic sequence of
// point writes and a mixed batch, checking visibility after every step.
func TestIndexMaintenanceScenario(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		mustPut(t, s, store.FamilySPO, "a", "1")
		mustPut(t, s, store.FamilyPOS, "a", "2")

		if v, found := mustGet(t, s, store.FamilySPO, "a"); !found || !bytes.Equal(v, []byte("1")) {
			t.Fatalf("spo/a: expected (1,true), got (%q,%v)", v, found)
		}
		if v, found := mustGet(t, s, store.FamilyPOS, "a"); !found || !bytes.Equal(v, []byte("2")) {
			t.Fatalf("pos/a: expected (2,true), got (%q,%v)", v, found)
		}

		err := s.Apply([]store.Operation{
			store.Delete(store.FamilySPO, []byte("a")),
			store.Put(store.FamilyOSP, []byte("a"), []byte("3")),
		})
		if err != nil {
			t.Fatalf("mixed batch failed: %v", err)
		}

		if _, found := mustGet(t, s, store.FamilySPO, "a"); found {
			t.Error("spo/a still present after batched delete")
		}
		if v, found := mustGet(t, s, store.FamilyPOS, "a"); !found || !bytes.Equal(v, []byte("2")) {
			t.Errorf("pos/a: expected untouched (2,true), got (%q,%v)", v, found)
		}
		if v, found := mustGet(t, s, store.FamilyOSP, "a"); !found || !bytes.Equal(v, []byte("3")) {
			t.Errorf("osp/a: expected (3,true), got (%q,%v)", v, found)
		}
	})
}

// TestDictionaryScenario exercises the paired id2str/str2id families the way
// a term dictionary uses them.
func TestDictionaryScenario(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		err := s.WriteBatch([]store.PutEntry{
			{Family: store.FamilyID2Str, Key: []byte("\x00\x00\x00\x01"), Value: []byte("<urn:alpha>")},
			{Family: store.FamilyStr2ID, Key: []byte("<urn:alpha>"), Value: []byte("\x00\x00\x00\x01")},
		})
		if err != nil {
			t.Fatalf("dictionary batch failed: %v", err)
		}

		term, found := mustGet(t, s, store.FamilyID2Str, "\x00\x00\x00\x01")
		if !found || !bytes.Equal(term, []byte("<urn:alpha>")) {
			t.Fatalf("id lookup: expected <urn:alpha>, got (%q,%v)", term, found)
		}
		id, found := mustGet(t, s, store.FamilyStr2ID, "<urn:alpha>")
		if !found || !bytes.Equal(id, []byte("\x00\x00\x00\x01")) {
			t.Fatalf("term lookup: expected id 1, got (%q,%v)", id, found)
		}

		// Retire the term from both directions atomically.
		err = s.DeleteBatch([]store.DeleteEntry{
			{Family: store.FamilyID2Str, Key: []byte("\x00\x00\x00\x01")},
			{Family: store.FamilyStr2ID, Key: []byte("<urn:alpha>")},
		})
		if err != nil {
			t.Fatalf("retire batch failed: %v", err)
		}
		if _, found := mustGet(t, s, store.FamilyID2Str, "\x00\x00\x00\x01"); found {
			t.Error("id2str entry survived retire batch")
		}
		if _, found := mustGet(t, s, store.FamilyStr2ID, "<urn:alpha>"); found {
			t.Error("str2id entry survived retire batch")
		}
	})
}
