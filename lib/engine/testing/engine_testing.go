package testing

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/trikv-io/triKV/lib/engine"
)

// EngineFactory is a function that creates a new instance of an Engine
// implementation for one test. Implementations that store data on disk
// should derive their path from tb.TempDir().
type EngineFactory func(tb testing.TB) engine.Engine

// RunEngineTests runs a comprehensive test suite for an Engine implementation.
func RunEngineTests(t *testing.T, name string, factory EngineFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory(t))
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory(t))
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory(t))
		})

		t.Run("NamespaceIsolation", func(t *testing.T) {
			testNamespaceIsolation(t, factory(t))
		})

		t.Run("EnsureNamespace", func(t *testing.T) {
			testEnsureNamespace(t, factory(t))
		})

		t.Run("BatchApply", func(t *testing.T) {
			testBatchApply(t, factory(t))
		})

		t.Run("BatchDiscard", func(t *testing.T) {
			testBatchDiscard(t, factory(t))
		})

		t.Run("ConcurrentAccess", func(t *testing.T) {
			testConcurrentAccess(t, factory(t))
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the engine supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, eng engine.Engine, feature engine.Feature) {
	if !eng.SupportsFeature(feature) {
		t.Skip()
	}
}

func mustSet(t testing.TB, eng engine.Engine, ns engine.Namespace, key, value string) {
	t.Helper()
	if err := eng.Set(ns, []byte(key), []byte(value)); err != nil {
		t.Fatalf("Set(%s, %s) failed: %v", ns, key, err)
	}
}

func mustGet(t testing.TB, eng engine.Engine, ns engine.Namespace, key string) ([]byte, bool) {
	t.Helper()
	val, found, err := eng.Get(ns, []byte(key))
	if err != nil {
		t.Fatalf("Get(%s, %s) failed: %v", ns, key, err)
	}
	return val, found
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, eng engine.Engine) {
	defer eng.Close()

	requireFeature(t, eng, engine.FeatureSet|engine.FeatureGet)

	const ns = engine.Namespace("alpha")
	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	mustSet(t, eng, ns, testKey, string(testValue1))

	result, exists := mustGet(t, eng, ns, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	// Overwrite
	mustSet(t, eng, ns, testKey, string(testValue2))

	result, exists = mustGet(t, eng, ns, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	if _, exists = mustGet(t, eng, ns, "nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return found=false")
	}

	// The returned slice must be a copy: mutating it must not corrupt the store
	retrieved, _ := mustGet(t, eng, ns, testKey)
	retrieved[0] = 'X'
	again, _ := mustGet(t, eng, ns, testKey)
	if !bytes.Equal(again, testValue2) {
		t.Errorf("Mutating a returned value corrupted the stored data")
	}
}

func testDelete(t *testing.T, eng engine.Engine) {
	defer eng.Close()

	requireFeature(t, eng, engine.FeatureSet|engine.FeatureGet|engine.FeatureDelete)

	const ns = engine.Namespace("alpha")

	mustSet(t, eng, ns, "k", "v")
	if err := eng.Delete(ns, []byte("k")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, exists := mustGet(t, eng, ns, "k"); exists {
		t.Errorf("Expected key to be gone after Delete")
	}

	// Deleting an absent key succeeds
	if err := eng.Delete(ns, []byte("never-there")); err != nil {
		t.Errorf("Delete of absent key returned error: %v", err)
	}
}

func testHas(t *testing.T, eng engine.Engine) {
	defer eng.Close()

	requireFeature(t, eng, engine.FeatureSet|engine.FeatureHas|engine.FeatureDelete)

	const ns = engine.Namespace("alpha")

	if found, err := eng.Has(ns, []byte("k")); err != nil || found {
		t.Errorf("Expected Has=false for absent key (found=%v, err=%v)", found, err)
	}

	mustSet(t, eng, ns, "k", "v")
	if found, err := eng.Has(ns, []byte("k")); err != nil || !found {
		t.Errorf("Expected Has=true after Set (found=%v, err=%v)", found, err)
	}

	if err := eng.Delete(ns, []byte("k")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if found, err := eng.Has(ns, []byte("k")); err != nil || found {
		t.Errorf("Expected Has=false after Delete (found=%v, err=%v)", found, err)
	}
}

func testNamespaceIsolation(t *testing.T, eng engine.Engine) {
	defer eng.Close()

	requireFeature(t, eng, engine.FeatureSet|engine.FeatureGet|engine.FeatureDelete)

	// The same key must be independent in every namespace
	mustSet(t, eng, "alpha", "shared-key", "a")
	mustSet(t, eng, "beta", "shared-key", "b")

	if val, _ := mustGet(t, eng, "alpha", "shared-key"); !bytes.Equal(val, []byte("a")) {
		t.Errorf("Namespace alpha returned %q, want %q", val, "a")
	}
	if val, _ := mustGet(t, eng, "beta", "shared-key"); !bytes.Equal(val, []byte("b")) {
		t.Errorf("Namespace beta returned %q, want %q", val, "b")
	}

	// Deleting in one namespace must not affect the other
	if err := eng.Delete(engine.Namespace("alpha"), []byte("shared-key")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, exists := mustGet(t, eng, "alpha", "shared-key"); exists {
		t.Errorf("Expected key deleted in namespace alpha")
	}
	if _, exists := mustGet(t, eng, "beta", "shared-key"); !exists {
		t.Errorf("Delete in alpha leaked into beta")
	}
}

func testEnsureNamespace(t *testing.T, eng engine.Engine) {
	defer eng.Close()

	requireFeature(t, eng, engine.FeatureNamespaceCreate)

	for _, ns := range []engine.Namespace{"alpha", "beta", "gamma"} {
		if err := eng.EnsureNamespace(ns); err != nil {
			t.Fatalf("EnsureNamespace(%s) failed: %v", ns, err)
		}
	}

	// EnsureNamespace is idempotent
	if err := eng.EnsureNamespace("alpha"); err != nil {
		t.Fatalf("repeated EnsureNamespace failed: %v", err)
	}

	nss, err := eng.Namespaces()
	if err != nil {
		t.Fatalf("Namespaces failed: %v", err)
	}

	found := make(map[engine.Namespace]bool)
	for _, ns := range nss {
		found[ns] = true
	}
	for _, want := range []engine.Namespace{"alpha", "beta", "gamma"} {
		if !found[want] {
			t.Errorf("Namespaces() is missing %s (got %v)", want, nss)
		}
	}
	if len(nss) != 3 {
		t.Errorf("Expected exactly 3 namespaces, got %v", nss)
	}
}

func testBatchApply(t *testing.T, eng engine.Engine) {
	defer eng.Close()

	requireFeature(t, eng, engine.FeatureSet|engine.FeatureGet|engine.FeatureBatch)

	mustSet(t, eng, "alpha", "pre", "old")

	b := eng.NewBatch()
	b.Set("alpha", []byte("k1"), []byte("v1"))
	b.Set("beta", []byte("k2"), []byte("v2"))
	b.Delete("alpha", []byte("pre"))
	b.Set("alpha", []byte("k1"), []byte("v1-final")) // last writer wins

	if b.Len() != 4 {
		t.Errorf("Expected batch length 4, got %d", b.Len())
	}

	// Nothing staged may be visible before Apply
	if _, exists := mustGet(t, eng, "alpha", "k1"); exists {
		t.Errorf("Staged batch entry visible before Apply")
	}

	if err := eng.Apply(b); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close after Apply failed: %v", err)
	}

	if val, _ := mustGet(t, eng, "alpha", "k1"); !bytes.Equal(val, []byte("v1-final")) {
		t.Errorf("Expected last writer to win within batch, got %q", val)
	}
	if val, _ := mustGet(t, eng, "beta", "k2"); !bytes.Equal(val, []byte("v2")) {
		t.Errorf("Cross-namespace batch entry missing, got %q", val)
	}
	if _, exists := mustGet(t, eng, "alpha", "pre"); exists {
		t.Errorf("Batched delete did not take effect")
	}
}

func testBatchDiscard(t *testing.T, eng engine.Engine) {
	defer eng.Close()

	requireFeature(t, eng, engine.FeatureGet|engine.FeatureBatch)

	b := eng.NewBatch()
	b.Set("alpha", []byte("ghost"), []byte("boo"))
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, exists := mustGet(t, eng, "alpha", "ghost"); exists {
		t.Errorf("Discarded batch left data in the engine")
	}
}

func testConcurrentAccess(t *testing.T, eng engine.Engine) {
	defer eng.Close()

	requireFeature(t, eng, engine.FeatureSet|engine.FeatureGet|engine.FeatureBatch)

	const (
		workers = 8
		keys    = 50
	)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			ns := engine.Namespace(fmt.Sprintf("ns-%d", w%2))
			for i := 0; i < keys; i++ {
				key := []byte(fmt.Sprintf("w%d-k%d", w, i))
				if err := eng.Set(ns, key, []byte("v")); err != nil {
					t.Errorf("concurrent Set failed: %v", err)
					return
				}
				if _, _, err := eng.Get(ns, key); err != nil {
					t.Errorf("concurrent Get failed: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	// spot-check a few entries
	for w := 0; w < workers; w++ {
		ns := engine.Namespace(fmt.Sprintf("ns-%d", w%2))
		if _, exists := mustGet(t, eng, ns, fmt.Sprintf("w%d-k%d", w, keys-1)); !exists {
			t.Errorf("Lost write for worker %d", w)
		}
	}
}

func testEdgeCases(t *testing.T, eng engine.Engine) {
	defer eng.Close()

	requireFeature(t, eng, engine.FeatureSet|engine.FeatureGet)

	const ns = engine.Namespace("alpha")

	// empty key
	if err := eng.Set(ns, []byte{}, []byte("empty-key")); err != nil {
		t.Errorf("Set with empty key failed: %v", err)
	}
	if val, found := mustGet(t, eng, ns, ""); !found || !bytes.Equal(val, []byte("empty-key")) {
		t.Errorf("Get with empty key returned (%q, %v)", val, found)
	}

	// empty value
	mustSet(t, eng, ns, "empty-value", "")
	if val, found := mustGet(t, eng, ns, "empty-value"); !found || len(val) != 0 {
		t.Errorf("Get of empty value returned (%q, %v)", val, found)
	}

	// binary key with embedded zero bytes
	rawKey := []byte{0x01, 0x00, 0xff, 0x00}
	if err := eng.Set(ns, rawKey, []byte("raw")); err != nil {
		t.Fatalf("Set with binary key failed: %v", err)
	}
	val, found, err := eng.Get(ns, rawKey)
	if err != nil || !found || !bytes.Equal(val, []byte("raw")) {
		t.Errorf("Get with binary key returned (%q, %v, %v)", val, found, err)
	}

	// larger value
	large := bytes.Repeat([]byte{0xab}, 1<<20)
	if err := eng.Set(ns, []byte("large"), large); err != nil {
		t.Fatalf("Set of 1MB value failed: %v", err)
	}
	if val, _ := mustGet(t, eng, ns, "large"); !bytes.Equal(val, large) {
		t.Errorf("1MB value round-trip mismatch")
	}
}
