package pebbledb

import (
	"bytes"
	"testing"

	"github.com/trikv-io/triKV/lib/engine"
	enginetest "github.com/trikv-io/triKV/lib/engine/testing"
)

func Test(t *testing.T) {
	enginetest.RunEngineTests(t, "PebbleDB", func(tb testing.TB) engine.Engine {
		eng, err := Open(tb.TempDir(), nil)
		if err != nil {
			tb.Fatalf("failed to open pebble engine: %v", err)
		}
		return eng
	})
}

// Data written before Close must be readable after reopening the same path.
func TestReopenPersistence(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("failed to open pebble engine: %v", err)
	}
	if err := eng.EnsureNamespace("alpha"); err != nil {
		t.Fatalf("EnsureNamespace failed: %v", err)
	}
	if err := eng.Set("alpha", []byte("k"), []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("failed to reopen pebble engine: %v", err)
	}
	defer reopened.Close()

	val, found, err := reopened.Get("alpha", []byte("k"))
	if err != nil || !found || !bytes.Equal(val, []byte("v")) {
		t.Errorf("reopened Get = (%q, %v, %v), want (v, true, nil)", val, found, err)
	}

	nss, err := reopened.Namespaces()
	if err != nil {
		t.Fatalf("Namespaces failed: %v", err)
	}
	if len(nss) != 1 || nss[0] != "alpha" {
		t.Errorf("reopened namespace registry = %v, want [alpha]", nss)
	}
}

// Marker keys live in a reserved meta range and must never shadow data keys.
func TestNamespaceMarkersDisjointFromData(t *testing.T) {
	eng, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to open pebble engine: %v", err)
	}
	defer eng.Close()

	if err := eng.EnsureNamespace("alpha"); err != nil {
		t.Fatalf("EnsureNamespace failed: %v", err)
	}

	// a data key that textually matches the marker layout
	if err := eng.Set("ns", []byte("alpha"), []byte("data")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	nss, err := eng.Namespaces()
	if err != nil {
		t.Fatalf("Namespaces failed: %v", err)
	}
	if len(nss) != 1 || nss[0] != "alpha" {
		t.Errorf("marker scan picked up data keys: %v", nss)
	}

	val, found, err := eng.Get("ns", []byte("alpha"))
	if err != nil || !found || !bytes.Equal(val, []byte("data")) {
		t.Errorf("data key shadowed by marker: (%q, %v, %v)", val, found, err)
	}
}
