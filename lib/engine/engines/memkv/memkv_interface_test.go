package memkv

import (
	"bytes"
	"testing"

	"github.com/trikv-io/triKV/lib/engine"
	enginetest "github.com/trikv-io/triKV/lib/engine/testing"
)

func Test(t *testing.T) {
	enginetest.RunEngineTests(t, "MemKV", func(tb testing.TB) engine.Engine {
		eng, err := Open("memkv-test", nil)
		if err != nil {
			tb.Fatalf("failed to open memkv: %v", err)
		}
		return eng
	})
}

func TestSaveLoad(t *testing.T) {
	eng, err := Open("memkv-test", nil)
	if err != nil {
		t.Fatalf("failed to open memkv: %v", err)
	}
	defer eng.Close()

	src := eng.(*memImpl)

	if err := eng.EnsureNamespace("alpha"); err != nil {
		t.Fatalf("EnsureNamespace failed: %v", err)
	}
	if err := eng.Set("alpha", []byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := eng.Set("beta", []byte{0x00, 0x01}, []byte{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var buf bytes.Buffer
	if err := src.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restoredEng, err := Open("memkv-restored", nil)
	if err != nil {
		t.Fatalf("failed to open memkv: %v", err)
	}
	defer restoredEng.Close()

	restored := restoredEng.(*memImpl)
	if err := restored.Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	val, found, err := restoredEng.Get("alpha", []byte("k1"))
	if err != nil || !found || !bytes.Equal(val, []byte("v1")) {
		t.Errorf("restored Get(alpha, k1) = (%q, %v, %v), want (v1, true, nil)", val, found, err)
	}
	if _, found, _ := restoredEng.Get("beta", []byte{0x00, 0x01}); !found {
		t.Errorf("restored binary key missing")
	}

	nss, err := restoredEng.Namespaces()
	if err != nil {
		t.Fatalf("Namespaces failed: %v", err)
	}
	if len(nss) != 1 || nss[0] != "alpha" {
		t.Errorf("restored namespace registry = %v, want [alpha]", nss)
	}
}

func TestLoadRejectsForeignFormat(t *testing.T) {
	eng, err := Open("memkv-test", nil)
	if err != nil {
		t.Fatalf("failed to open memkv: %v", err)
	}
	defer eng.Close()

	impl := eng.(*memImpl)
	if err := impl.Load(bytes.NewReader([]byte("NOTMEMKV"))); err == nil {
		t.Errorf("Load accepted data with a wrong magic number")
	}
}
