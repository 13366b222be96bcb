package store_test

import (
	"bytes"
	"testing"

	"github.com/trikv-io/triKV/lib/store"
)

func TestApplyEmptyBatch(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		if err := s.Apply(nil); err != nil {
			t.Errorf("nil batch failed: %v", err)
		}
		if err := s.Apply([]store.Operation{}); err != nil {
			t.Errorf("empty batch failed: %v", err)
		}
		if err := s.WriteBatch(nil); err != nil {
			t.Errorf("empty write batch failed: %v", err)
		}
		if err := s.DeleteBatch(nil); err != nil {
			t.Errorf("empty delete batch failed: %v", err)
		}
	})
}

func TestApplyCrossFamilyBatch(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		err := s.Apply([]store.Operation{
			store.Put(store.FamilySPO, []byte("s p o"), []byte{1}),
			store.Put(store.FamilyPOS, []byte("p o s"), []byte{1}),
			store.Put(store.FamilyOSP, []byte("o s p"), []byte{1}),
		})
		if err != nil {
			t.Fatalf("batch failed: %v", err)
		}

		for _, probe := range []struct {
			cf  store.ColumnFamily
			key string
		}{
			{store.FamilySPO, "s p o"},
			{store.FamilyPOS, "p o s"},
			{store.FamilyOSP, "o s p"},
		} {
			if _, found := mustGet(t, s, probe.cf, probe.key); !found {
				t.Errorf("%s/%s missing after batch", probe.cf, probe.key)
			}
		}
	})
}

func TestApplyOrderWithinBatch(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		// Later operations win over earlier ones on the same key.
		err := s.Apply([]store.Operation{
			store.Put(store.FamilyDerived, []byte("k"), []byte("first")),
			store.Put(store.FamilyDerived, []byte("k"), []byte("second")),
			store.Put(store.FamilyDerived, []byte("gone"), []byte("x")),
			store.Delete(store.FamilyDerived, []byte("gone")),
		})
		if err != nil {
			t.Fatalf("batch failed: %v", err)
		}

		if v, found := mustGet(t, s, store.FamilyDerived, "k"); !found || !bytes.Equal(v, []byte("second")) {
			t.Errorf("k: expected last write to win, got (%q,%v)", v, found)
		}
		if _, found := mustGet(t, s, store.FamilyDerived, "gone"); found {
			t.Error("key survived delete that followed its put in the same batch")
		}
	})
}

func TestBatchRejectedOnInvalidFamily(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		err := s.Apply([]store.Operation{
			store.Put(store.FamilySPO, []byte("valid"), []byte("v")),
			store.Put(store.ColumnFamily(99), []byte("k"), []byte("v")),
		})
		if store.CodeOf(err) != store.CodeInvalidColumnFamily {
			t.Fatalf("expected CodeInvalidColumnFamily, got %v", err)
		}

		// Atomicity: the valid leading operation must not have applied.
		if _, found := mustGet(t, s, store.FamilySPO, "valid"); found {
			t.Error("partial batch effect: leading put applied despite rejection")
		}
	})
}

func TestBatchRejectedOnMalformedOperation(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		// Zero-value Kind is invalid.
		err := s.Apply([]store.Operation{
			store.Put(store.FamilyPOS, []byte("valid"), []byte("v")),
			{Family: store.FamilyPOS, Key: []byte("k")},
		})
		if store.CodeOf(err) != store.CodeInvalidOperation {
			t.Fatalf("zero-kind op: expected CodeInvalidOperation, got %v", err)
		}

		// A delete must not carry a value.
		err = s.Apply([]store.Operation{
			{Kind: store.OpDelete, Family: store.FamilyPOS, Key: []byte("k"), Value: []byte("v")},
		})
		if store.CodeOf(err) != store.CodeInvalidOperation {
			t.Fatalf("delete with value: expected CodeInvalidOperation, got %v", err)
		}

		if _, found := mustGet(t, s, store.FamilyPOS, "valid"); found {
			t.Error("partial batch effect: leading put applied despite rejection")
		}
	})
}

func TestBatchDeleteOfAbsentKey(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		err := s.Apply([]store.Operation{
			store.Delete(store.FamilyOSP, []byte("never-existed")),
			store.Put(store.FamilyOSP, []byte("k"), []byte("v")),
		})
		if err != nil {
			t.Fatalf("batch with absent-key delete failed: %v", err)
		}
		if _, found := mustGet(t, s, store.FamilyOSP, "k"); !found {
			t.Error("put missing after batch with absent-key delete")
		}
	})
}

func TestWriteBatchAndDeleteBatch(t *testing.T) {
	forEachEngine(t, func(t *testing.T, s *store.Store) {
		entries := []store.PutEntry{
			{Family: store.FamilyID2Str, Key: []byte("1"), Value: []byte("a")},
			{Family: store.FamilyID2Str, Key: []byte("2"), Value: []byte("b")},
			{Family: store.FamilyStr2ID, Key: []byte("a"), Value: []byte("1")},
		}
		if err := s.WriteBatch(entries); err != nil {
			t.Fatalf("write batch failed: %v", err)
		}
		for _, e := range entries {
			v, found := mustGet(t, s, e.Family, string(e.Key))
			if !found || !bytes.Equal(v, e.Value) {
				t.Errorf("%s/%s: expected (%q,true), got (%q,%v)", e.Family, e.Key, e.Value, v, found)
			}
		}

		err := s.DeleteBatch([]store.DeleteEntry{
			{Family: store.FamilyID2Str, Key: []byte("1")},
			{Family: store.FamilyStr2ID, Key: []byte("a")},
		})
		if err != nil {
			t.Fatalf("delete batch failed: %v", err)
		}
		if _, found := mustGet(t, s, store.FamilyID2Str, "1"); found {
			t.Error("id2str/1 survived delete batch")
		}
		if v, found := mustGet(t, s, store.FamilyID2Str, "2"); !found || !bytes.Equal(v, []byte("b")) {
			t.Errorf("id2str/2: expected untouched (b,true), got (%q,%v)", v, found)
		}
	})
}
