package server

import (
	"bytes"
	"testing"

	"github.com/trikv-io/triKV/lib/engine/engines/memkv"
	"github.com/trikv-io/triKV/lib/handles"
	"github.com/trikv-io/triKV/rpc/common"
)

// newTestAdapter creates an adapter backed by the in-memory engine
func newTestAdapter(t *testing.T) IRPCServerAdapter {
	t.Helper()
	return NewStoreServerAdapter(handles.NewRegistry(), memkv.Factory(nil), t.TempDir())
}

// openTestStore opens a store through the adapter and returns its handle
func openTestStore(t *testing.T, adapter IRPCServerAdapter) uint64 {
	t.Helper()
	resp := adapter.Handle(common.NewOpenRequest("graph"))
	if resp.Err != "" {
		t.Fatalf("open failed: %s", resp.Err)
	}
	if resp.StoreID == 0 {
		t.Fatal("open returned handle 0")
	}
	return resp.StoreID
}

func TestAdapterLifecycle(t *testing.T) {
	adapter := newTestAdapter(t)
	id := openTestStore(t, adapter)

	// IsOpen on a fresh store
	resp := adapter.Handle(common.NewIsOpenRequest(id))
	if resp.Err != "" || !resp.Ok {
		t.Errorf("isOpen: expected (true, no error), got (%v, %q)", resp.Ok, resp.Err)
	}

	// Path points below the data dir
	resp = adapter.Handle(common.NewPathRequest(id))
	if resp.Err != "" || resp.Path == "" {
		t.Errorf("path: expected non-empty path, got (%q, %q)", resp.Path, resp.Err)
	}

	// Families reports the fixed set
	resp = adapter.Handle(common.NewFamiliesRequest(id))
	if resp.Err != "" || len(resp.Families) != 6 {
		t.Errorf("families: expected 6 names, got %v (%q)", resp.Families, resp.Err)
	}

	// Close succeeds once
	resp = adapter.Handle(common.NewCloseRequest(id))
	if resp.Err != "" {
		t.Errorf("close failed: %s", resp.Err)
	}

	// The handle is gone afterwards
	resp = adapter.Handle(common.NewCloseRequest(id))
	if resp.Err == "" {
		t.Error("second close on released handle succeeded")
	}
	resp = adapter.Handle(common.NewGetRequest(id, "spo", []byte("k")))
	if resp.Err == "" {
		t.Error("get on released handle succeeded")
	}
}

func TestAdapterOpenRejectsEmptyPath(t *testing.T) {
	adapter := newTestAdapter(t)
	resp := adapter.Handle(common.NewOpenRequest(""))
	if resp.Err == "" {
		t.Error("open with empty path succeeded")
	}
}

func TestAdapterPointOps(t *testing.T) {
	adapter := newTestAdapter(t)
	id := openTestStore(t, adapter)

	// Put
	resp := adapter.Handle(common.NewPutRequest(id, "spo", []byte("k"), []byte("v")))
	if resp.Err != "" {
		t.Fatalf("put failed: %s", resp.Err)
	}

	// Get
	resp = adapter.Handle(common.NewGetRequest(id, "spo", []byte("k")))
	if resp.Err != "" || !resp.Found || !bytes.Equal(resp.Value, []byte("v")) {
		t.Errorf("get: expected (v, true), got (%q, %v, %q)", resp.Value, resp.Found, resp.Err)
	}

	// Exists agrees
	resp = adapter.Handle(common.NewExistsRequest(id, "spo", []byte("k")))
	if resp.Err != "" || !resp.Ok {
		t.Errorf("exists: expected true, got (%v, %q)", resp.Ok, resp.Err)
	}

	// Delete then gone
	resp = adapter.Handle(common.NewDeleteRequest(id, "spo", []byte("k")))
	if resp.Err != "" {
		t.Fatalf("delete failed: %s", resp.Err)
	}
	resp = adapter.Handle(common.NewGetRequest(id, "spo", []byte("k")))
	if resp.Err != "" || resp.Found {
		t.Errorf("get after delete: expected not found, got (%v, %q)", resp.Found, resp.Err)
	}
}

func TestAdapterRejectsUnknownFamily(t *testing.T) {
	adapter := newTestAdapter(t)
	id := openTestStore(t, adapter)

	for _, family := range []string{"", "default", "SPO"} {
		resp := adapter.Handle(common.NewPutRequest(id, family, []byte("k"), []byte("v")))
		if resp.Err == "" {
			t.Errorf("put into family %q succeeded", family)
		}
	}
}

func TestAdapterBatch(t *testing.T) {
	adapter := newTestAdapter(t)
	id := openTestStore(t, adapter)

	// Seed a key that the batch will delete
	adapter.Handle(common.NewPutRequest(id, "spo", []byte("a"), []byte("1")))

	resp := adapter.Handle(common.NewBatchRequest(id, []common.BatchOp{
		{Op: common.OpDelete, Family: "spo", Key: []byte("a")},
		{Op: common.OpPut, Family: "osp", Key: []byte("a"), Value: []byte("3")},
	}))
	if resp.Err != "" {
		t.Fatalf("batch failed: %s", resp.Err)
	}

	resp = adapter.Handle(common.NewGetRequest(id, "spo", []byte("a")))
	if resp.Found {
		t.Error("spo/a still present after batched delete")
	}
	resp = adapter.Handle(common.NewGetRequest(id, "osp", []byte("a")))
	if !resp.Found || !bytes.Equal(resp.Value, []byte("3")) {
		t.Errorf("osp/a: expected (3, true), got (%q, %v)", resp.Value, resp.Found)
	}
}

func TestAdapterBatchAtomicity(t *testing.T) {
	adapter := newTestAdapter(t)
	id := openTestStore(t, adapter)

	// One bad family rejects the whole batch
	resp := adapter.Handle(common.NewBatchRequest(id, []common.BatchOp{
		{Op: common.OpPut, Family: "spo", Key: []byte("valid"), Value: []byte("v")},
		{Op: common.OpPut, Family: "bogus", Key: []byte("k"), Value: []byte("v")},
	}))
	if resp.Err == "" {
		t.Fatal("batch with invalid family succeeded")
	}

	resp = adapter.Handle(common.NewGetRequest(id, "spo", []byte("valid")))
	if resp.Found {
		t.Error("partial batch effect: leading put applied despite rejection")
	}

	// Empty batch is trivially fine
	resp = adapter.Handle(common.NewBatchRequest(id, []common.BatchOp{}))
	if resp.Err != "" {
		t.Errorf("empty batch failed: %s", resp.Err)
	}
}

func TestAdapterRejectsUnsupportedType(t *testing.T) {
	adapter := newTestAdapter(t)
	resp := adapter.Handle(&common.Message{MsgType: common.MsgTCustom})
	if resp.MsgType != common.MsgTError || resp.Err == "" {
		t.Errorf("expected error response for unsupported type, got %+v", resp)
	}
}
