package server

import (
	"fmt"
	"path/filepath"

	"github.com/trikv-io/triKV/lib/engine"
	"github.com/trikv-io/triKV/lib/handles"
	"github.com/trikv-io/triKV/lib/store"
	"github.com/trikv-io/triKV/rpc/common"
)

// NewStoreServerAdapter creates the adapter that maps RPC messages onto store
// operations. Stores opened through this adapter are tracked in the given
// registry and addressed by handle on subsequent requests. Relative store
// paths are resolved below dataDir.
func NewStoreServerAdapter(registry *handles.Registry, factory engine.Factory, dataDir string) IRPCServerAdapter {
	return &storeServerAdapterImpl{
		registry: registry,
		factory:  factory,
		dataDir:  dataDir,
	}
}

type storeServerAdapterImpl struct {
	registry *handles.Registry
	factory  engine.Factory
	dataDir  string
}

func (adapter *storeServerAdapterImpl) Handle(req *common.Message) *common.Message {
	// Handle different message types
	switch req.MsgType {
	case common.MsgTStoreOpen:
		return adapter.handleOpen(req)
	case common.MsgTStoreClose:
		return adapter.handleClose(req)
	case common.MsgTStoreIsOpen:
		s, resp := adapter.resolve(req)
		if resp != nil {
			return resp
		}
		return common.NewIsOpenResponse(s.IsOpen(), nil)
	case common.MsgTStorePath:
		s, resp := adapter.resolve(req)
		if resp != nil {
			return resp
		}
		return common.NewPathResponse(s.Path(), nil)
	case common.MsgTStoreFamilies:
		if _, resp := adapter.resolve(req); resp != nil {
			return resp
		}
		return common.NewFamiliesResponse(store.FamilyNames(), nil)
	case common.MsgTKVGet:
		s, cf, resp := adapter.resolveFamily(req)
		if resp != nil {
			return resp
		}
		value, found, err := s.Get(cf, req.Key)
		return common.NewGetResponse(value, found, err)
	case common.MsgTKVPut:
		s, cf, resp := adapter.resolveFamily(req)
		if resp != nil {
			return resp
		}
		return common.NewPutResponse(s.Put(cf, req.Key, req.Value))
	case common.MsgTKVDelete:
		s, cf, resp := adapter.resolveFamily(req)
		if resp != nil {
			return resp
		}
		return common.NewDeleteResponse(s.Delete(cf, req.Key))
	case common.MsgTKVExists:
		s, cf, resp := adapter.resolveFamily(req)
		if resp != nil {
			return resp
		}
		ok, err := s.Exists(cf, req.Key)
		return common.NewExistsResponse(ok, err)
	case common.MsgTKVBatch:
		return adapter.handleBatch(req)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC StoreAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}

// --------------------------------------------------------------------------
// Operation Handlers
// --------------------------------------------------------------------------

func (adapter *storeServerAdapterImpl) handleOpen(req *common.Message) *common.Message {
	if req.Path == "" {
		return common.NewOpenResponse(0, fmt.Errorf("open: path must not be empty"))
	}

	path := req.Path
	if adapter.dataDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(adapter.dataDir, path)
	}

	s, err := store.Open(path, adapter.factory)
	if err != nil {
		return common.NewOpenResponse(0, err)
	}

	id := adapter.registry.Add(s)
	Logger.Infof("opened store %d at %s", id, path)
	return common.NewOpenResponse(id, nil)
}

func (adapter *storeServerAdapterImpl) handleClose(req *common.Message) *common.Message {
	// Remove the handle first so no later request can address the store
	s, ok := adapter.registry.Remove(req.StoreID)
	if !ok {
		return common.NewCloseResponse(fmt.Errorf("store %d not found", req.StoreID))
	}

	err := s.Close()
	if err == nil {
		Logger.Infof("closed store %d", req.StoreID)
	}
	return common.NewCloseResponse(err)
}

func (adapter *storeServerAdapterImpl) handleBatch(req *common.Message) *common.Message {
	s, resp := adapter.resolve(req)
	if resp != nil {
		return resp
	}

	ops := make([]store.Operation, len(req.Ops))
	for i, op := range req.Ops {
		cf, err := store.ResolveFamily(op.Family)
		if err != nil {
			return common.NewBatchResponse(err)
		}
		switch op.Op {
		case common.OpPut:
			ops[i] = store.Put(cf, op.Key, op.Value)
		case common.OpDelete:
			if op.Value != nil {
				return common.NewBatchResponse(&store.Error{Code: store.CodeInvalidOperation, Op: "delete with value"})
			}
			ops[i] = store.Delete(cf, op.Key)
		default:
			return common.NewBatchResponse(&store.Error{Code: store.CodeInvalidOperation, Op: op.Op.String()})
		}
	}

	return common.NewBatchResponse(s.Apply(ops))
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// resolve looks up the store addressed by the request. On failure the second
// return value carries the error response to send.
func (adapter *storeServerAdapterImpl) resolve(req *common.Message) (*store.Store, *common.Message) {
	s, ok := adapter.registry.Get(req.StoreID)
	if !ok {
		return nil, common.NewErrorResponse(fmt.Sprintf("store %d not found", req.StoreID))
	}
	return s, nil
}

// resolveFamily looks up the store and parses the column family of a point
// operation request.
func (adapter *storeServerAdapterImpl) resolveFamily(req *common.Message) (*store.Store, store.ColumnFamily, *common.Message) {
	s, resp := adapter.resolve(req)
	if resp != nil {
		return nil, 0, resp
	}

	cf, err := store.ResolveFamily(req.Family)
	if err != nil {
		return nil, 0, common.NewErrorResponse(err.Error())
	}
	return s, cf, nil
}
