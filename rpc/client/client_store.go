package client

import (
	"fmt"

	"github.com/trikv-io/triKV/rpc/common"
	"github.com/trikv-io/triKV/rpc/serializer"
	"github.com/trikv-io/triKV/rpc/transport"
)

// NewRPCClient creates a new RPC client connected to one or more servers
// The function takes a config, a transport and a serializer as parameters
// It returns a Client and an error
func NewRPCClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*Client, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create the client
	return &Client{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

// Client talks to a remote store server. All store access goes through
// handles obtained from Open.
type Client struct {
	rpcClientAdapter
}

// Open opens (or creates) a store at path on the server and returns a
// handle-bound RemoteStore for it.
func (c *Client) Open(path string) (*RemoteStore, error) {
	req := common.NewOpenRequest(path)
	resp, err := invokeRPCRequest(0, req, c.transport, c.serializer)
	if err != nil {
		return nil, err
	}
	if resp.StoreID == 0 {
		return nil, fmt.Errorf("server returned invalid store handle")
	}
	return &RemoteStore{client: c, storeID: resp.StoreID}, nil
}

// Close shuts down the underlying transport. Stores opened through this
// client stay open on the server until closed explicitly.
func (c *Client) Close() error {
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Remote Store
// --------------------------------------------------------------------------

// RemoteStore mirrors the operations of a server-side store over RPC. It is
// bound to one handle and safe for concurrent use.
type RemoteStore struct {
	client  *Client
	storeID uint64
}

// StoreID returns the server-side handle of this store.
func (s *RemoteStore) StoreID() uint64 {
	return s.storeID
}

// Get returns the value stored under key in the given column family.
func (s *RemoteStore) Get(family string, key []byte) (value []byte, found bool, err error) {
	req := common.NewGetRequest(s.storeID, family, key)
	resp, err := s.invoke(req)
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Found, nil
}

// Put stores value under key in the given column family.
func (s *RemoteStore) Put(family string, key, value []byte) error {
	req := common.NewPutRequest(s.storeID, family, key, value)
	_, err := s.invoke(req)
	return err
}

// Delete removes key from the given column family.
func (s *RemoteStore) Delete(family string, key []byte) error {
	req := common.NewDeleteRequest(s.storeID, family, key)
	_, err := s.invoke(req)
	return err
}

// Exists reports whether key is present in the given column family.
func (s *RemoteStore) Exists(family string, key []byte) (bool, error) {
	req := common.NewExistsRequest(s.storeID, family, key)
	resp, err := s.invoke(req)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

// Apply commits the given operations as one atomic batch.
func (s *RemoteStore) Apply(ops []common.BatchOp) error {
	req := common.NewBatchRequest(s.storeID, ops)
	_, err := s.invoke(req)
	return err
}

// IsOpen reports whether the store still accepts operations.
func (s *RemoteStore) IsOpen() (bool, error) {
	req := common.NewIsOpenRequest(s.storeID)
	resp, err := s.invoke(req)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

// Path returns the server-side filesystem path of the store.
func (s *RemoteStore) Path() (string, error) {
	req := common.NewPathRequest(s.storeID)
	resp, err := s.invoke(req)
	if err != nil {
		return "", err
	}
	return resp.Path, nil
}

// Families returns the column family names of the store.
func (s *RemoteStore) Families() ([]string, error) {
	req := common.NewFamiliesRequest(s.storeID)
	resp, err := s.invoke(req)
	if err != nil {
		return nil, err
	}
	return resp.Families, nil
}

// Close closes the store on the server and releases its handle.
func (s *RemoteStore) Close() error {
	req := common.NewCloseRequest(s.storeID)
	_, err := s.invoke(req)
	return err
}

// invoke sends a request addressed to this store's handle.
func (s *RemoteStore) invoke(req *common.Message) (*common.Message, error) {
	return invokeRPCRequest(s.storeID, req, s.client.transport, s.client.serializer)
}
