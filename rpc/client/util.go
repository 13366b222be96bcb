package client

import (
	"fmt"

	"github.com/trikv-io/triKV/rpc/common"
	"github.com/trikv-io/triKV/rpc/serializer"
	"github.com/trikv-io/triKV/rpc/transport"
)

var (
	Logger = common.GetLogger("client")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
// Used by the RPCStore with composition pattern
type rpcClientAdapter struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests
// It takes a store handle, a request message, a transport layer and a serializer as parameters
// It returns a response message and an error if any occurs
// This method also checks if the response is an error response and if the type of the response is the expected type
func invokeRPCRequest(storeID uint64, req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Message, error) {
	// Serialize the request
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	// Send the request
	respBytes, err := transport.Send(storeID, reqBytes)
	if err != nil {
		return nil, err
	}

	// Deserialize the response
	resp := &common.Message{}
	err = serializer.Deserialize(respBytes, resp)
	if err != nil {
		return nil, fmt.Errorf("RPC StoreAdapter - Error: %s", err)
	}

	// Check if the response is an error response
	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, fmt.Errorf("RPC StoreAdapter - Error: %s", resp.Err)
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("RPC StoreAdapter - Unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	// Return the response
	return resp, nil
}
