package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Store addressing
	StoreID uint64 `json:"store_id,omitempty"` // Handle of the target store, set on all store-bound requests
	Path    string `json:"path,omitempty"`     // Used for: Open (request), Path (response)

	// KV fields
	Family string    `json:"family,omitempty"` // Column family name, used for point operations
	Key    []byte    `json:"key,omitempty"`    // Used for: Get, Put, Delete, Exists
	Value  []byte    `json:"value,omitempty"`  // Used for: Put (request), Get (response)
	Ops    []BatchOp `json:"ops,omitempty"`    // Used for: Batch requests

	// Response only fields
	Ok       bool     `json:"ok,omitempty"`       // Used for: IsOpen, Exists responses
	Found    bool     `json:"found,omitempty"`    // Used for: Get responses
	Families []string `json:"families,omitempty"` // Used for: Families responses
	Err      string   `json:"err,omitempty"`      // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// BatchOp is a single operation of a batch request. OpPut denotes a put,
// OpDelete a delete without a value.
type BatchOp struct {
	Op     BatchOpKind `json:"op"`
	Family string      `json:"family"`
	Key    []byte      `json:"key"`
	Value  []byte      `json:"value,omitempty"`
}

// BatchOpKind tags a BatchOp. The zero value is invalid.
type BatchOpKind uint8

const (
	OpInvalid BatchOpKind = iota
	OpPut
	OpDelete
)

// String returns the string representation of a BatchOpKind.
func (k BatchOpKind) String() string {
	switch k {
	case OpPut:
		return "put"
	case OpDelete:
		return "delete"
	default:
		return "invalid"
	}
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewOpenRequest creates a new Open request
func NewOpenRequest(path string) *Message {
	return &Message{
		MsgType: MsgTStoreOpen,
		Path:    path,
	}
}

// NewOpenResponse creates a new Open response
func NewOpenResponse(storeID uint64, err error) *Message {
	msg := &Message{
		MsgType: MsgTStoreOpen,
		StoreID: storeID,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewCloseRequest creates a new Close request
func NewCloseRequest(storeID uint64) *Message {
	return &Message{
		MsgType: MsgTStoreClose,
		StoreID: storeID,
	}
}

// NewCloseResponse creates a new Close response
func NewCloseResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTStoreClose,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewIsOpenRequest creates a new IsOpen request
func NewIsOpenRequest(storeID uint64) *Message {
	return &Message{
		MsgType: MsgTStoreIsOpen,
		StoreID: storeID,
	}
}

// NewIsOpenResponse creates a new IsOpen response
func NewIsOpenResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTStoreIsOpen,
		Ok:      ok,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewPathRequest creates a new Path request
func NewPathRequest(storeID uint64) *Message {
	return &Message{
		MsgType: MsgTStorePath,
		StoreID: storeID,
	}
}

// NewPathResponse creates a new Path response
func NewPathResponse(path string, err error) *Message {
	msg := &Message{
		MsgType: MsgTStorePath,
		Path:    path,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewFamiliesRequest creates a new Families request
func NewFamiliesRequest(storeID uint64) *Message {
	return &Message{
		MsgType: MsgTStoreFamilies,
		StoreID: storeID,
	}
}

// NewFamiliesResponse creates a new Families response
func NewFamiliesResponse(families []string, err error) *Message {
	msg := &Message{
		MsgType:  MsgTStoreFamilies,
		Families: families,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGetRequest creates a new Get request
func NewGetRequest(storeID uint64, family string, key []byte) *Message {
	return &Message{
		MsgType: MsgTKVGet,
		StoreID: storeID,
		Family:  family,
		Key:     key,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value []byte, found bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTKVGet,
		Value:   value,
		Found:   found,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewPutRequest creates a new Put request
func NewPutRequest(storeID uint64, family string, key, value []byte) *Message {
	return &Message{
		MsgType: MsgTKVPut,
		StoreID: storeID,
		Family:  family,
		Key:     key,
		Value:   value,
	}
}

// NewPutResponse creates a new Put response
func NewPutResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTKVPut,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(storeID uint64, family string, key []byte) *Message {
	return &Message{
		MsgType: MsgTKVDelete,
		StoreID: storeID,
		Family:  family,
		Key:     key,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTKVDelete,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewExistsRequest creates a new Exists request
func NewExistsRequest(storeID uint64, family string, key []byte) *Message {
	return &Message{
		MsgType: MsgTKVExists,
		StoreID: storeID,
		Family:  family,
		Key:     key,
	}
}

// NewExistsResponse creates a new Exists response
func NewExistsResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTKVExists,
		Ok:      ok,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewBatchRequest creates a new Batch request
func NewBatchRequest(storeID uint64, ops []BatchOp) *Message {
	return &Message{
		MsgType: MsgTKVBatch,
		StoreID: storeID,
		Ops:     ops,
	}
}

// NewBatchResponse creates a new Batch response
func NewBatchResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTKVBatch,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewCustomRequest creates a new Custom request
func NewCustomRequest(meta []byte) *Message {
	return &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
}

// NewCustomResponse creates a new Custom response
func NewCustomResponse(meta []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTStoreOpen:
		return "open"
	case MsgTStoreClose:
		return "close"
	case MsgTStoreIsOpen:
		return "isOpen"
	case MsgTStorePath:
		return "path"
	case MsgTStoreFamilies:
		return "families"
	case MsgTKVGet:
		return "get"
	case MsgTKVPut:
		return "put"
	case MsgTKVDelete:
		return "delete"
	case MsgTKVExists:
		return "exists"
	case MsgTKVBatch:
		return "batch"
	case MsgTCustom:
		return "custom"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "open":
		*t = MsgTStoreOpen
	case "close":
		*t = MsgTStoreClose
	case "isOpen":
		*t = MsgTStoreIsOpen
	case "path":
		*t = MsgTStorePath
	case "families":
		*t = MsgTStoreFamilies
	case "get":
		*t = MsgTKVGet
	case "put":
		*t = MsgTKVPut
	case "delete":
		*t = MsgTKVDelete
	case "exists":
		*t = MsgTKVExists
	case "batch":
		*t = MsgTKVBatch
	case "custom":
		*t = MsgTCustom
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Store lifecycle operations

	MsgTStoreOpen     // Open a store at a path
	MsgTStoreClose    // Close a store
	MsgTStoreIsOpen   // Check whether a store is open
	MsgTStorePath     // Query the path of a store
	MsgTStoreFamilies // List the column families of a store

	// KV operations

	MsgTKVGet    // Get a value by family and key
	MsgTKVPut    // Put a key-value pair into a family
	MsgTKVDelete // Delete a key from a family
	MsgTKVExists // Check if a key exists in a family
	MsgTKVBatch  // Apply an atomic batch of operations

	// Custom operations

	MsgTCustom // Custom operation type
)
