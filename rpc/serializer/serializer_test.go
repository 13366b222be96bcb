package serializer

import (
	"reflect"
	"testing"

	"github.com/trikv-io/triKV/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Open request
		{
			MsgType: common.MsgTStoreOpen,
			Path:    "/var/lib/trikv/graph",
		},

		// Put request
		{
			MsgType: common.MsgTKVPut,
			StoreID: 1,
			Family:  "spo",
			Key:     []byte("test-key"),
			Value:   []byte("test-value"),
		},

		// Get response
		{
			MsgType: common.MsgTKVGet,
			Value:   []byte("test-value"),
			Found:   true,
		},

		// Families response
		{
			MsgType:  common.MsgTStoreFamilies,
			Families: []string{"id2str", "str2id", "spo", "pos", "osp", "derived"},
		},

		// Batch request with mixed operations
		{
			MsgType: common.MsgTKVBatch,
			StoreID: 7,
			Ops: []common.BatchOp{
				{Op: common.OpPut, Family: "spo", Key: []byte("a"), Value: []byte("1")},
				{Op: common.OpDelete, Family: "pos", Key: []byte("b")},
				{Op: common.OpPut, Family: "derived", Key: []byte{0x00, 0xff}, Value: []byte{}},
			},
		},

		// Error response
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
		},

		// Message with all fields filled
		{
			MsgType:  common.MsgTKVGet,
			StoreID:  42,
			Path:     "/data/store",
			Family:   "osp",
			Key:      []byte("test-key"),
			Value:    []byte("test-value"),
			Ops:      []common.BatchOp{{Op: common.OpDelete, Family: "spo", Key: []byte("x")}},
			Ok:       true,
			Found:    true,
			Families: []string{"spo"},
			Err:      "",
			Meta:     []byte("test-meta-data"),
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			// Test each message type (don't test for MsgTUnknown since this should raise an error)
			for msgType := common.MsgTSuccess; msgType <= common.MsgTCustom; msgType++ {
				msg := common.Message{MsgType: msgType}

				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				// Check type
				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestBinarySerializerSpecific tests specific edge cases for the binary serializer
func TestBinarySerializerSpecific(t *testing.T) {
	serializer := NewBinarySerializer()

	// Test cases for empty or zero values
	testCases := []struct {
		name string
		msg  common.Message
	}{
		{
			name: "Empty message",
			msg:  common.Message{},
		},
		{
			name: "Message with empty strings and zero values",
			msg: common.Message{
				MsgType: common.MsgTKVPut,
				StoreID: 0,
				Family:  "",
				Key:     []byte{},
				Value:   []byte{},
				Ok:      false,
				Err:     "",
				Meta:    []byte{},
			},
		},
		{
			name: "Message with no payload but Found=true",
			msg: common.Message{
				MsgType: common.MsgTKVGet,
				Found:   true,
				Value:   nil,
			},
		},
		{
			name: "Message with empty value slice but not nil",
			msg: common.Message{
				MsgType: common.MsgTKVPut,
				Key:     []byte("test"),
				Value:   []byte{},
			},
		},
		{
			name: "Message with empty ops slice but not nil",
			msg: common.Message{
				MsgType: common.MsgTKVBatch,
				Ops:     []common.BatchOp{},
			},
		},
		{
			name: "Message with empty meta slice but not nil",
			msg: common.Message{
				MsgType: common.MsgTCustom,
				Meta:    []byte{},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Serialize
			data, err := serializer.Serialize(tc.msg)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			// Deserialize
			var result common.Message
			err = serializer.Deserialize(data, &result)
			if err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			// Verify scalar fields
			if tc.msg.MsgType != result.MsgType {
				t.Errorf("MsgType mismatch: expected %v, got %v", tc.msg.MsgType, result.MsgType)
			}
			if tc.msg.StoreID != result.StoreID {
				t.Errorf("StoreID mismatch: expected %d, got %d", tc.msg.StoreID, result.StoreID)
			}
			if tc.msg.Path != result.Path {
				t.Errorf("Path mismatch: expected '%s', got '%s'", tc.msg.Path, result.Path)
			}
			if tc.msg.Family != result.Family {
				t.Errorf("Family mismatch: expected '%s', got '%s'", tc.msg.Family, result.Family)
			}
			if tc.msg.Ok != result.Ok {
				t.Errorf("Ok mismatch: expected %v, got %v", tc.msg.Ok, result.Ok)
			}
			if tc.msg.Found != result.Found {
				t.Errorf("Found mismatch: expected %v, got %v", tc.msg.Found, result.Found)
			}
			if tc.msg.Err != result.Err {
				t.Errorf("Err mismatch: expected '%s', got '%s'", tc.msg.Err, result.Err)
			}

			// Byte slices may be nil or empty, both must survive as-is
			checkBytes(t, "Key", tc.msg.Key, result.Key)
			checkBytes(t, "Value", tc.msg.Value, result.Value)
			checkBytes(t, "Meta", tc.msg.Meta, result.Meta)

			if (tc.msg.Ops == nil) != (result.Ops == nil) {
				t.Errorf("Ops nil/non-nil mismatch: expected %v, got %v", tc.msg.Ops, result.Ops)
			} else if !reflect.DeepEqual(tc.msg.Ops, result.Ops) {
				t.Errorf("Ops mismatch: expected %+v, got %+v", tc.msg.Ops, result.Ops)
			}
		})
	}
}

// checkBytes verifies that a byte slice survives a round trip including its
// nil vs empty distinction
func checkBytes(t *testing.T, field string, expected, actual []byte) {
	t.Helper()
	if (expected == nil) != (actual == nil) {
		t.Errorf("%s nil/non-nil mismatch: expected %v, got %v", field, expected, actual)
		return
	}
	if len(expected) != len(actual) {
		t.Errorf("%s length mismatch: expected %d, got %d", field, len(expected), len(actual))
		return
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Errorf("%s content mismatch at index %d", field, i)
			return
		}
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1, 0}, // Message type plus one flag byte, second missing
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Invalid length for key",
			data:        []byte{1, 0, 8, 0, 0, 0, 5, 'a', 'b', 'c'}, // Claims key length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Invalid length for value",
			data:        []byte{1, 0, 16, 0, 0, 0, 10}, // Claims value length 10 but no bytes provided
			expectError: true,
		},
		{
			name:        "Truncated ops count",
			data:        []byte{1, 0, 32, 0, 0}, // Ops flag set but count cut off
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
