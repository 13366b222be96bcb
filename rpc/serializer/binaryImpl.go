package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/trikv-io/triKV/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasStoreID  uint16 = 1 << 0
	hasPath     uint16 = 1 << 1
	hasFamily   uint16 = 1 << 2
	hasKey      uint16 = 1 << 3
	hasValue    uint16 = 1 << 4
	hasOps      uint16 = 1 << 5
	hasOk       uint16 = 1 << 6
	hasFound    uint16 = 1 << 7
	hasFamilies uint16 = 1 << 8
	hasErr      uint16 = 1 << 9
	hasMeta     uint16 = 1 << 10
)

// Per-op flag marking that a BatchOp carries a value
const opHasValue byte = 1 << 0

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags
	var flags uint16 = 0

	// Set position for writing
	pos := 3 // Start after MsgType and flags

	// Handle StoreID
	if msg.StoreID > 0 {
		flags |= hasStoreID
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.StoreID)
		pos += 8
	}

	// Handle Path
	if msg.Path != "" {
		flags |= hasPath
		pos = writeString(result, pos, msg.Path)
	}

	// Handle Family
	if msg.Family != "" {
		flags |= hasFamily
		pos = writeString(result, pos, msg.Family)
	}

	// Handle Key
	if msg.Key != nil {
		flags |= hasKey
		pos = writeBytes(result, pos, msg.Key)
	}

	// Handle Value
	if msg.Value != nil {
		flags |= hasValue
		pos = writeBytes(result, pos, msg.Value)
	}

	// Handle Ops
	if msg.Ops != nil {
		flags |= hasOps
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Ops)))
		pos += 4
		for _, op := range msg.Ops {
			result[pos] = byte(op.Op)
			pos++
			var opFlags byte
			if op.Value != nil {
				opFlags |= opHasValue
			}
			result[pos] = opFlags
			pos++
			pos = writeString(result, pos, op.Family)
			pos = writeBytes(result, pos, op.Key)
			if op.Value != nil {
				pos = writeBytes(result, pos, op.Value)
			}
		}
	}

	// Handle Ok
	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos++
	}

	// Handle Found
	if msg.Found {
		flags |= hasFound
		result[pos] = 1
		pos++
	}

	// Handle Families
	if msg.Families != nil {
		flags |= hasFamilies
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Families)))
		pos += 4
		for _, f := range msg.Families {
			pos = writeString(result, pos, f)
		}
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		pos = writeString(result, pos, msg.Err)
	}

	// Handle Meta
	if msg.Meta != nil {
		flags |= hasMeta
		pos = writeBytes(result, pos, msg.Meta)
	}

	// Set flags after knowing which fields are present
	binary.BigEndian.PutUint16(result[1:3], flags)

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 3 {
		return fmt.Errorf("data too short for message header")
	}

	// Read message type
	msg.MsgType = common.MessageType(data[0])

	// Read flags
	flags := binary.BigEndian.Uint16(data[1:3])

	// Initialize read position
	pos := 3

	// Read StoreID if present
	if flags&hasStoreID != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for StoreID")
		}
		msg.StoreID = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	} else {
		msg.StoreID = 0
	}

	var err error

	// Read Path if present
	if flags&hasPath != 0 {
		if msg.Path, pos, err = readString(data, pos, "path"); err != nil {
			return err
		}
	} else {
		msg.Path = ""
	}

	// Read Family if present
	if flags&hasFamily != 0 {
		if msg.Family, pos, err = readString(data, pos, "family"); err != nil {
			return err
		}
	} else {
		msg.Family = ""
	}

	// Read Key if present
	if flags&hasKey != 0 {
		if msg.Key, pos, err = readBytes(data, pos, "key"); err != nil {
			return err
		}
	} else {
		msg.Key = nil
	}

	// Read Value if present
	if flags&hasValue != 0 {
		if msg.Value, pos, err = readBytes(data, pos, "value"); err != nil {
			return err
		}
	} else {
		msg.Value = nil
	}

	// Read Ops if present
	if flags&hasOps != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for ops count")
		}
		count := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		msg.Ops = make([]common.BatchOp, count)
		for i := range msg.Ops {
			if pos+2 > len(data) {
				return fmt.Errorf("data too short for op header")
			}
			msg.Ops[i].Op = common.BatchOpKind(data[pos])
			opFlags := data[pos+1]
			pos += 2

			if msg.Ops[i].Family, pos, err = readString(data, pos, "op family"); err != nil {
				return err
			}
			if msg.Ops[i].Key, pos, err = readBytes(data, pos, "op key"); err != nil {
				return err
			}
			if opFlags&opHasValue != 0 {
				if msg.Ops[i].Value, pos, err = readBytes(data, pos, "op value"); err != nil {
					return err
				}
			} else {
				msg.Ops[i].Value = nil
			}
		}
	} else {
		msg.Ops = nil
	}

	// Read Ok if present
	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Ok flag")
		}
		msg.Ok = data[pos] != 0
		pos++
	} else {
		msg.Ok = false
	}

	// Read Found if present
	if flags&hasFound != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for Found flag")
		}
		msg.Found = data[pos] != 0
		pos++
	} else {
		msg.Found = false
	}

	// Read Families if present
	if flags&hasFamilies != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for families count")
		}
		count := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		msg.Families = make([]string, count)
		for i := range msg.Families {
			if msg.Families[i], pos, err = readString(data, pos, "family name"); err != nil {
				return err
			}
		}
	} else {
		msg.Families = nil
	}

	// Read Err if present
	if flags&hasErr != 0 {
		if msg.Err, pos, err = readString(data, pos, "error"); err != nil {
			return err
		}
	} else {
		msg.Err = ""
	}

	// Read Meta if present
	if flags&hasMeta != 0 {
		if msg.Meta, pos, err = readBytes(data, pos, "meta"); err != nil {
			return err
		}
	} else {
		msg.Meta = nil
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// writeString writes a length-prefixed string and returns the new position
func writeString(dst []byte, pos int, s string) int {
	binary.BigEndian.PutUint32(dst[pos:pos+4], uint32(len(s)))
	pos += 4
	copy(dst[pos:pos+len(s)], s)
	return pos + len(s)
}

// writeBytes writes a length-prefixed byte slice and returns the new position
func writeBytes(dst []byte, pos int, b []byte) int {
	binary.BigEndian.PutUint32(dst[pos:pos+4], uint32(len(b)))
	pos += 4
	copy(dst[pos:pos+len(b)], b)
	return pos + len(b)
}

// readString reads a length-prefixed string and returns it with the new position
func readString(data []byte, pos int, field string) (string, int, error) {
	if pos+4 > len(data) {
		return "", pos, fmt.Errorf("data too short for %s length", field)
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	if pos+n > len(data) {
		return "", pos, fmt.Errorf("data too short for %s data", field)
	}
	return string(data[pos : pos+n]), pos + n, nil
}

// readBytes reads a length-prefixed byte slice and returns it with the new position
func readBytes(data []byte, pos int, field string) ([]byte, int, error) {
	if pos+4 > len(data) {
		return nil, pos, fmt.Errorf("data too short for %s length", field)
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4
	if pos+n > len(data) {
		return nil, pos, fmt.Errorf("data too short for %s data", field)
	}
	out := make([]byte, n)
	copy(out, data[pos:pos+n])
	return out, pos + n, nil
}

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 2 bytes for flags
	size := 3

	// Add sizes for fields that require length encoding
	if msg.StoreID > 0 {
		size += 8 // uint64
	}
	if msg.Path != "" {
		size += 4 + len(msg.Path)
	}
	if msg.Family != "" {
		size += 4 + len(msg.Family)
	}
	if msg.Key != nil {
		size += 4 + len(msg.Key)
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Ops != nil {
		size += 4 // op count
		for _, op := range msg.Ops {
			size += 2                  // kind + op flags
			size += 4 + len(op.Family) // length prefixed family
			size += 4 + len(op.Key)    // length prefixed key
			if op.Value != nil {
				size += 4 + len(op.Value)
			}
		}
	}
	if msg.Ok {
		size += 1 // 1 byte for boolean
	}
	if msg.Found {
		size += 1 // 1 byte for boolean
	}
	if msg.Families != nil {
		size += 4 // name count
		for _, f := range msg.Families {
			size += 4 + len(f)
		}
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}

	return size
}
