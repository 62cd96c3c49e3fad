package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/flatmsg/lib/urlmsg"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format:
//
//	flags(1) separator(1) [cmdLen(4) cmd] [pairCount(4) (keyLen(4) key valLen(4) val)*]
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional sections are present
const (
	hasCommand byte = 1 << 0
	hasPairs   byte = 1 << 1
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg *urlmsg.Message) ([]byte, error) {
	// Calculate total size needed
	result := make([]byte, b.sizeBytes(msg))

	var flags byte = 0
	result[1] = msg.Separator

	// Set position for writing
	pos := 2 // Start after flags and separator

	// Handle Command
	if msg.Command != "" {
		flags |= hasCommand
		pos = putString(result, pos, msg.Command)
	}

	// Handle Pairs
	if n := msg.Len(); n > 0 {
		flags |= hasPairs
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(n))
		pos += 4

		msg.Range(func(key, value string) bool {
			pos = putString(result, pos, key)
			pos = putString(result, pos, value)
			return true
		})
	}

	// Set flags byte after knowing which sections are present
	result[0] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *urlmsg.Message) error {
	// Check minimum size (flags + separator)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	flags := data[0]
	out := urlmsg.New()
	if data[1] != 0 {
		out.Separator = data[1]
	}

	// Initialize read position
	pos := 2
	var err error

	// Read Command if present
	if flags&hasCommand != 0 {
		if out.Command, pos, err = readString(data, pos, "command"); err != nil {
			return err
		}
	}

	// Read Pairs if present
	if flags&hasPairs != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for pair count")
		}
		n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		for i := 0; i < n; i++ {
			var key, value string
			if key, pos, err = readString(data, pos, "key"); err != nil {
				return err
			}
			if value, pos, err = readString(data, pos, "value"); err != nil {
				return err
			}
			if out.Has(key) {
				return fmt.Errorf("%w: %q", urlmsg.ErrDuplicateKey, key)
			}
			out.Set(key, value)
		}
	}

	if pos != len(data) {
		return fmt.Errorf("unexpected %d trailing bytes", len(data)-pos)
	}

	*msg = *out
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the exact number of bytes needed to serialize the message
func (b binarySerializerImpl) sizeBytes(msg *urlmsg.Message) int {
	size := 2 // flags + separator

	if msg.Command != "" {
		size += 4 + len(msg.Command)
	}

	if msg.Len() > 0 {
		size += 4 // pair count
		msg.Range(func(key, value string) bool {
			size += 8 + len(key) + len(value)
			return true
		})
	}

	return size
}

// putString writes a length prefixed string and returns the new position
func putString(buf []byte, pos int, s string) int {
	binary.BigEndian.PutUint32(buf[pos:pos+4], uint32(len(s)))
	pos += 4
	copy(buf[pos:pos+len(s)], s)
	return pos + len(s)
}

// readString reads a length prefixed string and returns it with the new position
func readString(data []byte, pos int, what string) (string, int, error) {
	if pos+4 > len(data) {
		return "", pos, fmt.Errorf("data too short for %s length", what)
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4

	if n < 0 || pos+n > len(data) {
		return "", pos, fmt.Errorf("data too short for %s data", what)
	}
	return string(data[pos : pos+n]), pos + n, nil
}
