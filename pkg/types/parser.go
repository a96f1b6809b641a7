package types

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
)

// ParseField reads and parses a field from the given reader based on the specified field type.
// Exactly fieldType.Size() bytes are consumed on success.
//
// Parameters:
//   - r: The io.Reader to read the serialized field data from
//   - fieldType: The Type of field to parse
//
// Returns:
//   - Field: The parsed field instance of the appropriate type
//   - error: An error if the field type is unsupported or the data is short or malformed
func ParseField(r io.Reader, fieldType Type) (Field, error) {
	size := fieldType.Size()
	if size == 0 {
		return nil, fmt.Errorf("unsupported field type: %v", fieldType)
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	switch fieldType {
	case IntType:
		return NewIntField(int32(binary.BigEndian.Uint32(buf))), nil // #nosec G115

	case StringType:
		length := binary.BigEndian.Uint32(buf)
		if length > StringMaxSize {
			return nil, fmt.Errorf("string length %d exceeds maximum %d", length, StringMaxSize)
		}
		return NewStringField(string(buf[4 : 4+length])), nil

	default:
		return nil, fmt.Errorf("unsupported field type: %v", fieldType)
	}
}

// CreateFieldFromConstant builds a field of type t from its textual form, as typed on
// the command line.
func CreateFieldFromConstant(t Type, constant string) (Field, error) {
	switch t {
	case IntType:
		v, err := strconv.ParseInt(constant, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid int constant %q: %w", constant, err)
		}
		return NewIntField(int32(v)), nil

	case StringType:
		return NewStringField(constant), nil

	default:
		return nil, fmt.Errorf("unsupported field type: %v", t)
	}
}
