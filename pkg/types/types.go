// Package types holds the fixed-width field types a tuple can carry.
package types

import "fmt"

// Type is a primitive column type. Every type has a fixed serialized width.
type Type int

const (
	IntType Type = iota
	StringType
)

// StringMaxSize is the number of payload bytes reserved for every string field.
const StringMaxSize = 128

// Size returns the number of bytes a field of this type occupies on a page.
func (t Type) Size() uint32 {
	switch t {
	case IntType:
		return 4
	case StringType:
		return 4 + StringMaxSize
	default:
		return 0
	}
}

// String returns a string representation of the type
func (t Type) String() string {
	switch t {
	case IntType:
		return "INT_TYPE"
	case StringType:
		return "STRING_TYPE"
	default:
		return "UNKNOWN_TYPE"
	}
}

// ParseType maps a schema keyword ("int", "string") to a Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "int", "INT", "INT_TYPE":
		return IntType, nil
	case "string", "STRING", "STRING_TYPE":
		return StringType, nil
	default:
		return 0, fmt.Errorf("unknown type %q", name)
	}
}
