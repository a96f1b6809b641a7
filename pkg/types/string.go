package types

import (
	"encoding/binary"
	"io"
	"strings"

	"heapdb/pkg/primitives"
)

// StringField represents a fixed-width string field. Values longer than
// StringMaxSize bytes are truncated on construction.
type StringField struct {
	Value string
}

// NewStringField creates a new StringField, truncating value to StringMaxSize bytes.
func NewStringField(value string) *StringField {
	if len(value) > StringMaxSize {
		value = value[:StringMaxSize]
	}
	return &StringField{Value: value}
}

// Compare performs a comparison operation between this StringField and another Field
// using the specified predicate. String comparisons are performed lexicographically.
// Like is a substring test.
//
// Parameters:
//   - op: The comparison predicate to apply
//   - other: The other Field to compare against (must be a *StringField)
//
// Returns:
//   - bool: The result of the comparison operation, false for a non-string operand
//   - error: Always nil
func (s *StringField) Compare(op primitives.Predicate, other Field) (bool, error) {
	o, ok := other.(*StringField)
	if !ok {
		return false, nil
	}
	if op == primitives.Like {
		return strings.Contains(s.Value, o.Value), nil
	}
	return compareOrdered(s.Value, o.Value, op), nil
}

// Serialize writes the string field in its on-page form:
// 1. 4 bytes for the actual string length (big-endian uint32)
// 2. The string bytes
// 3. Zero padding up to StringMaxSize
func (s *StringField) Serialize(w io.Writer) error {
	buf := make([]byte, StringType.Size())
	binary.BigEndian.PutUint32(buf, uint32(len(s.Value))) // #nosec G115
	copy(buf[4:], s.Value)
	_, err := w.Write(buf)
	return err
}

func (s *StringField) Type() Type {
	return StringType
}

func (s *StringField) String() string {
	return s.Value
}

func (s *StringField) Equals(other Field) bool {
	o, ok := other.(*StringField)
	return ok && s.Value == o.Value
}

func (s *StringField) Hash() (primitives.HashCode, error) {
	return fnvHash([]byte(s.Value)), nil
}

// Length returns the total serialized size (4 bytes + StringMaxSize).
func (s *StringField) Length() uint32 {
	return StringType.Size()
}
