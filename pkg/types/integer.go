package types

import (
	"encoding/binary"
	"io"
	"strconv"

	"heapdb/pkg/primitives"
)

// IntField is a 32-bit signed integer, stored big-endian.
type IntField struct {
	Value int32
}

func NewIntField(value int32) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	_, err := w.Write(f.bytes())
	return err
}

// Compare supports every predicate except Like, which never matches integers.
func (f *IntField) Compare(op primitives.Predicate, other Field) (bool, error) {
	o, ok := other.(*IntField)
	if !ok {
		return false, nil
	}
	return compareOrdered(f.Value, o.Value, op), nil
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(int64(f.Value), 10)
}

func (f *IntField) Equals(other Field) bool {
	o, ok := other.(*IntField)
	return ok && f.Value == o.Value
}

func (f *IntField) Hash() (primitives.HashCode, error) {
	return fnvHash(f.bytes()), nil
}

func (f *IntField) Length() uint32 {
	return IntType.Size()
}

func (f *IntField) bytes() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(f.Value)) // #nosec G115
	return b
}
