package types

import (
	"io"

	"heapdb/pkg/primitives"
)

// Field is a single typed value inside a tuple.
type Field interface {
	Serialize(w io.Writer) error

	// Compare evaluates "f op other". Fields of different types never match.
	Compare(op primitives.Predicate, other Field) (bool, error)

	Type() Type

	String() string

	Equals(other Field) bool

	Hash() (primitives.HashCode, error)

	// Length is the serialized width, always Type().Size().
	Length() uint32
}
