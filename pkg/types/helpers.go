package types

import (
	"cmp"
	"hash/fnv"

	"heapdb/pkg/primitives"
)

// compareOrdered evaluates "a op b". LIKE and unknown operators are false.
func compareOrdered[T cmp.Ordered](a, b T, op primitives.Predicate) bool {
	c := cmp.Compare(a, b)
	switch op {
	case primitives.Equals:
		return c == 0
	case primitives.NotEqual:
		return c != 0
	case primitives.LessThan:
		return c < 0
	case primitives.LessThanOrEqual:
		return c <= 0
	case primitives.GreaterThan:
		return c > 0
	case primitives.GreaterThanOrEqual:
		return c >= 0
	}
	return false
}

func fnvHash(data []byte) primitives.HashCode {
	h := fnv.New32a()
	_, _ = h.Write(data)
	return primitives.HashCode(h.Sum32())
}
