package tuple

import (
	"testing"

	"heapdb/pkg/types"
)

func mustCreateTupleDesc(t *testing.T, fieldTypes []types.Type, fieldNames []string) *TupleDescription {
	t.Helper()
	td, err := NewTupleDesc(fieldTypes, fieldNames)
	if err != nil {
		t.Fatalf("Failed to create TupleDescription: %v", err)
	}
	return td
}
