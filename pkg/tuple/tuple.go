package tuple

import (
	"fmt"
	"strings"

	"heapdb/pkg/types"
)

// Tuple represents a row of data in the database
type Tuple struct {
	TupleDesc *TupleDescription // Schema of this tuple
	fields    []types.Field     // The actual field values
	RecordID  *RecordID         // Where this tuple is stored (nil until placed on a page)
}

// NewTuple creates a new tuple with the given schema
func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{
		TupleDesc: td,
		fields:    make([]types.Field, td.NumFields()),
	}
}

// FromFields builds a tuple from values, checking each against td.
func FromFields(td *TupleDescription, fields ...types.Field) (*Tuple, error) {
	if len(fields) != td.NumFields() {
		return nil, fmt.Errorf("expected %d fields, got %d", td.NumFields(), len(fields))
	}
	t := NewTuple(td)
	for i, f := range fields {
		if err := t.SetField(i, f); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tuple) SetField(i int, field types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}

	expectedType, _ := t.TupleDesc.TypeAtIndex(i)
	if field.Type() != expectedType {
		return fmt.Errorf("field type mismatch: expected %v, got %v",
			expectedType, field.Type())
	}

	t.fields[i] = field
	return nil
}

// GetField returns the value of the ith field
func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	return t.fields[i], nil
}

// IsComplete reports whether every field has been set.
func (t *Tuple) IsComplete() bool {
	for _, f := range t.fields {
		if f == nil {
			return false
		}
	}
	return true
}

// String returns the fields joined by tabs, with a trailing newline.
// Unset fields print as "null".
func (t *Tuple) String() string {
	parts := make([]string, 0, len(t.fields))
	for _, field := range t.fields {
		if field != nil {
			parts = append(parts, field.String())
		} else {
			parts = append(parts, "null")
		}
	}
	return strings.Join(parts, "\t") + "\n"
}

// CombineTuples concatenates the fields of t1 and t2 under the combined schema.
// The result has no RecordID.
func CombineTuples(t1, t2 *Tuple) (*Tuple, error) {
	if t1 == nil || t2 == nil {
		return nil, fmt.Errorf("cannot combine nil tuples")
	}

	combined := NewTuple(Combine(t1.TupleDesc, t2.TupleDesc))
	n := copy(combined.fields, t1.fields)
	copy(combined.fields[n:], t2.fields)
	return combined, nil
}

// Clone returns a copy sharing the schema and field values but not the RecordID.
func (t *Tuple) Clone() *Tuple {
	c := NewTuple(t.TupleDesc)
	copy(c.fields, t.fields)
	return c
}
