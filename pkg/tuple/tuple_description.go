package tuple

import (
	"fmt"
	"slices"
	"strings"

	"heapdb/pkg/types"
)

// TupleDescription is the schema of a tuple: field types in order, plus
// optional names. Once attached to a tuple or a file it must not be
// modified.
type TupleDescription struct {
	Types      []types.Type
	FieldNames []string // nil for an unnamed schema
}

// NewTupleDesc copies fieldTypes and fieldNames into a new schema.
//
// Returns:
//   - error: if fieldTypes is empty, or fieldNames is non-nil with a
//     different length
func NewTupleDesc(fieldTypes []types.Type, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) == 0 {
		return nil, fmt.Errorf("must provide at least one field type")
	}
	if fieldNames != nil && len(fieldNames) != len(fieldTypes) {
		return nil, fmt.Errorf("%d field names for %d field types", len(fieldNames), len(fieldTypes))
	}
	return &TupleDescription{
		Types:      slices.Clone(fieldTypes),
		FieldNames: slices.Clone(fieldNames),
	}, nil
}

func (td *TupleDescription) NumFields() int { return len(td.Types) }

func (td *TupleDescription) checkIndex(i int) error {
	if i < 0 || i >= len(td.Types) {
		return fmt.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	return nil
}

// GetFieldName returns the name of the ith field, or "" when the schema is unnamed.
func (td *TupleDescription) GetFieldName(i int) (string, error) {
	if err := td.checkIndex(i); err != nil {
		return "", err
	}
	if td.FieldNames == nil {
		return "", nil
	}
	return td.FieldNames[i], nil
}

func (td *TupleDescription) TypeAtIndex(i int) (types.Type, error) {
	if err := td.checkIndex(i); err != nil {
		return 0, err
	}
	return td.Types[i], nil
}

// GetSize is the serialized size of one tuple in bytes.
func (td *TupleDescription) GetSize() uint32 {
	var size uint32
	for _, t := range td.Types {
		size += t.Size()
	}
	return size
}

// Equals compares field types only. Names are ignored.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	return other != nil && slices.Equal(td.Types, other.Types)
}

// String renders "TYPE(name),..." with "null" for missing names.
func (td *TupleDescription) String() string {
	var sb strings.Builder
	for i, t := range td.Types {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%s(%s)", t, td.nameOrNull(i))
	}
	return sb.String()
}

func (td *TupleDescription) nameOrNull(i int) string {
	if name, _ := td.GetFieldName(i); name != "" {
		return name
	}
	return "null"
}

// FindFieldIndex returns the index of the first field named fieldName.
func (td *TupleDescription) FindFieldIndex(fieldName string) (int, error) {
	if i := slices.Index(td.FieldNames, fieldName); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("column %s not found", fieldName)
}

// WithPrefix returns a copy whose field names are "prefix.name".
// Unnamed fields become "prefix.null".
func (td *TupleDescription) WithPrefix(prefix string) *TupleDescription {
	names := make([]string, td.NumFields())
	for i := range names {
		names[i] = prefix + "." + td.nameOrNull(i)
	}
	return &TupleDescription{Types: slices.Clone(td.Types), FieldNames: names}
}

// Combine returns td1's fields followed by td2's. A nil side yields the
// other unchanged.
func Combine(td1, td2 *TupleDescription) *TupleDescription {
	switch {
	case td1 == nil:
		return td2
	case td2 == nil:
		return td1
	}

	combined := &TupleDescription{Types: slices.Concat(td1.Types, td2.Types)}
	if td1.FieldNames != nil || td2.FieldNames != nil {
		combined.FieldNames = slices.Concat(namesOrBlank(td1), namesOrBlank(td2))
	}
	return combined
}

func namesOrBlank(td *TupleDescription) []string {
	if td.FieldNames != nil {
		return td.FieldNames
	}
	return make([]string, len(td.Types))
}
