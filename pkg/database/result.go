package database

import (
	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// Result is an operator's output rendered into strings.
type Result struct {
	Columns []string
	Rows    [][]string
}

// Collect opens op, drains it and closes it.
func Collect(op iterator.DbIterator) (*Result, error) {
	if err := op.Open(); err != nil {
		return nil, err
	}
	defer op.Close()

	td := op.GetTupleDesc()
	res := &Result{Columns: columnNames(td)}
	err := iterator.ForEach(op, func(t *tuple.Tuple) error {
		row := make([]string, td.NumFields())
		for i := range row {
			f, err := t.GetField(i)
			if err != nil {
				return err
			}
			row[i] = formatField(f)
		}
		res.Rows = append(res.Rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func columnNames(td *tuple.TupleDescription) []string {
	names := make([]string, td.NumFields())
	for i := range names {
		name, err := td.GetFieldName(i)
		if err != nil || name == "" {
			name = td.Types[i].String()
		}
		names[i] = name
	}
	return names
}

func formatField(f types.Field) string {
	if f == nil {
		return "NULL"
	}
	return f.String()
}
