package cli

import (
	"github.com/spf13/cobra"

	"heapdb/pkg/dberror"
	"heapdb/pkg/execution"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// whereFlags is a single "column op constant" condition shared by the
// commands that read a table.
type whereFlags struct {
	column string
	op     string
	value  string
}

func (w *whereFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.column, "where", "", "column to filter on")
	cmd.Flags().StringVar(&w.op, "cmp", "=", "comparison: = != < <= > >= LIKE")
	cmd.Flags().StringVar(&w.value, "value", "", "constant to compare against")
}

// apply wraps child in a Filter, or returns child when no column is set.
func (w *whereFlags) apply(child iterator.DbIterator, td *tuple.TupleDescription) (iterator.DbIterator, error) {
	if w.column == "" {
		return child, nil
	}
	idx, op, operand, err := resolveCondition(td, w.column, w.op, w.value)
	if err != nil {
		return nil, err
	}
	return execution.NewFilter(execution.NewPredicate(idx, op, operand), child)
}

func resolveCondition(td *tuple.TupleDescription, column, opText, value string) (int, primitives.Predicate, types.Field, error) {
	idx, err := columnIndex(td, column)
	if err != nil {
		return 0, 0, nil, err
	}
	op, err := primitives.ParsePredicate(opText)
	if err != nil {
		return 0, 0, nil, invalidArg(err.Error())
	}
	operand, err := types.CreateFieldFromConstant(td.Types[idx], value)
	if err != nil {
		return 0, 0, nil, invalidArg(err.Error())
	}
	return idx, op, operand, nil
}

func columnIndex(td *tuple.TupleDescription, column string) (int, error) {
	idx, err := td.FindFieldIndex(column)
	if err != nil {
		return -1, invalidArg(err.Error())
	}
	return idx, nil
}

func invalidArg(msg string) error {
	return dberror.New(dberror.ErrCategoryUser, dberror.CodeInvalidArg, msg)
}
