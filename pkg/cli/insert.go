package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"heapdb/pkg/database"
	"heapdb/pkg/execution"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func (a *app) insertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <table> <value>...",
		Short: "Insert one tuple into <table>",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTx(cmd, func(ctx context.Context, db *database.Database, tid *primitives.TransactionID) error {
				tableID, err := db.Catalog().GetTableID(args[0])
				if err != nil {
					return err
				}
				td, err := db.Catalog().GetTupleDesc(tableID)
				if err != nil {
					return err
				}
				row, err := parseRow(td, args[1:])
				if err != nil {
					return err
				}

				source := tuple.NewIterator(td, []*tuple.Tuple{row})
				ins, err := execution.NewInsert(ctx, tid, source, tableID, db.Catalog(), db.BufferPool())
				if err != nil {
					return err
				}
				res, err := database.Collect(ins)
				if err != nil {
					return err
				}
				db.Stats().Invalidate(tableID)

				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("inserted %s tuple(s) into %s", res.Rows[0][0], args[0])))
				return nil
			})
		},
	}
}

func parseRow(td *tuple.TupleDescription, values []string) (*tuple.Tuple, error) {
	if len(values) != td.NumFields() {
		return nil, invalidArg(fmt.Sprintf("table has %d columns, got %d values", td.NumFields(), len(values)))
	}
	fields := make([]types.Field, len(values))
	for i, v := range values {
		f, err := types.CreateFieldFromConstant(td.Types[i], v)
		if err != nil {
			return nil, invalidArg(err.Error())
		}
		fields[i] = f
	}
	return tuple.FromFields(td, fields...)
}
