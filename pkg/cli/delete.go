package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"heapdb/pkg/database"
	"heapdb/pkg/execution"
	"heapdb/pkg/primitives"
)

func (a *app) deleteCmd() *cobra.Command {
	var where whereFlags

	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete the tuples of <table> matching --where, or all of them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTx(cmd, func(ctx context.Context, db *database.Database, tid *primitives.TransactionID) error {
				tableID, err := db.Catalog().GetTableID(args[0])
				if err != nil {
					return err
				}
				scan, err := execution.NewSeqScan(ctx, tid, tableID, "", db.Catalog(), db.BufferPool())
				if err != nil {
					return err
				}
				child, err := where.apply(scan, scan.GetTupleDesc())
				if err != nil {
					return err
				}

				res, err := database.Collect(execution.NewDelete(ctx, tid, child, db.BufferPool()))
				if err != nil {
					return err
				}
				db.Stats().Invalidate(tableID)

				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("deleted %s tuple(s) from %s", res.Rows[0][0], args[0])))
				return nil
			})
		},
	}
	where.register(cmd)
	return cmd
}
