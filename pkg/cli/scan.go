package cli

import (
	"context"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"heapdb/pkg/database"
	"heapdb/pkg/execution"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
)

func (a *app) scanCmd() *cobra.Command {
	var (
		where   whereFlags
		columns string
		limit   int
		offset  int
	)

	cmd := &cobra.Command{
		Use:   "scan <table>",
		Short: "Print the tuples of <table>, optionally filtered, projected and limited",
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
				td := scan.GetTupleDesc()

				var op iterator.DbIterator
				if op, err = where.apply(scan, td); err != nil {
					return err
				}
				if columns != "" {
					var fields []int
					for _, name := range strings.Split(columns, ",") {
						idx, err := columnIndex(td, strings.TrimSpace(name))
						if err != nil {
							return err
						}
						fields = append(fields, idx)
					}
					if op, err = execution.NewProject(fields, op); err != nil {
						return err
					}
				}
				if limit >= 0 || offset > 0 {
					if limit < 0 {
						limit = math.MaxInt
					}
					if op, err = execution.NewLimit(op, limit, offset); err != nil {
						return err
					}
				}

				res, err := database.Collect(op)
				if err != nil {
					return err
				}
				renderResult(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	where.register(cmd)
	cmd.Flags().StringVar(&columns, "columns", "", "comma-separated columns to print")
	cmd.Flags().IntVar(&limit, "limit", -1, "maximum number of tuples (negative for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "tuples to skip first")
	return cmd
}
