package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"heapdb/pkg/database"
	"heapdb/pkg/execution"
	"heapdb/pkg/execution/join"
	"heapdb/pkg/primitives"
)

func (a *app) joinCmd() *cobra.Command {
	var (
		on    string
		cmpOp string
	)

	cmd := &cobra.Command{
		Use:   "join <left> <right>",
		Short: "Nested-loop join two tables on --on left_col=right_col",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			leftCol, rightCol, ok := strings.Cut(on, "=")
			if !ok || leftCol == "" || rightCol == "" {
				return invalidArg("--on must look like left_col=right_col")
			}
			op, err := primitives.ParsePredicate(cmpOp)
			if err != nil {
				return invalidArg(err.Error())
			}

			leftAlias, rightAlias := args[0], args[1]
			if leftAlias == rightAlias {
				rightAlias += "_2"
			}

			return a.withTx(cmd, func(ctx context.Context, db *database.Database, tid *primitives.TransactionID) error {
				left, lf, err := a.aliasedScan(ctx, db, tid, args[0], leftAlias, leftCol)
				if err != nil {
					return err
				}
				right, rf, err := a.aliasedScan(ctx, db, tid, args[1], rightAlias, rightCol)
				if err != nil {
					return err
				}

				pred, err := join.NewJoinPredicate(lf, op, rf)
				if err != nil {
					return err
				}
				j, err := join.NewNestedLoopJoin(pred, left, right)
				if err != nil {
					return err
				}
				res, err := database.Collect(j)
				if err != nil {
					return err
				}
				renderResult(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&on, "on", "", "join condition as left_col=right_col")
	cmd.Flags().StringVar(&cmpOp, "cmp", "=", "comparison applied to the join columns")
	_ = cmd.MarkFlagRequired("on")
	return cmd
}

// aliasedScan scans table under alias and resolves column in its
// unqualified schema.
func (a *app) aliasedScan(ctx context.Context, db *database.Database, tid *primitives.TransactionID, table, alias, column string) (*execution.SequentialScan, int, error) {
	tableID, err := db.Catalog().GetTableID(table)
	if err != nil {
		return nil, 0, err
	}
	td, err := db.Catalog().GetTupleDesc(tableID)
	if err != nil {
		return nil, 0, err
	}
	idx, err := columnIndex(td, column)
	if err != nil {
		return nil, 0, err
	}
	scan, err := execution.NewSeqScan(ctx, tid, tableID, alias, db.Catalog(), db.BufferPool())
	if err != nil {
		return nil, 0, err
	}
	return scan, idx, nil
}
