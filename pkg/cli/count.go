package cli

import (
	"context"

	"github.com/spf13/cobra"

	"heapdb/pkg/database"
	"heapdb/pkg/execution"
	"heapdb/pkg/execution/aggregation"
	"heapdb/pkg/primitives"
)

func (a *app) countCmd() *cobra.Command {
	var (
		group  string
		agg    string
		opName string
		where  whereFlags
	)

	cmd := &cobra.Command{
		Use:   "count <table>",
		Short: "Aggregate a column of <table>, optionally grouped",
		Long: "Aggregate --agg (default: the first column) of <table> with --op.\n" +
			"With --group the result has one row per distinct group value, in first-seen order.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := aggregation.ParseAggregateOp(opName)
			if err != nil {
				return invalidArg(err.Error())
			}

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
				child, err := where.apply(scan, td)
				if err != nil {
					return err
				}

				aField := 0
				if agg != "" {
					if aField, err = columnIndex(td, agg); err != nil {
						return err
					}
				}
				gField := aggregation.NoGrouping
				if group != "" {
					if gField, err = columnIndex(td, group); err != nil {
						return err
					}
				}

				aggregate, err := aggregation.NewAggregate(child, aField, gField, op)
				if err != nil {
					return err
				}
				res, err := database.Collect(aggregate)
				if err != nil {
					return err
				}
				renderResult(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group-by column")
	cmd.Flags().StringVar(&agg, "agg", "", "aggregated column")
	cmd.Flags().StringVar(&opName, "op", "count", "count, sum, min, max or avg")
	where.register(cmd)
	return cmd
}
