package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"heapdb/pkg/database"
)

func (a *app) statsCmd() *cobra.Command {
	var (
		column string
		opText string
		value  string
	)

	cmd := &cobra.Command{
		Use:   "stats <table>",
		Short: "Show histogram statistics for <table> and estimate a predicate's selectivity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(func(db *database.Database) error {
				tableID, err := db.Catalog().GetTableID(args[0])
				if err != nil {
					return err
				}
				ts, err := db.Stats().Get(cmd.Context(), tableID)
				if err != nil {
					return err
				}

				pairs := [][2]string{
					{"table", args[0]},
					{"tuples", strconv.FormatInt(ts.TotalTuples(), 10)},
					{"pages", strconv.Itoa(ts.NumPages())},
					{"scan cost", formatFloat(ts.EstimateScanCost())},
				}

				if column != "" {
					td, err := db.Catalog().GetTupleDesc(tableID)
					if err != nil {
						return err
					}
					idx, op, operand, err := resolveCondition(td, column, opText, value)
					if err != nil {
						return err
					}
					sel, err := ts.EstimateSelectivity(idx, op, operand)
					if err != nil {
						return err
					}
					pairs = append(pairs,
						[2]string{"predicate", fmt.Sprintf("%s %s %s", column, op, operand)},
						[2]string{"selectivity", formatFloat(sel)},
						[2]string{"est. cardinality", strconv.Itoa(ts.EstimateTableCardinality(sel))},
						[2]string{"avg selectivity", formatFloat(ts.AvgSelectivity(idx))},
					)
				}

				renderPairs(cmd.OutOrStdout(), pairs)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&column, "column", "", "column the predicate applies to")
	cmd.Flags().StringVar(&opText, "op", "=", "comparison: = != < <= > >= LIKE")
	cmd.Flags().StringVar(&value, "value", "", "constant to compare against")
	return cmd
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
