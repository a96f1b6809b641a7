package cli

import (
	"github.com/spf13/cobra"

	"heapdb/pkg/database"
)

func (a *app) tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(func(db *database.Database) error {
				cat := db.Catalog()
				res := &database.Result{Columns: []string{"name", "id", "primary key", "schema"}}
				for _, name := range cat.TableNames() {
					id, err := cat.GetTableID(name)
					if err != nil {
						return err
					}
					td, err := cat.GetTupleDesc(id)
					if err != nil {
						return err
					}
					pkey, err := cat.GetPrimaryKey(id)
					if err != nil {
						return err
					}
					res.Rows = append(res.Rows, []string{name, id.String(), pkey, td.String()})
				}
				renderResult(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
}
