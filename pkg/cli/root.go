// Package cli implements the heapdb command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"heapdb/pkg/config"
	"heapdb/pkg/database"
	"heapdb/pkg/primitives"
)

const defaultCatalogFile = "catalog.txt"

type app struct {
	configPath string
	dataDir    string
	logLevel   string
}

// NewRootCommand builds the heapdb command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "heapdb",
		Short:         "heapdb - a small paged relational storage engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (overrides config and "+config.HomeEnv+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		a.tablesCmd(),
		a.scanCmd(),
		a.insertCmd(),
		a.deleteCmd(),
		a.countCmd(),
		a.joinCmd(),
		a.statsCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if cfg.CatalogFile == "" {
		cfg.CatalogFile = defaultCatalogFile
	}
	return cfg, nil
}

// withDB opens the database for the duration of fn.
func (a *app) withDB(fn func(db *database.Database) error) (err error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(db)
}

// withTx runs fn in a single transaction of a freshly opened database.
func (a *app) withTx(cmd *cobra.Command, fn func(ctx context.Context, db *database.Database, tid *primitives.TransactionID) error) error {
	ctx := cmd.Context()
	return a.withDB(func(db *database.Database) error {
		return db.RunInTransaction(ctx, func(tid *primitives.TransactionID) error {
			return fn(ctx, db, tid)
		})
	})
}
