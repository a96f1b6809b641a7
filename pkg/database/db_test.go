package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/config"
	"heapdb/pkg/dberror"
	"heapdb/pkg/execution"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.BufferPool.PageSize = 512
	cfg.BufferPool.Pages = 16
	cfg.Log.Level = "error"
	return cfg
}

func openDB(t *testing.T, cfg *config.Config) *Database {
	t.Helper()
	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func peopleDesc(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType, types.StringType}, []string{"id", "name"})
	require.NoError(t, err)
	return td
}

func insertPeople(t *testing.T, db *Database, tableID primitives.TableID, names ...string) error {
	t.Helper()
	td := peopleDesc(t)
	ctx := context.Background()
	return db.RunInTransaction(ctx, func(tid *primitives.TransactionID) error {
		for i, name := range names {
			row, err := tuple.FromFields(td, types.NewIntField(int32(i)), types.NewStringField(name))
			if err != nil {
				return err
			}
			if err := db.BufferPool().InsertTuple(ctx, tid, tableID, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func countRows(t *testing.T, db *Database, tableID primitives.TableID) int {
	t.Helper()
	var n int
	err := db.RunInTransaction(context.Background(), func(tid *primitives.TransactionID) error {
		scan, err := execution.NewSeqScan(context.Background(), tid, tableID, "", db.Catalog(), db.BufferPool())
		if err != nil {
			return err
		}
		if err := scan.Open(); err != nil {
			return err
		}
		defer scan.Close()
		n, err = iterator.Count(scan)
		return err
	})
	require.NoError(t, err)
	return n
}

func TestOpen_CreatesDataDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataDir = filepath.Join(cfg.DataDir, "nested", "data")
	db := openDB(t, cfg)

	_, err := os.Stat(cfg.DataDir)
	assert.NoError(t, err)
	assert.Empty(t, db.Info().Tables)
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.BufferPool.PageSize = 1000
	_, err := Open(cfg)
	assert.Error(t, err)
}

func TestOpen_LoadsCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogFile = "catalog.txt"
	schema := "people (id int pk, name string)\norders (id int, person int)\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, "catalog.txt"), []byte(schema), 0o644))

	db := openDB(t, cfg)
	assert.Equal(t, []string{"orders", "people"}, db.Catalog().TableNames())

	id, err := db.Catalog().GetTableID("people")
	require.NoError(t, err)
	pkey, err := db.Catalog().GetPrimaryKey(id)
	require.NoError(t, err)
	assert.Equal(t, "id", pkey)
}

func TestOpen_MissingCatalogFileIsIgnored(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogFile = "nope.txt"
	db := openDB(t, cfg)
	assert.Empty(t, db.Catalog().TableNames())
}

func TestRunInTransaction_Commit(t *testing.T) {
	db := openDB(t, testConfig(t))
	id, err := db.CreateTable("people", peopleDesc(t), "id")
	require.NoError(t, err)

	require.NoError(t, insertPeople(t, db, id, "ann", "bob", "cy"))
	assert.Equal(t, 3, countRows(t, db, id))

	info := db.Info()
	assert.Equal(t, int64(2), info.Committed)
	assert.Equal(t, int64(0), info.Aborted)
}

func TestRunInTransaction_AbortOnError(t *testing.T) {
	db := openDB(t, testConfig(t))
	id, err := db.CreateTable("people", peopleDesc(t), "id")
	require.NoError(t, err)
	require.NoError(t, insertPeople(t, db, id, "ann"))

	boom := errors.New("boom")
	ctx := context.Background()
	err = db.RunInTransaction(ctx, func(tid *primitives.TransactionID) error {
		row, err := tuple.FromFields(peopleDesc(t), types.NewIntField(9), types.NewStringField("zed"))
		require.NoError(t, err)
		require.NoError(t, db.BufferPool().InsertTuple(ctx, tid, id, row))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 1, countRows(t, db, id))
	assert.Equal(t, int64(1), db.Info().Aborted)
}

func TestRunInTransaction_AbortedErrorPassesThrough(t *testing.T) {
	db := openDB(t, testConfig(t))
	err := db.RunInTransaction(context.Background(), func(*primitives.TransactionID) error {
		return dberror.TransactionAborted("chosen as deadlock victim")
	})
	assert.True(t, dberror.IsTransactionAborted(err))
	assert.Equal(t, int64(1), db.Info().Aborted)
}

func TestClose_PersistsAcrossReopen(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogFile = "catalog.txt"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, "catalog.txt"), []byte("people (id int, name string)"), 0o644))

	db, err := Open(cfg)
	require.NoError(t, err)
	id, err := db.Catalog().GetTableID("people")
	require.NoError(t, err)
	require.NoError(t, insertPeople(t, db, id, "ann", "bob"))
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	db = openDB(t, cfg)
	id, err = db.Catalog().GetTableID("people")
	require.NoError(t, err)
	assert.Equal(t, 2, countRows(t, db, id))
}

func TestStats(t *testing.T) {
	db := openDB(t, testConfig(t))
	id, err := db.CreateTable("people", peopleDesc(t), "")
	require.NoError(t, err)
	require.NoError(t, insertPeople(t, db, id, "a", "b", "c", "d"))

	ts, err := db.Stats().Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(4), ts.TotalTuples())
}

func TestCollect(t *testing.T) {
	db := openDB(t, testConfig(t))
	id, err := db.CreateTable("people", peopleDesc(t), "")
	require.NoError(t, err)
	require.NoError(t, insertPeople(t, db, id, "ann", "bob"))

	var res *Result
	err = db.RunInTransaction(context.Background(), func(tid *primitives.TransactionID) error {
		scan, err := execution.NewSeqScan(context.Background(), tid, id, "p", db.Catalog(), db.BufferPool())
		if err != nil {
			return err
		}
		res, err = Collect(scan)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p.id", "p.name"}, res.Columns)
	assert.Equal(t, [][]string{{"0", "ann"}, {"1", "bob"}}, res.Rows)
}
