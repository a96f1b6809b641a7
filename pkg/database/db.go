// Package database wires the catalog, lock manager, buffer pool and
// statistics into one handle.
package database

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"heapdb/pkg/catalog"
	"heapdb/pkg/concurrency/lock"
	"heapdb/pkg/config"
	"heapdb/pkg/dberror"
	"heapdb/pkg/logging"
	"heapdb/pkg/memory"
	"heapdb/pkg/optimizer/statistics"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/heap"
	"heapdb/pkg/tuple"
)

// Database owns every component of an open database.
type Database struct {
	cfg         *config.Config
	catalog     *catalog.TableManager
	lockManager *lock.LockManager
	pool        *memory.BufferPool
	stats       *statistics.Registry
	ownsLogger  bool

	committed atomic.Int64
	aborted   atomic.Int64

	closeOnce sync.Once
	closeErr  error
}

// Info is a snapshot of database counters.
type Info struct {
	Tables    []string
	Committed int64
	Aborted   int64
	Pool      memory.Stats
}

// Open creates the data directory, loads the catalog file if one is
// configured and present, and builds the buffer pool over it.
func Open(cfg *config.Config) (*Database, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db := &Database{cfg: cfg}
	if err := logging.Init(cfg.Logging()); err == nil {
		db.ownsLogger = true
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		db.closeLogger()
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db.catalog = catalog.NewTableManager()
	if path := cfg.CatalogPath(); path != "" && path.Exists() {
		names, err := db.catalog.LoadSchema(path, cfg.BufferPool.PageSize)
		if err != nil {
			_ = db.catalog.Close()
			db.closeLogger()
			return nil, err
		}
		logging.WithComponent("database").Info("catalog loaded", "path", path.String(), "tables", len(names))
	}

	db.lockManager = lock.NewLockManager()
	db.pool = memory.NewBufferPool(db.catalog, db.lockManager, cfg.BufferPool.Pages)

	stats, err := statistics.NewRegistry(db.catalog, db.pool, cfg.Stats.CacheEntries, cfg.Stats.Buckets)
	if err != nil {
		_ = db.catalog.Close()
		db.closeLogger()
		return nil, err
	}
	db.stats = stats
	return db, nil
}

// CreateTable opens or creates <DataDir>/<name>.dat with schema td and
// registers it.
func (db *Database) CreateTable(name string, td *tuple.TupleDescription, pkey string) (primitives.TableID, error) {
	path := primitives.Filepath(db.cfg.DataDir).Join(name + ".dat")
	hf, err := heap.NewHeapFile(path, td, db.cfg.BufferPool.PageSize)
	if err != nil {
		return 0, err
	}
	if _, err := db.catalog.AddTable(hf, name, pkey); err != nil {
		_ = hf.Close()
		return 0, err
	}
	return hf.GetID(), nil
}

func (db *Database) Begin() *primitives.TransactionID {
	return db.pool.Begin()
}

// Commit flushes tid's pages and releases its locks.
func (db *Database) Commit(ctx context.Context, tid *primitives.TransactionID) error {
	if err := db.pool.TransactionComplete(ctx, tid, true); err != nil {
		return err
	}
	db.committed.Add(1)
	return nil
}

// Abort discards tid's changes and releases its locks.
func (db *Database) Abort(ctx context.Context, tid *primitives.TransactionID) error {
	if err := db.pool.TransactionComplete(ctx, tid, false); err != nil {
		return err
	}
	db.aborted.Add(1)
	return nil
}

// RunInTransaction runs fn in a new transaction. The transaction commits
// when fn returns nil and aborts otherwise, including when fn was chosen
// as a deadlock victim. fn's error is returned unchanged.
func (db *Database) RunInTransaction(ctx context.Context, fn func(tid *primitives.TransactionID) error) error {
	tid := db.Begin()

	if err := fn(tid); err != nil {
		if abortErr := db.Abort(ctx, tid); abortErr != nil {
			logging.WithTx(tid).Error("abort failed", "error", abortErr, "cause", err)
		}
		if dberror.IsTransactionAborted(err) {
			logging.WithTx(tid).Info("transaction aborted", "reason", err.Error())
		}
		return err
	}
	return db.Commit(ctx, tid)
}

func (db *Database) Catalog() *catalog.TableManager { return db.catalog }
func (db *Database) BufferPool() *memory.BufferPool { return db.pool }
func (db *Database) Stats() *statistics.Registry    { return db.stats }
func (db *Database) LockManager() *lock.LockManager { return db.lockManager }
func (db *Database) Config() *config.Config         { return db.cfg }

func (db *Database) Info() Info {
	return Info{
		Tables:    db.catalog.TableNames(),
		Committed: db.committed.Load(),
		Aborted:   db.aborted.Load(),
		Pool:      db.pool.Stats(),
	}
}

// Close flushes every cached page, closes the table files and the stats
// cache. It is safe to call more than once.
func (db *Database) Close() error {
	db.closeOnce.Do(func() {
		if err := db.pool.FlushAllPages(context.Background()); err != nil {
			db.closeErr = fmt.Errorf("flushing pages: %w", err)
		}
		db.stats.Close()
		if err := db.catalog.Close(); err != nil && db.closeErr == nil {
			db.closeErr = err
		}
		db.closeLogger()
	})
	return db.closeErr
}

func (db *Database) closeLogger() {
	if db.ownsLogger {
		_ = logging.Close()
		db.ownsLogger = false
	}
}
