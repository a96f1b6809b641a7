package memory

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"heapdb/pkg/concurrency/lock"
	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/dberror"
	"heapdb/pkg/logging"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// DefaultCapacity is the number of pages a pool holds when none is configured.
const DefaultCapacity = 50

// Catalog is the table lookup the buffer pool needs to reach a page's file.
type Catalog interface {
	GetDbFile(tableID primitives.TableID) (page.DbFile, error)
	GetTupleDesc(tableID primitives.TableID) (*tuple.TupleDescription, error)
	GetTableID(name string) (primitives.TableID, error)
}

// Stats is a point-in-time snapshot of pool counters.
type Stats struct {
	Pages      int
	DirtyPages int
	Capacity   int
	Hits       uint64
	Misses     uint64
	Evictions  uint64

	ActiveTransactions int
}

// BufferPool caches up to capacity pages and is the only path from operators
// to page contents. Every GetPage first takes the matching page lock, so
// pages handed out are always protected by strict two-phase locking.
//
// Eviction may steal a dirty page: the page is written to disk and its
// committed before-image is kept in the owning transaction's context so an
// abort can put it back.
type BufferPool struct {
	catalog      Catalog
	lockManager  *lock.LockManager
	transactions *transaction.TransactionRegistry
	cache        *LRUPageCache
	capacity     int

	mutex     sync.Mutex
	hits      uint64
	misses    uint64
	evictions uint64
}

// NewBufferPool creates a pool over catalog that holds at most capacity pages.
// A non-positive capacity selects DefaultCapacity.
func NewBufferPool(catalog Catalog, lm *lock.LockManager, capacity int) *BufferPool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &BufferPool{
		catalog:      catalog,
		lockManager:  lm,
		transactions: transaction.NewTransactionRegistry(),
		cache:        NewLRUPageCache(capacity),
		capacity:     capacity,
	}
}

// Begin starts a transaction and returns its id.
func (bp *BufferPool) Begin() *primitives.TransactionID {
	txCtx := bp.transactions.Begin()
	logging.WithTx(txCtx.ID).Debug("transaction started")
	return txCtx.ID
}

// Transaction returns the bookkeeping of a live transaction.
func (bp *BufferPool) Transaction(tid *primitives.TransactionID) (*transaction.TransactionContext, error) {
	return bp.transactions.Get(tid)
}

// GetPage returns pid for tid with the requested permission.
//
// The page lock is acquired before the pool mutex, so a transaction waiting
// for a lock never blocks other transactions from using the pool. A deadlock
// surfaces as TRANSACTION_ABORTED; a page that cannot be made room for as
// BUFFER_POOL_FULL.
func (bp *BufferPool) GetPage(ctx context.Context, tid *primitives.TransactionID, pid primitives.PageID, perm page.Permissions) (page.Page, error) {
	if err := bp.lockManager.LockPage(ctx, tid, pid, perm == page.ReadWrite); err != nil {
		return nil, err
	}
	bp.transactions.GetOrCreate(tid).RecordPageAccess(pid, perm)

	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	if p, ok := bp.cache.Get(pid); ok {
		bp.hits++
		return p, nil
	}
	bp.misses++

	dbFile, err := bp.catalog.GetDbFile(pid.TableID)
	if err != nil {
		return nil, err
	}
	p, err := dbFile.ReadPage(pid)
	if err != nil {
		return nil, err
	}

	if err := bp.admitLocked(p); err != nil {
		return nil, err
	}
	return p, nil
}

// admitLocked puts p in the cache, evicting one page first when full.
func (bp *BufferPool) admitLocked(p page.Page) error {
	if _, ok := bp.cache.Peek(p.GetID()); !ok && bp.cache.Size() >= bp.capacity {
		if err := bp.evictLocked(); err != nil {
			return err
		}
	}
	return bp.cache.Put(p.GetID(), p)
}

// evictLocked drops one page, walking the cache from least to most recently
// used. Clean unlocked pages go first, then clean pages nobody holds
// exclusively, and only then a dirty page, which is written out before it is
// dropped.
func (bp *BufferPool) evictLocked() error {
	order := bp.cache.GetAll()

	for _, pid := range order {
		p, _ := bp.cache.Peek(pid)
		if p.IsDirty() == nil && !bp.lockManager.IsPageLocked(pid) {
			return bp.dropLocked(pid, "clean")
		}
	}

	for _, pid := range order {
		p, _ := bp.cache.Peek(pid)
		if p.IsDirty() == nil && !bp.lockManager.HasExclusiveHolder(pid) {
			return bp.dropLocked(pid, "shared")
		}
	}

	for _, pid := range order {
		p, _ := bp.cache.Peek(pid)
		owner := p.IsDirty()
		if owner == nil {
			continue
		}
		bp.transactions.GetOrCreate(owner).RecordStolenPage(pid, p.GetBeforeImage().GetPageData())
		if err := bp.writeLocked(p); err != nil {
			return err
		}
		return bp.dropLocked(pid, "stolen")
	}

	return dberror.New(dberror.ErrCategoryStorage, dberror.CodeBufferPoolFull, "no evictable page").
		WithDetail("all %d pages are exclusively locked", bp.cache.Size()).
		At("evict", "BufferPool")
}

func (bp *BufferPool) dropLocked(pid primitives.PageID, reason string) error {
	bp.cache.Remove(pid)
	bp.evictions++
	logging.WithPage(pid).Debug("page evicted", "reason", reason)
	return nil
}

// writeLocked writes p to its file and marks it clean.
func (bp *BufferPool) writeLocked(p page.Page) error {
	pid := p.GetID()
	dbFile, err := bp.catalog.GetDbFile(pid.TableID)
	if err != nil {
		return err
	}
	if err := dbFile.WritePage(p); err != nil {
		return err
	}
	p.MarkDirty(false, nil)
	logging.WithPage(pid).Debug("page flushed")
	return nil
}

// ReleasePage drops tid's lock on pid before the transaction ends. This
// breaks two-phase locking and is only safe for pages tid did not modify.
func (bp *BufferPool) ReleasePage(tid *primitives.TransactionID, pid primitives.PageID) {
	bp.lockManager.UnlockPage(tid, pid)
}

// HoldsLock reports whether tid holds any lock on pid.
func (bp *BufferPool) HoldsLock(tid *primitives.TransactionID, pid primitives.PageID) bool {
	return bp.lockManager.HoldsLock(tid, pid)
}

// InsertTuple adds t to tableID on behalf of tid. Modified pages are marked
// dirty and stay in the pool until the transaction completes.
func (bp *BufferPool) InsertTuple(ctx context.Context, tid *primitives.TransactionID, tableID primitives.TableID, t *tuple.Tuple) error {
	dbFile, err := bp.catalog.GetDbFile(tableID)
	if err != nil {
		return err
	}

	pages, err := dbFile.InsertTuple(ctx, tid, t, bp)
	if err != nil {
		return err
	}

	txCtx := bp.transactions.GetOrCreate(tid)
	txCtx.RecordTupleWrite()
	return bp.markDirty(txCtx, pages)
}

// DeleteTuple removes t, located by its RecordID, on behalf of tid.
func (bp *BufferPool) DeleteTuple(ctx context.Context, tid *primitives.TransactionID, t *tuple.Tuple) error {
	if t == nil || t.RecordID == nil {
		return dberror.New(dberror.ErrCategoryConstraint, dberror.CodeTupleNotFound, "tuple has no record id").
			At("DeleteTuple", "BufferPool")
	}

	dbFile, err := bp.catalog.GetDbFile(t.RecordID.PageID.TableID)
	if err != nil {
		return err
	}

	p, err := dbFile.DeleteTuple(ctx, tid, t, bp)
	if err != nil {
		return err
	}

	txCtx := bp.transactions.GetOrCreate(tid)
	txCtx.RecordTupleDelete()
	return bp.markDirty(txCtx, []page.Page{p})
}

func (bp *BufferPool) markDirty(txCtx *transaction.TransactionContext, pages []page.Page) error {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	for _, p := range pages {
		p.MarkDirty(true, txCtx.ID)
		txCtx.MarkPageDirty(p.GetID())
		if err := bp.admitLocked(p); err != nil {
			return err
		}
	}
	return nil
}

// FlushPage writes pid to disk if it is cached and dirty. The page stays cached.
func (bp *BufferPool) FlushPage(pid primitives.PageID) error {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	p, ok := bp.cache.Peek(pid)
	if !ok || p.IsDirty() == nil {
		return nil
	}
	return bp.writeLocked(p)
}

// FlushAllPages writes every dirty cached page, including uncommitted ones.
// Meant for shutdown and diagnostics only.
func (bp *BufferPool) FlushAllPages(ctx context.Context) error {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	var dirty []page.Page
	for _, pid := range bp.cache.GetAll() {
		if p, _ := bp.cache.Peek(pid); p.IsDirty() != nil {
			dirty = append(dirty, p)
		}
	}
	return bp.flushByTableLocked(ctx, dirty)
}

// flushByTableLocked writes pages with one goroutine per table; pages of a
// single table are written in order.
func (bp *BufferPool) flushByTableLocked(ctx context.Context, pages []page.Page) error {
	byTable := make(map[primitives.TableID][]page.Page)
	for _, p := range pages {
		tableID := p.GetID().TableID
		byTable[tableID] = append(byTable[tableID], p)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, tablePages := range byTable {
		g.Go(func() error {
			for _, p := range tablePages {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := bp.writeLocked(p); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// DiscardPage drops pid from the pool without writing it.
func (bp *BufferPool) DiscardPage(pid primitives.PageID) {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()
	bp.cache.Remove(pid)
}

// TransactionComplete commits or aborts tid.
//
// Commit writes every page tid dirtied and makes the written bytes the new
// before-image. Abort drops those pages from the pool and writes back the
// before-image of any page eviction stole from tid. A commit whose writes
// fail is aborted before the error is returned. Either way all of tid's
// locks are released.
func (bp *BufferPool) TransactionComplete(ctx context.Context, tid *primitives.TransactionID, commit bool) error {
	defer bp.lockManager.UnlockAllPages(tid)

	txCtx, err := bp.transactions.Get(tid)
	if err != nil {
		// never touched a page
		return nil
	}
	defer bp.transactions.Remove(tid)

	log := logging.WithTx(tid)

	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	if commit {
		txCtx.SetStatus(transaction.TxCommitting)

		var dirty []page.Page
		for _, pid := range txCtx.GetDirtyPages() {
			if p, ok := bp.cache.Peek(pid); ok && p.IsDirty() == tid {
				dirty = append(dirty, p)
			}
		}
		if err := bp.flushByTableLocked(ctx, dirty); err != nil {
			log.Error("commit flush failed, aborting", "error", err)
			// pages written before the failure are on disk and must be put back
			for _, p := range dirty {
				txCtx.RecordStolenPage(p.GetID(), p.GetBeforeImage().GetPageData())
			}
			if abortErr := bp.abortLocked(txCtx); abortErr != nil {
				return errors.Join(err, abortErr)
			}
			return err
		}
		for _, p := range dirty {
			p.SetBeforeImage()
		}

		txCtx.SetStatus(transaction.TxCommitted)
		st := txCtx.GetStatistics()
		log.Info("transaction committed", "pages", len(dirty),
			"tuples_written", st.TuplesWritten, "tuples_deleted", st.TuplesDeleted, "duration", txCtx.Duration())
		return nil
	}

	return bp.abortLocked(txCtx)
}

// abortLocked drops every page the transaction dirtied and writes back the
// before-image of each page that already reached disk. Pages are dropped
// before any write is attempted, so a failed restore never leaves
// uncommitted bytes in the cache.
func (bp *BufferPool) abortLocked(txCtx *transaction.TransactionContext) error {
	log := logging.WithTx(txCtx.ID)
	txCtx.SetStatus(transaction.TxAborting)
	for _, pid := range txCtx.GetDirtyPages() {
		bp.cache.Remove(pid)
	}

	stolen := txCtx.StolenPages()
	var errs []error
	for pid, before := range stolen {
		bp.cache.Remove(pid)
		dbFile, err := bp.catalog.GetDbFile(pid.TableID)
		if err == nil {
			err = dbFile.WritePageData(pid.PageNo, before)
		}
		if err != nil {
			log.Error("restoring stolen page failed", "page", pid.String(), "error", err)
			errs = append(errs, err)
		}
	}

	txCtx.SetStatus(transaction.TxAborted)
	log.Info("transaction aborted", "discarded", len(txCtx.GetDirtyPages()), "restored", len(stolen)-len(errs))
	return errors.Join(errs...)
}

// Size returns the number of cached pages.
func (bp *BufferPool) Size() int {
	return bp.cache.Size()
}

func (bp *BufferPool) Capacity() int {
	return bp.capacity
}

func (bp *BufferPool) Stats() Stats {
	bp.mutex.Lock()
	defer bp.mutex.Unlock()

	s := Stats{
		Pages:     bp.cache.Size(),
		Capacity:  bp.capacity,
		Hits:      bp.hits,
		Misses:    bp.misses,
		Evictions: bp.evictions,

		ActiveTransactions: bp.transactions.Live(),
	}
	for _, pid := range bp.cache.GetAll() {
		if p, _ := bp.cache.Peek(pid); p.IsDirty() != nil {
			s.DirtyPages++
		}
	}
	return s
}
