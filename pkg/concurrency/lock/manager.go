package lock

import (
	"context"
	"sync"

	"heapdb/pkg/dberror"
	"heapdb/pkg/logging"
	"heapdb/pkg/primitives"
)

// LockManager grants page-level shared and exclusive locks to transactions
// and resolves deadlocks by aborting the requester that closes a cycle.
type LockManager struct {
	mutex       sync.Mutex
	lockTable   *LockTable
	waitQueue   *WaitQueue
	depGraph    *DependencyGraph
	lockGrantor *LockGrantor

	// released is closed and dropped whenever a lock on the page is released.
	released map[primitives.PageID]chan struct{}
}

func NewLockManager() *LockManager {
	lockTable := NewLockTable()
	waitQueue := NewWaitQueue()
	depGraph := NewDependencyGraph()

	return &LockManager{
		lockTable:   lockTable,
		waitQueue:   waitQueue,
		depGraph:    depGraph,
		lockGrantor: NewLockGrantor(lockTable, waitQueue, depGraph),
		released:    make(map[primitives.PageID]chan struct{}),
	}
}

// LockPage acquires a shared or exclusive lock on pid for tid, blocking the
// calling goroutine until the lock is compatible with every other holder.
//
// If waiting would close a cycle in the wait-for graph the request is
// withdrawn and TRANSACTION_ABORTED is returned; the caller is expected to
// abort tid. Cancelling ctx withdraws the request and returns ctx.Err().
func (lm *LockManager) LockPage(ctx context.Context, tid *primitives.TransactionID, pid primitives.PageID, exclusive bool) error {
	if tid == nil {
		return dberror.New(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg, "transaction ID cannot be nil").
			At("LockPage", "LockManager")
	}

	lockType := SharedLock
	if exclusive {
		lockType = ExclusiveLock
	}

	lm.mutex.Lock()
	for {
		if lm.tryAcquire(tid, pid, lockType) {
			lm.mutex.Unlock()
			return nil
		}

		if !lm.waitQueue.IsWaiting(tid, pid) {
			if err := lm.waitQueue.Add(tid, pid, lockType); err != nil {
				lm.mutex.Unlock()
				return err
			}
		}
		for _, holder := range lm.lockGrantor.Conflicting(tid, pid, lockType) {
			lm.depGraph.AddEdge(tid, holder)
		}

		if lm.depGraph.HasCycleFrom(tid) {
			lm.withdraw(tid, pid)
			lm.mutex.Unlock()
			logging.WithLock(tid, pid).Warn("deadlock detected, aborting requester", "mode", lockType.String())
			return dberror.TransactionAborted("deadlock on "+pid.String()).At("LockPage", "LockManager")
		}

		wake := lm.releaseChan(pid)
		lm.mutex.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			lm.mutex.Lock()
			lm.withdraw(tid, pid)
			lm.mutex.Unlock()
			return ctx.Err()
		}

		lm.mutex.Lock()
	}
}

// tryAcquire grants the lock if possible. Callers hold lm.mutex.
func (lm *LockManager) tryAcquire(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) bool {
	if lm.lockTable.HasSufficientLock(tid, pid, lockType) {
		lm.withdraw(tid, pid)
		return true
	}

	if lockType == ExclusiveLock && lm.lockTable.HasLockType(tid, pid, SharedLock) {
		if !lm.lockGrantor.CanUpgradeLock(tid, pid) {
			return false
		}
		lm.lockGrantor.GrantLock(tid, pid, ExclusiveLock)
		return true
	}

	if lm.lockGrantor.CanGrantImmediately(tid, pid, lockType) {
		lm.lockGrantor.GrantLock(tid, pid, lockType)
		return true
	}
	return false
}

func (lm *LockManager) withdraw(tid *primitives.TransactionID, pid primitives.PageID) {
	lm.waitQueue.RemoveRequest(tid, pid)
	lm.depGraph.RemoveWaiter(tid)
}

func (lm *LockManager) releaseChan(pid primitives.PageID) chan struct{} {
	ch, ok := lm.released[pid]
	if !ok {
		ch = make(chan struct{})
		lm.released[pid] = ch
	}
	return ch
}

func (lm *LockManager) wakeWaiters(pid primitives.PageID) {
	if ch, ok := lm.released[pid]; ok {
		close(ch)
		delete(lm.released, pid)
	}
}

// UnlockPage releases tid's lock on pid and wakes the page's waiters.
func (lm *LockManager) UnlockPage(tid *primitives.TransactionID, pid primitives.PageID) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.lockTable.ReleaseLock(tid, pid)
	for _, req := range lm.waitQueue.GetRequests(pid) {
		lm.depGraph.RemoveEdge(req.TID, tid)
	}
	lm.wakeWaiters(pid)
}

// UnlockAllPages releases every lock tid holds and forgets its wait state.
// Called once at commit or abort.
func (lm *LockManager) UnlockAllPages(tid *primitives.TransactionID) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	pages := lm.lockTable.ReleaseAllLocks(tid)
	lm.depGraph.RemoveTransaction(tid)
	lm.waitQueue.RemoveAllForTransaction(tid)

	for _, pid := range pages {
		lm.wakeWaiters(pid)
	}
}

// IsPageLocked reports whether any transaction holds a lock on pid.
func (lm *LockManager) IsPageLocked(pid primitives.PageID) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	return lm.lockTable.IsPageLocked(pid)
}

func (lm *LockManager) HoldsLock(tid *primitives.TransactionID, pid primitives.PageID) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	return lm.lockTable.HasSufficientLock(tid, pid, SharedLock)
}

func (lm *LockManager) HasExclusiveHolder(pid primitives.PageID) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	return lm.lockTable.HasExclusiveHolder(pid)
}

// LockedPages returns the pages tid currently holds locks on.
func (lm *LockManager) LockedPages(tid *primitives.TransactionID) []primitives.PageID {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	return lm.lockTable.PagesOf(tid)
}
