package lock

import (
	"slices"

	"heapdb/pkg/primitives"
)

// LockTable indexes granted locks both by page and by transaction.
type LockTable struct {
	pageLocks        map[primitives.PageID][]*Lock
	transactionLocks map[*primitives.TransactionID]map[primitives.PageID]LockType
}

func NewLockTable() *LockTable {
	return &LockTable{
		pageLocks:        make(map[primitives.PageID][]*Lock),
		transactionLocks: make(map[*primitives.TransactionID]map[primitives.PageID]LockType),
	}
}

// HasSufficientLock checks if the transaction already holds a lock at least as
// strong as reqLockType on the page.
func (lt *LockTable) HasSufficientLock(tid *primitives.TransactionID, pid primitives.PageID, reqLockType LockType) bool {
	current, ok := lt.lockOf(tid, pid)
	if !ok {
		return false
	}
	return current == ExclusiveLock || reqLockType == SharedLock
}

func (lt *LockTable) HasLockType(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) bool {
	current, ok := lt.lockOf(tid, pid)
	return ok && current == lockType
}

func (lt *LockTable) lockOf(tid *primitives.TransactionID, pid primitives.PageID) (LockType, bool) {
	pages, exists := lt.transactionLocks[tid]
	if !exists {
		return SharedLock, false
	}
	current, ok := pages[pid]
	return current, ok
}

func (lt *LockTable) GetPageLocks(pid primitives.PageID) []*Lock {
	return lt.pageLocks[pid]
}

func (lt *LockTable) AddLock(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) {
	lt.pageLocks[pid] = append(lt.pageLocks[pid], NewLock(tid, lockType))

	if lt.transactionLocks[tid] == nil {
		lt.transactionLocks[tid] = make(map[primitives.PageID]LockType)
	}
	lt.transactionLocks[tid][pid] = lockType
}

func (lt *LockTable) IsPageLocked(pid primitives.PageID) bool {
	return len(lt.pageLocks[pid]) > 0
}

// HasExclusiveHolder reports whether any transaction holds X on the page.
func (lt *LockTable) HasExclusiveHolder(pid primitives.PageID) bool {
	return slices.ContainsFunc(lt.pageLocks[pid], func(l *Lock) bool {
		return l.LockType == ExclusiveLock
	})
}

// UpgradeLock turns tid's shared lock on pid into an exclusive one in place.
func (lt *LockTable) UpgradeLock(tid *primitives.TransactionID, pid primitives.PageID) {
	for _, lock := range lt.pageLocks[pid] {
		if lock.TID == tid {
			lock.LockType = ExclusiveLock
			break
		}
	}
	if pages, ok := lt.transactionLocks[tid]; ok {
		pages[pid] = ExclusiveLock
	}
}

// PagesOf returns the pages tid holds locks on, in no particular order.
func (lt *LockTable) PagesOf(tid *primitives.TransactionID) []primitives.PageID {
	pages := lt.transactionLocks[tid]
	out := make([]primitives.PageID, 0, len(pages))
	for pid := range pages {
		out = append(out, pid)
	}
	return out
}

// ReleaseAllLocks drops every lock of tid and returns the affected pages.
func (lt *LockTable) ReleaseAllLocks(tid *primitives.TransactionID) []primitives.PageID {
	if _, exists := lt.transactionLocks[tid]; !exists {
		return nil
	}

	affected := lt.PagesOf(tid)
	for _, pid := range affected {
		lt.removeFromPage(tid, pid)
	}
	delete(lt.transactionLocks, tid)
	return affected
}

func (lt *LockTable) ReleaseLock(tid *primitives.TransactionID, pid primitives.PageID) {
	lt.removeFromPage(tid, pid)

	if pages, exists := lt.transactionLocks[tid]; exists {
		delete(pages, pid)
		if len(pages) == 0 {
			delete(lt.transactionLocks, tid)
		}
	}
}

func (lt *LockTable) removeFromPage(tid *primitives.TransactionID, pid primitives.PageID) {
	locks, exists := lt.pageLocks[pid]
	if !exists {
		return
	}
	kept := slices.DeleteFunc(slices.Clone(locks), func(l *Lock) bool {
		return l.TID == tid
	})
	updateOrDelete(lt.pageLocks, pid, kept)
}
