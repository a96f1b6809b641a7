package lock

import (
	"slices"

	"heapdb/pkg/primitives"
)

// LockGrantor decides whether a request is compatible with the locks already
// granted and performs the grant.
type LockGrantor struct {
	lockTable *LockTable
	waitQueue *WaitQueue
	depGraph  *DependencyGraph
}

func NewLockGrantor(l *LockTable, w *WaitQueue, d *DependencyGraph) *LockGrantor {
	return &LockGrantor{
		lockTable: l,
		waitQueue: w,
		depGraph:  d,
	}
}

// Conflicting returns the transactions other than tid whose locks on pid are
// incompatible with lockType.
func (lg *LockGrantor) Conflicting(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) []*primitives.TransactionID {
	var holders []*primitives.TransactionID
	for _, l := range lg.lockTable.GetPageLocks(pid) {
		if l.TID != tid && lockType.conflicts(l.LockType) {
			holders = append(holders, l.TID)
		}
	}
	return holders
}

// CanGrantImmediately reports whether lockType on pid conflicts with no other holder.
func (lg *LockGrantor) CanGrantImmediately(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) bool {
	return len(lg.Conflicting(tid, pid, lockType)) == 0
}

// CanUpgradeLock reports whether tid holds S on pid and is its only holder.
func (lg *LockGrantor) CanUpgradeLock(tid *primitives.TransactionID, pid primitives.PageID) bool {
	if !lg.lockTable.HasLockType(tid, pid, SharedLock) {
		return false
	}
	return !slices.ContainsFunc(lg.lockTable.GetPageLocks(pid), func(l *Lock) bool {
		return l.TID != tid
	})
}

// GrantLock records the lock, or upgrades the existing one, and retires tid's
// wait state. Transactions still parked on pid that conflict with the new lock
// gain a wait-for edge to tid.
func (lg *LockGrantor) GrantLock(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) {
	if lg.lockTable.HasLockType(tid, pid, SharedLock) && lockType == ExclusiveLock {
		lg.lockTable.UpgradeLock(tid, pid)
	} else {
		lg.lockTable.AddLock(tid, pid, lockType)
	}

	lg.waitQueue.RemoveRequest(tid, pid)
	lg.depGraph.RemoveWaiter(tid)

	for _, req := range lg.waitQueue.GetRequests(pid) {
		if req.TID != tid && req.LockType.conflicts(lockType) {
			lg.depGraph.AddEdge(req.TID, tid)
		}
	}
}
