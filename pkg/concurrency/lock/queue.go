package lock

import (
	"slices"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
)

// WaitQueue holds the lock requests that could not be granted on arrival.
//
// Requests are kept per page in arrival order, with a reverse index from each
// transaction to the pages it is parked on so an aborting transaction can be
// swept out in one call.
type WaitQueue struct {
	pageWaitQueue      map[primitives.PageID][]*LockRequest
	transactionWaiting map[*primitives.TransactionID][]primitives.PageID
}

func NewWaitQueue() *WaitQueue {
	return &WaitQueue{
		pageWaitQueue:      make(map[primitives.PageID][]*LockRequest),
		transactionWaiting: make(map[*primitives.TransactionID][]primitives.PageID),
	}
}

// Add appends tid's request to the page queue. A transaction may be parked on
// a given page only once.
func (wq *WaitQueue) Add(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) error {
	if wq.IsWaiting(tid, pid) {
		return dberror.Newf(dberror.ErrCategoryProtocol, dberror.CodeIllegalState,
			"%s already waiting on %s", tid, pid).At("Add", "WaitQueue")
	}

	wq.pageWaitQueue[pid] = append(wq.pageWaitQueue[pid], NewLockRequest(tid, lockType))
	wq.transactionWaiting[tid] = append(wq.transactionWaiting[tid], pid)
	return nil
}

// RemoveRequest drops the (tid, pid) request from both indexes.
func (wq *WaitQueue) RemoveRequest(tid *primitives.TransactionID, pid primitives.PageID) {
	if queue, ok := wq.pageWaitQueue[pid]; ok {
		kept := slices.DeleteFunc(slices.Clone(queue), func(req *LockRequest) bool {
			return req.TID == tid
		})
		updateOrDelete(wq.pageWaitQueue, pid, kept)
	}

	if pages, ok := wq.transactionWaiting[tid]; ok {
		updateOrDelete(wq.transactionWaiting, tid, slices.DeleteFunc(slices.Clone(pages), pid.Equals))
	}
}

// RemoveAllForTransaction clears every request tid has outstanding.
func (wq *WaitQueue) RemoveAllForTransaction(tid *primitives.TransactionID) {
	for _, pid := range slices.Clone(wq.transactionWaiting[tid]) {
		wq.RemoveRequest(tid, pid)
	}
}

// GetRequests returns a copy of the page's queue, oldest first.
func (wq *WaitQueue) GetRequests(pid primitives.PageID) []*LockRequest {
	return slices.Clone(wq.pageWaitQueue[pid])
}

func (wq *WaitQueue) GetPagesRequestedFor(tid *primitives.TransactionID) []primitives.PageID {
	return slices.Clone(wq.transactionWaiting[tid])
}

func (wq *WaitQueue) IsWaiting(tid *primitives.TransactionID, pid primitives.PageID) bool {
	return slices.ContainsFunc(wq.pageWaitQueue[pid], func(req *LockRequest) bool {
		return req.TID == tid
	})
}
