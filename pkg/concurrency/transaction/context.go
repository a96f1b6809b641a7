package transaction

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
)

type TransactionStatus int

const (
	TxActive TransactionStatus = iota
	TxCommitting
	TxAborting
	TxCommitted
	TxAborted
)

var statusNames = [...]string{
	TxActive:     "ACTIVE",
	TxCommitting: "COMMITTING",
	TxAborting:   "ABORTING",
	TxCommitted:  "COMMITTED",
	TxAborted:    "ABORTED",
}

func (ts TransactionStatus) String() string {
	if ts < 0 || int(ts) >= len(statusNames) {
		return "UNKNOWN"
	}
	return statusNames[ts]
}

func (ts TransactionStatus) finished() bool {
	return ts == TxCommitted || ts == TxAborted
}

// TransactionStats is a snapshot of what a transaction has done so far.
type TransactionStats struct {
	PagesRead     int
	PagesWritten  int
	TuplesWritten int
	TuplesDeleted int
	LockedPages   int
	DirtyPages    int
	StolenPages   int
}

// TransactionContext is the buffer pool's per-transaction bookkeeping: the
// pages it touched and dirtied, and the before-images of dirty pages that
// eviction wrote out early.
type TransactionContext struct {
	ID *primitives.TransactionID

	mutex   sync.RWMutex
	status  TransactionStatus
	started time.Time
	ended   time.Time

	// strongest permission requested per page
	access map[primitives.PageID]page.Permissions
	dirty  map[primitives.PageID]struct{}
	stolen map[primitives.PageID][]byte

	counters TransactionStats
}

func NewTransactionContext(tid *primitives.TransactionID) *TransactionContext {
	return &TransactionContext{
		ID:      tid,
		status:  TxActive,
		started: time.Now(),
		access:  make(map[primitives.PageID]page.Permissions),
		dirty:   make(map[primitives.PageID]struct{}),
		stolen:  make(map[primitives.PageID][]byte),
	}
}

func (tc *TransactionContext) IsActive() bool {
	return tc.GetStatus() == TxActive
}

func (tc *TransactionContext) GetStatus() TransactionStatus {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.status
}

// SetStatus moves the transaction to status. Reaching COMMITTED or ABORTED
// freezes Duration.
func (tc *TransactionContext) SetStatus(status TransactionStatus) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.status = status
	if status.finished() {
		tc.ended = time.Now()
	}
}

// RecordPageAccess notes that the transaction fetched pid with perm.
// A ReadWrite record is never downgraded.
func (tc *TransactionContext) RecordPageAccess(pid primitives.PageID, perm page.Permissions) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if prev, ok := tc.access[pid]; ok && prev == page.ReadWrite {
		return
	}
	tc.access[pid] = perm
	if perm == page.ReadOnly {
		tc.counters.PagesRead++
	}
}

func (tc *TransactionContext) MarkPageDirty(pid primitives.PageID) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if _, ok := tc.dirty[pid]; !ok {
		tc.dirty[pid] = struct{}{}
		tc.counters.PagesWritten++
	}
}

// RecordStolenPage remembers the committed bytes of pid before eviction
// overwrote them with this transaction's uncommitted version. Only the first
// capture per page is kept.
func (tc *TransactionContext) RecordStolenPage(pid primitives.PageID, before []byte) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if _, ok := tc.stolen[pid]; !ok {
		tc.stolen[pid] = slices.Clone(before)
	}
}

// StolenPages returns a copy of the before-images captured by RecordStolenPage.
func (tc *TransactionContext) StolenPages() map[primitives.PageID][]byte {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return maps.Clone(tc.stolen)
}

func (tc *TransactionContext) GetDirtyPages() []primitives.PageID {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return slices.Collect(maps.Keys(tc.dirty))
}

func (tc *TransactionContext) GetPagePermission(pid primitives.PageID) (page.Permissions, bool) {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	perm, ok := tc.access[pid]
	return perm, ok
}

func (tc *TransactionContext) RecordTupleWrite() {
	tc.mutex.Lock()
	tc.counters.TuplesWritten++
	tc.mutex.Unlock()
}

func (tc *TransactionContext) RecordTupleDelete() {
	tc.mutex.Lock()
	tc.counters.TuplesDeleted++
	tc.mutex.Unlock()
}

func (tc *TransactionContext) GetStatistics() TransactionStats {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	s := tc.counters
	s.LockedPages = len(tc.access)
	s.DirtyPages = len(tc.dirty)
	s.StolenPages = len(tc.stolen)
	return s
}

// Duration is the time since Begin, or the total run time once finished.
func (tc *TransactionContext) Duration() time.Duration {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.durationLocked()
}

func (tc *TransactionContext) durationLocked() time.Duration {
	if tc.ended.IsZero() {
		return time.Since(tc.started)
	}
	return tc.ended.Sub(tc.started)
}

func (tc *TransactionContext) String() string {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	return fmt.Sprintf("%s %s after %v (%d dirty, %d locked)",
		tc.ID, tc.status, tc.durationLocked(), len(tc.dirty), len(tc.access))
}
