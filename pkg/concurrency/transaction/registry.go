package transaction

import (
	"sync"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
)

// TransactionRegistry maps live transaction ids to their contexts. Entries
// are keyed by the numeric id, so two TransactionID values with the same id
// share a context.
type TransactionRegistry struct {
	mutex sync.Mutex
	live  map[int64]*TransactionContext
}

func NewTransactionRegistry() *TransactionRegistry {
	return &TransactionRegistry{live: make(map[int64]*TransactionContext)}
}

// Begin allocates a new id and registers an active context for it.
func (tr *TransactionRegistry) Begin() *TransactionContext {
	return tr.GetOrCreate(primitives.NewTransactionID())
}

// Get returns tid's context, or ILLEGAL_STATE if tid never touched the pool
// or has already completed.
func (tr *TransactionRegistry) Get(tid *primitives.TransactionID) (*TransactionContext, error) {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	if tid != nil {
		if tc, ok := tr.live[tid.ID()]; ok {
			return tc, nil
		}
	}
	return nil, dberror.Newf(dberror.ErrCategoryProtocol, dberror.CodeIllegalState, "transaction %s is not live", tid).
		At("Get", "TransactionRegistry")
}

func (tr *TransactionRegistry) GetOrCreate(tid *primitives.TransactionID) *TransactionContext {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	if tc, ok := tr.live[tid.ID()]; ok {
		return tc
	}
	tc := NewTransactionContext(tid)
	tr.live[tid.ID()] = tc
	return tc
}

func (tr *TransactionRegistry) Remove(tid *primitives.TransactionID) {
	tr.mutex.Lock()
	delete(tr.live, tid.ID())
	tr.mutex.Unlock()
}

// Live returns the number of registered transactions that are still active.
func (tr *TransactionRegistry) Live() int {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	n := 0
	for _, tc := range tr.live {
		if tc.IsActive() {
			n++
		}
	}
	return n
}
