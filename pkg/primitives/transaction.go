package primitives

import (
	"strconv"
	"sync/atomic"
)

var lastTransactionID atomic.Int64

// TransactionID identifies a transaction. Within a process ids are handed
// out by NewTransactionID and compared by pointer; Equals compares the
// numeric id.
type TransactionID struct {
	id int64
}

func NewTransactionID() *TransactionID {
	return &TransactionID{id: lastTransactionID.Add(1)}
}

func (tid *TransactionID) ID() int64 { return tid.id }

func (tid *TransactionID) String() string { return "TID-" + strconv.FormatInt(tid.id, 10) }

func (tid *TransactionID) Equals(other *TransactionID) bool {
	if tid == nil || other == nil {
		return tid == other
	}
	return tid.id == other.id
}
