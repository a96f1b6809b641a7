package lock

import (
	"time"

	"heapdb/pkg/primitives"
)

type LockType int

const (
	SharedLock LockType = iota
	ExclusiveLock
)

func (lt LockType) String() string {
	if lt == ExclusiveLock {
		return "X"
	}
	return "S"
}

// conflicts reports whether two lock modes held by different transactions
// are incompatible. Only S/S is compatible.
func (lt LockType) conflicts(other LockType) bool {
	return lt == ExclusiveLock || other == ExclusiveLock
}

type Lock struct {
	TID       *primitives.TransactionID
	LockType  LockType
	GrantTime time.Time
}

// LockRequest is a pending acquisition parked in the WaitQueue.
type LockRequest struct {
	TID         *primitives.TransactionID
	LockType    LockType
	RequestTime time.Time
}

func NewLock(tid *primitives.TransactionID, lockType LockType) *Lock {
	return &Lock{
		TID:       tid,
		LockType:  lockType,
		GrantTime: time.Now(),
	}
}

func NewLockRequest(tid *primitives.TransactionID, lockType LockType) *LockRequest {
	return &LockRequest{
		TID:         tid,
		LockType:    lockType,
		RequestTime: time.Now(),
	}
}
