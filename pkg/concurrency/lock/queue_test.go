package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/primitives"
)

func TestWaitQueue(t *testing.T) {
	wq := NewWaitQueue()
	tids := newTIDs(2)
	p0, p1 := primitives.NewPageID(1, 0), primitives.NewPageID(1, 1)

	require.NoError(t, wq.Add(tids[0], p0, SharedLock))
	require.NoError(t, wq.Add(tids[1], p0, ExclusiveLock))
	require.NoError(t, wq.Add(tids[0], p1, ExclusiveLock))
	assert.Error(t, wq.Add(tids[0], p0, SharedLock))

	reqs := wq.GetRequests(p0)
	require.Len(t, reqs, 2)
	assert.Same(t, tids[0], reqs[0].TID)
	assert.Same(t, tids[1], reqs[1].TID)
	assert.ElementsMatch(t, []primitives.PageID{p0, p1}, wq.GetPagesRequestedFor(tids[0]))

	wq.RemoveRequest(tids[1], p0)
	assert.False(t, wq.IsWaiting(tids[1], p0))
	assert.Empty(t, wq.GetPagesRequestedFor(tids[1]))

	wq.RemoveAllForTransaction(tids[0])
	assert.Empty(t, wq.GetRequests(p0))
	assert.Empty(t, wq.GetRequests(p1))
	assert.Empty(t, wq.GetPagesRequestedFor(tids[0]))
}

func TestLockTable(t *testing.T) {
	lt := NewLockTable()
	tids := newTIDs(2)
	pid := primitives.NewPageID(3, 7)

	lt.AddLock(tids[0], pid, SharedLock)
	lt.AddLock(tids[1], pid, SharedLock)

	assert.True(t, lt.HasSufficientLock(tids[0], pid, SharedLock))
	assert.False(t, lt.HasSufficientLock(tids[0], pid, ExclusiveLock))
	assert.False(t, lt.HasExclusiveHolder(pid))

	lt.ReleaseLock(tids[1], pid)
	lt.UpgradeLock(tids[0], pid)
	assert.True(t, lt.HasSufficientLock(tids[0], pid, ExclusiveLock))
	assert.True(t, lt.HasExclusiveHolder(pid))

	assert.Equal(t, []primitives.PageID{pid}, lt.ReleaseAllLocks(tids[0]))
	assert.False(t, lt.IsPageLocked(pid))
	assert.Nil(t, lt.ReleaseAllLocks(tids[0]))
}

func TestLockGrantor_Conflicting(t *testing.T) {
	lt, wq, dg := NewLockTable(), NewWaitQueue(), NewDependencyGraph()
	lg := NewLockGrantor(lt, wq, dg)
	tids := newTIDs(3)
	pid := primitives.NewPageID(1, 0)

	lt.AddLock(tids[0], pid, SharedLock)
	lt.AddLock(tids[1], pid, SharedLock)

	assert.True(t, lg.CanGrantImmediately(tids[2], pid, SharedLock))
	assert.False(t, lg.CanGrantImmediately(tids[2], pid, ExclusiveLock))
	assert.ElementsMatch(t, tids[:2], lg.Conflicting(tids[2], pid, ExclusiveLock))
	assert.False(t, lg.CanUpgradeLock(tids[0], pid))
	assert.False(t, lg.CanUpgradeLock(tids[2], pid))
}
