package lock

import (
	"sync"

	"heapdb/pkg/primitives"
)

// DependencyGraph is the wait-for graph between transactions. An edge A→B
// means A is waiting for a lock B holds. A cycle is a deadlock.
type DependencyGraph struct {
	edges      map[*primitives.TransactionID]map[*primitives.TransactionID]bool
	mutex      sync.RWMutex
	cacheValid bool // HasCycle result is current
	lastResult bool
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		edges: make(map[*primitives.TransactionID]map[*primitives.TransactionID]bool),
	}
}

// AddEdge records that waiter waits for holder. Self edges are ignored.
func (dg *DependencyGraph) AddEdge(waiter, holder *primitives.TransactionID) {
	if waiter == holder {
		return
	}

	dg.mutex.Lock()
	defer dg.mutex.Unlock()

	if dg.edges[waiter] == nil {
		dg.edges[waiter] = make(map[*primitives.TransactionID]bool)
	}
	dg.edges[waiter][holder] = true
	dg.cacheValid = false
}

func (dg *DependencyGraph) RemoveEdge(waiter, holder *primitives.TransactionID) {
	dg.mutex.Lock()
	defer dg.mutex.Unlock()

	if holders, ok := dg.edges[waiter]; ok {
		delete(holders, holder)
		if len(holders) == 0 {
			delete(dg.edges, waiter)
		}
		dg.cacheValid = false
	}
}

// RemoveWaiter drops the outgoing edges of tid. Edges pointing at tid stay,
// since tid may still hold what others wait for.
func (dg *DependencyGraph) RemoveWaiter(tid *primitives.TransactionID) {
	dg.mutex.Lock()
	defer dg.mutex.Unlock()

	if _, ok := dg.edges[tid]; ok {
		delete(dg.edges, tid)
		dg.cacheValid = false
	}
}

// RemoveTransaction drops every edge tid appears in, on either end.
func (dg *DependencyGraph) RemoveTransaction(tid *primitives.TransactionID) {
	dg.mutex.Lock()
	defer dg.mutex.Unlock()

	delete(dg.edges, tid)
	for waiter, holders := range dg.edges {
		delete(holders, tid)
		if len(holders) == 0 {
			delete(dg.edges, waiter)
		}
	}
	dg.cacheValid = false
}

// HasCycle reports whether any cycle exists. The answer is cached until the
// graph changes.
func (dg *DependencyGraph) HasCycle() bool {
	dg.mutex.Lock()
	defer dg.mutex.Unlock()

	if dg.cacheValid {
		return dg.lastResult
	}

	visited := make(map[*primitives.TransactionID]bool)
	recStack := make(map[*primitives.TransactionID]bool)

	dg.lastResult = false
	for tid := range dg.edges {
		if !visited[tid] && dg.hasCycleDFS(tid, visited, recStack) {
			dg.lastResult = true
			break
		}
	}
	dg.cacheValid = true
	return dg.lastResult
}

// HasCycleFrom reports whether start can reach itself by following wait-for
// edges, i.e. whether start is part of a deadlock.
func (dg *DependencyGraph) HasCycleFrom(start *primitives.TransactionID) bool {
	dg.mutex.RLock()
	defer dg.mutex.RUnlock()

	visited := make(map[*primitives.TransactionID]bool)
	stack := make([]*primitives.TransactionID, 0, len(dg.edges[start]))
	for next := range dg.edges[start] {
		stack = append(stack, next)
	}

	for len(stack) > 0 {
		tid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if tid == start {
			return true
		}
		if visited[tid] {
			continue
		}
		visited[tid] = true
		for next := range dg.edges[tid] {
			stack = append(stack, next)
		}
	}
	return false
}

func (dg *DependencyGraph) hasCycleDFS(tid *primitives.TransactionID, visited, recStack map[*primitives.TransactionID]bool) bool {
	visited[tid] = true
	recStack[tid] = true

	for neighbor := range dg.edges[tid] {
		if !visited[neighbor] {
			if dg.hasCycleDFS(neighbor, visited, recStack) {
				return true
			}
		} else if recStack[neighbor] {
			return true
		}
	}

	recStack[tid] = false
	return false
}

// WaitsFor returns the transactions tid currently waits for.
func (dg *DependencyGraph) WaitsFor(tid *primitives.TransactionID) []*primitives.TransactionID {
	dg.mutex.RLock()
	defer dg.mutex.RUnlock()

	out := make([]*primitives.TransactionID, 0, len(dg.edges[tid]))
	for holder := range dg.edges[tid] {
		out = append(out, holder)
	}
	return out
}

// GetWaitingTransactions returns every transaction with an outgoing edge.
func (dg *DependencyGraph) GetWaitingTransactions() []*primitives.TransactionID {
	dg.mutex.RLock()
	defer dg.mutex.RUnlock()

	waiters := make([]*primitives.TransactionID, 0, len(dg.edges))
	for tid := range dg.edges {
		waiters = append(waiters, tid)
	}
	return waiters
}
