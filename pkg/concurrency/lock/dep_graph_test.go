package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"heapdb/pkg/primitives"
)

func newTIDs(n int) []*primitives.TransactionID {
	out := make([]*primitives.TransactionID, n)
	for i := range out {
		out[i] = primitives.NewTransactionID()
	}
	return out
}

func TestDependencyGraph_Cycles(t *testing.T) {
	tids := newTIDs(4)
	a, b, c, d := tids[0], tids[1], tids[2], tids[3]

	tests := []struct {
		name      string
		edges     [][2]*primitives.TransactionID
		wantCycle bool
		from      *primitives.TransactionID
		wantFrom  bool
	}{
		{"empty", nil, false, a, false},
		{"chain", [][2]*primitives.TransactionID{{a, b}, {b, c}}, false, a, false},
		{"two cycle", [][2]*primitives.TransactionID{{a, b}, {b, a}}, true, a, true},
		{"three cycle", [][2]*primitives.TransactionID{{a, b}, {b, c}, {c, a}}, true, b, true},
		{"tail into cycle", [][2]*primitives.TransactionID{{d, a}, {a, b}, {b, a}}, true, d, false},
		{"diamond", [][2]*primitives.TransactionID{{a, b}, {a, c}, {b, d}, {c, d}}, false, a, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dg := NewDependencyGraph()
			for _, e := range tt.edges {
				dg.AddEdge(e[0], e[1])
			}
			assert.Equal(t, tt.wantCycle, dg.HasCycle())
			assert.Equal(t, tt.wantFrom, dg.HasCycleFrom(tt.from))
		})
	}
}

func TestDependencyGraph_SelfEdgeIgnored(t *testing.T) {
	dg := NewDependencyGraph()
	tid := primitives.NewTransactionID()
	dg.AddEdge(tid, tid)
	assert.False(t, dg.HasCycle())
	assert.Empty(t, dg.GetWaitingTransactions())
}

func TestDependencyGraph_CacheInvalidation(t *testing.T) {
	dg := NewDependencyGraph()
	tids := newTIDs(2)

	dg.AddEdge(tids[0], tids[1])
	assert.False(t, dg.HasCycle())
	assert.True(t, dg.cacheValid)

	dg.AddEdge(tids[1], tids[0])
	assert.False(t, dg.cacheValid)
	assert.True(t, dg.HasCycle())

	dg.RemoveEdge(tids[1], tids[0])
	assert.False(t, dg.HasCycle())
}

func TestDependencyGraph_Removal(t *testing.T) {
	dg := NewDependencyGraph()
	tids := newTIDs(3)
	a, b, c := tids[0], tids[1], tids[2]

	dg.AddEdge(a, b)
	dg.AddEdge(c, a)

	dg.RemoveWaiter(a)
	assert.Empty(t, dg.WaitsFor(a))
	assert.Equal(t, []*primitives.TransactionID{a}, dg.WaitsFor(c))

	dg.AddEdge(a, b)
	dg.RemoveTransaction(a)
	assert.Empty(t, dg.WaitsFor(a))
	assert.Empty(t, dg.WaitsFor(c))
	assert.Empty(t, dg.GetWaitingTransactions())
}
