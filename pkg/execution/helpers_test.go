package execution

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"heapdb/pkg/concurrency/lock"
	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/memory"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/heap"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

var (
	_ Operator = (*SequentialScan)(nil)
	_ Operator = (*Filter)(nil)
	_ Operator = (*Insert)(nil)
	_ Operator = (*Delete)(nil)
	_ Operator = (*Project)(nil)
	_ Operator = (*Limit)(nil)
)

type fileCatalog map[primitives.TableID]page.DbFile

func (c fileCatalog) GetDbFile(id primitives.TableID) (page.DbFile, error) {
	f, ok := c[id]
	if !ok {
		return nil, dberror.NoSuchTable(id.String())
	}
	return f, nil
}

func (c fileCatalog) GetTupleDesc(id primitives.TableID) (*tuple.TupleDescription, error) {
	f, err := c.GetDbFile(id)
	if err != nil {
		return nil, err
	}
	return f.GetTupleDesc(), nil
}

func (c fileCatalog) GetTableID(name string) (primitives.TableID, error) {
	return 0, dberror.NoSuchTable(name)
}

type fixture struct {
	catalog fileCatalog
	pool    *memory.BufferPool
	table   *heap.HeapFile
}

func pairDesc(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType, types.IntType}, []string{"id", "v"})
	require.NoError(t, err)
	return td
}

func pair(t *testing.T, td *tuple.TupleDescription, id, v int32) *tuple.Tuple {
	t.Helper()
	tup, err := tuple.FromFields(td, types.NewIntField(id), types.NewIntField(v))
	require.NoError(t, err)
	return tup
}

// newFixture creates an empty two-int table behind a buffer pool.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	path := primitives.Filepath(filepath.Join(t.TempDir(), "pairs.dat"))
	hf, err := heap.NewHeapFile(path, pairDesc(t), 256)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hf.Close() })

	catalog := fileCatalog{hf.GetID(): hf}
	return &fixture{
		catalog: catalog,
		pool:    memory.NewBufferPool(catalog, lock.NewLockManager(), 8),
		table:   hf,
	}
}

// load inserts (i, i*10) for i in [0, n) and commits.
func (f *fixture) load(t *testing.T, n int) {
	t.Helper()
	ctx := context.Background()
	tid := f.pool.Begin()
	td := f.table.GetTupleDesc()
	for i := range n {
		require.NoError(t, f.pool.InsertTuple(ctx, tid, f.table.GetID(), pair(t, td, int32(i), int32(i*10))))
	}
	require.NoError(t, f.pool.TransactionComplete(ctx, tid, true))
}

func (f *fixture) scan(t *testing.T, tid *primitives.TransactionID, alias string) *SequentialScan {
	t.Helper()
	ss, err := NewSeqScan(context.Background(), tid, f.table.GetID(), alias, f.catalog, f.pool)
	require.NoError(t, err)
	return ss
}

// ids drains an open iterator and returns the first field of each tuple.
func ids(t *testing.T, it iterator.TupleIterator) []int32 {
	t.Helper()
	all, err := iterator.Collect(it)
	require.NoError(t, err)
	out := make([]int32, 0, len(all))
	for _, tup := range all {
		f, err := tup.GetField(0)
		require.NoError(t, err)
		out = append(out, f.(*types.IntField).Value)
	}
	return out
}

// committedIDs reads the table in a fresh transaction.
func (f *fixture) committedIDs(t *testing.T) []int32 {
	t.Helper()
	tid := f.pool.Begin()
	ss := f.scan(t, tid, "")
	require.NoError(t, ss.Open())
	got := ids(t, ss)
	require.NoError(t, ss.Close())
	require.NoError(t, f.pool.TransactionComplete(context.Background(), tid, true))
	return got
}
