package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"heapdb/pkg/concurrency/lock"
	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/heap"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// 64 byte pages hold 7 two-int tuples.
const testPageSize = 64

type mapCatalog struct {
	files map[primitives.TableID]page.DbFile
	names map[string]primitives.TableID
}

func newMapCatalog(files ...page.DbFile) *mapCatalog {
	c := &mapCatalog{
		files: make(map[primitives.TableID]page.DbFile),
		names: make(map[string]primitives.TableID),
	}
	for _, f := range files {
		c.files[f.GetID()] = f
	}
	return c
}

func (c *mapCatalog) GetDbFile(id primitives.TableID) (page.DbFile, error) {
	f, ok := c.files[id]
	if !ok {
		return nil, dberror.NoSuchTable(id.String())
	}
	return f, nil
}

func (c *mapCatalog) GetTupleDesc(id primitives.TableID) (*tuple.TupleDescription, error) {
	f, err := c.GetDbFile(id)
	if err != nil {
		return nil, err
	}
	return f.GetTupleDesc(), nil
}

func (c *mapCatalog) GetTableID(name string) (primitives.TableID, error) {
	id, ok := c.names[name]
	if !ok {
		return 0, dberror.NoSuchTable(name)
	}
	return id, nil
}

func pairDesc(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType, types.IntType}, []string{"a", "b"})
	require.NoError(t, err)
	return td
}

func pair(t *testing.T, td *tuple.TupleDescription, a, b int32) *tuple.Tuple {
	t.Helper()
	tup, err := tuple.FromFields(td, types.NewIntField(a), types.NewIntField(b))
	require.NoError(t, err)
	return tup
}

// newTable creates a heap file with emptyPages blank pages already on disk.
func newTable(t *testing.T, name string, emptyPages int) *heap.HeapFile {
	t.Helper()
	path := primitives.Filepath(filepath.Join(t.TempDir(), name+".dat"))
	hf, err := heap.NewHeapFile(path, pairDesc(t), testPageSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hf.Close() })

	for range emptyPages {
		_, err := hf.AppendPage(heap.CreateEmptyPageData(testPageSize))
		require.NoError(t, err)
	}
	return hf
}

func newPool(capacity int, files ...page.DbFile) *BufferPool {
	return NewBufferPool(newMapCatalog(files...), lock.NewLockManager(), capacity)
}

// diskTuples counts the tuples on page pageNo as stored on disk.
func diskTuples(t *testing.T, hf *heap.HeapFile, pageNo primitives.PageNumber) int {
	t.Helper()
	p, err := hf.ReadPage(primitives.NewPageID(hf.GetID(), pageNo))
	require.NoError(t, err)
	return len(p.(*heap.HeapPage).GetTuples())
}

func scanCount(t *testing.T, bp *BufferPool, hf *heap.HeapFile) int {
	t.Helper()
	tid := bp.Begin()
	it := hf.Iterator(context.Background(), tid, bp)
	require.NoError(t, it.Open())
	n := 0
	for {
		ok, err := it.HasNext()
		require.NoError(t, err)
		if !ok {
			break
		}
		_, err = it.Next()
		require.NoError(t, err)
		n++
	}
	require.NoError(t, it.Close())
	require.NoError(t, bp.TransactionComplete(context.Background(), tid, true))
	return n
}
