package heap

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// directProvider caches pages read straight from their file, without locking.
type directProvider struct {
	mu    sync.Mutex
	file  *HeapFile
	pages map[primitives.PageID]page.Page
	perms []page.Permissions
}

func newDirectProvider(f *HeapFile) *directProvider {
	return &directProvider{file: f, pages: make(map[primitives.PageID]page.Page)}
}

func (d *directProvider) GetPage(_ context.Context, _ *primitives.TransactionID, pid primitives.PageID, perm page.Permissions) (page.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.perms = append(d.perms, perm)
	if p, ok := d.pages[pid]; ok {
		return p, nil
	}
	p, err := d.file.ReadPage(pid)
	if err != nil {
		return nil, err
	}
	d.pages[pid] = p
	return p, nil
}

func (d *directProvider) flush(t *testing.T) {
	t.Helper()
	for _, p := range d.pages {
		if err := d.file.WritePage(p); err != nil {
			t.Fatalf("flush failed: %v", err)
		}
	}
}

func intDesc(t *testing.T, n int) *tuple.TupleDescription {
	t.Helper()
	ts := make([]types.Type, n)
	for i := range ts {
		ts[i] = types.IntType
	}
	td, err := tuple.NewTupleDesc(ts, nil)
	if err != nil {
		t.Fatal(err)
	}
	return td
}

func intTuple(t *testing.T, td *tuple.TupleDescription, values ...int32) *tuple.Tuple {
	t.Helper()
	fields := make([]types.Field, len(values))
	for i, v := range values {
		fields[i] = types.NewIntField(v)
	}
	tup, err := tuple.FromFields(td, fields...)
	if err != nil {
		t.Fatal(err)
	}
	return tup
}

func newTestHeapFile(t *testing.T, td *tuple.TupleDescription, pageSize int) *HeapFile {
	t.Helper()
	path := primitives.Filepath(filepath.Join(t.TempDir(), "heap.dat"))
	hf, err := NewHeapFile(path, td, pageSize)
	if err != nil {
		t.Fatalf("NewHeapFile failed: %v", err)
	}
	t.Cleanup(func() { _ = hf.Close() })
	return hf
}
