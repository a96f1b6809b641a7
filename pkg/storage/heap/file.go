package heap

import (
	"context"

	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/logging"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// HeapFile represents a collection of pages stored in a single OS file on disk.
// It implements the page.DbFile interface; tuples are unordered.
//
// Storage Layout:
//   - Each page is exactly PageSize() bytes
//   - Pages are numbered sequentially starting from 0
//   - Page offsets are calculated as: pageNo * PageSize()
type HeapFile struct {
	*page.BaseFile
	tupleDesc *tuple.TupleDescription // Schema definition for tuples in this file
}

// NewHeapFile opens, creating if needed, the heap file at filename.
//
// Parameters:
//   - filename: Path to the heap file on disk (cannot be empty)
//   - td: Schema definition for tuples that will be stored in this file
//   - pageSize: Fixed page size in bytes
//
// Returns:
//   - *HeapFile: The initialized heap file
//   - error: If the filename is empty, no tuple fits on a page, or the file cannot be opened
func NewHeapFile(filename primitives.Filepath, td *tuple.TupleDescription, pageSize int) (*HeapFile, error) {
	if td == nil {
		return nil, dberror.New(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg, "tuple description cannot be nil")
	}
	if numSlots(pageSize, td.GetSize()) == 0 {
		return nil, dberror.New(dberror.ErrCategoryStorage, dberror.CodeInvalidPageData, "tuple does not fit on page").
			WithDetail("tuple size %d, page size %d", td.GetSize(), pageSize).
			At("NewHeapFile", "HeapFile")
	}

	baseFile, err := page.NewBaseFile(filename, pageSize)
	if err != nil {
		return nil, err
	}

	return &HeapFile{
		BaseFile:  baseFile,
		tupleDesc: td,
	}, nil
}

// GetTupleDesc returns the schema definition for tuples stored in this file.
func (hf *HeapFile) GetTupleDesc() *tuple.TupleDescription {
	return hf.tupleDesc
}

// ReadPage reads the specified page from disk into memory.
// This method performs physical I/O and should typically be called through
// the BufferPool rather than directly.
//
// Returns:
//   - page.Page: The decoded HeapPage
//   - error: TABLE_MISMATCH for another table's page, PAGE_NOT_FOUND past the end of the file
func (hf *HeapFile) ReadPage(pid primitives.PageID) (page.Page, error) {
	if err := hf.checkTable(pid, "ReadPage"); err != nil {
		return nil, err
	}

	data, err := hf.ReadPageData(pid.PageNo)
	if err != nil {
		return nil, err
	}
	return NewHeapPage(pid, data, hf.tupleDesc)
}

// WritePage writes the given page to disk at its designated location and syncs the file.
func (hf *HeapFile) WritePage(p page.Page) error {
	if p == nil {
		return dberror.New(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg, "page cannot be nil").At("WritePage", "HeapFile")
	}
	if err := hf.checkTable(p.GetID(), "WritePage"); err != nil {
		return err
	}
	return hf.WritePageData(p.GetID().PageNo, p.GetPageData())
}

// InsertTuple adds t to the file on behalf of tid.
//
// Existing pages are inspected through pool under ReadOnly; the first page
// with a free slot is re-requested ReadWrite and receives the tuple. When no
// page has room an empty page is appended to the file on disk and the tuple
// goes there. The tuple itself reaches disk only when the pool flushes the page.
//
// Returns:
//   - []page.Page: The single page that was modified
//   - error: SCHEMA_MISMATCH, TRANSACTION_ABORTED from locking, or an I/O error
func (hf *HeapFile) InsertTuple(ctx context.Context, tid *primitives.TransactionID, t *tuple.Tuple, pool page.PageProvider) ([]page.Page, error) {
	if !hf.tupleDesc.Equals(t.TupleDesc) {
		return nil, dberror.New(dberror.ErrCategoryProtocol, dberror.CodeSchemaMismatch, "tuple schema does not match table").
			WithDetail("table %s, tuple %s", hf.tupleDesc, t.TupleDesc).
			At("InsertTuple", "HeapFile")
	}

	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}

	for pageNo := primitives.PageNumber(0); pageNo < numPages; pageNo++ {
		pid := primitives.NewPageID(hf.GetID(), pageNo)

		hp, err := hf.fetch(ctx, tid, pid, page.ReadOnly, pool)
		if err != nil {
			return nil, err
		}
		if hp.GetNumEmptySlots() == 0 {
			continue
		}

		if hp, err = hf.fetch(ctx, tid, pid, page.ReadWrite, pool); err != nil {
			return nil, err
		}
		if err := hp.AddTuple(t); err != nil {
			if dberror.IsCode(err, dberror.CodePageFull) {
				continue
			}
			return nil, err
		}
		return []page.Page{hp}, nil
	}

	pageNo, err := hf.AppendPage(CreateEmptyPageData(hf.PageSize()))
	if err != nil {
		return nil, err
	}
	pid := primitives.NewPageID(hf.GetID(), pageNo)
	logging.WithPage(pid).Debug("heap file extended", "file", hf.FilePath().Base())

	hp, err := hf.fetch(ctx, tid, pid, page.ReadWrite, pool)
	if err != nil {
		return nil, err
	}
	if err := hp.AddTuple(t); err != nil {
		return nil, err
	}
	return []page.Page{hp}, nil
}

// DeleteTuple removes t from the page named by its RecordID.
//
// Returns:
//   - page.Page: The modified page
//   - error: TUPLE_NOT_FOUND when t has no RecordID or the slot is empty,
//     TABLE_MISMATCH when the RecordID names another table
func (hf *HeapFile) DeleteTuple(ctx context.Context, tid *primitives.TransactionID, t *tuple.Tuple, pool page.PageProvider) (page.Page, error) {
	if t.RecordID == nil {
		return nil, dberror.New(dberror.ErrCategoryConstraint, dberror.CodeTupleNotFound, "tuple has no record id").
			At("DeleteTuple", "HeapFile")
	}
	pid := t.RecordID.PageID
	if err := hf.checkTable(pid, "DeleteTuple"); err != nil {
		return nil, err
	}

	hp, err := hf.fetch(ctx, tid, pid, page.ReadWrite, pool)
	if err != nil {
		return nil, err
	}
	if err := hp.DeleteTuple(t); err != nil {
		return nil, err
	}
	return hp, nil
}

// Iterator returns a lazy iterator over every tuple of the file. Pages are
// fetched one at a time through pool under ReadOnly.
func (hf *HeapFile) Iterator(ctx context.Context, tid *primitives.TransactionID, pool page.PageProvider) iterator.DbFileIterator {
	return NewHeapFileIterator(ctx, hf, tid, pool)
}

func (hf *HeapFile) fetch(ctx context.Context, tid *primitives.TransactionID, pid primitives.PageID, perm page.Permissions, pool page.PageProvider) (*HeapPage, error) {
	p, err := pool.GetPage(ctx, tid, pid, perm)
	if err != nil {
		return nil, err
	}
	hp, ok := p.(*HeapPage)
	if !ok {
		return nil, dberror.New(dberror.ErrCategoryStorage, dberror.CodeInvalidPageData, "not a heap page").
			WithDetail("%s", pid)
	}
	return hp, nil
}

func (hf *HeapFile) checkTable(pid primitives.PageID, op string) error {
	if pid.TableID != hf.GetID() {
		return dberror.New(dberror.ErrCategoryStorage, dberror.CodeTableMismatch, "page belongs to another table").
			WithDetail("%s, file table %s", pid, hf.GetID()).
			At(op, "HeapFile")
	}
	return nil
}
