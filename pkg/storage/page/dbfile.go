package page

import (
	"context"

	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
)

// DbFile represents a database file that stores tuples and provides operations for
// reading, writing, and managing data pages. Page access that must be
// transactional goes through the PageProvider passed in by the caller.
type DbFile interface {
	// ReadPage reads a page straight from disk, bypassing any cache.
	ReadPage(pid primitives.PageID) (Page, error)

	// WritePage persists a page at the offset given by its page number.
	WritePage(p Page) error

	// WritePageData persists raw page bytes, used to restore a before-image.
	WritePageData(pageNo primitives.PageNumber, data []byte) error

	// NumPages returns the number of pages currently in the file.
	NumPages() (primitives.PageNumber, error)

	// InsertTuple places t on some page of the file and returns the pages it modified.
	InsertTuple(ctx context.Context, tid *primitives.TransactionID, t *tuple.Tuple, pool PageProvider) ([]Page, error)

	// DeleteTuple removes t from the page named by its RecordID and returns that page.
	DeleteTuple(ctx context.Context, tid *primitives.TransactionID, t *tuple.Tuple, pool PageProvider) (Page, error)

	// Iterator scans every tuple of the file through pool. Page fetches use ctx.
	Iterator(ctx context.Context, tid *primitives.TransactionID, pool PageProvider) iterator.DbFileIterator

	// GetID returns the table identifier of this file.
	GetID() primitives.TableID

	// GetTupleDesc returns the schema of the tuples stored in this file.
	GetTupleDesc() *tuple.TupleDescription

	// PageSize returns the fixed page size of this file in bytes.
	PageSize() int

	// Close releases the underlying file handle.
	Close() error
}
