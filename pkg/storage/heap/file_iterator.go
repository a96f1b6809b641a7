package heap

import (
	"context"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// HeapFileIterator provides iteration over all tuples in a HeapFile.
// The page count is re-read as pages are exhausted, so pages appended while
// the scan runs are visited too.
type HeapFileIterator struct {
	ctx      context.Context
	file     *HeapFile
	tid      *primitives.TransactionID
	pool     page.PageProvider
	nextPage primitives.PageNumber
	pageIter *HeapPageIterator
	isOpen   bool
}

func NewHeapFileIterator(ctx context.Context, file *HeapFile, tid *primitives.TransactionID, pool page.PageProvider) *HeapFileIterator {
	return &HeapFileIterator{
		ctx:  ctx,
		file: file,
		tid:  tid,
		pool: pool,
	}
}

func (it *HeapFileIterator) Open() error {
	it.nextPage = 0
	it.pageIter = nil
	it.isOpen = true
	return nil
}

func (it *HeapFileIterator) HasNext() (bool, error) {
	if !it.isOpen {
		return false, dberror.IllegalState("HeapFileIterator")
	}

	for {
		if it.pageIter != nil {
			ok, err := it.pageIter.HasNext()
			if err != nil || ok {
				return ok, err
			}
		}

		numPages, err := it.file.NumPages()
		if err != nil {
			return false, err
		}
		if it.nextPage >= numPages {
			return false, nil
		}

		pid := primitives.NewPageID(it.file.GetID(), it.nextPage)
		hp, err := it.file.fetch(it.ctx, it.tid, pid, page.ReadOnly, it.pool)
		if err != nil {
			return false, err
		}
		it.nextPage++
		it.pageIter = hp.Iterator()
		if err := it.pageIter.Open(); err != nil {
			return false, err
		}
	}
}

func (it *HeapFileIterator) Next() (*tuple.Tuple, error) {
	ok, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, noMoreTuples("HeapFileIterator")
	}
	return it.pageIter.Next()
}

func (it *HeapFileIterator) Rewind() error {
	if err := it.Close(); err != nil {
		return err
	}
	return it.Open()
}

func (it *HeapFileIterator) Close() error {
	if it.pageIter != nil {
		_ = it.pageIter.Close()
		it.pageIter = nil
	}
	it.isOpen = false
	return nil
}
