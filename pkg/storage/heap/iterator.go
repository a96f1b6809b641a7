package heap

import (
	"heapdb/pkg/dberror"
	"heapdb/pkg/tuple"
)

// HeapPageIterator walks the occupied slots of a HeapPage in slot order.
// Slots are examined lazily, one HasNext at a time.
type HeapPageIterator struct {
	page   *HeapPage
	slot   int // next slot to examine
	next   *tuple.Tuple
	isOpen bool
}

func NewHeapPageIterator(page *HeapPage) *HeapPageIterator {
	return &HeapPageIterator{page: page}
}

func (it *HeapPageIterator) Open() error {
	it.slot = 0
	it.next = nil
	it.isOpen = true
	return nil
}

func (it *HeapPageIterator) HasNext() (bool, error) {
	if !it.isOpen {
		return false, dberror.IllegalState("HeapPageIterator")
	}

	for it.next == nil && it.slot < it.page.NumSlots() {
		t, err := it.page.GetTupleAt(it.slot)
		if err != nil {
			return false, err
		}
		it.slot++
		it.next = t
	}
	return it.next != nil, nil
}

func (it *HeapPageIterator) Next() (*tuple.Tuple, error) {
	ok, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, noMoreTuples("HeapPageIterator")
	}

	t := it.next
	it.next = nil
	return t, nil
}

func (it *HeapPageIterator) Rewind() error {
	if err := it.Close(); err != nil {
		return err
	}
	return it.Open()
}

func (it *HeapPageIterator) Close() error {
	it.next = nil
	it.isOpen = false
	return nil
}

func noMoreTuples(component string) error {
	return dberror.New(dberror.ErrCategoryProtocol, dberror.CodeNoMoreTuples, "no more tuples").At("Next", component)
}
