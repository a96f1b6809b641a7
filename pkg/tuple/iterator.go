package tuple

import "heapdb/pkg/dberror"

// Iterator replays a fixed slice of tuples under a given schema. It follows
// the DbIterator protocol: Open before use, Rewind to restart.
type Iterator struct {
	td     *TupleDescription
	tuples []*Tuple
	pos    int
	open   bool
}

func NewIterator(td *TupleDescription, tuples []*Tuple) *Iterator {
	return &Iterator{td: td, tuples: tuples}
}

func (it *Iterator) Open() error {
	it.open, it.pos = true, 0
	return nil
}

func (it *Iterator) Close() error {
	it.open = false
	return nil
}

func (it *Iterator) HasNext() (bool, error) {
	if !it.open {
		return false, dberror.IllegalState("tuple.Iterator")
	}
	return it.pos < len(it.tuples), nil
}

// Next returns the next tuple, or NO_MORE_TUPLES past the end.
func (it *Iterator) Next() (*Tuple, error) {
	ok, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dberror.New(dberror.ErrCategoryProtocol, dberror.CodeNoMoreTuples, "no more tuples").
			At("Next", "tuple.Iterator")
	}
	t := it.tuples[it.pos]
	it.pos++
	return t, nil
}

func (it *Iterator) Rewind() error {
	if !it.open {
		return dberror.IllegalState("tuple.Iterator")
	}
	it.pos = 0
	return nil
}

func (it *Iterator) GetTupleDesc() *TupleDescription { return it.td }
