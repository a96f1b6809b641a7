package execution

import (
	"heapdb/pkg/dberror"
	"heapdb/pkg/tuple"
)

// ReadNextFunc produces the next tuple of an operator, or nil when the
// operator is exhausted.
type ReadNextFunc func() (*tuple.Tuple, error)

// BaseIterator implements the Closed/Open state machine and one-tuple
// lookahead shared by all operators.
type BaseIterator struct {
	component    string
	nextTuple    *tuple.Tuple
	opened       bool
	readNextFunc ReadNextFunc
}

// NewBaseIterator creates a closed iterator drawing from readNextFunc.
// component names the operator in ILLEGAL_STATE and NO_MORE_TUPLES errors.
func NewBaseIterator(component string, readNextFunc ReadNextFunc) *BaseIterator {
	return &BaseIterator{
		component:    component,
		readNextFunc: readNextFunc,
	}
}

// HasNext reports whether Next will return a tuple.
//
// Returns:
//   - bool: True if a tuple is buffered or could be read
//   - error: ILLEGAL_STATE while closed, or the error of the underlying read
func (it *BaseIterator) HasNext() (bool, error) {
	if !it.opened {
		return false, dberror.IllegalState(it.component)
	}

	if it.nextTuple == nil {
		var err error
		it.nextTuple, err = it.readNextFunc()
		if err != nil {
			return false, err
		}
	}
	return it.nextTuple != nil, nil
}

// Next returns the next tuple and advances.
//
// Returns:
//   - *tuple.Tuple: The next tuple
//   - error: ILLEGAL_STATE while closed, NO_MORE_TUPLES past the end
func (it *BaseIterator) Next() (*tuple.Tuple, error) {
	hasNext, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, dberror.New(dberror.ErrCategoryProtocol, dberror.CodeNoMoreTuples, "no more tuples").
			At("Next", it.component)
	}

	result := it.nextTuple
	it.nextTuple = nil
	return result, nil
}

// Close marks the iterator closed and drops any buffered tuple.
func (it *BaseIterator) Close() error {
	it.nextTuple = nil
	it.opened = false
	return nil
}

// MarkOpened marks the iterator open with an empty lookahead.
func (it *BaseIterator) MarkOpened() {
	it.opened = true
	it.nextTuple = nil
}

// ClearCache drops the buffered lookahead tuple, used on rewind.
func (it *BaseIterator) ClearCache() {
	it.nextTuple = nil
}

func (it *BaseIterator) IsOpen() bool {
	return it.opened
}

// CheckOpen returns ILLEGAL_STATE unless the iterator is open.
func (it *BaseIterator) CheckOpen() error {
	if !it.opened {
		return dberror.IllegalState(it.component)
	}
	return nil
}
