package execution

import (
	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
)

// Filter passes through the child tuples that satisfy a predicate.
type Filter struct {
	base      *BaseIterator
	predicate *Predicate
	child     iterator.DbIterator
}

func NewFilter(predicate *Predicate, child iterator.DbIterator) (*Filter, error) {
	if predicate == nil || child == nil {
		return nil, dberror.New(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg, "filter needs a predicate and a child").
			At("NewFilter", "Filter")
	}

	f := &Filter{
		predicate: predicate,
		child:     child,
	}
	f.base = NewBaseIterator("Filter", f.readNext)
	return f, nil
}

func (f *Filter) Open() error {
	if err := OpenChildren(f.child); err != nil {
		return err
	}
	f.base.MarkOpened()
	return nil
}

func (f *Filter) Close() error {
	err := CloseChildren(f.child)
	_ = f.base.Close()
	return err
}

func (f *Filter) Rewind() error {
	if err := f.base.CheckOpen(); err != nil {
		return err
	}
	if err := f.child.Rewind(); err != nil {
		return err
	}
	f.base.ClearCache()
	return nil
}

// GetTupleDesc returns the child's schema; filtering does not change it.
func (f *Filter) GetTupleDesc() *tuple.TupleDescription {
	return f.child.GetTupleDesc()
}

func (f *Filter) HasNext() (bool, error)      { return f.base.HasNext() }
func (f *Filter) Next() (*tuple.Tuple, error) { return f.base.Next() }

func (f *Filter) Kind() OperatorKind              { return KindFilter }
func (f *Filter) Children() []iterator.DbIterator { return []iterator.DbIterator{f.child} }
func (f *Filter) Predicate() *Predicate           { return f.predicate }

func (f *Filter) readNext() (*tuple.Tuple, error) {
	for {
		hasNext, err := f.child.HasNext()
		if err != nil || !hasNext {
			return nil, err
		}

		t, err := f.child.Next()
		if err != nil {
			return nil, err
		}

		passes, err := f.predicate.Filter(t)
		if err != nil {
			return nil, err
		}
		if passes {
			return t, nil
		}
	}
}
