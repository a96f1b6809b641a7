package execution

import (
	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
)

// Limit skips the first offset child tuples and emits at most limit of the
// rest.
type Limit struct {
	base    *BaseIterator
	child   iterator.DbIterator
	limit   int
	offset  int
	emitted int
	skipped bool
}

func NewLimit(child iterator.DbIterator, limit, offset int) (*Limit, error) {
	if child == nil || limit < 0 || offset < 0 {
		return nil, dberror.Newf(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg,
			"limit needs a child and non-negative bounds, got limit=%d offset=%d", limit, offset).
			At("NewLimit", "Limit")
	}

	l := &Limit{child: child, limit: limit, offset: offset}
	l.base = NewBaseIterator("Limit", l.readNext)
	return l, nil
}

func (l *Limit) Open() error {
	if err := OpenChildren(l.child); err != nil {
		return err
	}
	l.reset()
	l.base.MarkOpened()
	return nil
}

func (l *Limit) Close() error {
	err := CloseChildren(l.child)
	_ = l.base.Close()
	return err
}

func (l *Limit) Rewind() error {
	if err := l.base.CheckOpen(); err != nil {
		return err
	}
	if err := l.child.Rewind(); err != nil {
		return err
	}
	l.reset()
	l.base.ClearCache()
	return nil
}

func (l *Limit) reset() {
	l.emitted = 0
	l.skipped = false
}

func (l *Limit) readNext() (*tuple.Tuple, error) {
	if !l.skipped {
		if _, err := iterator.Take(l.child, l.offset); err != nil {
			return nil, err
		}
		l.skipped = true
	}
	if l.emitted >= l.limit {
		return nil, nil
	}

	hasNext, err := l.child.HasNext()
	if err != nil || !hasNext {
		return nil, err
	}
	t, err := l.child.Next()
	if err != nil {
		return nil, err
	}
	l.emitted++
	return t, nil
}

// GetTupleDesc returns the child's schema.
func (l *Limit) GetTupleDesc() *tuple.TupleDescription { return l.child.GetTupleDesc() }

func (l *Limit) HasNext() (bool, error)      { return l.base.HasNext() }
func (l *Limit) Next() (*tuple.Tuple, error) { return l.base.Next() }

func (l *Limit) Kind() OperatorKind              { return KindLimit }
func (l *Limit) Children() []iterator.DbIterator { return []iterator.DbIterator{l.child} }
