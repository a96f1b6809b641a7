package execution

import (
	"context"

	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
)

// Delete removes every child tuple from its table and emits one (count)
// tuple. Child tuples must carry the RecordID they were read with.
type Delete struct {
	base   *BaseIterator
	ctx    context.Context
	tid    *primitives.TransactionID
	child  iterator.DbIterator
	writer TupleWriter
	result countResult
}

func NewDelete(ctx context.Context, tid *primitives.TransactionID, child iterator.DbIterator, writer TupleWriter) *Delete {
	d := &Delete{
		ctx:    ctx,
		tid:    tid,
		child:  child,
		writer: writer,
	}
	d.base = NewBaseIterator("Delete", d.readNext)
	return d
}

func (d *Delete) Open() error {
	if err := OpenChildren(d.child); err != nil {
		return err
	}
	d.base.MarkOpened()
	return nil
}

func (d *Delete) Close() error {
	err := CloseChildren(d.child)
	_ = d.base.Close()
	return err
}

// Rewind is Close followed by Open. The count has already been reported.
func (d *Delete) Rewind() error {
	if err := d.base.CheckOpen(); err != nil {
		return err
	}
	if err := d.Close(); err != nil {
		return err
	}
	return d.Open()
}

func (d *Delete) readNext() (*tuple.Tuple, error) {
	return d.result.next(func() (int32, error) {
		var n int32
		err := iterator.ForEach(d.child, func(t *tuple.Tuple) error {
			if err := d.writer.DeleteTuple(d.ctx, d.tid, t); err != nil {
				return err
			}
			n++
			return nil
		})
		return n, err
	})
}

func (d *Delete) GetTupleDesc() *tuple.TupleDescription { return countDesc }

func (d *Delete) HasNext() (bool, error)      { return d.base.HasNext() }
func (d *Delete) Next() (*tuple.Tuple, error) { return d.base.Next() }

func (d *Delete) Kind() OperatorKind              { return KindDelete }
func (d *Delete) Children() []iterator.DbIterator { return []iterator.DbIterator{d.child} }
