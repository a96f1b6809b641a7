package execution

import (
	"context"

	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/memory"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// TupleWriter is the buffer pool surface used by Insert and Delete.
type TupleWriter interface {
	InsertTuple(ctx context.Context, tid *primitives.TransactionID, tableID primitives.TableID, t *tuple.Tuple) error
	DeleteTuple(ctx context.Context, tid *primitives.TransactionID, t *tuple.Tuple) error
}

// countDesc is the schema of the single tuple Insert and Delete emit.
var countDesc = mustCountDesc()

func mustCountDesc() *tuple.TupleDescription {
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"count"})
	if err != nil {
		panic(err)
	}
	return td
}

// countResult runs apply once and hands out the resulting (count) tuple a
// single time over the operator's whole life. Rewind and Close+Open both
// leave it spent.
type countResult struct {
	done bool
}

func (c *countResult) next(apply func() (int32, error)) (*tuple.Tuple, error) {
	if c.done {
		return nil, nil
	}
	n, err := apply()
	if err != nil {
		return nil, err
	}
	c.done = true
	return tuple.FromFields(countDesc, types.NewIntField(n))
}

// Insert writes every child tuple into a table and emits one (count) tuple.
type Insert struct {
	base      *BaseIterator
	ctx       context.Context
	tid       *primitives.TransactionID
	child     iterator.DbIterator
	tableID   primitives.TableID
	tableDesc *tuple.TupleDescription
	writer    TupleWriter
	result    countResult
}

// NewInsert creates an insert of child's tuples into tableID.
//
// Returns:
//   - *Insert: A closed operator
//   - error: NO_SUCH_TABLE if tableID is unknown, SCHEMA_MISMATCH if the child
//     schema differs from the table's
func NewInsert(ctx context.Context, tid *primitives.TransactionID, child iterator.DbIterator, tableID primitives.TableID, catalog memory.Catalog, writer TupleWriter) (*Insert, error) {
	td, err := catalog.GetTupleDesc(tableID)
	if err != nil {
		return nil, err
	}
	if !td.Equals(child.GetTupleDesc()) {
		return nil, dberror.New(dberror.ErrCategoryProtocol, dberror.CodeSchemaMismatch, "child schema does not match table").
			WithDetail("table %s, child %s", td, child.GetTupleDesc()).
			At("NewInsert", "Insert")
	}

	ins := &Insert{
		ctx:       ctx,
		tid:       tid,
		child:     child,
		tableID:   tableID,
		tableDesc: td,
		writer:    writer,
	}
	ins.base = NewBaseIterator("Insert", ins.readNext)
	return ins, nil
}

func (ins *Insert) Open() error {
	if err := OpenChildren(ins.child); err != nil {
		return err
	}
	ins.base.MarkOpened()
	return nil
}

func (ins *Insert) Close() error {
	err := CloseChildren(ins.child)
	_ = ins.base.Close()
	return err
}

// Rewind behaves as Close followed by Open: the inserts are not repeated and
// the count is not reported again.
func (ins *Insert) Rewind() error {
	if err := ins.base.CheckOpen(); err != nil {
		return err
	}
	if err := ins.Close(); err != nil {
		return err
	}
	return ins.Open()
}

func (ins *Insert) readNext() (*tuple.Tuple, error) {
	return ins.result.next(func() (int32, error) {
		var n int32
		err := iterator.ForEach(ins.child, func(t *tuple.Tuple) error {
			row := t.Clone()
			row.TupleDesc = ins.tableDesc
			if err := ins.writer.InsertTuple(ins.ctx, ins.tid, ins.tableID, row); err != nil {
				return err
			}
			n++
			return nil
		})
		return n, err
	})
}

func (ins *Insert) GetTupleDesc() *tuple.TupleDescription { return countDesc }

func (ins *Insert) HasNext() (bool, error)      { return ins.base.HasNext() }
func (ins *Insert) Next() (*tuple.Tuple, error) { return ins.base.Next() }

func (ins *Insert) Kind() OperatorKind              { return KindInsert }
func (ins *Insert) Children() []iterator.DbIterator { return []iterator.DbIterator{ins.child} }
