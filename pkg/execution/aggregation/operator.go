package aggregation

import (
	"heapdb/pkg/dberror"
	"heapdb/pkg/execution"
	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// Aggregate drains its child on Open and emits one tuple per group.
type Aggregate struct {
	base       *execution.BaseIterator
	child      iterator.DbIterator
	aField     int
	gField     int
	gFieldType types.Type
	aFieldType types.Type
	op         AggregateOp
	tupleDesc  *tuple.TupleDescription
	results    []*tuple.Tuple
	cursor     int
}

// NewAggregate creates an aggregate of child's aField, grouped by gField or
// NoGrouping.
//
// Returns:
//   - *Aggregate: A closed operator
//   - error: INVALID_ARGUMENT for a bad field index or an operation the
//     field type does not support
func NewAggregate(child iterator.DbIterator, aField, gField int, op AggregateOp) (*Aggregate, error) {
	if child == nil || child.GetTupleDesc() == nil {
		return nil, invalidArg("aggregate needs a child with a schema")
	}

	childDesc := child.GetTupleDesc()
	if aField < 0 || aField >= childDesc.NumFields() {
		return nil, invalidArg("invalid aggregate field index").WithDetail("%d", aField)
	}
	if gField != NoGrouping && (gField < 0 || gField >= childDesc.NumFields()) {
		return nil, invalidArg("invalid group field index").WithDetail("%d", gField)
	}

	agg := &Aggregate{
		child:      child,
		aField:     aField,
		gField:     gField,
		aFieldType: childDesc.Types[aField],
		op:         op,
	}
	if gField != NoGrouping {
		agg.gFieldType = childDesc.Types[gField]
	}

	aggregator, err := agg.newAggregator()
	if err != nil {
		return nil, err
	}
	agg.tupleDesc = aggregator.GetTupleDesc()
	agg.base = execution.NewBaseIterator("Aggregate", agg.readNext)
	return agg, nil
}

func invalidArg(msg string) *dberror.DBError {
	return dberror.New(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg, msg).At("NewAggregate", "Aggregate")
}

func (agg *Aggregate) newAggregator() (Aggregator, error) {
	var (
		a   Aggregator
		err error
	)
	switch agg.aFieldType {
	case types.IntType:
		a, err = NewIntAggregator(agg.gField, agg.gFieldType, agg.aField, agg.op)
	case types.StringType:
		a, err = NewStringAggregator(agg.gField, agg.gFieldType, agg.aField, agg.op)
	default:
		return nil, invalidArg("unsupported field type for aggregation").WithDetail("%s", agg.aFieldType)
	}
	if err != nil {
		return nil, dberror.Wrap(err, dberror.ErrCategoryProtocol, dberror.CodeInvalidArg, "NewAggregate", "Aggregate")
	}
	return a, nil
}

// Open opens the child, folds all of it and buffers the group results.
func (agg *Aggregate) Open() error {
	if err := execution.OpenChildren(agg.child); err != nil {
		return err
	}

	aggregator, err := agg.newAggregator()
	if err != nil {
		_ = agg.child.Close()
		return err
	}
	if err := iterator.ForEach(agg.child, aggregator.Merge); err != nil {
		_ = agg.child.Close()
		return err
	}

	if agg.results, err = aggregator.Results(); err != nil {
		_ = agg.child.Close()
		return err
	}
	agg.cursor = 0
	agg.base.MarkOpened()
	return nil
}

func (agg *Aggregate) Close() error {
	err := execution.CloseChildren(agg.child)
	agg.results = nil
	agg.cursor = 0
	_ = agg.base.Close()
	return err
}

// Rewind replays the buffered groups without re-reading the child.
func (agg *Aggregate) Rewind() error {
	if err := agg.base.CheckOpen(); err != nil {
		return err
	}
	agg.cursor = 0
	agg.base.ClearCache()
	return nil
}

func (agg *Aggregate) readNext() (*tuple.Tuple, error) {
	if agg.cursor >= len(agg.results) {
		return nil, nil
	}
	t := agg.results[agg.cursor]
	agg.cursor++
	return t, nil
}

func (agg *Aggregate) GetTupleDesc() *tuple.TupleDescription { return agg.tupleDesc }
func (agg *Aggregate) Op() AggregateOp                       { return agg.op }
func (agg *Aggregate) GroupField() int                       { return agg.gField }
func (agg *Aggregate) AggregateField() int                   { return agg.aField }

func (agg *Aggregate) HasNext() (bool, error)      { return agg.base.HasNext() }
func (agg *Aggregate) Next() (*tuple.Tuple, error) { return agg.base.Next() }

func (agg *Aggregate) Kind() execution.OperatorKind    { return execution.KindAggregate }
func (agg *Aggregate) Children() []iterator.DbIterator { return []iterator.DbIterator{agg.child} }
