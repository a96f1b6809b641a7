// Package join implements the nested-loop join operator.
package join

import (
	"heapdb/pkg/dberror"
	"heapdb/pkg/execution"
	"heapdb/pkg/iterator"
	"heapdb/pkg/tuple"
)

// NestedLoopJoin emits left ++ right for every pair satisfying the predicate.
// For each left tuple the right child is rewound and scanned in full, so the
// output is ordered by left tuple first and right tuple second.
type NestedLoopJoin struct {
	base      *execution.BaseIterator
	predicate *JoinPredicate
	left      iterator.DbIterator
	right     iterator.DbIterator
	tupleDesc *tuple.TupleDescription
	current   *tuple.Tuple // left tuple being matched
}

func NewNestedLoopJoin(predicate *JoinPredicate, left, right iterator.DbIterator) (*NestedLoopJoin, error) {
	if predicate == nil || left == nil || right == nil {
		return nil, dberror.New(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg, "join needs a predicate and two children").
			At("NewNestedLoopJoin", "NestedLoopJoin")
	}

	nl := &NestedLoopJoin{
		predicate: predicate,
		left:      left,
		right:     right,
		tupleDesc: tuple.Combine(left.GetTupleDesc(), right.GetTupleDesc()),
	}
	nl.base = execution.NewBaseIterator("NestedLoopJoin", nl.readNext)
	return nl, nil
}

func (nl *NestedLoopJoin) Open() error {
	if err := execution.OpenChildren(nl.left, nl.right); err != nil {
		return err
	}
	nl.current = nil
	nl.base.MarkOpened()
	return nil
}

func (nl *NestedLoopJoin) Close() error {
	err := execution.CloseChildren(nl.left, nl.right)
	nl.current = nil
	_ = nl.base.Close()
	return err
}

func (nl *NestedLoopJoin) Rewind() error {
	if err := nl.base.CheckOpen(); err != nil {
		return err
	}
	if err := nl.left.Rewind(); err != nil {
		return err
	}
	if err := nl.right.Rewind(); err != nil {
		return err
	}
	nl.current = nil
	nl.base.ClearCache()
	return nil
}

func (nl *NestedLoopJoin) readNext() (*tuple.Tuple, error) {
	for {
		if nl.current == nil {
			hasLeft, err := nl.left.HasNext()
			if err != nil || !hasLeft {
				return nil, err
			}
			if nl.current, err = nl.left.Next(); err != nil {
				return nil, err
			}
			if err := nl.right.Rewind(); err != nil {
				return nil, err
			}
		}

		for {
			hasRight, err := nl.right.HasNext()
			if err != nil {
				return nil, err
			}
			if !hasRight {
				break
			}

			r, err := nl.right.Next()
			if err != nil {
				return nil, err
			}

			match, err := nl.predicate.Filter(nl.current, r)
			if err != nil {
				return nil, err
			}
			if match {
				return nl.combine(nl.current, r)
			}
		}
		nl.current = nil
	}
}

func (nl *NestedLoopJoin) combine(l, r *tuple.Tuple) (*tuple.Tuple, error) {
	joined, err := tuple.CombineTuples(l, r)
	if err != nil {
		return nil, err
	}
	joined.TupleDesc = nl.tupleDesc
	return joined, nil
}

// JoinField1Name returns the name of the left join field.
func (nl *NestedLoopJoin) JoinField1Name() string {
	name, _ := nl.left.GetTupleDesc().GetFieldName(nl.predicate.GetField1())
	return name
}

// JoinField2Name returns the name of the right join field.
func (nl *NestedLoopJoin) JoinField2Name() string {
	name, _ := nl.right.GetTupleDesc().GetFieldName(nl.predicate.GetField2())
	return name
}

func (nl *NestedLoopJoin) GetTupleDesc() *tuple.TupleDescription { return nl.tupleDesc }
func (nl *NestedLoopJoin) Predicate() *JoinPredicate             { return nl.predicate }

func (nl *NestedLoopJoin) HasNext() (bool, error)      { return nl.base.HasNext() }
func (nl *NestedLoopJoin) Next() (*tuple.Tuple, error) { return nl.base.Next() }

func (nl *NestedLoopJoin) Kind() execution.OperatorKind { return execution.KindJoin }
func (nl *NestedLoopJoin) Children() []iterator.DbIterator {
	return []iterator.DbIterator{nl.left, nl.right}
}
