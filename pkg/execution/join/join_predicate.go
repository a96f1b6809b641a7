package join

import (
	"fmt"

	"heapdb/pkg/dberror"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
)

// JoinPredicate compares a field of a left tuple with a field of a right tuple.
type JoinPredicate struct {
	field1 int // index in the left tuple
	field2 int // index in the right tuple
	op     primitives.Predicate
}

func NewJoinPredicate(field1 int, op primitives.Predicate, field2 int) (*JoinPredicate, error) {
	if field1 < 0 || field2 < 0 {
		return nil, dberror.Newf(dberror.ErrCategoryProtocol, dberror.CodeInvalidArg,
			"join field indexes cannot be negative: %d, %d", field1, field2).
			At("NewJoinPredicate", "JoinPredicate")
	}

	return &JoinPredicate{
		field1: field1,
		field2: field2,
		op:     op,
	}, nil
}

// Filter reports whether t1 and t2 satisfy the predicate. Unset fields never match.
func (jp *JoinPredicate) Filter(t1, t2 *tuple.Tuple) (bool, error) {
	field1, err := t1.GetField(jp.field1)
	if err != nil {
		return false, fmt.Errorf("left field %d: %w", jp.field1, err)
	}

	field2, err := t2.GetField(jp.field2)
	if err != nil {
		return false, fmt.Errorf("right field %d: %w", jp.field2, err)
	}

	if field1 == nil || field2 == nil {
		return false, nil
	}
	return field1.Compare(jp.op, field2)
}

func (jp *JoinPredicate) String() string {
	return fmt.Sprintf("JoinPredicate(field1=%d %s field2=%d)", jp.field1, jp.op, jp.field2)
}

func (jp *JoinPredicate) GetOP() primitives.Predicate {
	return jp.op
}

func (jp *JoinPredicate) GetField1() int {
	return jp.field1
}

func (jp *JoinPredicate) GetField2() int {
	return jp.field2
}
