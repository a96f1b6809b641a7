package aggregation

import (
	"fmt"
	"sync"

	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// StringAggregator counts string values per group. COUNT is the only
// supported operation.
type StringAggregator struct {
	gbField   int
	aField    int
	groups    *groups[int32]
	tupleDesc *tuple.TupleDescription
	mutex     sync.RWMutex
}

func NewStringAggregator(gbField int, gbFieldType types.Type, aField int, op AggregateOp) (*StringAggregator, error) {
	if op != Count {
		return nil, fmt.Errorf("string aggregator does not support operation: %s", op)
	}

	td, err := resultDesc(gbField, gbFieldType, op)
	if err != nil {
		return nil, fmt.Errorf("error creating StringAggregator: %w", err)
	}

	return &StringAggregator{
		gbField:   gbField,
		aField:    aField,
		groups:    newGroups[int32](),
		tupleDesc: td,
	}, nil
}

func (sa *StringAggregator) GetTupleDesc() *tuple.TupleDescription {
	return sa.tupleDesc
}

func (sa *StringAggregator) Merge(tup *tuple.Tuple) error {
	sa.mutex.Lock()
	defer sa.mutex.Unlock()

	key, groupField, err := groupKey(tup, sa.gbField)
	if err != nil {
		return err
	}

	aggField, err := tup.GetField(sa.aField)
	if err != nil {
		return fmt.Errorf("failed to get aggregate field: %w", err)
	}
	if _, ok := aggField.(*types.StringField); !ok {
		return fmt.Errorf("aggregate field %d is not a string", sa.aField)
	}

	*sa.groups.get(key, groupField, func() *int32 { return new(int32) })++
	return nil
}

func (sa *StringAggregator) Results() ([]*tuple.Tuple, error) {
	sa.mutex.RLock()
	defer sa.mutex.RUnlock()

	if sa.groups.len() == 0 {
		if sa.gbField != NoGrouping {
			return nil, nil
		}
		t, err := emit(sa.tupleDesc, nil, 0)
		if err != nil {
			return nil, err
		}
		return []*tuple.Tuple{t}, nil
	}

	results := make([]*tuple.Tuple, 0, sa.groups.len())
	for _, key := range sa.groups.order {
		t, err := emit(sa.tupleDesc, sa.groups.fields[key], *sa.groups.state[key])
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, nil
}
