package aggregation

import (
	"fmt"
	"math"
	"sync"

	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

type intState struct {
	value int32
	count int32
}

// IntegerAggregator computes MIN, MAX, SUM, AVG and COUNT over an integer field.
type IntegerAggregator struct {
	groupByField int
	aggrField    int
	op           AggregateOp
	groups       *groups[intState]
	tupleDesc    *tuple.TupleDescription
	mutex        sync.RWMutex
}

func NewIntAggregator(gbField int, gbFieldType types.Type, aField int, op AggregateOp) (*IntegerAggregator, error) {
	switch op {
	case Min, Max, Sum, Avg, Count:
	default:
		return nil, fmt.Errorf("integer aggregator does not support operation: %s", op)
	}

	td, err := resultDesc(gbField, gbFieldType, op)
	if err != nil {
		return nil, fmt.Errorf("error creating IntegerAggregator: %w", err)
	}

	return &IntegerAggregator{
		groupByField: gbField,
		aggrField:    aField,
		op:           op,
		groups:       newGroups[intState](),
		tupleDesc:    td,
	}, nil
}

func (ia *IntegerAggregator) GetTupleDesc() *tuple.TupleDescription {
	return ia.tupleDesc
}

func (ia *IntegerAggregator) Merge(tup *tuple.Tuple) error {
	ia.mutex.Lock()
	defer ia.mutex.Unlock()

	key, groupField, err := groupKey(tup, ia.groupByField)
	if err != nil {
		return err
	}

	aggField, err := tup.GetField(ia.aggrField)
	if err != nil {
		return fmt.Errorf("failed to get aggregate field: %w", err)
	}
	intField, ok := aggField.(*types.IntField)
	if !ok {
		return fmt.Errorf("aggregate field %d is not an integer", ia.aggrField)
	}

	state := ia.groups.get(key, groupField, ia.initState)
	ia.update(state, intField.Value)
	return nil
}

func (ia *IntegerAggregator) initState() *intState {
	switch ia.op {
	case Min:
		return &intState{value: math.MaxInt32}
	case Max:
		return &intState{value: math.MinInt32}
	default:
		return &intState{}
	}
}

func (ia *IntegerAggregator) update(state *intState, v int32) {
	state.count++
	switch ia.op {
	case Min:
		state.value = min(state.value, v)
	case Max:
		state.value = max(state.value, v)
	case Sum, Avg:
		state.value += v
	case Count:
		state.value = state.count
	}
}

// Results returns one tuple per group. AVG is the truncated integer quotient.
// An ungrouped COUNT with no input yields a single 0.
func (ia *IntegerAggregator) Results() ([]*tuple.Tuple, error) {
	ia.mutex.RLock()
	defer ia.mutex.RUnlock()

	if ia.groups.len() == 0 {
		if ia.groupByField == NoGrouping && ia.op == Count {
			t, err := emit(ia.tupleDesc, nil, 0)
			if err != nil {
				return nil, err
			}
			return []*tuple.Tuple{t}, nil
		}
		return nil, nil
	}

	results := make([]*tuple.Tuple, 0, ia.groups.len())
	for _, key := range ia.groups.order {
		state := ia.groups.state[key]
		value := state.value
		if ia.op == Avg {
			value = state.value / state.count
		}

		t, err := emit(ia.tupleDesc, ia.groups.fields[key], value)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, nil
}
