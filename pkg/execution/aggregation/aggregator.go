// Package aggregation implements grouped and ungrouped aggregates over a
// child operator.
package aggregation

import (
	"fmt"
	"strings"

	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

// NoGrouping indicates that no grouping field is used in aggregation.
const NoGrouping = -1

// AggregateOp represents the reducer applied to each group.
type AggregateOp int

const (
	Min AggregateOp = iota
	Max
	Sum
	Avg
	Count
)

func (op AggregateOp) String() string {
	switch op {
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	case Count:
		return "COUNT"
	default:
		return "UNKNOWN"
	}
}

// ParseAggregateOp converts a case-insensitive operator name to an AggregateOp.
func ParseAggregateOp(opStr string) (AggregateOp, error) {
	switch strings.ToUpper(opStr) {
	case "MIN":
		return Min, nil
	case "MAX":
		return Max, nil
	case "SUM":
		return Sum, nil
	case "AVG":
		return Avg, nil
	case "COUNT":
		return Count, nil
	default:
		return 0, fmt.Errorf("unsupported aggregate operation: %s", opStr)
	}
}

// Aggregator folds tuples into per-group accumulators.
type Aggregator interface {
	// Merge folds one tuple into its group.
	Merge(tup *tuple.Tuple) error

	// Results returns one tuple per group in first-seen order.
	Results() ([]*tuple.Tuple, error)

	GetTupleDesc() *tuple.TupleDescription
}

// groups tracks group keys in first-seen order alongside the group's field.
type groups[S any] struct {
	order  []string
	fields map[string]types.Field
	state  map[string]*S
}

func newGroups[S any]() *groups[S] {
	return &groups[S]{
		fields: make(map[string]types.Field),
		state:  make(map[string]*S),
	}
}

// get returns the accumulator for the group of field, creating it with init.
func (g *groups[S]) get(key string, field types.Field, init func() *S) *S {
	if s, ok := g.state[key]; ok {
		return s
	}
	s := init()
	g.order = append(g.order, key)
	g.fields[key] = field
	g.state[key] = s
	return s
}

func (g *groups[S]) len() int {
	return len(g.order)
}

// groupKey extracts the group field of tup, or the empty key when ungrouped.
func groupKey(tup *tuple.Tuple, gbField int) (string, types.Field, error) {
	if gbField == NoGrouping {
		return "", nil, nil
	}

	field, err := tup.GetField(gbField)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get grouping field: %w", err)
	}
	if field == nil {
		return "", nil, fmt.Errorf("grouping field %d is unset", gbField)
	}
	return field.Type().String() + ":" + field.String(), field, nil
}

func resultDesc(gbField int, gbFieldType types.Type, op AggregateOp) (*tuple.TupleDescription, error) {
	if gbField == NoGrouping {
		return tuple.NewTupleDesc([]types.Type{types.IntType}, []string{op.String()})
	}
	return tuple.NewTupleDesc(
		[]types.Type{gbFieldType, types.IntType},
		[]string{"group", op.String()},
	)
}

// emit builds a result tuple for one group.
func emit(td *tuple.TupleDescription, groupField types.Field, value int32) (*tuple.Tuple, error) {
	if groupField == nil {
		return tuple.FromFields(td, types.NewIntField(value))
	}
	return tuple.FromFields(td, groupField, types.NewIntField(value))
}
