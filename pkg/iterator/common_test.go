package iterator

import (
	"errors"
	"testing"

	"heapdb/pkg/dberror"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func intTuples(t *testing.T, values ...int32) ([]*tuple.Tuple, *tuple.TupleDescription) {
	t.Helper()
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"v"})
	if err != nil {
		t.Fatal(err)
	}
	out := make([]*tuple.Tuple, 0, len(values))
	for _, v := range values {
		tup, err := tuple.FromFields(td, types.NewIntField(v))
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, tup)
	}
	return out, td
}

func TestHelpers(t *testing.T) {
	tuples, td := intTuples(t, 1, 2, 3, 4)

	tests := []struct {
		name string
		run  func(it TupleIterator) (int, error)
		want int
	}{
		{"count", Count, 4},
		{"collect", func(it TupleIterator) (int, error) {
			got, err := Collect(it)
			return len(got), err
		}, 4},
		{"take two", func(it TupleIterator) (int, error) {
			got, err := Take(it, 2)
			return len(got), err
		}, 2},
		{"take more than available", func(it TupleIterator) (int, error) {
			got, err := Take(it, 10)
			return len(got), err
		}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := tuple.NewIterator(td, tuples)
			_ = it.Open()
			got, err := tt.run(it)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestForEach_StopsOnError(t *testing.T) {
	tuples, td := intTuples(t, 1, 2, 3)
	it := tuple.NewIterator(td, tuples)
	_ = it.Open()

	seen := 0
	stop := errors.New("stop")
	err := ForEach(it, func(*tuple.Tuple) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) || seen != 2 {
		t.Errorf("expected stop after 2, got %d (%v)", seen, err)
	}
}

func TestIterate_PropagatesIllegalState(t *testing.T) {
	tuples, td := intTuples(t, 1)
	it := tuple.NewIterator(td, tuples)

	if _, err := Count(it); !dberror.IsCode(err, dberror.CodeIllegalState) {
		t.Errorf("expected ILLEGAL_STATE on unopened iterator, got %v", err)
	}
}
