package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/dberror"
	"heapdb/pkg/iterator"
	"heapdb/pkg/primitives"
	"heapdb/pkg/tuple"
	"heapdb/pkg/types"
)

func intDesc(t *testing.T, names ...string) *tuple.TupleDescription {
	t.Helper()
	fieldTypes := make([]types.Type, len(names))
	for i := range fieldTypes {
		fieldTypes[i] = types.IntType
	}
	td, err := tuple.NewTupleDesc(fieldTypes, names)
	require.NoError(t, err)
	return td
}

func rows(t *testing.T, td *tuple.TupleDescription, values ...[]int32) *tuple.Iterator {
	t.Helper()
	tuples := make([]*tuple.Tuple, 0, len(values))
	for _, row := range values {
		fields := make([]types.Field, len(row))
		for i, v := range row {
			fields[i] = types.NewIntField(v)
		}
		tup, err := tuple.FromFields(td, fields...)
		require.NoError(t, err)
		tuples = append(tuples, tup)
	}
	return tuple.NewIterator(td, tuples)
}

func ints(t *testing.T, tup *tuple.Tuple) []int32 {
	t.Helper()
	out := make([]int32, tup.TupleDesc.NumFields())
	for i := range out {
		f, err := tup.GetField(i)
		require.NoError(t, err)
		out[i] = f.(*types.IntField).Value
	}
	return out
}

func collect(t *testing.T, nl *NestedLoopJoin) [][]int32 {
	t.Helper()
	all, err := iterator.Collect(nl)
	require.NoError(t, err)
	out := make([][]int32, 0, len(all))
	for _, tup := range all {
		out = append(out, ints(t, tup))
	}
	return out
}

func TestNestedLoopJoin(t *testing.T) {
	leftDesc := intDesc(t, "a.id", "a.x", "a.y")
	rightDesc := intDesc(t, "b.id", "b.x", "b.y")

	tests := []struct {
		name  string
		left  [][]int32
		right [][]int32
		op    primitives.Predicate
		want  [][]int32
	}{
		{
			name:  "single match",
			left:  [][]int32{{1, 2, 3}},
			right: [][]int32{{1, 5, 6}},
			op:    primitives.Equals,
			want:  [][]int32{{1, 2, 3, 1, 5, 6}},
		},
		{
			name:  "empty right",
			left:  [][]int32{{1, 2, 3}},
			right: nil,
			op:    primitives.Equals,
			want:  [][]int32{},
		},
		{
			name:  "empty left",
			left:  nil,
			right: [][]int32{{1, 5, 6}},
			op:    primitives.Equals,
			want:  [][]int32{},
		},
		{
			name:  "ordered by left then right",
			left:  [][]int32{{2, 0, 0}, {1, 0, 0}},
			right: [][]int32{{1, 7, 7}, {2, 8, 8}, {1, 9, 9}},
			op:    primitives.Equals,
			want: [][]int32{
				{2, 0, 0, 2, 8, 8},
				{1, 0, 0, 1, 7, 7},
				{1, 0, 0, 1, 9, 9},
			},
		},
		{
			name:  "inequality",
			left:  [][]int32{{1, 0, 0}, {3, 0, 0}},
			right: [][]int32{{2, 0, 0}},
			op:    primitives.LessThan,
			want:  [][]int32{{1, 0, 0, 2, 0, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := NewJoinPredicate(0, tt.op, 0)
			require.NoError(t, err)

			nl, err := NewNestedLoopJoin(pred, rows(t, leftDesc, tt.left...), rows(t, rightDesc, tt.right...))
			require.NoError(t, err)
			require.NoError(t, nl.Open())
			defer nl.Close()

			assert.Equal(t, tt.want, collect(t, nl))
		})
	}
}

func TestNestedLoopJoin_Schema(t *testing.T) {
	pred, err := NewJoinPredicate(0, primitives.Equals, 1)
	require.NoError(t, err)

	nl, err := NewNestedLoopJoin(pred, rows(t, intDesc(t, "a.id")), rows(t, intDesc(t, "b.x", "b.id")))
	require.NoError(t, err)

	td := nl.GetTupleDesc()
	assert.Equal(t, 3, td.NumFields())
	name, err := td.GetFieldName(2)
	require.NoError(t, err)
	assert.Equal(t, "b.id", name)
	assert.Equal(t, "a.id", nl.JoinField1Name())
	assert.Equal(t, "b.id", nl.JoinField2Name())
	assert.Len(t, nl.Children(), 2)
}

func TestNestedLoopJoin_Rewind(t *testing.T) {
	td := intDesc(t, "id")
	pred, err := NewJoinPredicate(0, primitives.Equals, 0)
	require.NoError(t, err)

	nl, err := NewNestedLoopJoin(pred, rows(t, td, []int32{1}, []int32{2}), rows(t, td, []int32{2}, []int32{1}))
	require.NoError(t, err)
	require.NoError(t, nl.Open())
	defer nl.Close()

	first := collect(t, nl)
	require.NoError(t, nl.Rewind())
	assert.Equal(t, first, collect(t, nl))
	assert.Len(t, first, 2)
}

func TestNestedLoopJoin_Closed(t *testing.T) {
	td := intDesc(t, "id")
	pred, err := NewJoinPredicate(0, primitives.Equals, 0)
	require.NoError(t, err)

	nl, err := NewNestedLoopJoin(pred, rows(t, td, []int32{1}), rows(t, td, []int32{1}))
	require.NoError(t, err)

	_, err = nl.HasNext()
	assert.True(t, dberror.IsCode(err, dberror.CodeIllegalState))

	_, err = NewJoinPredicate(-1, primitives.Equals, 0)
	assert.True(t, dberror.IsCode(err, dberror.CodeInvalidArg))

	_, err = NewNestedLoopJoin(nil, rows(t, td), rows(t, td))
	assert.True(t, dberror.IsCode(err, dberror.CodeInvalidArg))
}
