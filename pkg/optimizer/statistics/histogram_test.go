package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/primitives"
)

func uniform(t *testing.T, buckets int, lo, hi int32) *IntHistogram {
	t.Helper()
	h, err := NewIntHistogram(buckets, lo, hi)
	require.NoError(t, err)
	for v := lo; v <= hi; v++ {
		h.AddValue(v)
	}
	return h
}

func TestIntHistogram_Boundaries(t *testing.T) {
	h := uniform(t, 10, 1, 100)

	assert.Equal(t, 0.0, h.EstimateSelectivity(primitives.LessThan, 1))
	assert.Equal(t, 1.0, h.EstimateSelectivity(primitives.GreaterThanOrEqual, 1))
	assert.Equal(t, 0.0, h.EstimateSelectivity(primitives.GreaterThan, 100))
	assert.Equal(t, 1.0, h.EstimateSelectivity(primitives.LessThanOrEqual, 100))
}

func TestIntHistogram_OutOfRange(t *testing.T) {
	h := uniform(t, 10, 1, 100)

	tests := []struct {
		op    primitives.Predicate
		below float64
		above float64
	}{
		{primitives.Equals, 0, 0},
		{primitives.NotEqual, 1, 1},
		{primitives.LessThan, 0, 1},
		{primitives.LessThanOrEqual, 0, 1},
		{primitives.GreaterThan, 1, 0},
		{primitives.GreaterThanOrEqual, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.below, h.EstimateSelectivity(tt.op, -5))
			assert.Equal(t, tt.above, h.EstimateSelectivity(tt.op, 500))
		})
	}
}

func TestIntHistogram_Uniform(t *testing.T) {
	h := uniform(t, 10, 1, 100)

	assert.InDelta(t, 0.01, h.EstimateSelectivity(primitives.Equals, 50), 1e-9)
	assert.InDelta(t, 0.99, h.EstimateSelectivity(primitives.NotEqual, 50), 1e-9)
	assert.InDelta(t, 0.5, h.EstimateSelectivity(primitives.GreaterThan, 50), 0.02)
	assert.InDelta(t, 0.5, h.EstimateSelectivity(primitives.LessThan, 51), 0.02)

	prev := 0.0
	for v := int32(1); v <= 100; v++ {
		s := h.EstimateSelectivity(primitives.LessThanOrEqual, v)
		assert.GreaterOrEqual(t, s, prev, "<= is monotone at %d", v)
		prev = s
	}
}

func TestIntHistogram_Skewed(t *testing.T) {
	h, err := NewIntHistogram(10, 0, 99)
	require.NoError(t, err)
	for range 90 {
		h.AddValue(5)
	}
	for v := int32(90); v < 100; v++ {
		h.AddValue(v)
	}

	assert.Greater(t, h.EstimateSelectivity(primitives.LessThan, 10), 0.8)
	assert.Less(t, h.EstimateSelectivity(primitives.GreaterThan, 50), 0.2)
	assert.Greater(t, h.EstimateSelectivity(primitives.Equals, 5), h.EstimateSelectivity(primitives.Equals, 95))
}

func TestIntHistogram_NarrowRange(t *testing.T) {
	// Fewer distinct values than buckets: one value per bucket.
	h := uniform(t, 100, 1, 4)
	assert.InDelta(t, 0.25, h.EstimateSelectivity(primitives.Equals, 3), 1e-9)
	assert.InDelta(t, 0.5, h.EstimateSelectivity(primitives.LessThan, 3), 1e-9)
	assert.InDelta(t, 0.25, h.AvgSelectivity(), 1e-9)
	assert.Contains(t, h.String(), "buckets=4")
}

func TestIntHistogram_Empty(t *testing.T) {
	h, err := NewIntHistogram(10, 0, 9)
	require.NoError(t, err)
	assert.Equal(t, 0.0, h.EstimateSelectivity(primitives.Equals, 3))
	assert.Equal(t, 1.0, h.EstimateSelectivity(primitives.NotEqual, 3))
	for _, op := range []primitives.Predicate{primitives.LessThan, primitives.LessThanOrEqual, primitives.GreaterThan, primitives.GreaterThanOrEqual} {
		assert.Equal(t, 0.0, h.EstimateSelectivity(op, 3), op.String())
	}
	assert.Equal(t, 1.0, h.AvgSelectivity())

	sh, err := NewStringHistogram(10)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sh.EstimateSelectivity(primitives.NotEqual, "x"))

	_, err = NewIntHistogram(0, 0, 9)
	assert.Error(t, err)
	_, err = NewIntHistogram(5, 9, 0)
	assert.Error(t, err)
}

func TestIntHistogram_RangeNotDivisible(t *testing.T) {
	// span 10 over 6 buckets gives width 2 and five buckets, none empty.
	h := uniform(t, 6, 0, 9)
	assert.Contains(t, h.String(), "buckets=5")
	assert.Equal(t, 1.0, h.EstimateSelectivity(primitives.LessThanOrEqual, 9))
	assert.InDelta(t, 0.1, h.EstimateSelectivity(primitives.Equals, 9), 1e-9)
}

func TestStringHistogram(t *testing.T) {
	h, err := NewStringHistogram(100)
	require.NoError(t, err)
	for _, s := range []string{"apple", "banana", "cherry", "date", "elderberry", "fig"} {
		h.AddValue(s)
	}

	assert.Less(t, stringKey("abc"), stringKey("abd"))
	assert.Less(t, stringKey("ab"), stringKey("abc"))
	assert.Equal(t, stringKey("abcdX"), stringKey("abcdY"))

	assert.Equal(t, 0.0, h.EstimateSelectivity(primitives.LessThan, ""))
	lt := h.EstimateSelectivity(primitives.LessThan, "d")
	assert.GreaterOrEqual(t, lt, 3.0/6)
	assert.Less(t, lt, 4.0/6)
	assert.InDelta(t, 1.0, h.EstimateSelectivity(primitives.LessThanOrEqual, "zzzz"), 1e-9)
}
