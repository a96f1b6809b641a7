// Package statistics estimates predicate selectivity and scan cost from
// per-column histograms.
package statistics

import (
	"fmt"

	"heapdb/pkg/primitives"
)

// likeSelectivity is returned for LIKE, which a histogram cannot estimate.
const likeSelectivity = 0.2

// IntHistogram is a fixed-width histogram over an integer column whose
// values fall in [min, max]. Space is proportional to the bucket count.
type IntHistogram struct {
	min, max  int64
	width     int64 // every bucket but the last
	lastWidth int64
	heights   []int64
	count     int64
}

// NewIntHistogram creates a histogram of at most buckets buckets over [min, max].
// When the range holds fewer values than buckets, every bucket has width 1.
func NewIntHistogram(buckets int, min, max int32) (*IntHistogram, error) {
	if buckets <= 0 {
		return nil, fmt.Errorf("histogram needs at least one bucket, got %d", buckets)
	}
	if min > max {
		return nil, fmt.Errorf("histogram min %d exceeds max %d", min, max)
	}

	lo, hi := int64(min), int64(max)
	span := hi - lo + 1
	width := (span + int64(buckets) - 1) / int64(buckets)
	n := (span + width - 1) / width

	return &IntHistogram{
		min:       lo,
		max:       hi,
		width:     width,
		lastWidth: span - (n-1)*width,
		heights:   make([]int64, n),
	}, nil
}

func (h *IntHistogram) bucket(v int64) int {
	return int((v - h.min) / h.width)
}

func (h *IntHistogram) bucketWidth(i int) int64 {
	if i == len(h.heights)-1 {
		return h.lastWidth
	}
	return h.width
}

func (h *IntHistogram) left(i int) int64 {
	return h.min + int64(i)*h.width
}

// AddValue records v. Values outside [min, max] are clamped to the edge buckets.
func (h *IntHistogram) AddValue(v int32) {
	x := min(max(int64(v), h.min), h.max)
	h.heights[h.bucket(x)]++
	h.count++
}

// Count returns the number of values added.
func (h *IntHistogram) Count() int64 {
	return h.count
}

// EstimateSelectivity estimates the fraction of values x for which x op v holds.
// Values inside a bucket are assumed uniformly spread across its width.
func (h *IntHistogram) EstimateSelectivity(op primitives.Predicate, v int32) float64 {
	x := int64(v)
	switch {
	case x < h.min:
		return outOfRange(op, true)
	case x > h.max:
		return outOfRange(op, false)
	case h.count == 0:
		return emptySelectivity(op)
	}

	var s float64
	switch op {
	case primitives.Equals:
		s = h.equal(x)
	case primitives.NotEqual:
		s = 1 - h.equal(x)
	case primitives.GreaterThan:
		s = h.greater(x)
	case primitives.LessThanOrEqual:
		s = 1 - h.greater(x)
	case primitives.LessThan:
		s = h.less(x)
	case primitives.GreaterThanOrEqual:
		s = 1 - h.less(x)
	case primitives.Like:
		s = likeSelectivity
	}
	return clamp(s)
}

// outOfRange answers predicates for a constant below min or above max.
func outOfRange(op primitives.Predicate, below bool) float64 {
	switch op {
	case primitives.NotEqual:
		return 1
	case primitives.LessThan, primitives.LessThanOrEqual:
		if below {
			return 0
		}
		return 1
	case primitives.GreaterThan, primitives.GreaterThanOrEqual:
		if below {
			return 1
		}
		return 0
	case primitives.Like:
		return likeSelectivity
	default:
		return 0
	}
}

// emptySelectivity answers predicates over a histogram with no values: no
// value can match a comparison with v, and every value differs from it.
func emptySelectivity(op primitives.Predicate) float64 {
	switch op {
	case primitives.NotEqual:
		return 1
	case primitives.Like:
		return likeSelectivity
	default:
		return 0
	}
}

func (h *IntHistogram) equal(x int64) float64 {
	i := h.bucket(x)
	return float64(h.heights[i]) / float64(h.bucketWidth(i)) / float64(h.count)
}

// greater is the fraction strictly above x.
func (h *IntHistogram) greater(x int64) float64 {
	i := h.bucket(x)
	right := h.left(i) + h.bucketWidth(i) - 1
	s := float64(h.heights[i]) * float64(right-x) / float64(h.bucketWidth(i))
	for j := i + 1; j < len(h.heights); j++ {
		s += float64(h.heights[j])
	}
	return s / float64(h.count)
}

// less is the fraction strictly below x.
func (h *IntHistogram) less(x int64) float64 {
	i := h.bucket(x)
	s := float64(h.heights[i]) * float64(x-h.left(i)) / float64(h.bucketWidth(i))
	for j := 0; j < i; j++ {
		s += float64(h.heights[j])
	}
	return s / float64(h.count)
}

// AvgSelectivity is the chance that two values drawn from the column are
// equal under the uniform-bucket assumption.
func (h *IntHistogram) AvgSelectivity() float64 {
	if h.count == 0 {
		return 1
	}
	var s float64
	for i, height := range h.heights {
		f := float64(height) / float64(h.count)
		s += f * f / float64(h.bucketWidth(i))
	}
	return clamp(s)
}

func (h *IntHistogram) String() string {
	return fmt.Sprintf("IntHistogram(buckets=%d, min=%d, max=%d, width=%d, count=%d)",
		len(h.heights), h.min, h.max, h.width, h.count)
}

func clamp(s float64) float64 {
	return min(max(s, 0), 1)
}
