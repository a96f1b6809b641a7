package statistics

import (
	"heapdb/pkg/primitives"
)

// Strings are ordered by their first four bytes, each capped at 0x7f.
const (
	minStringKey int32 = 0
	maxStringKey int32 = 0x7f7f7f7f
)

// StringHistogram estimates selectivity over a string column by mapping each
// string to an integer that preserves prefix order.
type StringHistogram struct {
	hist *IntHistogram
}

func NewStringHistogram(buckets int) (*StringHistogram, error) {
	h, err := NewIntHistogram(buckets, minStringKey, maxStringKey)
	if err != nil {
		return nil, err
	}
	return &StringHistogram{hist: h}, nil
}

func stringKey(s string) int32 {
	var v int32
	for i := range 4 {
		v <<= 8
		if i < len(s) {
			v |= int32(min(s[i], 0x7f))
		}
	}
	return v
}

func (h *StringHistogram) AddValue(s string) {
	h.hist.AddValue(stringKey(s))
}

func (h *StringHistogram) EstimateSelectivity(op primitives.Predicate, s string) float64 {
	return h.hist.EstimateSelectivity(op, stringKey(s))
}

func (h *StringHistogram) AvgSelectivity() float64 { return h.hist.AvgSelectivity() }
func (h *StringHistogram) String() string          { return h.hist.String() }
