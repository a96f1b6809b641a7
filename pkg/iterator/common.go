package iterator

import "heapdb/pkg/tuple"

// Iterate drives iter to exhaustion, handing each tuple to fn. fn returns
// false to stop early. The iterator must already be open.
func Iterate(iter TupleIterator, fn func(*tuple.Tuple) (bool, error)) error {
	for {
		hasNext, err := iter.HasNext()
		if err != nil {
			return err
		}
		if !hasNext {
			return nil
		}

		tup, err := iter.Next()
		if err != nil {
			return err
		}

		more, err := fn(tup)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// ForEach applies fn to every remaining tuple, stopping at the first error.
func ForEach(iter TupleIterator, fn func(*tuple.Tuple) error) error {
	return Iterate(iter, func(tup *tuple.Tuple) (bool, error) {
		return true, fn(tup)
	})
}

// Take returns up to n tuples from the iterator.
func Take(iter TupleIterator, n int) ([]*tuple.Tuple, error) {
	if n <= 0 {
		return nil, nil
	}
	tuples := make([]*tuple.Tuple, 0, n)
	err := Iterate(iter, func(tup *tuple.Tuple) (bool, error) {
		tuples = append(tuples, tup)
		return len(tuples) < n, nil
	})
	return tuples, err
}

// Count consumes the iterator and returns the number of tuples it produced.
func Count(iter TupleIterator) (int, error) {
	n := 0
	err := ForEach(iter, func(*tuple.Tuple) error {
		n++
		return nil
	})
	return n, err
}

// Collect returns all remaining tuples as a slice.
func Collect(iter TupleIterator) ([]*tuple.Tuple, error) {
	var results []*tuple.Tuple
	err := ForEach(iter, func(tup *tuple.Tuple) error {
		results = append(results, tup)
		return nil
	})
	return results, err
}
