// Package iterator defines the pull-based tuple iterator contracts shared by
// the storage layer and the execution engine.
package iterator

import "heapdb/pkg/tuple"

// TupleIterator is a minimal interface that captures the common iteration methods
// shared by both DbIterator and DbFileIterator. This allows writing generic
// utility functions that work with any iterator type.
type TupleIterator interface {
	// HasNext checks if there are more tuples available without consuming them.
	HasNext() (bool, error)

	// Next retrieves and returns the next tuple from the iterator.
	Next() (*tuple.Tuple, error)
}

// DbFileIterator is the iterator returned by a storage file. Schema
// information lives on the file itself.
type DbFileIterator interface {
	TupleIterator

	// Open prepares the iterator for use. HasNext and Next fail with
	// ILLEGAL_STATE until Open is called.
	Open() error

	// Rewind resets the iterator to the beginning of the tuple sequence.
	Rewind() error

	// Close releases any resources held by the iterator. Close is idempotent.
	Close() error
}

// DbIterator defines the contract for all database iterators in the execution engine.
//
// The lifecycle is Closed -> Open -> Closed. HasNext and Next on a closed
// iterator fail with ILLEGAL_STATE; Next past the end fails with NO_MORE_TUPLES.
type DbIterator interface {
	DbFileIterator

	// GetTupleDesc returns the schema description for tuples produced by this iterator.
	// This method can be called regardless of iterator state.
	GetTupleDesc() *tuple.TupleDescription
}
