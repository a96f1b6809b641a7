package execution

import "heapdb/pkg/iterator"

// OperatorKind identifies the concrete operator behind an Operator.
type OperatorKind int

const (
	KindScan OperatorKind = iota
	KindFilter
	KindJoin
	KindAggregate
	KindInsert
	KindDelete
	KindProject
	KindLimit
)

func (k OperatorKind) String() string {
	switch k {
	case KindScan:
		return "Scan"
	case KindFilter:
		return "Filter"
	case KindJoin:
		return "Join"
	case KindAggregate:
		return "Aggregate"
	case KindInsert:
		return "Insert"
	case KindDelete:
		return "Delete"
	case KindProject:
		return "Project"
	case KindLimit:
		return "Limit"
	default:
		return "Unknown"
	}
}

// Operator is a node of an execution plan.
type Operator interface {
	iterator.DbIterator

	Kind() OperatorKind

	// Children returns the direct inputs, left to right. Scans have none.
	Children() []iterator.DbIterator
}

// OpenChildren opens children in order and closes the ones already opened
// if a later one fails.
func OpenChildren(children ...iterator.DbIterator) error {
	for i, child := range children {
		if err := child.Open(); err != nil {
			CloseChildren(children[:i]...)
			return err
		}
	}
	return nil
}

// CloseChildren closes every child and returns the first error.
func CloseChildren(children ...iterator.DbIterator) error {
	var first error
	for _, child := range children {
		if err := child.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
