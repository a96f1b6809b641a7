// Package execution holds the query operators of the pull-based (volcano)
// engine. Every operator implements [Operator]: callers Open the root, pull
// tuples with HasNext/Next, and Close it when done. Operators open their
// children before themselves and close them first as well.
//
// Sub-packages:
//
//   - [heapdb/pkg/execution/join]: nested-loop join on a field predicate.
//   - [heapdb/pkg/execution/aggregation]: COUNT, SUM, MIN, MAX and AVG with
//     optional grouping.
package execution
