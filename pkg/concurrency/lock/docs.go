// Package lock implements page-level strict two-phase locking.
//
// A transaction takes a [SharedLock] to read a page and an [ExclusiveLock] to
// write one, and keeps every lock until it commits or aborts. A sole shared
// holder may upgrade to exclusive; locks are never downgraded.
//
// # Components
//
// [LockManager] is the entry point. It owns a single mutex and coordinates:
//
//   - [LockTable]: granted locks, indexed by page and by transaction.
//   - [WaitQueue]: requests that could not be granted on arrival.
//   - [DependencyGraph]: the wait-for graph. An edge A→B means A waits for B.
//   - [LockGrantor]: compatibility checks and the grant itself.
//
// # Acquisition
//
// [LockManager.LockPage] runs the following loop under the manager mutex:
//
//  1. If tid already holds a sufficient lock, return.
//  2. If tid is the sole shared holder and wants exclusive, upgrade.
//  3. If the request is compatible with every other holder, grant it. Waiters
//     on the page that conflict with the new lock gain an edge to tid.
//  4. Otherwise park the request and add edges from tid to each conflicting
//     holder. If tid can now reach itself in the graph, withdraw the request
//     and return TRANSACTION_ABORTED.
//  5. Release the mutex and block until a lock on the page is released or the
//     context is cancelled, then retry from step 1.
//
// Detection runs before the caller blocks and under the same mutex that
// inserts edges, so of the transactions forming a cycle only the one whose
// request closes it is aborted.
package lock
