package logging

import (
	"log/slog"

	"heapdb/pkg/primitives"
)

// WithTx creates a logger with transaction context.
//
// Example:
//
//	log := logging.WithTx(tid)
//	log.Info("transaction committed", "pages", n)
func WithTx(tid *primitives.TransactionID) *slog.Logger {
	if tid == nil {
		return GetLogger().With("tx_id", nil)
	}
	return GetLogger().With("tx_id", tid.ID())
}

// WithTable creates a logger with table context.
// Use this for catalog and table operations.
func WithTable(tableName string, tableID primitives.TableID) *slog.Logger {
	return GetLogger().With("table", tableName, "table_id", uint64(tableID))
}

// WithPage creates a logger with page context.
// Useful for buffer pool and storage operations.
//
// Example:
//
//	log := logging.WithPage(pid)
//	log.Debug("page evicted", "dirty", true)
func WithPage(pid primitives.PageID) *slog.Logger {
	return GetLogger().With("table_id", uint64(pid.TableID), "page_no", uint64(pid.PageNo))
}

// WithLock creates a logger with transaction and page context for the lock manager.
func WithLock(tid *primitives.TransactionID, pid primitives.PageID) *slog.Logger {
	return WithTx(tid).With("table_id", uint64(pid.TableID), "page_no", uint64(pid.PageNo))
}

// WithComponent creates a logger with component/subsystem context.
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithError creates a logger with error context.
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
