// Package logging provides a process-wide structured logger for heapdb.
//
// The package wraps [log/slog] and exposes a single global logger instance
// that is initialized once and then retrieved via GetLogger. The buffer pool,
// lock manager, catalog and CLI all log through this package so that level and
// destination are controlled from one place.
//
// # Initialisation
//
// Call Init (or InitDefault) once at program startup:
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug, Format: "json"}); err != nil {
//	    log.Fatal(err)
//	}
//
// InitDefault writes INFO-level text logs to stderr. Stdout is left to command output.
// If GetLogger is called before Init, the default logger is created lazily.
//
// # Context helpers
//
//	log := logging.WithTx(tid)          // adds tx_id
//	log := logging.WithPage(pid)        // adds table_id and page_no
//	log := logging.WithComponent("bp")  // adds component
package logging
