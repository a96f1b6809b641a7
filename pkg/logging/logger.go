package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	current *slog.Logger
	logFile *os.File
)

var errAlreadyInitialized = errors.New("logger already initialized; call Close first")

// LogLevel is a verbosity threshold.
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

type Config struct {
	Level      LogLevel
	OutputPath string // empty for stderr
	Format     string // "json" or "text"
}

// ParseLevel maps a case-insensitive level name to a LogLevel. Unknown names map to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init installs the process logger. It fails if a logger is already
// installed, including the lazy default of GetLogger.
//
// Example:
//
//	logging.Init(logging.Config{
//	    Level:      logging.LevelInfo,
//	    OutputPath: "data/heapdb.log",
//	    Format:     "json",
//	})
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		return errAlreadyInitialized
	}

	w, f, err := openOutput(cfg.OutputPath)
	if err != nil {
		return err
	}
	logFile = f
	current = slog.New(newHandler(w, cfg))
	return nil
}

// InitDefault installs an INFO text logger on stderr unless one is already
// installed.
func InitDefault() {
	mu.Lock()
	defer mu.Unlock()
	installDefaultLocked()
}

func installDefaultLocked() {
	if current == nil {
		current = slog.New(newHandler(os.Stderr, Config{Level: LevelInfo}))
	}
}

func openOutput(path string) (io.Writer, *os.File, error) {
	if path == "" {
		return os.Stderr, nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.Level.slogLevel()}
	if cfg.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Close uninstalls the logger and closes its file, if any. Init may be called
// again afterwards.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	current = nil
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// GetLogger returns the installed logger, installing the default first if
// there is none.
func GetLogger() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	installDefaultLocked()
	return current
}
