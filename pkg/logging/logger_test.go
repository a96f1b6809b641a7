package logging

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"heapdb/pkg/primitives"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"Error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestInit_JSONFile(t *testing.T) {
	_ = Close()
	path := filepath.Join(t.TempDir(), "logs", "heapdb.log")

	if err := Init(Config{Level: LevelDebug, OutputPath: path, Format: "json"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := Init(Config{}); err == nil {
		t.Error("Expected second Init to fail")
	}

	tid := primitives.NewTransactionID()
	WithTx(tid).Debug("tx message")
	WithPage(primitives.NewPageID(7, 3)).Info("page message")
	WithError(errors.New("boom")).Error("failed")

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 log lines, got %d: %s", len(lines), data)
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec["page_no"] != float64(3) || rec["table_id"] != float64(7) {
		t.Errorf("Unexpected page attributes: %v", rec)
	}
}

func TestGetLogger_LazyDefault(t *testing.T) {
	_ = Close()
	if GetLogger() == nil {
		t.Fatal("Expected lazily initialized logger")
	}
	_ = Close()
}
