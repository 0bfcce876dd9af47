package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, data string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestNewLogger_CreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Info("hello")
	if err := l.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	entries := decodeLines(t, string(data))
	if len(entries) != 1 || entries[0]["msg"] != "hello" {
		t.Errorf("unexpected entries: %v", entries)
	}

	// Closing twice is harmless.
	if err := l.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}

func TestNewLogger_StderrWhenDirEmpty(t *testing.T) {
	l, err := NewLogger("", LevelInfo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.file != nil {
		t.Error("expected no file for stderr logger")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	entries := decodeLines(t, buf.String())
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["level"] != "WARN" || entries[1]["level"] != "ERROR" {
		t.Errorf("unexpected levels: %v, %v", entries[0]["level"], entries[1]["level"])
	}
}

func TestChildLoggersCarryAttributes(t *testing.T) {
	var buf bytes.Buffer
	root := New(&buf, LevelDebug)
	child := root.WithSession("s-1").WithTask("api").WithComponent("controller")

	child.Info("moved", "days", 3)
	root.Info("plain")

	entries := decodeLines(t, buf.String())
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	got := entries[0]
	if got["session_id"] != "s-1" || got["task_id"] != "api" || got["component"] != "controller" {
		t.Errorf("missing persistent attributes: %v", got)
	}
	if got["days"] != float64(3) {
		t.Errorf("expected days=3, got %v", got["days"])
	}
	if _, ok := entries[1]["session_id"]; ok {
		t.Error("parent logger picked up child attributes")
	}
}

func TestWith_SkipsNonStringKeys(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug).With(42, "ignored", "ok", true)
	l.Info("x")
	entries := decodeLines(t, buf.String())
	if entries[0]["ok"] != true {
		t.Errorf("expected ok=true, got %v", entries[0])
	}
	if _, found := entries[0]["!BADKEY"]; found {
		t.Error("non-string key leaked into output")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   LevelDebug,
		" INFO ":  LevelInfo,
		"warning": LevelWarn,
		"Error":   LevelError,
		"bogus":   LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Error("nothing happens")
	if err := l.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	var nilLogger *Logger
	nilLogger.Info("safe")
}
