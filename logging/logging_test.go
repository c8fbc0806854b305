package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strooct/strooct/config"
)

func newTestLogger(t *testing.T, cfg config.LoggingConfig) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	l, err := New(cfg, &stdout, &stderr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, &stdout, &stderr
}

func TestTextFormat(t *testing.T) {
	l, _, stderr := newTestLogger(t, config.Defaults().Logging)

	l.Debug("hidden %d", 1)
	l.Info("scanned %d files", 3)
	l.Warn("slow")
	l.Error("failed: %s", "boom")

	expected := "[INFO] scanned 3 files\n[WARN] slow\n[ERROR] failed: boom\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestStdoutOutput(t *testing.T) {
	cfg := config.Defaults().Logging
	cfg.Output = "stdout"
	l, stdout, stderr := newTestLogger(t, cfg)

	l.Info("hello")
	if stdout.String() != "[INFO] hello\n" || stderr.Len() != 0 {
		t.Errorf("stdout=%q stderr=%q", stdout.String(), stderr.String())
	}
}

func TestQuiet(t *testing.T) {
	cfg := config.Defaults().Logging
	cfg.Level = "debug"
	cfg.Quiet = true
	l, _, stderr := newTestLogger(t, cfg)

	l.Info("hidden")
	l.Warn("shown")
	if stderr.String() != "[WARN] shown\n" {
		t.Errorf("got %q", stderr.String())
	}
}

func TestJSONFormat(t *testing.T) {
	cfg := config.Defaults().Logging
	cfg.Format = "json"
	l, _, stderr := newTestLogger(t, cfg)

	l.Info("watching %s", "src")

	var rec map[string]any
	if err := json.Unmarshal(stderr.Bytes(), &rec); err != nil {
		t.Fatalf("not JSON: %q", stderr.String())
	}
	if rec["level"] != "INFO" || rec["msg"] != "watching src" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestSetLevel(t *testing.T) {
	l, _, stderr := newTestLogger(t, config.Defaults().Logging)

	l.SetLevel(slog.LevelDebug)
	if !l.Enabled(slog.LevelDebug) {
		t.Error("debug should be enabled")
	}
	l.Debug("now visible")
	if !strings.Contains(stderr.String(), "[DEBUG] now visible") {
		t.Errorf("got %q", stderr.String())
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stlex.log")
	cfg := config.Defaults().Logging
	cfg.Output = path
	l, _, _ := newTestLogger(t, cfg)

	l.Warn("to file")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[WARN] to file\n" {
		t.Errorf("got %q", data)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr || got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.input, got, err)
		}
	}
}

func TestLevelFromFlags(t *testing.T) {
	l := LevelFromFlags(true, false, false)
	if l != slog.LevelDebug {
		t.Errorf("expected LevelFromFlags(true, false, false) = %v, but got %v", slog.LevelDebug, l)
	}
	l = LevelFromFlags(false, true, true)
	if l != slog.LevelInfo {
		t.Errorf("expected LevelFromFlags(false, true, true) = %v, but got %v", slog.LevelInfo, l)
	}
	l = LevelFromFlags(false, false, true)
	if l != slog.LevelError {
		t.Errorf("expected LevelFromFlags(false, false, true) = %v, but got %v", slog.LevelError, l)
	}
	l = LevelFromFlags(false, false, false)
	if l != slog.LevelWarn {
		t.Errorf("expected LevelFromFlags(false, false, false) = %v, but got %v", slog.LevelWarn, l)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	if l.Enabled(slog.LevelError) {
		t.Error("Discard should print nothing")
	}
}
