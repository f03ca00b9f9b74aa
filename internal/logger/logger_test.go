package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTailKeepsLastLines(t *testing.T) {
	tail := NewTail(2)
	for _, s := range []string{"one\ntw", "o\nthree\n", "four"} {
		if _, err := tail.Write([]byte(s)); err != nil {
			t.Fatal(err)
		}
	}
	got := strings.Join(tail.Lines(), "|")
	if got != "two|three" {
		t.Fatalf("lines = %q", got)
	}
	tail.Write([]byte("\n"))
	if got := strings.Join(tail.Lines(), "|"); got != "three|four" {
		t.Fatalf("lines = %q", got)
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	l, err := New(path, slog.LevelInfo)
	if err != nil {
		t.Fatal(err)
	}
	l.Info("cube placed", "count", 3)
	l.Debug("hidden")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `msg="cube placed" count=3`) {
		t.Fatalf("log file = %q", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatal("debug line written at info level")
	}
	if lines := l.Lines(); len(lines) != 1 {
		t.Fatalf("tail = %v", lines)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}
