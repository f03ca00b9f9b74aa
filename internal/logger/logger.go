// Package logger sets up structured logging: a text handler writing to stderr and to an
// append-only log file, plus an in-memory tail of recent lines for on-screen display.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogFilePath is the default log file, relative to the working directory.
const LogFilePath = "logs/cubesculpt.log"

// TailLines is how many recent lines Tail keeps.
const TailLines = 8

// Logger is a slog.Logger that also owns its log file.
type Logger struct {
	*slog.Logger
	file *os.File
	tail *Tail
}

// New opens (or creates) the log file at path and returns a logger writing at level to
// both stderr and the file. An empty path logs to stderr only.
func New(path string, level slog.Level) (*Logger, error) {
	tail := NewTail(TailLines)
	writers := []io.Writer{os.Stderr, tail}

	var f *os.File
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
	}

	h := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(h), file: f, tail: tail}, nil
}

// Lines returns the most recent log lines, oldest first.
func (l *Logger) Lines() []string {
	return l.tail.Lines()
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}

// Tail is an io.Writer that keeps the last n complete lines written to it.
type Tail struct {
	mu      sync.Mutex
	n       int
	lines   []string
	partial []byte
}

// NewTail returns a tail keeping at most n lines.
func NewTail(n int) *Tail {
	return &Tail{n: n}
}

func (t *Tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	buf := append(t.partial, p...)
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		t.lines = append(t.lines, string(buf[:i]))
		buf = buf[i+1:]
	}
	t.partial = append(t.partial[:0:0], buf...)
	if over := len(t.lines) - t.n; over > 0 {
		t.lines = append(t.lines[:0:0], t.lines[over:]...)
	}
	return len(p), nil
}

// Lines returns a copy of the kept lines.
func (t *Tail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}
