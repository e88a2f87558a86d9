package ruff

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sambeau/ruff/pkg/ruff/evaluator"
)

// Logger receives the output of print()
type Logger = evaluator.Logger

// StdoutLogger returns the logger used by the CLI and REPL
func StdoutLogger() Logger {
	return evaluator.DefaultLogger
}

// joinValues renders values the way print() separates them
func joinValues(values ...any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

type writerLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *writerLogger) Log(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.w, joinValues(values...))
}

func (l *writerLogger) LogLine(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.w, joinValues(values...)+"\n")
}

// WriterLogger returns a logger that writes to w
func WriterLogger(w io.Writer) Logger {
	return &writerLogger{w: w}
}

// BufferedLogger captures output for later inspection. It is safe to write
// from several goroutines and read once evaluation has finished.
type BufferedLogger struct {
	mu      sync.Mutex
	lines   []string
	pending strings.Builder
}

// NewBufferedLogger creates an empty buffered logger
func NewBufferedLogger() *BufferedLogger {
	return &BufferedLogger{}
}

func (l *BufferedLogger) Log(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending.WriteString(joinValues(values...))
}

// LogLine completes the pending partial line, if any
func (l *BufferedLogger) LogLine(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, l.pending.String()+joinValues(values...))
	l.pending.Reset()
}

// String returns everything captured, one line per LogLine call
func (l *BufferedLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sb strings.Builder
	for _, line := range l.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(l.pending.String())
	return sb.String()
}

// Lines returns a copy of the completed lines
func (l *BufferedLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Reset discards everything captured so far
func (l *BufferedLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
	l.pending.Reset()
}

type nullLogger struct{}

func (nullLogger) Log(values ...any)     {}
func (nullLogger) LogLine(values ...any) {}

// NullLogger returns a logger that discards everything
func NullLogger() Logger {
	return nullLogger{}
}
