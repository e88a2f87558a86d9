package ruff

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	rerrors "github.com/sambeau/ruff/pkg/ruff/errors"
)

func TestEval(t *testing.T) {
	log := NewBufferedLogger()
	result, err := Eval(context.Background(), `let x := 2 print("x is", x) x * 21`, WithLogger(log))
	if err != nil {
		t.Fatalf("Eval() error: %v", err)
	}
	if result.Inspect() != "42" {
		t.Errorf("result = %s, want 42", result.Inspect())
	}
	if log.String() != "x is 2\n" {
		t.Errorf("output = %q", log.String())
	}
}

func TestEvalParseError(t *testing.T) {
	_, err := Eval(context.Background(), "let := 5", WithFilename("bad.ruff"), WithLogger(NullLogger()))
	var rerr *rerrors.RuffError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *RuffError", err)
	}
	if !rerr.IsParseError() || rerr.File != "bad.ruff" {
		t.Errorf("error = %+v", rerr)
	}
}

func TestEvalRuntimeError(t *testing.T) {
	log := NewBufferedLogger()
	_, err := Eval(context.Background(), "print(\"before\")\nlet y := 1 / 0\nprint(\"after\")", WithLogger(log))
	var rerr *rerrors.RuffError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *RuffError", err)
	}
	if rerr.Code != "OP-0001" || rerr.Line != 2 {
		t.Errorf("error = %s (line %d)", rerr.Code, rerr.Line)
	}
	if log.String() != "before\n" {
		t.Errorf("output = %q, want only the output before the error", log.String())
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lib.ruff"), []byte("let v := 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	main := filepath.Join(dir, "main.ruff")
	if err := os.WriteFile(main, []byte("import lib\nprint(type(lib))"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if _, err := Run(context.Background(), main, WithLogger(WriterLogger(&out)), WithSearchPaths(dir)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out.String() != "module\n" {
		t.Errorf("output = %q", out.String())
	}

	_, err := Run(context.Background(), filepath.Join(dir, "missing.ruff"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Run(missing) error = %v", err)
	}
}

func TestRunErrorCarriesFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boom.ruff")
	if err := os.WriteFile(path, []byte(`throw("boom")`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Run(context.Background(), path, WithLogger(NullLogger()))
	var rerr *rerrors.RuffError
	if !errors.As(err, &rerr) || rerr.File != path || rerr.Message != "boom" {
		t.Errorf("error = %v", err)
	}
}

func TestEvalInKeepsBindings(t *testing.T) {
	env := NewEnvironment(context.Background(), WithLogger(NullLogger()))
	if _, err := EvalIn(env, "mut n := 1"); err != nil {
		t.Fatal(err)
	}
	result, err := EvalIn(env, "n := n + 1 n")
	if err != nil {
		t.Fatal(err)
	}
	if result.Inspect() != "2" {
		t.Errorf("n = %s, want 2", result.Inspect())
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Eval(ctx, "loop { }", WithLogger(NullLogger()))
	var rerr *rerrors.RuffError
	if !errors.As(err, &rerr) || rerr.Code != "STATE-0004" {
		t.Errorf("error = %v", err)
	}
}

func TestCheck(t *testing.T) {
	if errs := Check("let x := 1", "ok.ruff"); len(errs) != 0 {
		t.Errorf("Check(valid) = %v", errs)
	}
	errs := Check("let x 1", "bad.ruff")
	if len(errs) != 1 || errs[0].File != "bad.ruff" || errs[0].Code != "PARSE-0001" {
		t.Errorf("Check(invalid) = %v", errs)
	}
}

func TestBufferedLogger(t *testing.T) {
	log := NewBufferedLogger()
	log.Log("partial", 1)
	log.LogLine(" done")
	log.LogLine("second")
	log.Log("tail")

	if got := log.String(); got != "partial 1 done\nsecond\ntail" {
		t.Errorf("String() = %q", got)
	}
	lines := log.Lines()
	if len(lines) != 2 || lines[0] != "partial 1 done" {
		t.Errorf("Lines() = %q", lines)
	}

	lines[0] = "mutated"
	if log.Lines()[0] != "partial 1 done" {
		t.Error("Lines() returned the internal slice")
	}

	log.Reset()
	if log.String() != "" {
		t.Errorf("after Reset String() = %q", log.String())
	}
}

func TestBufferedLoggerConcurrent(t *testing.T) {
	log := NewBufferedLogger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.LogLine("x")
		}()
	}
	wg.Wait()
	if n := len(log.Lines()); n != 20 {
		t.Errorf("captured %d lines, want 20", n)
	}
}

func TestWriterAndNullLoggers(t *testing.T) {
	var buf bytes.Buffer
	w := WriterLogger(&buf)
	w.Log("a", "b")
	w.LogLine("", 3)
	if buf.String() != "a b 3\n" {
		t.Errorf("writer output = %q", buf.String())
	}

	n := NullLogger()
	n.Log("x")
	n.LogLine("y")
	if StdoutLogger() == nil {
		t.Error("StdoutLogger() is nil")
	}
}
