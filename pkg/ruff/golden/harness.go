// Package golden runs directories of Ruff fixtures and compares what they
// print with stored snapshots.
//
// Every fixture `name.ruff` has a sibling `name.out` holding its expected
// output. The fixture is tokenized, parsed and evaluated in an environment of
// its own; everything it prints is captured, trimmed and compared with the
// trimmed snapshot. A missing snapshot, or Update mode, writes the snapshot
// from the actual output instead.
package golden

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sambeau/ruff/pkg/ruff/ast"
	"github.com/sambeau/ruff/pkg/ruff/evaluator"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
	"github.com/sambeau/ruff/pkg/ruff/module"
	"github.com/sambeau/ruff/pkg/ruff/parser"
	"github.com/sambeau/ruff/pkg/ruff/ruff"
)

const (
	DefaultSourceExt   = ".ruff"
	DefaultExpectedExt = ".out"
)

// Options controls a harness run
type Options struct {
	Dir         string
	SourceExt   string // defaults to DefaultSourceExt
	ExpectedExt string // defaults to DefaultExpectedExt
	Update      bool   // rewrite every snapshot from actual output

	SearchPaths []string  // extra import paths; the fixture directory is always searched first
	DBMaxOpen   int       // zero keeps the evaluator default
	Out         io.Writer // per-fixture report lines; nil discards them
}

func (o Options) withDefaults() Options {
	if o.SourceExt == "" {
		o.SourceExt = DefaultSourceExt
	}
	if o.ExpectedExt == "" {
		o.ExpectedExt = DefaultExpectedExt
	}
	if o.Out == nil {
		o.Out = io.Discard
	}
	return o
}

// Result is the outcome of one fixture
type Result struct {
	Name     string
	Path     string
	Passed   bool
	Updated  bool // the snapshot was written during this run
	Expected string
	Got      string
	Err      error // runtime error raised by the fixture, if any
	Duration time.Duration
}

// Summary is the outcome of a whole run
type Summary struct {
	Results  []Result
	Passed   int
	Failed   int
	Total    int
	Duration time.Duration
}

// OK reports whether every fixture passed
func (s *Summary) OK() bool {
	return s.Failed == 0
}

// Run executes every fixture in opts.Dir in name order
func Run(ctx context.Context, opts Options) (*Summary, error) {
	opts = opts.withDefaults()

	fixtures, err := Fixtures(opts.Dir, opts.SourceExt)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	summary := &Summary{}
	for _, path := range fixtures {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		res, err := runFixture(ctx, path, opts)
		if err != nil {
			return summary, err
		}
		summary.Results = append(summary.Results, res)
		summary.Total++
		if res.Passed {
			summary.Passed++
			fmt.Fprintf(opts.Out, "[✓] %s (%s)\n", res.Path, res.Duration.Round(10*time.Microsecond))
		} else {
			summary.Failed++
			fmt.Fprintf(opts.Out, "[✗] %s\n", res.Path)
			fmt.Fprintf(opts.Out, "Expected:\n%s\nGot:\n%s\n\n", res.Expected, res.Got)
		}
	}
	summary.Duration = time.Since(start)

	fmt.Fprintf(opts.Out, "\n[✓] Passed %d/%d tests\n", summary.Passed, summary.Total)
	return summary, nil
}

// Fixtures lists the fixture files directly inside dir, sorted by name
func Fixtures(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading test directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// SnapshotPath returns the expected-output file for a fixture
func SnapshotPath(fixture, expectedExt string) string {
	return strings.TrimSuffix(fixture, filepath.Ext(fixture)) + expectedExt
}

func runFixture(ctx context.Context, path string, opts Options) (Result, error) {
	res := Result{
		Name: strings.TrimSuffix(filepath.Base(path), opts.SourceExt),
		Path: path,
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("reading fixture: %w", err)
	}

	start := time.Now()
	res.Got, res.Err = Capture(ctx, string(src), path, opts)
	res.Duration = time.Since(start)

	snapshot := SnapshotPath(path, opts.ExpectedExt)
	expected, err := os.ReadFile(snapshot)
	switch {
	case opts.Update || os.IsNotExist(err):
		if err := os.WriteFile(snapshot, []byte(res.Got), 0o644); err != nil {
			return res, fmt.Errorf("writing snapshot: %w", err)
		}
		res.Expected = res.Got
		res.Updated = true
	case err != nil:
		return res, fmt.Errorf("reading snapshot: %w", err)
	default:
		res.Expected = strings.TrimSpace(string(expected))
	}

	res.Passed = res.Got == res.Expected
	return res, nil
}

// Capture evaluates src and returns its trimmed output. A runtime error
// stops evaluation and is appended to the output as an "Error:" line so
// that snapshots record it.
func Capture(ctx context.Context, src, filename string, opts Options) (string, error) {
	opts = opts.withDefaults()

	log := ruff.NewBufferedLogger()
	searchPaths := append([]string{filepath.Dir(filename)}, opts.SearchPaths...)
	envOpts := []ruff.Option{
		ruff.WithLogger(log),
		ruff.WithFilename(filename),
		ruff.WithLoader(module.NewLoader(searchPaths...)),
	}
	if opts.DBMaxOpen > 0 {
		envOpts = append(envOpts, ruff.WithDBMaxOpen(opts.DBMaxOpen))
	}
	env := ruff.NewEnvironment(ctx, envOpts...)

	statements := parser.Parse(lexer.Tokenize(src))
	result := evaluator.Eval(&ast.Program{Statements: statements}, env)

	var runErr error
	if errObj, ok := result.(*evaluator.Error); ok {
		runErr = errObj.ToRuffError()
		log.LogLine(errorLine(errObj))
	}
	return strings.TrimSpace(log.String()), runErr
}

// errorLine renders a runtime error without the file name, which would tie
// snapshots to the directory they were recorded in
func errorLine(e *evaluator.Error) string {
	if e.Line > 0 {
		return fmt.Sprintf("Error: line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return "Error: " + e.Message
}
