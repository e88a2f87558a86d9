// Package ruff is the embedding API for the Ruff interpreter: it parses and
// evaluates source text and reports failures as *errors.RuffError values.
package ruff

import (
	"context"
	"fmt"
	"os"

	"github.com/sambeau/ruff/pkg/ruff/evaluator"
	rerrors "github.com/sambeau/ruff/pkg/ruff/errors"
	"github.com/sambeau/ruff/pkg/ruff/module"
	"github.com/sambeau/ruff/pkg/ruff/parser"
)

// Option configures an evaluation
type Option func(*evaluator.Environment)

// WithLogger sends print() output to l
func WithLogger(l Logger) Option {
	return func(env *evaluator.Environment) { env.Logger = l }
}

// WithFilename sets the file name reported in errors
func WithFilename(name string) Option {
	return func(env *evaluator.Environment) { env.Filename = name }
}

// WithLoader enables import using loader
func WithLoader(loader *module.Loader) Option {
	return func(env *evaluator.Environment) { env.Loader = loader }
}

// WithSearchPaths enables import from the given directories
func WithSearchPaths(paths ...string) Option {
	return WithLoader(module.NewLoader(paths...))
}

// WithDBMaxOpen caps the open connections of each database handle
func WithDBMaxOpen(n int) Option {
	return func(env *evaluator.Environment) { env.DBMaxOpen = n }
}

// NewEnvironment creates an environment configured by opts
func NewEnvironment(ctx context.Context, opts ...Option) *evaluator.Environment {
	env := evaluator.NewEnvironment()
	for _, opt := range opts {
		opt(env)
	}
	return env.WithContext(ctx)
}

// Eval parses and evaluates src. A runtime error is returned after the
// statements before it have taken effect. When src has syntax errors the
// statements that did parse are still run and the first syntax diagnostic
// is returned alongside their result.
func Eval(ctx context.Context, src string, opts ...Option) (evaluator.Object, error) {
	env := NewEnvironment(ctx, opts...)
	return EvalIn(env, src)
}

// EvalIn evaluates src in env
func EvalIn(env *evaluator.Environment, src string) (evaluator.Object, error) {
	program, errs := parser.ParseString(src)
	result := evaluator.Eval(program, env)
	if errObj, ok := result.(*evaluator.Error); ok {
		return nil, errObj.ToRuffError()
	}
	if len(errs) > 0 {
		return result, errs[0].WithFile(env.Filename)
	}
	return result, nil
}

// Run reads and evaluates the file at path
func Run(ctx context.Context, path string, opts ...Option) (evaluator.Object, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	opts = append([]Option{WithFilename(path)}, opts...)
	return Eval(ctx, string(src), opts...)
}

// Check parses src and returns its syntax diagnostics, if any
func Check(src, filename string) []*rerrors.RuffError {
	_, errs := parser.ParseString(src)
	out := make([]*rerrors.RuffError, len(errs))
	for i, e := range errs {
		out[i] = e.WithFile(filename)
	}
	return out
}
