// Package testrun runs the tests a Ruff file declares with `test`,
// `test_setup`, `test_teardown` and `test_group`.
package testrun

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sambeau/ruff/pkg/ruff/ast"
	"github.com/sambeau/ruff/pkg/ruff/evaluator"
)

// Case is one collected test
type Case struct {
	Name  string
	Group string // enclosing test_group names joined with " / ", empty at top level
	Body  []ast.Statement
}

// FullName returns the group path and test name
func (c Case) FullName() string {
	if c.Group == "" {
		return c.Name
	}
	return c.Group + " / " + c.Name
}

// Suite is everything Collect found in a program
type Suite struct {
	Cases    []Case
	Setup    []ast.Statement
	Teardown []ast.Statement
}

// Collect gathers tests from stmts, recursing into groups. A later
// test_setup or test_teardown replaces an earlier one.
func Collect(stmts []ast.Statement) *Suite {
	s := &Suite{}
	s.collect(stmts, "")
	return s
}

func (s *Suite) collect(stmts []ast.Statement, group string) {
	for _, stmt := range stmts {
		switch stmt := stmt.(type) {
		case *ast.TestStatement:
			s.Cases = append(s.Cases, Case{Name: stmt.Name, Group: group, Body: stmt.Body})
		case *ast.TestSetup:
			s.Setup = stmt.Body
		case *ast.TestTeardown:
			s.Teardown = stmt.Body
		case *ast.TestGroup:
			name := stmt.Name
			if group != "" {
				name = group + " / " + name
			}
			s.collect(stmt.Body, name)
		}
	}
}

// Result is the outcome of one test
type Result struct {
	Name     string
	Passed   bool
	Message  string // failure message, empty when the test passed
	Duration time.Duration
}

// Report summarises a run
type Report struct {
	Results  []Result
	Total    int
	Passed   int
	Failed   int
	Duration time.Duration
}

// ExitCode is 0 when every test passed and 1 otherwise
func (r *Report) ExitCode() int {
	if r.Failed == 0 {
		return 0
	}
	return 1
}

// Runner executes a suite. Each test gets a fresh scope enclosing Base, so
// definitions made by one test are not visible to the next.
type Runner struct {
	Suite *Suite
	Base  *evaluator.Environment
}

// NewRunner creates a runner for suite over base
func NewRunner(suite *Suite, base *evaluator.Environment) *Runner {
	return &Runner{Suite: suite, Base: base}
}

// Run executes every test in order
func (r *Runner) Run() *Report {
	start := time.Now()
	report := &Report{}
	for _, c := range r.Suite.Cases {
		res := r.runCase(c)
		report.Results = append(report.Results, res)
		report.Total++
		if res.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	report.Duration = time.Since(start)
	return report
}

// runCase runs setup, the test body and teardown. A runtime error in setup
// or the body fails the test; teardown always runs and its errors are
// ignored.
func (r *Runner) runCase(c Case) Result {
	start := time.Now()
	res := Result{Name: c.FullName()}
	env := evaluator.NewEnclosedEnvironment(r.Base)

	defer func() {
		if len(r.Suite.Teardown) > 0 {
			evaluator.Eval(&ast.Program{Statements: r.Suite.Teardown}, env)
		}
	}()

	if len(r.Suite.Setup) > 0 {
		if errObj := evalBlock(r.Suite.Setup, env); errObj != nil {
			res.Message = "Setup failed: " + errObj.Message
			res.Duration = time.Since(start)
			return res
		}
	}

	if errObj := evalBlock(c.Body, env); errObj != nil {
		res.Message = errObj.Message
		res.Duration = time.Since(start)
		return res
	}

	res.Passed = true
	res.Duration = time.Since(start)
	return res
}

func evalBlock(stmts []ast.Statement, env *evaluator.Environment) *evaluator.Error {
	result := evaluator.Eval(&ast.Program{Statements: stmts}, env)
	if errObj, ok := result.(*evaluator.Error); ok {
		return errObj
	}
	return nil
}

// Print writes report to w. Verbose adds one line per test.
func (r *Report) Print(w io.Writer, verbose bool) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\nTest Results\n%s\n", rule, rule)

	if verbose {
		for _, res := range r.Results {
			if res.Passed {
				fmt.Fprintf(w, "  ✓ %s (%dms)\n", res.Name, res.Duration.Milliseconds())
				continue
			}
			fmt.Fprintf(w, "  ✗ %s (%dms)\n", res.Name, res.Duration.Milliseconds())
			if res.Message != "" {
				fmt.Fprintf(w, "    Error: %s\n", res.Message)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Tests: %d total, %d passed, %d failed\n", r.Total, r.Passed, r.Failed)
	fmt.Fprintf(w, "Time:  %dms\n", r.Duration.Milliseconds())
	fmt.Fprintln(w, rule)

	if r.Failed == 0 {
		fmt.Fprintln(w, "\nAll tests passed! ✨")
	} else {
		fmt.Fprintf(w, "\n%d test(s) failed\n", r.Failed)
	}
}
