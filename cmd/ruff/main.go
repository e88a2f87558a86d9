package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sambeau/ruff/config"
	"github.com/sambeau/ruff/pkg/ruff/ast"
	rerrors "github.com/sambeau/ruff/pkg/ruff/errors"
	"github.com/sambeau/ruff/pkg/ruff/evaluator"
	"github.com/sambeau/ruff/pkg/ruff/format"
	"github.com/sambeau/ruff/pkg/ruff/golden"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
	"github.com/sambeau/ruff/pkg/ruff/parser"
	"github.com/sambeau/ruff/pkg/ruff/repl"
	"github.com/sambeau/ruff/pkg/ruff/ruff"
	"github.com/sambeau/ruff/pkg/ruff/testrun"
)

// Version is set at compile time via -ldflags
var Version = "0.3.0"

// exitError carries a process exit status for failures that have already
// been reported
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return "exit status " + strconv.Itoa(e.code)
}

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("ruff", flag.ContinueOnError)
	flags.SetOutput(io.Discard) // Suppress default -h output

	var (
		configPath  = flags.String("config", "", "Path to config file")
		evalCode    = flags.String("e", "", "Evaluate code string")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)
	flags.StringVar(evalCode, "eval", "", "Alias for -e")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout)
			return nil
		}
		printUsage(stderr)
		return err
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}
	if *showVersion {
		fmt.Fprintf(stdout, "ruff version %s\n", Version)
		return nil
	}

	cfg, err := config.Load(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if *evalCode != "" {
		return evalInline(ctx, cfg, *evalCode, stdout, stderr)
	}

	rest := flags.Args()
	if len(rest) == 0 {
		return startREPL(ctx, cfg, stdout)
	}

	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "run":
		return runCommand(ctx, cfg, cmdArgs, stdout, stderr)
	case "repl":
		return startREPL(ctx, cfg, stdout)
	case "test":
		return testCommand(ctx, cfg, cmdArgs, stdout, stderr)
	case "test-run":
		return testRunCommand(ctx, cfg, cmdArgs, stdout, stderr)
	case "check":
		return checkCommand(cmdArgs, stderr)
	case "tokens":
		return tokensCommand(cmdArgs, stdout)
	case "ast":
		return astCommand(cmdArgs, stdout, stderr)
	case "fmt":
		return fmtCommand(cmdArgs, stdout, stderr)
	case "help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `ruff - the Ruff language toolchain, version %s

Usage:
  ruff [options] [command] [args...]

Commands:
  run <file>                 Execute a Ruff script
  repl                       Start the interactive shell (default)
  test [options] [dir]       Run golden-file tests (default dir from config)
  test-run [-v] <file>       Run the test blocks in a file
  check <file>...            Check syntax without executing
  tokens <file>              Print the token stream
  ast <file>                 Print the syntax tree
  fmt [-w] <file>...         Format source files

Test Options:
  --update                   Rewrite expected output instead of comparing
  --watch                    Re-run when fixtures change
  --report FILE              Write an HTML summary

Options:
  --config PATH              Path to config file (default: auto-detect)
  -e, --eval CODE            Evaluate code string and print the result
  --version                  Show version
  --help                     Show this help

Config Resolution:
  1. --config flag
  2. RUFF_CONFIG environment variable
  3. ./ruff.yaml

Examples:
  ruff                       Start the REPL
  ruff run hello.ruff        Run a script
  ruff -e "1 + 2"            Evaluate inline code (outputs: 3)
  ruff test --update tests   Regenerate snapshots
  ruff check *.ruff          Check several files

`, Version)
}

// runtimeOptions returns the evaluator options shared by every command
func runtimeOptions(cfg *config.Config, stdout io.Writer) []ruff.Option {
	return []ruff.Option{
		ruff.WithLogger(ruff.WriterLogger(stdout)),
		ruff.WithSearchPaths(cfg.Modules.SearchPaths...),
		ruff.WithDBMaxOpen(cfg.Database.MaxOpen),
	}
}

// reportError prints err for the user and converts it to an exit status
func reportError(w io.Writer, err error) error {
	var rerr *rerrors.RuffError
	if errors.As(err, &rerr) {
		fmt.Fprintln(w, rerr.PrettyString())
		return exitError{code: 1}
	}
	return err
}

func evalInline(ctx context.Context, cfg *config.Config, code string, stdout, stderr io.Writer) error {
	opts := append(runtimeOptions(cfg, stdout), ruff.WithFilename("<eval>"))
	result, err := ruff.Eval(ctx, code, opts...)
	if err != nil {
		return reportError(stderr, err)
	}
	fmt.Fprintln(stdout, repr(result))
	return nil
}

// repr shows a value the way it would be written in source
func repr(obj evaluator.Object) string {
	switch obj := obj.(type) {
	case nil:
		return "null"
	case *evaluator.String:
		return strconv.Quote(obj.Value)
	}
	return obj.Inspect()
}

func startREPL(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	return repl.Start(ctx, stdout, repl.Config{
		Version:     Version,
		HistoryFile: cfg.REPL.HistoryFile,
		Options: []ruff.Option{
			ruff.WithSearchPaths(cfg.Modules.SearchPaths...),
			ruff.WithDBMaxOpen(cfg.Database.MaxOpen),
		},
	})
}

func runCommand(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: ruff run <file>")
	}
	if _, err := ruff.Run(ctx, args[0], runtimeOptions(cfg, stdout)...); err != nil {
		return reportError(stderr, err)
	}
	return nil
}

func testCommand(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		update = flags.Bool("update", false, "Rewrite expected output")
		watch  = flags.Bool("watch", false, "Re-run on changes")
		report = flags.String("report", cfg.Tests.Report, "Write an HTML summary")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	dir := cfg.Tests.Dir
	if flags.NArg() > 0 {
		dir = flags.Arg(0)
	}
	opts := golden.Options{
		Dir:         dir,
		SourceExt:   cfg.Tests.SourceExt,
		ExpectedExt: cfg.Tests.ExpectedExt,
		Update:      *update,
		SearchPaths: cfg.Modules.SearchPaths,
		DBMaxOpen:   cfg.Database.MaxOpen,
		Out:         stdout,
	}

	if *watch {
		// Set up signal handling so Ctrl+C stops watching cleanly
		ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return golden.Watch(ctx, opts, cfg.Tests.Debounce, stdout, stderr)
	}

	summary, err := golden.Run(ctx, opts)
	if err != nil {
		return err
	}
	if *report != "" {
		if err := golden.WriteReport(summary, *report); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Report written to %s\n", *report)
	}
	if !summary.OK() {
		return exitError{code: 1}
	}
	return nil
}

func testRunCommand(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("test-run", flag.ContinueOnError)
	flags.SetOutput(stderr)
	verbose := flags.Bool("v", false, "Show every test")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: ruff test-run [-v] <file>")
	}
	filename := flags.Arg(0)

	program, err := parseFile(filename, stderr)
	if err != nil {
		return err
	}

	// Top-level declarations are visible to every test
	opts := append(runtimeOptions(cfg, stdout), ruff.WithFilename(filename))
	base := ruff.NewEnvironment(ctx, opts...)
	if errObj, ok := evaluator.Eval(program, base).(*evaluator.Error); ok {
		return reportError(stderr, errObj.ToRuffError())
	}

	report := testrun.NewRunner(testrun.Collect(program.Statements), base).Run()
	report.Print(stdout, *verbose)
	if code := report.ExitCode(); code != 0 {
		return exitError{code: code}
	}
	return nil
}

// parseFile reads and parses filename, printing any syntax errors
func parseFile(filename string, stderr io.Writer) (*ast.Program, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	program, errs := parser.ParseString(string(content))
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(stderr, e.WithFile(filename).PrettyString())
		}
		return nil, exitError{code: 1}
	}
	return program, nil
}

func checkCommand(files []string, stderr io.Writer) error {
	if len(files) == 0 {
		return fmt.Errorf("usage: ruff check <file>...")
	}

	hasErrors := false
	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading %s: %v\n", filename, err)
			return exitError{code: 2} // File error
		}
		for _, e := range ruff.Check(string(content), filename) {
			fmt.Fprintln(stderr, e.PrettyString())
			hasErrors = true
		}
	}

	if hasErrors {
		return exitError{code: 1} // Syntax errors
	}
	return nil
}

func tokensCommand(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: ruff tokens <file>")
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	for _, tok := range lexer.Tokenize(string(content)) {
		fmt.Fprintln(stdout, tok.String())
	}
	return nil
}

func astCommand(args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: ruff ast <file>")
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	// The tree of whatever parsed is still shown
	program, errs := parser.ParseString(string(content))
	fmt.Fprint(stdout, format.Tree(program.Statements))
	for _, e := range errs {
		fmt.Fprintln(stderr, e.WithFile(args[0]).PrettyString())
	}
	if len(errs) > 0 {
		return exitError{code: 1}
	}
	return nil
}

func fmtCommand(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("fmt", flag.ContinueOnError)
	flags.SetOutput(stderr)
	write := flags.Bool("w", false, "Write result to the source file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return fmt.Errorf("usage: ruff fmt [-w] <file>...")
	}

	for _, filename := range flags.Args() {
		program, err := parseFile(filename, stderr)
		if err != nil {
			return err
		}
		formatted := format.Source(program.Statements)
		if !*write {
			fmt.Fprint(stdout, formatted)
			continue
		}
		if err := os.WriteFile(filename, []byte(formatted), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", filename, err)
		}
	}
	return nil
}
