// Package repl implements the interactive Ruff shell.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/sambeau/ruff/pkg/ruff/ast"
	"github.com/sambeau/ruff/pkg/ruff/evaluator"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
	"github.com/sambeau/ruff/pkg/ruff/parser"
	"github.com/sambeau/ruff/pkg/ruff/ruff"
)

const PROMPT = "ruff> "
const CONTINUATION_PROMPT = "....> "

const RUFF_LOGO = `
█▀█ █ █ █▀▀ █▀▀
█▀▄ █▄█ █▀  █▀ `

// Config controls a REPL session
type Config struct {
	Version     string
	HistoryFile string // defaults to DefaultHistoryFile()
	Options     []ruff.Option
}

// DefaultHistoryFile is where history is kept when no file is configured
func DefaultHistoryFile() string {
	return filepath.Join(os.TempDir(), ".ruff_history")
}

// Start runs the REPL on the terminal with line editing, history, and tab
// completion until the user quits
func Start(ctx context.Context, out io.Writer, cfg Config) error {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)
	line.SetCompleter(filterCompletions)

	historyFile := cfg.HistoryFile
	if historyFile == "" {
		historyFile = DefaultHistoryFile()
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	session := NewSession(ctx, out, cfg.Options...)
	session.Banner(cfg.Version)

	for {
		input, err := line.Prompt(session.Prompt())
		if err != nil {
			if err == liner.ErrPromptAborted {
				// Ctrl+C - clear any buffered input and return to main prompt
				if session.Pending() {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C (Ctrl+D or :quit to exit)")
				}
				session.Discard()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		entry, quit := session.Feed(input)
		if entry != "" {
			line.AppendHistory(entry)
		}
		if quit {
			return nil
		}
	}
}

// Session is the state of one REPL: the environment that persists between
// inputs and any unfinished multi-line input
type Session struct {
	ctx    context.Context
	opts   []ruff.Option
	env    *evaluator.Environment
	out    io.Writer
	buffer strings.Builder
}

// NewSession creates a session whose output, including print(), goes to out
func NewSession(ctx context.Context, out io.Writer, opts ...ruff.Option) *Session {
	opts = append([]ruff.Option{ruff.WithLogger(ruff.WriterLogger(out))}, opts...)
	return &Session{
		ctx:  ctx,
		opts: opts,
		env:  ruff.NewEnvironment(ctx, opts...),
		out:  out,
	}
}

// Env returns the session's environment
func (s *Session) Env() *evaluator.Environment {
	return s.env
}

// Prompt returns the prompt for the next line
func (s *Session) Prompt() string {
	if s.Pending() {
		return CONTINUATION_PROMPT
	}
	return PROMPT
}

// Pending reports whether a multi-line input is being collected
func (s *Session) Pending() bool {
	return s.buffer.Len() > 0
}

// Discard drops any unfinished input
func (s *Session) Discard() {
	s.buffer.Reset()
}

// Banner writes the welcome text
func (s *Session) Banner(version string) {
	fmt.Fprintf(s.out, "%s", RUFF_LOGO)
	fmt.Fprintln(s.out, "v", version)
	fmt.Fprintln(s.out, "")
	fmt.Fprintln(s.out, "Type :help for commands or :quit to exit")
	fmt.Fprintln(s.out, "Leave braces, brackets or parentheses open to continue on the next line")
	fmt.Fprintln(s.out, "")
}

// Feed processes one line of input. When the line completes an input, the
// input is evaluated and returned as entry for the history. quit is true
// once the user has asked to leave.
func (s *Session) Feed(line string) (entry string, quit bool) {
	trimmed := strings.TrimSpace(line)

	if !s.Pending() && strings.HasPrefix(trimmed, ":") {
		return "", !s.command(trimmed)
	}
	if !s.Pending() && trimmed == "" {
		return "", false
	}

	if s.Pending() {
		s.buffer.WriteString("\n")
	}
	s.buffer.WriteString(line)

	input := s.buffer.String()
	if needsMoreInput(input) {
		return "", false
	}
	s.buffer.Reset()
	s.Eval(input)
	return input, false
}

// Eval evaluates a complete input. The value of each expression statement
// is echoed; statements stop at the first runtime error.
func (s *Session) Eval(input string) {
	p := parser.New(lexer.Tokenize(input))
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		fmt.Fprintln(s.out, "Error: failed to parse input")
		fmt.Fprintf(s.out, "  %s\n", errs[0].String())
		return
	}

	for _, stmt := range program.Statements {
		result := evaluator.Eval(&ast.Program{Statements: []ast.Statement{stmt}}, s.env)
		if errObj, ok := result.(*evaluator.Error); ok {
			printRuntimeError(s.out, errObj)
			return
		}
		if _, isExpr := stmt.(*ast.ExpressionStatement); isExpr && result != nil && result.Type() != evaluator.NULL_OBJ {
			fmt.Fprintf(s.out, "=> %s\n", formatValue(result))
		}
	}
}

// command handles a ':' command and reports whether the REPL should go on
func (s *Session) command(cmd string) bool {
	switch cmd {
	case ":help", ":h", ":?":
		s.help()
	case ":quit", ":q", ":exit":
		fmt.Fprintln(s.out, "Goodbye!")
		return false
	case ":clear", ":c":
		// Clear the screen
		io.WriteString(s.out, "\x1b[2J\x1b[1;1H")
	case ":vars", ":v":
		s.printVariables()
	case ":reset", ":r":
		s.env = ruff.NewEnvironment(s.ctx, s.opts...)
		fmt.Fprintln(s.out, "Environment reset")
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
	return true
}

func (s *Session) help() {
	fmt.Fprintln(s.out, "REPL Commands:")
	fmt.Fprintln(s.out, "  :help, :h    Show this help")
	fmt.Fprintln(s.out, "  :quit, :q    Exit the REPL")
	fmt.Fprintln(s.out, "  :clear, :c   Clear the screen")
	fmt.Fprintln(s.out, "  :vars, :v    Show defined variables")
	fmt.Fprintln(s.out, "  :reset, :r   Reset the environment")
	fmt.Fprintln(s.out, "")
	fmt.Fprintln(s.out, "Multi-line Input:")
	fmt.Fprintln(s.out, "  Leave braces, brackets or parentheses unclosed to continue")
	fmt.Fprintln(s.out, "  on the next line. Close them to run the input.")
}

// printVariables displays the bindings made at the top level
func (s *Session) printVariables() {
	names := s.env.LocalNames()
	if len(names) == 0 {
		fmt.Fprintln(s.out, "(no variables defined)")
		return
	}
	for _, name := range names {
		obj, _ := s.env.Get(name)
		value := formatValue(obj)
		if len(value) > 60 {
			value = value[:57] + "..."
		}
		fmt.Fprintf(s.out, "  %s: %s = %s\n", name, obj.Type(), value)
	}
}

// formatValue shows strings quoted so they are told apart from other values
func formatValue(obj evaluator.Object) string {
	if str, ok := obj.(*evaluator.String); ok {
		return strconv.Quote(str.Value)
	}
	return obj.Inspect()
}

// filterCompletions returns completion suggestions based on current input
func filterCompletions(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	// Don't complete if line ends with whitespace
	if last := line[len(line)-1]; last == ' ' || last == '\t' {
		return nil
	}

	start := strings.LastIndexFunc(line, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) + 1
	prefix, word := line[:start], line[start:]
	if word == "" {
		return nil
	}

	var matches []string
	for _, candidate := range completionWords() {
		if strings.HasPrefix(candidate, word) {
			matches = append(matches, prefix+candidate)
		}
	}
	return matches
}

// completionWords is every keyword and builtin name, sorted and unique
func completionWords() []string {
	words := append(lexer.Keywords(), evaluator.BuiltinNames()...)
	slices.Sort(words)
	return slices.Compact(words)
}

// needsMoreInput checks if the input has unclosed braces, brackets or
// parentheses, ignoring strings and comments
func needsMoreInput(input string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inString {
			switch ch {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}

		switch {
		case ch == '"':
			inString = true
		case ch == '#' || ch == '/' && i+1 < len(input) && input[i+1] == '/':
			for i < len(input) && input[i] != '\n' {
				i++
			}
		case ch == '/' && i+1 < len(input) && input[i+1] == '*':
			end := strings.Index(input[i+2:], "*/")
			if end < 0 {
				return true
			}
			i += end + 3
		case ch == '{' || ch == '[' || ch == '(':
			depth++
		case ch == '}' || ch == ']' || ch == ')':
			depth--
		}
	}
	return depth > 0 || inString
}

// printRuntimeError prints a runtime error with its position and hints
func printRuntimeError(out io.Writer, err *evaluator.Error) {
	io.WriteString(out, "Error: ")
	if err.Line > 0 {
		fmt.Fprintf(out, "line %d, column %d: ", err.Line, err.Column)
	}
	io.WriteString(out, err.Message+"\n")
	for _, hint := range err.Hints {
		io.WriteString(out, "  hint: "+hint+"\n")
	}
}
