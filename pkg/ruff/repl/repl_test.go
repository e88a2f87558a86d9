package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func newSession() (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	return NewSession(context.Background(), &out), &out
}

// feed sends each line in turn and returns the output produced
func feed(s *Session, out *bytes.Buffer, lines ...string) string {
	out.Reset()
	for _, line := range lines {
		s.Feed(line)
	}
	return out.String()
}

func TestEvalEchoesExpressions(t *testing.T) {
	s, out := newSession()
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2", "=> 3\n"},
		{`"hi"`, "=> \"hi\"\n"},
		{"let x := 42", ""},
		{"x", "=> 42\n"},
		{`print("side effect")`, "side effect\n"},
		{"[1, 2]", "=> [1, 2]\n"},
	}
	for _, tt := range tests {
		if got := feed(s, out, tt.input); got != tt.expected {
			t.Errorf("%q printed %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestMultiLineInput(t *testing.T) {
	s, out := newSession()
	out.Reset()

	entry, _ := s.Feed("func greet(name) {")
	if entry != "" || !s.Pending() || s.Prompt() != CONTINUATION_PROMPT {
		t.Fatalf("expected a continuation after an open brace")
	}
	s.Feed(`    return "Hello, " + name`)
	entry, _ = s.Feed("}")
	if entry != "func greet(name) {\n    return \"Hello, \" + name\n}" {
		t.Errorf("history entry = %q", entry)
	}
	if s.Pending() || s.Prompt() != PROMPT {
		t.Error("input should be complete")
	}

	if got := feed(s, out, `greet("World")`); got != "=> \"Hello, World\"\n" {
		t.Errorf("output = %q", got)
	}
}

func TestParseErrorDiscardsInput(t *testing.T) {
	s, out := newSession()
	got := feed(s, out, "let := 5")
	if !strings.HasPrefix(got, "Error: failed to parse input\n") {
		t.Errorf("output = %q", got)
	}
	if s.Pending() {
		t.Error("buffer was kept after a parse error")
	}
}

func TestRuntimeErrorKeepsSession(t *testing.T) {
	s, out := newSession()
	got := feed(s, out, "mut n := 1", "n := n / 0")
	if !strings.HasPrefix(got, "Error: ") || !strings.Contains(got, "division by zero") {
		t.Errorf("output = %q", got)
	}
	if got := feed(s, out, "n"); got != "=> 1\n" {
		t.Errorf("n = %q after the error", got)
	}

	got = feed(s, out, "cout")
	if !strings.Contains(got, "identifier not found: cout") {
		t.Errorf("output = %q", got)
	}
}

func TestCommands(t *testing.T) {
	s, out := newSession()

	if got := feed(s, out, ":help"); !strings.Contains(got, ":vars") {
		t.Errorf(":help = %q", got)
	}
	if got := feed(s, out, ":vars"); got != "(no variables defined)\n" {
		t.Errorf(":vars = %q", got)
	}

	feed(s, out, `let name := "ruff"`, "mut count := 3")
	got := feed(s, out, ":vars")
	if got != "  count: int = 3\n  name: string = \"ruff\"\n" {
		t.Errorf(":vars = %q", got)
	}

	feed(s, out, ":reset")
	if _, ok := s.Env().Get("count"); ok {
		t.Error(":reset kept bindings")
	}

	if got := feed(s, out, ":clear"); !strings.Contains(got, "\x1b[2J") {
		t.Errorf(":clear = %q", got)
	}
	if got := feed(s, out, ":bogus"); !strings.Contains(got, "Unknown command: :bogus") {
		t.Errorf(":bogus = %q", got)
	}

	if _, quit := s.Feed(":quit"); !quit {
		t.Error(":quit did not quit")
	}
}

func TestResetKeepsOutput(t *testing.T) {
	s, out := newSession()
	feed(s, out, ":reset")
	if got := feed(s, out, `print("still here")`); got != "still here\n" {
		t.Errorf("output after reset = %q", got)
	}
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"let x := 1", false},
		{"func f() {", true},
		{"func f() {\n}", false},
		{"[1, 2,", true},
		{"print(", true},
		{`"{"`, false},
		{`"unterminated`, true},
		{`"esc \" {"`, false},
		{"x # {", false},
		{"x // (", false},
		{"/* { */ x", false},
		{"/* open", true},
		{"}", false},
	}
	for _, tt := range tests {
		if got := needsMoreInput(tt.input); got != tt.expected {
			t.Errorf("needsMoreInput(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestFilterCompletions(t *testing.T) {
	got := filterCompletions("let n := le")
	if len(got) != 2 || got[0] != "let n := len" || got[1] != "let n := let" {
		t.Errorf("completions = %q", got)
	}

	// throw is both a keyword and a builtin form
	got = filterCompletions("thr")
	if len(got) != 1 || got[0] != "throw" {
		t.Errorf("completions = %q", got)
	}

	got = filterCompletions("x.upp")
	if len(got) != 1 || got[0] != "x.upper" {
		t.Errorf("completions = %q", got)
	}

	for _, line := range []string{"", "let ", "(", "print "} {
		if got := filterCompletions(line); got != nil {
			t.Errorf("filterCompletions(%q) = %q, want nil", line, got)
		}
	}
}

func TestBanner(t *testing.T) {
	s, out := newSession()
	s.Banner("1.2.3")
	if !strings.Contains(out.String(), "v 1.2.3") {
		t.Errorf("banner = %q", out.String())
	}
}
