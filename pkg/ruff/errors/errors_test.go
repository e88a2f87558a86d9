package errors

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRuffError_String(t *testing.T) {
	tests := []struct {
		name     string
		err      *RuffError
		expected string
	}{
		{
			name:     "message only",
			err:      &RuffError{Message: "something went wrong"},
			expected: "something went wrong",
		},
		{
			name:     "with line and column",
			err:      &RuffError{Message: "unexpected token", Line: 5, Column: 10},
			expected: "line 5, column 10: unexpected token",
		},
		{
			name:     "with file",
			err:      &RuffError{Message: "parse error", File: "main.ruff", Line: 3, Column: 1},
			expected: "main.ruff: line 3, column 1: parse error",
		},
		{
			name: "with hints",
			err: &RuffError{
				Message: "identifier not found: lenn",
				Line:    1,
				Column:  1,
				Hints:   []string{"Did you mean `len`?"},
			},
			expected: "line 1, column 1: identifier not found: lenn\n  Did you mean `len`?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRuffError_PrettyString(t *testing.T) {
	tests := []struct {
		name     string
		err      *RuffError
		contains []string
	}{
		{
			name:     "parser error",
			err:      &RuffError{Class: ClassParse, Message: "unexpected token '}'", Line: 2, Column: 4},
			contains: []string{"Parser error", "line 2, column 4", "unexpected token '}'"},
		},
		{
			name:     "runtime error with file",
			err:      &RuffError{Class: ClassOperator, Message: "division by zero", File: "calc.ruff", Line: 7, Column: 3},
			contains: []string{"Runtime error", "in: calc.ruff", "at: line 7, column 3", "division by zero"},
		},
		{
			name:     "hints",
			err:      &RuffError{Class: ClassState, Message: "cannot assign", Hints: []string{"first", "second"}},
			contains: []string{"hint: first", "or: second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.PrettyString()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("PrettyString() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestRuffError_ToJSON(t *testing.T) {
	err := &RuffError{Class: ClassParse, Code: "PARSE-0002", Message: "unexpected token", Line: 1, Column: 2}
	data, jerr := err.ToJSON()
	if jerr != nil {
		t.Fatalf("ToJSON() error: %v", jerr)
	}
	var decoded map[string]any
	if jerr := json.Unmarshal(data, &decoded); jerr != nil {
		t.Fatalf("invalid JSON: %v", jerr)
	}
	if decoded["code"] != "PARSE-0002" || decoded["class"] != "parse" {
		t.Errorf("unexpected JSON: %s", data)
	}
	if _, ok := decoded["hints"]; ok {
		t.Errorf("empty hints should be omitted: %s", data)
	}
}

func TestNew_WithCatalog(t *testing.T) {
	tests := []struct {
		code     string
		data     map[string]any
		class    ErrorClass
		message  string
		numHints int
	}{
		{"PARSE-0001", map[string]any{"Expected": "'{'", "Got": "x"}, ClassParse, "expected '{', got 'x'", 0},
		{"TYPE-0001", map[string]any{"Operator": "-", "Left": "string", "Right": "int"}, ClassType, "unsupported operand types for -: string and int", 0},
		{"STATE-0001", map[string]any{"Name": "x"}, ClassState, "cannot assign to immutable binding 'x'", 1},
		{"OP-0001", nil, ClassOperator, "division by zero", 0},
		{"DB-0001", map[string]any{"Driver": "oracle"}, ClassDatabase, "unsupported database driver 'oracle'", 1},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, tt.data)
			if err.Class != tt.class {
				t.Errorf("Class = %q, want %q", err.Class, tt.class)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
			if err.Message != tt.message {
				t.Errorf("Message = %q, want %q", err.Message, tt.message)
			}
			if len(err.Hints) != tt.numHints {
				t.Errorf("len(Hints) = %d, want %d", len(err.Hints), tt.numHints)
			}
		})
	}
}

func TestNew_UnknownCode(t *testing.T) {
	err := New("NOPE-9999", map[string]any{"message": "custom text"})
	if err.Message != "custom text" || err.Code != "NOPE-9999" {
		t.Errorf("unexpected error: %+v", err)
	}
	if err := New("NOPE-9999", nil); err.Message != "NOPE-9999" {
		t.Errorf("Message = %q, want the code", err.Message)
	}
}

func TestNewWithPosition(t *testing.T) {
	err := NewWithPosition("PARSE-0002", 4, 9, map[string]any{"Token": ")"})
	if err.Line != 4 || err.Column != 9 {
		t.Errorf("position = %d:%d, want 4:9", err.Line, err.Column)
	}
	if !err.IsParseError() {
		t.Error("expected a parse error")
	}
}

func TestWithFileAndPositionCopy(t *testing.T) {
	orig := NewSimple(ClassImport, "boom")
	withFile := orig.WithFile("a.ruff")
	moved := withFile.WithPosition(3, 2)

	if orig.File != "" || orig.Line != 0 {
		t.Errorf("original mutated: %+v", orig)
	}
	if withFile.File != "a.ruff" || withFile.Line != 0 {
		t.Errorf("WithFile copy wrong: %+v", withFile)
	}
	if moved.File != "a.ruff" || moved.Line != 3 || moved.Column != 2 {
		t.Errorf("WithPosition copy wrong: %+v", moved)
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"print", "prnt", 1},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFindClosestMatch(t *testing.T) {
	candidates := []string{"print", "len", "push", "range", "contains"}
	tests := []struct {
		input string
		want  string
	}{
		{"prnt", "print"},
		{"lne", ""}, // distance 2 exceeds threshold for short words
		{"lem", "len"},
		{"contians", "contains"},
		{"print", ""},
		{"zzzzzz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FindClosestMatch(tt.input, candidates); got != tt.want {
			t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewUndefinedIdentifier(t *testing.T) {
	err := NewUndefinedIdentifier("lenn", []string{"len", "keys"})
	if err.Code != "UNDEF-0001" || err.Message != "identifier not found: lenn" {
		t.Errorf("unexpected error: %+v", err)
	}
	if len(err.Hints) != 1 || !strings.Contains(err.Hints[0], "len") {
		t.Errorf("Hints = %v, want a suggestion for len", err.Hints)
	}

	err = NewUndefinedIdentifier("qqqqqqqq", []string{"len"})
	if len(err.Hints) != 0 {
		t.Errorf("Hints = %v, want none", err.Hints)
	}
}
