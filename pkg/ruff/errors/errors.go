// Package errors provides the structured diagnostic type shared by the Ruff
// parser and evaluator.
//
// A RuffError carries a class, a catalog code, a rendered message, optional
// hints and a source position. Messages come from ErrorCatalog and are
// rendered with text/template so callers only supply the variable parts.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and display.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"     // Syntax errors
	ClassType      ErrorClass = "type"      // Type mismatches
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassUndefined ErrorClass = "undefined" // Not found/defined
	ClassIndex     ErrorClass = "index"     // Out of bounds
	ClassOperator  ErrorClass = "operator"  // Invalid operations
	ClassState     ErrorClass = "state"     // Invalid state
	ClassImport    ErrorClass = "import"    // Module loading
	ClassDatabase  ErrorClass = "database"  // DB operations
	ClassFormat    ErrorClass = "format"    // Unparseable input
	ClassAssert    ErrorClass = "assert"    // Failed assertions
	ClassUser      ErrorClass = "user"      // Values raised with throw
)

// RuffError represents any error from parsing or evaluation.
type RuffError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"`   // 1-based, 0 if unknown
	Column  int            `json:"column"` // 1-based, 0 if unknown
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RuffError) Error() string {
	return e.String()
}

// String returns a single-line form: "file: line L, column C: message"
// followed by one indented line per hint.
func (e *RuffError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d, column %d: ", e.Line, e.Column)
	}
	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// PrettyString returns a multi-line form for terminal display.
func (e *RuffError) PrettyString() string {
	var sb strings.Builder

	if e.Class == ClassParse {
		sb.WriteString("Parser error")
	} else {
		sb.WriteString("Runtime error")
	}

	switch {
	case e.File != "":
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&sb, "\n  at: line %d, column %d", e.Line, e.Column)
		}
		sb.WriteString("\n  ")
	case e.Line > 0:
		fmt.Fprintf(&sb, ": line %d, column %d\n  ", e.Line, e.Column)
	default:
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for i, hint := range e.Hints {
		if i == 0 {
			sb.WriteString("\n  hint: ")
		} else {
			sb.WriteString("\n    or: ")
		}
		sb.WriteString(hint)
	}
	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *RuffError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *RuffError) WithFile(file string) *RuffError {
	c := *e
	c.File = file
	return &c
}

// WithPosition returns a copy of the error with line and column set.
func (e *RuffError) WithPosition(line, column int) *RuffError {
	c := *e
	c.Line = line
	c.Column = column
	return &c
}

// IsParseError reports whether this is a syntax error.
func (e *RuffError) IsParseError() bool {
	return e.Class == ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // message template with {{.placeholders}}
	Hints    []string // hint templates
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Parse errors (PARSE-0xxx)
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected token '{{.Token}}'",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "unexpected end of input in {{.Construct}}",
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "invalid match pattern starting at '{{.Token}}'",
		Hints:    []string{"case Variant: { ... }", "case Base::Variant(name): { ... }"},
	},

	// Type errors (TYPE-0xxx)
	"TYPE-0001": {
		Class:    ClassType,
		Template: "unsupported operand types for {{.Operator}}: {{.Left}} and {{.Right}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "type mismatch for '{{.Name}}': expected {{.Expected}}, got {{.Got}}",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "{{.Type}} is not callable",
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "cannot index {{.Type}} with {{.Index}}",
	},
	"TYPE-0005": {
		Class:    ClassType,
		Template: "cannot iterate over {{.Type}}",
	},
	"TYPE-0006": {
		Class:    ClassType,
		Template: "{{.Function}} expects {{.Expected}}, got {{.Got}}",
	},
	"TYPE-0007": {
		Class:    ClassType,
		Template: "cannot assign to {{.Target}}",
	},

	// Arity errors (ARITY-0xxx)
	"ARITY-0001": {
		Class:    ClassArity,
		Template: "{{.Function}} expects {{.Expected}} arguments, got {{.Got}}",
	},

	// Undefined errors (UNDEF-0xxx)
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "identifier not found: {{.Name}}",
	},
	"UNDEF-0002": {
		Class:    ClassUndefined,
		Template: "unknown method '{{.Method}}' for {{.Type}}",
	},
	"UNDEF-0003": {
		Class:    ClassUndefined,
		Template: "{{.Type}} has no field '{{.Field}}'",
	},
	"UNDEF-0004": {
		Class:    ClassUndefined,
		Template: "enum {{.Enum}} has no variant '{{.Variant}}'",
	},

	// State errors (STATE-0xxx)
	"STATE-0001": {
		Class:    ClassState,
		Template: "cannot assign to immutable binding '{{.Name}}'",
		Hints:    []string{"declare it with 'mut {{.Name}} := ...'"},
	},
	"STATE-0002": {
		Class:    ClassState,
		Template: "'{{.Keyword}}' outside of a loop",
	},
	"STATE-0003": {
		Class:    ClassState,
		Template: "database connection is closed",
	},
	"STATE-0004": {
		Class:    ClassState,
		Template: "evaluation stopped: {{.Reason}}",
	},
	"STATE-0005": {
		Class:    ClassState,
		Template: "maximum call depth of {{.Limit}} exceeded",
		Hints:    []string{"check for a recursive function without a base case"},
	},

	// Operator errors (OP-0xxx)
	"OP-0001": {
		Class:    ClassOperator,
		Template: "division by zero",
	},
	"OP-0002": {
		Class:    ClassOperator,
		Template: "unknown operator: {{.Operator}}",
	},

	// Index errors (INDEX-0xxx)
	"INDEX-0001": {
		Class:    ClassIndex,
		Template: "index {{.Index}} out of range (length {{.Length}})",
	},
	"INDEX-0002": {
		Class:    ClassIndex,
		Template: "key not found: {{.Key}}",
	},

	// Import errors (IMPORT-0xxx)
	"IMPORT-0001": {
		Class:    ClassImport,
		Template: "cannot import {{.Module}}: {{.Reason}}",
	},
	"IMPORT-0002": {
		Class:    ClassImport,
		Template: "module {{.Module}} does not export '{{.Symbol}}'",
	},
	"IMPORT-0003": {
		Class:    ClassImport,
		Template: "imports are not available in this context",
	},

	// Database errors (DB-0xxx)
	"DB-0001": {
		Class:    ClassDatabase,
		Template: "unsupported database driver '{{.Driver}}'",
		Hints:    []string{"use one of: sqlite, postgres, mysql"},
	},
	"DB-0002": {
		Class:    ClassDatabase,
		Template: "{{.Operation}} failed: {{.Reason}}",
	},

	// Format errors (FORMAT-0xxx)
	"FORMAT-0001": {
		Class:    ClassFormat,
		Template: "cannot parse date '{{.Input}}'",
	},
	"FORMAT-0002": {
		Class:    ClassFormat,
		Template: "cannot hash password: {{.Reason}}",
	},

	// Assertion errors (ASSERT-0xxx)
	"ASSERT-0001": {
		Class:    ClassAssert,
		Template: "assertion failed: {{.Message}}",
	},
	"ASSERT-0002": {
		Class:    ClassAssert,
		Template: "assertion failed: expected {{.Expected}}, got {{.Got}}",
	},

	// Thrown values (USER-0xxx)
	"USER-0001": {
		Class:    ClassUser,
		Template: "{{.Message}}",
	},
}

// New creates a RuffError from the catalog. An unknown code produces a
// generic error whose message is data["message"] or the code itself.
func New(code string, data map[string]any) *RuffError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if m, ok := data["message"].(string); ok {
			msg = m
		}
		return &RuffError{Class: ClassType, Code: code, Message: msg, Data: data}
	}

	var hints []string
	for _, h := range def.Hints {
		if rendered := renderTemplate(h, data); rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &RuffError{
		Class:   def.Class,
		Code:    code,
		Message: renderTemplate(def.Template, data),
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a catalog error at the given position.
func NewWithPosition(code string, line, column int, data map[string]any) *RuffError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates an error without using the catalog.
func NewSimple(class ErrorClass, message string) *RuffError {
	return &RuffError{Class: class, Message: message}
}

func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}
	tmpl, err := template.New("").Option("missingkey=zero").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}
	return buf.String()
}

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// FindClosestMatch returns the candidate nearest to input, or "" when no
// candidate is within a length-scaled edit threshold. Exact matches are not
// suggestions.
func FindClosestMatch(input string, candidates []string) string {
	if input == "" {
		return ""
	}

	threshold := 1
	switch n := len(input); {
	case n >= 7:
		threshold = 3
	case n >= 4:
		threshold = 2
	}

	best, bestDist := "", -1
	lower := strings.ToLower(input)
	for _, c := range candidates {
		d := editDistance(lower, strings.ToLower(c))
		if bestDist == -1 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist <= 0 || bestDist > threshold {
		return ""
	}
	return best
}

// NewUndefinedIdentifier creates an UNDEF-0001 error with a "Did you mean"
// hint when a close candidate exists.
func NewUndefinedIdentifier(name string, candidates []string) *RuffError {
	err := New("UNDEF-0001", map[string]any{"Name": name})
	if s := FindClosestMatch(name, candidates); s != "" {
		err.Hints = append(err.Hints, "Did you mean `"+s+"`?")
	}
	return err
}
