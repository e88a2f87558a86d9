// Package lexer turns Ruff source text into a flat token sequence.
//
// The lexer never fails. Unknown characters are dropped, malformed numbers
// become zero, and unterminated strings or block comments run to the end of
// the input. Every sequence returned by Tokenize ends in exactly one EOF token.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType represents the kind of a token
type TokenType int

const (
	EOF TokenType = iota

	IDENT        // add, foobar, Ok
	INT          // 1343456
	FLOAT        // 3.14159
	STRING       // "foobar"
	INTERPOLATED // "a ${b} c"
	BOOL         // true, false
	OPERATOR     // :=, ::, ==, +, ...
	PUNCT        // ( ) { } [ ] , ; : .
	KEYWORD      // let, func, match, ...
)

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case EOF:
		return "EOF"
	case IDENT:
		return "IDENT"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case INTERPOLATED:
		return "INTERPOLATED"
	case BOOL:
		return "BOOL"
	case OPERATOR:
		return "OPERATOR"
	case PUNCT:
		return "PUNCT"
	case KEYWORD:
		return "KEYWORD"
	default:
		return "UNKNOWN"
	}
}

// PartKind distinguishes literal text from a deferred ${...} expression
type PartKind int

const (
	TextPart PartKind = iota
	ExprPart
)

// Part is one segment of an interpolated string. For ExprPart, Text holds
// the raw source between ${ and the matching }; it is not tokenized here.
type Part struct {
	Kind PartKind
	Text string
}

func (p Part) String() string {
	if p.Kind == ExprPart {
		return "${" + p.Text + "}"
	}
	return p.Text
}

// Token represents a single token.
//
// Literal carries the text payload for every kind: identifier and keyword
// names, operator symbols, the punctuation character, the decoded string
// value, and the raw digits of numbers. The typed payloads Int, Float, Bool
// and Parts are only meaningful for their own kinds.
type Token struct {
	Type    TokenType
	Literal string
	Int     int64
	Float   float64
	Bool    bool
	Parts   []Part
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// Is reports whether the token has the given type and literal.
func (t Token) Is(tt TokenType, literal string) bool {
	return t.Type == tt && t.Literal == literal
}

// keywords holds the reserved words. true/false are boolean literals and
// constructor names such as Ok, Err, Some and None are plain identifiers.
var keywords = map[string]bool{
	"let":           true,
	"mut":           true,
	"const":         true,
	"func":          true,
	"return":        true,
	"enum":          true,
	"struct":        true,
	"match":         true,
	"case":          true,
	"default":       true,
	"if":            true,
	"else":          true,
	"loop":          true,
	"while":         true,
	"for":           true,
	"in":            true,
	"break":         true,
	"continue":      true,
	"try":           true,
	"except":        true,
	"throw":         true,
	"import":        true,
	"from":          true,
	"export":        true,
	"int":           true,
	"float":         true,
	"string":        true,
	"bool":          true,
	"test":          true,
	"test_setup":    true,
	"test_teardown": true,
	"test_group":    true,
	"Result":        true,
	"Option":        true,
	"async":         true,
	"await":         true,
	"spawn":         true,
	"yield":         true,
}

// LookupIdent classifies an identifier as KEYWORD, BOOL or IDENT
func LookupIdent(ident string) TokenType {
	if ident == "true" || ident == "false" {
		return BOOL
	}
	if keywords[ident] {
		return KEYWORD
	}
	return IDENT
}

// Keywords returns the reserved words (used for REPL completion)
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for k := range keywords {
		words = append(words, k)
	}
	return words
}

// Lexer represents the lexical analyzer
type Lexer struct {
	input    []rune
	position int  // index of ch in input
	ch       rune // current character, 0 at end of input
	line     int  // line of ch
	column   int  // column of ch
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input:  []rune(input),
		line:   1,
		column: 1,
	}
	if len(l.input) > 0 {
		l.ch = l.input[0]
	}
	return l
}

// Tokenize lexes the whole input. The result always ends with one EOF token.
func Tokenize(input string) []Token {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// readChar advances one character, keeping line and column in step
func (l *Lexer) readChar() {
	if l.atEnd() {
		return
	}
	if l.ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.position++
	if l.atEnd() {
		l.ch = 0
		return
	}
	l.ch = l.input[l.position]
}

// peekChar returns the character after ch without advancing
func (l *Lexer) peekChar() rune {
	return l.peekCharN(1)
}

// peekCharN returns the character n positions after ch
func (l *Lexer) peekCharN(n int) rune {
	pos := l.position + n
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

// NextToken scans the input and returns the next token. Once the input is
// exhausted it returns EOF on every call.
func (l *Lexer) NextToken() Token {
	for !l.atEnd() {
		line, col := l.line, l.column

		switch ch := l.ch; {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.readChar()
		case ch == '#':
			l.skipLineComment()
		case ch == '/' && l.peekChar() == '/':
			l.skipLineComment()
		case ch == '/' && l.peekChar() == '*':
			l.skipBlockComment()
		case ch == '"':
			return l.readString(line, col)
		case isDigit(ch):
			return l.readNumber(line, col)
		case isLetter(ch):
			ident := l.readIdentifier()
			tok := Token{Type: LookupIdent(ident), Literal: ident, Line: line, Column: col}
			if tok.Type == BOOL {
				tok.Bool = ident == "true"
			}
			return tok
		case ch == '.':
			if l.peekChar() == '.' && l.peekCharN(2) == '.' {
				l.readChar()
				l.readChar()
				l.readChar()
				return Token{Type: OPERATOR, Literal: "...", Line: line, Column: col}
			}
			// ".." lexes as two single dots
			l.readChar()
			return Token{Type: PUNCT, Literal: ".", Line: line, Column: col}
		case strings.ContainsRune("(){}[],;", ch):
			l.readChar()
			return Token{Type: PUNCT, Literal: string(ch), Line: line, Column: col}
		case ch == ':':
			switch l.peekChar() {
			case '=':
				return l.twoCharOperator(":=", line, col)
			case ':':
				return l.twoCharOperator("::", line, col)
			}
			l.readChar()
			return Token{Type: PUNCT, Literal: ":", Line: line, Column: col}
		default:
			if op, ok := l.readOperator(); ok {
				return Token{Type: OPERATOR, Literal: op, Line: line, Column: col}
			}
			// unknown characters are dropped
			l.readChar()
		}
	}

	return Token{Type: EOF, Line: l.line, Column: l.column}
}

// twoCharOperators maps a leading operator character to the second
// characters that extend it.
var twoCharOperators = map[rune]string{
	'=': "=",
	'!': "=",
	'>': "=",
	'<': "=",
	'-': ">",
	'?': "?.",
	'&': "&",
	'|': "|>",
	'+': "",
	'*': "",
	'/': "",
}

// readOperator reads a one- or two-character operator starting at ch
func (l *Lexer) readOperator() (string, bool) {
	seconds, ok := twoCharOperators[l.ch]
	if !ok {
		return "", false
	}
	first := l.ch
	l.readChar()
	if next := l.ch; next != 0 && strings.ContainsRune(seconds, next) {
		l.readChar()
		return string(first) + string(next), true
	}
	return string(first), true
}

func (l *Lexer) twoCharOperator(op string, line, col int) Token {
	l.readChar()
	l.readChar()
	return Token{Type: OPERATOR, Literal: op, Line: line, Column: col}
}

// skipLineComment consumes #, // and /// comments through the end of line
func (l *Lexer) skipLineComment() {
	for !l.atEnd() && l.ch != '\n' {
		l.readChar()
	}
}

// skipBlockComment consumes /* ... */; an unterminated comment eats the rest
// of the input
func (l *Lexer) skipBlockComment() {
	l.readChar() // '/'
	l.readChar() // '*'
	for !l.atEnd() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return string(l.input[start:l.position])
}

// readNumber reads an integer or float. A '.' belongs to the number only
// when a digit follows it, so 5.abs() lexes as 5 . abs ( ).
func (l *Lexer) readNumber(line, col int) Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	text := string(l.input[start:l.position])

	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			f = 0
		}
		return Token{Type: FLOAT, Literal: text, Float: f, Line: line, Column: col}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		n = 0
	}
	return Token{Type: INT, Literal: text, Int: n, Line: line, Column: col}
}

// readString reads a double-quoted string, splitting out ${...} spans
func (l *Lexer) readString(line, col int) Token {
	l.readChar() // opening quote

	var parts []Part
	var text strings.Builder
	interpolated := false

	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, Part{Kind: TextPart, Text: text.String()})
			text.Reset()
		}
	}

	for !l.atEnd() && l.ch != '"' {
		switch {
		case l.ch == '\\':
			l.readChar()
			if l.atEnd() {
				break
			}
			switch l.ch {
			case 'n':
				text.WriteRune('\n')
			case 't':
				text.WriteRune('\t')
			default:
				// covers \\ and \" as well as unknown escapes
				text.WriteRune(l.ch)
			}
			l.readChar()
		case l.ch == '$' && l.peekChar() == '{':
			interpolated = true
			flush()
			l.readChar() // '$'
			l.readChar() // '{'
			parts = append(parts, Part{Kind: ExprPart, Text: l.readInterpolation()})
		default:
			text.WriteRune(l.ch)
			l.readChar()
		}
	}
	l.readChar() // closing quote (no-op at end of input)
	flush()

	if interpolated {
		return Token{Type: INTERPOLATED, Parts: parts, Literal: joinParts(parts), Line: line, Column: col}
	}

	value := ""
	if len(parts) > 0 {
		value = parts[0].Text
	}
	return Token{Type: STRING, Literal: value, Line: line, Column: col}
}

// readInterpolation captures raw text up to the } that closes the current
// ${, counting nested braces.
func (l *Lexer) readInterpolation() string {
	start := l.position
	depth := 1
	for !l.atEnd() {
		switch l.ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				expr := string(l.input[start:l.position])
				l.readChar()
				return expr
			}
		}
		l.readChar()
	}
	return string(l.input[start:l.position])
}

func joinParts(parts []Part) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.String())
	}
	return sb.String()
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
