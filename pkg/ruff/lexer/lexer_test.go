package lexer

import (
	"reflect"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `let five := 5;
mut ten: int := 10
func add(x, y) -> int {
  return x + y
}
5.abs()
"foo bar"
a == b != c >= d <= e
x ?? y ?. z && w || v |> u
...
..
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{KEYWORD, "let"},
		{IDENT, "five"},
		{OPERATOR, ":="},
		{INT, "5"},
		{PUNCT, ";"},
		{KEYWORD, "mut"},
		{IDENT, "ten"},
		{PUNCT, ":"},
		{KEYWORD, "int"},
		{OPERATOR, ":="},
		{INT, "10"},
		{KEYWORD, "func"},
		{IDENT, "add"},
		{PUNCT, "("},
		{IDENT, "x"},
		{PUNCT, ","},
		{IDENT, "y"},
		{PUNCT, ")"},
		{OPERATOR, "->"},
		{KEYWORD, "int"},
		{PUNCT, "{"},
		{KEYWORD, "return"},
		{IDENT, "x"},
		{OPERATOR, "+"},
		{IDENT, "y"},
		{PUNCT, "}"},
		{INT, "5"},
		{PUNCT, "."},
		{IDENT, "abs"},
		{PUNCT, "("},
		{PUNCT, ")"},
		{STRING, "foo bar"},
		{IDENT, "a"},
		{OPERATOR, "=="},
		{IDENT, "b"},
		{OPERATOR, "!="},
		{IDENT, "c"},
		{OPERATOR, ">="},
		{IDENT, "d"},
		{OPERATOR, "<="},
		{IDENT, "e"},
		{IDENT, "x"},
		{OPERATOR, "??"},
		{IDENT, "y"},
		{OPERATOR, "?."},
		{IDENT, "z"},
		{OPERATOR, "&&"},
		{IDENT, "w"},
		{OPERATOR, "||"},
		{IDENT, "v"},
		{OPERATOR, "|>"},
		{IDENT, "u"},
		{OPERATOR, "..."},
		{PUNCT, "."},
		{PUNCT, "."},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestTokenizeEndsWithSingleEOF(t *testing.T) {
	inputs := []string{
		"",
		"   \t\n",
		"let x := 1",
		`"unterminated`,
		`"open ${interp`,
		"/* unterminated comment",
		"@@@ ~ `",
		"# only a comment",
		"x /",
	}

	for _, input := range inputs {
		tokens := Tokenize(input)
		if len(tokens) == 0 {
			t.Fatalf("Tokenize(%q) returned no tokens", input)
		}
		if tokens[len(tokens)-1].Type != EOF {
			t.Errorf("Tokenize(%q) last token = %s, want EOF", input, tokens[len(tokens)-1].Type)
		}
		for i, tok := range tokens[:len(tokens)-1] {
			if tok.Type == EOF {
				t.Errorf("Tokenize(%q) has EOF at index %d before the end", input, i)
			}
		}
	}
}

func TestTokenizeIsDeterministic(t *testing.T) {
	input := "let s := \"a${b}c\"\nfunc f() { return 1.5 }\n# note\n"
	first := Tokenize(input)
	second := Tokenize(input)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Tokenize is not deterministic:\n%v\n%v", first, second)
	}
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"abc"`, "abc"},
		{`""`, ""},
		{`"hello world"`, "hello world"},
		{`"a\nb"`, "a\nb"},
		{`"a\tb"`, "a\tb"},
		{`"back\\slash"`, `back\slash`},
		{`"say \"hi\""`, `say "hi"`},
		{`"\q"`, "q"},
		{`"cost $5"`, "cost $5"},
		{`"multi
line"`, "multi\nline"},
		{`"unterminated`, "unterminated"},
	}

	for _, tt := range tests {
		tokens := Tokenize(tt.input)
		if tokens[0].Type != STRING {
			t.Fatalf("Tokenize(%s) type = %s, want STRING", tt.input, tokens[0].Type)
		}
		if tokens[0].Literal != tt.expected {
			t.Errorf("Tokenize(%s) literal = %q, want %q", tt.input, tokens[0].Literal, tt.expected)
		}
	}
}

func TestInterpolatedStrings(t *testing.T) {
	tests := []struct {
		input    string
		expected []Part
	}{
		{
			`"a${1+1}b"`,
			[]Part{{TextPart, "a"}, {ExprPart, "1+1"}, {TextPart, "b"}},
		},
		{
			`"v=${ f({a: 1}) }!"`,
			[]Part{{TextPart, "v="}, {ExprPart, " f({a: 1}) "}, {TextPart, "!"}},
		},
		{
			`"${name}"`,
			[]Part{{ExprPart, "name"}},
		},
		{
			`"${a} and ${b}"`,
			[]Part{{ExprPart, "a"}, {TextPart, " and "}, {ExprPart, "b"}},
		},
		{
			`"x${open`,
			[]Part{{TextPart, "x"}, {ExprPart, "open"}},
		},
	}

	for _, tt := range tests {
		tokens := Tokenize(tt.input)
		if len(tokens) != 2 {
			t.Fatalf("Tokenize(%s) produced %d tokens, want 2", tt.input, len(tokens))
		}
		tok := tokens[0]
		if tok.Type != INTERPOLATED {
			t.Fatalf("Tokenize(%s) type = %s, want INTERPOLATED", tt.input, tok.Type)
		}
		if !reflect.DeepEqual(tok.Parts, tt.expected) {
			t.Errorf("Tokenize(%s) parts = %#v, want %#v", tt.input, tok.Parts, tt.expected)
		}
	}
}

func TestNumbers(t *testing.T) {
	t.Run("integer", func(t *testing.T) {
		tok := Tokenize("42")[0]
		if tok.Type != INT || tok.Int != 42 {
			t.Errorf("got %s %d, want INT 42", tok.Type, tok.Int)
		}
	})

	t.Run("float", func(t *testing.T) {
		tok := Tokenize("5.25")[0]
		if tok.Type != FLOAT || tok.Float != 5.25 {
			t.Errorf("got %s %g, want FLOAT 5.25", tok.Type, tok.Float)
		}
	})

	t.Run("dot before method is not a decimal point", func(t *testing.T) {
		tokens := Tokenize("5.abs")
		want := []TokenType{INT, PUNCT, IDENT, EOF}
		assertTypes(t, tokens, want)
		if tokens[0].Int != 5 || tokens[1].Literal != "." || tokens[2].Literal != "abs" {
			t.Errorf("unexpected tokens: %v", tokens)
		}
	})

	t.Run("range dots split", func(t *testing.T) {
		assertTypes(t, Tokenize("1..5"), []TokenType{INT, PUNCT, PUNCT, INT, EOF})
	})

	t.Run("overflow becomes zero", func(t *testing.T) {
		tok := Tokenize("99999999999999999999")[0]
		if tok.Type != INT || tok.Int != 0 {
			t.Errorf("got %s %d, want INT 0", tok.Type, tok.Int)
		}
	})
}

func TestComments(t *testing.T) {
	input := "# c\nx // d\n/// doc\ny /* block \n more */ z"
	tokens := Tokenize(input)
	assertTypes(t, tokens, []TokenType{IDENT, IDENT, IDENT, EOF})

	positions := []struct {
		literal string
		line    int
		column  int
	}{
		{"x", 2, 1},
		{"y", 4, 1},
		{"z", 5, 10},
	}
	for i, p := range positions {
		tok := tokens[i]
		if tok.Literal != p.literal || tok.Line != p.line || tok.Column != p.column {
			t.Errorf("tokens[%d] = %q at %d:%d, want %q at %d:%d",
				i, tok.Literal, tok.Line, tok.Column, p.literal, p.line, p.column)
		}
	}
}

func TestPositions(t *testing.T) {
	tokens := Tokenize("let x\n  y")
	expected := []struct{ line, column int }{{1, 1}, {1, 5}, {2, 3}}
	for i, e := range expected {
		if tokens[i].Line != e.line || tokens[i].Column != e.column {
			t.Errorf("tokens[%d] at %d:%d, want %d:%d", i, tokens[i].Line, tokens[i].Column, e.line, e.column)
		}
	}
}

func TestOperatorsAndDroppedCharacters(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"a / b", []string{"a", "/", "b", ""}},
		{"a @ b", []string{"a", "b", ""}},
		{"Base::Variant", []string{"Base", "::", "Variant", ""}},
		{"x: int", []string{"x", ":", "int", ""}},
		{"- > ->", []string{"-", ">", "->", ""}},
		{"! = !=", []string{"!", "=", "!=", ""}},
	}

	for _, tt := range tests {
		tokens := Tokenize(tt.input)
		got := make([]string, len(tokens))
		for i, tok := range tokens {
			got[i] = tok.Literal
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"let", KEYWORD},
		{"func", KEYWORD},
		{"test_group", KEYWORD},
		{"Result", KEYWORD},
		{"Option", KEYWORD},
		{"true", BOOL},
		{"false", BOOL},
		{"Ok", IDENT},
		{"Err", IDENT},
		{"Some", IDENT},
		{"None", IDENT},
		{"print", IDENT},
		{"foo_bar9", IDENT},
	}

	for _, tt := range tests {
		result := LookupIdent(tt.input)
		if result != tt.expected {
			t.Errorf("LookupIdent(%q) = %s, want %s", tt.input, result, tt.expected)
		}
	}
}

func TestBooleanPayload(t *testing.T) {
	tokens := Tokenize("true false")
	if !tokens[0].Bool || tokens[1].Bool {
		t.Errorf("boolean payloads wrong: %v %v", tokens[0].Bool, tokens[1].Bool)
	}
}

func assertTypes(t *testing.T, tokens []Token, want []TokenType) {
	t.Helper()
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(tokens), tokens, len(want))
	}
	for i := range want {
		if tokens[i].Type != want[i] {
			t.Errorf("tokens[%d] type = %s, want %s", i, tokens[i].Type, want[i])
		}
	}
}
