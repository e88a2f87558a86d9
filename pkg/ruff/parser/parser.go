// Package parser builds a statement-level AST from a Ruff token sequence.
//
// The parser keeps a single integer cursor into a read-only token slice.
// Every production reads and advances that cursor; the few ambiguous spots in
// the grammar (assignment vs. expression statement, type annotations) save
// the cursor, look ahead, and restore it.
//
// Parsing never fails outright. When a statement cannot be parsed the parser
// stops and returns what it has so far. The first problem encountered is kept
// as a structured error for tools that want to report it; reading it is
// optional and does not change the statements returned.
package parser

import (
	"fmt"

	"github.com/sambeau/ruff/pkg/ruff/ast"
	rerrors "github.com/sambeau/ruff/pkg/ruff/errors"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
)

// Parser represents the parser
type Parser struct {
	tokens []lexer.Token
	pos    int

	structuredErrors []*rerrors.RuffError
}

// New creates a parser over tokens, normally the output of lexer.Tokenize
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses tokens and returns the top-level statements
func Parse(tokens []lexer.Token) []ast.Statement {
	return New(tokens).ParseProgram().Statements
}

// ParseString tokenizes and parses src in one step
func ParseString(src string) (*ast.Program, []*rerrors.RuffError) {
	p := New(lexer.Tokenize(src))
	program := p.ParseProgram()
	return program, p.StructuredErrors()
}

// Errors returns parser errors as formatted strings
func (p *Parser) Errors() []string {
	result := make([]string, len(p.structuredErrors))
	for i, err := range p.structuredErrors {
		result[i] = err.String()
	}
	return result
}

// StructuredErrors returns the recorded parser errors
func (p *Parser) StructuredErrors() []*rerrors.RuffError {
	return p.structuredErrors
}

// addError records a catalog error at tok. Only the first error is kept;
// later ones are usually fallout from it.
func (p *Parser) addError(code string, tok lexer.Token, data map[string]any) {
	if len(p.structuredErrors) > 0 {
		return
	}
	p.structuredErrors = append(p.structuredErrors,
		rerrors.NewWithPosition(code, tok.Line, tok.Column, data))
}

// unexpected records a PARSE-0002 error (or PARSE-0003 at end of input)
func (p *Parser) unexpected(construct string) {
	tok := p.peek()
	if tok.Type == lexer.EOF {
		p.addError("PARSE-0003", tok, map[string]any{"Construct": construct})
		return
	}
	p.addError("PARSE-0002", tok, map[string]any{"Token": tok.Literal})
}

// ParseProgram parses statements until end of input or until a statement
// fails to parse
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}}

	for p.peek().Type != lexer.EOF {
		stmt := p.parseStatement()
		if stmt == nil {
			break
		}
		program.Statements = append(program.Statements, stmt)
	}

	return program
}

// ---------------------------------------------------------------------------
// cursor
// ---------------------------------------------------------------------------

// peek returns the token at the cursor, or EOF past the end
func (p *Parser) peek() lexer.Token {
	return p.peekAt(0)
}

// peekAt returns the token n positions after the cursor
func (p *Parser) peekAt(n int) lexer.Token {
	i := p.pos + n
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	if len(p.tokens) > 0 {
		last := p.tokens[len(p.tokens)-1]
		return lexer.Token{Type: lexer.EOF, Line: last.Line, Column: last.Column}
	}
	return lexer.Token{Type: lexer.EOF, Line: 1, Column: 1}
}

// advance returns the token at the cursor and moves past it
func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) peekIs(tt lexer.TokenType, literal string) bool {
	return p.peek().Is(tt, literal)
}

func (p *Parser) peekPunct(ch string) bool {
	return p.peek().Is(lexer.PUNCT, ch)
}

func (p *Parser) peekKeyword(kw string) bool {
	return p.peek().Is(lexer.KEYWORD, kw)
}

func (p *Parser) peekOperator(op string) bool {
	return p.peek().Is(lexer.OPERATOR, op)
}

// expect consumes a token of the given type and literal or records an error
func (p *Parser) expect(tt lexer.TokenType, literal string) (lexer.Token, bool) {
	if p.peekIs(tt, literal) {
		return p.advance(), true
	}
	tok := p.peek()
	got := tok.Literal
	if tok.Type == lexer.EOF {
		got = "end of input"
	}
	p.addError("PARSE-0001", tok, map[string]any{"Expected": fmt.Sprintf("'%s'", literal), "Got": got})
	return tok, false
}

// expectIdent consumes an identifier and returns its name
func (p *Parser) expectIdent(what string) (lexer.Token, bool) {
	tok := p.peek()
	if tok.Type == lexer.IDENT {
		return p.advance(), true
	}
	got := tok.Literal
	if tok.Type == lexer.EOF {
		got = "end of input"
	}
	p.addError("PARSE-0001", tok, map[string]any{"Expected": what, "Got": got})
	return tok, false
}

// ---------------------------------------------------------------------------
// blocks
// ---------------------------------------------------------------------------

// parseBlock parses '{ statements }'. A statement that fails inside the
// block ends it early: the rest of the block, up to its closing brace, is
// skipped. A block cut off by end of input is accepted as is.
func (p *Parser) parseBlock(construct string) ([]ast.Statement, bool) {
	if _, ok := p.expect(lexer.PUNCT, "{"); !ok {
		return nil, false
	}

	body := []ast.Statement{}
	for !p.peekPunct("}") && p.peek().Type != lexer.EOF {
		stmt := p.parseStatement()
		if stmt == nil {
			p.skipToBlockEnd()
			break
		}
		body = append(body, stmt)
	}

	if p.peek().Type == lexer.EOF {
		p.unexpected(construct)
		return body, true
	}
	p.advance() // }
	return body, true
}

// skipToBlockEnd moves the cursor to the '}' closing the current block
func (p *Parser) skipToBlockEnd() {
	depth := 0
	for {
		tok := p.peek()
		switch {
		case tok.Type == lexer.EOF:
			return
		case tok.Is(lexer.PUNCT, "{"):
			depth++
		case tok.Is(lexer.PUNCT, "}"):
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}
