package parser

import (
	"github.com/sambeau/ruff/pkg/ruff/ast"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
)

// Binary operators by precedence level, lowest first. All levels are
// left-associative.
var (
	comparisonOperators     = map[string]bool{"==": true, ">": true, "<": true, ">=": true, "<=": true}
	additiveOperators       = map[string]bool{"+": true, "-": true}
	multiplicativeOperators = map[string]bool{"*": true, "/": true}
)

// builtinTagForms are names parsed as Tag nodes when followed by '('
var builtinTagForms = map[string]bool{"print": true, "throw": true}

// parseExpr parses a full expression. Qualified tags and the built-in call
// forms are recognized here, before the precedence chain.
func (p *Parser) parseExpr() ast.Expression {
	tok := p.peek()

	if isTagBase(tok) && p.peekAt(1).Is(lexer.OPERATOR, "::") {
		return p.parseQualifiedTag()
	}
	if (tok.Type == lexer.IDENT || tok.Type == lexer.KEYWORD) && builtinTagForms[tok.Literal] &&
		p.peekAt(1).Is(lexer.PUNCT, "(") {
		p.advance() // name
		p.advance() // (
		args, ok := p.parseArguments()
		if !ok {
			return nil
		}
		return &ast.TagExpression{Token: tok, Name: tok.Literal, Arguments: args}
	}

	return p.parseComparison()
}

// parseQualifiedTag parses 'Base::Variant' with optional '(args)'
func (p *Parser) parseQualifiedTag() ast.Expression {
	base := p.advance()
	p.advance() // ::
	variant, ok := p.expectIdent("variant name")
	if !ok {
		return nil
	}

	tag := &ast.TagExpression{Token: base, Name: base.Literal + "::" + variant.Literal, Arguments: []ast.Expression{}}
	if p.peekPunct("(") {
		p.advance()
		args, ok := p.parseArguments()
		if !ok {
			return nil
		}
		tag.Arguments = args
	}
	return tag
}

func (p *Parser) parseComparison() ast.Expression {
	return p.parseBinary(comparisonOperators, p.parseAdditive)
}

func (p *Parser) parseAdditive() ast.Expression {
	return p.parseBinary(additiveOperators, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() ast.Expression {
	return p.parseBinary(multiplicativeOperators, p.parsePostfix)
}

// parseBinary folds 'operand (op operand)*' into a left-leaning tree
func (p *Parser) parseBinary(ops map[string]bool, operand func() ast.Expression) ast.Expression {
	left := operand()
	if left == nil {
		return nil
	}
	for {
		tok := p.peek()
		if tok.Type != lexer.OPERATOR || !ops[tok.Literal] {
			return left
		}
		p.advance()
		right := operand()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpression{Token: tok, Left: left, Operator: tok.Literal, Right: right}
	}
}

// parsePostfix applies calls, field access, indexing and struct
// instantiation to a primary expression until none match.
func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}

	for {
		tok := p.peek()
		switch {
		case tok.Is(lexer.PUNCT, "("):
			p.advance()
			args, ok := p.parseArguments()
			if !ok {
				return nil
			}
			expr = &ast.CallExpression{Token: tok, Function: expr, Arguments: args}

		case tok.Is(lexer.PUNCT, "."):
			p.advance()
			field, ok := p.expectIdent("field name")
			if !ok {
				return nil
			}
			expr = &ast.FieldAccess{Token: tok, Object: expr, Field: field.Literal}

		case tok.Is(lexer.PUNCT, "["):
			p.advance()
			index := p.parseExpr()
			if index == nil {
				return nil
			}
			if _, ok := p.expect(lexer.PUNCT, "]"); !ok {
				return nil
			}
			expr = &ast.IndexExpression{Token: tok, Object: expr, Index: index}

		case tok.Is(lexer.PUNCT, "{"):
			ident, isIdent := expr.(*ast.Identifier)
			if !isIdent || !p.structLiteralAhead() {
				return expr
			}
			instance := p.parseStructInstance(ident)
			if instance == nil {
				return nil
			}
			expr = instance

		default:
			return expr
		}
	}
}

// parseArguments parses a comma-separated list after '(' through ')'
func (p *Parser) parseArguments() ([]ast.Expression, bool) {
	args := []ast.Expression{}
	if p.peekPunct(")") {
		p.advance()
		return args, true
	}
	for {
		arg := p.parseExpr()
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
		if !p.peekPunct(",") {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(lexer.PUNCT, ")"); !ok {
		return nil, false
	}
	return args, true
}

// parsePrimary parses literals, identifiers and array/dict literals
func (p *Parser) parsePrimary() ast.Expression {
	tok := p.peek()

	switch tok.Type {
	case lexer.IDENT:
		p.advance()
		return &ast.Identifier{Token: tok, Value: tok.Literal}
	case lexer.INT:
		p.advance()
		return &ast.IntegerLiteral{Token: tok, Value: tok.Int}
	case lexer.FLOAT:
		p.advance()
		return &ast.FloatLiteral{Token: tok, Value: tok.Float}
	case lexer.STRING:
		p.advance()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}
	case lexer.INTERPOLATED:
		p.advance()
		return &ast.InterpolatedString{Token: tok, Parts: tok.Parts}
	case lexer.BOOL:
		p.advance()
		return &ast.BooleanLiteral{Token: tok, Value: tok.Bool}
	case lexer.PUNCT:
		switch tok.Literal {
		case "[":
			return p.parseArrayLiteral()
		case "{":
			return p.parseDictLiteral()
		}
	}

	p.unexpected("expression")
	return nil
}
