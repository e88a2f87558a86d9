package parser

import (
	"github.com/sambeau/ruff/pkg/ruff/ast"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
)

// parseArrayLiteral parses '[a, b, c]'. Elements use the comparison grammar.
func (p *Parser) parseArrayLiteral() ast.Expression {
	arr := &ast.ArrayLiteral{Token: p.advance(), Elements: []ast.Expression{}}

	for !p.peekPunct("]") {
		elem := p.parseComparison()
		if elem == nil {
			return nil
		}
		arr.Elements = append(arr.Elements, elem)
		if !p.peekPunct(",") {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(lexer.PUNCT, "]"); !ok {
		return nil
	}
	return arr
}

// parseDictLiteral parses '{k: v, ...}'. Keys and values use the comparison
// grammar.
func (p *Parser) parseDictLiteral() ast.Expression {
	dict := &ast.DictLiteral{Token: p.advance(), Pairs: []ast.DictPair{}}

	for !p.peekPunct("}") {
		key := p.parseComparison()
		if key == nil {
			return nil
		}
		if _, ok := p.expect(lexer.PUNCT, ":"); !ok {
			return nil
		}
		value := p.parseComparison()
		if value == nil {
			return nil
		}
		dict.Pairs = append(dict.Pairs, ast.DictPair{Key: key, Value: value})
		if !p.peekPunct(",") {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(lexer.PUNCT, "}"); !ok {
		return nil
	}
	return dict
}

// structLiteralAhead reports whether the '{' at the cursor opens a struct
// instance: either '{ ident :' or the empty '{ }'.
func (p *Parser) structLiteralAhead() bool {
	next := p.peekAt(1)
	if next.Is(lexer.PUNCT, "}") {
		return true
	}
	return next.Type == lexer.IDENT && p.peekAt(2).Is(lexer.PUNCT, ":")
}

// parseStructInstance parses 'Name { field: value, ... }'. Field values use
// the primary grammar only.
func (p *Parser) parseStructInstance(name *ast.Identifier) ast.Expression {
	p.advance() // {
	instance := &ast.StructInstance{Token: name.Token, Name: name.Value, Fields: []ast.FieldValue{}}

	for !p.peekPunct("}") {
		field, ok := p.expectIdent("field name")
		if !ok {
			return nil
		}
		if _, ok := p.expect(lexer.PUNCT, ":"); !ok {
			return nil
		}
		value := p.parsePrimary()
		if value == nil {
			return nil
		}
		instance.Fields = append(instance.Fields, ast.FieldValue{Name: field.Literal, Value: value})
		if !p.peekPunct(",") {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(lexer.PUNCT, "}"); !ok {
		return nil
	}
	return instance
}

// parseTypeAnnotation reads ': type' when present. The ':' is consumed
// tentatively; if a primitive type keyword does not follow, the cursor is
// restored and "" is returned.
func (p *Parser) parseTypeAnnotation() string {
	if !p.peekPunct(":") {
		return ""
	}
	start := p.pos
	p.advance()
	if tok := p.peek(); isTypeKeyword(tok) {
		p.advance()
		return tok.Literal
	}
	p.pos = start
	return ""
}

func isTypeKeyword(tok lexer.Token) bool {
	if tok.Type != lexer.KEYWORD {
		return false
	}
	switch tok.Literal {
	case "int", "float", "string", "bool":
		return true
	}
	return false
}

// isTagBase reports whether tok can start 'Base::Variant'. Result and
// Option are keywords but name the built-in tag families.
func isTagBase(tok lexer.Token) bool {
	return tok.Type == lexer.IDENT || tok.Is(lexer.KEYWORD, "Result") || tok.Is(lexer.KEYWORD, "Option")
}

// parseMatchPattern parses 'Variant', 'Variant(x)', 'Base::Variant' and
// 'Base::Variant(x)'
func (p *Parser) parseMatchPattern() (ast.MatchPattern, bool) {
	var pattern ast.MatchPattern

	head := p.peek()
	if !isTagBase(head) {
		p.addError("PARSE-0004", head, map[string]any{"Token": head.Literal})
		return pattern, false
	}
	p.advance()
	pattern.Variant = head.Literal

	if p.peekOperator("::") {
		p.advance()
		variant, ok := p.expectIdent("variant name")
		if !ok {
			return pattern, false
		}
		pattern.Base = head.Literal
		pattern.Variant = variant.Literal
	}

	if p.peekPunct("(") {
		p.advance()
		bound, ok := p.expectIdent("binding name")
		if !ok {
			return pattern, false
		}
		if _, ok := p.expect(lexer.PUNCT, ")"); !ok {
			return pattern, false
		}
		pattern.Bound = bound.Literal
	}
	return pattern, true
}
