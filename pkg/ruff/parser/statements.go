package parser

import (
	"github.com/sambeau/ruff/pkg/ruff/ast"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
)

// parseStatement dispatches on the leading token. It returns nil when the
// statement cannot be parsed. Trailing ';' separators are consumed.
func (p *Parser) parseStatement() ast.Statement {
	stmt := p.parseStatementBody()
	if stmt == nil {
		return nil
	}
	for p.peekPunct(";") {
		p.advance()
	}
	return stmt
}

func (p *Parser) parseStatementBody() ast.Statement {
	tok := p.peek()

	if tok.Type == lexer.KEYWORD {
		switch tok.Literal {
		case "let", "mut":
			return p.parseVariableDecl()
		case "const":
			return p.parseConstDecl()
		case "func":
			if fn := p.parseFunctionDecl(); fn != nil {
				return fn
			}
			return nil
		case "enum":
			return p.parseEnumDecl()
		case "struct":
			return p.parseStructDecl()
		case "return":
			return p.parseReturnStatement()
		case "if":
			return p.parseIfStatement()
		case "match":
			return p.parseMatchStatement()
		case "loop":
			return p.parseLoopStatement()
		case "for":
			return p.parseForStatement()
		case "try":
			return p.parseTryExcept()
		case "import":
			return p.parseImport()
		case "from":
			return p.parseFromImport()
		case "export":
			return p.parseExport()
		case "break":
			return &ast.BreakStatement{Token: p.advance()}
		case "continue":
			return &ast.ContinueStatement{Token: p.advance()}
		case "test":
			return p.parseTest()
		case "test_setup":
			return p.parseTestSetup()
		case "test_teardown":
			return p.parseTestTeardown()
		case "test_group":
			return p.parseTestGroup()
		}
	}

	if tok.Type == lexer.IDENT {
		if decl, matched := p.parseAnnotatedBinding(); matched {
			return decl
		}
		return p.parseAssignOrExpression()
	}

	return p.parseExpressionStatement()
}

// parseVariableDecl parses 'let name [: type] := expr' and the 'mut' form
func (p *Parser) parseVariableDecl() ast.Statement {
	kw := p.advance()
	name, ok := p.expectIdent("variable name")
	if !ok {
		return nil
	}
	typ := p.parseTypeAnnotation()
	if _, ok := p.expect(lexer.OPERATOR, ":="); !ok {
		return nil
	}
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	return &ast.VariableDecl{
		Token:   kw,
		Name:    name.Literal,
		Value:   value,
		Mutable: kw.Literal == "mut",
		Type:    typ,
	}
}

func (p *Parser) parseConstDecl() ast.Statement {
	kw := p.advance()
	name, ok := p.expectIdent("constant name")
	if !ok {
		return nil
	}
	typ := p.parseTypeAnnotation()
	if _, ok := p.expect(lexer.OPERATOR, ":="); !ok {
		return nil
	}
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	return &ast.ConstDecl{Token: kw, Name: name.Literal, Value: value, Type: typ}
}

// parseAnnotatedBinding handles 'name: type := expr', a mutable declaration
// written without a keyword. The cursor is restored when the input does not
// have that shape and matched is false.
func (p *Parser) parseAnnotatedBinding() (stmt ast.Statement, matched bool) {
	if !p.peekAt(1).Is(lexer.PUNCT, ":") {
		return nil, false
	}
	start := p.pos
	name := p.advance()
	typ := p.parseTypeAnnotation()
	if typ == "" || !p.peekOperator(":=") {
		p.pos = start
		return nil, false
	}
	p.advance() // :=
	value := p.parseExpr()
	if value == nil {
		return nil, true
	}
	return &ast.VariableDecl{Token: name, Name: name.Literal, Value: value, Mutable: true, Type: typ}, true
}

// parseAssignOrExpression parses a full expression speculatively. If ':='
// follows, the expression is the assignment target; otherwise the cursor is
// rewound and the input is reparsed as an expression statement.
func (p *Parser) parseAssignOrExpression() ast.Statement {
	start := p.pos
	first := p.peek()

	target := p.parseExpr()
	if target != nil && p.peekOperator(":=") {
		op := p.advance()
		value := p.parseExpr()
		if value == nil {
			return nil
		}
		return &ast.AssignStatement{Token: op, Target: target, Value: value}
	}

	p.pos = start
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{Token: first, Expression: expr}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	first := p.peek()
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{Token: first, Expression: expr}
}

// parseFunctionDecl parses 'func name(a [: type], ...) [-> type] { body }'
func (p *Parser) parseFunctionDecl() *ast.FunctionDecl {
	kw := p.advance()
	name, ok := p.expectIdent("function name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.PUNCT, "("); !ok {
		return nil
	}

	params := []ast.Param{}
	for p.peek().Type == lexer.IDENT {
		param := ast.Param{Name: p.advance().Literal}
		param.Type = p.parseTypeAnnotation()
		params = append(params, param)
		if !p.peekPunct(",") {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(lexer.PUNCT, ")"); !ok {
		return nil
	}

	returnType := ""
	if p.peekOperator("->") {
		p.advance()
		tok := p.peek()
		if !isTypeKeyword(tok) {
			p.addError("PARSE-0001", tok, map[string]any{"Expected": "a return type", "Got": tok.Literal})
			return nil
		}
		returnType = p.advance().Literal
	}

	body, ok := p.parseBlock("function " + name.Literal)
	if !ok {
		return nil
	}
	return &ast.FunctionDecl{Token: kw, Name: name.Literal, Params: params, ReturnType: returnType, Body: body}
}

// parseEnumDecl parses 'enum Name { A, B, C }'
func (p *Parser) parseEnumDecl() ast.Statement {
	kw := p.advance()
	name, ok := p.expectIdent("enum name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.PUNCT, "{"); !ok {
		return nil
	}

	variants := []string{}
	for p.peek().Type == lexer.IDENT {
		variants = append(variants, p.advance().Literal)
		if !p.peekPunct(",") {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(lexer.PUNCT, "}"); !ok {
		return nil
	}
	return &ast.EnumDecl{Token: kw, Name: name.Literal, Variants: variants}
}

// parseStructDecl parses fields and methods in any order. Tokens that are
// neither a field nor a method (separators, stray symbols) are skipped one
// at a time.
func (p *Parser) parseStructDecl() ast.Statement {
	kw := p.advance()
	name, ok := p.expectIdent("struct name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.PUNCT, "{"); !ok {
		return nil
	}

	decl := &ast.StructDecl{Token: kw, Name: name.Literal, Fields: []ast.StructField{}}
	for !p.peekPunct("}") && p.peek().Type != lexer.EOF {
		switch tok := p.peek(); {
		case tok.Is(lexer.KEYWORD, "func"):
			method := p.parseFunctionDecl()
			if method == nil {
				return nil
			}
			decl.Methods = append(decl.Methods, method)
		case tok.Type == lexer.IDENT:
			field := ast.StructField{Name: p.advance().Literal}
			field.Type = p.parseTypeAnnotation()
			decl.Fields = append(decl.Fields, field)
		default:
			p.advance()
		}
	}
	if _, ok := p.expect(lexer.PUNCT, "}"); !ok {
		return nil
	}
	return decl
}

// parseReturnStatement parses 'return' with an optional value. The value is
// absent when the next token ends the statement.
func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.advance()}
	if p.peekPunct(";") || p.peekPunct("}") || p.peek().Type == lexer.EOF {
		return stmt
	}
	stmt.Value = p.parseExpr()
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

// parseIfStatement parses 'if cond { } [else { }]' and 'else if' chains
func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.advance()}
	stmt.Condition = p.parseExpr()
	if stmt.Condition == nil {
		return nil
	}
	var ok bool
	if stmt.Then, ok = p.parseBlock("if body"); !ok {
		return nil
	}

	if !p.peekKeyword("else") {
		return stmt
	}
	p.advance()

	if p.peekKeyword("if") {
		nested := p.parseIfStatement()
		if nested == nil {
			return nil
		}
		stmt.Else = []ast.Statement{nested}
		return stmt
	}
	if stmt.Else, ok = p.parseBlock("else body"); !ok {
		return nil
	}
	return stmt
}

// parseMatchStatement parses
//
//	match expr { case P: { } case Base::V(x): { } default: { } }
func (p *Parser) parseMatchStatement() ast.Statement {
	stmt := &ast.MatchStatement{Token: p.advance(), Cases: []ast.MatchCase{}}
	stmt.Subject = p.parseExpr()
	if stmt.Subject == nil {
		return nil
	}
	if _, ok := p.expect(lexer.PUNCT, "{"); !ok {
		return nil
	}

	for {
		switch {
		case p.peekKeyword("case"):
			p.advance()
			pattern, ok := p.parseMatchPattern()
			if !ok {
				return nil
			}
			if _, ok := p.expect(lexer.PUNCT, ":"); !ok {
				return nil
			}
			body, ok := p.parseBlock("case body")
			if !ok {
				return nil
			}
			stmt.Cases = append(stmt.Cases, ast.MatchCase{Pattern: pattern, Body: body})
			continue
		case p.peekKeyword("default"):
			p.advance()
			if _, ok := p.expect(lexer.PUNCT, ":"); !ok {
				return nil
			}
			body, ok := p.parseBlock("default body")
			if !ok {
				return nil
			}
			stmt.Default = body
			continue
		}
		break
	}

	if _, ok := p.expect(lexer.PUNCT, "}"); !ok {
		return nil
	}
	return stmt
}

// parseLoopStatement parses 'loop { }' and 'loop while cond { }'
func (p *Parser) parseLoopStatement() ast.Statement {
	stmt := &ast.LoopStatement{Token: p.advance()}
	if p.peekKeyword("while") {
		p.advance()
		stmt.Condition = p.parseExpr()
		if stmt.Condition == nil {
			return nil
		}
	}
	var ok bool
	if stmt.Body, ok = p.parseBlock("loop body"); !ok {
		return nil
	}
	return stmt
}

// parseForStatement parses 'for x in iterable { }'. The iterable uses the
// primary grammar only, so the body's '{' is never taken for a struct
// literal.
func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.advance()}
	variable, ok := p.expectIdent("loop variable")
	if !ok {
		return nil
	}
	stmt.Variable = variable.Literal
	if _, ok := p.expect(lexer.KEYWORD, "in"); !ok {
		return nil
	}
	stmt.Iterable = p.parsePrimary()
	if stmt.Iterable == nil {
		return nil
	}
	if stmt.Body, ok = p.parseBlock("for body"); !ok {
		return nil
	}
	return stmt
}

// parseTryExcept parses 'try { } except name { }'
func (p *Parser) parseTryExcept() ast.Statement {
	stmt := &ast.TryExcept{Token: p.advance()}
	var ok bool
	if stmt.Body, ok = p.parseBlock("try body"); !ok {
		return nil
	}
	if _, ok := p.expect(lexer.KEYWORD, "except"); !ok {
		return nil
	}
	name, ok := p.expectIdent("exception variable")
	if !ok {
		return nil
	}
	stmt.ExceptVar = name.Literal
	if stmt.Handler, ok = p.parseBlock("except body"); !ok {
		return nil
	}
	return stmt
}

// parseImport parses 'import module'
func (p *Parser) parseImport() ast.Statement {
	kw := p.advance()
	name, ok := p.expectIdent("module name")
	if !ok {
		return nil
	}
	return &ast.ImportStatement{Token: kw, Module: name.Literal}
}

// parseFromImport parses 'from module import a, b, c'
func (p *Parser) parseFromImport() ast.Statement {
	kw := p.advance()
	name, ok := p.expectIdent("module name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.KEYWORD, "import"); !ok {
		return nil
	}

	symbols := []string{}
	for {
		sym, ok := p.expectIdent("symbol name")
		if !ok {
			return nil
		}
		symbols = append(symbols, sym.Literal)
		if !p.peekPunct(",") {
			break
		}
		p.advance()
	}
	return &ast.ImportStatement{Token: kw, Module: name.Literal, Symbols: symbols}
}

// parseExport wraps the statement that follows 'export'
func (p *Parser) parseExport() ast.Statement {
	kw := p.advance()
	inner := p.parseStatementBody()
	if inner == nil {
		return nil
	}
	return &ast.ExportStatement{Token: kw, Statement: inner}
}

// parseTest parses 'test "name" { body }'
func (p *Parser) parseTest() ast.Statement {
	kw := p.advance()
	name, ok := p.expectTestName()
	if !ok {
		return nil
	}
	body, ok := p.parseBlock("test body")
	if !ok {
		return nil
	}
	return &ast.TestStatement{Token: kw, Name: name, Body: body}
}

func (p *Parser) parseTestSetup() ast.Statement {
	kw := p.advance()
	body, ok := p.parseBlock("test_setup body")
	if !ok {
		return nil
	}
	return &ast.TestSetup{Token: kw, Body: body}
}

func (p *Parser) parseTestTeardown() ast.Statement {
	kw := p.advance()
	body, ok := p.parseBlock("test_teardown body")
	if !ok {
		return nil
	}
	return &ast.TestTeardown{Token: kw, Body: body}
}

// parseTestGroup parses 'test_group "name" { tests }'
func (p *Parser) parseTestGroup() ast.Statement {
	kw := p.advance()
	name, ok := p.expectTestName()
	if !ok {
		return nil
	}
	body, ok := p.parseBlock("test_group body")
	if !ok {
		return nil
	}
	return &ast.TestGroup{Token: kw, Name: name, Body: body}
}

func (p *Parser) expectTestName() (string, bool) {
	tok := p.peek()
	if tok.Type != lexer.STRING {
		p.addError("PARSE-0001", tok, map[string]any{"Expected": "a test name string", "Got": tok.Literal})
		return "", false
	}
	p.advance()
	return tok.Literal, true
}
