// Package ast defines the statement-level syntax tree produced by the parser.
//
// Statements and expressions are closed sets: every node type implements
// exactly one of the unexported marker methods, so a type switch over
// Statement or Expression covers the whole language. Nodes are built once by
// the parser and never mutated afterwards.
package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/sambeau/ruff/pkg/ruff/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Program represents the root node of every AST
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	lines := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// VariableDecl represents 'let x := 5', 'mut x: int := 5' and 'x: int := 5'
type VariableDecl struct {
	Token   lexer.Token // the 'let', 'mut' or identifier token
	Name    string
	Value   Expression
	Mutable bool
	Type    string // "" when no annotation was given
}

func (s *VariableDecl) statementNode()       {}
func (s *VariableDecl) TokenLiteral() string { return s.Token.Literal }
func (s *VariableDecl) String() string {
	keyword := "let"
	if s.Mutable {
		keyword = "mut"
	}
	return keyword + " " + s.Name + annotation(s.Type) + " := " + str(s.Value)
}

// ConstDecl represents 'const LIMIT := 10'
type ConstDecl struct {
	Token lexer.Token // the 'const' token
	Name  string
	Value Expression
	Type  string
}

func (s *ConstDecl) statementNode()       {}
func (s *ConstDecl) TokenLiteral() string { return s.Token.Literal }
func (s *ConstDecl) String() string {
	return "const " + s.Name + annotation(s.Type) + " := " + str(s.Value)
}

// Param is a function parameter with an optional primitive type
type Param struct {
	Name string
	Type string
}

func (p Param) String() string { return p.Name + annotation(p.Type) }

// FunctionDecl represents 'func name(a: int, b) -> int { ... }'
type FunctionDecl struct {
	Token      lexer.Token // the 'func' token
	Name       string
	Params     []Param
	ReturnType string
	Body       []Statement
}

func (s *FunctionDecl) statementNode()       {}
func (s *FunctionDecl) TokenLiteral() string { return s.Token.Literal }
func (s *FunctionDecl) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}
	var out bytes.Buffer
	out.WriteString("func " + s.Name + "(" + strings.Join(params, ", ") + ")")
	if s.ReturnType != "" {
		out.WriteString(" -> " + s.ReturnType)
	}
	out.WriteString(" " + block(s.Body))
	return out.String()
}

// EnumDecl represents 'enum Color { Red, Green }'
type EnumDecl struct {
	Token    lexer.Token // the 'enum' token
	Name     string
	Variants []string
}

func (s *EnumDecl) statementNode()       {}
func (s *EnumDecl) TokenLiteral() string { return s.Token.Literal }
func (s *EnumDecl) String() string {
	return "enum " + s.Name + " { " + strings.Join(s.Variants, ", ") + " }"
}

// StructField is a declared struct field with an optional primitive type
type StructField struct {
	Name string
	Type string
}

// StructDecl represents 'struct Point { x: int, y: int func len() { ... } }'
type StructDecl struct {
	Token   lexer.Token // the 'struct' token
	Name    string
	Fields  []StructField
	Methods []*FunctionDecl
}

func (s *StructDecl) statementNode()       {}
func (s *StructDecl) TokenLiteral() string { return s.Token.Literal }
func (s *StructDecl) String() string {
	items := make([]string, 0, len(s.Fields)+len(s.Methods))
	for _, f := range s.Fields {
		items = append(items, f.Name+annotation(f.Type))
	}
	for _, m := range s.Methods {
		items = append(items, m.String())
	}
	return "struct " + s.Name + " { " + strings.Join(items, ", ") + " }"
}

// ReturnStatement represents 'return' and 'return expr'
type ReturnStatement struct {
	Token lexer.Token // the 'return' token
	Value Expression  // nil for a bare return
}

func (s *ReturnStatement) statementNode()       {}
func (s *ReturnStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ReturnStatement) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

// IfStatement represents 'if cond { } else { }'. Else is nil when there is
// no else branch and non-nil (possibly empty) when there is one.
type IfStatement struct {
	Token     lexer.Token // the 'if' token
	Condition Expression
	Then      []Statement
	Else      []Statement
}

func (s *IfStatement) statementNode()       {}
func (s *IfStatement) TokenLiteral() string { return s.Token.Literal }
func (s *IfStatement) String() string {
	out := "if " + str(s.Condition) + " " + block(s.Then)
	if s.Else != nil {
		out += " else " + block(s.Else)
	}
	return out
}

// MatchPattern is the structured form of a case pattern. Base is empty for
// a bare pattern like 'Ok(v)' and Bound is empty when nothing is captured.
type MatchPattern struct {
	Base    string
	Variant string
	Bound   string
}

// String renders the pattern in source form, e.g. 'Result::Ok(v)'
func (p MatchPattern) String() string {
	out := p.Variant
	if p.Base != "" {
		out = p.Base + "::" + p.Variant
	}
	if p.Bound != "" {
		out += "(" + p.Bound + ")"
	}
	return out
}

// MatchCase is one 'case Pattern: { body }' arm
type MatchCase struct {
	Pattern MatchPattern
	Body    []Statement
}

// MatchStatement represents 'match subject { case P: { } default: { } }'.
// Default is nil when no default arm was written.
type MatchStatement struct {
	Token   lexer.Token // the 'match' token
	Subject Expression
	Cases   []MatchCase
	Default []Statement
}

func (s *MatchStatement) statementNode()       {}
func (s *MatchStatement) TokenLiteral() string { return s.Token.Literal }
func (s *MatchStatement) String() string {
	var out bytes.Buffer
	out.WriteString("match " + str(s.Subject) + " { ")
	for _, c := range s.Cases {
		out.WriteString("case " + c.Pattern.String() + ": " + block(c.Body) + " ")
	}
	if s.Default != nil {
		out.WriteString("default: " + block(s.Default) + " ")
	}
	out.WriteString("}")
	return out.String()
}

// LoopStatement represents 'loop { }' and 'loop while cond { }'
type LoopStatement struct {
	Token     lexer.Token // the 'loop' token
	Condition Expression  // nil for an unconditional loop
	Body      []Statement
}

func (s *LoopStatement) statementNode()       {}
func (s *LoopStatement) TokenLiteral() string { return s.Token.Literal }
func (s *LoopStatement) String() string {
	if s.Condition == nil {
		return "loop " + block(s.Body)
	}
	return "loop while " + s.Condition.String() + " " + block(s.Body)
}

// ForStatement represents 'for item in items { }'
type ForStatement struct {
	Token    lexer.Token // the 'for' token
	Variable string
	Iterable Expression
	Body     []Statement
}

func (s *ForStatement) statementNode()       {}
func (s *ForStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ForStatement) String() string {
	return "for " + s.Variable + " in " + str(s.Iterable) + " " + block(s.Body)
}

// TryExcept represents 'try { } except err { }'
type TryExcept struct {
	Token     lexer.Token // the 'try' token
	Body      []Statement
	ExceptVar string
	Handler   []Statement
}

func (s *TryExcept) statementNode()       {}
func (s *TryExcept) TokenLiteral() string { return s.Token.Literal }
func (s *TryExcept) String() string {
	return "try " + block(s.Body) + " except " + s.ExceptVar + " " + block(s.Handler)
}

// ImportStatement represents 'import math' and 'from math import a, b'.
// Symbols is nil for the plain form.
type ImportStatement struct {
	Token   lexer.Token // the 'import' or 'from' token
	Module  string
	Symbols []string
}

func (s *ImportStatement) statementNode()       {}
func (s *ImportStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ImportStatement) String() string {
	if s.Symbols == nil {
		return "import " + s.Module
	}
	return "from " + s.Module + " import " + strings.Join(s.Symbols, ", ")
}

// ExportStatement wraps the declaration following 'export'
type ExportStatement struct {
	Token     lexer.Token // the 'export' token
	Statement Statement
}

func (s *ExportStatement) statementNode()       {}
func (s *ExportStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ExportStatement) String() string       { return "export " + s.Statement.String() }

// AssignStatement represents 'target := value' where target may be an
// identifier, an index expression or a field access
type AssignStatement struct {
	Token  lexer.Token // the ':=' token
	Target Expression
	Value  Expression
}

func (s *AssignStatement) statementNode()       {}
func (s *AssignStatement) TokenLiteral() string { return s.Token.Literal }
func (s *AssignStatement) String() string {
	return str(s.Target) + " := " + str(s.Value)
}

// ExpressionStatement is an expression evaluated for its effect
type ExpressionStatement struct {
	Token      lexer.Token // the first token of the expression
	Expression Expression
}

func (s *ExpressionStatement) statementNode()       {}
func (s *ExpressionStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ExpressionStatement) String() string       { return str(s.Expression) }

// BreakStatement exits the innermost loop
type BreakStatement struct {
	Token lexer.Token
}

func (s *BreakStatement) statementNode()       {}
func (s *BreakStatement) TokenLiteral() string { return s.Token.Literal }
func (s *BreakStatement) String() string       { return "break" }

// ContinueStatement skips to the next iteration of the innermost loop
type ContinueStatement struct {
	Token lexer.Token
}

func (s *ContinueStatement) statementNode()       {}
func (s *ContinueStatement) TokenLiteral() string { return s.Token.Literal }
func (s *ContinueStatement) String() string       { return "continue" }

// TestStatement represents 'test "name" { body }'
type TestStatement struct {
	Token lexer.Token
	Name  string
	Body  []Statement
}

func (s *TestStatement) statementNode()       {}
func (s *TestStatement) TokenLiteral() string { return s.Token.Literal }
func (s *TestStatement) String() string {
	return "test " + strconv.Quote(s.Name) + " " + block(s.Body)
}

// TestSetup represents 'test_setup { body }'
type TestSetup struct {
	Token lexer.Token
	Body  []Statement
}

func (s *TestSetup) statementNode()       {}
func (s *TestSetup) TokenLiteral() string { return s.Token.Literal }
func (s *TestSetup) String() string       { return "test_setup " + block(s.Body) }

// TestTeardown represents 'test_teardown { body }'
type TestTeardown struct {
	Token lexer.Token
	Body  []Statement
}

func (s *TestTeardown) statementNode()       {}
func (s *TestTeardown) TokenLiteral() string { return s.Token.Literal }
func (s *TestTeardown) String() string       { return "test_teardown " + block(s.Body) }

// TestGroup represents 'test_group "name" { tests }'
type TestGroup struct {
	Token lexer.Token
	Name  string
	Body  []Statement
}

func (s *TestGroup) statementNode()       {}
func (s *TestGroup) TokenLiteral() string { return s.Token.Literal }
func (s *TestGroup) String() string {
	return "test_group " + strconv.Quote(s.Name) + " " + block(s.Body)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Identifier represents a name
type Identifier struct {
	Token lexer.Token
	Value string
}

func (e *Identifier) expressionNode()      {}
func (e *Identifier) TokenLiteral() string { return e.Token.Literal }
func (e *Identifier) String() string       { return e.Value }

// IntegerLiteral represents an integer token
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (e *IntegerLiteral) expressionNode()      {}
func (e *IntegerLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *IntegerLiteral) String() string       { return strconv.FormatInt(e.Value, 10) }

// FloatLiteral represents a floating-point token
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (e *FloatLiteral) expressionNode()      {}
func (e *FloatLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *FloatLiteral) String() string {
	s := strconv.FormatFloat(e.Value, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// StringLiteral represents a plain string
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (e *StringLiteral) expressionNode()      {}
func (e *StringLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *StringLiteral) String() string       { return strconv.Quote(e.Value) }

// InterpolatedString holds the parts of a "...${expr}..." literal. The
// expression parts are raw source, evaluated later.
type InterpolatedString struct {
	Token lexer.Token
	Parts []lexer.Part
}

func (e *InterpolatedString) expressionNode()      {}
func (e *InterpolatedString) TokenLiteral() string { return e.Token.Literal }
func (e *InterpolatedString) String() string {
	var out bytes.Buffer
	out.WriteString(`"`)
	for _, p := range e.Parts {
		if p.Kind == lexer.ExprPart {
			out.WriteString("${" + p.Text + "}")
			continue
		}
		q := strconv.Quote(p.Text)
		out.WriteString(q[1 : len(q)-1])
	}
	out.WriteString(`"`)
	return out.String()
}

// BooleanLiteral represents true and false
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (e *BooleanLiteral) expressionNode()      {}
func (e *BooleanLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *BooleanLiteral) String() string       { return strconv.FormatBool(e.Value) }

// BinaryExpression represents 'left op right'
type BinaryExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (e *BinaryExpression) expressionNode()      {}
func (e *BinaryExpression) TokenLiteral() string { return e.Token.Literal }
func (e *BinaryExpression) String() string {
	return "(" + str(e.Left) + " " + e.Operator + " " + str(e.Right) + ")"
}

// CallExpression represents 'callee(args...)'
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Function  Expression
	Arguments []Expression
}

func (e *CallExpression) expressionNode()      {}
func (e *CallExpression) TokenLiteral() string { return e.Token.Literal }
func (e *CallExpression) String() string {
	return str(e.Function) + "(" + list(e.Arguments) + ")"
}

// FieldAccess represents 'object.field'
type FieldAccess struct {
	Token  lexer.Token // the '.' token
	Object Expression
	Field  string
}

func (e *FieldAccess) expressionNode()      {}
func (e *FieldAccess) TokenLiteral() string { return e.Token.Literal }
func (e *FieldAccess) String() string       { return str(e.Object) + "." + e.Field }

// IndexExpression represents 'object[index]'
type IndexExpression struct {
	Token  lexer.Token // the '[' token
	Object Expression
	Index  Expression
}

func (e *IndexExpression) expressionNode()      {}
func (e *IndexExpression) TokenLiteral() string { return e.Token.Literal }
func (e *IndexExpression) String() string {
	return str(e.Object) + "[" + str(e.Index) + "]"
}

// FieldValue is one 'name: value' entry of a struct instance
type FieldValue struct {
	Name  string
	Value Expression
}

// StructInstance represents 'Point { x: 1, y: 2 }'
type StructInstance struct {
	Token  lexer.Token // the struct name token
	Name   string
	Fields []FieldValue
}

func (e *StructInstance) expressionNode()      {}
func (e *StructInstance) TokenLiteral() string { return e.Token.Literal }
func (e *StructInstance) String() string {
	fields := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = f.Name + ": " + str(f.Value)
	}
	if len(fields) == 0 {
		return e.Name + " {}"
	}
	return e.Name + " { " + strings.Join(fields, ", ") + " }"
}

// ArrayLiteral represents '[a, b, c]'
type ArrayLiteral struct {
	Token    lexer.Token // the '[' token
	Elements []Expression
}

func (e *ArrayLiteral) expressionNode()      {}
func (e *ArrayLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *ArrayLiteral) String() string       { return "[" + list(e.Elements) + "]" }

// DictPair is one 'key: value' entry of a dict literal
type DictPair struct {
	Key   Expression
	Value Expression
}

// DictLiteral represents '{ k: v, ... }' with pairs in source order
type DictLiteral struct {
	Token lexer.Token // the '{' token
	Pairs []DictPair
}

func (e *DictLiteral) expressionNode()      {}
func (e *DictLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *DictLiteral) String() string {
	pairs := make([]string, len(e.Pairs))
	for i, p := range e.Pairs {
		pairs[i] = str(p.Key) + ": " + str(p.Value)
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// TagExpression is the uniform node for 'Base::Variant(args)' and for the
// built-in call forms print(...) and throw(...). Name is "Base::Variant"
// or the built-in name.
type TagExpression struct {
	Token     lexer.Token
	Name      string
	Arguments []Expression
}

func (e *TagExpression) expressionNode()      {}
func (e *TagExpression) TokenLiteral() string { return e.Token.Literal }
func (e *TagExpression) String() string {
	if len(e.Arguments) == 0 && strings.Contains(e.Name, "::") {
		return e.Name
	}
	return e.Name + "(" + list(e.Arguments) + ")"
}

// Qualified splits a 'Base::Variant' tag name. ok is false for built-in
// call forms.
func (e *TagExpression) Qualified() (base, variant string, ok bool) {
	return strings.Cut(e.Name, "::")
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func annotation(typ string) string {
	if typ == "" {
		return ""
	}
	return ": " + typ
}

func str(n Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func list(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = str(e)
	}
	return strings.Join(parts, ", ")
}

func block(stmts []Statement) string {
	if len(stmts) == 0 {
		return "{}"
	}
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}
