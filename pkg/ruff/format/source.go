package format

import (
	"strconv"
	"strings"

	"github.com/sambeau/ruff/pkg/ruff/ast"
)

// Source renders stmts as formatted Ruff source. Blocks are opened on the
// statement line and indented one tab per level; expressions use their
// canonical single-line form.
func Source(stmts []ast.Statement) string {
	p := NewPrinter()
	for i, stmt := range stmts {
		if i > 0 && (isDefinition(stmt) || isDefinition(stmts[i-1])) {
			for n := 0; n < BlankLinesBetweenDefs; n++ {
				p.newline()
			}
		}
		p.statement(stmt)
	}
	return p.String()
}

func isDefinition(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.FunctionDecl, *ast.StructDecl, *ast.EnumDecl, *ast.TestGroup, *ast.TestStatement:
		return true
	case *ast.ExportStatement:
		return isDefinition(s.Statement)
	}
	return false
}

func (p *Printer) statement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.FunctionDecl:
		p.writeIndent()
		p.function(s)
		p.newline()

	case *ast.StructDecl:
		p.line("struct " + s.Name + " {")
		p.indentInc()
		for _, f := range s.Fields {
			field := f.Name
			if f.Type != "" {
				field += ": " + f.Type
			}
			p.line(field + ",")
		}
		for _, m := range s.Methods {
			p.writeIndent()
			p.function(m)
			p.newline()
		}
		p.indentDec()
		p.line("}")

	case *ast.IfStatement:
		p.writeIndent()
		p.ifChain(s)
		p.newline()

	case *ast.MatchStatement:
		p.line("match " + expr(s.Subject) + " {")
		p.indentInc()
		for _, c := range s.Cases {
			p.arm("case "+c.Pattern.String()+":", c.Body)
		}
		if s.Default != nil {
			p.arm("default:", s.Default)
		}
		p.indentDec()
		p.line("}")

	case *ast.LoopStatement:
		header := "loop"
		if s.Condition != nil {
			header = "loop while " + expr(s.Condition)
		}
		p.writeIndent()
		p.block(header, s.Body)
		p.newline()

	case *ast.ForStatement:
		p.writeIndent()
		p.block("for "+s.Variable+" in "+expr(s.Iterable), s.Body)
		p.newline()

	case *ast.TryExcept:
		p.writeIndent()
		p.block("try", s.Body)
		p.block(" except "+s.ExceptVar, s.Handler)
		p.newline()

	case *ast.ExportStatement:
		p.writeIndent()
		p.write("export ")
		inner := newPrinterAt(p)
		inner.statement(s.Statement)
		p.write(strings.TrimLeft(inner.String(), p.unit))

	case *ast.TestStatement:
		p.writeIndent()
		p.block("test "+strconv.Quote(s.Name), s.Body)
		p.newline()

	case *ast.TestSetup:
		p.writeIndent()
		p.block("test_setup", s.Body)
		p.newline()

	case *ast.TestTeardown:
		p.writeIndent()
		p.block("test_teardown", s.Body)
		p.newline()

	case *ast.TestGroup:
		p.writeIndent()
		p.block("test_group "+strconv.Quote(s.Name), s.Body)
		p.newline()

	default:
		p.line(stmtLine(stmt))
	}
}

// newPrinterAt creates a printer at the same indentation as p
func newPrinterAt(p *Printer) *Printer {
	return &Printer{unit: p.unit, indent: p.indent}
}

func (p *Printer) function(fn *ast.FunctionDecl) {
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = param.String()
	}
	header := "func " + fn.Name + "(" + strings.Join(params, ", ") + ")"
	if fn.ReturnType != "" {
		header += " -> " + fn.ReturnType
	}
	p.block(header, fn.Body)
}

func (p *Printer) ifChain(s *ast.IfStatement) {
	p.block("if "+expr(s.Condition), s.Then)
	if s.Else == nil {
		return
	}
	if len(s.Else) == 1 {
		if next, ok := s.Else[0].(*ast.IfStatement); ok {
			p.write(" else ")
			p.ifChain(next)
			return
		}
	}
	p.block(" else", s.Else)
}

// block writes `header {`, the indented body and the closing brace, leaving
// the cursor after the brace
func (p *Printer) block(header string, body []ast.Statement) {
	p.write(header)
	if len(body) == 0 {
		p.write(" {}")
		return
	}
	p.write(" {")
	p.newline()
	p.indentInc()
	for _, stmt := range body {
		p.statement(stmt)
	}
	p.indentDec()
	p.writeIndent()
	p.write("}")
}

// arm writes a match arm. A single simple statement stays on the case line
// when it fits.
func (p *Printer) arm(label string, body []ast.Statement) {
	if len(body) == 1 && !hasBlock(body[0]) {
		inline := label + " { " + stmtLine(body[0]) + " }"
		if p.wouldFitOnLine(inline) {
			p.line(inline)
			return
		}
	}
	p.writeIndent()
	p.block(label, body)
	p.newline()
}

func hasBlock(stmt ast.Statement) bool {
	switch stmt.(type) {
	case *ast.FunctionDecl, *ast.StructDecl, *ast.IfStatement, *ast.MatchStatement,
		*ast.LoopStatement, *ast.ForStatement, *ast.TryExcept, *ast.ExportStatement,
		*ast.TestStatement, *ast.TestSetup, *ast.TestTeardown, *ast.TestGroup:
		return true
	}
	return false
}
