package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sambeau/ruff/pkg/ruff/ast"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
)

// Tree renders stmts as an indented node dump, one node per line:
//
//	Program
//	  VariableDecl let x
//	    IntegerLiteral 1
func Tree(stmts []ast.Statement) string {
	p := newTreePrinter()
	p.line("Program")
	p.indentInc()
	for _, stmt := range stmts {
		p.node(stmt)
	}
	return p.String()
}

// labelled writes a child section such as "Then:" around fn
func (p *Printer) labelled(label string, fn func()) {
	p.line(label + ":")
	p.indentInc()
	fn()
	p.indentDec()
}

func (p *Printer) nodes(stmts []ast.Statement) {
	for _, stmt := range stmts {
		p.node(stmt)
	}
}

func (p *Printer) exprs(exprs []ast.Expression) {
	for _, e := range exprs {
		p.node(e)
	}
}

func (p *Printer) children(fn func()) {
	p.indentInc()
	fn()
	p.indentDec()
}

func typed(name, typ string) string {
	if typ == "" {
		return name
	}
	return name + ": " + typ
}

func (p *Printer) node(n ast.Node) {
	switch n := n.(type) {
	case nil:
		p.line("<nil>")

	// Statements
	case *ast.VariableDecl:
		kw := "let"
		if n.Mutable {
			kw = "mut"
		}
		p.line("VariableDecl " + kw + " " + typed(n.Name, n.Type))
		p.children(func() { p.node(n.Value) })
	case *ast.ConstDecl:
		p.line("ConstDecl " + typed(n.Name, n.Type))
		p.children(func() { p.node(n.Value) })
	case *ast.FunctionDecl:
		params := make([]string, len(n.Params))
		for i, param := range n.Params {
			params[i] = param.String()
		}
		header := "FunctionDecl " + n.Name + "(" + strings.Join(params, ", ") + ")"
		if n.ReturnType != "" {
			header += " -> " + n.ReturnType
		}
		p.line(header)
		p.children(func() { p.nodes(n.Body) })
	case *ast.EnumDecl:
		p.line("EnumDecl " + n.Name + " [" + strings.Join(n.Variants, ", ") + "]")
	case *ast.StructDecl:
		p.line("StructDecl " + n.Name)
		p.children(func() {
			for _, f := range n.Fields {
				p.line("Field " + typed(f.Name, f.Type))
			}
			for _, m := range n.Methods {
				p.node(m)
			}
		})
	case *ast.ReturnStatement:
		p.line("Return")
		if n.Value != nil {
			p.children(func() { p.node(n.Value) })
		}
	case *ast.IfStatement:
		p.line("If")
		p.children(func() {
			p.labelled("Condition", func() { p.node(n.Condition) })
			p.labelled("Then", func() { p.nodes(n.Then) })
			if n.Else != nil {
				p.labelled("Else", func() { p.nodes(n.Else) })
			}
		})
	case *ast.MatchStatement:
		p.line("Match")
		p.children(func() {
			p.labelled("Subject", func() { p.node(n.Subject) })
			for _, c := range n.Cases {
				p.labelled("Case "+describePattern(c.Pattern), func() { p.nodes(c.Body) })
			}
			if n.Default != nil {
				p.labelled("Default", func() { p.nodes(n.Default) })
			}
		})
	case *ast.LoopStatement:
		if n.Condition == nil {
			p.line("Loop")
			p.children(func() { p.nodes(n.Body) })
			return
		}
		p.line("Loop while")
		p.children(func() {
			p.labelled("Condition", func() { p.node(n.Condition) })
			p.labelled("Body", func() { p.nodes(n.Body) })
		})
	case *ast.ForStatement:
		p.line("For " + n.Variable)
		p.children(func() {
			p.labelled("In", func() { p.node(n.Iterable) })
			p.labelled("Body", func() { p.nodes(n.Body) })
		})
	case *ast.TryExcept:
		p.line("Try")
		p.children(func() {
			p.labelled("Body", func() { p.nodes(n.Body) })
			p.labelled("Except "+n.ExceptVar, func() { p.nodes(n.Handler) })
		})
	case *ast.ImportStatement:
		if n.Symbols == nil {
			p.line("Import " + n.Module)
		} else {
			p.line("Import " + n.Module + " [" + strings.Join(n.Symbols, ", ") + "]")
		}
	case *ast.ExportStatement:
		p.line("Export")
		p.children(func() { p.node(n.Statement) })
	case *ast.AssignStatement:
		p.line("Assign")
		p.children(func() {
			p.labelled("Target", func() { p.node(n.Target) })
			p.labelled("Value", func() { p.node(n.Value) })
		})
	case *ast.ExpressionStatement:
		p.line("ExpressionStatement")
		p.children(func() { p.node(n.Expression) })
	case *ast.BreakStatement:
		p.line("Break")
	case *ast.ContinueStatement:
		p.line("Continue")
	case *ast.TestStatement:
		p.line("Test " + strconv.Quote(n.Name))
		p.children(func() { p.nodes(n.Body) })
	case *ast.TestSetup:
		p.line("TestSetup")
		p.children(func() { p.nodes(n.Body) })
	case *ast.TestTeardown:
		p.line("TestTeardown")
		p.children(func() { p.nodes(n.Body) })
	case *ast.TestGroup:
		p.line("TestGroup " + strconv.Quote(n.Name))
		p.children(func() { p.nodes(n.Body) })

	// Expressions
	case *ast.Identifier:
		p.line("Identifier " + n.Value)
	case *ast.IntegerLiteral:
		p.line("IntegerLiteral " + strconv.FormatInt(n.Value, 10))
	case *ast.FloatLiteral:
		p.line("FloatLiteral " + strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *ast.StringLiteral:
		p.line("StringLiteral " + strconv.Quote(n.Value))
	case *ast.InterpolatedString:
		p.line("InterpolatedString")
		p.children(func() {
			for _, part := range n.Parts {
				if part.Kind == lexer.ExprPart {
					p.line("Expr " + part.Text)
				} else {
					p.line("Text " + strconv.Quote(part.Text))
				}
			}
		})
	case *ast.BooleanLiteral:
		p.line("BooleanLiteral " + strconv.FormatBool(n.Value))
	case *ast.BinaryExpression:
		p.line("Binary " + n.Operator)
		p.children(func() {
			p.node(n.Left)
			p.node(n.Right)
		})
	case *ast.CallExpression:
		p.line("Call")
		p.children(func() {
			p.node(n.Function)
			if len(n.Arguments) > 0 {
				p.labelled("Args", func() { p.exprs(n.Arguments) })
			}
		})
	case *ast.FieldAccess:
		p.line("FieldAccess ." + n.Field)
		p.children(func() { p.node(n.Object) })
	case *ast.IndexExpression:
		p.line("Index")
		p.children(func() {
			p.node(n.Object)
			p.node(n.Index)
		})
	case *ast.StructInstance:
		p.line("StructInstance " + n.Name)
		p.children(func() {
			for _, f := range n.Fields {
				p.labelled(f.Name, func() { p.node(f.Value) })
			}
		})
	case *ast.ArrayLiteral:
		p.line(fmt.Sprintf("Array (%d)", len(n.Elements)))
		p.children(func() { p.exprs(n.Elements) })
	case *ast.DictLiteral:
		p.line(fmt.Sprintf("Dict (%d)", len(n.Pairs)))
		p.children(func() {
			for _, pair := range n.Pairs {
				p.labelled("Pair", func() {
					p.node(pair.Key)
					p.node(pair.Value)
				})
			}
		})
	case *ast.TagExpression:
		p.line("Tag " + n.Name)
		p.children(func() { p.exprs(n.Arguments) })

	default:
		p.line(fmt.Sprintf("%T %s", n, n.String()))
	}
}

func describePattern(pat ast.MatchPattern) string {
	out := pat.Variant
	if pat.Base != "" {
		out = pat.Base + "::" + out
	}
	if pat.Bound != "" {
		out += " -> " + pat.Bound
	}
	return out
}
