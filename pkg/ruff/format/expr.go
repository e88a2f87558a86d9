package format

import (
	"strconv"
	"strings"

	"github.com/sambeau/ruff/pkg/ruff/ast"
)

// expr renders e as source. Ruff has no grouping parentheses, so binary
// expressions are written flat; any tree the parser builds reads back the
// same way.
func expr(e ast.Expression) string {
	switch e := e.(type) {
	case nil:
		return ""
	case *ast.BinaryExpression:
		return expr(e.Left) + " " + e.Operator + " " + expr(e.Right)
	case *ast.CallExpression:
		return expr(e.Function) + "(" + exprList(e.Arguments) + ")"
	case *ast.TagExpression:
		if len(e.Arguments) == 0 && strings.Contains(e.Name, "::") {
			return e.Name
		}
		return e.Name + "(" + exprList(e.Arguments) + ")"
	case *ast.FieldAccess:
		return expr(e.Object) + "." + e.Field
	case *ast.IndexExpression:
		return expr(e.Object) + "[" + expr(e.Index) + "]"
	case *ast.ArrayLiteral:
		return "[" + exprList(e.Elements) + "]"
	case *ast.DictLiteral:
		pairs := make([]string, len(e.Pairs))
		for i, p := range e.Pairs {
			pairs[i] = expr(p.Key) + ": " + expr(p.Value)
		}
		return "{" + strings.Join(pairs, ", ") + "}"
	case *ast.StructInstance:
		if len(e.Fields) == 0 {
			return e.Name + " {}"
		}
		fields := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = f.Name + ": " + expr(f.Value)
		}
		return e.Name + " { " + strings.Join(fields, ", ") + " }"
	case *ast.FloatLiteral:
		s := strconv.FormatFloat(e.Value, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return e.String()
}

func exprList(exprs []ast.Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = expr(e)
	}
	return strings.Join(parts, ", ")
}

// stmtLine renders a statement without a block as one line of source
func stmtLine(stmt ast.Statement) string {
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		kw := "let "
		if s.Mutable {
			kw = "mut "
		}
		return kw + typed(s.Name, s.Type) + " := " + expr(s.Value)
	case *ast.ConstDecl:
		return "const " + typed(s.Name, s.Type) + " := " + expr(s.Value)
	case *ast.ReturnStatement:
		if s.Value == nil {
			return "return"
		}
		return "return " + expr(s.Value)
	case *ast.AssignStatement:
		return expr(s.Target) + " := " + expr(s.Value)
	case *ast.ExpressionStatement:
		return expr(s.Expression)
	}
	return stmt.String()
}
