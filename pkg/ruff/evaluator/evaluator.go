// Package evaluator is a tree-walking interpreter for Ruff programs.
//
// Eval walks the statements produced by the parser. Runtime failures are
// *Error values that unwind evaluation until a try/except handles them or
// they reach the top of the program.
package evaluator

import (
	"path"
	"strconv"

	"github.com/sambeau/ruff/pkg/ruff/ast"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
)

// MaxCallDepth bounds nested function calls
const MaxCallDepth = 2000

// Eval evaluates a node in env
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return evalProgram(node.Statements, env)

	case *ast.ExpressionStatement:
		if node.Expression == nil {
			return NULL
		}
		return Eval(node.Expression, env)

	case *ast.VariableDecl:
		return evalBinding(node.Name, node.Value, node.Type, node.Mutable, node.Token, env)

	case *ast.ConstDecl:
		return evalBinding(node.Name, node.Value, node.Type, false, node.Token, env)

	case *ast.FunctionDecl:
		env.Define(node.Name, newFunction(node, env), false)
		return NULL

	case *ast.EnumDecl:
		env.Define(node.Name, &EnumType{Name: node.Name, Variants: node.Variants}, false)
		return NULL

	case *ast.StructDecl:
		st := &StructType{Name: node.Name, Fields: node.Fields, Methods: make(map[string]*Function)}
		for _, m := range node.Methods {
			st.Methods[m.Name] = newFunction(m, env)
		}
		env.Define(node.Name, st, false)
		return NULL

	case *ast.ReturnStatement:
		if node.Value == nil {
			return &ReturnValue{Value: NULL}
		}
		val := Eval(node.Value, env)
		if isError(val) {
			return val
		}
		return &ReturnValue{Value: val}

	case *ast.IfStatement:
		return evalIf(node, env)

	case *ast.MatchStatement:
		return evalMatch(node, env)

	case *ast.LoopStatement:
		return evalLoop(node, env)

	case *ast.ForStatement:
		return evalFor(node, env)

	case *ast.TryExcept:
		return evalTryExcept(node, env)

	case *ast.ImportStatement:
		return evalImport(node, env)

	case *ast.ExportStatement:
		return Eval(node.Statement, env)

	case *ast.AssignStatement:
		return evalAssign(node, env)

	case *ast.BreakStatement:
		return &loopSignal{keyword: "break", tok: node.Token}

	case *ast.ContinueStatement:
		return &loopSignal{keyword: "continue", tok: node.Token}

	// Tests only run under the test runner
	case *ast.TestStatement, *ast.TestSetup, *ast.TestTeardown, *ast.TestGroup:
		return NULL

	// Expressions
	case *ast.Identifier:
		return evalIdentifier(node, env)

	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}

	case *ast.FloatLiteral:
		return &Float{Value: node.Value}

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.BooleanLiteral:
		return nativeBool(node.Value)

	case *ast.InterpolatedString:
		return evalInterpolatedString(node, env)

	case *ast.BinaryExpression:
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalBinary(node.Operator, left, right, node.Token, env)

	case *ast.CallExpression:
		return evalCall(node, env)

	case *ast.FieldAccess:
		return evalFieldAccess(node, env)

	case *ast.IndexExpression:
		return evalIndex(node, env)

	case *ast.StructInstance:
		return evalStructInstance(node, env)

	case *ast.ArrayLiteral:
		elements, errObj := evalExpressions(node.Elements, env)
		if errObj != nil {
			return errObj
		}
		return &Array{Elements: elements}

	case *ast.DictLiteral:
		return evalDictLiteral(node, env)

	case *ast.TagExpression:
		return evalTag(node, env)
	}

	return NULL
}

func evalProgram(stmts []ast.Statement, env *Environment) Object {
	var result Object = NULL

	for _, stmt := range stmts {
		result = Eval(stmt, env)

		switch result := result.(type) {
		case *ReturnValue:
			return result.Value
		case *Error:
			return result
		case *loopSignal:
			return newErrorAt("STATE-0002", result.tok, env, map[string]any{"Keyword": result.keyword})
		}
	}

	return result
}

// evalStatements runs a body, stopping at the first return, error, break or
// continue and handing it to the caller
func evalStatements(stmts []ast.Statement, env *Environment) Object {
	var result Object = NULL

	for _, stmt := range stmts {
		result = Eval(stmt, env)
		switch result.(type) {
		case *ReturnValue, *Error, *loopSignal:
			return result
		}
	}

	return result
}

func newFunction(decl *ast.FunctionDecl, env *Environment) *Function {
	return &Function{
		Name:       decl.Name,
		Params:     decl.Params,
		ReturnType: decl.ReturnType,
		Body:       decl.Body,
		Env:        env,
	}
}

func evalBinding(name string, value ast.Expression, typ string, mutable bool, tok lexer.Token, env *Environment) Object {
	val := Eval(value, env)
	if isError(val) {
		return val
	}
	if typ != "" && !matchesType(val, typ) {
		return newErrorAt("TYPE-0002", tok, env, map[string]any{"Name": name, "Expected": typ, "Got": typeName(val)})
	}
	env.DefineTyped(name, val, mutable, typ)
	return NULL
}

func evalIf(node *ast.IfStatement, env *Environment) Object {
	cond := Eval(node.Condition, env)
	if isError(cond) {
		return cond
	}
	if isTruthy(cond) {
		return evalStatements(node.Then, NewEnclosedEnvironment(env))
	}
	if node.Else != nil {
		return evalStatements(node.Else, NewEnclosedEnvironment(env))
	}
	return NULL
}

func evalMatch(node *ast.MatchStatement, env *Environment) Object {
	subject := Eval(node.Subject, env)
	if isError(subject) {
		return subject
	}

	for _, c := range node.Cases {
		bindings, ok := matchPattern(c.Pattern, subject)
		if !ok {
			continue
		}
		scope := NewEnclosedEnvironment(env)
		for name, val := range bindings {
			scope.Define(name, val, false)
		}
		return evalStatements(c.Body, scope)
	}

	if node.Default != nil {
		return evalStatements(node.Default, NewEnclosedEnvironment(env))
	}
	return NULL
}

// matchPattern tests a case pattern against a value. A bound name receives
// the first payload value; further values are bound as name_1, name_2...
func matchPattern(p ast.MatchPattern, subject Object) (map[string]Object, bool) {
	switch s := subject.(type) {
	case *Tagged:
		if s.Variant != p.Variant || (p.Base != "" && p.Base != s.Base) {
			return nil, false
		}
		bindings := map[string]Object{}
		if p.Bound == "" {
			return bindings, true
		}
		bindings[p.Bound] = NULL
		for i, v := range s.Values {
			if i == 0 {
				bindings[p.Bound] = v
				continue
			}
			bindings[p.Bound+"_"+strconv.Itoa(i)] = v
		}
		return bindings, true

	case *String:
		if p.Base == "" && p.Bound == "" && p.Variant == s.Value {
			return map[string]Object{}, true
		}
	}
	return nil, false
}

// cancelled reports a done context as an error, or nil
func cancelled(tok lexer.Token, env *Environment) *Error {
	ctx := env.Context()
	if ctx == nil || ctx.Err() == nil {
		return nil
	}
	return newErrorAt("STATE-0004", tok, env, map[string]any{"Reason": ctx.Err().Error()})
}

func evalLoop(node *ast.LoopStatement, env *Environment) Object {
	for {
		if errObj := cancelled(node.Token, env); errObj != nil {
			return errObj
		}
		if node.Condition != nil {
			cond := Eval(node.Condition, env)
			if isError(cond) {
				return cond
			}
			if !isTruthy(cond) {
				return NULL
			}
		}

		result := evalStatements(node.Body, NewEnclosedEnvironment(env))
		switch r := result.(type) {
		case *ReturnValue, *Error:
			return r
		case *loopSignal:
			if r.keyword == "break" {
				return NULL
			}
		}
	}
}

func evalFor(node *ast.ForStatement, env *Environment) Object {
	iterable := Eval(node.Iterable, env)
	if isError(iterable) {
		return iterable
	}

	var items []Object
	switch it := iterable.(type) {
	case *Array:
		items = make([]Object, len(it.Elements))
		copy(items, it.Elements)
	case *Dict:
		items = it.Keys()
	case *String:
		for _, r := range it.Value {
			items = append(items, &String{Value: string(r)})
		}
	case *Integer:
		for i := int64(0); i < it.Value; i++ {
			items = append(items, &Integer{Value: i})
		}
	default:
		return newErrorAt("TYPE-0005", node.Token, env, map[string]any{"Type": typeName(iterable)})
	}

	for _, item := range items {
		if errObj := cancelled(node.Token, env); errObj != nil {
			return errObj
		}
		scope := NewEnclosedEnvironment(env)
		scope.Define(node.Variable, item, false)

		result := evalStatements(node.Body, scope)
		switch r := result.(type) {
		case *ReturnValue, *Error:
			return r
		case *loopSignal:
			if r.keyword == "break" {
				return NULL
			}
		}
	}
	return NULL
}

func evalTryExcept(node *ast.TryExcept, env *Environment) Object {
	result := evalStatements(node.Body, NewEnclosedEnvironment(env))

	errObj, ok := result.(*Error)
	if !ok || errObj.Code == "STATE-0004" {
		return result
	}

	scope := NewEnclosedEnvironment(env)
	var bound Object = &String{Value: errObj.Message}
	if errObj.Thrown != nil {
		bound = errObj.Thrown
	}
	scope.Define(node.ExceptVar, bound, false)
	return evalStatements(node.Handler, scope)
}

func evalImport(node *ast.ImportStatement, env *Environment) Object {
	if env.Loader == nil {
		return newErrorAt("IMPORT-0003", node.Token, env, nil)
	}
	m, err := env.Loader.Load(node.Module)
	if err != nil {
		return newErrorAt("IMPORT-0001", node.Token, env, map[string]any{"Module": node.Module, "Reason": err.Error()})
	}

	if node.Symbols == nil {
		env.Define(path.Base(node.Module), &Module{Name: m.Name, Path: m.Path, Exports: map[string]Object{}}, false)
		return NULL
	}

	for _, sym := range node.Symbols {
		decl, ok := m.Exports[sym]
		if !ok {
			return newErrorAt("IMPORT-0002", node.Token, env, map[string]any{"Module": node.Module, "Symbol": sym})
		}
		scope := NewEnclosedEnvironment(env)
		scope.Filename = m.Path
		if res := Eval(decl, scope); isError(res) {
			return res
		}
		val, _ := scope.Get(sym)
		env.Define(sym, val, false)
	}
	return NULL
}

func evalAssign(node *ast.AssignStatement, env *Environment) Object {
	val := Eval(node.Value, env)
	if isError(val) {
		return val
	}

	switch target := node.Target.(type) {
	case *ast.Identifier:
		if errObj := env.Assign(target.Value, val); errObj != nil {
			return errObj.at(node.Token, env)
		}

	case *ast.IndexExpression:
		obj := Eval(target.Object, env)
		if isError(obj) {
			return obj
		}
		idx := Eval(target.Index, env)
		if isError(idx) {
			return idx
		}
		if errObj := setIndex(obj, idx, val); errObj != nil {
			return errObj.at(target.Token, env)
		}

	case *ast.FieldAccess:
		obj := Eval(target.Object, env)
		if isError(obj) {
			return obj
		}
		if errObj := setField(obj, target.Field, val); errObj != nil {
			return errObj.at(target.Token, env)
		}

	default:
		return newErrorAt("TYPE-0007", node.Token, env, map[string]any{"Target": node.Target.String()})
	}

	return NULL
}

func setIndex(obj, idx, val Object) *Error {
	switch o := obj.(type) {
	case *Array:
		i, ok := idx.(*Integer)
		if !ok {
			return newError("TYPE-0004", map[string]any{"Type": "array", "Index": typeName(idx)})
		}
		if i.Value < 0 || i.Value >= int64(len(o.Elements)) {
			return newError("INDEX-0001", map[string]any{"Index": i.Value, "Length": len(o.Elements)})
		}
		o.Elements[i.Value] = val
		return nil
	case *Dict:
		if !o.Set(idx, val) {
			return newError("TYPE-0004", map[string]any{"Type": "dict", "Index": typeName(idx)})
		}
		return nil
	}
	return newError("TYPE-0007", map[string]any{"Target": typeName(obj) + " element"})
}

func setField(obj Object, field string, val Object) *Error {
	switch o := obj.(type) {
	case *StructInstance:
		def, ok := o.Struct.field(field)
		if !ok {
			return newError("UNDEF-0003", map[string]any{"Type": o.Struct.Name, "Field": field})
		}
		if def.Type != "" && !matchesType(val, def.Type) {
			return newError("TYPE-0002", map[string]any{"Name": field, "Expected": def.Type, "Got": typeName(val)})
		}
		o.Fields[field] = val
		return nil
	case *Dict:
		o.Set(&String{Value: field}, val)
		return nil
	}
	return newError("TYPE-0007", map[string]any{"Target": typeName(obj) + " field"})
}
