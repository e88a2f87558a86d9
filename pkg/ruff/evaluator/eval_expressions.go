package evaluator

import (
	"strings"

	"github.com/sambeau/ruff/pkg/ruff/ast"
	rerrors "github.com/sambeau/ruff/pkg/ruff/errors"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
	"github.com/sambeau/ruff/pkg/ruff/parser"
)

// constructors are the Result and Option variants usable without a base
var constructors = map[string]string{
	"Ok":   "Result",
	"Err":  "Result",
	"Some": "Option",
	"None": "Option",
}

func evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	if b, ok := lookupBuiltin(node.Value); ok {
		return b
	}
	if base, ok := constructors[node.Value]; ok {
		return &Tagged{Base: base, Variant: node.Value}
	}

	candidates := append(env.Names(), BuiltinNames()...)
	return fromRuffError(rerrors.NewUndefinedIdentifier(node.Value, candidates)).at(node.Token, env)
}

func evalExpressions(exprs []ast.Expression, env *Environment) ([]Object, *Error) {
	result := make([]Object, 0, len(exprs))
	for _, e := range exprs {
		val := Eval(e, env)
		if errObj, ok := val.(*Error); ok {
			return nil, errObj
		}
		result = append(result, val)
	}
	return result, nil
}

// evalInterpolatedString lexes, parses and evaluates each ${...} part in the
// current scope
func evalInterpolatedString(node *ast.InterpolatedString, env *Environment) Object {
	var out strings.Builder
	for _, part := range node.Parts {
		if part.Kind == lexer.TextPart {
			out.WriteString(part.Text)
			continue
		}
		stmts := parser.Parse(lexer.Tokenize(part.Text))
		val := evalStatements(stmts, env)
		switch v := val.(type) {
		case *Error:
			return v.at(node.Token, env)
		case *ReturnValue:
			val = v.Value
		case *loopSignal:
			return newErrorAt("STATE-0002", v.tok, env, map[string]any{"Keyword": v.keyword})
		}
		out.WriteString(val.Inspect())
	}
	return &String{Value: out.String()}
}

func evalCall(node *ast.CallExpression, env *Environment) Object {
	if fa, ok := node.Function.(*ast.FieldAccess); ok {
		return evalMethodCall(node, fa, env)
	}

	if ident, ok := node.Function.(*ast.Identifier); ok {
		if _, bound := env.Get(ident.Value); !bound {
			if base, ok := constructors[ident.Value]; ok {
				args, errObj := evalExpressions(node.Arguments, env)
				if errObj != nil {
					return errObj
				}
				return &Tagged{Base: base, Variant: ident.Value, Values: args}
			}
		}
	}

	fn := Eval(node.Function, env)
	if isError(fn) {
		return fn
	}
	args, errObj := evalExpressions(node.Arguments, env)
	if errObj != nil {
		return errObj
	}
	return applyFunction(fn, args, node.Token, env)
}

// evalMethodCall handles obj.m(args). Struct methods get self bound; any
// other receiver is passed as the first argument of the builtin m.
func evalMethodCall(node *ast.CallExpression, fa *ast.FieldAccess, env *Environment) Object {
	recv := Eval(fa.Object, env)
	if isError(recv) {
		return recv
	}
	args, errObj := evalExpressions(node.Arguments, env)
	if errObj != nil {
		return errObj
	}

	switch r := recv.(type) {
	case *StructInstance:
		if method, ok := r.Struct.Methods[fa.Field]; ok {
			return callFunction(method, args, r, node.Token, env)
		}
		if fn, ok := r.Fields[fa.Field]; ok {
			return applyFunction(fn, args, node.Token, env)
		}
	case *Module:
		if fn, ok := r.Exports[fa.Field]; ok {
			return applyFunction(fn, args, node.Token, env)
		}
		return newErrorAt("IMPORT-0002", fa.Token, env, map[string]any{"Module": r.Name, "Symbol": fa.Field})
	case *Dict:
		if fn, ok := r.Get(&String{Value: fa.Field}); ok && isCallable(fn) {
			return applyFunction(fn, args, node.Token, env)
		}
	}

	if b, ok := lookupBuiltin(fa.Field); ok {
		return applyFunction(b, append([]Object{recv}, args...), node.Token, env)
	}
	return newErrorAt("UNDEF-0002", fa.Token, env, map[string]any{"Method": fa.Field, "Type": typeName(recv)})
}

func isCallable(obj Object) bool {
	switch obj.(type) {
	case *Function, *Builtin:
		return true
	}
	return false
}

func applyFunction(fn Object, args []Object, tok lexer.Token, env *Environment) Object {
	switch fn := fn.(type) {
	case *Function:
		return callFunction(fn, args, nil, tok, env)
	case *Builtin:
		res := fn.Fn(env, args...)
		if errObj, ok := res.(*Error); ok {
			return errObj.at(tok, env)
		}
		return res
	}
	return newErrorAt("TYPE-0003", tok, env, map[string]any{"Type": typeName(fn)})
}

// callFunction runs a user function in a scope enclosing its closure. self
// is bound when the function is a struct method.
func callFunction(fn *Function, args []Object, self *StructInstance, tok lexer.Token, env *Environment) Object {
	if len(args) != len(fn.Params) {
		return newErrorAt("ARITY-0001", tok, env, map[string]any{"Function": fn.Name, "Expected": len(fn.Params), "Got": len(args)})
	}
	if env.depth >= MaxCallDepth {
		return newErrorAt("STATE-0005", tok, env, map[string]any{"Limit": MaxCallDepth})
	}
	if errObj := cancelled(tok, env); errObj != nil {
		return errObj
	}

	scope := NewEnclosedEnvironment(fn.Env)
	scope.ctx = env.ctx
	scope.Logger = env.Logger
	scope.depth = env.depth + 1
	if self != nil {
		scope.Define("self", self, false)
	}
	for i, p := range fn.Params {
		if p.Type != "" && !matchesType(args[i], p.Type) {
			return newErrorAt("TYPE-0002", tok, env, map[string]any{"Name": p.Name, "Expected": p.Type, "Got": typeName(args[i])})
		}
		scope.DefineTyped(p.Name, args[i], true, p.Type)
	}

	var result Object = NULL
	switch r := evalStatements(fn.Body, scope).(type) {
	case *ReturnValue:
		result = r.Value
	case *Error:
		return r
	case *loopSignal:
		return newErrorAt("STATE-0002", r.tok, env, map[string]any{"Keyword": r.keyword})
	}

	if fn.ReturnType != "" && !matchesType(result, fn.ReturnType) {
		return newErrorAt("TYPE-0002", tok, env, map[string]any{"Name": fn.Name, "Expected": fn.ReturnType, "Got": typeName(result)})
	}
	return result
}

func evalFieldAccess(node *ast.FieldAccess, env *Environment) Object {
	obj := Eval(node.Object, env)
	if isError(obj) {
		return obj
	}

	switch o := obj.(type) {
	case *StructInstance:
		if val, ok := o.Fields[node.Field]; ok {
			return val
		}
		if method, ok := o.Struct.Methods[node.Field]; ok {
			return method
		}
		return newErrorAt("UNDEF-0003", node.Token, env, map[string]any{"Type": o.Struct.Name, "Field": node.Field})
	case *Dict:
		if val, ok := o.Get(&String{Value: node.Field}); ok {
			return val
		}
		return NULL
	case *EnumType:
		if !o.hasVariant(node.Field) {
			return newErrorAt("UNDEF-0004", node.Token, env, map[string]any{"Enum": o.Name, "Variant": node.Field})
		}
		return &Tagged{Base: o.Name, Variant: node.Field}
	case *Module:
		if val, ok := o.Exports[node.Field]; ok {
			return val
		}
		return newErrorAt("IMPORT-0002", node.Token, env, map[string]any{"Module": o.Name, "Symbol": node.Field})
	}
	return newErrorAt("UNDEF-0003", node.Token, env, map[string]any{"Type": typeName(obj), "Field": node.Field})
}

func evalIndex(node *ast.IndexExpression, env *Environment) Object {
	obj := Eval(node.Object, env)
	if isError(obj) {
		return obj
	}
	idx := Eval(node.Index, env)
	if isError(idx) {
		return idx
	}

	switch o := obj.(type) {
	case *Array:
		i, ok := idx.(*Integer)
		if !ok {
			break
		}
		if i.Value < 0 || i.Value >= int64(len(o.Elements)) {
			return newErrorAt("INDEX-0001", node.Token, env, map[string]any{"Index": i.Value, "Length": len(o.Elements)})
		}
		return o.Elements[i.Value]
	case *String:
		i, ok := idx.(*Integer)
		if !ok {
			break
		}
		runes := []rune(o.Value)
		if i.Value < 0 || i.Value >= int64(len(runes)) {
			return newErrorAt("INDEX-0001", node.Token, env, map[string]any{"Index": i.Value, "Length": len(runes)})
		}
		return &String{Value: string(runes[i.Value])}
	case *Dict:
		if _, ok := hashKey(idx); !ok {
			break
		}
		if val, ok := o.Get(idx); ok {
			return val
		}
		return NULL
	}
	return newErrorAt("TYPE-0004", node.Token, env, map[string]any{"Type": typeName(obj), "Index": typeName(idx)})
}

func evalStructInstance(node *ast.StructInstance, env *Environment) Object {
	def, ok := env.Get(node.Name)
	if !ok {
		return newErrorAt("UNDEF-0001", node.Token, env, map[string]any{"Name": node.Name})
	}
	st, ok := def.(*StructType)
	if !ok {
		return newErrorAt("TYPE-0003", node.Token, env, map[string]any{"Type": typeName(def)})
	}

	inst := &StructInstance{Struct: st, Fields: make(map[string]Object, len(st.Fields))}
	for _, f := range st.Fields {
		inst.Fields[f.Name] = NULL
	}
	for _, fv := range node.Fields {
		val := Eval(fv.Value, env)
		if isError(val) {
			return val
		}
		if errObj := setField(inst, fv.Name, val); errObj != nil {
			return errObj.at(node.Token, env)
		}
	}
	return inst
}

// evalDictLiteral evaluates pairs in source order. A bare identifier key is
// taken as its name.
func evalDictLiteral(node *ast.DictLiteral, env *Environment) Object {
	dict := NewDict()
	for _, pair := range node.Pairs {
		var key Object
		if ident, ok := pair.Key.(*ast.Identifier); ok {
			key = &String{Value: ident.Value}
		} else {
			key = Eval(pair.Key, env)
			if isError(key) {
				return key
			}
		}
		val := Eval(pair.Value, env)
		if isError(val) {
			return val
		}
		if !dict.Set(key, val) {
			return newErrorAt("TYPE-0004", node.Token, env, map[string]any{"Type": "dict", "Index": typeName(key)})
		}
	}
	return dict
}

// evalTag handles print(...), throw(...) and Base::Variant(...)
func evalTag(node *ast.TagExpression, env *Environment) Object {
	args, errObj := evalExpressions(node.Arguments, env)
	if errObj != nil {
		return errObj
	}

	switch node.Name {
	case "print":
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.Inspect()
		}
		env.Logger.LogLine(strings.Join(parts, " "))
		return NULL

	case "throw":
		var thrown Object = &String{Value: "error"}
		if len(args) > 0 {
			thrown = args[0]
		}
		e := newError("USER-0001", map[string]any{"Message": thrown.Inspect()}).at(node.Token, env)
		e.Thrown = thrown
		return e
	}

	base, variant, ok := node.Qualified()
	if !ok {
		return newErrorAt("OP-0002", node.Token, env, map[string]any{"Operator": node.Name})
	}
	if def, bound := env.Get(base); bound {
		if enum, isEnum := def.(*EnumType); isEnum && !enum.hasVariant(variant) {
			return newErrorAt("UNDEF-0004", node.Token, env, map[string]any{"Enum": base, "Variant": variant})
		}
	}
	return &Tagged{Base: base, Variant: variant, Values: args}
}
