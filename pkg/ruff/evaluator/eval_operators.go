package evaluator

import (
	"strings"

	"github.com/sambeau/ruff/pkg/ruff/lexer"
)

// evalBinary applies an infix operator. Integers stay integers; mixing an
// integer with a float promotes to float.
func evalBinary(op string, left, right Object, tok lexer.Token, env *Environment) Object {
	var result Object
	switch {
	case op == "+" && (left.Type() == STRING_OBJ || right.Type() == STRING_OBJ):
		result = &String{Value: left.Inspect() + right.Inspect()}

	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		result = evalIntegerBinary(op, left.(*Integer).Value, right.(*Integer).Value)

	case isNumber(left) && isNumber(right):
		result = evalFloatBinary(op, toFloat(left), toFloat(right))

	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		result = evalStringBinary(op, left.(*String).Value, right.(*String).Value)

	case left.Type() == ARRAY_OBJ && right.Type() == ARRAY_OBJ && op == "+":
		l, r := left.(*Array).Elements, right.(*Array).Elements
		elements := make([]Object, 0, len(l)+len(r))
		result = &Array{Elements: append(append(elements, l...), r...)}

	case op == "==":
		result = nativeBool(objectsEqual(left, right))

	case op == "!=":
		result = nativeBool(!objectsEqual(left, right))
	}

	switch r := result.(type) {
	case nil:
		return newErrorAt("TYPE-0001", tok, env, map[string]any{"Operator": op, "Left": typeName(left), "Right": typeName(right)})
	case *Error:
		return r.at(tok, env)
	}
	return result
}

func evalIntegerBinary(op string, l, r int64) Object {
	switch op {
	case "+":
		return &Integer{Value: l + r}
	case "-":
		return &Integer{Value: l - r}
	case "*":
		return &Integer{Value: l * r}
	case "/":
		if r == 0 {
			return newError("OP-0001", nil)
		}
		return &Integer{Value: l / r}
	case "==":
		return nativeBool(l == r)
	case "!=":
		return nativeBool(l != r)
	case "<":
		return nativeBool(l < r)
	case ">":
		return nativeBool(l > r)
	case "<=":
		return nativeBool(l <= r)
	case ">=":
		return nativeBool(l >= r)
	}
	return newError("OP-0002", map[string]any{"Operator": op})
}

func evalFloatBinary(op string, l, r float64) Object {
	switch op {
	case "+":
		return &Float{Value: l + r}
	case "-":
		return &Float{Value: l - r}
	case "*":
		return &Float{Value: l * r}
	case "/":
		if r == 0 {
			return newError("OP-0001", nil)
		}
		return &Float{Value: l / r}
	case "==":
		return nativeBool(l == r)
	case "!=":
		return nativeBool(l != r)
	case "<":
		return nativeBool(l < r)
	case ">":
		return nativeBool(l > r)
	case "<=":
		return nativeBool(l <= r)
	case ">=":
		return nativeBool(l >= r)
	}
	return newError("OP-0002", map[string]any{"Operator": op})
}

func evalStringBinary(op string, l, r string) Object {
	switch op {
	case "==":
		return nativeBool(l == r)
	case "!=":
		return nativeBool(l != r)
	case "<":
		return nativeBool(strings.Compare(l, r) < 0)
	case ">":
		return nativeBool(strings.Compare(l, r) > 0)
	case "<=":
		return nativeBool(strings.Compare(l, r) <= 0)
	case ">=":
		return nativeBool(strings.Compare(l, r) >= 0)
	}
	return nil
}

func isNumber(obj Object) bool {
	t := obj.Type()
	return t == INTEGER_OBJ || t == FLOAT_OBJ
}

func toFloat(obj Object) float64 {
	switch n := obj.(type) {
	case *Integer:
		return float64(n.Value)
	case *Float:
		return n.Value
	}
	return 0
}

// isTruthy: false, null, 0, 0.0 and "" are false; everything else is true
func isTruthy(obj Object) bool {
	switch o := obj.(type) {
	case *Boolean:
		return o.Value
	case *Null:
		return false
	case *Integer:
		return o.Value != 0
	case *Float:
		return o.Value != 0
	case *String:
		return o.Value != ""
	}
	return obj != nil
}

// objectsEqual compares values structurally. Numbers compare by value
// across int and float.
func objectsEqual(a, b Object) bool {
	if isNumber(a) && isNumber(b) {
		if a.Type() == INTEGER_OBJ && b.Type() == INTEGER_OBJ {
			return a.(*Integer).Value == b.(*Integer).Value
		}
		return toFloat(a) == toFloat(b)
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a := a.(type) {
	case *String:
		return a.Value == b.(*String).Value
	case *Boolean:
		return a.Value == b.(*Boolean).Value
	case *Null:
		return true
	case *Array:
		bb := b.(*Array)
		if len(a.Elements) != len(bb.Elements) {
			return false
		}
		for i := range a.Elements {
			if !objectsEqual(a.Elements[i], bb.Elements[i]) {
				return false
			}
		}
		return true
	case *Dict:
		bb := b.(*Dict)
		if a.Len() != bb.Len() {
			return false
		}
		for i, k := range a.keys {
			v, ok := bb.Get(k)
			if !ok || !objectsEqual(a.values[i], v) {
				return false
			}
		}
		return true
	case *Tagged:
		bb := b.(*Tagged)
		if a.Base != bb.Base || a.Variant != bb.Variant || len(a.Values) != len(bb.Values) {
			return false
		}
		for i := range a.Values {
			if !objectsEqual(a.Values[i], bb.Values[i]) {
				return false
			}
		}
		return true
	case *StructInstance:
		bb := b.(*StructInstance)
		if a.Struct != bb.Struct || len(a.Fields) != len(bb.Fields) {
			return false
		}
		for name, v := range a.Fields {
			w, ok := bb.Fields[name]
			if !ok || !objectsEqual(v, w) {
				return false
			}
		}
		return true
	}
	return a == b
}

// matchesType checks a value against a primitive annotation. Unknown type
// names match anything.
func matchesType(val Object, typ string) bool {
	switch typ {
	case "int":
		return val.Type() == INTEGER_OBJ
	case "float":
		return val.Type() == FLOAT_OBJ
	case "string":
		return val.Type() == STRING_OBJ
	case "bool":
		return val.Type() == BOOLEAN_OBJ
	}
	return true
}

// typeName is the user-facing name of a value's type
func typeName(obj Object) string {
	switch o := obj.(type) {
	case nil:
		return NULL_OBJ
	case *StructInstance:
		return o.Struct.Name
	case *Tagged:
		if o.Base != "" {
			return o.Base
		}
		return o.Variant
	case *Builtin:
		return FUNCTION_OBJ
	}
	return string(obj.Type())
}
