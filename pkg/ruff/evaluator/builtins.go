package evaluator

import (
	"sort"
	"strings"
)

var builtins map[string]*Builtin

func init() {
	builtins = make(map[string]*Builtin)
	register := func(fns map[string]BuiltinFunction) {
		for name, fn := range fns {
			builtins[name] = &Builtin{Name: name, Fn: fn}
		}
	}
	register(map[string]BuiltinFunction{
		"len":          builtinLen,
		"str":          builtinStr,
		"type":         builtinType,
		"abs":          builtinAbs,
		"push":         builtinPush,
		"keys":         builtinKeys,
		"range":        builtinRange,
		"contains":     builtinContains,
		"assert":       builtinAssert,
		"assert_equal": builtinAssertEqual,
		"assert_true":  builtinAssertTrue,
		"assert_false": builtinAssertFalse,
	})
	register(stringBuiltins)
	register(cryptoBuiltins)
	register(datetimeBuiltins)
	register(databaseBuiltins)
}

func lookupBuiltin(name string) (*Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}

// BuiltinNames returns the names of all builtins, sorted, plus the print and
// throw forms
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins)+2)
	for name := range builtins {
		names = append(names, name)
	}
	names = append(names, "print", "throw")
	sort.Strings(names)
	return names
}

func builtinLen(env *Environment, args ...Object) Object {
	if len(args) != 1 {
		return arityError("len", 1, len(args))
	}
	switch arg := args[0].(type) {
	case *String:
		return &Integer{Value: int64(len([]rune(arg.Value)))}
	case *Array:
		return &Integer{Value: int64(len(arg.Elements))}
	case *Dict:
		return &Integer{Value: int64(arg.Len())}
	}
	return argError("len", "a string, array or dict", args[0])
}

func builtinStr(env *Environment, args ...Object) Object {
	if len(args) != 1 {
		return arityError("str", 1, len(args))
	}
	return &String{Value: args[0].Inspect()}
}

func builtinType(env *Environment, args ...Object) Object {
	if len(args) != 1 {
		return arityError("type", 1, len(args))
	}
	return &String{Value: typeName(args[0])}
}

func builtinAbs(env *Environment, args ...Object) Object {
	if len(args) != 1 {
		return arityError("abs", 1, len(args))
	}
	switch n := args[0].(type) {
	case *Integer:
		if n.Value < 0 {
			return &Integer{Value: -n.Value}
		}
		return n
	case *Float:
		if n.Value < 0 {
			return &Float{Value: -n.Value}
		}
		return n
	}
	return argError("abs", "a number", args[0])
}

// builtinPush appends to the array in place and returns it
func builtinPush(env *Environment, args ...Object) Object {
	if len(args) != 2 {
		return arityError("push", 2, len(args))
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return argError("push", "an array", args[0])
	}
	arr.Elements = append(arr.Elements, args[1])
	return arr
}

func builtinKeys(env *Environment, args ...Object) Object {
	if len(args) != 1 {
		return arityError("keys", 1, len(args))
	}
	switch arg := args[0].(type) {
	case *Dict:
		return &Array{Elements: arg.Keys()}
	case *StructInstance:
		names := make([]string, 0, len(arg.Fields))
		for name := range arg.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		keys := make([]Object, len(names))
		for i, name := range names {
			keys[i] = &String{Value: name}
		}
		return &Array{Elements: keys}
	}
	return argError("keys", "a dict", args[0])
}

// builtinRange returns range(end) or range(start, end) as an array
func builtinRange(env *Environment, args ...Object) Object {
	if len(args) < 1 || len(args) > 2 {
		return arityError("range", "1 or 2", len(args))
	}
	bounds := make([]int64, len(args))
	for i, a := range args {
		n, ok := a.(*Integer)
		if !ok {
			return argError("range", "integers", a)
		}
		bounds[i] = n.Value
	}
	start, end := int64(0), bounds[0]
	if len(bounds) == 2 {
		start, end = bounds[0], bounds[1]
	}
	elements := []Object{}
	for i := start; i < end; i++ {
		elements = append(elements, &Integer{Value: i})
	}
	return &Array{Elements: elements}
}

func builtinContains(env *Environment, args ...Object) Object {
	if len(args) != 2 {
		return arityError("contains", 2, len(args))
	}
	switch container := args[0].(type) {
	case *String:
		needle, ok := args[1].(*String)
		if !ok {
			return argError("contains", "a string to search for", args[1])
		}
		return nativeBool(strings.Contains(container.Value, needle.Value))
	case *Array:
		for _, e := range container.Elements {
			if objectsEqual(e, args[1]) {
				return TRUE
			}
		}
		return FALSE
	case *Dict:
		_, ok := container.Get(args[1])
		return nativeBool(ok)
	}
	return argError("contains", "a string, array or dict", args[0])
}

func builtinAssert(env *Environment, args ...Object) Object {
	if len(args) < 1 || len(args) > 2 {
		return arityError("assert", "1 or 2", len(args))
	}
	if isTruthy(args[0]) {
		return NULL
	}
	msg := "condition is false"
	if len(args) == 2 {
		msg = args[1].Inspect()
	}
	return newError("ASSERT-0001", map[string]any{"Message": msg})
}

// builtinAssertEqual checks assert_equal(actual, expected)
func builtinAssertEqual(env *Environment, args ...Object) Object {
	if len(args) != 2 {
		return arityError("assert_equal", 2, len(args))
	}
	if objectsEqual(args[0], args[1]) {
		return NULL
	}
	return newError("ASSERT-0002", map[string]any{"Expected": args[1].Inspect(), "Got": args[0].Inspect()})
}

func builtinAssertTrue(env *Environment, args ...Object) Object {
	if len(args) != 1 {
		return arityError("assert_true", 1, len(args))
	}
	if args[0] == TRUE {
		return NULL
	}
	return newError("ASSERT-0002", map[string]any{"Expected": "true", "Got": args[0].Inspect()})
}

func builtinAssertFalse(env *Environment, args ...Object) Object {
	if len(args) != 1 {
		return arityError("assert_false", 1, len(args))
	}
	if args[0] == FALSE {
		return NULL
	}
	return newError("ASSERT-0002", map[string]any{"Expected": "false", "Got": args[0].Inspect()})
}
