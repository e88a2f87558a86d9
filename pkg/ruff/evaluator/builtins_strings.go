package evaluator

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var stringBuiltins = map[string]BuiltinFunction{
	"split":      builtinSplit,
	"join":       builtinJoin,
	"trim":       builtinTrim,
	"upper":      builtinUpper,
	"lower":      builtinLower,
	"capitalize": builtinCapitalize,
}

// stringArg extracts a single string argument
func stringArg(fn string, args []Object) (string, *Error) {
	if len(args) != 1 {
		return "", arityError(fn, 1, len(args))
	}
	s, ok := args[0].(*String)
	if !ok {
		return "", argError(fn, "a string", args[0])
	}
	return s.Value, nil
}

func builtinSplit(env *Environment, args ...Object) Object {
	if len(args) != 2 {
		return arityError("split", 2, len(args))
	}
	s, ok := args[0].(*String)
	if !ok {
		return argError("split", "a string", args[0])
	}
	sep, ok := args[1].(*String)
	if !ok {
		return argError("split", "a string separator", args[1])
	}
	parts := strings.Split(s.Value, sep.Value)
	elements := make([]Object, len(parts))
	for i, p := range parts {
		elements[i] = &String{Value: p}
	}
	return &Array{Elements: elements}
}

func builtinJoin(env *Environment, args ...Object) Object {
	if len(args) != 2 {
		return arityError("join", 2, len(args))
	}
	arr, ok := args[0].(*Array)
	if !ok {
		return argError("join", "an array", args[0])
	}
	sep, ok := args[1].(*String)
	if !ok {
		return argError("join", "a string separator", args[1])
	}
	parts := make([]string, len(arr.Elements))
	for i, e := range arr.Elements {
		parts[i] = e.Inspect()
	}
	return &String{Value: strings.Join(parts, sep.Value)}
}

func builtinTrim(env *Environment, args ...Object) Object {
	s, errObj := stringArg("trim", args)
	if errObj != nil {
		return errObj
	}
	return &String{Value: strings.TrimSpace(s)}
}

func builtinUpper(env *Environment, args ...Object) Object {
	s, errObj := stringArg("upper", args)
	if errObj != nil {
		return errObj
	}
	return &String{Value: cases.Upper(language.Und).String(s)}
}

func builtinLower(env *Environment, args ...Object) Object {
	s, errObj := stringArg("lower", args)
	if errObj != nil {
		return errObj
	}
	return &String{Value: cases.Lower(language.Und).String(s)}
}

// builtinCapitalize upper-cases the first letter and lower-cases the rest
func builtinCapitalize(env *Environment, args ...Object) Object {
	s, errObj := stringArg("capitalize", args)
	if errObj != nil {
		return errObj
	}
	if s == "" {
		return &String{Value: ""}
	}
	_, size := utf8.DecodeRuneInString(s)
	first := cases.Upper(language.Und).String(s[:size])
	return &String{Value: first + cases.Lower(language.Und).String(s[size:])}
}
