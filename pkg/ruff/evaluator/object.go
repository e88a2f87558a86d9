package evaluator

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sambeau/ruff/pkg/ruff/ast"
	rerrors "github.com/sambeau/ruff/pkg/ruff/errors"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
)

// ObjectType represents the type of runtime values
type ObjectType string

const (
	INTEGER_OBJ       = "int"
	FLOAT_OBJ         = "float"
	BOOLEAN_OBJ       = "bool"
	STRING_OBJ        = "string"
	NULL_OBJ          = "null"
	RETURN_OBJ        = "return"
	ERROR_OBJ         = "error"
	FUNCTION_OBJ      = "function"
	BUILTIN_OBJ       = "builtin"
	ARRAY_OBJ         = "array"
	DICT_OBJ          = "dict"
	STRUCT_TYPE_OBJ   = "struct"
	STRUCT_OBJ        = "instance"
	ENUM_OBJ          = "enum"
	TAGGED_OBJ        = "tagged"
	MODULE_OBJ        = "module"
	DB_CONNECTION_OBJ = "database"
	SIGNAL_OBJ        = "signal"
)

// Object represents all values in the language
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer represents integer values
type Integer struct {
	Value int64
}

func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Type() ObjectType { return INTEGER_OBJ }

// Float represents floating-point values
type Float struct {
	Value float64
}

func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'f', -1, 64) }
func (f *Float) Type() ObjectType { return FLOAT_OBJ }

// Boolean represents true and false
type Boolean struct {
	Value bool
}

func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }
func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }

// String represents string values
type String struct {
	Value string
}

func (s *String) Inspect() string  { return s.Value }
func (s *String) Type() ObjectType { return STRING_OBJ }

// Null represents the absence of a value
type Null struct{}

func (n *Null) Inspect() string  { return "null" }
func (n *Null) Type() ObjectType { return NULL_OBJ }

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// ReturnValue wraps a value travelling out of a function body
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// loopSignal carries break and continue out of nested blocks
type loopSignal struct {
	keyword string
	tok     lexer.Token
}

func (s *loopSignal) Type() ObjectType { return SIGNAL_OBJ }
func (s *loopSignal) Inspect() string  { return s.keyword }

// Error is a runtime failure. Errors are ordinary values that unwind
// evaluation until a try/except handles them. Thrown carries the value given
// to throw(), if any.
type Error struct {
	Message string
	Line    int
	Column  int
	File    string
	Class   rerrors.ErrorClass
	Code    string
	Hints   []string
	Data    map[string]any
	Thrown  Object
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return "Error: " + e.Message
}

// ToRuffError converts the runtime error to the shared diagnostic type
func (e *Error) ToRuffError() *rerrors.RuffError {
	class := e.Class
	if class == "" {
		class = rerrors.ClassType
	}
	return &rerrors.RuffError{
		Class:   class,
		Code:    e.Code,
		Message: e.Message,
		Hints:   e.Hints,
		Line:    e.Line,
		Column:  e.Column,
		File:    e.File,
		Data:    e.Data,
	}
}

// Function is a user-defined function or struct method with its closure
type Function struct {
	Name       string
	Params     []ast.Param
	ReturnType string
	Body       []ast.Statement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("<func %s(%s)>", f.Name, strings.Join(params, ", "))
}

// BuiltinFunction is the Go implementation of a built-in
type BuiltinFunction func(env *Environment, args ...Object) Object

// Builtin represents built-in function values
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<builtin " + b.Name + ">" }

// Array represents a mutable, ordered list
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	elements := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		elements[i] = e.Inspect()
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// Dict is an insertion-ordered map. Keys are strings, integers, floats or
// booleans.
type Dict struct {
	keys   []Object
	values []Object
	index  map[string]int
}

// NewDict returns an empty dictionary
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

func (d *Dict) Type() ObjectType { return DICT_OBJ }
func (d *Dict) Inspect() string {
	pairs := make([]string, len(d.keys))
	for i, k := range d.keys {
		key := k.Inspect()
		if _, ok := k.(*String); ok {
			key = strconv.Quote(key)
		}
		pairs[i] = key + ": " + d.values[i].Inspect()
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// hashKey returns the lookup key for a hashable object
func hashKey(key Object) (string, bool) {
	switch k := key.(type) {
	case *String:
		return "s:" + k.Value, true
	case *Integer:
		return "i:" + k.Inspect(), true
	case *Float:
		return "f:" + k.Inspect(), true
	case *Boolean:
		return "b:" + k.Inspect(), true
	}
	return "", false
}

// Get returns the value stored under key
func (d *Dict) Get(key Object) (Object, bool) {
	h, ok := hashKey(key)
	if !ok {
		return nil, false
	}
	i, ok := d.index[h]
	if !ok {
		return nil, false
	}
	return d.values[i], true
}

// Set stores value under key, keeping the original position of an existing
// key. It reports false when key is not hashable.
func (d *Dict) Set(key, value Object) bool {
	h, ok := hashKey(key)
	if !ok {
		return false
	}
	if i, exists := d.index[h]; exists {
		d.values[i] = value
		return true
	}
	d.index[h] = len(d.keys)
	d.keys = append(d.keys, key)
	d.values = append(d.values, value)
	return true
}

// Keys returns the keys in insertion order
func (d *Dict) Keys() []Object {
	out := make([]Object, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of entries
func (d *Dict) Len() int { return len(d.keys) }

// StructType is a declared struct: its fields and methods
type StructType struct {
	Name    string
	Fields  []ast.StructField
	Methods map[string]*Function
}

func (s *StructType) Type() ObjectType { return STRUCT_TYPE_OBJ }
func (s *StructType) Inspect() string  { return "<struct " + s.Name + ">" }

func (s *StructType) field(name string) (ast.StructField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ast.StructField{}, false
}

// StructInstance is a value of a struct type
type StructInstance struct {
	Struct *StructType
	Fields map[string]Object
}

func (s *StructInstance) Type() ObjectType { return STRUCT_OBJ }
func (s *StructInstance) Inspect() string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	fields := make([]string, len(names))
	for i, name := range names {
		fields[i] = name + ": " + s.Fields[name].Inspect()
	}
	return s.Struct.Name + " { " + strings.Join(fields, ", ") + " }"
}

// EnumType is a declared enum
type EnumType struct {
	Name     string
	Variants []string
}

func (e *EnumType) Type() ObjectType { return ENUM_OBJ }
func (e *EnumType) Inspect() string  { return "<enum " + e.Name + ">" }

func (e *EnumType) hasVariant(name string) bool {
	for _, v := range e.Variants {
		if v == name {
			return true
		}
	}
	return false
}

// Tagged is an enum variant or a Result/Option value, with its payload.
// Bare constructors such as Ok(1) get their Result or Option base.
type Tagged struct {
	Base    string
	Variant string
	Values  []Object
}

func (t *Tagged) Type() ObjectType { return TAGGED_OBJ }
func (t *Tagged) Inspect() string {
	name := t.Variant
	if t.Base != "" {
		name = t.Base + "::" + t.Variant
	}
	if len(t.Values) == 0 {
		return name
	}
	values := make([]string, len(t.Values))
	for i, v := range t.Values {
		values[i] = v.Inspect()
	}
	return name + "(" + strings.Join(values, ",") + ")"
}

// Module is an imported module and its export table
type Module struct {
	Name    string
	Path    string
	Exports map[string]Object
}

func (m *Module) Type() ObjectType { return MODULE_OBJ }
func (m *Module) Inspect() string  { return "<module " + m.Name + ">" }

// DBConnection is a handle returned by db_connect
type DBConnection struct {
	mu     sync.Mutex
	DB     *sql.DB
	Driver string
	DSN    string
	key    string // pool key, empty for unshared handles
	closed bool
}

func (c *DBConnection) Type() ObjectType { return DB_CONNECTION_OBJ }
func (c *DBConnection) Inspect() string {
	return fmt.Sprintf("<database driver=%s>", c.Driver)
}
