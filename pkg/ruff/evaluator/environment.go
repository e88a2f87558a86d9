package evaluator

import (
	"context"
	"fmt"
	"sort"

	"github.com/sambeau/ruff/pkg/ruff/module"
)

// Logger receives program output from print()
type Logger interface {
	Log(values ...any)
	LogLine(values ...any)
}

// defaultStdoutLogger writes to stdout
type defaultStdoutLogger struct{}

func (l *defaultStdoutLogger) Log(values ...any) {
	for i, v := range values {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(v)
	}
}

func (l *defaultStdoutLogger) LogLine(values ...any) {
	l.Log(values...)
	fmt.Println()
}

// DefaultLogger is the default stdout logger
var DefaultLogger Logger = &defaultStdoutLogger{}

// ModuleLoader resolves import statements
type ModuleLoader interface {
	Load(name string) (*module.Module, error)
}

// DefaultDBMaxOpen caps the open connections of each db_connect handle
const DefaultDBMaxOpen = 4

// Environment represents a scope of variable bindings
type Environment struct {
	store   map[string]Object
	mutable map[string]bool
	types   map[string]string // declared primitive types
	outer   *Environment

	Filename  string
	Logger    Logger
	Loader    ModuleLoader // nil disables import
	DBMaxOpen int

	ctx   context.Context
	depth int // call depth, for the recursion limit
}

// NewEnvironment creates a top-level environment
func NewEnvironment() *Environment {
	return &Environment{
		store:     make(map[string]Object),
		mutable:   make(map[string]bool),
		types:     make(map[string]string),
		Logger:    DefaultLogger,
		DBMaxOpen: DefaultDBMaxOpen,
		ctx:       context.Background(),
	}
}

// NewEnclosedEnvironment creates a child scope that inherits the outer
// environment's settings
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	if outer != nil {
		env.Filename = outer.Filename
		env.Logger = outer.Logger
		env.Loader = outer.Loader
		env.DBMaxOpen = outer.DBMaxOpen
		env.ctx = outer.ctx
		env.depth = outer.depth
	}
	return env
}

// WithContext sets the context checked by loops and calls. Evaluation stops
// with an error once ctx is done.
func (e *Environment) WithContext(ctx context.Context) *Environment {
	e.ctx = ctx
	return e
}

// Context returns the evaluation context
func (e *Environment) Context() context.Context {
	return e.ctx
}

// Get looks a name up through the enclosing scopes
func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.outer {
		if val, ok := env.store[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Define binds name in this scope, replacing any existing binding here
func (e *Environment) Define(name string, val Object, mutable bool) Object {
	e.store[name] = val
	e.mutable[name] = mutable
	delete(e.types, name)
	return val
}

// DefineTyped binds name with a declared primitive type
func (e *Environment) DefineTyped(name string, val Object, mutable bool, typ string) Object {
	e.Define(name, val, mutable)
	if typ != "" {
		e.types[name] = typ
	}
	return val
}

// Assign updates the nearest binding of name. A name that is not bound
// anywhere is defined as mutable in this scope.
func (e *Environment) Assign(name string, val Object) *Error {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; !ok {
			continue
		}
		if !env.mutable[name] {
			return newError("STATE-0001", map[string]any{"Name": name})
		}
		if typ := env.types[name]; typ != "" && !matchesType(val, typ) {
			return newError("TYPE-0002", map[string]any{"Name": name, "Expected": typ, "Got": typeName(val)})
		}
		env.store[name] = val
		return nil
	}
	e.Define(name, val, true)
	return nil
}

// Names returns every name visible from this scope, sorted
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	for env := e; env != nil; env = env.outer {
		for name := range env.store {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LocalNames returns the names bound directly in this scope, sorted
func (e *Environment) LocalNames() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
