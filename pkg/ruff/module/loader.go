// Package module resolves, parses and caches Ruff source modules.
//
// A module named "util" is the file util.ruff in the first search path that
// contains it. Loading a module also loads the modules it imports, so an
// import cycle is reported when any module in it is loaded.
//
// Export tables are not yet populated: Exports is always empty, and every
// symbol lookup fails with ErrSymbolNotFound.
package module

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sambeau/ruff/pkg/ruff/ast"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
	"github.com/sambeau/ruff/pkg/ruff/parser"
)

// Extension is the file extension of Ruff source files
const Extension = ".ruff"

// DefaultSearchPaths are used when NewLoader is given none
var DefaultSearchPaths = []string{".", "./modules"}

var (
	ErrNotFound       = errors.New("module not found")
	ErrCircular       = errors.New("circular import")
	ErrSymbolNotFound = errors.New("symbol not exported")
)

// Module is a parsed source file
type Module struct {
	Name       string
	Path       string
	Statements []ast.Statement
	Exports    map[string]ast.Statement
}

// Loader loads modules from a list of search paths. It is safe for
// concurrent use.
type Loader struct {
	searchPaths []string

	mu      sync.Mutex
	cache   map[string]*Module
	loading []string
}

// NewLoader creates a loader over searchPaths, in priority order
func NewLoader(searchPaths ...string) *Loader {
	if len(searchPaths) == 0 {
		searchPaths = DefaultSearchPaths
	}
	paths := make([]string, len(searchPaths))
	copy(paths, searchPaths)
	return &Loader{searchPaths: paths, cache: make(map[string]*Module)}
}

// SearchPaths returns the loader's search paths
func (l *Loader) SearchPaths() []string {
	out := make([]string, len(l.searchPaths))
	copy(out, l.searchPaths)
	return out
}

// Load returns the named module, reading and parsing it on first use
func (l *Loader) Load(name string) (*Module, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(name)
}

func (l *Loader) load(name string) (*Module, error) {
	if m, ok := l.cache[name]; ok {
		return m, nil
	}

	for _, loading := range l.loading {
		if loading == name {
			chain := append(append([]string{}, l.loading...), name)
			return nil, fmt.Errorf("%w: %s", ErrCircular, strings.Join(chain, " -> "))
		}
	}

	path, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading module %s: %w", name, err)
	}

	l.loading = append(l.loading, name)
	defer func() { l.loading = l.loading[:len(l.loading)-1] }()

	m := &Module{
		Name:       name,
		Path:       path,
		Statements: parser.Parse(lexer.Tokenize(string(src))),
		Exports:    map[string]ast.Statement{},
	}

	for _, stmt := range m.Statements {
		imp, ok := stmt.(*ast.ImportStatement)
		if !ok {
			continue
		}
		if _, err := l.load(imp.Module); err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
	}

	l.cache[name] = m
	return m, nil
}

// resolve finds <name>.ruff in the search paths
func (l *Loader) resolve(name string) (string, error) {
	file := filepath.FromSlash(name) + Extension
	for _, dir := range l.searchPaths {
		path := filepath.Join(dir, file)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s (searched %s)", ErrNotFound, name, strings.Join(l.searchPaths, ", "))
}

// Symbol looks up an exported symbol of a module
func (l *Loader) Symbol(moduleName, symbol string) (ast.Statement, error) {
	m, err := l.Load(moduleName)
	if err != nil {
		return nil, err
	}
	stmt, ok := m.Exports[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrSymbolNotFound, moduleName, symbol)
	}
	return stmt, nil
}

// Exports returns a module's export table
func (l *Loader) Exports(moduleName string) (map[string]ast.Statement, error) {
	m, err := l.Load(moduleName)
	if err != nil {
		return nil, err
	}
	return m.Exports, nil
}

// Clear empties the cache so modules are read again on next use
func (l *Loader) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*Module)
}
