// errors.go - error construction helpers for the evaluator
//
// Runtime errors are built from the shared catalog in pkg/ruff/errors so
// that codes, classes and hints match the parser's diagnostics.

package evaluator

import (
	"fmt"

	rerrors "github.com/sambeau/ruff/pkg/ruff/errors"
	"github.com/sambeau/ruff/pkg/ruff/lexer"
)

// newError creates a structured error from the catalog
func newError(code string, data map[string]any) *Error {
	return fromRuffError(rerrors.New(code, data))
}

// newErrorAt creates a structured error positioned at tok
func newErrorAt(code string, tok lexer.Token, env *Environment, data map[string]any) *Error {
	return newError(code, data).at(tok, env)
}

// newUserError wraps a message in a USER-0001 error
func newUserError(format string, a ...any) *Error {
	return newError("USER-0001", map[string]any{"Message": fmt.Sprintf(format, a...)})
}

func fromRuffError(perr *rerrors.RuffError) *Error {
	return &Error{
		Class:   perr.Class,
		Code:    perr.Code,
		Message: perr.Message,
		Hints:   perr.Hints,
		Data:    perr.Data,
	}
}

// at fills in a missing position. Errors raised deeper in a call keep the
// position where they were first created.
func (e *Error) at(tok lexer.Token, env *Environment) *Error {
	if e.Line == 0 && tok.Line > 0 {
		e.Line = tok.Line
		e.Column = tok.Column
	}
	if e.File == "" && env != nil {
		e.File = env.Filename
	}
	return e
}

// argError reports a builtin called with the wrong argument kinds
func argError(fn, expected string, got Object) *Error {
	return newError("TYPE-0006", map[string]any{"Function": fn, "Expected": expected, "Got": typeName(got)})
}

// arityError reports a builtin called with the wrong number of arguments
func arityError(fn string, expected any, got int) *Error {
	return newError("ARITY-0001", map[string]any{"Function": fn, "Expected": expected, "Got": got})
}

func isError(obj Object) bool {
	return obj != nil && obj.Type() == ERROR_OBJ
}
