package evaluator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sambeau/ruff/pkg/ruff/lexer"
	"github.com/sambeau/ruff/pkg/ruff/module"
	"github.com/sambeau/ruff/pkg/ruff/parser"
)

// captureLogger records print() output line by line
type captureLogger struct {
	lines []string
}

func (c *captureLogger) Log(values ...any) {
	c.lines = append(c.lines, fmt.Sprint(values...))
}

func (c *captureLogger) LogLine(values ...any) {
	c.lines = append(c.lines, fmt.Sprint(values...))
}

func (c *captureLogger) String() string {
	return strings.Join(c.lines, "\n")
}

// Helper to parse and evaluate Ruff code
func testEval(t *testing.T, input string) (Object, *captureLogger) {
	t.Helper()
	return testEvalIn(t, NewEnvironment(), input)
}

func testEvalIn(t *testing.T, env *Environment, input string) (Object, *captureLogger) {
	t.Helper()
	program, errs := parser.ParseString(input)
	if len(errs) > 0 {
		t.Fatalf("parse error in %q: %s", input, errs[0])
	}
	log := &captureLogger{}
	env.Logger = log
	return Eval(program, env), log
}

func expectError(t *testing.T, obj Object, code string) *Error {
	t.Helper()
	errObj, ok := obj.(*Error)
	if !ok {
		t.Fatalf("expected error %s, got %s (%s)", code, obj.Type(), obj.Inspect())
	}
	if errObj.Code != code {
		t.Fatalf("expected error %s, got %s: %s", code, errObj.Code, errObj.Message)
	}
	return errObj
}

func expectInspect(t *testing.T, input, expected string) {
	t.Helper()
	result, _ := testEval(t, input)
	if errObj, ok := result.(*Error); ok {
		t.Fatalf("%q: unexpected error %s", input, errObj.Message)
	}
	if got := result.Inspect(); got != expected {
		t.Errorf("%q = %s, want %s", input, got, expected)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		typ      ObjectType
	}{
		{"1 + 2 * 3", "7", INTEGER_OBJ},
		{"10 - 4 - 3", "3", INTEGER_OBJ},
		{"7 / 2", "3", INTEGER_OBJ},
		{"7.0 / 2", "3.5", FLOAT_OBJ},
		{"1 + 2.5", "3.5", FLOAT_OBJ},
		{"1.5 * 2", "3", FLOAT_OBJ},
		{`"a" + 1`, "a1", STRING_OBJ},
		{`1 + "a"`, "1a", STRING_OBJ},
		{`"ab" + "cd"`, "abcd", STRING_OBJ},
		{"2 * 3 == 6", "true", BOOLEAN_OBJ},
		{"1 < 2.5", "true", BOOLEAN_OBJ},
		{"3 >= 4", "false", BOOLEAN_OBJ},
		{`"abc" < "abd"`, "true", BOOLEAN_OBJ},
		{"1 == 1.0", "true", BOOLEAN_OBJ},
		{"[1, 2] + [3]", "[1, 2, 3]", ARRAY_OBJ},
		{`true == true`, "true", BOOLEAN_OBJ},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, _ := testEval(t, tt.input)
			if result.Type() != tt.typ {
				t.Fatalf("type = %s, want %s (%s)", result.Type(), tt.typ, result.Inspect())
			}
			if result.Inspect() != tt.expected {
				t.Errorf("got %s, want %s", result.Inspect(), tt.expected)
			}
		})
	}
}

func TestOperatorErrors(t *testing.T) {
	tests := []struct {
		input string
		code  string
	}{
		{"1 / 0", "OP-0001"},
		{"1.5 / 0", "OP-0001"},
		{`"a" - 1`, "TYPE-0001"},
		{"true * 2", "TYPE-0001"},
		{`"a" * "b"`, "TYPE-0001"},
	}
	for _, tt := range tests {
		result, _ := testEval(t, tt.input)
		errObj := expectError(t, result, tt.code)
		if errObj.Line != 1 {
			t.Errorf("%q: line = %d, want 1", tt.input, errObj.Line)
		}
	}
}

func TestErrorPosition(t *testing.T) {
	result, _ := testEval(t, "let x := 1\nlet y := x / 0")
	errObj := expectError(t, result, "OP-0001")
	if errObj.Line != 2 {
		t.Errorf("line = %d, want 2", errObj.Line)
	}
	if !strings.HasPrefix(errObj.Inspect(), "line 2, column ") {
		t.Errorf("Inspect() = %q", errObj.Inspect())
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		obj      Object
		expected bool
	}{
		{TRUE, true},
		{FALSE, false},
		{NULL, false},
		{&Integer{Value: 0}, false},
		{&Integer{Value: -1}, true},
		{&Float{Value: 0}, false},
		{&Float{Value: 0.1}, true},
		{&String{Value: ""}, false},
		{&String{Value: "x"}, true},
		{&Array{}, true},
		{NewDict(), true},
	}
	for _, tt := range tests {
		if got := isTruthy(tt.obj); got != tt.expected {
			t.Errorf("isTruthy(%s %s) = %v, want %v", tt.obj.Type(), tt.obj.Inspect(), got, tt.expected)
		}
	}
}

func TestBindings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		code     string
	}{
		{"let x := 5 x", "5", ""},
		{"mut x := 5 x := 6 x", "6", ""},
		{"y := 1 y := 2 y", "2", ""},
		{"let x := 5 x := 6", "", "STATE-0001"},
		{"const limit := 3 limit := 4", "", "STATE-0001"},
		{`x: int := 5 x := 7 x`, "7", ""},
		{`x: int := 5 x := "s"`, "", "TYPE-0002"},
		{`let s: string := 5`, "", "TYPE-0002"},
		{`mut n := 1 if true { n := 2 } n`, "2", ""},
		{`if true { inner := 1 } inner`, "", "UNDEF-0001"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, _ := testEval(t, tt.input)
			if tt.code != "" {
				expectError(t, result, tt.code)
				return
			}
			if result.Inspect() != tt.expected {
				t.Errorf("got %s, want %s", result.Inspect(), tt.expected)
			}
		})
	}
}

func TestImmutableHint(t *testing.T) {
	result, _ := testEval(t, "let total := 1 total := 2")
	errObj := expectError(t, result, "STATE-0001")
	if len(errObj.Hints) != 1 || !strings.Contains(errObj.Hints[0], "mut total := ...") {
		t.Errorf("hints = %v", errObj.Hints)
	}
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"func add(a, b) { return a + b } add(2, 3)", "5"},
		{"func fact(n) { if n <= 1 { return 1 } return n * fact(n - 1) } fact(5)", "120"},
		{"func nothing() { let x := 1 } nothing()", "null"},
		{"func early() { return } early()", "null"},
		{"func make() { let base := 10 func inner(x) { return x + base } return inner } let f := make() f(5)", "15"},
		{"func twice(f, x) { return f(f(x)) } func inc(n) { return n + 1 } twice(inc, 1)", "3"},
		{"func typed(n: int) -> int { return n * 2 } typed(4)", "8"},
		{"func shadow(x) { x := x + 1 return x } shadow(1)", "2"},
	}
	for _, tt := range tests {
		expectInspect(t, tt.input, tt.expected)
	}
}

func TestFunctionErrors(t *testing.T) {
	tests := []struct {
		input string
		code  string
	}{
		{"func add(a, b) { return a + b } add(1)", "ARITY-0001"},
		{`func f(n: int) { return n } f("s")`, "TYPE-0002"},
		{`func f() -> int { return "s" } f()`, "TYPE-0002"},
		{"let x := 5 x(1)", "TYPE-0003"},
		{"func loop_forever(n) { return loop_forever(n) } loop_forever(1)", "STATE-0005"},
		{"func f() { break } f()", "STATE-0002"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, _ := testEval(t, tt.input)
			expectError(t, result, tt.code)
		})
	}
}

func TestStructs(t *testing.T) {
	decl := "struct Point { x: int, y: int func sum() { return self.x + self.y } } "
	tests := []struct {
		input    string
		expected string
	}{
		{decl + "let p := Point { x: 1, y: 2 } p", "Point { x: 1, y: 2 }"},
		{decl + "let p := Point { x: 1, y: 2 } p.sum()", "3"},
		{decl + "let p := Point { x: 1, y: 2 } p.x := 10 p.sum()", "12"},
		{decl + "let p := Point { x: 1 } p.y", "null"},
		{decl + "let p := Point {} type(p)", "Point"},
		{decl + "let p := Point { x: 1, y: 2 } let q := Point { x: 1, y: 2 } p == q", "true"},
	}
	for _, tt := range tests {
		expectInspect(t, tt.input, tt.expected)
	}

	errors := []struct {
		input string
		code  string
	}{
		{decl + "let p := Point { x: 1, y: 2 } p.z := 1", "UNDEF-0003"},
		{decl + `let p := Point { x: "one", y: 2 }`, "TYPE-0002"},
		{decl + "let p := Point { z: 1 }", "UNDEF-0003"},
		{decl + "let p := Point { x: 1, y: 2 } p.missing", "UNDEF-0003"},
		{"let p := Missing { x: 1 }", "UNDEF-0001"},
	}
	for _, tt := range errors {
		result, _ := testEval(t, tt.input)
		expectError(t, result, tt.code)
	}
}

func TestEnumsAndMatch(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			`enum Color { Red, Green }
			let c := Color::Green
			match c { case Color::Red: { print("red") } case Green: { print("green") } }`,
			"green",
		},
		{
			`let r := Ok(42)
			match r { case Err(e): { print("err") } case Ok(v): { print(v) } }`,
			"42",
		},
		{
			`let r := Result::Err("bad")
			match r { case Result::Err(msg): { print(msg) } default: { print("other") } }`,
			"bad",
		},
		{
			`let r := Option::Some(1)
			match r { case Result::Some(v): { print("wrong base") } default: { print("default") } }`,
			"default",
		},
		{
			`match 5 { case Ok(v): { print("ok") } default: { print("d") } }`,
			"d",
		},
		{
			`let cmd := "go"
			match cmd { case stop: { print("stopping") } case go: { print("going") } }`,
			"going",
		},
		{
			`let pair := Point::At(1, 2)
			match pair { case At(x): { print(x, x_1) } }`,
			"1 2",
		},
		{
			`let n := None
			match n { case Some(v): { print(v) } case None: { print("none") } }`,
			"none",
		},
	}
	for _, tt := range tests {
		result, log := testEval(t, tt.input)
		if isError(result) {
			t.Errorf("unexpected error: %s", result.Inspect())
			continue
		}
		if log.String() != tt.expected {
			t.Errorf("output = %q, want %q", log.String(), tt.expected)
		}
	}

	result, _ := testEval(t, "enum Color { Red } Color::Blue")
	expectError(t, result, "UNDEF-0004")
}

func TestTaggedValues(t *testing.T) {
	expectInspect(t, "Result::Ok(1, 2)", "Result::Ok(1,2)")
	expectInspect(t, "Ok(1)", "Result::Ok(1)")
	expectInspect(t, "None", "Option::None")
	expectInspect(t, "type(Some(3))", "Option")
	expectInspect(t, "Ok(1) == Ok(1)", "true")
	expectInspect(t, "Ok(1) == Err(1)", "false")
}

func TestLoops(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"mut i := 0 mut total := 0 loop while i < 5 { i := i + 1 if i == 3 { continue } total := total + i } total", "12"},
		{"mut n := 0 loop { n := n + 1 if n >= 4 { break } } n", "4"},
		{"mut sum := 0 for x in [1, 2, 3] { sum := sum + x } sum", "6"},
		{"mut seen := 0 for i in 3 { seen := seen + i } seen", "3"},
		{`mut out := "" for ch in "abc" { out := ch + out } out`, "cba"},
		{`mut ks := "" for k in {"a": 1, "b": 2} { ks := ks + k } ks`, "ab"},
		{"func first_big(xs) { for x in xs { if x > 2 { return x } } return 0 } first_big([1, 5, 7])", "5"},
		{"mut count := 0 for x in [1, 2, 3, 4] { if x == 3 { break } count := count + 1 } count", "2"},
	}
	for _, tt := range tests {
		expectInspect(t, tt.input, tt.expected)
	}

	result, _ := testEval(t, "for x in true { }")
	expectError(t, result, "TYPE-0005")

	result, _ = testEval(t, "break")
	expectError(t, result, "STATE-0002")
}

func TestLoopCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	env := NewEnvironment().WithContext(ctx)
	result, _ := testEvalIn(t, env, "loop { }")
	expectError(t, result, "STATE-0004")

	// cancellation is not caught by try/except
	env = NewEnvironment().WithContext(ctx)
	result, _ = testEvalIn(t, env, `try { loop { } } except e { print("caught") }`)
	expectError(t, result, "STATE-0004")
}

func TestTryExcept(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`try { throw("boom") } except e { print(e) }`, "boom"},
		{`try { let x := 1 / 0 } except e { print(e) }`, "division by zero"},
		{`try { throw(Err(1)) } except e { print(type(e)) }`, "Result"},
		{`try { print("fine") } except e { print("never") }`, "fine"},
		{`func risky() { throw("deep") } try { risky() } except e { print("got " + e) }`, "got deep"},
	}
	for _, tt := range tests {
		result, log := testEval(t, tt.input)
		if isError(result) {
			t.Errorf("%q: unexpected error %s", tt.input, result.Inspect())
			continue
		}
		if log.String() != tt.expected {
			t.Errorf("%q printed %q, want %q", tt.input, log.String(), tt.expected)
		}
	}

	result, _ := testEval(t, `throw("uncaught")`)
	errObj := expectError(t, result, "USER-0001")
	if errObj.Message != "uncaught" {
		t.Errorf("message = %q", errObj.Message)
	}

	result, _ = testEval(t, `try { throw("a") } except e { throw("b") }`)
	errObj = expectError(t, result, "USER-0001")
	if errObj.Message != "b" {
		t.Errorf("handler error message = %q, want b", errObj.Message)
	}
}

func TestPrint(t *testing.T) {
	_, log := testEval(t, `print("a", 1, 2.5, 3.0, [1, "x"], {"k": true}) print()`)
	want := "a 1 2.5 3 [1, x] {\"k\": true}\n"
	if log.String() != want {
		t.Errorf("output = %q, want %q", log.String(), want)
	}
}

func TestInterpolation(t *testing.T) {
	expectInspect(t, `let name := "Ruff" let n := 2 "Hi ${name}, ${n + 1}!"`, "Hi Ruff, 3!")
	expectInspect(t, `let xs := [1, 2] "len=${len(xs)}"`, "len=2")

	result, _ := testEval(t, `"${missing}"`)
	expectError(t, result, "UNDEF-0001")
}

func TestCollections(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"let a := [1, 2, 3] a[1]", "2"},
		{"let a := [1, 2, 3] a[1] := 20 a", "[1, 20, 3]"},
		{`let d := {"a": 1, b: 2} d`, `{"a": 1, "b": 2}`},
		{`let d := {"a": 1, b: 2} d["a"]`, "1"},
		{`let d := {"a": 1, b: 2} d.b`, "2"},
		{`let d := {"a": 1} d["zz"]`, "null"},
		{`let d := {"a": 1} d["a"] := 5 d["c"] := 6 d`, `{"a": 5, "c": 6}`},
		{`let d := {"a": 1} d.b := 2 d`, `{"a": 1, "b": 2}`},
		{`let d := {1: "one", true: "yes"} d[1]`, "one"},
		{`"hello"[1]`, "e"},
	}
	for _, tt := range tests {
		expectInspect(t, tt.input, tt.expected)
	}

	errs := []struct {
		input string
		code  string
	}{
		{"let a := [1] a[5]", "INDEX-0001"},
		{"let a := [1] a[5] := 1", "INDEX-0001"},
		{`let a := [1] a["x"]`, "TYPE-0004"},
		{"let n := 5 n[0]", "TYPE-0004"},
		{`let d := {[1]: 2}`, "TYPE-0004"},
	}
	for _, tt := range errs {
		result, _ := testEval(t, tt.input)
		expectError(t, result, tt.code)
	}
}

func TestMethodCalls(t *testing.T) {
	expectInspect(t, "let n := 0 - 5 n.abs()", "5")
	expectInspect(t, `"hello".upper()`, "HELLO")
	expectInspect(t, "[1, 2].len()", "2")
	expectInspect(t, `"a,b".split(",").join("-")`, "a-b")
	expectInspect(t, `let d := {"f": len} d.f("abc")`, "3")

	result, _ := testEval(t, "let n := 5 n.nope()")
	expectError(t, result, "UNDEF-0002")
}

func TestUndefinedIdentifierHint(t *testing.T) {
	result, _ := testEval(t, "let count := 1 cont")
	errObj := expectError(t, result, "UNDEF-0001")
	if len(errObj.Hints) == 0 || errObj.Hints[0] != "Did you mean `count`?" {
		t.Errorf("hints = %v", errObj.Hints)
	}
}

func TestTestStatementsAreSkipped(t *testing.T) {
	result, log := testEval(t, `test "fails" { throw("no") } test_group "g" { test "x" { print("x") } } print("done")`)
	if isError(result) {
		t.Fatalf("unexpected error: %s", result.Inspect())
	}
	if log.String() != "done" {
		t.Errorf("output = %q", log.String())
	}
}

func TestImports(t *testing.T) {
	result, _ := testEval(t, "import util")
	expectError(t, result, "IMPORT-0003")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "util.ruff"), []byte("export func double(x) { return x * 2 }"), 0o644); err != nil {
		t.Fatal(err)
	}

	newEnv := func() *Environment {
		env := NewEnvironment()
		env.Loader = module.NewLoader(dir)
		return env
	}

	result, _ = testEvalIn(t, newEnv(), "import util type(util)")
	if result.Inspect() != "module" {
		t.Errorf("type(util) = %s", result.Inspect())
	}

	result, _ = testEvalIn(t, newEnv(), "from util import double")
	errObj := expectError(t, result, "IMPORT-0002")
	if !strings.Contains(errObj.Message, "double") {
		t.Errorf("message = %q", errObj.Message)
	}

	result, _ = testEvalIn(t, newEnv(), "import missing")
	expectError(t, result, "IMPORT-0001")
}

func TestExportEvaluatesDeclaration(t *testing.T) {
	expectInspect(t, "export let x := 3 x", "3")
	expectInspect(t, "export func f() { return 1 } f()", "1")
}

func TestFilenameOnErrors(t *testing.T) {
	env := NewEnvironment()
	env.Filename = "main.ruff"
	result, _ := testEvalIn(t, env, "1 / 0")
	errObj := expectError(t, result, "OP-0001")
	if errObj.File != "main.ruff" {
		t.Errorf("File = %q", errObj.File)
	}
	if got := errObj.ToRuffError().String(); !strings.HasPrefix(got, "main.ruff: line 1") {
		t.Errorf("ToRuffError().String() = %q", got)
	}
}

func TestEvalTokensDirectly(t *testing.T) {
	stmts := parser.Parse(lexer.Tokenize("let a := 2 a * 21"))
	env := NewEnvironment()
	var result Object
	for _, s := range stmts {
		result = Eval(s, env)
	}
	if result.Inspect() != "42" {
		t.Errorf("got %s, want 42", result.Inspect())
	}
}
