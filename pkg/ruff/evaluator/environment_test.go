package evaluator

import (
	"context"
	"strings"
	"testing"
)

func TestEnvironmentScopes(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("a", &Integer{Value: 1}, true)
	outer.Define("k", &Integer{Value: 9}, false)

	inner := NewEnclosedEnvironment(outer)
	inner.Define("b", &Integer{Value: 2}, false)

	if v, ok := inner.Get("a"); !ok || v.Inspect() != "1" {
		t.Errorf("inner.Get(a) = %v, %v", v, ok)
	}
	if _, ok := outer.Get("b"); ok {
		t.Error("outer sees inner binding")
	}

	if err := inner.Assign("a", &Integer{Value: 5}); err != nil {
		t.Fatalf("Assign(a): %s", err.Message)
	}
	if v, _ := outer.Get("a"); v.Inspect() != "5" {
		t.Errorf("assignment did not reach the outer scope: a = %s", v.Inspect())
	}

	if err := inner.Assign("k", &Integer{Value: 0}); err == nil || err.Code != "STATE-0001" {
		t.Errorf("Assign to immutable = %v", err)
	}

	if err := inner.Assign("fresh", TRUE); err != nil {
		t.Fatal(err.Message)
	}
	if _, ok := outer.Get("fresh"); ok {
		t.Error("new binding leaked to the outer scope")
	}

	if got := strings.Join(inner.Names(), ","); got != "a,b,fresh,k" {
		t.Errorf("Names() = %s", got)
	}
	if got := strings.Join(inner.LocalNames(), ","); got != "b,fresh" {
		t.Errorf("LocalNames() = %s", got)
	}
}

func TestEnvironmentTypedBindings(t *testing.T) {
	env := NewEnvironment()
	env.DefineTyped("n", &Integer{Value: 1}, true, "int")

	if err := env.Assign("n", &Integer{Value: 2}); err != nil {
		t.Errorf("Assign(int) = %s", err.Message)
	}
	err := env.Assign("n", &Float{Value: 2})
	if err == nil || err.Code != "TYPE-0002" {
		t.Fatalf("Assign(float) = %v", err)
	}
	if err.Message != "type mismatch for 'n': expected int, got float" {
		t.Errorf("message = %q", err.Message)
	}

	// redefining drops the declared type
	env.Define("n", &String{Value: "s"}, true)
	if err := env.Assign("n", &Float{Value: 1}); err != nil {
		t.Errorf("Assign after Define = %s", err.Message)
	}
}

func TestEnclosedEnvironmentInheritsSettings(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outer := NewEnvironment().WithContext(ctx)
	outer.Filename = "x.ruff"
	outer.Logger = &captureLogger{}
	outer.DBMaxOpen = 9

	inner := NewEnclosedEnvironment(outer)
	if inner.Filename != "x.ruff" || inner.Logger != outer.Logger || inner.DBMaxOpen != 9 || inner.Context() != ctx {
		t.Errorf("enclosed environment did not inherit settings")
	}
}

func TestObjectInspect(t *testing.T) {
	dict := NewDict()
	dict.Set(&String{Value: "b"}, &Integer{Value: 1})
	dict.Set(&Integer{Value: 2}, &String{Value: "two"})
	dict.Set(&String{Value: "b"}, &Integer{Value: 3})

	point := &StructType{Name: "P"}
	tests := []struct {
		obj      Object
		expected string
	}{
		{&Integer{Value: -4}, "-4"},
		{&Float{Value: 3}, "3"},
		{&Float{Value: 0.25}, "0.25"},
		{&String{Value: "raw"}, "raw"},
		{NULL, "null"},
		{&Array{Elements: []Object{&String{Value: "a"}, &Integer{Value: 1}}}, "[a, 1]"},
		{dict, `{"b": 3, 2: two}`},
		{&Tagged{Base: "Result", Variant: "Ok", Values: []Object{&Integer{Value: 1}, &Integer{Value: 2}}}, "Result::Ok(1,2)"},
		{&Tagged{Base: "Color", Variant: "Red"}, "Color::Red"},
		{&Tagged{Variant: "Ok", Values: []Object{TRUE}}, "Ok(true)"},
		{&StructInstance{Struct: point, Fields: map[string]Object{"y": &Integer{Value: 2}, "x": &Integer{Value: 1}}}, "P { x: 1, y: 2 }"},
		{&Error{Message: "boom"}, "Error: boom"},
		{&Error{Message: "boom", Line: 3, Column: 7}, "line 3, column 7: boom"},
	}
	for _, tt := range tests {
		if got := tt.obj.Inspect(); got != tt.expected {
			t.Errorf("Inspect() = %q, want %q", got, tt.expected)
		}
	}

	if dict.Len() != 2 {
		t.Errorf("Len() = %d, want 2", dict.Len())
	}
	if dict.Set(&Array{}, NULL) {
		t.Error("Set accepted an unhashable key")
	}
}
