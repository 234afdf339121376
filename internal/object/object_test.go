package object

import (
	"errors"
	"math"
	"testing"
)

func TestEqual(t *testing.T) {
	fn := &Foreign{Name: "f"}
	tests := []struct {
		name     string
		a, b     Object
		expected bool
	}{
		{"nil nil", NIL, &Nil{}, true},
		{"nil false", NIL, FALSE, false},
		{"bools", &Boolean{Value: true}, TRUE, true},
		{"numbers", &Number{Value: 1}, &Number{Value: 1}, true},
		{"different numbers", &Number{Value: 1}, &Number{Value: 2}, false},
		{"nan", &Number{Value: math.NaN()}, &Number{Value: math.NaN()}, true},
		{"strings", &String{Value: "a"}, &String{Value: "a"}, true},
		{"number and string", &Number{Value: 1}, &String{Value: "1"}, false},
		{"same callable", fn, fn, true},
		{"different callables", fn, &Foreign{Name: "f"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.expected {
				t.Errorf("Equal(%s, %s) = %t, want %t", tt.a.Inspect(), tt.b.Inspect(), got, tt.expected)
			}
		})
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		obj      Object
		expected bool
	}{
		{NIL, false},
		{FALSE, false},
		{TRUE, true},
		{&Number{Value: 0}, true},
		{&String{Value: ""}, true},
	}

	for _, tt := range tests {
		if got := IsTruthy(tt.obj); got != tt.expected {
			t.Errorf("IsTruthy(%s) = %t, want %t", tt.obj.Inspect(), got, tt.expected)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{3, "3"},
		{-0.5, "-0.5"},
		{2.5, "2.5"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{0.0000001, "1e-07"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.expected {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestEnvironmentShadowing(t *testing.T) {
	global := NewEnvironment()
	global.Define("x", &Number{Value: 3})

	inner := NewEnclosedEnvironment(global)
	inner.Define("x", &Number{Value: 4})

	got, ok := inner.Get("x")
	if !ok || got.Inspect() != "4" {
		t.Fatalf("inner x = %v, want 4", got)
	}
	got, _ = global.Get("x")
	if got.Inspect() != "3" {
		t.Fatalf("global x = %s, want 3", got.Inspect())
	}
	if _, ok := inner.Bindings["y"]; ok {
		t.Fatalf("inner scope holds an unbound name")
	}
}

func TestEnvironmentAssign(t *testing.T) {
	global := NewEnvironment()
	global.Define("a", NIL)
	inner := NewEnclosedEnvironment(global)

	if err := inner.Assign("a", &String{Value: "set"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := global.Get("a")
	if got.Inspect() != "set" {
		t.Errorf("a = %s, want set", got.Inspect())
	}
	if _, ok := inner.Bindings["a"]; ok {
		t.Errorf("assign created a binding in the inner scope")
	}

	err := inner.Assign("missing", TRUE)
	if !errors.Is(err, ErrUndefined) {
		t.Fatalf("expected ErrUndefined, got %v", err)
	}
	if _, ok := global.Get("missing"); ok {
		t.Errorf("failed assign created a binding")
	}
}
