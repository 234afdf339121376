package ast

import (
	"testing"

	"lox/internal/object"
	"lox/internal/token"
)

func TestSprintExpression(t *testing.T) {
	expr := &Binary{
		Token:    token.Token{Type: token.ASTERISK, Lexeme: "*", Line: 1},
		Operator: "*",
		Left: &Unary{
			Token:    token.Token{Type: token.MINUS, Lexeme: "-", Line: 1},
			Operator: "-",
			Right:    &Literal{Value: &object.Number{Value: 123}},
		},
		Right: &Grouping{
			Expression: &Literal{Value: &object.Number{Value: 45.67}},
		},
	}

	if got := Sprint(expr); got != "(* (- 123) (group 45.67))" {
		t.Errorf("Sprint() = %q", got)
	}
}

func TestSprintStatements(t *testing.T) {
	name := token.Token{Type: token.IDENT, Lexeme: "a", Line: 1}
	program := &Program{Statements: []Statement{
		&VarStatement{Name: name, Initializer: &Literal{Value: &object.String{Value: "hi"}}},
		&PrintStatement{Expression: &Variable{Token: name, Name: "a"}},
		&ReturnStatement{},
	}}

	expected := "(var a \"hi\")\n(print a)\n(return)"
	if got := program.String(); got != expected {
		t.Errorf("String() = %q, want %q", got, expected)
	}
}
