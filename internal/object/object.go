package object

import (
	"fmt"
	"lox/internal/token"
	"math"
	"strconv"
)

const (
	NIL_OBJ     = "NIL"
	BOOLEAN_OBJ = "BOOLEAN"
	NUMBER_OBJ  = "NUMBER"
	STRING_OBJ  = "STRING"

	FUNCTION_OBJ = "FUNCTION"
	FOREIGN_OBJ  = "FOREIGN"

	RETURN_VALUE_OBJ = "RETURN_VALUE"
)

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

// EvaluatorContext is what a callable sees of the interpreter invoking it.
type EvaluatorContext interface {
	CurrentEnv() *Environment
}

// Callable is implemented by declared functions and foreign (native) functions.
type Callable interface {
	Object
	Arity() int
	Call(ctx EvaluatorContext, args []Object) (Object, error)
}

type ForeignFunction func(ctx EvaluatorContext, args ...Object) (Object, error)

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return FormatNumber(n.Value) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

// ReturnValue carries a `return` out of nested statements up to the call
// that is executing the function body.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

type Foreign struct {
	Name   string
	Params int
	Fn     ForeignFunction
}

func (f *Foreign) Type() ObjectType { return FOREIGN_OBJ }
func (f *Foreign) Inspect() string  { return "<native fn>" }
func (f *Foreign) Arity() int       { return f.Params }
func (f *Foreign) Call(ctx EvaluatorContext, args []Object) (Object, error) {
	return f.Fn(ctx, args...)
}

// RuntimeError is raised while evaluating. Token locates the offending
// operator, name or call.
type RuntimeError struct {
	Token      token.Token
	Message    string
	StackTrace []*StackFrame // innermost call first
}

type StackFrame struct {
	Function string
	Line     int // line of the call expression
}

func NewRuntimeError(tok token.Token, format string, a ...any) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, a...)}
}

func (re *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] Runtime error at '%s': %s", re.Token.Line, re.Token.Lexeme, re.Message)
}

func NativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// IsTruthy treats nil and false as false and everything else as true.
func IsTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Nil:
		return false
	case *Boolean:
		return obj.Value
	default:
		return obj != nil
	}
}

// Equal compares values structurally. Values of different kinds are never
// equal; callables compare by identity. NaN equals NaN so that equality stays
// reflexive.
func Equal(a, b Object) bool {
	switch a := a.(type) {
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Boolean:
		other, ok := b.(*Boolean)
		return ok && a.Value == other.Value
	case *Number:
		other, ok := b.(*Number)
		return ok && (a.Value == other.Value || (math.IsNaN(a.Value) && math.IsNaN(other.Value)))
	case *String:
		other, ok := b.(*String)
		return ok && a.Value == other.Value
	default:
		return a == b
	}
}

// FormatNumber prints integral values without a fractional part as long as
// they fit without an exponent, and the shortest round-tripping text otherwise.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	abs := math.Abs(v)
	if abs < 1e21 && (v == math.Trunc(v) || abs >= 1e-6) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// TypeName is the user-facing name of a value's kind, used in error messages.
func TypeName(obj Object) string {
	switch obj.(type) {
	case *Nil:
		return "nil"
	case *Boolean:
		return "boolean"
	case *Number:
		return "number"
	case *String:
		return "string"
	case Callable:
		return "function"
	default:
		return string(obj.Type())
	}
}
