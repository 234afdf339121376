package evaluator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"lox/internal/ast"
	"lox/internal/object"
)

// MaxCallDepth bounds recursion so runaway programs fail with a runtime
// error instead of exhausting the Go stack.
const MaxCallDepth = 10000

type Evaluator struct {
	envStack []*object.Environment // Environment stack encapsulated in an evaluator struct
	globals  *object.Environment
	out      io.Writer
	depth    int
}

// New creates an evaluator whose global scope holds the builtins. print
// statements write to out.
func New(out io.Writer) *Evaluator {
	globals := object.NewEnvironment()
	for name, fn := range builtins {
		globals.Define(name, fn)
	}
	e := &Evaluator{globals: globals, out: out}
	e.PushEnv(globals)
	return e
}

func (e *Evaluator) PushEnv(env *object.Environment) {
	e.envStack = append(e.envStack, env)
}

func (e *Evaluator) CurrentEnv() *object.Environment {
	// Access the current environment from the top frame
	if len(e.envStack) == 0 {
		panic("Environment stack is empty in the current frame")
	}
	return e.envStack[len(e.envStack)-1]
}

func (e *Evaluator) PopEnv() {
	if len(e.envStack) <= 1 {
		panic("Attempted to pop the global environment")
	}
	e.envStack = e.envStack[:len(e.envStack)-1]
}

// Interpret executes statements in order. The first runtime error stops
// execution and is returned; the environment is back at the global scope
// by then.
func (e *Evaluator) Interpret(statements []ast.Statement) error {
	for _, statement := range statements {
		if _, err := e.Eval(statement); err != nil {
			return err
		}
	}
	return nil
}

// Eval executes statements, which yield nil or a *object.ReturnValue, and
// evaluates expressions to their value.
func (e *Evaluator) Eval(node ast.Node) (object.Object, error) {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return nil, e.Interpret(node.Statements)

	case *ast.ExpressionStatement:
		_, err := e.Eval(node.Expression)
		return nil, err

	case *ast.PrintStatement:
		val, err := e.Eval(node.Expression)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(e.out, val.Inspect())
		return nil, nil

	case *ast.VarStatement:
		var val object.Object = object.NIL
		if node.Initializer != nil {
			var err error
			if val, err = e.Eval(node.Initializer); err != nil {
				return nil, err
			}
		}
		e.CurrentEnv().Define(node.Name.Lexeme, val)
		return nil, nil

	case *ast.BlockStatement:
		return e.evalBlockStatement(node.Statements, object.NewEnclosedEnvironment(e.CurrentEnv()))

	case *ast.IfStatement:
		return e.evalIfStatement(node)

	case *ast.WhileStatement:
		return e.evalWhileStatement(node)

	case *ast.FunctionStatement:
		fn := &Function{
			Name:       node.Name.Lexeme,
			Parameters: node.Parameters,
			Body:       node.Body,
			Closure:    e.CurrentEnv(),
		}
		e.CurrentEnv().Define(fn.Name, fn)
		return nil, nil

	case *ast.ReturnStatement:
		var val object.Object = object.NIL
		if node.ReturnValue != nil {
			var err error
			if val, err = e.Eval(node.ReturnValue); err != nil {
				return nil, err
			}
		}
		return &object.ReturnValue{Value: val}, nil

	// Expressions
	case *ast.Literal:
		return node.Value, nil

	case *ast.Grouping:
		return e.Eval(node.Expression)

	case *ast.Variable:
		if val, ok := e.CurrentEnv().Get(node.Name); ok {
			return val, nil
		}
		return nil, object.NewRuntimeError(node.Token, "undefined variable '%s'", node.Name)

	case *ast.Assign:
		val, err := e.Eval(node.Value)
		if err != nil {
			return nil, err
		}
		if err := e.CurrentEnv().Assign(node.Name, val); err != nil {
			if errors.Is(err, object.ErrUndefined) {
				return nil, object.NewRuntimeError(node.Token, "can't assign to undefined variable '%s'", node.Name)
			}
			return nil, err
		}
		return val, nil

	case *ast.Logical:
		return e.evalLogicalExpression(node)

	case *ast.Unary:
		right, err := e.Eval(node.Right)
		if err != nil {
			return nil, err
		}
		return e.evalPrefixExpression(node, right)

	case *ast.Binary:
		left, err := e.Eval(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.Eval(node.Right)
		if err != nil {
			return nil, err
		}
		return e.evalInfixExpression(node, left, right)

	case *ast.Call:
		return e.evalCallExpression(node)
	}

	panic(fmt.Sprintf("unexpected node type %T", node))
}

// evalBlockStatement runs statements in env and restores the previous
// environment on every exit path.
func (e *Evaluator) evalBlockStatement(statements []ast.Statement, env *object.Environment) (object.Object, error) {
	e.PushEnv(env)
	defer e.PopEnv()

	for _, statement := range statements {
		result, err := e.Eval(statement)
		if err != nil {
			return nil, err
		}
		if rv, ok := result.(*object.ReturnValue); ok {
			return rv, nil
		}
	}

	return nil, nil
}

func (e *Evaluator) evalIfStatement(node *ast.IfStatement) (object.Object, error) {
	condition, err := e.Eval(node.Condition)
	if err != nil {
		return nil, err
	}

	if object.IsTruthy(condition) {
		return e.Eval(node.Consequence)
	} else if node.Alternative != nil {
		return e.Eval(node.Alternative)
	}
	return nil, nil
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement) (object.Object, error) {
	for {
		condition, err := e.Eval(node.Condition)
		if err != nil {
			return nil, err
		}
		if !object.IsTruthy(condition) {
			return nil, nil
		}

		result, err := e.Eval(node.Body)
		if err != nil {
			return nil, err
		}
		if rv, ok := result.(*object.ReturnValue); ok {
			return rv, nil
		}
	}
}

// evalLogicalExpression short-circuits and yields the deciding operand
// itself, not a boolean.
func (e *Evaluator) evalLogicalExpression(node *ast.Logical) (object.Object, error) {
	left, err := e.Eval(node.Left)
	if err != nil {
		return nil, err
	}

	if node.Operator == "or" {
		if object.IsTruthy(left) {
			return left, nil
		}
	} else if !object.IsTruthy(left) {
		return left, nil
	}

	return e.Eval(node.Right)
}

func (e *Evaluator) evalPrefixExpression(node *ast.Unary, right object.Object) (object.Object, error) {
	switch node.Operator {
	case "!":
		return object.NativeBoolToBooleanObject(!object.IsTruthy(right)), nil
	case "-":
		number, ok := right.(*object.Number)
		if !ok {
			return nil, object.NewRuntimeError(node.Token, "operand must be a number")
		}
		return &object.Number{Value: -number.Value}, nil
	}
	panic(fmt.Sprintf("unknown prefix operator %s", node.Operator))
}

func (e *Evaluator) evalInfixExpression(node *ast.Binary, left, right object.Object) (object.Object, error) {
	switch node.Operator {
	case "==":
		return object.NativeBoolToBooleanObject(object.Equal(left, right)), nil
	case "!=":
		return object.NativeBoolToBooleanObject(!object.Equal(left, right)), nil
	case "+":
		return e.evalPlusExpression(node, left, right)
	}

	l, lok := left.(*object.Number)
	r, rok := right.(*object.Number)
	if !lok || !rok {
		return nil, object.NewRuntimeError(node.Token, "operands of '%s' must be numbers", node.Operator)
	}

	switch node.Operator {
	case "-":
		return &object.Number{Value: l.Value - r.Value}, nil
	case "*":
		return &object.Number{Value: l.Value * r.Value}, nil
	case "/":
		// IEEE semantics: x/0 is ±Inf and 0/0 is NaN.
		return &object.Number{Value: l.Value / r.Value}, nil
	case ">":
		return object.NativeBoolToBooleanObject(l.Value > r.Value), nil
	case ">=":
		return object.NativeBoolToBooleanObject(l.Value >= r.Value), nil
	case "<":
		return object.NativeBoolToBooleanObject(l.Value < r.Value), nil
	case "<=":
		return object.NativeBoolToBooleanObject(l.Value <= r.Value), nil
	}
	panic(fmt.Sprintf("unknown infix operator %s", node.Operator))
}

// evalPlusExpression adds two numbers or concatenates two strings. Mixed
// operands are never coerced.
func (e *Evaluator) evalPlusExpression(node *ast.Binary, left, right object.Object) (object.Object, error) {
	switch l := left.(type) {
	case *object.Number:
		if r, ok := right.(*object.Number); ok {
			return &object.Number{Value: l.Value + r.Value}, nil
		}
	case *object.String:
		if r, ok := right.(*object.String); ok {
			return &object.String{Value: l.Value + r.Value}, nil
		}
	}
	return nil, object.NewRuntimeError(node.Token, "no valid operator for operand types: %s + %s",
		object.TypeName(left), object.TypeName(right))
}

func (e *Evaluator) evalExpressions(exps []ast.Expression) ([]object.Object, error) {
	result := make([]object.Object, 0, len(exps))

	for _, exp := range exps {
		evaluated, err := e.Eval(exp)
		if err != nil {
			return nil, err
		}
		result = append(result, evaluated)
	}

	return result, nil
}

func (e *Evaluator) evalCallExpression(node *ast.Call) (object.Object, error) {
	callee, err := e.Eval(node.Callee)
	if err != nil {
		return nil, err
	}

	args, err := e.evalExpressions(node.Arguments)
	if err != nil {
		return nil, err
	}

	fn, ok := callee.(object.Callable)
	if !ok {
		return nil, object.NewRuntimeError(node.Token, "can only call functions")
	}
	if len(args) != fn.Arity() {
		return nil, object.NewRuntimeError(node.Token, "expected %d arguments but got %d", fn.Arity(), len(args))
	}

	return e.applyFunction(node, fn, args)
}

func (e *Evaluator) applyFunction(node *ast.Call, fn object.Callable, args []object.Object) (object.Object, error) {
	if e.depth >= MaxCallDepth {
		return nil, object.NewRuntimeError(node.Token, "stack overflow")
	}
	e.depth++
	defer func() { e.depth-- }()

	slog.Debug("calling function",
		slog.String("function", fn.Inspect()),
		slog.Int("depth", e.depth),
		slog.Int("line", node.Token.Line))

	result, err := fn.Call(e, args)
	if err != nil {
		var rtErr *object.RuntimeError
		if errors.As(err, &rtErr) {
			rtErr.StackTrace = append(rtErr.StackTrace, &object.StackFrame{
				Function: functionName(fn),
				Line:     node.Token.Line,
			})
		}
		return nil, err
	}
	return result, nil
}

func functionName(fn object.Callable) string {
	switch fn := fn.(type) {
	case *Function:
		return fn.Name
	case *object.Foreign:
		return fn.Name
	default:
		return fn.Inspect()
	}
}
