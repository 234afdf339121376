package evaluator

import (
	"fmt"

	"lox/internal/ast"
	"lox/internal/object"
	"lox/internal/token"
)

// Function is a declared function together with the environment it was
// declared in.
type Function struct {
	Name       string
	Parameters []token.Token
	Body       []ast.Statement
	Closure    *object.Environment
}

func (f *Function) Type() object.ObjectType { return object.FUNCTION_OBJ }
func (f *Function) Inspect() string         { return fmt.Sprintf("<fn %s>", f.Name) }
func (f *Function) Arity() int              { return len(f.Parameters) }

// Call binds the arguments in a fresh scope enclosed by the closure, not by
// the caller's scope. A body that finishes without `return` yields nil.
func (f *Function) Call(ctx object.EvaluatorContext, args []object.Object) (object.Object, error) {
	e, ok := ctx.(*Evaluator)
	if !ok {
		panic(fmt.Sprintf("function %s called outside the evaluator", f.Name))
	}

	env := object.NewEnclosedEnvironment(f.Closure)
	for i, param := range f.Parameters {
		env.Define(param.Lexeme, args[i])
	}

	result, err := e.evalBlockStatement(f.Body, env)
	if err != nil {
		return nil, err
	}
	if rv, ok := result.(*object.ReturnValue); ok {
		return rv.Value, nil
	}
	return object.NIL, nil
}
