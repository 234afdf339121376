package object

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrUndefined is returned by Assign when no scope on the chain binds the name.
var ErrUndefined = errors.New("undefined variable")

// Environment is one lexical scope. Lookups and assignments walk outward
// through Outer; definitions always land in the receiver.
type Environment struct {
	Bindings map[string]Object
	Outer    *Environment
}

// NewEnclosedEnvironment creates a scope nested in outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	return env
}

func NewEnvironment() *Environment {
	return &Environment{
		Bindings: make(map[string]Object),
	}
}

func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.Outer {
		if val, ok := env.Bindings[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Define binds name in this scope, replacing any earlier binding here and
// shadowing any binding in enclosing scopes.
func (e *Environment) Define(name string, val Object) {
	e.Bindings[name] = val
	slog.Debug("binding value",
		slog.Any("type", val.Type()),
		slog.String("name", name))
}

// Assign updates the nearest existing binding of name. It never creates one.
func (e *Environment) Assign(name string, val Object) error {
	for env := e; env != nil; env = env.Outer {
		if _, ok := env.Bindings[name]; ok {
			env.Bindings[name] = val
			slog.Debug("assigning bound value",
				slog.Any("type", val.Type()),
				slog.String("name", name))
			return nil
		}
	}
	return fmt.Errorf("%w '%s'", ErrUndefined, name)
}
