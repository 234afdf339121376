package evaluator

import (
	"time"

	"lox/internal/object"
)

var builtins = map[string]*object.Foreign{
	"clock": funcClock(),
}

// funcClock returns the wall clock in seconds since the Unix epoch.
func funcClock() *object.Foreign {
	return &object.Foreign{
		Name:   "clock",
		Params: 0,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			return &object.Number{Value: float64(time.Now().UnixNano()) / float64(time.Second)}, nil
		},
	}
}
