package vm

import (
	"fmt"
	"time"
)

// registerNatives installs the built-in functions. Every module import
// receives a copy of these globals before its own code runs.
func (r *Runtime) registerNatives() {
	r.defineNative("clock", func(args []Value) (Value, error) {
		if len(args) != 0 {
			return Value{}, fmt.Errorf("%w: expected 0 arguments but got %d",
				ErrIncorrectArity, len(args))
		}
		return Number(time.Since(r.started).Seconds()), nil
	})

	r.defineNative("len", func(args []Value) (Value, error) {
		if len(args) != 1 {
			return Value{}, fmt.Errorf("%w: expected 1 argument but got %d",
				ErrIncorrectArity, len(args))
		}
		switch object := args[0].AsObject().(type) {
		case *String:
			return Number(float64(len(object.Value))), nil
		case *List:
			return Number(float64(len(object.Items))), nil
		default:
			return Value{}, fmt.Errorf("%w: len takes a string or a list", ErrUnexpectedValue)
		}
	})
}

func (r *Runtime) defineNative(name string, fn NativeFn) {
	symbol := r.interner.Intern(name)
	r.builtins.SetGlobal(symbol, FromObject(&NativeFunction{Name: name, Fn: fn}))
}
