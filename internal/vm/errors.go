package vm

import "errors"

// Runtime error categories. Dispatch wraps these with the offending
// name or value so errors.Is still matches the category.
var (
	ErrStackEmpty        = errors.New("stack empty")
	ErrFrameEmpty        = errors.New("call frame stack empty")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrGlobalNotDefined  = errors.New("undefined variable")
	ErrInvalidCallee     = errors.New("can only call functions and classes")
	ErrIncorrectArity    = errors.New("incorrect number of arguments")
	ErrUndefinedProperty = errors.New("undefined property")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrUnknownImport     = errors.New("unknown import")
	ErrUnexpectedValue   = errors.New("unexpected value")
)
