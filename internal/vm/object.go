package vm

import (
	"strings"

	"github.com/vk/loxgo/internal/bytecode"
)

// Object is implemented by all heap-backed values.
type Object interface {
	String() string
}

// String is a Lox string.
type String struct {
	Value string
}

func (s *String) String() string { return s.Value }

// List is a mutable Lox list.
type List struct {
	Items []Value
}

func (l *List) String() string {
	var out strings.Builder
	out.WriteByte('[')
	for i, item := range l.Items {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(item.String())
	}
	out.WriteByte(']')
	return out.String()
}

// Function is the runtime view of a compiled function: its prototype plus
// the import it was compiled in.
type Function struct {
	Name       string
	ChunkIndex bytecode.ChunkIndex
	Arity      int
	Import     *Import
}

// Closure is a function together with its captured variables.
type Closure struct {
	Function Function
	Upvalues []*Upvalue
}

func (c *Closure) String() string {
	if c.Function.Name == "" {
		return "<fn>"
	}
	return "<fn " + c.Function.Name + ">"
}

// Upvalue is a captured variable. While the variable is still live on the
// stack the upvalue is open and points at its slot; closing copies the
// value in.
type Upvalue struct {
	open   bool
	slot   int
	closed Value
}

// NewOpenUpvalue captures the stack slot at index.
func NewOpenUpvalue(slot int) *Upvalue {
	return &Upvalue{open: true, slot: slot}
}

// IsOpenAt reports whether the upvalue is open and points at slot.
func (u *Upvalue) IsOpenAt(slot int) bool {
	return u.open && u.slot == slot
}

// Close detaches the upvalue from the stack.
func (u *Upvalue) Close(value Value) {
	u.open = false
	u.closed = value
}

// NativeFn is the signature of built-in functions.
type NativeFn func(args []Value) (Value, error)

// NativeFunction is a function implemented in Go.
type NativeFunction struct {
	Name string
	Fn   NativeFn
}

func (n *NativeFunction) String() string { return "<native fn " + n.Name + ">" }

// Class is a runtime class. Inheritance copies the superclass methods in
// before the subclass defines its own.
type Class struct {
	Name    string
	Methods map[Symbol]Value
	Super   *Class
}

// NewClass returns a class with no methods.
func NewClass(name string) *Class {
	return &Class{Name: name, Methods: make(map[Symbol]Value)}
}

func (c *Class) String() string { return c.Name }

// Method looks up a method by symbol.
func (c *Class) Method(symbol Symbol) (Value, bool) {
	value, ok := c.Methods[symbol]
	return value, ok
}

// Instance is an object of a class.
type Instance struct {
	Class  *Class
	Fields map[Symbol]Value
}

// NewInstance returns a field-less instance of class.
func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[Symbol]Value)}
}

func (i *Instance) String() string { return i.Class.Name + " instance" }

// BoundMethod pairs a receiver with a method value.
type BoundMethod struct {
	Receiver Value
	Method   Value
}

func (b *BoundMethod) String() string { return b.Method.String() }

// Import is a loaded module: its compiled form plus the globals its
// top-level code defined. Identifier and string constants are resolved
// once at load time.
type Import struct {
	Name    string
	Module  *bytecode.Module
	Globals map[Symbol]Value

	symbols []Symbol
	strings []*String
}

// NewImport resolves the module's constant pools against the interner.
func NewImport(name string, module *bytecode.Module, interner *Interner) *Import {
	symbols := make([]Symbol, len(module.Identifiers()))
	for i, identifier := range module.Identifiers() {
		symbols[i] = interner.Intern(identifier)
	}

	stringValues := make([]*String, len(module.Strings()))
	for i, value := range module.Strings() {
		stringValues[i] = &String{Value: value}
	}

	return &Import{
		Name:    name,
		Module:  module,
		Globals: make(map[Symbol]Value),
		symbols: symbols,
		strings: stringValues,
	}
}

func (imp *Import) String() string { return "<import " + imp.Name + ">" }

// Symbol returns the interned symbol for an identifier constant.
func (imp *Import) Symbol(index bytecode.IdentifierIndex) Symbol {
	return imp.symbols[index]
}

// StringConstant returns the shared string object for a string constant.
func (imp *Import) StringConstant(index bytecode.ConstantIndex) *String {
	return imp.strings[index]
}

// Global looks up a global by symbol.
func (imp *Import) Global(symbol Symbol) (Value, bool) {
	value, ok := imp.Globals[symbol]
	return value, ok
}

// SetGlobal defines or overwrites a global.
func (imp *Import) SetGlobal(symbol Symbol, value Value) {
	imp.Globals[symbol] = value
}

// CopyGlobalsTo copies this import's globals into other. Used to seed new
// imports with the built-in functions.
func (imp *Import) CopyGlobalsTo(other *Import) {
	for symbol, value := range imp.Globals {
		other.Globals[symbol] = value
	}
}
