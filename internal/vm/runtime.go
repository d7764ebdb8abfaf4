package vm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vk/loxgo/internal/bytecode"
)

const (
	maxFrames = 1024

	// How many instructions run between context cancellation checks.
	cancelCheckInterval = 16384

	defaultImportCacheSize = 64
)

// ModuleLoader resolves an import path to a compiled module. Load returns
// an error wrapping ErrUnknownImport when the path cannot be resolved.
type ModuleLoader interface {
	Load(name string) (*bytecode.Module, error)
}

// Config configures a Runtime.
type Config struct {
	// Stdout receives print output. Defaults to os.Stdout.
	Stdout io.Writer
	// Loader resolves import statements. When nil every import fails.
	Loader ModuleLoader
	// ImportCacheSize bounds the loaded-import cache.
	ImportCacheSize int
	// Logger receives execution traces. Defaults to a discarding logger.
	Logger *slog.Logger
}

// CallFrame is one active function invocation. base indexes the stack slot
// holding the callee; locals follow it.
type CallFrame struct {
	closure *Closure
	ip      int
	base    int

	// imp, when set, is pushed as the frame's result. Used by import
	// frames so the import object becomes the value of the load.
	imp *Import
}

func (f *CallFrame) chunk() *bytecode.Chunk {
	return f.closure.Function.Import.Module.Chunk(f.closure.Function.ChunkIndex)
}

// Runtime executes bytecode modules.
type Runtime struct {
	stack        []Value
	frames       []*CallFrame
	openUpvalues []*Upvalue

	interner *Interner
	builtins *Import
	imports  *lru.Cache[string, *Import]

	initSymbol Symbol
	stdout     io.Writer
	loader     ModuleLoader
	logger     *slog.Logger
	started    time.Time
}

// New returns a runtime with the built-in functions registered.
func New(cfg Config) *Runtime {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.ImportCacheSize <= 0 {
		cfg.ImportCacheSize = defaultImportCacheSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cache, err := lru.New[string, *Import](cfg.ImportCacheSize)
	if err != nil {
		panic(fmt.Sprintf("vm: import cache: %v", err))
	}

	r := &Runtime{
		interner: NewInterner(),
		imports:  cache,
		stdout:   cfg.Stdout,
		loader:   cfg.Loader,
		logger:   cfg.Logger,
		started:  time.Now(),
	}
	r.initSymbol = r.interner.Intern("init")
	r.builtins = NewImport("builtins", bytecode.NewModule(), r.interner)
	r.registerNatives()
	return r
}

// Interner exposes the runtime's symbol interner.
func (r *Runtime) Interner() *Interner { return r.interner }

// Interpret runs a compiled module to completion.
func (r *Runtime) Interpret(ctx context.Context, name string, module *bytecode.Module) error {
	imp := NewImport(name, module, r.interner)
	if previous, ok := r.imports.Get(name); ok {
		// Re-interpreting under the same name (successive REPL lines)
		// shares the global table, so earlier definitions stay visible.
		imp.Globals = previous.Globals
	} else {
		r.builtins.CopyGlobalsTo(imp)
	}
	r.imports.Add(name, imp)

	r.stack = r.stack[:0]
	r.frames = r.frames[:0]
	r.openUpvalues = r.openUpvalues[:0]

	closure := &Closure{Function: Function{Name: name, ChunkIndex: 0, Import: imp}}
	r.push(FromObject(imp))
	r.frames = append(r.frames, &CallFrame{closure: closure, base: 0})

	r.logger.Debug("interpreting module", "module", name, "chunks", len(module.Chunks()))
	start := time.Now()
	err := r.run(ctx)
	r.logger.Debug("module finished", "module", name, "duration", time.Since(start), "err", err)
	return err
}

func (r *Runtime) currentFrame() *CallFrame {
	return r.frames[len(r.frames)-1]
}

func (r *Runtime) push(value Value) {
	r.stack = append(r.stack, value)
}

func (r *Runtime) pop() (Value, error) {
	if len(r.stack) == 0 {
		return Value{}, ErrStackEmpty
	}
	value := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	return value, nil
}

func (r *Runtime) peek(distance int) Value {
	return r.stack[len(r.stack)-1-distance]
}

func (r *Runtime) captureUpvalue(slot int) *Upvalue {
	for _, upvalue := range r.openUpvalues {
		if upvalue.IsOpenAt(slot) {
			return upvalue
		}
	}
	upvalue := NewOpenUpvalue(slot)
	r.openUpvalues = append(r.openUpvalues, upvalue)
	return upvalue
}

// closeUpvalues closes every open upvalue pointing at slot from or above.
func (r *Runtime) closeUpvalues(from int) {
	remaining := r.openUpvalues[:0]
	for _, upvalue := range r.openUpvalues {
		if upvalue.open && upvalue.slot >= from {
			upvalue.Close(r.stack[upvalue.slot])
			continue
		}
		remaining = append(remaining, upvalue)
	}
	r.openUpvalues = remaining
}

func (r *Runtime) callValue(callee Value, arity int) error {
	switch object := callee.AsObject().(type) {
	case *Closure:
		return r.callClosure(object, arity)
	case *NativeFunction:
		args := make([]Value, arity)
		copy(args, r.stack[len(r.stack)-arity:])
		result, err := object.Fn(args)
		if err != nil {
			return fmt.Errorf("%s: %w", object.Name, err)
		}
		r.stack = r.stack[:len(r.stack)-arity-1]
		r.push(result)
		return nil
	case *Class:
		instance := NewInstance(object)
		r.stack[len(r.stack)-1-arity] = FromObject(instance)
		if init, ok := object.Method(r.initSymbol); ok {
			return r.callValue(init, arity)
		}
		if arity != 0 {
			return fmt.Errorf("%w: expected 0 arguments but got %d", ErrIncorrectArity, arity)
		}
		return nil
	case *BoundMethod:
		r.stack[len(r.stack)-1-arity] = object.Receiver
		return r.callValue(object.Method, arity)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidCallee, callee)
	}
}

func (r *Runtime) callClosure(closure *Closure, arity int) error {
	if arity != closure.Function.Arity {
		return fmt.Errorf("%w: expected %d arguments but got %d",
			ErrIncorrectArity, closure.Function.Arity, arity)
	}
	if len(r.frames) >= maxFrames {
		return ErrStackOverflow
	}
	r.frames = append(r.frames, &CallFrame{
		closure: closure,
		base:    len(r.stack) - arity - 1,
	})
	return nil
}

// loadImport returns the import object for name, running the module's
// top-level code first on a cache miss.
func (r *Runtime) loadImport(name string) error {
	if cached, ok := r.imports.Get(name); ok {
		r.push(FromObject(cached))
		return nil
	}
	if r.loader == nil {
		return fmt.Errorf("%w: %q", ErrUnknownImport, name)
	}

	module, err := r.loader.Load(name)
	if err != nil {
		return fmt.Errorf("import %q: %w", name, err)
	}

	imp := NewImport(name, module, r.interner)
	r.builtins.CopyGlobalsTo(imp)
	r.imports.Add(name, imp)
	r.logger.Debug("loaded import", "module", name)

	if len(r.frames) >= maxFrames {
		return ErrStackOverflow
	}
	closure := &Closure{Function: Function{Name: name, ChunkIndex: 0, Import: imp}}
	r.push(FromObject(imp))
	r.frames = append(r.frames, &CallFrame{
		closure: closure,
		base:    len(r.stack) - 1,
		imp:     imp,
	})
	return nil
}

func (r *Runtime) run(ctx context.Context) error {
	var ticks int

	for {
		ticks++
		if ticks%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("execution interrupted: %w", err)
			}
		}

		if len(r.frames) == 0 {
			return ErrFrameEmpty
		}
		frame := r.currentFrame()
		chunk := frame.chunk()
		imp := frame.closure.Function.Import

		op := bytecode.Op(chunk.GetU8(frame.ip))
		frame.ip++

		switch op {
		case bytecode.OpNil:
			r.push(Nil())
		case bytecode.OpTrue:
			r.push(Bool(true))
		case bytecode.OpFalse:
			r.push(Bool(false))

		case bytecode.OpNumber:
			index := int(chunk.GetU16(frame.ip))
			frame.ip += 2
			r.push(Number(imp.Module.Number(index)))

		case bytecode.OpString:
			index := int(chunk.GetU16(frame.ip))
			frame.ip += 2
			r.push(FromObject(imp.StringConstant(index)))

		case bytecode.OpPop:
			if _, err := r.pop(); err != nil {
				return err
			}

		case bytecode.OpPrint:
			value, err := r.pop()
			if err != nil {
				return err
			}
			fmt.Fprintln(r.stdout, value)

		case bytecode.OpNot:
			value, err := r.pop()
			if err != nil {
				return err
			}
			r.push(Bool(value.IsFalsey()))

		case bytecode.OpNegate:
			value, err := r.pop()
			if err != nil {
				return err
			}
			if !value.IsNumber() {
				return fmt.Errorf("%w: operand must be a number", ErrUnexpectedValue)
			}
			r.push(Number(-value.AsNumber()))

		case bytecode.OpAdd:
			b, err := r.pop()
			if err != nil {
				return err
			}
			a, err := r.pop()
			if err != nil {
				return err
			}
			switch {
			case a.IsNumber() && b.IsNumber():
				r.push(Number(a.AsNumber() + b.AsNumber()))
			default:
				left, leftOK := asString(a)
				right, rightOK := asString(b)
				if leftOK && rightOK {
					r.push(FromObject(&String{Value: left.Value + right.Value}))
					break
				}
				return fmt.Errorf("%w: operands must be two numbers or two strings", ErrUnexpectedValue)
			}

		case bytecode.OpSubtract, bytecode.OpMultiply, bytecode.OpDivide,
			bytecode.OpGreater, bytecode.OpLess:
			b, err := r.pop()
			if err != nil {
				return err
			}
			a, err := r.pop()
			if err != nil {
				return err
			}
			if !a.IsNumber() || !b.IsNumber() {
				return fmt.Errorf("%w: operands must be numbers", ErrUnexpectedValue)
			}
			switch op {
			case bytecode.OpSubtract:
				r.push(Number(a.AsNumber() - b.AsNumber()))
			case bytecode.OpMultiply:
				r.push(Number(a.AsNumber() * b.AsNumber()))
			case bytecode.OpDivide:
				r.push(Number(a.AsNumber() / b.AsNumber()))
			case bytecode.OpGreater:
				r.push(Bool(a.AsNumber() > b.AsNumber()))
			case bytecode.OpLess:
				r.push(Bool(a.AsNumber() < b.AsNumber()))
			}

		case bytecode.OpEqual:
			b, err := r.pop()
			if err != nil {
				return err
			}
			a, err := r.pop()
			if err != nil {
				return err
			}
			r.push(Bool(a.Equals(b)))

		case bytecode.OpJump:
			relative := int(chunk.GetI16(frame.ip))
			frame.ip += 2
			frame.ip += relative

		case bytecode.OpJumpIfFalse:
			relative := int(chunk.GetI16(frame.ip))
			frame.ip += 2
			if r.peek(0).IsFalsey() {
				frame.ip += relative
			}

		case bytecode.OpDefineGlobal:
			symbol := imp.Symbol(int(chunk.GetU32(frame.ip)))
			frame.ip += 4
			value, err := r.pop()
			if err != nil {
				return err
			}
			imp.SetGlobal(symbol, value)

		case bytecode.OpGetGlobal:
			index := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			value, ok := imp.Global(imp.Symbol(index))
			if !ok {
				return fmt.Errorf("%w '%s'", ErrGlobalNotDefined, imp.Module.Identifier(index))
			}
			r.push(value)

		case bytecode.OpSetGlobal:
			index := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			symbol := imp.Symbol(index)
			if _, ok := imp.Global(symbol); !ok {
				return fmt.Errorf("%w '%s'", ErrGlobalNotDefined, imp.Module.Identifier(index))
			}
			imp.SetGlobal(symbol, r.peek(0))

		case bytecode.OpGetLocal:
			slot := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			r.push(r.stack[frame.base+slot])

		case bytecode.OpSetLocal:
			slot := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			r.stack[frame.base+slot] = r.peek(0)

		case bytecode.OpGetUpvalue:
			index := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			upvalue := frame.closure.Upvalues[index]
			if upvalue.open {
				r.push(r.stack[upvalue.slot])
			} else {
				r.push(upvalue.closed)
			}

		case bytecode.OpSetUpvalue:
			index := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			upvalue := frame.closure.Upvalues[index]
			if upvalue.open {
				r.stack[upvalue.slot] = r.peek(0)
			} else {
				upvalue.closed = r.peek(0)
			}

		case bytecode.OpCloseUpvalue:
			r.closeUpvalues(len(r.stack) - 1)
			if _, err := r.pop(); err != nil {
				return err
			}

		case bytecode.OpClosure:
			index := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			prototype := imp.Module.Closure(index)

			upvalues := make([]*Upvalue, len(prototype.Upvalues))
			for i, upvalue := range prototype.Upvalues {
				if upvalue.Kind == bytecode.UpvalueLocal {
					upvalues[i] = r.captureUpvalue(frame.base + upvalue.Index)
				} else {
					upvalues[i] = frame.closure.Upvalues[upvalue.Index]
				}
			}
			r.push(FromObject(&Closure{
				Function: Function{
					Name:       prototype.Function.Name,
					ChunkIndex: prototype.Function.ChunkIndex,
					Arity:      prototype.Function.Arity,
					Import:     imp,
				},
				Upvalues: upvalues,
			}))

		case bytecode.OpCall:
			arity := int(chunk.GetU8(frame.ip))
			frame.ip++
			if err := r.callValue(r.peek(arity), arity); err != nil {
				return err
			}

		case bytecode.OpInvoke:
			arity := int(chunk.GetU8(frame.ip))
			frame.ip++
			index := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			if err := r.invoke(imp, index, arity); err != nil {
				return err
			}

		case bytecode.OpReturn:
			result, err := r.pop()
			if err != nil {
				return err
			}
			finished := r.frames[len(r.frames)-1]
			r.frames = r.frames[:len(r.frames)-1]
			if len(r.frames) == 0 {
				return ErrFrameEmpty
			}
			r.closeUpvalues(finished.base)
			r.stack = r.stack[:finished.base]
			r.push(result)

		case bytecode.OpReturnTop:
			finished := r.frames[len(r.frames)-1]
			r.frames = r.frames[:len(r.frames)-1]
			r.closeUpvalues(finished.base)
			r.stack = r.stack[:finished.base]
			if finished.imp != nil {
				r.push(FromObject(finished.imp))
			}
			if len(r.frames) == 0 {
				return nil
			}

		case bytecode.OpClass:
			index := int(chunk.GetU8(frame.ip))
			frame.ip++
			r.push(FromObject(NewClass(imp.Module.Class(index).Name)))

		case bytecode.OpMethod:
			symbol := imp.Symbol(int(chunk.GetU32(frame.ip)))
			frame.ip += 4
			method, err := r.pop()
			if err != nil {
				return err
			}
			class, ok := r.peek(0).AsObject().(*Class)
			if !ok {
				return fmt.Errorf("%w: method target is not a class", ErrUnexpectedValue)
			}
			class.Methods[symbol] = method

		case bytecode.OpInherit:
			class, ok := r.peek(0).AsObject().(*Class)
			if !ok {
				return fmt.Errorf("%w: inherit target is not a class", ErrUnexpectedValue)
			}
			super, ok := r.peek(1).AsObject().(*Class)
			if !ok {
				return fmt.Errorf("%w: superclass must be a class", ErrUnexpectedValue)
			}
			for symbol, method := range super.Methods {
				class.Methods[symbol] = method
			}
			class.Super = super

		case bytecode.OpGetSuper:
			index := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			superValue, err := r.pop()
			if err != nil {
				return err
			}
			receiver, err := r.pop()
			if err != nil {
				return err
			}
			super, ok := superValue.AsObject().(*Class)
			if !ok {
				return fmt.Errorf("%w: superclass must be a class", ErrUnexpectedValue)
			}
			method, ok := super.Method(imp.Symbol(index))
			if !ok {
				return fmt.Errorf("%w '%s'", ErrUndefinedProperty, imp.Module.Identifier(index))
			}
			r.push(FromObject(&BoundMethod{Receiver: receiver, Method: method}))

		case bytecode.OpGetProperty:
			index := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			if err := r.getProperty(imp, index); err != nil {
				return err
			}

		case bytecode.OpSetProperty:
			index := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			value, err := r.pop()
			if err != nil {
				return err
			}
			target, err := r.pop()
			if err != nil {
				return err
			}
			instance, ok := target.AsObject().(*Instance)
			if !ok {
				return fmt.Errorf("%w: only instances have fields", ErrUnexpectedValue)
			}
			instance.Fields[imp.Symbol(index)] = value
			r.push(value)

		case bytecode.OpList:
			count := int(chunk.GetU16(frame.ip))
			frame.ip += 2
			items := make([]Value, count)
			copy(items, r.stack[len(r.stack)-count:])
			r.stack = r.stack[:len(r.stack)-count]
			r.push(FromObject(&List{Items: items}))

		case bytecode.OpGetIndex:
			key, err := r.pop()
			if err != nil {
				return err
			}
			target, err := r.pop()
			if err != nil {
				return err
			}
			list, index, err := r.listIndex(target, key)
			if err != nil {
				return err
			}
			r.push(list.Items[index])

		case bytecode.OpSetIndex:
			value, err := r.pop()
			if err != nil {
				return err
			}
			key, err := r.pop()
			if err != nil {
				return err
			}
			target, err := r.pop()
			if err != nil {
				return err
			}
			list, index, err := r.listIndex(target, key)
			if err != nil {
				return err
			}
			list.Items[index] = value
			r.push(value)

		case bytecode.OpImport:
			index := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			if err := r.loadImport(imp.Module.String(index)); err != nil {
				return err
			}

		case bytecode.OpImportGlobal:
			index := int(chunk.GetU32(frame.ip))
			frame.ip += 4
			value, err := r.pop()
			if err != nil {
				return err
			}
			source, ok := value.AsObject().(*Import)
			if !ok {
				return fmt.Errorf("%w: import global source is not an import", ErrUnexpectedValue)
			}
			name := imp.Module.Identifier(index)
			global, ok := source.Global(r.interner.Intern(name))
			if !ok {
				return fmt.Errorf("%w '%s' in import %q", ErrGlobalNotDefined, name, source.Name)
			}
			r.push(global)

		default:
			return fmt.Errorf("%w: opcode %d", ErrUnexpectedValue, op)
		}
	}
}

func (r *Runtime) invoke(imp *Import, index, arity int) error {
	symbol := imp.Symbol(index)
	receiver := r.peek(arity)

	switch object := receiver.AsObject().(type) {
	case *Instance:
		if field, ok := object.Fields[symbol]; ok {
			r.stack[len(r.stack)-1-arity] = field
			return r.callValue(field, arity)
		}
		method, ok := object.Class.Method(symbol)
		if !ok {
			return fmt.Errorf("%w '%s'", ErrUndefinedProperty, imp.Module.Identifier(index))
		}
		return r.callValue(method, arity)
	default:
		return fmt.Errorf("%w: only instances have methods", ErrUnexpectedValue)
	}
}

func (r *Runtime) getProperty(imp *Import, index int) error {
	symbol := imp.Symbol(index)
	target, err := r.pop()
	if err != nil {
		return err
	}

	switch object := target.AsObject().(type) {
	case *Instance:
		if field, ok := object.Fields[symbol]; ok {
			r.push(field)
			return nil
		}
		if method, ok := object.Class.Method(symbol); ok {
			r.push(FromObject(&BoundMethod{Receiver: target, Method: method}))
			return nil
		}
		return fmt.Errorf("%w '%s'", ErrUndefinedProperty, imp.Module.Identifier(index))
	default:
		return fmt.Errorf("%w: only instances have properties", ErrUnexpectedValue)
	}
}

func (r *Runtime) listIndex(target, key Value) (*List, int, error) {
	list, ok := target.AsObject().(*List)
	if !ok {
		return nil, 0, fmt.Errorf("%w: only lists can be indexed", ErrUnexpectedValue)
	}
	if !key.IsNumber() {
		return nil, 0, fmt.Errorf("%w: list index must be a number", ErrUnexpectedValue)
	}
	index := int(key.AsNumber())
	if float64(index) != key.AsNumber() || index < 0 || index >= len(list.Items) {
		return nil, 0, fmt.Errorf("%w: %s", ErrIndexOutOfRange, key)
	}
	return list, index, nil
}
