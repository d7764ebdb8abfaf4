// Package compiler lowers a parsed program to a bytecode module. Each
// function body compiles into its own chunk; a context stack mirrors the
// lexical nesting of functions so that locals resolve to stack slots and
// captured variables resolve to upvalue chains.
package compiler

import (
	"math"

	"github.com/vk/loxgo/internal/ast"
	"github.com/vk/loxgo/internal/bytecode"
	"github.com/vk/loxgo/internal/span"
)

// Level controls how a lint finding is reported.
type Level int

const (
	// LevelAllow suppresses the lint.
	LevelAllow Level = iota
	// LevelWarn reports the lint as a warning.
	LevelWarn
	// LevelDeny reports the lint as a compile error.
	LevelDeny
)

// Options carries the lint configuration, usually taken from the project
// manifest.
type Options struct {
	Shadowing    Level
	UnusedLocals Level
}

type contextType int

const (
	contextTopLevel contextType = iota
	contextFunction
	contextMethod
	contextInitializer
)

// Compile lowers program into a bytecode module. Warnings hold lint
// findings; when errs is non-empty compilation failed and the module is nil.
func Compile(program ast.Program, opts Options) (module *bytecode.Module, warnings, errs []span.Diagnostic) {
	c := &compiler{
		module:      bytecode.NewModule(),
		opts:        opts,
		identifiers: make(map[string]bytecode.IdentifierIndex),
		numbers:     make(map[uint64]bytecode.ConstantIndex),
		strings:     make(map[string]bytecode.ConstantIndex),
	}

	c.withContext(contextTopLevel, func() {
		for _, stmt := range program {
			c.compileStmt(stmt)
		}
		c.addU8(uint8(bytecode.OpReturnTop))
	})

	if len(c.errors) > 0 {
		return nil, c.warnings, c.errors
	}
	return c.module, c.warnings, nil
}

type compilerContext struct {
	contextType contextType
	chunkIndex  bytecode.ChunkIndex
	locals      locals
	upvalues    []bytecode.Upvalue
}

func (c *compilerContext) addUpvalue(upvalue bytecode.Upvalue) int {
	for i, existing := range c.upvalues {
		if existing == upvalue {
			return i
		}
	}
	c.upvalues = append(c.upvalues, upvalue)
	return len(c.upvalues) - 1
}

type localState int

const (
	localMissing localState = iota
	localFound
	localUninitialized
)

func (c *compilerContext) resolveLocal(name string) (bytecode.StackIndex, localState) {
	entry := c.locals.get(name)
	if entry == nil {
		return 0, localMissing
	}
	if !entry.initialized {
		return 0, localUninitialized
	}
	entry.used = true
	return entry.slot, localFound
}

type classInfo struct {
	hasSuper bool
}

type compiler struct {
	module   *bytecode.Module
	contexts []*compilerContext
	classes  []classInfo
	opts     Options
	warnings []span.Diagnostic
	errors   []span.Diagnostic

	identifiers map[string]bytecode.IdentifierIndex
	numbers     map[uint64]bytecode.ConstantIndex
	strings     map[string]bytecode.ConstantIndex
}

func (c *compiler) currentContext() *compilerContext {
	return c.contexts[len(c.contexts)-1]
}

func (c *compiler) currentChunk() *bytecode.Chunk {
	return c.module.Chunk(c.currentContext().chunkIndex)
}

func (c *compiler) contextType() contextType {
	return c.currentContext().contextType
}

func (c *compiler) error(message string, at span.Span) {
	c.errors = append(c.errors, span.Diagnostic{Span: at, Message: message})
}

func (c *compiler) lint(level Level, message string, at span.Span) {
	switch level {
	case LevelWarn:
		c.warnings = append(c.warnings, span.Diagnostic{Span: at, Message: message})
	case LevelDeny:
		c.error(message, at)
	}
}

func (c *compiler) inMethodOrInitializer() bool {
	for i := len(c.contexts) - 1; i >= 0; i-- {
		switch c.contexts[i].contextType {
		case contextMethod, contextInitializer:
			return true
		}
	}
	return false
}

func (c *compiler) withContext(contextType contextType, f func()) (bytecode.ChunkIndex, []bytecode.Upvalue) {
	chunk := c.module.AddChunk()
	c.contexts = append(c.contexts, &compilerContext{
		contextType: contextType,
		chunkIndex:  chunk,
	})

	// Slot 0 holds the callee; methods and initializers reach it as "this".
	if contextType == contextFunction {
		c.currentContext().locals.insert("", span.Span{})
	} else {
		c.currentContext().locals.insert("this", span.Span{})
	}
	c.markLocalInitialized()

	f()

	context := c.contexts[len(c.contexts)-1]
	c.contexts = c.contexts[:len(c.contexts)-1]
	c.lintUnused(context.locals.stack)
	return context.chunkIndex, context.upvalues
}

func (c *compiler) withScopedContext(contextType contextType, f func()) (bytecode.ChunkIndex, []bytecode.Upvalue) {
	return c.withContext(contextType, func() {
		c.beginScope()
		f()
	})
}

func (c *compiler) beginScope() {
	c.currentContext().locals.beginScope()
}

func (c *compiler) endScope() {
	dropped := c.currentContext().locals.endScope()
	for i := len(dropped) - 1; i >= 0; i-- {
		if dropped[i].captured {
			c.addU8(uint8(bytecode.OpCloseUpvalue))
		} else {
			c.addU8(uint8(bytecode.OpPop))
		}
	}
	c.lintUnused(dropped)
}

func (c *compiler) withScope(f func()) {
	c.beginScope()
	f()
	c.endScope()
}

func (c *compiler) isScoped() bool {
	return c.currentContext().locals.scopeDepth > 0
}

func (c *compiler) lintUnused(dropped []local) {
	if c.opts.UnusedLocals == LevelAllow {
		return
	}
	for _, entry := range dropped {
		if entry.lintable && !entry.used {
			c.lint(c.opts.UnusedLocals, "Unused local variable '"+entry.name+"'", entry.declaredAt)
		}
	}
}

func (c *compiler) addU8(instruction uint8) bytecode.InstructionIndex {
	return c.currentChunk().AddU8(instruction)
}

func (c *compiler) addU16(instruction uint16) bytecode.InstructionIndex {
	return c.currentChunk().AddU16(instruction)
}

func (c *compiler) addU32(instruction uint32) bytecode.InstructionIndex {
	return c.currentChunk().AddU32(instruction)
}

func (c *compiler) addI16(instruction int16) bytecode.InstructionIndex {
	return c.currentChunk().AddI16(instruction)
}

func (c *compiler) patchInstruction(index bytecode.InstructionIndex) {
	c.currentChunk().PatchInstruction(index)
}

func (c *compiler) patchInstructionTo(index, to bytecode.InstructionIndex) {
	c.currentChunk().PatchInstructionTo(index, to)
}

func (c *compiler) instructionIndex() bytecode.InstructionIndex {
	return c.currentChunk().InstructionIndex()
}

// declareLocal introduces a variable in the current scope, leaving it
// uninitialized until markLocalInitialized so an initializer cannot read it.
func (c *compiler) declareLocal(name string, at span.Span, lintable bool) {
	context := c.currentContext()

	if c.opts.Shadowing != LevelAllow && lintable {
		if shadowed := context.locals.get(name); shadowed != nil && shadowed.depth > 0 {
			c.lint(c.opts.Shadowing, "Variable '"+name+"' shadows an earlier declaration", at)
		}
	}

	entry := context.locals.insert(name, at)
	if entry == nil {
		c.error("Variable '"+name+"' already defined in this scope", at)
		return
	}
	entry.lintable = lintable
}

func (c *compiler) markLocalInitialized() {
	c.currentContext().locals.markInitialized()
}

func (c *compiler) resolveLocal(name string, at span.Span) (bytecode.StackIndex, bool) {
	slot, state := c.currentContext().resolveLocal(name)
	switch state {
	case localFound:
		return slot, true
	case localUninitialized:
		c.error("Local not initialized", at)
	}
	return 0, false
}

// resolveUpvalue searches the enclosing contexts for name. On a hit the
// local is marked captured and an upvalue chain is threaded through every
// context in between.
func (c *compiler) resolveUpvalue(name string, at span.Span) (int, bool) {
	for i := len(c.contexts) - 2; i >= 0; i-- {
		slot, state := c.contexts[i].resolveLocal(name)
		switch state {
		case localUninitialized:
			c.error("Local not initialized", at)
			return 0, false
		case localFound:
			c.contexts[i].locals.markCaptured(slot)
			upvalue := c.contexts[i+1].addUpvalue(bytecode.Upvalue{Kind: bytecode.UpvalueLocal, Index: slot})
			for j := i + 2; j < len(c.contexts); j++ {
				upvalue = c.contexts[j].addUpvalue(bytecode.Upvalue{Kind: bytecode.UpvalueOuter, Index: upvalue})
			}
			return upvalue, true
		}
	}
	return 0, false
}

func (c *compiler) addNumber(value float64) bytecode.ConstantIndex {
	bits := math.Float64bits(value)
	if index, ok := c.numbers[bits]; ok {
		return index
	}
	index := c.module.AddNumber(value)
	c.numbers[bits] = index
	return index
}

func (c *compiler) addString(value string) bytecode.ConstantIndex {
	if index, ok := c.strings[value]; ok {
		return index
	}
	index := c.module.AddString(value)
	c.strings[value] = index
	return index
}

func (c *compiler) addIdentifier(identifier string) bytecode.IdentifierIndex {
	if index, ok := c.identifiers[identifier]; ok {
		return index
	}
	index := c.module.AddIdentifier(identifier)
	c.identifiers[identifier] = index
	return index
}
