package compiler

import (
	"github.com/vk/loxgo/internal/ast"
	"github.com/vk/loxgo/internal/bytecode"
	"github.com/vk/loxgo/internal/span"
)

const maxArguments = 255

func (c *compiler) compileStmt(stmt ast.SpannedStmt) {
	switch s := stmt.Value.(type) {
	case *ast.Expression:
		c.compileExpr(s.Expr)
		c.addU8(uint8(bytecode.OpPop))
	case *ast.PrintStmt:
		c.compileExpr(s.Expr)
		c.addU8(uint8(bytecode.OpPrint))
	case *ast.VarStmt:
		c.compileVarStmt(s)
	case *ast.IfStmt:
		c.compileIfStmt(s)
	case *ast.Block:
		c.withScope(func() {
			for _, inner := range s.Stmts {
				c.compileStmt(inner)
			}
		})
	case *ast.WhileStmt:
		c.compileWhileStmt(s)
	case *ast.ReturnStmt:
		c.compileReturnStmt(s, stmt.Span)
	case *ast.FunStmt:
		c.compileFunStmt(s)
	case *ast.ClassStmt:
		c.compileClassStmt(s)
	case *ast.ImportStmt:
		c.compileImportStmt(s)
	}
}

func (c *compiler) compileVarStmt(stmt *ast.VarStmt) {
	if c.isScoped() {
		c.declareLocal(stmt.Name.Value, stmt.Name.Span, true)
		if stmt.Init != nil {
			c.compileExpr(*stmt.Init)
		} else {
			c.addU8(uint8(bytecode.OpNil))
		}
		c.markLocalInitialized()
		return
	}

	if stmt.Init != nil {
		c.compileExpr(*stmt.Init)
	} else {
		c.addU8(uint8(bytecode.OpNil))
	}
	c.addU8(uint8(bytecode.OpDefineGlobal))
	c.addU32(uint32(c.addIdentifier(stmt.Name.Value)))
}

// compileIfStmt pops the condition on both paths, so an if without an else
// still leaves the stack balanced.
func (c *compiler) compileIfStmt(stmt *ast.IfStmt) {
	c.compileExpr(stmt.Cond)

	c.addU8(uint8(bytecode.OpJumpIfFalse))
	thenJump := c.addI16(0)
	c.addU8(uint8(bytecode.OpPop))
	c.compileStmt(stmt.Then)

	c.addU8(uint8(bytecode.OpJump))
	elseJump := c.addI16(0)
	c.patchInstruction(thenJump)
	c.addU8(uint8(bytecode.OpPop))
	if stmt.Else != nil {
		c.compileStmt(*stmt.Else)
	}
	c.patchInstruction(elseJump)
}

func (c *compiler) compileWhileStmt(stmt *ast.WhileStmt) {
	loopStart := c.instructionIndex()
	c.compileExpr(stmt.Cond)

	c.addU8(uint8(bytecode.OpJumpIfFalse))
	exitJump := c.addI16(0)
	c.addU8(uint8(bytecode.OpPop))
	c.compileStmt(stmt.Body)

	c.addU8(uint8(bytecode.OpJump))
	c.patchInstructionTo(c.addI16(0), loopStart)
	c.patchInstruction(exitJump)
	c.addU8(uint8(bytecode.OpPop))
}

func (c *compiler) compileReturnStmt(stmt *ast.ReturnStmt, at span.Span) {
	switch c.contextType() {
	case contextTopLevel:
		c.error("Cannot return from top-level code", at)
		return
	case contextInitializer:
		if stmt.Value != nil {
			c.error("Cannot return a value from an initializer", at)
			return
		}
		c.addU8(uint8(bytecode.OpGetLocal))
		c.addU32(0)
		c.addU8(uint8(bytecode.OpReturn))
		return
	}

	if stmt.Value != nil {
		c.compileExpr(*stmt.Value)
	} else {
		c.addU8(uint8(bytecode.OpNil))
	}
	c.addU8(uint8(bytecode.OpReturn))
}

func (c *compiler) compileFunStmt(stmt *ast.FunStmt) {
	if c.isScoped() {
		// Declared and initialized before the body compiles so the
		// function can capture itself for recursion.
		c.declareLocal(stmt.Name.Value, stmt.Name.Span, false)
		c.markLocalInitialized()
		c.compileFunction(stmt, contextFunction)
		return
	}

	c.compileFunction(stmt, contextFunction)
	c.addU8(uint8(bytecode.OpDefineGlobal))
	c.addU32(uint32(c.addIdentifier(stmt.Name.Value)))
}

// compileFunction compiles the body into its own chunk and emits a Closure
// instruction in the surrounding chunk.
func (c *compiler) compileFunction(stmt *ast.FunStmt, contextType contextType) {
	chunkIndex, upvalues := c.withScopedContext(contextType, func() {
		for _, param := range stmt.Params {
			c.declareLocal(param.Value, param.Span, false)
			c.markLocalInitialized()
		}
		for _, inner := range stmt.Body {
			c.compileStmt(inner)
		}

		if contextType == contextInitializer {
			c.addU8(uint8(bytecode.OpGetLocal))
			c.addU32(0)
		} else {
			c.addU8(uint8(bytecode.OpNil))
		}
		c.addU8(uint8(bytecode.OpReturn))
	})

	closure := c.module.AddClosure(bytecode.Closure{
		Function: bytecode.Function{
			Name:       stmt.Name.Value,
			ChunkIndex: chunkIndex,
			Arity:      len(stmt.Params),
		},
		Upvalues: upvalues,
	})
	c.addU8(uint8(bytecode.OpClosure))
	c.addU32(uint32(closure))
}

func (c *compiler) compileClassStmt(stmt *ast.ClassStmt) {
	classIndex := c.module.AddClass(bytecode.Class{Name: stmt.Name.Value})

	scoped := c.isScoped()
	var slot bytecode.StackIndex
	if scoped {
		c.declareLocal(stmt.Name.Value, stmt.Name.Span, false)
		c.addU8(uint8(bytecode.OpClass))
		c.addU8(uint8(classIndex))
		c.markLocalInitialized()
		slot = c.currentContext().locals.get(stmt.Name.Value).slot
	} else {
		c.addU8(uint8(bytecode.OpClass))
		c.addU8(uint8(classIndex))
		c.addU8(uint8(bytecode.OpDefineGlobal))
		c.addU32(uint32(c.addIdentifier(stmt.Name.Value)))
	}

	hasSuper := stmt.Super != nil
	if hasSuper {
		if stmt.Super.Value == stmt.Name.Value {
			c.error("A class cannot inherit from itself", stmt.Super.Span)
		}
		c.beginScope()
		c.declareLocal("super", stmt.Super.Span, false)
		c.compileNamedVariable(stmt.Super.Value, stmt.Super.Span)
		c.markLocalInitialized()
	}
	c.classes = append(c.classes, classInfo{hasSuper: hasSuper})

	// Re-load the class value so Method has it to attach to.
	if scoped {
		c.addU8(uint8(bytecode.OpGetLocal))
		c.addU32(uint32(slot))
	} else {
		c.addU8(uint8(bytecode.OpGetGlobal))
		c.addU32(uint32(c.addIdentifier(stmt.Name.Value)))
	}

	if hasSuper {
		c.addU8(uint8(bytecode.OpInherit))
	}

	for _, method := range stmt.Methods {
		contextType := contextMethod
		if method.Value.Name.Value == "init" {
			contextType = contextInitializer
		}
		c.compileFunction(method.Value, contextType)
		c.addU8(uint8(bytecode.OpMethod))
		c.addU32(uint32(c.addIdentifier(method.Value.Name.Value)))
	}
	c.addU8(uint8(bytecode.OpPop))

	c.classes = c.classes[:len(c.classes)-1]
	if hasSuper {
		c.endScope()
	}
}

// compileImportStmt loads the module and binds the requested names. The
// module executes at most once; later Import instructions reuse the cached
// import object.
func (c *compiler) compileImportStmt(stmt *ast.ImportStmt) {
	pathIndex := c.addString(stmt.Path.Value)

	if len(stmt.Names) == 0 {
		c.addU8(uint8(bytecode.OpImport))
		c.addU32(uint32(pathIndex))
		c.addU8(uint8(bytecode.OpPop))
		return
	}

	for _, name := range stmt.Names {
		if c.isScoped() {
			c.declareLocal(name.Value, name.Span, false)
			c.addU8(uint8(bytecode.OpImport))
			c.addU32(uint32(pathIndex))
			c.addU8(uint8(bytecode.OpImportGlobal))
			c.addU32(uint32(c.addIdentifier(name.Value)))
			c.markLocalInitialized()
		} else {
			c.addU8(uint8(bytecode.OpImport))
			c.addU32(uint32(pathIndex))
			c.addU8(uint8(bytecode.OpImportGlobal))
			c.addU32(uint32(c.addIdentifier(name.Value)))
			c.addU8(uint8(bytecode.OpDefineGlobal))
			c.addU32(uint32(c.addIdentifier(name.Value)))
		}
	}
}

func (c *compiler) compileExpr(expr ast.SpannedExpr) {
	switch e := expr.Value.(type) {
	case *ast.Number:
		c.addU8(uint8(bytecode.OpNumber))
		c.addU16(uint16(c.addNumber(e.Value)))
	case *ast.String:
		c.addU8(uint8(bytecode.OpString))
		c.addU16(uint16(c.addString(e.Value)))
	case *ast.Boolean:
		if e.Value {
			c.addU8(uint8(bytecode.OpTrue))
		} else {
			c.addU8(uint8(bytecode.OpFalse))
		}
	case *ast.Nil:
		c.addU8(uint8(bytecode.OpNil))
	case *ast.Grouping:
		c.compileExpr(e.Inner)
	case *ast.Unary:
		c.compileExpr(e.Value)
		switch e.Op.Value {
		case ast.UnaryMinus:
			c.addU8(uint8(bytecode.OpNegate))
		case ast.UnaryBang:
			c.addU8(uint8(bytecode.OpNot))
		}
	case *ast.Binary:
		c.compileBinary(e)
	case *ast.Logical:
		c.compileLogical(e)
	case *ast.Variable:
		c.compileNamedVariable(e.Name.Value, e.Name.Span)
	case *ast.Assign:
		c.compileAssign(e)
	case *ast.Call:
		c.compileCall(e, expr.Span)
	case *ast.Get:
		c.compileExpr(e.Object)
		c.addU8(uint8(bytecode.OpGetProperty))
		c.addU32(uint32(c.addIdentifier(e.Name.Value)))
	case *ast.Set:
		c.compileExpr(e.Object)
		c.compileExpr(e.Value)
		c.addU8(uint8(bytecode.OpSetProperty))
		c.addU32(uint32(c.addIdentifier(e.Name.Value)))
	case *ast.This:
		if !c.inMethodOrInitializer() {
			c.error("Cannot use 'this' outside of a class", expr.Span)
			return
		}
		c.compileNamedVariable("this", expr.Span)
	case *ast.Super:
		c.compileSuper(e, expr.Span)
	case *ast.List:
		for _, item := range e.Items {
			c.compileExpr(item)
		}
		c.addU8(uint8(bytecode.OpList))
		c.addU16(uint16(len(e.Items)))
	case *ast.Index:
		c.compileExpr(e.Object)
		c.compileExpr(e.Key)
		c.addU8(uint8(bytecode.OpGetIndex))
	case *ast.IndexSet:
		c.compileExpr(e.Object)
		c.compileExpr(e.Key)
		c.compileExpr(e.Value)
		c.addU8(uint8(bytecode.OpSetIndex))
	}
}

func (c *compiler) compileBinary(expr *ast.Binary) {
	c.compileExpr(expr.Left)
	c.compileExpr(expr.Right)

	switch expr.Op.Value {
	case ast.BinaryPlus:
		c.addU8(uint8(bytecode.OpAdd))
	case ast.BinaryMinus:
		c.addU8(uint8(bytecode.OpSubtract))
	case ast.BinaryStar:
		c.addU8(uint8(bytecode.OpMultiply))
	case ast.BinarySlash:
		c.addU8(uint8(bytecode.OpDivide))
	case ast.BinaryEqualEqual:
		c.addU8(uint8(bytecode.OpEqual))
	case ast.BinaryBangEqual:
		c.addU8(uint8(bytecode.OpEqual))
		c.addU8(uint8(bytecode.OpNot))
	case ast.BinaryGreater:
		c.addU8(uint8(bytecode.OpGreater))
	case ast.BinaryGreaterEqual:
		c.addU8(uint8(bytecode.OpLess))
		c.addU8(uint8(bytecode.OpNot))
	case ast.BinaryLess:
		c.addU8(uint8(bytecode.OpLess))
	case ast.BinaryLessEqual:
		c.addU8(uint8(bytecode.OpGreater))
		c.addU8(uint8(bytecode.OpNot))
	}
}

func (c *compiler) compileLogical(expr *ast.Logical) {
	switch expr.Op.Value {
	case ast.LogicalAnd:
		c.compileExpr(expr.Left)
		c.addU8(uint8(bytecode.OpJumpIfFalse))
		end := c.addI16(0)
		c.addU8(uint8(bytecode.OpPop))
		c.compileExpr(expr.Right)
		c.patchInstruction(end)
	case ast.LogicalOr:
		c.compileExpr(expr.Left)
		c.addU8(uint8(bytecode.OpJumpIfFalse))
		elseJump := c.addI16(0)
		c.addU8(uint8(bytecode.OpJump))
		end := c.addI16(0)
		c.patchInstruction(elseJump)
		c.addU8(uint8(bytecode.OpPop))
		c.compileExpr(expr.Right)
		c.patchInstruction(end)
	}
}

func (c *compiler) compileNamedVariable(name string, at span.Span) {
	if slot, ok := c.resolveLocal(name, at); ok {
		c.addU8(uint8(bytecode.OpGetLocal))
		c.addU32(uint32(slot))
		return
	}
	if index, ok := c.resolveUpvalue(name, at); ok {
		c.addU8(uint8(bytecode.OpGetUpvalue))
		c.addU32(uint32(index))
		return
	}
	c.addU8(uint8(bytecode.OpGetGlobal))
	c.addU32(uint32(c.addIdentifier(name)))
}

// compileAssign leaves the assigned value on the stack; the Set
// instructions peek rather than pop.
func (c *compiler) compileAssign(expr *ast.Assign) {
	c.compileExpr(expr.Value)

	name := expr.Name.Value
	if slot, ok := c.resolveLocal(name, expr.Name.Span); ok {
		c.addU8(uint8(bytecode.OpSetLocal))
		c.addU32(uint32(slot))
		return
	}
	if index, ok := c.resolveUpvalue(name, expr.Name.Span); ok {
		c.addU8(uint8(bytecode.OpSetUpvalue))
		c.addU32(uint32(index))
		return
	}
	c.addU8(uint8(bytecode.OpSetGlobal))
	c.addU32(uint32(c.addIdentifier(name)))
}

func (c *compiler) compileCall(expr *ast.Call, at span.Span) {
	if len(expr.Args) > maxArguments {
		c.error("Cannot have more than 255 arguments", at)
		return
	}

	// obj.method(args) invokes directly without materializing a bound
	// method.
	if get, ok := expr.Callee.Value.(*ast.Get); ok {
		c.compileExpr(get.Object)
		for _, arg := range expr.Args {
			c.compileExpr(arg)
		}
		c.addU8(uint8(bytecode.OpInvoke))
		c.addU8(uint8(len(expr.Args)))
		c.addU32(uint32(c.addIdentifier(get.Name.Value)))
		return
	}

	c.compileExpr(expr.Callee)
	for _, arg := range expr.Args {
		c.compileExpr(arg)
	}
	c.addU8(uint8(bytecode.OpCall))
	c.addU8(uint8(len(expr.Args)))
}

func (c *compiler) compileSuper(expr *ast.Super, at span.Span) {
	if len(c.classes) == 0 {
		c.error("Cannot use 'super' outside of a class", at)
		return
	}
	if !c.classes[len(c.classes)-1].hasSuper {
		c.error("Cannot use 'super' in a class with no superclass", at)
		return
	}

	c.compileNamedVariable("this", at)
	c.compileNamedVariable("super", at)
	c.addU8(uint8(bytecode.OpGetSuper))
	c.addU32(uint32(c.addIdentifier(expr.Name.Value)))
}
