package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/loxgo/internal/bytecode"
	"github.com/vk/loxgo/internal/compiler"
	"github.com/vk/loxgo/internal/parser"
)

const (
	opNil          = byte(bytecode.OpNil)
	opTrue         = byte(bytecode.OpTrue)
	opFalse        = byte(bytecode.OpFalse)
	opNumber       = byte(bytecode.OpNumber)
	opString       = byte(bytecode.OpString)
	opPop          = byte(bytecode.OpPop)
	opPrint        = byte(bytecode.OpPrint)
	opNot          = byte(bytecode.OpNot)
	opNegate       = byte(bytecode.OpNegate)
	opAdd          = byte(bytecode.OpAdd)
	opSubtract     = byte(bytecode.OpSubtract)
	opLess         = byte(bytecode.OpLess)
	opGreater      = byte(bytecode.OpGreater)
	opEqual        = byte(bytecode.OpEqual)
	opJump         = byte(bytecode.OpJump)
	opJumpIfFalse  = byte(bytecode.OpJumpIfFalse)
	opDefineGlobal = byte(bytecode.OpDefineGlobal)
	opGetGlobal    = byte(bytecode.OpGetGlobal)
	opSetGlobal    = byte(bytecode.OpSetGlobal)
	opGetLocal     = byte(bytecode.OpGetLocal)
	opSetLocal     = byte(bytecode.OpSetLocal)
	opGetUpvalue   = byte(bytecode.OpGetUpvalue)
	opCloseUpvalue = byte(bytecode.OpCloseUpvalue)
	opClosure      = byte(bytecode.OpClosure)
	opCall         = byte(bytecode.OpCall)
	opInvoke       = byte(bytecode.OpInvoke)
	opReturn       = byte(bytecode.OpReturn)
	opReturnTop    = byte(bytecode.OpReturnTop)
	opClass        = byte(bytecode.OpClass)
	opMethod       = byte(bytecode.OpMethod)
	opInherit      = byte(bytecode.OpInherit)
	opGetSuper     = byte(bytecode.OpGetSuper)
	opGetProperty  = byte(bytecode.OpGetProperty)
	opSetProperty  = byte(bytecode.OpSetProperty)
	opList         = byte(bytecode.OpList)
	opGetIndex     = byte(bytecode.OpGetIndex)
	opSetIndex     = byte(bytecode.OpSetIndex)
	opImport       = byte(bytecode.OpImport)
	opImportGlobal = byte(bytecode.OpImportGlobal)
)

func compileSource(t *testing.T, source string) *bytecode.Module {
	t.Helper()
	return compileWith(t, source, compiler.Options{})
}

func compileWith(t *testing.T, source string, opts compiler.Options) *bytecode.Module {
	t.Helper()

	program, diagnostics := parser.Parse(source)
	require.Empty(t, diagnostics)

	module, _, errs := compiler.Compile(program, opts)
	require.Empty(t, errs)
	require.NotNil(t, module)
	return module
}

func compileErrors(t *testing.T, source string) []string {
	t.Helper()

	program, diagnostics := parser.Parse(source)
	require.Empty(t, diagnostics)

	module, _, errs := compiler.Compile(program, compiler.Options{})
	require.Nil(t, module)
	require.NotEmpty(t, errs)

	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Message
	}
	return messages
}

func assertChunk(t *testing.T, module *bytecode.Module, index int, want []byte) {
	t.Helper()
	assert.Equal(t, want, module.Chunk(index).Instructions())
}

func makeFun(name string, chunk, arity int) bytecode.Closure {
	return bytecode.Closure{
		Function: bytecode.Function{Name: name, ChunkIndex: chunk, Arity: arity},
	}
}

func makeClosure(name string, chunk, arity int, upvalues []bytecode.Upvalue) bytecode.Closure {
	closure := makeFun(name, chunk, arity)
	closure.Upvalues = upvalues
	return closure
}

func upLocal(index int) bytecode.Upvalue {
	return bytecode.Upvalue{Kind: bytecode.UpvalueLocal, Index: index}
}

func upOuter(index int) bytecode.Upvalue {
	return bytecode.Upvalue{Kind: bytecode.UpvalueOuter, Index: index}
}

func TestPrintNumbers(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "print 3;")
	assertChunk(t, module, 0, []byte{opNumber, 0, 0, opPrint, opReturnTop})
	assert.Equal(t, []float64{3}, module.Numbers())
	assert.Empty(t, module.Strings())
	assert.Empty(t, module.Identifiers())

	module = compileSource(t, "print 1+2;")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opNumber, 1, 0,
		opAdd,
		opPrint,
		opReturnTop,
	})
	assert.Equal(t, []float64{1, 2}, module.Numbers())

	module = compileSource(t, "print 1-2;")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opNumber, 1, 0,
		opSubtract,
		opPrint,
		opReturnTop,
	})

	module = compileSource(t, "print nil;")
	assertChunk(t, module, 0, []byte{opNil, opPrint, opReturnTop})
}

func TestPrintStrings(t *testing.T) {
	t.Parallel()

	module := compileSource(t, `print "Hello, World!";`)
	assertChunk(t, module, 0, []byte{opString, 0, 0, opPrint, opReturnTop})
	assert.Equal(t, []string{"Hello, World!"}, module.Strings())

	module = compileSource(t, `print "Hello, " + "World!";`)
	assertChunk(t, module, 0, []byte{
		opString, 0, 0,
		opString, 1, 0,
		opAdd,
		opPrint,
		opReturnTop,
	})
	assert.Equal(t, []string{"Hello, ", "World!"}, module.Strings())
}

func TestGlobalVariables(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "var x=3;")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opDefineGlobal, 0, 0, 0, 0,
		opReturnTop,
	})
	assert.Equal(t, []float64{3}, module.Numbers())
	assert.Equal(t, []string{"x"}, module.Identifiers())

	module = compileSource(t, "var x;")
	assertChunk(t, module, 0, []byte{
		opNil,
		opDefineGlobal, 0, 0, 0, 0,
		opReturnTop,
	})

	module = compileSource(t, "var x=3; print x;")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opDefineGlobal, 0, 0, 0, 0,
		opGetGlobal, 0, 0, 0, 0,
		opPrint,
		opReturnTop,
	})

	module = compileSource(t, "var x=3;x=2;")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opDefineGlobal, 0, 0, 0, 0,
		opNumber, 1, 0,
		opSetGlobal, 0, 0, 0, 0,
		opPop,
		opReturnTop,
	})
	assert.Equal(t, []float64{3, 2}, module.Numbers())
}

func TestLocalVariables(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "{var x=3;}")
	assertChunk(t, module, 0, []byte{opNumber, 0, 0, opPop, opReturnTop})
	assert.Empty(t, module.Identifiers())

	module = compileSource(t, "{var x=3; print x;}")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opGetLocal, 1, 0, 0, 0,
		opPrint,
		opPop,
		opReturnTop,
	})

	module = compileSource(t, "var x=2; {var x=3; { var x=4; print x; } print x;} print x;")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opDefineGlobal, 0, 0, 0, 0,
		opNumber, 1, 0,
		opNumber, 2, 0,
		opGetLocal, 2, 0, 0, 0,
		opPrint,
		opPop,
		opGetLocal, 1, 0, 0, 0,
		opPrint,
		opPop,
		opGetGlobal, 0, 0, 0, 0,
		opPrint,
		opReturnTop,
	})
	assert.Equal(t, []float64{2, 3, 4}, module.Numbers())
	assert.Equal(t, []string{"x"}, module.Identifiers())

	module = compileSource(t, "{var x;}")
	assertChunk(t, module, 0, []byte{opNil, opPop, opReturnTop})

	module = compileSource(t, "{var x;x=2;}")
	assertChunk(t, module, 0, []byte{
		opNil,
		opNumber, 0, 0,
		opSetLocal, 1, 0, 0, 0,
		opPop,
		opPop,
		opReturnTop,
	})
}

func TestExpressionStatements(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "3;")
	assertChunk(t, module, 0, []byte{opNumber, 0, 0, opPop, opReturnTop})

	module = compileSource(t, "true;")
	assertChunk(t, module, 0, []byte{opTrue, opPop, opReturnTop})

	module = compileSource(t, "false;")
	assertChunk(t, module, 0, []byte{opFalse, opPop, opReturnTop})

	module = compileSource(t, "nil;")
	assertChunk(t, module, 0, []byte{opNil, opPop, opReturnTop})
}

func TestIf(t *testing.T) {
	t.Parallel()

	// Without an else the false path still pops the condition.
	module := compileSource(t, "if(false) 3;4;")
	assertChunk(t, module, 0, []byte{
		opFalse,
		opJumpIfFalse, 8, 0,
		opPop,
		opNumber, 0, 0,
		opPop,
		opJump, 1, 0,
		opPop,
		opNumber, 1, 0,
		opPop,
		opReturnTop,
	})

	module = compileSource(t, "if(false) 3; else 4;5;")
	assertChunk(t, module, 0, []byte{
		opFalse,
		opJumpIfFalse, 8, 0,
		opPop,
		opNumber, 0, 0,
		opPop,
		opJump, 5, 0,
		opPop,
		opNumber, 1, 0,
		opPop,
		opNumber, 2, 0,
		opPop,
		opReturnTop,
	})
}

func TestLogicalOperators(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "3 and 4;")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opJumpIfFalse, 4, 0,
		opPop,
		opNumber, 1, 0,
		opPop,
		opReturnTop,
	})

	module = compileSource(t, "3 or 4;")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opJumpIfFalse, 3, 0,
		opJump, 4, 0,
		opPop,
		opNumber, 1, 0,
		opPop,
		opReturnTop,
	})
}

func TestComparison(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "3 < 4;")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opNumber, 1, 0,
		opLess,
		opPop,
		opReturnTop,
	})

	module = compileSource(t, "3 >= 4;")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opNumber, 1, 0,
		opLess,
		opNot,
		opPop,
		opReturnTop,
	})

	module = compileSource(t, "3 != 4;")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opNumber, 1, 0,
		opEqual,
		opNot,
		opPop,
		opReturnTop,
	})
}

func TestWhile(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "while(true) print 3;")
	assertChunk(t, module, 0, []byte{
		opTrue,
		opJumpIfFalse, 8, 0,
		opPop,
		opNumber, 0, 0,
		opPrint,
		opJump, 244, 255,
		opPop,
		opReturnTop,
	})
}

func TestFor(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "for(var i = 0; i < 10; i = i + 1) print i;")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opGetLocal, 1, 0, 0, 0,
		opNumber, 1, 0,
		opLess,
		opJumpIfFalse, 25, 0,
		opPop,
		opGetLocal, 1, 0, 0, 0,
		opPrint,
		opGetLocal, 1, 0, 0, 0,
		opNumber, 2, 0,
		opAdd,
		opSetLocal, 1, 0, 0, 0,
		opPop,
		opJump, 219, 255,
		opPop,
		opPop,
		opReturnTop,
	})
	assert.Equal(t, []float64{0, 10, 1}, module.Numbers())
}

func TestSimpleFunction(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "fun first() { print 3; } first();")
	assertChunk(t, module, 0, []byte{
		opClosure, 0, 0, 0, 0,
		opDefineGlobal, 0, 0, 0, 0,
		opGetGlobal, 0, 0, 0, 0,
		opCall, 0,
		opPop,
		opReturnTop,
	})
	assertChunk(t, module, 1, []byte{
		opNumber, 0, 0,
		opPrint,
		opNil,
		opReturn,
	})
	assert.Equal(t, []float64{3}, module.Numbers())
	assert.Equal(t, []bytecode.Closure{makeFun("first", 1, 0)}, module.Closures())
	assert.Equal(t, []string{"first"}, module.Identifiers())
}

func TestFunctionWithOneArgument(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "fun first(a) { print a; } first(3);")
	assertChunk(t, module, 0, []byte{
		opClosure, 0, 0, 0, 0,
		opDefineGlobal, 0, 0, 0, 0,
		opGetGlobal, 0, 0, 0, 0,
		opNumber, 0, 0,
		opCall, 1,
		opPop,
		opReturnTop,
	})
	assertChunk(t, module, 1, []byte{
		opGetLocal, 1, 0, 0, 0,
		opPrint,
		opNil,
		opReturn,
	})
	assert.Equal(t, []bytecode.Closure{makeFun("first", 1, 1)}, module.Closures())
}

func TestRecursiveFunction(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "fun first(a) { print first(a+1); } first(3);")
	assertChunk(t, module, 1, []byte{
		opGetGlobal, 0, 0, 0, 0,
		opGetLocal, 1, 0, 0, 0,
		opNumber, 0, 0,
		opAdd,
		opCall, 1,
		opPrint,
		opNil,
		opReturn,
	})
	assert.Equal(t, []float64{1, 3}, module.Numbers())
	assert.Equal(t, []string{"first"}, module.Identifiers())
}

func TestFunctionsCallingFunctions(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "fun first() { second(); } fun second() { print 3; } first();")
	assertChunk(t, module, 0, []byte{
		opClosure, 0, 0, 0, 0,
		opDefineGlobal, 1, 0, 0, 0,
		opClosure, 1, 0, 0, 0,
		opDefineGlobal, 0, 0, 0, 0,
		opGetGlobal, 1, 0, 0, 0,
		opCall, 0,
		opPop,
		opReturnTop,
	})
	assertChunk(t, module, 1, []byte{
		opGetGlobal, 0, 0, 0, 0,
		opCall, 0,
		opPop,
		opNil,
		opReturn,
	})
	assertChunk(t, module, 2, []byte{
		opNumber, 0, 0,
		opPrint,
		opNil,
		opReturn,
	})
	assert.Equal(t, []bytecode.Closure{
		makeFun("first", 1, 0),
		makeFun("second", 2, 0),
	}, module.Closures())

	// The body of first compiles before its own name is interned.
	assert.Equal(t, []string{"second", "first"}, module.Identifiers())
}

func TestScopedFunction(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "{ fun first() { print 3; } first(); }")
	assertChunk(t, module, 0, []byte{
		opClosure, 0, 0, 0, 0,
		opGetLocal, 1, 0, 0, 0,
		opCall, 0,
		opPop,
		opPop,
		opReturnTop,
	})
	assertChunk(t, module, 1, []byte{
		opNumber, 0, 0,
		opPrint,
		opNil,
		opReturn,
	})
}

func TestScopedRecursiveFunction(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "{ fun first() { print first(); } first(); }")
	assertChunk(t, module, 0, []byte{
		opClosure, 0, 0, 0, 0,
		opGetLocal, 1, 0, 0, 0,
		opCall, 0,
		opPop,
		opCloseUpvalue,
		opReturnTop,
	})
	assertChunk(t, module, 1, []byte{
		opGetUpvalue, 0, 0, 0, 0,
		opCall, 0,
		opPrint,
		opNil,
		opReturn,
	})
	assert.Equal(t, []bytecode.Closure{
		makeClosure("first", 1, 0, []bytecode.Upvalue{upLocal(1)}),
	}, module.Closures())
}

func TestFunctionWithReturn(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "fun first() { return 3; }")
	assertChunk(t, module, 1, []byte{
		opNumber, 0, 0,
		opReturn,
		opNil,
		opReturn,
	})
}

func TestUpvalue(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "{var a = 3; fun f() { print a; }}")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opClosure, 0, 0, 0, 0,
		opPop,
		opCloseUpvalue,
		opReturnTop,
	})
	assertChunk(t, module, 1, []byte{
		opGetUpvalue, 0, 0, 0, 0,
		opPrint,
		opNil,
		opReturn,
	})
	assert.Equal(t, []bytecode.Closure{
		makeClosure("f", 1, 0, []bytecode.Upvalue{upLocal(1)}),
	}, module.Closures())
}

func TestDoubleUpvalue(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "{var a = 3; fun f() { fun g() { print a; } }}")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opClosure, 1, 0, 0, 0,
		opPop,
		opCloseUpvalue,
		opReturnTop,
	})
	assertChunk(t, module, 1, []byte{
		opClosure, 0, 0, 0, 0,
		opNil,
		opReturn,
	})
	assertChunk(t, module, 2, []byte{
		opGetUpvalue, 0, 0, 0, 0,
		opPrint,
		opNil,
		opReturn,
	})
	assert.Equal(t, []bytecode.Closure{
		makeClosure("g", 2, 0, []bytecode.Upvalue{upOuter(0)}),
		makeClosure("f", 1, 0, []bytecode.Upvalue{upLocal(1)}),
	}, module.Closures())
}

func TestMultipleDoubleUpvalue(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "{var a = 3; var b = 4; fun f() { fun g() { print a; print b; }}}")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opNumber, 1, 0,
		opClosure, 1, 0, 0, 0,
		opPop,
		opCloseUpvalue,
		opCloseUpvalue,
		opReturnTop,
	})
	assertChunk(t, module, 2, []byte{
		opGetUpvalue, 0, 0, 0, 0,
		opPrint,
		opGetUpvalue, 1, 0, 0, 0,
		opPrint,
		opNil,
		opReturn,
	})
	assert.Equal(t, []bytecode.Closure{
		makeClosure("g", 2, 0, []bytecode.Upvalue{upOuter(0), upOuter(1)}),
		makeClosure("f", 1, 0, []bytecode.Upvalue{upLocal(1), upLocal(2)}),
	}, module.Closures())
}

func TestScopedUpvalue(t *testing.T) {
	t.Parallel()

	module := compileSource(t,
		"var global; fun main() { { var a = 3; fun one() { print a; } global = one; } } main();")
	assertChunk(t, module, 0, []byte{
		opNil,
		opDefineGlobal, 0, 0, 0, 0,
		opClosure, 1, 0, 0, 0,
		opDefineGlobal, 1, 0, 0, 0,
		opGetGlobal, 1, 0, 0, 0,
		opCall, 0,
		opPop,
		opReturnTop,
	})
	assertChunk(t, module, 1, []byte{
		opNumber, 0, 0,
		opClosure, 0, 0, 0, 0,
		opGetLocal, 2, 0, 0, 0,
		opSetGlobal, 0, 0, 0, 0,
		opPop,
		opPop,
		opCloseUpvalue,
		opNil,
		opReturn,
	})
	assertChunk(t, module, 2, []byte{
		opGetUpvalue, 0, 0, 0, 0,
		opPrint,
		opNil,
		opReturn,
	})
	assert.Equal(t, []bytecode.Closure{
		makeClosure("one", 2, 0, []bytecode.Upvalue{upLocal(1)}),
		makeClosure("main", 1, 0, nil),
	}, module.Closures())
	assert.Equal(t, []string{"global", "main"}, module.Identifiers())
}

func TestSimpleImport(t *testing.T) {
	t.Parallel()

	module := compileSource(t, `import "foo";`)
	assertChunk(t, module, 0, []byte{
		opImport, 0, 0, 0, 0,
		opPop,
		opReturnTop,
	})
	assert.Equal(t, []string{"foo"}, module.Strings())
}

func TestImportForGlobal(t *testing.T) {
	t.Parallel()

	module := compileSource(t, `import "foo" for x;`)
	assertChunk(t, module, 0, []byte{
		opImport, 0, 0, 0, 0,
		opImportGlobal, 0, 0, 0, 0,
		opDefineGlobal, 0, 0, 0, 0,
		opReturnTop,
	})
	assert.Equal(t, []string{"foo"}, module.Strings())
	assert.Equal(t, []string{"x"}, module.Identifiers())
}

func TestImportForLocal(t *testing.T) {
	t.Parallel()

	module := compileSource(t, `{import "foo" for x; print x;}`)
	assertChunk(t, module, 0, []byte{
		opImport, 0, 0, 0, 0,
		opImportGlobal, 0, 0, 0, 0,
		opGetLocal, 1, 0, 0, 0,
		opPrint,
		opPop,
		opReturnTop,
	})
}

func TestImportMultipleNames(t *testing.T) {
	t.Parallel()

	module := compileSource(t, `import "foo" for x, y;`)
	assertChunk(t, module, 0, []byte{
		opImport, 0, 0, 0, 0,
		opImportGlobal, 0, 0, 0, 0,
		opDefineGlobal, 0, 0, 0, 0,
		opImport, 0, 0, 0, 0,
		opImportGlobal, 1, 0, 0, 0,
		opDefineGlobal, 1, 0, 0, 0,
		opReturnTop,
	})
	assert.Equal(t, []string{"x", "y"}, module.Identifiers())
}

func TestEmptyClassGlobal(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "class Foo {}")
	assertChunk(t, module, 0, []byte{
		opClass, 0,
		opDefineGlobal, 0, 0, 0, 0,
		opGetGlobal, 0, 0, 0, 0,
		opPop,
		opReturnTop,
	})
	assert.Equal(t, []bytecode.Class{{Name: "Foo"}}, module.Classes())
	assert.Equal(t, []string{"Foo"}, module.Identifiers())
}

func TestEmptyClassLocal(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "{class Foo {}}")
	assertChunk(t, module, 0, []byte{
		opClass, 0,
		opGetLocal, 1, 0, 0, 0,
		opPop,
		opPop,
		opReturnTop,
	})
	assert.Equal(t, []bytecode.Class{{Name: "Foo"}}, module.Classes())
}

func TestClassWithMethod(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "class Foo { bar() { print 3; } }")
	assertChunk(t, module, 0, []byte{
		opClass, 0,
		opDefineGlobal, 0, 0, 0, 0,
		opGetGlobal, 0, 0, 0, 0,
		opClosure, 0, 0, 0, 0,
		opMethod, 1, 0, 0, 0,
		opPop,
		opReturnTop,
	})
	assertChunk(t, module, 1, []byte{
		opNumber, 0, 0,
		opPrint,
		opNil,
		opReturn,
	})
	assert.Equal(t, []bytecode.Closure{makeFun("bar", 1, 0)}, module.Closures())
	assert.Equal(t, []string{"Foo", "bar"}, module.Identifiers())
}

func TestInitializerReturnsReceiver(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "class Foo { init() {} }")
	assertChunk(t, module, 1, []byte{
		opGetLocal, 0, 0, 0, 0,
		opReturn,
	})
}

func TestInheritanceWithSuper(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "class A {} class B < A { m() { return super.m(); } }")
	assertChunk(t, module, 0, []byte{
		opClass, 0,
		opDefineGlobal, 0, 0, 0, 0,
		opGetGlobal, 0, 0, 0, 0,
		opPop,
		opClass, 1,
		opDefineGlobal, 1, 0, 0, 0,
		opGetGlobal, 0, 0, 0, 0,
		opGetGlobal, 1, 0, 0, 0,
		opInherit,
		opClosure, 0, 0, 0, 0,
		opMethod, 2, 0, 0, 0,
		opPop,
		opCloseUpvalue,
		opReturnTop,
	})
	assertChunk(t, module, 1, []byte{
		opGetLocal, 0, 0, 0, 0,
		opGetUpvalue, 0, 0, 0, 0,
		opGetSuper, 2, 0, 0, 0,
		opCall, 0,
		opReturn,
		opNil,
		opReturn,
	})
	assert.Equal(t, []bytecode.Class{{Name: "A"}, {Name: "B"}}, module.Classes())
	assert.Equal(t, []bytecode.Closure{
		makeClosure("m", 1, 0, []bytecode.Upvalue{upLocal(1)}),
	}, module.Closures())
	assert.Equal(t, []string{"A", "B", "m"}, module.Identifiers())
}

func TestGetProperty(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "x.test;")
	assertChunk(t, module, 0, []byte{
		opGetGlobal, 0, 0, 0, 0,
		opGetProperty, 1, 0, 0, 0,
		opPop,
		opReturnTop,
	})
	assert.Equal(t, []string{"x", "test"}, module.Identifiers())
}

func TestSetProperty(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "x.test = 3;")
	assertChunk(t, module, 0, []byte{
		opGetGlobal, 0, 0, 0, 0,
		opNumber, 0, 0,
		opSetProperty, 1, 0, 0, 0,
		opPop,
		opReturnTop,
	})
	assert.Equal(t, []string{"x", "test"}, module.Identifiers())
}

func TestInvoke(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "x.test(1, 2);")
	assertChunk(t, module, 0, []byte{
		opGetGlobal, 0, 0, 0, 0,
		opNumber, 0, 0,
		opNumber, 1, 0,
		opInvoke, 2, 1, 0, 0, 0,
		opPop,
		opReturnTop,
	})
	assert.Equal(t, []string{"x", "test"}, module.Identifiers())
}

func TestListLiteral(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "print [1, 2];")
	assertChunk(t, module, 0, []byte{
		opNumber, 0, 0,
		opNumber, 1, 0,
		opList, 2, 0,
		opPrint,
		opReturnTop,
	})
}

func TestIndexing(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "x[0];")
	assertChunk(t, module, 0, []byte{
		opGetGlobal, 0, 0, 0, 0,
		opNumber, 0, 0,
		opGetIndex,
		opPop,
		opReturnTop,
	})

	module = compileSource(t, "x[0] = 3;")
	assertChunk(t, module, 0, []byte{
		opGetGlobal, 0, 0, 0, 0,
		opNumber, 0, 0,
		opNumber, 1, 0,
		opSetIndex,
		opPop,
		opReturnTop,
	})
	assert.Equal(t, []float64{0, 3}, module.Numbers())
}

func TestNumberConstantsDeduplicate(t *testing.T) {
	t.Parallel()

	module := compileSource(t, "print 3 + 3; print 3;")
	assert.Equal(t, []float64{3}, module.Numbers())
}

func TestShadowingLint(t *testing.T) {
	t.Parallel()

	source := "{var x = 1; {var x = 2; print x;} print x;}"

	program, diagnostics := parser.Parse(source)
	require.Empty(t, diagnostics)

	_, warnings, errs := compiler.Compile(program, compiler.Options{Shadowing: compiler.LevelWarn})
	require.Empty(t, errs)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "shadows")

	module, _, errs := compiler.Compile(program, compiler.Options{Shadowing: compiler.LevelDeny})
	assert.Nil(t, module)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "shadows")
}

func TestUnusedLocalLint(t *testing.T) {
	t.Parallel()

	program, diagnostics := parser.Parse("{var x = 3;}")
	require.Empty(t, diagnostics)

	_, warnings, errs := compiler.Compile(program, compiler.Options{UnusedLocals: compiler.LevelWarn})
	require.Empty(t, errs)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Unused local variable 'x'", warnings[0].Message)

	// Used locals stay quiet.
	program, diagnostics = parser.Parse("{var x = 3; print x;}")
	require.Empty(t, diagnostics)

	_, warnings, errs = compiler.Compile(program, compiler.Options{UnusedLocals: compiler.LevelWarn})
	require.Empty(t, errs)
	assert.Empty(t, warnings)
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	assert.Contains(t, compileErrors(t, "return 3;"), "Cannot return from top-level code")
	assert.Contains(t, compileErrors(t, "{var a = a;}"), "Local not initialized")
	assert.Contains(t, compileErrors(t, "this;"), "Cannot use 'this' outside of a class")
	assert.Contains(t, compileErrors(t, "super.m;"), "Cannot use 'super' outside of a class")
	assert.Contains(t, compileErrors(t, "{var x; var x;}"), "Variable 'x' already defined in this scope")
	assert.Contains(t, compileErrors(t, "class Foo { init() { return 3; } }"),
		"Cannot return a value from an initializer")
	assert.Contains(t, compileErrors(t, "class Foo < Foo {}"), "A class cannot inherit from itself")
}
