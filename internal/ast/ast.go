// Package ast defines the syntax tree produced by the parser. Every child
// node carries the span it was parsed from so later stages can report
// positions without re-scanning.
package ast

import "github.com/vk/loxgo/internal/span"

// Expr is implemented by all expression nodes.
type Expr interface{ expr() }

// Stmt is implemented by all statement nodes.
type Stmt interface{ stmt() }

// SpannedExpr is an expression with its source span.
type SpannedExpr = span.Spanned[Expr]

// SpannedStmt is a statement with its source span.
type SpannedStmt = span.Spanned[Stmt]

// Identifier is a spanned identifier name.
type Identifier = span.Spanned[string]

// Program is a parsed compilation unit.
type Program = []SpannedStmt

// UnaryOp is a prefix operator.
type UnaryOp uint8

const (
	UnaryBang UnaryOp = iota
	UnaryMinus
)

// BinaryOp is an arithmetic or comparison operator.
type BinaryOp uint8

const (
	BinarySlash BinaryOp = iota
	BinaryStar
	BinaryPlus
	BinaryMinus
	BinaryGreater
	BinaryGreaterEqual
	BinaryLess
	BinaryLessEqual
	BinaryBangEqual
	BinaryEqualEqual
)

// LogicalOp is a short-circuiting operator.
type LogicalOp uint8

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

type (
	// Binary is `left op right`.
	Binary struct {
		Left  SpannedExpr
		Op    span.Spanned[BinaryOp]
		Right SpannedExpr
	}

	// Logical is `left and/or right`.
	Logical struct {
		Left  SpannedExpr
		Op    span.Spanned[LogicalOp]
		Right SpannedExpr
	}

	// Unary is `op value`.
	Unary struct {
		Op    span.Spanned[UnaryOp]
		Value SpannedExpr
	}

	// Grouping is a parenthesized expression.
	Grouping struct {
		Inner SpannedExpr
	}

	// Number is a numeric literal.
	Number struct {
		Value float64
	}

	// String is a string literal.
	String struct {
		Value string
	}

	// Boolean is true or false.
	Boolean struct {
		Value bool
	}

	// Nil is the nil literal.
	Nil struct{}

	// This is the `this` expression inside methods.
	This struct{}

	// Super is `super.name`.
	Super struct {
		Name Identifier
	}

	// Variable reads a named variable.
	Variable struct {
		Name Identifier
	}

	// Assign is `name = value`.
	Assign struct {
		Name  Identifier
		Value SpannedExpr
	}

	// Call is `callee(args...)`.
	Call struct {
		Callee SpannedExpr
		Args   []SpannedExpr
	}

	// Get is `object.name`.
	Get struct {
		Object SpannedExpr
		Name   Identifier
	}

	// Set is `object.name = value`.
	Set struct {
		Object SpannedExpr
		Name   Identifier
		Value  SpannedExpr
	}

	// List is a list literal `[a, b, c]`.
	List struct {
		Items []SpannedExpr
	}

	// Index is `object[index]`.
	Index struct {
		Object SpannedExpr
		Key    SpannedExpr
	}

	// IndexSet is `object[index] = value`.
	IndexSet struct {
		Object SpannedExpr
		Key    SpannedExpr
		Value  SpannedExpr
	}
)

func (*Binary) expr()   {}
func (*Logical) expr()  {}
func (*Unary) expr()    {}
func (*Grouping) expr() {}
func (*Number) expr()   {}
func (*String) expr()   {}
func (*Boolean) expr()  {}
func (*Nil) expr()      {}
func (*This) expr()     {}
func (*Super) expr()    {}
func (*Variable) expr() {}
func (*Assign) expr()   {}
func (*Call) expr()     {}
func (*Get) expr()      {}
func (*Set) expr()      {}
func (*List) expr()     {}
func (*Index) expr()    {}
func (*IndexSet) expr() {}

type (
	// Expression is an expression statement.
	Expression struct {
		Expr SpannedExpr
	}

	// PrintStmt is `print expr;`.
	PrintStmt struct {
		Expr SpannedExpr
	}

	// VarStmt is `var name [= init];`.
	VarStmt struct {
		Name Identifier
		Init *SpannedExpr
	}

	// IfStmt is `if (cond) then [else otherwise]`.
	IfStmt struct {
		Cond SpannedExpr
		Then SpannedStmt
		Else *SpannedStmt
	}

	// Block is `{ stmts... }`.
	Block struct {
		Stmts []SpannedStmt
	}

	// WhileStmt is `while (cond) body`. `for` loops desugar to this.
	WhileStmt struct {
		Cond SpannedExpr
		Body SpannedStmt
	}

	// ReturnStmt is `return [expr];`.
	ReturnStmt struct {
		Value *SpannedExpr
	}

	// FunStmt declares a function or method.
	FunStmt struct {
		Name   Identifier
		Params []Identifier
		Body   []SpannedStmt
	}

	// ClassStmt declares a class with optional superclass.
	ClassStmt struct {
		Name    Identifier
		Super   *Identifier
		Methods []span.Spanned[*FunStmt]
	}

	// ImportStmt is `import "path" [for a, b];`.
	ImportStmt struct {
		Path  span.Spanned[string]
		Names []span.Spanned[string]
	}
)

func (*Expression) stmt() {}
func (*PrintStmt) stmt()  {}
func (*VarStmt) stmt()    {}
func (*IfStmt) stmt()     {}
func (*Block) stmt()      {}
func (*WhileStmt) stmt()  {}
func (*ReturnStmt) stmt() {}
func (*FunStmt) stmt()    {}
func (*ClassStmt) stmt()  {}
func (*ImportStmt) stmt() {}
