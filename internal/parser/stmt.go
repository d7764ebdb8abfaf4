package parser

import (
	"fmt"

	"github.com/vk/loxgo/internal/ast"
	"github.com/vk/loxgo/internal/span"
	"github.com/vk/loxgo/internal/token"
)

func parseProgram(p *parser) ast.Program {
	var program ast.Program
	for !p.isEOF() {
		stmt, ok := parseDeclaration(p)
		if !ok {
			p.synchronize()
			continue
		}
		program = append(program, stmt)
	}
	return program
}

func parseDeclaration(p *parser) (ast.SpannedStmt, bool) {
	switch p.peek() {
	case token.Var:
		return parseVar(p)
	case token.Fun:
		return parseFun(p)
	case token.Class:
		return parseClass(p)
	case token.Import:
		return parseImport(p)
	default:
		return parseStatement(p)
	}
}

func parseStatement(p *parser) (ast.SpannedStmt, bool) {
	switch p.peek() {
	case token.Print:
		return parsePrint(p)
	case token.If:
		return parseIf(p)
	case token.LeftBrace:
		return parseBlock(p)
	case token.While:
		return parseWhile(p)
	case token.For:
		return parseFor(p)
	case token.Return:
		return parseReturn(p)
	default:
		return parseExpressionStatement(p)
	}
}

func parseExpressionStatement(p *parser) (ast.SpannedStmt, bool) {
	expr, ok := parseExpression(p)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	semi, ok := p.expect(token.Semicolon)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	s := span.Union(expr.Span, semi.Span)
	return span.WithSpan[ast.Stmt](&ast.Expression{Expr: expr}, s), true
}

func parsePrint(p *parser) (ast.SpannedStmt, bool) {
	keyword, _ := p.expect(token.Print)
	expr, ok := parseExpression(p)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	semi, ok := p.expect(token.Semicolon)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	s := span.Union(keyword.Span, semi.Span)
	return span.WithSpan[ast.Stmt](&ast.PrintStmt{Expr: expr}, s), true
}

func parseVar(p *parser) (ast.SpannedStmt, bool) {
	keyword, _ := p.expect(token.Var)
	name, ok := p.expectIdentifier()
	if !ok {
		return ast.SpannedStmt{}, false
	}

	var init *ast.SpannedExpr
	if p.optionally(token.Equal) {
		expr, ok := parseExpression(p)
		if !ok {
			return ast.SpannedStmt{}, false
		}
		init = &expr
	}

	semi, ok := p.expect(token.Semicolon)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	s := span.Union(keyword.Span, semi.Span)
	return span.WithSpan[ast.Stmt](&ast.VarStmt{Name: name, Init: init}, s), true
}

func parseIf(p *parser) (ast.SpannedStmt, bool) {
	keyword, _ := p.expect(token.If)
	if _, ok := p.expect(token.LeftParen); !ok {
		return ast.SpannedStmt{}, false
	}
	cond, ok := parseExpression(p)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	if _, ok := p.expect(token.RightParen); !ok {
		return ast.SpannedStmt{}, false
	}
	then, ok := parseStatement(p)
	if !ok {
		return ast.SpannedStmt{}, false
	}

	s := span.Union(keyword.Span, then.Span)
	var otherwise *ast.SpannedStmt
	if p.optionally(token.Else) {
		stmt, ok := parseStatement(p)
		if !ok {
			return ast.SpannedStmt{}, false
		}
		otherwise = &stmt
		s = span.Union(keyword.Span, stmt.Span)
	}

	return span.WithSpan[ast.Stmt](&ast.IfStmt{Cond: cond, Then: then, Else: otherwise}, s), true
}

func parseBlock(p *parser) (ast.SpannedStmt, bool) {
	open, _ := p.expect(token.LeftBrace)

	var stmts []ast.SpannedStmt
	for !p.isEOF() && !p.check(token.RightBrace) {
		stmt, ok := parseDeclaration(p)
		if !ok {
			return ast.SpannedStmt{}, false
		}
		stmts = append(stmts, stmt)
	}

	end, ok := p.expect(token.RightBrace)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	s := span.Union(open.Span, end.Span)
	return span.WithSpan[ast.Stmt](&ast.Block{Stmts: stmts}, s), true
}

func parseWhile(p *parser) (ast.SpannedStmt, bool) {
	keyword, _ := p.expect(token.While)
	if _, ok := p.expect(token.LeftParen); !ok {
		return ast.SpannedStmt{}, false
	}
	cond, ok := parseExpression(p)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	if _, ok := p.expect(token.RightParen); !ok {
		return ast.SpannedStmt{}, false
	}
	body, ok := parseStatement(p)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	s := span.Union(keyword.Span, body.Span)
	return span.WithSpan[ast.Stmt](&ast.WhileStmt{Cond: cond, Body: body}, s), true
}

// parseFor desugars `for (init; cond; incr) body` into a block holding the
// initializer and a while loop whose body runs the increment after the
// original body.
func parseFor(p *parser) (ast.SpannedStmt, bool) {
	keyword, _ := p.expect(token.For)
	if _, ok := p.expect(token.LeftParen); !ok {
		return ast.SpannedStmt{}, false
	}

	var init *ast.SpannedStmt
	switch p.peek() {
	case token.Semicolon:
		p.advance()
	case token.Var:
		stmt, ok := parseVar(p)
		if !ok {
			return ast.SpannedStmt{}, false
		}
		init = &stmt
	default:
		stmt, ok := parseExpressionStatement(p)
		if !ok {
			return ast.SpannedStmt{}, false
		}
		init = &stmt
	}

	var cond ast.SpannedExpr
	if p.check(token.Semicolon) {
		cond = span.WithSpan[ast.Expr](&ast.Boolean{Value: true}, keyword.Span)
	} else {
		expr, ok := parseExpression(p)
		if !ok {
			return ast.SpannedStmt{}, false
		}
		cond = expr
	}
	if _, ok := p.expect(token.Semicolon); !ok {
		return ast.SpannedStmt{}, false
	}

	var incr *ast.SpannedExpr
	if !p.check(token.RightParen) {
		expr, ok := parseExpression(p)
		if !ok {
			return ast.SpannedStmt{}, false
		}
		incr = &expr
	}
	if _, ok := p.expect(token.RightParen); !ok {
		return ast.SpannedStmt{}, false
	}

	body, ok := parseStatement(p)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	s := span.Union(keyword.Span, body.Span)

	if incr != nil {
		incrStmt := span.WithSpan[ast.Stmt](&ast.Expression{Expr: *incr}, incr.Span)
		body = span.WithSpan[ast.Stmt](&ast.Block{
			Stmts: []ast.SpannedStmt{body, incrStmt},
		}, body.Span)
	}

	loop := span.WithSpan[ast.Stmt](&ast.WhileStmt{Cond: cond, Body: body}, s)

	if init != nil {
		return span.WithSpan[ast.Stmt](&ast.Block{
			Stmts: []ast.SpannedStmt{*init, loop},
		}, s), true
	}
	return loop, true
}

func parseReturn(p *parser) (ast.SpannedStmt, bool) {
	keyword, _ := p.expect(token.Return)

	var value *ast.SpannedExpr
	if !p.check(token.Semicolon) {
		expr, ok := parseExpression(p)
		if !ok {
			return ast.SpannedStmt{}, false
		}
		value = &expr
	}

	semi, ok := p.expect(token.Semicolon)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	s := span.Union(keyword.Span, semi.Span)
	return span.WithSpan[ast.Stmt](&ast.ReturnStmt{Value: value}, s), true
}

func parseFun(p *parser) (ast.SpannedStmt, bool) {
	keyword, _ := p.expect(token.Fun)
	fun, s, ok := parseFunction(p, keyword.Span)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	return span.WithSpan[ast.Stmt](fun, s), true
}

// parseFunction parses `name(params) { body }`, shared by function
// declarations and class methods.
func parseFunction(p *parser, start span.Span) (*ast.FunStmt, span.Span, bool) {
	name, ok := p.expectIdentifier()
	if !ok {
		return nil, span.Span{}, false
	}
	if _, ok := p.expect(token.LeftParen); !ok {
		return nil, span.Span{}, false
	}

	var params []ast.Identifier
	if !p.check(token.RightParen) {
		for {
			param, ok := p.expectIdentifier()
			if !ok {
				return nil, span.Span{}, false
			}
			params = append(params, param)
			if !p.check(token.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, ok := p.expect(token.RightParen); !ok {
		return nil, span.Span{}, false
	}

	if !p.check(token.LeftBrace) {
		tok := p.peekToken()
		p.error(fmt.Sprintf("Expected %s got %s", token.LeftBrace, tok.Value), tok.Span)
		return nil, span.Span{}, false
	}
	body, ok := parseBlock(p)
	if !ok {
		return nil, span.Span{}, false
	}

	block := body.Value.(*ast.Block)
	s := span.Union(start, body.Span)
	return &ast.FunStmt{Name: name, Params: params, Body: block.Stmts}, s, true
}

func parseClass(p *parser) (ast.SpannedStmt, bool) {
	keyword, _ := p.expect(token.Class)
	name, ok := p.expectIdentifier()
	if !ok {
		return ast.SpannedStmt{}, false
	}

	var super *ast.Identifier
	if p.optionally(token.Less) {
		parent, ok := p.expectIdentifier()
		if !ok {
			return ast.SpannedStmt{}, false
		}
		super = &parent
	}

	if _, ok := p.expect(token.LeftBrace); !ok {
		return ast.SpannedStmt{}, false
	}

	var methods []span.Spanned[*ast.FunStmt]
	for !p.isEOF() && !p.check(token.RightBrace) {
		start := p.peekToken().Span
		method, s, ok := parseFunction(p, start)
		if !ok {
			return ast.SpannedStmt{}, false
		}
		methods = append(methods, span.WithSpan(method, s))
	}

	end, ok := p.expect(token.RightBrace)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	s := span.Union(keyword.Span, end.Span)
	return span.WithSpan[ast.Stmt](&ast.ClassStmt{
		Name:    name,
		Super:   super,
		Methods: methods,
	}, s), true
}

func parseImport(p *parser) (ast.SpannedStmt, bool) {
	keyword, _ := p.expect(token.Import)
	path, ok := p.expectString()
	if !ok {
		return ast.SpannedStmt{}, false
	}

	var names []span.Spanned[string]
	if p.optionally(token.For) {
		for {
			name, ok := p.expectIdentifier()
			if !ok {
				return ast.SpannedStmt{}, false
			}
			names = append(names, name)
			if !p.check(token.Comma) {
				break
			}
			p.advance()
		}
	}

	semi, ok := p.expect(token.Semicolon)
	if !ok {
		return ast.SpannedStmt{}, false
	}
	s := span.Union(keyword.Span, semi.Span)
	return span.WithSpan[ast.Stmt](&ast.ImportStmt{Path: path, Names: names}, s), true
}
