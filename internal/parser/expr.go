package parser

import (
	"fmt"

	"github.com/vk/loxgo/internal/ast"
	"github.com/vk/loxgo/internal/span"
	"github.com/vk/loxgo/internal/token"
)

type precedence uint8

const (
	precNone precedence = iota
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precList
	precPrimary
)

func precedenceOf(kind token.Kind) precedence {
	switch kind {
	case token.Equal:
		return precAssign
	case token.Or:
		return precOr
	case token.And:
		return precAnd
	case token.BangEqual, token.EqualEqual:
		return precEquality
	case token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		return precComparison
	case token.Plus, token.Minus:
		return precTerm
	case token.Star, token.Slash:
		return precFactor
	case token.Bang:
		return precUnary
	case token.LeftParen, token.Dot:
		return precCall
	case token.LeftBracket:
		return precList
	default:
		return precNone
	}
}

func parseExpression(p *parser) (ast.SpannedExpr, bool) {
	return parseExpr(p, precNone)
}

func parseExpr(p *parser, prec precedence) (ast.SpannedExpr, bool) {
	expr, ok := parsePrefix(p)
	if !ok {
		return expr, false
	}

	for !p.isEOF() && prec < precedenceOf(p.peek()) {
		expr, ok = parseInfix(p, expr)
		if !ok {
			return expr, false
		}
	}
	return expr, true
}

func parsePrefix(p *parser) (ast.SpannedExpr, bool) {
	switch p.peek() {
	case token.Number, token.Nil, token.This, token.True, token.False,
		token.Identifier, token.Super, token.String:
		return parsePrimary(p)
	case token.Bang, token.Minus:
		return parseUnary(p)
	case token.LeftParen:
		return parseGrouping(p)
	case token.LeftBracket:
		return parseList(p)
	default:
		tok := p.peekToken()
		p.error(fmt.Sprintf("Unexpected %s", tok.Value), tok.Span)
		return ast.SpannedExpr{}, false
	}
}

func parseInfix(p *parser, left ast.SpannedExpr) (ast.SpannedExpr, bool) {
	switch p.peek() {
	case token.BangEqual, token.EqualEqual, token.Less, token.LessEqual,
		token.Greater, token.GreaterEqual, token.Plus, token.Minus,
		token.Star, token.Slash:
		return parseBinary(p, left)
	case token.Or, token.And:
		return parseLogical(p, left)
	case token.Equal:
		return parseAssign(p, left)
	case token.LeftParen:
		return parseCall(p, left)
	case token.LeftBracket:
		return parseIndex(p, left)
	case token.Dot:
		return parseGet(p, left)
	default:
		tok := p.peekToken()
		p.error(fmt.Sprintf("Unexpected %s", tok.Value), tok.Span)
		return ast.SpannedExpr{}, false
	}
}

func parsePrimary(p *parser) (ast.SpannedExpr, bool) {
	tok := p.advance()
	switch tok.Value.Kind {
	case token.Nil:
		return span.WithSpan[ast.Expr](&ast.Nil{}, tok.Span), true
	case token.This:
		return span.WithSpan[ast.Expr](&ast.This{}, tok.Span), true
	case token.Number:
		return span.WithSpan[ast.Expr](&ast.Number{Value: tok.Value.Number}, tok.Span), true
	case token.True:
		return span.WithSpan[ast.Expr](&ast.Boolean{Value: true}, tok.Span), true
	case token.False:
		return span.WithSpan[ast.Expr](&ast.Boolean{Value: false}, tok.Span), true
	case token.String:
		return span.WithSpan[ast.Expr](&ast.String{Value: tok.Value.Text}, tok.Span), true
	case token.Identifier:
		name := span.WithSpan(tok.Value.Text, tok.Span)
		return span.WithSpan[ast.Expr](&ast.Variable{Name: name}, tok.Span), true
	case token.Super:
		return parseSuper(p, tok)
	default:
		p.error(fmt.Sprintf("Expected primary got %s", tok.Value), tok.Span)
		return ast.SpannedExpr{}, false
	}
}

func parseSuper(p *parser, keyword span.Spanned[token.Token]) (ast.SpannedExpr, bool) {
	if _, ok := p.expect(token.Dot); !ok {
		return ast.SpannedExpr{}, false
	}
	name, ok := p.expectIdentifier()
	if !ok {
		return ast.SpannedExpr{}, false
	}
	s := span.Union(keyword.Span, name.Span)
	return span.WithSpan[ast.Expr](&ast.Super{Name: name}, s), true
}

func parseUnary(p *parser) (ast.SpannedExpr, bool) {
	tok := p.advance()
	var op ast.UnaryOp
	switch tok.Value.Kind {
	case token.Bang:
		op = ast.UnaryBang
	case token.Minus:
		op = ast.UnaryMinus
	default:
		p.error(fmt.Sprintf("Expected unary operator got %s", tok.Value), tok.Span)
		return ast.SpannedExpr{}, false
	}

	right, ok := parseExpr(p, precUnary)
	if !ok {
		return right, false
	}
	s := span.Union(tok.Span, right.Span)
	return span.WithSpan[ast.Expr](&ast.Unary{
		Op:    span.WithSpan(op, tok.Span),
		Value: right,
	}, s), true
}

func parseGrouping(p *parser) (ast.SpannedExpr, bool) {
	open, ok := p.expect(token.LeftParen)
	if !ok {
		return ast.SpannedExpr{}, false
	}
	inner, ok := parseExpression(p)
	if !ok {
		return inner, false
	}
	end, ok := p.expect(token.RightParen)
	if !ok {
		return ast.SpannedExpr{}, false
	}
	s := span.Union(open.Span, end.Span)
	return span.WithSpan[ast.Expr](&ast.Grouping{Inner: inner}, s), true
}

func parseList(p *parser) (ast.SpannedExpr, bool) {
	open, ok := p.expect(token.LeftBracket)
	if !ok {
		return ast.SpannedExpr{}, false
	}

	var items []ast.SpannedExpr
	if !p.check(token.RightBracket) {
		for {
			item, ok := parseExpression(p)
			if !ok {
				return item, false
			}
			items = append(items, item)
			if !p.check(token.Comma) {
				break
			}
			p.advance()
		}
	}

	end, ok := p.expect(token.RightBracket)
	if !ok {
		return ast.SpannedExpr{}, false
	}
	s := span.Union(open.Span, end.Span)
	return span.WithSpan[ast.Expr](&ast.List{Items: items}, s), true
}

func parseBinary(p *parser, left ast.SpannedExpr) (ast.SpannedExpr, bool) {
	prec := precedenceOf(p.peek())
	tok := p.advance()

	var op ast.BinaryOp
	switch tok.Value.Kind {
	case token.BangEqual:
		op = ast.BinaryBangEqual
	case token.EqualEqual:
		op = ast.BinaryEqualEqual
	case token.Less:
		op = ast.BinaryLess
	case token.LessEqual:
		op = ast.BinaryLessEqual
	case token.Greater:
		op = ast.BinaryGreater
	case token.GreaterEqual:
		op = ast.BinaryGreaterEqual
	case token.Plus:
		op = ast.BinaryPlus
	case token.Minus:
		op = ast.BinaryMinus
	case token.Star:
		op = ast.BinaryStar
	case token.Slash:
		op = ast.BinarySlash
	default:
		p.error(fmt.Sprintf("Expected binary operator got %s", tok.Value), tok.Span)
		return ast.SpannedExpr{}, false
	}

	right, ok := parseExpr(p, prec)
	if !ok {
		return right, false
	}
	s := span.Union(left.Span, right.Span)
	return span.WithSpan[ast.Expr](&ast.Binary{
		Left:  left,
		Op:    span.WithSpan(op, tok.Span),
		Right: right,
	}, s), true
}

func parseLogical(p *parser, left ast.SpannedExpr) (ast.SpannedExpr, bool) {
	prec := precedenceOf(p.peek())
	tok := p.advance()

	var op ast.LogicalOp
	switch tok.Value.Kind {
	case token.And:
		op = ast.LogicalAnd
	case token.Or:
		op = ast.LogicalOr
	default:
		p.error(fmt.Sprintf("Expected logical operator got %s", tok.Value), tok.Span)
		return ast.SpannedExpr{}, false
	}

	right, ok := parseExpr(p, prec)
	if !ok {
		return right, false
	}
	s := span.Union(left.Span, right.Span)
	return span.WithSpan[ast.Expr](&ast.Logical{
		Left:  left,
		Op:    span.WithSpan(op, tok.Span),
		Right: right,
	}, s), true
}

func parseAssign(p *parser, left ast.SpannedExpr) (ast.SpannedExpr, bool) {
	if _, ok := p.expect(token.Equal); !ok {
		return ast.SpannedExpr{}, false
	}
	right, ok := parseExpression(p)
	if !ok {
		return right, false
	}
	s := span.Union(left.Span, right.Span)

	switch target := left.Value.(type) {
	case *ast.Variable:
		return span.WithSpan[ast.Expr](&ast.Assign{Name: target.Name, Value: right}, s), true
	case *ast.Get:
		return span.WithSpan[ast.Expr](&ast.Set{
			Object: target.Object,
			Name:   target.Name,
			Value:  right,
		}, s), true
	case *ast.Index:
		return span.WithSpan[ast.Expr](&ast.IndexSet{
			Object: target.Object,
			Key:    target.Key,
			Value:  right,
		}, s), true
	default:
		p.error("Invalid left value", left.Span)
		return ast.SpannedExpr{}, false
	}
}

func parseCall(p *parser, left ast.SpannedExpr) (ast.SpannedExpr, bool) {
	if _, ok := p.expect(token.LeftParen); !ok {
		return ast.SpannedExpr{}, false
	}

	var args []ast.SpannedExpr
	if !p.check(token.RightParen) {
		for {
			arg, ok := parseExpression(p)
			if !ok {
				return arg, false
			}
			args = append(args, arg)
			if !p.check(token.Comma) {
				break
			}
			p.advance()
		}
	}

	end, ok := p.expect(token.RightParen)
	if !ok {
		return ast.SpannedExpr{}, false
	}
	s := span.Union(left.Span, end.Span)
	return span.WithSpan[ast.Expr](&ast.Call{Callee: left, Args: args}, s), true
}

func parseIndex(p *parser, left ast.SpannedExpr) (ast.SpannedExpr, bool) {
	if _, ok := p.expect(token.LeftBracket); !ok {
		return ast.SpannedExpr{}, false
	}
	key, ok := parseExpression(p)
	if !ok {
		return key, false
	}
	end, ok := p.expect(token.RightBracket)
	if !ok {
		return ast.SpannedExpr{}, false
	}
	s := span.Union(left.Span, end.Span)
	return span.WithSpan[ast.Expr](&ast.Index{Object: left, Key: key}, s), true
}

func parseGet(p *parser, left ast.SpannedExpr) (ast.SpannedExpr, bool) {
	if _, ok := p.expect(token.Dot); !ok {
		return ast.SpannedExpr{}, false
	}
	tok := p.advance()
	if tok.Value.Kind != token.Identifier {
		p.error(fmt.Sprintf("Expected identifier got %s", tok.Value), tok.Span)
		return ast.SpannedExpr{}, false
	}
	name := span.WithSpan(tok.Value.Text, tok.Span)
	s := span.Union(left.Span, tok.Span)
	return span.WithSpan[ast.Expr](&ast.Get{Object: left, Name: name}, s), true
}
