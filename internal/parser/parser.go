// Package parser builds an AST from a token stream. Expressions use a Pratt
// parser; statements use recursive descent with statement-level recovery so
// one bad statement does not hide later errors.
package parser

import (
	"fmt"

	"github.com/vk/loxgo/internal/ast"
	"github.com/vk/loxgo/internal/scanner"
	"github.com/vk/loxgo/internal/span"
	"github.com/vk/loxgo/internal/token"
)

// Parse scans and parses a compilation unit. The returned diagnostics are
// non-empty exactly when parsing failed.
func Parse(src string) (ast.Program, []span.Diagnostic) {
	tokens := scanner.Scan(src)
	p := newParser(tokens)
	program := parseProgram(p)
	return program, p.diagnostics
}

type parser struct {
	tokens      []span.Spanned[token.Token]
	cursor      int
	diagnostics []span.Diagnostic

	eof span.Spanned[token.Token]
}

func newParser(tokens []span.Spanned[token.Token]) *parser {
	eofSpan := span.Span{}
	if len(tokens) > 0 {
		last := tokens[len(tokens)-1].Span
		eofSpan = span.New(last.End, last.End)
	}
	return &parser{
		tokens: tokens,
		eof:    span.WithSpan(token.Token{Kind: token.EOF}, eofSpan),
	}
}

func (p *parser) error(message string, s span.Span) {
	p.diagnostics = append(p.diagnostics, span.Diagnostic{Span: s, Message: message})
}

func (p *parser) isEOF() bool {
	return p.check(token.EOF)
}

func (p *parser) check(kind token.Kind) bool {
	return p.peek() == kind
}

func (p *parser) peek() token.Kind {
	return p.peekToken().Value.Kind
}

func (p *parser) peekToken() span.Spanned[token.Token] {
	if p.cursor < len(p.tokens) {
		return p.tokens[p.cursor]
	}
	return p.eof
}

func (p *parser) advance() span.Spanned[token.Token] {
	tok := p.peekToken()
	if p.cursor < len(p.tokens) {
		p.cursor++
	}
	return tok
}

func (p *parser) expect(kind token.Kind) (span.Spanned[token.Token], bool) {
	tok := p.advance()
	if tok.Value.Kind == kind {
		return tok, true
	}
	p.error(fmt.Sprintf("Expected %s got %s", kind, tok.Value), tok.Span)
	return tok, false
}

func (p *parser) optionally(kind token.Kind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectIdentifier() (ast.Identifier, bool) {
	tok := p.advance()
	if tok.Value.Kind == token.Identifier {
		return span.WithSpan(tok.Value.Text, tok.Span), true
	}
	p.error(fmt.Sprintf("Expected %s got %s", token.Identifier, tok.Value), tok.Span)
	return ast.Identifier{}, false
}

func (p *parser) expectString() (span.Spanned[string], bool) {
	tok := p.advance()
	if tok.Value.Kind == token.String {
		return span.WithSpan(tok.Value.Text, tok.Span), true
	}
	p.error(fmt.Sprintf("Expected %s got %s", token.String, tok.Value), tok.Span)
	return span.Spanned[string]{}, false
}

// synchronize skips tokens until a likely statement boundary.
func (p *parser) synchronize() {
	for !p.isEOF() {
		if p.advance().Value.Kind == token.Semicolon {
			return
		}
		switch p.peek() {
		case token.Class, token.Fun, token.Var, token.For,
			token.If, token.While, token.Print, token.Return, token.Import:
			return
		}
	}
}
