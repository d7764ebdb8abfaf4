// Package scanner turns Lox source text into a stream of spanned tokens.
//
// The scanner never fails: unterminated strings and unexpected runes become
// UnterminatedString and Unknown tokens, which the parser reports.
package scanner

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vk/loxgo/internal/span"
	"github.com/vk/loxgo/internal/token"
)

type scanner struct {
	src string
	pos span.Pos
}

func (s *scanner) peek() (rune, bool) {
	if int(s.pos) >= len(s.src) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r, true
}

func (s *scanner) peekNext() (rune, bool) {
	r, ok := s.peek()
	if !ok {
		return 0, false
	}
	next := s.pos.Shift(r)
	if int(next) >= len(s.src) {
		return 0, false
	}
	r2, _ := utf8.DecodeRuneInString(s.src[next:])
	return r2, true
}

func (s *scanner) next() (rune, bool) {
	r, ok := s.peek()
	if !ok {
		return 0, false
	}
	s.pos = s.pos.Shift(r)
	return r, true
}

func (s *scanner) consumeIf(f func(rune) bool) bool {
	r, ok := s.peek()
	if !ok || !f(r) {
		return false
	}
	s.next()
	return true
}

// consumeIfNext consumes the current rune only when the rune after it
// matches f. Used for the fractional part of numbers: "99." must scan as
// the number 99 followed by a dot.
func (s *scanner) consumeIfNext(f func(rune) bool) bool {
	r, ok := s.peekNext()
	if !ok || !f(r) {
		return false
	}
	s.next()
	return true
}

func (s *scanner) consumeWhile(f func(rune) bool) string {
	var b strings.Builder
	for {
		r, ok := s.peek()
		if !ok || !f(r) {
			break
		}
		s.next()
		b.WriteRune(r)
	}
	return b.String()
}

// Scan tokenizes the whole buffer, attaching byte spans to every token.
// Whitespace and // comments produce no tokens.
func Scan(src string) []span.Spanned[token.Token] {
	s := &scanner{src: src}
	var tokens []span.Spanned[token.Token]

	for {
		start := s.pos
		r, ok := s.next()
		if !ok {
			break
		}

		tok, produced := s.match(r)
		if produced {
			tokens = append(tokens, span.WithSpan(tok, span.New(start, s.pos)))
		}
	}

	return tokens
}

func (s *scanner) match(r rune) (token.Token, bool) {
	switch r {
	case ' ', '\n', '\t', '\r':
		return token.Token{}, false
	case '=':
		return s.either('=', token.EqualEqual, token.Equal), true
	case '!':
		return s.either('=', token.BangEqual, token.Bang), true
	case '<':
		return s.either('=', token.LessEqual, token.Less), true
	case '>':
		return s.either('=', token.GreaterEqual, token.Greater), true
	case '/':
		if s.consumeIf(func(r rune) bool { return r == '/' }) {
			s.consumeWhile(func(r rune) bool { return r != '\n' })
			return token.Token{}, false
		}
		return token.Token{Kind: token.Slash}, true
	case '"':
		text := s.consumeWhile(func(r rune) bool { return r != '"' })
		if _, ok := s.next(); !ok {
			return token.Token{Kind: token.UnterminatedString}, true
		}
		return token.Token{Kind: token.String, Text: text}, true
	case '.':
		return token.Token{Kind: token.Dot}, true
	case '(':
		return token.Token{Kind: token.LeftParen}, true
	case ')':
		return token.Token{Kind: token.RightParen}, true
	case '{':
		return token.Token{Kind: token.LeftBrace}, true
	case '}':
		return token.Token{Kind: token.RightBrace}, true
	case '[':
		return token.Token{Kind: token.LeftBracket}, true
	case ']':
		return token.Token{Kind: token.RightBracket}, true
	case ',':
		return token.Token{Kind: token.Comma}, true
	case '-':
		return token.Token{Kind: token.Minus}, true
	case '+':
		return token.Token{Kind: token.Plus}, true
	case ';':
		return token.Token{Kind: token.Semicolon}, true
	case '*':
		return token.Token{Kind: token.Star}, true
	}

	if isDigit(r) {
		return s.number(r), true
	}
	if isIdentStart(r) {
		return s.identifier(r), true
	}
	return token.Token{Kind: token.Unknown, Text: string(r)}, true
}

func (s *scanner) either(match rune, matched, unmatched token.Kind) token.Token {
	if s.consumeIf(func(r rune) bool { return r == match }) {
		return token.Token{Kind: matched}
	}
	return token.Token{Kind: unmatched}
}

func (s *scanner) number(first rune) token.Token {
	var b strings.Builder
	b.WriteRune(first)
	b.WriteString(s.consumeWhile(isDigit))

	if r, ok := s.peek(); ok && r == '.' && s.consumeIfNext(isDigit) {
		b.WriteRune('.')
		b.WriteString(s.consumeWhile(isDigit))
	}

	// The scanned text is always a valid float literal.
	value, _ := strconv.ParseFloat(b.String(), 64)
	return token.Token{Kind: token.Number, Number: value}
}

func (s *scanner) identifier(first rune) token.Token {
	var b strings.Builder
	b.WriteRune(first)
	b.WriteString(s.consumeWhile(isIdentPart))

	text := b.String()
	if kind, ok := token.Keywords[text]; ok {
		return token.Token{Kind: kind}
	}
	return token.Token{Kind: token.Identifier, Text: text}
}

// isDigit accepts ASCII digits only; non-ASCII digit runes become Unknown
// tokens rather than misparsed numbers.
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
