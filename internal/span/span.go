// Package span provides byte-level source positions, spans and diagnostics
// shared by the scanner, parser and compiler.
package span

import (
	"sort"
	"unicode/utf8"
)

// Pos is a byte offset into a source buffer.
type Pos uint32

// Shift advances the position past the given rune.
func (p Pos) Shift(r rune) Pos {
	return p + Pos(utf8.RuneLen(r))
}

// Span is a half-open byte range [Start, End) in a source buffer.
type Span struct {
	Start Pos
	End   Pos
}

// New returns the span covering [start, end).
func New(start, end Pos) Span {
	return Span{Start: start, End: end}
}

// Union returns the smallest span covering both a and b.
func Union(a, b Span) Span {
	s := a
	if b.Start < s.Start {
		s.Start = b.Start
	}
	if b.End > s.End {
		s.End = b.End
	}
	return s
}

// Spanned pairs a value with the span it was read from.
type Spanned[T any] struct {
	Value T
	Span  Span
}

// WithSpan constructs a Spanned value.
func WithSpan[T any](value T, s Span) Spanned[T] {
	return Spanned[T]{Value: value, Span: s}
}

// Diagnostic is a compile-time error or warning anchored to a span.
type Diagnostic struct {
	Span    Span
	Message string
}

// LineOffsets maps byte positions back to 1-based line numbers.
type LineOffsets struct {
	offsets []uint32
	len     uint32
}

// NewLineOffsets indexes the newlines of data.
func NewLineOffsets(data string) *LineOffsets {
	offsets := []uint32{0}
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			offsets = append(offsets, uint32(i+1))
		}
	}
	return &LineOffsets{offsets: offsets, len: uint32(len(data))}
}

// Line returns the 1-based line containing pos. pos must not exceed the
// length of the indexed data.
func (l *LineOffsets) Line(pos Pos) int {
	offset := uint32(pos)
	if offset > l.len {
		panic("span: position past end of data")
	}

	i := sort.Search(len(l.offsets), func(i int) bool { return l.offsets[i] >= offset })
	if i < len(l.offsets) && l.offsets[i] == offset {
		return i + 1
	}
	return i
}
