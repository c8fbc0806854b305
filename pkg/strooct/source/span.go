// Package source provides borrowed views over source buffers and the
// loaders that produce those buffers from files.
package source

import (
	"bytes"
	"fmt"
)

// Span is an immutable, non-owning view of len bytes starting at off in
// buf. Spans never copy the bytes they view, so the buffer must outlive
// every Span taken from it.
type Span struct {
	buf []byte
	off int
	n   int
}

// NewSpan returns a Span covering all of buf.
func NewSpan(buf []byte) Span {
	return Span{buf: buf, n: len(buf)}
}

// SpanOf returns a Span over a copy of s. It is used for values such as
// file names that are not part of a source buffer.
func SpanOf(s string) Span {
	return NewSpan([]byte(s))
}

// SpanAt returns the view of n bytes starting at off in buf.
// It panics if the range does not lie within buf.
func SpanAt(buf []byte, off, n int) Span {
	if off < 0 || n < 0 || off+n > len(buf) {
		panic(fmt.Sprintf("source: span [%d:%d] out of range for buffer of length %d", off, off+n, len(buf)))
	}
	return Span{buf: buf, off: off, n: n}
}

// Bytes returns the viewed bytes. The result aliases the underlying
// buffer and must not be modified.
func (s Span) Bytes() []byte {
	return s.buf[s.off : s.off+s.n : s.off+s.n]
}

// String returns the viewed bytes as a string.
func (s Span) String() string {
	return string(s.Bytes())
}

// Len returns the number of bytes in the view.
func (s Span) Len() int { return s.n }

// Offset returns the start of the view within its buffer.
func (s Span) Offset() int { return s.off }

// End returns the offset one past the last viewed byte.
func (s Span) End() int { return s.off + s.n }

// IsEmpty reports whether the view has no bytes.
func (s Span) IsEmpty() bool { return s.n == 0 }

// At returns the i-th byte of the view.
func (s Span) At(i int) byte {
	return s.Bytes()[i]
}

// Slice returns the sub-view [i:j) sharing the same buffer.
// Like a Go slice expression it panics when the bounds are invalid.
func (s Span) Slice(i, j int) Span {
	if i < 0 || j < i || j > s.n {
		panic(fmt.Sprintf("source: slice [%d:%d] out of range for span of length %d", i, j, s.n))
	}
	return Span{buf: s.buf, off: s.off + i, n: j - i}
}

// From returns the sub-view starting at i and running to the end.
func (s Span) From(i int) Span {
	return s.Slice(i, s.n)
}

// Equal reports whether both views hold the same bytes.
func (s Span) Equal(other Span) bool {
	return bytes.Equal(s.Bytes(), other.Bytes())
}

// EqualString reports whether the view holds exactly the bytes of str.
func (s Span) EqualString(str string) bool {
	return string(s.Bytes()) == str
}

// Compare orders two views lexically. When one is a prefix of the other
// the shorter one sorts first.
func (s Span) Compare(other Span) int {
	return bytes.Compare(s.Bytes(), other.Bytes())
}

// HasPrefix reports whether the view starts with prefix.
func (s Span) HasPrefix(prefix string) bool {
	return s.n >= len(prefix) && string(s.buf[s.off:s.off+len(prefix)]) == prefix
}
