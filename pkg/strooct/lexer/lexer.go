// Package lexer turns IEC 61131-3 Structured Text source into tokens.
//
// The lexer is a byte-oriented state machine: every call to Next skips
// whitespace and then tries a fixed sequence of recognizers (keywords,
// comments, pragmas, time, identifier, string, number, operator,
// delimiter). When nothing matches, the rest of the input becomes a single
// ILLEGAL token and the lexer is done. There is no resynchronization.
package lexer

import (
	"iter"

	"github.com/strooct/strooct/pkg/strooct/source"
)

// Lexer produces tokens from one immutable source buffer.
type Lexer struct {
	src       source.Span   // remaining, unconsumed input
	file      source.Span   // source file name, for diagnostics
	keywords  *KeywordTable // keyword table consulted first
	position  int           // byte offset of the cursor
	line      int           // zero-based line of the cursor
	column    int           // zero-based column of the cursor
	exhausted bool
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithKeywords replaces the default Structured Text keyword table.
func WithKeywords(t *KeywordTable) Option {
	return func(l *Lexer) {
		if t != nil {
			l.keywords = t
		}
	}
}

// New creates a lexer over src. The buffer is borrowed, not copied: it
// must stay unmodified while the lexer and its tokens are in use.
func New(filename string, src []byte, opts ...Option) *Lexer {
	l := &Lexer{
		src:      source.NewSpan(src),
		file:     source.SpanOf(filename),
		keywords: defaultKeywords,
	}
	for _, opt := range opts {
		opt(l)
	}
	if len(src) == 0 {
		l.finish()
	}
	return l
}

// Tokenize returns every token of src.
func Tokenize(filename string, src []byte, opts ...Option) []Token {
	var tokens []Token
	for tok := range New(filename, src, opts...).All() {
		tokens = append(tokens, tok)
	}
	return tokens
}

// Next returns the next token. It returns false once the input is used
// up, and keeps returning false on every later call.
func (l *Lexer) Next() (Token, bool) {
	if l.exhausted {
		return Token{}, false
	}

	l.advance(l.whitespaceLen())
	if l.src.IsEmpty() {
		l.finish()
		return Token{}, false
	}

	kind, n := l.match()
	tok := Token{
		File:   l.file,
		Lexeme: l.src.Slice(0, n),
		Offset: l.position,
		Line:   l.line,
		Column: l.column,
		Kind:   kind,
	}
	l.advance(n)
	if l.src.IsEmpty() {
		l.finish()
	}
	return tok, true
}

// All returns an iterator over the remaining tokens.
func (l *Lexer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok, ok := l.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

// Exhausted reports whether Next has reached the end of input.
func (l *Lexer) Exhausted() bool {
	return l.exhausted
}

// Position returns the cursor's byte offset, line and column.
func (l *Lexer) Position() (offset, line, column int) {
	return l.position, l.line, l.column
}

// Filename returns the name the lexer was created with.
func (l *Lexer) Filename() string {
	return l.file.String()
}

// finish drops the remaining view so later calls do no work.
func (l *Lexer) finish() {
	l.src = source.Span{}
	l.exhausted = true
}

// match decides the kind and length of the token at the cursor.
func (l *Lexer) match() (TokenKind, int) {
	rest := l.src.Bytes()

	if kind, n, ok := l.keywords.Match(rest); ok {
		return kind, n
	}
	for _, recognize := range recognizers {
		if kind, n := recognize(rest); n > 0 {
			return kind, n
		}
	}

	// Nothing matched: the rest of the input is one illegal token.
	return ILLEGAL, len(rest)
}

// whitespaceLen counts the whitespace bytes at the cursor.
func (l *Lexer) whitespaceLen() int {
	rest := l.src.Bytes()
	n := 0
	for n < len(rest) && isSpace(rest[n]) {
		n++
	}
	return n
}

// advance consumes n bytes, tracking lines and columns per byte.
func (l *Lexer) advance(n int) {
	n = min(n, l.src.Len())
	rest := l.src.Bytes()
	for i := 0; i < n; i++ {
		if rest[i] == '\n' {
			l.line++
			l.column = 0
		} else {
			l.column++
		}
	}
	l.position += n
	l.src = l.src.From(n)
}
