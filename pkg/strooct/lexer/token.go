package lexer

import (
	"fmt"

	"github.com/strooct/strooct/pkg/strooct/source"
)

// TokenKind classifies a token
type TokenKind int

const (
	// Special tokens
	ILLEGAL TokenKind = iota
	COMMENT           // // line comment or (* block comment *)
	PRAGMA            // #include

	// Identifiers and literals
	IDENT  // counter, _private, Motor_1
	NUMBER // 42, -4.21e-4
	STRING // 'text' or "text"
	TIME   // T#1d2h3m4s5ms

	// Operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	ASSIGN   // :=
	EQ       // =
	NOT_EQ   // <>
	GT       // >
	GTE      // >=
	LT       // <
	LTE      // <=

	// Delimiters
	DOT       // .
	COMMA     // ,
	COLON     // :
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	LBRACE    // {
	RBRACE    // }

	keywordBeg
	// Logic
	NOT
	TRUE
	FALSE
	AND
	OR
	XOR

	// Control flow
	IF
	THEN
	ELSIF
	ELSE
	END_IF
	CASE
	OF
	END_CASE
	FOR
	TO
	BY
	DO
	END_FOR
	WHILE
	END_WHILE

	// Program organisation units
	PROGRAM
	END_PROGRAM
	EXIT
	ACTION
	END_ACTION
	FUNCTION
	END_FUNCTION
	FUNCTION_BLOCK
	END_FUNCTION_BLOCK
	RETURN

	// Declarations
	VAR
	VAR_INPUT
	VAR_OUTPUT
	CONSTANT
	END_VAR
	TYPE
	END_TYPE
	STRUCT
	END_STRUCT
	UNION
	END_UNION
	keywordEnd
)

var kindNames = [...]string{
	ILLEGAL: "ILLEGAL",
	COMMENT: "COMMENT",
	PRAGMA:  "PRAGMA",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",
	TIME:   "TIME",

	PLUS:     "PLUS",
	MINUS:    "MINUS",
	ASTERISK: "ASTERISK",
	SLASH:    "SLASH",
	PERCENT:  "PERCENT",
	ASSIGN:   "ASSIGN",
	EQ:       "EQ",
	NOT_EQ:   "NOT_EQ",
	GT:       "GT",
	GTE:      "GTE",
	LT:       "LT",
	LTE:      "LTE",

	DOT:       "DOT",
	COMMA:     "COMMA",
	COLON:     "COLON",
	SEMICOLON: "SEMICOLON",
	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	LBRACKET:  "LBRACKET",
	RBRACKET:  "RBRACKET",
	LBRACE:    "LBRACE",
	RBRACE:    "RBRACE",

	NOT:   "NOT",
	TRUE:  "TRUE",
	FALSE: "FALSE",
	AND:   "AND",
	OR:    "OR",
	XOR:   "XOR",

	IF:        "IF",
	THEN:      "THEN",
	ELSIF:     "ELSIF",
	ELSE:      "ELSE",
	END_IF:    "END_IF",
	CASE:      "CASE",
	OF:        "OF",
	END_CASE:  "END_CASE",
	FOR:       "FOR",
	TO:        "TO",
	BY:        "BY",
	DO:        "DO",
	END_FOR:   "END_FOR",
	WHILE:     "WHILE",
	END_WHILE: "END_WHILE",

	PROGRAM:            "PROGRAM",
	END_PROGRAM:        "END_PROGRAM",
	EXIT:               "EXIT",
	ACTION:             "ACTION",
	END_ACTION:         "END_ACTION",
	FUNCTION:           "FUNCTION",
	END_FUNCTION:       "END_FUNCTION",
	FUNCTION_BLOCK:     "FUNCTION_BLOCK",
	END_FUNCTION_BLOCK: "END_FUNCTION_BLOCK",
	RETURN:             "RETURN",

	VAR:        "VAR",
	VAR_INPUT:  "VAR_INPUT",
	VAR_OUTPUT: "VAR_OUTPUT",
	CONSTANT:   "CONSTANT",
	END_VAR:    "END_VAR",
	TYPE:       "TYPE",
	END_TYPE:   "END_TYPE",
	STRUCT:     "STRUCT",
	END_STRUCT: "END_STRUCT",
	UNION:      "UNION",
	END_UNION:  "END_UNION",
}

// String returns the upper-case name of the kind. For keywords this is
// the keyword spelling itself.
func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// IsKeyword reports whether k is one of the ST keywords
func (k TokenKind) IsKeyword() bool { return keywordBeg < k && k < keywordEnd }

// IsLiteral reports whether k is an identifier or literal value
func (k TokenKind) IsLiteral() bool { return k >= IDENT && k <= TIME }

// IsOperator reports whether k is an arithmetic, relational or assignment operator
func (k TokenKind) IsOperator() bool { return k >= PLUS && k <= LTE }

// IsDelimiter reports whether k is single-character punctuation
func (k TokenKind) IsDelimiter() bool { return k >= DOT && k <= RBRACE }

// IsTrivia reports whether k carries no syntax (comments and pragmas)
func (k TokenKind) IsTrivia() bool { return k == COMMENT || k == PRAGMA }

// Kinds returns every defined token kind in declaration order.
func Kinds() []TokenKind {
	kinds := make([]TokenKind, 0, len(kindNames))
	for k := range kindNames {
		if kindNames[k] != "" {
			kinds = append(kinds, TokenKind(k))
		}
	}
	return kinds
}

// KindFromString returns the kind whose String() is name.
func KindFromString(name string) (TokenKind, bool) {
	for k, n := range kindNames {
		if n != "" && n == name {
			return TokenKind(k), true
		}
	}
	return ILLEGAL, false
}

// Token is one classified lexeme. File and Lexeme are views into the
// buffers handed to the lexer, so a Token stays valid only as long as
// those buffers do.
type Token struct {
	File   source.Span // name of the source file
	Lexeme source.Span // exact source bytes of the token
	Offset int         // byte offset of the first lexeme byte
	Line   int         // zero-based line
	Column int         // zero-based column
	Kind   TokenKind
}

// Literal returns the lexeme as a string
func (t Token) Literal() string {
	return t.Lexeme.String()
}

// Filename returns the source file name as a string
func (t Token) Filename() string {
	return t.File.String()
}

// End returns the byte offset one past the last lexeme byte
func (t Token) End() int {
	return t.Offset + t.Lexeme.Len()
}

// Pos formats the position the way diagnostics print it: file:line:col,
// both one-based.
func (t Token) Pos() string {
	return fmt.Sprintf("%s:%d:%d", t.File.String(), t.Line+1, t.Column+1)
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Kind: %s, Literal: %q, Offset: %d, Line: %d, Column: %d}",
		t.Kind, t.Literal(), t.Offset, t.Line, t.Column)
}
