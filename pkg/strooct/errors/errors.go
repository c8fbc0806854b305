// Package errors provides structured diagnostics for Structured Text
// sources.
//
// The lexer reports every problem as an ILLEGAL token. This package turns
// such tokens, and the I/O and configuration failures around them, into
// Error values with a stable code, a rendered message and fix hints.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/strooct/strooct/pkg/strooct/lexer"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassLex    ErrorClass = "lex"    // Unrecognized input
	ClassStyle  ErrorClass = "style"  // Legal but suspicious input
	ClassIO     ErrorClass = "io"     // File operations
	ClassConfig ErrorClass = "config" // Configuration problems
)

// Error is a single diagnostic.
type Error struct {
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code (e.g., "LEX-0001")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Line    int            `json:"line"`            // 1-based line (0 if unknown)
	Column  int            `json:"column"`          // 1-based column (0 if unknown)
	File    string         `json:"file,omitempty"`  // File path (if known)
	Data    map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *Error) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *Error) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassLex:
		sb.WriteString("Lexer error")
	case ClassStyle:
		sb.WriteString("Warning")
	case ClassConfig:
		sb.WriteString("Configuration error")
	default:
		sb.WriteString("Error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for i, hint := range e.Hints {
		sb.WriteString("\n  ")
		if i == 0 {
			sb.WriteString("Use: ")
		} else {
			sb.WriteString(" or: ")
		}
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *Error) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *Error) WithFile(file string) *Error {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *Error) WithPosition(line, column int) *Error {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsWarning reports whether the diagnostic leaves the source lexable.
func (e *Error) IsWarning() bool {
	return e.Class == ClassStyle
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Lexical errors (LEX-0xxx)
	"LEX-0001": {
		Class:    ClassLex,
		Template: "illegal input starting with '{{.Char}}'",
		Hints:    []string{"remove or quote the unexpected character"},
	},
	"LEX-0002": {
		Class:    ClassLex,
		Template: "unterminated string literal",
		Hints:    []string{"close the string with {{.Quote}}"},
	},
	"LEX-0003": {
		Class:    ClassStyle,
		Template: "malformed time literal '{{.Literal}}'",
		Hints:    []string{"T#1d2h3m4s5ms (integer amounts, units largest first, each at most once)"},
	},
	"LEX-0004": {
		Class:    ClassLex,
		Template: "unterminated block comment",
		Hints:    []string{"close the comment with *)"},
	},
	"LEX-0005": {
		Class:    ClassStyle,
		Template: "identifier '{{.Name}}' differs from keyword {{.Keyword}} only in case",
		Hints:    []string{"keywords are upper case: {{.Keyword}}"},
	},

	// I/O errors (IO-0xxx)
	"IO-0001": {
		Class:    ClassIO,
		Template: "failed to read '{{.Path}}': {{.GoError}}",
	},
	"IO-0002": {
		Class:    ClassIO,
		Template: "unsupported encoding '{{.Encoding}}'",
		Hints:    []string{"one of: {{.Supported}}"},
	},

	// Configuration errors (CONFIG-0xxx)
	"CONFIG-0001": {
		Class:    ClassConfig,
		Template: "invalid configuration: {{.GoError}}",
	},
}

// New creates an Error from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *Error {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &Error{
			Class:   ClassLex,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &Error{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates an Error with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *Error {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// FromToken classifies an ILLEGAL token into a lexical diagnostic. It
// returns nil for any other kind.
func FromToken(tok lexer.Token) *Error {
	if tok.Kind != lexer.ILLEGAL {
		return nil
	}

	lexeme := tok.Lexeme
	var err *Error
	switch {
	case lexeme.HasPrefix("'") || lexeme.HasPrefix(`"`):
		err = New("LEX-0002", map[string]any{"Quote": string(lexeme.At(0))})
	case lexeme.HasPrefix("(*"):
		err = New("LEX-0004", nil)
	default:
		char := ""
		if !lexeme.IsEmpty() {
			char = string(lexeme.At(0))
		}
		err = New("LEX-0001", map[string]any{"Char": char})
	}

	err.File = tok.Filename()
	err.Line = tok.Line + 1
	err.Column = tok.Column + 1
	return err
}

// KeywordCase reports an identifier that spells a keyword in the wrong
// case, such as end_if. It returns nil when tok is not such an identifier.
func KeywordCase(tok lexer.Token, keywords *lexer.KeywordTable) *Error {
	if tok.Kind != lexer.IDENT {
		return nil
	}
	name := tok.Literal()
	upper := strings.ToUpper(name)
	if upper == name {
		return nil
	}
	if _, ok := keywords.Lookup(upper); !ok {
		return nil
	}

	err := NewWithPosition("LEX-0005", tok.Line+1, tok.Column+1, map[string]any{
		"Name":    name,
		"Keyword": upper,
	})
	err.File = tok.Filename()
	return err
}

// TimeLiteral reports a time literal the lexer had to split. T#x lexes as
// the identifier T and the pragma #x, and T#1s2h stops after 1s. Both are
// detected from a pair of adjacent tokens; it returns nil otherwise.
func TimeLiteral(prev, next lexer.Token) *Error {
	if prev.End() != next.Offset {
		return nil
	}

	split := false
	switch prev.Kind {
	case lexer.IDENT:
		split = prev.Literal() == "T" && next.Kind == lexer.PRAGMA
	case lexer.TIME:
		split = next.Kind == lexer.NUMBER || next.Kind == lexer.IDENT || next.Kind == lexer.DOT
	}
	if !split {
		return nil
	}

	err := NewWithPosition("LEX-0003", prev.Line+1, prev.Column+1, map[string]any{
		"Literal": prev.Literal() + next.Literal(),
	})
	err.File = prev.Filename()
	return err
}
