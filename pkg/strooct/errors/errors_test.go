package errors

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/strooct/strooct/pkg/strooct/lexer"
	"github.com/strooct/strooct/pkg/strooct/source"
)

func TestError_String(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      &Error{Message: "something went wrong"},
			expected: "something went wrong",
		},
		{
			name:     "with line and column",
			err:      &Error{Message: "unterminated string literal", Line: 5, Column: 10},
			expected: "line 5, column 10: unterminated string literal",
		},
		{
			name: "with file and hint",
			err: &Error{
				Message: "unterminated block comment",
				File:    "main.st",
				Line:    3,
				Column:  1,
				Hints:   []string{"close the comment with *)"},
			},
			expected: "main.st: line 3, column 1: unterminated block comment\n  close the comment with *)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_PrettyString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "lexer error",
			err: &Error{
				Class:   ClassLex,
				Message: "unterminated string literal",
				File:    "main.st",
				Line:    2,
				Column:  7,
				Hints:   []string{"close the string with '"},
			},
			contains: []string{"Lexer error", "in: main.st", "at: line 2, column 7", "Use: close the string with '"},
		},
		{
			name:     "warning without file",
			err:      &Error{Class: ClassStyle, Message: "looks odd", Line: 1, Column: 1},
			contains: []string{"Warning: line 1, column 1", "looks odd"},
		},
		{
			name:     "config error",
			err:      &Error{Class: ClassConfig, Message: "bad", Hints: []string{"a", "b"}},
			contains: []string{"Configuration error:", "Use: a", " or: b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.PrettyString()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("PrettyString() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestNew_Catalog(t *testing.T) {
	err := New("IO-0002", map[string]any{"Encoding": "ebcdic", "Supported": "utf-8, latin1"})
	if err.Class != ClassIO {
		t.Errorf("Class = %q, want %q", err.Class, ClassIO)
	}
	if err.Message != "unsupported encoding 'ebcdic'" {
		t.Errorf("Message = %q", err.Message)
	}
	if len(err.Hints) != 1 || err.Hints[0] != "one of: utf-8, latin1" {
		t.Errorf("Hints = %v", err.Hints)
	}
}

func TestNew_UnknownCode(t *testing.T) {
	err := New("NOPE-9999", map[string]any{"message": "custom"})
	if err.Code != "NOPE-9999" || err.Message != "custom" {
		t.Errorf("got %+v", err)
	}
}

func TestCatalogTemplatesParse(t *testing.T) {
	for code, def := range ErrorCatalog {
		if !strings.Contains(code, "-") {
			t.Errorf("code %q lacks a class prefix", code)
		}
		if def.Template == "" {
			t.Errorf("%s: empty template", code)
		}
	}
}

func TestWithFileAndPositionCopy(t *testing.T) {
	orig := New("LEX-0004", nil)
	moved := orig.WithFile("a.st").WithPosition(4, 2)

	if orig.File != "" || orig.Line != 0 {
		t.Error("With* modified the original")
	}
	if moved.File != "a.st" || moved.Line != 4 || moved.Column != 2 {
		t.Errorf("got %+v", moved)
	}
}

func TestToJSON(t *testing.T) {
	err := NewWithPosition("LEX-0001", 1, 3, map[string]any{"Char": "@"}).WithFile("x.st")
	data, jerr := err.ToJSON()
	if jerr != nil {
		t.Fatal(jerr)
	}

	var decoded map[string]any
	if jerr := json.Unmarshal(data, &decoded); jerr != nil {
		t.Fatal(jerr)
	}
	if decoded["code"] != "LEX-0001" || decoded["class"] != "lex" || decoded["file"] != "x.st" {
		t.Errorf("unexpected JSON: %s", data)
	}
	if decoded["line"] != float64(1) || decoded["column"] != float64(3) {
		t.Errorf("unexpected position in JSON: %s", data)
	}
}

func lastToken(t *testing.T, src string) lexer.Token {
	t.Helper()
	tokens := lexer.Tokenize("main.st", []byte(src))
	if len(tokens) == 0 {
		t.Fatalf("no tokens for %q", src)
	}
	return tokens[len(tokens)-1]
}

func TestFromToken(t *testing.T) {
	tests := []struct {
		input  string
		code   string
		line   int
		column int
	}{
		{"x := 'abc", "LEX-0002", 1, 6},
		{"x := \"abc", "LEX-0002", 1, 6},
		{"x := 1;\n  @y", "LEX-0001", 2, 3},
		{"x := $", "LEX-0001", 1, 6},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := lastToken(t, tt.input)
			if tok.Kind != lexer.ILLEGAL {
				t.Fatalf("expected ILLEGAL, got %s", tok.Kind)
			}
			err := FromToken(tok)
			if err.Code != tt.code {
				t.Errorf("Code = %s, want %s", err.Code, tt.code)
			}
			if err.Line != tt.line || err.Column != tt.column {
				t.Errorf("position = %d:%d, want %d:%d", err.Line, err.Column, tt.line, tt.column)
			}
			if err.File != "main.st" {
				t.Errorf("File = %q", err.File)
			}
		})
	}
}

func TestFromTokenUnterminatedComment(t *testing.T) {
	tok := lexer.Token{
		Kind:   lexer.ILLEGAL,
		File:   source.SpanOf("main.st"),
		Lexeme: source.SpanOf("(* never closed"),
		Line:   4,
	}
	err := FromToken(tok)
	if err.Code != "LEX-0004" {
		t.Errorf("Code = %s, want LEX-0004", err.Code)
	}
	if err.Line != 5 || err.Column != 1 {
		t.Errorf("position = %d:%d, want 5:1", err.Line, err.Column)
	}
}

func TestFromTokenIgnoresLegalTokens(t *testing.T) {
	if err := FromToken(lastToken(t, "x")); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestKeywordCase(t *testing.T) {
	tests := []struct {
		input   string
		keyword string
	}{
		{"end_if", "END_IF"},
		{"While", "WHILE"},
		{"x", ""},
		{"counter", ""},
		{"END_IF", ""},
	}

	for _, tt := range tests {
		tok := lexer.Tokenize("main.st", []byte(tt.input))[0]
		err := KeywordCase(tok, lexer.DefaultKeywords())
		if tt.keyword == "" {
			if err != nil {
				t.Errorf("%q: unexpected %v", tt.input, err)
			}
			continue
		}
		if err == nil {
			t.Errorf("%q: expected a warning", tt.input)
			continue
		}
		if !err.IsWarning() || err.Data["Keyword"] != tt.keyword {
			t.Errorf("%q: got %+v", tt.input, err)
		}
	}
}

func TestTimeLiteral(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{"T#x", "T#x"},
		{"T#1.5s", "T#1.5s"},
		{"T#1s2h", "T#1s2"},
		{"T#1s", ""},
		{"T #1s", ""},
		{"T#1s 2", ""},
	}

	for _, tt := range tests {
		tokens := lexer.Tokenize("main.st", []byte(tt.input))
		var found *Error
		for i := 1; i < len(tokens) && found == nil; i++ {
			found = TimeLiteral(tokens[i-1], tokens[i])
		}
		if tt.literal == "" {
			if found != nil {
				t.Errorf("%q: unexpected %v", tt.input, found)
			}
			continue
		}
		if found == nil {
			t.Errorf("%q: expected LEX-0003", tt.input)
			continue
		}
		if found.Code != "LEX-0003" || found.Data["Literal"] != tt.literal {
			t.Errorf("%q: got %+v", tt.input, found)
		}
	}
}

func TestSourceContext(t *testing.T) {
	src := []byte("PROGRAM Main\n    x := 'oops\nEND_PROGRAM")

	got := SourceContext(src, 2, 10)
	want := "    x := 'oops\n         ^\n"
	if got != want {
		t.Errorf("SourceContext() = %q, want %q", got, want)
	}

	if got := SourceContext(src, 0, 1); got != "" {
		t.Errorf("line 0 should render nothing, got %q", got)
	}
	if got := SourceContext(src, 9, 1); got != "" {
		t.Errorf("line past end should render nothing, got %q", got)
	}
}

func TestSourceContextTabs(t *testing.T) {
	src := []byte("\tx := @;")
	got := SourceContext(src, 1, 7)
	want := "    x := @;\n         ^\n"
	if got != want {
		t.Errorf("SourceContext() = %q, want %q", got, want)
	}
}
