package lexer

import (
	"strings"
	"testing"
)

func TestDefaultKeywordsOrdering(t *testing.T) {
	// Rebuilding the table re-runs the shadowing check.
	if _, err := NewKeywordTable(DefaultKeywords().Entries()...); err != nil {
		t.Fatalf("default keyword table is mis-ordered: %v", err)
	}
	if n := DefaultKeywords().Len(); n != 42 {
		t.Errorf("expected 42 keywords, got %d", n)
	}
}

func TestKeywordSpellingMatchesKind(t *testing.T) {
	for _, kw := range DefaultKeywords().Entries() {
		if kw.Kind.String() != kw.Text {
			t.Errorf("keyword %q produces kind %s", kw.Text, kw.Kind)
		}
		if !kw.Kind.IsKeyword() {
			t.Errorf("kind %s is not reported as a keyword", kw.Kind)
		}
	}
}

func TestNewKeywordTableRejectsShadowing(t *testing.T) {
	tests := []struct {
		name    string
		entries []Keyword
		errText string
	}{
		{
			name:    "shorter first",
			entries: []Keyword{{"VAR", VAR}, {"VAR_INPUT", VAR_INPUT}},
			errText: `"VAR" shadows "VAR_INPUT"`,
		},
		{
			name:    "duplicate",
			entries: []Keyword{{"IF", IF}, {"IF", IF}},
			errText: "listed twice",
		},
		{
			name:    "empty",
			entries: []Keyword{{"", IF}},
			errText: "empty text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKeywordTable(tt.entries...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("expected error containing %q, got %q", tt.errText, err)
			}
		})
	}
}

func TestKeywordMatch(t *testing.T) {
	table := DefaultKeywords()

	tests := []struct {
		input  string
		kind   TokenKind
		length int
		ok     bool
	}{
		{"VAR_INPUT x", VAR_INPUT, 9, true},
		{"VAR_OUTPUT", VAR_OUTPUT, 10, true},
		{"VAR x", VAR, 3, true},
		{"FUNCTION_BLOCK", FUNCTION_BLOCK, 14, true},
		{"FUNCTION Foo", FUNCTION, 8, true},
		{"END_FUNCTION_BLOCK", END_FUNCTION_BLOCK, 18, true},
		{"END_FUNCTION", END_FUNCTION, 12, true},
		{"ELSIF", ELSIF, 5, true},
		{"ELSE", ELSE, 4, true},
		{"var", ILLEGAL, 0, false},
		{"VA", ILLEGAL, 0, false},
		{"", ILLEGAL, 0, false},
	}

	for _, tt := range tests {
		kind, n, ok := table.Match([]byte(tt.input))
		if kind != tt.kind || n != tt.length || ok != tt.ok {
			t.Errorf("Match(%q) = (%s, %d, %v), expected (%s, %d, %v)",
				tt.input, kind, n, ok, tt.kind, tt.length, tt.ok)
		}
	}
}

func TestKeywordLookup(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenKind
		ok       bool
	}{
		{"END_VAR", END_VAR, true},
		{"STRUCT", STRUCT, true},
		{"STRUCTERU", ILLEGAL, false},
		{"end_var", ILLEGAL, false},
	}

	for _, tt := range tests {
		kind, ok := DefaultKeywords().Lookup(tt.input)
		if ok != tt.ok || (ok && kind != tt.expected) {
			t.Errorf("Lookup(%q) = (%s, %v), expected (%s, %v)", tt.input, kind, ok, tt.expected, tt.ok)
		}
	}
}

func TestEntriesIsACopy(t *testing.T) {
	entries := DefaultKeywords().Entries()
	entries[0].Text = "CHANGED"

	if DefaultKeywords().Entries()[0].Text != "NOT" {
		t.Error("modifying Entries() changed the shared table")
	}
}

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		kind                                TokenKind
		keyword, literal, operator, delimit bool
	}{
		{IDENT, false, true, false, false},
		{TIME, false, true, false, false},
		{ASSIGN, false, false, true, false},
		{LTE, false, false, true, false},
		{DOT, false, false, false, true},
		{RBRACE, false, false, false, true},
		{NOT, true, false, false, false},
		{END_UNION, true, false, false, false},
		{ILLEGAL, false, false, false, false},
		{COMMENT, false, false, false, false},
	}

	for _, tt := range tests {
		if tt.kind.IsKeyword() != tt.keyword || tt.kind.IsLiteral() != tt.literal ||
			tt.kind.IsOperator() != tt.operator || tt.kind.IsDelimiter() != tt.delimit {
			t.Errorf("predicates wrong for %s", tt.kind)
		}
	}
}

func TestKindStrings(t *testing.T) {
	for _, k := range Kinds() {
		name := k.String()
		if name == "UNKNOWN" {
			t.Errorf("kind %d has no name", int(k))
		}
		back, ok := KindFromString(name)
		if !ok || back != k {
			t.Errorf("KindFromString(%q) = %s, %v", name, back, ok)
		}
	}
	if s := TokenKind(-1).String(); s != "UNKNOWN" {
		t.Errorf("expected UNKNOWN for an invalid kind, got %s", s)
	}
	if s := keywordBeg.String(); s != "UNKNOWN" {
		t.Errorf("expected UNKNOWN for a marker kind, got %s", s)
	}
}
