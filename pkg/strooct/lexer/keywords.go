package lexer

import (
	"fmt"
	"strings"
)

// Keyword pairs a keyword spelling with the kind it produces.
type Keyword struct {
	Text string
	Kind TokenKind
}

// KeywordTable is an ordered list of keywords matched by first prefix.
// A keyword that extends another one (VAR_INPUT extends VAR) must come
// before it; NewKeywordTable enforces this so that first-match is also
// longest-match.
type KeywordTable struct {
	entries []Keyword
	byText  map[string]TokenKind
}

// stKeywords is the Structured Text keyword set in match priority order.
var stKeywords = []Keyword{
	// Logic
	{"NOT", NOT},
	{"TRUE", TRUE},
	{"FALSE", FALSE},
	{"AND", AND},
	{"OR", OR},
	{"XOR", XOR},

	// Control flow
	{"IF", IF},
	{"THEN", THEN},
	{"ELSIF", ELSIF},
	{"ELSE", ELSE},
	{"END_IF", END_IF},
	{"CASE", CASE},
	{"OF", OF},
	{"END_CASE", END_CASE},
	{"FOR", FOR},
	{"TO", TO},
	{"BY", BY},
	{"DO", DO},
	{"END_FOR", END_FOR},
	{"WHILE", WHILE},
	{"END_WHILE", END_WHILE},

	// Program / action / function / function block
	{"PROGRAM", PROGRAM},
	{"END_PROGRAM", END_PROGRAM},
	{"EXIT", EXIT},
	{"ACTION", ACTION},
	{"END_ACTION", END_ACTION},
	{"FUNCTION_BLOCK", FUNCTION_BLOCK},
	{"END_FUNCTION_BLOCK", END_FUNCTION_BLOCK},
	{"FUNCTION", FUNCTION},
	{"END_FUNCTION", END_FUNCTION},
	{"RETURN", RETURN},

	// Variable declarations
	{"VAR_INPUT", VAR_INPUT},
	{"VAR_OUTPUT", VAR_OUTPUT},
	{"VAR", VAR},
	{"CONSTANT", CONSTANT},
	{"END_VAR", END_VAR},

	// Type declarations
	{"TYPE", TYPE},
	{"END_TYPE", END_TYPE},
	{"STRUCT", STRUCT},
	{"END_STRUCT", END_STRUCT},
	{"UNION", UNION},
	{"END_UNION", END_UNION},
}

var defaultKeywords = mustKeywordTable(stKeywords...)

// DefaultKeywords returns the Structured Text keyword table. The table is
// shared and read-only.
func DefaultKeywords() *KeywordTable {
	return defaultKeywords
}

// NewKeywordTable builds a table from entries in priority order. It fails
// when an entry is empty, repeated, or shadows a later entry it is a
// prefix of.
func NewKeywordTable(entries ...Keyword) (*KeywordTable, error) {
	t := &KeywordTable{
		entries: make([]Keyword, len(entries)),
		byText:  make(map[string]TokenKind, len(entries)),
	}
	copy(t.entries, entries)

	for i, kw := range t.entries {
		if kw.Text == "" {
			return nil, fmt.Errorf("keyword %d: empty text", i)
		}
		if _, dup := t.byText[kw.Text]; dup {
			return nil, fmt.Errorf("keyword %q: listed twice", kw.Text)
		}
		t.byText[kw.Text] = kw.Kind

		for _, later := range t.entries[i+1:] {
			if strings.HasPrefix(later.Text, kw.Text) {
				return nil, fmt.Errorf("keyword %q shadows %q: longer keywords must be listed first", kw.Text, later.Text)
			}
		}
	}
	return t, nil
}

func mustKeywordTable(entries ...Keyword) *KeywordTable {
	t, err := NewKeywordTable(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Match returns the kind and length of the first keyword that is a
// prefix of b.
func (t *KeywordTable) Match(b []byte) (TokenKind, int, bool) {
	for _, kw := range t.entries {
		if len(b) >= len(kw.Text) && string(b[:len(kw.Text)]) == kw.Text {
			return kw.Kind, len(kw.Text), true
		}
	}
	return ILLEGAL, 0, false
}

// Lookup returns the kind of an exact keyword spelling.
func (t *KeywordTable) Lookup(text string) (TokenKind, bool) {
	kind, ok := t.byText[text]
	return kind, ok
}

// Entries returns a copy of the table in priority order.
func (t *KeywordTable) Entries() []Keyword {
	out := make([]Keyword, len(t.entries))
	copy(out, t.entries)
	return out
}

// Words returns the keyword spellings in priority order.
func (t *KeywordTable) Words() []string {
	words := make([]string, len(t.entries))
	for i, kw := range t.entries {
		words[i] = kw.Text
	}
	return words
}

// Len returns the number of keywords in the table.
func (t *KeywordTable) Len() int { return len(t.entries) }
