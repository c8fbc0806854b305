package export

import (
	"encoding/json"
	"io"

	"github.com/strooct/strooct/pkg/strooct/scan"
)

// TokenRecord is the JSON form of a token. Line and column are zero-based
// like the token itself.
type TokenRecord struct {
	File   string `json:"file"`
	Offset int    `json:"offset"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Kind   string `json:"kind"`
	Lexeme string `json:"lexeme"`
}

// WriteJSONLines writes one JSON object per token, followed by one object
// per diagnostic under the "diagnostic" key.
func WriteJSONLines(w io.Writer, results []*scan.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for _, r := range results {
		for _, tok := range r.Tokens {
			rec := TokenRecord{
				File:   r.File,
				Offset: tok.Offset,
				Line:   tok.Line,
				Column: tok.Column,
				Kind:   tok.Kind.String(),
				Lexeme: tok.Literal(),
			}
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		for _, d := range r.Diagnostics {
			if err := enc.Encode(map[string]any{"diagnostic": d}); err != nil {
				return err
			}
		}
	}
	return nil
}
