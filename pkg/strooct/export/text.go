// Package export writes scan results as text, JSON lines, SQLite
// databases and Markdown or HTML reports.
package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/muesli/termenv"

	"github.com/strooct/strooct/pkg/strooct/lexer"
	"github.com/strooct/strooct/pkg/strooct/scan"
)

// TextOptions controls WriteText.
type TextOptions struct {
	// Output colors kind names when set. A nil Output or the Ascii
	// profile writes plain text.
	Output *termenv.Output
}

// kindColors maps token classes to ANSI colors
var kindColors = map[string]string{
	"keyword":  "5", // magenta
	"literal":  "2", // green
	"operator": "3", // yellow
	"trivia":   "8", // grey
	"illegal":  "1", // red
}

func kindClass(k lexer.TokenKind) string {
	switch {
	case k == lexer.ILLEGAL:
		return "illegal"
	case k.IsKeyword():
		return "keyword"
	case k.IsLiteral():
		return "literal"
	case k.IsOperator(), k.IsDelimiter():
		return "operator"
	default:
		return "trivia"
	}
}

// WriteText writes one aligned line per token:
//
//	main.st:1:1  IDENT  "x"
//
// Positions are one-based.
func WriteText(w io.Writer, results []*scan.Result, opts TextOptions) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		for _, tok := range r.Tokens {
			kind := tok.Kind.String()
			if opts.Output != nil {
				color := opts.Output.Color(kindColors[kindClass(tok.Kind)])
				kind = opts.Output.String(kind).Foreground(color).String()
			}
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%q\n", tok.Pos(), kind, tok.Literal()); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}
