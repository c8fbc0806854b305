package export

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/strooct/strooct/pkg/strooct/scan"
)

// ReportFormat selects the output of WriteReport.
type ReportFormat string

const (
	ReportMarkdown ReportFormat = "markdown"
	ReportHTML     ReportFormat = "html"
)

// WriteReport writes a summary of results: per-file counts, token kind
// totals and every diagnostic. The report is Markdown; ReportHTML renders
// it to an HTML page.
func WriteReport(w io.Writer, results []*scan.Result, format ReportFormat) error {
	md := renderMarkdown(results)

	switch format {
	case ReportMarkdown, "":
		_, err := w.Write(md)
		return err
	case ReportHTML:
		var body bytes.Buffer
		gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
		if err := gm.Convert(md, &body); err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}
		_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Token report</title>\n</head>\n<body>\n%s</body>\n</html>\n", body.Bytes())
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func renderMarkdown(results []*scan.Result) []byte {
	var sb strings.Builder
	total := scan.Total(results)

	sb.WriteString("# Token report\n\n")
	fmt.Fprintf(&sb, "%s in %s, %s lines, %s tokens.\n\n",
		plural(total.Files, "file"),
		humanize.Bytes(uint64(total.Bytes)),
		humanize.Comma(int64(total.Lines)),
		humanize.Comma(int64(total.Tokens)))

	sb.WriteString("## Files\n\n")
	sb.WriteString("| File | Size | Lines | Tokens | Status |\n")
	sb.WriteString("|---|---:|---:|---:|---|\n")
	for _, r := range results {
		status := "ok"
		switch {
		case r.Err != nil:
			status = "unreadable"
		case r.HasIllegal():
			status = "illegal input"
		}
		fmt.Fprintf(&sb, "| %s | %s | %d | %d | %s |\n",
			cell(r.File), humanize.Bytes(uint64(r.Stats.Bytes)), r.Stats.Lines, r.Stats.Tokens, status)
	}

	if len(total.Kinds) > 0 {
		type kindCount struct {
			name string
			n    int
		}
		var kinds []kindCount
		for k, n := range total.Kinds {
			kinds = append(kinds, kindCount{k.String(), n})
		}
		sort.Slice(kinds, func(i, j int) bool {
			if kinds[i].n != kinds[j].n {
				return kinds[i].n > kinds[j].n
			}
			return kinds[i].name < kinds[j].name
		})

		sb.WriteString("\n## Token kinds\n\n")
		sb.WriteString("| Kind | Count |\n")
		sb.WriteString("|---|---:|\n")
		for _, kc := range kinds {
			fmt.Fprintf(&sb, "| %s | %d |\n", kc.name, kc.n)
		}
	}

	var diags []string
	for _, r := range results {
		for _, d := range r.Diagnostics {
			loc := d.File
			if loc == "" {
				loc = r.File
			}
			if d.Line > 0 {
				loc = fmt.Sprintf("%s:%d:%d", loc, d.Line, d.Column)
			}
			diags = append(diags, fmt.Sprintf("- `%s` **%s** %s", loc, d.Code, d.Message))
		}
	}
	if len(diags) > 0 {
		sb.WriteString("\n## Diagnostics\n\n")
		sb.WriteString(strings.Join(diags, "\n"))
		sb.WriteString("\n")
	}

	return []byte(sb.String())
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}

// cell escapes a value for a Markdown table cell
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
