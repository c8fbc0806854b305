package errors

import (
	"bytes"
	"strings"
)

// tabWidth is the visual width of a tab when placing the caret
const tabWidth = 8

// SourceContext renders the source line at the 1-based line and column
// with a caret under the column. Leading indentation is trimmed and the
// caret shifted to match. It returns "" when line is out of range.
func SourceContext(src []byte, line, col int) string {
	lines := bytes.Split(src, []byte("\n"))
	if line <= 0 || line > len(lines) {
		return ""
	}

	sourceLine := strings.TrimRight(string(lines[line-1]), "\r")

	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == '\t' {
			trimCount += tabWidth
		} else if sourceLine[i] == ' ' {
			trimCount++
		} else {
			break
		}
	}

	var sb strings.Builder
	sb.WriteString("    ")
	sb.WriteString(strings.TrimLeft(sourceLine, " \t"))
	sb.WriteString("\n")

	if col > 0 {
		visualCol := 0
		for i := 0; i < col-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += tabWidth
			} else {
				visualCol++
			}
		}

		adjustedCol := max(visualCol-trimCount, 0)
		sb.WriteString("    ")
		sb.WriteString(strings.Repeat(" ", adjustedCol))
		sb.WriteString("^\n")
	}

	return sb.String()
}
