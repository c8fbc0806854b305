package export

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/strooct/strooct/pkg/strooct/scan"
)

func sampleResults() []*scan.Result {
	return []*scan.Result{
		scan.Source("a.st", []byte("x := 1;"), scan.Options{}),
		scan.Source("b.st", []byte("IF y THEN\n  s := 'open"), scan.Options{}),
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleResults(), TextOptions{}); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	expected := []string{
		`a.st:1:1  IDENT      "x"`,
		`a.st:1:3  ASSIGN     ":="`,
		`a.st:1:6  NUMBER     "1"`,
		`a.st:1:7  SEMICOLON  ";"`,
		`b.st:1:1  IF         "IF"`,
		`b.st:1:4  IDENT      "y"`,
		`b.st:1:6  THEN       "THEN"`,
		`b.st:2:3  IDENT      "s"`,
		`b.st:2:5  ASSIGN     ":="`,
		`b.st:2:8  ILLEGAL    "'open"`,
	}
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(expected), len(lines), buf.String())
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("lines[%d] - expected=%q, got=%q", i, want, lines[i])
		}
	}
}

func TestWriteTextColor(t *testing.T) {
	var buf bytes.Buffer
	out := termenv.NewOutput(&buf, termenv.WithProfile(termenv.ANSI))
	if err := WriteText(&buf, sampleResults()[:1], TextOptions{Output: out}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected ANSI escapes, got %q", buf.String())
	}

	buf.Reset()
	plain := termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))
	if err := WriteText(&buf, sampleResults()[:1], TextOptions{Output: plain}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("Ascii profile should not color, got %q", buf.String())
	}
}

func TestWriteJSONLines(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONLines(&buf, sampleResults()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("expected 10 tokens and 1 diagnostic, got %d lines", len(lines))
	}

	var first TokenRecord
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	want := TokenRecord{File: "a.st", Kind: "IDENT", Lexeme: "x"}
	if first != want {
		t.Errorf("first record = %+v, want %+v", first, want)
	}

	var last map[string]map[string]any
	if err := json.Unmarshal([]byte(lines[10]), &last); err != nil {
		t.Fatal(err)
	}
	if last["diagnostic"]["code"] != "LEX-0002" {
		t.Errorf("unexpected diagnostic line %s", lines[10])
	}
}

func TestSQLiteExport(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "out", "tokens.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	first, err := store.Export(ctx, sampleResults())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	second, err := store.Export(ctx, sampleResults()[:1])
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if first == second {
		t.Fatal("runs share an ID")
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[0].Files != 1 || runs[0].Tokens != 4 {
		t.Errorf("unexpected newest run %+v", runs[0])
	}

	counts, err := store.KindCounts(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if counts["IDENT"] != 3 || counts["ASSIGN"] != 2 || counts["ILLEGAL"] != 1 {
		t.Errorf("unexpected kind counts %v", counts)
	}
}

func TestSQLiteInMemory(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	id, err := store.Export(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	counts, err := store.KindCounts(context.Background(), id)
	if err != nil || len(counts) != 0 {
		t.Errorf("expected an empty run, got %v, %v", counts, err)
	}
}

func TestWriteReportMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleResults(), ReportMarkdown); err != nil {
		t.Fatal(err)
	}
	report := buf.String()

	for _, want := range []string{
		"# Token report",
		"2 files in 29 B, 3 lines, 14 tokens.",
		"| a.st | 7 B | 1 | 4 | ok |",
		"| b.st | 22 B | 2 | 6 | illegal input |",
		"| IDENT | 3 |",
		"## Diagnostics",
		"- `b.st:2:8` **LEX-0002** unterminated string literal",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestWriteReportHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleResults(), ReportHTML); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, want := range []string{"<!DOCTYPE html>", "<h1>Token report</h1>", "<table>", "<td>a.st</td>", "<strong>LEX-0002</strong>"} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML report missing %q", want)
		}
	}
}

func TestWriteReportUnknownFormat(t *testing.T) {
	if err := WriteReport(&bytes.Buffer{}, nil, "pdf"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
