package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/strooct/strooct/pkg/strooct/lexer"
)

func newSession() (*session, *bytes.Buffer) {
	var out bytes.Buffer
	return &session{out: &out, opts: Options{Keywords: lexer.DefaultKeywords()}}, &out
}

func TestFilterCompletions(t *testing.T) {
	words := lexer.DefaultKeywords().Words()

	tests := []struct {
		line     string
		expected []string
	}{
		{"END_W", []string{"END_WHILE"}},
		{"x := 1; end_f", []string{"x := 1; END_FOR", "x := 1; END_FUNCTION_BLOCK", "x := 1; END_FUNCTION"}},
		{"VAR_", []string{"VAR_INPUT", "VAR_OUTPUT"}},
		{"", nil},
		{"IF ", nil},
		{"QQ", nil},
	}

	for _, tt := range tests {
		got := filterCompletions(tt.line, words)
		if strings.Join(got, ",") != strings.Join(tt.expected, ",") {
			t.Errorf("filterCompletions(%q) = %v, want %v", tt.line, got, tt.expected)
		}
	}
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"x := 1;", false},
		{"(* open comment", true},
		{"(* closed *)", false},
		{"(* one *) (* two", true},
		{"s := 'open", true},
		{"s := 'open\nstill'", false},
		{"x := @", false},
		{"s := '(*';", false},
		{"// see (* below", false},
		{"x := 1; // note\n(* open", true},
		{"y := (a) * b;", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := needsMoreInput(tt.input); got != tt.expected {
			t.Errorf("needsMoreInput(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestEval(t *testing.T) {
	s, out := newSession()
	s.eval("x := T#1s;")

	expected := "<repl>:1:1   IDENT      \"x\"\n" +
		"<repl>:1:3   ASSIGN     \":=\"\n" +
		"<repl>:1:6   TIME       \"T#1s\"\n" +
		"<repl>:1:10  SEMICOLON  \";\"\n"
	if out.String() != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, out.String())
	}
}

func TestEvalDiagnostics(t *testing.T) {
	s, out := newSession()
	s.eval("x := $y;")

	got := out.String()
	for _, want := range []string{"ILLEGAL", "Lexer error", "illegal input starting with '$'", "    x := $y;\n         ^\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestEvalEmpty(t *testing.T) {
	s, out := newSession()
	s.opts.SkipTrivia = true
	s.eval("// only a comment")
	if out.String() != "(no tokens)\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestCommands(t *testing.T) {
	s, out := newSession()

	if !s.command(":keywords") {
		t.Fatal(":keywords should not exit")
	}
	if !strings.Contains(out.String(), "  NOT TRUE FALSE AND OR XOR\n") {
		t.Errorf("unexpected keyword listing:\n%s", out.String())
	}

	s.command(":trivia")
	if !s.opts.SkipTrivia {
		t.Error(":trivia should toggle SkipTrivia")
	}
	s.command(":warnings")
	if !s.opts.Warnings {
		t.Error(":warnings should toggle Warnings")
	}

	out.Reset()
	s.command(":nope")
	if !strings.Contains(out.String(), "Unknown command: :nope") {
		t.Errorf("got %q", out.String())
	}

	if s.command(":quit") {
		t.Error(":quit should exit")
	}
}
