// Package repl is an interactive shell that tokenizes each input and
// prints the tokens and diagnostics.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/strooct/strooct/pkg/strooct/errors"
	"github.com/strooct/strooct/pkg/strooct/export"
	"github.com/strooct/strooct/pkg/strooct/lexer"
	"github.com/strooct/strooct/pkg/strooct/scan"
)

const PROMPT = "st> "
const CONTINUATION_PROMPT = ".. "

// inputName is the file name tokens from the shell report
const inputName = "<repl>"

// Options configures the shell.
type Options struct {
	Version     string
	Prompt      string // Defaults to PROMPT
	HistoryFile string // Defaults to a file in the system temp directory
	Keywords    *lexer.KeywordTable
	SkipTrivia  bool
	Warnings    bool
	Text        export.TextOptions
}

// session holds the state commands can change between inputs
type session struct {
	out  io.Writer
	opts Options
}

// Start starts the REPL with line editing, history, and tab completion
func Start(out io.Writer, opts Options) {
	if opts.Keywords == nil {
		opts.Keywords = lexer.DefaultKeywords()
	}
	if opts.Prompt == "" {
		opts.Prompt = PROMPT
	}
	s := &session{out: out, opts: opts}

	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	line.SetCompleter(func(line string) []string {
		return filterCompletions(line, s.opts.Keywords.Words())
	})

	historyFile := opts.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".stlex_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, "stlex", opts.Version)
	fmt.Fprintln(out, "Type ':quit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for keyword completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		currentPrompt := s.opts.Prompt
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)

		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			if !s.command(trimmed) {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			continue
		}

		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}

		line.AppendHistory(fullInput)
		s.eval(fullInput)
		inputBuffer.Reset()
	}
}

// command handles REPL meta-commands that start with ':'. It returns
// false when the shell should exit.
func (s *session) command(cmd string) bool {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(s.out, "REPL Commands:")
		fmt.Fprintln(s.out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(s.out, "  :keywords       List the keywords in match order")
		fmt.Fprintln(s.out, "  :trivia         Toggle printing of comments and pragmas")
		fmt.Fprintln(s.out, "  :warnings       Toggle style warnings")
		fmt.Fprintln(s.out, "  :quit, :q       Exit the REPL")
		fmt.Fprintln(s.out, "")
		fmt.Fprintln(s.out, "Input left inside an open (* comment or string continues on the next line.")

	case ":keywords", ":k":
		printKeywords(s.out, s.opts.Keywords)

	case ":trivia":
		s.opts.SkipTrivia = !s.opts.SkipTrivia
		if s.opts.SkipTrivia {
			fmt.Fprintln(s.out, "Comments and pragmas hidden")
		} else {
			fmt.Fprintln(s.out, "Comments and pragmas shown")
		}

	case ":warnings":
		s.opts.Warnings = !s.opts.Warnings
		if s.opts.Warnings {
			fmt.Fprintln(s.out, "Warnings ON")
		} else {
			fmt.Fprintln(s.out, "Warnings OFF")
		}

	case ":quit", ":q", ":exit":
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
	return true
}

// eval tokenizes input and prints the tokens followed by diagnostics
func (s *session) eval(input string) {
	src := []byte(input)
	r := scan.Source(inputName, src, scan.Options{
		SkipTrivia: s.opts.SkipTrivia,
		Warnings:   s.opts.Warnings,
		Keywords:   s.opts.Keywords,
	})

	if len(r.Tokens) == 0 && len(r.Diagnostics) == 0 {
		fmt.Fprintln(s.out, "(no tokens)")
		return
	}

	if err := export.WriteText(s.out, []*scan.Result{r}, s.opts.Text); err != nil {
		fmt.Fprintf(s.out, "Error writing tokens: %v\n", err)
	}
	printDiagnostics(s.out, src, r.Diagnostics)
}

// printKeywords lists keywords six to a line
func printKeywords(out io.Writer, keywords *lexer.KeywordTable) {
	words := keywords.Words()
	for i := 0; i < len(words); i += 6 {
		end := min(i+6, len(words))
		fmt.Fprintf(out, "  %s\n", strings.Join(words[i:end], " "))
	}
}

// printDiagnostics prints each diagnostic with the offending source line
func printDiagnostics(out io.Writer, src []byte, diags []*errors.Error) {
	for _, d := range diags {
		io.WriteString(out, d.PrettyString())
		io.WriteString(out, "\n")
		io.WriteString(out, errors.SourceContext(src, d.Line, d.Column))
	}
}

// filterCompletions returns the words that complete the last word of line
func filterCompletions(line string, words []string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	// Don't complete if line ends with whitespace (including tabs from pasting)
	if line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}

	fields := strings.Fields(line)
	lastWord := fields[len(fields)-1]
	prefix := line[:len(line)-len(lastWord)]

	var matches []string
	for _, word := range words {
		if strings.HasPrefix(word, strings.ToUpper(lastWord)) {
			matches = append(matches, prefix+word)
		}
	}
	return matches
}

// needsMoreInput reports whether input ends inside a block comment or an
// open string literal. An unterminated (* does not lex as a comment, so
// it shows up as an LPAREN directly followed by an ASTERISK.
func needsMoreInput(input string) bool {
	tokens := lexer.Tokenize(inputName, []byte(input))
	for i := 1; i < len(tokens); i++ {
		prev, tok := tokens[i-1], tokens[i]
		if prev.Kind == lexer.LPAREN && tok.Kind == lexer.ASTERISK && prev.End() == tok.Offset {
			return true
		}
	}

	if len(tokens) == 0 {
		return false
	}
	last := tokens[len(tokens)-1]
	if d := errors.FromToken(last); d != nil && d.Code == "LEX-0002" {
		return true
	}
	return false
}
