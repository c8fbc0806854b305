package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/strooct/strooct/config"
	"github.com/strooct/strooct/logging"
	"github.com/strooct/strooct/pkg/strooct/errors"
	"github.com/strooct/strooct/pkg/strooct/export"
	"github.com/strooct/strooct/pkg/strooct/repl"
	"github.com/strooct/strooct/pkg/strooct/scan"
	"github.com/strooct/strooct/pkg/strooct/watch"
)

// Version is set at compile time via -ldflags
var Version = "0.1.0-dev"

// inlineName is the file name reported for -e input
const inlineName = "<inline>"

// exitError carries a process exit code out of run
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		var exit *exitError
		if stderrors.As(err, &exit) {
			if exit.err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", exit.err)
			}
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

// flags holds the parsed command line
type flags struct {
	configPath string
	eval       string
	check      bool
	format     string
	sqlite     string
	watch      bool
	encoding   string
	workers    int
	skipTrivia bool
	warnings   bool
	color      string
	verbose    bool
	veryVerb   bool
	quiet      bool
	version    bool
	help       bool
}

// run is the real entry point, separated from main for testability.
// Following the Mat Ryer pattern: https://grafana.com/blog/2024/02/09/how-i-write-http-services-in-go-after-13-years/
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	fset := flag.NewFlagSet("stlex", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.Usage = func() { printUsage(stderr) }

	var f flags
	fset.StringVar(&f.configPath, "config", "", "Path to config file")
	fset.StringVar(&f.eval, "e", "", "Tokenize code given on the command line")
	fset.BoolVar(&f.check, "check", false, "Report diagnostics only; exit 1 on illegal input")
	fset.StringVar(&f.format, "format", "", "Output format: text, json, report, html")
	fset.StringVar(&f.sqlite, "sqlite", "", "Also export tokens to this SQLite database")
	fset.BoolVar(&f.watch, "watch", false, "Re-scan files in the given directories when they change")
	fset.StringVar(&f.encoding, "encoding", "", "Source encoding (default utf-8)")
	fset.IntVar(&f.workers, "workers", 0, "Files scanned at once (0 = number of CPUs)")
	fset.BoolVar(&f.skipTrivia, "skip-trivia", false, "Omit comments and pragmas")
	fset.BoolVar(&f.warnings, "warnings", false, "Report keyword case and split time literals")
	fset.StringVar(&f.color, "color", "", "Color output: auto, always, never")
	fset.BoolVar(&f.verbose, "v", false, "Verbose logging")
	fset.BoolVar(&f.veryVerb, "vv", false, "Debug logging")
	fset.BoolVar(&f.quiet, "q", false, "Only log warnings and errors")
	fset.BoolVar(&f.version, "version", false, "Show version and exit")
	fset.BoolVar(&f.help, "help", false, "Show help and exit")
	fset.BoolVar(&f.help, "h", false, "Show help and exit")

	if err := fset.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return &exitError{code: 2}
	}

	if f.help {
		printUsage(stdout)
		return nil
	}
	if f.version {
		fmt.Fprintf(stdout, "stlex version %s\n", Version)
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, configPath, err := config.LoadWithPath(f.configPath, getenv)
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("loading config: %w", err)}
	}
	applyFlags(cfg, &f)
	if err := config.Validate(cfg); err != nil {
		return &exitError{code: 2, err: errors.New("CONFIG-0001", map[string]any{"GoError": err.Error()})}
	}

	log, err := logging.New(cfg.Logging, stdout, stderr)
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("logging: %w", err)}
	}
	defer log.Close()
	// -q went into cfg.Logging.Quiet, so it means the same as quiet: true
	if f.veryVerb || f.verbose {
		log.SetLevel(logging.LevelFromFlags(f.veryVerb, f.verbose, false))
	}
	if configPath != "" {
		log.Debug("using config %s", configPath)
	}

	opts := scan.Options{
		SkipTrivia: cfg.Scan.SkipTrivia,
		Warnings:   cfg.Scan.Warnings,
		Workers:    cfg.Scan.Workers,
		Load:       cfg.LoadOptions(),
	}
	out := colorOutput(stdout, cfg.Output.Color)

	switch {
	case f.watch:
		return watchDirs(ctx, fset.Args(), cfg, opts, log, stdout)
	case f.eval != "":
		results := []*scan.Result{scan.Source(inlineName, []byte(f.eval), opts)}
		return finish(ctx, results, cfg, &f, log, stdout, stderr, out)
	case fset.NArg() == 0:
		if f.check {
			return &exitError{code: 2, err: fmt.Errorf("--check requires at least one file")}
		}
		repl.Start(stdout, repl.Options{
			Version:     Version,
			Prompt:      cfg.REPL.Prompt,
			HistoryFile: cfg.REPL.HistoryFile,
			SkipTrivia:  opts.SkipTrivia,
			Warnings:    opts.Warnings,
			Text:        export.TextOptions{Output: out},
		})
		return nil
	}

	paths, err := collectSources(fset.Args(), cfg)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	log.Debug("scanning %d files with %d workers", len(paths), opts.Workers)

	results, err := scan.Files(ctx, paths, opts)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	return finish(ctx, results, cfg, &f, log, stdout, stderr, out)
}

// applyFlags overrides config values with those given on the command line
func applyFlags(cfg *config.Config, f *flags) {
	if f.encoding != "" {
		cfg.Source.Encoding = f.encoding
	}
	if f.workers != 0 {
		cfg.Scan.Workers = f.workers
	}
	if f.skipTrivia {
		cfg.Scan.SkipTrivia = true
	}
	if f.warnings {
		cfg.Scan.Warnings = true
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.color != "" {
		cfg.Output.Color = f.color
	}
	if f.sqlite != "" {
		cfg.Output.SQLite = f.sqlite
	}
	if f.quiet {
		cfg.Logging.Quiet = true
	}
}

// colorOutput returns the termenv output for token kinds, or nil for plain text
func colorOutput(w io.Writer, mode string) *termenv.Output {
	switch mode {
	case "always":
		return termenv.NewOutput(w, termenv.WithProfile(termenv.ANSI))
	case "never":
		return nil
	}
	if file, ok := w.(*os.File); ok && logging.IsTerminal(file) {
		return termenv.NewOutput(file)
	}
	return nil
}

// collectSources expands directories into the source files below them.
// Files named explicitly are kept whatever their extension.
func collectSources(args []string, cfg *config.Config) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// Missing files are reported by the scan as IO-0001
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if cfg.IsSourceFile(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return paths, nil
}

// finish writes results in the configured format and picks the exit code
func finish(ctx context.Context, results []*scan.Result, cfg *config.Config, f *flags,
	log *logging.Logger, stdout, stderr io.Writer, out *termenv.Output) error {

	if f.check {
		for _, r := range results {
			printDiagnostics(stderr, r)
		}
	} else {
		var err error
		switch cfg.Output.Format {
		case "json":
			err = export.WriteJSONLines(stdout, results)
		case "report":
			err = export.WriteReport(stdout, results, export.ReportMarkdown)
		case "html":
			err = export.WriteReport(stdout, results, export.ReportHTML)
		default:
			err = export.WriteText(stdout, results, export.TextOptions{Output: out})
			if err == nil {
				for _, r := range results {
					printDiagnostics(stderr, r)
				}
			}
		}
		if err != nil {
			return &exitError{code: 2, err: fmt.Errorf("writing output: %w", err)}
		}
	}

	if cfg.Output.SQLite != "" {
		if err := exportSQLite(ctx, cfg.Output.SQLite, results, log); err != nil {
			return &exitError{code: 2, err: err}
		}
	}

	total := scan.Total(results)
	log.Info("scanned %s files (%s, %s lines, %s tokens)",
		humanize.Comma(int64(total.Files)),
		humanize.Bytes(uint64(total.Bytes)),
		humanize.Comma(int64(total.Lines)),
		humanize.Comma(int64(total.Tokens)))

	illegal, unreadable := 0, 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			unreadable++
		case r.HasIllegal():
			illegal++
		}
	}
	if unreadable > 0 {
		log.Error("%d of %d files could not be read", unreadable, len(results))
		return &exitError{code: 2}
	}
	if f.check && illegal > 0 {
		log.Warn("%d of %d files contain illegal input", illegal, len(results))
		return &exitError{code: 1}
	}
	return nil
}

func exportSQLite(ctx context.Context, path string, results []*scan.Result, log *logging.Logger) error {
	store, err := export.OpenSQLite(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer store.Close()

	runID, err := store.Export(ctx, results)
	if err != nil {
		return fmt.Errorf("exporting to %s: %w", path, err)
	}
	log.Info("exported run %s to %s", runID, store.Path())
	return nil
}

// printDiagnostics writes each diagnostic with the offending source line
func printDiagnostics(w io.Writer, r *scan.Result) {
	for _, d := range r.Diagnostics {
		fmt.Fprintln(w, d.PrettyString())
		if snippet := errors.SourceContext(r.Source, d.Line, d.Column); snippet != "" {
			fmt.Fprint(w, snippet)
		}
		fmt.Fprintln(w)
	}
}

// watchDirs scans every change below dirs until ctx is done
func watchDirs(ctx context.Context, dirs []string, cfg *config.Config, opts scan.Options,
	log *logging.Logger, stdout io.Writer) error {

	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	w, err := watch.New(dirs, watch.Options{
		Scan:     opts,
		Debounce: cfg.Watch.Debounce,
		IsSource: cfg.IsSourceFile,
	}, log, func(r *scan.Result) {
		reportWatchResult(stdout, r, cfg.Output.Format, log)
	})
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	defer w.Close()

	if err := w.Start(ctx); err != nil {
		return &exitError{code: 2, err: err}
	}
	<-ctx.Done()
	log.Info("stopped after %d scans", w.Scans())
	return nil
}

// reportWatchResult prints one re-scan: JSON lines, or a status line and
// its diagnostics
func reportWatchResult(w io.Writer, r *scan.Result, format string, log *logging.Logger) {
	if format == "json" {
		if err := export.WriteJSONLines(w, []*scan.Result{r}); err != nil {
			log.Error("[WATCH] writing %s: %v", r.File, err)
		}
		return
	}
	if !r.HasIllegal() && len(r.Diagnostics) == 0 {
		fmt.Fprintf(w, "%s: ok (%d tokens)\n", r.File, r.Stats.Tokens)
		return
	}
	printDiagnostics(w, r)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `stlex - Structured Text lexer

Usage:
  stlex [options] <file|dir>...   Print the tokens of each file
  stlex -e 'x := 1;'              Tokenize inline code
  stlex --check <file|dir>...     Report diagnostics only
  stlex --watch <dir>...          Re-scan files as they change
  stlex                           Start the interactive shell

Options:
  --config <path>     Path to config file
  -e <code>           Tokenize code given on the command line
  --check             Exit 1 on illegal input, 2 on unreadable files
  --format <fmt>      Output format: text, json, report, html
  --sqlite <path>     Also export tokens to a SQLite database
  --watch             Watch the given directories
  --encoding <name>   Source encoding (default utf-8)
  --workers <n>       Files scanned at once (default: number of CPUs)
  --skip-trivia       Omit comments and pragmas
  --warnings          Report keyword case and split time literals
  --color <mode>      auto, always, never
  -v, -vv, -q         More, most, or less logging
  --version           Show version and exit
  -h, --help          Show this help message

Config Resolution:
  1. --config flag (explicit path)
  2. %s environment variable
  3. ./%s
  4. ~/.config/strooct/%s

Compressed sources (.gz, .zst) are decompressed transparently.
`, config.EnvVar, config.FileName, config.FileName)
}
