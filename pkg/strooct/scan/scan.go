// Package scan runs the lexer over whole sources and collects tokens,
// statistics and diagnostics.
package scan

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/strooct/strooct/pkg/strooct/errors"
	"github.com/strooct/strooct/pkg/strooct/lexer"
	"github.com/strooct/strooct/pkg/strooct/source"
)

// Options controls a scan.
type Options struct {
	// SkipTrivia drops COMMENT and PRAGMA tokens from the result. They
	// still count in Stats.
	SkipTrivia bool

	// Warnings adds style diagnostics (keyword case, split time literals)
	// next to the lexical errors.
	Warnings bool

	// Keywords replaces the default keyword table.
	Keywords *lexer.KeywordTable

	// Workers bounds the number of files scanned at once by Files.
	// Zero means GOMAXPROCS.
	Workers int

	// Load is passed to source.Load by Files.
	Load source.LoadOptions
}

// Result is the outcome of scanning one source.
type Result struct {
	File        string
	Source      []byte
	Tokens      []lexer.Token
	Stats       Stats
	Diagnostics []*errors.Error

	// Err is set when the source could not be read. Tokens and Stats are
	// empty in that case.
	Err error
}

// HasIllegal reports whether the source contained unrecognized input.
func (r *Result) HasIllegal() bool {
	return r.Stats.Kinds[lexer.ILLEGAL] > 0
}

// Source tokenizes src completely.
func Source(name string, src []byte, opts Options) *Result {
	keywords := opts.Keywords
	if keywords == nil {
		keywords = lexer.DefaultKeywords()
	}

	r := &Result{
		File:   name,
		Source: src,
		Stats:  newStats(src),
	}

	var prev lexer.Token
	first := true
	for tok := range lexer.New(name, src, lexer.WithKeywords(keywords)).All() {
		r.Stats.add(tok.Kind)

		if tok.Kind == lexer.ILLEGAL {
			r.Diagnostics = append(r.Diagnostics, errors.FromToken(tok))
		} else if opts.Warnings {
			if d := errors.KeywordCase(tok, keywords); d != nil {
				r.Diagnostics = append(r.Diagnostics, d)
			}
			if !first {
				if d := errors.TimeLiteral(prev, tok); d != nil {
					r.Diagnostics = append(r.Diagnostics, d)
				}
			}
		}
		prev, first = tok, false

		if opts.SkipTrivia && tok.Kind.IsTrivia() {
			continue
		}
		r.Tokens = append(r.Tokens, tok)
	}

	return r
}

// File loads the file at path and scans it.
func File(path string, opts Options) *Result {
	if !source.ValidEncoding(opts.Load.Encoding) {
		diag := errors.New("IO-0002", map[string]any{
			"Encoding":  opts.Load.Encoding,
			"Supported": strings.Join(source.Encodings(), ", "),
		}).WithFile(path)
		return &Result{
			File:        path,
			Stats:       Stats{Kinds: map[lexer.TokenKind]int{}},
			Diagnostics: []*errors.Error{diag},
			Err:         diag,
		}
	}

	src, err := source.Load(path, opts.Load)
	if err != nil {
		diag := errors.New("IO-0001", map[string]any{"Path": path, "GoError": err.Error()})
		return &Result{
			File:        path,
			Stats:       Stats{Kinds: map[lexer.TokenKind]int{}},
			Diagnostics: []*errors.Error{diag},
			Err:         fmt.Errorf("failed to load %s: %w", path, err),
		}
	}
	return Source(path, src, opts)
}

// Files scans paths concurrently and returns one Result per path, in the
// order given. Every worker owns its buffer and lexer. Once ctx is done
// no new files are started; the remaining results carry ctx.Err().
func Files(ctx context.Context, paths []string, opts Options) ([]*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = File(path, opts)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	for i, r := range results {
		if r == nil {
			results[i] = &Result{
				File:  paths[i],
				Stats: Stats{Kinds: map[lexer.TokenKind]int{}},
				Err:   err,
			}
		}
	}
	return results, err
}

// Stats summarizes one or more scanned sources.
type Stats struct {
	Files  int
	Bytes  int
	Lines  int
	Tokens int
	Kinds  map[lexer.TokenKind]int
}

func newStats(src []byte) Stats {
	lines := bytes.Count(src, []byte("\n"))
	if len(src) > 0 && src[len(src)-1] != '\n' {
		lines++
	}
	return Stats{
		Files: 1,
		Bytes: len(src),
		Lines: lines,
		Kinds: map[lexer.TokenKind]int{},
	}
}

func (s *Stats) add(kind lexer.TokenKind) {
	s.Tokens++
	s.Kinds[kind]++
}

// Merge adds other into s.
func (s *Stats) Merge(other Stats) {
	if s.Kinds == nil {
		s.Kinds = map[lexer.TokenKind]int{}
	}
	s.Files += other.Files
	s.Bytes += other.Bytes
	s.Lines += other.Lines
	s.Tokens += other.Tokens
	for k, n := range other.Kinds {
		s.Kinds[k] += n
	}
}

// Total merges the statistics of every readable result.
func Total(results []*Result) Stats {
	total := Stats{Kinds: map[lexer.TokenKind]int{}}
	for _, r := range results {
		if r.Err == nil {
			total.Merge(r.Stats)
		}
	}
	return total
}
