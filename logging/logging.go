// Package logging prints leveled progress messages in the bracketed
// "[INFO] message" form, or as JSON records when configured.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/strooct/strooct/config"
)

// Logger writes leveled messages. It is safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	level  slog.Level
	json   *slog.Logger
	out    *termenv.Output
	closer io.Closer
}

// levelTags are the text prefixes and their terminal colors
var levelTags = map[slog.Level]struct {
	tag   string
	color string
}{
	slog.LevelDebug: {"[DEBUG]", "8"},
	slog.LevelInfo:  {"[INFO]", "4"},
	slog.LevelWarn:  {"[WARN]", "3"},
	slog.LevelError: {"[ERROR]", "1"},
}

// New creates a logger from cfg. Output "stdout" and "stderr" select the
// given writers; anything else is a file path opened for appending.
func New(cfg config.LoggingConfig, stdout, stderr io.Writer) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}

	l := &Logger{level: level}

	switch cfg.Output {
	case "", "stderr":
		l.w = stderr
	case "stdout":
		l.w = stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		l.w = f
		l.closer = f
	}

	if cfg.Format == "json" {
		l.json = slog.New(slog.NewJSONHandler(l.w, &slog.HandlerOptions{Level: level}))
	} else {
		l.out = newOutput(l.w)
	}

	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{w: io.Discard, level: slog.LevelError + 1, out: termenv.NewOutput(io.Discard, termenv.WithProfile(termenv.Ascii))}
}

// newOutput colors only when w is a terminal
func newOutput(w io.Writer) *termenv.Output {
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		return termenv.NewOutput(w)
	}
	return termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// LevelFromFlags returns the level selected by the verbosity flags:
//   - vv: debug
//   - v: info
//   - q: error
//   - (default: warn)
//
// The flags are evaluated in that order.
func LevelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// SetLevel changes the minimum level that is printed.
func (l *Logger) SetLevel(level slog.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	if l.json != nil {
		l.json = slog.New(slog.NewJSONHandler(l.w, &slog.HandlerOptions{Level: level}))
	}
}

// Enabled reports whether messages at level are printed.
func (l *Logger) Enabled(level slog.Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level
}

func (l *Logger) log(level slog.Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if l.json != nil {
		l.json.Log(context.Background(), level, msg)
		return
	}

	lt := levelTags[level]
	tag := l.out.String(lt.tag).Foreground(l.out.Color(lt.color)).String()
	fmt.Fprintf(l.w, "%s %s\n", tag, msg)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) { l.log(slog.LevelDebug, format, args...) }

// Info logs an info message
func (l *Logger) Info(format string, args ...any) { l.log(slog.LevelInfo, format, args...) }

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...any) { l.log(slog.LevelWarn, format, args...) }

// Error logs an error message
func (l *Logger) Error(format string, args ...any) { l.log(slog.LevelError, format, args...) }

// Close closes the log file, if one was opened.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
