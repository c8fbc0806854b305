package config

import "time"

// Config represents the complete strooct configuration
type Config struct {
	BaseDir string        `yaml:"-"` // Directory containing config file, for resolving relative paths
	Source  SourceConfig  `yaml:"source"`
	Scan    ScanConfig    `yaml:"scan"`
	Output  OutputConfig  `yaml:"output"`
	Watch   WatchConfig   `yaml:"watch"`
	REPL    REPLConfig    `yaml:"repl"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig controls how files are read
type SourceConfig struct {
	Encoding   string   `yaml:"encoding"`   // "", "utf-8", "windows-1252", "iso-8859-1", ...
	MaxSize    string   `yaml:"max_size"`   // Largest accepted file, e.g. "10MB" (empty = no limit)
	Extensions []string `yaml:"extensions"` // File extensions treated as Structured Text
}

// ScanConfig controls tokenization
type ScanConfig struct {
	Workers    int  `yaml:"workers"`     // Files scanned at once (0 = number of CPUs)
	SkipTrivia bool `yaml:"skip_trivia"` // Drop comments and pragmas from output
	Warnings   bool `yaml:"warnings"`    // Report keyword case and split time literals
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Format string `yaml:"format"` // text, json, report, or html
	Color  string `yaml:"color"`  // auto, always, or never
	SQLite string `yaml:"sqlite"` // Also export tokens to this database (optional)
}

// WatchConfig controls --watch
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Quiet period before a changed file is re-scanned
}

// REPLConfig controls the interactive shell
type REPLConfig struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"` // Empty = a file in the system temp directory
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	Output string `yaml:"output"` // stderr, stdout, or file path
	Quiet  bool   `yaml:"quiet"`  // Suppress everything below warn
}

// Defaults returns a Config with sensible default values
func Defaults() *Config {
	return &Config{
		Source: SourceConfig{
			Encoding:   "utf-8",
			Extensions: []string{".st"},
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		REPL: REPLConfig{
			Prompt: "st> ",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
