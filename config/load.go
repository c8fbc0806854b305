package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/strooct/strooct/pkg/strooct/source"
)

// FileName is the config file searched for in the working directory.
const FileName = "strooct.yaml"

// EnvVar names the environment variable that points at a config file.
const EnvVar = "STROOCT_CONFIG"

// errNoConfig is returned by resolveConfigPath when no file was found
// and none was asked for.
var errNoConfig = errors.New("no config file found")

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations and falls back to
// Defaults() when none exists.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the
// resolved path. The path is empty when the defaults were used.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if errors.Is(err, errNoConfig) {
		return Defaults(), "", nil
	}
	if err != nil {
		return nil, "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.BaseDir = baseDir

	cfg.Output.SQLite, err = resolvePath(cfg.Output.SQLite, baseDir)
	if err != nil {
		return nil, "", err
	}
	cfg.REPL.HistoryFile, err = resolvePath(cfg.REPL.HistoryFile, baseDir)
	if err != nil {
		return nil, "", err
	}
	if cfg.Logging.Output != "stderr" && cfg.Logging.Output != "stdout" {
		cfg.Logging.Output, err = resolvePath(cfg.Logging.Output, baseDir)
		if err != nil {
			return nil, "", err
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}

	return cfg, absPath, nil
}

// resolvePath expands ~ and makes relative paths relative to baseDir
func resolvePath(path, baseDir string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(baseDir, expanded)
	}
	return expanded, nil
}

// Validate checks the configuration for errors. Call it again after
// applying CLI overrides.
func Validate(cfg *Config) error {
	var errs []string

	if !source.ValidEncoding(cfg.Source.Encoding) {
		errs = append(errs, fmt.Sprintf("invalid source encoding: %s (must be one of %s)",
			cfg.Source.Encoding, strings.Join(source.Encodings(), ", ")))
	}
	if _, err := ParseSize(cfg.Source.MaxSize); err != nil {
		errs = append(errs, fmt.Sprintf("invalid source max_size: %v", err))
	}
	for i, ext := range cfg.Source.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("source.extensions[%d]: %q must start with a dot", i, ext))
		}
	}

	if cfg.Scan.Workers < 0 {
		errs = append(errs, fmt.Sprintf("invalid scan workers: %d (must be 0 or more)", cfg.Scan.Workers))
	}

	validOutputs := map[string]bool{"text": true, "json": true, "report": true, "html": true}
	if !validOutputs[cfg.Output.Format] {
		errs = append(errs, fmt.Sprintf("invalid output format: %s (must be text, json, report, or html)", cfg.Output.Format))
	}
	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[cfg.Output.Color] {
		errs = append(errs, fmt.Sprintf("invalid output color: %s (must be auto, always, or never)", cfg.Output.Color))
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("invalid watch debounce: %s", cfg.Watch.Debounce))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be json or text)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > STROOCT_CONFIG env > ./strooct.yaml > ~/.config/strooct/strooct.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv(EnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s file not found: %s", EnvVar, envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}

	home, err := homedir.Dir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "strooct", FileName)
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", errNoConfig
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// ParseSize parses a size string like "10MB", "1GB", "500KB" to bytes.
// Supports: B, KB, MB, GB (case insensitive).
// Returns 0 for empty string.
func ParseSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	s = strings.TrimSpace(strings.ToUpper(s))

	// Longest suffix first so that "B" does not match before "MB"
	suffixes := []struct {
		suffix string
		mult   int64
	}{
		{"GB", 1024 * 1024 * 1024},
		{"MB", 1024 * 1024},
		{"KB", 1024},
		{"B", 1},
	}

	mult := int64(1)
	for _, sf := range suffixes {
		if strings.HasSuffix(s, sf.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, sf.suffix))
			mult = sf.mult
			break
		}
	}

	num, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size format: %s (use B, KB, MB, or GB suffix)", s)
	}
	if num < 0 {
		return 0, fmt.Errorf("invalid size: %s must not be negative", s)
	}
	if num > math.MaxInt64/mult {
		return 0, fmt.Errorf("invalid size: %s is too large", s)
	}
	return num * mult, nil
}

// LoadOptions returns the source loading options described by cfg.
func (c *Config) LoadOptions() source.LoadOptions {
	size, _ := ParseSize(c.Source.MaxSize)
	return source.LoadOptions{
		Encoding: c.Source.Encoding,
		MaxSize:  size,
	}
}

// IsSourceFile reports whether path has one of the configured extensions,
// optionally followed by .gz or .zst.
func (c *Config) IsSourceFile(path string) bool {
	path = strings.ToLower(path)
	path = strings.TrimSuffix(strings.TrimSuffix(path, ".gz"), ".zst")
	ext := filepath.Ext(path)
	for _, e := range c.Source.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
