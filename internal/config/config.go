// Package config loads olang CLI settings from TOML or YAML files with
// environment overrides.
//
// Resolution order (later wins): built-in defaults, the config file, OLANG_*
// environment variables. Command-line flags are applied by the caller on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies a config file syntax.
type Format int

const (
	FormatAuto Format = iota
	FormatTOML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "auto"
	}
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OLANG"

// DefaultFiles are probed in order when no explicit path is given.
var DefaultFiles = []string{"olang.toml", "olang.yaml", "olang.yml"}

// Config holds the complete CLI configuration.
type Config struct {
	Log   LogConfig   `toml:"log" yaml:"log"`
	Eval  EvalConfig  `toml:"eval" yaml:"eval"`
	Repl  ReplConfig  `toml:"repl" yaml:"repl"`
	Trace TraceConfig `toml:"trace" yaml:"trace"`

	path string
}

// LogConfig controls the CLI's structured logger.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"` // text or json
}

// EvalConfig bounds parsing and evaluation.
type EvalConfig struct {
	MaxDepth      int `toml:"max_depth" yaml:"max_depth"`             // call depth, 0 = unbounded
	MaxParseDepth int `toml:"max_parse_depth" yaml:"max_parse_depth"` // nesting, 0 = unbounded
}

// ReplConfig holds interactive settings.
type ReplConfig struct {
	HistoryFile  string `toml:"history_file" yaml:"history_file"`
	Prompt       string `toml:"prompt" yaml:"prompt"`
	Continuation string `toml:"continuation" yaml:"continuation"`
	Color        bool   `toml:"color" yaml:"color"`
}

// TraceConfig controls trace export.
type TraceConfig struct {
	Format string `toml:"format" yaml:"format"` // yaml or json
	Output string `toml:"output" yaml:"output"` // file path, empty = stdout
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:  LogConfig{Level: "warn", Format: "text"},
		Eval: EvalConfig{MaxDepth: 10000, MaxParseDepth: 1000},
		Repl: ReplConfig{
			HistoryFile:  ".olang_history",
			Prompt:       "==> ",
			Continuation: "... ",
			Color:        true,
		},
		Trace: TraceConfig{Format: "yaml"},
	}
}

// Load reads path, or the first of DefaultFiles present in the working
// directory when path is empty. A missing default file is not an error; a
// missing explicit path is.
func Load(path string) (*Config, error) {
	if path == "" {
		for _, name := range DefaultFiles {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}
	if path == "" {
		cfg := Default()
		if err := cfg.applyEnv(os.LookupEnv); err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := decode(content, detectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.path = path
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadFromString decodes content over the defaults. Environment overrides
// are not applied.
func LoadFromString(content string, format Format) (*Config, error) {
	if format == FormatAuto {
		format = FormatTOML
	}
	cfg, err := decode([]byte(content), format)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Path is the file the config was read from, or "" for defaults.
func (c *Config) Path() string { return c.path }

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q is not one of text, json", c.Log.Format)
	}
	switch strings.ToLower(c.Trace.Format) {
	case "yaml", "json":
	default:
		return fmt.Errorf("config: trace.format %q is not one of yaml, json", c.Trace.Format)
	}
	if c.Eval.MaxDepth < 0 {
		return fmt.Errorf("config: eval.max_depth must be >= 0, got %d", c.Eval.MaxDepth)
	}
	if c.Eval.MaxParseDepth < 0 {
		return fmt.Errorf("config: eval.max_parse_depth must be >= 0, got %d", c.Eval.MaxParseDepth)
	}
	return nil
}

func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// decode fills a default config so keys absent from content keep defaults.
func decode(content []byte, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(content), cfg); err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return cfg, nil
}

// envKey turns "log.level" into "OLANG_LOG_LEVEL".
func envKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envKey(key)); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(envKey(key))
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q is not an integer", envKey(key), v)
		}
		*dst = n
		return nil
	}

	str("log.level", &c.Log.Level)
	str("log.format", &c.Log.Format)
	str("repl.history_file", &c.Repl.HistoryFile)
	str("trace.format", &c.Trace.Format)
	str("trace.output", &c.Trace.Output)
	if err := num("eval.max_depth", &c.Eval.MaxDepth); err != nil {
		return err
	}
	if err := num("eval.max_parse_depth", &c.Eval.MaxParseDepth); err != nil {
		return err
	}
	if _, ok := lookup(EnvPrefix + "_NO_COLOR"); ok {
		c.Repl.Color = false
	}
	return nil
}
