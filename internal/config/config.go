// Package config loads interpreter settings from a YAML file.
//
// A settings file looks like:
//
//	scoping: chain          # chain | copy
//	max_iterations: 100000  # 0 disables the loop budget
//	optimize: true
//	optimize_rounds: 10
//	analyze: true
//	warnings_as_errors: false
//	color: true
//	playground:
//	  addr: 127.0.0.1:8080
//	  cache_size: 128
//	  max_body_bytes: 65536
//
// Keys left out keep their defaults. Unknown keys are rejected.
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hassan/tinyscript/internal/evaluator"
	"github.com/hassan/tinyscript/internal/optimizer"
)

// DefaultFile is the settings file looked up in the working directory.
const DefaultFile = ".tinyscript.yml"

// Config holds every tunable setting.
type Config struct {
	// Path is the file the settings came from, empty for defaults.
	Path string `yaml:"-"`

	Scoping          string `yaml:"scoping"`
	MaxIterations    int    `yaml:"max_iterations"`
	Optimize         bool   `yaml:"optimize"`
	OptimizeRounds   int    `yaml:"optimize_rounds"`
	Analyze          bool   `yaml:"analyze"`
	WarningsAsErrors bool   `yaml:"warnings_as_errors"`
	Color            bool   `yaml:"color"`

	Playground Playground `yaml:"playground"`
}

// Playground configures the HTTP run service.
type Playground struct {
	Addr         string `yaml:"addr"`
	CacheSize    int    `yaml:"cache_size"`
	MaxBodyBytes int    `yaml:"max_body_bytes"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Scoping:        evaluator.ScopingChain.String(),
		MaxIterations:  evaluator.DefaultMaxIterations,
		Optimize:       true,
		OptimizeRounds: optimizer.DefaultMaxIterations,
		Analyze:        true,
		Color:          true,
		Playground: Playground{
			Addr:         "127.0.0.1:8080",
			CacheSize:    128,
			MaxBodyBytes: 64 << 10,
		},
	}
}

// ValidationError aggregates settings validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load reads and validates the settings file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	cfg, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", absPath, err)
	}
	cfg.Path = absPath
	return cfg, nil
}

// LoadDefault loads DefaultFile from dir when it exists and returns the
// built-in settings otherwise.
func LoadDefault(dir string) (*Config, error) {
	path := filepath.Join(dir, DefaultFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	return Load(path)
}

// Parse decodes settings from r on top of the defaults and validates them.
// An empty document yields the defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidationError
	if _, err := evaluator.ParseScoping(c.Scoping); err != nil {
		errs.Issues = append(errs.Issues, fmt.Sprintf("scoping: %v", err))
	}
	if c.MaxIterations < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_iterations must not be negative, got %d", c.MaxIterations))
	}
	if c.OptimizeRounds < 1 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("optimize_rounds must be at least 1, got %d", c.OptimizeRounds))
	}
	if _, _, err := net.SplitHostPort(c.Playground.Addr); err != nil {
		errs.Issues = append(errs.Issues, fmt.Sprintf("playground.addr %q is not host:port", c.Playground.Addr))
	}
	if c.Playground.CacheSize < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("playground.cache_size must not be negative, got %d", c.Playground.CacheSize))
	}
	if c.Playground.MaxBodyBytes <= 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("playground.max_body_bytes must be positive, got %d", c.Playground.MaxBodyBytes))
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// EvaluatorOptions returns the evaluator settings described by c. c must
// have been validated.
func (c *Config) EvaluatorOptions() []evaluator.Option {
	scoping, _ := evaluator.ParseScoping(c.Scoping)
	return []evaluator.Option{
		evaluator.WithScoping(scoping),
		evaluator.WithMaxIterations(c.MaxIterations),
	}
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
