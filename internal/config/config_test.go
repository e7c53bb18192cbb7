package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/evaluator"
	"github.com/hassan/tinyscript/internal/lexer"
	"github.com/hassan/tinyscript/internal/optimizer"
	"github.com/hassan/tinyscript/internal/parser"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Scoping != "chain" || cfg.MaxIterations != evaluator.DefaultMaxIterations {
		t.Errorf("Default() = %+v", cfg)
	}
	if !cfg.Optimize || cfg.OptimizeRounds != optimizer.DefaultMaxIterations {
		t.Errorf("Default() optimizer = %+v", cfg)
	}
	if !cfg.Analyze || !cfg.Color || cfg.WarningsAsErrors {
		t.Errorf("Default() flags = %+v", cfg)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
scoping: copy
max_iterations: 0
optimize: false
playground:
  addr: ":9000"
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Scoping != "copy" || cfg.MaxIterations != 0 || cfg.Optimize {
		t.Errorf("Parse() = %+v", cfg)
	}
	if cfg.Playground.Addr != ":9000" {
		t.Errorf("playground.addr = %q", cfg.Playground.Addr)
	}
	// Keys left out keep their defaults.
	if !cfg.Analyze || cfg.Playground.CacheSize != 128 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse(empty) error: %v", err)
	}
	if cfg.Scoping != "chain" {
		t.Errorf("Parse(empty) = %+v, want defaults", cfg)
	}
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse(strings.NewReader("scopping: copy\n"))
	if err == nil {
		t.Fatal("Parse() accepted an unknown key")
	}
}

func TestParse_ValidationAggregates(t *testing.T) {
	_, err := Parse(strings.NewReader(`
scoping: dynamic
max_iterations: -1
optimize_rounds: 0
playground:
  addr: nowhere
  cache_size: -2
  max_body_bytes: 0
`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Parse() error = %v, want *ValidationError", err)
	}
	if len(verr.Issues) != 6 {
		t.Errorf("got %d issues, want 6:\n%v", len(verr.Issues), verr)
	}
	if !strings.HasPrefix(verr.Error(), "config validation failed:\n- scoping:") {
		t.Errorf("Error() = %q", verr.Error())
	}
}

func TestValidationError_Empty(t *testing.T) {
	if got := (&ValidationError{}).Error(); got != "config: invalid configuration" {
		t.Errorf("Error() = %q", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yml")
	if err := os.WriteFile(path, []byte("max_iterations: 42\ncolor: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MaxIterations != 42 || cfg.Color {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}

	if _, err := Load(filepath.Join(dir, "missing.yml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want not-exist", err)
	}
	if _, err := Load(""); err == nil {
		t.Error("Load(\"\") should fail")
	}
}

func TestLoadDefault(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadDefault(dir)
	if err != nil {
		t.Fatalf("LoadDefault() without file error: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty for defaults", cfg.Path)
	}

	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte("analyze: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadDefault(dir)
	if err != nil {
		t.Fatalf("LoadDefault() error: %v", err)
	}
	if cfg.Analyze {
		t.Error("analyze should come from the file")
	}
}

func TestEvaluatorOptions(t *testing.T) {
	run := func(cfg *Config, src string) (*evaluator.Evaluator, error) {
		tokens, _ := lexer.Tokenize(src)
		root, err := parser.Parse(tokens)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		ev := evaluator.New(nil, cfg.EvaluatorOptions()...)
		return ev, ev.Run(root)
	}

	cfg := Default()
	cfg.MaxIterations = 7
	ev, err := run(cfg, "let i = 0; while (1) { i = i + 1; }")
	if !errors.Is(err, diag.ErrIterationLimit) {
		t.Fatalf("Run error = %v, want iteration limit", err)
	}
	if v, _ := ev.Env().Get("i", 0); v != 7 {
		t.Errorf("i = %v, want 7", v)
	}

	cfg = Default()
	cfg.Scoping = "copy"
	ev, err = run(cfg, "let x = 1; { x = 2; }")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := ev.Env().Get("x", 0); v != 1 {
		t.Errorf("copy scoping: x = %v, want 1", v)
	}
}

func TestMarshal(t *testing.T) {
	out, err := Default().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Parse(strings.NewReader(string(out)))
	if err != nil {
		t.Fatalf("re-parse of marshaled defaults: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("marshaled defaults did not read back:\n%s", out)
	}
}
