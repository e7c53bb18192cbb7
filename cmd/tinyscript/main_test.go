package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hassan/tinyscript/internal/lexer"
)

func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.ts")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func invoke(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := realMain(append([]string{"tinyscript"}, args...), strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRealMain(t *testing.T) {
	tests := []struct {
		name   string
		flags  []string
		src    string
		code   int
		stdout string
		stderr string
	}{
		{
			name:   "prints last expression",
			src:    "let x = 3;\nx * 2 + 1;\n",
			stdout: "7\n",
		},
		{
			name:   "no expression prints nothing",
			src:    "let x = 3;",
			stdout: "",
		},
		{
			name:   "parse error",
			src:    "let x = 3",
			code:   exitFail,
			stderr: "parse error",
		},
		{
			name:   "iteration budget",
			flags:  []string{"-g", "3"},
			src:    "let i = 0;\nwhile (1) { i = i + 1; }\n",
			code:   exitFail,
			stderr: ":2: eval error: loop exceeded the limit of 3 iterations",
		},
		{
			name:   "copy scoping",
			flags:  []string{"-s", "copy"},
			src:    "let x = 1; { x = 2; } x;",
			stdout: "1\n",
		},
		{
			name:   "chain scoping",
			src:    "let x = 1; { x = 2; } x;",
			stdout: "2\n",
		},
		{
			name:   "warning is printed but does not fail",
			src:    "{ let unused = 1; } 5;",
			stdout: "5\n",
			stderr: "semantic warning",
		},
		{
			name:   "env tool",
			flags:  []string{"-t", "env"},
			src:    "let a = 2; const b = a * 4;",
			stdout: "a: 2\nb: 8\n",
		},
		{
			name:   "ast tool folds constants",
			flags:  []string{"-t", "ast"},
			src:    "let x = 1 + 2 * 3;",
			stdout: "scope\n  let x = 7\n",
		},
		{
			name:   "ast tool without optimizer",
			flags:  []string{"-O", "-t", "ast"},
			src:    "let x = 1 + 2 * 3;",
			stdout: "scope\n  let x = (1 + (2 * 3))\n",
		},
		{
			name:   "tokens tool",
			flags:  []string{"-t", "tokens"},
			src:    "let x;",
			stdout: ":1:1-4\tkeyword\tLET(let)\n",
		},
		{
			name:   "lex error",
			flags:  []string{"-t", "tokens"},
			src:    "1 @ 2;",
			code:   exitFail,
			stderr: "lex error: unexpected character '@'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProgram(t, tt.src)
			args := append(append([]string{"-n"}, tt.flags...), path)
			code, stdout, stderr := invoke(args...)
			if code != tt.code {
				t.Errorf("exit code = %d, want %d\nstderr: %s", code, tt.code, stderr)
			}
			if tt.flags != nil && tt.flags[len(tt.flags)-1] == "tokens" {
				if !strings.Contains(stdout, tt.stdout) {
					t.Errorf("stdout = %q, want it to contain %q", stdout, tt.stdout)
				}
			} else if stdout != tt.stdout {
				t.Errorf("stdout = %q, want %q", stdout, tt.stdout)
			}
			if !strings.Contains(stderr, tt.stderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.stderr)
			}
		})
	}
}

func TestRealMain_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", nil},
		{"unknown tool", []string{"-t", "compile", "x.ts"}},
		{"unknown flag", []string{"-z", "x.ts"}},
		{"bad budget", []string{"-g", "many", "x.ts"}},
		{"two files", []string{"a.ts", "b.ts"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := invoke(tt.args...)
			if code != exitUsage {
				t.Errorf("exit code = %d, want %d", code, exitUsage)
			}
			if !strings.Contains(stderr, "usage: tinyscript") {
				t.Errorf("stderr = %q, want usage text", stderr)
			}
		})
	}
}

func TestRealMain_Help(t *testing.T) {
	code, stdout, _ := invoke("-h")
	if code != exitOK || !strings.HasPrefix(stdout, "usage: tinyscript") {
		t.Errorf("-h: code %d, stdout %q", code, stdout)
	}
}

func TestRealMain_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yml")
	if err := os.WriteFile(cfgPath, []byte("scoping: copy\ncolor: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	prog := writeProgram(t, "let x = 1; { x = 2; } x;")

	code, stdout, stderr := invoke("-c", cfgPath, prog)
	if code != exitOK || stdout != "1\n" {
		t.Errorf("code %d, stdout %q, stderr %q", code, stdout, stderr)
	}

	// Flags win over the file.
	_, stdout, _ = invoke("-c", cfgPath, "-s", "chain", prog)
	if stdout != "2\n" {
		t.Errorf("with -s chain: stdout %q, want 2", stdout)
	}
}

func TestRealMain_BadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yml")
	if err := os.WriteFile(cfgPath, []byte("scoping: dynamic\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, stderr := invoke("-c", cfgPath, writeProgram(t, "1;"))
	if code != exitFail || !strings.Contains(stderr, "config validation failed") {
		t.Errorf("code %d, stderr %q", code, stderr)
	}
}

func TestRealMain_MissingFile(t *testing.T) {
	code, _, stderr := invoke(filepath.Join(t.TempDir(), "absent.ts"))
	if code != exitFail || !strings.Contains(stderr, "reading") {
		t.Errorf("code %d, stderr %q", code, stderr)
	}
}

func TestRealMain_Verbose(t *testing.T) {
	code, stdout, stderr := invoke("-v", writeProgram(t, "const k = 2;\nlet x = k * 3;\nx;\n"))
	if code != exitOK || stdout != "6\n" {
		t.Fatalf("code %d, stdout %q, stderr %q", code, stdout, stderr)
	}
	for _, want := range []string{
		"settings from defaults:",
		"optimize_rounds: 10",
		"semantic: globals:",
		"final environment:",
		"global scope (depth 0, 2 symbols, 1 constants)",
		"let x = 6 at",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestTokenClass(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"while", "keyword"},
		{"<=", "operator"},
		{"4.5", "literal"},
		{`"s"`, "literal"},
		{"total", "name"},
		{";", "punct"},
		{"&", "error"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tokens, _ := lexer.Tokenize(tt.src)
			if len(tokens) != 1 {
				t.Fatalf("Tokenize(%q) = %v, want one token", tt.src, tokens)
			}
			if got := tokenClass(tokens[0].Type); got != tt.want {
				t.Errorf("tokenClass(%s) = %q, want %q", tokens[0].Type, got, tt.want)
			}
		})
	}
}
