// Command tinyscript runs programs written in the tinyscript language.
//
// Pipeline:
//  1. Lexical analysis (tokenization)
//  2. Parsing, with parenthesized constants folded
//  3. Static checks (semantic)
//  4. Optimization (constant folding, dead branch elimination)
//  5. Evaluation
//
// The -t flag stops the pipeline early to show intermediate results.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"git.sr.ht/~sircmpwn/getopt"
	"gopkg.in/yaml.v3"

	"github.com/hassan/tinyscript/internal/config"
	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/evaluator"
	"github.com/hassan/tinyscript/internal/lexer"
	"github.com/hassan/tinyscript/internal/optimizer"
	"github.com/hassan/tinyscript/internal/parser"
	"github.com/hassan/tinyscript/internal/parser/ast"
	"github.com/hassan/tinyscript/internal/playground"
	"github.com/hassan/tinyscript/internal/semantic"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

const usage = `usage: tinyscript [options] [file]

Runs file, or standard input when file is "-".

options:
  -c FILE  settings file (default: ./` + config.DefaultFile + ` when present)
  -v       trace evaluation and optimization on stderr
  -n       disable colored diagnostics
  -O       disable the optimizer
  -s MODE  block scoping: chain or copy
  -g N     loop iteration budget, 0 for unlimited
  -t TOOL  run (default), tokens, ast, env or serve
  -h       show this help
`

var errHelp = errors.New("help requested")

type options struct {
	configPath string
	verbose    bool
	noColor    bool
	noOptimize bool
	scoping    string
	maxIter    int
	hasMaxIter bool
	tool       string
	file       string
}

func main() {
	os.Exit(realMain(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func realMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := readFlags(args)
	if errors.Is(err, errHelp) {
		fmt.Fprint(stdout, usage)
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "tinyscript: %v\n\n%s", err, usage)
		return exitUsage
	}

	logger := log.New(stderr, "tinyscript: ", 0)
	cfg, err := loadConfig(opts)
	if err != nil {
		logger.Println(err)
		return exitFail
	}

	a := &app{
		cfg:     cfg,
		verbose: opts.verbose,
		stdout:  stdout,
		logger:  logger,
	}
	if a.verbose {
		a.logSettings()
	}

	if opts.tool == "serve" {
		if err := playground.New(cfg, logger).ListenAndServe(); err != nil {
			logger.Printf("error in ListenAndServe: %v", err)
			return exitFail
		}
		return exitOK
	}

	src, filename, err := readSource(opts.file, stdin)
	if err != nil {
		logger.Println(err)
		return exitFail
	}
	a.filename = filename
	a.printer = diag.NewPrinter(stderr, filename, cfg.Color)

	switch opts.tool {
	case "tokens":
		return a.printTokens(src)
	case "ast":
		return a.printAST(src)
	case "env":
		return a.run(src, true)
	default:
		return a.run(src, false)
	}
}

// readFlags parses the command line. args includes the program name.
func readFlags(args []string) (*options, error) {
	parsed, optind, err := getopt.Getopts(args, "c:vnOs:g:t:h")
	if err != nil {
		return nil, err
	}

	opts := &options{tool: "run"}
	for _, opt := range parsed {
		switch opt.Option {
		case 'c':
			opts.configPath = opt.Value
		case 'v':
			opts.verbose = true
		case 'n':
			opts.noColor = true
		case 'O':
			opts.noOptimize = true
		case 's':
			opts.scoping = opt.Value
		case 'g':
			n, err := strconv.Atoi(opt.Value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid -g parameter %q", opt.Value)
			}
			opts.maxIter = n
			opts.hasMaxIter = true
		case 't':
			opts.tool = opt.Value
		default: // 'h'
			return nil, errHelp
		}
	}

	switch opts.tool {
	case "run", "tokens", "ast", "env", "serve":
	default:
		return nil, fmt.Errorf("unknown tool %q", opts.tool)
	}

	rest := args[optind:]
	switch {
	case len(rest) > 1:
		return nil, fmt.Errorf("expected one file, got %d", len(rest))
	case len(rest) == 1:
		opts.file = rest[0]
	case opts.tool != "serve":
		return nil, errors.New("missing file")
	}
	return opts, nil
}

// loadConfig reads the settings file and applies the flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.LoadDefault(".")
	}
	if err != nil {
		return nil, err
	}

	if opts.noColor {
		cfg.Color = false
	}
	if opts.noOptimize {
		cfg.Optimize = false
	}
	if opts.scoping != "" {
		cfg.Scoping = opts.scoping
	}
	if opts.hasMaxIter {
		cfg.MaxIterations = opts.maxIter
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readSource(file string, stdin io.Reader) (string, string, error) {
	if file == "-" {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading standard input: %w", err)
		}
		return string(src), "<stdin>", nil
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", file, err)
	}
	return string(src), file, nil
}

type app struct {
	cfg      *config.Config
	verbose  bool
	filename string

	stdout  io.Writer
	printer *diag.Printer
	logger  *log.Logger
}

// logSettings writes the effective settings to the log as YAML.
func (a *app) logSettings() {
	out, err := a.cfg.Marshal()
	if err != nil {
		a.logger.Printf("settings: %v", err)
		return
	}
	source := a.cfg.Path
	if source == "" {
		source = "defaults"
	}
	a.logger.Printf("settings from %s:\n%s", source, out)
}

func (a *app) printTokens(src string) int {
	lx := lexer.New(src, a.filename)
	for _, tok := range lx.Tokenize() {
		fmt.Fprintf(a.stdout, "%s\t%s\t%s(%s)\n", tok.Span(), tokenClass(tok.Type), tok.Type, tok.Lexeme)
	}
	diags := lx.Diagnostics()
	failed := diags.HasErrors()
	a.printer.PrintAll(diags.Drain())
	if failed {
		return exitFail
	}
	return exitOK
}

func tokenClass(tt lexer.TokenType) string {
	switch {
	case tt.IsKeyword():
		return "keyword"
	case tt.IsOperator():
		return "operator"
	case tt.IsLiteral():
		return "literal"
	case tt == lexer.TokenIdentifier:
		return "name"
	case tt == lexer.TokenError:
		return "error"
	}
	return "punct"
}

func (a *app) printAST(src string) int {
	root, ok := a.prepare(src)
	if !ok {
		return exitFail
	}
	if err := ast.Fprint(a.stdout, root); err != nil {
		a.logger.Println(err)
		return exitFail
	}
	return exitOK
}

// run evaluates src and prints the value of the last expression statement,
// or the final global environment as YAML when dumpEnv is set.
func (a *app) run(src string, dumpEnv bool) int {
	root, ok := a.prepare(src)
	if !ok {
		return exitFail
	}

	opts := a.cfg.EvaluatorOptions()
	if a.verbose {
		opts = append(opts, evaluator.WithTrace(a.logger))
	}
	ev := evaluator.New(nil, opts...)
	runErr := ev.Run(root)
	if runErr != nil {
		a.printer.Print(asDiagnostic(runErr, diag.KindEval))
	}
	if a.verbose {
		a.logger.Printf("final environment:\n%s", ev.Env().DebugString())
	}

	if dumpEnv {
		out, err := yaml.Marshal(ev.Env().Snapshot())
		if err != nil {
			a.logger.Println(err)
			return exitFail
		}
		a.stdout.Write(out)
	} else if v, ok := ev.Result(); ok && runErr == nil {
		fmt.Fprintln(a.stdout, evaluator.FormatNumber(v))
	}

	if runErr != nil {
		return exitFail
	}
	return exitOK
}

// prepare runs every phase before evaluation and prints what they report.
// It returns false when an error diagnostic stopped the pipeline.
func (a *app) prepare(src string) (*ast.Scope, bool) {
	tokens, diags := lexer.Tokenize(src)

	var root *ast.Scope
	if !diags.HasErrors() {
		var err error
		if root, err = parser.Parse(tokens); err != nil {
			diags.Report(asDiagnostic(err, diag.KindParse))
		}
	}
	if root != nil && a.cfg.Analyze {
		checker := semantic.New()
		diags.Merge(checker.Analyze(root))
		if a.verbose {
			a.logger.Printf("semantic: globals:\n%s", checker.GetScope().DebugString())
		}
	}
	if a.cfg.WarningsAsErrors {
		diags.PromoteWarnings()
	}

	failed := diags.HasErrors()
	a.printer.PrintAll(diags.Drain())
	if failed {
		return nil, false
	}

	if a.cfg.Optimize {
		o := optimizer.NewOptimizer()
		o.SetVerbose(a.verbose)
		o.SetLogger(a.logger)
		o.SetMaxIterations(a.cfg.OptimizeRounds)
		if err := o.Optimize(root); err != nil {
			a.logger.Printf("optimizer: %v", err)
			return nil, false
		}
	}
	return root, true
}

func asDiagnostic(err error, kind diag.Kind) *diag.Diagnostic {
	if d, ok := diag.As(err); ok {
		return d
	}
	return &diag.Diagnostic{
		Severity: diag.SeverityError,
		Kind:     kind,
		Message:  err.Error(),
		Err:      err,
	}
}
