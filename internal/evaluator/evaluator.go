// Package evaluator computes values.
//
// Evaluate reduces a constant expression tree to a number and is also used
// by the parser for constant folding. Evaluator walks a parsed program,
// binding variables in a symtab.Environment as it goes.
package evaluator

import (
	"fmt"
	"log"

	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/parser/ast"
	"github.com/hassan/tinyscript/internal/symtab"
)

// DefaultMaxIterations bounds the total number of while-loop iterations in
// one run.
const DefaultMaxIterations = 1_000_000

// Scoping selects how blocks see the bindings around them.
type Scoping int

const (
	// ScopingChain links each block to its enclosing scope: assignments
	// reach outer variables, declarations stay inside the block.
	ScopingChain Scoping = iota

	// ScopingCopy runs each block against a private copy of every visible
	// binding: nothing written inside the block is seen outside it.
	ScopingCopy
)

func (s Scoping) String() string {
	switch s {
	case ScopingChain:
		return "chain"
	case ScopingCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// ParseScoping converts "chain" or "copy" to a Scoping.
func ParseScoping(name string) (Scoping, error) {
	switch name {
	case "chain", "":
		return ScopingChain, nil
	case "copy":
		return ScopingCopy, nil
	default:
		return ScopingChain, fmt.Errorf("unknown scoping mode %q (want chain or copy)", name)
	}
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithScoping sets the block scoping mode.
func WithScoping(s Scoping) Option {
	return func(e *Evaluator) { e.scoping = s }
}

// WithMaxIterations sets the loop budget. Zero disables the limit.
func WithMaxIterations(n int) Option {
	return func(e *Evaluator) { e.maxIterations = n }
}

// WithTrace logs every executed statement to logger.
func WithTrace(logger *log.Logger) Option {
	return func(e *Evaluator) { e.trace = logger }
}

// Evaluator executes a program tree against an environment.
type Evaluator struct {
	global *symtab.Environment
	env    *symtab.Environment

	scoping       Scoping
	maxIterations int
	iterations    int

	result    float64
	hasResult bool

	trace *log.Logger
}

// New creates an evaluator whose program scope is env. A nil env starts
// from an empty global environment.
func New(env *symtab.Environment, opts ...Option) *Evaluator {
	if env == nil {
		env = symtab.New()
	}
	e := &Evaluator{
		global:        env,
		env:           env,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes root against env; the updated env is the program's effect.
func Run(root *ast.Scope, env *symtab.Environment, opts ...Option) error {
	return New(env, opts...).Run(root)
}

// Run executes the program. The root scope's statements run directly in
// the evaluator's environment, so its declarations remain visible after
// Run returns. The first error aborts execution.
func (e *Evaluator) Run(root *ast.Scope) error {
	if root == nil {
		return nil
	}
	return e.execIn(root, e.global)
}

// Env returns the program-level environment.
func (e *Evaluator) Env() *symtab.Environment { return e.global }

// Result returns the value of the last expression statement executed and
// whether there was one.
func (e *Evaluator) Result() (float64, bool) { return e.result, e.hasResult }

// Iterations returns the number of loop iterations executed so far.
func (e *Evaluator) Iterations() int { return e.iterations }

func (e *Evaluator) execIn(s *ast.Scope, env *symtab.Environment) error {
	prev := e.env
	e.env = env
	defer func() { e.env = prev }()

	for _, stmt := range s.Children {
		if err := stmt.Accept(e); err != nil {
			return err
		}
	}
	return nil
}

// enter returns the environment for a nested block.
func (e *Evaluator) enter(kind symtab.ScopeKind) *symtab.Environment {
	if e.scoping == ScopingCopy {
		return e.env.Dup(kind)
	}
	return e.env.Child(kind)
}

func (e *Evaluator) eval(expr *ast.ExpressionNode) (float64, error) {
	return EvaluateIn(expr.Tree, e.env)
}

func (e *Evaluator) tracef(format string, args ...interface{}) {
	if e.trace != nil {
		e.trace.Printf(format, args...)
	}
}

func (e *Evaluator) VisitScope(s *ast.Scope) error {
	e.tracef("line %d: enter block", s.Pos().Line)
	return e.execIn(s, e.enter(symtab.ScopeBlock))
}

func (e *Evaluator) VisitVariable(s *ast.Variable) error {
	var (
		v     float64
		bound bool
	)
	if s.Initializer != nil {
		var err error
		if v, err = e.eval(s.Initializer); err != nil {
			return err
		}
		bound = true
	}

	if !s.Declared {
		e.tracef("line %d: %s = %s", s.Pos().Line, s.Name, FormatNumber(v))
		return e.env.Assign(s.Name, v, s.NameTok.Position)
	}

	sym := &symtab.Symbol{Name: s.Name, Constant: s.Constant, Pos: s.NameTok.Position}
	if bound {
		sym.Bind(v)
	}
	if err := e.env.Declare(sym); err != nil {
		return err
	}
	where := "local"
	if sym.IsGlobal() {
		where = "global"
	}
	e.tracef("line %d: declare %s (%s)", s.Pos().Line, sym, where)
	return nil
}

func (e *Evaluator) VisitExpression(s *ast.Expression) error {
	v, err := e.eval(s.Expr)
	if err != nil {
		return err
	}
	e.result, e.hasResult = v, true
	e.tracef("line %d: %s => %s", s.Expr.Line(), s.Expr, FormatNumber(v))
	return nil
}

func (e *Evaluator) VisitIf(s *ast.If) error {
	cond, err := e.eval(s.Condition)
	if err != nil {
		return err
	}
	e.tracef("line %d: if %s => %s", s.Pos().Line, s.Condition, FormatNumber(cond))

	switch {
	case Truthy(cond):
		return e.execIn(s.Body, e.enter(symtab.ScopeBranch))
	case s.ElseBody != nil:
		return e.execIn(s.ElseBody, e.enter(symtab.ScopeBranch))
	default:
		return nil
	}
}

func (e *Evaluator) VisitWhile(s *ast.While) error {
	for {
		cond, err := e.eval(s.Condition)
		if err != nil {
			return err
		}
		if !Truthy(cond) {
			return nil
		}

		if e.maxIterations > 0 && e.iterations >= e.maxIterations {
			return diag.Eval(diag.ErrIterationLimit, s.Pos().Line, s.WhileTok.Lexeme,
				"loop exceeded the limit of %d iterations", e.maxIterations)
		}
		e.iterations++

		if err := e.execIn(s.Body, e.enter(symtab.ScopeLoop)); err != nil {
			return err
		}
	}
}
