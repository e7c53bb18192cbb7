// Package semantic statically checks a parsed program before it runs.
//
// The checker walks the statement tree once, tracking declarations in a
// chain of symtab environments that mirrors the block structure. It never
// evaluates anything: bindings only record whether a name has been given a
// value on some path so far. Findings are collected in a diag.List rather
// than stopping at the first one.
//
// Reported problems:
//
//	error    assignment or redeclaration of a visible constant
//	error    string literal used as a number
//	warning  const declared without a value
//	warning  read of a name no enclosing scope declares
//	warning  read of a name that has not been assigned yet
//	warning  block-local variable that is never read
package semantic

import (
	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/lexer"
	"github.com/hassan/tinyscript/internal/parser/ast"
	"github.com/hassan/tinyscript/internal/symtab"
)

// Analyzer implements ast.Visitor.
type Analyzer struct {
	currentScope *symtab.Environment
	globalScope  *symtab.Environment

	diags *diag.List
}

// New creates an analyzer with an empty global scope.
func New() *Analyzer {
	global := symtab.New()
	return &Analyzer{
		currentScope: global,
		globalScope:  global,
		diags:        diag.NewList(),
	}
}

// Analyze checks root and returns the findings in source order.
func Analyze(root *ast.Scope) *diag.List {
	return New().Analyze(root)
}

// Analyze checks the program rooted at root. The root's statements are
// checked in the global scope, matching how the evaluator runs them.
func (a *Analyzer) Analyze(root *ast.Scope) *diag.List {
	a.diags = diag.NewList()
	a.currentScope = a.globalScope
	if root != nil {
		a.visitAll(root)
	}
	return a.diags
}

// GetScope returns the global scope as populated by the last Analyze.
func (a *Analyzer) GetScope() *symtab.Environment {
	return a.globalScope
}

func (a *Analyzer) visitAll(s *ast.Scope) {
	for _, stmt := range s.Children {
		_ = stmt.Accept(a)
	}
}

func (a *Analyzer) visitNested(s *ast.Scope, kind symtab.ScopeKind) {
	a.enterScope(kind)
	a.visitAll(s)
	a.exitScope()
}

func (a *Analyzer) VisitScope(s *ast.Scope) error {
	a.visitNested(s, symtab.ScopeBlock)
	return nil
}

func (a *Analyzer) VisitVariable(s *ast.Variable) error {
	if s.Initializer != nil {
		a.checkExpr(s.Initializer)
	}

	pos := s.NameTok.Position
	if !s.Declared {
		if err := a.currentScope.Assign(s.Name, 0, pos); err != nil {
			a.reportBinding(err)
		}
		return nil
	}

	if s.Constant && s.Initializer == nil {
		a.diags.Report(diag.Warning(diag.KindSemantic, diag.ErrConstWithoutValue, pos.Line, s.Name,
			"constant %q declared without a value can never be assigned", s.Name))
	}

	sym := &symtab.Symbol{Name: s.Name, Constant: s.Constant, Pos: pos}
	if s.Initializer != nil {
		sym.Bind(0)
	}
	if err := a.currentScope.Declare(sym); err != nil {
		a.reportBinding(err)
	}
	return nil
}

func (a *Analyzer) VisitExpression(s *ast.Expression) error {
	a.checkExpr(s.Expr)
	return nil
}

func (a *Analyzer) VisitIf(s *ast.If) error {
	a.checkExpr(s.Condition)
	a.visitNested(s.Body, symtab.ScopeBranch)
	if s.ElseBody != nil {
		a.visitNested(s.ElseBody, symtab.ScopeBranch)
	}
	return nil
}

func (a *Analyzer) VisitWhile(s *ast.While) error {
	a.checkExpr(s.Condition)
	a.visitNested(s.Body, symtab.ScopeLoop)
	return nil
}

func (a *Analyzer) enterScope(kind symtab.ScopeKind) {
	a.currentScope = a.currentScope.Child(kind)
}

// exitScope reports never-read block locals and returns to the parent.
func (a *Analyzer) exitScope() {
	for _, sym := range a.currentScope.UnusedSymbols() {
		a.diags.Report(diag.Warning(diag.KindSemantic, diag.ErrUnusedVariable, sym.Pos.Line, sym.Name,
			"%q is declared in a %s scope but never read", sym.Name, a.currentScope.Kind))
	}
	a.currentScope = a.currentScope.Parent
}

// reportBinding turns an environment error into a semantic error at the
// same line.
func (a *Analyzer) reportBinding(err error) {
	d, ok := diag.As(err)
	if !ok {
		a.diags.Report(diag.Semantic(err, 0, "", "%v", err))
		return
	}
	a.diags.Report(diag.Semantic(d.Err, d.Line, d.Lexeme, "%s", d.Message))
}

func (a *Analyzer) warn(cause error, tok lexer.Token, format string, args ...interface{}) {
	a.diags.Report(diag.Warning(diag.KindSemantic, cause, tok.Line(), tok.Lexeme, format, args...))
}
