package symtab

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ahrtr/gocontainer/set"

	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/lexer"
)

// ScopeKind says which construct opened an environment.
type ScopeKind int

const (
	// ScopeGlobal is the program's outermost scope.
	ScopeGlobal ScopeKind = iota

	// ScopeBlock is a bare { ... } block.
	ScopeBlock

	// ScopeBranch is the body of an if or else.
	ScopeBranch

	// ScopeLoop is one iteration of a while body.
	ScopeLoop
)

func (sk ScopeKind) String() string {
	switch sk {
	case ScopeGlobal:
		return "global"
	case ScopeBlock:
		return "block"
	case ScopeBranch:
		return "branch"
	case ScopeLoop:
		return "loop"
	default:
		return "unknown"
	}
}

// Environment holds the bindings of one scope.
type Environment struct {
	Kind ScopeKind

	// Parent is the enclosing scope: nil for the global scope and for
	// scopes created by Dup.
	Parent *Environment

	// Depth is 0 for the global scope.
	Depth int

	symbols map[string]*Symbol
	order   []string

	// consts holds the names declared constant in this scope.
	consts set.Interface
}

// New returns an empty global environment.
func New() *Environment {
	return NewScope(ScopeGlobal, nil)
}

// NewScope returns an empty environment of the given kind nested in parent.
func NewScope(kind ScopeKind, parent *Environment) *Environment {
	depth := 0
	if parent != nil {
		depth = parent.Depth + 1
	}
	return &Environment{
		Kind:    kind,
		Parent:  parent,
		Depth:   depth,
		symbols: make(map[string]*Symbol),
		consts:  set.New(),
	}
}

// Child returns a new scope chained to e. Lookups and assignments fall
// through to e; declarations stay in the child.
func (e *Environment) Child(kind ScopeKind) *Environment {
	return NewScope(kind, e)
}

// Dup returns an unchained copy holding every binding visible from e,
// with inner declarations shadowing outer ones. Changes to the copy never
// reach e. Copied constants keep their flag, so they still refuse
// assignment, but the copy declares none of its own and may shadow them.
func (e *Environment) Dup(kind ScopeKind) *Environment {
	dup := &Environment{
		Kind:    kind,
		Depth:   e.Depth + 1,
		symbols: make(map[string]*Symbol),
		consts:  set.New(),
	}

	var chain []*Environment
	for env := e; env != nil; env = env.Parent {
		chain = append(chain, env)
	}
	// Outermost first so inner scopes overwrite.
	for i := len(chain) - 1; i >= 0; i-- {
		env := chain[i]
		for _, name := range env.order {
			sym := env.symbols[name]
			if _, seen := dup.symbols[name]; !seen {
				dup.order = append(dup.order, name)
			}
			dup.symbols[name] = sym.clone(dup)
		}
	}
	return dup
}

// Declare adds sym to this scope, replacing any earlier binding of the same
// name here. Replacing a constant fails with a binding error.
func (e *Environment) Declare(sym *Symbol) error {
	prev := e.LookupLocal(sym.Name)
	if e.consts.Contains(sym.Name) {
		return diag.Binding(diag.ErrConstantRebinding, sym.Pos.Line, sym.Name,
			"cannot redeclare constant %q (declared at %s)", sym.Name, prev.Pos)
	}

	if prev == nil {
		e.order = append(e.order, sym.Name)
	}
	sym.Env = e
	e.symbols[sym.Name] = sym
	if sym.Constant {
		e.consts.Add(sym.Name)
	}
	return nil
}

// Assign gives the nearest visible binding of name a new value. When no
// scope binds name, it is declared in this one.
func (e *Environment) Assign(name string, v float64, pos lexer.Position) error {
	sym := e.resolve(name)
	if sym == nil {
		sym = &Symbol{Name: name, Pos: pos}
		if err := e.Declare(sym); err != nil {
			return err
		}
	}
	if !sym.CanAssign() {
		return diag.Binding(diag.ErrConstantRebinding, pos.Line, name,
			"cannot assign to constant %q (declared at %s)", name, sym.Pos)
	}
	sym.Bind(v)
	return nil
}

// Get returns the value bound to name. line locates the error.
func (e *Environment) Get(name string, line int) (float64, error) {
	sym := e.Lookup(name)
	if sym == nil {
		return 0, diag.Binding(diag.ErrUndefinedVariable, line, name,
			"undefined variable %q", name)
	}
	if !sym.Bound {
		return 0, diag.Binding(diag.ErrUninitialized, line, name,
			"variable %q is declared but has no value", name)
	}
	return sym.Value, nil
}

// Lookup finds name in this scope or an enclosing one and marks it used.
func (e *Environment) Lookup(name string) *Symbol {
	sym := e.resolve(name)
	if sym != nil {
		sym.MarkUsed()
	}
	return sym
}

// LookupLocal finds name in this scope only.
func (e *Environment) LookupLocal(name string) *Symbol {
	return e.symbols[name]
}

func (e *Environment) resolve(name string) *Symbol {
	for env := e; env != nil; env = env.Parent {
		if sym, ok := env.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// Has reports whether name is visible from e.
func (e *Environment) Has(name string) bool {
	return e.resolve(name) != nil
}

// IsConstant reports whether the nearest visible binding of name is
// constant.
func (e *Environment) IsConstant(name string) bool {
	sym := e.resolve(name)
	return sym != nil && sym.Constant
}

// IsGlobal reports whether e is the outermost scope.
func (e *Environment) IsGlobal() bool {
	return e.Kind == ScopeGlobal
}

// Len returns the number of bindings declared in this scope.
func (e *Environment) Len() int {
	return len(e.symbols)
}

// ConstCount returns the number of constants declared in this scope.
func (e *Environment) ConstCount() int {
	return e.consts.Size()
}

// LocalSymbols returns the bindings of this scope in declaration order.
func (e *Environment) LocalSymbols() []*Symbol {
	symbols := make([]*Symbol, 0, len(e.order))
	for _, name := range e.order {
		symbols = append(symbols, e.symbols[name])
	}
	return symbols
}

// Names returns every visible name, sorted.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for env := e; env != nil; env = env.Parent {
		for _, name := range env.order {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Snapshot returns the values of every visible bound name. Unbound
// declarations are omitted.
func (e *Environment) Snapshot() map[string]float64 {
	values := make(map[string]float64)
	for _, name := range e.Names() {
		if sym := e.resolve(name); sym.Bound {
			values[name] = sym.Value
		}
	}
	return values
}

// UnusedSymbols returns the bindings of this scope that were never read.
func (e *Environment) UnusedSymbols() []*Symbol {
	var unused []*Symbol
	for _, sym := range e.LocalSymbols() {
		if !sym.Used {
			unused = append(unused, sym)
		}
	}
	return unused
}

func (e *Environment) String() string {
	return fmt.Sprintf("%s scope (depth %d, %d symbols, %d constants)", e.Kind, e.Depth, len(e.symbols), e.ConstCount())
}

// DebugString lists e and its enclosing scopes, innermost first.
func (e *Environment) DebugString() string {
	var b strings.Builder
	indent := ""
	for env := e; env != nil; env = env.Parent {
		b.WriteString(indent + env.String() + "\n")
		for _, sym := range env.LocalSymbols() {
			b.WriteString(indent + "  " + sym.String() + "\n")
		}
		indent += "  "
	}
	return b.String()
}
