// Package symtab implements the Environment: the runtime mapping from
// variable names to values, organized as nested scopes.
//
// Two scoping strategies are supported. Child links a new scope to its
// parent, so inner blocks can update outer variables while their own
// declarations disappear when the block ends. Dup flattens every visible
// binding into an independent copy, so nothing written inside the block
// is seen outside it.
package symtab

import (
	"fmt"
	"strconv"

	"github.com/hassan/tinyscript/internal/lexer"
)

// Symbol is one named binding.
type Symbol struct {
	Name string

	// Value is meaningful only when Bound is set.
	Value float64
	Bound bool

	// Constant symbols cannot be assigned or redeclared in their scope.
	Constant bool

	// Pos is where the binding was declared.
	Pos lexer.Position

	// Env is the environment that owns the binding.
	Env *Environment

	// Used is set once the binding has been read.
	Used bool
}

// String formats the symbol as "const x = 3 at 1:7".
func (s *Symbol) String() string {
	kind := "let"
	if s.Constant {
		kind = "const"
	}
	value := "(unbound)"
	if s.Bound {
		value = "= " + strconv.FormatFloat(s.Value, 'g', -1, 64)
	}
	return fmt.Sprintf("%s %s %s at %s", kind, s.Name, value, s.Pos)
}

// CanAssign reports whether the binding may be given a new value.
func (s *Symbol) CanAssign() bool {
	return !s.Constant
}

// Bind sets the value of the binding.
func (s *Symbol) Bind(v float64) {
	s.Value = v
	s.Bound = true
}

// MarkUsed marks the symbol as read.
func (s *Symbol) MarkUsed() {
	s.Used = true
}

// IsGlobal reports whether the symbol lives in the program's outermost
// scope.
func (s *Symbol) IsGlobal() bool {
	return s.Env != nil && s.Env.IsGlobal()
}

func (s *Symbol) clone(env *Environment) *Symbol {
	c := *s
	c.Env = env
	return &c
}
