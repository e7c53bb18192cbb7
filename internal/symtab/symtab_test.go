package symtab

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/lexer"
)

func at(line int) lexer.Position {
	return lexer.Position{Line: line, Column: 1}
}

func declare(t *testing.T, env *Environment, name string, v float64, constant bool) {
	t.Helper()
	sym := &Symbol{Name: name, Constant: constant, Pos: at(1)}
	sym.Bind(v)
	if err := env.Declare(sym); err != nil {
		t.Fatalf("Declare(%s) error: %v", name, err)
	}
}

// Test Symbol

func TestSymbol_String(t *testing.T) {
	tests := []struct {
		sym  *Symbol
		want string
	}{
		{&Symbol{Name: "x", Value: 3, Bound: true, Pos: lexer.Position{Line: 1, Column: 5}}, "let x = 3 at 1:5"},
		{&Symbol{Name: "k", Value: 2.5, Bound: true, Constant: true, Pos: lexer.Position{Line: 2, Column: 1}}, "const k = 2.5 at 2:1"},
		{&Symbol{Name: "y", Pos: lexer.Position{Filename: "a.ts", Line: 3, Column: 2}}, "let y (unbound) at a.ts:3:2"},
	}
	for _, tt := range tests {
		if got := tt.sym.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSymbol_CanAssign(t *testing.T) {
	if !(&Symbol{}).CanAssign() {
		t.Error("variable should be assignable")
	}
	if (&Symbol{Constant: true}).CanAssign() {
		t.Error("constant should not be assignable")
	}
}

func TestSymbol_IsGlobal(t *testing.T) {
	global := New()
	block := global.Child(ScopeBlock)
	declare(t, global, "g", 1, false)
	declare(t, block, "l", 1, false)

	if !global.LookupLocal("g").IsGlobal() {
		t.Error("g should be global")
	}
	if block.LookupLocal("l").IsGlobal() {
		t.Error("l should not be global")
	}
}

// Test Environment

func TestScopeKind_String(t *testing.T) {
	tests := map[ScopeKind]string{
		ScopeGlobal:   "global",
		ScopeBlock:    "block",
		ScopeBranch:   "branch",
		ScopeLoop:     "loop",
		ScopeKind(99): "unknown",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("ScopeKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}

func TestEnvironment_DeclareAndGet(t *testing.T) {
	env := New()
	declare(t, env, "x", 42, false)

	v, err := env.Get("x", 1)
	if err != nil {
		t.Fatalf("Get(x) error: %v", err)
	}
	if v != 42 {
		t.Errorf("Get(x) = %v, want 42", v)
	}
	if !env.LookupLocal("x").Used {
		t.Error("Get should mark the symbol used")
	}
}

func TestEnvironment_GetErrors(t *testing.T) {
	env := New()
	if err := env.Declare(&Symbol{Name: "y", Pos: at(1)}); err != nil {
		t.Fatal(err)
	}

	_, err := env.Get("missing", 4)
	if !errors.Is(err, diag.ErrUndefinedVariable) {
		t.Errorf("Get(missing) error = %v, want undefined variable", err)
	}
	if d, _ := diag.As(err); d == nil || d.Kind != diag.KindBinding || d.Line != 4 {
		t.Errorf("Get(missing) diagnostic = %v, want binding error on line 4", err)
	}

	_, err = env.Get("y", 5)
	if !errors.Is(err, diag.ErrUninitialized) {
		t.Errorf("Get(y) error = %v, want uninitialized", err)
	}
}

func TestEnvironment_RedeclareVariable(t *testing.T) {
	env := New()
	declare(t, env, "x", 1, false)
	declare(t, env, "x", 2, false)

	if v, _ := env.Get("x", 1); v != 2 {
		t.Errorf("x = %v, want 2", v)
	}
	if env.Len() != 1 {
		t.Errorf("Len() = %d, want 1", env.Len())
	}
}

func TestEnvironment_ConstantProtection(t *testing.T) {
	env := New()
	declare(t, env, "k", 10, true)

	if !env.IsConstant("k") {
		t.Fatal("k should be constant")
	}
	if env.ConstCount() != 1 {
		t.Errorf("ConstCount() = %d, want 1", env.ConstCount())
	}

	err := env.Assign("k", 11, at(2))
	if !errors.Is(err, diag.ErrConstantRebinding) {
		t.Errorf("Assign(k) error = %v, want constant rebinding", err)
	}

	err = env.Declare(&Symbol{Name: "k", Pos: at(3)})
	if !errors.Is(err, diag.ErrConstantRebinding) {
		t.Errorf("redeclare k error = %v, want constant rebinding", err)
	}

	if v, _ := env.Get("k", 1); v != 10 {
		t.Errorf("k = %v after rejected writes, want 10", v)
	}

	// Assigning through a child scope is rejected as well.
	child := env.Child(ScopeBlock)
	if err := child.Assign("k", 12, at(4)); !errors.Is(err, diag.ErrConstantRebinding) {
		t.Errorf("child Assign(k) error = %v, want constant rebinding", err)
	}

	// A child may shadow the constant with its own declaration.
	declare(t, child, "k", 5, false)
	if child.IsConstant("k") {
		t.Error("shadowing variable should not be constant")
	}
	if v, _ := env.Get("k", 1); v != 10 {
		t.Errorf("outer k = %v, want 10", v)
	}
}

func TestEnvironment_ChainScoping(t *testing.T) {
	global := New()
	declare(t, global, "x", 1, false)

	block := global.Child(ScopeBlock)
	if block.Parent != global || block.Depth != 1 {
		t.Fatalf("child = %v, want depth 1 under global", block)
	}

	// Assignment reaches the outer binding.
	if err := block.Assign("x", 2, at(2)); err != nil {
		t.Fatal(err)
	}
	// A new name is declared locally.
	if err := block.Assign("tmp", 9, at(3)); err != nil {
		t.Fatal(err)
	}
	declare(t, block, "y", 3, false)

	if v, _ := global.Get("x", 1); v != 2 {
		t.Errorf("outer x = %v, want 2", v)
	}
	if global.Has("y") || global.Has("tmp") {
		t.Error("block declarations leaked into the outer scope")
	}
	if !block.Has("x") || block.LookupLocal("x") != nil {
		t.Error("x should be visible from the block but not local to it")
	}
}

func TestEnvironment_DupIsolation(t *testing.T) {
	global := New()
	declare(t, global, "x", 1, false)
	declare(t, global, "k", 7, true)
	block := global.Child(ScopeBlock)
	declare(t, block, "x", 100, false)

	dup := block.Dup(ScopeLoop)
	if dup.Parent != nil {
		t.Error("Dup should not link to a parent")
	}
	if dup.Depth != 2 {
		t.Errorf("Dup depth = %d, want 2", dup.Depth)
	}
	if v, _ := dup.Get("x", 1); v != 100 {
		t.Errorf("dup x = %v, want the shadowing value 100", v)
	}
	if !dup.IsConstant("k") {
		t.Error("constants should stay constant in the copy")
	}

	if err := dup.Assign("x", 5, at(2)); err != nil {
		t.Fatal(err)
	}
	declare(t, dup, "z", 1, false)

	if v, _ := block.Get("x", 1); v != 100 {
		t.Errorf("block x = %v after writing the copy, want 100", v)
	}
	if v, _ := global.Get("x", 1); v != 1 {
		t.Errorf("global x = %v after writing the copy, want 1", v)
	}
	if block.Has("z") {
		t.Error("copy declaration leaked into the source")
	}
}

func TestEnvironment_DupShadowedConstant(t *testing.T) {
	global := New()
	declare(t, global, "k", 1, true)
	block := global.Child(ScopeBlock)
	declare(t, block, "k", 2, false)

	dup := block.Dup(ScopeBlock)
	if dup.IsConstant("k") {
		t.Error("inner variable shadowing a constant should not be constant in the copy")
	}
	if err := dup.Assign("k", 3, at(1)); err != nil {
		t.Errorf("Assign(k) on copy error: %v", err)
	}
}

func TestEnvironment_DupDeclareShadowsConstant(t *testing.T) {
	global := New()
	declare(t, global, "k", 1, true)

	dup := global.Dup(ScopeBlock)
	if !dup.IsConstant("k") {
		t.Fatal("copied constant lost its flag")
	}
	if dup.ConstCount() != 0 {
		t.Errorf("ConstCount() = %d, want 0: the copy declares no constants", dup.ConstCount())
	}
	if err := dup.Assign("k", 2, at(2)); !errors.Is(err, diag.ErrConstantRebinding) {
		t.Errorf("Assign(k) on copy error = %v, want constant rebinding", err)
	}

	declare(t, dup, "k", 3, false)
	if dup.IsConstant("k") {
		t.Error("k should be a variable after shadowing")
	}
	if v, _ := global.Get("k", 1); v != 1 {
		t.Errorf("global k = %v, want 1", v)
	}
}

func TestEnvironment_NamesAndSnapshot(t *testing.T) {
	global := New()
	declare(t, global, "b", 2, false)
	declare(t, global, "a", 1, false)
	if err := global.Declare(&Symbol{Name: "u", Pos: at(1)}); err != nil {
		t.Fatal(err)
	}
	block := global.Child(ScopeBlock)
	declare(t, block, "a", 10, false)
	declare(t, block, "c", 3, false)

	if got, want := block.Names(), []string{"a", "b", "c", "u"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	want := map[string]float64{"a": 10, "b": 2, "c": 3}
	if got := block.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}
}

func TestEnvironment_LocalSymbolsOrder(t *testing.T) {
	env := New()
	for _, name := range []string{"z", "a", "m"} {
		declare(t, env, name, 0, false)
	}
	var names []string
	for _, sym := range env.LocalSymbols() {
		names = append(names, sym.Name)
	}
	if want := []string{"z", "a", "m"}; !reflect.DeepEqual(names, want) {
		t.Errorf("LocalSymbols() order = %v, want %v", names, want)
	}
}

func TestEnvironment_UnusedSymbols(t *testing.T) {
	env := New()
	declare(t, env, "used", 1, false)
	declare(t, env, "idle", 2, false)
	env.Lookup("used")

	unused := env.UnusedSymbols()
	if len(unused) != 1 || unused[0].Name != "idle" {
		t.Errorf("UnusedSymbols() = %v, want [idle]", unused)
	}
}

func TestEnvironment_DebugString(t *testing.T) {
	global := New()
	declare(t, global, "x", 1, false)
	block := global.Child(ScopeBlock)
	declare(t, block, "y", 2, true)

	out := block.DebugString()
	for _, want := range []string{
		"block scope (depth 1, 1 symbols, 1 constants)",
		"  const y = 2 at 1:1",
		"  global scope (depth 0, 1 symbols, 0 constants)",
		"    let x = 1 at 1:1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DebugString() missing %q:\n%s", want, out)
		}
	}
}
