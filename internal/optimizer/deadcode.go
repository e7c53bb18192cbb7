package optimizer

import (
	"github.com/hassan/tinyscript/internal/evaluator"
	"github.com/hassan/tinyscript/internal/parser/ast"
)

// DeadBranchPass removes code that can never run and unwraps branches
// that always run.
//
//	if (1) { a; } else { b; }   becomes   { a; }
//	if (0) { a; }               is removed
//	while (0) { a; }            is removed
//	{ }                         is removed
//
// A taken branch keeps its braces, so declarations inside it stay local.
// A while loop with a constant nonzero condition is left for the runtime
// iteration limit.
type DeadBranchPass struct{}

func (d *DeadBranchPass) Name() string {
	return "DeadBranchElimination"
}

func (d *DeadBranchPass) Run(root *ast.Scope, stats *OptimizationStats) error {
	d.sweep(root, stats)
	return nil
}

func (d *DeadBranchPass) sweep(s *ast.Scope, stats *OptimizationStats) {
	kept := make([]ast.Stmt, 0, len(s.Children))
	for _, stmt := range s.Children {
		if replacement := d.rewrite(stmt, stats); replacement != nil {
			kept = append(kept, replacement)
		} else {
			stats.StatementsRemoved++
		}
	}
	s.Children = kept
}

// rewrite returns the statement to keep in place of stmt, or nil to drop
// it.
func (d *DeadBranchPass) rewrite(stmt ast.Stmt, stats *OptimizationStats) ast.Stmt {
	switch n := stmt.(type) {
	case *ast.Scope:
		d.sweep(n, stats)
		if n.Len() == 0 {
			return nil
		}
		return n

	case *ast.If:
		d.sweep(n.Body, stats)
		if n.ElseBody != nil {
			d.sweep(n.ElseBody, stats)
		}
		v, ok := constantValue(n.Condition)
		if !ok {
			return n
		}
		stats.BranchesResolved++
		taken := n.ElseBody
		if evaluator.Truthy(v) {
			taken = n.Body
		}
		if taken == nil || taken.Len() == 0 {
			return nil
		}
		return taken

	case *ast.While:
		d.sweep(n.Body, stats)
		if v, ok := constantValue(n.Condition); ok && !evaluator.Truthy(v) {
			stats.BranchesResolved++
			return nil
		}
		return n

	default:
		return stmt
	}
}
