package optimizer

import (
	"github.com/hassan/tinyscript/internal/evaluator"
	"github.com/hassan/tinyscript/internal/lexer"
	"github.com/hassan/tinyscript/internal/parser/ast"
)

// ConstantFoldingPass replaces operator nodes whose operands are all
// literals with the literal result.
//
// The parser already folds parenthesized groups; this pass catches the
// rest, such as the 3 * 4 in "x + 3 * 4", and conditions that become
// constant once their parts are folded:
//
//	Before:  let y = x + 3 * 4;
//	After:   let y = x + 12;
//
// A subtree that fails to evaluate (a string operand) is left alone so the
// error surfaces when the program runs.
type ConstantFoldingPass struct{}

func (c *ConstantFoldingPass) Name() string {
	return "ConstantFolding"
}

func (c *ConstantFoldingPass) Run(root *ast.Scope, stats *OptimizationStats) error {
	c.foldScope(root, stats)
	return nil
}

func (c *ConstantFoldingPass) foldScope(s *ast.Scope, stats *OptimizationStats) {
	for _, stmt := range s.Children {
		switch n := stmt.(type) {
		case *ast.Scope:
			c.foldScope(n, stats)
		case *ast.Variable:
			c.foldNode(n.Initializer, stats)
		case *ast.Expression:
			c.foldNode(n.Expr, stats)
		case *ast.If:
			c.foldNode(n.Condition, stats)
			c.foldScope(n.Body, stats)
			if n.ElseBody != nil {
				c.foldScope(n.ElseBody, stats)
			}
		case *ast.While:
			c.foldNode(n.Condition, stats)
			c.foldScope(n.Body, stats)
		}
	}
}

func (c *ConstantFoldingPass) foldNode(expr *ast.ExpressionNode, stats *OptimizationStats) {
	if expr == nil || expr.Tree == nil {
		return
	}
	expr.Tree = c.fold(expr.Tree, stats)
}

// fold returns t with every foldable subtree replaced. Untouched subtrees
// are shared with t; changed paths are rebuilt.
func (c *ConstantFoldingPass) fold(t *ast.Tree, stats *OptimizationStats) *ast.Tree {
	if t.IsLeaf() {
		return t
	}

	children := make([]*ast.Tree, len(t.Children))
	changed := false
	allLiteral := true
	for i, child := range t.Children {
		children[i] = c.fold(child, stats)
		changed = changed || children[i] != child
		allLiteral = allLiteral && isNumberLeaf(children[i])
	}

	node := t
	if changed {
		rebuilt, err := ast.New(t.Token, children...)
		if err != nil {
			return t
		}
		node = rebuilt
	}
	if !allLiteral {
		return node
	}

	v, err := evaluator.Evaluate(node)
	if err != nil {
		return node
	}
	stats.ConstantsFolded++
	return ast.NewLeaf(evaluator.NumberToken(v, t.Token))
}

func isNumberLeaf(t *ast.Tree) bool {
	return t.IsLeaf() && t.Token.Type == lexer.TokenNumber
}

// constantValue reports the value of an expression that is a single
// NUMBER literal.
func constantValue(expr *ast.ExpressionNode) (float64, bool) {
	if expr == nil || expr.Tree == nil || !isNumberLeaf(expr.Tree) {
		return 0, false
	}
	v, err := evaluator.Evaluate(expr.Tree)
	return v, err == nil
}
