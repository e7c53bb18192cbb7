// Package ast defines the two program representations built by the parser.
//
// An expression is held as a Tree: a binary tree of operator and literal
// tokens evaluated bottom-up. A program is a Scope: an ordered list of
// statements drawn from a closed set (Scope, Variable, Expression, If,
// While). Every node exclusively owns its children; no node is reachable
// from two parents.
package ast

import (
	"github.com/hassan/tinyscript/internal/lexer"
)

// Node is implemented by every statement node.
type Node interface {
	// Pos returns the position of the token that introduced the node.
	Pos() lexer.Position
}

// Stmt is the closed set of statement nodes. The unexported marker keeps
// other packages from adding members, so a Visitor covers every case.
type Stmt interface {
	Node
	Accept(v Visitor) error
	stmtNode()
}

// Visitor is implemented by every pass over the statement tree: the
// evaluator, the semantic checker and the printer.
type Visitor interface {
	VisitScope(s *Scope) error
	VisitVariable(s *Variable) error
	VisitExpression(s *Expression) error
	VisitIf(s *If) error
	VisitWhile(s *While) error
}

// ExpressionNode wraps an expression tree together with the token the
// expression started at, for diagnostics.
type ExpressionNode struct {
	Token lexer.Token
	Tree  *Tree
}

// Line returns the source line the expression started on.
func (e *ExpressionNode) Line() int { return e.Token.Position.Line }

func (e *ExpressionNode) String() string {
	if e == nil || e.Tree == nil {
		return "<nil>"
	}
	return e.Tree.String()
}
