package ast

import (
	"github.com/hassan/tinyscript/internal/lexer"
)

// Scope is a block of statements executed in their own lexical scope. The
// root of every program is a Scope.
type Scope struct {
	// Brace is the opening '{', or a synthetic TokenScope token for the
	// program root.
	Brace    lexer.Token
	Children []Stmt
}

// NewRootScope returns an empty program root.
func NewRootScope() *Scope {
	return &Scope{
		Brace:    lexer.Token{Type: lexer.TokenScope, Position: lexer.Position{Line: 1, Column: 1}},
		Children: make([]Stmt, 0),
	}
}

func (s *Scope) Pos() lexer.Position { return s.Brace.Position }
func (s *Scope) stmtNode()           {}
func (s *Scope) Accept(v Visitor) error {
	return v.VisitScope(s)
}

// Len returns the number of direct children.
func (s *Scope) Len() int { return len(s.Children) }

// Variable declares or assigns a name.
//
//	let x = 1;    Declared, not Constant
//	const y = 2;  Declared and Constant
//	let z;        Declared, no Initializer
//	x = 3;        assignment: not Declared
type Variable struct {
	// Keyword is the 'let' or 'const' token; for assignments it is the
	// identifier token.
	Keyword lexer.Token

	Name     string
	NameTok  lexer.Token
	Constant bool
	Declared bool

	// Initializer is nil for "let x;".
	Initializer *ExpressionNode
}

func (s *Variable) Pos() lexer.Position { return s.Keyword.Position }
func (s *Variable) stmtNode()           {}
func (s *Variable) Accept(v Visitor) error {
	return v.VisitVariable(s)
}

// Expression is an expression evaluated for its value: "1 + 2;".
type Expression struct {
	Expr *ExpressionNode
}

func (s *Expression) Pos() lexer.Position { return s.Expr.Token.Position }
func (s *Expression) stmtNode()           {}
func (s *Expression) Accept(v Visitor) error {
	return v.VisitExpression(s)
}

// If runs Body when Condition is nonzero, otherwise ElseBody when present.
type If struct {
	IfTok     lexer.Token
	Condition *ExpressionNode
	Body      *Scope
	ElseBody  *Scope // nil without an else clause
}

func (s *If) Pos() lexer.Position { return s.IfTok.Position }
func (s *If) stmtNode()           {}
func (s *If) Accept(v Visitor) error {
	return v.VisitIf(s)
}

// While runs Body for as long as Condition is nonzero.
type While struct {
	WhileTok  lexer.Token
	Condition *ExpressionNode
	Body      *Scope
}

func (s *While) Pos() lexer.Position { return s.WhileTok.Position }
func (s *While) stmtNode()           {}
func (s *While) Accept(v Visitor) error {
	return v.VisitWhile(s)
}
