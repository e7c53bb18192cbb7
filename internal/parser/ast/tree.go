package ast

import (
	"strings"

	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/lexer"
)

// Tree is one node of an expression tree.
//
// Arity decides the shape:
//
//	0 children  leaf: a NUMBER literal (or an IDENTIFIER before binding)
//	1 child     unary: the token is a prefix '-', '+' or '!'
//	2 children  binary: Children[0] and Children[1] are the operands
//
// No other arity is valid.
type Tree struct {
	Token    lexer.Token
	Children []*Tree
}

// NewLeaf returns a childless tree for a literal or identifier token.
func NewLeaf(tok lexer.Token) *Tree {
	return &Tree{Token: tok}
}

// NewUnary returns a prefix operator node.
func NewUnary(op lexer.Token, operand *Tree) *Tree {
	return &Tree{Token: op, Children: []*Tree{operand}}
}

// NewBinary returns an infix operator node.
func NewBinary(op lexer.Token, left, right *Tree) *Tree {
	return &Tree{Token: op, Children: []*Tree{left, right}}
}

// New builds a node over children, rejecting arities above two. Passes
// that rebuild a node with rewritten children go through New.
func New(tok lexer.Token, children ...*Tree) (*Tree, error) {
	if len(children) > 2 {
		return nil, diag.Eval(diag.ErrInvalidArity, tok.Line(), tok.Lexeme,
			"operator %q cannot take %d operands", tok.Lexeme, len(children))
	}
	return &Tree{Token: tok, Children: children}, nil
}

// Arity returns the number of children.
func (t *Tree) Arity() int { return len(t.Children) }

// IsLeaf reports whether t has no children.
func (t *Tree) IsLeaf() bool { return len(t.Children) == 0 }

// Walk visits t and its descendants in pre-order. Returning false from fn
// skips the children of that node.
func (t *Tree) Walk(fn func(*Tree) bool) {
	if t == nil || !fn(t) {
		return
	}
	for _, c := range t.Children {
		c.Walk(fn)
	}
}

// IsConstant reports whether the tree references no identifiers, i.e.
// whether it can be evaluated without an environment.
func (t *Tree) IsConstant() bool {
	constant := true
	t.Walk(func(n *Tree) bool {
		if n.Token.Type == lexer.TokenIdentifier {
			constant = false
		}
		return constant
	})
	return constant
}

// String renders the tree fully parenthesized: "((3 * 2) + 5)".
func (t *Tree) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Tree) write(b *strings.Builder) {
	switch len(t.Children) {
	case 0:
		b.WriteString(t.Token.Lexeme)
	case 1:
		b.WriteString("(")
		b.WriteString(t.Token.Lexeme)
		t.Children[0].write(b)
		b.WriteString(")")
	case 2:
		b.WriteString("(")
		t.Children[0].write(b)
		b.WriteString(" " + t.Token.Lexeme + " ")
		t.Children[1].write(b)
		b.WriteString(")")
	default:
		b.WriteString("<invalid " + t.Token.Lexeme + ">")
	}
}
