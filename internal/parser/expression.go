package parser

import (
	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/evaluator"
	"github.com/hassan/tinyscript/internal/lexer"
	"github.com/hassan/tinyscript/internal/parser/ast"
)

// item is one element of the working slice: either a source token or a
// parenthesized group already reduced to a subtree.
type item struct {
	tok  lexer.Token
	tree *ast.Tree
}

func (it item) isOperator() bool {
	return it.tree == nil && (getPrecedence(it.tok.Type) != PrecNone || isPrefixOperator(it.tok.Type))
}

func (it item) is(tt lexer.TokenType) bool {
	return it.tree == nil && it.tok.Type == tt
}

// ParseExpression builds an expression tree from a token slice holding
// exactly one expression.
//
// Parenthesized groups are reduced first, innermost work happening in the
// recursive call. A group without identifiers is evaluated on the spot and
// replaced by a NUMBER token carrying its value; a group that references a
// variable is kept as a subtree. The remaining flat slice is split at the
// lowest-precedence binary operator, choosing the right-most one so that
// operators of equal precedence associate to the left.
func ParseExpression(tokens []lexer.Token) (*ast.Tree, error) {
	items := make([]item, len(tokens))
	for i, tok := range tokens {
		items[i] = item{tok: tok}
	}
	var anchor lexer.Token
	if len(tokens) > 0 {
		anchor = tokens[0]
	}
	return parseItems(items, anchor)
}

// parseItems parses items; anchor locates errors for an empty slice.
func parseItems(items []item, anchor lexer.Token) (*ast.Tree, error) {
	if len(items) == 0 {
		if anchor.Lexeme == "" {
			return nil, diag.Parse(diag.ErrEmptyExpression, anchor.Line(), "", "expected expression")
		}
		return nil, diag.Parse(diag.ErrEmptyExpression, anchor.Line(), anchor.Lexeme,
			"expected expression near %q", anchor.Lexeme)
	}

	items, err := reduceGroups(items)
	if err != nil {
		return nil, err
	}

	if k := splitIndex(items); k >= 0 {
		op := items[k].tok
		left, err := parseItems(items[:k], op)
		if err != nil {
			return nil, err
		}
		right, err := parseItems(items[k+1:], op)
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(op, left, right), nil
	}

	first := items[0]
	if first.tree == nil && isPrefixOperator(first.tok.Type) {
		operand, err := parseItems(items[1:], first.tok)
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(first.tok, operand), nil
	}

	if len(items) > 1 {
		extra := items[1].tok
		return nil, diag.Parse(diag.ErrUnexpectedToken, extra.Line(), extra.Lexeme,
			"unexpected %q after operand, expected operator", extra.Lexeme)
	}

	if first.tree != nil {
		return first.tree, nil
	}
	switch first.tok.Type {
	case lexer.TokenNumber, lexer.TokenIdentifier, lexer.TokenString:
		return ast.NewLeaf(first.tok), nil
	default:
		return nil, diag.Parse(diag.ErrUnexpectedToken, first.tok.Line(), first.tok.Lexeme,
			"unexpected %s %q in expression", first.tok.Type, first.tok.Lexeme)
	}
}

// reduceGroups replaces every top-level parenthesized group with either a
// folded NUMBER token or its subtree. It returns a new slice; items is
// never modified.
func reduceGroups(items []item) ([]item, error) {
	for {
		open := -1
		for i, it := range items {
			if it.is(lexer.TokenLeftParen) {
				open = i
				break
			}
			if it.is(lexer.TokenRightParen) {
				return nil, unmatched(it.tok)
			}
		}
		if open < 0 {
			return items, nil
		}

		closing, ok := matchGroup(items, open)
		if !ok {
			return nil, unmatched(items[open].tok)
		}

		paren := items[open].tok
		sub, err := parseItems(items[open+1:closing], paren)
		if err != nil {
			return nil, err
		}

		replacement := item{tok: paren, tree: sub}
		if sub.IsConstant() {
			v, err := evaluator.Evaluate(sub)
			if err != nil {
				return nil, err
			}
			replacement = item{tok: evaluator.NumberToken(v, paren)}
		}

		next := make([]item, 0, len(items)-(closing-open))
		next = append(next, items[:open]...)
		next = append(next, replacement)
		next = append(next, items[closing+1:]...)
		items = next
	}
}

// matchGroup returns the index of the ')' closing the '(' at open.
func matchGroup(items []item, open int) (int, bool) {
	depth := 0
	for i := open; i < len(items); i++ {
		switch {
		case items[i].is(lexer.TokenLeftParen):
			depth++
		case items[i].is(lexer.TokenRightParen):
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return -1, false
}

// splitIndex returns the position of the binary operator to split on, or
// -1 when the slice holds no binary operator. An operator at index 0, or
// one directly following another operator, is a prefix operator and never
// a split point. Every binary operator is left-associative, so among equal
// precedences the rightmost operator wins: 8 - 3 - 2 is (8 - 3) - 2.
func splitIndex(items []item) int {
	best, bestPrec := -1, PrecPrimary
	for i := 1; i < len(items); i++ {
		it := items[i]
		if it.tree != nil || items[i-1].isOperator() {
			continue
		}
		prec := getPrecedence(it.tok.Type)
		if prec == PrecNone {
			continue
		}
		if prec <= bestPrec {
			best, bestPrec = i, prec
		}
	}
	return best
}

func unmatched(tok lexer.Token) error {
	return diag.Parse(diag.ErrUnmatchedDelimiter, tok.Line(), tok.Lexeme,
		"unmatched %q", tok.Lexeme)
}
