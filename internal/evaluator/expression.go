package evaluator

import (
	"strconv"

	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/lexer"
	"github.com/hassan/tinyscript/internal/parser/ast"
)

// Evaluate reduces a constant expression tree to a number.
//
// Children are reduced before their parent's operator is applied. The
// function has no environment: an identifier leaf is an invalid literal,
// so callers bind variables first (see Bind). Arithmetic follows IEEE-754,
// so dividing by zero yields ±Inf or NaN rather than an error. Comparison
// and logical operators yield 1 for true and 0 for false, and any nonzero
// operand counts as true.
func Evaluate(tree *ast.Tree) (float64, error) {
	if tree == nil {
		return 0, diag.Eval(diag.ErrEmptyExpression, 0, "", "empty expression")
	}

	switch len(tree.Children) {
	case 0:
		return evaluateLeaf(tree.Token)
	case 1:
		return evaluateUnary(tree)
	case 2:
		return evaluateBinary(tree)
	default:
		return 0, diag.Eval(diag.ErrInvalidArity, tree.Token.Line(), tree.Token.Lexeme,
			"operator %q has %d operands", tree.Token.Lexeme, len(tree.Children))
	}
}

func evaluateLeaf(tok lexer.Token) (float64, error) {
	if tok.Type != lexer.TokenNumber {
		return 0, diag.Eval(diag.ErrInvalidLiteral, tok.Line(), tok.Lexeme,
			"%s %q is not a number", tok.Type, tok.Lexeme)
	}
	if v, ok := tok.Number(); ok {
		return v, nil
	}
	v, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return 0, diag.Eval(diag.ErrInvalidLiteral, tok.Line(), tok.Lexeme,
			"malformed number %q", tok.Lexeme)
	}
	return v, nil
}

func evaluateUnary(tree *ast.Tree) (float64, error) {
	switch tree.Token.Type {
	case lexer.TokenMinus, lexer.TokenPlus, lexer.TokenBang:
	default:
		return 0, invalidOperator(tree.Token, "unary")
	}

	v, err := Evaluate(tree.Children[0])
	if err != nil {
		return 0, err
	}

	switch tree.Token.Type {
	case lexer.TokenMinus:
		return -v, nil
	case lexer.TokenBang:
		return boolean(!Truthy(v)), nil
	default:
		return v, nil
	}
}

func evaluateBinary(tree *ast.Tree) (float64, error) {
	if !isBinaryOperator(tree.Token.Type) {
		return 0, invalidOperator(tree.Token, "binary")
	}

	left, err := Evaluate(tree.Children[0])
	if err != nil {
		return 0, err
	}
	right, err := Evaluate(tree.Children[1])
	if err != nil {
		return 0, err
	}

	switch tree.Token.Type {
	case lexer.TokenPlus:
		return left + right, nil
	case lexer.TokenMinus:
		return left - right, nil
	case lexer.TokenStar:
		return left * right, nil
	case lexer.TokenSlash:
		return left / right, nil
	case lexer.TokenEqualEqual:
		return boolean(left == right), nil
	case lexer.TokenBangEqual:
		return boolean(left != right), nil
	case lexer.TokenLess:
		return boolean(left < right), nil
	case lexer.TokenLessEqual:
		return boolean(left <= right), nil
	case lexer.TokenGreater:
		return boolean(left > right), nil
	case lexer.TokenGreaterEqual:
		return boolean(left >= right), nil
	case lexer.TokenAnd:
		return boolean(Truthy(left) && Truthy(right)), nil
	default: // lexer.TokenOr
		return boolean(Truthy(left) || Truthy(right)), nil
	}
}

func isBinaryOperator(tt lexer.TokenType) bool {
	switch tt {
	case lexer.TokenPlus, lexer.TokenMinus, lexer.TokenStar, lexer.TokenSlash,
		lexer.TokenEqualEqual, lexer.TokenBangEqual,
		lexer.TokenLess, lexer.TokenLessEqual,
		lexer.TokenGreater, lexer.TokenGreaterEqual,
		lexer.TokenAnd, lexer.TokenOr:
		return true
	}
	return false
}

func invalidOperator(tok lexer.Token, form string) error {
	return diag.Eval(diag.ErrInvalidOperator, tok.Line(), tok.Lexeme,
		"%q is not a valid %s operator", tok.Lexeme, form)
}

// Truthy applies the truthiness convention: nonzero is true. NaN is
// nonzero and therefore true.
func Truthy(v float64) bool { return v != 0 }

func boolean(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// NumberToken synthesizes a NUMBER token carrying v at the position of at.
// Folded constants and bound variables are represented this way.
func NumberToken(v float64, at lexer.Token) lexer.Token {
	return lexer.Token{
		Type:     lexer.TokenNumber,
		Lexeme:   FormatNumber(v),
		Literal:  v,
		Position: at.Position,
		Length:   at.Length,
	}
}

// FormatNumber prints v in the shortest form that reads back exactly.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
