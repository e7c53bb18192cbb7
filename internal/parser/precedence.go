package parser

import (
	"github.com/hassan/tinyscript/internal/lexer"
)

// Precedence represents operator binding strength. A higher number binds
// tighter, so the expression parser splits on the lowest level present.
//
// Levels, lowest to highest:
//
//	||
//	&&
//	== !=
//	< <= > >=
//	+ -
//	* /
//	unary - + !
type Precedence int

const (
	PrecNone       Precedence = iota // not a binary operator
	PrecOr                           // ||
	PrecAnd                          // &&
	PrecEquality                     // ==, !=
	PrecComparison                   // <, <=, >, >=
	PrecTerm                         // +, -
	PrecFactor                       // *, /
	PrecUnary                        // !, -, +
	PrecPrimary                      // literals, identifiers, folded groups
)

// getPrecedence returns the binary precedence of a token type, or PrecNone
// for tokens that are not binary operators.
func getPrecedence(tokenType lexer.TokenType) Precedence {
	switch tokenType {
	case lexer.TokenOr:
		return PrecOr

	case lexer.TokenAnd:
		return PrecAnd

	case lexer.TokenEqualEqual, lexer.TokenBangEqual:
		return PrecEquality

	case lexer.TokenLess,
		lexer.TokenLessEqual,
		lexer.TokenGreater,
		lexer.TokenGreaterEqual:
		return PrecComparison

	case lexer.TokenPlus, lexer.TokenMinus:
		return PrecTerm

	case lexer.TokenStar, lexer.TokenSlash:
		return PrecFactor

	default:
		return PrecNone
	}
}

// isPrefixOperator reports whether the token type may appear as a unary
// prefix operator.
func isPrefixOperator(tokenType lexer.TokenType) bool {
	switch tokenType {
	case lexer.TokenMinus, lexer.TokenPlus, lexer.TokenBang:
		return true
	default:
		return false
	}
}
