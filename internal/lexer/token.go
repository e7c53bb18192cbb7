package lexer

import "strings"

// TokenType represents the type of a token.
//
// The set is closed: single-character punctuation and operators, the
// two-character comparison and logical operators, literal kinds, keywords,
// and two markers (TokenScope, TokenError).
type TokenType int

const (
	// TokenEOF is returned by Lexer.NextToken once the input is exhausted.
	// Tokenize never places it in the token sequence: the end of the
	// sequence is the end of the input.
	TokenEOF TokenType = iota

	// Single-character tokens
	TokenLeftParen  // (
	TokenRightParen // )
	TokenLeftBrace  // {
	TokenRightBrace // }
	TokenSemicolon  // ;
	TokenComma      // ,
	TokenDot        // .
	TokenMinus      // -
	TokenPlus       // +
	TokenSlash      // /
	TokenStar       // *
	TokenAssign     // =
	TokenBang       // !
	TokenGreater    // >
	TokenLess       // <

	// Two-character tokens
	TokenEqualEqual   // ==
	TokenBangEqual    // !=
	TokenGreaterEqual // >=
	TokenLessEqual    // <=
	TokenAnd          // &&
	TokenOr           // ||

	// Literals
	TokenNumber
	TokenString
	TokenIdentifier

	// Keywords
	TokenIf
	TokenElse
	TokenWhile
	TokenFor
	TokenFunction
	TokenReturn
	TokenLet
	TokenConst

	// TokenScope is a synthetic marker for scope nodes; the lexer never
	// produces it.
	TokenScope

	// TokenError marks a malformed multi-character sequence such as a lone
	// '&' or '|'. The offending text is kept in Lexeme.
	TokenError
)

// Token represents a single lexical token. Tokens are values and are never
// modified once produced.
type Token struct {
	// Type is the token type.
	Type TokenType

	// Lexeme is the exact source text consumed for this token, quotes
	// included for strings. Synthesized tokens (folded constants) carry the
	// formatted value instead.
	Lexeme string

	// Literal is the decoded value: float64 for TokenNumber, the raw
	// contents between the quotes for TokenString, nil otherwise.
	Literal interface{}

	// Position is where this token starts in the source.
	Position Position

	// Length is the length of the token in bytes.
	Length int
}

// Line returns the 1-based source line of the token.
func (t Token) Line() int { return t.Position.Line }

// Number returns the numeric literal of a TokenNumber.
func (t Token) Number() (float64, bool) {
	if t.Type != TokenNumber {
		return 0, false
	}
	v, ok := t.Literal.(float64)
	return v, ok
}

// String returns a human-readable representation of the token.
// Example: "IDENTIFIER(foo) at main.ts:4:2"
func (t Token) String() string {
	return t.Type.String() + "(" + t.Lexeme + ") at " + t.Position.String()
}

// Span returns the source span covered by this token.
func (t Token) Span() Span {
	return Span{
		Start: t.Position,
		End: Position{
			Filename: t.Position.Filename,
			Line:     t.Position.Line,
			Column:   t.Position.Column + runeCount(t.Lexeme),
			Offset:   t.Position.Offset + t.Length,
		},
	}
}

func runeCount(s string) int {
	count := 0
	for range s {
		count++
	}
	return count
}

// String returns the string representation of a token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenLeftParen:
		return "LPAREN"
	case TokenRightParen:
		return "RPAREN"
	case TokenLeftBrace:
		return "LBRACE"
	case TokenRightBrace:
		return "RBRACE"
	case TokenSemicolon:
		return "SEMICOLON"
	case TokenComma:
		return "COMMA"
	case TokenDot:
		return "DOT"
	case TokenMinus:
		return "MINUS"
	case TokenPlus:
		return "PLUS"
	case TokenSlash:
		return "SLASH"
	case TokenStar:
		return "STAR"
	case TokenAssign:
		return "ASSIGN"
	case TokenBang:
		return "BANG"
	case TokenGreater:
		return "GREATER"
	case TokenLess:
		return "LESS"
	case TokenEqualEqual:
		return "EQUALEQUAL"
	case TokenBangEqual:
		return "BANGEQUAL"
	case TokenGreaterEqual:
		return "GREATEREQUAL"
	case TokenLessEqual:
		return "LESSEQUAL"
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenNumber:
		return "NUMBER"
	case TokenString:
		return "STRING"
	case TokenIdentifier:
		return "IDENTIFIER"
	case TokenIf:
		return "IF"
	case TokenElse:
		return "ELSE"
	case TokenWhile:
		return "WHILE"
	case TokenFor:
		return "FOR"
	case TokenFunction:
		return "FUNCTION"
	case TokenReturn:
		return "RETURN"
	case TokenLet:
		return "LET"
	case TokenConst:
		return "CONST"
	case TokenScope:
		return "SCOPE"
	case TokenError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// keywords maps keyword spellings to their token types. Matching is exact.
var keywords = map[string]TokenType{
	"if":       TokenIf,
	"else":     TokenElse,
	"while":    TokenWhile,
	"for":      TokenFor,
	"function": TokenFunction,
	"return":   TokenReturn,
	"let":      TokenLet,
	"const":    TokenConst,
}

// LookupKeyword returns the keyword token type for identifier, or
// TokenIdentifier if it is not a keyword.
func LookupKeyword(identifier string) TokenType {
	if tokenType, ok := keywords[identifier]; ok {
		return tokenType
	}
	return TokenIdentifier
}

// IsKeywordFold reports whether identifier spells a keyword when case is
// ignored but is not that keyword exactly ("While", "LET").
func IsKeywordFold(identifier string) bool {
	if _, ok := keywords[identifier]; ok {
		return false
	}
	_, ok := keywords[strings.ToLower(identifier)]
	return ok
}

// IsKeyword returns true if the token is a keyword.
func (tt TokenType) IsKeyword() bool {
	return tt >= TokenIf && tt <= TokenConst
}

// IsOperator returns true for arithmetic, comparison and logical operators.
func (tt TokenType) IsOperator() bool {
	switch tt {
	case TokenMinus, TokenPlus, TokenSlash, TokenStar, TokenBang,
		TokenGreater, TokenLess, TokenEqualEqual, TokenBangEqual,
		TokenGreaterEqual, TokenLessEqual, TokenAnd, TokenOr:
		return true
	}
	return false
}

// IsLiteral returns true if the token is a literal value.
func (tt TokenType) IsLiteral() bool {
	return tt == TokenNumber || tt == TokenString
}
