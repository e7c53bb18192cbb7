package lexer

import (
	"strconv"
	"unicode/utf8"

	"github.com/hassan/tinyscript/internal/diag"
)

// Lexer scans source text left to right with two characters of lookahead.
//
// Anomalies never stop the scan. Unexpected characters and unterminated
// strings are reported and skipped, a lone '&' or '|' becomes a TokenError
// token, and keywords written in the wrong case produce a warning.
type Lexer struct {
	source   string
	filename string

	// start is the byte offset of the token being scanned.
	start int

	// current is the byte offset being examined.
	current int

	// line is the current 1-based line number.
	line int

	// lineStart is the byte offset where the current line started.
	lineStart int

	// tokLine and tokLineStart snapshot line tracking at the start of the
	// token, so that multi-line strings report their opening line.
	tokLine      int
	tokLineStart int

	diags *diag.List
}

// New creates a Lexer for source. filename is only used in positions.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		line:     1,
		diags:    diag.NewList(),
	}
}

// Tokenize scans source completely and returns its tokens together with
// every diagnostic reported along the way.
func Tokenize(source string) ([]Token, *diag.List) {
	l := New(source, "")
	return l.Tokenize(), l.Diagnostics()
}

// Diagnostics returns the diagnostics reported so far.
func (l *Lexer) Diagnostics() *diag.List { return l.diags }

// Tokenize scans the remaining input. The result holds no EOF token.
func (l *Lexer) Tokenize() []Token {
	tokens := make([]Token, 0, len(l.source)/2)
	for {
		tok, err := l.NextToken()
		if tok.Type == TokenEOF {
			if err == nil {
				return tokens
			}
			// Unexpected character or unterminated string: already
			// reported, keep scanning.
			continue
		}
		tokens = append(tokens, tok)
	}
}

// NextToken returns the next token from the source, or a TokenEOF token at
// the end of input.
//
// When the text at the current position cannot form a token, NextToken
// reports the problem, returns it as the error and returns a zero (EOF
// typed) token. The scan position has already moved past the offending
// text, so the next call continues normally. A lone '&' or '|' is returned
// as a TokenError token together with its error.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	l.start = l.current
	l.tokLine = l.line
	l.tokLineStart = l.lineStart

	if l.isAtEnd() {
		return l.makeToken(TokenEOF, ""), nil
	}

	ch := l.advance()

	if isLetter(ch) {
		return l.scanIdentifier(), nil
	}
	if isDigit(ch) {
		return l.scanNumber(), nil
	}

	switch ch {
	case '(':
		return l.makeToken(TokenLeftParen, "("), nil
	case ')':
		return l.makeToken(TokenRightParen, ")"), nil
	case '{':
		return l.makeToken(TokenLeftBrace, "{"), nil
	case '}':
		return l.makeToken(TokenRightBrace, "}"), nil
	case ';':
		return l.makeToken(TokenSemicolon, ";"), nil
	case ',':
		return l.makeToken(TokenComma, ","), nil
	case '.':
		return l.makeToken(TokenDot, "."), nil
	case '-':
		return l.makeToken(TokenMinus, "-"), nil
	case '+':
		return l.makeToken(TokenPlus, "+"), nil
	case '*':
		return l.makeToken(TokenStar, "*"), nil
	case '/':
		// Comments were consumed by skipWhitespace.
		return l.makeToken(TokenSlash, "/"), nil

	case '=':
		if l.match('=') {
			return l.makeToken(TokenEqualEqual, "=="), nil
		}
		return l.makeToken(TokenAssign, "="), nil
	case '!':
		if l.match('=') {
			return l.makeToken(TokenBangEqual, "!="), nil
		}
		return l.makeToken(TokenBang, "!"), nil
	case '>':
		if l.match('=') {
			return l.makeToken(TokenGreaterEqual, ">="), nil
		}
		return l.makeToken(TokenGreater, ">"), nil
	case '<':
		if l.match('=') {
			return l.makeToken(TokenLessEqual, "<="), nil
		}
		return l.makeToken(TokenLess, "<"), nil

	case '&':
		if l.match('&') {
			return l.makeToken(TokenAnd, "&&"), nil
		}
		return l.malformed("&", "&&")
	case '|':
		if l.match('|') {
			return l.makeToken(TokenOr, "||"), nil
		}
		return l.malformed("|", "||")

	case '"':
		return l.scanString()

	default:
		d := diag.Lex(diag.ErrUnexpectedCharacter, l.tokLine, string(ch),
			"unexpected character %q", ch)
		l.diags.Report(d)
		return Token{}, d
	}
}

// malformed reports a single '&' or '|' and returns it as a TokenError.
func (l *Lexer) malformed(text, want string) (Token, error) {
	tok := l.makeToken(TokenError, text)
	d := diag.Lex(diag.ErrMalformedOperator, l.tokLine, text,
		"malformed operator %q, expected %q", text, want)
	l.diags.Report(d)
	return tok, d
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch, size := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += size
	return ch
}

// peek returns the current character without consuming it, 0 at the end.
func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.source[l.current:])
	return ch
}

// peekNext returns the character after the current one, 0 if there is none.
func (l *Lexer) peekNext() rune {
	if l.isAtEnd() {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.current:])
	if l.current+size >= len(l.source) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.source[l.current+size:])
	return ch
}

// match consumes the current character if it equals expected.
func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() || l.peek() != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) newline() {
	l.line++
	l.lineStart = l.current
}

// skipWhitespace discards blanks and "//" comments. A comment runs up to,
// not including, the newline, so the newline still bumps the line count.
func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peek() {
		case ' ', '\r', '\t':
			l.advance()
		case '\n':
			l.advance()
			l.newline()
		case '/':
			if l.peekNext() != '/' {
				return
			}
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// scanIdentifier scans [A-Za-z_][A-Za-z_0-9]* and classifies keywords.
func (l *Lexer) scanIdentifier() Token {
	for isLetter(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}

	text := l.source[l.start:l.current]
	tokenType := LookupKeyword(text)
	if tokenType == TokenIdentifier && IsKeywordFold(text) {
		l.diags.Report(diag.Warning(diag.KindLex, diag.ErrKeywordCase, l.tokLine, text,
			"identifier %q differs from a keyword only in case", text))
	}
	return l.makeToken(tokenType, text)
}

// scanNumber scans [0-9]+(\.[0-9]+)?. A '.' that is not followed by a digit
// is left for the next token.
func (l *Lexer) scanNumber() Token {
	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	text := l.source[l.start:l.current]
	tok := l.makeToken(TokenNumber, text)
	// The text is digits with an optional fraction; ParseFloat cannot fail
	// except on overflow, where it still returns ±Inf.
	value, _ := strconv.ParseFloat(text, 64)
	tok.Literal = value
	return tok
}

// scanString scans a double-quoted string. Escapes are not interpreted:
// the literal is the raw text between the quotes. Strings may span lines.
func (l *Lexer) scanString() (Token, error) {
	for !l.isAtEnd() && l.peek() != '"' {
		l.advance()
		if l.source[l.current-1] == '\n' {
			l.newline()
		}
	}

	if l.isAtEnd() {
		d := diag.Lex(diag.ErrUnterminatedString, l.tokLine, l.source[l.start:l.current],
			"unterminated string")
		l.diags.Report(d)
		return Token{}, d
	}

	l.advance() // closing quote

	tok := l.makeToken(TokenString, l.source[l.start:l.current])
	tok.Literal = l.source[l.start+1 : l.current-1]
	return tok, nil
}

func (l *Lexer) makeToken(tokenType TokenType, lexeme string) Token {
	return Token{
		Type:     tokenType,
		Lexeme:   lexeme,
		Position: l.tokenPosition(),
		Length:   l.current - l.start,
	}
}

func (l *Lexer) tokenPosition() Position {
	return Position{
		Filename: l.filename,
		Line:     l.tokLine,
		Column:   l.start - l.tokLineStart + 1,
		Offset:   l.start,
	}
}

func isLetter(ch rune) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
