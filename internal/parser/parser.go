// Package parser turns a token sequence into a program tree.
//
// Statements are parsed by recursive descent over one lexical level at a
// time. A nested block is located by depth counting and handed to a fresh
// Parser over that sub-slice, whose result becomes a child Scope.
// Expressions are delegated to ParseExpression, which folds constant
// parenthesized groups while parsing.
//
// The first parse error aborts the whole parse: there is no recovery and
// no partial tree.
package parser

import (
	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/lexer"
	"github.com/hassan/tinyscript/internal/parser/ast"
)

// Parser parses the statements of a single block.
type Parser struct {
	tokens  []lexer.Token
	current int
}

// New creates a parser for a whole program.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a whole program into its root Scope.
func Parse(tokens []lexer.Token) (*ast.Scope, error) {
	return New(tokens).Parse()
}

// Parse consumes every token and returns the program root.
func (p *Parser) Parse() (*ast.Scope, error) {
	root := ast.NewRootScope()
	if err := p.parseInto(root); err != nil {
		return nil, err
	}
	return root, nil
}

func (p *Parser) parseInto(scope *ast.Scope) error {
	for !p.isAtEnd() {
		stmt, err := p.parseStmt()
		if err != nil {
			return err
		}
		if stmt != nil {
			scope.Children = append(scope.Children, stmt)
		}
	}
	return nil
}

// parseStmt dispatches on the next token. It returns a nil statement for
// an empty ';'.
func (p *Parser) parseStmt() (ast.Stmt, error) {
	tok := p.peek()

	switch tok.Type {
	case lexer.TokenSemicolon:
		p.advance()
		return nil, nil

	case lexer.TokenLeftBrace:
		return p.parseBlock()

	case lexer.TokenLet, lexer.TokenConst:
		return p.parseDeclaration()

	case lexer.TokenIf:
		return p.parseIf()

	case lexer.TokenWhile:
		return p.parseWhile()

	case lexer.TokenIdentifier:
		if p.peekNext().Type == lexer.TokenAssign {
			return p.parseAssignment()
		}
		return p.parseExprStmt()

	case lexer.TokenNumber, lexer.TokenString,
		lexer.TokenPlus, lexer.TokenMinus, lexer.TokenBang,
		lexer.TokenLeftParen:
		return p.parseExprStmt()

	case lexer.TokenRightBrace:
		return nil, diag.Parse(diag.ErrUnmatchedDelimiter, tok.Line(), tok.Lexeme,
			"unexpected '}' without matching '{'")

	case lexer.TokenElse:
		return nil, diag.Parse(diag.ErrUnexpectedToken, tok.Line(), tok.Lexeme,
			"'else' without a preceding if block")

	case lexer.TokenFor, lexer.TokenFunction, lexer.TokenReturn:
		return nil, diag.Parse(diag.ErrUnexpectedToken, tok.Line(), tok.Lexeme,
			"%q statements are not supported", tok.Lexeme)

	default:
		return nil, diag.Parse(diag.ErrUnexpectedToken, tok.Line(), tok.Lexeme,
			"unrecognized statement start %s %q", tok.Type, tok.Lexeme)
	}
}

// parseBlock parses "{ ... }" with a nested parser over the interior.
func (p *Parser) parseBlock() (*ast.Scope, error) {
	open, err := p.consume(lexer.TokenLeftBrace, "expected '{'")
	if err != nil {
		return nil, err
	}

	end, ok := p.matching(lexer.TokenLeftBrace, lexer.TokenRightBrace)
	if !ok {
		return nil, diag.Parse(diag.ErrUnmatchedDelimiter, open.Line(), open.Lexeme,
			"unmatched '{': missing '}'")
	}

	inner := &Parser{tokens: p.tokens[p.current:end]}
	scope := &ast.Scope{Brace: open, Children: make([]ast.Stmt, 0)}
	if err := inner.parseInto(scope); err != nil {
		return nil, err
	}

	p.current = end + 1
	return scope, nil
}

// parseDeclaration parses "let x;", "let x = e;" and the const forms.
func (p *Parser) parseDeclaration() (ast.Stmt, error) {
	keyword := p.advance()

	name, err := p.consume(lexer.TokenIdentifier, "expected identifier after '"+keyword.Lexeme+"'")
	if err != nil {
		return nil, err
	}

	stmt := &ast.Variable{
		Keyword:  keyword,
		Name:     name.Lexeme,
		NameTok:  name,
		Constant: keyword.Type == lexer.TokenConst,
		Declared: true,
	}

	switch {
	case p.match(lexer.TokenSemicolon):
		return stmt, nil
	case p.match(lexer.TokenAssign):
		stmt.Initializer, err = p.parseTerminated(p.previous())
		if err != nil {
			return nil, err
		}
		return stmt, nil
	case p.isAtEnd():
		return nil, diag.Parse(diag.ErrMissingTerminator, name.Line(), name.Lexeme,
			"expected ';' after declaration of %q", name.Lexeme)
	default:
		tok := p.peek()
		return nil, diag.Parse(diag.ErrUnexpectedToken, tok.Line(), tok.Lexeme,
			"expected '=' or ';' after %q, got %q", name.Lexeme, tok.Lexeme)
	}
}

// parseAssignment parses "x = e;".
func (p *Parser) parseAssignment() (ast.Stmt, error) {
	name := p.advance()
	assign := p.advance()

	init, err := p.parseTerminated(assign)
	if err != nil {
		return nil, err
	}
	return &ast.Variable{
		Keyword:     name,
		Name:        name.Lexeme,
		NameTok:     name,
		Initializer: init,
	}, nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	expr, err := p.parseTerminated(p.peek())
	if err != nil {
		return nil, err
	}
	return &ast.Expression{Expr: expr}, nil
}

// parseIf parses "if (c) { ... }" with an optional "else { ... }".
func (p *Parser) parseIf() (ast.Stmt, error) {
	ifTok := p.advance()

	cond, err := p.parseCondition(ifTok)
	if err != nil {
		return nil, err
	}
	if !p.check(lexer.TokenLeftBrace) {
		return nil, p.expected("'{' after if condition", ifTok)
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	stmt := &ast.If{IfTok: ifTok, Condition: cond, Body: body}
	if p.match(lexer.TokenElse) {
		elseTok := p.previous()
		if !p.check(lexer.TokenLeftBrace) {
			return nil, p.expected("'{' after else", elseTok)
		}
		if stmt.ElseBody, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// parseWhile parses "while (c) { ... }".
func (p *Parser) parseWhile() (ast.Stmt, error) {
	whileTok := p.advance()

	cond, err := p.parseCondition(whileTok)
	if err != nil {
		return nil, err
	}
	if !p.check(lexer.TokenLeftBrace) {
		return nil, p.expected("'{' after while condition", whileTok)
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{WhileTok: whileTok, Condition: cond, Body: body}, nil
}

// parseCondition parses the parenthesized condition following kw.
func (p *Parser) parseCondition(kw lexer.Token) (*ast.ExpressionNode, error) {
	if !p.check(lexer.TokenLeftParen) {
		return nil, p.expected("'(' after '"+kw.Lexeme+"'", kw)
	}
	open := p.advance()

	end, ok := p.matching(lexer.TokenLeftParen, lexer.TokenRightParen)
	if !ok {
		return nil, unmatched(open)
	}

	cond, err := p.expression(p.tokens[p.current:end], open)
	if err != nil {
		return nil, err
	}
	p.current = end + 1
	return cond, nil
}

// parseTerminated parses the expression running up to the next ';' and
// consumes the ';'. after is the token preceding the expression.
func (p *Parser) parseTerminated(after lexer.Token) (*ast.ExpressionNode, error) {
	start := p.current
	end := start
	for end < len(p.tokens) && p.tokens[end].Type != lexer.TokenSemicolon {
		if tt := p.tokens[end].Type; tt == lexer.TokenLeftBrace || tt == lexer.TokenRightBrace {
			return nil, p.missingSemicolon(start, end)
		}
		end++
	}
	if end == len(p.tokens) {
		return nil, p.missingSemicolon(start, end)
	}

	expr, err := p.expression(p.tokens[start:end], after)
	if err != nil {
		return nil, err
	}
	p.current = end + 1
	return expr, nil
}

func (p *Parser) missingSemicolon(start, end int) error {
	last := p.previous()
	if end > start {
		last = p.tokens[end-1]
	}
	return diag.Parse(diag.ErrMissingTerminator, last.Line(), last.Lexeme,
		"expected ';' after %q", last.Lexeme)
}

// expression parses tokens as one expression; after locates the error
// for an empty slice.
func (p *Parser) expression(tokens []lexer.Token, after lexer.Token) (*ast.ExpressionNode, error) {
	if len(tokens) == 0 {
		return nil, diag.Parse(diag.ErrEmptyExpression, after.Line(), after.Lexeme,
			"expected expression after %q", after.Lexeme)
	}
	tree, err := ParseExpression(tokens)
	if err != nil {
		return nil, err
	}
	return &ast.ExpressionNode{Token: tokens[0], Tree: tree}, nil
}

// matching returns the index of the close token balancing the open token
// just consumed. Scanning starts at the current position with depth 1.
func (p *Parser) matching(open, close lexer.TokenType) (int, bool) {
	depth := 1
	for i := p.current; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return -1, false
}

func (p *Parser) expected(what string, near lexer.Token) error {
	if p.isAtEnd() {
		return diag.Parse(diag.ErrUnexpectedToken, near.Line(), near.Lexeme,
			"expected %s, got end of input", what)
	}
	tok := p.peek()
	return diag.Parse(diag.ErrUnexpectedToken, tok.Line(), tok.Lexeme,
		"expected %s, got %q", what, tok.Lexeme)
}

// Token navigation

func (p *Parser) peek() lexer.Token {
	if p.isAtEnd() {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) peekNext() lexer.Token {
	if p.current+1 >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.current+1]
}

func (p *Parser) previous() lexer.Token {
	if p.current == 0 {
		return lexer.Token{}
	}
	return p.tokens[p.current-1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) check(tokenType lexer.TokenType) bool {
	return !p.isAtEnd() && p.tokens[p.current].Type == tokenType
}

func (p *Parser) match(tokenTypes ...lexer.TokenType) bool {
	for _, tt := range tokenTypes {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(tokenType lexer.TokenType, message string) (lexer.Token, error) {
	if p.check(tokenType) {
		return p.advance(), nil
	}
	near := p.previous()
	if !p.isAtEnd() {
		near = p.peek()
	}
	return lexer.Token{}, diag.Parse(diag.ErrUnexpectedToken, near.Line(), near.Lexeme, "%s", message)
}

func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens)
}
