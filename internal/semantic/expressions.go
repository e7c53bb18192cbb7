package semantic

import (
	"github.com/hassan/tinyscript/internal/diag"
	"github.com/hassan/tinyscript/internal/lexer"
	"github.com/hassan/tinyscript/internal/parser/ast"
)

// checkExpr checks every leaf of an expression: identifiers must resolve
// to an assigned binding and literals must be numeric.
func (a *Analyzer) checkExpr(expr *ast.ExpressionNode) {
	if expr == nil || expr.Tree == nil {
		return
	}
	expr.Tree.Walk(func(n *ast.Tree) bool {
		if n.IsLeaf() {
			a.checkLeaf(n.Token)
		}
		return true
	})
}

func (a *Analyzer) checkLeaf(tok lexer.Token) {
	switch tok.Type {
	case lexer.TokenIdentifier:
		sym := a.currentScope.Lookup(tok.Lexeme)
		switch {
		case sym == nil:
			a.warn(diag.ErrUndefinedVariable, tok, "%q is not declared in any enclosing scope", tok.Lexeme)
		case !sym.Bound:
			a.warn(diag.ErrUninitialized, tok, "%q may be read before it is assigned", tok.Lexeme)
		}

	case lexer.TokenString:
		a.diags.Report(diag.Semantic(diag.ErrNonNumericOperand, tok.Line(), tok.Lexeme,
			"string literal %s cannot be used as a number", tok.Lexeme))
	}
}
