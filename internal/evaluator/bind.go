package evaluator

import (
	"github.com/hassan/tinyscript/internal/lexer"
	"github.com/hassan/tinyscript/internal/parser/ast"
	"github.com/hassan/tinyscript/internal/symtab"
)

// Bind returns a copy of tree with every identifier leaf replaced by a
// NUMBER leaf holding the variable's current value. tree itself is never
// modified; a tree without identifiers is returned as is.
func Bind(tree *ast.Tree, env *symtab.Environment) (*ast.Tree, error) {
	if tree == nil || tree.IsConstant() {
		return tree, nil
	}

	if tree.IsLeaf() {
		if tree.Token.Type != lexer.TokenIdentifier {
			return tree, nil
		}
		v, err := env.Get(tree.Token.Lexeme, tree.Token.Line())
		if err != nil {
			return nil, err
		}
		return ast.NewLeaf(NumberToken(v, tree.Token)), nil
	}

	children := make([]*ast.Tree, len(tree.Children))
	for i, child := range tree.Children {
		c, err := Bind(child, env)
		if err != nil {
			return nil, err
		}
		children[i] = c
	}
	return ast.New(tree.Token, children...)
}

// EvaluateIn binds tree against env and evaluates the result.
func EvaluateIn(tree *ast.Tree, env *symtab.Environment) (float64, error) {
	bound, err := Bind(tree, env)
	if err != nil {
		return 0, err
	}
	return Evaluate(bound)
}
