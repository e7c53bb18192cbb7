package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented outline of the program rooted at root:
//
//	scope
//	  let x = 3
//	  while (x > 0)
//	    scope
//	      x = (x - 1)
func Fprint(w io.Writer, root *Scope) error {
	p := &printer{w: w}
	return root.Accept(p)
}

// Sprint returns the outline produced by Fprint.
func Sprint(root *Scope) string {
	var b strings.Builder
	_ = Fprint(&b, root)
	return b.String()
}

type printer struct {
	w     io.Writer
	depth int
}

func (p *printer) line(format string, args ...interface{}) error {
	_, err := fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.depth), fmt.Sprintf(format, args...))
	return err
}

func (p *printer) nested(s *Scope) error {
	p.depth++
	defer func() { p.depth-- }()
	return s.Accept(p)
}

func (p *printer) VisitScope(s *Scope) error {
	if err := p.line("scope"); err != nil {
		return err
	}
	p.depth++
	defer func() { p.depth-- }()
	for _, child := range s.Children {
		if err := child.Accept(p); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) VisitVariable(s *Variable) error {
	keyword := ""
	switch {
	case s.Constant:
		keyword = "const "
	case s.Declared:
		keyword = "let "
	}
	if s.Initializer == nil {
		return p.line("%s%s", keyword, s.Name)
	}
	return p.line("%s%s = %s", keyword, s.Name, s.Initializer)
}

func (p *printer) VisitExpression(s *Expression) error {
	return p.line("expr %s", s.Expr)
}

func (p *printer) VisitIf(s *If) error {
	if err := p.line("if %s", s.Condition); err != nil {
		return err
	}
	if err := p.nested(s.Body); err != nil {
		return err
	}
	if s.ElseBody == nil {
		return nil
	}
	if err := p.line("else"); err != nil {
		return err
	}
	return p.nested(s.ElseBody)
}

func (p *printer) VisitWhile(s *While) error {
	if err := p.line("while %s", s.Condition); err != nil {
		return err
	}
	return p.nested(s.Body)
}
