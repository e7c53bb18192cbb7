package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer writes diagnostics for humans.
type Printer struct {
	w        io.Writer
	filename string

	errColor  *color.Color
	warnColor *color.Color
	locColor  *color.Color
}

// NewPrinter returns a Printer writing to w. Locations are prefixed with
// filename when it is not empty.
func NewPrinter(w io.Writer, filename string, useColor bool) *Printer {
	p := &Printer{
		w:         w,
		filename:  filename,
		errColor:  color.New(color.FgRed, color.Bold),
		warnColor: color.New(color.FgYellow, color.Bold),
		locColor:  color.New(color.Bold),
	}
	if !useColor {
		p.errColor.DisableColor()
		p.warnColor.DisableColor()
		p.locColor.DisableColor()
	}
	return p
}

// Print writes one diagnostic on its own line:
//
//	file:3: parse error: expected ';' after expression
func (p *Printer) Print(d *Diagnostic) {
	loc := p.filename
	if d.Line > 0 {
		if loc != "" {
			loc += ":"
		}
		loc += fmt.Sprint(d.Line)
	}
	if loc != "" {
		p.locColor.Fprint(p.w, loc+": ")
	}

	label := d.Kind.String() + " " + d.Severity.String()
	if d.IsError() {
		p.errColor.Fprint(p.w, label)
	} else {
		p.warnColor.Fprint(p.w, label)
	}
	fmt.Fprintf(p.w, ": %s\n", d.Message)
}

// PrintAll prints every diagnostic in ds.
func (p *Printer) PrintAll(ds []*Diagnostic) {
	for _, d := range ds {
		p.Print(d)
	}
}
