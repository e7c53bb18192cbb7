// Package lexer turns tinyscript source text into an ordered sequence of
// tokens. It tracks line numbers for diagnostics, skips whitespace and line
// comments, and reports malformed input without stopping the scan.
package lexer

import "strconv"

// Position represents a location in the source code.
type Position struct {
	// Filename is the name of the source file, empty for inline source.
	Filename string

	// Line is the 1-based line number. Zero means "no position".
	Line int

	// Column is the 1-based column, counted in bytes from the line start.
	Column int

	// Offset is the 0-based byte offset from the start of the source.
	Offset int
}

// String formats the position as "file:line:column", or "line:column"
// when there is no filename.
func (p Position) String() string {
	s := strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
	if p.Filename == "" {
		return s
	}
	return p.Filename + ":" + s
}

// Span is a half-open source range [Start, End).
type Span struct {
	Start Position
	End   Position
}

// String formats the span; single-line spans are shortened to
// "file:line:col1-col2".
func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return s.Start.String() + "-" + strconv.Itoa(s.End.Column)
	}
	return s.Start.String() + "-" + strconv.Itoa(s.End.Line) + ":" + strconv.Itoa(s.End.Column)
}
