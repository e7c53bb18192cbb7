// Package diag defines the structured diagnostics shared by every phase of
// the interpreter: lexical anomalies, parse failures, evaluation failures and
// binding violations.
//
// A Diagnostic is also an error, so phases that abort simply return one.
// Phases that continue past a problem (the tokenizer) report into a List.
package diag

import (
	"errors"
	"fmt"
	"strconv"
)

// Severity says whether a diagnostic stops the phase that produced it.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Kind identifies the phase a diagnostic belongs to.
type Kind int

const (
	KindLex Kind = iota
	KindParse
	KindEval
	KindBinding
	KindSemantic
)

func (k Kind) String() string {
	switch k {
	case KindLex:
		return "lex"
	case KindParse:
		return "parse"
	case KindEval:
		return "eval"
	case KindBinding:
		return "binding"
	case KindSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Sentinel causes. Every Diagnostic unwraps to one of these so callers can
// branch with errors.Is without parsing messages.
var (
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrUnterminatedString  = errors.New("unterminated string")
	ErrMalformedOperator   = errors.New("malformed operator")
	ErrKeywordCase         = errors.New("keyword case mismatch")

	ErrEmptyExpression    = errors.New("empty expression")
	ErrUnmatchedDelimiter = errors.New("unmatched delimiter")
	ErrMissingTerminator  = errors.New("missing terminator")
	ErrUnexpectedToken    = errors.New("unexpected token")

	ErrInvalidLiteral  = errors.New("invalid literal")
	ErrInvalidOperator = errors.New("invalid operator")
	ErrInvalidArity    = errors.New("invalid arity")
	ErrIterationLimit  = errors.New("iteration limit exceeded")

	ErrUndefinedVariable = errors.New("undefined variable")
	ErrUninitialized     = errors.New("uninitialized variable")
	ErrConstantRebinding = errors.New("constant rebinding")
	ErrConstWithoutValue = errors.New("constant without initializer")
	ErrUnusedVariable    = errors.New("unused variable")
	ErrNonNumericOperand = errors.New("non-numeric operand")
)

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Severity Severity
	Kind     Kind

	// Line is the 1-based source line, 0 when unknown.
	Line int

	// Lexeme is the offending source text, if any.
	Lexeme string

	Message string

	// Err is the sentinel cause returned by Unwrap.
	Err error
}

// Error formats the diagnostic as "<kind> error: line N: message".
func (d *Diagnostic) Error() string {
	s := d.Kind.String() + " " + d.Severity.String()
	if d.Line > 0 {
		s += ": line " + strconv.Itoa(d.Line)
	}
	return s + ": " + d.Message
}

func (d *Diagnostic) Unwrap() error { return d.Err }

// IsError reports whether the diagnostic is fatal.
func (d *Diagnostic) IsError() bool { return d.Severity == SeverityError }

func newError(kind Kind, cause error, line int, lexeme, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Line:     line,
		Lexeme:   lexeme,
		Message:  fmt.Sprintf(format, args...),
		Err:      cause,
	}
}

// Lex builds a lexical error.
func Lex(cause error, line int, lexeme, format string, args ...interface{}) *Diagnostic {
	return newError(KindLex, cause, line, lexeme, format, args...)
}

// Parse builds a parse error.
func Parse(cause error, line int, lexeme, format string, args ...interface{}) *Diagnostic {
	return newError(KindParse, cause, line, lexeme, format, args...)
}

// Eval builds an evaluation error.
func Eval(cause error, line int, lexeme, format string, args ...interface{}) *Diagnostic {
	return newError(KindEval, cause, line, lexeme, format, args...)
}

// Binding builds a binding error.
func Binding(cause error, line int, lexeme, format string, args ...interface{}) *Diagnostic {
	return newError(KindBinding, cause, line, lexeme, format, args...)
}

// Semantic builds a static-check error.
func Semantic(cause error, line int, lexeme, format string, args ...interface{}) *Diagnostic {
	return newError(KindSemantic, cause, line, lexeme, format, args...)
}

// Warning builds a non-fatal diagnostic of the given kind.
func Warning(kind Kind, cause error, line int, lexeme, format string, args ...interface{}) *Diagnostic {
	d := newError(kind, cause, line, lexeme, format, args...)
	d.Severity = SeverityWarning
	return d
}

// As extracts the Diagnostic from err, if there is one.
func As(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
