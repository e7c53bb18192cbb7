package diag

import (
	"errors"
	"fmt"
	"testing"
)

func TestDiagnostic_Error(t *testing.T) {
	tests := []struct {
		name string
		d    *Diagnostic
		want string
	}{
		{
			name: "with line",
			d:    Parse(ErrMissingTerminator, 3, "x", "expected ';' after %s", "expression"),
			want: "parse error: line 3: expected ';' after expression",
		},
		{
			name: "without line",
			d:    Eval(ErrInvalidArity, 0, "", "node has %d children", 3),
			want: "eval error: node has 3 children",
		},
		{
			name: "warning",
			d:    Warning(KindSemantic, ErrUnusedVariable, 2, "y", "%q is never read", "y"),
			want: "semantic warning: line 2: \"y\" is never read",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		d    *Diagnostic
		kind Kind
	}{
		{Lex(ErrUnexpectedCharacter, 1, "@", "bad"), KindLex},
		{Parse(ErrUnexpectedToken, 1, "}", "bad"), KindParse},
		{Eval(ErrIterationLimit, 1, "while", "bad"), KindEval},
		{Binding(ErrConstantRebinding, 1, "k", "bad"), KindBinding},
		{Semantic(ErrNonNumericOperand, 1, "\"s\"", "bad"), KindSemantic},
	}
	for _, tt := range tests {
		if tt.d.Kind != tt.kind {
			t.Errorf("%v: kind = %v, want %v", tt.d, tt.d.Kind, tt.kind)
		}
		if !tt.d.IsError() {
			t.Errorf("%v: not an error", tt.d)
		}
	}

	w := Warning(KindBinding, ErrConstWithoutValue, 4, "k", "bad")
	if w.IsError() || w.Severity != SeverityWarning || w.Kind != KindBinding {
		t.Errorf("Warning() = %+v", w)
	}
}

func TestUnwrapAndAs(t *testing.T) {
	d := Binding(ErrConstantRebinding, 5, "k", "cannot assign to constant %q", "k")
	wrapped := fmt.Errorf("run: %w", d)

	if !errors.Is(wrapped, ErrConstantRebinding) {
		t.Error("errors.Is does not reach the sentinel")
	}
	if errors.Is(wrapped, ErrUndefinedVariable) {
		t.Error("errors.Is matched the wrong sentinel")
	}

	got, ok := As(wrapped)
	if !ok || got != d {
		t.Errorf("As() = %v, %v", got, ok)
	}
	if _, ok := As(errors.New("plain")); ok {
		t.Error("As() found a diagnostic in a plain error")
	}
}

func TestStrings(t *testing.T) {
	if SeverityError.String() != "error" || SeverityWarning.String() != "warning" || Severity(9).String() != "unknown" {
		t.Error("Severity.String")
	}
	kinds := map[Kind]string{
		KindLex: "lex", KindParse: "parse", KindEval: "eval",
		KindBinding: "binding", KindSemantic: "semantic", Kind(42): "unknown",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
