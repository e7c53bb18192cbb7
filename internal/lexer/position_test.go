package lexer

import (
	"testing"
)

func TestPosition_String(t *testing.T) {
	tests := []struct {
		name     string
		pos      Position
		expected string
	}{
		{"with filename", Position{Filename: "prog.ts", Line: 42, Column: 15}, "prog.ts:42:15"},
		{"without filename", Position{Line: 3, Column: 1}, "3:1"},
		{"zero", Position{}, "0:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.pos.String(); result != tt.expected {
				t.Errorf("Position.String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSpan(t *testing.T) {
	start := Position{Line: 2, Column: 3, Offset: 10}
	end := Position{Line: 2, Column: 8, Offset: 15}
	span := Span{Start: start, End: end}

	if got := span.String(); got != "2:3-8" {
		t.Errorf("String() = %q, want %q", got, "2:3-8")
	}

	multi := Span{Start: start, End: Position{Line: 4, Column: 2, Offset: 30}}
	if got := multi.String(); got != "2:3-4:2" {
		t.Errorf("String() = %q, want %q", got, "2:3-4:2")
	}
}
