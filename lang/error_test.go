package lang

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestError(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := ErrReadInput.Wrap(cause).With(slog.String("source", "stdin"))

	if got := err.Error(); got != "failed to read input: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}

	if !errors.Is(err, ErrReadInput) {
		t.Error("wrapped error does not match its sentinel")
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("wrapped error does not match its cause")
	}

	if errors.Is(err, ErrInvalidValueType) {
		t.Error("wrapped error matches an unrelated sentinel")
	}

	attrs := err.LogValue().Group()
	if len(attrs) != 3 || attrs[2].Key != "source" {
		t.Errorf("LogValue = %v", attrs)
	}

	if WrapError(err) != err {
		t.Error("WrapError rewrapped an *Error")
	}
}

func TestDiagnostic(t *testing.T) {
	tests := []struct {
		diag *Diagnostic
		want string
	}{
		{
			diag: &Diagnostic{Phase: PhaseLex, Line: 2, Message: "Unexpected character '@'."},
			want: "[line 2] lexical error: Unexpected character '@'.",
		},
		{
			diag: errorAt(PhaseParse, Token{Kind: Equal, Lexeme: "=", Line: 1}, "Expect variable name."),
			want: "[line 1] syntax error at '=': Expect variable name.",
		},
		{
			diag: errorAt(PhaseParse, Token{Kind: EOF, Line: 9}, "Expect ';' after value."),
			want: "[line 9] syntax error at end: Expect ';' after value.",
		},
		{
			diag: &Diagnostic{Phase: PhaseRuntime, Message: "Cannot write output."},
			want: "runtime error: Cannot write output.",
		},
	}

	for _, tt := range tests {
		if got := tt.diag.Error(); got != tt.want {
			t.Errorf("got  %s\nwant %s", got, tt.want)
		}
	}
}

func TestDiagnostics(t *testing.T) {
	ds := Diagnostics{
		{Phase: PhaseLex, Line: 1, Message: "a"},
		{Phase: PhaseParse, Line: 2, Message: "b"},
		{Phase: PhaseParse, Line: 3, Message: "c"},
	}

	if ds.Count(PhaseParse) != 2 || ds.Count(PhaseRuntime) != 0 {
		t.Errorf("Count = %d, %d", ds.Count(PhaseParse), ds.Count(PhaseRuntime))
	}

	want := "[line 1] lexical error: a\n[line 2] syntax error: b\n[line 3] syntax error: c"
	if ds.Error() != want {
		t.Errorf("Error() = %q", ds.Error())
	}

	err := ds.Err()
	if !errors.Is(err, ErrLex) || !errors.Is(err, ErrParse) || errors.Is(err, ErrRuntime) {
		t.Error("phase sentinels do not match")
	}

	var d *Diagnostic
	if !errors.As(err, &d) || d.Line != 1 {
		t.Errorf("errors.As = %v", d)
	}

	if Diagnostics(nil).Err() != nil {
		t.Error("empty Diagnostics.Err() != nil")
	}
}
