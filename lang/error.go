package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadInput        = NewError("failed to read input")
	ErrInvalidValueType = NewError("invalid value type")

	// ErrLex, ErrParse and ErrRuntime match any [Diagnostic] of the
	// corresponding phase through errors.Is.
	ErrLex     = NewError("lexical error")
	ErrParse   = NewError("syntax error")
	ErrRuntime = NewError("runtime error")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same message and no cause,
// so errors derived from a sentinel with Wrap or With still match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.err != nil {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Phase identifies the pipeline stage that reported a [Diagnostic].
type Phase int

const (
	PhaseLex Phase = iota
	PhaseParse
	PhaseRuntime
)

// String returns the lower-case name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseLex:
		return "lexical"

	case PhaseParse:
		return "syntax"

	case PhaseRuntime:
		return "runtime"

	default:
		return "unknown"
	}
}

func (p Phase) sentinel() *Error {
	switch p {
	case PhaseLex:
		return ErrLex

	case PhaseParse:
		return ErrParse

	default:
		return ErrRuntime
	}
}

// Diagnostic is a recoverable lexical, syntax or runtime error tied to a
// source line.
type Diagnostic struct {
	Where   string // " at 'lexeme'", " at end", or empty
	Message string
	Phase   Phase
	Line    int
}

// Error renders the diagnostic as one line:
//
//	[line 3] syntax error at '=': Expect variable name.
func (d *Diagnostic) Error() string {
	var sb strings.Builder

	if d.Line > 0 {
		sb.WriteString("[line ")
		sb.WriteString(strconv.Itoa(d.Line))
		sb.WriteString("] ")
	}

	sb.WriteString(d.Phase.String())
	sb.WriteString(" error")
	sb.WriteString(d.Where)
	sb.WriteString(": ")
	sb.WriteString(d.Message)

	return sb.String()
}

// Unwrap returns the sentinel of the diagnostic's phase.
func (d *Diagnostic) Unwrap() error { return d.Phase.sentinel() }

// LogValue implements slog.LogValuer.
func (d *Diagnostic) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("phase", d.Phase.String()),
		slog.Int("line", d.Line),
		slog.String("message", d.Message),
	}

	if d.Where != "" {
		attrs = append(attrs, slog.String("where", strings.TrimSpace(d.Where)))
	}

	return slog.GroupValue(attrs...)
}

// errorAt builds a diagnostic located at tok.
func errorAt(phase Phase, tok Token, msg string) *Diagnostic {
	d := &Diagnostic{Phase: phase, Line: tok.Line, Message: msg}

	if tok.Kind == EOF {
		d.Where = " at end"
	} else if tok.Lexeme != "" {
		d.Where = " at '" + tok.Lexeme + "'"
	}

	return d
}

// Diagnostics is an ordered collection of diagnostics.
type Diagnostics []*Diagnostic

// Error joins the diagnostics with newlines.
func (ds Diagnostics) Error() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.Error()
	}

	return strings.Join(lines, "\n")
}

// Unwrap exposes each diagnostic to errors.Is and errors.As.
func (ds Diagnostics) Unwrap() []error {
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}

	return errs
}

// Count returns the number of diagnostics reported in phase p.
func (ds Diagnostics) Count(p Phase) int {
	n := 0

	for _, d := range ds {
		if d.Phase == p {
			n++
		}
	}

	return n
}

// Err returns ds as an error, or nil if it is empty.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}

	return ds
}
