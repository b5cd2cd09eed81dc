package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/ardnew/wz/lang"
)

// session is the interpreter shared by every line entered at the prompt.
type session struct {
	in   *lang.Interpreter
	out  *bytes.Buffer
	opts []lang.Option
}

// result is the outcome of one submitted line.
type result struct {
	output   string // text written by print statements
	value    lang.Value
	hasValue bool // the line was a bare expression
	diags    lang.Diagnostics
}

func newSession(opts ...lang.Option) *session {
	s := &session{out: new(bytes.Buffer), opts: opts}
	s.reset()

	return s
}

// reset discards all bindings.
func (s *session) reset() {
	s.out.Reset()
	s.in = lang.New(append(s.opts,
		lang.WithOutput(s.out),
		lang.WithErrors(io.Discard),
	)...)
}

func (s *session) env() *lang.Environment { return s.in.Env() }

// eval runs one line. A missing final semicolon is supplied, and a line that
// is a single non-assignment expression is evaluated for its value.
func (s *session) eval(ctx context.Context, line string) result {
	src := strings.TrimSpace(line)
	if !strings.HasSuffix(src, ";") && !strings.HasSuffix(src, "}") {
		src += ";"
	}

	prog := lang.Compile(src)

	if len(prog.Diags) == 0 && len(prog.Stmts) == 1 {
		if es, ok := prog.Stmts[0].(*lang.ExpressionStmt); ok {
			if _, assign := es.Expr.(*lang.Assign); !assign {
				return s.evaluate(ctx, es.Expr)
			}
		}
	}

	return s.run(ctx, src)
}

// run executes src as a program.
func (s *session) run(ctx context.Context, src string) result {
	diags := s.in.Run(ctx, src)

	r := result{output: s.out.String(), diags: diags}
	s.out.Reset()

	return r
}

func (s *session) evaluate(ctx context.Context, e lang.Expr) result {
	v, err := s.in.Evaluate(ctx, e)
	if err == nil {
		return result{value: v, hasValue: true}
	}

	var d *lang.Diagnostic
	if !errors.As(err, &d) {
		d = &lang.Diagnostic{Phase: lang.PhaseRuntime, Line: e.Line(), Message: err.Error()}
	}

	return result{diags: lang.Diagnostics{d}}
}
