package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"

	"github.com/klauspost/readahead"

	"github.com/ardnew/wz/log"
)

// options holds interpreter configuration.
type options struct {
	globals       map[string]Value
	blockScope    bool
	arrayElements bool
	noCache       bool
	maxDepth      int
}

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithOutput sets the sink for print statements. The default discards
// output.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		if w != nil {
			in.out = w
		}
	}
}

// WithErrors sets the sink that receives one line per diagnostic reported
// by [Interpreter.Run]. The default discards them.
func WithErrors(w io.Writer) Option {
	return func(in *Interpreter) {
		if w != nil {
			in.errs = w
		}
	}
}

// WithGlobals binds each name in globals before the first statement runs.
func WithGlobals(globals map[string]Value) Option {
	return func(in *Interpreter) {
		if in.opts.globals == nil {
			in.opts.globals = make(map[string]Value, len(globals))
		}

		maps.Copy(in.opts.globals, globals)
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(in *Interpreter) {
		in.logger = logger
	}
}

// WithBlockScope makes each block execute in a new environment enclosed by
// the current one. By default blocks share the enclosing environment.
func WithBlockScope(enable bool) Option {
	return func(in *Interpreter) {
		in.opts.blockScope = enable
	}
}

// WithArrayElements makes array literals evaluate their elements in order.
// By default an array literal evaluates to an empty array and its element
// expressions are never evaluated.
func WithArrayElements(enable bool) Option {
	return func(in *Interpreter) {
		in.opts.arrayElements = enable
	}
}

// WithCache controls whether [Interpreter.Run] reuses programs compiled from
// identical source text. It is enabled by default.
func WithCache(enable bool) Option {
	return func(in *Interpreter) {
		in.opts.noCache = !enable
	}
}

// WithMaxDepth limits how deeply statements and expressions may nest. A
// parsed program that nests deeper is a syntax error, and a syntax tree
// built by hand that nests deeper fails with a runtime error. Values less
// than 1 select [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(in *Interpreter) {
		in.opts.maxDepth = depth
	}
}

// Run scans, parses and executes source with a new [Interpreter] configured
// by opts. It returns the interpreter so its environment can be inspected.
func Run(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Interpreter, Diagnostics) {
	in := New(opts...)

	return in, in.Run(ctx, source)
}

// Run scans, parses and executes source against the interpreter's
// environment.
//
// Every statement that parsed is executed in order, even when other
// declarations had syntax errors. A runtime error abandons only the
// statement that raised it. All diagnostics are written to the error sink
// and returned in order: lexical, then syntax, then runtime.
//
// If ctx is canceled, Run stops before the next statement.
func (in *Interpreter) Run(ctx context.Context, source string) Diagnostics {
	var prog *Program

	if in.opts.noCache {
		prog = compileUncached(source, in.maxDepth(), in.logger)
	} else {
		prog = compile(ctx, source, in.maxDepth(), in.logger)
	}

	diags := make(Diagnostics, 0, len(prog.Diags))
	diags = append(diags, prog.Diags...)

	for _, s := range prog.Stmts {
		err := in.Execute(ctx, s)
		if err == nil {
			continue
		}

		if ctx.Err() != nil {
			in.logger.DebugContext(ctx, "execution canceled",
				slog.Int("line", s.Line()),
				slog.Any("cause", context.Cause(ctx)))

			break
		}

		var d *Diagnostic
		if !errors.As(err, &d) {
			d = runtimeError(s.Line(), err.Error())
		}

		in.logger.TraceContext(ctx, "runtime error", slog.Any("diagnostic", d))

		diags = append(diags, d)
	}

	for _, d := range diags {
		if _, err := io.WriteString(in.errs, d.Error()+"\n"); err != nil {
			in.logger.WarnContext(ctx, "cannot write diagnostic",
				slog.Any("diagnostic", d),
				slog.String("error", err.Error()))

			break
		}
	}

	return diags
}

// ReadSource reads all of r using an asynchronous read-ahead buffer.
func ReadSource(ctx context.Context, r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err)
	}

	if err := ctx.Err(); err != nil {
		return "", ErrReadInput.Wrap(err)
	}

	return string(data), nil
}
