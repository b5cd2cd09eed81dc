package cmd

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/wz/lang"
	"github.com/ardnew/wz/log"
)

// Run executes scripts against one shared global environment.
type Run struct {
	Set        []string `help:"Predefine a global as NAME=EXPR, where EXPR is evaluated on the host (repeatable)." placeholder:"NAME=EXPR" short:"D"`
	Dump       string   `default:""  enum:",json,yaml"                                                                   help:"After running, write the global bindings as json or yaml."`
	Indent     int      `default:"2" help:"Indent width for --dump output (0 for compact)."`
	BlockScope bool     `help:"Give each block its own scope."                                                              negatable:""`
	Arrays     bool     `help:"Evaluate the elements of array literals."                                                    name:"array-elements" negatable:""`

	Files []string `arg:"" default:"-" help:"Script files or '-' for stdin." name:"file" optional:""`
}

// Run executes the run command.
//
// Every script runs to completion even if an earlier one reported errors.
// The command fails if any script produced a diagnostic.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	globals, err := bindings(r.Set)
	if err != nil {
		return err
	}

	srcs, err := readSources(ctx, r.Files)
	if err != nil {
		return err
	}

	streams := streamsFrom(ctx)

	in := lang.New(
		lang.WithOutput(streams.Out),
		lang.WithErrors(streams.Err),
		lang.WithGlobals(globals),
		lang.WithLogger(log.Default()),
		lang.WithBlockScope(r.BlockScope),
		lang.WithArrayElements(r.Arrays),
	)

	var (
		diags  lang.Diagnostics
		failed []string
	)

	for _, src := range srcs {
		log.DebugContext(ctx, "run script",
			slog.String("file", src.Name),
			slog.Int("bytes", len(src.Text)))

		if d := in.Run(ctx, src.Text); len(d) > 0 {
			diags = append(diags, d...)
			failed = append(failed, src.Name)
		}

		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
	}

	if r.Dump != "" {
		if err := writeFormat(ctx, streams.Out, r.Dump, in.Env(), r.Indent); err != nil {
			return err
		}
	}

	if len(diags) > 0 {
		return ErrScriptFailed.Wrap(diags).With(
			slog.Int("lexical", diags.Count(lang.PhaseLex)),
			slog.Int("syntax", diags.Count(lang.PhaseParse)),
			slog.Int("runtime", diags.Count(lang.PhaseRuntime)),
			slog.Any("files", failed),
		)
	}

	return nil
}

// bindings evaluates the --set expressions in order. Each expression sees
// the bindings defined before it and an env(name) function returning the
// named process environment variable.
func bindings(sets []string) (map[string]lang.Value, error) {
	env := map[string]any{"env": os.Getenv}
	globals := make(map[string]lang.Value, len(sets))

	for _, set := range sets {
		attr := slog.String("binding", set)

		name, source, ok := strings.Cut(set, "=")
		name = strings.TrimSpace(name)

		if !ok || !isIdentifier(name) {
			return nil, ErrSetBinding.With(attr)
		}

		program, err := expr.Compile(source, expr.Env(env))
		if err != nil {
			return nil, ErrSetBinding.Wrap(err).With(attr)
		}

		out, err := vm.Run(program, env)
		if err != nil {
			return nil, ErrSetBinding.Wrap(err).With(attr)
		}

		v, err := lang.FromNative(out)
		if err != nil {
			return nil, ErrSetBinding.Wrap(err).With(attr)
		}

		env[name] = out
		globals[name] = v
	}

	return globals, nil
}

// isIdentifier reports whether name scans as exactly one identifier.
func isIdentifier(name string) bool {
	tokens, diags := lang.Scan(name)

	return len(diags) == 0 && len(tokens) == 2 && tokens[0].Kind == lang.Identifier
}
