package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/wz/lang"
)

// Fmt prints the scanner or parser output for a script.
type Fmt struct {
	AST    AST    `cmd:"" default:"withargs" help:"Print the syntax tree (default)."`
	Tokens Tokens `cmd:""                    help:"Print the token stream."`
}

// formatFlags are shared by the fmt subcommands.
type formatFlags struct {
	Format string `default:"native" enum:"native,json,yaml" help:"Output format: ${enum}." short:"o"`
	Indent int    `default:"2"                               help:"Indent width for json and yaml (0 for compact)." short:"i"`

	Source string `arg:"" default:"-" help:"Source file or '-' for stdin." name:"source"`
}

// read returns the text of the source named by the flags.
func (f *formatFlags) read(ctx context.Context) (Source, error) {
	srcs, err := readSources(ctx, []string{f.Source})
	if err != nil {
		return Source{}, err
	}

	return srcs[0], nil
}

// report writes diags to the error stream and returns them as an error.
func (f *formatFlags) report(ctx context.Context, diags lang.Diagnostics) error {
	if len(diags) == 0 {
		return nil
	}

	for _, d := range diags {
		_, _ = io.WriteString(streamsFrom(ctx).Err, d.Error()+"\n")
	}

	return ErrScriptFailed.Wrap(diags).With(
		slog.String("file", f.Source),
		slog.Int("diagnostics", len(diags)),
	)
}

// Tokens prints the token stream of a script.
type Tokens struct {
	Flags formatFlags `embed:""`
}

// Run executes the fmt tokens command.
func (t *Tokens) Run(ctx context.Context) error {
	src, err := t.Flags.read(ctx)
	if err != nil {
		return err
	}

	tokens, diags := lang.Scan(src.Text)
	out := streamsFrom(ctx).Out

	if t.Flags.Format != "native" {
		err = writeFormat(ctx, out, t.Flags.Format, tokens, t.Flags.Indent)
	} else if err = lang.FormatTokens(out, tokens); err != nil {
		err = ErrFormat.Wrap(err).With(slog.String("format", "native"))
	}

	if err != nil {
		return err
	}

	return t.Flags.report(ctx, diags)
}

// AST prints the syntax tree of a script.
type AST struct {
	Flags formatFlags `embed:""`
}

// Run executes the fmt ast command.
func (a *AST) Run(ctx context.Context) error {
	src, err := a.Flags.read(ctx)
	if err != nil {
		return err
	}

	prog := lang.Compile(src.Text)
	out := streamsFrom(ctx).Out

	if a.Flags.Format != "native" {
		err = writeFormat(ctx, out, a.Flags.Format, prog.Stmts, a.Flags.Indent)
	} else if err = lang.Format(out, prog.Stmts); err != nil {
		err = ErrFormat.Wrap(err).With(slog.String("format", "native"))
	}

	if err != nil {
		return err
	}

	return a.Flags.report(ctx, prog.Diags)
}

// writeFormat writes the native form of x as json or yaml.
func writeFormat(
	ctx context.Context,
	w io.Writer,
	format string,
	x any,
	indent int,
) error {
	var err error

	switch format {
	case "json":
		err = lang.FormatJSON(ctx, w, x, indent)

	case "yaml":
		err = lang.FormatYAML(ctx, w, x, indent)

	default:
		return ErrFormat.With(slog.String("format", format))
	}

	if err != nil {
		return ErrFormat.Wrap(err).With(slog.String("format", format))
	}

	return nil
}
