package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/wz/lang"
	"github.com/ardnew/wz/log"
	"github.com/ardnew/wz/profile"
)

// Init generates a default configuration script with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// errNoCommandContext is returned when Init runs outside a kong command.
var errNoCommandContext = errors.New("missing command context")

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrWriteConfig.Wrap(errNoCommandContext)
	}

	confPath := ktx.Model.Vars()[ConfigIdentifier]
	attr := slog.String("file", confPath)

	var buf bytes.Buffer

	writeConfig(&buf, configEntries(ktx))

	// The generated script must load cleanly.
	if diags := lang.Compile(buf.String()).Diags; len(diags) > 0 {
		return ErrWriteConfig.Wrap(diags).With(attr)
	}

	file, err := createFile(confPath, i.Force)
	if err != nil {
		return ErrWriteConfig.Wrap(err).With(attr)
	}
	defer file.Close()

	if _, err := buf.WriteTo(file); err != nil {
		return ErrWriteConfig.Wrap(err).With(attr)
	}

	log.DebugContext(ctx, "initialized configuration file", attr)

	return nil
}

// configEntry is one binding of the configuration script.
type configEntry struct {
	name    string
	literal string
}

// skipFlags are never written to the configuration.
var skipFlags = []string{"help", "version"}

// configEntries returns a binding for each visible flag whose current value
// can be written as a literal. Unset string and list flags are skipped. Flag
// names become identifiers by replacing hyphens with underscores.
func configEntries(ktx *kong.Context) []configEntry {
	var entries []configEntry

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.Contains(skipFlags, flag.Name) ||
			strings.HasPrefix(flag.Name, profile.Tag) {
			continue
		}

		v, err := lang.FromNative(ktx.FlagValue(flag))
		if err != nil {
			continue
		}

		lit, ok := lang.SourceLiteral(v)
		if !ok || lit == `""` || lit == "[]" {
			log.Debug("flag not representable in configuration",
				slog.String("flag", flag.Name),
				slog.Any("value", v))

			continue
		}

		entries = append(entries, configEntry{
			name:    strings.ReplaceAll(flag.Name, "-", "_"),
			literal: lit,
		})
	}

	return entries
}

func writeConfig(buf *bytes.Buffer, entries []configEntry) {
	buf.WriteString("// wz configuration. Flags given on the command line take precedence.\n")

	for _, e := range entries {
		buf.WriteString("let " + e.name + " = " + e.literal + ";\n")
	}
}
