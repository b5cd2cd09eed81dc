package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/wz/lang"
	"github.com/ardnew/wz/log"
)

// resolve returns a [kong.ConfigurationLoader] that runs a configuration
// script and offers its global bindings as flag values.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.wz")
//
// Flag names with hyphens are looked up with underscores, so
//
//	let log_level = "debug";
//	let log_pretty = false;
//	let path = ["/usr/share/wz", "lib"];
//
// applies --log-level=debug --no-log-pretty --path=/usr/share/wz,lib.
// Array literals keep their elements. Output of print statements is
// discarded. A script with errors is logged and contributes nothing.
//
// Command-line flags override configuration values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		src, err := lang.ReadSource(ctx, r)
		if err != nil {
			return nil, err
		}

		in, diags := lang.Run(ctx, src,
			lang.WithOutput(io.Discard),
			lang.WithErrors(io.Discard),
			lang.WithArrayElements(true),
			lang.WithLogger(log.Default()),
		)
		if len(diags) > 0 {
			log.WarnContext(ctx, "ignoring configuration script",
				slog.Any("error", diags))

			return config{}, nil
		}

		cfg := make(config, in.Env().Len())
		for name, v := range in.Env().All() {
			if x := flagValue(v); x != nil {
				cfg[name] = x
			}
		}

		return cfg, nil
	}
}

// config implements [kong.Resolver] over the bindings of a configuration
// script.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	if value, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// flagValue converts v to a value kong can parse. Numbers become strings.
// Null has no flag value.
func flagValue(v lang.Value) any {
	switch v.Kind() {
	case lang.KindNull:
		return nil

	case lang.KindNumber:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)

	case lang.KindArray:
		elems := v.Elems()

		out := make([]any, 0, len(elems))
		for _, e := range elems {
			if x := flagValue(e); x != nil {
				out = append(out, x)
			}
		}

		return out

	default:
		return v.Native()
	}
}
