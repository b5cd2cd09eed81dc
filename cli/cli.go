package cli

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ardnew/wz/cli/cmd"
	"github.com/ardnew/wz/log"
	"github.com/ardnew/wz/pkg"
)

// CLI is the top-level command-line interface for wz.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Path    []string         `help:"Directory searched for script files (repeatable, searched before ${pathEnv})." placeholder:"DIR" short:"I" type:"path"`
	Version kong.VersionFlag `help:"Print version and exit."                                                          short:"V"`

	Run  cmd.Run  `cmd:"" default:"withargs" help:"Run scripts (default)."`
	Repl cmd.Repl `cmd:""                    help:"Start an interactive session."`
	Fmt  cmd.Fmt  `cmd:""                    help:"Print the tokens or syntax tree of a script."`
	Init cmd.Init `cmd:""                    help:"Write a configuration script from the current flag values."`
}

// Run executes the wz CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Name + " " + pkg.Version(),
		"pathEnv":            pkg.EnvName(pathEnv),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Apply logger flags before parsing so that parse errors are logged
	// with them.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values, including
	// those that do not pass through encoding.TextUnmarshaler.
	cli.Log.start(ctx)

	dirs := includePath(cli.Path...)

	log.TraceContext(ctx, "include path", slog.Any("dirs", dirs))

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithIncludePath(ctx, dirs)

	ktx.BindTo(ctx, (*context.Context)(nil))

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
