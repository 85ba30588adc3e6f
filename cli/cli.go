package cli

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/ecalc/cli/cmd"
	"github.com/ardnew/ecalc/log"
	"github.com/ardnew/ecalc/pkg"
)

// CLI is the top-level command-line interface for ecalc.
type CLI struct {
	Log      logConfig    `embed:"" group:"log"   prefix:"log-"`
	Pprof    pprofConfig  `embed:"" group:"pprof" prefix:"pprof-"`
	Settings cmd.Settings `embed:"" group:"calc"`

	Init      cmd.Init      `cmd:"" help:"Write the current flags to the configuration file."`
	Check     cmd.Check     `cmd:"" help:"Parse formulas and report syntax errors."`
	Fmt       cmd.Fmt       `cmd:"" help:"Print formulas in canonical form."`
	Tree      cmd.Tree      `cmd:"" help:"Print the syntax tree of a formula."`
	Functions cmd.Functions `cmd:"" help:"List keyword functions."`
	Factors   cmd.Factors   `cmd:"" help:"Manage the factor database."`
	Repl      cmd.Repl      `cmd:"" help:"Evaluate formulas interactively."`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Evaluate formulas."`
}

// Run executes the ecalc CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	// Errors during parsing are logged before the logging flags are final.
	log.Config(os.Stderr)

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cachePath(),
	}.
		CloneWith(cli.Settings.Vars()).
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{
			cli.Settings.Group(),
			cli.Log.group(),
			cli.Pprof.group(),
		}),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
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

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(&cli.Settings)
}
