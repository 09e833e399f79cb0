package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/signadot/schemagen/config"
)

type MainConfig struct {
	Verbose bool `cli:"name=v aliases=verbose desc='log the files written'"`

	Main *cli.Command
}

// RunConfig holds the options shared by the package processing commands.
type RunConfig struct {
	*MainConfig
	Settings config.Config

	Cmd *cli.Command
}

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "schemagen").
		WithSynopsis("schemagen [opts] command [opts] [dirs]").
		WithDescription("schemagen derives JSON Schema accessors from annotated Go types.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return schemagenMain(cfg, cc, args)
		}).
		WithSubs(
			GenCommand(cfg),
			CheckCommand(cfg),
			ExportCommand(cfg))
}

func schemagenMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		logLevel.Set(slog.LevelInfo)
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func newRunCommand(mainCfg *MainConfig, name string, run func(*RunConfig, *cli.Context, []string) error) (*RunConfig, *cli.Command) {
	cfg := &RunConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(&cfg.Settings)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommandAt(&cfg.Cmd, name).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return run(cfg, cc, args)
		})
	return cfg, cmd
}

func GenCommand(mainCfg *MainConfig) *cli.Command {
	_, cmd := newRunCommand(mainCfg, "gen", gen)
	return cmd.
		WithAliases("g", "generate").
		WithSynopsis("gen [opts] [dirs]").
		WithDescription("write a Schema accessor file next to every source file holding derived types")
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	_, cmd := newRunCommand(mainCfg, "check", check)
	return cmd.
		WithAliases("c").
		WithSynopsis("check [opts] [dirs]").
		WithDescription("report generated files that do not match their sources, exiting 1 on drift")
}

func ExportCommand(mainCfg *MainConfig) *cli.Command {
	_, cmd := newRunCommand(mainCfg, "export", export)
	return cmd.
		WithAliases("x").
		WithSynopsis("export [-out dir] [-format json|yaml] [dirs]").
		WithDescription("write a standalone schema document per derived type")
}
