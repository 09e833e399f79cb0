package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/scott-cotton/cli"

	"github.com/signadot/schemagen/emit"
)

func gen(cfg *RunConfig, cc *cli.Context, args []string) error {
	settings, dirs, err := setup(cfg, cc, args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	units, err := process(ctx, settings, dirs)
	if err != nil {
		return err
	}
	for _, u := range units {
		outs, err := emit.Plan(u.pkg, u.pr, settings.EmitOptions())
		if err != nil {
			return err
		}
		changed, err := emit.Write(outs)
		for _, path := range changed {
			theLog.Info("wrote", "file", path)
		}
		if err != nil {
			return err
		}
	}
	return report(settings, units)
}
