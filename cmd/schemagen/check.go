package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/scott-cotton/cli"

	"github.com/signadot/schemagen/emit"
)

func check(cfg *RunConfig, cc *cli.Context, args []string) error {
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
	drifted := 0
	for _, u := range units {
		outs, err := emit.Plan(u.pkg, u.pr, settings.EmitOptions())
		if err != nil {
			return err
		}
		drifts, err := emit.Check(outs)
		if err != nil {
			return err
		}
		for _, d := range drifts {
			fmt.Fprint(cc.Out, d.Diff)
		}
		drifted += len(drifts)
	}
	if err := report(settings, units); err != nil {
		return err
	}
	if drifted > 0 {
		theLog.Error("generated files are out of date", "files", drifted)
		return cli.ExitCodeErr(1)
	}
	return nil
}
