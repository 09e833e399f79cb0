package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/scott-cotton/cli"

	"github.com/signadot/schemagen/emit"
)

func export(cfg *RunConfig, cc *cli.Context, args []string) error {
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
		dir := settings.ExportDir
		if len(units) > 1 {
			dir = filepath.Join(dir, u.pkg.Name)
		}
		outs, err := emit.Export(u.pr, dir, settings.Format())
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", u.pkg.Path, err)
		}
		if len(outs) == 0 {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory %q: %w", dir, err)
		}
		changed, err := emit.Write(outs)
		for _, path := range changed {
			theLog.Info("exported", "file", path)
		}
		if err != nil {
			return err
		}
	}
	return report(settings, units)
}
