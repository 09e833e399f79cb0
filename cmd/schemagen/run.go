package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"golang.org/x/sync/errgroup"

	"github.com/signadot/schemagen/config"
	"github.com/signadot/schemagen/derive"
	"github.com/signadot/schemagen/diag"
	"github.com/signadot/schemagen/source"
)

// unit is one processed package.
type unit struct {
	pkg *source.Package
	pr  *derive.PackageResult
}

// setup parses the command options and resolves the settings: defaults,
// then the configuration file, then the options given on the command line.
func setup(cfg *RunConfig, cc *cli.Context, args []string) (*config.Config, []string, error) {
	args, err := cfg.Cmd.Parse(cc, args)
	if err != nil {
		cfg.Cmd.Usage(cc, err)
		return nil, nil, cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		args = []string{"."}
	}
	set := map[string]bool{}
	for _, opt := range cfg.Cmd.Opts {
		if opt.Value != nil {
			set[opt.Name] = true
		}
	}
	path := cfg.Settings.File
	if path == "" {
		path = config.Find(args[0])
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	settings.Override(&cfg.Settings, func(name string) bool { return set[name] })
	if err := settings.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	if !set["color"] && !settings.Color && settings.DiagFormat() == diag.TextFormat {
		settings.Color = isatty.IsTerminal(os.Stderr.Fd())
	}
	return settings, args, nil
}

// process discovers the packages under dirs and derives each of them,
// several packages at a time.
func process(ctx context.Context, settings *config.Config, dirs []string) ([]*unit, error) {
	var infos []*source.PackageInfo
	seen := map[string]bool{}
	for _, dir := range dirs {
		found, err := source.DiscoverPackages(dir, settings.Recursive)
		if err != nil {
			return nil, err
		}
		for _, info := range found {
			if seen[info.Dir] {
				continue
			}
			seen[info.Dir] = true
			infos = append(infos, info)
		}
	}

	opts := settings.SourceOptions()
	loader := source.NewLoader(opts)
	units := make([]*unit, len(infos))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(settings.Workers())
	for i, info := range infos {
		g.Go(func() error {
			var (
				pkg *source.Package
				err error
			)
			if settings.NoTypes {
				pkg, err = source.ParseDir(info, opts)
			} else {
				pkg, err = loader.Load(ctx, info.Dir)
			}
			if err != nil {
				return err
			}
			units[i] = &unit{pkg: pkg, pr: pkg.Derive()}
			theLog.Info("derived", "package", pkg.Path, "types", len(units[i].pr.Order))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

// report prints the diagnostics of every unit and returns an error when any
// of them has error severity.
func report(settings *config.Config, units []*unit) error {
	var all diag.List
	for _, u := range units {
		all.Append(u.pr.Diagnostics)
	}
	if len(all) == 0 {
		return nil
	}
	all.Sort()
	p := diag.NewPrinter(os.Stderr, settings.DiagFormat(), settings.Color)
	if err := p.Print(all); err != nil {
		return err
	}
	if all.HasErrors() {
		n := 0
		for _, d := range all {
			if d.Severity() == diag.Error {
				n++
			}
		}
		theLog.Error("schema derivation failed", "errors", n)
		return cli.ExitCodeErr(1)
	}
	return nil
}
