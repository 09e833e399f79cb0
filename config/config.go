// Package config holds the settings of the schemagen command.
//
// Settings come from three layers: built-in defaults, an optional
// .schemagen.yaml file, and command line options. Each layer overrides the
// previous one for the settings it names.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/signadot/schemagen/diag"
	"github.com/signadot/schemagen/emit"
	"github.com/signadot/schemagen/source"
)

// FileName is the configuration file looked up in the target directory.
const FileName = ".schemagen.yaml"

// Config holds every setting. Field tags drive both option parsing and the
// configuration file layout.
type Config struct {
	Tag            string `cli:"name=tag desc='struct tag holding field metadata'" yaml:"tag,omitempty"`
	Directive      string `cli:"name=directive desc='comment directive marking derived types'" yaml:"directive,omitempty"`
	FieldDirective string `cli:"name=field-directive desc='comment directive marking derived methods'" yaml:"fieldDirective,omitempty"`
	GoNames        bool   `cli:"name=go-names desc='name properties after Go fields, ignoring json tags'" yaml:"goNames,omitempty"`

	Suffix     string `cli:"name=suffix desc='generated file name suffix'" yaml:"suffix,omitempty"`
	Runtime    string `cli:"name=runtime desc='import path of the schema runtime package'" yaml:"runtime,omitempty"`
	NoRegister bool   `cli:"name=no-register desc='do not register generated types with the runtime'" yaml:"noRegister,omitempty"`
	FixImports bool   `cli:"name=fix-imports desc='add missing imports to generated files'" yaml:"fixImports,omitempty"`

	ExportDir    string `cli:"name=out aliases=o desc='directory receiving exported schema documents'" yaml:"exportDir,omitempty"`
	ExportFormat string `cli:"name=format desc='export format: json or yaml'" yaml:"exportFormat,omitempty"`

	Diagnostics string `cli:"name=diag desc='diagnostics format: text, json or lsp'" yaml:"diagnostics,omitempty"`
	Color       bool   `cli:"name=color desc='color diagnostics'" yaml:"color,omitempty"`

	Recursive bool `cli:"name=r aliases=recursive desc='process directories recursively'" yaml:"recursive,omitempty"`
	NoTypes   bool `cli:"name=no-types desc='parse sources without type checking'" yaml:"noTypes,omitempty"`
	Jobs      int  `cli:"name=jobs aliases=j desc='packages processed in parallel (0 means GOMAXPROCS)'" yaml:"jobs,omitempty"`

	File string `cli:"name=config desc='configuration file (default <dir>/.schemagen.yaml)'" yaml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Tag:            source.DefaultTag,
		Directive:      source.DefaultDirective,
		FieldDirective: source.DefaultFieldDirective,
		Suffix:         source.GeneratedSuffix,
		Runtime:        emit.DefaultRuntimePackage,
		ExportDir:      "schemas",
		ExportFormat:   string(emit.ExportJSON),
		Diagnostics:    string(diag.TextFormat),
	}
}

// Find returns the configuration file of dir, or "" if there is none.
func Find(dir string) string {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Load returns the defaults overridden by the file at path. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("configuration file %q not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration %q: %w", path, err)
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to decode configuration %q: %w", path, err)
	}
	cfg.File = path
	return cfg, nil
}

// Override copies into cfg the settings of flags whose option names are
// reported by set.
func (cfg *Config) Override(flags *Config, set func(name string) bool) {
	dst := reflect.ValueOf(cfg).Elem()
	src := reflect.ValueOf(flags).Elem()
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		name := OptName(t.Field(i))
		if name == "" || !set(name) {
			continue
		}
		dst.Field(i).Set(src.Field(i))
	}
}

// OptName returns the option name of a Config field.
func OptName(f reflect.StructField) string {
	for _, part := range strings.Fields(f.Tag.Get("cli")) {
		if name, ok := strings.CutPrefix(part, "name="); ok {
			return name
		}
	}
	return ""
}

// Validate checks the settings that take a fixed set of values.
func (cfg *Config) Validate() error {
	if _, err := emit.ParseExportFormat(cfg.ExportFormat); err != nil {
		return err
	}
	if _, err := diag.ParseFormat(cfg.Diagnostics); err != nil {
		return err
	}
	if cfg.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", cfg.Jobs)
	}
	if cfg.Tag == "" || cfg.Directive == "" {
		return fmt.Errorf("tag and directive must not be empty")
	}
	return nil
}

// SourceOptions returns the extraction settings.
func (cfg *Config) SourceOptions() source.Options {
	opts := source.DefaultOptions()
	opts.Tag = cfg.Tag
	opts.Directive = cfg.Directive
	if cfg.FieldDirective != "" {
		opts.FieldDirective = cfg.FieldDirective
	}
	opts.GoNames = cfg.GoNames
	if cfg.Suffix != "" {
		opts.Suffix = cfg.Suffix
	}
	return opts
}

// EmitOptions returns the code generation settings.
func (cfg *Config) EmitOptions() emit.Options {
	opts := emit.DefaultOptions()
	if cfg.Runtime != "" {
		opts.RuntimePackage = cfg.Runtime
	}
	if cfg.Suffix != "" {
		opts.Suffix = cfg.Suffix
	}
	opts.Register = !cfg.NoRegister
	opts.FixImports = cfg.FixImports
	return opts
}

// Format returns the export format. Validate reports invalid names.
func (cfg *Config) Format() emit.ExportFormat {
	f, err := emit.ParseExportFormat(cfg.ExportFormat)
	if err != nil {
		return emit.ExportJSON
	}
	return f
}

// DiagFormat returns the diagnostics format. Validate reports invalid names.
func (cfg *Config) DiagFormat() diag.Format {
	f, err := diag.ParseFormat(cfg.Diagnostics)
	if err != nil {
		return diag.TextFormat
	}
	return f
}

// Workers returns the number of packages processed in parallel.
func (cfg *Config) Workers() int {
	if cfg.Jobs > 0 {
		return cfg.Jobs
	}
	return runtime.GOMAXPROCS(0)
}
