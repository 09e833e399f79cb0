// Package emit renders derived schemas: Go accessor files for go generate,
// drift reports for checking committed output, and standalone JSON and YAML
// schema documents.
package emit

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/signadot/schemagen/debug"
	"github.com/signadot/schemagen/derive"
	"github.com/signadot/schemagen/literal"
	"github.com/signadot/schemagen/source"
)

const (
	// Header is the first line of every generated Go file.
	Header = "// Code generated by schemagen. DO NOT EDIT."

	DefaultRuntimePackage = "github.com/signadot/schemagen/schema"
)

// Options control Go code generation.
type Options struct {
	// RuntimePackage is the import path of the package providing
	// Representable and MustRegister.
	RuntimePackage string

	// Suffix replaces ".go" in the source file name to name the output.
	Suffix string

	// Register adds an init function registering every generated type.
	Register bool

	// FixImports lets goimports resolve imports the source file does not
	// spell out. It may scan the module cache.
	FixImports bool
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{
		RuntimePackage: DefaultRuntimePackage,
		Suffix:         source.GeneratedSuffix,
		Register:       true,
	}
}

// OutputPath returns the generated file path for a source file.
func OutputPath(src, suffix string) string {
	if suffix == "" {
		suffix = source.GeneratedSuffix
	}
	return strings.TrimSuffix(src, ".go") + suffix
}

// GoFile renders the accessor file for the generated results of one source
// file. Results must all be generated; they are rendered in the given
// order. pkgPath qualifies registry names and may be empty.
func GoFile(file *source.File, pkgPath string, results []*derive.Result, opts Options) ([]byte, error) {
	if opts.RuntimePackage == "" {
		opts.RuntimePackage = DefaultRuntimePackage
	}
	runtimeName := path.Base(opts.RuntimePackage)

	var b bytes.Buffer
	b.WriteString(Header + "\n\n")
	fmt.Fprintf(&b, "package %s\n\n", file.Package)

	imports := append([]string{importSpec(runtimeName, opts.RuntimePackage)},
		qualifiedImports(file, results)...)
	b.WriteString("import (\n")
	for _, imp := range imports {
		b.WriteString("\t" + imp + "\n")
	}
	b.WriteString(")\n")

	for _, r := range results {
		if !r.Generated() {
			return nil, fmt.Errorf("%s has no schema to render", r.Decl.TypeName)
		}
		name := r.Decl.TypeName
		fmt.Fprintf(&b, "\nvar _ %s.Representable = %s{}\n\n", runtimeName, name)
		fmt.Fprintf(&b, "// Schema returns the JSON Schema object describing %s.\n", name)
		fmt.Fprintf(&b, "func (%s) Schema() map[string]any {\n\treturn ", name)
		writeNode(&b, r.Schema, 1)
		b.WriteString("\n}\n")
	}

	if opts.Register && len(results) > 0 {
		qual := file.Package
		if pkgPath != "" && pkgPath != "." {
			qual = pkgPath
		}
		b.WriteString("\nfunc init() {\n")
		for _, r := range results {
			fmt.Fprintf(&b, "\t%s.MustRegister(%s, %s{})\n",
				runtimeName, strconv.Quote(qual+"."+r.Decl.TypeName), r.Decl.TypeName)
		}
		b.WriteString("}\n")
	}

	if debug.Emit() {
		debug.Logf("emit %s: %d accessors\n", file.Path, len(results))
	}
	return Format(OutputPath(file.Path, opts.Suffix), b.Bytes(), opts.FixImports)
}

func importSpec(name, importPath string) string {
	if path.Base(importPath) == name {
		return strconv.Quote(importPath)
	}
	return name + " " + strconv.Quote(importPath)
}

// qualifiedImports returns import specs for the packages named by
// qualified object references, resolved through the source file imports.
// Unknown package names are left for goimports.
func qualifiedImports(file *source.File, results []*derive.Result) []string {
	seen := make(map[string]bool)
	var specs []string
	for _, r := range results {
		r.Schema.Walk(func(n *derive.Node) {
			pkg, _, ok := strings.Cut(n.PropertiesRef, ".")
			if !ok || seen[pkg] {
				return
			}
			seen[pkg] = true
			if importPath, ok := file.Imports[pkg]; ok {
				specs = append(specs, importSpec(pkg, importPath))
			}
		})
	}
	sort.Strings(specs)
	return specs
}

// Expr renders n as a Go expression of type map[string]any.
func Expr(n *derive.Node) string {
	var b bytes.Buffer
	writeNode(&b, n, 0)
	return b.String()
}

func writeNode(b *bytes.Buffer, n *derive.Node, depth int) {
	indent := strings.Repeat("\t", depth+1)
	b.WriteString("map[string]any{\n")
	entry := func(key string) {
		b.WriteString(indent)
		b.WriteString(strconv.Quote(key))
		b.WriteString(": ")
	}

	entry("type")
	b.WriteString(strconv.Quote(n.Type) + ",\n")

	switch {
	case n.PropertiesRef != "":
		entry("properties")
		fmt.Fprintf(b, "%s{}.Schema()[\"properties\"],\n", n.PropertiesRef)
	case n.Properties != nil:
		entry("properties")
		b.WriteString("map[string]any{\n")
		for _, p := range n.Properties {
			b.WriteString(indent + "\t")
			b.WriteString(strconv.Quote(p.Name))
			b.WriteString(": ")
			writeNode(b, p.Node, depth+2)
			b.WriteString(",\n")
		}
		b.WriteString(indent + "},\n")
	case n.Items != nil:
		entry("items")
		writeNode(b, n.Items, depth+1)
		b.WriteString(",\n")
	case n.Enum != nil:
		entry("enum")
		b.WriteString("[]any{")
		for i, c := range n.Enum {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.Text)
		}
		b.WriteString("},\n")
	}

	if n.Required != nil {
		entry("required")
		b.WriteString(strconv.FormatBool(*n.Required) + ",\n")
	}
	for _, kv := range []struct {
		key string
		lit *literal.Literal
	}{
		{"description", n.Description},
		{"example", n.Example},
		{"default", n.Default},
	} {
		if kv.lit == nil {
			continue
		}
		entry(kv.key)
		b.WriteString(kv.lit.Text + ",\n")
	}
	b.WriteString(strings.Repeat("\t", depth) + "}")
}
