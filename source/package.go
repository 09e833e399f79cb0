package source

import (
	"fmt"
	"go/token"
	"sort"

	"github.com/signadot/schemagen/debug"
	"github.com/signadot/schemagen/derive"
	"github.com/signadot/schemagen/literal"
)

// Package is the derivation input gathered from one Go package.
type Package struct {
	// Path is the import path, empty when unknown.
	Path string
	// Dir is the package directory.
	Dir string
	// Name is the package name.
	Name string

	// Files are the non-generated source files, in file name order.
	Files []*File

	// Enums are named basic types with declared constants. The classifier
	// treats them as enumerations.
	Enums map[string]bool

	// Primitives are named basic types without constants, described by
	// their underlying type.
	Primitives map[string]derive.Primitive

	// Known are types that provide a Schema accessor without derivation.
	Known map[string]bool

	// Opaque are named types that cannot be described.
	Opaque map[string]string
}

// NewPackage assembles a package from extracted files. Facts found in the
// files themselves (local basic and opaque types, hand-written Schema
// methods) are recorded; a Loader adds what type checking reveals.
func NewPackage(path, dir, name string, files []*File) *Package {
	p := &Package{
		Path:       path,
		Dir:        dir,
		Name:       name,
		Files:      files,
		Enums:      make(map[string]bool),
		Primitives: make(map[string]derive.Primitive),
		Known:      make(map[string]bool),
		Opaque:     make(map[string]string),
	}
	sort.Slice(p.Files, func(i, j int) bool {
		return p.Files[i].Path < p.Files[j].Path
	})
	members := make(map[string][]*derive.Member)
	consts := make(map[string]bool)
	for _, f := range p.Files {
		for _, n := range f.Consts {
			consts[n] = true
		}
	}
	for _, f := range p.Files {
		for n, under := range f.Basic {
			p.addBasic(n, under, consts[n])
		}
		for n, r := range f.Opaque {
			p.Opaque[n] = r
		}
		for _, n := range f.Schemas {
			p.Known[n] = true
		}
		for n, ms := range f.Members {
			members[n] = append(members[n], ms...)
		}
	}
	for _, d := range p.Declarations() {
		d.Members = members[d.TypeName]
	}
	return p
}

// addBasic records a named basic type: an enumeration when constants of
// the type exist, otherwise a primitive described by its underlying type.
func (p *Package) addBasic(name, underlying string, hasConsts bool) {
	delete(p.Enums, name)
	delete(p.Primitives, name)
	delete(p.Opaque, name)
	if hasConsts {
		p.Enums[name] = true
		return
	}
	prim, ok := derive.VocabularyV1.Types[underlying]
	if !ok {
		p.Opaque[name] = fmt.Sprintf("named type %s over %s", name, underlying)
		return
	}
	p.Primitives[name] = prim
}

// Vocabulary returns VocabularyV1 extended with the named primitive types.
func (p *Package) Vocabulary() *derive.Vocabulary {
	v := &derive.Vocabulary{
		Version: derive.VocabularyV1.Version,
		Types:   make(map[string]derive.Primitive, len(derive.VocabularyV1.Types)+len(p.Primitives)),
	}
	for n, prim := range derive.VocabularyV1.Types {
		v.Types[n] = prim
	}
	for n, prim := range p.Primitives {
		v.Types[n] = prim
	}
	return v
}

// Declarations returns the declarations marked for derivation across all
// files, in file then source order.
func (p *Package) Declarations() []*derive.Declaration {
	var decls []*derive.Declaration
	for _, f := range p.Files {
		decls = append(decls, f.Decls...)
	}
	return decls
}

// Cases implements derive.EnumExtractor. Enumeration-like types are
// recognized but their cases are not derived.
func (p *Package) Cases(typeName string) ([]literal.Literal, bool) {
	if p.Enums[typeName] {
		return nil, true
	}
	return nil, false
}

// DeriveOptions returns the derive options carrying the package facts.
func (p *Package) DeriveOptions() []derive.Option {
	known := make([]string, 0, len(p.Known))
	for n := range p.Known {
		known = append(known, n)
	}
	sort.Strings(known)
	return []derive.Option{
		derive.WithVocabulary(p.Vocabulary()),
		derive.WithEnums(p),
		derive.WithKnownSchemas(known...),
		derive.WithOpaqueTypes(p.Opaque),
	}
}

// Derive runs package level derivation over the package declarations.
func (p *Package) Derive(opts ...derive.Option) *derive.PackageResult {
	all := append(p.DeriveOptions(), opts...)
	pr := derive.Package(p.Declarations(), all...)
	if debug.Extract() {
		debug.Logf("derive %s: %d declarations, %d generated, %d diagnostics\n",
			p.Dir, len(pr.Results), len(pr.Order), len(pr.Diagnostics))
	}
	return pr
}

// ParseDir reads the package described by info from source only, without
// type checking. Generated files are skipped.
func ParseDir(info *PackageInfo, opts Options) (*Package, error) {
	fset := token.NewFileSet()
	var files []*File
	for _, path := range info.Files {
		if opts.IsGenerated(path) {
			continue
		}
		file, err := ParseFile(fset, path, nil)
		if err != nil {
			return nil, err
		}
		if file.Name.Name != info.Name {
			return nil, fmt.Errorf("file %q declares package %s, expected %s", path, file.Name.Name, info.Name)
		}
		files = append(files, opts.Extract(fset, file))
	}
	return NewPackage(info.Path, info.Dir, info.Name, files), nil
}
