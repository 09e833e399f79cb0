// Package source turns Go source into the declarations consumed by the
// derive engine.
//
// A type takes part in derivation when its doc comment carries the derive
// directive:
//
//	//schemagen:derive
//	type Person struct {
//		Name string `json:"name" schema:"'Full name','Ada'"`
//		Age  *int   `json:"age,omitempty" schema:"example=30"`
//	}
//
// Field metadata lives in the schema struct tag. Methods carrying the field
// directive are reported as misplaced field annotations.
package source

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
	"strings"

	"github.com/signadot/schemagen/derive"
)

const (
	DefaultDirective      = "schemagen:derive"
	DefaultFieldDirective = "schemagen:field"
	DefaultTag            = "schema"
	GeneratedSuffix       = "_schema_gen.go"
)

// Options control how declarations are read from source.
type Options struct {
	// Directive marks a type for derivation.
	Directive string
	// FieldDirective marks a method as carrying field metadata.
	FieldDirective string
	// Tag is the struct tag key holding field metadata.
	Tag string
	// GoNames uses Go field names as property keys instead of json tag
	// names.
	GoNames bool
	// Suffix names generated files, which are never read as input.
	// Default is GeneratedSuffix.
	Suffix string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Directive:      DefaultDirective,
		FieldDirective: DefaultFieldDirective,
		Tag:            DefaultTag,
		Suffix:         GeneratedSuffix,
	}
}

// ParseFile parses a Go source file and returns its AST.
func ParseFile(fset *token.FileSet, filename string, src any) (*ast.File, error) {
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %q: %w", filename, err)
	}
	return file, nil
}

// IsGenerated reports whether filename is a file written by the generator
// with the configured suffix.
func (o Options) IsGenerated(filename string) bool {
	suffix := o.Suffix
	if suffix == "" {
		suffix = GeneratedSuffix
	}
	return strings.HasSuffix(filename, suffix)
}

// File is the derivation relevant content of one source file.
type File struct {
	Path    string
	Package string

	// Imports maps the package names used in the file to import paths.
	Imports map[string]string

	// Decls are the types marked for derivation, in source order.
	Decls []*derive.Declaration

	// Members are annotated methods keyed by receiver type name.
	Members map[string][]*derive.Member

	// Schemas lists types with a hand-written Schema method.
	Schemas []string

	// Basic maps named types whose underlying type is a predeclared basic
	// type to that type.
	Basic map[string]string

	// Consts lists the types of typed constants declared in the file.
	Consts []string

	// Opaque maps other non-struct named types to a description of their
	// shape.
	Opaque map[string]string
}

// Extract collects declarations from a parsed file.
func (o Options) Extract(fset *token.FileSet, file *ast.File) *File {
	f := &File{
		Path:    fset.Position(file.Pos()).Filename,
		Package: file.Name.Name,
		Imports: ExtractImports(file),
		Members: make(map[string][]*derive.Member),
		Basic:   make(map[string]string),
		Opaque:  make(map[string]string),
	}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok == token.CONST {
				f.Consts = append(f.Consts, constTypes(d)...)
				continue
			}
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts := spec.(*ast.TypeSpec)
				switch {
				case isBasicDef(ts):
					f.Basic[ts.Name.Name] = ts.Type.(*ast.Ident).Name
				case isOpaqueDef(ts):
					f.Opaque[ts.Name.Name] = fmt.Sprintf("named type %s over %s",
						ts.Name.Name, derive.TypeText(ts.Type))
				}
				doc := ts.Doc
				if doc == nil && len(d.Specs) == 1 {
					doc = d.Doc
				}
				if !hasDirective(doc, o.Directive) {
					continue
				}
				f.Decls = append(f.Decls, o.declaration(fset, ts))
			}
		case *ast.FuncDecl:
			recv := receiverName(d)
			if recv == "" {
				continue
			}
			if d.Name.Name == "Schema" && !hasDirective(d.Doc, o.FieldDirective) {
				// T{}.Schema() needs a value receiver
				if _, ptr := d.Recv.List[0].Type.(*ast.StarExpr); !ptr {
					f.Schemas = append(f.Schemas, recv)
				}
				continue
			}
			if hasDirective(d.Doc, o.FieldDirective) {
				f.Members[recv] = append(f.Members[recv], &derive.Member{
					Name: d.Name.Name,
					Kind: "method",
					Pos:  fset.Position(d.Name.Pos()),
				})
			}
		}
	}
	return f
}

// ExtractImports extracts imports from an AST file.
// Returns a map of package name -> import path.
func ExtractImports(file *ast.File) map[string]string {
	imports := make(map[string]string)
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		var name string
		if imp.Name != nil {
			name = imp.Name.Name
		} else {
			// default to the last path element
			name = path[strings.LastIndex(path, "/")+1:]
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = path
	}
	return imports
}

func (o Options) declaration(fset *token.FileSet, ts *ast.TypeSpec) *derive.Declaration {
	decl := &derive.Declaration{
		TypeName: ts.Name.Name,
		Kind:     declKind(ts),
		Pos:      fset.Position(ts.Name.Pos()),
	}
	if decl.Kind != derive.Struct {
		return decl
	}
	st := ts.Type.(*ast.StructType)
	for _, field := range st.Fields.List {
		decl.Fields = append(decl.Fields, o.fields(fset, field)...)
	}
	return decl
}

// fields expands one AST field (which may declare several names) into
// derive fields. Fields encoding/json never writes are dropped here.
func (o Options) fields(fset *token.FileSet, field *ast.Field) []*derive.Field {
	var tag reflect.StructTag
	if field.Tag != nil {
		if s, err := strconv.Unquote(field.Tag.Value); err == nil {
			tag = reflect.StructTag(s)
		}
	}
	jsonName, _, _ := strings.Cut(tag.Get("json"), ",")
	if jsonName == "-" {
		return nil
	}
	var ann *derive.Annotation
	if raw, ok := tag.Lookup(o.Tag); ok {
		ann = &derive.Annotation{Raw: raw, Pos: fset.Position(field.Tag.Pos())}
	}
	typeText := derive.TypeText(field.Type)

	if len(field.Names) == 0 {
		return []*derive.Field{{
			Name:       embeddedName(field.Type),
			GoName:     embeddedName(field.Type),
			Type:       typeText,
			Embedded:   true,
			Annotation: ann,
			Pos:        fset.Position(field.Type.Pos()),
		}}
	}

	var res []*derive.Field
	for _, name := range field.Names {
		if !name.IsExported() {
			continue
		}
		key := name.Name
		if jsonName != "" && !o.GoNames {
			key = jsonName
		}
		res = append(res, &derive.Field{
			Name:       key,
			GoName:     name.Name,
			Type:       typeText,
			Annotation: ann,
			Pos:        fset.Position(name.Pos()),
		})
	}
	return res
}

func declKind(ts *ast.TypeSpec) derive.DeclKind {
	if ts.Assign.IsValid() || ts.TypeParams != nil {
		return derive.Class
	}
	if _, ok := ts.Type.(*ast.StructType); ok {
		return derive.Struct
	}
	if isBasicDef(ts) {
		return derive.Enum
	}
	return derive.Class
}

var basicTypes = map[string]bool{
	"bool": true, "string": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uintptr": true, "byte": true, "rune": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
}

func isBasicDef(ts *ast.TypeSpec) bool {
	if ts.Assign.IsValid() {
		return false
	}
	id, ok := ts.Type.(*ast.Ident)
	return ok && basicTypes[id.Name]
}

// constTypes returns the named types given to the constants of a const
// declaration. A spec without type and values repeats the previous one.
func constTypes(d *ast.GenDecl) []string {
	var (
		names []string
		last  string
	)
	for _, spec := range d.Specs {
		vs := spec.(*ast.ValueSpec)
		switch {
		case vs.Type != nil:
			last = derive.TypeText(vs.Type)
		case len(vs.Values) > 0:
			last = ""
		}
		if last != "" && !basicTypes[last] {
			names = append(names, last)
		}
	}
	return names
}

func isOpaqueDef(ts *ast.TypeSpec) bool {
	if ts.Assign.IsValid() || ts.TypeParams != nil {
		return false
	}
	switch ts.Type.(type) {
	case *ast.StructType, *ast.Ident, *ast.SelectorExpr:
		return false
	}
	return true
}

func hasDirective(doc *ast.CommentGroup, directive string) bool {
	if doc == nil || directive == "" {
		return false
	}
	for _, c := range doc.List {
		text, ok := strings.CutPrefix(c.Text, "//")
		if !ok {
			continue
		}
		if text == directive || strings.HasPrefix(text, directive+" ") {
			return true
		}
	}
	return false
}

func receiverName(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return ""
	}
	t := fd.Recv.List[0].Type
	for {
		switch x := t.(type) {
		case *ast.StarExpr:
			t = x.X
		case *ast.ParenExpr:
			t = x.X
		case *ast.IndexExpr:
			t = x.X
		case *ast.IndexListExpr:
			t = x.X
		case *ast.Ident:
			return x.Name
		default:
			return ""
		}
	}
}

func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	}
	return derive.TypeText(expr)
}
