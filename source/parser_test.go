package source

import (
	"go/token"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/schemagen/derive"
	"github.com/signadot/schemagen/diag"
)

const modelsSrc = `package models

import "time"

// Person is a person.
//
//schemagen:derive
type Person struct {
	Name     string    ` + "`json:\"name\" schema:\"'Full name','Ada'\"`" + `
	Age      *int      ` + "`json:\"age,omitempty\" schema:\"example=30\"`" + `
	Tags     []string  ` + "`json:\"tags\"`" + `
	Home     *Address  ` + "`json:\"home\" schema:\"'Home address'\"`" + `
	Born     time.Time
	X, Y     float64
	Secret   string    ` + "`json:\"-\"`" + `
	internal string
	Level    Level
	Attrs    Attrs
	Temp     Celsius
}

//schemagen:derive
type Address struct {
	City string ` + "`json:\"city\"`" + `
}

//schemagen:derive
type Level int

const (
	Low Level = iota
	High
)

type Celsius float64

const Freezing = 0

type Attrs map[string]string

type Plain struct{}

func (Plain) Schema() map[string]any { return nil }

//schemagen:field
func (p Person) Greeting() string { return "hi " + p.Name }

type (
	// not derived
	Other struct{}
	//schemagen:derive
	Grouped struct {
		ID string
	}
)
`

func parseModels(t *testing.T, opts Options) *File {
	t.Helper()
	fset := token.NewFileSet()
	file, err := ParseFile(fset, "models.go", modelsSrc)
	if err != nil {
		t.Fatal(err)
	}
	return opts.Extract(fset, file)
}

func TestExtractDeclarations(t *testing.T) {
	f := parseModels(t, DefaultOptions())

	var names []string
	kinds := make(map[string]derive.DeclKind)
	for _, d := range f.Decls {
		names = append(names, d.TypeName)
		kinds[d.TypeName] = d.Kind
	}
	if diff := cmp.Diff([]string{"Person", "Address", "Level", "Grouped"}, names); diff != "" {
		t.Fatalf("declarations mismatch (-want +got):\n%s", diff)
	}
	if kinds["Person"] != derive.Struct || kinds["Level"] != derive.Enum {
		t.Errorf("kinds = %v", kinds)
	}
	if diff := cmp.Diff([]string{"Plain"}, f.Schemas); diff != "" {
		t.Errorf("schemas mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"Level": "int", "Celsius": "float64"}, f.Basic); diff != "" {
		t.Errorf("basic mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Level", "Level"}, f.Consts); diff != "" {
		t.Errorf("consts mismatch (-want +got):\n%s", diff)
	}
	if got := f.Opaque["Attrs"]; got != "named type Attrs over map[string]string" {
		t.Errorf("opaque Attrs = %q", got)
	}
	if ms := f.Members["Person"]; len(ms) != 1 || ms[0].Name != "Greeting" {
		t.Errorf("members = %+v", ms)
	}
}

func TestExtractFields(t *testing.T) {
	f := parseModels(t, DefaultOptions())
	person := f.Decls[0]

	type row struct {
		Name, GoName, Type, Tag string
	}
	var got []row
	for _, fld := range person.Fields {
		r := row{Name: fld.Name, GoName: fld.GoName, Type: fld.Type}
		if fld.Annotation != nil {
			r.Tag = fld.Annotation.Raw
		}
		got = append(got, r)
	}
	want := []row{
		{"name", "Name", "string", "'Full name','Ada'"},
		{"age", "Age", "*int", "example=30"},
		{"tags", "Tags", "[]string", ""},
		{"home", "Home", "*Address", "'Home address'"},
		{"Born", "Born", "time.Time", ""},
		{"X", "X", "float64", ""},
		{"Y", "Y", "float64", ""},
		{"Level", "Level", "Level", ""},
		{"Attrs", "Attrs", "Attrs", ""},
		{"Temp", "Temp", "Celsius", ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if pos := person.Fields[0].Pos; pos.Filename != "models.go" || pos.Line != 9 {
		t.Errorf("name position = %v", pos)
	}
}

func TestExtractGoNames(t *testing.T) {
	opts := DefaultOptions()
	opts.GoNames = true
	f := parseModels(t, opts)
	if got := f.Decls[0].Fields[0].Name; got != "Name" {
		t.Errorf("property name = %q, want Name", got)
	}
}

func TestPackageDerive(t *testing.T) {
	pkg := NewPackage("example.com/models", "/src/models", "models", []*File{parseModels(t, DefaultOptions())})
	pr := pkg.Derive()

	if n := pr.Diagnostics.Count(diag.OnlyStructs); n != 1 {
		t.Errorf("onlyStructs = %d, want 1 (Level)", n)
	}
	if n := pr.Diagnostics.Count(diag.OnlyProperties); n != 1 {
		t.Errorf("onlyProperties = %d, want 1 (Greeting)", n)
	}
	if n := pr.Diagnostics.Count(diag.UnsupportedEnum); n != 1 {
		t.Errorf("unsupportedEnum = %d, want 1 (Level field)", n)
	}
	if n := pr.Diagnostics.Count(diag.UnsupportedType); n != 1 {
		t.Errorf("unsupportedType = %d, want 1 (Attrs field)", n)
	}
	if diff := cmp.Diff([]string{"Address", "Grouped", "Person"}, resultNames(pr.Order)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	person := pr.Lookup("Person").Schema
	var props []string
	for _, p := range person.Properties {
		props = append(props, p.Name)
	}
	if diff := cmp.Diff([]string{"name", "age", "tags", "home", "Born", "X", "Y", "Temp"}, props); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
	if temp := person.Property("Temp"); temp.Type != derive.TypeNumber {
		t.Errorf("Temp type = %q, want number", temp.Type)
	}
}

func TestNamedBasicTypes(t *testing.T) {
	tests := []struct {
		name string
		decl string
		enum bool
		want derive.Primitive
	}{
		{
			name: "without constants",
			decl: "type T float64",
			want: derive.PrimitiveNumber,
		},
		{
			name: "typed constant",
			decl: "type T string\n\nconst Red T = \"red\"",
			enum: true,
		},
		{
			name: "iota group",
			decl: "type T int\n\nconst (\n\tLow T = iota\n\tHigh\n)",
			enum: true,
		},
		{
			name: "untyped constant",
			decl: "type T bool\n\nconst On = true",
			want: derive.PrimitiveBoolean,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "package m\n\n//schemagen:derive\ntype R struct {\n\tV T\n}\n\n" + tt.decl + "\n"
			fset := token.NewFileSet()
			file, err := ParseFile(fset, "m.go", src)
			if err != nil {
				t.Fatal(err)
			}
			pkg := NewPackage("m", "/m", "m", []*File{DefaultOptions().Extract(fset, file)})
			pr := pkg.Derive()
			r := pr.Lookup("R")
			if tt.enum {
				if n := pr.Diagnostics.Count(diag.UnsupportedEnum); n != 1 {
					t.Errorf("unsupportedEnum = %d, want 1: %v", n, pr.Diagnostics)
				}
				if len(r.Schema.Properties) != 0 {
					t.Errorf("enumeration field kept: %+v", r.Schema.Properties)
				}
				return
			}
			if len(pr.Diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics: %v", pr.Diagnostics)
			}
			if v := r.Schema.Property("V"); v == nil || v.Type != string(tt.want) {
				t.Errorf("V = %+v, want %s", v, tt.want)
			}
		})
	}
}

func resultNames(rs []*derive.Result) []string {
	var names []string
	for _, r := range rs {
		names = append(names, r.Decl.TypeName)
	}
	return names
}

func TestHasDirective(t *testing.T) {
	fset := token.NewFileSet()
	src := `package p

// schemagen:derive is only a mention
type A struct{}

//schemagen:derive extra
type B struct{}

/* schemagen:derive */
type C struct{}
`
	file, err := ParseFile(fset, "p.go", src)
	if err != nil {
		t.Fatal(err)
	}
	f := DefaultOptions().Extract(fset, file)
	if len(f.Decls) != 1 || f.Decls[0].TypeName != "B" {
		t.Errorf("decls = %v, want only B", f.Decls)
	}
}

func TestExtractImports(t *testing.T) {
	fset := token.NewFileSet()
	src := `package p

import (
	"time"
	geo "example.com/maps/geometry"
	_ "embed"
)
`
	file, err := ParseFile(fset, "p.go", src)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"time": "time", "geo": "example.com/maps/geometry"}
	if diff := cmp.Diff(want, ExtractImports(file)); diff != "" {
		t.Errorf("imports mismatch (-want +got):\n%s", diff)
	}
}
