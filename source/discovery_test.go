package source

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/schemagen/derive"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscoverPackages(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.go":                "package top\n",
		"a_test.go":           "package top\n",
		"sub/b.go":            "package sub\n",
		"sub/deeper/c.go":     "package deeper\n",
		"testdata/d.go":       "package data\n",
		"vendor/x/e.go":       "package x\n",
		".hidden/f.go":        "package hidden\n",
		"_scratch/g.go":       "package scratch\n",
		"docs/readme.txt":     "not go\n",
		"sub/b_schema_gen.go": "package sub\n",
	})

	tests := []struct {
		name      string
		recursive bool
		want      []string
	}{
		{"flat", false, []string{"top"}},
		{"recursive", true, []string{"deeper", "sub", "top"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkgs, err := DiscoverPackages(root, tt.recursive)
			if err != nil {
				t.Fatal(err)
			}
			var names []string
			for _, p := range pkgs {
				names = append(names, p.Name)
			}
			sort.Strings(names)
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("packages mismatch (-want +got):\n%s", diff)
			}
		})
	}

	pkgs, err := DiscoverPackages(root, false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{filepath.Join(root, "a.go")}, pkgs[0].Files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDirSkipsGenerated(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"m.go": "package m\n\n//schemagen:derive\ntype T struct{ A int }\n",
		// stale generated code must not be read as input
		"m_schema_gen.go": "package m\n\n//schemagen:derive\ntype Ghost struct{}\n",
	})
	pkgs, err := DiscoverPackages(root, false)
	if err != nil {
		t.Fatal(err)
	}
	pkg, err := ParseDir(pkgs[0], DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	decls := pkg.Declarations()
	if len(decls) != 1 || decls[0].TypeName != "T" {
		t.Errorf("declarations = %v, want only T", decls)
	}
}

func TestParseDirCustomSuffix(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"m.go":            "package m\n\n//schemagen:derive\ntype T struct{ A int }\n",
		"m.schema.go":     "package m\n\n//schemagen:derive\ntype Ghost struct{}\n",
		"m_schema_gen.go": "package m\n\n//schemagen:derive\ntype Kept struct{}\n",
	})
	pkgs, err := DiscoverPackages(root, false)
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Suffix = ".schema.go"
	pkg, err := ParseDir(pkgs[0], opts)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, d := range pkg.Declarations() {
		names = append(names, d.TypeName)
	}
	// files are read in name order: m.go, m_schema_gen.go
	if diff := cmp.Diff([]string{"T", "Kept"}, names); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}
}

func TestLoaderTypeFacts(t *testing.T) {
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"go.mod": "module example.com/facts\n\ngo 1.21\n",
		"facts.go": `package facts

import (
	"net/url"
	"time"
)

//schemagen:derive
type Job struct {
	Every   time.Duration
	Target  url.URL
	Labels  Labels
	Owner   Owner
	Started time.Time
	Temp    Celsius
}

type Celsius float64

type Labels []string

type Owner struct{}

func (Owner) Schema() map[string]any { return nil }
`,
	})
	pkg, err := NewLoader(DefaultOptions()).Load(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if pkg.Path != "example.com/facts" || pkg.Name != "facts" {
		t.Errorf("package = %s (%s)", pkg.Path, pkg.Name)
	}
	if !pkg.Enums["time.Duration"] {
		t.Error("time.Duration not recognized as enumeration-like")
	}
	if pkg.Enums["Celsius"] || pkg.Primitives["Celsius"] != derive.PrimitiveNumber {
		t.Errorf("Celsius: enum=%v primitive=%q, want a number", pkg.Enums["Celsius"], pkg.Primitives["Celsius"])
	}
	if !pkg.Known["Owner"] {
		t.Error("Owner Schema method not recognized")
	}
	if _, ok := pkg.Opaque["url.URL"]; !ok {
		t.Error("url.URL not opaque")
	}
	if _, ok := pkg.Opaque["Labels"]; !ok {
		t.Error("Labels not opaque")
	}
}
