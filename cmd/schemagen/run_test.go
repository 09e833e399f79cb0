package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/signadot/schemagen/config"
	"github.com/signadot/schemagen/emit"
)

func TestProcessAndGenerate(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"go.mod":        "module example.com/shop\n\ngo 1.22\n",
		"orders/a.go":   "package orders\n\n//schemagen:derive\ntype Order struct {\n\tID string `json:\"id\"`\n\tShip *Address `json:\"ship\"`\n}\n",
		"orders/b.go":   "package orders\n\n//schemagen:derive\ntype Address struct {\n\tCity string `json:\"city\" schema:\"'City name'\"`\n}\n",
		"broken/c.go":   "package broken\n\n//schemagen:derive\ntype Loop struct {\n\tNext *Loop `json:\"next\"`\n}\n",
		"vendor/x/x.go": "package x\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	settings := config.Default()
	settings.Recursive = true
	settings.NoTypes = true
	settings.Jobs = 2
	units, err := process(context.Background(), settings, []string{root})
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 {
		t.Fatalf("got %d packages, want 2", len(units))
	}
	byName := map[string]*unit{}
	for _, u := range units {
		byName[u.pkg.Name] = u
	}
	orders := byName["orders"]
	if orders == nil || len(orders.pr.Order) != 2 || orders.pr.Order[0].Decl.TypeName != "Address" {
		t.Fatalf("unexpected orders result: %+v", orders)
	}
	if len(orders.pr.Diagnostics) != 0 {
		t.Errorf("orders diagnostics: %v", orders.pr.Diagnostics)
	}
	if broken := byName["broken"]; broken == nil || !broken.pr.Diagnostics.HasErrors() {
		t.Fatal("self reference was not reported")
	}

	outs, err := emit.Plan(orders.pkg, orders.pr, settings.EmitOptions())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := emit.Write(outs); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a_schema_gen.go", "b_schema_gen.go"} {
		if _, err := os.Stat(filepath.Join(root, "orders", name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	// the generated files are not inputs of the next run
	again, err := process(context.Background(), settings, []string{filepath.Join(root, "orders")})
	if err != nil {
		t.Fatal(err)
	}
	outs, err = emit.Plan(again[0].pkg, again[0].pr, settings.EmitOptions())
	if err != nil {
		t.Fatal(err)
	}
	if drifts, err := emit.Check(outs); err != nil || len(drifts) != 0 {
		t.Errorf("drift after generation: %v %v", drifts, err)
	}

	settings.Color = false
	settings.Diagnostics = "json"
	if err := report(settings, units); err == nil {
		t.Error("report succeeded with an error diagnostic")
	}
	if err := report(settings, units[:0]); err != nil {
		t.Errorf("report with no units: %v", err)
	}
}
