package derive

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/schemagen/diag"
)

func resultNames(rs []*Result) []string {
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Decl.TypeName)
	}
	return names
}

func TestPackageOrder(t *testing.T) {
	decls := []*Declaration{
		structDecl("Order", fld("customer", "Customer", ""), fld("lines", "[]Line", "")),
		structDecl("Line", fld("sku", "string", ""), fld("qty", "int", "")),
		structDecl("Customer", fld("name", "string", ""), fld("home", "*Address", "")),
		structDecl("Address", fld("city", "string", "")),
	}
	pr := Package(decls)
	if len(pr.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", pr.Diagnostics)
	}
	want := []string{"Line", "Address", "Customer", "Order"}
	if diff := cmp.Diff(want, resultNames(pr.Order)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if pr.Lookup("Customer") == nil || pr.Lookup("Missing") != nil {
		t.Error("Lookup returned wrong results")
	}
}

func TestPackageCycles(t *testing.T) {
	decls := []*Declaration{
		structDecl("Tree", fld("children", "[]Tree", "")),
		structDecl("A", fld("b", "*B", "")),
		structDecl("B", fld("a", "A", "")),
		structDecl("C", fld("a", "A", ""), fld("name", "string", "")),
	}
	pr := Package(decls)
	if n := pr.Diagnostics.Count(diag.ReferenceCycle); n != 3 {
		t.Errorf("referenceCycle count = %d, want 3: %v", n, pr.Diagnostics)
	}
	for _, name := range []string{"Tree", "A", "B"} {
		if pr.Lookup(name).Generated() {
			t.Errorf("%s generated despite cycle", name)
		}
	}
	c := pr.Lookup("C")
	if !c.Generated() {
		t.Fatal("C not generated")
	}
	if n := c.Diagnostics.Count(diag.UnresolvedReference); n != 1 {
		t.Errorf("C unresolvedReference count = %d, want 1", n)
	}
	if diff := cmp.Diff([]string{"name"}, propertyNames(c.Schema)); diff != "" {
		t.Errorf("C properties mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"C"}, resultNames(pr.Order)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestPackageUnresolved(t *testing.T) {
	decls := []*Declaration{
		structDecl("Post",
			fld("tags", "[]Tag", ""),
			fld("author", "User", ""),
			fld("where", "geo.Point", ""),
		),
	}
	pr := Package(decls)
	got := pr.Diagnostics.Filter(diag.UnresolvedReference)
	if len(got) != 2 {
		t.Fatalf("got %d unresolved references, want 2: %v", len(got), pr.Diagnostics)
	}
	if got[0].Pos != at(2) || got[1].Pos != at(3) {
		t.Errorf("positions = %v, %v", got[0].Pos, got[1].Pos)
	}
	if got[0].Severity() != diag.Warning {
		t.Errorf("severity = %v, want warning", got[0].Severity())
	}
	post := pr.Lookup("Post")
	if diff := cmp.Diff([]string{"where"}, propertyNames(post.Schema)); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
	if len(post.References) != 1 || post.References[0].TypeName != "geo.Point" {
		t.Errorf("references = %+v", post.References)
	}

	pr = Package(decls, WithKnownSchemas("Tag", "User"))
	if len(pr.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics with known schemas: %v", pr.Diagnostics)
	}
	if n := len(pr.Lookup("Post").Schema.Properties); n != 3 {
		t.Errorf("got %d properties with known schemas, want 3", n)
	}
}

// A local struct without an accessor must not be referenced by generated
// code; the field goes and the rest of the declaration stays.
func TestPackageUnresolvedLocalStruct(t *testing.T) {
	decls := []*Declaration{
		structDecl("Cart", fld("items", "[]Item", ""), fld("owner", "*Item", ""), fld("id", "string", "")),
	}
	pr := Package(decls)
	cart := pr.Lookup("Cart")
	if !cart.Generated() {
		t.Fatal("Cart not generated")
	}
	if n := pr.Diagnostics.Count(diag.UnresolvedReference); n != 2 {
		t.Errorf("unresolvedReference = %d, want 2: %v", n, pr.Diagnostics)
	}
	if diff := cmp.Diff([]string{"id"}, propertyNames(cart.Schema)); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
	cart.Schema.Walk(func(n *Node) {
		if n.PropertiesRef != "" {
			t.Errorf("schema still references %s", n.PropertiesRef)
		}
	})
	if diff := cmp.Diff([]string{"Cart"}, resultNames(pr.Order)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func propertyNames(n *Node) []string {
	var names []string
	for _, p := range n.Properties {
		names = append(names, p.Name)
	}
	return names
}

func TestDetectCycles(t *testing.T) {
	results := []*Result{
		Derive(structDecl("A", fld("b", "B", ""))),
		Derive(structDecl("B", fld("c", "C", ""))),
		Derive(structDecl("C", fld("a", "A", ""))),
		Derive(structDecl("D", fld("d", "D", ""))),
	}
	cycles := DetectCycles(BuildDependencyGraph(results))
	var got []string
	for _, c := range cycles {
		got = append(got, c.String())
	}
	want := []string{"A -> B -> C -> A", "D -> D"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cycles mismatch (-want +got):\n%s", diff)
	}
	if _, err := TopologicalSort(BuildDependencyGraph(results)); err == nil {
		t.Error("TopologicalSort succeeded on a cyclic graph")
	}
}
