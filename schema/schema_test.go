package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type point struct{}

func (point) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x":     map[string]any{"type": "number", "required": true},
			"y":     map[string]any{"type": "number", "required": true},
			"label": map[string]any{"type": "string", "required": false},
		},
	}
}

func TestRequired(t *testing.T) {
	if diff := cmp.Diff([]string{"x", "y"}, Required(point{})); diff != "" {
		t.Errorf("required mismatch (-want +got):\n%s", diff)
	}
	if got := len(Properties(point{})); got != 3 {
		t.Errorf("got %d properties, want 3", got)
	}
}

func TestRegistry(t *testing.T) {
	if err := Register("schema.point", point{}); err != nil {
		t.Fatal(err)
	}
	if err := Register("schema.point", point{}); err == nil {
		t.Error("duplicate registration succeeded")
	}
	if err := Register("", point{}); err == nil {
		t.Error("registration without a name succeeded")
	}
	if err := Register("schema.nil", nil); err == nil {
		t.Error("nil registration succeeded")
	}
	if Lookup("schema.point") == nil {
		t.Error("Lookup failed for registered type")
	}
	if Lookup("schema.missing") != nil {
		t.Error("Lookup found an unregistered type")
	}
	found := false
	for _, n := range Names() {
		found = found || n == "schema.point"
	}
	if !found {
		t.Errorf("Names() = %v, missing schema.point", Names())
	}
	if _, ok := All()["schema.point"]; !ok {
		t.Error("All() is missing schema.point")
	}
}
