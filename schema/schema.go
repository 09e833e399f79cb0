// Package schema is the runtime side of generated schema accessors.
//
// Every type with a generated accessor satisfies Representable and is
// registered under its package qualified name when its package is
// initialized.
package schema

import "sort"

// Representable is implemented by types that describe themselves as a JSON
// Schema object.
type Representable interface {
	Schema() map[string]any
}

// Properties returns the properties map of r's schema, or nil.
func Properties(r Representable) map[string]any {
	props, _ := r.Schema()["properties"].(map[string]any)
	return props
}

// Required returns the sorted names of the properties of r marked required.
func Required(r Representable) []string {
	var names []string
	for name, p := range Properties(r) {
		field, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if req, _ := field["required"].(bool); req {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
