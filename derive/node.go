package derive

import (
	"github.com/signadot/schemagen/literal"
)

// Schema type names used by Node.Type.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = string(PrimitiveString)
	TypeNumber  = string(PrimitiveNumber)
	TypeBoolean = string(PrimitiveBoolean)
)

// Node is one node of a derived schema tree.
//
// Keys are rendered in a fixed order: type, then properties or items or
// enum, then required, description, example and default. Unset fields are
// left out of the rendering entirely.
type Node struct {
	Type string

	// Properties are the object properties in declaration order.
	Properties []*Property

	// PropertiesRef names the type whose generated accessor provides the
	// properties of this object. It is resolved when the accessor runs.
	PropertiesRef string

	Items *Node
	Enum  []literal.Literal

	Required    *bool
	Description *literal.Literal
	Example     *literal.Literal
	Default     *literal.Literal
}

// Property is a named entry of Node.Properties.
type Property struct {
	Name string
	Node *Node
}

// Property returns the named property, or nil.
func (n *Node) Property(name string) *Node {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Node
		}
	}
	return nil
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Properties != nil {
		c.Properties = make([]*Property, len(n.Properties))
		for i, p := range n.Properties {
			c.Properties[i] = &Property{Name: p.Name, Node: p.Node.Clone()}
		}
	}
	c.Items = n.Items.Clone()
	if n.Enum != nil {
		c.Enum = append([]literal.Literal(nil), n.Enum...)
	}
	if n.Required != nil {
		r := *n.Required
		c.Required = &r
	}
	return &c
}

// Walk calls f on n and every node below it, depth first.
func (n *Node) Walk(f func(*Node)) {
	if n == nil {
		return
	}
	f(n)
	for _, p := range n.Properties {
		p.Node.Walk(f)
	}
	n.Items.Walk(f)
}
