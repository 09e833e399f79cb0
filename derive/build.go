package derive

import (
	"github.com/signadot/schemagen/literal"
)

// Build builds the schema node of one field: the type shaped core followed
// by required, description, example and default.
func Build(fd *FieldDescriptor, cat *Category) *Node {
	n := BuildTypeOnly(cat)
	required := !fd.IsOptional
	n.Required = &required
	n.Description = fd.Description
	n.Example = fd.Example
	n.Default = fd.Default
	return n
}

// BuildTypeOnly builds the type shaped subtree for a category. Array items
// use it so field metadata stays on the array node.
func BuildTypeOnly(cat *Category) *Node {
	switch cat.Kind {
	case CategoryPrimitive:
		return &Node{Type: string(cat.Primitive)}
	case CategoryArray:
		return &Node{Type: TypeArray, Items: BuildTypeOnly(cat.Elem)}
	case CategoryObject:
		return &Node{Type: TypeObject, PropertiesRef: cat.TypeName}
	case CategoryEnum:
		return &Node{Type: enumType(cat.Cases), Enum: append([]literal.Literal(nil), cat.Cases...)}
	}
	// unsupported categories never reach the builder
	return &Node{Type: TypeObject}
}

func enumType(cases []literal.Literal) string {
	if len(cases) == 0 {
		return TypeString
	}
	switch cases[0].Kind {
	case literal.Integer, literal.Float:
		return TypeNumber
	case literal.Boolean:
		return TypeBoolean
	}
	return TypeString
}

// BuildObject builds the top level object node of a declaration from its
// fields, in order.
func BuildObject(fields []*FieldDescriptor, cats []*Category) *Node {
	obj := &Node{Type: TypeObject, Properties: make([]*Property, 0, len(fields))}
	for i, fd := range fields {
		obj.Properties = append(obj.Properties, &Property{
			Name: fd.Name,
			Node: Build(fd, cats[i]),
		})
	}
	return obj
}

// References returns the object references made by a category, innermost
// last.
func References(cat *Category) []string {
	switch cat.Kind {
	case CategoryArray:
		return References(cat.Elem)
	case CategoryObject:
		return []string{cat.TypeName}
	}
	return nil
}
