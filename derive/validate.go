package derive

import (
	"github.com/signadot/schemagen/diag"
	"github.com/signadot/schemagen/literal"
)

// literalKindsFor returns the literal kinds accepted for a primitive.
// Numbers accept integer and float literals in either direction.
func literalKindsFor(p Primitive) []literal.Kind {
	switch p {
	case PrimitiveString:
		return []literal.Kind{literal.String}
	case PrimitiveBoolean:
		return []literal.Kind{literal.Boolean}
	case PrimitiveNumber:
		return []literal.Kind{literal.Integer, literal.Float}
	}
	return nil
}

func expectedLiteral(p Primitive) string {
	switch p {
	case PrimitiveString:
		return "a string literal"
	case PrimitiveBoolean:
		return "a boolean literal"
	case PrimitiveNumber:
		return "an integer or float literal"
	}
	return "a literal"
}

// Matches reports whether lit may describe a value of category cat. Only
// primitive categories constrain literals.
func Matches(cat *Category, lit literal.Literal) bool {
	if cat.Kind != CategoryPrimitive {
		return true
	}
	for _, k := range literalKindsFor(cat.Primitive) {
		if lit.Kind == k {
			return true
		}
	}
	return false
}

// ValidateExample checks the example literal of fd against its category
// and reports at most one diagnostic.
func ValidateExample(fd *FieldDescriptor, cat *Category, diags *diag.List) bool {
	return validateLiteral(fd, cat, fd.Example, "example", diag.ExampleTypeMismatch, diags)
}

// ValidateDefault is ValidateExample for the default literal.
func ValidateDefault(fd *FieldDescriptor, cat *Category, diags *diag.List) bool {
	return validateLiteral(fd, cat, fd.Default, "default", diag.DefaultTypeMismatch, diags)
}

func validateLiteral(fd *FieldDescriptor, cat *Category, lit *literal.Literal, what string, kind diag.Kind, diags *diag.List) bool {
	if lit == nil || Matches(cat, *lit) {
		return true
	}
	diags.Add(kind, fd.Pos,
		"%s %s for field %q has type %s: expected %s for declared type %s",
		what, lit.Text, fd.Name, lit.Kind, expectedLiteral(cat.Primitive), fd.BaseType)
	return false
}
