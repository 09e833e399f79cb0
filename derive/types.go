package derive

import (
	"go/token"

	"github.com/signadot/schemagen/literal"
)

// DeclKind is the kind of a type declaration.
type DeclKind int

const (
	// Struct is a struct type.
	Struct DeclKind = iota
	// Class is any other non-struct type: interfaces, funcs, maps and
	// definitions of other named types.
	Class
	// Enum is a named type whose underlying type is a basic type, the Go
	// enumeration idiom.
	Enum
)

func (k DeclKind) String() string {
	switch k {
	case Struct:
		return "struct"
	case Class:
		return "class"
	case Enum:
		return "enum"
	}
	return "unknown"
}

// Declaration is a type declaration as seen by the engine. It is supplied
// by a front end and never modified.
type Declaration struct {
	// TypeName is the Go type name.
	TypeName string

	// Kind is the declaration kind; only Struct declarations get a schema.
	Kind DeclKind

	// Fields are the struct fields in declaration order.
	Fields []*Field

	// Members are non-field members (methods) that carry a field
	// annotation.
	Members []*Member

	// Pos is the position of the type name.
	Pos token.Position
}

// Field is a raw struct field.
type Field struct {
	// Name is the property key, usually the encoding/json name.
	Name string

	// GoName is the Go field name.
	GoName string

	// Type is the declared type as Go source text, e.g. "*[]Address".
	Type string

	// Embedded is set for anonymous fields.
	Embedded bool

	// Annotation is the field's schema tag, nil when absent.
	Annotation *Annotation

	Pos token.Position
}

// Annotation is the raw text of a field metadata annotation.
type Annotation struct {
	Raw string
	Pos token.Position
}

// Member is a non-field member that carries an annotation.
type Member struct {
	Name string
	Kind string
	Pos  token.Position
}

// FieldDescriptor is the metadata extracted from one field.
type FieldDescriptor struct {
	Name         string
	GoName       string
	DeclaredType string
	// BaseType is DeclaredType with the optional marker removed.
	BaseType    string
	IsOptional  bool
	Default     *literal.Literal
	Description *literal.Literal
	Example     *literal.Literal
	Pos         token.Position
}
