package derive

import (
	"fmt"
	"go/ast"
	"go/parser"
	"strings"

	"github.com/signadot/schemagen/literal"
)

// Primitive is a JSON Schema primitive type name.
type Primitive string

const (
	PrimitiveString  Primitive = "string"
	PrimitiveNumber  Primitive = "number"
	PrimitiveBoolean Primitive = "boolean"
)

// CategoryKind discriminates Category.
type CategoryKind int

const (
	CategoryPrimitive CategoryKind = iota
	CategoryArray
	CategoryObject
	CategoryEnum
	CategoryUnsupported
)

// Category is the schema relevant classification of a declared type.
type Category struct {
	Kind CategoryKind

	// Primitive is set for CategoryPrimitive.
	Primitive Primitive

	// Elem is the element category for CategoryArray.
	Elem *Category

	// TypeName is the referenced type for CategoryObject and CategoryEnum.
	TypeName string

	// Cases are the enumeration values for CategoryEnum.
	Cases []literal.Literal

	// Reason explains CategoryUnsupported.
	Reason string
}

func PrimitiveOf(p Primitive) *Category {
	return &Category{Kind: CategoryPrimitive, Primitive: p}
}

func ArrayOf(elem *Category) *Category {
	return &Category{Kind: CategoryArray, Elem: elem}
}

func ObjectReference(typeName string) *Category {
	return &Category{Kind: CategoryObject, TypeName: typeName}
}

func EnumCases(typeName string, cases []literal.Literal) *Category {
	return &Category{Kind: CategoryEnum, TypeName: typeName, Cases: cases}
}

func Unsupported(format string, args ...any) *Category {
	return &Category{Kind: CategoryUnsupported, Reason: fmt.Sprintf(format, args...)}
}

func (c *Category) String() string {
	switch c.Kind {
	case CategoryPrimitive:
		return string(c.Primitive)
	case CategoryArray:
		return "[" + c.Elem.String() + "]"
	case CategoryObject:
		return "object(" + c.TypeName + ")"
	case CategoryEnum:
		return fmt.Sprintf("enum(%s, %d cases)", c.TypeName, len(c.Cases))
	}
	return "unsupported(" + c.Reason + ")"
}

// Vocabulary maps declared type spellings to primitive schema types.
type Vocabulary struct {
	Version string
	Types   map[string]Primitive
}

// VocabularyV1 is the primitive vocabulary. Types spelled any other way are
// not primitives. Named types defined over a primitive (type Celsius
// float64) are added by the caller through an extended vocabulary.
var VocabularyV1 = &Vocabulary{
	Version: "v1",
	Types: map[string]Primitive{
		"string":    PrimitiveString,
		"[]byte":    PrimitiveString, // encoding/json writes base64
		"time.Time": PrimitiveString,

		"int":         PrimitiveNumber,
		"int8":        PrimitiveNumber,
		"int16":       PrimitiveNumber,
		"int32":       PrimitiveNumber,
		"int64":       PrimitiveNumber,
		"uint":        PrimitiveNumber,
		"uint8":       PrimitiveNumber,
		"uint16":      PrimitiveNumber,
		"uint32":      PrimitiveNumber,
		"uint64":      PrimitiveNumber,
		"byte":        PrimitiveNumber,
		"rune":        PrimitiveNumber,
		"float32":     PrimitiveNumber,
		"float64":     PrimitiveNumber,
		"json.Number": PrimitiveNumber,

		"bool": PrimitiveBoolean,
	},
}

// EnumExtractor is the extension point for enumeration types.
//
// Cases reports whether typeName names an enumeration and, if so, its case
// values. An enumeration without cases cannot be described and is reported
// as unsupported.
type EnumExtractor interface {
	Cases(typeName string) (cases []literal.Literal, isEnum bool)
}

// NoEnumCases is the default extractor: it recognizes no enumerations.
type NoEnumCases struct{}

func (NoEnumCases) Cases(string) ([]literal.Literal, bool) {
	return nil, false
}

// Classifier maps declared type text to a Category.
type Classifier struct {
	Vocabulary *Vocabulary
	Enums      EnumExtractor

	// Opaque maps named types known to have no describable shape to the
	// reason why.
	Opaque map[string]string
}

// NewClassifier returns a classifier over VocabularyV1 with no enumerations.
func NewClassifier() *Classifier {
	return &Classifier{Vocabulary: VocabularyV1, Enums: NoEnumCases{}}
}

// Classify classifies typeText. The rules apply in order: vocabulary
// spellings that look like arrays ([]byte), arrays, primitives,
// enumerations, then any remaining identifier is assumed to be an object
// reference. Everything else is unsupported.
func (c *Classifier) Classify(typeText string) *Category {
	typeText = strings.TrimSpace(typeText)
	expr, err := parser.ParseExpr(typeText)
	if err != nil {
		return Unsupported("cannot parse type %q", typeText)
	}
	return c.classifyExpr(expr)
}

func (c *Classifier) classifyExpr(expr ast.Expr) *Category {
	text := typeString(expr)
	if p, ok := c.Vocabulary.Types[text]; ok {
		return PrimitiveOf(p)
	}
	switch x := expr.(type) {
	case *ast.ParenExpr:
		return c.classifyExpr(x.X)
	case *ast.StarExpr:
		// encoding/json writes *T exactly as T
		return c.classifyExpr(x.X)
	case *ast.ArrayType:
		return ArrayOf(c.classifyExpr(x.Elt))
	case *ast.Ident:
		return c.named(x.Name)
	case *ast.SelectorExpr:
		if _, ok := x.X.(*ast.Ident); ok {
			return c.named(text)
		}
	case *ast.MapType:
		return Unsupported("map type %s", text)
	case *ast.InterfaceType:
		return Unsupported("interface type %s", text)
	case *ast.ChanType:
		return Unsupported("channel type %s", text)
	case *ast.FuncType:
		return Unsupported("func type %s", text)
	case *ast.StructType:
		return Unsupported("anonymous struct type")
	case *ast.IndexExpr, *ast.IndexListExpr:
		return Unsupported("generic type instance %s", text)
	}
	return Unsupported("type %s", text)
}

func (c *Classifier) named(name string) *Category {
	switch name {
	case "any", "error", "complex64", "complex128", "uintptr":
		return Unsupported("type %s", name)
	}
	if reason, ok := c.Opaque[name]; ok {
		return Unsupported("%s", reason)
	}
	if c.Enums != nil {
		if cases, ok := c.Enums.Cases(name); ok {
			return EnumCases(name, cases)
		}
	}
	return ObjectReference(name)
}

// typeString renders a type expression in canonical spacing.
func typeString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + typeString(t.X)
	case *ast.ParenExpr:
		return "(" + typeString(t.X) + ")"
	case *ast.SelectorExpr:
		return typeString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + typeString(t.Elt)
		}
		return "[" + exprString(t.Len) + "]" + typeString(t.Elt)
	case *ast.MapType:
		return "map[" + typeString(t.Key) + "]" + typeString(t.Value)
	case *ast.ChanType:
		return "chan " + typeString(t.Value)
	case *ast.FuncType:
		return "func(...)"
	case *ast.InterfaceType:
		return "interface{...}"
	case *ast.StructType:
		return "struct{...}"
	case *ast.IndexExpr:
		return typeString(t.X) + "[" + typeString(t.Index) + "]"
	case *ast.IndexListExpr:
		parts := make([]string, len(t.Indices))
		for i, index := range t.Indices {
			parts[i] = typeString(index)
		}
		return typeString(t.X) + "[" + strings.Join(parts, ", ") + "]"
	case *ast.Ellipsis:
		return "..." + typeString(t.Elt)
	}
	return exprString(expr)
}

func exprString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.BasicLit:
		return e.Value
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return exprString(e.X) + "." + e.Sel.Name
	}
	return "?"
}

// TypeText renders a field type expression as declared type text.
func TypeText(expr ast.Expr) string {
	return typeString(expr)
}

// splitOptional strips the optional marker (one pointer level) from a
// declared type.
func splitOptional(typeText string) (base string, optional bool) {
	typeText = strings.TrimSpace(typeText)
	if strings.HasPrefix(typeText, "*") {
		return strings.TrimSpace(typeText[1:]), true
	}
	return typeText, false
}
