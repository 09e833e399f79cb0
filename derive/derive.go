package derive

import (
	"go/token"

	"github.com/signadot/schemagen/debug"
	"github.com/signadot/schemagen/diag"
)

// Option configures derivation.
type Option func(*options)

type options struct {
	vocabulary *Vocabulary
	enums      EnumExtractor
	known      map[string]bool
	opaque     map[string]string
}

// WithVocabulary replaces the primitive vocabulary. Default is VocabularyV1.
func WithVocabulary(v *Vocabulary) Option {
	return func(o *options) {
		o.vocabulary = v
	}
}

// WithEnums sets the enumeration extractor. Default is NoEnumCases.
func WithEnums(e EnumExtractor) Option {
	return func(o *options) {
		o.enums = e
	}
}

// WithKnownSchemas declares types that provide a Schema accessor without
// being derived, for instance by a hand-written method. Package uses it to
// decide whether an object reference resolves.
func WithKnownSchemas(typeNames ...string) Option {
	return func(o *options) {
		if o.known == nil {
			o.known = make(map[string]bool)
		}
		for _, n := range typeNames {
			o.known[n] = true
		}
	}
}

// WithOpaqueTypes declares named types that cannot be described, mapped to
// the reason reported for fields using them.
func WithOpaqueTypes(reasons map[string]string) Option {
	return func(o *options) {
		if o.opaque == nil {
			o.opaque = make(map[string]string)
		}
		for n, r := range reasons {
			o.opaque[n] = r
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		vocabulary: VocabularyV1,
		enums:      NoEnumCases{},
	}
	for _, f := range opts {
		f(o)
	}
	return o
}

// Reference is an object reference made by a field.
type Reference struct {
	// TypeName is the referenced type, possibly package qualified.
	TypeName string
	// Field is the property name of the referencing field.
	Field string
	Pos   token.Position
}

// Result is the outcome of deriving one declaration.
type Result struct {
	Decl *Declaration

	// Fields and Categories are parallel: the fields that made it into the
	// schema and their classification.
	Fields     []*FieldDescriptor
	Categories []*Category

	// Schema is nil when no accessor is generated for the declaration.
	Schema *Node

	References  []Reference
	Diagnostics diag.List
}

// Generated reports whether an accessor is generated for the declaration.
func (r *Result) Generated() bool {
	return r.Schema != nil
}

// Derive derives the schema of a single declaration.
func Derive(decl *Declaration, opts ...Option) *Result {
	return derive(decl, newOptions(opts))
}

func derive(decl *Declaration, o *options) *Result {
	res := &Result{Decl: decl}
	fields, ok := Extract(decl, &res.Diagnostics)
	if !ok {
		return res
	}
	classifier := &Classifier{Vocabulary: o.vocabulary, Enums: o.enums, Opaque: o.opaque}
	for _, fd := range fields {
		cat := classifier.Classify(fd.BaseType)
		if debug.Classify() {
			debug.Logf("classify %s.%s %s -> %s\n", decl.TypeName, fd.GoName, fd.BaseType, cat)
		}
		if !supported(decl, fd, cat, &res.Diagnostics) {
			continue
		}
		ValidateExample(fd, cat, &res.Diagnostics)
		ValidateDefault(fd, cat, &res.Diagnostics)
		for _, ref := range References(cat) {
			res.References = append(res.References, Reference{TypeName: ref, Field: fd.Name, Pos: fd.Pos})
		}
		res.Fields = append(res.Fields, fd)
		res.Categories = append(res.Categories, cat)
	}
	res.Schema = BuildObject(res.Fields, res.Categories)
	return res
}

// supported reports unsupported categories anywhere in cat.
func supported(decl *Declaration, fd *FieldDescriptor, cat *Category, diags *diag.List) bool {
	switch cat.Kind {
	case CategoryUnsupported:
		diags.Add(diag.UnsupportedType, fd.Pos,
			"field %q of %s: %s cannot be described; the field is left out of the schema",
			fd.Name, decl.TypeName, cat.Reason)
		return false
	case CategoryEnum:
		if len(cat.Cases) == 0 {
			diags.Add(diag.UnsupportedEnum, fd.Pos,
				"field %q of %s: enumeration type %s has no derivable cases; the field is left out of the schema",
				fd.Name, decl.TypeName, cat.TypeName)
			return false
		}
	case CategoryArray:
		return supported(decl, fd, cat.Elem, diags)
	}
	return true
}
