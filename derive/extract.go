package derive

import (
	"go/token"

	"github.com/signadot/schemagen/debug"
	"github.com/signadot/schemagen/diag"
	"github.com/signadot/schemagen/literal"
)

// Extract produces a FieldDescriptor for every describable field of decl.
//
// A declaration that is not a struct yields a single onlyStructs
// diagnostic and no fields; ok is false in that case. Annotated members
// that are not fields are reported one by one and do not stop extraction.
func Extract(decl *Declaration, diags *diag.List) (fields []*FieldDescriptor, ok bool) {
	if decl.Kind != Struct {
		diags.Add(diag.OnlyStructs, decl.Pos,
			"schema derivation applies only to structs; %s is declared as %s %s",
			decl.TypeName, article(decl.Kind), decl.Kind)
		return nil, false
	}
	for _, m := range decl.Members {
		diags.Add(diag.OnlyProperties, m.Pos,
			"field annotation on %s %s.%s: annotations apply only to struct fields",
			m.Kind, decl.TypeName, m.Name)
	}
	seen := make(map[string]*Field)
	for _, f := range decl.Fields {
		if f.Embedded {
			diags.Add(diag.UnsupportedType, f.Pos,
				"embedded field %s in %s is not supported and is left out of the schema",
				f.Type, decl.TypeName)
			continue
		}
		fd, keep := extractField(f, diags)
		if !keep {
			continue
		}
		if prev, dup := seen[fd.Name]; dup {
			diags.Add(diag.InvalidAnnotation, f.Pos,
				"field %s of %s uses property name %q, already used by field %s; the field is left out of the schema",
				fd.GoName, decl.TypeName, fd.Name, prev.GoName)
			continue
		}
		seen[fd.Name] = f
		if debug.Extract() {
			debug.Logf("extract %s.%s: type=%s optional=%t description=%v example=%v default=%v\n",
				decl.TypeName, fd.GoName, fd.DeclaredType, fd.IsOptional,
				fd.Description, fd.Example, fd.Default)
		}
		fields = append(fields, fd)
	}
	return fields, true
}

func article(k DeclKind) string {
	if k == Enum {
		return "an"
	}
	return "a"
}

func extractField(f *Field, diags *diag.List) (*FieldDescriptor, bool) {
	base, optional := splitOptional(f.Type)
	fd := &FieldDescriptor{
		Name:         f.Name,
		GoName:       f.GoName,
		DeclaredType: f.Type,
		BaseType:     base,
		IsOptional:   optional,
		Pos:          f.Pos,
	}
	if fd.GoName == "" {
		fd.GoName = f.Name
	}
	if f.Annotation == nil {
		return fd, true
	}
	pos := f.Annotation.Pos
	if !pos.IsValid() {
		pos = f.Pos
	}
	args, err := ParseAnnotation(f.Annotation.Raw)
	if err != nil {
		diags.Add(diag.InvalidAnnotation, pos, "field %q: %v", f.Name, err)
		return fd, true
	}
	md, err := interpretArgs(args)
	if err != nil {
		diags.Add(diag.InvalidAnnotation, pos, "field %q: %v", f.Name, err)
		return fd, true
	}
	if md.skip {
		return nil, false
	}
	fd.Description = literalArg(f, md.description, true, argDescription, pos, diags)
	if fd.Description != nil && fd.Description.Kind != literal.String {
		diags.Add(diag.InvalidLiteral, pos, "description of field %q must be a string, got %s %s",
			f.Name, fd.Description.Kind, fd.Description.Text)
		fd.Description = nil
	}
	fd.Example = literalArg(f, md.example, false, argExample, pos, diags)
	fd.Default = literalArg(f, md.dflt, false, argDefault, pos, diags)
	return fd, true
}

func literalArg(f *Field, a *Arg, asString bool, what string, pos token.Position, diags *diag.List) *literal.Literal {
	if a == nil {
		return nil
	}
	lit, err := a.Literal(asString)
	if err != nil {
		diags.Add(diag.InvalidLiteral, pos, "%s of field %q: %v", what, f.Name, err)
		return nil
	}
	return &lit
}
