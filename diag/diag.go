// Package diag holds the diagnostics reported while deriving schemas.
//
// Diagnostics are values, not Go errors: derivation collects every problem
// it finds in a List and keeps going wherever a valid result can still be
// produced.
package diag

import (
	"errors"
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// Kind names a specific diagnostic.
type Kind string

const (
	OnlyStructs         Kind = "onlyStructs"
	OnlyProperties      Kind = "onlyProperties"
	ReferenceCycle      Kind = "referenceCycle"
	ExampleTypeMismatch Kind = "exampleTypeMismatch"
	DefaultTypeMismatch Kind = "defaultTypeMismatch"
	InvalidAnnotation   Kind = "invalidAnnotation"
	InvalidLiteral      Kind = "invalidLiteral"
	UnresolvedReference Kind = "unresolvedReference"
	UnsupportedEnum     Kind = "unsupportedEnum"
	UnsupportedType     Kind = "unsupportedType"
)

// Class groups kinds by how they affect generation.
type Class int

const (
	// StructuralError means the derivation was applied to something it
	// cannot describe; no accessor is generated for the declaration.
	StructuralError Class = iota
	// ValidationError means metadata is inconsistent with the declared
	// field; output is still generated.
	ValidationError
	// UnsupportedFeatureError marks a construct the engine does not yet
	// derive; the affected field is left out.
	UnsupportedFeatureError
)

func (c Class) String() string {
	switch c {
	case StructuralError:
		return "structural"
	case ValidationError:
		return "validation"
	case UnsupportedFeatureError:
		return "unsupported"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Severity is the severity reported to tooling.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

type kindInfo struct {
	class    Class
	severity Severity
}

var kinds = map[Kind]kindInfo{
	OnlyStructs:         {StructuralError, Error},
	OnlyProperties:      {StructuralError, Error},
	ReferenceCycle:      {StructuralError, Error},
	ExampleTypeMismatch: {ValidationError, Warning},
	DefaultTypeMismatch: {ValidationError, Warning},
	InvalidAnnotation:   {ValidationError, Error},
	InvalidLiteral:      {ValidationError, Error},
	UnresolvedReference: {ValidationError, Warning},
	UnsupportedEnum:     {UnsupportedFeatureError, Warning},
	UnsupportedType:     {UnsupportedFeatureError, Warning},
}

// Class returns the class of k.
func (k Kind) Class() Class {
	return kinds[k].class
}

// Severity returns the severity of k.
func (k Kind) Severity() Severity {
	return kinds[k].severity
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Kind    Kind
	Message string
	Pos     token.Position
}

// New creates a diagnostic with a formatted message.
func New(kind Kind, pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
}

func (d *Diagnostic) Severity() Severity {
	return d.Kind.Severity()
}

func (d *Diagnostic) Class() Class {
	return d.Kind.Class()
}

// Error formats the diagnostic the way go vet does: position, severity,
// message, then the kind in brackets.
func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.Pos.IsValid() {
		b.WriteString(d.Pos.String())
		b.WriteString(": ")
	} else if d.Pos.Filename != "" {
		b.WriteString(d.Pos.Filename)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s: %s [%s]", d.Severity(), d.Message, d.Kind)
	return b.String()
}

// List accumulates diagnostics.
type List []*Diagnostic

// Add appends a diagnostic.
func (l *List) Add(kind Kind, pos token.Position, format string, args ...any) *Diagnostic {
	d := New(kind, pos, format, args...)
	*l = append(*l, d)
	return d
}

// Append appends other lists.
func (l *List) Append(others ...List) {
	for _, o := range others {
		*l = append(*l, o...)
	}
}

// HasErrors reports whether any diagnostic has error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity() == Error {
			return true
		}
	}
	return false
}

// Count returns how many diagnostics have kind k.
func (l List) Count(k Kind) int {
	n := 0
	for _, d := range l {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Filter returns the diagnostics of the given kinds.
func (l List) Filter(ks ...Kind) List {
	var res List
	for _, d := range l {
		for _, k := range ks {
			if d.Kind == k {
				res = append(res, d)
				break
			}
		}
	}
	return res
}

// Sort orders the list by file, line, then column. The sort is stable so
// diagnostics at the same position keep their report order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Pos, l[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Err returns an error joining all error-severity diagnostics, or nil.
func (l List) Err() error {
	var errs []error
	for _, d := range l {
		if d.Severity() == Error {
			errs = append(errs, d)
		}
	}
	return errors.Join(errs...)
}
