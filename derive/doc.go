// Package derive derives JSON Schema trees from struct declarations.
//
// The engine is a pure transformation. A Declaration describes a Go type
// and its fields; Derive extracts a FieldDescriptor per field, classifies
// each declared type into a Category, validates attached example and
// default literals, and builds a Node tree. Problems are collected as
// diagnostics in the Result rather than returned as errors.
//
// Package runs Derive over every declaration of a package and checks the
// graph of object references between them, rejecting cycles before any
// code is emitted.
//
// # Related Packages
//
//   - github.com/signadot/schemagen/source - builds Declarations from Go source
//   - github.com/signadot/schemagen/emit - renders Results as Go code and documents
package derive
