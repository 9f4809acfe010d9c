// Package proto parses the Protocol Buffers IDL syntax into a Document.
//
// Declarations carry their package-qualified full names, and type references
// are weakly resolved against the declarations of the same file: a reference
// that names a local message or enum is rewritten to its dotted full name
// (".pkg.Outer.Inner"), a qualified reference that matches nothing local is
// made absolute as written, and a bare unmatched name is left untouched for
// the cross-file resolver.
package proto

import (
	"strings"

	"github.com/standardbeagle/idlunify/internal/types"
)

const (
	Proto2 = "proto2"
	Proto3 = "proto3"
)

// Document is the syntax tree of one .proto file
type Document struct {
	// Version is the syntax statement value; a file without one is proto2
	Version  string
	Edition  string
	Package  string
	Imports  []Import
	Options  []types.Annotation
	Messages []*Message
	Enums    []*Enum
	Services []*Service
	Extends  []*Extend
}

// Syntax implements parser.Document
func (d *Document) Syntax() types.Syntax { return types.SyntaxProto }

// Proto3 reports whether the file declares syntax = "proto3"
func (d *Document) Proto3() bool { return d.Version == Proto3 }

// Dependencies implements parser.Document. Well-known google/protobuf imports
// are never loaded and are left out.
func (d *Document) Dependencies() []string {
	var out []string
	for _, imp := range d.Imports {
		if IsWellKnown(imp.Path) {
			continue
		}
		out = append(out, imp.Path)
	}
	return out
}

// TypeNames returns the names of the top-level messages and enums, unqualified
func (d *Document) TypeNames() []string {
	out := make([]string, 0, len(d.Messages)+len(d.Enums))
	for _, m := range d.Messages {
		out = append(out, m.Name)
	}
	for _, e := range d.Enums {
		out = append(out, e.Name)
	}
	return out
}

// FullTypeNames returns the full names (without leading dot) of every message
// and enum declared in the file, nested ones included
func (d *Document) FullTypeNames() []string {
	var out []string
	var walk func(m *Message)
	walk = func(m *Message) {
		out = append(out, m.FullName)
		for _, n := range m.Nested {
			switch v := n.(type) {
			case *Message:
				walk(v)
			case *Enum:
				out = append(out, v.FullName)
			}
		}
	}
	for _, m := range d.Messages {
		walk(m)
	}
	for _, e := range d.Enums {
		out = append(out, e.FullName)
	}
	return out
}

var scalarKeywords = map[string]string{
	"int32":    types.KeywordI32,
	"uint32":   types.KeywordI32,
	"sint32":   types.KeywordI32,
	"fixed32":  types.KeywordI32,
	"sfixed32": types.KeywordI32,
	"int64":    types.KeywordI64,
	"uint64":   types.KeywordI64,
	"sint64":   types.KeywordI64,
	"fixed64":  types.KeywordI64,
	"sfixed64": types.KeywordI64,
	"string":   types.KeywordString,
	"double":   types.KeywordDouble,
	"float":    types.KeywordDouble,
	"bool":     types.KeywordBool,
	"bytes":    types.KeywordBinary,
}

// BaseKeyword maps a scalar type name to its unified base type keyword
func BaseKeyword(name string) (string, bool) {
	k, ok := scalarKeywords[name]
	return k, ok
}

// IsWellKnown reports whether an import path names a google/protobuf file
func IsWellKnown(importPath string) bool {
	return strings.HasPrefix(importPath, "google/protobuf")
}

// Import is an import statement. Modifier is "", "weak" or "public".
type Import struct {
	Path     string
	Modifier string
}

// Definition is a message or enum nested in a message
type Definition interface {
	DefinitionName() string
}

type Message struct {
	Name     string
	FullName string
	Fields   []*Field
	Oneofs   []string
	// Nested holds nested messages and enums in source order
	Nested   []Definition
	Options  []types.Annotation
	Comments []types.Comment
	Loc      types.Location
}

func (m *Message) DefinitionName() string { return m.Name }

// Field is a message field. Map fields set KeyType; Type is then the value type.
type Field struct {
	Name     string
	FullName string
	Number   int
	// Label is "", "optional", "required" or "repeated"
	Label   string
	KeyType string
	Type    string
	// ResolvedType is Type after weak resolution
	ResolvedType string
	Map          bool
	// Oneof names the enclosing oneof, if any
	Oneof    string
	Options  []types.Annotation
	Comments []types.Comment
	Loc      types.Location
}

// Scope returns the full name of the declaration that encloses the field
func (f *Field) Scope() string {
	if i := strings.LastIndexByte(f.FullName, '.'); i >= 0 {
		return f.FullName[:i]
	}
	return ""
}

type Enum struct {
	Name     string
	FullName string
	Values   []*EnumValue
	Options  []types.Annotation
	Comments []types.Comment
	Loc      types.Location
}

func (e *Enum) DefinitionName() string { return e.Name }

type EnumValue struct {
	Name     string
	Number   int64
	Options  []types.Annotation
	Comments []types.Comment
	Loc      types.Location
}

type Service struct {
	Name     string
	FullName string
	Methods  []*Method
	Options  []types.Annotation
	Comments []types.Comment
	Loc      types.Location
}

type Method struct {
	Name                 string
	FullName             string
	RequestType          string
	ResponseType         string
	ResolvedRequestType  string
	ResolvedResponseType string
	StreamRequest        bool
	StreamResponse       bool
	Options              []types.Annotation
	Comments             []types.Comment
	Loc                  types.Location
}

// Extend is an `extend Foo { ... }` block. Its fields are parsed but not emitted.
type Extend struct {
	Extendee string
	Fields   []*Field
}
