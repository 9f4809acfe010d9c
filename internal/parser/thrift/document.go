// Package thrift parses the Thrift-like IDL syntax into a Document.
package thrift

import (
	"github.com/standardbeagle/idlunify/internal/types"
)

// StructKind is the declaration keyword of a struct-like definition
type StructKind string

const (
	KindStruct    StructKind = "struct"
	KindUnion     StructKind = "union"
	KindException StructKind = "exception"
)

// Document is the syntax tree of one .thrift file
type Document struct {
	Includes    []string
	CppIncludes []string
	Namespaces  []Namespace
	Typedefs    []*Typedef
	Consts      []*Const
	Enums       []*Enum
	Structs     []*Struct
	Services    []*Service
}

// Syntax implements parser.Document
func (d *Document) Syntax() types.Syntax { return types.SyntaxThrift }

// Dependencies implements parser.Document
func (d *Document) Dependencies() []string { return d.Includes }

// Namespace is a `namespace <scope> <name>` header
type Namespace struct {
	Scope string
	Name  string
}

// NamespaceFor returns the namespace declared for scope, if any
func (d *Document) NamespaceFor(scope string) (string, bool) {
	for _, ns := range d.Namespaces {
		if ns.Scope == scope {
			return ns.Name, true
		}
	}
	return "", false
}

type Typedef struct {
	Name        string
	Type        types.FieldType
	Annotations []types.Annotation
	Comments    []types.Comment
	Loc         types.Location
}

type Const struct {
	Name     string
	Type     types.FieldType
	Value    types.ConstValue
	Comments []types.Comment
	Loc      types.Location
}

type Enum struct {
	Name        string
	Members     []*EnumMember
	Annotations []types.Annotation
	Comments    []types.Comment
	Loc         types.Location
}

type EnumMember struct {
	Name        string
	Value       *int64
	Annotations []types.Annotation
	Comments    []types.Comment
	Loc         types.Location
}

type Struct struct {
	Kind        StructKind
	Name        string
	Fields      []*Field
	Annotations []types.Annotation
	Comments    []types.Comment
	Loc         types.Location
}

// Field is a struct field or function argument. ID is 0 when the source omits it.
type Field struct {
	ID           int
	Requiredness types.Requiredness
	Name         string
	Type         types.FieldType
	Default      types.ConstValue
	Annotations  []types.Annotation
	Comments     []types.Comment
	Loc          types.Location
}

type Service struct {
	Name        string
	Extends     string
	Functions   []*Function
	Annotations []types.Annotation
	Comments    []types.Comment
	Loc         types.Location
}

type Function struct {
	Name        string
	Oneway      bool
	ReturnType  types.FieldType
	Args        []*Field
	Throws      []*Field
	Annotations []types.Annotation
	Comments    []types.Comment
	Loc         types.Location
}
