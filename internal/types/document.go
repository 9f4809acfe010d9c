// Package types holds the unified, syntax-independent document model produced
// from Thrift-like and Proto-like interface definitions.
package types

import "encoding/json"

// Syntax identifies the surface syntax of an IDL file
type Syntax string

const (
	SyntaxThrift Syntax = "thrift"
	SyntaxProto  Syntax = "proto"
)

// Extension returns the file extension (with dot) used by the syntax
func (s Syntax) Extension() string {
	return "." + string(s)
}

// UnifyDocument is the result of one top-level parse call.
// It is not modified after being returned.
type UnifyDocument struct {
	Namespace      string            `json:"namespace" yaml:"namespace"`
	UnifyNamespace string            `json:"unifyNamespace" yaml:"unifyNamespace"`
	Includes       []string          `json:"includes" yaml:"includes"`
	IncludeRefer   map[string]string `json:"includeRefer" yaml:"includeRefer"`
	Statements     []Statement       `json:"statements" yaml:"statements"`
}

// StatementKind discriminates the UnifyStatement tagged union
type StatementKind string

const (
	KindTypedef StatementKind = "TypedefDefinition"
	KindEnum    StatementKind = "EnumDefinition"
	KindConst   StatementKind = "ConstDefinition"
	KindStruct  StatementKind = "StructDefinition"
	KindService StatementKind = "ServiceDefinition"
)

// Statement is one top-level declaration of a UnifyDocument
type Statement interface {
	Kind() StatementKind
	StatementName() *Identifier
}

// Requiredness of a field. The zero value means "default".
type Requiredness string

const (
	RequirednessDefault  Requiredness = ""
	RequirednessRequired Requiredness = "required"
	RequirednessOptional Requiredness = "optional"
)

// Annotation is a raw key/value annotation (Thrift) or option (Proto) as written in source
type Annotation struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// TypedefDefinition aliases a field type under a new name
type TypedefDefinition struct {
	Name           Identifier   `json:"name" yaml:"name"`
	DefinitionType FieldType    `json:"definitionType" yaml:"definitionType"`
	Comments       []Comment    `json:"comments" yaml:"comments"`
	Annotations    []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Loc            Location     `json:"loc" yaml:"loc"`
}

func (d *TypedefDefinition) Kind() StatementKind        { return KindTypedef }
func (d *TypedefDefinition) StatementName() *Identifier { return &d.Name }

// EnumDefinition is an enumeration with its members
type EnumDefinition struct {
	Name        Identifier    `json:"name" yaml:"name"`
	Members     []*EnumMember `json:"members" yaml:"members"`
	Comments    []Comment     `json:"comments" yaml:"comments"`
	Annotations []Annotation  `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Loc         Location      `json:"loc" yaml:"loc"`
}

func (d *EnumDefinition) Kind() StatementKind        { return KindEnum }
func (d *EnumDefinition) StatementName() *Identifier { return &d.Name }

// EnumMember is one enumerator. Initializer is nil when the source omits it.
type EnumMember struct {
	Name        Identifier   `json:"name" yaml:"name"`
	Initializer *int64       `json:"initializer,omitempty" yaml:"initializer,omitempty"`
	Comments    []Comment    `json:"comments" yaml:"comments"`
	Annotations []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Loc         Location     `json:"loc" yaml:"loc"`
}

func (m *EnumMember) EndLine() int            { return m.Loc.End.Line }
func (m *EnumMember) CommentList() *[]Comment { return &m.Comments }

// ConstDefinition is a named constant
type ConstDefinition struct {
	Name        Identifier   `json:"name" yaml:"name"`
	FieldType   FieldType    `json:"fieldType" yaml:"fieldType"`
	Initializer ConstValue   `json:"initializer" yaml:"initializer"`
	Comments    []Comment    `json:"comments" yaml:"comments"`
	Annotations []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Loc         Location     `json:"loc" yaml:"loc"`
}

func (d *ConstDefinition) Kind() StatementKind        { return KindConst }
func (d *ConstDefinition) StatementName() *Identifier { return &d.Name }

// StructDefinition covers Thrift struct, union and exception as well as Proto messages.
// Unions and exceptions are folded into plain structs; union fields become optional.
// Nested holds Proto nested messages and enums in source order.
type StructDefinition struct {
	Name        Identifier         `json:"name" yaml:"name"`
	Fields      []*FieldDefinition `json:"fields" yaml:"fields"`
	Nested      []Statement        `json:"nested,omitempty" yaml:"nested,omitempty"`
	Comments    []Comment          `json:"comments" yaml:"comments"`
	Annotations []Annotation       `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Loc         Location           `json:"loc" yaml:"loc"`
}

func (d *StructDefinition) Kind() StatementKind        { return KindStruct }
func (d *StructDefinition) StatementName() *Identifier { return &d.Name }

// FieldDefinition is a struct field, function argument or exception slot
type FieldDefinition struct {
	ID              int             `json:"id" yaml:"id"`
	Name            Identifier      `json:"name" yaml:"name"`
	FieldType       FieldType       `json:"fieldType" yaml:"fieldType"`
	Requiredness    Requiredness    `json:"requiredness,omitempty" yaml:"requiredness,omitempty"`
	DefaultValue    ConstValue      `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Comments        []Comment       `json:"comments" yaml:"comments"`
	Annotations     []Annotation    `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	ExtensionConfig ExtensionConfig `json:"extensionConfig" yaml:"extensionConfig"`
	Loc             Location        `json:"loc" yaml:"loc"`
}

func (f *FieldDefinition) EndLine() int            { return f.Loc.End.Line }
func (f *FieldDefinition) CommentList() *[]Comment { return &f.Comments }

// ServiceDefinition groups functions (Thrift) or rpc methods (Proto)
type ServiceDefinition struct {
	Name            Identifier            `json:"name" yaml:"name"`
	Extends         *Identifier           `json:"extends,omitempty" yaml:"extends,omitempty"`
	Functions       []*FunctionDefinition `json:"functions" yaml:"functions"`
	Comments        []Comment             `json:"comments" yaml:"comments"`
	Annotations     []Annotation          `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	ExtensionConfig ExtensionConfig       `json:"extensionConfig" yaml:"extensionConfig"`
	Loc             Location              `json:"loc" yaml:"loc"`
}

func (d *ServiceDefinition) Kind() StatementKind        { return KindService }
func (d *ServiceDefinition) StatementName() *Identifier { return &d.Name }

// FunctionDefinition is one service function. Proto methods carry a single
// synthetic "request" argument.
type FunctionDefinition struct {
	Name            Identifier         `json:"name" yaml:"name"`
	ReturnType      FieldType          `json:"returnType" yaml:"returnType"`
	Fields          []*FieldDefinition `json:"fields" yaml:"fields"`
	Throws          []*FieldDefinition `json:"throws" yaml:"throws"`
	Oneway          bool               `json:"oneway" yaml:"oneway"`
	StreamRequest   bool               `json:"streamRequest,omitempty" yaml:"streamRequest,omitempty"`
	StreamResponse  bool               `json:"streamResponse,omitempty" yaml:"streamResponse,omitempty"`
	Comments        []Comment          `json:"comments" yaml:"comments"`
	Annotations     []Annotation       `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	ExtensionConfig ExtensionConfig    `json:"extensionConfig" yaml:"extensionConfig"`
	Loc             Location           `json:"loc" yaml:"loc"`
}

func (f *FunctionDefinition) EndLine() int            { return f.Loc.End.Line }
func (f *FunctionDefinition) CommentList() *[]Comment { return &f.Comments }

// Position is a 1-based line/column pair
type Position struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Location is the source span of a declaration or comment
type Location struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// MarshalJSON adds the statement discriminator
func (d *TypedefDefinition) MarshalJSON() ([]byte, error) {
	type plain TypedefDefinition
	return json.Marshal(struct {
		Type StatementKind `json:"type"`
		*plain
	}{d.Kind(), (*plain)(d)})
}

// MarshalJSON adds the statement discriminator
func (d *EnumDefinition) MarshalJSON() ([]byte, error) {
	type plain EnumDefinition
	return json.Marshal(struct {
		Type StatementKind `json:"type"`
		*plain
	}{d.Kind(), (*plain)(d)})
}

// MarshalJSON adds the statement discriminator
func (d *ConstDefinition) MarshalJSON() ([]byte, error) {
	type plain ConstDefinition
	return json.Marshal(struct {
		Type StatementKind `json:"type"`
		*plain
	}{d.Kind(), (*plain)(d)})
}

// MarshalJSON adds the statement discriminator
func (d *StructDefinition) MarshalJSON() ([]byte, error) {
	type plain StructDefinition
	return json.Marshal(struct {
		Type StatementKind `json:"type"`
		*plain
	}{d.Kind(), (*plain)(d)})
}

// MarshalJSON adds the statement discriminator
func (d *ServiceDefinition) MarshalJSON() ([]byte, error) {
	type plain ServiceDefinition
	return json.Marshal(struct {
		Type StatementKind `json:"type"`
		*plain
	}{d.Kind(), (*plain)(d)})
}
