package types

import "encoding/json"

// TypeKind discriminates the FieldType tagged union
type TypeKind string

const (
	TypeKindBase       TypeKind = "BaseType"
	TypeKindIdentifier TypeKind = "Identifier"
	TypeKindList       TypeKind = "ListType"
	TypeKindSet        TypeKind = "SetType"
	TypeKindMap        TypeKind = "MapType"
)

// Base type keywords of the unified model
const (
	KeywordString = "string"
	KeywordBinary = "binary"
	KeywordBool   = "bool"
	KeywordByte   = "byte"
	KeywordI8     = "i8"
	KeywordI16    = "i16"
	KeywordI32    = "i32"
	KeywordI64    = "i64"
	KeywordDouble = "double"
	KeywordVoid   = "void"
)

var baseKeywords = map[string]bool{
	KeywordString: true,
	KeywordBinary: true,
	KeywordBool:   true,
	KeywordByte:   true,
	KeywordI8:     true,
	KeywordI16:    true,
	KeywordI32:    true,
	KeywordI64:    true,
	KeywordDouble: true,
	KeywordVoid:   true,
}

// IsBaseKeyword reports whether name is a base type keyword
func IsBaseKeyword(name string) bool {
	return baseKeywords[name]
}

// FieldType is the type of a field, typedef, const or function result
type FieldType interface {
	TypeKind() TypeKind
}

// BaseType is a built-in scalar type
type BaseType struct {
	Keyword string `json:"keyword" yaml:"keyword"`
}

func (t *BaseType) TypeKind() TypeKind { return TypeKindBase }

// IsInteger reports whether the keyword is an integer kind
func (t *BaseType) IsInteger() bool {
	switch t.Keyword {
	case KeywordByte, KeywordI8, KeywordI16, KeywordI32, KeywordI64:
		return true
	}
	return false
}

// ListType is list<T> in Thrift and a repeated field in Proto
type ListType struct {
	ValueType FieldType `json:"valueType" yaml:"valueType"`
}

func (t *ListType) TypeKind() TypeKind { return TypeKindList }

// SetType is set<T>
type SetType struct {
	ValueType FieldType `json:"valueType" yaml:"valueType"`
}

func (t *SetType) TypeKind() TypeKind { return TypeKindSet }

// MapType is map<K, V>
type MapType struct {
	KeyType   FieldType `json:"keyType" yaml:"keyType"`
	ValueType FieldType `json:"valueType" yaml:"valueType"`
}

func (t *MapType) TypeKind() TypeKind { return TypeKindMap }

// Identifier names a declaration or references one.
// Value is the shortest form valid in the current file, NamespaceValue the
// namespace-qualified key. Unresolved marks a reference no known file declares;
// Value then holds the name as written.
type Identifier struct {
	Value          string `json:"value" yaml:"value"`
	NamespaceValue string `json:"namespaceValue,omitempty" yaml:"namespaceValue,omitempty"`
	Unresolved     bool   `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
}

func (id *Identifier) TypeKind() TypeKind   { return TypeKindIdentifier }
func (id *Identifier) ConstKind() ConstKind { return ConstKindIdentifier }

// NewIdentifier creates an identifier without namespace information
func NewIdentifier(value string) *Identifier {
	return &Identifier{Value: value}
}

// Unresolved creates the observable fallback for a reference that could not be linked
func Unresolved(name string) Identifier {
	return Identifier{Value: name, NamespaceValue: name, Unresolved: true}
}

// MarshalJSON adds the type discriminator. The value receiver covers
// declaration names held by value as well as references.
func (id Identifier) MarshalJSON() ([]byte, error) {
	type plain Identifier
	return json.Marshal(struct {
		Type TypeKind `json:"type"`
		plain
	}{TypeKindIdentifier, plain(id)})
}

// MarshalJSON adds the type discriminator
func (t *BaseType) MarshalJSON() ([]byte, error) {
	type plain BaseType
	return json.Marshal(struct {
		Type TypeKind `json:"type"`
		*plain
	}{t.TypeKind(), (*plain)(t)})
}

// MarshalJSON adds the type discriminator
func (t *ListType) MarshalJSON() ([]byte, error) {
	type plain ListType
	return json.Marshal(struct {
		Type TypeKind `json:"type"`
		*plain
	}{t.TypeKind(), (*plain)(t)})
}

// MarshalJSON adds the type discriminator
func (t *SetType) MarshalJSON() ([]byte, error) {
	type plain SetType
	return json.Marshal(struct {
		Type TypeKind `json:"type"`
		*plain
	}{t.TypeKind(), (*plain)(t)})
}

// MarshalJSON adds the type discriminator
func (t *MapType) MarshalJSON() ([]byte, error) {
	type plain MapType
	return json.Marshal(struct {
		Type TypeKind `json:"type"`
		*plain
	}{t.TypeKind(), (*plain)(t)})
}
