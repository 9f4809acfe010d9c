package types

import "encoding/json"

// ConstKind discriminates the ConstValue tagged union
type ConstKind string

const (
	ConstKindInt        ConstKind = "IntConstant"
	ConstKindDouble     ConstKind = "DoubleConstant"
	ConstKindString     ConstKind = "StringLiteral"
	ConstKindBool       ConstKind = "BooleanLiteral"
	ConstKindIdentifier ConstKind = "Identifier"
	ConstKindList       ConstKind = "ConstList"
	ConstKindMap        ConstKind = "ConstMap"
)

// ConstValue is a constant initializer or field default
type ConstValue interface {
	ConstKind() ConstKind
}

// ConstLiteral is a scalar constant. Value keeps the source spelling
// (strings are stored unquoted).
type ConstLiteral struct {
	Literal ConstKind `json:"-" yaml:"kind"`
	Value   string    `json:"value" yaml:"value"`
}

func (c *ConstLiteral) ConstKind() ConstKind { return c.Literal }

// ConstList is [a, b, c]
type ConstList struct {
	Elements []ConstValue `json:"elements" yaml:"elements"`
}

func (c *ConstList) ConstKind() ConstKind { return ConstKindList }

// ConstMapEntry is one key: value pair of a ConstMap
type ConstMapEntry struct {
	Key   ConstValue `json:"key" yaml:"key"`
	Value ConstValue `json:"value" yaml:"value"`
}

// ConstMap is {k: v, ...}
type ConstMap struct {
	Entries []ConstMapEntry `json:"entries" yaml:"entries"`
}

func (c *ConstMap) ConstKind() ConstKind { return ConstKindMap }

// MarshalJSON adds the constant discriminator
func (c *ConstLiteral) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  ConstKind `json:"type"`
		Value string    `json:"value"`
	}{c.Literal, c.Value})
}

// MarshalJSON adds the constant discriminator
func (c *ConstList) MarshalJSON() ([]byte, error) {
	type plain ConstList
	return json.Marshal(struct {
		Type ConstKind `json:"type"`
		*plain
	}{c.ConstKind(), (*plain)(c)})
}

// MarshalJSON adds the constant discriminator
func (c *ConstMap) MarshalJSON() ([]byte, error) {
	type plain ConstMap
	return json.Marshal(struct {
		Type ConstKind `json:"type"`
		*plain
	}{c.ConstKind(), (*plain)(c)})
}
