package extension

import (
	"github.com/standardbeagle/idlunify/internal/types"
)

// Merge overlays src onto dst. Set fields of src win, except Tag, where both
// values are kept comma-joined.
func Merge(dst, src types.ExtensionConfig) types.ExtensionConfig {
	tag := dst.Tag
	if src.Tag != "" {
		if tag != "" {
			tag += "," + src.Tag
		} else {
			tag = src.Tag
		}
	}

	overlay(&dst.Position, src.Position)
	overlay(&dst.Key, src.Key)
	overlay(&dst.Method, src.Method)
	overlay(&dst.URI, src.URI)
	overlay(&dst.URIPrefix, src.URIPrefix)
	overlay(&dst.Serializer, src.Serializer)
	overlay(&dst.Group, src.Group)
	overlay(&dst.Custom, src.Custom)
	overlay(&dst.Version, src.Version)
	overlay(&dst.WebType, src.WebType)
	overlay(&dst.ValueType, src.ValueType)
	dst.Tag = tag
	return dst
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// FilterField keeps the slots meaningful on a struct field
func FilterField(c types.ExtensionConfig) types.ExtensionConfig {
	return types.ExtensionConfig{
		Position:  c.Position,
		Key:       c.Key,
		WebType:   c.WebType,
		ValueType: c.ValueType,
		Tag:       c.Tag,
	}
}

// FilterFunction keeps the slots meaningful on a service function
func FilterFunction(c types.ExtensionConfig) types.ExtensionConfig {
	return types.ExtensionConfig{
		Method:     c.Method,
		URI:        c.URI,
		Serializer: c.Serializer,
		Group:      c.Group,
		Custom:     c.Custom,
		Version:    c.Version,
	}
}

// FilterService keeps the slots meaningful on a service
func FilterService(c types.ExtensionConfig) types.ExtensionConfig {
	return types.ExtensionConfig{
		URIPrefix: c.URIPrefix,
		Group:     c.Group,
		Custom:    c.Custom,
		Version:   c.Version,
	}
}

// Collect extracts and merges every extension annotation in anns.
// A key equal to fieldName is dropped; pass "" for non-field declarations.
func Collect(d Dialect, anns []types.Annotation, fieldName string, ignoreGoTag bool) types.ExtensionConfig {
	var merged types.ExtensionConfig
	for _, a := range anns {
		key, ok := d.Key(a.Key)
		if !ok {
			continue
		}
		c := Extract(key, a.Value, ignoreGoTag)
		if fieldName != "" && c.Key == fieldName {
			c.Key = ""
		}
		merged = Merge(merged, c)
	}
	return merged
}

// FieldConfig is the filtered config of a struct field
func FieldConfig(d Dialect, anns []types.Annotation, fieldName string, ignoreGoTag bool) types.ExtensionConfig {
	return FilterField(Collect(d, anns, fieldName, ignoreGoTag))
}

// FunctionConfig is the filtered config of a service function
func FunctionConfig(d Dialect, anns []types.Annotation, ignoreGoTag bool) types.ExtensionConfig {
	return FilterFunction(Collect(d, anns, "", ignoreGoTag))
}

// ServiceConfig is the filtered config of a service
func ServiceConfig(d Dialect, anns []types.Annotation, ignoreGoTag bool) types.ExtensionConfig {
	return FilterService(Collect(d, anns, "", ignoreGoTag))
}
