package unify

import (
	"strings"

	"github.com/standardbeagle/idlunify/internal/extension"
	idlerrors "github.com/standardbeagle/idlunify/internal/errors"
	"github.com/standardbeagle/idlunify/internal/types"
)

// fieldConfig merges the extension annotations of a field and rejects path
// parameters whose type cannot appear in a URI
func fieldConfig(d extension.Dialect, field, owner string, fieldType types.FieldType, anns []types.Annotation, opts Options) (types.ExtensionConfig, error) {
	c := extension.FieldConfig(d, anns, field, opts.IgnoreGoTag)
	if c.Position == "path" && !pathParamType(d, fieldType) {
		return c, idlerrors.NewInvalidPathParam(field, owner)
	}
	return c, nil
}

// nonPathKeywords are the base types each dialect refuses as path parameters.
// Thrift refuses byte but keeps binary; Proto refuses bytes.
var nonPathKeywords = map[extension.Dialect]map[string]bool{
	extension.DialectThrift: {
		types.KeywordDouble: true, types.KeywordBool: true, types.KeywordByte: true, types.KeywordVoid: true,
	},
	extension.DialectProto: {
		types.KeywordDouble: true, types.KeywordBool: true, types.KeywordBinary: true, types.KeywordVoid: true,
	},
}

// pathParamType reports whether t may be bound to a URI path segment
func pathParamType(d extension.Dialect, t types.FieldType) bool {
	switch v := t.(type) {
	case *types.BaseType:
		return !nonPathKeywords[d][v.Keyword]
	case *types.ListType, *types.SetType, *types.MapType:
		return false
	}
	return true
}

func hasTag(c types.ExtensionConfig, tag string) bool {
	return strings.Contains(c.Tag, tag)
}

// applyTags rewrites a converted field according to its extension tags.
// It reports false when the field is to be dropped.
func applyTags(f *types.FieldDefinition, opts Options) bool {
	c := f.ExtensionConfig
	if hasTag(c, extension.TagInt2Str) {
		f.FieldType = intToString(f.FieldType)
	}
	return opts.IgnoreGoTagDash || !hasTag(c, extension.TagIgnore)
}

// intToString replaces integer base types with string, through list, set
// and map value types
func intToString(t types.FieldType) types.FieldType {
	switch v := t.(type) {
	case *types.BaseType:
		if v.IsInteger() {
			return &types.BaseType{Keyword: types.KeywordString}
		}
	case *types.ListType:
		return &types.ListType{ValueType: intToString(v.ValueType)}
	case *types.SetType:
		return &types.SetType{ValueType: intToString(v.ValueType)}
	case *types.MapType:
		return &types.MapType{KeyType: v.KeyType, ValueType: intToString(v.ValueType)}
	}
	return t
}

// cloneComments copies a comment list so revision never writes into a cached document
func cloneComments(cs []types.Comment) []types.Comment {
	return append(make([]types.Comment, 0, len(cs)), cs...)
}

func cloneAnnotations(anns []types.Annotation) []types.Annotation {
	if len(anns) == 0 {
		return nil
	}
	return append([]types.Annotation(nil), anns...)
}
