package extension

import (
	"regexp"

	"github.com/standardbeagle/idlunify/internal/types"
)

// Dialect selects how annotation names are mapped to extraction keys
type Dialect int

const (
	DialectThrift Dialect = iota
	DialectProto
)

var (
	thriftPrefixRegExp = regexp.MustCompile(`^(agw\.|api\.|go\.tag)`)
	protoAPIRegExp     = regexp.MustCompile(`^\(api\.(.*)\)`)
	// older option conventions such as (api_method) = 'POST'
	protoOldRuleRegExp = regexp.MustCompile(`\(api_req\)\.|\(api_resp\)\.|\(api_method\)\.|\(pb_idl\.api_method\)\.|\(google\.api\.http\)\.`)
)

// ThriftKey strips the agw./api. prefix from an annotation name.
// ok is false when the annotation is not an extension annotation.
func ThriftKey(name string) (key string, ok bool) {
	m := thriftPrefixRegExp.FindString(name)
	if m == "" {
		return "", false
	}
	if m == goTagKey {
		return name, true
	}
	return name[len(m):], true
}

// ProtoKey maps an option name such as (api.position) or (api_req).query to its extraction key
func ProtoKey(name string) (key string, ok bool) {
	if protoAPIRegExp.MatchString(name) {
		return protoAPIRegExp.ReplaceAllString(name, "$1"), true
	}
	if protoOldRuleRegExp.MatchString(name) {
		return protoOldRuleRegExp.ReplaceAllString(name, ""), true
	}
	return "", false
}

// Key maps an annotation name for the dialect
func (d Dialect) Key(name string) (string, bool) {
	if d == DialectProto {
		return ProtoKey(name)
	}
	return ThriftKey(name)
}

// FromThriftAnnotation extracts the config of one Thrift annotation
func FromThriftAnnotation(name, value string, ignoreGoTag bool) (types.ExtensionConfig, bool) {
	key, ok := ThriftKey(name)
	if !ok {
		return types.ExtensionConfig{}, false
	}
	return Extract(key, value, ignoreGoTag), true
}

// FromProtoOption extracts the config of one Proto option
func FromProtoOption(name, value string, ignoreGoTag bool) (types.ExtensionConfig, bool) {
	key, ok := ProtoKey(name)
	if !ok {
		return types.ExtensionConfig{}, false
	}
	return Extract(key, value, ignoreGoTag), true
}
