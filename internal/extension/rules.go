// Package extension normalizes HTTP-binding annotations into a types.ExtensionConfig.
//
// Extraction is an ordered table of rules. For a given (key, value) pair the
// first rule whose predicate accepts the key decides the result.
package extension

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/idlunify/internal/types"
)

// Input is one annotation after its dialect prefix has been stripped
type Input struct {
	Key         string
	Value       string
	IgnoreGoTag bool
}

// Rule is one entry of the extraction table
type Rule struct {
	Name      string
	Match     func(in Input) bool
	Transform func(in Input) types.ExtensionConfig
}

// Positions a field can be bound to
var positions = map[string]bool{
	"query":       true,
	"body":        true,
	"path":        true,
	"header":      true,
	"entire_body": true,
	"raw_body":    true,
	"status_code": true,
}

var upperMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"HEAD":    true,
	"OPTIONS": true,
}

var lowerMethods = map[string]bool{
	"get":     true,
	"post":    true,
	"put":     true,
	"delete":  true,
	"patch":   true,
	"head":    true,
	"options": true,
}

var serializers = map[string]bool{
	"json":       true,
	"form":       true,
	"urlencoded": true,
}

// Keys copied verbatim into the matching config slot
var plainKeys = map[string]func(c *types.ExtensionConfig, v string){
	"uri_prefix": func(c *types.ExtensionConfig, v string) { c.URIPrefix = v },
	"uri":        func(c *types.ExtensionConfig, v string) { c.URI = v },
	"group":      func(c *types.ExtensionConfig, v string) { c.Group = v },
	"custom":     func(c *types.ExtensionConfig, v string) { c.Custom = v },
	"version":    func(c *types.ExtensionConfig, v string) { c.Version = v },
	"key":        func(c *types.ExtensionConfig, v string) { c.Key = v },
	"web_type":   func(c *types.ExtensionConfig, v string) { c.WebType = v },
	"value_type": func(c *types.ExtensionConfig, v string) { c.ValueType = v },
	"tag":        func(c *types.ExtensionConfig, v string) { c.Tag = v },
	"position": func(c *types.ExtensionConfig, v string) {
		if positions[v] {
			c.Position = v
		}
	},
	"serializer": func(c *types.ExtensionConfig, v string) {
		if serializers[v] {
			c.Serializer = v
		}
	},
}

var jsonTagRegExp = regexp.MustCompile(`(?:^|\s)json:"([^"]*)"`)

const goTagKey = "go.tag"

var rules = []Rule{
	{
		Name:      "go.tag",
		Match:     func(in Input) bool { return in.Key == goTagKey },
		Transform: goTag,
	},
	{
		Name:  "source/target",
		Match: func(in Input) bool { return in.Key == "source" || in.Key == "target" },
		Transform: func(in Input) types.ExtensionConfig {
			if in.Key == "target" && in.Value == "http_code" {
				return types.ExtensionConfig{Position: "status_code"}
			}
			if positions[in.Value] {
				return types.ExtensionConfig{Position: in.Value}
			}
			return types.ExtensionConfig{}
		},
	},
	{
		Name:  "method",
		Match: func(in Input) bool { return in.Key == "method" },
		Transform: func(in Input) types.ExtensionConfig {
			method := strings.TrimSpace(strings.Split(in.Value, "|")[0])
			if upperMethods[method] {
				return types.ExtensionConfig{Method: method}
			}
			return types.ExtensionConfig{}
		},
	},
	{
		Name:  "position as key",
		Match: func(in Input) bool { return positions[in.Key] },
		Transform: func(in Input) types.ExtensionConfig {
			key, tag := splitKeyValue(in.Value)
			return types.ExtensionConfig{Position: in.Key, Key: key, Tag: tag}
		},
	},
	{
		Name:  "http verb",
		Match: func(in Input) bool { return lowerMethods[in.Key] },
		Transform: func(in Input) types.ExtensionConfig {
			return types.ExtensionConfig{Method: strings.ToUpper(in.Key), URI: in.Value}
		},
	},
	{
		Name: "plain key",
		Match: func(in Input) bool {
			_, ok := plainKeys[in.Key]
			return ok
		},
		Transform: func(in Input) types.ExtensionConfig {
			var c types.ExtensionConfig
			if in.Value != "" {
				plainKeys[in.Key](&c, in.Value)
			}
			return c
		},
	},
	{
		Name:  "req.headers",
		Match: func(in Input) bool { return in.Key == "req.headers" },
		Transform: func(in Input) types.ExtensionConfig {
			switch {
			case strings.Contains(in.Value, "application/json"):
				return types.ExtensionConfig{Serializer: "json"}
			case strings.Contains(in.Value, "multipart/form-data"):
				return types.ExtensionConfig{Serializer: "form"}
			case strings.Contains(in.Value, "x-www-form-urlencoded"):
				return types.ExtensionConfig{Serializer: "urlencoded"}
			}
			return types.ExtensionConfig{}
		},
	},
	{
		Name:  "js_conv",
		Match: func(in Input) bool { return in.Key == "js_conv" },
		Transform: func(in Input) types.ExtensionConfig {
			switch in.Value {
			case "str", "string", "true":
				return types.ExtensionConfig{Tag: TagInt2Str}
			}
			return types.ExtensionConfig{}
		},
	},
}

// Tags with a meaning for the assembler
const (
	TagIgnore    = "ignore"
	TagOmitEmpty = "omitempty"
	TagRequired  = "required"
	TagInt2Str   = "int2str"
)

// Rules returns a copy of the extraction table in priority order
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Extract applies the first matching rule to key and value.
// Unknown keys yield an empty config.
func Extract(key, value string, ignoreGoTag bool) types.ExtensionConfig {
	in := Input{Key: key, Value: value, IgnoreGoTag: ignoreGoTag}
	for _, r := range rules {
		if r.Match(in) {
			return r.Transform(in)
		}
	}
	logUnknownKey(key)
	return types.ExtensionConfig{}
}

func goTag(in Input) types.ExtensionConfig {
	if in.IgnoreGoTag {
		return types.ExtensionConfig{}
	}
	m := jsonTagRegExp.FindStringSubmatch(in.Value)
	if m == nil {
		return types.ExtensionConfig{}
	}

	parts := strings.Split(m[1], ",")
	if parts[0] == "-" {
		return types.ExtensionConfig{Tag: TagIgnore}
	}

	c := types.ExtensionConfig{Key: parts[0]}
	var tags []string
	for _, opt := range parts[1:] {
		switch opt {
		case TagOmitEmpty, TagRequired:
			tags = append(tags, opt)
		case "string":
			c.ValueType = types.KeywordString
		}
	}
	c.Tag = strings.Join(tags, ",")
	return c
}

// splitKeyValue turns "name[], omitempty" into ("name", "omitempty")
func splitKeyValue(value string) (string, string) {
	parts := strings.Split(value, ",")
	key := strings.TrimSuffix(strings.TrimSpace(parts[0]), "[]")

	var tags []string
	for _, p := range parts[1:] {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return key, strings.Join(tags, ",")
}
