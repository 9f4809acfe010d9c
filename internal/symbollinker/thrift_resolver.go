package symbollinker

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/idlunify/internal/debug"
	idlerrors "github.com/standardbeagle/idlunify/internal/errors"
	"github.com/standardbeagle/idlunify/internal/loader"
	"github.com/standardbeagle/idlunify/internal/parser/thrift"
	"github.com/standardbeagle/idlunify/internal/types"
)

// namespaceScopes are the namespace scopes used as-is, in order of preference
var namespaceScopes = []string{"js", "go", "py"}

// ThriftNamespace picks the namespace of a Thrift file. A file without any
// namespace gets the empty namespace and DefaultNamespace as unify namespace.
// A file declaring namespaces, none of them for a supported scope, fails with
// a MissingNamespace error.
func ThriftNamespace(file *loader.File) (namespace, unify string, err error) {
	doc, ok := file.Document.(*thrift.Document)
	if !ok || len(doc.Namespaces) == 0 {
		return "", UnifyNamespace(""), nil
	}
	for _, scope := range namespaceScopes {
		if ns, ok := doc.NamespaceFor(scope); ok {
			return ns, UnifyNamespace(ns), nil
		}
	}
	if java, ok := doc.NamespaceFor("java"); ok {
		ns := java[strings.LastIndexByte(java, '.')+1:]
		return ns, UnifyNamespace(ns), nil
	}
	return "", "", idlerrors.NewMissingNamespace(file.AbsPath)
}

// ThriftResolver fills namespace values of Thrift identifiers. References to
// included files are written as <filename>.<Type> and rewritten to
// <unify namespace>.<Type>.
type ThriftResolver struct {
	*ResolutionContext
	refer bool
}

// NewThriftResolver computes the entry namespace and, when refer is set, the
// namespaces of every directly included file
func NewThriftResolver(rc *ResolutionContext, refer bool) (*ThriftResolver, error) {
	ns, unify, err := ThriftNamespace(rc.Entry)
	if err != nil {
		return nil, err
	}
	rc.Namespace = ns
	rc.UnifyNamespace = unify

	r := &ThriftResolver{ResolutionContext: rc, refer: refer}
	if doc, ok := rc.Entry.Document.(*thrift.Document); ok {
		for _, e := range doc.Enums {
			rc.enumNames[e.Name] = true
		}
	}
	if !refer {
		return r, nil
	}

	for _, inc := range rc.Entry.Includes {
		_, unify, err := ThriftNamespace(inc.File)
		if err != nil {
			return nil, err
		}
		r.addInclude(inc.Spec, unify)
	}
	return r, nil
}

// addInclude maps the filename of an include spec to the included unify
// namespace. A later include with the same filename replaces the earlier one.
func (r *ThriftResolver) addInclude(spec, namespace string) {
	filename := includeFilename(spec)
	for i := range r.includes {
		if r.includes[i].filename == filename {
			r.includes[i].namespace = namespace
			return
		}
	}
	r.includes = append(r.includes, includeNamespace{
		filename:  filename,
		pattern:   regexp.MustCompile(`^` + regexp.QuoteMeta(filename) + `(\.[^.]*)$`),
		namespace: namespace,
	})
	debug.LogResolve("include %s -> %s", filename, namespace)
}

// Name returns the identifier of a declaration of the entry file
func (r *ThriftResolver) Name(name string) types.Identifier {
	id := types.Identifier{Value: name}
	if r.refer {
		id.NamespaceValue = r.UnifyNamespace + "." + name
	}
	return id
}

// ReferIdentifier returns id with its namespace value filled
func (r *ThriftResolver) ReferIdentifier(id types.Identifier) types.Identifier {
	if !r.refer {
		return id
	}
	value := id.Value
	if !strings.Contains(value, ".") {
		id.NamespaceValue = r.UnifyNamespace + "." + value
		return id
	}

	// Enum.MEMBER of a local enum
	if parts := strings.Split(value, "."); len(parts) == 2 && r.enumNames[parts[0]] {
		id.NamespaceValue = r.UnifyNamespace + "." + value
		return id
	}

	for _, inc := range r.includes {
		if m := inc.pattern.FindStringSubmatch(value); m != nil {
			id.NamespaceValue = inc.namespace + m[1]
			return id
		}
	}

	r.markUnresolved(value)
	return types.Unresolved(value)
}

// Refer returns a copy of t with every identifier linked.
// Parsed documents may be cached, so t itself is never modified.
func (r *ThriftResolver) Refer(t types.FieldType) types.FieldType {
	switch v := t.(type) {
	case *types.Identifier:
		id := r.ReferIdentifier(*v)
		return &id
	case *types.BaseType:
		c := *v
		return &c
	case *types.ListType:
		return &types.ListType{ValueType: r.Refer(v.ValueType)}
	case *types.SetType:
		return &types.SetType{ValueType: r.Refer(v.ValueType)}
	case *types.MapType:
		return &types.MapType{KeyType: r.Refer(v.KeyType), ValueType: r.Refer(v.ValueType)}
	}
	return t
}

// ReferConst returns a copy of v with identifiers inside lists and maps linked
func (r *ThriftResolver) ReferConst(v types.ConstValue) types.ConstValue {
	switch c := v.(type) {
	case *types.Identifier:
		id := r.ReferIdentifier(*c)
		return &id
	case *types.ConstLiteral:
		lit := *c
		return &lit
	case *types.ConstList:
		out := &types.ConstList{Elements: make([]types.ConstValue, len(c.Elements))}
		for i, e := range c.Elements {
			out.Elements[i] = r.ReferConst(e)
		}
		return out
	case *types.ConstMap:
		out := &types.ConstMap{Entries: make([]types.ConstMapEntry, len(c.Entries))}
		for i, e := range c.Entries {
			out.Entries[i] = types.ConstMapEntry{Key: r.ReferConst(e.Key), Value: r.ReferConst(e.Value)}
		}
		return out
	}
	return v
}

// includeFilename returns the last path segment of an include spec without extension
func includeFilename(spec string) string {
	loose := strings.TrimSuffix(spec, ".thrift")
	return loose[strings.LastIndexByte(loose, '/')+1:]
}
