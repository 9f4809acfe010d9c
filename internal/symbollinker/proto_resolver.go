package symbollinker

import (
	"strings"

	"github.com/standardbeagle/idlunify/internal/debug"
	"github.com/standardbeagle/idlunify/internal/parser/proto"
	"github.com/standardbeagle/idlunify/internal/types"
	"github.com/standardbeagle/idlunify/pkg/pathutil"
)

// AnyType is the full name of the well-known Any message
const AnyType = ".google.protobuf.Any"

// ProtoResolver links proto type references. References arrive the way the
// grammar left them: ".pkg.Type" when it could qualify them against the
// file's own declarations, the name as written otherwise.
//
// A linked identifier has a Value of <filename alias>.<Type> for imported
// types (or the package-relative name for local types) and a NamespaceValue
// of <unify namespace>.<Type>.
type ProtoResolver struct {
	*ResolutionContext
}

// NewProtoResolver indexes the entry file and its direct imports
func NewProtoResolver(rc *ResolutionContext) *ProtoResolver {
	r := &ProtoResolver{ResolutionContext: rc}
	doc, ok := rc.Entry.Document.(*proto.Document)
	if !ok {
		return r
	}

	rc.Namespace = doc.Package
	rc.UnifyNamespace = UnifyNamespace(doc.Package)
	for _, name := range doc.FullTypeNames() {
		rc.entryTypeNames[name] = true
	}

	for _, inc := range rc.Entry.Includes {
		dep, ok := inc.File.Document.(*proto.Document)
		if !ok {
			continue
		}
		alias := rc.addFile(pathutil.Base(inc.File.Path), dep.Package, dep.TypeNames())
		rc.IncludeRefer[inc.Spec] = alias
		debug.LogResolve("import %s as %s (package %q)", inc.Spec, alias, dep.Package)
	}
	return r
}

// Name returns the identifier of a declaration with full name fullName
// ("pkg.Outer.Inner"). depth is the number of enclosing declarations kept
// in the namespace value: 0 for top-level types, 1 for fields of a
// top-level message and nested types, and so on.
func (r *ProtoResolver) Name(name, fullName string, depth int) types.Identifier {
	parts := strings.Split(strings.TrimPrefix(fullName, "."), ".")
	cut := len(parts) - (depth + 1)
	if cut < 0 {
		cut = 0
	}
	namespace := DefaultNamespace
	if cut > 0 {
		namespace = strings.Join(parts[:cut], "_")
	}
	namespace = unsafeNamespaceChars.ReplaceAllString(namespace, "")
	return types.Identifier{
		Value:          name,
		NamespaceValue: namespace + "." + strings.Join(parts[cut:], "."),
	}
}

// Resolve links a type reference found in scope, the full name of the
// enclosing message or service without leading dot
func (r *ProtoResolver) Resolve(name, scope string) types.Identifier {
	if name == AnyType {
		return types.Identifier{Value: "any", NamespaceValue: DefaultNamespace + ".any"}
	}

	var (
		id types.Identifier
		ok bool
	)
	if strings.HasPrefix(name, ".") {
		id, ok = r.resolveQualified(name[1:], scope)
	} else {
		id, ok = r.resolveBare(name)
	}
	if !ok {
		r.markUnresolved(name)
		return types.Unresolved(name)
	}
	return id
}

func (r *ProtoResolver) local(fullName string) types.Identifier {
	name := fullName
	if r.Namespace != "" {
		name = strings.TrimPrefix(fullName, r.Namespace+".")
	}
	return types.Identifier{Value: name, NamespaceValue: r.UnifyNamespace + "." + name}
}

func (r *ProtoResolver) resolveQualified(name, scope string) (types.Identifier, bool) {
	if strings.HasPrefix(name, r.Namespace) && r.entryTypeNames[name] {
		return r.local(name), true
	}

	// partially qualified local reference, innermost scope first
	for s := scope; s != ""; s = parentScope(s) {
		if candidate := s + "." + name; r.entryTypeNames[candidate] {
			return r.local(candidate), true
		}
	}

	keys := r.namespacesByLength()
	filenames, typeName, namespace := r.matchNamespace(name, keys)

	// reference missing leading namespace segments of the entry package
	if len(filenames) == 0 && r.Namespace != "" {
		segments := strings.Split(r.Namespace, ".")
		for i := 1; i <= len(segments) && len(filenames) == 0; i++ {
			compound := strings.Join(segments[:i], ".") + "." + name
			filenames, typeName, namespace = r.matchNamespace(compound, keys)
		}
	}

	switch len(filenames) {
	case 0:
		return types.Identifier{}, false
	case 1:
		return r.imported(filenames[0], typeName, namespace), true
	}
	for _, filename := range filenames {
		for _, declared := range r.filenameTypeNames[filename] {
			if typeName == declared || strings.HasPrefix(typeName, declared+".") {
				return r.imported(filename, typeName, namespace), true
			}
		}
	}
	return types.Identifier{}, false
}

// matchNamespace finds the longest known namespace prefixing name
func (r *ProtoResolver) matchNamespace(name string, keys []string) (filenames []string, typeName, namespace string) {
	for _, key := range keys {
		switch {
		case key == "":
			typeName = name
		case strings.HasPrefix(name, key+"."):
			typeName = name[len(key)+1:]
		default:
			continue
		}
		return r.namespaceFilenames[key], typeName, key
	}
	return nil, "", ""
}

// resolveBare looks a name up in imported files, preferring files whose
// package encloses the entry package, closest first
func (r *ProtoResolver) resolveBare(name string) (types.Identifier, bool) {
	var ordered []string
	seen := make(map[string]bool)
	segments := strings.Split(r.Namespace, ".")
	for i := len(segments); i > 0; i-- {
		upper := strings.Join(segments[:i], ".")
		if files, ok := r.namespaceFilenames[upper]; ok && !seen[upper] {
			seen[upper] = true
			ordered = append(ordered, files...)
		}
	}
	for _, ns := range r.namespaces {
		if !seen[ns] {
			ordered = append(ordered, r.namespaceFilenames[ns]...)
		}
	}

	for _, filename := range ordered {
		for _, declared := range r.filenameTypeNames[filename] {
			if declared == name {
				return r.imported(filename, name, r.filenameNamespace[filename]), true
			}
		}
	}
	return types.Identifier{}, false
}

func (r *ProtoResolver) imported(filename, typeName, namespace string) types.Identifier {
	return types.Identifier{
		Value:          filename + "." + typeName,
		NamespaceValue: UnifyNamespace(namespace) + "." + typeName,
	}
}

// ResolveType converts a proto scalar or message reference to a field type
func (r *ProtoResolver) ResolveType(name, scope string) types.FieldType {
	if keyword, ok := proto.BaseKeyword(name); ok {
		return &types.BaseType{Keyword: keyword}
	}
	id := r.Resolve(name, scope)
	return &id
}

func parentScope(scope string) string {
	if i := strings.LastIndexByte(scope, '.'); i >= 0 {
		return scope[:i]
	}
	return ""
}
