// Package symbollinker links type references of an entry IDL file to the
// declarations of the files it includes or imports.
//
// All linking state lives in a ResolutionContext owned by one parse call.
// Resolvers never share state across calls; the only long-lived store is the
// document cache of the loader.
package symbollinker

import (
	"regexp"
	"sort"
	"strings"

	"github.com/standardbeagle/idlunify/internal/debug"
	"github.com/standardbeagle/idlunify/internal/loader"
)

// DefaultNamespace stands in for a file without a namespace or package
const DefaultNamespace = "root"

var unsafeNamespaceChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// UnifyNamespace collapses a dotted namespace into one identifier-safe token:
// "a.b-c" becomes "a_bc" and the empty namespace becomes DefaultNamespace.
func UnifyNamespace(namespace string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return unsafeNamespaceChars.ReplaceAllString(strings.ReplaceAll(namespace, ".", "_"), "")
}

// ResolutionContext is the linking state of one parse call
type ResolutionContext struct {
	Entry *loader.File

	// Namespace is the namespace of the entry file as declared
	Namespace string
	// UnifyNamespace is the canonical namespace of the entry file
	UnifyNamespace string
	// IncludeRefer maps import paths to the filename alias used in references
	IncludeRefer map[string]string

	// Thrift
	enumNames map[string]bool
	includes  []includeNamespace

	// Proto
	entryTypeNames     map[string]bool
	namespaces         []string
	namespaceFilenames map[string][]string
	filenameTypeNames  map[string][]string
	filenameNamespace  map[string]string

	unresolved []string
}

type includeNamespace struct {
	filename  string
	pattern   *regexp.Regexp
	namespace string
}

// NewResolutionContext creates an empty context for entry
func NewResolutionContext(entry *loader.File) *ResolutionContext {
	return &ResolutionContext{
		Entry:              entry,
		IncludeRefer:       make(map[string]string),
		enumNames:          make(map[string]bool),
		entryTypeNames:     make(map[string]bool),
		namespaceFilenames: make(map[string][]string),
		filenameTypeNames:  make(map[string][]string),
		filenameNamespace:  make(map[string]string),
	}
}

// Unresolved returns every reference that could not be linked, in the order met
func (c *ResolutionContext) Unresolved() []string {
	return append([]string(nil), c.unresolved...)
}

func (c *ResolutionContext) markUnresolved(name string) {
	debug.LogResolve("unresolved reference %q in %s", name, c.Entry.Path)
	c.unresolved = append(c.unresolved, name)
}

// addFile registers an imported proto file under a unique filename alias
func (c *ResolutionContext) addFile(filename, namespace string, typeNames []string) string {
	alias := filename
	for {
		if _, taken := c.filenameTypeNames[alias]; !taken {
			break
		}
		alias += "x"
	}

	if _, ok := c.namespaceFilenames[namespace]; !ok {
		c.namespaces = append(c.namespaces, namespace)
	}
	c.namespaceFilenames[namespace] = append(c.namespaceFilenames[namespace], alias)
	c.filenameTypeNames[alias] = typeNames
	c.filenameNamespace[alias] = namespace
	return alias
}

// namespacesByLength returns the known namespaces, longest first.
// Namespaces of equal length keep registration order.
func (c *ResolutionContext) namespacesByLength() []string {
	keys := append([]string(nil), c.namespaces...)
	sort.SliceStable(keys, func(i, j int) bool {
		return len(keys[i]) > len(keys[j])
	})
	return keys
}
