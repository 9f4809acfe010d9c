// Package loader turns logical IDL paths into parsed documents: it resolves
// includes and imports against a root directory, search paths or a virtual
// content map, runs the syntax-specific grammar and optionally keeps the
// result in a DocumentCache.
package loader

import (
	"context"
	"errors"
	"path"

	"github.com/standardbeagle/idlunify/internal/debug"
	idlerrors "github.com/standardbeagle/idlunify/internal/errors"
	"github.com/standardbeagle/idlunify/internal/parser"
	"github.com/standardbeagle/idlunify/internal/parser/proto"
	"github.com/standardbeagle/idlunify/internal/parser/thrift"
	"github.com/standardbeagle/idlunify/internal/types"
	"github.com/standardbeagle/idlunify/pkg/pathutil"
)

// Options control where files are looked up and how their content is prepared
type Options struct {
	Root        string
	SearchPaths []string
	// Preprocess rewrites source text before parsing. It receives the logical path.
	Preprocess func(content, path string) string
	// FileContentMap replaces disk access when non-nil
	FileContentMap map[string]string
	// Cache is consulted and filled when non-nil
	Cache *DocumentCache
}

// File is one loaded IDL file
type File struct {
	// Path is the logical path with extension, in POSIX form
	Path     string
	AbsPath  string
	Syntax   types.Syntax
	Document parser.Document
	// Includes are filled by Load in declaration order
	Includes []Include
}

// Include is one resolved include or import of a file
type Include struct {
	// Spec is the path as written in the including file
	Spec string
	File *File
}

// LoosePath returns the logical path without extension
func (f *File) LoosePath() string {
	return pathutil.TrimExt(f.Path)
}

// Loader loads the files reachable from one entry file. A Loader is used by a
// single parse call; only the DocumentCache outlives it.
type Loader struct {
	fs      FileSystem
	opts    Options
	parsers map[types.Syntax]parser.Func
}

// New creates a loader. A nil fs means the real file system.
func New(opts Options, fs FileSystem) *Loader {
	if fs == nil {
		fs = &RealFileSystem{}
	}
	return &Loader{
		fs:   fs,
		opts: opts,
		parsers: map[types.Syntax]parser.Func{
			types.SyntaxThrift: thrift.ParseDocument,
			types.SyntaxProto:  proto.ParseDocument,
		},
	}
}

// SyntaxOf returns the syntax selected by the extension of p
func SyntaxOf(p string) (types.Syntax, bool) {
	switch path.Ext(p) {
	case types.SyntaxThrift.Extension():
		return types.SyntaxThrift, true
	case types.SyntaxProto.Extension():
		return types.SyntaxProto, true
	}
	return "", false
}

// IsIDL reports whether p names a Thrift or Proto file
func IsIDL(p string) bool {
	_, ok := SyntaxOf(p)
	return ok
}

// Load loads the entry file and every file it transitively includes.
// The returned File has its Includes filled; a file that includes itself,
// directly or not, fails with an ImportCycle error.
func (l *Loader) Load(ctx context.Context, entryPath string) (*File, error) {
	syntax, ok := SyntaxOf(entryPath)
	if !ok {
		return nil, idlerrors.NewInvalidInput(entryPath)
	}
	entry, err := l.loadEntry(entryPath, syntax)
	if err != nil {
		return nil, err
	}
	w := &walker{loader: l, done: make(map[string]*File), onStack: make(map[string]int)}
	if err := w.visit(ctx, entry, nil); err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *Loader) loadEntry(entryPath string, syntax types.Syntax) (*File, error) {
	if l.opts.FileContentMap != nil {
		content, ok := l.opts.FileContentMap[entryPath]
		if !ok {
			return nil, idlerrors.NewFileNotFoundInMap(entryPath)
		}
		logical := pathutil.ToPosix(entryPath)
		return l.parse(logical, pathutil.Resolve(l.opts.Root, logical), content, syntax)
	}

	candidates := l.candidates(pathutil.ToPosix(entryPath))
	for _, abs := range candidates {
		if l.fs.IsFile(abs) {
			return l.read(abs, syntax)
		}
	}
	return nil, idlerrors.NewFileNotFound(candidates[0])
}

// loadInclude resolves spec relative to the including file first, then as
// written against the root and search paths
func (l *Loader) loadInclude(from *File, spec string) (*File, error) {
	ext := from.Syntax.Extension()
	loose := pathutil.TrimExt(pathutil.ToPosix(spec))
	rel := pathutil.Join(pathutil.Dir(from.Path), loose) + ext
	alt := pathutil.Join(loose) + ext

	if l.opts.FileContentMap != nil {
		for _, key := range []string{rel, alt} {
			if content, ok := l.opts.FileContentMap[key]; ok {
				return l.parse(key, pathutil.Resolve(l.opts.Root, key), content, from.Syntax)
			}
		}
		return nil, idlerrors.NewIncludeNotFoundInMap(rel)
	}

	first := pathutil.Resolve(l.opts.Root, rel)
	if l.fs.IsFile(first) {
		return l.read(first, from.Syntax)
	}
	for _, abs := range l.candidates(alt) {
		if l.fs.IsFile(abs) {
			return l.read(abs, from.Syntax)
		}
	}
	return nil, idlerrors.NewFileNotFound(first)
}

// candidates lists the absolute paths tried for p: root first, then search paths
func (l *Loader) candidates(p string) []string {
	out := []string{pathutil.Resolve(l.opts.Root, p)}
	for _, dir := range l.opts.SearchPaths {
		out = append(out, pathutil.Resolve(l.opts.Root, dir, p))
	}
	return out
}

func (l *Loader) read(abs string, syntax types.Syntax) (*File, error) {
	content, err := l.fs.ReadFile(abs)
	if err != nil {
		return nil, idlerrors.NewFileNotFound(abs).WithUnderlying(err)
	}
	logical := pathutil.ToPosix(pathutil.ToRelative(abs, pathutil.Resolve(l.opts.Root)))
	return l.parse(logical, abs, string(content), syntax)
}

func (l *Loader) parse(logical, abs, content string, syntax types.Syntax) (*File, error) {
	if l.opts.Preprocess != nil {
		content = l.opts.Preprocess(content, logical)
	}
	file := &File{Path: logical, AbsPath: abs, Syntax: syntax}

	hash := ContentHash(content)
	if l.opts.Cache != nil {
		if doc, ok := l.opts.Cache.Get(logical, hash); ok {
			debug.LogLoader("cache hit for %s", logical)
			file.Document = doc
			return file, nil
		}
	}

	doc, err := l.parsers[syntax](abs, content)
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			return nil, idlerrors.NewSyntaxError(perr.Message, abs, perr.Line, perr.Column, err)
		}
		return nil, idlerrors.NewSyntaxError(err.Error(), abs, 1, 1, err)
	}
	debug.LogLoader("parsed %s (%s)", logical, abs)

	if l.opts.Cache != nil {
		l.opts.Cache.Put(logical, hash, doc)
	}
	file.Document = doc
	return file, nil
}
