package unify

import (
	"io"

	"github.com/standardbeagle/idlunify/internal/loader"
)

// DefaultConcurrency is the number of entries ParseAll parses at once
const DefaultConcurrency = 4

// Options control one parse call
type Options struct {
	// Root is the directory logical paths are resolved against. Empty means
	// the working directory.
	Root string
	// SearchPaths are tried in order when a file is not found under Root
	SearchPaths []string
	// NamespaceRefer fills namespace values of Thrift identifiers
	NamespaceRefer bool
	// Cache reuses documents parsed by earlier calls on the same Parser
	Cache bool
	// IgnoreGoTag skips go.tag struct-tag annotations
	IgnoreGoTag bool
	// IgnoreGoTagDash keeps fields tagged json:"-"
	IgnoreGoTagDash bool
	// Preprocess rewrites source text before parsing
	Preprocess func(content, path string) string
	// Concurrency bounds ParseAll; values below 1 mean DefaultConcurrency
	Concurrency int
	// Trace receives the resolution report of every parsed entry when set
	Trace io.Writer
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		NamespaceRefer: true,
		Concurrency:    DefaultConcurrency,
	}
}

func (o Options) concurrency() int {
	if o.Concurrency < 1 {
		return DefaultConcurrency
	}
	return o.Concurrency
}

func (o Options) loaderOptions(fileContentMap map[string]string, cache *loader.DocumentCache) loader.Options {
	lo := loader.Options{
		Root:           o.Root,
		SearchPaths:    o.SearchPaths,
		Preprocess:     o.Preprocess,
		FileContentMap: fileContentMap,
	}
	if o.Cache {
		lo.Cache = cache
	}
	return lo
}
