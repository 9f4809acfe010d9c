package pathutil

import (
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IsPattern reports whether p contains glob metacharacters
func IsPattern(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// Glob expands doublestar patterns relative to root into de-duplicated logical
// paths, keeping pattern order and sorting the matches of each pattern. Plain
// paths are returned unchanged even when they do not exist, so the caller
// reports the missing file.
func Glob(root string, patterns []string) ([]string, error) {
	return GlobFunc(root, patterns, nil)
}

// GlobFunc is Glob with pattern matches limited to those keep accepts.
// Plain paths bypass keep.
func GlobFunc(root string, patterns []string, keep func(string) bool) ([]string, error) {
	if root == "" {
		root = "."
	}
	fsys := os.DirFS(root)

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, pattern := range patterns {
		pattern = ToPosix(pattern)
		if !IsPattern(pattern) {
			add(pattern)
			continue
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		for _, m := range matches {
			if keep == nil || keep(m) {
				add(m)
			}
		}
	}
	return out, nil
}

// Match reports whether the logical path matches any of the patterns
func Match(patterns []string, logical string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, logical); ok {
			return true
		}
	}
	return false
}
