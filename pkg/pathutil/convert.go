// Package pathutil converts between the logical paths used to name IDL files
// and the absolute paths used to read them.
//
// Logical paths are always POSIX ("dep/base.thrift"), regardless of OS, because
// they appear in include statements, cache keys and error messages. Absolute
// paths are OS paths and only used for disk access and for display.
package pathutil

import (
	"path"
	"path/filepath"
	"strings"
)

// ToPosix converts OS path separators to "/" and cleans the result
func ToPosix(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(filepath.ToSlash(p))
}

// Join joins logical path elements and cleans the result
func Join(elem ...string) string {
	return path.Join(elem...)
}

// Dir returns the directory of a logical path, "." for a bare filename
func Dir(p string) string {
	return path.Dir(p)
}

// TrimExt removes the extension (with dot) from a logical path
func TrimExt(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}

// Base returns the last element of a logical path without its extension
func Base(p string) string {
	return TrimExt(path.Base(p))
}

// Resolve returns the absolute, POSIX form of p relative to root.
// An absolute element discards everything before it. When root is empty the
// current working directory is used.
func Resolve(root string, p ...string) string {
	joined := root
	for _, elem := range p {
		if filepath.IsAbs(elem) {
			joined = elem
			continue
		}
		joined = filepath.Join(joined, elem)
	}
	abs, err := filepath.Abs(joined)
	if err != nil {
		return ToPosix(joined)
	}
	return ToPosix(abs)
}

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/idl/api/foo.thrift", "/home/user/idl") → "api/foo.thrift"
//   - ToRelative("/other/location/base.proto", "/home/user/idl") → "/other/location/base.proto" (outside root)
//   - ToRelative("api/foo.thrift", "/home/user/idl") → "api/foo.thrift" (already relative)
func ToRelative(absPath, rootDir string) string {
	// Handle empty inputs
	if absPath == "" || rootDir == "" {
		return absPath
	}

	// If path is already relative, return as-is
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	// Clean both paths to normalize separators and remove redundant elements
	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// Conversion failed (e.g., different drives on Windows) - return absolute
		return absPath
	}

	// A relative path starting with ".." is outside the root; the absolute path is clearer
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}

// ToRelativeAll converts every path of a slice from absolute to relative.
// Creates a new slice without modifying the original.
func ToRelativeAll(paths []string, rootDir string) []string {
	if len(paths) == 0 {
		return paths
	}

	converted := make([]string, len(paths))
	for i, p := range paths {
		converted[i] = ToRelative(p, rootDir)
	}
	return converted
}
