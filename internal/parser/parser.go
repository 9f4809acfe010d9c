// Package parser holds the plumbing shared by the Thrift and Proto grammars:
// source spans, comment tokens, string literal decoding and grammar errors.
package parser

import (
	"github.com/standardbeagle/idlunify/internal/types"
)

// Document is a syntax-specific tree produced by one of the grammar packages
type Document interface {
	Syntax() types.Syntax
	// Dependencies lists include/import paths as written, in source order
	Dependencies() []string
}

// Func parses source text of one file
type Func func(filename, src string) (Document, error)
