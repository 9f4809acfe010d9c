// Package unify assembles UnifyDocuments: it loads an entry file with its
// includes or imports, links references across files and converts every
// declaration into the syntax-independent model.
package unify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/idlunify/internal/debug"
	idlerrors "github.com/standardbeagle/idlunify/internal/errors"
	"github.com/standardbeagle/idlunify/internal/loader"
	"github.com/standardbeagle/idlunify/internal/symbollinker"
	"github.com/standardbeagle/idlunify/internal/types"
)

// Parser produces UnifyDocuments. Every call builds its own resolution state;
// the only state shared between calls is the document cache, consulted when
// Options.Cache is set. A Parser is safe for concurrent use.
type Parser struct {
	cache *loader.DocumentCache
	fs    loader.FileSystem

	traceMu sync.Mutex // serializes reports written to Options.Trace
}

// ParserOption configures a Parser
type ParserOption func(*Parser)

// WithCache makes the parser store parsed documents in cache
func WithCache(cache *loader.DocumentCache) ParserOption {
	return func(p *Parser) {
		p.cache = cache
	}
}

// WithFileSystem makes the parser read files through fs instead of the OS
func WithFileSystem(fs loader.FileSystem) ParserOption {
	return func(p *Parser) {
		p.fs = fs
	}
}

// NewParser creates a parser
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.cache == nil {
		// DefaultCacheSize is positive, construction cannot fail
		p.cache, _ = loader.NewDocumentCache(loader.DefaultCacheSize)
	}
	if p.fs == nil {
		p.fs = &loader.RealFileSystem{}
	}
	return p
}

// Cache returns the document cache of the parser
func (p *Parser) Cache() *loader.DocumentCache {
	return p.cache
}

// Parse builds the UnifyDocument of entryPath. When fileContentMap is
// non-nil it replaces disk access and must hold every reachable file.
func (p *Parser) Parse(entryPath string, opts Options, fileContentMap map[string]string) (*types.UnifyDocument, error) {
	return p.ParseContext(context.Background(), entryPath, opts, fileContentMap)
}

// ParseContext is Parse aborting between files once ctx is done
func (p *Parser) ParseContext(ctx context.Context, entryPath string, opts Options, fileContentMap map[string]string) (*types.UnifyDocument, error) {
	start := time.Now()
	ld := loader.New(opts.loaderOptions(fileContentMap, p.cache), p.fs)
	entry, err := ld.Load(ctx, entryPath)
	if err != nil {
		return nil, err
	}

	rc := symbollinker.NewResolutionContext(entry)
	var doc *types.UnifyDocument
	switch entry.Syntax {
	case types.SyntaxThrift:
		doc, err = assembleThrift(rc, opts)
	case types.SyntaxProto:
		doc, err = assembleProto(rc, opts)
	default:
		err = idlerrors.NewInvalidInput(entryPath)
	}
	if err != nil {
		return nil, err
	}

	if opts.Trace != nil {
		if err := p.writeTrace(rc, opts.Trace); err != nil {
			return nil, fmt.Errorf("write resolution report: %w", err)
		}
	}
	debug.LogUnify("parsed %s: %d statements, %d unresolved in %v\n",
		entry.Path, len(doc.Statements), len(rc.Unresolved()), time.Since(start))
	return doc, nil
}

// ParseAll parses entries concurrently, at most Options.Concurrency at a
// time. Documents are returned in the order of entries. A failing entry does
// not stop the others; when any fails, the error is a *errors.MultiError
// holding every failure in entry order. Only ctx cancels the batch.
func (p *Parser) ParseAll(ctx context.Context, entries []string, opts Options, fileContentMap map[string]string) ([]*types.UnifyDocument, error) {
	docs := make([]*types.UnifyDocument, len(entries))
	errs := make([]error, len(entries))

	var g errgroup.Group
	g.SetLimit(opts.concurrency())
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			doc, err := p.ParseContext(ctx, entry, opts, fileContentMap)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", entry, err)
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	// failures are kept per entry in errs, so Wait only joins the goroutines
	g.Wait()

	if multi := idlerrors.NewMultiError(errs); len(multi.Errors) > 0 {
		return nil, multi
	}
	return docs, nil
}

func (p *Parser) writeTrace(rc *symbollinker.ResolutionContext, w io.Writer) error {
	var buf bytes.Buffer
	if err := rc.WriteDebugInfo(&buf); err != nil {
		return err
	}
	p.traceMu.Lock()
	defer p.traceMu.Unlock()
	_, err := w.Write(buf.Bytes())
	return err
}
