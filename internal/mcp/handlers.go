package mcp

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/idlunify/internal/loader"
	"github.com/standardbeagle/idlunify/internal/types"
	"github.com/standardbeagle/idlunify/internal/version"
	"github.com/standardbeagle/idlunify/pkg/pathutil"
)

// ParseResponse is returned by parse_idl
type ParseResponse struct {
	Entry      string               `json:"entry"`
	Document   *types.UnifyDocument `json:"document"`
	Resolution string               `json:"resolution,omitempty"`
}

// EntriesResponse is returned by parse_entries
type EntriesResponse struct {
	Entries    []string               `json:"entries"`
	Documents  []*types.UnifyDocument `json:"documents"`
	Resolution string                 `json:"resolution,omitempty"`
}

// CacheResponse is returned by cache_stats
type CacheResponse struct {
	Len       int   `json:"len"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	StaleHits int64 `json:"stale_hits"`
	Purged    bool  `json:"purged"`
}

func (s *Server) handleParseIDL(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("parse_idl", func() (*mcp.CallToolResult, error) {
		var params ParseParams
		if err := decodeParams(req.Params.Arguments, &params); err != nil {
			return nil, err
		}
		if err := params.validate(); err != nil {
			return nil, err
		}

		opts := params.apply(s.defaults)
		var trace strings.Builder
		if params.Explain {
			opts.Trace = &trace
		}

		doc, err := s.parser.ParseContext(ctx, params.Entry, opts, params.Files)
		if err != nil {
			return nil, err
		}
		return createJSONResponse(ParseResponse{
			Entry:      params.Entry,
			Document:   doc,
			Resolution: trace.String(),
		})
	})
}

func (s *Server) handleParseEntries(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("parse_entries", func() (*mcp.CallToolResult, error) {
		var params EntriesParams
		if err := decodeParams(req.Params.Arguments, &params); err != nil {
			return nil, err
		}
		patterns := params.Patterns
		if len(patterns) == 0 {
			patterns = s.cfg.Entries
		}

		opts := params.apply(s.defaults)
		var trace strings.Builder
		if params.Explain {
			opts.Trace = &trace
		}

		entries, err := s.expand(opts.Root, patterns, params.Files)
		if err != nil {
			return nil, err
		}
		docs, err := s.parser.ParseAll(ctx, entries, opts, params.Files)
		if err != nil {
			return nil, err
		}
		return createJSONResponse(EntriesResponse{
			Entries:    entries,
			Documents:  docs,
			Resolution: trace.String(),
		})
	})
}

// expand matches patterns against the virtual files when given, else the disk
func (s *Server) expand(root string, patterns []string, files map[string]string) ([]string, error) {
	if files == nil {
		return pathutil.GlobFunc(root, patterns, loader.IsIDL)
	}
	var entries []string
	for p := range files {
		if loader.IsIDL(p) && pathutil.Match(patterns, p) {
			entries = append(entries, p)
		}
	}
	sort.Strings(entries)
	return entries, nil
}

func (s *Server) handleCacheStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("cache_stats", func() (*mcp.CallToolResult, error) {
		var params CacheParams
		if err := decodeParams(req.Params.Arguments, &params); err != nil {
			return nil, err
		}
		cache := s.parser.Cache()
		stats := cache.Stats()
		resp := CacheResponse{
			Len:       cache.Len(),
			Hits:      stats.Hits,
			Misses:    stats.Misses,
			StaleHits: stats.StaleHits,
		}
		if params.Purge {
			cache.Purge()
			resp.Purged = true
		}
		return createJSONResponse(resp)
	})
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return createJSONResponse(map[string]interface{}{
		"server_name":    version.Name,
		"server_version": version.FullInfo(),
		"build_id":       version.BuildID(),
		"go_version":     runtime.Version(),
		"platform":       runtime.GOOS + "/" + runtime.GOARCH,
		"config_source":  s.cfg.Source,
		"root":           s.defaults.Root,
		"entries":        s.cfg.Entries,
		"tools":          []string{"parse_idl", "parse_entries", "cache_stats", "info"},
	})
}
