// Package mcp serves the IDL front end over the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"
	rtdebug "runtime/debug"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/idlunify/internal/config"
	"github.com/standardbeagle/idlunify/internal/debug"
	"github.com/standardbeagle/idlunify/internal/loader"
	"github.com/standardbeagle/idlunify/internal/unify"
	"github.com/standardbeagle/idlunify/internal/version"
)

// Server exposes parse tools backed by one long-lived Parser, so the document
// cache survives across tool calls
type Server struct {
	server   *mcp.Server
	parser   *unify.Parser
	cfg      *config.Config
	defaults unify.Options
}

// NewServer creates a server using cfg for default parse options
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	cache, err := loader.NewDocumentCache(cfg.Cache.Size)
	if err != nil {
		return nil, fmt.Errorf("create document cache: %w", err)
	}

	s := &Server{
		parser:   unify.NewParser(unify.WithCache(cache)),
		cfg:      cfg,
		defaults: cfg.UnifyOptions(),
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    version.Name,
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s, nil
}

func optionProperties() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"root": {
			Type:        "string",
			Description: "Directory logical paths are resolved against (default: configured root)",
		},
		"search_paths": {
			Type:        "array",
			Description: "Directories tried after root when an include is not found",
			Items:       &jsonschema.Schema{Type: "string"},
		},
		"files": {
			Type:                 "object",
			Description:          "Virtual file contents keyed by logical path. When set, nothing is read from disk.",
			AdditionalProperties: &jsonschema.Schema{Type: "string"},
		},
		"namespace_refer": {
			Type:        "boolean",
			Description: "Fill namespace values of Thrift identifiers (default true)",
		},
		"cache": {
			Type:        "boolean",
			Description: "Reuse documents parsed by earlier calls",
		},
		"ignore_go_tag": {
			Type:        "boolean",
			Description: "Skip go.tag struct-tag annotations",
		},
		"ignore_go_tag_dash": {
			Type:        "boolean",
			Description: "Keep fields tagged json:\"-\"",
		},
		"explain": {
			Type:        "boolean",
			Description: "Include the symbol resolution report",
		},
	}
}

func (s *Server) registerTools() {
	parseProps := optionProperties()
	parseProps["entry"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Logical path of the entry file, ending in .thrift or .proto",
	}
	s.server.AddTool(&mcp.Tool{
		Name:        "parse_idl",
		Description: "Parse a Thrift or Protobuf entry file with its includes and return the unified document with every type reference resolved.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: parseProps,
			Required:   []string{"entry"},
		},
	}, s.handleParseIDL)

	entriesProps := optionProperties()
	entriesProps["patterns"] = &jsonschema.Schema{
		Type:        "array",
		Description: "Doublestar patterns of entry files, e.g. \"api/**/*.thrift\" (default: configured entries)",
		Items:       &jsonschema.Schema{Type: "string"},
	}
	s.server.AddTool(&mcp.Tool{
		Name:        "parse_entries",
		Description: "Parse every entry file matching the patterns and return one unified document per entry.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: entriesProps,
		},
	}, s.handleParseEntries)

	s.server.AddTool(&mcp.Tool{
		Name:        "cache_stats",
		Description: "Report document cache hits, misses and stale hits. Set purge to empty the cache.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"purge": {Type: "boolean", Description: "Empty the cache after reporting"},
			},
		},
	}, s.handleCacheStats)

	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Server version and configuration",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleInfo)
}

// recoverFromPanic turns a panicking or failing handler into an error result
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogMCP("PANIC RECOVERED in %s: %v\n%s", operation, r, rtdebug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	start := time.Now()
	result, err = handler()
	if err != nil {
		debug.LogMCP("Error in %s: %v\n", operation, err)
		return createErrorResponse(operation, err)
	}
	debug.LogMCP("%s completed in %v\n", operation, time.Since(start))
	return result, nil
}

// Start serves over stdio until ctx is done. Debug output is silenced so the
// protocol stream stays clean.
func (s *Server) Start(ctx context.Context) error {
	debug.SetMCPMode(true)
	defer debug.SetMCPMode(false)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over t
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}
