package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/standardbeagle/idlunify/internal/unify"
)

// OptionParams are accepted by every parse tool. Unset fields keep the
// server defaults.
type OptionParams struct {
	Root            string            `json:"root,omitempty"`
	SearchPaths     []string          `json:"search_paths,omitempty"`
	Files           map[string]string `json:"files,omitempty"`
	NamespaceRefer  *bool             `json:"namespace_refer,omitempty"`
	Cache           *bool             `json:"cache,omitempty"`
	IgnoreGoTag     *bool             `json:"ignore_go_tag,omitempty"`
	IgnoreGoTagDash *bool             `json:"ignore_go_tag_dash,omitempty"`
	Explain         bool              `json:"explain,omitempty"`
}

// ParseParams are the arguments of parse_idl
type ParseParams struct {
	OptionParams
	Entry string `json:"entry"`
}

// EntriesParams are the arguments of parse_entries
type EntriesParams struct {
	OptionParams
	Patterns []string `json:"patterns,omitempty"`
}

// CacheParams are the arguments of cache_stats
type CacheParams struct {
	Purge bool `json:"purge,omitempty"`
}

var errEntryRequired = errors.New("entry is required")

func decodeParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func (p *ParseParams) validate() error {
	if p.Entry == "" {
		return errEntryRequired
	}
	return nil
}

// apply overlays the parameters on the server defaults
func (p OptionParams) apply(opts unify.Options) unify.Options {
	if p.Root != "" {
		opts.Root = p.Root
	}
	if len(p.SearchPaths) > 0 {
		opts.SearchPaths = append([]string(nil), p.SearchPaths...)
	}
	if p.NamespaceRefer != nil {
		opts.NamespaceRefer = *p.NamespaceRefer
	}
	if p.Cache != nil {
		opts.Cache = *p.Cache
	}
	if p.IgnoreGoTag != nil {
		opts.IgnoreGoTag = *p.IgnoreGoTag
	}
	if p.IgnoreGoTagDash != nil {
		opts.IgnoreGoTagDash = *p.IgnoreGoTagDash
	}
	return opts
}
