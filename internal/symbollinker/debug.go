package symbollinker

import (
	"fmt"
	"io"
	"sort"
)

// DebugInfo describes the linking state of one parse call
type DebugInfo struct {
	Summary    DebugSummary      `json:"summary"`
	Files      []FileDebugInfo   `json:"files"`
	Unresolved []string          `json:"unresolved,omitempty"`
	Includes   []ImportDebugInfo `json:"includes"`
}

// DebugSummary provides high-level statistics
type DebugSummary struct {
	Entry           string `json:"entry"`
	Syntax          string `json:"syntax"`
	Namespace       string `json:"namespace"`
	UnifyNamespace  string `json:"unify_namespace"`
	TotalIncludes   int    `json:"total_includes"`
	TotalTypes      int    `json:"total_types"`
	TotalUnresolved int    `json:"total_unresolved"`
}

// FileDebugInfo lists the types an imported file contributes
type FileDebugInfo struct {
	Alias     string   `json:"alias"`
	Namespace string   `json:"namespace"`
	TypeNames []string `json:"type_names"`
}

// ImportDebugInfo shows how one include spec was resolved
type ImportDebugInfo struct {
	Spec         string `json:"spec"`
	ResolvedPath string `json:"resolved_path"`
	Alias        string `json:"alias,omitempty"`
	Namespace    string `json:"namespace,omitempty"`
}

// DebugInfo returns a snapshot of the context
func (c *ResolutionContext) DebugInfo() *DebugInfo {
	info := &DebugInfo{
		Summary: DebugSummary{
			Entry:           c.Entry.Path,
			Syntax:          string(c.Entry.Syntax),
			Namespace:       c.Namespace,
			UnifyNamespace:  c.UnifyNamespace,
			TotalIncludes:   len(c.Entry.Includes),
			TotalTypes:      len(c.entryTypeNames),
			TotalUnresolved: len(c.unresolved),
		},
		Files:      []FileDebugInfo{},
		Unresolved: c.Unresolved(),
		Includes:   []ImportDebugInfo{},
	}

	aliases := make([]string, 0, len(c.filenameTypeNames))
	for alias := range c.filenameTypeNames {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		info.Files = append(info.Files, FileDebugInfo{
			Alias:     alias,
			Namespace: c.filenameNamespace[alias],
			TypeNames: c.filenameTypeNames[alias],
		})
	}

	for _, inc := range c.Entry.Includes {
		imp := ImportDebugInfo{Spec: inc.Spec, ResolvedPath: inc.File.Path, Alias: c.IncludeRefer[inc.Spec]}
		for _, tn := range c.includes {
			if tn.filename == includeFilename(inc.Spec) {
				imp.Namespace = tn.namespace
			}
		}
		if imp.Alias != "" {
			imp.Namespace = c.filenameNamespace[imp.Alias]
		}
		info.Includes = append(info.Includes, imp)
	}
	return info
}

// WriteDebugInfo writes a human-readable report
func (c *ResolutionContext) WriteDebugInfo(w io.Writer) error {
	info := c.DebugInfo()

	fmt.Fprintf(w, "=== Resolution Debug Info ===\n\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Entry: %s (%s)\n", info.Summary.Entry, info.Summary.Syntax)
	fmt.Fprintf(w, "  Namespace: %q (unify %s)\n", info.Summary.Namespace, info.Summary.UnifyNamespace)
	fmt.Fprintf(w, "  Total Includes: %d\n", info.Summary.TotalIncludes)
	fmt.Fprintf(w, "  Total Local Types: %d\n", info.Summary.TotalTypes)
	fmt.Fprintf(w, "  Total Unresolved: %d\n", info.Summary.TotalUnresolved)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Includes (%d):\n", len(info.Includes))
	for _, inc := range info.Includes {
		fmt.Fprintf(w, "  %s -> %s", inc.Spec, inc.ResolvedPath)
		if inc.Alias != "" {
			fmt.Fprintf(w, " as %s", inc.Alias)
		}
		if inc.Namespace != "" {
			fmt.Fprintf(w, " [%s]", inc.Namespace)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(info.Files) > 0 {
		fmt.Fprintf(w, "\nImported Files (%d):\n", len(info.Files))
		for _, f := range info.Files {
			fmt.Fprintf(w, "  %s (package %q): %v\n", f.Alias, f.Namespace, f.TypeNames)
		}
	}

	if len(info.Unresolved) > 0 {
		fmt.Fprintf(w, "\nUnresolved (%d):\n", len(info.Unresolved))
		for _, name := range info.Unresolved {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	return nil
}
