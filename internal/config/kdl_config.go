package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL reads .idlunify.kdl from dir. It returns nil without error when the
// file does not exist.
func LoadKDL(dir string) (*Config, error) {
	kdlPath := filepath.Join(dir, KDLFileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", KDLFileName, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}
	cfg.Source = kdlPath
	return cfg, nil
}

func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "parse":
			for _, cn := range n.Children {
				parseParseNode(cfg, cn)
			}
		case "cache":
			for _, cn := range n.Children {
				if nodeName(cn) == "size" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.Size = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				case "exclude":
					cfg.Watch.Exclude = append(cfg.Watch.Exclude, collectStringArgs(cn)...)
				}
			}
		case "output":
			for _, cn := range n.Children {
				assignSimpleString(cn, "format", func(v string) { cfg.Output.Format = v })
				if nodeName(cn) == "pretty" {
					if b, ok := firstBoolArg(cn); ok {
						cfg.Output.Pretty = b
					}
				}
			}
		case "entries":
			cfg.Entries = append(cfg.Entries, collectStringArgs(n)...)
		default:
			log.Printf("WARNING: unknown node '%s' in %s", nodeName(n), KDLFileName)
		}
	}
	return cfg, nil
}

func parseParseNode(cfg *Config, cn *document.Node) {
	switch nodeName(cn) {
	case "root":
		if s, ok := firstStringArg(cn); ok {
			cfg.Parse.Root = s
		}
	case "search_paths":
		cfg.Parse.SearchPaths = append(cfg.Parse.SearchPaths, collectStringArgs(cn)...)
	case "namespace_refer":
		if b, ok := firstBoolArg(cn); ok {
			cfg.Parse.NamespaceRefer = b
		}
	case "cache":
		if b, ok := firstBoolArg(cn); ok {
			cfg.Parse.Cache = b
		}
	case "ignore_go_tag":
		if b, ok := firstBoolArg(cn); ok {
			cfg.Parse.IgnoreGoTag = b
		}
	case "ignore_go_tag_dash":
		if b, ok := firstBoolArg(cn); ok {
			cfg.Parse.IgnoreGoTagDash = b
		}
	case "concurrency":
		if v, ok := firstIntArg(cn); ok {
			cfg.Parse.Concurrency = v
		}
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		log.Printf("WARNING: invalid integer value for '%s' in KDL config, got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs accepts both the inline form `entries "a" "b"` and the
// block form `entries { "a"; "b" }`
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
