package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/idlunify/internal/config"
)

// writeOutput encodes v in the configured format. YAML is produced from the
// JSON form so both formats share the document's json field names and order.
func writeOutput(w io.Writer, v interface{}, out config.Output) error {
	switch out.Format {
	case config.FormatYAML:
		return writeYAML(w, v)
	default:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if out.Pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(v)
	}
}

func writeYAML(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("failed to convert document to YAML: %w", err)
	}
	plainStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

// plainStyle drops the flow and quoting styles inherited from JSON
func plainStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		plainStyle(child)
	}
}
