package hyperparams

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const encodeIndent = 2

// Marshal serializes cfg as a flat document in the same grammar Parse reads.
// Parsing the output yields a Document whose defaults equal cfg.
func Marshal(cfg ResolvedConfig) ([]byte, error) {
	return encode(cfg.Node())
}

// Marshal serializes the whole document: defaults first, then each scenario block.
func (d *Document) Marshal() ([]byte, error) {
	root := d.defaults.node()
	for _, name := range d.order {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
		root.Content = append(root.Content, key, d.scenarios[name].node())
	}
	return encode(root)
}

func encode(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(encodeIndent)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}
