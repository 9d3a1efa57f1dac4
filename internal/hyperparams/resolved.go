package hyperparams

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// ResolvedConfig is the flat result of merging one scenario block over the
// global defaults. It is a value type; none of its methods mutate it.
type ResolvedConfig struct {
	scenario string
	settings settings
}

func newResolvedConfig(scenario string, keys []string, values map[string]Value) ResolvedConfig {
	s := newSettings()
	for _, key := range keys {
		s.set(key, values[key])
	}
	return ResolvedConfig{scenario: scenario, settings: s}
}

// Scenario names the override block that was applied, or "" when none was.
func (c ResolvedConfig) Scenario() string { return c.scenario }

func (c ResolvedConfig) Len() int { return len(c.settings.keys) }

// Keys returns the setting names in document order.
func (c ResolvedConfig) Keys() []string {
	out := make([]string, len(c.settings.keys))
	copy(out, c.settings.keys)
	return out
}

func (c ResolvedConfig) Get(key string) (Value, bool) {
	v, ok := c.settings.values[key]
	return v, ok
}

func (c ResolvedConfig) Has(key string) bool {
	_, ok := c.settings.values[key]
	return ok
}

func (c ResolvedConfig) Bool(key string) (bool, bool) {
	return c.settings.values[key].Bool()
}

func (c ResolvedConfig) Int(key string) (int64, bool) {
	return c.settings.values[key].Int()
}

func (c ResolvedConfig) Float(key string) (float64, bool) {
	return c.settings.values[key].Float()
}

func (c ResolvedConfig) Str(key string) (string, bool) {
	return c.settings.values[key].Str()
}

// Equal reports whether both configs hold the same keys with equal values.
// Key order and the applied scenario name are ignored.
func (c ResolvedConfig) Equal(other ResolvedConfig) bool {
	if len(c.settings.values) != len(other.settings.values) {
		return false
	}
	for key, v := range c.settings.values {
		ov, ok := other.settings.values[key]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Map returns a copy of the settings as plain Go values.
func (c ResolvedConfig) Map() map[string]any {
	out := make(map[string]any, len(c.settings.keys))
	for key, v := range c.settings.values {
		out[key] = v.Interface()
	}
	return out
}

// MarshalJSON writes the settings as a JSON object in document order.
func (c ResolvedConfig) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range c.settings.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := c.settings.values[key].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Node builds a yaml mapping node of the settings. Callers decode typed
// structs from it and the encoder serializes it.
func (c ResolvedConfig) Node() *yaml.Node {
	return c.settings.node()
}

func (s settings) node() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range s.keys {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			s.values[key].Node(),
		)
	}
	return n
}

// Node returns v as a yaml scalar node tagged with its kind.
func (v Value) Node() *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()}
	switch v.kind {
	case KindBool:
		n.Tag = "!!bool"
	case KindInt:
		n.Tag = "!!int"
	case KindFloat:
		n.Tag = "!!float"
	case KindString:
		n.Tag = "!!str"
	default:
		n.Tag = "!!null"
	}
	return n
}
