package hyperparams

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Document is a parsed hyperparameter file: the global defaults plus every
// scenario override block, both in declaration order. It is immutable once parsed.
type Document struct {
	defaults  settings
	scenarios map[string]settings
	order     []string
}

// settings is an ordered flat mapping.
type settings struct {
	keys   []string
	values map[string]Value
}

func newSettings() settings {
	return settings{values: make(map[string]Value)}
}

func (s *settings) set(key string, v Value) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
}

// Load reads the document at path and parses it.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes data into a Document. Top-level keys with scalar values become
// global defaults; top-level keys with mapping values become scenario blocks.
// Syntax problems fail fast with a *ParseError. Layout problems are collected
// and returned together, each one a *SchemaError.
func Parse(data []byte) (*Document, error) {
	doc := &Document{
		defaults:  newSettings(),
		scenarios: make(map[string]settings),
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return nil, &ParseError{Err: err}
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		return nil, &ParseError{Line: extra.Line, Err: errors.New("stream holds more than one document")}
	}

	top := &root
	if top.Kind == yaml.DocumentNode {
		if len(top.Content) == 0 {
			return doc, nil
		}
		top = top.Content[0]
	}
	top = deref(top)

	switch {
	case top.Kind == yaml.ScalarNode && top.ShortTag() == "!!null":
		return doc, nil
	case top.Kind != yaml.MappingNode:
		return nil, &SchemaError{Line: top.Line, Reason: "top level must be a mapping"}
	}

	var schemaErr error
	seen := make(map[string]int, len(top.Content)/2)
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, err := keyName(top.Content[i], "", seen)
		if err != nil {
			if isParseError(err) {
				return nil, err
			}
			schemaErr = multierr.Append(schemaErr, err)
			continue
		}

		node := deref(top.Content[i+1])
		switch node.Kind {
		case yaml.ScalarNode:
			v, err := scalarValue(node)
			if err != nil {
				return nil, err
			}
			doc.defaults.set(key, v)
		case yaml.MappingNode:
			block, err := parseBlock(key, node)
			if err != nil {
				if isParseError(err) {
					return nil, err
				}
				schemaErr = multierr.Append(schemaErr, err)
				continue
			}
			doc.scenarios[key] = block
			doc.order = append(doc.order, key)
		default:
			schemaErr = multierr.Append(schemaErr, &SchemaError{
				Key:    key,
				Line:   node.Line,
				Reason: "value must be a scalar or a flat mapping",
			})
		}
	}

	if schemaErr != nil {
		return nil, schemaErr
	}
	return doc, nil
}

// parseBlock reads one scenario override block. Its values must all be scalars.
func parseBlock(scenario string, node *yaml.Node) (settings, error) {
	block := newSettings()
	var schemaErr error
	seen := make(map[string]int, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, err := keyName(node.Content[i], scenario, seen)
		if err != nil {
			if isParseError(err) {
				return settings{}, err
			}
			schemaErr = multierr.Append(schemaErr, err)
			continue
		}

		value := deref(node.Content[i+1])
		if value.Kind != yaml.ScalarNode {
			schemaErr = multierr.Append(schemaErr, &SchemaError{
				Scenario: scenario,
				Key:      key,
				Line:     value.Line,
				Reason:   "scenario blocks may only hold scalar values",
			})
			continue
		}
		v, err := scalarValue(value)
		if err != nil {
			return settings{}, err
		}
		block.set(key, v)
	}
	if schemaErr != nil {
		return settings{}, schemaErr
	}
	return block, nil
}

func keyName(node *yaml.Node, scenario string, seen map[string]int) (string, error) {
	node = deref(node)
	if node.Kind != yaml.ScalarNode {
		return "", &SchemaError{Scenario: scenario, Line: node.Line, Reason: "keys must be scalars"}
	}
	if node.ShortTag() == "!!merge" {
		return "", &SchemaError{Scenario: scenario, Line: node.Line, Reason: "merge keys are not supported"}
	}
	if first, dup := seen[node.Value]; dup {
		return "", &ParseError{
			Line: node.Line,
			Err:  fmt.Errorf("key %q already defined at line %d", node.Value, first),
		}
	}
	seen[node.Value] = node.Line
	return node.Value, nil
}

// scalarValue maps the tag yaml.v3 resolved for a literal onto a Value.
func scalarValue(node *yaml.Node) (Value, error) {
	switch tag := node.ShortTag(); tag {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, &ParseError{Line: node.Line, Err: err}
		}
		return BoolValue(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return Value{}, &ParseError{Line: node.Line, Err: fmt.Errorf("integer %s out of range", node.Value)}
		}
		return IntValue(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, &ParseError{Line: node.Line, Err: err}
		}
		return FloatValue(f), nil
	case "!!str", "!!timestamp":
		return StringValue(node.Value), nil
	default:
		return Value{}, &ParseError{Line: node.Line, Err: fmt.Errorf("unsupported tag %s", tag)}
	}
}

func deref(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isParseError(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr)
}

// Scenarios lists the declared override blocks in document order.
func (d *Document) Scenarios() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// HasScenario reports whether an override block named name exists.
func (d *Document) HasScenario(name string) bool {
	_, ok := d.scenarios[name]
	return ok
}

// Defaults returns the global defaults with no override applied.
func (d *Document) Defaults() ResolvedConfig {
	return d.Resolve("")
}

// Override returns the raw override block for name, without defaults merged in.
func (d *Document) Override(name string) (ResolvedConfig, bool) {
	block, ok := d.scenarios[name]
	if !ok {
		return ResolvedConfig{}, false
	}
	return newResolvedConfig(name, block.keys, block.values), true
}

// Resolve merges the named scenario block over the global defaults. An empty
// or undeclared scenario yields the defaults unchanged.
func (d *Document) Resolve(scenario string) ResolvedConfig {
	merged := newSettings()
	for _, key := range d.defaults.keys {
		merged.set(key, d.defaults.values[key])
	}

	block, ok := d.scenarios[scenario]
	if scenario == "" || !ok {
		return ResolvedConfig{settings: merged}
	}
	for _, key := range block.keys {
		merged.set(key, block.values[key])
	}
	return ResolvedConfig{scenario: scenario, settings: merged}
}

// Resolve parses data and resolves scenario in one step.
func Resolve(data []byte, scenario string) (ResolvedConfig, error) {
	doc, err := Parse(data)
	if err != nil {
		return ResolvedConfig{}, err
	}
	return doc.Resolve(scenario), nil
}
