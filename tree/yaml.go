package tree

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/erraggy/oasmerge/oaserrors"
	"go.yaml.in/yaml/v4"
)

// MaxExpandedNodes bounds how many nodes one document may expand into once
// aliases are replaced by copies of their anchors.
const MaxExpandedNodes = 1 << 20

// Parse parses YAML (or JSON, which is a subset) into a Node.
// An empty document yields a nil Node and no error.
// The name is only used for error messages.
func Parse(name string, data []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		parseErr := &oaserrors.ParseError{Path: name, Cause: err}
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			parseErr.Message = "unexpected node type"
		}
		return nil, parseErr
	}
	n, err := FromYAML(&doc)
	if err != nil {
		var limitErr *oaserrors.ResourceLimitError
		if errors.As(err, &limitErr) {
			limitErr.Message = "expanding aliases in " + name
			return nil, limitErr
		}
		return nil, &oaserrors.ParseError{Path: name, Cause: err}
	}
	return n, nil
}

// FromYAML converts a parsed yaml.Node into a Node. Aliases are expanded into
// independent copies and merge keys ("<<") are applied. An alias that refers
// to an anchor enclosing it is an error, and expansion beyond MaxExpandedNodes
// fails with a ResourceLimitError.
func FromYAML(n *yaml.Node) (Node, error) {
	c := &converter{open: make(map[*yaml.Node]bool)}
	return c.node(n)
}

// converter tracks the anchors on the current conversion path and the
// number of nodes produced so far.
type converter struct {
	open  map[*yaml.Node]bool
	count int
}

func (c *converter) node(n *yaml.Node) (Node, error) {
	if n == nil {
		return nil, nil
	}
	c.count++
	if c.count > MaxExpandedNodes {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "yaml alias expansion",
			Limit:        MaxExpandedNodes,
		}
	}
	if n.Anchor != "" {
		c.open[n] = true
		defer delete(c.open, n)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.node(n.Content[0])
	case yaml.MappingNode:
		return c.mapping(n)
	case yaml.SequenceNode:
		seq := &Sequence{items: make([]Node, 0, len(n.Content))}
		for _, item := range n.Content {
			child, err := c.node(item)
			if err != nil {
				return nil, err
			}
			seq.items = append(seq.items, child)
		}
		return seq, nil
	case yaml.ScalarNode:
		return scalarFromYAML(n)
	case yaml.AliasNode:
		target, err := c.deref(n)
		if err != nil {
			return nil, err
		}
		return c.node(target)
	case 0:
		// An empty document parses to a zero Node.
		return nil, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %v", n.Line, n.Kind)
	}
}

// deref returns the anchor an alias refers to, rejecting anchors still open.
func (c *converter) deref(alias *yaml.Node) (*yaml.Node, error) {
	if alias.Alias == nil {
		return nil, fmt.Errorf("line %d: alias *%s has no anchor", alias.Line, alias.Value)
	}
	if c.open[alias.Alias] {
		return nil, fmt.Errorf("line %d: alias *%s refers to an anchor that contains it", alias.Line, alias.Value)
	}
	return alias.Alias, nil
}

func (c *converter) mapping(n *yaml.Node) (*Mapping, error) {
	m := &Mapping{
		pairs: make([]Pair, 0, len(n.Content)/2),
		index: make(map[string]int, len(n.Content)/2),
	}
	var merged []*Mapping
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}
		if keyNode.ShortTag() == "!!merge" {
			sources, err := c.mergeSources(valNode)
			if err != nil {
				return nil, err
			}
			merged = append(merged, sources...)
			continue
		}
		if m.Has(keyNode.Value) {
			return nil, fmt.Errorf("line %d: duplicate mapping key %q", keyNode.Line, keyNode.Value)
		}
		val, err := c.node(valNode)
		if err != nil {
			return nil, err
		}
		if val == nil {
			val = Null()
		}
		m.Set(keyNode.Value, val)
	}
	// Explicit keys win over merged ones, and earlier merge sources win over later ones.
	for _, src := range merged {
		for k, v := range src.All() {
			if !m.Has(k) {
				m.Set(k, v)
			}
		}
	}
	return m, nil
}

func (c *converter) mergeSources(n *yaml.Node) ([]*Mapping, error) {
	target := n
	if target.Kind == yaml.AliasNode {
		var err error
		if target, err = c.deref(n); err != nil {
			return nil, err
		}
	}
	switch target.Kind {
	case yaml.MappingNode:
		src, err := c.node(target)
		if err != nil {
			return nil, err
		}
		return []*Mapping{src.(*Mapping)}, nil
	case yaml.SequenceNode:
		var out []*Mapping
		for _, item := range target.Content {
			ms, err := c.mergeSources(item)
			if err != nil {
				return nil, err
			}
			out = append(out, ms...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: merge key value must be a mapping", n.Line)
	}
}

func scalarFromYAML(n *yaml.Node) (Scalar, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Scalar{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		// Out of int64 range: keep the number, lose integer precision.
		var f float64
		if err := n.Decode(&f); err != nil {
			return Scalar{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Float(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Scalar{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Float(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text.
		return String(n.Value), nil
	}
}

// ToYAML converts a Node into a yaml.Node suitable for yaml.Marshal.
func ToYAML(n Node) *yaml.Node {
	switch v := n.(type) {
	case *Mapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Content: make([]*yaml.Node, 0, 2*v.Len())}
		for k, child := range v.All() {
			out.Content = append(out.Content, scalarNode("!!str", k), ToYAML(child))
		}
		return out
	case *Sequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Content: make([]*yaml.Node, 0, v.Len())}
		for _, child := range v.All() {
			out.Content = append(out.Content, ToYAML(child))
		}
		return out
	case Scalar:
		switch val := v.value.(type) {
		case nil:
			return scalarNode("!!null", "null")
		case bool:
			return scalarNode("!!bool", strconv.FormatBool(val))
		case int64:
			return scalarNode("!!int", strconv.FormatInt(val, 10))
		case float64:
			return scalarNode("!!float", formatFloat(val))
		default:
			return scalarNode("!!str", v.Text())
		}
	default:
		return scalarNode("!!null", "null")
	}
}

// MarshalYAML serializes n as a YAML document with keys in insertion order.
func MarshalYAML(n Node) ([]byte, error) {
	return yaml.Marshal(ToYAML(n))
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}
