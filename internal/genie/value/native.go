package value

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ToNative converts m into plain Go values: scalars become int64, float64,
// bool, uint64 or string; containers become map[string]any; arrays become
// []any. Symbolic ids convert to their symbol. Deferred members are
// materialized transiently.
//
// Postcondition: the result contains only the types listed above, or an error
// is returned.
func ToNative(m Member) (any, error) {
	m, err := resolve(m)
	if err != nil {
		return nil, err
	}
	switch x := m.(type) {
	case *Int:
		return x.Value, nil
	case *Float:
		return x.Value, nil
	case *Bool:
		return x.Value, nil
	case *ID:
		if x.Symbol != "" {
			return x.Symbol, nil
		}
		return x.Value, nil
	case *Bitfield:
		return x.Value, nil
	case *String:
		return x.Value, nil
	case *Container:
		out := make(map[string]any, len(x.members))
		for _, c := range x.members {
			v, err := ToNative(c)
			if err != nil {
				return nil, fmt.Errorf("converting %q: %w", c.Name(), err)
			}
			out[c.Name()] = v
		}
		return out, nil
	case *Array:
		out := make([]any, 0, len(x.members))
		for _, c := range x.members {
			v, err := ToNative(c)
			if err != nil {
				return nil, fmt.Errorf("converting %q[%s]: %w", x.name, c.Name(), err)
			}
			out = append(out, v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("converting %q: unsupported member kind %s", m.Name(), m.Kind())
}

// Node builds an order-preserving YAML node for m.
func Node(m Member) (*yaml.Node, error) {
	m, err := resolve(m)
	if err != nil {
		return nil, err
	}
	switch x := m.(type) {
	case *Container:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, c := range x.members {
			child, err := Node(c)
			if err != nil {
				return nil, fmt.Errorf("encoding %q: %w", c.Name(), err)
			}
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Name()}
			n.Content = append(n.Content, key, child)
		}
		return n, nil
	case *Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, c := range x.members {
			child, err := Node(c)
			if err != nil {
				return nil, fmt.Errorf("encoding %q[%s]: %w", x.name, c.Name(), err)
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	}

	v, err := ToNative(m)
	if err != nil {
		return nil, err
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding %q: %w", m.Name(), err)
	}
	return n, nil
}

// MarshalYAML encodes the container as an ordered mapping.
func (c *Container) MarshalYAML() (interface{}, error) { return Node(c) }

// MarshalYAML encodes the array as a sequence.
func (a *Array) MarshalYAML() (interface{}, error) { return Node(a) }
