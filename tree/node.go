package tree

import (
	"iter"
	"math"
	"strconv"
)

// Kind identifies which variant of Node a value is.
type Kind int

const (
	// KindScalar is a string, number, boolean, or null leaf.
	KindScalar Kind = iota
	// KindMapping is an ordered set of unique string keys to nodes.
	KindMapping
	// KindSequence is an ordered list of nodes.
	KindSequence
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Node is one of *Mapping, *Sequence, or Scalar.
// A nil Node means "absent" and is only valid at the root of a fragment.
type Node interface {
	Kind() Kind
	isNode()
}

// Pair is one key/value entry of a Mapping.
type Pair struct {
	Key   string
	Value Node
}

// Mapping is an ordered mapping with unique keys.
// Insertion order is preserved so that serialized output is stable across runs.
//
// The zero value is an empty mapping ready to use.
type Mapping struct {
	pairs []Pair
	index map[string]int // key -> position in pairs
}

// NewMapping returns a mapping holding pairs in order.
// A repeated key replaces the earlier value and keeps the earlier position.
func NewMapping(pairs ...Pair) *Mapping {
	m := &Mapping{
		pairs: make([]Pair, 0, len(pairs)),
		index: make(map[string]int, len(pairs)),
	}
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Kind returns KindMapping.
func (m *Mapping) Kind() Kind { return KindMapping }

func (*Mapping) isNode() {}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.pairs)
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Node, bool) {
	if m == nil || m.index == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.pairs[i].Value, true
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores value under key. Existing keys keep their position.
func (m *Mapping) Set(key string, value Node) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.pairs[i].Value = value
		return
	}
	m.index[key] = len(m.pairs)
	m.pairs = append(m.pairs, Pair{Key: key, Value: value})
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.pairs))
	for i, p := range m.pairs {
		keys[i] = p.Key
	}
	return keys
}

// All iterates over the entries in insertion order.
func (m *Mapping) All() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		if m == nil {
			return
		}
		for _, p := range m.pairs {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Sequence is an ordered list of nodes.
type Sequence struct {
	items []Node
}

// NewSequence returns a sequence holding items in order.
func NewSequence(items ...Node) *Sequence {
	s := &Sequence{items: make([]Node, len(items))}
	copy(s.items, items)
	return s
}

// Kind returns KindSequence.
func (s *Sequence) Kind() Kind { return KindSequence }

func (*Sequence) isNode() {}

// Len returns the number of items.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// At returns the item at index i. It panics if i is out of range.
func (s *Sequence) At(i int) Node {
	return s.items[i]
}

// Append adds items to the end of the sequence.
func (s *Sequence) Append(items ...Node) {
	s.items = append(s.items, items...)
}

// All iterates over the items in order.
func (s *Sequence) All() iter.Seq2[int, Node] {
	return func(yield func(int, Node) bool) {
		if s == nil {
			return
		}
		for i, n := range s.items {
			if !yield(i, n) {
				return
			}
		}
	}
}

// Scalar is an immutable leaf. Its value is one of nil, bool, int64, float64, or string.
type Scalar struct {
	value any
}

// Kind returns KindScalar.
func (Scalar) Kind() Kind { return KindScalar }

func (Scalar) isNode() {}

// String returns a string scalar.
func String(s string) Scalar { return Scalar{value: s} }

// Int returns an integer scalar.
func Int(i int64) Scalar { return Scalar{value: i} }

// Float returns a floating point scalar.
func Float(f float64) Scalar { return Scalar{value: f} }

// Bool returns a boolean scalar.
func Bool(b bool) Scalar { return Scalar{value: b} }

// Null returns the null scalar.
func Null() Scalar { return Scalar{} }

// Value returns the underlying Go value.
func (s Scalar) Value() any { return s.value }

// IsNull reports whether the scalar is null.
func (s Scalar) IsNull() bool { return s.value == nil }

// AsString returns the value if the scalar holds a string.
func (s Scalar) AsString() (string, bool) {
	str, ok := s.value.(string)
	return str, ok
}

// Text renders the scalar the way it would appear unquoted in YAML.
func (s Scalar) Text() string {
	switch v := s.value.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case string:
		return v
	default:
		return ""
	}
}

// formatFloat keeps a float recognizable as a float after a YAML round trip.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return s
		}
	}
	return s + ".0"
}
