package tree

// DeepCopy returns a structurally identical node that shares no containers with n.
// Scalars are immutable and are returned as-is.
func DeepCopy(n Node) Node {
	switch v := n.(type) {
	case *Mapping:
		if v == nil {
			return (*Mapping)(nil)
		}
		out := &Mapping{
			pairs: make([]Pair, len(v.pairs)),
			index: make(map[string]int, len(v.pairs)),
		}
		for i, p := range v.pairs {
			out.pairs[i] = Pair{Key: p.Key, Value: DeepCopy(p.Value)}
			out.index[p.Key] = i
		}
		return out
	case *Sequence:
		if v == nil {
			return (*Sequence)(nil)
		}
		out := &Sequence{items: make([]Node, len(v.items))}
		for i, item := range v.items {
			out.items[i] = DeepCopy(item)
		}
		return out
	default:
		return n
	}
}

// Equal reports whether a and b are structurally equal.
// Mapping keys must appear in the same order; integer and float scalars are
// distinct even when numerically equal.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *Mapping:
		bv := b.(*Mapping)
		if av.Len() != bv.Len() {
			return false
		}
		for i := range av.Len() {
			if av.pairs[i].Key != bv.pairs[i].Key {
				return false
			}
			if !Equal(av.pairs[i].Value, bv.pairs[i].Value) {
				return false
			}
		}
		return true
	case *Sequence:
		bv := b.(*Sequence)
		if av.Len() != bv.Len() {
			return false
		}
		for i := range av.Len() {
			if !Equal(av.items[i], bv.items[i]) {
				return false
			}
		}
		return true
	case Scalar:
		return av.value == b.(Scalar).value
	default:
		return false
	}
}

// ToAny converts n into plain Go values: map[string]any, []any, and scalar values.
// Key order is lost; use it for comparisons and debugging, not for output.
func ToAny(n Node) any {
	switch v := n.(type) {
	case *Mapping:
		out := make(map[string]any, v.Len())
		for k, child := range v.All() {
			out[k] = ToAny(child)
		}
		return out
	case *Sequence:
		out := make([]any, 0, v.Len())
		for _, child := range v.All() {
			out = append(out, ToAny(child))
		}
		return out
	case Scalar:
		return v.value
	default:
		return nil
	}
}
