// Package refs recognizes reference pointers inside generic trees and maps
// their addresses onto the merged document's canonical namespace.
//
// A reference pointer is not a distinct node type: it is a mapping with exactly
// one entry whose key is the pointer key (usually "$ref"). Both the rewriter and
// the inliner use [IsPointer] and [Canonicalizer] from this package so that the
// two merge modes agree on what a pointer is and where it points.
package refs

import (
	"fmt"
	"strings"

	"github.com/erraggy/oasmerge/internal/pathutil"
	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/erraggy/oasmerge/tree"
)

// DefaultPointerKey is the mapping key that marks a reference pointer.
const DefaultPointerKey = "$ref"

// IsPointer reports whether n is shaped like a reference pointer: a mapping with
// exactly one entry, keyed by key. A mapping that carries the pointer key next
// to sibling keys is an ordinary mapping.
func IsPointer(n tree.Node, key string) bool {
	m, ok := n.(*tree.Mapping)
	if !ok || m.Len() != 1 {
		return false
	}
	return m.Has(key)
}

// PointerAddress returns the address stored in a pointer-shaped mapping.
// A non-string value is reported as a MalformedPointerError.
func PointerAddress(n tree.Node, key string) (string, error) {
	m, ok := n.(*tree.Mapping)
	if !ok {
		return "", fmt.Errorf("refs: %s is not a pointer", describe(n))
	}
	v, ok := m.Get(key)
	if !ok {
		return "", fmt.Errorf("refs: mapping has no %q key", key)
	}
	if s, ok := v.(tree.Scalar); ok {
		if str, ok := s.AsString(); ok {
			return str, nil
		}
		return "", &oaserrors.MalformedPointerError{
			Raw:     s.Text(),
			Message: fmt.Sprintf("address must be a string, got %s", describe(v)),
		}
	}
	return "", &oaserrors.MalformedPointerError{
		Raw:     describe(v),
		Message: fmt.Sprintf("address must be a string, got %s", describe(v)),
	}
}

// NewPointer builds a pointer mapping {key: address}.
func NewPointer(key, address string) *tree.Mapping {
	return tree.NewMapping(tree.Pair{Key: key, Value: tree.String(address)})
}

// Address is a parsed pointer target.
type Address struct {
	// Raw is the address exactly as written.
	Raw string
	// Document is the part before the last "#/"; empty for internal addresses.
	Document string
	// Local is the slash-separated path after the last "#/".
	Local string
}

// IsExternal reports whether the address names another fragment.
func (a Address) IsExternal() bool {
	return a.Document != ""
}

// ParseAddress splits raw into its document and local parts.
// Both "<path>#/<local-path>" and "#/<local-path>" are accepted; anything else,
// or an empty local path, is a MalformedPointerError.
func ParseAddress(raw string) (Address, error) {
	i := strings.LastIndex(raw, pathutil.FragmentSeparator)
	if i < 0 {
		return Address{}, &oaserrors.MalformedPointerError{
			Raw:     raw,
			Message: `address has no "#/" local path`,
		}
	}
	addr := Address{
		Raw:      raw,
		Document: raw[:i],
		Local:    raw[i+len(pathutil.FragmentSeparator):],
	}
	if addr.Local == "" {
		return Address{}, &oaserrors.MalformedPointerError{
			Raw:     raw,
			Message: "address has an empty local path",
		}
	}
	return addr, nil
}

func describe(n tree.Node) string {
	if n == nil {
		return "nothing"
	}
	if s, ok := n.(tree.Scalar); ok {
		switch s.Value().(type) {
		case nil:
			return "null"
		case bool:
			return "boolean"
		case int64, float64:
			return "number"
		}
	}
	return n.Kind().String()
}
