// Package rewriter rewrites reference pointer addresses so that they are valid
// inside the merged document.
//
// Rewriting is purely syntactic: pointers stay pointers, only their address
// changes, and whether the new address names an existing definition is not
// checked here (see the verify package). The input tree is never modified.
package rewriter

import (
	"errors"

	"github.com/erraggy/oasmerge/internal/pathutil"
	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/erraggy/oasmerge/refs"
	"github.com/erraggy/oasmerge/tree"
)

// AddressResolver maps a pointer address as written to the address it should
// have in the merged document.
type AddressResolver func(raw string) (string, error)

// CanonicalResolver returns a resolver that collapses every address, external
// or internal, onto the canonicalizer's root.
func CanonicalResolver(c *refs.Canonicalizer) AddressResolver {
	return func(raw string) (string, error) {
		addr, err := refs.ParseAddress(raw)
		if err != nil {
			return "", err
		}
		return c.Canonicalize(addr)
	}
}

// Rewriter rewrites pointer addresses throughout a tree.
type Rewriter struct {
	resolve AddressResolver
	key     string

	// Rewritten counts the pointers whose address changed.
	Rewritten int
	// Visited counts all pointers encountered.
	Visited int
}

// New returns a Rewriter that recognizes pointers by key.
// An empty key means refs.DefaultPointerKey.
func New(resolve AddressResolver, key string) *Rewriter {
	if key == "" {
		key = refs.DefaultPointerKey
	}
	return &Rewriter{resolve: resolve, key: key}
}

// Rewrite returns a copy of n with every pointer address passed through resolve.
func Rewrite(n tree.Node, resolve AddressResolver) (tree.Node, error) {
	return New(resolve, "").Rewrite(n)
}

// Rewrite returns a copy of n with every pointer address resolved.
func (r *Rewriter) Rewrite(n tree.Node) (tree.Node, error) {
	return r.RewriteAt(n)
}

// RewriteAt is Rewrite for a subtree found at base within a larger document,
// so that diagnostics name the full location.
func (r *Rewriter) RewriteAt(n tree.Node, base ...string) (tree.Node, error) {
	path := pathutil.Get()
	defer pathutil.Put(path)
	for _, seg := range base {
		path.Push(seg)
	}
	return r.rewrite(n, path)
}

func (r *Rewriter) rewrite(n tree.Node, path *pathutil.PathBuilder) (tree.Node, error) {
	switch v := n.(type) {
	case *tree.Mapping:
		if refs.IsPointer(v, r.key) {
			return r.rewritePointer(v, path)
		}
		out := tree.NewMapping()
		for k, child := range v.All() {
			path.Push(k)
			nc, err := r.rewrite(child, path)
			path.Pop()
			if err != nil {
				return nil, err
			}
			out.Set(k, nc)
		}
		return out, nil
	case *tree.Sequence:
		out := tree.NewSequence()
		for i, child := range v.All() {
			path.PushIndex(i)
			nc, err := r.rewrite(child, path)
			path.Pop()
			if err != nil {
				return nil, err
			}
			out.Append(nc)
		}
		return out, nil
	default:
		return n, nil
	}
}

func (r *Rewriter) rewritePointer(p *tree.Mapping, path *pathutil.PathBuilder) (tree.Node, error) {
	r.Visited++
	raw, err := refs.PointerAddress(p, r.key)
	if err != nil {
		return nil, withPath(err, path)
	}
	addr, err := r.resolve(raw)
	if err != nil {
		return nil, withPath(err, path)
	}
	if addr != raw {
		r.Rewritten++
	}
	return refs.NewPointer(r.key, addr), nil
}

// withPath records where a malformed pointer was found.
func withPath(err error, path *pathutil.PathBuilder) error {
	var mpe *oaserrors.MalformedPointerError
	if errors.As(err, &mpe) && mpe.Path == "" {
		mpe.Path = path.String()
	}
	return err
}
