// Package inliner replaces reference pointers with deep copies of the
// definitions they point to, producing trees with no pointers left.
//
// Resolution uses the same canonical addressing as the rewriter: an address is
// reduced to a definition path whose first segment names a namespace entry and
// whose remaining segments descend into it. Substituted definitions are inlined
// too, so the whole reachable reference graph is expanded.
//
// A chain of pointers that leads back to an address still being expanded is
// reported as a circular reference instead of recursing forever. The stack of
// addresses is per resolution path: the same definition may appear any number
// of times in unrelated branches.
package inliner

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/oasmerge/internal/pathutil"
	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/erraggy/oasmerge/refs"
	"github.com/erraggy/oasmerge/tree"
)

// DefaultMaxDepth bounds how many pointers may be expanded inside one another.
const DefaultMaxDepth = 64

// Option configures an Inliner.
type Option func(*Inliner)

// WithPointerKey sets the mapping key that marks a pointer.
func WithPointerKey(key string) Option {
	return func(in *Inliner) {
		if key != "" {
			in.key = key
		}
	}
}

// WithMaxDepth sets the expansion depth limit. Values below 1 keep the default.
func WithMaxDepth(depth int) Option {
	return func(in *Inliner) {
		if depth > 0 {
			in.maxDepth = depth
		}
	}
}

// Inliner expands pointers against a fixed namespace.
// An Inliner caches expanded definitions and is not safe for concurrent use.
type Inliner struct {
	namespace *tree.Mapping
	canon     *refs.Canonicalizer
	key       string
	maxDepth  int
	rootPath  []string

	memo  map[string]tree.Node
	stack []string

	// Inlined counts the pointers substituted so far.
	Inlined int
}

// New returns an Inliner resolving addresses against namespace.
// The namespace is read, never modified.
func New(namespace *tree.Mapping, canon *refs.Canonicalizer, opts ...Option) *Inliner {
	in := &Inliner{
		namespace: namespace,
		canon:     canon,
		key:       refs.DefaultPointerKey,
		maxDepth:  DefaultMaxDepth,
		rootPath:  pathutil.RootSegments(canon.Root()),
		memo:      make(map[string]tree.Node),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Inline returns a copy of n with every pointer replaced by the fully
// inlined target, using the "#/components/schemas/" root.
func Inline(n tree.Node, namespace *tree.Mapping) (tree.Node, error) {
	return New(namespace, refs.NewCanonicalizer(pathutil.RefPrefixSchemas)).Inline(n)
}

// Inline returns a copy of n with every pointer replaced by the fully inlined target.
func (in *Inliner) Inline(n tree.Node) (tree.Node, error) {
	return in.InlineAt(n)
}

// InlineAt is Inline for a subtree found at base within a larger document,
// so that diagnostics name the full location.
func (in *Inliner) InlineAt(n tree.Node, base ...string) (tree.Node, error) {
	path := pathutil.Get()
	defer pathutil.Put(path)
	for _, seg := range base {
		path.Push(seg)
	}
	return in.inline(n, path)
}

// InlineNamespace returns the namespace with every definition fully inlined,
// in the namespace's key order.
func (in *Inliner) InlineNamespace() (*tree.Mapping, error) {
	out := tree.NewMapping()
	for name := range in.namespace.All() {
		resolved, err := in.expand(pathutil.EscapePointerToken(name), []string{name}, "", nil)
		if err != nil {
			return nil, err
		}
		out.Set(name, resolved)
	}
	return out, nil
}

func (in *Inliner) inline(n tree.Node, path *pathutil.PathBuilder) (tree.Node, error) {
	switch v := n.(type) {
	case *tree.Mapping:
		if refs.IsPointer(v, in.key) {
			return in.inlinePointer(v, path)
		}
		out := tree.NewMapping()
		for k, child := range v.All() {
			path.Push(k)
			nc, err := in.inline(child, path)
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
			nc, err := in.inline(child, path)
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

func (in *Inliner) inlinePointer(p *tree.Mapping, path *pathutil.PathBuilder) (tree.Node, error) {
	raw, err := refs.PointerAddress(p, in.key)
	if err != nil {
		return nil, withPath(err, path)
	}
	addr, err := refs.ParseAddress(raw)
	if err != nil {
		return nil, withPath(err, path)
	}
	key, err := in.canon.Path(addr)
	if err != nil {
		return nil, withPath(err, path)
	}
	segs, err := in.canon.Segments(addr)
	if err != nil {
		return nil, withPath(err, path)
	}
	resolved, err := in.expand(key, segs, raw, path)
	if err != nil {
		return nil, err
	}
	in.Inlined++
	return resolved, nil
}

// expand returns a fresh copy of the fully inlined node at the definition path.
// raw and at describe the pointer that asked for it; both are empty when a
// namespace entry is expanded directly.
func (in *Inliner) expand(key string, segs []string, raw string, at *pathutil.PathBuilder) (tree.Node, error) {
	if cached, ok := in.memo[key]; ok {
		return tree.DeepCopy(cached), nil
	}

	if i := slices.Index(in.stack, key); i >= 0 {
		cycle := slices.Clone(in.stack[i:])
		return nil, &oaserrors.ReferenceError{
			Ref:        refOrKey(raw, key),
			Path:       pathString(at),
			IsCircular: true,
			Cycle:      cycle,
		}
	}
	if len(in.stack) >= in.maxDepth {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "inline depth",
			Limit:        int64(in.maxDepth),
			Actual:       int64(len(in.stack) + 1),
			Message:      fmt.Sprintf("expanding %s at %s", refOrKey(raw, key), pathString(at)),
		}
	}

	target, err := in.lookup(segs)
	if err != nil {
		return nil, &oaserrors.ReferenceError{
			Ref:     refOrKey(raw, key),
			Path:    pathString(at),
			Message: err.Error(),
		}
	}

	in.stack = append(in.stack, key)
	targetPath := pathutil.Get()
	defer pathutil.Put(targetPath)
	for _, seg := range in.rootPath {
		targetPath.Push(seg)
	}
	for _, seg := range segs {
		targetPath.Push(seg)
	}
	resolved, err := in.inline(target, targetPath)
	in.stack = in.stack[:len(in.stack)-1]
	if err != nil {
		return nil, err
	}

	in.memo[key] = resolved
	return tree.DeepCopy(resolved), nil
}

// lookup walks segs from the namespace root.
func (in *Inliner) lookup(segs []string) (tree.Node, error) {
	cur, ok := in.namespace.Get(segs[0])
	if !ok {
		return nil, fmt.Errorf("no definition named %q", segs[0])
	}
	for i, seg := range segs[1:] {
		switch v := cur.(type) {
		case *tree.Mapping:
			next, ok := v.Get(seg)
			if !ok {
				return nil, fmt.Errorf("definition %q has no %q", strings.Join(segs[:i+1], "/"), seg)
			}
			cur = next
		case *tree.Sequence:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= v.Len() {
				return nil, fmt.Errorf("definition %q has no item %q", strings.Join(segs[:i+1], "/"), seg)
			}
			cur = v.At(idx)
		default:
			return nil, fmt.Errorf("definition %q is a scalar", strings.Join(segs[:i+1], "/"))
		}
	}
	return cur, nil
}

func refOrKey(raw, key string) string {
	if raw != "" {
		return raw
	}
	return key
}

func pathString(p *pathutil.PathBuilder) string {
	if p == nil {
		return ""
	}
	return p.String()
}

// withPath records where a malformed pointer was found.
func withPath(err error, path *pathutil.PathBuilder) error {
	var mpe *oaserrors.MalformedPointerError
	if errors.As(err, &mpe) && mpe.Path == "" {
		mpe.Path = path.String()
	}
	return err
}
