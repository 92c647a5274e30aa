package refs

import (
	"slices"
	"strings"

	"github.com/erraggy/oasmerge/internal/pathutil"
	"github.com/erraggy/oasmerge/oaserrors"
)

// Canonicalizer maps any address onto the canonical namespace root.
//
// An address is reduced to its local path; a leading canonical root or alias
// root is stripped at most once. What remains is the definition path: its
// first segment names the definition and further segments descend into it.
type Canonicalizer struct {
	root    string   // "#/components/schemas/"
	prefix  string   // "components/schemas/"
	aliases []string // local prefixes, e.g. "definitions/"
}

// NewCanonicalizer returns a Canonicalizer for root. When aliases is empty the
// well-known roots other than root are used.
func NewCanonicalizer(root string, aliases ...string) *Canonicalizer {
	root = normalizeRoot(root)
	if len(aliases) == 0 {
		aliases = pathutil.KnownRoots()
	}
	c := &Canonicalizer{root: root, prefix: localPrefix(root)}
	if c.prefix == "" {
		// A flat namespace has no aliases.
		return c
	}
	for _, a := range aliases {
		p := localPrefix(normalizeRoot(a))
		if p == c.prefix || p == "" || slices.Contains(c.aliases, p) {
			continue
		}
		c.aliases = append(c.aliases, p)
	}
	return c
}

// Root returns the canonical root, always ending in "/".
func (c *Canonicalizer) Root() string {
	return c.root
}

// Path returns the definition path of addr relative to the namespace root.
// An address that names the root itself is a MalformedPointerError.
func (c *Canonicalizer) Path(addr Address) (string, error) {
	local := addr.Local
	if c.prefix != "" && strings.HasPrefix(local, c.prefix) {
		local = local[len(c.prefix):]
	} else {
		for _, a := range c.aliases {
			if strings.HasPrefix(local, a) {
				local = local[len(a):]
				break
			}
		}
	}
	if local == "" {
		return "", &oaserrors.MalformedPointerError{
			Raw:     addr.Raw,
			Message: "address names the namespace root, not a definition",
		}
	}
	return local, nil
}

// Canonicalize returns the canonical internal form of addr.
// Applying it to its own output returns the same string.
func (c *Canonicalizer) Canonicalize(addr Address) (string, error) {
	p, err := c.Path(addr)
	if err != nil {
		return "", err
	}
	return c.root + p, nil
}

// Segments returns the definition path of addr split into unescaped mapping keys.
func (c *Canonicalizer) Segments(addr Address) ([]string, error) {
	p, err := c.Path(addr)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = pathutil.UnescapePointerToken(s)
	}
	return parts, nil
}

// normalizeRoot makes root start with "#/" and end with "/".
func normalizeRoot(root string) string {
	root = strings.TrimPrefix(root, "#")
	root = strings.Trim(root, "/")
	if root == "" {
		return pathutil.FragmentSeparator
	}
	return pathutil.FragmentSeparator + root + "/"
}

// localPrefix drops the leading "#/" of a normalized root.
func localPrefix(root string) string {
	return strings.TrimPrefix(root, pathutil.FragmentSeparator)
}
