// Package verify checks that a merged document is reference-consistent: every
// pointer in it must address a node inside the same document.
//
// Addresses are evaluated as JSON pointers from the document root, with "~1"
// and "~0" unescaped, so "#/components/schemas/User" must name the User entry
// of the components.schemas mapping. Pointers to other files are findings too,
// since a merged document has to stand alone.
package verify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/erraggy/oasmerge/internal/pathutil"
	"github.com/erraggy/oasmerge/internal/severity"
	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/erraggy/oasmerge/refs"
	"github.com/erraggy/oasmerge/tree"
)

// Finding describes one pointer that does not resolve.
type Finding struct {
	// Ref is the address as written.
	Ref string
	// Path is the location of the pointer in the document.
	Path string
	// Message explains why the address does not resolve.
	Message string
	// Severity is SeverityError for every finding produced today.
	Severity severity.Severity
}

// String returns a one-line description of the finding.
func (f Finding) String() string {
	return fmt.Sprintf("%s: %s (%s)", f.Path, f.Ref, f.Message)
}

// Report is the outcome of verifying one document.
type Report struct {
	// Pointers counts every pointer examined.
	Pointers int
	// Findings lists the pointers that do not resolve, in document order.
	Findings []Finding
}

// OK reports whether every pointer resolved.
func (r *Report) OK() bool {
	return len(r.Findings) == 0
}

// Err returns nil for a clean report, otherwise an error for the first finding.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	f := r.Findings[0]
	msg := f.Message
	if n := len(r.Findings) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return &oaserrors.ReferenceError{Ref: f.Ref, Path: f.Path, Message: msg}
}

// Document verifies every pointer in doc, recognized by key.
// An empty key means refs.DefaultPointerKey.
func Document(doc tree.Node, key string) *Report {
	if key == "" {
		key = refs.DefaultPointerKey
	}
	r := &Report{}
	// The callback never fails, so Walk cannot either.
	_ = tree.Walk(doc, func(path fmt.Stringer, n tree.Node) error {
		if !refs.IsPointer(n, key) {
			return nil
		}
		r.Pointers++
		raw, err := refs.PointerAddress(n, key)
		if err != nil {
			var mpe *oaserrors.MalformedPointerError
			if errors.As(err, &mpe) {
				raw = mpe.Raw
			}
			r.add(raw, path.String(), "address is not a string")
			return tree.SkipChildren
		}
		if msg := resolve(doc, raw); msg != "" {
			r.add(raw, path.String(), msg)
		}
		return tree.SkipChildren
	})
	return r
}

func (r *Report) add(raw, path, msg string) {
	r.Findings = append(r.Findings, Finding{
		Ref:      raw,
		Path:     path,
		Message:  msg,
		Severity: severity.SeverityError,
	})
}

// resolve returns an empty string when raw names a node of doc, otherwise the reason it does not.
func resolve(doc tree.Node, raw string) string {
	if !strings.HasPrefix(raw, pathutil.FragmentSeparator) {
		if strings.Contains(raw, pathutil.FragmentSeparator) {
			return "address points outside the document"
		}
		return "address is not a local JSON pointer"
	}
	local := raw[len(pathutil.FragmentSeparator):]
	if local == "" {
		return "address names the document root"
	}

	cur := doc
	for _, tok := range strings.Split(local, "/") {
		tok = pathutil.UnescapePointerToken(tok)
		switch v := cur.(type) {
		case *tree.Mapping:
			next, ok := v.Get(tok)
			if !ok {
				return fmt.Sprintf("no entry %q", tok)
			}
			cur = next
		case *tree.Sequence:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= v.Len() {
				return fmt.Sprintf("no item %q", tok)
			}
			cur = v.At(i)
		default:
			return fmt.Sprintf("cannot descend into a scalar at %q", tok)
		}
	}
	return ""
}
