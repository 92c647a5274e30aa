package tree

import (
	"errors"
	"fmt"

	"github.com/erraggy/oasmerge/internal/pathutil"
)

// SkipChildren can be returned from a WalkFunc to skip the children of the
// current node without stopping the walk.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every node in pre-order. path renders the location
// of n (for example "paths./login.responses.400") and is only valid for the
// duration of the call; capture path.String() if it must be retained.
type WalkFunc func(path fmt.Stringer, n Node) error

// Walk visits root and all of its descendants in document order.
// Returning SkipChildren skips the current subtree; any other error stops the
// walk and is returned.
func Walk(root Node, fn WalkFunc) error {
	path := pathutil.Get()
	defer pathutil.Put(path)
	err := walk(path, root, fn)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	return err
}

func walk(path *pathutil.PathBuilder, n Node, fn WalkFunc) error {
	if err := fn(path, n); err != nil {
		return err
	}
	switch v := n.(type) {
	case *Mapping:
		for k, child := range v.All() {
			path.Push(k)
			err := walk(path, child, fn)
			path.Pop()
			if err != nil && !errors.Is(err, SkipChildren) {
				return err
			}
		}
	case *Sequence:
		for i, child := range v.All() {
			path.PushIndex(i)
			err := walk(path, child, fn)
			path.Pop()
			if err != nil && !errors.Is(err, SkipChildren) {
				return err
			}
		}
	}
	return nil
}
