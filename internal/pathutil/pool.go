package pathutil

import "sync"

const (
	defaultPathCap = 16  // typical nesting of a route or schema body plus its namespace key
	maxPathCap     = 128 // builders grown by deep inline expansion are not reused
)

var pathBuilderPool = sync.Pool{
	New: func() any {
		return &PathBuilder{
			segments: make([]segment, 0, defaultPathCap),
		}
	},
}

// Get returns an empty PathBuilder for tracking the walk position used in
// rewrite and inline diagnostics such as paths./login.post.
func Get() *PathBuilder {
	p := pathBuilderPool.Get().(*PathBuilder)
	p.Reset()
	return p
}

// Put releases p once the walk that owns it is done. Its segments must not be
// used afterward; callers copy what they need with String first.
func Put(p *PathBuilder) {
	if p == nil || cap(p.segments) > maxPathCap {
		return
	}
	pathBuilderPool.Put(p)
}
