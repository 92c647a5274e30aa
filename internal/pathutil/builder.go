package pathutil

import (
	"strconv"
	"strings"
)

// PathBuilder builds a location inside a document tree with push/pop semantics.
// The string form is only materialized when String() is called, so walkers can
// keep one builder for a whole traversal and pay for formatting only on error.
//
// Keys are joined with "." and indices are rendered as "[i]". Keys that would
// make the result ambiguous (empty, or containing '.', '[', ']', '"', or
// whitespace) are rendered as a quoted index: routes["a.b"].
type PathBuilder struct {
	segments []segment
}

type segment struct {
	key   string
	index int
	isIdx bool
}

// Push adds a mapping key segment.
func (p *PathBuilder) Push(key string) {
	p.segments = append(p.segments, segment{key: key})
}

// PushIndex adds a sequence index segment.
func (p *PathBuilder) PushIndex(i int) {
	p.segments = append(p.segments, segment{index: i, isIdx: true})
}

// Pop removes the last segment.
func (p *PathBuilder) Pop() {
	if len(p.segments) == 0 {
		return
	}
	p.segments = p.segments[:len(p.segments)-1]
}

// Reset clears the builder for reuse.
func (p *PathBuilder) Reset() {
	p.segments = p.segments[:0]
}

// Depth returns the number of segments.
func (p *PathBuilder) Depth() int {
	return len(p.segments)
}

// String materializes the full path.
func (p *PathBuilder) String() string {
	if len(p.segments) == 0 {
		return ""
	}
	var b strings.Builder
	for i, seg := range p.segments {
		switch {
		case seg.isIdx:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.index))
			b.WriteByte(']')
		case needsQuoting(seg.key):
			b.WriteByte('[')
			b.WriteString(strconv.Quote(seg.key))
			b.WriteByte(']')
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.key)
		}
	}
	return b.String()
}

func needsQuoting(key string) bool {
	if key == "" {
		return true
	}
	return strings.ContainsAny(key, ".[]\" \t\n")
}
