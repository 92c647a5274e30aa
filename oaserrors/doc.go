// Package oaserrors provides structured error types for oasmerge.
//
// Import path: github.com/erraggy/oasmerge/oaserrors
//
// Every fatal merge failure is one of the types below, so callers can
// distinguish them with [errors.Is] and [errors.As] and report the offending
// key, address, or location.
//
// # Error Types
//
//   - [ParseError]: a fragment could not be parsed, or its root is not a mapping
//   - [CollisionError]: two fragments define the same definition name or route key
//   - [MalformedPointerError]: a pointer-shaped mapping carries an unusable address
//   - [ReferenceError]: an address names no definition, or resolution is circular
//   - [ResourceLimitError]: inlining went deeper than the configured limit
//   - [ConfigError]: invalid configuration or input options
//
// # Sentinel Errors
//
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrCollision]: Matches any [CollisionError]
//   - [ErrMalformedPointer]: Matches any [MalformedPointerError]
//   - [ErrReference]: Matches any [ReferenceError]
//   - [ErrUnresolvedReference]: Matches [ReferenceError] with IsCircular=false
//   - [ErrCircularReference]: Matches [ReferenceError] with IsCircular=true
//   - [ErrResourceLimit]: Matches any [ResourceLimitError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Usage Examples
//
//	result, err := merger.Merge(merger.WithMode(merger.ModeInline))
//	if errors.Is(err, oaserrors.ErrCircularReference) {
//	    var refErr *oaserrors.ReferenceError
//	    errors.As(err, &refErr)
//	    fmt.Println("cycle:", strings.Join(refErr.Cycle, " -> "))
//	}
//
// [Kind] maps any error to the stable kind name printed by the CLI.
package oaserrors
