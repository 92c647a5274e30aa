package oaserrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrParse indicates a fragment failed to parse.
	ErrParse = errors.New("parse error")

	// ErrCollision indicates two fragments define the same key.
	ErrCollision = errors.New("name collision")

	// ErrMalformedPointer indicates a pointer whose address is not in a recognized form.
	ErrMalformedPointer = errors.New("malformed pointer")

	// ErrReference indicates any reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrUnresolvedReference indicates an address that names no definition.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrCircularReference indicates a pointer chain that leads back to itself.
	ErrCircularReference = errors.New("circular reference")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ParseError represents a failure to turn a fragment into a tree.
type ParseError struct {
	// Path is the fragment name or file path
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// CollisionError reports a key contributed by two fragments when the
// collision strategy does not allow overwriting.
type CollisionError struct {
	// Section is the table the key belongs to: "definitions" or "routes"
	Section string
	// Key is the colliding definition name or route key
	Key string
	// FirstSource is the fragment that contributed the key first
	FirstSource string
	// SecondSource is the fragment that contributed it again
	SecondSource string
}

// Error returns a human-readable error message.
func (e *CollisionError) Error() string {
	section := e.Section
	if section == "" {
		section = "key"
	}
	return fmt.Sprintf("name collision: %s %q defined in both %s and %s",
		section, e.Key, e.FirstSource, e.SecondSource)
}

// Is reports whether target matches this error type.
func (e *CollisionError) Is(target error) bool {
	return target == ErrCollision
}

// MalformedPointerError reports a pointer-shaped mapping whose address is
// neither "<path>#/<local-path>" nor "#/<local-path>".
type MalformedPointerError struct {
	// Raw is the address as written, or a rendering of the non-string value
	Raw string
	// Path is the location of the pointer within the tree being processed
	Path string
	// Message explains which rule was violated
	Message string
}

// Error returns a human-readable error message.
func (e *MalformedPointerError) Error() string {
	msg := fmt.Sprintf("malformed pointer %q", e.Raw)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *MalformedPointerError) Is(target error) bool {
	return target == ErrMalformedPointer
}

// ReferenceError represents a failure to resolve a pointer.
type ReferenceError struct {
	// Ref is the address as written in the pointer that failed
	Ref string
	// Path is the location of the pointer within the tree being processed
	Path string
	// IsCircular is true if resolution led back to an address already being resolved
	IsCircular bool
	// Cycle names the definitions on the cycle in resolution order (circular only)
	Cycle []string
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "unresolved reference"
	if e.IsCircular {
		msg = "circular reference"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if len(e.Cycle) > 0 {
		msg += " (" + strings.Join(e.Cycle, " -> ") + " -> " + e.Cycle[0] + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, plus ErrCircularReference or ErrUnresolvedReference
// depending on IsCircular.
func (e *ReferenceError) Is(target error) bool {
	switch target {
	case ErrReference:
		return true
	case ErrCircularReference:
		return e.IsCircular
	case ErrUnresolvedReference:
		return !e.IsCircular
	}
	return false
}

// ResourceLimitError represents a resource exhaustion condition.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded, e.g. "inline_depth"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// Kind returns the stable name of the error kind carried by err, suitable for
// diagnostics: "NameCollision", "MalformedPointer", "UnresolvedReference",
// "CircularReference", "ParseError", "ResourceLimit", "ConfigError", or "Error"
// for anything else.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCollision):
		return "NameCollision"
	case errors.Is(err, ErrMalformedPointer):
		return "MalformedPointer"
	case errors.Is(err, ErrCircularReference):
		return "CircularReference"
	case errors.Is(err, ErrUnresolvedReference):
		return "UnresolvedReference"
	case errors.Is(err, ErrParse):
		return "ParseError"
	case errors.Is(err, ErrResourceLimit):
		return "ResourceLimit"
	case errors.Is(err, ErrConfig):
		return "ConfigError"
	default:
		return "Error"
	}
}
