// Package severity provides the severity levels attached to merge warnings
// and verification findings.
//
// Levels are ordered from least to most severe: Info < Warning < Error.
package severity

import "log/slog"

// Severity indicates how much attention a merge diagnostic needs.
type Severity int

const (
	// SeverityInfo marks a processing choice worth knowing about, such as a
	// skipped fragment or an operation with no route mapping.
	SeverityInfo Severity = iota

	// SeverityWarning marks a resolved problem that may still surprise the
	// reader, such as an overwritten definition.
	SeverityWarning

	// SeverityError marks a problem that makes the merged document unusable,
	// such as a pointer that does not resolve.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Level returns the slog level diagnostics of this severity are logged at.
func (s Severity) Level() slog.Level {
	switch s {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
