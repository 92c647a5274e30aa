package assembler

import (
	"fmt"
	"strings"

	"github.com/erraggy/oasmerge/internal/severity"
)

// WarningCategory identifies the type of warning.
type WarningCategory string

const (
	// WarnDefinitionCollision indicates a definition collision was resolved by a strategy.
	WarnDefinitionCollision WarningCategory = "definition_collision"
	// WarnRouteCollision indicates a route collision was resolved by a strategy.
	WarnRouteCollision WarningCategory = "route_collision"
	// WarnCaseCollision indicates definition names that differ only by case.
	WarnCaseCollision WarningCategory = "case_collision"
	// WarnUnmappedOperation indicates an operation with no configured route key.
	WarnUnmappedOperation WarningCategory = "unmapped_operation"
	// WarnMissingOperation indicates a configured operation absent from its fragment.
	WarnMissingOperation WarningCategory = "missing_operation"
)

// Warning represents a structured, non-fatal finding from assembly.
type Warning struct {
	// Category identifies the type of warning.
	Category WarningCategory
	// Path is the location of the affected entry, e.g. "definitions.User".
	Path string
	// Message is a human-readable description.
	Message string
	// Fragment is the fragment that triggered the warning.
	Fragment string
	// Severity indicates warning severity.
	Severity severity.Severity
	// Context provides additional details.
	Context map[string]any
}

// String returns the warning message.
func (w *Warning) String() string {
	return w.Message
}

// NewCollisionWarning creates a warning for a collision that a strategy resolved.
func NewCollisionWarning(section, key, resolution, firstFragment, secondFragment string) *Warning {
	cat := WarnDefinitionCollision
	if section == SectionRoutes {
		cat = WarnRouteCollision
	}
	return &Warning{
		Category: cat,
		Path:     section + "." + key,
		Message:  fmt.Sprintf("%s '%s' %s: %s -> %s", section, key, resolution, firstFragment, secondFragment),
		Fragment: secondFragment,
		Severity: severity.SeverityWarning,
		Context: map[string]any{
			"first_fragment":  firstFragment,
			"second_fragment": secondFragment,
			"resolution":      resolution,
		},
	}
}

// NewCaseCollisionWarning creates a warning for definition names that only differ by case.
func NewCaseCollisionWarning(names, fragments []string) *Warning {
	return &Warning{
		Category: WarnCaseCollision,
		Path:     SectionDefinitions + "." + names[0],
		Message: fmt.Sprintf("definitions %s differ only by case (from %s)",
			quoteAll(names), strings.Join(fragments, ", ")),
		Fragment: fragments[len(fragments)-1],
		Severity: severity.SeverityWarning,
		Context: map[string]any{
			"names":     names,
			"fragments": fragments,
		},
	}
}

// NewUnmappedOperationWarning creates a warning for an operation that has no route key.
func NewUnmappedOperationWarning(operation, fragment string) *Warning {
	return &Warning{
		Category: WarnUnmappedOperation,
		Message:  fmt.Sprintf("operation '%s' in %s has no route mapping, skipped", operation, fragment),
		Fragment: fragment,
		Severity: severity.SeverityInfo,
		Context: map[string]any{
			"operation": operation,
		},
	}
}

// NewMissingOperationWarning creates a warning for a mapped operation absent from its fragment.
func NewMissingOperationWarning(operation, route, fragment string) *Warning {
	return &Warning{
		Category: WarnMissingOperation,
		Path:     SectionRoutes + "." + route,
		Message:  fmt.Sprintf("operation '%s' for route '%s' not found in %s, skipped", operation, route, fragment),
		Fragment: fragment,
		Severity: severity.SeverityInfo,
		Context: map[string]any{
			"operation": operation,
			"route":     route,
		},
	}
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}

// Warnings is a collection of Warning.
type Warnings []*Warning

// Strings returns the warning messages.
func (ws Warnings) Strings() []string {
	result := make([]string, len(ws))
	for i, w := range ws {
		if w == nil {
			continue
		}
		result[i] = w.String()
	}
	return result
}

// ByCategory filters warnings by category.
func (ws Warnings) ByCategory(cat WarningCategory) Warnings {
	var result Warnings
	for _, w := range ws {
		if w.Category == cat {
			result = append(result, w)
		}
	}
	return result
}

// BySeverity filters warnings by severity.
func (ws Warnings) BySeverity(sev severity.Severity) Warnings {
	var result Warnings
	for _, w := range ws {
		if w.Severity == sev {
			result = append(result, w)
		}
	}
	return result
}

// Summary returns a formatted summary of warnings.
func (ws Warnings) Summary() string {
	if len(ws) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d warning(s):\n", len(ws))
	for _, w := range ws {
		sb.WriteString("  - ")
		sb.WriteString(w.String())
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
