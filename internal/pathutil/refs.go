package pathutil

import "strings"

// Well-known roots under which merged definitions live.
const (
	// RefPrefixSchemas is the OAS 3.x definitions root.
	RefPrefixSchemas = "#/components/schemas/"
	// RefPrefixDefinitions is the OAS 2.0 definitions root.
	RefPrefixDefinitions = "#/definitions/"
	// FragmentSeparator separates a file path from the local path of an address.
	FragmentSeparator = "#/"
)

// KnownRoots returns the definition roots recognized when no aliases are configured.
func KnownRoots() []string {
	return []string{RefPrefixSchemas, RefPrefixDefinitions}
}

// RootSegments splits a root such as "#/components/schemas/" into its mapping
// keys ("components", "schemas").
func RootSegments(root string) []string {
	trimmed := strings.TrimPrefix(root, "#")
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	for i, p := range parts {
		parts[i] = UnescapePointerToken(p)
	}
	return parts
}

// UnescapePointerToken decodes "~1" to "/" and "~0" to "~" (RFC 6901).
func UnescapePointerToken(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	return strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
}

// EscapePointerToken encodes "~" and "/" for use inside a JSON pointer.
func EscapePointerToken(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	return strings.ReplaceAll(strings.ReplaceAll(token, "~", "~0"), "/", "~1")
}
