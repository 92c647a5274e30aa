// Package document builds the merged document envelope and serializes it.
//
// The envelope order is fixed so that output is diffable across runs:
//
//	openapi: 3.0.0
//	info:
//	  version: 1.0.0
//	  title: Vault Hub Server
//	paths: {...}
//	components:
//	  schemas: {...}
//
// The namespace is nested under the mapping keys of the canonical root, so a
// root of "#/definitions/" places it under a top-level "definitions" key.
package document

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/oasmerge/internal/pathutil"
	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/erraggy/oasmerge/tree"
	"github.com/zeebo/blake3"
)

// Metadata is the static envelope information of a merged document.
type Metadata struct {
	// FormatKey is the top-level key naming the document format, e.g. "openapi".
	FormatKey string
	// FormatVersion is the value stored under FormatKey, e.g. "3.0.0".
	FormatVersion string
	// Title is stored as info.title.
	Title string
	// Version is stored as info.version.
	Version string
	// RoutesKey is the top-level key holding the route table, e.g. "paths".
	RoutesKey string
}

// DefaultMetadata returns the envelope used when nothing is configured.
func DefaultMetadata() Metadata {
	return Metadata{
		FormatKey:     "openapi",
		FormatVersion: "3.0.0",
		Title:         "Vault Hub Server",
		Version:       "1.0.0",
		RoutesKey:     "paths",
	}
}

// withDefaults fills empty fields from DefaultMetadata.
func (m Metadata) withDefaults() Metadata {
	d := DefaultMetadata()
	if m.FormatKey == "" {
		m.FormatKey = d.FormatKey
	}
	if m.FormatVersion == "" {
		m.FormatVersion = d.FormatVersion
	}
	if m.RoutesKey == "" {
		m.RoutesKey = d.RoutesKey
	}
	return m
}

// Assemble builds the merged document envelope.
// A nil namespace is left out of the document entirely. The returned
// document shares routes and namespace with the caller.
func Assemble(meta Metadata, routes, namespace *tree.Mapping, root string) (*tree.Mapping, error) {
	meta = meta.withDefaults()
	if routes == nil {
		routes = tree.NewMapping()
	}

	info := tree.NewMapping()
	if meta.Version != "" {
		info.Set("version", tree.String(meta.Version))
	}
	if meta.Title != "" {
		info.Set("title", tree.String(meta.Title))
	}

	doc := tree.NewMapping(
		tree.Pair{Key: meta.FormatKey, Value: tree.String(meta.FormatVersion)},
		tree.Pair{Key: "info", Value: info},
		tree.Pair{Key: meta.RoutesKey, Value: routes},
	)
	if doc.Len() != 3 {
		return nil, &oaserrors.ConfigError{
			Option:  "routes key",
			Value:   meta.RoutesKey,
			Message: "envelope keys must be distinct",
		}
	}
	if namespace == nil {
		return doc, nil
	}

	segs := pathutil.RootSegments(root)
	if len(segs) == 0 {
		return nil, &oaserrors.ConfigError{
			Option:  "root",
			Value:   root,
			Message: "the namespace root must name at least one key",
		}
	}
	if slices.Contains([]string{meta.FormatKey, "info", meta.RoutesKey}, segs[0]) {
		return nil, &oaserrors.ConfigError{
			Option:  "root",
			Value:   root,
			Message: fmt.Sprintf("namespace root collides with envelope key %q", segs[0]),
		}
	}

	var node tree.Node = namespace
	for i := len(segs) - 1; i >= 1; i-- {
		node = tree.NewMapping(tree.Pair{Key: segs[i], Value: node})
	}
	doc.Set(segs[0], node)
	return doc, nil
}

// Format selects the serialization of a merged document.
type Format string

const (
	// FormatYAML writes block-style YAML.
	FormatYAML Format = "yaml"
	// FormatJSON writes indented JSON.
	FormatJSON Format = "json"
)

// ValidFormats returns all valid format strings.
func ValidFormats() []string {
	return []string{string(FormatYAML), string(FormatJSON)}
}

// ParseFormat converts a format name, or a file extension such as ".yml", to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", &oaserrors.ConfigError{
			Option:  "format",
			Value:   s,
			Message: fmt.Sprintf("must be one of %v", ValidFormats()),
		}
	}
}

// Marshal serializes doc with keys in insertion order.
func Marshal(doc tree.Node, format Format) ([]byte, error) {
	switch format {
	case FormatYAML, "":
		return tree.MarshalYAML(doc)
	case FormatJSON:
		return tree.MarshalIndentJSON(doc, "  ")
	default:
		return nil, &oaserrors.ConfigError{
			Option:  "format",
			Value:   string(format),
			Message: fmt.Sprintf("must be one of %v", ValidFormats()),
		}
	}
}

// Digest returns the hex BLAKE3-256 digest of serialized output.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
