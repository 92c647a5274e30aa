// Package config describes which fragments a merge reads and how it assembles them.
//
// A configuration is usually loaded from a file with [Load]. JSON files may carry
// comments and trailing commas (".json", ".jsonc"); YAML files use ".yaml" or
// ".yml". Fields left empty take their values from [DefaultConfig], except the
// fragment lists: a file that names no fragments merges none.
//
// Example (JSONC):
//
//	{
//	  // fragments are read relative to dir
//	  "dir": "api",
//	  "schemas": ["schemas/common.yaml", "schemas/user.yaml"],
//	  "routes": [
//	    {"fragment": "paths/user.yaml", "routes": [
//	      {"operation": "getCurrentUser", "route": "/api/user"},
//	    ]},
//	  ],
//	  "metadata": {"title": "Vault Hub Server", "version": "1.0.0"},
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/erraggy/oasmerge/assembler"
	"github.com/erraggy/oasmerge/document"
	"github.com/erraggy/oasmerge/internal/pathutil"
	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/erraggy/oasmerge/refs"
	"github.com/tidwall/jsonc"
	"go.yaml.in/yaml/v4"
)

// Route assigns one operation of a route fragment to its route key.
type Route struct {
	Operation string `json:"operation" yaml:"operation"`
	Route     string `json:"route" yaml:"route"`
}

// RouteSource is a route fragment and its ordered operation-to-route table.
// An empty table means the fragment's top-level keys are route keys.
type RouteSource struct {
	Fragment string  `json:"fragment" yaml:"fragment"`
	Routes   []Route `json:"routes,omitempty" yaml:"routes,omitempty"`
}

// Metadata is the static envelope information of the merged document.
type Metadata struct {
	FormatKey     string `json:"format_key,omitempty" yaml:"format_key,omitempty"`
	FormatVersion string `json:"format_version,omitempty" yaml:"format_version,omitempty"`
	Title         string `json:"title,omitempty" yaml:"title,omitempty"`
	Version       string `json:"version,omitempty" yaml:"version,omitempty"`
	RoutesKey     string `json:"routes_key,omitempty" yaml:"routes_key,omitempty"`
}

// Document converts m to the document package's metadata.
func (m Metadata) Document() document.Metadata {
	return document.Metadata{
		FormatKey:     m.FormatKey,
		FormatVersion: m.FormatVersion,
		Title:         m.Title,
		Version:       m.Version,
		RoutesKey:     m.RoutesKey,
	}
}

// Config is the static input of a merge.
type Config struct {
	// Dir is the directory fragment names are relative to. A relative Dir is
	// resolved against the directory of the configuration file.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	// Schemas lists the definition fragments in merge order.
	Schemas []string `json:"schemas" yaml:"schemas"`
	// Routes lists the route fragments in merge order.
	Routes []RouteSource `json:"routes" yaml:"routes"`
	// Root is the canonical namespace root, e.g. "#/components/schemas/".
	Root string `json:"root,omitempty" yaml:"root,omitempty"`
	// Aliases are roots rewritten to Root. Empty means the well-known roots.
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	// PointerKey is the mapping key that marks a reference pointer.
	PointerKey string `json:"pointer_key,omitempty" yaml:"pointer_key,omitempty"`
	// Metadata is written into the document envelope.
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	// SchemaStrategy resolves definition collisions.
	SchemaStrategy assembler.CollisionStrategy `json:"schema_strategy,omitempty" yaml:"schema_strategy,omitempty"`
	// RouteStrategy resolves route collisions.
	RouteStrategy assembler.CollisionStrategy `json:"route_strategy,omitempty" yaml:"route_strategy,omitempty"`
	// Format is the output serialization.
	Format document.Format `json:"format,omitempty" yaml:"format,omitempty"`
	// MaxDepth bounds nested pointer expansion in inline mode.
	MaxDepth int `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`
}

// DefaultConfig returns the layout of the Vault Hub API: six schema fragments
// and six route fragments below the current directory.
func DefaultConfig() *Config {
	meta := document.DefaultMetadata()
	return &Config{
		Dir: ".",
		Schemas: []string{
			"schemas/common.yaml",
			"schemas/auth.yaml",
			"schemas/user.yaml",
			"schemas/vault.yaml",
			"schemas/audit.yaml",
			"schemas/api-key.yaml",
		},
		Routes: []RouteSource{
			{Fragment: "paths/health.yaml", Routes: []Route{
				{Operation: "health", Route: "/api/health"},
			}},
			{Fragment: "paths/auth.yaml", Routes: []Route{
				{Operation: "login", Route: "/api/auth/login"},
				{Operation: "signup", Route: "/api/auth/signup"},
				{Operation: "logout", Route: "/api/auth/logout"},
			}},
			{Fragment: "paths/user.yaml", Routes: []Route{
				{Operation: "getCurrentUser", Route: "/api/user"},
			}},
			{Fragment: "paths/vault.yaml", Routes: []Route{
				{Operation: "vaults", Route: "/api/vaults"},
				{Operation: "vault", Route: "/api/vaults/{uniqueId}"},
			}},
			{Fragment: "paths/audit.yaml", Routes: []Route{
				{Operation: "auditLogs", Route: "/api/audit-logs"},
			}},
			{Fragment: "paths/api-key.yaml", Routes: []Route{
				{Operation: "apiKeys", Route: "/api/api-keys"},
				{Operation: "apiKey", Route: "/api/api-keys/{id}"},
			}},
		},
		Root:       pathutil.RefPrefixSchemas,
		PointerKey: refs.DefaultPointerKey,
		Metadata: Metadata{
			FormatKey:     meta.FormatKey,
			FormatVersion: meta.FormatVersion,
			Title:         meta.Title,
			Version:       meta.Version,
			RoutesKey:     meta.RoutesKey,
		},
		SchemaStrategy: assembler.StrategyFailOnCollision,
		RouteStrategy:  assembler.StrategyFailOnCollision,
		Format:         document.FormatYAML,
		MaxDepth:       64,
	}
}

// Load reads a configuration file, fills unset fields from DefaultConfig and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &oaserrors.ConfigError{Option: "config", Value: path, Message: "cannot read file", Cause: err}
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(filepath.Dir(path), cfg.Dir)
	}
	return cfg, nil
}

// Parse decodes configuration data in the format named by ext (".json",
// ".jsonc", ".yaml" or ".yml"), fills unset fields from DefaultConfig and
// validates the result.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	switch strings.ToLower(ext) {
	case ".json", ".jsonc":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, &oaserrors.ParseError{Path: "config" + ext, Cause: err}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &oaserrors.ParseError{Path: "config" + ext, Cause: err}
		}
	default:
		return nil, &oaserrors.ConfigError{
			Option:  "config",
			Value:   ext,
			Message: "unsupported file extension (want .json, .jsonc, .yaml or .yml)",
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills empty scalar fields from DefaultConfig.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Dir == "" {
		c.Dir = d.Dir
	}
	if c.Root == "" {
		c.Root = d.Root
	}
	if c.PointerKey == "" {
		c.PointerKey = d.PointerKey
	}
	if c.Metadata.FormatKey == "" {
		c.Metadata.FormatKey = d.Metadata.FormatKey
	}
	if c.Metadata.FormatVersion == "" {
		c.Metadata.FormatVersion = d.Metadata.FormatVersion
	}
	if c.Metadata.RoutesKey == "" {
		c.Metadata.RoutesKey = d.Metadata.RoutesKey
	}
	if c.SchemaStrategy == "" {
		c.SchemaStrategy = d.SchemaStrategy
	}
	if c.RouteStrategy == "" {
		c.RouteStrategy = d.RouteStrategy
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = d.MaxDepth
	}
}

// Validate reports the first problem with c as a ConfigError.
func (c *Config) Validate() error {
	if len(c.Schemas) == 0 && len(c.Routes) == 0 {
		return &oaserrors.ConfigError{Option: "schemas", Message: "no schema or route fragments configured"}
	}
	for i, name := range c.Schemas {
		if strings.TrimSpace(name) == "" {
			return &oaserrors.ConfigError{Option: fmt.Sprintf("schemas[%d]", i), Message: "fragment name is empty"}
		}
	}

	// Route keys shared across fragments are collisions for RouteStrategy to resolve.
	for i, src := range c.Routes {
		if strings.TrimSpace(src.Fragment) == "" {
			return &oaserrors.ConfigError{Option: fmt.Sprintf("routes[%d].fragment", i), Message: "fragment name is empty"}
		}
		ops := make(map[string]bool, len(src.Routes))
		for j, r := range src.Routes {
			opt := fmt.Sprintf("routes[%d].routes[%d]", i, j)
			if r.Operation == "" || r.Route == "" {
				return &oaserrors.ConfigError{Option: opt, Message: "operation and route are both required"}
			}
			if ops[r.Operation] {
				return &oaserrors.ConfigError{Option: opt, Value: r.Operation, Message: "operation mapped twice in " + src.Fragment}
			}
			ops[r.Operation] = true
		}
	}

	if len(pathutil.RootSegments(c.Root)) == 0 {
		return &oaserrors.ConfigError{Option: "root", Value: c.Root, Message: "must name at least one key, e.g. #/components/schemas/"}
	}
	if !strings.HasPrefix(c.Root, pathutil.FragmentSeparator) {
		return &oaserrors.ConfigError{Option: "root", Value: c.Root, Message: `must start with "#/"`}
	}
	for _, a := range c.Aliases {
		if !strings.HasPrefix(a, pathutil.FragmentSeparator) {
			return &oaserrors.ConfigError{Option: "aliases", Value: a, Message: `must start with "#/"`}
		}
	}
	if c.PointerKey == "" {
		return &oaserrors.ConfigError{Option: "pointer_key", Message: "must not be empty"}
	}
	if !assembler.IsValidStrategy(string(c.SchemaStrategy)) {
		return &oaserrors.ConfigError{Option: "schema_strategy", Value: string(c.SchemaStrategy), Message: fmt.Sprintf("must be one of %v", assembler.ValidStrategies())}
	}
	if !assembler.IsValidStrategy(string(c.RouteStrategy)) {
		return &oaserrors.ConfigError{Option: "route_strategy", Value: string(c.RouteStrategy), Message: fmt.Sprintf("must be one of %v", assembler.ValidStrategies())}
	}
	if _, err := document.ParseFormat(string(c.Format)); err != nil {
		return err
	}
	if c.MaxDepth < 0 {
		return &oaserrors.ConfigError{Option: "max_depth", Value: c.MaxDepth, Message: "must not be negative"}
	}
	return nil
}

// Canonicalizer returns the canonicalizer described by Root and Aliases.
func (c *Config) Canonicalizer() *refs.Canonicalizer {
	return refs.NewCanonicalizer(c.Root, c.Aliases...)
}

// RouteTable returns the assembler route table for src, or nil when src
// has none and its top-level keys are route keys.
func (src RouteSource) RouteTable() []assembler.RouteMapping {
	if len(src.Routes) == 0 {
		return nil
	}
	out := make([]assembler.RouteMapping, len(src.Routes))
	for i, r := range src.Routes {
		out[i] = assembler.RouteMapping{Operation: r.Operation, Route: r.Route}
	}
	return out
}
