package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/erraggy/oasmerge/assembler"
	"github.com/erraggy/oasmerge/document"
	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/erraggy/oasmerge/refs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.Schemas, 6)
	assert.Equal(t, "schemas/common.yaml", cfg.Schemas[0])
	assert.Len(t, cfg.Routes, 6)

	var routes []string
	for _, src := range cfg.Routes {
		for _, r := range src.Routes {
			routes = append(routes, r.Route)
		}
	}
	assert.Equal(t, []string{
		"/api/health",
		"/api/auth/login",
		"/api/auth/signup",
		"/api/auth/logout",
		"/api/user",
		"/api/vaults",
		"/api/vaults/{uniqueId}",
		"/api/audit-logs",
		"/api/api-keys",
		"/api/api-keys/{id}",
	}, routes)

	assert.Equal(t, "#/components/schemas/", cfg.Root)
	assert.Equal(t, refs.DefaultPointerKey, cfg.PointerKey)
	assert.Equal(t, document.DefaultMetadata(), cfg.Metadata.Document())
	assert.Equal(t, assembler.StrategyFailOnCollision, cfg.SchemaStrategy)
	assert.Equal(t, document.FormatYAML, cfg.Format)
}

func TestParse_JSONC(t *testing.T) {
	src := `{
  // definitions first
  "schemas": ["a.yaml", "b.yaml",],
  "routes": [
    {"fragment": "p.yaml", "routes": [{"operation": "list", "route": "/items"}]},
    {"fragment": "direct.yaml"},
  ],
  "schema_strategy": "accept-right",
  "format": "json",
  "metadata": {"title": "Items", "version": "2.1.0"},
}`
	cfg, err := Parse([]byte(src), ".jsonc")
	require.NoError(t, err)

	assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.Schemas)
	assert.Equal(t, assembler.StrategyAcceptRight, cfg.SchemaStrategy)
	assert.Equal(t, assembler.StrategyFailOnCollision, cfg.RouteStrategy, "unset fields take defaults")
	assert.Equal(t, document.FormatJSON, cfg.Format)
	assert.Equal(t, "Items", cfg.Metadata.Title)
	assert.Equal(t, "openapi", cfg.Metadata.FormatKey)
	assert.Equal(t, "#/components/schemas/", cfg.Root)
	assert.Equal(t, 64, cfg.MaxDepth)

	assert.Equal(t, []assembler.RouteMapping{{Operation: "list", Route: "/items"}}, cfg.Routes[0].RouteTable())
	assert.Nil(t, cfg.Routes[1].RouteTable())
}

func TestParse_YAML(t *testing.T) {
	src := `
schemas:
  - defs.yaml
root: "#/definitions/"
pointer_key: ref
metadata:
  format_key: swagger
  format_version: "2.0"
max_depth: 8
`
	cfg, err := Parse([]byte(src), ".yml")
	require.NoError(t, err)
	assert.Equal(t, "#/definitions/", cfg.Root)
	assert.Equal(t, "ref", cfg.PointerKey)
	assert.Equal(t, "swagger", cfg.Metadata.FormatKey)
	assert.Equal(t, "2.0", cfg.Metadata.FormatVersion)
	assert.Equal(t, "paths", cfg.Metadata.RoutesKey)
	assert.Equal(t, 8, cfg.MaxDepth)
	assert.Equal(t, "#/definitions/", cfg.Canonicalizer().Root())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ext  string
		kind error
	}{
		{"unknown extension", `{}`, ".toml", oaserrors.ErrConfig},
		{"bad json", `{"schemas": [}`, ".json", oaserrors.ErrParse},
		{"unknown field", `{"schemas": ["a.yaml"], "colour": "red"}`, ".json", oaserrors.ErrParse},
		{"bad yaml", "schemas: [a\n", ".yaml", oaserrors.ErrParse},
		{"nothing to merge", `{}`, ".json", oaserrors.ErrConfig},
		{"empty schema name", `{"schemas": [""]}`, ".json", oaserrors.ErrConfig},
		{"empty fragment name", `{"routes": [{"fragment": ""}]}`, ".json", oaserrors.ErrConfig},
		{"incomplete route", `{"routes": [{"fragment": "p.yaml", "routes": [{"operation": "x"}]}]}`, ".json", oaserrors.ErrConfig},
		{"operation twice", `{"routes": [{"fragment": "p.yaml", "routes": [
			{"operation": "x", "route": "/a"}, {"operation": "x", "route": "/b"}]}]}`, ".json", oaserrors.ErrConfig},
		{"flat root", `{"schemas": ["a.yaml"], "root": "#/"}`, ".json", oaserrors.ErrConfig},
		{"relative root", `{"schemas": ["a.yaml"], "root": "components/schemas/"}`, ".json", oaserrors.ErrConfig},
		{"bad alias", `{"schemas": ["a.yaml"], "aliases": ["definitions/"]}`, ".json", oaserrors.ErrConfig},
		{"bad strategy", `{"schemas": ["a.yaml"], "schema_strategy": "merge"}`, ".json", oaserrors.ErrConfig},
		{"bad route strategy", `{"schemas": ["a.yaml"], "route_strategy": "first"}`, ".json", oaserrors.ErrConfig},
		{"bad format", `{"schemas": ["a.yaml"], "format": "xml"}`, ".json", oaserrors.ErrConfig},
		{"negative depth", `{"schemas": ["a.yaml"], "max_depth": -1}`, ".json", oaserrors.ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), tt.ext)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestParse_SharedRouteKeyLeftToStrategy(t *testing.T) {
	cfg, err := Parse([]byte(`{"route_strategy": "accept-right", "routes": [
		{"fragment": "p.yaml", "routes": [{"operation": "x", "route": "/a"}]},
		{"fragment": "q.yaml", "routes": [{"operation": "y", "route": "/a"}]}]}`), ".json")
	require.NoError(t, err)
	assert.Equal(t, assembler.StrategyAcceptRight, cfg.RouteStrategy)
	assert.Len(t, cfg.Routes, 2)
}

func TestLoad_ResolvesDirAgainstConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "merge.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"dir": "api", "schemas": ["a.yaml"]}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "api"), cfg.Dir)

	require.NoError(t, os.WriteFile(path, []byte(`{"schemas": ["a.yaml"]}`), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
}
