package mcpserver

import (
	"context"
	"fmt"

	"github.com/erraggy/oasmerge/assembler"
	"github.com/erraggy/oasmerge/config"
	"github.com/erraggy/oasmerge/document"
	"github.com/erraggy/oasmerge/internal/fileutil"
	"github.com/erraggy/oasmerge/loader"
	"github.com/erraggy/oasmerge/merger"
	"github.com/erraggy/oasmerge/oaserrors"
	"github.com/erraggy/oasmerge/tree"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type fragmentInput struct {
	Name    string `json:"name"    jsonschema:"Fragment name as the configuration lists it, e.g. schemas/user.yaml"`
	Content string `json:"content" jsonschema:"Fragment content (YAML or JSON)"`
}

type mergeInput struct {
	Config         string          `json:"config,omitempty"          jsonschema:"Path to a merge configuration file (JSON, JSONC or YAML). Defaults to OASMERGE_CONFIG, then the built-in Vault Hub layout."`
	Dir            string          `json:"dir,omitempty"             jsonschema:"Directory fragment names are relative to. Ignored when fragments are given inline."`
	Fragments      []fragmentInput `json:"fragments,omitempty"       jsonschema:"Inline fragments. Configured fragments not listed here are treated as absent."`
	Mode           string          `json:"mode,omitempty"            jsonschema:"rewrite or inline"`
	SchemaStrategy string          `json:"schema_strategy,omitempty" jsonschema:"Strategy for definition collisions: accept-left or accept-right or fail"`
	RouteStrategy  string          `json:"route_strategy,omitempty"  jsonschema:"Strategy for route collisions: accept-left or accept-right or fail"`
	Format         string          `json:"format,omitempty"          jsonschema:"Output format: yaml or json"`
	Verify         *bool           `json:"verify,omitempty"          jsonschema:"Check that every pointer of the merged document resolves (default from OASMERGE_VERIFY)"`
	OmitNamespace  bool            `json:"omit_namespace,omitempty"  jsonschema:"Inline mode only: leave the expanded definitions out of the document"`
	Output         string          `json:"output,omitempty"          jsonschema:"File path to write the merged document. If omitted the result is returned inline."`
}

type mergeWarning struct {
	Category string `json:"category"`
	Path     string `json:"path,omitempty"`
	Message  string `json:"message"`
}

type mergeOutput struct {
	Mode            string         `json:"mode"`
	FragmentCount   int            `json:"fragment_count"`
	MissingCount    int            `json:"missing_count"`
	DefinitionCount int            `json:"definition_count"`
	RouteCount      int            `json:"route_count"`
	PointerCount    int            `json:"pointer_count"`
	WarningCount    int            `json:"warning_count"`
	Warnings        []mergeWarning `json:"warnings,omitempty"`
	Verified        bool           `json:"verified"`
	Digest          string         `json:"digest"`
	WrittenTo       string         `json:"written_to,omitempty"`
	Document        string         `json:"document,omitempty"`
	Summary         string         `json:"summary"`
}

func handleMerge(_ context.Context, _ *mcp.CallToolRequest, input mergeInput) (*mcp.CallToolResult, mergeOutput, error) {
	opts, err := input.options()
	if err != nil {
		return errResult(err), mergeOutput{}, nil
	}

	result, err := merger.Merge(opts...)
	if err != nil {
		return errResult(fmt.Errorf("%s: %w", oaserrors.Kind(err), err)), mergeOutput{}, nil
	}

	output := mergeOutput{
		Mode:            string(result.Mode),
		FragmentCount:   result.Stats.FragmentsLoaded,
		MissingCount:    result.Stats.FragmentsMissing,
		DefinitionCount: result.Stats.Definitions,
		RouteCount:      result.Stats.Routes,
		PointerCount:    result.Stats.PointersRewritten + result.Stats.PointersInlined,
		WarningCount:    len(result.Warnings),
		Verified:        result.Verification != nil,
		Digest:          result.Digest,
	}
	output.Warnings = makeSlice[mergeWarning](len(result.Warnings))
	for _, w := range result.Warnings {
		output.Warnings = append(output.Warnings, mergeWarning{
			Category: string(w.Category),
			Path:     w.Path,
			Message:  w.Message,
		})
	}
	output.Summary = buildMergeSummary(output)

	if input.Output != "" {
		cleanPath, pathErr := fileutil.SanitizeOutputPath(input.Output)
		if pathErr != nil {
			return errResult(fmt.Errorf("invalid output path: %w", pathErr)), mergeOutput{}, nil
		}
		if err := fileutil.WriteFileAtomic(cleanPath, result.Output, fileutil.OwnerReadWrite); err != nil {
			return errResult(fmt.Errorf("failed to write output file: %w", err)), mergeOutput{}, nil
		}
		output.WrittenTo = cleanPath
	} else {
		output.Document = string(result.Output)
	}

	return nil, output, nil
}

// options converts the tool input into merge options, applying server defaults.
func (input mergeInput) options() ([]merger.Option, error) {
	path := input.Config
	if path == "" {
		path = cfg.ConfigFile
	}
	var c *config.Config
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	} else {
		c = config.DefaultConfig()
	}
	switch {
	case input.Dir != "":
		c.Dir = input.Dir
	case cfg.Dir != "":
		c.Dir = cfg.Dir
	}

	mode := cfg.Mode
	if input.Mode != "" {
		m, err := merger.ParseMode(input.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}
	verify := cfg.Verify
	if input.Verify != nil {
		verify = *input.Verify
	}

	opts := []merger.Option{
		merger.WithConfig(c),
		merger.WithMode(mode),
		merger.WithVerify(verify),
		merger.WithOmitNamespace(input.OmitNamespace),
	}
	if s := firstNonEmpty(input.SchemaStrategy, string(cfg.SchemaStrategy)); s != "" {
		opts = append(opts, merger.WithSchemaStrategy(assembler.CollisionStrategy(s)))
	}
	if s := firstNonEmpty(input.RouteStrategy, string(cfg.RouteStrategy)); s != "" {
		opts = append(opts, merger.WithRouteStrategy(assembler.CollisionStrategy(s)))
	}
	if f := firstNonEmpty(input.Format, string(cfg.Format)); f != "" {
		format, err := document.ParseFormat(f)
		if err != nil {
			return nil, err
		}
		opts = append(opts, merger.WithFormat(format))
	}
	if cfg.MaxDepth > 0 {
		opts = append(opts, merger.WithMaxDepth(cfg.MaxDepth))
	}

	if len(input.Fragments) > 0 {
		l, err := inlineLoader(input.Fragments)
		if err != nil {
			return nil, err
		}
		opts = append(opts, merger.WithLoader(l))
	}
	return opts, nil
}

// inlineLoader parses inline fragments into a loader.
func inlineLoader(frags []fragmentInput) (loader.MapLoader, error) {
	if len(frags) > cfg.MaxFragments {
		return nil, fmt.Errorf("too many fragments: got %d, maximum is %d; set OASMERGE_MAX_FRAGMENTS to increase",
			len(frags), cfg.MaxFragments)
	}
	l := make(loader.MapLoader, len(frags))
	for i, f := range frags {
		if f.Name == "" {
			return nil, fmt.Errorf("fragments[%d]: name is required", i)
		}
		if _, dup := l[f.Name]; dup {
			return nil, fmt.Errorf("fragments[%d]: duplicate fragment %q", i, f.Name)
		}
		n, err := tree.Parse(f.Name, []byte(f.Content))
		if err != nil {
			return nil, fmt.Errorf("fragments[%d]: %w", i, err)
		}
		l[f.Name] = n
	}
	return l, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func buildMergeSummary(output mergeOutput) string {
	summary := "Merged " + formatCount(output.FragmentCount, "fragment") + " (" + output.Mode + " mode)"
	summary += " into a document with " + formatCount(output.RouteCount, "route")
	summary += " and " + formatCount(output.DefinitionCount, "definition") + "."

	if output.MissingCount > 0 {
		summary += " " + formatCount(output.MissingCount, "fragment") + " absent."
	}
	if output.PointerCount > 0 {
		verb := "rewritten"
		if output.Mode == string(merger.ModeInline) {
			verb = "inlined"
		}
		summary += " " + formatCount(output.PointerCount, "pointer") + " " + verb + "."
	}
	if output.WarningCount > 0 {
		summary += " " + formatCount(output.WarningCount, "warning") + "."
	}
	return summary
}
