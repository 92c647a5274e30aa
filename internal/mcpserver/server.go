// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes oasmerge capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"
	"strconv"

	"github.com/erraggy/oasmerge"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `oasmerge MCP server: merges OpenAPI fragments into one document and verifies that merged documents are reference-consistent.

Configuration: All defaults are configurable via OASMERGE_* environment variables set in your MCP client config. The Go MCP SDK does not support initializationOptions; use env vars instead.

Key settings:
- OASMERGE_CONFIG: merge configuration file (JSON, JSONC or YAML) used when a call names none
- OASMERGE_DIR: fragment directory, overriding the configuration's dir
- OASMERGE_MODE (default: rewrite): rewrite keeps $ref pointers, inline expands them
- OASMERGE_SCHEMA_STRATEGY / OASMERGE_ROUTE_STRATEGY (default: fail): accept-left, accept-right or fail
- OASMERGE_FORMAT (default: yaml): yaml or json
- OASMERGE_VERIFY (default: true): check every pointer of the merged document resolves
- OASMERGE_MAX_DEPTH (default: config max_depth, 64): inline expansion depth limit
- OASMERGE_MAX_FRAGMENTS (default: 100): inline fragments accepted per call`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	server := newServer()
	return server.Run(ctx, &mcp.StdioTransport{})
}

func newServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasmerge", Version: oasmerge.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge",
		Description: "Merge OpenAPI fragments into a single document. Fragments come from a configuration file (config), a directory (dir), or inline content (fragments, each with the name the configuration uses for it). mode=rewrite keeps $ref pointers and rewrites them to the canonical root; mode=inline replaces every pointer with a copy of its target and reports circular references. Collision strategies: fail (default), accept-left, accept-right. Use output to write the document to a file instead of returning it inline.",
	}, handleMerge)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "verify",
		Description: "Check that every $ref pointer in a merged OpenAPI document resolves to a node inside that same document. Provide the document as a file path or inline content. Returns one finding per dangling or external pointer.",
	}, handleVerify)
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

func formatCount(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
