package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/erraggy/oasmerge/tree"
	"github.com/erraggy/oasmerge/verify"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type verifyInput struct {
	File       string `json:"file,omitempty"        jsonschema:"Path to a merged document on disk"`
	Content    string `json:"content,omitempty"     jsonschema:"Inline merged document content (JSON or YAML)"`
	PointerKey string `json:"pointer_key,omitempty" jsonschema:"Mapping key that marks a pointer (default $ref)"`
}

type verifyFinding struct {
	Ref     string `json:"ref"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

type verifyOutput struct {
	Valid        bool            `json:"valid"`
	PointerCount int             `json:"pointer_count"`
	FindingCount int             `json:"finding_count"`
	Findings     []verifyFinding `json:"findings,omitempty"`
	Summary      string          `json:"summary"`
}

func handleVerify(_ context.Context, _ *mcp.CallToolRequest, input verifyInput) (*mcp.CallToolResult, verifyOutput, error) {
	doc, err := input.resolve()
	if err != nil {
		return errResult(err), verifyOutput{}, nil
	}

	report := verify.Document(doc, input.PointerKey)
	output := verifyOutput{
		Valid:        report.OK(),
		PointerCount: report.Pointers,
		FindingCount: len(report.Findings),
	}
	output.Findings = makeSlice[verifyFinding](len(report.Findings))
	for _, f := range report.Findings {
		output.Findings = append(output.Findings, verifyFinding{Ref: f.Ref, Path: f.Path, Message: f.Message})
	}

	output.Summary = "Checked " + formatCount(output.PointerCount, "pointer") + ": "
	if output.Valid {
		output.Summary += "all resolve."
	} else {
		output.Summary += formatCount(output.FindingCount, "dangling pointer") + "."
	}
	return nil, output, nil
}

// resolve parses the document given by exactly one of File or Content.
func (input verifyInput) resolve() (tree.Node, error) {
	switch {
	case input.File != "" && input.Content != "":
		return nil, errors.New("provide either file or content, not both")
	case input.File != "":
		data, err := os.ReadFile(input.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
		return tree.Parse(input.File, data)
	case input.Content != "":
		return tree.Parse("content", []byte(input.Content))
	default:
		return nil, errors.New("a document is required: set file or content")
	}
}
