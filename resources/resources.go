// Package resources exposes the read-only MCP resources: the list of
// Brazilian federal units and the server documentation.
package resources

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/fourdevs-mcp-server/internal/fourdevs"
)

const (
	StatesURI        = "uf://brazilian-states"
	DocumentationURI = "readme://documentation"
)

//go:embed documentation.md
var documentation string

// Documentation returns the embedded markdown documentation.
func Documentation() string { return documentation }

// StatesJSON renders the 27 federal units as an indented JSON array.
func StatesJSON() (string, error) {
	data, err := json.MarshalIndent(fourdevs.States(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Register adds both resources to server.
func Register(server *mcp.Server, logger *slog.Logger) {
	server.AddResource(&mcp.Resource{
		URI:         StatesURI,
		Name:        "Brazilian Federal Units (UFs)",
		Description: "Complete list of all 27 Brazilian Federal Units (states) with codes and names",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		text, err := StatesJSON()
		if err != nil {
			return nil, err
		}
		logger.Debug("Resource read", "uri", StatesURI)
		return textResult(StatesURI, "application/json", text), nil
	})

	server.AddResource(&mcp.Resource{
		URI:         DocumentationURI,
		Name:        "4Devs MCP Server Documentation",
		Description: "Tools, parameters, resources and configuration of this server",
		MIMEType:    "text/markdown",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		logger.Debug("Resource read", "uri", DocumentationURI)
		return textResult(DocumentationURI, "text/markdown", documentation), nil
	})
}

func textResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mimeType, Text: text}},
	}
}
