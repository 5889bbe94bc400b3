// Package mcpserver bridges the tool registry onto the Model Context
// Protocol stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jbrannst/mcp-konnect-portal/internal/tools"
)

const serverName = "mcp-konnect-portal"
const serverVersion = "1.0.0"

// Run serves the registry's tools over stdio until ctx is canceled or the
// client disconnects.
func Run(ctx context.Context, registry *tools.Registry) error {
	server, err := NewServer(registry)
	if err != nil {
		return err
	}
	return server.Run(ctx, &mcp.StdioTransport{})
}

// NewServer builds an MCP server with one tool per registry entry.
func NewServer(registry *tools.Registry) (*mcp.Server, error) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, &mcp.ServerOptions{HasTools: true})

	for _, tool := range registry.List() {
		schema, err := inputSchema(tool.Definition.Parameters)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", tool.Definition.Name, err)
		}
		server.AddTool(&mcp.Tool{
			Name:        tool.Definition.Name,
			Description: tool.Definition.Description,
			InputSchema: schema,
		}, toolHandler(tool))
	}

	return server, nil
}

// inputSchema converts a registry parameter schema into a JSON schema for
// the MCP tool declaration.
func inputSchema(params tools.ParameterSchema) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

// toolHandler adapts a registry tool to the raw MCP handler signature.
// Handler failures become IsError tool results rather than protocol errors
// so the calling assistant sees them as content.
func toolHandler(tool *tools.Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := map[string]interface{}{}
		if req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
				return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
		}

		if err := tool.ValidateParams(params); err != nil {
			return errorResult(err.Error()), nil
		}

		result, err := tool.Handler(ctx, params)
		if err != nil {
			return errorResult(err.Error() + ". Verify the identifiers and credentials involved, then retry; list_portals shows the available portals."), nil
		}

		text, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errorResult(fmt.Sprintf("failed to serialize result: %v", err)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
		}, nil
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
