package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"gitlab.com/tozd/go/errors"
)

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, errors.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
