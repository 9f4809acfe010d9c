package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	idlerrors "github.com/standardbeagle/idlunify/internal/errors"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports err inside the result with IsError set, so the
// client sees the parse failure instead of a protocol error
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	if kind := idlerrors.KindOf(err); kind != "" {
		errorData["kind"] = kind
	}

	var multi *idlerrors.MultiError
	if errors.As(err, &multi) {
		failures := make([]string, 0, len(multi.Errors))
		for _, e := range multi.Errors {
			failures = append(failures, e.Error())
		}
		errorData["failures"] = failures
	}

	var cfgErr *idlerrors.ConfigError
	if errors.As(err, &cfgErr) {
		errorData["field"] = cfgErr.Field
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}
