/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package mcp

import "encoding/json"

// NewToolError creates a standardized error response for tools
func NewToolError(message string) (ToolResponse, error) {
	return ToolResponse{
		Content: []ContentItem{
			{
				Type: "text",
				Text: message,
			},
		},
		IsError: true,
	}, nil
}

// NewToolSuccess creates a standardized success response for tools
func NewToolSuccess(message string) (ToolResponse, error) {
	return ToolResponse{
		Content: []ContentItem{
			{
				Type: "text",
				Text: message,
			},
		},
		IsError: false,
	}, nil
}

// NewToolJSON serializes a response envelope into a single JSON text
// content item. isError mirrors the envelope's success flag so MCP clients
// that only inspect IsError still see failures.
func NewToolJSON(envelope interface{}, isError bool) (ToolResponse, error) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return NewToolError("failed to serialize response: " + err.Error())
	}
	return ToolResponse{
		Content: []ContentItem{
			{
				Type: "text",
				Text: string(data),
			},
		},
		IsError: isError,
	}, nil
}
