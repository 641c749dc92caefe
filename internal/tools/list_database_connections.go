/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package tools

import (
	"context"

	"schema-designer-mcp/internal/connections"
	"schema-designer-mcp/internal/mcp"
)

// listConnectionsResult is the success envelope for list_database_connections
type listConnectionsResult struct {
	Success     bool                           `json:"success"`
	Connections []*connections.SavedConnection `json:"connections"`
}

// ListDatabaseConnectionsTool creates the list_database_connections tool
func ListDatabaseConnectionsTool(deps Deps) Tool {
	return Tool{
		Definition: mcp.Tool{
			Name: "list_database_connections",
			Description: `List saved database connections and their ids.

<usecase>
Use this to discover valid connectionId values for open_schema_designer.
Credentials are never included in the response.
</usecase>`,
			InputSchema: mcp.InputSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
			list := deps.Connections.List()
			emit(deps.Telemetry, viewConnections, "list_database_connections", true, "", map[string]float64{
				"connectionCount": float64(len(list)),
			})
			return respondSuccess(listConnectionsResult{
				Success:     true,
				Connections: list,
			})
		},
	}
}
