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

	"schema-designer-mcp/internal/designer"
	"schema-designer-mcp/internal/mcp"
	"schema-designer-mcp/internal/schema"
	"schema-designer-mcp/internal/status"
)

// openDesignerResult is the success envelope for open_schema_designer
type openDesignerResult struct {
	Success     bool            `json:"success"`
	Version     string          `json:"version"`
	Server      string          `json:"server"`
	Database    string          `json:"database"`
	AlreadyOpen bool            `json:"alreadyOpen"`
	Overview    schema.Overview `json:"overview"`
}

// OpenSchemaDesignerTool creates the open_schema_designer tool
func OpenSchemaDesignerTool(deps Deps) Tool {
	return Tool{
		Definition: mcp.Tool{
			Name: "open_schema_designer",
			Description: `Open (or reveal) the schema designer for a database and make it the active document.

<usecase>
Call this first. Every other schema designer tool operates on the active
designer document; until one is open they fail with no_active_designer.
</usecase>

<key_features>
- Accepts either a saved connectionId (see list_database_connections) or an
  explicit server + database pair.
- Idempotent: reopening the same server + database reveals the existing live
  session instead of creating a duplicate, and reports alreadyOpen=true.
- Returns the current version token and a bounded overview so a follow-up
  read is usually unnecessary.
</key_features>`,
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"connectionId": map[string]interface{}{
						"type":        "string",
						"description": "Id of a saved connection to open the designer against.",
					},
					"server": map[string]interface{}{
						"type":        "string",
						"description": "Server name, used together with 'database' when no connectionId is given.",
					},
					"database": map[string]interface{}{
						"type":        "string",
						"description": "Database name, used together with 'server' when no connectionId is given.",
					},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
			target, failure := resolveOpenTarget(deps, args)
			if failure != nil {
				emit(deps.Telemetry, viewSchemaDesigner, "open_schema_designer", false, failure.Reason, nil)
				return respondFailure(*failure)
			}

			doc, existed := deps.Registry.OpenDesigner(*target, nil)
			version, overview := doc.Overview(schema.OverviewOptions{Verbosity: schema.VerbosityNames})

			emit(deps.Telemetry, viewSchemaDesigner, "open_schema_designer", true, "", map[string]float64{
				"tableCount":  float64(overview.TableCount),
				"alreadyOpen": boolMeasure(existed),
			})
			return respondSuccess(openDesignerResult{
				Success:     true,
				Version:     version,
				Server:      target.Server,
				Database:    target.Database,
				AlreadyOpen: existed,
				Overview:    overview,
			})
		},
	}
}

// resolveOpenTarget derives the session target from a connectionId or an
// explicit server+database pair
func resolveOpenTarget(deps Deps, args map[string]interface{}) (*designer.Target, *Failure) {
	connectionID := OptionalString(args, "connectionId", "")
	server := OptionalString(args, "server", "")
	database := OptionalString(args, "database", "")

	if connectionID != "" {
		if server != "" || database != "" {
			failure := failureFrom(status.New(status.InvalidRequest,
				"supply either 'connectionId' or 'server'+'database', not both"))
			return nil, &failure
		}
		info, err := deps.Connections.GetConnectionInfo(connectionID)
		if err != nil {
			failure := failureFrom(status.Errorf(status.InternalError,
				"failed to resolve connection: %v", err))
			return nil, &failure
		}
		if info == nil {
			failure := failureFrom(status.Errorf(status.NotFound,
				"no saved connection with id %q", connectionID))
			return nil, &failure
		}
		return &designer.Target{Server: info.Server, Database: info.Database}, nil
	}

	if server == "" || database == "" {
		failure := failureFrom(status.New(status.InvalidRequest,
			"supply 'connectionId' or both 'server' and 'database'"))
		return nil, &failure
	}
	return &designer.Target{Server: server, Database: database}, nil
}

func boolMeasure(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
