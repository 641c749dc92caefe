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

	"schema-designer-mcp/internal/mcp"
	"schema-designer-mcp/internal/schema"
	"schema-designer-mcp/internal/status"
)

// overviewResult is the success envelope for a whole-schema read
type overviewResult struct {
	Success  bool            `json:"success"`
	Version  string          `json:"version"`
	Server   string          `json:"server"`
	Database string          `json:"database"`
	Overview schema.Overview `json:"overview"`
}

// tableResult is the success envelope for a single-table read
type tableResult struct {
	Success  bool             `json:"success"`
	Version  string           `json:"version"`
	Server   string           `json:"server"`
	Database string           `json:"database"`
	Table    schema.TableView `json:"table"`
}

// GetSchemaDesignerStateTool creates the get_schema_designer_state tool
func GetSchemaDesignerStateTool(deps Deps) Tool {
	return Tool{
		Definition: mcp.Tool{
			Name: "get_schema_designer_state",
			Description: `Read the active schema designer document: tables, columns, foreign keys and the current version token.

<usecase>
Use this to learn the current shape of the schema and to obtain the version
token required by apply_schema_designer_edits. Re-read after any failure
that reports stale_state.
</usecase>

<verbosity_levels>
- "none": table names only
- "names": table names + column names (default)
- "namesAndTypes": adds data types and primary-key/nullable flags
- "full": every attribute including stable ids — single-table reads only
</verbosity_levels>

<important>
Against a large schema (more than 40 tables or 400 total columns) column
detail is omitted regardless of verbosity and columnsOmitted is set; read
individual tables with the 'table' argument to get detail.
</important>`,
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"verbosity": map[string]interface{}{
						"type":        "string",
						"description": "Detail level: none, names, namesAndTypes, or full (single-table only).",
						"default":     "names",
					},
					"includeForeignKeys": map[string]interface{}{
						"type":        "boolean",
						"description": "Include foreign key constraints in the view.",
						"default":     false,
					},
					"table": map[string]interface{}{
						"type":        "object",
						"description": "Optional reference to a single table: {id} or {schemaName, tableName}, never both.",
					},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
			const action = "get_schema_designer_state"

			doc := deps.Registry.ActiveDesigner()
			if doc == nil {
				emit(deps.Telemetry, viewSchemaDesigner, action, false, status.NoActiveDesigner, nil)
				return respondFailure(Failure{
					Reason:            status.NoActiveDesigner,
					Message:           "no schema designer is open; call open_schema_designer first",
					SuggestedNextCall: "open_schema_designer",
				})
			}
			target := doc.Target()

			tableObj, err := OptionalObject(args, "table")
			if err != nil {
				emit(deps.Telemetry, viewSchemaDesigner, action, false, status.ReasonOf(err), nil)
				return respondFailure(failureFrom(err).withTarget(target))
			}

			includeForeignKeys := OptionalBool(args, "includeForeignKeys", false)
			verbosity, err := schema.ParseVerbosity(OptionalString(args, "verbosity", ""), tableObj != nil)
			if err != nil {
				emit(deps.Telemetry, viewSchemaDesigner, action, false, status.ReasonOf(err), nil)
				return respondFailure(failureFrom(err).withTarget(target))
			}

			if tableObj != nil {
				version, view, err := doc.TableView(parseTableRef(tableObj), verbosity, includeForeignKeys)
				if err != nil {
					emit(deps.Telemetry, viewSchemaDesigner, action, false, status.ReasonOf(err), nil)
					failure := failureFrom(err).withTarget(target)
					failure.CurrentVersion = version
					return respondFailure(failure)
				}
				emit(deps.Telemetry, viewSchemaDesigner, action, true, "", map[string]float64{
					"columnCount": float64(len(view.Columns)),
				})
				return respondSuccess(tableResult{
					Success:  true,
					Version:  version,
					Server:   target.Server,
					Database: target.Database,
					Table:    view,
				})
			}

			version, overview := doc.Overview(schema.OverviewOptions{
				Verbosity:          verbosity,
				IncludeForeignKeys: includeForeignKeys,
			})
			emit(deps.Telemetry, viewSchemaDesigner, action, true, "", map[string]float64{
				"tableCount":  float64(overview.TableCount),
				"columnCount": float64(overview.ColumnCount),
			})
			return respondSuccess(overviewResult{
				Success:  true,
				Version:  version,
				Server:   target.Server,
				Database: target.Database,
				Overview: overview,
			})
		},
	}
}
