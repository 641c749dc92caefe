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

	"schema-designer-mcp/internal/dab"
	"schema-designer-mcp/internal/mcp"
	"schema-designer-mcp/internal/status"
)

// dabConfigResult is the success envelope for get_dab_config
type dabConfigResult struct {
	Success     bool        `json:"success"`
	Version     string      `json:"version"`
	Server      string      `json:"server"`
	Database    string      `json:"database"`
	AlreadyOpen bool        `json:"alreadyOpen"`
	Summary     dab.Summary `json:"summary"`
}

// GetDabConfigTool creates the get_dab_config tool
func GetDabConfigTool(deps Deps) Tool {
	return Tool{
		Definition: mcp.Tool{
			Name: "get_dab_config",
			Description: `Read the Data API Builder configuration for the active designer session: exposed entities, API surfaces, permissions, and the config version token.

<usecase>
Use this before apply_dab_config_changes to learn the current configuration
and obtain its expectedVersion. The config has its own version token (the
"dabcfg_" prefix makes it distinguishable); schema designer tokens are not
interchangeable with it.
</usecase>

<important>
Opens the config editor for the active designer's database when it is not
open yet (idempotent). Against very large configurations the per-entity
list is omitted and entitiesOmitted is set.
</important>`,
			InputSchema: mcp.InputSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
			const action = "get_dab_config"

			configDoc := deps.Registry.ActiveConfig()
			alreadyOpen := true
			if configDoc == nil {
				// Open the auxiliary config view alongside the active
				// designer; without a designer there is no target to bind.
				designerDoc := deps.Registry.ActiveDesigner()
				if designerDoc == nil {
					emit(deps.Telemetry, viewDabConfig, action, false, status.NoActiveConfig, nil)
					return respondFailure(Failure{
						Reason:            status.NoActiveConfig,
						Message:           "no configuration editor is open and no schema designer is active to open one for; call open_schema_designer first",
						SuggestedNextCall: "open_schema_designer",
					})
				}
				configDoc, alreadyOpen = deps.Registry.OpenConfig(designerDoc.Target(), nil)
			}
			target := configDoc.Target()

			version, summary := configDoc.Summary(dab.MaxResponseEntities)
			emit(deps.Telemetry, viewDabConfig, action, true, "", map[string]float64{
				"entityCount": float64(summary.EntityCount),
			})
			return respondSuccess(dabConfigResult{
				Success:     true,
				Version:     version,
				Server:      target.Server,
				Database:    target.Database,
				AlreadyOpen: alreadyOpen,
				Summary:     summary,
			})
		},
	}
}
