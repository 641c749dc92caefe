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

// applyChangesResult is the success envelope for apply_dab_config_changes
type applyChangesResult struct {
	Success        bool         `json:"success"`
	Version        string       `json:"version"`
	Server         string       `json:"server"`
	Database       string       `json:"database"`
	AppliedChanges int          `json:"appliedChanges"`
	Receipt        *dab.Receipt `json:"receipt"`
	State          *dab.Summary `json:"state,omitempty"`
	Summary        *dab.Summary `json:"summary,omitempty"`
}

// ApplyDabConfigChangesTool creates the apply_dab_config_changes tool
func ApplyDabConfigChangesTool(deps Deps) Tool {
	return Tool{
		Definition: mcp.Tool{
			Name: "apply_dab_config_changes",
			Description: `Apply an ordered batch of changes to the active Data API Builder configuration, guarded by optimistic concurrency.

<usecase>
Use this to expose entities, adjust per-entity settings and permissions, or
switch API surfaces. Obtain expectedVersion from get_dab_config first.
</usecase>

<change_types>
add_entity, remove_entity, patch_entity_settings, set_entity_permissions,
set_enabled_api_types, set_only_entities_enabled. Each change is an object
with a "type" field plus its payload. In patch_entity_settings a JSON null
clears an optional alias; an empty string is rejected.
</change_types>

<failure_semantics>
Changes apply strictly in order and stop at the first failure; prior
changes stay applied. The response discloses appliedChanges and
failedChangeIndex plus the recomputed version. On stale_state nothing is
applied.
</failure_semantics>`,
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"expectedVersion": map[string]interface{}{
						"type":        "string",
						"description": "Config version token (dabcfg_ prefixed). Mismatch fails with stale_state.",
					},
					"changes": map[string]interface{}{
						"type":        "array",
						"description": "Ordered batch of change objects, each with a 'type' discriminator.",
					},
					"targetHint": map[string]interface{}{
						"type":        "object",
						"description": "Optional {server, database} assertion checked before anything else.",
					},
					"returnState": map[string]interface{}{
						"type":        "string",
						"description": "What to attach on success: full, summary, or none.",
						"default":     "summary",
					},
				},
				Required: []string{"expectedVersion", "changes"},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
			const action = "apply_dab_config_changes"
			fail := func(f Failure) (mcp.ToolResponse, error) {
				emit(deps.Telemetry, viewDabConfig, action, false, f.Reason, nil)
				return respondFailure(f)
			}

			doc := deps.Registry.ActiveConfig()
			if doc == nil {
				return fail(Failure{
					Reason:            status.NoActiveConfig,
					Message:           "no configuration editor is open; call get_dab_config first",
					SuggestedNextCall: "get_dab_config",
				})
			}
			target := doc.Target()

			// Target check short-circuits ahead of the version check
			hint, err := parseTargetHint(args)
			if err != nil {
				return fail(failureFrom(err).withTarget(target))
			}
			if hint != nil && !target.Matches(*hint) {
				return fail(Failure{
					Reason:       status.TargetMismatch,
					Message:      "the active configuration editor is bound to a different database than the targetHint",
					ActiveTarget: &target,
					TargetHint:   hint,
				}.withTarget(target))
			}

			expectedVersion, err := RequireString(args, "expectedVersion")
			if err != nil {
				return fail(failureFrom(err).withTarget(target))
			}
			rawChanges, err := RequireArray(args, "changes")
			if err != nil {
				return fail(failureFrom(err).withTarget(target))
			}
			returnState, err := parseReturnState(args)
			if err != nil {
				return fail(failureFrom(err).withTarget(target))
			}
			changes, err := dab.ParseChanges(rawChanges)
			if err != nil {
				return fail(failureFrom(err).withTarget(target))
			}

			result := doc.ApplyChanges(ctx, expectedVersion, changes)

			if !result.OK {
				reason := status.ReasonOf(result.Err)
				failure := failureFrom(result.Err).withTarget(target)
				failure.CurrentVersion = result.Version
				failure.AppliedChanges = &result.AppliedChanges

				if reason == status.StaleState {
					_, summary := doc.Summary(dab.MaxSyncCheckEntities)
					failure.CurrentSummary = &summary
					failure.SuggestedNextCall = "get_dab_config"
				} else {
					failure.FailedChangeIndex = &result.FailedChangeIndex
					failure.Receipt = result.Receipt
				}

				emit(deps.Telemetry, viewDabConfig, action, false, reason, map[string]float64{
					"changesAttempted": float64(len(changes)),
					"changesApplied":   float64(result.AppliedChanges),
				})
				return respondFailure(failure)
			}

			success := applyChangesResult{
				Success:        true,
				Version:        result.Version,
				Server:         target.Server,
				Database:       target.Database,
				AppliedChanges: result.AppliedChanges,
				Receipt:        result.Receipt,
			}
			switch returnState {
			case returnStateFull:
				_, summary := doc.Summary(dab.MaxResponseEntities)
				success.State = &summary
			case returnStateSummary:
				_, summary := doc.Summary(dab.MaxResponseEntities)
				summary.Entities = nil
				success.Summary = &summary
			}

			measures := result.Receipt.CountsByKind()
			measures["changesApplied"] = float64(result.AppliedChanges)
			emit(deps.Telemetry, viewDabConfig, action, true, "", measures)
			return respondSuccess(success)
		},
	}
}
