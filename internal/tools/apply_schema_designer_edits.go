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

// applyEditsResult is the success envelope for apply_schema_designer_edits
type applyEditsResult struct {
	Success      bool              `json:"success"`
	Version      string            `json:"version"`
	Server       string            `json:"server"`
	Database     string            `json:"database"`
	AppliedEdits int               `json:"appliedEdits"`
	Receipt      *designer.Receipt `json:"receipt"`
	State        *schema.Overview  `json:"state,omitempty"`
	Summary      *schema.Overview  `json:"summary,omitempty"`
}

// ApplySchemaDesignerEditsTool creates the apply_schema_designer_edits tool
func ApplySchemaDesignerEditsTool(deps Deps) Tool {
	return Tool{
		Definition: mcp.Tool{
			Name: "apply_schema_designer_edits",
			Description: `Apply an ordered batch of structural edits to the active schema designer document, guarded by optimistic concurrency.

<usecase>
Use this to create, change or drop tables, columns and foreign keys. Obtain
expectedVersion from get_schema_designer_state (or a previous apply) first;
a human may be editing the same diagram concurrently.
</usecase>

<edit_types>
add_table, rename_table, drop_table, add_column, alter_column, drop_column,
add_foreign_key, alter_foreign_key, drop_foreign_key. Each edit is an object
with a "type" field plus its payload; tables are referenced by {id} or by
{schemaName, tableName}, never both.
</edit_types>

<failure_semantics>
Edits apply strictly in order and stop at the first failure. Edits before
the failing one STAY APPLIED (no rollback): the response discloses
appliedEdits and failedEditIndex, plus the recomputed version of the
partially-updated document. On stale_state nothing is applied; re-read and
retry with the returned currentVersion.
</failure_semantics>`,
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"expectedVersion": map[string]interface{}{
						"type":        "string",
						"description": "Version token the caller believes is current. Mismatch fails with stale_state and applies nothing.",
					},
					"edits": map[string]interface{}{
						"type":        "array",
						"description": "Ordered batch of edit objects, each with a 'type' discriminator.",
					},
					"targetHint": map[string]interface{}{
						"type":        "object",
						"description": "Optional {server, database} assertion checked against the active document before anything else.",
					},
					"returnState": map[string]interface{}{
						"type":        "string",
						"description": "What to attach on success: full, summary, or none.",
						"default":     "summary",
					},
				},
				Required: []string{"expectedVersion", "edits"},
			},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error) {
			const action = "apply_schema_designer_edits"
			fail := func(f Failure) (mcp.ToolResponse, error) {
				emit(deps.Telemetry, viewSchemaDesigner, action, false, f.Reason, nil)
				return respondFailure(f)
			}

			doc := deps.Registry.ActiveDesigner()
			if doc == nil {
				return fail(Failure{
					Reason:            status.NoActiveDesigner,
					Message:           "no schema designer is open; call open_schema_designer first",
					SuggestedNextCall: "open_schema_designer",
				})
			}
			target := doc.Target()

			// TARGET_CHECK runs before anything touches the document,
			// including the version check.
			hint, err := parseTargetHint(args)
			if err != nil {
				return fail(failureFrom(err).withTarget(target))
			}
			if hint != nil && !target.Matches(*hint) {
				return fail(Failure{
					Reason:       status.TargetMismatch,
					Message:      "the active schema designer is bound to a different database than the targetHint",
					ActiveTarget: &target,
					TargetHint:   hint,
				}.withTarget(target))
			}

			expectedVersion, err := RequireString(args, "expectedVersion")
			if err != nil {
				return fail(failureFrom(err).withTarget(target))
			}
			rawEdits, err := RequireArray(args, "edits")
			if err != nil {
				return fail(failureFrom(err).withTarget(target))
			}
			returnState, err := parseReturnState(args)
			if err != nil {
				return fail(failureFrom(err).withTarget(target))
			}
			edits, err := designer.ParseEdits(rawEdits)
			if err != nil {
				return fail(failureFrom(err).withTarget(target))
			}

			result := doc.ApplyEdits(ctx, expectedVersion, edits)

			if !result.OK {
				reason := status.ReasonOf(result.Err)
				failure := failureFrom(result.Err).withTarget(target)
				failure.CurrentVersion = result.Version
				failure.AppliedEdits = &result.AppliedEdits

				if reason == status.StaleState {
					// Attach a bounded view of what the document looks like
					// now so the caller can recover without a second read.
					_, overview := doc.Overview(schema.OverviewOptions{Verbosity: schema.VerbosityNames})
					failure.CurrentOverview = &overview
					failure.SuggestedNextCall = "get_schema_designer_state"
				} else {
					failure.FailedEditIndex = &result.FailedEditIndex
					failure.Receipt = result.Receipt
				}

				emit(deps.Telemetry, viewSchemaDesigner, action, false, reason, map[string]float64{
					"editsAttempted": float64(len(edits)),
					"editsApplied":   float64(result.AppliedEdits),
				})
				return respondFailure(failure)
			}

			success := applyEditsResult{
				Success:      true,
				Version:      result.Version,
				Server:       target.Server,
				Database:     target.Database,
				AppliedEdits: result.AppliedEdits,
				Receipt:      result.Receipt,
			}
			switch returnState {
			case returnStateFull:
				_, overview := doc.Overview(schema.OverviewOptions{
					Verbosity:          schema.VerbosityNamesAndTypes,
					IncludeForeignKeys: true,
				})
				success.State = &overview
			case returnStateSummary:
				_, overview := doc.Overview(schema.OverviewOptions{Verbosity: schema.VerbosityNames})
				success.Summary = &overview
			}

			measures := result.Receipt.CountsByKind()
			measures["editsApplied"] = float64(result.AppliedEdits)
			emit(deps.Telemetry, viewSchemaDesigner, action, true, "", measures)
			return respondSuccess(success)
		},
	}
}
