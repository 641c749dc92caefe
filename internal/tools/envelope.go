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
	"schema-designer-mcp/internal/connections"
	"schema-designer-mcp/internal/dab"
	"schema-designer-mcp/internal/designer"
	"schema-designer-mcp/internal/mcp"
	"schema-designer-mcp/internal/schema"
	"schema-designer-mcp/internal/session"
	"schema-designer-mcp/internal/status"
	"schema-designer-mcp/internal/telemetry"
)

// Telemetry view names for the two protocols
const (
	viewSchemaDesigner = "SchemaDesigner"
	viewDabConfig      = "DabConfig"
	viewConnections    = "Connections"
)

// Deps carries the collaborators tool constructors need. The registry and
// stores are constructor-injected; tools never reach for globals.
type Deps struct {
	Registry    *session.Registry
	Connections *connections.Store
	Telemetry   telemetry.Sink
}

// Failure is the error envelope shared by both protocols. Only derived,
// bounded views appear here; the live document is never serialized.
type Failure struct {
	Success           bool             `json:"success"`
	Reason            status.Reason    `json:"reason"`
	Message           string           `json:"message"`
	Server            string           `json:"server,omitempty"`
	Database          string           `json:"database,omitempty"`
	ActiveTarget      *designer.Target `json:"activeTarget,omitempty"`
	TargetHint        *designer.Target `json:"targetHint,omitempty"`
	CurrentVersion    string           `json:"currentVersion,omitempty"`
	CurrentOverview   *schema.Overview `json:"currentOverview,omitempty"`
	CurrentSummary    *dab.Summary     `json:"currentSummary,omitempty"`
	SuggestedNextCall string           `json:"suggestedNextCall,omitempty"`
	FailedEditIndex   *int             `json:"failedEditIndex,omitempty"`
	AppliedEdits      *int             `json:"appliedEdits,omitempty"`
	FailedChangeIndex *int             `json:"failedChangeIndex,omitempty"`
	AppliedChanges    *int             `json:"appliedChanges,omitempty"`
	Receipt           interface{}      `json:"receipt,omitempty"`
}

// withTarget attaches the active document's bound target so callers can
// disambiguate even on error paths
func (f Failure) withTarget(target designer.Target) Failure {
	f.Server = target.Server
	f.Database = target.Database
	return f
}

func respondFailure(f Failure) (mcp.ToolResponse, error) {
	f.Success = false
	return mcp.NewToolJSON(f, true)
}

func respondSuccess(envelope interface{}) (mcp.ToolResponse, error) {
	return mcp.NewToolJSON(envelope, false)
}

// failureFrom shapes a typed error into the shared failure envelope
func failureFrom(err error) Failure {
	return Failure{
		Reason:  status.ReasonOf(err),
		Message: status.MessageOf(err),
	}
}

// emit records one telemetry record for a call. Best-effort; never affects
// the call's result.
func emit(sink telemetry.Sink, view, action string, success bool, reason status.Reason, measures map[string]float64) {
	props := map[string]string{
		"success": boolString(success),
	}
	if !success {
		props["failureReason"] = string(reason)
	}
	telemetry.Emit(sink, view, action, props, measures)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// parseTargetHint decodes an optional {server, database} hint
func parseTargetHint(args map[string]interface{}) (*designer.Target, error) {
	obj, err := OptionalObject(args, "targetHint")
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	server := OptionalString(obj, "server", "")
	database := OptionalString(obj, "database", "")
	if server == "" || database == "" {
		return nil, status.New(status.InvalidRequest,
			"'targetHint' requires both 'server' and 'database'")
	}
	return &designer.Target{Server: server, Database: database}, nil
}

// parseTableRef decodes an optional table reference object
func parseTableRef(obj map[string]interface{}) schema.TableRef {
	return schema.TableRef{
		ID:         OptionalString(obj, "id", ""),
		SchemaName: OptionalString(obj, "schemaName", ""),
		TableName:  OptionalString(obj, "tableName", ""),
	}
}

// returnState values accepted by the apply tools
const (
	returnStateFull    = "full"
	returnStateSummary = "summary"
	returnStateNone    = "none"
)

func parseReturnState(args map[string]interface{}) (string, error) {
	value := OptionalString(args, "returnState", returnStateSummary)
	switch value {
	case returnStateFull, returnStateSummary, returnStateNone:
		return value, nil
	default:
		return "", status.Errorf(status.InvalidRequest,
			"unrecognized returnState %q (expected full, summary or none)", value)
	}
}
