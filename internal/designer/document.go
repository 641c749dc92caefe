/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package designer

import (
	"context"
	"strings"
	"sync"

	"schema-designer-mcp/internal/schema"
	"schema-designer-mcp/internal/status"
)

// Target identifies the database a document is bound to
type Target struct {
	Server   string `json:"server"`
	Database string `json:"database"`
}

// Matches compares targets case-insensitively
func (t Target) Matches(other Target) bool {
	return strings.EqualFold(t.Server, other.Server) &&
		strings.EqualFold(t.Database, other.Database)
}

// TableIdent names a table in a receipt
type TableIdent struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

// Receipt summarizes applied edits grouped by operation kind
type Receipt struct {
	TablesAdded        []TableIdent `json:"tablesAdded,omitempty"`
	TablesRenamed      []TableIdent `json:"tablesRenamed,omitempty"`
	TablesDropped      []TableIdent `json:"tablesDropped,omitempty"`
	ColumnsAdded       []string     `json:"columnsAdded,omitempty"`
	ColumnsAltered     []string     `json:"columnsAltered,omitempty"`
	ColumnsDropped     []string     `json:"columnsDropped,omitempty"`
	ForeignKeysAdded   []string     `json:"foreignKeysAdded,omitempty"`
	ForeignKeysAltered []string     `json:"foreignKeysAltered,omitempty"`
	ForeignKeysDropped []string     `json:"foreignKeysDropped,omitempty"`
}

// CountsByKind returns how many edits of each kind were applied, for
// telemetry measures.
func (r *Receipt) CountsByKind() map[string]float64 {
	counts := map[string]float64{}
	add := func(key string, n int) {
		if n > 0 {
			counts[key] = float64(n)
		}
	}
	add("tablesAdded", len(r.TablesAdded))
	add("tablesRenamed", len(r.TablesRenamed))
	add("tablesDropped", len(r.TablesDropped))
	add("columnsAdded", len(r.ColumnsAdded))
	add("columnsAltered", len(r.ColumnsAltered))
	add("columnsDropped", len(r.ColumnsDropped))
	add("foreignKeysAdded", len(r.ForeignKeysAdded))
	add("foreignKeysAltered", len(r.ForeignKeysAltered))
	add("foreignKeysDropped", len(r.ForeignKeysDropped))
	return counts
}

// ApplyResult reports the outcome of one apply call. Version always carries
// the document's version at the moment the call returned: the new version
// on success, the recomputed partially-mutated version on a mid-batch
// failure, and the unchanged current version on a stale expectedVersion.
type ApplyResult struct {
	OK              bool
	Version         string
	AppliedEdits    int
	FailedEditIndex int // -1 when no edit failed
	Receipt         *Receipt
	Err             error
}

// Document is one live schema designer session. The schema is owned by the
// document and mutated only through ApplyEdits; reads snapshot under the
// same lock so no caller can observe a half-applied batch.
type Document struct {
	mu     sync.Mutex
	target Target
	state  *schema.Schema
}

// NewDocument creates a designer document bound to a target. A nil initial
// schema opens an empty document.
func NewDocument(target Target, initial *schema.Schema) *Document {
	if initial == nil {
		initial = &schema.Schema{}
	}
	return &Document{target: target, state: initial}
}

// Target returns the document's bound {server, database}
func (d *Document) Target() Target {
	return d.target
}

// Version recomputes the current version token. Recomputing is cheap and
// always safe to redo, so no token is cached across calls.
func (d *Document) Version() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return schema.ComputeVersion(d.state)
}

// Overview builds a bounded projection of the current state
func (d *Document) Overview(opts schema.OverviewOptions) (string, schema.Overview) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return schema.ComputeVersion(d.state), schema.BuildOverview(d.state, opts)
}

// TableView resolves a table reference and builds its projection
func (d *Document) TableView(ref schema.TableRef, verbosity schema.Verbosity, includeForeignKeys bool) (string, schema.TableView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	version := schema.ComputeVersion(d.state)
	table, err := schema.Resolve(d.state, ref)
	if err != nil {
		return version, schema.TableView{}, err
	}
	return version, schema.BuildTableView(table, verbosity, includeForeignKeys), nil
}

// ApplyEdits runs the optimistic-concurrency apply pipeline:
//
//	VERSION_CHECK -> STEPWISE_APPLY -> (SUCCESS | FAILED)
//
// The document mutex serializes apply calls, so two batches can never
// interleave against the same document. Edits are applied strictly in
// order; the first failure stops the batch and edits applied before it
// stay applied (prefix-commit, no rollback). Cancellation is checked
// before each item.
func (d *Document) ApplyEdits(ctx context.Context, expectedVersion string, edits []Edit) ApplyResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	current := schema.ComputeVersion(d.state)
	if expectedVersion != current {
		return ApplyResult{
			Version:         current,
			FailedEditIndex: -1,
			Err: status.Errorf(status.StaleState,
				"expectedVersion does not match the current document version; the schema changed since it was last read"),
		}
	}

	receipt := &Receipt{}
	for i, edit := range edits {
		if err := ctx.Err(); err != nil {
			return ApplyResult{
				Version:         schema.ComputeVersion(d.state),
				AppliedEdits:    i,
				FailedEditIndex: i,
				Receipt:         receipt,
				Err:             status.Errorf(status.InternalError, "apply cancelled: %v", err),
			}
		}
		if err := edit.Apply(d.state, receipt); err != nil {
			return ApplyResult{
				Version:         schema.ComputeVersion(d.state),
				AppliedEdits:    i,
				FailedEditIndex: i,
				Receipt:         receipt,
				Err:             err,
			}
		}
	}

	return ApplyResult{
		OK:              true,
		Version:         schema.ComputeVersion(d.state),
		AppliedEdits:    len(edits),
		FailedEditIndex: -1,
		Receipt:         receipt,
	}
}
