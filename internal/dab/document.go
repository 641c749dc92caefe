/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package dab

import (
	"context"
	"sync"

	"schema-designer-mcp/internal/designer"
	"schema-designer-mcp/internal/status"
)

// ApplyResult reports the outcome of one apply call against the config
// document. Semantics match the schema designer pipeline: Version is the
// document version at the moment the call returned.
type ApplyResult struct {
	OK                bool
	Version           string
	AppliedChanges    int
	FailedChangeIndex int // -1 when no change failed
	Receipt           *Receipt
	Err               error
}

// Document is one live DAB configuration editing session. The config is
// mutated only through ApplyChanges; the mutex serializes apply calls so
// two batches can never interleave.
type Document struct {
	mu     sync.Mutex
	target designer.Target
	state  *Config
}

// NewDocument creates a config document bound to a target. A nil initial
// config opens with both API types enabled and no entities.
func NewDocument(target designer.Target, initial *Config) *Document {
	if initial == nil {
		initial = &Config{
			EnabledAPITypes: []string{string(APITypeRest), string(APITypeGraphQL)},
		}
	}
	return &Document{target: target, state: initial}
}

// Target returns the document's bound {server, database}
func (d *Document) Target() designer.Target {
	return d.target
}

// Version recomputes the current version token
func (d *Document) Version() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ComputeVersion(d.state)
}

// Summary builds a bounded view of the current config
func (d *Document) Summary(maxEntities int) (string, Summary) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ComputeVersion(d.state), BuildSummary(d.state, maxEntities)
}

// ApplyChanges runs the optimistic-concurrency pipeline over an ordered
// batch of configuration changes: version check, then stepwise apply with
// fail-fast prefix-commit semantics. Cancellation is checked before each
// item.
func (d *Document) ApplyChanges(ctx context.Context, expectedVersion string, changes []Change) ApplyResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	current := ComputeVersion(d.state)
	if expectedVersion != current {
		return ApplyResult{
			Version:           current,
			FailedChangeIndex: -1,
			Err: status.New(status.StaleState,
				"expectedVersion does not match the current configuration version; the config changed since it was last read"),
		}
	}

	receipt := &Receipt{}
	for i, change := range changes {
		if err := ctx.Err(); err != nil {
			return ApplyResult{
				Version:           ComputeVersion(d.state),
				AppliedChanges:    i,
				FailedChangeIndex: i,
				Receipt:           receipt,
				Err:               status.Errorf(status.InternalError, "apply cancelled: %v", err),
			}
		}
		if err := change.Apply(d.state, receipt); err != nil {
			return ApplyResult{
				Version:           ComputeVersion(d.state),
				AppliedChanges:    i,
				FailedChangeIndex: i,
				Receipt:           receipt,
				Err:               err,
			}
		}
	}

	return ApplyResult{
		OK:                true,
		Version:           ComputeVersion(d.state),
		AppliedChanges:    len(changes),
		FailedChangeIndex: -1,
		Receipt:           receipt,
	}
}
