/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

// Package telemetry records one structured record per tool call.
// Emission is best-effort and fire-and-forget: a sink failure is logged
// and swallowed, never surfaced to the tool caller.
package telemetry

import (
	"schema-designer-mcp/internal/logging"
)

// Sink receives one record per tool call
type Sink interface {
	Record(view, action string, props map[string]string, measures map[string]float64)
}

// Nop is a sink that drops every record
type Nop struct{}

// Record discards the record
func (Nop) Record(view, action string, props map[string]string, measures map[string]float64) {}

// Emit sends a record to the sink, recovering from any panic the sink
// raises so telemetry can never abort or alter a call's actual result.
func Emit(sink Sink, view, action string, props map[string]string, measures map[string]float64) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("telemetry sink panicked", "view", view, "action", action, "panic", r)
		}
	}()
	sink.Record(view, action, props, measures)
}
