/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package telemetry

import (
	"testing"
)

type panickingSink struct{}

func (panickingSink) Record(view, action string, props map[string]string, measures map[string]float64) {
	panic("sink exploded")
}

type capturingSink struct {
	view     string
	action   string
	props    map[string]string
	measures map[string]float64
}

func (s *capturingSink) Record(view, action string, props map[string]string, measures map[string]float64) {
	s.view = view
	s.action = action
	s.props = props
	s.measures = measures
}

func TestEmitPassesThrough(t *testing.T) {
	sink := &capturingSink{}
	Emit(sink, "schemaDesigner", "applyEdits",
		map[string]string{"outcome": "success"},
		map[string]float64{"editsApplied": 3})

	if sink.view != "schemaDesigner" || sink.action != "applyEdits" {
		t.Errorf("record = %s/%s", sink.view, sink.action)
	}
	if sink.props["outcome"] != "success" || sink.measures["editsApplied"] != 3 {
		t.Errorf("payload not forwarded: %v %v", sink.props, sink.measures)
	}
}

func TestEmitSwallowsSinkPanic(t *testing.T) {
	// Must not propagate
	Emit(panickingSink{}, "schemaDesigner", "applyEdits", nil, nil)
}

func TestEmitNilSink(t *testing.T) {
	Emit(nil, "schemaDesigner", "applyEdits", nil, nil)
}

func TestNopDiscards(t *testing.T) {
	Nop{}.Record("v", "a", nil, nil)
}

func TestStoreRecordAndRecent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	store.Record("schemaDesigner", "open",
		map[string]string{"alreadyOpen": "false"},
		map[string]float64{"tableCount": 12})
	store.Record("dabConfig", "applyChanges",
		map[string]string{"outcome": "stale_state"},
		map[string]float64{"changesApplied": 0})

	calls, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("Recent returned %d rows, want 2", len(calls))
	}
	// Newest first
	if calls[0].Action != "applyChanges" {
		t.Errorf("first row action = %s, want applyChanges", calls[0].Action)
	}
	if calls[1].Props["alreadyOpen"] != "false" {
		t.Errorf("props did not round-trip: %v", calls[1].Props)
	}
	if calls[1].Measures["tableCount"] != 12 {
		t.Errorf("measures did not round-trip: %v", calls[1].Measures)
	}
}

func TestStoreRecentLimit(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	for i := 0; i < 5; i++ {
		store.Record("schemaDesigner", "getState", nil, nil)
	}
	calls, err := store.Recent(3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(calls) != 3 {
		t.Errorf("Recent(3) returned %d rows", len(calls))
	}
}
