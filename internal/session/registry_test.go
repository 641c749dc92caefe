/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package session

import (
	"context"
	"testing"

	"schema-designer-mcp/internal/dab"
	"schema-designer-mcp/internal/designer"
)

func TestKey(t *testing.T) {
	a := Key(designer.Target{Server: "SQL-PROD-01", Database: "SalesDB"})
	b := Key(designer.Target{Server: "sql-prod-01", Database: "salesdb"})
	if a != b {
		t.Errorf("session keys differ by case: %s vs %s", a, b)
	}
	c := Key(designer.Target{Server: "sql-prod-01", Database: "OtherDB"})
	if a == c {
		t.Errorf("different databases share a session key")
	}
}

func TestOpenDesignerIdempotent(t *testing.T) {
	r := NewRegistry()
	target := designer.Target{Server: "srv", Database: "db"}

	doc1, existed := r.OpenDesigner(target, nil)
	if existed {
		t.Errorf("first open reported an existing session")
	}

	// Same session key, different casing: must reveal, not recreate
	doc2, existed := r.OpenDesigner(designer.Target{Server: "SRV", Database: "DB"}, nil)
	if !existed {
		t.Errorf("reopen did not report the existing session")
	}
	if doc1 != doc2 {
		t.Errorf("reopen created a duplicate document")
	}
}

func TestActiveDesignerSwitching(t *testing.T) {
	r := NewRegistry()
	if r.ActiveDesigner() != nil {
		t.Errorf("fresh registry has an active designer")
	}

	docA, _ := r.OpenDesigner(designer.Target{Server: "srv", Database: "A"}, nil)
	docB, _ := r.OpenDesigner(designer.Target{Server: "srv", Database: "B"}, nil)
	if r.ActiveDesigner() != docB {
		t.Errorf("last opened document is not active")
	}

	// Reopening A foregrounds it again; B stays open in the background
	r.OpenDesigner(designer.Target{Server: "srv", Database: "A"}, nil)
	if r.ActiveDesigner() != docA {
		t.Errorf("reopen did not foreground the existing document")
	}

	// The background document kept its state
	vB := docB.Version()
	if got, _ := r.OpenDesigner(designer.Target{Server: "srv", Database: "B"}, nil); got.Version() != vB {
		t.Errorf("background document lost state")
	}
}

func TestCloseDesigner(t *testing.T) {
	r := NewRegistry()
	target := designer.Target{Server: "srv", Database: "db"}
	doc, _ := r.OpenDesigner(target, nil)

	// Mutate so a recreated document is distinguishable
	v := doc.Version()
	result := doc.ApplyEdits(context.Background(), v, []designer.Edit{
		&designer.AddTable{SchemaName: "dbo", TableName: "T"},
	})
	if !result.OK {
		t.Fatalf("setup failed: %v", result.Err)
	}

	r.CloseDesigner(target)
	if r.ActiveDesigner() != nil {
		t.Errorf("closed designer still active")
	}

	fresh, existed := r.OpenDesigner(target, nil)
	if existed {
		t.Errorf("open after close found a stale session")
	}
	if fresh.Version() != v {
		t.Errorf("reopened document is not empty")
	}
}

func TestOpenConfigIdempotent(t *testing.T) {
	r := NewRegistry()
	target := designer.Target{Server: "srv", Database: "db"}

	doc1, existed := r.OpenConfig(target, nil)
	if existed {
		t.Errorf("first open reported an existing session")
	}
	doc2, existed := r.OpenConfig(target, nil)
	if !existed || doc1 != doc2 {
		t.Errorf("config reopen did not reveal the existing document")
	}

	r.CloseConfig(target)
	if r.ActiveConfig() != nil {
		t.Errorf("closed config still active")
	}
}

func TestDesignerAndConfigTrackedIndependently(t *testing.T) {
	r := NewRegistry()
	target := designer.Target{Server: "srv", Database: "db"}

	r.OpenDesigner(target, nil)
	if r.ActiveConfig() != nil {
		t.Errorf("opening a designer opened a config")
	}

	r.OpenConfig(target, &dab.Config{EnabledAPITypes: []string{"rest"}})
	if r.ActiveDesigner() == nil {
		t.Errorf("opening a config displaced the designer")
	}
}
