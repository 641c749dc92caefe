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
	"testing"

	"schema-designer-mcp/internal/status"
)

func TestRequireString(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		want    string
		wantErr bool
	}{
		{"present", map[string]interface{}{"v": "hello"}, "hello", false},
		{"missing", map[string]interface{}{}, "", true},
		{"empty", map[string]interface{}{"v": ""}, "", true},
		{"number coerces", map[string]interface{}{"v": 42}, "42", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequireString(tt.args, "v")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("RequireString succeeded, want error")
				}
				if status.ReasonOf(err) != status.InvalidRequest {
					t.Errorf("reason = %s, want invalid_request", status.ReasonOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("RequireString failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptionalString(t *testing.T) {
	if got := OptionalString(map[string]interface{}{"v": "x"}, "v", "d"); got != "x" {
		t.Errorf("got %q, want x", got)
	}
	if got := OptionalString(map[string]interface{}{}, "v", "d"); got != "d" {
		t.Errorf("got %q, want default", got)
	}
}

func TestOptionalBool(t *testing.T) {
	if !OptionalBool(map[string]interface{}{"v": true}, "v", false) {
		t.Errorf("true not extracted")
	}
	if !OptionalBool(map[string]interface{}{"v": "true"}, "v", false) {
		t.Errorf("string true not coerced")
	}
	if OptionalBool(map[string]interface{}{}, "v", false) {
		t.Errorf("default not honored")
	}
}

func TestRequireArray(t *testing.T) {
	arr, err := RequireArray(map[string]interface{}{"v": []interface{}{1, 2}}, "v")
	if err != nil || len(arr) != 2 {
		t.Errorf("array not extracted: %v %v", arr, err)
	}
	// Empty arrays are allowed
	arr, err = RequireArray(map[string]interface{}{"v": []interface{}{}}, "v")
	if err != nil || len(arr) != 0 {
		t.Errorf("empty array rejected: %v", err)
	}
	if _, err := RequireArray(map[string]interface{}{}, "v"); status.ReasonOf(err) != status.InvalidRequest {
		t.Errorf("missing array reason = %s", status.ReasonOf(err))
	}
	if _, err := RequireArray(map[string]interface{}{"v": "nope"}, "v"); status.ReasonOf(err) != status.InvalidRequest {
		t.Errorf("mistyped array reason = %s", status.ReasonOf(err))
	}
}

func TestOptionalObject(t *testing.T) {
	obj, err := OptionalObject(map[string]interface{}{"v": map[string]interface{}{"a": 1}}, "v")
	if err != nil || obj == nil {
		t.Errorf("object not extracted: %v", err)
	}
	obj, err = OptionalObject(map[string]interface{}{}, "v")
	if err != nil || obj != nil {
		t.Errorf("absent object should be nil, nil")
	}
	if _, err := OptionalObject(map[string]interface{}{"v": "nope"}, "v"); status.ReasonOf(err) != status.InvalidRequest {
		t.Errorf("mistyped object reason = %s", status.ReasonOf(err))
	}
}

func TestParseTargetHint(t *testing.T) {
	hint, err := parseTargetHint(map[string]interface{}{
		"targetHint": map[string]interface{}{"server": "srv", "database": "db"},
	})
	if err != nil || hint == nil || hint.Server != "srv" {
		t.Errorf("hint not parsed: %+v %v", hint, err)
	}

	hint, err = parseTargetHint(map[string]interface{}{})
	if err != nil || hint != nil {
		t.Errorf("absent hint should be nil, nil")
	}

	_, err = parseTargetHint(map[string]interface{}{
		"targetHint": map[string]interface{}{"server": "srv"},
	})
	if status.ReasonOf(err) != status.InvalidRequest {
		t.Errorf("partial hint reason = %s, want invalid_request", status.ReasonOf(err))
	}
}

func TestParseReturnState(t *testing.T) {
	tests := []struct {
		input   interface{}
		want    string
		wantErr bool
	}{
		{nil, returnStateSummary, false},
		{"full", returnStateFull, false},
		{"summary", returnStateSummary, false},
		{"none", returnStateNone, false},
		{"everything", "", true},
	}
	for _, tt := range tests {
		args := map[string]interface{}{}
		if tt.input != nil {
			args["returnState"] = tt.input
		}
		got, err := parseReturnState(args)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseReturnState(%v) succeeded, want error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseReturnState(%v) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}
