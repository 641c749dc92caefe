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
	"github.com/spf13/cast"

	"schema-designer-mcp/internal/status"
)

// RequireString extracts a required string argument. Missing, mistyped or
// empty values are invalid_request.
func RequireString(args map[string]interface{}, name string) (string, error) {
	raw, present := args[name]
	if !present {
		return "", status.Errorf(status.InvalidRequest, "missing required argument '%s'", name)
	}
	value, err := cast.ToStringE(raw)
	if err != nil || value == "" {
		return "", status.Errorf(status.InvalidRequest, "argument '%s' must be a non-empty string", name)
	}
	return value, nil
}

// OptionalString extracts an optional string argument, defaulting when the
// argument is absent or not a string
func OptionalString(args map[string]interface{}, name, defaultValue string) string {
	if raw, present := args[name]; present {
		if value, err := cast.ToStringE(raw); err == nil {
			return value
		}
	}
	return defaultValue
}

// OptionalBool extracts an optional boolean argument
func OptionalBool(args map[string]interface{}, name string, defaultValue bool) bool {
	if raw, present := args[name]; present {
		if value, err := cast.ToBoolE(raw); err == nil {
			return value
		}
	}
	return defaultValue
}

// RequireArray extracts a required array argument. A missing or mistyped
// value is invalid_request; an empty array is allowed and left to the
// caller's semantics.
func RequireArray(args map[string]interface{}, name string) ([]interface{}, error) {
	raw, present := args[name]
	if !present {
		return nil, status.Errorf(status.InvalidRequest, "missing required argument '%s'", name)
	}
	value, ok := raw.([]interface{})
	if !ok {
		return nil, status.Errorf(status.InvalidRequest, "argument '%s' must be an array", name)
	}
	return value, nil
}

// OptionalObject extracts an optional object argument, returning nil when
// absent. A present non-object value is invalid_request.
func OptionalObject(args map[string]interface{}, name string) (map[string]interface{}, error) {
	raw, present := args[name]
	if !present || raw == nil {
		return nil, nil
	}
	value, ok := raw.(map[string]interface{})
	if !ok {
		return nil, status.Errorf(status.InvalidRequest, "argument '%s' must be an object", name)
	}
	return value, nil
}
