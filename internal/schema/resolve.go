/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package schema

import (
	"strings"

	"schema-designer-mcp/internal/status"
)

// TableRef is a loose, caller-supplied reference to a table: either a
// stable id or a {schemaName, tableName} pair. Supplying both shapes in one
// reference is rejected before any lookup.
type TableRef struct {
	ID         string `json:"id,omitempty"`
	SchemaName string `json:"schemaName,omitempty"`
	TableName  string `json:"tableName,omitempty"`
}

// IsZero reports whether the reference carries no identifying information
func (r TableRef) IsZero() bool {
	return r.ID == "" && r.SchemaName == "" && r.TableName == ""
}

// Resolve resolves a table reference against the schema, yielding exactly
// one table or a typed failure.
//
// Case-insensitive duplicate {schema, name} pairs are a legal transient
// state (mid-rename), so name lookups can legitimately be ambiguous;
// id lookups never are.
func Resolve(s *Schema, ref TableRef) (*Table, error) {
	if ref.ID != "" && (ref.SchemaName != "" || ref.TableName != "") {
		return nil, status.New(status.InvalidRequest,
			"table reference must supply either 'id' or 'schemaName'+'tableName', not both")
	}

	if ref.ID != "" {
		for _, t := range s.Tables {
			if t.ID == ref.ID {
				return t, nil
			}
		}
		return nil, status.Errorf(status.NotFound, "no table with id %q", ref.ID)
	}

	if ref.SchemaName == "" || ref.TableName == "" {
		return nil, status.New(status.InvalidRequest,
			"table reference requires both 'schemaName' and 'tableName' when 'id' is not supplied")
	}

	var matches []*Table
	for _, t := range s.Tables {
		if strings.EqualFold(t.SchemaName, ref.SchemaName) && strings.EqualFold(t.Name, ref.TableName) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return nil, status.Errorf(status.NotFound,
			"no table named %s.%s", ref.SchemaName, ref.TableName)
	case 1:
		return matches[0], nil
	default:
		return nil, status.Errorf(status.AmbiguousIdentifier,
			"%d tables match %s.%s (case-insensitive); reference the table by id instead",
			len(matches), ref.SchemaName, ref.TableName)
	}
}
