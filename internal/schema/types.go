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

	"github.com/google/uuid"
)

// ReferentialAction is a foreign key delete/update action
type ReferentialAction string

const (
	ActionNoAction   ReferentialAction = "no_action"
	ActionCascade    ReferentialAction = "cascade"
	ActionSetNull    ReferentialAction = "set_null"
	ActionSetDefault ReferentialAction = "set_default"
)

// KnownReferentialActions lists every recognized action value
var KnownReferentialActions = []ReferentialAction{
	ActionNoAction, ActionCascade, ActionSetNull, ActionSetDefault,
}

// IsKnownReferentialAction reports whether s is a recognized action value
func IsKnownReferentialAction(s string) bool {
	for _, a := range KnownReferentialActions {
		if string(a) == s {
			return true
		}
	}
	return false
}

// Schema is the root document: an ordered collection of tables.
// Order is irrelevant for identity and only used for stable display.
type Schema struct {
	Tables []*Table `json:"tables"`
}

// Table is a single table entity in the designer document
type Table struct {
	ID          string        `json:"id"`
	SchemaName  string        `json:"schemaName"`
	Name        string        `json:"name"`
	Columns     []*Column     `json:"columns"`
	ForeignKeys []*ForeignKey `json:"foreignKeys"`
}

// Column is a single column within a table
type Column struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	DataType          string `json:"dataType"`
	MaxLength         string `json:"maxLength,omitempty"`
	Precision         int    `json:"precision,omitempty"`
	Scale             int    `json:"scale,omitempty"`
	IsNullable        bool   `json:"isNullable"`
	IsPrimaryKey      bool   `json:"isPrimaryKey"`
	IsIdentity        bool   `json:"isIdentity"`
	IdentitySeed      int64  `json:"identitySeed,omitempty"`
	IdentityIncrement int64  `json:"identityIncrement,omitempty"`
	DefaultValue      string `json:"defaultValue,omitempty"`
	IsComputed        bool   `json:"isComputed"`
	ComputedFormula   string `json:"computedFormula,omitempty"`
	ComputedPersisted bool   `json:"computedPersisted,omitempty"`
}

// ForeignKey is a foreign key constraint owned by a table. Columns and
// ReferencedColumns are parallel arrays: index i of Columns maps to index i
// of ReferencedColumns.
type ForeignKey struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Columns              []string          `json:"columns"`
	ReferencedSchemaName string            `json:"referencedSchemaName"`
	ReferencedTableName  string            `json:"referencedTableName"`
	ReferencedColumns    []string          `json:"referencedColumns"`
	OnDeleteAction       ReferentialAction `json:"onDeleteAction"`
	OnUpdateAction       ReferentialAction `json:"onUpdateAction"`
}

// NewID returns a fresh stable identifier for a table, column or foreign
// key. IDs are assigned at creation and never reused.
func NewID() string {
	return uuid.NewString()
}

// QualifiedName returns schemaName.tableName for display
func (t *Table) QualifiedName() string {
	return t.SchemaName + "." + t.Name
}

// FindColumn looks a column up by name, case-insensitively
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// FindColumnByID looks a column up by its stable id
func (t *Table) FindColumnByID(id string) *Column {
	for _, c := range t.Columns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FindForeignKey looks a foreign key up by name, case-insensitively
func (t *Table) FindForeignKey(name string) *ForeignKey {
	for _, fk := range t.ForeignKeys {
		if strings.EqualFold(fk.Name, name) {
			return fk
		}
	}
	return nil
}

// TotalColumns counts columns across all tables
func (s *Schema) TotalColumns() int {
	total := 0
	for _, t := range s.Tables {
		total += len(t.Columns)
	}
	return total
}

// Clone returns a deep copy of the schema. Used when a caller needs a
// snapshot that cannot alias the live document.
func (s *Schema) Clone() *Schema {
	out := &Schema{Tables: make([]*Table, 0, len(s.Tables))}
	for _, t := range s.Tables {
		ct := &Table{
			ID:          t.ID,
			SchemaName:  t.SchemaName,
			Name:        t.Name,
			Columns:     make([]*Column, 0, len(t.Columns)),
			ForeignKeys: make([]*ForeignKey, 0, len(t.ForeignKeys)),
		}
		for _, c := range t.Columns {
			cc := *c
			ct.Columns = append(ct.Columns, &cc)
		}
		for _, fk := range t.ForeignKeys {
			cfk := *fk
			cfk.Columns = append([]string(nil), fk.Columns...)
			cfk.ReferencedColumns = append([]string(nil), fk.ReferencedColumns...)
			ct.ForeignKeys = append(ct.ForeignKeys, &cfk)
		}
		out.Tables = append(out.Tables, ct)
	}
	return out
}
