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
	"schema-designer-mcp/internal/status"
)

// Verbosity selects how much detail a projection carries
type Verbosity string

const (
	VerbosityNone          Verbosity = "none"
	VerbosityNames         Verbosity = "names"
	VerbosityNamesAndTypes Verbosity = "namesAndTypes"
	// VerbosityFull is only valid for single-table views
	VerbosityFull Verbosity = "full"
)

// Size ceilings for a single overview response. Exceeding either forces
// column detail to be omitted so one read call can never return an
// unbounded payload against a huge schema.
const (
	MaxOverviewTables  = 40
	MaxOverviewColumns = 400
)

// ParseVerbosity validates a caller-supplied verbosity string.
// allowFull permits the single-table-only "full" level.
func ParseVerbosity(s string, allowFull bool) (Verbosity, error) {
	switch Verbosity(s) {
	case VerbosityNone, VerbosityNames, VerbosityNamesAndTypes:
		return Verbosity(s), nil
	case VerbosityFull:
		if allowFull {
			return VerbosityFull, nil
		}
		return "", status.New(status.InvalidRequest,
			"verbosity 'full' is only valid for single-table views")
	case "":
		return VerbosityNames, nil
	default:
		return "", status.Errorf(status.InvalidRequest,
			"unrecognized verbosity %q (expected none, names or namesAndTypes)", s)
	}
}

// ColumnView is the bounded projection of a column
type ColumnView struct {
	ID                string `json:"id,omitempty"`
	Name              string `json:"name"`
	DataType          string `json:"dataType,omitempty"`
	MaxLength         string `json:"maxLength,omitempty"`
	Precision         int    `json:"precision,omitempty"`
	Scale             int    `json:"scale,omitempty"`
	IsNullable        *bool  `json:"isNullable,omitempty"`
	IsPrimaryKey      *bool  `json:"isPrimaryKey,omitempty"`
	IsIdentity        bool   `json:"isIdentity,omitempty"`
	IdentitySeed      int64  `json:"identitySeed,omitempty"`
	IdentityIncrement int64  `json:"identityIncrement,omitempty"`
	DefaultValue      string `json:"defaultValue,omitempty"`
	IsComputed        bool   `json:"isComputed,omitempty"`
	ComputedFormula   string `json:"computedFormula,omitempty"`
	ComputedPersisted bool   `json:"computedPersisted,omitempty"`
}

// ReferencedTableView names the target of a foreign key
type ReferencedTableView struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

// ColumnMapping pairs an owning column with its referenced column.
// Mappings are positional: index i of the constraint's columns maps to
// index i of its referenced columns.
type ColumnMapping struct {
	Column           string `json:"column"`
	ReferencedColumn string `json:"referencedColumn"`
}

// ForeignKeyView is the bounded projection of a foreign key
type ForeignKeyView struct {
	ID              string              `json:"id,omitempty"`
	Name            string              `json:"name"`
	ReferencedTable ReferencedTableView `json:"referencedTable"`
	Mappings        []ColumnMapping     `json:"mappings"`
	OnDeleteAction  string              `json:"onDeleteAction"`
	OnUpdateAction  string              `json:"onUpdateAction"`
}

// TableView is the bounded projection of a table
type TableView struct {
	ID          string           `json:"id,omitempty"`
	SchemaName  string           `json:"schemaName"`
	Name        string           `json:"name"`
	Columns     []ColumnView     `json:"columns,omitempty"`
	ForeignKeys []ForeignKeyView `json:"foreignKeys,omitempty"`
}

// Overview is a size-bounded read view of the whole schema
type Overview struct {
	Tables         []TableView `json:"tables"`
	TableCount     int         `json:"tableCount"`
	ColumnCount    int         `json:"columnCount"`
	ColumnsOmitted bool        `json:"columnsOmitted"`
}

// OverviewOptions controls projection shape
type OverviewOptions struct {
	Verbosity          Verbosity
	IncludeForeignKeys bool
}

// BuildOverview builds a bounded view of the schema. When the schema
// exceeds the table or column ceilings, column detail is dropped regardless
// of the requested verbosity and ColumnsOmitted is set.
func BuildOverview(s *Schema, opts OverviewOptions) Overview {
	columnCount := s.TotalColumns()
	omit := len(s.Tables) > MaxOverviewTables || columnCount > MaxOverviewColumns

	verbosity := opts.Verbosity
	if omit {
		verbosity = VerbosityNone
	}

	out := Overview{
		Tables:         make([]TableView, 0, len(s.Tables)),
		TableCount:     len(s.Tables),
		ColumnCount:    columnCount,
		ColumnsOmitted: omit && opts.Verbosity != VerbosityNone,
	}
	for _, t := range s.Tables {
		out.Tables = append(out.Tables, buildTableView(t, verbosity, opts.IncludeForeignKeys))
	}
	return out
}

// BuildTableView builds the projection of a single table. Verbosity "full"
// includes every attribute plus stable ids.
func BuildTableView(t *Table, verbosity Verbosity, includeForeignKeys bool) TableView {
	return buildTableView(t, verbosity, includeForeignKeys)
}

func buildTableView(t *Table, verbosity Verbosity, includeForeignKeys bool) TableView {
	view := TableView{
		SchemaName: t.SchemaName,
		Name:       t.Name,
	}
	if verbosity == VerbosityFull {
		view.ID = t.ID
	}

	if verbosity != VerbosityNone {
		view.Columns = make([]ColumnView, 0, len(t.Columns))
		for _, c := range t.Columns {
			view.Columns = append(view.Columns, buildColumnView(c, verbosity))
		}
	}

	if includeForeignKeys {
		view.ForeignKeys = make([]ForeignKeyView, 0, len(t.ForeignKeys))
		for _, fk := range t.ForeignKeys {
			view.ForeignKeys = append(view.ForeignKeys, buildForeignKeyView(fk, verbosity))
		}
	}

	return view
}

func buildColumnView(c *Column, verbosity Verbosity) ColumnView {
	view := ColumnView{Name: c.Name}
	if verbosity == VerbosityNames {
		return view
	}

	// namesAndTypes and full
	view.DataType = c.DataType
	nullable := c.IsNullable
	pk := c.IsPrimaryKey
	view.IsNullable = &nullable
	view.IsPrimaryKey = &pk

	if verbosity == VerbosityFull {
		view.ID = c.ID
		view.MaxLength = c.MaxLength
		view.Precision = c.Precision
		view.Scale = c.Scale
		view.IsIdentity = c.IsIdentity
		view.IdentitySeed = c.IdentitySeed
		view.IdentityIncrement = c.IdentityIncrement
		view.DefaultValue = c.DefaultValue
		view.IsComputed = c.IsComputed
		view.ComputedFormula = c.ComputedFormula
		view.ComputedPersisted = c.ComputedPersisted
	}
	return view
}

func buildForeignKeyView(fk *ForeignKey, verbosity Verbosity) ForeignKeyView {
	mappings := make([]ColumnMapping, 0, len(fk.Columns))
	for i, col := range fk.Columns {
		ref := ""
		if i < len(fk.ReferencedColumns) {
			ref = fk.ReferencedColumns[i]
		}
		mappings = append(mappings, ColumnMapping{Column: col, ReferencedColumn: ref})
	}

	view := ForeignKeyView{
		Name: fk.Name,
		ReferencedTable: ReferencedTableView{
			Schema: fk.ReferencedSchemaName,
			Name:   fk.ReferencedTableName,
		},
		Mappings:       mappings,
		OnDeleteAction: string(fk.OnDeleteAction),
		OnUpdateAction: string(fk.OnUpdateAction),
	}
	if verbosity == VerbosityFull {
		view.ID = fk.ID
	}
	return view
}
