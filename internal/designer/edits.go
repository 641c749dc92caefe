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
	"encoding/json"
	"fmt"
	"strings"

	"schema-designer-mcp/internal/schema"
	"schema-designer-mcp/internal/status"
)

// EditKind discriminates the closed set of edit variants
type EditKind string

const (
	EditAddTable        EditKind = "add_table"
	EditRenameTable     EditKind = "rename_table"
	EditDropTable       EditKind = "drop_table"
	EditAddColumn       EditKind = "add_column"
	EditAlterColumn     EditKind = "alter_column"
	EditDropColumn      EditKind = "drop_column"
	EditAddForeignKey   EditKind = "add_foreign_key"
	EditAlterForeignKey EditKind = "alter_foreign_key"
	EditDropForeignKey  EditKind = "drop_foreign_key"
)

// Edit is one atomic mutation intent. Apply validates the payload against
// the current document state and, when valid, mutates the document.
// The receipt records what the edit did.
type Edit interface {
	Kind() EditKind
	Apply(s *schema.Schema, receipt *Receipt) error
}

// ParseEdit decodes one element of an edits batch. The "type" field selects
// the variant; the remaining fields are the variant payload. Unknown types
// are invalid_request naming the tag.
func ParseEdit(raw map[string]interface{}) (Edit, error) {
	kindValue, ok := raw["type"].(string)
	if !ok || kindValue == "" {
		return nil, status.New(status.InvalidRequest, "edit is missing its 'type' discriminator")
	}

	var edit Edit
	switch EditKind(kindValue) {
	case EditAddTable:
		edit = &AddTable{}
	case EditRenameTable:
		edit = &RenameTable{}
	case EditDropTable:
		edit = &DropTable{}
	case EditAddColumn:
		edit = &AddColumn{}
	case EditAlterColumn:
		edit = &AlterColumn{}
	case EditDropColumn:
		edit = &DropColumn{}
	case EditAddForeignKey:
		edit = &AddForeignKey{}
	case EditAlterForeignKey:
		edit = &AlterForeignKey{}
	case EditDropForeignKey:
		edit = &DropForeignKey{}
	default:
		return nil, status.Errorf(status.InvalidRequest, "unrecognized edit type %q", kindValue)
	}

	if err := decodePayload(raw, edit); err != nil {
		return nil, err
	}
	return edit, nil
}

// ParseEdits decodes a whole batch, preserving order. Any malformed element
// fails the whole request before anything is applied.
func ParseEdits(raw []interface{}) ([]Edit, error) {
	edits := make([]Edit, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, status.Errorf(status.InvalidRequest, "edit at index %d is not an object", i)
		}
		edit, err := ParseEdit(m)
		if err != nil {
			return nil, fmt.Errorf("edit at index %d: %w", i, err)
		}
		edits = append(edits, edit)
	}
	return edits, nil
}

func decodePayload(raw map[string]interface{}, into interface{}) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return status.Errorf(status.InvalidRequest, "undecodable edit payload: %v", err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return status.Errorf(status.InvalidRequest, "malformed edit payload: %v", err)
	}
	return nil
}

// trimRequired trims surrounding whitespace and rejects values that are
// empty afterwards. Whitespace-only strings are treated as empty.
func trimRequired(value, field string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", status.Errorf(status.ValidationError, "'%s' must be a non-empty string", field)
	}
	return trimmed, nil
}

// ColumnSpec is the payload shape for a new column
type ColumnSpec struct {
	Name              string `json:"name"`
	DataType          string `json:"dataType"`
	MaxLength         string `json:"maxLength,omitempty"`
	Precision         int    `json:"precision,omitempty"`
	Scale             int    `json:"scale,omitempty"`
	IsNullable        bool   `json:"isNullable,omitempty"`
	IsPrimaryKey      bool   `json:"isPrimaryKey,omitempty"`
	IsIdentity        bool   `json:"isIdentity,omitempty"`
	IdentitySeed      int64  `json:"identitySeed,omitempty"`
	IdentityIncrement int64  `json:"identityIncrement,omitempty"`
	DefaultValue      string `json:"defaultValue,omitempty"`
	IsComputed        bool   `json:"isComputed,omitempty"`
	ComputedFormula   string `json:"computedFormula,omitempty"`
	ComputedPersisted bool   `json:"computedPersisted,omitempty"`
}

func (spec *ColumnSpec) materialize() (*schema.Column, error) {
	name, err := trimRequired(spec.Name, "name")
	if err != nil {
		return nil, err
	}
	dataType, err := trimRequired(spec.DataType, "dataType")
	if err != nil {
		return nil, err
	}
	return &schema.Column{
		ID:                schema.NewID(),
		Name:              name,
		DataType:          dataType,
		MaxLength:         strings.TrimSpace(spec.MaxLength),
		Precision:         spec.Precision,
		Scale:             spec.Scale,
		IsNullable:        spec.IsNullable,
		IsPrimaryKey:      spec.IsPrimaryKey,
		IsIdentity:        spec.IsIdentity,
		IdentitySeed:      spec.IdentitySeed,
		IdentityIncrement: spec.IdentityIncrement,
		DefaultValue:      spec.DefaultValue,
		IsComputed:        spec.IsComputed,
		ComputedFormula:   spec.ComputedFormula,
		ComputedPersisted: spec.ComputedPersisted,
	}, nil
}

// ForeignKeySpec is the payload shape for a new foreign key
type ForeignKeySpec struct {
	Name                 string   `json:"name"`
	Columns              []string `json:"columns"`
	ReferencedSchemaName string   `json:"referencedSchemaName"`
	ReferencedTableName  string   `json:"referencedTableName"`
	ReferencedColumns    []string `json:"referencedColumns"`
	OnDeleteAction       string   `json:"onDeleteAction,omitempty"`
	OnUpdateAction       string   `json:"onUpdateAction,omitempty"`
}

// AddTable creates a new table, optionally with initial columns
type AddTable struct {
	SchemaName string       `json:"schemaName"`
	TableName  string       `json:"tableName"`
	Columns    []ColumnSpec `json:"columns,omitempty"`
}

func (e *AddTable) Kind() EditKind { return EditAddTable }

func (e *AddTable) Apply(s *schema.Schema, receipt *Receipt) error {
	schemaName, err := trimRequired(e.SchemaName, "schemaName")
	if err != nil {
		return err
	}
	tableName, err := trimRequired(e.TableName, "tableName")
	if err != nil {
		return err
	}

	for _, t := range s.Tables {
		if strings.EqualFold(t.SchemaName, schemaName) && strings.EqualFold(t.Name, tableName) {
			return status.Errorf(status.ValidationError,
				"a table named %s.%s already exists", t.SchemaName, t.Name)
		}
	}

	table := &schema.Table{
		ID:         schema.NewID(),
		SchemaName: schemaName,
		Name:       tableName,
	}
	for _, spec := range e.Columns {
		col, err := spec.materialize()
		if err != nil {
			return err
		}
		if table.FindColumn(col.Name) != nil {
			return status.Errorf(status.ValidationError,
				"duplicate column name %q in new table %s.%s", col.Name, schemaName, tableName)
		}
		table.Columns = append(table.Columns, col)
	}

	s.Tables = append(s.Tables, table)
	receipt.TablesAdded = append(receipt.TablesAdded, TableIdent{Schema: schemaName, Name: tableName})
	return nil
}

// RenameTable changes a table's name and/or schema. Renaming is allowed to
// create a case-insensitive collision with another table: collisions are a
// legal transient state mid-rename, and name lookups against the collided
// pair report ambiguous_identifier until it is resolved.
type RenameTable struct {
	Table         schema.TableRef `json:"table"`
	NewSchemaName string          `json:"newSchemaName,omitempty"`
	NewTableName  string          `json:"newTableName,omitempty"`
}

func (e *RenameTable) Kind() EditKind { return EditRenameTable }

func (e *RenameTable) Apply(s *schema.Schema, receipt *Receipt) error {
	if strings.TrimSpace(e.NewSchemaName) == "" && strings.TrimSpace(e.NewTableName) == "" {
		return status.New(status.InvalidRequest,
			"rename_table requires 'newSchemaName' and/or 'newTableName'")
	}
	table, err := schema.Resolve(s, e.Table)
	if err != nil {
		return err
	}

	// Validate both names before assigning either, so a failing rename
	// leaves the table untouched.
	newSchema := table.SchemaName
	if e.NewSchemaName != "" {
		newSchema, err = trimRequired(e.NewSchemaName, "newSchemaName")
		if err != nil {
			return err
		}
	}
	newName := table.Name
	if e.NewTableName != "" {
		newName, err = trimRequired(e.NewTableName, "newTableName")
		if err != nil {
			return err
		}
	}

	table.SchemaName = newSchema
	table.Name = newName
	receipt.TablesRenamed = append(receipt.TablesRenamed,
		TableIdent{Schema: table.SchemaName, Name: table.Name})
	return nil
}

// DropTable removes a table from the document
type DropTable struct {
	Table schema.TableRef `json:"table"`
}

func (e *DropTable) Kind() EditKind { return EditDropTable }

func (e *DropTable) Apply(s *schema.Schema, receipt *Receipt) error {
	table, err := schema.Resolve(s, e.Table)
	if err != nil {
		return err
	}
	for i, t := range s.Tables {
		if t == table {
			s.Tables = append(s.Tables[:i], s.Tables[i+1:]...)
			break
		}
	}
	receipt.TablesDropped = append(receipt.TablesDropped,
		TableIdent{Schema: table.SchemaName, Name: table.Name})
	return nil
}

// AddColumn appends a column to an existing table
type AddColumn struct {
	Table  schema.TableRef `json:"table"`
	Column ColumnSpec      `json:"column"`
}

func (e *AddColumn) Kind() EditKind { return EditAddColumn }

func (e *AddColumn) Apply(s *schema.Schema, receipt *Receipt) error {
	table, err := schema.Resolve(s, e.Table)
	if err != nil {
		return err
	}
	col, err := e.Column.materialize()
	if err != nil {
		return err
	}
	if table.FindColumn(col.Name) != nil {
		return status.Errorf(status.ValidationError,
			"table %s already has a column named %q", table.QualifiedName(), col.Name)
	}
	table.Columns = append(table.Columns, col)
	receipt.ColumnsAdded = append(receipt.ColumnsAdded,
		table.QualifiedName()+"."+col.Name)
	return nil
}

// AlterColumn patches attributes of an existing column. Only the supplied
// fields change; absent fields keep their current value.
type AlterColumn struct {
	Table             schema.TableRef `json:"table"`
	Name              string          `json:"name"`
	NewName           *string         `json:"newName,omitempty"`
	DataType          *string         `json:"dataType,omitempty"`
	MaxLength         *string         `json:"maxLength,omitempty"`
	Precision         *int            `json:"precision,omitempty"`
	Scale             *int            `json:"scale,omitempty"`
	IsNullable        *bool           `json:"isNullable,omitempty"`
	IsPrimaryKey      *bool           `json:"isPrimaryKey,omitempty"`
	IsIdentity        *bool           `json:"isIdentity,omitempty"`
	IdentitySeed      *int64          `json:"identitySeed,omitempty"`
	IdentityIncrement *int64          `json:"identityIncrement,omitempty"`
	DefaultValue      *string         `json:"defaultValue,omitempty"`
	IsComputed        *bool           `json:"isComputed,omitempty"`
	ComputedFormula   *string         `json:"computedFormula,omitempty"`
	ComputedPersisted *bool           `json:"computedPersisted,omitempty"`
}

func (e *AlterColumn) Kind() EditKind { return EditAlterColumn }

func (e *AlterColumn) Apply(s *schema.Schema, receipt *Receipt) error {
	table, err := schema.Resolve(s, e.Table)
	if err != nil {
		return err
	}
	name, err := trimRequired(e.Name, "name")
	if err != nil {
		return err
	}
	col := table.FindColumn(name)
	if col == nil {
		return status.Errorf(status.NotFound,
			"table %s has no column named %q", table.QualifiedName(), name)
	}

	// Validate the whole patch before assigning anything, so a failing
	// edit leaves the column untouched.
	newName := col.Name
	if e.NewName != nil {
		newName, err = trimRequired(*e.NewName, "newName")
		if err != nil {
			return err
		}
		if other := table.FindColumn(newName); other != nil && other != col {
			return status.Errorf(status.ValidationError,
				"table %s already has a column named %q", table.QualifiedName(), newName)
		}
	}
	dataType := col.DataType
	if e.DataType != nil {
		dataType, err = trimRequired(*e.DataType, "dataType")
		if err != nil {
			return err
		}
	}

	col.Name = newName
	col.DataType = dataType
	if e.MaxLength != nil {
		col.MaxLength = strings.TrimSpace(*e.MaxLength)
	}
	if e.Precision != nil {
		col.Precision = *e.Precision
	}
	if e.Scale != nil {
		col.Scale = *e.Scale
	}
	if e.IsNullable != nil {
		col.IsNullable = *e.IsNullable
	}
	if e.IsPrimaryKey != nil {
		col.IsPrimaryKey = *e.IsPrimaryKey
	}
	if e.IsIdentity != nil {
		col.IsIdentity = *e.IsIdentity
	}
	if e.IdentitySeed != nil {
		col.IdentitySeed = *e.IdentitySeed
	}
	if e.IdentityIncrement != nil {
		col.IdentityIncrement = *e.IdentityIncrement
	}
	if e.DefaultValue != nil {
		col.DefaultValue = *e.DefaultValue
	}
	if e.IsComputed != nil {
		col.IsComputed = *e.IsComputed
	}
	if e.ComputedFormula != nil {
		col.ComputedFormula = *e.ComputedFormula
	}
	if e.ComputedPersisted != nil {
		col.ComputedPersisted = *e.ComputedPersisted
	}

	receipt.ColumnsAltered = append(receipt.ColumnsAltered,
		table.QualifiedName()+"."+col.Name)
	return nil
}

// DropColumn removes a column from a table
type DropColumn struct {
	Table schema.TableRef `json:"table"`
	Name  string          `json:"name"`
}

func (e *DropColumn) Kind() EditKind { return EditDropColumn }

func (e *DropColumn) Apply(s *schema.Schema, receipt *Receipt) error {
	table, err := schema.Resolve(s, e.Table)
	if err != nil {
		return err
	}
	name, err := trimRequired(e.Name, "name")
	if err != nil {
		return err
	}
	for i, c := range table.Columns {
		if strings.EqualFold(c.Name, name) {
			qualified := table.QualifiedName() + "." + c.Name
			table.Columns = append(table.Columns[:i], table.Columns[i+1:]...)
			receipt.ColumnsDropped = append(receipt.ColumnsDropped, qualified)
			return nil
		}
	}
	return status.Errorf(status.NotFound,
		"table %s has no column named %q", table.QualifiedName(), name)
}

// AddForeignKey creates a foreign key constraint on a table
type AddForeignKey struct {
	Table      schema.TableRef `json:"table"`
	ForeignKey ForeignKeySpec  `json:"foreignKey"`
}

func (e *AddForeignKey) Kind() EditKind { return EditAddForeignKey }

func (e *AddForeignKey) Apply(s *schema.Schema, receipt *Receipt) error {
	table, err := schema.Resolve(s, e.Table)
	if err != nil {
		return err
	}
	fk, err := buildForeignKey(s, table, e.ForeignKey)
	if err != nil {
		return err
	}
	if table.FindForeignKey(fk.Name) != nil {
		return status.Errorf(status.ValidationError,
			"table %s already has a foreign key named %q", table.QualifiedName(), fk.Name)
	}
	table.ForeignKeys = append(table.ForeignKeys, fk)
	receipt.ForeignKeysAdded = append(receipt.ForeignKeysAdded,
		table.QualifiedName()+"."+fk.Name)
	return nil
}

// AlterForeignKey replaces the definition of an existing foreign key,
// keeping its stable id
type AlterForeignKey struct {
	Table      schema.TableRef `json:"table"`
	Name       string          `json:"name"`
	ForeignKey ForeignKeySpec  `json:"foreignKey"`
}

func (e *AlterForeignKey) Kind() EditKind { return EditAlterForeignKey }

func (e *AlterForeignKey) Apply(s *schema.Schema, receipt *Receipt) error {
	table, err := schema.Resolve(s, e.Table)
	if err != nil {
		return err
	}
	name, err := trimRequired(e.Name, "name")
	if err != nil {
		return err
	}
	existing := table.FindForeignKey(name)
	if existing == nil {
		return status.Errorf(status.NotFound,
			"table %s has no foreign key named %q", table.QualifiedName(), name)
	}
	replacement, err := buildForeignKey(s, table, e.ForeignKey)
	if err != nil {
		return err
	}
	if other := table.FindForeignKey(replacement.Name); other != nil && other != existing {
		return status.Errorf(status.ValidationError,
			"table %s already has a foreign key named %q", table.QualifiedName(), replacement.Name)
	}

	replacement.ID = existing.ID
	*existing = *replacement
	receipt.ForeignKeysAltered = append(receipt.ForeignKeysAltered,
		table.QualifiedName()+"."+existing.Name)
	return nil
}

// DropForeignKey removes a foreign key constraint
type DropForeignKey struct {
	Table schema.TableRef `json:"table"`
	Name  string          `json:"name"`
}

func (e *DropForeignKey) Kind() EditKind { return EditDropForeignKey }

func (e *DropForeignKey) Apply(s *schema.Schema, receipt *Receipt) error {
	table, err := schema.Resolve(s, e.Table)
	if err != nil {
		return err
	}
	name, err := trimRequired(e.Name, "name")
	if err != nil {
		return err
	}
	for i, fk := range table.ForeignKeys {
		if strings.EqualFold(fk.Name, name) {
			qualified := table.QualifiedName() + "." + fk.Name
			table.ForeignKeys = append(table.ForeignKeys[:i], table.ForeignKeys[i+1:]...)
			receipt.ForeignKeysDropped = append(receipt.ForeignKeysDropped, qualified)
			return nil
		}
	}
	return status.Errorf(status.NotFound,
		"table %s has no foreign key named %q", table.QualifiedName(), name)
}

func buildForeignKey(s *schema.Schema, owner *schema.Table, spec ForeignKeySpec) (*schema.ForeignKey, error) {
	name, err := trimRequired(spec.Name, "foreignKey.name")
	if err != nil {
		return nil, err
	}
	refSchema, err := trimRequired(spec.ReferencedSchemaName, "foreignKey.referencedSchemaName")
	if err != nil {
		return nil, err
	}
	refTable, err := trimRequired(spec.ReferencedTableName, "foreignKey.referencedTableName")
	if err != nil {
		return nil, err
	}

	if len(spec.Columns) == 0 {
		return nil, status.New(status.ValidationError,
			"foreignKey.columns must contain at least one column")
	}
	if len(spec.Columns) != len(spec.ReferencedColumns) {
		return nil, status.Errorf(status.ValidationError,
			"foreignKey.columns (%d) and foreignKey.referencedColumns (%d) must be parallel arrays of equal length",
			len(spec.Columns), len(spec.ReferencedColumns))
	}

	seen := make(map[string]bool, len(spec.Columns))
	columns := make([]string, 0, len(spec.Columns))
	for _, raw := range spec.Columns {
		col, err := trimRequired(raw, "foreignKey.columns[]")
		if err != nil {
			return nil, err
		}
		lower := strings.ToLower(col)
		if seen[lower] {
			return nil, status.Errorf(status.ValidationError,
				"duplicate column %q in foreignKey.columns", col)
		}
		seen[lower] = true
		if owner.FindColumn(col) == nil {
			return nil, status.Errorf(status.ValidationError,
				"table %s has no column named %q", owner.QualifiedName(), col)
		}
		columns = append(columns, col)
	}

	// The referenced table must resolve unambiguously by name; its columns
	// must exist when it is part of this document. References to tables
	// outside the document are rejected as not_found by Resolve.
	target, err := schema.Resolve(s, schema.TableRef{SchemaName: refSchema, TableName: refTable})
	if err != nil {
		return nil, err
	}
	referenced := make([]string, 0, len(spec.ReferencedColumns))
	for _, raw := range spec.ReferencedColumns {
		col, err := trimRequired(raw, "foreignKey.referencedColumns[]")
		if err != nil {
			return nil, err
		}
		if target.FindColumn(col) == nil {
			return nil, status.Errorf(status.ValidationError,
				"referenced table %s has no column named %q", target.QualifiedName(), col)
		}
		referenced = append(referenced, col)
	}

	onDelete, err := parseReferentialAction(spec.OnDeleteAction, "foreignKey.onDeleteAction")
	if err != nil {
		return nil, err
	}
	onUpdate, err := parseReferentialAction(spec.OnUpdateAction, "foreignKey.onUpdateAction")
	if err != nil {
		return nil, err
	}

	return &schema.ForeignKey{
		ID:                   schema.NewID(),
		Name:                 name,
		Columns:              columns,
		ReferencedSchemaName: target.SchemaName,
		ReferencedTableName:  target.Name,
		ReferencedColumns:    referenced,
		OnDeleteAction:       onDelete,
		OnUpdateAction:       onUpdate,
	}, nil
}

func parseReferentialAction(raw, field string) (schema.ReferentialAction, error) {
	if strings.TrimSpace(raw) == "" {
		return schema.ActionNoAction, nil
	}
	if !schema.IsKnownReferentialAction(raw) {
		return "", status.Errorf(status.ValidationError,
			"unrecognized value %q for '%s'", raw, field)
	}
	return schema.ReferentialAction(raw), nil
}
