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
	"strings"
	"testing"

	"schema-designer-mcp/internal/schema"
	"schema-designer-mcp/internal/status"
)

func testSchema() *schema.Schema {
	return &schema.Schema{Tables: []*schema.Table{
		{
			ID:         "id-customers",
			SchemaName: "dbo",
			Name:       "Customers",
			Columns: []*schema.Column{
				{ID: "c1", Name: "CustomerID", DataType: "int", IsPrimaryKey: true},
				{ID: "c2", Name: "Name", DataType: "nvarchar", MaxLength: "200"},
			},
		},
		{
			ID:         "id-orders",
			SchemaName: "dbo",
			Name:       "Orders",
			Columns: []*schema.Column{
				{ID: "c3", Name: "OrderID", DataType: "int", IsPrimaryKey: true},
				{ID: "c4", Name: "CustomerID", DataType: "int"},
			},
		},
	}}
}

func mustApply(t *testing.T, s *schema.Schema, edit Edit) *Receipt {
	t.Helper()
	receipt := &Receipt{}
	if err := edit.Apply(s, receipt); err != nil {
		t.Fatalf("%s failed: %v", edit.Kind(), err)
	}
	return receipt
}

func applyExpectingReason(t *testing.T, s *schema.Schema, edit Edit, want status.Reason) {
	t.Helper()
	err := edit.Apply(s, &Receipt{})
	if err == nil {
		t.Fatalf("%s succeeded, want %s", edit.Kind(), want)
	}
	if got := status.ReasonOf(err); got != want {
		t.Errorf("%s reason = %s, want %s (err: %v)", edit.Kind(), got, want, err)
	}
}

func TestParseEdit(t *testing.T) {
	tests := []struct {
		name       string
		raw        map[string]interface{}
		wantKind   EditKind
		wantReason status.Reason
	}{
		{"add_table", map[string]interface{}{"type": "add_table", "schemaName": "dbo", "tableName": "T"}, EditAddTable, ""},
		{"drop_column", map[string]interface{}{"type": "drop_column", "table": map[string]interface{}{"id": "x"}, "name": "C"}, EditDropColumn, ""},
		{"missing type", map[string]interface{}{"schemaName": "dbo"}, "", status.InvalidRequest},
		{"unknown type", map[string]interface{}{"type": "truncate_table"}, "", status.InvalidRequest},
		{"mistyped type", map[string]interface{}{"type": 7}, "", status.InvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edit, err := ParseEdit(tt.raw)
			if tt.wantReason != "" {
				if err == nil {
					t.Fatalf("ParseEdit succeeded, want %s", tt.wantReason)
				}
				if got := status.ReasonOf(err); got != tt.wantReason {
					t.Errorf("reason = %s, want %s", got, tt.wantReason)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEdit failed: %v", err)
			}
			if edit.Kind() != tt.wantKind {
				t.Errorf("kind = %s, want %s", edit.Kind(), tt.wantKind)
			}
		})
	}
}

func TestParseEditUnknownTypeNamesTag(t *testing.T) {
	_, err := ParseEdit(map[string]interface{}{"type": "truncate_table"})
	if err == nil || !strings.Contains(err.Error(), "truncate_table") {
		t.Errorf("unknown-type error does not name the offending tag: %v", err)
	}
}

func TestParseEditsRejectsNonObject(t *testing.T) {
	_, err := ParseEdits([]interface{}{"not an object"})
	if status.ReasonOf(err) != status.InvalidRequest {
		t.Errorf("non-object element reason = %s, want invalid_request", status.ReasonOf(err))
	}
}

func TestAddTable(t *testing.T) {
	s := testSchema()
	receipt := mustApply(t, s, &AddTable{
		SchemaName: "dbo",
		TableName:  "Products",
		Columns: []ColumnSpec{
			{Name: "ProductID", DataType: "int", IsPrimaryKey: true},
			{Name: "Title", DataType: "nvarchar", MaxLength: "100"},
		},
	})

	if len(s.Tables) != 3 {
		t.Fatalf("table count = %d, want 3", len(s.Tables))
	}
	added := s.Tables[2]
	if added.ID == "" {
		t.Errorf("new table has no stable id")
	}
	for _, c := range added.Columns {
		if c.ID == "" {
			t.Errorf("new column %s has no stable id", c.Name)
		}
	}
	if len(receipt.TablesAdded) != 1 || receipt.TablesAdded[0].Name != "Products" {
		t.Errorf("receipt = %+v", receipt.TablesAdded)
	}
}

func TestAddTableRejectsDuplicates(t *testing.T) {
	s := testSchema()
	applyExpectingReason(t, s, &AddTable{SchemaName: "DBO", TableName: "orders"}, status.ValidationError)
	applyExpectingReason(t, s, &AddTable{SchemaName: "  ", TableName: "X"}, status.ValidationError)
	applyExpectingReason(t, s, &AddTable{
		SchemaName: "dbo",
		TableName:  "Dupes",
		Columns:    []ColumnSpec{{Name: "A", DataType: "int"}, {Name: "a", DataType: "int"}},
	}, status.ValidationError)
}

func TestRenameTable(t *testing.T) {
	s := testSchema()
	mustApply(t, s, &RenameTable{
		Table:        schema.TableRef{SchemaName: "dbo", TableName: "Orders"},
		NewTableName: "SalesOrders",
	})
	if s.Tables[1].Name != "SalesOrders" {
		t.Errorf("rename did not apply: %s", s.Tables[1].Name)
	}
	if s.Tables[1].ID != "id-orders" {
		t.Errorf("rename changed the stable id")
	}

	applyExpectingReason(t, s, &RenameTable{
		Table: schema.TableRef{ID: "id-customers"},
	}, status.InvalidRequest)
}

func TestRenameTableFailingEditLeavesTableUntouched(t *testing.T) {
	s := testSchema()
	// The schema part is valid, the name part is not; neither may apply.
	applyExpectingReason(t, s, &RenameTable{
		Table:         schema.TableRef{ID: "id-orders"},
		NewSchemaName: "sales",
		NewTableName:  "   ",
	}, status.ValidationError)

	table := s.Tables[1]
	if table.SchemaName != "dbo" || table.Name != "Orders" {
		t.Errorf("failed rename mutated the table: %s.%s", table.SchemaName, table.Name)
	}
}

func TestRenameTableAllowsTransientCollision(t *testing.T) {
	s := testSchema()
	// Renaming Orders to customers collides case-insensitively, and that is
	// allowed: it is a legal transient state while a multi-step rename is in
	// flight.
	mustApply(t, s, &RenameTable{
		Table:        schema.TableRef{ID: "id-orders"},
		NewTableName: "customers",
	})

	// Name lookups against the collided pair are now ambiguous
	_, err := schema.Resolve(s, schema.TableRef{SchemaName: "dbo", TableName: "Customers"})
	if status.ReasonOf(err) != status.AmbiguousIdentifier {
		t.Errorf("collided lookup reason = %s, want ambiguous_identifier", status.ReasonOf(err))
	}

	// Id lookups still resolve
	table, err := schema.Resolve(s, schema.TableRef{ID: "id-orders"})
	if err != nil || table.Name != "customers" {
		t.Errorf("id lookup failed after collision: %v", err)
	}
}

func TestDropTable(t *testing.T) {
	s := testSchema()
	receipt := mustApply(t, s, &DropTable{Table: schema.TableRef{ID: "id-orders"}})
	if len(s.Tables) != 1 {
		t.Fatalf("table count = %d, want 1", len(s.Tables))
	}
	if len(receipt.TablesDropped) != 1 || receipt.TablesDropped[0].Name != "Orders" {
		t.Errorf("receipt = %+v", receipt.TablesDropped)
	}

	applyExpectingReason(t, s, &DropTable{Table: schema.TableRef{ID: "id-orders"}}, status.NotFound)
}

func TestAddColumn(t *testing.T) {
	s := testSchema()
	mustApply(t, s, &AddColumn{
		Table:  schema.TableRef{ID: "id-orders"},
		Column: ColumnSpec{Name: "Total", DataType: "decimal", Precision: 18, Scale: 2},
	})
	if s.Tables[1].FindColumn("Total") == nil {
		t.Errorf("column not added")
	}

	applyExpectingReason(t, s, &AddColumn{
		Table:  schema.TableRef{ID: "id-orders"},
		Column: ColumnSpec{Name: "TOTAL", DataType: "int"},
	}, status.ValidationError)
	applyExpectingReason(t, s, &AddColumn{
		Table:  schema.TableRef{ID: "id-orders"},
		Column: ColumnSpec{Name: "NoType"},
	}, status.ValidationError)
}

func TestAlterColumn(t *testing.T) {
	s := testSchema()
	newName := "FullName"
	maxLen := "400"
	nullable := true
	mustApply(t, s, &AlterColumn{
		Table:      schema.TableRef{ID: "id-customers"},
		Name:       "name",
		NewName:    &newName,
		MaxLength:  &maxLen,
		IsNullable: &nullable,
	})

	col := s.Tables[0].FindColumn("FullName")
	if col == nil {
		t.Fatalf("renamed column not found")
	}
	if col.ID != "c2" {
		t.Errorf("alter changed the stable id")
	}
	if col.MaxLength != "400" || !col.IsNullable {
		t.Errorf("patched fields not applied: %+v", col)
	}
	if col.DataType != "nvarchar" {
		t.Errorf("unpatched field changed: %s", col.DataType)
	}

	applyExpectingReason(t, s, &AlterColumn{
		Table: schema.TableRef{ID: "id-customers"},
		Name:  "Missing",
	}, status.NotFound)

	collide := "CustomerID"
	applyExpectingReason(t, s, &AlterColumn{
		Table:   schema.TableRef{ID: "id-customers"},
		Name:    "FullName",
		NewName: &collide,
	}, status.ValidationError)
}

func TestAlterColumnFailingEditLeavesColumnUntouched(t *testing.T) {
	s := testSchema()
	// A valid rename paired with an invalid data type: the whole edit must
	// fail without applying either part.
	newName := "OrderNumber"
	badType := "   "
	applyExpectingReason(t, s, &AlterColumn{
		Table:    schema.TableRef{ID: "id-orders"},
		Name:     "OrderID",
		NewName:  &newName,
		DataType: &badType,
	}, status.ValidationError)

	col := s.Tables[1].FindColumn("OrderID")
	if col == nil {
		t.Fatalf("failed alter renamed the column")
	}
	if col.DataType != "int" {
		t.Errorf("failed alter changed the data type: %s", col.DataType)
	}
	if s.Tables[1].FindColumn("OrderNumber") != nil {
		t.Errorf("new name applied by a failing edit")
	}
}

func TestDropColumn(t *testing.T) {
	s := testSchema()
	receipt := mustApply(t, s, &DropColumn{
		Table: schema.TableRef{ID: "id-customers"},
		Name:  "NAME",
	})
	if s.Tables[0].FindColumn("Name") != nil {
		t.Errorf("column not dropped")
	}
	if len(receipt.ColumnsDropped) != 1 || receipt.ColumnsDropped[0] != "dbo.Customers.Name" {
		t.Errorf("receipt = %+v", receipt.ColumnsDropped)
	}

	applyExpectingReason(t, s, &DropColumn{
		Table: schema.TableRef{ID: "id-customers"},
		Name:  "Name",
	}, status.NotFound)
}

func TestAddForeignKey(t *testing.T) {
	s := testSchema()
	mustApply(t, s, &AddForeignKey{
		Table: schema.TableRef{ID: "id-orders"},
		ForeignKey: ForeignKeySpec{
			Name:                 "FK_Orders_Customers",
			Columns:              []string{"CustomerID"},
			ReferencedSchemaName: "dbo",
			ReferencedTableName:  "Customers",
			ReferencedColumns:    []string{"CustomerID"},
			OnDeleteAction:       "cascade",
		},
	})

	fk := s.Tables[1].FindForeignKey("FK_Orders_Customers")
	if fk == nil {
		t.Fatalf("foreign key not added")
	}
	if fk.OnDeleteAction != schema.ActionCascade || fk.OnUpdateAction != schema.ActionNoAction {
		t.Errorf("actions = %s/%s, want cascade/no_action", fk.OnDeleteAction, fk.OnUpdateAction)
	}
}

func TestAddForeignKeyValidation(t *testing.T) {
	spec := func(mutate func(*ForeignKeySpec)) *AddForeignKey {
		s := ForeignKeySpec{
			Name:                 "FK_Test",
			Columns:              []string{"CustomerID"},
			ReferencedSchemaName: "dbo",
			ReferencedTableName:  "Customers",
			ReferencedColumns:    []string{"CustomerID"},
		}
		mutate(&s)
		return &AddForeignKey{Table: schema.TableRef{ID: "id-orders"}, ForeignKey: s}
	}

	tests := []struct {
		name   string
		edit   *AddForeignKey
		reason status.Reason
	}{
		{"no columns", spec(func(s *ForeignKeySpec) { s.Columns = nil; s.ReferencedColumns = nil }), status.ValidationError},
		{"length mismatch", spec(func(s *ForeignKeySpec) { s.ReferencedColumns = []string{"CustomerID", "Name"} }), status.ValidationError},
		{"duplicate owning column", spec(func(s *ForeignKeySpec) {
			s.Columns = []string{"CustomerID", "customerid"}
			s.ReferencedColumns = []string{"CustomerID", "Name"}
		}), status.ValidationError},
		{"unknown owning column", spec(func(s *ForeignKeySpec) { s.Columns = []string{"Ghost"} }), status.ValidationError},
		{"unknown referenced column", spec(func(s *ForeignKeySpec) { s.ReferencedColumns = []string{"Ghost"} }), status.ValidationError},
		{"referenced table outside document", spec(func(s *ForeignKeySpec) { s.ReferencedTableName = "External" }), status.NotFound},
		{"bad action", spec(func(s *ForeignKeySpec) { s.OnDeleteAction = "restrict" }), status.ValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applyExpectingReason(t, testSchema(), tt.edit, tt.reason)
		})
	}
}

func TestAlterForeignKeyKeepsID(t *testing.T) {
	s := testSchema()
	mustApply(t, s, &AddForeignKey{
		Table: schema.TableRef{ID: "id-orders"},
		ForeignKey: ForeignKeySpec{
			Name:                 "FK_Orders_Customers",
			Columns:              []string{"CustomerID"},
			ReferencedSchemaName: "dbo",
			ReferencedTableName:  "Customers",
			ReferencedColumns:    []string{"CustomerID"},
		},
	})
	originalID := s.Tables[1].ForeignKeys[0].ID

	mustApply(t, s, &AlterForeignKey{
		Table: schema.TableRef{ID: "id-orders"},
		Name:  "fk_orders_customers",
		ForeignKey: ForeignKeySpec{
			Name:                 "FK_Orders_Customers",
			Columns:              []string{"CustomerID"},
			ReferencedSchemaName: "dbo",
			ReferencedTableName:  "Customers",
			ReferencedColumns:    []string{"CustomerID"},
			OnDeleteAction:       "set_null",
		},
	})

	fk := s.Tables[1].ForeignKeys[0]
	if fk.ID != originalID {
		t.Errorf("alter_foreign_key changed the stable id")
	}
	if fk.OnDeleteAction != schema.ActionSetNull {
		t.Errorf("replacement definition not applied")
	}
}

func TestDropForeignKey(t *testing.T) {
	s := testSchema()
	mustApply(t, s, &AddForeignKey{
		Table: schema.TableRef{ID: "id-orders"},
		ForeignKey: ForeignKeySpec{
			Name:                 "FK_Orders_Customers",
			Columns:              []string{"CustomerID"},
			ReferencedSchemaName: "dbo",
			ReferencedTableName:  "Customers",
			ReferencedColumns:    []string{"CustomerID"},
		},
	})
	mustApply(t, s, &DropForeignKey{Table: schema.TableRef{ID: "id-orders"}, Name: "FK_ORDERS_CUSTOMERS"})
	if len(s.Tables[1].ForeignKeys) != 0 {
		t.Errorf("foreign key not dropped")
	}

	applyExpectingReason(t, s, &DropForeignKey{
		Table: schema.TableRef{ID: "id-orders"},
		Name:  "FK_Orders_Customers",
	}, status.NotFound)
}
