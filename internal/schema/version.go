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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// The version token is a content hash of a normalized snapshot of the
// schema. Two snapshots that differ only in name casing or in the ordering
// of tables, columns, foreign keys, or consistently reordered foreign key
// column pairs hash identically; any structural difference changes the hash.
//
// Internal ids never participate in the hash: they identify objects across
// renames but say nothing about structural equality.

type normalizedColumn struct {
	Name              string `json:"name"`
	DataType          string `json:"dataType"`
	MaxLength         string `json:"maxLength"`
	Precision         int    `json:"precision"`
	Scale             int    `json:"scale"`
	IsNullable        bool   `json:"isNullable"`
	IsPrimaryKey      bool   `json:"isPrimaryKey"`
	IsIdentity        bool   `json:"isIdentity"`
	IdentitySeed      int64  `json:"identitySeed"`
	IdentityIncrement int64  `json:"identityIncrement"`
	DefaultValue      string `json:"defaultValue"`
	IsComputed        bool   `json:"isComputed"`
	ComputedFormula   string `json:"computedFormula"`
	ComputedPersisted bool   `json:"computedPersisted"`
}

type normalizedForeignKey struct {
	Name                 string   `json:"name"`
	Columns              []string `json:"columns"`
	ReferencedSchemaName string   `json:"referencedSchemaName"`
	ReferencedTableName  string   `json:"referencedTableName"`
	ReferencedColumns    []string `json:"referencedColumns"`
	OnDeleteAction       string   `json:"onDeleteAction"`
	OnUpdateAction       string   `json:"onUpdateAction"`
}

type normalizedTable struct {
	SchemaName  string                 `json:"schemaName"`
	Name        string                 `json:"name"`
	Columns     []normalizedColumn     `json:"columns"`
	ForeignKeys []normalizedForeignKey `json:"foreignKeys"`
}

// ComputeVersion returns the opaque version token for a schema snapshot.
// Pure and deterministic; safe to recompute at any time.
func ComputeVersion(s *Schema) string {
	tables := make([]normalizedTable, 0, len(s.Tables))
	for _, t := range s.Tables {
		tables = append(tables, normalizeTable(t))
	}
	sort.Slice(tables, func(i, j int) bool {
		ki := tables[i].SchemaName + "." + tables[i].Name
		kj := tables[j].SchemaName + "." + tables[j].Name
		return ki < kj
	})

	payload, err := json.Marshal(tables)
	if err != nil {
		// Marshalling plain structs of strings/bools/ints cannot fail;
		// hash the error text so the token still changes deterministically.
		payload = []byte(err.Error())
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func normalizeTable(t *Table) normalizedTable {
	nt := normalizedTable{
		SchemaName:  strings.ToLower(t.SchemaName),
		Name:        strings.ToLower(t.Name),
		Columns:     make([]normalizedColumn, 0, len(t.Columns)),
		ForeignKeys: make([]normalizedForeignKey, 0, len(t.ForeignKeys)),
	}

	for _, c := range t.Columns {
		nt.Columns = append(nt.Columns, normalizedColumn{
			Name:              strings.ToLower(c.Name),
			DataType:          strings.ToLower(c.DataType),
			MaxLength:         strings.ToLower(c.MaxLength),
			Precision:         c.Precision,
			Scale:             c.Scale,
			IsNullable:        c.IsNullable,
			IsPrimaryKey:      c.IsPrimaryKey,
			IsIdentity:        c.IsIdentity,
			IdentitySeed:      c.IdentitySeed,
			IdentityIncrement: c.IdentityIncrement,
			DefaultValue:      c.DefaultValue,
			IsComputed:        c.IsComputed,
			ComputedFormula:   c.ComputedFormula,
			ComputedPersisted: c.ComputedPersisted,
		})
	}
	sort.Slice(nt.Columns, func(i, j int) bool {
		ki := nt.Columns[i].Name + "." + nt.Columns[i].DataType
		kj := nt.Columns[j].Name + "." + nt.Columns[j].DataType
		return ki < kj
	})

	for _, fk := range t.ForeignKeys {
		nt.ForeignKeys = append(nt.ForeignKeys, normalizeForeignKey(fk))
	}
	sort.Slice(nt.ForeignKeys, func(i, j int) bool {
		a, b := nt.ForeignKeys[i], nt.ForeignKeys[j]
		ki := a.Name + "." + a.ReferencedSchemaName + "." + a.ReferencedTableName
		kj := b.Name + "." + b.ReferencedSchemaName + "." + b.ReferencedTableName
		return ki < kj
	})

	return nt
}

func normalizeForeignKey(fk *ForeignKey) normalizedForeignKey {
	// Pair owning columns with referenced columns positionally, then sort
	// the pairs. Reordering both arrays by the same permutation leaves the
	// pair set, and therefore the hash, unchanged; reordering only one side
	// breaks pairings and changes the hash.
	type pair struct{ column, referenced string }
	n := len(fk.Columns)
	pairs := make([]pair, 0, n)
	for i := 0; i < n; i++ {
		ref := ""
		if i < len(fk.ReferencedColumns) {
			ref = fk.ReferencedColumns[i]
		}
		pairs = append(pairs, pair{
			column:     strings.ToLower(fk.Columns[i]),
			referenced: strings.ToLower(ref),
		})
	}
	sort.Slice(pairs, func(i, j int) bool {
		ki := pairs[i].column + "." + pairs[i].referenced
		kj := pairs[j].column + "." + pairs[j].referenced
		return ki < kj
	})

	columns := make([]string, 0, n)
	referenced := make([]string, 0, n)
	for _, p := range pairs {
		columns = append(columns, p.column)
		referenced = append(referenced, p.referenced)
	}

	return normalizedForeignKey{
		Name:                 strings.ToLower(fk.Name),
		Columns:              columns,
		ReferencedSchemaName: strings.ToLower(fk.ReferencedSchemaName),
		ReferencedTableName:  strings.ToLower(fk.ReferencedTableName),
		ReferencedColumns:    referenced,
		OnDeleteAction:       string(fk.OnDeleteAction),
		OnUpdateAction:       string(fk.OnUpdateAction),
	}
}
