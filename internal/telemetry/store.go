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
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"schema-designer-mcp/internal/logging"
)

// Store is a SQLite-backed sink persisting one row per tool call. Useful
// for local inspection of what an agent did to a schema and when.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the telemetry database under dataDir
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "telemetry.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode keeps writers from blocking any concurrent reader
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	ddl := `
    CREATE TABLE IF NOT EXISTS tool_calls (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        recorded_at DATETIME NOT NULL,
        view TEXT NOT NULL,
        action TEXT NOT NULL,
        props TEXT NOT NULL,
        measures TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_tool_calls_recorded_at
        ON tool_calls(recorded_at DESC);
    `
	_, err := s.db.Exec(ddl)
	return err
}

// Record persists one tool-call record. Failures are logged and swallowed.
func (s *Store) Record(view, action string, props map[string]string, measures map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	propsJSON, err := json.Marshal(props)
	if err != nil {
		logging.Warn("failed to marshal telemetry props", "error", err)
		return
	}
	measuresJSON, err := json.Marshal(measures)
	if err != nil {
		logging.Warn("failed to marshal telemetry measures", "error", err)
		return
	}

	_, err = s.db.Exec(
		`INSERT INTO tool_calls (recorded_at, view, action, props, measures) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC(), view, action, string(propsJSON), string(measuresJSON),
	)
	if err != nil {
		logging.Warn("failed to record telemetry", "view", view, "action", action, "error", err)
	}
}

// RecordedCall is one persisted telemetry row
type RecordedCall struct {
	ID         int64              `json:"id"`
	RecordedAt time.Time          `json:"recordedAt"`
	View       string             `json:"view"`
	Action     string             `json:"action"`
	Props      map[string]string  `json:"props"`
	Measures   map[string]float64 `json:"measures"`
}

// Recent returns the most recent records, newest first
func (s *Store) Recent(limit int) ([]RecordedCall, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, recorded_at, view, action, props, measures
         FROM tool_calls ORDER BY recorded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordedCall
	for rows.Next() {
		var call RecordedCall
		var propsJSON, measuresJSON string
		if err := rows.Scan(&call.ID, &call.RecordedAt, &call.View, &call.Action, &propsJSON, &measuresJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(propsJSON), &call.Props); err != nil {
			call.Props = map[string]string{}
		}
		if err := json.Unmarshal([]byte(measuresJSON), &call.Measures); err != nil {
			call.Measures = map[string]float64{}
		}
		out = append(out, call)
	}
	return out, rows.Err()
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
