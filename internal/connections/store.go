/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

// Package connections manages the saved database connections an agent can
// open a designer against. The store is a YAML file; passwords are sealed
// with the crypto package before they touch disk. Nothing here runs
// queries — the store only resolves human-readable targets.
package connections

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"schema-designer-mcp/internal/crypto"
)

// SavedConnection is one stored connection target
type SavedConnection struct {
	ID                string    `yaml:"id" json:"id"`
	Name              string    `yaml:"name" json:"name"`
	Server            string    `yaml:"server" json:"server"`
	Database          string    `yaml:"database" json:"database"`
	User              string    `yaml:"user,omitempty" json:"user,omitempty"`
	EncryptedPassword string    `yaml:"encrypted_password,omitempty" json:"-"`
	CreatedAt         time.Time `yaml:"created_at" json:"createdAt"`
	LastUsedAt        time.Time `yaml:"last_used_at,omitempty" json:"lastUsedAt,omitempty"`
}

// ConnectionInfo is the resolved credential view handed to callers that
// need to open a document. The decrypted password never appears in tool
// responses.
type ConnectionInfo struct {
	ID       string
	Name     string
	Server   string
	Database string
	User     string
	Password string
}

type storeFile struct {
	Connections []*SavedConnection `yaml:"connections"`
}

// Store manages saved connections persisted to a YAML file
type Store struct {
	mu          sync.RWMutex
	path        string
	key         *crypto.EncryptionKey
	connections map[string]*SavedConnection
}

// NewStore loads (or initializes) the connection store at path. key seals
// passwords at rest and may be nil when no connection carries credentials.
func NewStore(path string, key *crypto.EncryptionKey) (*Store, error) {
	s := &Store{
		path:        path,
		key:         key,
		connections: make(map[string]*SavedConnection),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read connections file: %w", err)
	}

	var file storeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse connections file: %w", err)
	}
	for _, conn := range file.Connections {
		s.connections[conn.ID] = conn
	}
	return s, nil
}

// Add saves a new connection and returns its generated id
func (s *Store) Add(name, server, database, user, password string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("name cannot be empty")
	}
	if strings.TrimSpace(server) == "" || strings.TrimSpace(database) == "" {
		return "", fmt.Errorf("server and database cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.connections {
		if strings.EqualFold(existing.Name, name) {
			return "", fmt.Errorf("connection named %q already exists", name)
		}
	}

	conn := &SavedConnection{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Server:    strings.TrimSpace(server),
		Database:  strings.TrimSpace(database),
		User:      strings.TrimSpace(user),
		CreatedAt: time.Now().UTC(),
	}
	if password != "" {
		if s.key == nil {
			return "", fmt.Errorf("no encryption key configured; cannot store a password")
		}
		sealed, err := s.key.Encrypt(password)
		if err != nil {
			return "", fmt.Errorf("failed to encrypt password: %w", err)
		}
		conn.EncryptedPassword = sealed
	}

	s.connections[conn.ID] = conn
	if err := s.saveLocked(); err != nil {
		delete(s.connections, conn.ID)
		return "", err
	}
	return conn.ID, nil
}

// Remove deletes a saved connection by id
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.connections[id]; !ok {
		return fmt.Errorf("no connection with id %q", id)
	}
	delete(s.connections, id)
	return s.saveLocked()
}

// GetConnectionInfo resolves a connection id to credentials, or nil when
// the id is unknown. Marks the connection as used.
func (s *Store) GetConnectionInfo(id string) (*ConnectionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.connections[id]
	if !ok {
		return nil, nil
	}

	info := &ConnectionInfo{
		ID:       conn.ID,
		Name:     conn.Name,
		Server:   conn.Server,
		Database: conn.Database,
		User:     conn.User,
	}
	if conn.EncryptedPassword != "" {
		if s.key == nil {
			return nil, fmt.Errorf("connection %q has a sealed password but no encryption key is configured", conn.Name)
		}
		password, err := s.key.Decrypt(conn.EncryptedPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt password for %q: %w", conn.Name, err)
		}
		info.Password = password
	}

	conn.LastUsedAt = time.Now().UTC()
	// Last-used tracking is advisory; a failed save must not fail the lookup
	if err := s.saveLocked(); err != nil {
		return info, nil
	}
	return info, nil
}

// List returns saved connections sorted by name, without credentials
func (s *Store) List() []*SavedConnection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*SavedConnection, 0, len(s.connections))
	for _, conn := range s.connections {
		copied := *conn
		copied.EncryptedPassword = ""
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Count returns the number of saved connections
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Store) saveLocked() error {
	file := storeFile{Connections: make([]*SavedConnection, 0, len(s.connections))}
	for _, conn := range s.connections {
		file.Connections = append(file.Connections, conn)
	}
	sort.Slice(file.Connections, func(i, j int) bool {
		return file.Connections[i].Name < file.Connections[j].Name
	})

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to marshal connections: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write connections file: %w", err)
	}
	return nil
}
