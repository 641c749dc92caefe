/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

// Package session tracks open designer and config documents. The registry
// is constructor-injected wherever tool handlers are built — there are no
// package-level singletons — and exposes only the foregrounded document of
// each kind to tool calls: background documents stay open but are not
// operable, so a tool can never act on a document the user isn't looking
// at.
package session

import (
	"strings"
	"sync"

	"schema-designer-mcp/internal/dab"
	"schema-designer-mcp/internal/designer"
	"schema-designer-mcp/internal/schema"
)

// Key derives the logical session key for a target
func Key(t designer.Target) string {
	return strings.ToLower(t.Server) + "/" + strings.ToLower(t.Database)
}

// Registry tracks open documents keyed by session identity
type Registry struct {
	mu             sync.RWMutex
	designers      map[string]*designer.Document
	activeDesigner string
	configs        map[string]*dab.Document
	activeConfig   string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		designers: make(map[string]*designer.Document),
		configs:   make(map[string]*dab.Document),
	}
}

// OpenDesigner opens a designer document for the target, or reveals the
// existing one when the same session key is already open (idempotent
// open). The opened document becomes the foregrounded designer. initial is
// only used when a new document is created.
func (r *Registry) OpenDesigner(target designer.Target, initial *schema.Schema) (*designer.Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := Key(target)
	if doc, ok := r.designers[key]; ok {
		r.activeDesigner = key
		return doc, true
	}

	doc := designer.NewDocument(target, initial)
	r.designers[key] = doc
	r.activeDesigner = key
	return doc, false
}

// ActiveDesigner returns the foregrounded designer document, or nil
func (r *Registry) ActiveDesigner() *designer.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.activeDesigner == "" {
		return nil
	}
	return r.designers[r.activeDesigner]
}

// CloseDesigner tears a designer document down. A later open for the same
// key creates a fresh document.
func (r *Registry) CloseDesigner(target designer.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := Key(target)
	delete(r.designers, key)
	if r.activeDesigner == key {
		r.activeDesigner = ""
	}
}

// OpenConfig opens (or reveals) the DAB config document for the target
func (r *Registry) OpenConfig(target designer.Target, initial *dab.Config) (*dab.Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := Key(target)
	if doc, ok := r.configs[key]; ok {
		r.activeConfig = key
		return doc, true
	}

	doc := dab.NewDocument(target, initial)
	r.configs[key] = doc
	r.activeConfig = key
	return doc, false
}

// ActiveConfig returns the foregrounded config document, or nil
func (r *Registry) ActiveConfig() *dab.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.activeConfig == "" {
		return nil
	}
	return r.configs[r.activeConfig]
}

// CloseConfig tears a config document down
func (r *Registry) CloseConfig(target designer.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := Key(target)
	delete(r.configs, key)
	if r.activeConfig == key {
		r.activeConfig = ""
	}
}
