/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

// Package dab models the Data API Builder configuration document and its
// optimistic-concurrency change protocol. It mirrors the schema designer
// protocol but operates on API entities instead of tables, with an
// independently computed, non-interchangeable version token.
package dab

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// VersionPrefix makes DAB config tokens self-describing so they can never
// be confused with schema designer tokens.
const VersionPrefix = "dabcfg_"

// APIType is an API surface an entity can be exposed through
type APIType string

const (
	APITypeRest    APIType = "rest"
	APITypeGraphQL APIType = "graphql"
)

// IsKnownAPIType reports whether s is a recognized API type
func IsKnownAPIType(s string) bool {
	return s == string(APITypeRest) || s == string(APITypeGraphQL)
}

// Known permission action names
var KnownActions = []string{"create", "read", "update", "delete", "execute"}

// IsKnownAction reports whether s is a recognized permission action
func IsKnownAction(s string) bool {
	for _, a := range KnownActions {
		if a == s {
			return true
		}
	}
	return false
}

// Permission grants a role a set of actions on an entity
type Permission struct {
	Role    string   `json:"role"`
	Actions []string `json:"actions"`
}

// Entity is one exposed API entity backed by a database object.
// Optional alias fields are nil when unset; the generated defaults apply.
type Entity struct {
	Name            string       `json:"name"`
	Source          string       `json:"source"`
	Enabled         bool         `json:"enabled"`
	RestPath        *string      `json:"restPath,omitempty"`
	GraphQLSingular *string      `json:"graphqlSingular,omitempty"`
	GraphQLPlural   *string      `json:"graphqlPlural,omitempty"`
	Permissions     []Permission `json:"permissions,omitempty"`
}

// Config is the root DAB configuration document
type Config struct {
	EnabledAPITypes []string  `json:"enabledApiTypes"`
	Entities        []*Entity `json:"entities"`
}

// FindEntity looks an entity up by name, case-insensitively
func (c *Config) FindEntity(name string) *Entity {
	for _, e := range c.Entities {
		if strings.EqualFold(e.Name, name) {
			return e
		}
	}
	return nil
}

type normalizedPermission struct {
	Role    string   `json:"role"`
	Actions []string `json:"actions"`
}

type normalizedEntity struct {
	Name            string                 `json:"name"`
	Source          string                 `json:"source"`
	Enabled         bool                   `json:"enabled"`
	RestPath        *string                `json:"restPath"`
	GraphQLSingular *string                `json:"graphqlSingular"`
	GraphQLPlural   *string                `json:"graphqlPlural"`
	Permissions     []normalizedPermission `json:"permissions"`
}

type normalizedConfig struct {
	EnabledAPITypes []string           `json:"enabledApiTypes"`
	Entities        []normalizedEntity `json:"entities"`
}

// ComputeVersion returns the opaque version token for a config snapshot.
// Stable under entity/permission/action reordering and under case changes
// in names; changes under any structural difference.
func ComputeVersion(c *Config) string {
	normalized := normalizedConfig{
		EnabledAPITypes: lowerSorted(c.EnabledAPITypes),
		Entities:        make([]normalizedEntity, 0, len(c.Entities)),
	}

	for _, e := range c.Entities {
		ne := normalizedEntity{
			Name:            strings.ToLower(e.Name),
			Source:          strings.ToLower(e.Source),
			Enabled:         e.Enabled,
			RestPath:        lowerOptional(e.RestPath),
			GraphQLSingular: lowerOptional(e.GraphQLSingular),
			GraphQLPlural:   lowerOptional(e.GraphQLPlural),
			Permissions:     make([]normalizedPermission, 0, len(e.Permissions)),
		}
		for _, p := range e.Permissions {
			ne.Permissions = append(ne.Permissions, normalizedPermission{
				Role:    strings.ToLower(p.Role),
				Actions: lowerSorted(p.Actions),
			})
		}
		sort.Slice(ne.Permissions, func(i, j int) bool {
			return ne.Permissions[i].Role < ne.Permissions[j].Role
		})
		normalized.Entities = append(normalized.Entities, ne)
	}
	sort.Slice(normalized.Entities, func(i, j int) bool {
		return normalized.Entities[i].Name < normalized.Entities[j].Name
	})

	payload, err := json.Marshal(normalized)
	if err != nil {
		payload = []byte(err.Error())
	}
	sum := sha256.Sum256(payload)
	return VersionPrefix + hex.EncodeToString(sum[:])
}

func lowerSorted(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	sort.Strings(out)
	return out
}

func lowerOptional(v *string) *string {
	if v == nil {
		return nil
	}
	lowered := strings.ToLower(*v)
	return &lowered
}
