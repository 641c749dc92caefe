/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package dab

import (
	"encoding/json"
	"fmt"
	"strings"

	"schema-designer-mcp/internal/status"
)

// ChangeKind discriminates the closed set of change variants
type ChangeKind string

const (
	ChangeAddEntity              ChangeKind = "add_entity"
	ChangeRemoveEntity           ChangeKind = "remove_entity"
	ChangePatchEntitySettings    ChangeKind = "patch_entity_settings"
	ChangeSetEntityPermissions   ChangeKind = "set_entity_permissions"
	ChangeSetEnabledAPITypes     ChangeKind = "set_enabled_api_types"
	ChangeSetOnlyEntitiesEnabled ChangeKind = "set_only_entities_enabled"
)

// Change is one atomic configuration mutation intent
type Change interface {
	Kind() ChangeKind
	Apply(c *Config, receipt *Receipt) error
}

// Receipt summarizes applied changes grouped by operation kind
type Receipt struct {
	EntitiesAdded   []string `json:"entitiesAdded,omitempty"`
	EntitiesRemoved []string `json:"entitiesRemoved,omitempty"`
	EntitiesPatched []string `json:"entitiesPatched,omitempty"`
	PermissionsSet  []string `json:"permissionsSet,omitempty"`
	APITypesSet     []string `json:"apiTypesSet,omitempty"`
	EntitiesEnabled []string `json:"entitiesEnabled,omitempty"`
}

// CountsByKind returns how many changes of each kind were applied, for
// telemetry measures.
func (r *Receipt) CountsByKind() map[string]float64 {
	counts := map[string]float64{}
	add := func(key string, n int) {
		if n > 0 {
			counts[key] = float64(n)
		}
	}
	add("entitiesAdded", len(r.EntitiesAdded))
	add("entitiesRemoved", len(r.EntitiesRemoved))
	add("entitiesPatched", len(r.EntitiesPatched))
	add("permissionsSet", len(r.PermissionsSet))
	add("apiTypesSet", len(r.APITypesSet))
	add("entitiesEnabled", len(r.EntitiesEnabled))
	return counts
}

// ParseChange decodes one element of a changes batch
func ParseChange(raw map[string]interface{}) (Change, error) {
	kindValue, ok := raw["type"].(string)
	if !ok || kindValue == "" {
		return nil, status.New(status.InvalidRequest, "change is missing its 'type' discriminator")
	}

	var change Change
	switch ChangeKind(kindValue) {
	case ChangeAddEntity:
		change = &AddEntity{}
	case ChangeRemoveEntity:
		change = &RemoveEntity{}
	case ChangePatchEntitySettings:
		change = &PatchEntitySettings{}
	case ChangeSetEntityPermissions:
		change = &SetEntityPermissions{}
	case ChangeSetEnabledAPITypes:
		change = &SetEnabledAPITypes{}
	case ChangeSetOnlyEntitiesEnabled:
		change = &SetOnlyEntitiesEnabled{}
	default:
		return nil, status.Errorf(status.InvalidRequest, "unrecognized change type %q", kindValue)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, status.Errorf(status.InvalidRequest, "undecodable change payload: %v", err)
	}
	if err := json.Unmarshal(data, change); err != nil {
		return nil, status.Errorf(status.InvalidRequest, "malformed change payload: %v", err)
	}
	return change, nil
}

// ParseChanges decodes a whole batch, preserving order
func ParseChanges(raw []interface{}) ([]Change, error) {
	changes := make([]Change, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, status.Errorf(status.InvalidRequest, "change at index %d is not an object", i)
		}
		change, err := ParseChange(m)
		if err != nil {
			return nil, fmt.Errorf("change at index %d: %w", i, err)
		}
		changes = append(changes, change)
	}
	return changes, nil
}

func trimRequired(value, field string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", status.Errorf(status.ValidationError, "'%s' must be a non-empty string", field)
	}
	return trimmed, nil
}

func resolveEntity(c *Config, name string) (*Entity, error) {
	trimmed, err := trimRequired(name, "entity")
	if err != nil {
		return nil, err
	}
	entity := c.FindEntity(trimmed)
	if entity == nil {
		return nil, status.Errorf(status.NotFound, "no entity named %q", trimmed)
	}
	return entity, nil
}

// AddEntity exposes a new API entity backed by a database object
type AddEntity struct {
	Name            string  `json:"name"`
	Source          string  `json:"source"`
	Enabled         *bool   `json:"enabled,omitempty"`
	RestPath        *string `json:"restPath,omitempty"`
	GraphQLSingular *string `json:"graphqlSingular,omitempty"`
	GraphQLPlural   *string `json:"graphqlPlural,omitempty"`
}

func (ch *AddEntity) Kind() ChangeKind { return ChangeAddEntity }

func (ch *AddEntity) Apply(c *Config, receipt *Receipt) error {
	name, err := trimRequired(ch.Name, "name")
	if err != nil {
		return err
	}
	source, err := trimRequired(ch.Source, "source")
	if err != nil {
		return err
	}
	if c.FindEntity(name) != nil {
		return status.Errorf(status.ValidationError, "an entity named %q already exists", name)
	}

	entity := &Entity{Name: name, Source: source, Enabled: true}
	if ch.Enabled != nil {
		entity.Enabled = *ch.Enabled
	}
	for _, alias := range []struct {
		field string
		value *string
		slot  **string
	}{
		{"restPath", ch.RestPath, &entity.RestPath},
		{"graphqlSingular", ch.GraphQLSingular, &entity.GraphQLSingular},
		{"graphqlPlural", ch.GraphQLPlural, &entity.GraphQLPlural},
	} {
		if alias.value == nil {
			continue
		}
		v, err := validateAlias(c, nil, alias.field, *alias.value)
		if err != nil {
			return err
		}
		*alias.slot = &v
	}

	c.Entities = append(c.Entities, entity)
	receipt.EntitiesAdded = append(receipt.EntitiesAdded, name)
	return nil
}

// RemoveEntity removes an entity from the configuration
type RemoveEntity struct {
	Entity string `json:"entity"`
}

func (ch *RemoveEntity) Kind() ChangeKind { return ChangeRemoveEntity }

func (ch *RemoveEntity) Apply(c *Config, receipt *Receipt) error {
	entity, err := resolveEntity(c, ch.Entity)
	if err != nil {
		return err
	}
	for i, e := range c.Entities {
		if e == entity {
			c.Entities = append(c.Entities[:i], c.Entities[i+1:]...)
			break
		}
	}
	receipt.EntitiesRemoved = append(receipt.EntitiesRemoved, entity.Name)
	return nil
}

// Settings recognized by patch_entity_settings. settingOrder fixes the
// validation order so a multi-setting patch always fails on the same
// setting regardless of map iteration order.
var settingOrder = []string{"source", "enabled", "restPath", "graphqlSingular", "graphqlPlural"}

var supportedSettings = map[string]bool{
	"source":          true,
	"enabled":         true,
	"restPath":        true,
	"graphqlSingular": true,
	"graphqlPlural":   true,
}

// PatchEntitySettings updates recognized settings on an entity. A JSON null
// clears an optional alias (removes it so the default applies); an empty or
// whitespace-only string is rejected — use null to clear, not "".
type PatchEntitySettings struct {
	Entity   string                 `json:"entity"`
	Settings map[string]interface{} `json:"settings"`
}

func (ch *PatchEntitySettings) Kind() ChangeKind { return ChangePatchEntitySettings }

func (ch *PatchEntitySettings) Apply(c *Config, receipt *Receipt) error {
	if len(ch.Settings) == 0 {
		return status.New(status.InvalidRequest,
			"patch_entity_settings requires at least one setting")
	}
	for key := range ch.Settings {
		if !supportedSettings[key] {
			return status.Errorf(status.InvalidRequest, "unsupported setting %q", key)
		}
	}
	entity, err := resolveEntity(c, ch.Entity)
	if err != nil {
		return err
	}

	// Validate every setting in a fixed order before assigning any, so a
	// failing patch leaves the entity unchanged and always reports the
	// same failure for the same payload.
	var (
		source  *string
		enabled *bool
		aliases = make(map[string]*string, 3)
		staged  = make(map[string]bool, 3)
	)
	for _, key := range settingOrder {
		value, present := ch.Settings[key]
		if !present {
			continue
		}
		switch key {
		case "source":
			if value == nil {
				return status.New(status.InvalidRequest, "'source' cannot be cleared")
			}
			raw, ok := value.(string)
			if !ok {
				return status.New(status.InvalidRequest, "'source' must be a string")
			}
			v, err := trimRequired(raw, "source")
			if err != nil {
				return err
			}
			source = &v
		case "enabled":
			v, ok := value.(bool)
			if !ok {
				return status.New(status.InvalidRequest, "'enabled' must be a boolean")
			}
			enabled = &v
		default:
			alias, err := stageAlias(c, entity, key, value)
			if err != nil {
				return err
			}
			aliases[key] = alias
			staged[key] = true
		}
	}

	if source != nil {
		entity.Source = *source
	}
	if enabled != nil {
		entity.Enabled = *enabled
	}
	if staged["restPath"] {
		entity.RestPath = aliases["restPath"]
	}
	if staged["graphqlSingular"] {
		entity.GraphQLSingular = aliases["graphqlSingular"]
	}
	if staged["graphqlPlural"] {
		entity.GraphQLPlural = aliases["graphqlPlural"]
	}

	receipt.EntitiesPatched = append(receipt.EntitiesPatched, entity.Name)
	return nil
}

// stageAlias validates one alias setting without touching the entity. A
// nil result means the alias is to be cleared (JSON null); the generated
// default applies.
func stageAlias(c *Config, entity *Entity, field string, value interface{}) (*string, error) {
	if value == nil {
		return nil, nil
	}
	raw, ok := value.(string)
	if !ok {
		return nil, status.Errorf(status.InvalidRequest, "'%s' must be a string or null", field)
	}
	v, err := validateAlias(c, entity, field, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// validateAlias trims an alias value, rejects empty strings, and checks
// case-insensitive collisions against the same alias on other entities.
// self is nil when validating a not-yet-added entity.
func validateAlias(c *Config, self *Entity, field, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", status.Errorf(status.InvalidRequest,
			"'%s' must be a non-empty string; use null to clear it", field)
	}
	for _, other := range c.Entities {
		if other == self {
			continue
		}
		var existing *string
		switch field {
		case "restPath":
			existing = other.RestPath
		case "graphqlSingular":
			existing = other.GraphQLSingular
		case "graphqlPlural":
			existing = other.GraphQLPlural
		}
		if existing != nil && strings.EqualFold(*existing, trimmed) {
			return "", status.Errorf(status.ValidationError,
				"'%s' value %q collides with entity %q", field, trimmed, other.Name)
		}
	}
	return trimmed, nil
}

// SetEntityPermissions replaces the action set granted to one role on an
// entity. Actions must be recognized and must not repeat; duplicates are an
// error, not silently deduplicated.
type SetEntityPermissions struct {
	Entity  string   `json:"entity"`
	Role    string   `json:"role"`
	Actions []string `json:"actions"`
}

func (ch *SetEntityPermissions) Kind() ChangeKind { return ChangeSetEntityPermissions }

func (ch *SetEntityPermissions) Apply(c *Config, receipt *Receipt) error {
	entity, err := resolveEntity(c, ch.Entity)
	if err != nil {
		return err
	}
	role, err := trimRequired(ch.Role, "role")
	if err != nil {
		return err
	}
	if len(ch.Actions) == 0 {
		return status.New(status.ValidationError, "'actions' must contain at least one action")
	}
	seen := make(map[string]bool, len(ch.Actions))
	actions := make([]string, 0, len(ch.Actions))
	for _, raw := range ch.Actions {
		action := strings.TrimSpace(raw)
		if !IsKnownAction(action) {
			return status.Errorf(status.ValidationError, "unrecognized value %q for 'actions'", raw)
		}
		if seen[action] {
			return status.Errorf(status.ValidationError, "duplicate action %q in 'actions'", action)
		}
		seen[action] = true
		actions = append(actions, action)
	}

	replaced := false
	for i := range entity.Permissions {
		if strings.EqualFold(entity.Permissions[i].Role, role) {
			entity.Permissions[i].Actions = actions
			replaced = true
			break
		}
	}
	if !replaced {
		entity.Permissions = append(entity.Permissions, Permission{Role: role, Actions: actions})
	}

	receipt.PermissionsSet = append(receipt.PermissionsSet, entity.Name+":"+role)
	return nil
}

// SetEnabledAPITypes replaces the set of enabled API surfaces
type SetEnabledAPITypes struct {
	APITypes []string `json:"apiTypes"`
}

func (ch *SetEnabledAPITypes) Kind() ChangeKind { return ChangeSetEnabledAPITypes }

func (ch *SetEnabledAPITypes) Apply(c *Config, receipt *Receipt) error {
	seen := make(map[string]bool, len(ch.APITypes))
	types := make([]string, 0, len(ch.APITypes))
	for _, raw := range ch.APITypes {
		t := strings.TrimSpace(raw)
		if !IsKnownAPIType(t) {
			return status.Errorf(status.ValidationError, "unrecognized value %q for 'apiTypes'", raw)
		}
		if seen[t] {
			return status.Errorf(status.ValidationError, "duplicate API type %q in 'apiTypes'", t)
		}
		seen[t] = true
		types = append(types, t)
	}

	c.EnabledAPITypes = types
	receipt.APITypesSet = types
	return nil
}

// SetOnlyEntitiesEnabled enables exactly the named entities and disables
// every other entity. An empty list is rejected: disabling everything must
// be an explicit per-entity operation, not an accidental bulk one.
type SetOnlyEntitiesEnabled struct {
	Entities []string `json:"entities"`
}

func (ch *SetOnlyEntitiesEnabled) Kind() ChangeKind { return ChangeSetOnlyEntitiesEnabled }

func (ch *SetOnlyEntitiesEnabled) Apply(c *Config, receipt *Receipt) error {
	if len(ch.Entities) == 0 {
		return status.New(status.InvalidRequest,
			"set_only_entities_enabled requires a non-empty entity list")
	}

	targets := make([]*Entity, 0, len(ch.Entities))
	for _, name := range ch.Entities {
		entity, err := resolveEntity(c, name)
		if err != nil {
			return err
		}
		targets = append(targets, entity)
	}

	enabled := make(map[*Entity]bool, len(targets))
	for _, e := range targets {
		enabled[e] = true
	}
	for _, e := range c.Entities {
		e.Enabled = enabled[e]
	}

	for _, e := range targets {
		receipt.EntitiesEnabled = append(receipt.EntitiesEnabled, e.Name)
	}
	return nil
}
