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

// Size ceilings for config views. The synchronization-check view (attached
// to stale_state responses) tolerates more entities than ordinary response
// shaping; past either ceiling the per-entity list is dropped and the
// omission is marked.
const (
	MaxSyncCheckEntities = 150
	MaxResponseEntities  = 100
)

// EntityView is the bounded projection of one entity
type EntityView struct {
	Name            string       `json:"name"`
	Source          string       `json:"source"`
	Enabled         bool         `json:"enabled"`
	RestPath        *string      `json:"restPath,omitempty"`
	GraphQLSingular *string      `json:"graphqlSingular,omitempty"`
	GraphQLPlural   *string      `json:"graphqlPlural,omitempty"`
	Permissions     []Permission `json:"permissions,omitempty"`
}

// Summary is a size-bounded read view of the whole configuration
type Summary struct {
	EnabledAPITypes []string     `json:"enabledApiTypes"`
	EntityCount     int          `json:"entityCount"`
	EnabledCount    int          `json:"enabledCount"`
	Entities        []EntityView `json:"entities,omitempty"`
	EntitiesOmitted bool         `json:"entitiesOmitted,omitempty"`
	OmissionReason  string       `json:"omissionReason,omitempty"`
}

// BuildSummary builds a bounded view of the config. When the entity count
// exceeds maxEntities the per-entity list is omitted and counts remain.
func BuildSummary(c *Config, maxEntities int) Summary {
	enabled := 0
	for _, e := range c.Entities {
		if e.Enabled {
			enabled++
		}
	}

	out := Summary{
		EnabledAPITypes: append([]string(nil), c.EnabledAPITypes...),
		EntityCount:     len(c.Entities),
		EnabledCount:    enabled,
	}

	if len(c.Entities) > maxEntities {
		out.EntitiesOmitted = true
		out.OmissionReason = "entity count exceeds the response ceiling; per-entity detail omitted"
		return out
	}

	out.Entities = make([]EntityView, 0, len(c.Entities))
	for _, e := range c.Entities {
		view := EntityView{
			Name:            e.Name,
			Source:          e.Source,
			Enabled:         e.Enabled,
			RestPath:        e.RestPath,
			GraphQLSingular: e.GraphQLSingular,
			GraphQLPlural:   e.GraphQLPlural,
		}
		if len(e.Permissions) > 0 {
			view.Permissions = append([]Permission(nil), e.Permissions...)
		}
		out.Entities = append(out.Entities, view)
	}
	return out
}
