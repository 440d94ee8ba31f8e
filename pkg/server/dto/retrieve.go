package dto

import "time"

// EntityResponse represents an entity node returned by the API.
type EntityResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	EntityType string    `json:"entity_type,omitempty"`
	Aliases    []string  `json:"aliases,omitempty"`
	GroupID    string    `json:"group_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StatsResponse represents graph statistics for a group.
type StatsResponse struct {
	NodeCount   int64            `json:"node_count"`
	EdgeCount   int64            `json:"edge_count"`
	NodesByType map[string]int64 `json:"nodes_by_type"`
	LastUpdated time.Time        `json:"last_updated"`
}
