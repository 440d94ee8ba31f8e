package types

import (
	"time"
)

// Node represents a node in the knowledge graph.
type Node struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      NodeType  `json:"type"`
	GroupID   string    `json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Entity-specific fields
	EntityType string   `json:"entity_type,omitempty"`
	Aliases    []string `json:"aliases,omitempty"`
	Summary    string   `json:"summary,omitempty"`

	// Document-specific fields
	Content   string `json:"content,omitempty"`
	SourceURL string `json:"source_url,omitempty"`

	// Common fields
	Embedding []float32              `json:"embedding,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`

	// Source tracking
	SourceIDs []string `json:"source_ids,omitempty"`
}

// Edge represents a relationship between nodes in the knowledge graph.
type Edge struct {
	ID        string    `json:"id"`
	Type      EdgeType  `json:"type"`
	SourceID  string    `json:"source_id"`
	TargetID  string    `json:"target_id"`
	GroupID   string    `json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationship details
	Name     string `json:"name,omitempty"`
	Evidence string `json:"evidence,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// Source tracking
	SourceIDs []string `json:"source_ids,omitempty"`
}

// NodeType represents the type of a node.
type NodeType string

const (
	// EntityNodeType represents entities extracted from content.
	EntityNodeType NodeType = "entity"
	// DocumentNodeType represents ingested source documents.
	DocumentNodeType NodeType = "document"
)

// EdgeType represents the type of an edge.
type EdgeType string

const (
	// RelationEdgeType represents relationships between entities.
	RelationEdgeType EdgeType = "relation"
	// MentionEdgeType connects a document to the entities it mentions.
	MentionEdgeType EdgeType = "mention"
)

// Document is a unit of raw text submitted to the extraction pipeline.
type Document struct {
	ID        string
	Name      string
	Content   string
	SourceURL string
	GroupID   string
	CreatedAt time.Time
	Metadata  map[string]interface{}
}

// ExtractedEntity is an entity as returned by the LLM, unvalidated.
type ExtractedEntity struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ExtractedRelationship is a relationship as returned by the LLM, unvalidated.
// Source and Target refer to extracted entity names.
type ExtractedRelationship struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Type     string `json:"type"`
	Evidence string `json:"evidence,omitempty"`
}

// ExtractionResult is the raw structured output of one extraction call.
// Order is preserved as returned by the model.
type ExtractionResult struct {
	Entities      []ExtractedEntity       `json:"entities"`
	Relationships []ExtractedRelationship `json:"relationships"`
}

// IsEmpty reports whether the result carries no entities and no relationships.
func (r *ExtractionResult) IsEmpty() bool {
	return r == nil || (len(r.Entities) == 0 && len(r.Relationships) == 0)
}
