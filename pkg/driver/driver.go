package driver

import (
	"context"
	"errors"
	"time"

	"github.com/corpusgraph/corpusgraph/pkg/types"
)

var (
	// ErrNodeNotFound is returned when a node is not found.
	ErrNodeNotFound = errors.New("node not found")
	// ErrEdgeNotFound is returned when an edge is not found.
	ErrEdgeNotFound = errors.New("edge not found")
)

// GraphDriver defines the interface for graph database operations.
// It provides methods for storing and retrieving nodes and edges
// from a graph database backend.
type GraphDriver interface {
	// Node operations. UpsertNode merges entity nodes on their normalized
	// name within a group and rewrites node.ID to the stored identity, so
	// loading the same entity twice never creates a duplicate.
	GetNode(ctx context.Context, nodeID, groupID string) (*types.Node, error)
	GetNodeByName(ctx context.Context, name, groupID string) (*types.Node, error)
	UpsertNode(ctx context.Context, node *types.Node) error
	UpsertNodes(ctx context.Context, nodes []*types.Node) error
	DeleteNode(ctx context.Context, nodeID, groupID string) error

	// Edge operations. UpsertEdge merges on (source, relationship name,
	// target) within a group.
	GetEdge(ctx context.Context, edgeID, groupID string) (*types.Edge, error)
	UpsertEdge(ctx context.Context, edge *types.Edge) error
	UpsertEdges(ctx context.Context, edges []*types.Edge) error
	DeleteEdge(ctx context.Context, edgeID, groupID string) error

	// Graph traversal operations
	GetNeighbors(ctx context.Context, nodeID, groupID string, maxDistance int) ([]*types.Node, error)

	// Database maintenance
	ClearGroup(ctx context.Context, groupID string) error
	CreateIndices(ctx context.Context) error
	GetStats(ctx context.Context, groupID string) (*GraphStats, error)

	// Connection management
	Close(ctx context.Context) error
}

// GraphStats holds statistics about the graph.
type GraphStats struct {
	NodeCount   int64            `json:"node_count"`
	EdgeCount   int64            `json:"edge_count"`
	NodesByType map[string]int64 `json:"nodes_by_type"`
	LastUpdated time.Time        `json:"last_updated"`
}
