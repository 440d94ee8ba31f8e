package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/corpusgraph/corpusgraph/pkg/resolve"
	"github.com/corpusgraph/corpusgraph/pkg/types"
)

// Neo4jDriver implements the GraphDriver interface for Neo4j databases.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jDriver creates a new Neo4j driver instance.
func NewNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jDriver{
		client:   client,
		database: database,
	}, nil
}

// GetNode retrieves a node by ID.
func (n *Neo4jDriver) GetNode(ctx context.Context, nodeID, groupID string) (*types.Node, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n {id: $nodeID, group_id: $groupID})
			RETURN n
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"nodeID":  nodeID,
			"groupID": groupID,
		})
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, ErrNodeNotFound
	}

	record := result.(*db.Record)
	nodeValue, found := record.Get("n")
	if !found {
		return nil, ErrNodeNotFound
	}

	return nodeFromDBNode(nodeValue.(dbtype.Node)), nil
}

// GetNodeByName retrieves an entity node by its normalized name.
func (n *Neo4jDriver) GetNodeByName(ctx context.Context, name, groupID string) (*types.Node, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n:Entity {name_norm: $nameNorm, group_id: $groupID})
			RETURN n
			LIMIT 1
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"nameNorm": resolve.NormalizeName(name),
			"groupID":  groupID,
		})
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, ErrNodeNotFound
	}

	record := result.(*db.Record)
	nodeValue, found := record.Get("n")
	if !found {
		return nil, ErrNodeNotFound
	}

	return nodeFromDBNode(nodeValue.(dbtype.Node)), nil
}

// UpsertNode creates or updates a node. Entity nodes are merged on their
// normalized name within the group; node.ID is rewritten to the stored
// identity so callers can wire edges to the canonical node.
func (n *Neo4jDriver) UpsertNode(ctx context.Context, node *types.Node) error {
	if node == nil {
		return fmt.Errorf("cannot upsert nil node")
	}

	now := time.Now()
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}
	node.UpdatedAt = now

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var query string
		params := map[string]any{
			"id":         node.ID,
			"group_id":   node.GroupID,
			"properties": nodeToProperties(node),
			"updated_at": now.Format(time.RFC3339),
		}

		switch node.Type {
		case types.EntityNodeType:
			query = `
				MERGE (n:Entity {name_norm: $name_norm, group_id: $group_id})
				ON CREATE SET n.id = $id, n.created_at = $created_at
				SET n += $properties
				SET n.updated_at = $updated_at
				RETURN n.id AS id
			`
			params["name_norm"] = resolve.NormalizeName(node.Name)
			params["created_at"] = node.CreatedAt.Format(time.RFC3339)
		default:
			query = `
				MERGE (n:Document {id: $id, group_id: $group_id})
				SET n += $properties
				SET n.updated_at = $updated_at
				RETURN n.id AS id
			`
		}

		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return err
	}

	if record, ok := result.(*db.Record); ok {
		if idValue, found := record.Get("id"); found {
			if id, ok := idValue.(string); ok && id != "" {
				node.ID = id
			}
		}
	}

	return nil
}

// UpsertNodes upserts nodes one by one in a single session.
func (n *Neo4jDriver) UpsertNodes(ctx context.Context, nodes []*types.Node) error {
	for _, node := range nodes {
		if err := n.UpsertNode(ctx, node); err != nil {
			return fmt.Errorf("failed to upsert node %q: %w", node.Name, err)
		}
	}
	return nil
}

// DeleteNode removes a node and its edges.
func (n *Neo4jDriver) DeleteNode(ctx context.Context, nodeID, groupID string) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n {id: $nodeID, group_id: $groupID})
			DETACH DELETE n
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"nodeID":  nodeID,
			"groupID": groupID,
		})
		return nil, err
	})

	return err
}

// GetEdge retrieves an edge by ID.
func (n *Neo4jDriver) GetEdge(ctx context.Context, edgeID, groupID string) (*types.Edge, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (s)-[r {id: $edgeID, group_id: $groupID}]->(t)
			RETURN r, s.id AS source_id, t.id AS target_id
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"edgeID":  edgeID,
			"groupID": groupID,
		})
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, ErrEdgeNotFound
	}

	record := result.(*db.Record)
	relationValue, found := record.Get("r")
	if !found {
		return nil, ErrEdgeNotFound
	}

	relation := relationValue.(dbtype.Relationship)
	sourceID, _ := record.Get("source_id")
	targetID, _ := record.Get("target_id")

	return edgeFromDBRelation(relation, sourceID.(string), targetID.(string)), nil
}

// UpsertEdge creates or updates an edge, merged on (source, relationship
// name, target) within the group.
func (n *Neo4jDriver) UpsertEdge(ctx context.Context, edge *types.Edge) error {
	if edge == nil {
		return fmt.Errorf("cannot upsert nil edge")
	}

	now := time.Now()
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = now
	}
	edge.UpdatedAt = now

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	relType := "RELATES"
	if edge.Type == types.MentionEdgeType {
		relType = "MENTIONS"
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
			MATCH (s {id: $source_id, group_id: $group_id})
			MATCH (t {id: $target_id, group_id: $group_id})
			MERGE (s)-[r:%s {name: $name, group_id: $group_id}]->(t)
			ON CREATE SET r.id = $id, r.created_at = $created_at
			SET r += $properties
			SET r.updated_at = $updated_at
		`, relType)

		_, err := tx.Run(ctx, query, map[string]any{
			"id":         edge.ID,
			"source_id":  edge.SourceID,
			"target_id":  edge.TargetID,
			"group_id":   edge.GroupID,
			"name":       edge.Name,
			"created_at": edge.CreatedAt.Format(time.RFC3339),
			"properties": edgeToProperties(edge),
			"updated_at": now.Format(time.RFC3339),
		})
		return nil, err
	})

	return err
}

// UpsertEdges upserts edges one by one in a single session.
func (n *Neo4jDriver) UpsertEdges(ctx context.Context, edges []*types.Edge) error {
	for _, edge := range edges {
		if err := n.UpsertEdge(ctx, edge); err != nil {
			return fmt.Errorf("failed to upsert edge %q: %w", edge.Name, err)
		}
	}
	return nil
}

// DeleteEdge removes an edge.
func (n *Neo4jDriver) DeleteEdge(ctx context.Context, edgeID, groupID string) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH ()-[r {id: $edgeID, group_id: $groupID}]-()
			DELETE r
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"edgeID":  edgeID,
			"groupID": groupID,
		})
		return nil, err
	})

	return err
}

// GetNeighbors retrieves neighboring nodes within a specified distance.
func (n *Neo4jDriver) GetNeighbors(ctx context.Context, nodeID, groupID string, maxDistance int) ([]*types.Node, error) {
	if maxDistance <= 0 {
		maxDistance = 1
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
			MATCH (start {id: $nodeID, group_id: $groupID})
			MATCH (start)-[*1..%d]-(neighbor)
			WHERE neighbor.group_id = $groupID AND neighbor.id <> $nodeID
			RETURN DISTINCT neighbor
		`, maxDistance)

		res, err := tx.Run(ctx, query, map[string]any{
			"nodeID":  nodeID,
			"groupID": groupID,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	records := result.([]*db.Record)
	nodes := make([]*types.Node, 0, len(records))
	for _, record := range records {
		nodeValue, found := record.Get("neighbor")
		if !found {
			continue
		}
		nodes = append(nodes, nodeFromDBNode(nodeValue.(dbtype.Node)))
	}

	return nodes, nil
}

// ClearGroup removes all nodes and edges belonging to a group.
func (n *Neo4jDriver) ClearGroup(ctx context.Context, groupID string) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n {group_id: $groupID})
			DETACH DELETE n
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"groupID": groupID,
		})
		return nil, err
	})

	return err
}

// CreateIndices creates database indices and constraints.
func (n *Neo4jDriver) CreateIndices(ctx context.Context) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	queries := []string{
		`CREATE INDEX entity_name_group IF NOT EXISTS FOR (n:Entity) ON (n.name_norm, n.group_id)`,
		`CREATE INDEX entity_id IF NOT EXISTS FOR (n:Entity) ON (n.id)`,
		`CREATE INDEX document_id IF NOT EXISTS FOR (n:Document) ON (n.id)`,
	}

	for _, query := range queries {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, query, nil)
			return nil, err
		})
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// GetStats returns node and edge counts for a group.
func (n *Neo4jDriver) GetStats(ctx context.Context, groupID string) (*GraphStats, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n {group_id: $groupID})
			OPTIONAL MATCH (n)-[r {group_id: $groupID}]->()
			RETURN n.type AS node_type, count(DISTINCT n) AS node_count, count(r) AS edge_count
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"groupID": groupID,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	stats := &GraphStats{
		NodesByType: make(map[string]int64),
		LastUpdated: time.Now(),
	}

	for _, record := range result.([]*db.Record) {
		nodeType, _ := record.Get("node_type")
		nodeCount, _ := record.Get("node_count")
		edgeCount, _ := record.Get("edge_count")

		count, _ := nodeCount.(int64)
		edges, _ := edgeCount.(int64)

		stats.NodeCount += count
		stats.EdgeCount += edges
		if typeName, ok := nodeType.(string); ok && typeName != "" {
			stats.NodesByType[typeName] += count
		}
	}

	return stats, nil
}

// Close closes the driver connection.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

// nodeToProperties flattens a node into Neo4j properties. Embedding and
// metadata are stored as JSON strings since Neo4j properties cannot nest.
func nodeToProperties(node *types.Node) map[string]any {
	props := map[string]any{
		"name":       node.Name,
		"name_norm":  resolve.NormalizeName(node.Name),
		"type":       string(node.Type),
		"created_at": node.CreatedAt.Format(time.RFC3339),
	}

	if node.EntityType != "" {
		props["entity_type"] = node.EntityType
	}
	if len(node.Aliases) > 0 {
		props["aliases"] = node.Aliases
	}
	if node.Summary != "" {
		props["summary"] = node.Summary
	}
	if node.Content != "" {
		props["content"] = node.Content
	}
	if node.SourceURL != "" {
		props["source_url"] = node.SourceURL
	}
	if len(node.SourceIDs) > 0 {
		props["source_ids"] = node.SourceIDs
	}
	if len(node.Embedding) > 0 {
		if b, err := json.Marshal(node.Embedding); err == nil {
			props["embedding"] = string(b)
		}
	}
	if len(node.Metadata) > 0 {
		if b, err := json.Marshal(node.Metadata); err == nil {
			props["metadata"] = string(b)
		}
	}

	return props
}

// edgeToProperties flattens an edge into Neo4j properties.
func edgeToProperties(edge *types.Edge) map[string]any {
	props := map[string]any{
		"type": string(edge.Type),
	}

	if edge.Evidence != "" {
		props["evidence"] = edge.Evidence
	}
	if len(edge.SourceIDs) > 0 {
		props["source_ids"] = edge.SourceIDs
	}
	if len(edge.Metadata) > 0 {
		if b, err := json.Marshal(edge.Metadata); err == nil {
			props["metadata"] = string(b)
		}
	}

	return props
}

// nodeFromDBNode converts a Neo4j node into a types.Node.
func nodeFromDBNode(dbNode dbtype.Node) *types.Node {
	node := &types.Node{
		Metadata: make(map[string]interface{}),
	}

	props := dbNode.Props
	node.ID, _ = props["id"].(string)
	node.Name, _ = props["name"].(string)
	node.GroupID, _ = props["group_id"].(string)
	node.EntityType, _ = props["entity_type"].(string)
	node.Summary, _ = props["summary"].(string)
	node.Content, _ = props["content"].(string)
	node.SourceURL, _ = props["source_url"].(string)

	if typeName, ok := props["type"].(string); ok {
		node.Type = types.NodeType(typeName)
	}
	node.Aliases = stringSliceProp(props["aliases"])
	node.SourceIDs = stringSliceProp(props["source_ids"])

	if createdAt, ok := props["created_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			node.CreatedAt = t
		}
	}
	if updatedAt, ok := props["updated_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			node.UpdatedAt = t
		}
	}
	if embedding, ok := props["embedding"].(string); ok {
		_ = json.Unmarshal([]byte(embedding), &node.Embedding)
	}
	if metadata, ok := props["metadata"].(string); ok {
		_ = json.Unmarshal([]byte(metadata), &node.Metadata)
	}

	return node
}

// edgeFromDBRelation converts a Neo4j relationship into a types.Edge.
func edgeFromDBRelation(rel dbtype.Relationship, sourceID, targetID string) *types.Edge {
	edge := &types.Edge{
		SourceID: sourceID,
		TargetID: targetID,
		Metadata: make(map[string]interface{}),
	}

	props := rel.Props
	edge.ID, _ = props["id"].(string)
	edge.Name, _ = props["name"].(string)
	edge.GroupID, _ = props["group_id"].(string)
	edge.Evidence, _ = props["evidence"].(string)

	if typeName, ok := props["type"].(string); ok {
		edge.Type = types.EdgeType(typeName)
	}
	edge.SourceIDs = stringSliceProp(props["source_ids"])

	if createdAt, ok := props["created_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			edge.CreatedAt = t
		}
	}
	if updatedAt, ok := props["updated_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			edge.UpdatedAt = t
		}
	}
	if metadata, ok := props["metadata"].(string); ok {
		_ = json.Unmarshal([]byte(metadata), &edge.Metadata)
	}

	return edge
}

// stringSliceProp converts a Neo4j list property into a []string.
func stringSliceProp(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
