package driver_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusgraph/corpusgraph/pkg/driver"
	"github.com/corpusgraph/corpusgraph/pkg/types"
)

// getNeo4jConnectionInfo returns connection info from environment or defaults
// Set NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD env vars to override
func getNeo4jConnectionInfo() (uri, user, password string) {
	uri = os.Getenv("NEO4J_URI")
	if uri == "" {
		uri = "bolt://localhost:7687"
	}
	user = os.Getenv("NEO4J_USER")
	if user == "" {
		user = "neo4j"
	}
	password = os.Getenv("NEO4J_PASSWORD")
	if password == "" {
		password = "password"
	}
	return
}

// skipIfNeo4jUnavailable skips the test if Neo4j is not available
func skipIfNeo4jUnavailable(t *testing.T) *driver.Neo4jDriver {
	t.Helper()

	uri, user, password := getNeo4jConnectionInfo()
	d, err := driver.NewNeo4jDriver(uri, user, password, "neo4j")
	if err != nil {
		t.Skipf("Neo4j not available at %s: %v", uri, err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.CreateIndices(ctx); err != nil {
		d.Close(ctx)
		t.Skipf("Neo4j connection failed: %v", err)
		return nil
	}

	return d
}

func testGroup(t *testing.T) string {
	return "test-" + uuid.New().String()
}

func entityNode(name, groupID string) *types.Node {
	now := time.Now().UTC()
	return &types.Node{
		ID:         uuid.New().String(),
		Name:       name,
		Type:       types.EntityNodeType,
		EntityType: "PERSON",
		GroupID:    groupID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestNeo4jUpsertNodeIdempotent(t *testing.T) {
	d := skipIfNeo4jUnavailable(t)
	ctx := context.Background()
	defer d.Close(ctx)

	group := testGroup(t)
	defer d.ClearGroup(ctx, group)

	first := entityNode("Sherlock Holmes", group)
	require.NoError(t, d.UpsertNode(ctx, first))

	// Upserting the same name again reuses the stored identity
	second := entityNode("Sherlock Holmes", group)
	require.NoError(t, d.UpsertNode(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	stats, err := d.GetStats(ctx, group)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.NodeCount)
}

func TestNeo4jNodeRoundTrip(t *testing.T) {
	d := skipIfNeo4jUnavailable(t)
	ctx := context.Background()
	defer d.Close(ctx)

	group := testGroup(t)
	defer d.ClearGroup(ctx, group)

	node := entityNode("Dr. Watson", group)
	node.Aliases = []string{"Watson"}
	node.SourceIDs = []string{"doc-1"}
	require.NoError(t, d.UpsertNode(ctx, node))

	got, err := d.GetNode(ctx, node.ID, group)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Watson", got.Name)
	assert.Equal(t, "PERSON", got.EntityType)
	assert.Equal(t, []string{"Watson"}, got.Aliases)
	assert.Equal(t, []string{"doc-1"}, got.SourceIDs)

	byName, err := d.GetNodeByName(ctx, "Dr. Watson", group)
	require.NoError(t, err)
	assert.Equal(t, node.ID, byName.ID)

	_, err = d.GetNode(ctx, "missing", group)
	assert.ErrorIs(t, err, driver.ErrNodeNotFound)
}

func TestNeo4jEdgeRoundTrip(t *testing.T) {
	d := skipIfNeo4jUnavailable(t)
	ctx := context.Background()
	defer d.Close(ctx)

	group := testGroup(t)
	defer d.ClearGroup(ctx, group)

	src := entityNode("Holmes", group)
	tgt := entityNode("London", group)
	require.NoError(t, d.UpsertNodes(ctx, []*types.Node{src, tgt}))

	now := time.Now().UTC()
	edge := &types.Edge{
		ID:        uuid.New().String(),
		Type:      types.RelationEdgeType,
		Name:      "LIVES_IN",
		SourceID:  src.ID,
		TargetID:  tgt.ID,
		GroupID:   group,
		Evidence:  "Holmes lived in London.",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, d.UpsertEdge(ctx, edge))

	got, err := d.GetEdge(ctx, edge.ID, group)
	require.NoError(t, err)
	assert.Equal(t, "LIVES_IN", got.Name)
	assert.Equal(t, src.ID, got.SourceID)
	assert.Equal(t, tgt.ID, got.TargetID)
	assert.Equal(t, "Holmes lived in London.", got.Evidence)

	// Upserting the same (source, name, target) does not duplicate
	dup := *edge
	dup.ID = uuid.New().String()
	require.NoError(t, d.UpsertEdge(ctx, &dup))

	stats, err := d.GetStats(ctx, group)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.EdgeCount)
}

func TestNeo4jGetNeighbors(t *testing.T) {
	d := skipIfNeo4jUnavailable(t)
	ctx := context.Background()
	defer d.Close(ctx)

	group := testGroup(t)
	defer d.ClearGroup(ctx, group)

	a := entityNode("A", group)
	b := entityNode("B", group)
	c := entityNode("C", group)
	require.NoError(t, d.UpsertNodes(ctx, []*types.Node{a, b, c}))

	now := time.Now().UTC()
	edges := []*types.Edge{
		{ID: uuid.New().String(), Type: types.RelationEdgeType, Name: "KNOWS",
			SourceID: a.ID, TargetID: b.ID, GroupID: group, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Type: types.RelationEdgeType, Name: "KNOWS",
			SourceID: b.ID, TargetID: c.ID, GroupID: group, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, d.UpsertEdges(ctx, edges))

	direct, err := d.GetNeighbors(ctx, a.ID, group, 1)
	require.NoError(t, err)
	assert.Len(t, direct, 1)

	within2, err := d.GetNeighbors(ctx, a.ID, group, 2)
	require.NoError(t, err)
	assert.Len(t, within2, 2)
}

func TestNeo4jClearGroupIsolation(t *testing.T) {
	d := skipIfNeo4jUnavailable(t)
	ctx := context.Background()
	defer d.Close(ctx)

	group1 := testGroup(t)
	group2 := testGroup(t)
	defer d.ClearGroup(ctx, group1)
	defer d.ClearGroup(ctx, group2)

	require.NoError(t, d.UpsertNode(ctx, entityNode("Alpha", group1)))
	require.NoError(t, d.UpsertNode(ctx, entityNode("Beta", group2)))

	require.NoError(t, d.ClearGroup(ctx, group1))

	stats1, err := d.GetStats(ctx, group1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats1.NodeCount)

	stats2, err := d.GetStats(ctx, group2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats2.NodeCount)
}
