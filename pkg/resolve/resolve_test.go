package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusgraph/corpusgraph/pkg/types"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Dr. Watson", "watson"},
		{"Dr Watson", "watson"},
		{"  MR. Sherlock Holmes  ", "sherlock holmes"},
		{"Prof Moriarty", "moriarty"},
		{"London", "london"},
		{"Dr", ""}, // honorific alone normalizes to nothing
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("watson", "watson"))
	assert.Equal(t, 1.0, Ratio("", ""))
	assert.Equal(t, 0.0, Ratio("abc", ""))
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))

	// Ratcliff/Obershelp: 2*M/T
	assert.InDelta(t, 0.8, Ratio("sherlock", "sherlok"), 0.15)
	assert.Greater(t, Ratio("john watson", "dr john watson"), 0.8)
	assert.Less(t, Ratio("london", "moriarty"), 0.5)
}

func newNode(id, name string) *types.Node {
	return &types.Node{
		ID:        id,
		Name:      name,
		Type:      types.EntityNodeType,
		GroupID:   "g",
		SourceIDs: []string{"doc-" + id},
	}
}

func TestMergeNodesHonorific(t *testing.T) {
	r := NewResolver(0, nil)

	nodes := []*types.Node{
		newNode("1", "Dr. Watson"),
		newNode("2", "Watson"),
		newNode("3", "Sherlock Holmes"),
	}

	canonical, resolved := r.MergeNodes(nodes)
	require.Len(t, canonical, 2)

	// First occurrence wins as the canonical name
	assert.Equal(t, "Dr. Watson", canonical[0].Name)
	assert.Contains(t, canonical[0].Aliases, "Watson")

	assert.Equal(t, "1", resolved["1"])
	assert.Equal(t, "1", resolved["2"])
	assert.Equal(t, "3", resolved["3"])

	// Source IDs accumulate across merged nodes
	assert.ElementsMatch(t, []string{"doc-1", "doc-2"}, canonical[0].SourceIDs)
}

func TestMergeNodesFuzzy(t *testing.T) {
	r := NewResolver(0.8, nil)

	canonical, resolved := r.MergeNodes([]*types.Node{
		newNode("1", "Sherlock Holmes"),
		newNode("2", "Sherlock Holms"),
	})
	require.Len(t, canonical, 1)
	assert.Equal(t, resolved["2"], resolved["1"])
}

func TestMergeNodesDistinct(t *testing.T) {
	r := NewResolver(0.8, nil)

	canonical, _ := r.MergeNodes([]*types.Node{
		newNode("1", "London"),
		newNode("2", "Moriarty"),
		newNode("3", "Baker Street"),
	})
	assert.Len(t, canonical, 3)
}

func TestMergeNodesEmpty(t *testing.T) {
	r := NewResolver(0, nil)
	canonical, resolved := r.MergeNodes(nil)
	assert.Empty(t, canonical)
	assert.Empty(t, resolved)
}

func TestRemapEdges(t *testing.T) {
	r := NewResolver(0, nil)

	resolved := map[string]string{
		"1": "1",
		"2": "1", // merged into 1
		"3": "3",
	}

	edges := []*types.Edge{
		{ID: "e1", SourceID: "2", TargetID: "3", Name: "WORKS_WITH"},
		{ID: "e2", SourceID: "1", TargetID: "3", Name: "WORKS_WITH"}, // duplicate after remap
		{ID: "e3", SourceID: "1", TargetID: "99", Name: "KNOWS"},     // unresolved target
		{ID: "e4", SourceID: "3", TargetID: "1", Name: "WORKS_WITH"}, // reverse direction kept
	}

	out := r.RemapEdges(edges, resolved)
	require.Len(t, out, 2)

	assert.Equal(t, "1", out[0].SourceID)
	assert.Equal(t, "3", out[0].TargetID)
	assert.Equal(t, "3", out[1].SourceID)
	assert.Equal(t, "1", out[1].TargetID)
}
