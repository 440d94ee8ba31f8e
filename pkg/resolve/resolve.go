package resolve

import (
	"log/slog"
	"strings"

	"github.com/corpusgraph/corpusgraph/pkg/types"
)

// DefaultThreshold is the similarity ratio above which two entity names are
// treated as aliases of the same entity.
const DefaultThreshold = 0.8

var honorifics = map[string]struct{}{
	"dr":   {},
	"mr":   {},
	"mrs":  {},
	"ms":   {},
	"prof": {},
	"sir":  {},
}

// NormalizeName lowercases, trims, and strips a leading honorific so that
// "Dr Watson" and "Watson" normalize to the same key.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	parts := strings.Fields(name)
	if len(parts) > 0 {
		if _, ok := honorifics[strings.TrimSuffix(parts[0], ".")]; ok {
			parts = parts[1:]
		}
	}
	return strings.Join(parts, " ")
}

// Ratio computes the Ratcliff/Obershelp similarity of two strings:
// twice the number of matching characters divided by the total length.
// Identical strings score 1.0, disjoint strings 0.0.
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	matched := matchingChars(a, b)
	return 2.0 * float64(matched) / float64(len(a)+len(b))
}

// matchingChars counts matched characters by recursively finding the longest
// common substring and matching around it.
func matchingChars(a, b string) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	count := size
	count += matchingChars(a[:ai], b[:bi])
	count += matchingChars(a[ai+size:], b[bi+size:])
	return count
}

func longestCommonSubstring(a, b string) (ai, bi, size int) {
	// prev[j] holds the match length ending at a[i-1], b[j-1].
	prev := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		cur := make([]int, len(b)+1)
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			}
		}
		prev = cur
	}
	return ai, bi, size
}

// Resolver merges duplicate entities into canonical ones using normalized
// names and fuzzy similarity.
type Resolver struct {
	threshold float64
	logger    *slog.Logger
}

// NewResolver creates a resolver. A non-positive threshold uses
// DefaultThreshold; a nil logger disables merge logging.
func NewResolver(threshold float64, logger *slog.Logger) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		threshold: threshold,
		logger:    logger,
	}
}

// MergeNodes collapses duplicate and variant entity nodes into canonical
// ones. It returns the canonical nodes and a map from every input node ID to
// its canonical node ID. Canonical nodes accumulate merged names as aliases.
func (r *Resolver) MergeNodes(nodes []*types.Node) ([]*types.Node, map[string]string) {
	resolved := make(map[string]string, len(nodes))
	var canonical []*types.Node

	for _, node := range nodes {
		norm := NormalizeName(node.Name)

		var matched *types.Node
		sim := 0.0
		for _, canon := range canonical {
			canonNorm := NormalizeName(canon.Name)
			if norm == canonNorm || containsNormalized(canon.Aliases, norm) {
				matched = canon
				sim = 1.0
				break
			}
			sim = Ratio(norm, canonNorm)
			if sim >= r.threshold {
				matched = canon
				break
			}
		}

		if matched != nil {
			if node.Name != matched.Name && !containsExact(matched.Aliases, node.Name) {
				matched.Aliases = append(matched.Aliases, node.Name)
			}
			matched.SourceIDs = unionStrings(matched.SourceIDs, node.SourceIDs)
			resolved[node.ID] = matched.ID
			r.logger.Debug("merged entity",
				"from", node.Name,
				"into", matched.Name,
				"similarity", sim)
		} else {
			canonical = append(canonical, node)
			resolved[node.ID] = node.ID
		}
	}

	return canonical, resolved
}

// RemapEdges rewrites edge endpoints to canonical node IDs, drops edges
// referencing unresolved nodes, and removes duplicates on
// (source, type name, target).
func (r *Resolver) RemapEdges(edges []*types.Edge, resolved map[string]string) []*types.Edge {
	type edgeKey struct {
		source, name, target string
	}
	seen := make(map[edgeKey]struct{}, len(edges))
	out := make([]*types.Edge, 0, len(edges))

	for _, edge := range edges {
		src, okSrc := resolved[edge.SourceID]
		tgt, okTgt := resolved[edge.TargetID]
		if !okSrc || !okTgt {
			r.logger.Debug("dropped edge with unresolved endpoint",
				"source", edge.SourceID, "target", edge.TargetID, "name", edge.Name)
			continue
		}

		key := edgeKey{source: src, name: edge.Name, target: tgt}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		edge.SourceID = src
		edge.TargetID = tgt
		out = append(out, edge)
	}

	return out
}

func containsNormalized(aliases []string, norm string) bool {
	for _, a := range aliases {
		if NormalizeName(a) == norm {
			return true
		}
	}
	return false
}

func containsExact(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, v := range append(append([]string{}, a...), b...) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
