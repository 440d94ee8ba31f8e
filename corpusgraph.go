package corpusgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/corpusgraph/corpusgraph/pkg/cache"
	"github.com/corpusgraph/corpusgraph/pkg/cost"
	"github.com/corpusgraph/corpusgraph/pkg/driver"
	"github.com/corpusgraph/corpusgraph/pkg/embedder"
	"github.com/corpusgraph/corpusgraph/pkg/llm"
	"github.com/corpusgraph/corpusgraph/pkg/prompts"
	"github.com/corpusgraph/corpusgraph/pkg/resolve"
	"github.com/corpusgraph/corpusgraph/pkg/source"
	"github.com/corpusgraph/corpusgraph/pkg/types"
)

var (
	// ErrEmptyDocument is returned when a document has no content to process.
	ErrEmptyDocument = errors.New("document has no content")
)

// DefaultEntityTypes is the entity type hint given to the extraction prompt
// when the caller provides none.
const DefaultEntityTypes = "PERSON, ORGANIZATION, LOCATION, EVENT, OBJECT, CONCEPT"

// CorpusGraph is the main interface for building knowledge graphs from text.
// Documents are chunked, entities and relationships are extracted with an
// LLM, duplicates are resolved, and the result is loaded into a graph
// database.
type CorpusGraph interface {
	// AddDocument runs a document through the extraction pipeline and loads
	// the resulting entities and relationships into the graph.
	AddDocument(ctx context.Context, doc types.Document) (*AddDocumentResult, error)

	// GetEntity retrieves an entity node by ID.
	GetEntity(ctx context.Context, nodeID string) (*types.Node, error)

	// GetEntityByName retrieves an entity node by name, honoring the same
	// normalization the loader uses.
	GetEntityByName(ctx context.Context, name string) (*types.Node, error)

	// GetRelationship retrieves a relationship edge by ID.
	GetRelationship(ctx context.Context, edgeID string) (*types.Edge, error)

	// Stats returns node and edge counts for the configured group.
	Stats(ctx context.Context) (*driver.GraphStats, error)

	// ClearGraph removes all nodes and edges for the configured group.
	ClearGraph(ctx context.Context) error

	// CreateIndices creates database indices and constraints.
	CreateIndices(ctx context.Context) error

	// Close closes all connections and cleans up resources.
	Close(ctx context.Context) error
}

// Config holds configuration for the CorpusGraph client.
type Config struct {
	// GroupID isolates data for multi-tenant scenarios
	GroupID string
	// Model name, used for cost estimation only
	Model string
	// Chunking parameters; zero values use the source package defaults
	ChunkSize    int
	ChunkOverlap int
	// SimilarityThreshold for entity resolution; zero uses the resolve default
	SimilarityThreshold float64
	// EntityTypes hint passed to the extraction prompt
	EntityTypes string
	// CustomPrompt is appended to the extraction prompt, for domain steering
	CustomPrompt string
	// TwoPhaseExtraction extracts entities and relationships in separate
	// calls instead of one combined call. Costs an extra round trip per
	// chunk but keeps each prompt smaller.
	TwoPhaseExtraction bool
	// CacheTTL bounds how long extraction results stay cached
	CacheTTL time.Duration
	// Logger; nil discards
	Logger *slog.Logger
}

// Client is the main implementation of the CorpusGraph interface.
type Client struct {
	driver   driver.GraphDriver
	llm      llm.Client
	embedder embedder.Client
	cache    cache.ExtractionCache
	prompts  prompts.Library
	resolver *resolve.Resolver
	costs    *cost.CostCalculator
	logger   *slog.Logger
	config   *Config
}

// AddDocumentResult summarizes one pipeline run.
type AddDocumentResult struct {
	DocumentID    string  `json:"document_id"`
	Chunks        int     `json:"chunks"`
	CachedChunks  int     `json:"cached_chunks"`
	Entities      int     `json:"entities"`
	Relationships int     `json:"relationships"`
	EstimatedCost float64 `json:"estimated_cost_usd"`
}

// NewClient creates a new CorpusGraph client. The embedder and cache are
// optional; pass nil to disable entity embeddings or extraction caching.
func NewClient(graphDriver driver.GraphDriver, llmClient llm.Client, embedderClient embedder.Client, extractionCache cache.ExtractionCache, config *Config) *Client {
	if config == nil {
		config = &Config{}
	}
	if config.GroupID == "" {
		config.GroupID = "default"
	}
	if config.ChunkSize == 0 {
		config.ChunkSize = source.DefaultMaxChars
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = source.DefaultOverlap
	}
	if config.EntityTypes == "" {
		config.EntityTypes = DefaultEntityTypes
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = 7 * 24 * time.Hour
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		driver:   graphDriver,
		llm:      llmClient,
		embedder: embedderClient,
		cache:    extractionCache,
		prompts:  prompts.NewLibrary(),
		resolver: resolve.NewResolver(config.SimilarityThreshold, config.Logger),
		costs:    cost.NewCostCalculator(),
		logger:   config.Logger,
		config:   config,
	}
}

// AddDocument runs the full pipeline: chunk, extract, resolve, load.
func (c *Client) AddDocument(ctx context.Context, doc types.Document) (*AddDocumentResult, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, ErrEmptyDocument
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.GroupID == "" {
		doc.GroupID = c.config.GroupID
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	chunks, err := source.Chunk(doc.Content, c.config.ChunkSize, c.config.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk document %s: %w", doc.ID, err)
	}

	c.logger.Info("extracting knowledge from document",
		"document_id", doc.ID, "name", doc.Name, "chunks", len(chunks))

	result := &AddDocumentResult{DocumentID: doc.ID, Chunks: len(chunks)}

	var allNodes []*types.Node
	var allEdges []*types.Edge
	for i, chunk := range chunks {
		extraction, cached, err := c.extractChunk(ctx, doc.GroupID, chunk, result)
		if err != nil {
			return nil, fmt.Errorf("failed to extract chunk %d/%d of document %s: %w",
				i+1, len(chunks), doc.ID, err)
		}
		if cached {
			result.CachedChunks++
		}
		if extraction.IsEmpty() {
			c.logger.Debug("chunk yielded no entities", "document_id", doc.ID, "chunk", i+1)
			continue
		}

		nodes, edges := c.materializeExtraction(extraction, &doc)
		allNodes = append(allNodes, nodes...)
		allEdges = append(allEdges, edges...)
	}

	canonical, resolved := c.resolver.MergeNodes(allNodes)
	relationEdges := c.resolver.RemapEdges(allEdges, resolved)

	if len(allNodes) > len(canonical) {
		c.logger.Info("merged duplicate entities",
			"document_id", doc.ID, "raw", len(allNodes), "canonical", len(canonical))
	}

	if c.embedder != nil && len(canonical) > 0 {
		if err := c.embedNodes(ctx, canonical); err != nil {
			return nil, fmt.Errorf("failed to embed entities for document %s: %w", doc.ID, err)
		}
	}

	if err := c.loadGraph(ctx, &doc, canonical, relationEdges); err != nil {
		return nil, err
	}

	result.Entities = len(canonical)
	result.Relationships = len(relationEdges)

	c.logger.Info("upserted document graph",
		"document_id", doc.ID,
		"entities", result.Entities,
		"relationships", result.Relationships,
		"estimated_cost_usd", result.EstimatedCost)

	return result, nil
}

// extractChunk returns the extraction for one chunk, consulting the cache
// first. The bool reports a cache hit.
func (c *Client) extractChunk(ctx context.Context, groupID, chunk string, result *AddDocumentResult) (*types.ExtractionResult, bool, error) {
	key := cache.Key(groupID, c.promptVersion(), chunk)

	if c.cache != nil {
		if cached, err := c.cache.GetResult(key); err == nil {
			return cached, true, nil
		} else if !errors.Is(err, cache.ErrKeyNotFound) {
			c.logger.Warn("extraction cache read failed", "error", err)
		}
	}

	var extraction *types.ExtractionResult
	var err error
	if c.config.TwoPhaseExtraction {
		extraction, err = c.extractTwoPhase(ctx, chunk, result)
	} else {
		extraction, err = c.extractCombined(ctx, chunk, result)
	}
	if err != nil {
		return nil, false, err
	}

	if c.cache != nil {
		if err := c.cache.SetResult(key, extraction, c.config.CacheTTL); err != nil {
			c.logger.Warn("extraction cache write failed", "error", err)
		}
	}

	return extraction, false, nil
}

// promptVersion keys the cache on the extraction mode as well as the prompt
// wording, so switching modes never replays the other mode's results.
func (c *Client) promptVersion() string {
	if c.config.TwoPhaseExtraction {
		return prompts.Version + "-two-phase"
	}
	return prompts.Version
}

// extractCombined asks for entities and relationships in a single call.
func (c *Client) extractCombined(ctx context.Context, chunk string, result *AddDocumentResult) (*types.ExtractionResult, error) {
	messages, err := c.prompts.ExtractEntities().Combined().Call(map[string]interface{}{
		"entity_types":  c.config.EntityTypes,
		"content":       chunk,
		"custom_prompt": c.config.CustomPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction prompt: %w", err)
	}

	content, err := c.chat(ctx, messages, result)
	if err != nil {
		return nil, err
	}

	extraction := &types.ExtractionResult{}
	if err := llm.UnmarshalResponse(content, extraction); err != nil {
		return nil, err
	}
	return extraction, nil
}

// extractTwoPhase extracts entities first, then relationships between them.
// A chunk with no entities skips the relationship call.
func (c *Client) extractTwoPhase(ctx context.Context, chunk string, result *AddDocumentResult) (*types.ExtractionResult, error) {
	messages, err := c.prompts.ExtractEntities().Text().Call(map[string]interface{}{
		"entity_types":  c.config.EntityTypes,
		"content":       chunk,
		"custom_prompt": c.config.CustomPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build entity prompt: %w", err)
	}

	content, err := c.chat(ctx, messages, result)
	if err != nil {
		return nil, err
	}

	var entityPayload struct {
		Entities []types.ExtractedEntity `json:"entities"`
	}
	if err := llm.UnmarshalResponse(content, &entityPayload); err != nil {
		return nil, err
	}

	extraction := &types.ExtractionResult{Entities: entityPayload.Entities}
	if len(extraction.Entities) == 0 {
		return extraction, nil
	}

	messages, err = c.prompts.ExtractRelationships().Relationships().Call(map[string]interface{}{
		"entities":      extraction.Entities,
		"content":       chunk,
		"custom_prompt": c.config.CustomPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build relationship prompt: %w", err)
	}

	content, err = c.chat(ctx, messages, result)
	if err != nil {
		return nil, err
	}

	var relationPayload struct {
		Relationships []types.ExtractedRelationship `json:"relationships"`
	}
	if err := llm.UnmarshalResponse(content, &relationPayload); err != nil {
		return nil, err
	}
	extraction.Relationships = relationPayload.Relationships

	return extraction, nil
}

// chat sends messages to the LLM and accumulates token cost on result.
func (c *Client) chat(ctx context.Context, messages []llm.Message, result *AddDocumentResult) (string, error) {
	resp, err := c.llm.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("extraction request failed: %w", err)
	}
	if resp.TokensUsed != nil {
		result.EstimatedCost += c.costs.CalculateCost(c.config.Model,
			resp.TokensUsed.PromptTokens, resp.TokensUsed.CompletionTokens)
	}
	return resp.Content, nil
}

// materializeExtraction turns one chunk's raw extraction into graph nodes and
// edges. Relationships naming an entity absent from the entities list are
// dropped.
func (c *Client) materializeExtraction(extraction *types.ExtractionResult, doc *types.Document) ([]*types.Node, []*types.Edge) {
	now := time.Now().UTC()

	byName := make(map[string]*types.Node, len(extraction.Entities))
	nodes := make([]*types.Node, 0, len(extraction.Entities))
	for _, entity := range extraction.Entities {
		name := strings.TrimSpace(entity.Name)
		if name == "" {
			continue
		}
		if _, dup := byName[name]; dup {
			continue
		}
		node := &types.Node{
			ID:         uuid.New().String(),
			Name:       name,
			Type:       types.EntityNodeType,
			EntityType: entity.Type,
			GroupID:    doc.GroupID,
			CreatedAt:  now,
			UpdatedAt:  now,
			SourceIDs:  []string{doc.ID},
		}
		byName[name] = node
		nodes = append(nodes, node)
	}

	edges := make([]*types.Edge, 0, len(extraction.Relationships))
	for _, rel := range extraction.Relationships {
		src, okSrc := byName[strings.TrimSpace(rel.Source)]
		tgt, okTgt := byName[strings.TrimSpace(rel.Target)]
		if !okSrc || !okTgt {
			c.logger.Debug("dropped relationship naming unknown entity",
				"source", rel.Source, "target", rel.Target, "type", rel.Type)
			continue
		}
		if src == tgt {
			continue
		}
		edges = append(edges, &types.Edge{
			ID:        uuid.New().String(),
			Type:      types.RelationEdgeType,
			Name:      normalizeRelationName(rel.Type),
			SourceID:  src.ID,
			TargetID:  tgt.ID,
			GroupID:   doc.GroupID,
			Evidence:  rel.Evidence,
			CreatedAt: now,
			UpdatedAt: now,
			SourceIDs: []string{doc.ID},
		})
	}

	return nodes, edges
}

// embedNodes attaches name embeddings to entity nodes in one batch.
func (c *Client) embedNodes(ctx context.Context, nodes []*types.Node) error {
	texts := make([]string, len(nodes))
	for i, node := range nodes {
		texts[i] = node.Name
	}

	embeddings, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	if len(embeddings) != len(nodes) {
		return fmt.Errorf("embedder returned %d vectors for %d nodes", len(embeddings), len(nodes))
	}

	for i, node := range nodes {
		node.Embedding = embeddings[i]
	}
	return nil
}

// loadGraph upserts the document node, entity nodes, relationship edges, and
// mention edges. UpsertNode rewrites in-memory node IDs to the stored
// identity, so edges are remapped to the stored IDs before they are written.
func (c *Client) loadGraph(ctx context.Context, doc *types.Document, nodes []*types.Node, edges []*types.Edge) error {
	docNode := &types.Node{
		ID:        doc.ID,
		Name:      doc.Name,
		Type:      types.DocumentNodeType,
		GroupID:   doc.GroupID,
		Content:   doc.Content,
		SourceURL: doc.SourceURL,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: time.Now().UTC(),
		Metadata:  doc.Metadata,
	}
	if err := c.driver.UpsertNode(ctx, docNode); err != nil {
		return fmt.Errorf("failed to upsert document node %s: %w", doc.ID, err)
	}

	preIDs := make([]string, len(nodes))
	for i, node := range nodes {
		preIDs[i] = node.ID
	}
	if err := c.driver.UpsertNodes(ctx, nodes); err != nil {
		return fmt.Errorf("failed to upsert entity nodes for document %s: %w", doc.ID, err)
	}

	stored := make(map[string]string, len(nodes))
	for i, node := range nodes {
		stored[preIDs[i]] = node.ID
	}
	for _, edge := range edges {
		if id, ok := stored[edge.SourceID]; ok {
			edge.SourceID = id
		}
		if id, ok := stored[edge.TargetID]; ok {
			edge.TargetID = id
		}
	}

	now := time.Now().UTC()
	mentions := make([]*types.Edge, 0, len(nodes))
	for _, node := range nodes {
		mentions = append(mentions, &types.Edge{
			ID:        uuid.New().String(),
			Type:      types.MentionEdgeType,
			Name:      "MENTIONS",
			SourceID:  docNode.ID,
			TargetID:  node.ID,
			GroupID:   doc.GroupID,
			CreatedAt: now,
			UpdatedAt: now,
			SourceIDs: []string{doc.ID},
		})
	}

	if err := c.driver.UpsertEdges(ctx, edges); err != nil {
		return fmt.Errorf("failed to upsert relationship edges for document %s: %w", doc.ID, err)
	}
	if err := c.driver.UpsertEdges(ctx, mentions); err != nil {
		return fmt.Errorf("failed to upsert mention edges for document %s: %w", doc.ID, err)
	}

	return nil
}

// GetEntity retrieves an entity node by ID.
func (c *Client) GetEntity(ctx context.Context, nodeID string) (*types.Node, error) {
	return c.driver.GetNode(ctx, nodeID, c.config.GroupID)
}

// GetEntityByName retrieves an entity node by name.
func (c *Client) GetEntityByName(ctx context.Context, name string) (*types.Node, error) {
	return c.driver.GetNodeByName(ctx, name, c.config.GroupID)
}

// GetRelationship retrieves a relationship edge by ID.
func (c *Client) GetRelationship(ctx context.Context, edgeID string) (*types.Edge, error) {
	return c.driver.GetEdge(ctx, edgeID, c.config.GroupID)
}

// Stats returns node and edge counts for the configured group.
func (c *Client) Stats(ctx context.Context) (*driver.GraphStats, error) {
	return c.driver.GetStats(ctx, c.config.GroupID)
}

// ClearGraph removes all nodes and edges for the configured group.
func (c *Client) ClearGraph(ctx context.Context) error {
	c.logger.Warn("clearing graph", "group_id", c.config.GroupID)
	return c.driver.ClearGroup(ctx, c.config.GroupID)
}

// CreateIndices creates database indices and constraints.
func (c *Client) CreateIndices(ctx context.Context) error {
	return c.driver.CreateIndices(ctx)
}

// Close closes all connections and cleans up resources.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if c.llm != nil {
		if err := c.llm.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.driver != nil {
		if err := c.driver.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// normalizeRelationName uppercases a relation type and replaces spaces and
// hyphens with underscores, so "works with" and "WORKS_WITH" store the same.
func normalizeRelationName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "RELATED_TO"
	}
	name = strings.ToUpper(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}
