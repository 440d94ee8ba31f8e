package corpusgraph

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	corpusgraph "github.com/corpusgraph/corpusgraph"
	"github.com/corpusgraph/corpusgraph/pkg/cache"
	"github.com/corpusgraph/corpusgraph/pkg/config"
	"github.com/corpusgraph/corpusgraph/pkg/driver"
	"github.com/corpusgraph/corpusgraph/pkg/embedder"
	"github.com/corpusgraph/corpusgraph/pkg/llm"
	"github.com/corpusgraph/corpusgraph/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "corpusgraph",
	Short: "Build knowledge graphs from text",
	Long: `CorpusGraph extracts entities and relationships from text using an LLM
and loads them into a Neo4j knowledge graph.

Use "corpusgraph ingest" to process documents from the command line, or
"corpusgraph server" to expose the pipeline over HTTP.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// buildClient constructs the full pipeline client from configuration.
func buildClient(cfg *config.Config) (*corpusgraph.Client, error) {
	log := logger.NewDefaultLogger(logger.ParseLevel(cfg.Log.Level))

	graphDriver, err := driver.NewNeo4jDriver(
		cfg.Database.URI,
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Database,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to graph database: %w", err)
	}

	llmClient, model, err := buildLLMClient(cfg)
	if err != nil {
		return nil, err
	}

	var embedderClient embedder.Client
	if cfg.Embedding.Provider != "" {
		embedderClient = embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embedder.Config{
			Model:   cfg.Embedding.Model,
			BaseURL: cfg.Embedding.BaseURL,
		})
	}

	var extractionCache cache.ExtractionCache
	if cfg.Cache.Path != "" {
		extractionCache, err = cache.NewBadgerCache(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open extraction cache: %w", err)
		}
	}

	pipelineCfg := pipelineConfig(cfg)
	pipelineCfg.Model = model
	pipelineCfg.Logger = log

	return corpusgraph.NewClient(graphDriver, llmClient, embedderClient, extractionCache, pipelineCfg), nil
}

// pipelineConfig maps the loaded configuration onto the client config.
func pipelineConfig(cfg *config.Config) *corpusgraph.Config {
	return &corpusgraph.Config{
		GroupID:             cfg.Pipeline.GroupID,
		ChunkSize:           cfg.Pipeline.ChunkSize,
		ChunkOverlap:        cfg.Pipeline.ChunkOverlap,
		SimilarityThreshold: cfg.Pipeline.SimThreshold,
		EntityTypes:         cfg.Pipeline.EntityTypes,
		CustomPrompt:        cfg.Pipeline.CustomPrompt,
		TwoPhaseExtraction:  cfg.Pipeline.TwoPhase,
		CacheTTL:            time.Duration(cfg.Cache.TTLHrs) * time.Hour,
	}
}

// buildLLMClient creates the provider client wrapped in a circuit breaker.
func buildLLMClient(cfg *config.Config) (llm.Client, string, error) {
	if cfg.LLM.APIKey == "" {
		return nil, "", fmt.Errorf("LLM API key is required (set COHERE_API_KEY or OPENAI_API_KEY)")
	}

	llmConfig := llm.Config{
		Model:       cfg.LLM.Model,
		Temperature: &cfg.LLM.Temperature,
		MaxTokens:   &cfg.LLM.MaxTokens,
		BaseURL:     cfg.LLM.BaseURL,
	}

	var base llm.Client
	var model string
	switch cfg.LLM.Provider {
	case "cohere":
		client := llm.NewCohereClient(cfg.LLM.APIKey, llmConfig)
		base = client
		model = cfg.LLM.Model
		if model == "" {
			model = llm.DefaultCohereModel
		}
	case "openai":
		client := llm.NewOpenAIClient(cfg.LLM.APIKey, llmConfig)
		base = client
		model = cfg.LLM.Model
		if model == "" {
			model = llm.DefaultOpenAIModel
		}
	default:
		return nil, "", fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}

	return llm.NewBreakerClient(base, llm.BreakerSettings{}), model, nil
}
