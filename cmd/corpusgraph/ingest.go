package corpusgraph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpusgraph/corpusgraph/pkg/config"
	"github.com/corpusgraph/corpusgraph/pkg/source"
	"github.com/corpusgraph/corpusgraph/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract a knowledge graph from a document",
	Long: `Ingest a document from a local file or a URL, extract entities and
relationships with the configured LLM, and load them into the graph database.

Examples:
  corpusgraph ingest --file ./report.txt
  corpusgraph ingest --url https://www.gutenberg.org/cache/epub/1661/pg1661.txt --clean`,
	RunE: runIngest,
}

var (
	ingestFile  string
	ingestURL   string
	ingestName  string
	ingestClean bool
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "Path to a local text file")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "URL to fetch the document from")
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "Document name (defaults to the file name or URL)")
	ingestCmd.Flags().BoolVar(&ingestClean, "clean", false, "Strip Project Gutenberg boilerplate before extraction")

	// Pipeline flags
	ingestCmd.Flags().String("group", "", "Group ID for graph isolation")
	ingestCmd.Flags().Int("chunk-size", 0, "Maximum chunk size in characters")
	ingestCmd.Flags().Int("chunk-overlap", 0, "Overlap between chunks in characters")
	ingestCmd.Flags().Float64("sim-threshold", 0, "Entity name similarity threshold for merging")
	ingestCmd.Flags().String("entity-types", "", "Comma-separated entity type hints for extraction")
	ingestCmd.Flags().Bool("two-phase", false, "Extract entities and relationships in separate calls")
	ingestCmd.Flags().String("cache-dir", "", "Directory for the extraction cache")
	ingestCmd.Flags().Int("cache-ttl-hours", 0, "Extraction cache TTL in hours")

	// LLM flags
	ingestCmd.Flags().String("llm-provider", "", "LLM provider (cohere, openai)")
	ingestCmd.Flags().String("llm-model", "", "LLM model")

	// Database flags
	ingestCmd.Flags().String("db-uri", "", "Database URI")
	ingestCmd.Flags().String("db-username", "", "Database username")
	ingestCmd.Flags().String("db-password", "", "Database password")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if (ingestFile == "") == (ingestURL == "") {
		return fmt.Errorf("exactly one of --file or --url is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overridePipelineFlags(cmd, cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	content, name, sourceURL, err := loadDocument(ctx)
	if err != nil {
		return err
	}

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close(context.Background())

	if err := client.CreateIndices(ctx); err != nil {
		return fmt.Errorf("failed to create indices: %w", err)
	}

	start := time.Now()
	result, err := client.AddDocument(ctx, types.Document{
		Name:      name,
		Content:   content,
		SourceURL: sourceURL,
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("Document:      %s\n", result.DocumentID)
	fmt.Printf("Chunks:        %d (%d cached)\n", result.Chunks, result.CachedChunks)
	fmt.Printf("Entities:      %d\n", result.Entities)
	fmt.Printf("Relationships: %d\n", result.Relationships)
	fmt.Printf("Cost (est.):   $%.4f\n", result.EstimatedCost)
	fmt.Printf("Elapsed:       %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// loadDocument reads content from the file or URL flag.
func loadDocument(ctx context.Context) (content, name, sourceURL string, err error) {
	if ingestFile != "" {
		data, err := os.ReadFile(ingestFile)
		if err != nil {
			return "", "", "", fmt.Errorf("failed to read %s: %w", ingestFile, err)
		}
		content = string(data)
		if ingestClean {
			content = source.StripGutenberg(content)
		}
		name = ingestName
		if name == "" {
			name = filepath.Base(ingestFile)
		}
		return content, name, "", nil
	}

	fetcher := source.NewFetcher(60 * time.Second)
	if ingestClean {
		content, err = fetcher.FetchAndClean(ctx, ingestURL)
	} else {
		content, err = fetcher.Fetch(ctx, ingestURL)
	}
	if err != nil {
		return "", "", "", fmt.Errorf("failed to fetch %s: %w", ingestURL, err)
	}
	name = ingestName
	if name == "" {
		name = ingestURL
	}
	return content, name, ingestURL, nil
}

// overridePipelineFlags applies changed command-line flags on top of the
// loaded config.
func overridePipelineFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("group") {
		cfg.Pipeline.GroupID, _ = cmd.Flags().GetString("group")
	}
	if cmd.Flags().Changed("chunk-size") {
		cfg.Pipeline.ChunkSize, _ = cmd.Flags().GetInt("chunk-size")
	}
	if cmd.Flags().Changed("chunk-overlap") {
		cfg.Pipeline.ChunkOverlap, _ = cmd.Flags().GetInt("chunk-overlap")
	}
	if cmd.Flags().Changed("sim-threshold") {
		cfg.Pipeline.SimThreshold, _ = cmd.Flags().GetFloat64("sim-threshold")
	}
	if cmd.Flags().Changed("entity-types") {
		cfg.Pipeline.EntityTypes, _ = cmd.Flags().GetString("entity-types")
	}
	if cmd.Flags().Changed("two-phase") {
		cfg.Pipeline.TwoPhase, _ = cmd.Flags().GetBool("two-phase")
	}
	if cmd.Flags().Changed("cache-dir") {
		cfg.Cache.Path, _ = cmd.Flags().GetString("cache-dir")
	}
	if cmd.Flags().Changed("cache-ttl-hours") {
		cfg.Cache.TTLHrs, _ = cmd.Flags().GetInt("cache-ttl-hours")
	}

	if cmd.Flags().Changed("llm-provider") {
		cfg.LLM.Provider, _ = cmd.Flags().GetString("llm-provider")
	}
	if cmd.Flags().Changed("llm-model") {
		cfg.LLM.Model, _ = cmd.Flags().GetString("llm-model")
	}

	if cmd.Flags().Changed("db-uri") {
		cfg.Database.URI, _ = cmd.Flags().GetString("db-uri")
	}
	if cmd.Flags().Changed("db-username") {
		cfg.Database.Username, _ = cmd.Flags().GetString("db-username")
	}
	if cmd.Flags().Changed("db-password") {
		cfg.Database.Password, _ = cmd.Flags().GetString("db-password")
	}
}
