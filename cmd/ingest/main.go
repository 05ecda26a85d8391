package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rickmorty-api/internal/config"
	"rickmorty-api/internal/indexer"
	"rickmorty-api/internal/llm"
	"rickmorty-api/internal/observability"
	"rickmorty-api/internal/vectorstore"
)

func main() {
	var (
		collection string
		batchSize  int
		maxRunes   int
		jsonOutput bool
	)

	rootCmd := &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Build the show-context vector index from Markdown and text documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), args[0], collection, batchSize, maxRunes, jsonOutput)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&collection, "collection", "", "Qdrant collection (default QDRANT_COLLECTION)")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", indexer.DefaultBatchSize, "Chunks embedded per request")
	rootCmd.Flags().IntVar(&maxRunes, "max-runes", indexer.DefaultMaxChunkRunes, "Maximum chunk size in runes")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print run statistics as JSON")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runIngest(ctx context.Context, root, collection string, batchSize, maxRunes int, jsonOutput bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if collection == "" {
		collection = cfg.QdrantCollection
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	tracingCfg := observability.DefaultTracingConfig()
	tracingCfg.ServiceName = "rickmorty-ingest"
	tracingCfg.OTLPEndpoint = cfg.OTLPEndpoint
	tp, err := observability.InitTracing(ctx, tracingCfg)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		return fmt.Errorf("create Qdrant client: %w", err)
	}
	defer func() {
		_ = vectorStore.Close()
	}()

	if err := vectorStore.EnsureCollection(ctx, collection, cfg.QdrantVectorSize); err != nil {
		return fmt.Errorf("ensure collection %s: %w", collection, err)
	}

	// Fail fast when the model and the collection disagree on vector size.
	embedder := llm.NewEmbeddingsClient(cfg.LLMBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	if _, err := embedder.EmbedTexts(ctx, []string{"test"}); err != nil {
		return fmt.Errorf("validate embedding client: %w", err)
	}
	slog.Info("Embedding client validated", "model", cfg.EmbeddingModelName, "vector_size", cfg.QdrantVectorSize)

	pipeline := indexer.NewPipeline(embedder, vectorStore, collection, indexer.NewChunker(maxRunes), batchSize)

	start := time.Now()
	stats, runErr := pipeline.IndexDir(ctx, root)
	if stats == nil {
		return runErr
	}
	stats.IndexVersion = indexer.IndexVersion(cfg.EmbeddingModelName, maxRunes)
	slog.Info("Ingest finished", "collection", collection, "duration", time.Since(start))

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			return err
		}
	} else {
		printStats(stats)
	}
	return runErr
}

func printStats(s *indexer.Stats) {
	fmt.Printf("Documents processed:     %d\n", s.DocsProcessed)
	fmt.Printf("Documents failed:        %d\n", s.DocsFailed)
	fmt.Printf("Docs without chunks:     %d\n", s.DocsWithoutChunks)
	fmt.Printf("Chunks embedded:         %d\n", s.ChunksEmbedded)
	fmt.Printf("Chunk runes:             min %d  max %d  mean %.2f  p95 %d\n",
		s.ChunkRunes.Min, s.ChunkRunes.Max, s.ChunkRunes.Mean, s.ChunkRunes.P95)
	fmt.Printf("Chunker version:         %s\n", s.ChunkerVersion)
	fmt.Printf("Index version:           %s\n", s.IndexVersion)
}
