package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rickmorty-api/internal/auth"
	"rickmorty-api/internal/config"
	"rickmorty-api/internal/http"
	"rickmorty-api/internal/llm"
	"rickmorty-api/internal/observability"
	"rickmorty-api/internal/rag"
	"rickmorty-api/internal/service"
	"rickmorty-api/internal/storage"
	"rickmorty-api/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid server configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracingCfg := observability.DefaultTracingConfig()
	tracingCfg.OTLPEndpoint = cfg.OTLPEndpoint
	tp, err := observability.InitTracing(ctx, tracingCfg)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to flush traces", "error", err)
		}
	}()

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	userRepo := storage.NewUserRepo(db)
	profileRepo := storage.NewProfileRepo(db)
	episodeRatings := storage.NewRatingRepo(db, storage.KindEpisode)
	characterRatings := storage.NewRatingRepo(db, storage.KindCharacter)

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	defer func() {
		_ = vectorStore.Close()
	}()

	// An empty collection gives empty context instead of failed retrievals.
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	embedder := llm.NewEmbeddingsClient(cfg.LLMBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.OpenAIAPIKey, cfg.LLMModelName)

	retriever := rag.NewVectorRetriever(embedder, vectorStore, cfg.QdrantCollection, cfg.RetrieverK)
	chain := rag.NewChain(retriever, llmClient, llm.ChatParams{Temperature: cfg.LLMTemperature})
	slog.Info("Chat chain initialized", "model", cfg.LLMModelName, "k", cfg.RetrieverK)

	jwtAuth := auth.NewJWTAuth(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	deps := &http.Deps{
		ChatService:    service.NewChatService(chain),
		RatingService:  service.NewRatingService(episodeRatings, characterRatings),
		ProfileService: service.NewProfileService(profileRepo, episodeRatings, characterRatings),
		AccountService: service.NewAccountService(userRepo, jwtAuth),
		Auth:           jwtAuth,
		VectorStore:    vectorStore,
		Collection:     cfg.QdrantCollection,
		DB:             db,
	}

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           http.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Model calls are not bounded by the chain, so leave room for slow completions.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}
