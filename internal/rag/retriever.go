package rag

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mocks/mock_retriever.go -package=mocks rickmorty-api/internal/rag Retriever,Embedder,Generator

import (
	"context"
	"fmt"
	"strings"

	"rickmorty-api/internal/contextutil"
	"rickmorty-api/internal/llm"
	"rickmorty-api/internal/vectorstore"
)

// Retriever returns show context relevant to a query as a single string.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// Embedder turns text into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a model reply for a list of messages.
type Generator interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// VectorRetriever retrieves the top-k passages from a vector index.
type VectorRetriever struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	k          int
}

// NewVectorRetriever creates a retriever that searches collection for the k closest passages.
func NewVectorRetriever(embedder Embedder, store vectorstore.VectorStore, collection string, k int) *VectorRetriever {
	return &VectorRetriever{
		embedder:   embedder,
		store:      store,
		collection: collection,
		k:          k,
	}
}

// Retrieve embeds query and joins the text of the hits, best first, with blank lines.
// No hits is not an error; the context is then empty.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vectors, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return "", fmt.Errorf("no embedding returned for query")
	}

	results, err := r.store.Search(ctx, r.collection, vectors[0], r.k, nil)
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", r.collection, err)
	}

	passages := make([]string, 0, len(results))
	for _, res := range results {
		text, _ := res.Meta["text"].(string)
		if text == "" {
			logger.WarnContext(ctx, "search hit without text payload", "point_id", res.PointID)
			continue
		}
		passages = append(passages, text)
	}

	logger.DebugContext(ctx, "context retrieved", "hits", len(results), "passages", len(passages), "k", r.k)
	return strings.Join(passages, "\n\n"), nil
}
