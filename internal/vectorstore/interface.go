package vectorstore

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mocks/mock_vector_store.go -package=mocks rickmorty-api/internal/vectorstore VectorStore

import "context"

// Point is a vector with its payload, as stored in the show-context index.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult is one hit of a similarity search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the k nearest points, optionally restricted by exact-match
	// payload filters (string, int and bool values).
	Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// DeleteWhere removes every point whose payload matches all filters.
	// An empty filter set is rejected.
	DeleteWhere(ctx context.Context, collection string, filters map[string]any) error

	// CollectionExists reports whether the collection has been created.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
