package indexer

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"

	"rickmorty-api/internal/contextutil"
	"rickmorty-api/internal/observability"
	"rickmorty-api/internal/rag"
	"rickmorty-api/internal/vectorstore"
)

// DefaultBatchSize is the number of chunks embedded per request.
const DefaultBatchSize = 64

// Pipeline chunks show documents, embeds them and writes them to the vector index.
type Pipeline struct {
	embedder    rag.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	chunker     *Chunker
	batchSize   int
}

// NewPipeline creates an ingest pipeline. batchSize <= 0 selects DefaultBatchSize.
func NewPipeline(embedder rag.Embedder, vectorStore vectorstore.VectorStore, collection string, chunker *Chunker, batchSize int) *Pipeline {
	if chunker == nil {
		chunker = NewChunker(0)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunker:     chunker,
		batchSize:   batchSize,
	}
}

// PointID returns the deterministic point ID of a chunk, so re-ingesting a
// document overwrites its points.
func PointID(source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source+"#"+strconv.Itoa(index))).String()
}

// IndexDocument replaces every point of doc.Source with the document's chunks.
// It returns the number of chunks written.
func (p *Pipeline) IndexDocument(ctx context.Context, doc Document) (int, error) {
	ctx, span := observability.StartStepSpan(ctx, "index_document")
	defer span.End()

	// Drop points left over from a longer previous version of the document.
	if err := p.vectorStore.DeleteWhere(ctx, p.collection, map[string]any{"source": doc.Source}); err != nil {
		observability.RecordError(span, err)
		return 0, fmt.Errorf("failed to delete stale points for %s: %w", doc.Source, err)
	}

	for start := 0; start < len(doc.Chunks); start += p.batchSize {
		end := min(start+p.batchSize, len(doc.Chunks))
		batch := doc.Chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vecs, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			observability.RecordError(span, err)
			return start, fmt.Errorf("failed to embed chunks of %s: %w", doc.Source, err)
		}
		if len(vecs) != len(batch) {
			return start, fmt.Errorf("embedding count mismatch for %s: got %d, want %d", doc.Source, len(vecs), len(batch))
		}

		points := make([]vectorstore.Point, len(batch))
		for i, c := range batch {
			points[i] = vectorstore.Point{
				ID:  PointID(doc.Source, c.Index),
				Vec: vecs[i],
				Meta: map[string]any{
					"text":         c.Text,
					"source":       doc.Source,
					"title":        doc.Title,
					"heading_path": c.HeadingPath,
					"chunk_index":  c.Index,
				},
			}
		}

		if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
			observability.RecordError(span, err)
			return start, fmt.Errorf("failed to upsert chunks of %s: %w", doc.Source, err)
		}
	}

	return len(doc.Chunks), nil
}

// IndexDir ingests every document under root. A failing document is logged
// and counted; the run continues with the next one.
func (p *Pipeline) IndexDir(ctx context.Context, root string) (*Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := ScanDir(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	logger.Info("found documents", "root", root, "count", len(files))

	stats := newStats()
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			stats.finish()
			return stats, err
		}

		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			stats.DocsFailed++
			logger.Error("failed to read document", "source", f.RelPath, "error", err)
			continue
		}

		doc := p.chunker.Chunk(f.RelPath, content)
		n, err := p.IndexDocument(ctx, doc)
		if err != nil {
			stats.DocsFailed++
			logger.Error("failed to index document", "source", f.RelPath, "error", err)
			continue
		}

		stats.record(doc)
		logger.Debug("indexed document", "source", f.RelPath, "title", doc.Title, "chunks", n)
	}
	stats.finish()

	if stats.DocsFailed > 0 {
		return stats, fmt.Errorf("ingest completed with %d failed documents", stats.DocsFailed)
	}
	return stats, nil
}
