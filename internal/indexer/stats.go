package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"
)

// ChunkerVersion identifies the chunking logic. Bump it when chunk
// boundaries change so IndexVersion changes too.
const ChunkerVersion = "v2.0"

// Stats summarises one ingest run.
type Stats struct {
	DocsProcessed     int       `json:"docs_processed"`
	DocsFailed        int       `json:"docs_failed"`
	DocsWithoutChunks int       `json:"docs_without_chunks"`
	ChunksEmbedded    int       `json:"chunks_embedded"`
	ChunkRunes        RuneStats `json:"chunk_runes"`
	ChunkerVersion    string    `json:"chunker_version"`
	IndexVersion      string    `json:"index_version,omitempty"`

	runeCounts []int
}

// RuneStats describes the size distribution of embedded chunks.
type RuneStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

func newStats() *Stats {
	return &Stats{ChunkerVersion: ChunkerVersion}
}

func (s *Stats) record(doc Document) {
	s.DocsProcessed++
	if len(doc.Chunks) == 0 {
		s.DocsWithoutChunks++
		return
	}
	s.ChunksEmbedded += len(doc.Chunks)
	for _, c := range doc.Chunks {
		s.runeCounts = append(s.runeCounts, utf8.RuneCountInString(c.Text))
	}
}

func (s *Stats) finish() {
	s.ChunkRunes = computeRuneStats(s.runeCounts)
}

// IndexVersion identifies an index build: the chunker, the embedding model and
// the chunk size limit. Documents embedded under different versions should not
// share a collection.
func IndexVersion(embeddingModel string, maxRunes int) string {
	input := fmt.Sprintf("%s|%s|maxRunes=%d", ChunkerVersion, embeddingModel, maxRunes)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

func computeRuneStats(counts []int) RuneStats {
	if len(counts) == 0 {
		return RuneStats{}
	}

	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)

	sum := 0
	for _, n := range sorted {
		sum += n
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return RuneStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
