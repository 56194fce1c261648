package index

import (
	"context"
	"sort"

	"docquery/internal/domain/docmodel"
)

// Hit is one retrieved chunk with its similarity score.
type Hit struct {
	Chunk docmodel.Chunk
	Score float32
}

// Store keeps one independently addressable vector index per document, so a
// query over N documents runs N separate top-k retrievals and attribution
// stays per-document. An index is written exactly once, at ingestion
// completion; BuildIndex publishes all chunks or nothing.
type Store interface {
	BuildIndex(ctx context.Context, doc docmodel.Document, chunks []docmodel.Chunk, vectors [][]float32) error
	Search(ctx context.Context, documentID string, vector []float32, k int) ([]Hit, error)
	CountChunks(ctx context.Context, documentID string) (int, error)
	DropIndex(ctx context.Context, documentID string) error
}

// SortHits orders hits by similarity, highest first, breaking ties by the
// chunk's original sequence so retrieval is stable across runs.
func SortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.Sequence < hits[j].Chunk.Sequence
	})
}

// CollectionName maps a document ID to its index collection.
func CollectionName(documentID string) string {
	return "doc-" + documentID
}
