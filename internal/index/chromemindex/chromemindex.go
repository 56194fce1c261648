package chromemindex

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"docquery/internal/config"
	"docquery/internal/domain/docmodel"
	"docquery/internal/index"
	"docquery/pkg/applog"
	"github.com/philippgille/chromem-go"
)

var logger *applog.Logger
var once sync.Once
var dbInstance *chromem.DB

// Store is the embedded fallback index, one chromem collection per document,
// persisted under config.ChromemDir. Used when qdrant is unreachable; the
// on-disk collection doubles as the durable index artifact.
type Store struct {
	db *chromem.DB
}

// GetChromemStore returns the embedded persistent index store, or nil if the
// data directory could not be opened.
func GetChromemStore() *Store {
	once.Do(func() {
		logger = applog.NewLogger("Chromem")
		db, err := chromem.NewPersistentDB(config.ChromemDir, false)
		if err != nil {
			logger.Error("could not open embedded index store", "error", err)
			return
		}
		dbInstance = db
		logger.Info("Embedded index store opened", "dir", config.ChromemDir)
	})

	if dbInstance == nil {
		return nil
	}
	return &Store{db: dbInstance}
}

func (s *Store) BuildIndex(ctx context.Context, doc docmodel.Document, chunks []docmodel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	name := index.CollectionName(doc.ID)

	// rebuilds replace the whole collection, never mutate it
	if err := s.db.DeleteCollection(name); err != nil {
		return err
	}
	collection, err := s.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(chunk.Sequence),
			Content:   chunk.Text,
			Embedding: vectors[i],
			Metadata: map[string]string{
				"sequence":    strconv.Itoa(chunk.Sequence),
				"page_start":  strconv.Itoa(chunk.PageStart),
				"page_end":    strconv.Itoa(chunk.PageEnd),
				"document_id": chunk.DocumentID,
			},
		}
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		if delErr := s.db.DeleteCollection(name); delErr != nil {
			logger.Error("could not roll back partial index", "collection", name, "error", delErr)
		}
		return fmt.Errorf("embedded index write failed: %w", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, documentID string, vector []float32, k int) ([]index.Hit, error) {
	collection := s.db.GetCollection(index.CollectionName(documentID), nil)
	if collection == nil {
		return nil, fmt.Errorf("no index for document %s", documentID)
	}

	if count := collection.Count(); k > count {
		k = count
	}
	if k == 0 {
		return nil, nil
	}

	results, err := collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       k,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]index.Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, index.Hit{
			Chunk: docmodel.Chunk{
				DocumentID: documentID,
				Sequence:   atoi(r.Metadata["sequence"]),
				Text:       r.Content,
				PageStart:  atoi(r.Metadata["page_start"]),
				PageEnd:    atoi(r.Metadata["page_end"]),
			},
			Score: r.Similarity,
		})
	}
	index.SortHits(hits)
	return hits, nil
}

func (s *Store) CountChunks(ctx context.Context, documentID string) (int, error) {
	collection := s.db.GetCollection(index.CollectionName(documentID), nil)
	if collection == nil {
		return 0, fmt.Errorf("no index for document %s", documentID)
	}
	return collection.Count(), nil
}

func (s *Store) DropIndex(ctx context.Context, documentID string) error {
	return s.db.DeleteCollection(index.CollectionName(documentID))
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
