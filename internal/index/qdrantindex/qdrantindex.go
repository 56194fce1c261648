package qdrantindex

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"docquery/internal/config"
	"docquery/internal/domain/docmodel"
	"docquery/internal/index"
	"docquery/pkg/applog"
	"github.com/qdrant/go-client/qdrant"
)

var logger *applog.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingDimension)

// Store keeps one qdrant collection per document.
type Store struct {
	client *qdrant.Client
}

// GetQdrantStore returns the shared qdrant-backed index store, or nil when
// the server is unreachable.
func GetQdrantStore(ctx context.Context) *Store {
	once.Do(func() {
		logger = applog.NewLogger("Qdrant")
		res := newClient(ctx)
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &Store{client: qdrantInstance}
}

func newClient(ctx context.Context) *qdrant.Client {
	host := config.QdrantHost()
	port, err := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if err != nil {
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	if _, err := client.HealthCheck(ctx); err != nil {
		logger.Error("qdrant is offline", "error", err)
		return nil
	}
	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

// BuildIndex publishes all chunk vectors for a document in one shot: the
// collection is recreated from scratch and torn down again if any upsert
// fails, so a partial index is never left behind.
func (s *Store) BuildIndex(ctx context.Context, doc docmodel.Document, chunks []docmodel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	name := index.CollectionName(doc.ID)

	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, name); err != nil {
			return err
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(chunk.Sequence)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":     chunk.Text,
				"sequence":    chunk.Sequence,
				"page_start":  chunk.PageStart,
				"page_end":    chunk.PageEnd,
				"document_id": chunk.DocumentID,
			}),
		}
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		if delErr := s.client.DeleteCollection(ctx, name); delErr != nil {
			logger.Error("could not roll back partial index", "collection", name, "error", delErr)
		}
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, documentID string, vector []float32, k int) ([]index.Hit, error) {
	result, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: index.CollectionName(documentID),
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.Error("Error querying Qdrant", "document", documentID, "error", err)
		return nil, err
	}

	hits := make([]index.Hit, 0, len(result))
	for _, hit := range result {
		hits = append(hits, index.Hit{
			Chunk: docmodel.Chunk{
				DocumentID: documentID,
				Sequence:   int(hit.Payload["sequence"].GetIntegerValue()),
				Text:       hit.Payload["content"].GetStringValue(),
				PageStart:  int(hit.Payload["page_start"].GetIntegerValue()),
				PageEnd:    int(hit.Payload["page_end"].GetIntegerValue()),
			},
			Score: hit.Score,
		})
	}
	index.SortHits(hits)
	return hits, nil
}

func (s *Store) CountChunks(ctx context.Context, documentID string) (int, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: index.CollectionName(documentID),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *Store) DropIndex(ctx context.Context, documentID string) error {
	name := index.CollectionName(documentID)
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil || !exists {
		return err
	}
	return s.client.DeleteCollection(ctx, name)
}
