package docstore

import (
	"context"
	"encoding/json"
	"sort"

	"docquery/internal/config"
	"docquery/internal/domain/docmodel"
	"docquery/pkg/applog"
	"github.com/redis/go-redis/v9"
)

const documentSetKey = "documents"

func documentKey(id string) string {
	return "doc:" + id
}

// RedisDocumentStore keeps one JSON record per document plus a set of known
// IDs, so records survive process restarts.
type RedisDocumentStore struct {
	store  *redisClient
	logger *applog.Logger
}

// GetRedisDocumentStore returns a Redis-backed store, or nil when Redis is
// unreachable (the caller falls back to the in-memory store).
func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	client := getRedisClient(ctx)
	if client == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  client,
		logger: applog.NewLogger("DocumentStore"),
	}
}

func (s *RedisDocumentStore) SaveDocument(ctx context.Context, doc docmodel.Document) error {
	log := s.logger.With("traceId", ctx.Value(config.TraceIDKey), "document", doc.ID)

	existing, found := s.GetDocument(ctx, doc.ID)
	if err := checkTransition(existing, found, doc); err != nil {
		log.Error("Rejected status transition", "from", existing.Status, "to", doc.Status)
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, documentKey(doc.ID), data, config.RedisDocumentTTL); err != nil {
		return err
	}
	if err := s.store.SetAdd(ctx, documentSetKey, doc.ID); err != nil {
		return err
	}
	log.Debug("Saved document", "status", doc.Status)
	return nil
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, id string) (docmodel.Document, bool) {
	var doc docmodel.Document
	val, err := s.store.Get(ctx, documentKey(id))
	if s.store.IsNil(err) {
		return doc, false
	} else if err != nil {
		s.logger.Error("Error reading document", "document", id, "error", err)
		return doc, false
	}

	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		s.logger.Error("Corrupt document record", "document", id, "error", err)
		return doc, false
	}
	return doc, true
}

func (s *RedisDocumentStore) ListDocuments(ctx context.Context) ([]docmodel.Document, error) {
	ids, err := s.store.SetMembers(ctx, documentSetKey)
	if err != nil {
		return nil, err
	}

	docs := make([]docmodel.Document, 0, len(ids))
	for _, id := range ids {
		if doc, found := s.GetDocument(ctx, id); found {
			docs = append(docs, doc)
		}
	}
	sortNewestFirst(docs)
	return docs, nil
}

func (s *RedisDocumentStore) DeleteDocument(ctx context.Context, id string) error {
	if err := s.store.Del(ctx, documentKey(id)); err != nil {
		return err
	}
	return s.store.SetRemove(ctx, documentSetKey, id)
}

func sortNewestFirst(docs []docmodel.Document) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedTime.After(docs[j].UploadedTime)
	})
}

// TestDocumentStore builds a store around an injected client, for miniredis
// tests.
func TestDocumentStore(client *redis.Client) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  &redisClient{client: client},
		logger: applog.NewLogger("test redis"),
	}
}
