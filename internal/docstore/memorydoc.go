package docstore

import (
	"context"
	"sync"

	"docquery/internal/domain/docmodel"
	"docquery/pkg/applog"
)

// MemoryDocumentStore is the fallback when Redis is unavailable. Records do
// not survive a restart.
type MemoryDocumentStore struct {
	mu     sync.RWMutex
	docs   map[string]docmodel.Document
	logger *applog.Logger
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		docs:   make(map[string]docmodel.Document),
		logger: applog.NewLogger("MemoryDocumentStore"),
	}
}

func (s *MemoryDocumentStore) SaveDocument(_ context.Context, doc docmodel.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, found := s.docs[doc.ID]
	if err := checkTransition(existing, found, doc); err != nil {
		s.logger.Error("Rejected status transition", "document", doc.ID, "from", existing.Status, "to", doc.Status)
		return err
	}
	s.docs[doc.ID] = doc
	return nil
}

func (s *MemoryDocumentStore) GetDocument(_ context.Context, id string) (docmodel.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, found := s.docs[id]
	return doc, found
}

func (s *MemoryDocumentStore) ListDocuments(_ context.Context) ([]docmodel.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]docmodel.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sortNewestFirst(docs)
	return docs, nil
}

func (s *MemoryDocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}
