package ingest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"docquery/internal/docstore"
	"docquery/internal/domain/docmodel"
	"docquery/internal/extract"
	"docquery/internal/index"
	"docquery/internal/ingest"
)

type MockEmbedder struct {
	OnEmbed      func(ctx context.Context, text string) ([]float32, error)
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	return []float32{0.1, 0.2}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2}
	}
	return vectors, nil
}

type MockIndex struct {
	OnBuildIndex func(ctx context.Context, doc docmodel.Document, chunks []docmodel.Chunk, vectors [][]float32) error
	Built        map[string][]docmodel.Chunk
}

func (m *MockIndex) BuildIndex(ctx context.Context, doc docmodel.Document, chunks []docmodel.Chunk, vectors [][]float32) error {
	if m.OnBuildIndex != nil {
		return m.OnBuildIndex(ctx, doc, chunks, vectors)
	}
	if m.Built == nil {
		m.Built = make(map[string][]docmodel.Chunk)
	}
	m.Built[doc.ID] = chunks
	return nil
}

func (m *MockIndex) Search(ctx context.Context, documentID string, vector []float32, k int) ([]index.Hit, error) {
	return nil, nil
}

func (m *MockIndex) CountChunks(ctx context.Context, documentID string) (int, error) {
	return len(m.Built[documentID]), nil
}

func (m *MockIndex) DropIndex(ctx context.Context, documentID string) error {
	delete(m.Built, documentID)
	return nil
}

func writeUpload(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing upload: %v", err)
	}
	return path
}

func queueDocument(t *testing.T, store *docstore.MemoryDocumentStore, id string, filename string) docmodel.Document {
	t.Helper()
	doc := docmodel.Document{
		ID:           id,
		Filename:     filename,
		Status:       docmodel.StatusQueued,
		UploadedTime: time.Now().UTC(),
	}
	if err := store.SaveDocument(context.Background(), doc); err != nil {
		t.Fatalf("seeding document: %v", err)
	}
	return doc
}

func TestPipeline_ProcessTextFile(t *testing.T) {
	store := docstore.NewMemoryDocumentStore()
	mockIndex := &MockIndex{}
	pipeline := ingest.NewPipeline(store, extract.NewExtractor(nil), &MockEmbedder{}, mockIndex)

	content := strings.Repeat("The quarterly revenue grew by twelve percent. ", 40)
	path := writeUpload(t, "report.txt", content)
	queueDocument(t, store, "doc-1", "report.txt")

	pipeline.Process(context.Background(), ingest.Job{
		DocumentID: "doc-1",
		FilePath:   path,
		Filename:   "report.txt",
		TraceID:    "trace-1",
	})

	doc, found := store.GetDocument(context.Background(), "doc-1")
	if !found {
		t.Fatal("Document vanished from store")
	}
	if doc.Status != docmodel.StatusCompleted {
		t.Fatalf("Expected completed, got %s (%s)", doc.Status, doc.ErrorReason)
	}
	if doc.ChunkCount == 0 || doc.ChunkCount != len(mockIndex.Built["doc-1"]) {
		t.Errorf("Chunk count mismatch: doc says %d, index has %d", doc.ChunkCount, len(mockIndex.Built["doc-1"]))
	}
	if doc.OCRUsed {
		t.Error("Plain text ingestion should not report OCR usage")
	}
	if doc.ProcessedTime.IsZero() {
		t.Error("ProcessedTime not set on completion")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Uploaded file not cleaned up after ingestion")
	}
}

func TestPipeline_UnsupportedFileType(t *testing.T) {
	store := docstore.NewMemoryDocumentStore()
	pipeline := ingest.NewPipeline(store, extract.NewExtractor(nil), &MockEmbedder{}, &MockIndex{})

	path := writeUpload(t, "archive.zip", "not really a zip")
	queueDocument(t, store, "doc-2", "archive.zip")

	pipeline.Process(context.Background(), ingest.Job{DocumentID: "doc-2", FilePath: path})

	doc, _ := store.GetDocument(context.Background(), "doc-2")
	if doc.Status != docmodel.StatusError {
		t.Fatalf("Expected error status, got %s", doc.Status)
	}
	if !strings.Contains(doc.ErrorReason, "unsupported file type") {
		t.Errorf("Unexpected error reason: %q", doc.ErrorReason)
	}
}

func TestPipeline_EmptyFile(t *testing.T) {
	store := docstore.NewMemoryDocumentStore()
	pipeline := ingest.NewPipeline(store, extract.NewExtractor(nil), &MockEmbedder{}, &MockIndex{})

	path := writeUpload(t, "empty.txt", "   \n  ")
	queueDocument(t, store, "doc-3", "empty.txt")

	pipeline.Process(context.Background(), ingest.Job{DocumentID: "doc-3", FilePath: path})

	doc, _ := store.GetDocument(context.Background(), "doc-3")
	if doc.Status != docmodel.StatusError {
		t.Fatalf("Expected error status, got %s", doc.Status)
	}
	if !strings.Contains(doc.ErrorReason, "no text content") {
		t.Errorf("Unexpected error reason: %q", doc.ErrorReason)
	}
}

func TestPipeline_EmbeddingFailureLeavesNoIndex(t *testing.T) {
	store := docstore.NewMemoryDocumentStore()
	mockIndex := &MockIndex{}
	embedder := &MockEmbedder{
		OnEmbedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, &docmodel.ServiceQuotaError{Service: "embedding", Err: errors.New("429")}
		},
	}
	pipeline := ingest.NewPipeline(store, extract.NewExtractor(nil), embedder, mockIndex)

	path := writeUpload(t, "doc.txt", strings.Repeat("some meaningful sentence here. ", 30))
	queueDocument(t, store, "doc-4", "doc.txt")

	pipeline.Process(context.Background(), ingest.Job{DocumentID: "doc-4", FilePath: path})

	doc, _ := store.GetDocument(context.Background(), "doc-4")
	if doc.Status != docmodel.StatusError {
		t.Fatalf("Expected error status, got %s", doc.Status)
	}
	if !strings.Contains(doc.ErrorReason, "quota") {
		t.Errorf("Unexpected error reason: %q", doc.ErrorReason)
	}
	if len(mockIndex.Built) != 0 {
		t.Error("Index published despite embedding failure")
	}
}

func TestPipeline_IndexFailure(t *testing.T) {
	store := docstore.NewMemoryDocumentStore()
	mockIndex := &MockIndex{
		OnBuildIndex: func(ctx context.Context, doc docmodel.Document, chunks []docmodel.Chunk, vectors [][]float32) error {
			return errors.New("qdrant unreachable")
		},
	}
	pipeline := ingest.NewPipeline(store, extract.NewExtractor(nil), &MockEmbedder{}, mockIndex)

	path := writeUpload(t, "doc.txt", strings.Repeat("another meaningful sentence. ", 30))
	queueDocument(t, store, "doc-5", "doc.txt")

	pipeline.Process(context.Background(), ingest.Job{DocumentID: "doc-5", FilePath: path})

	doc, _ := store.GetDocument(context.Background(), "doc-5")
	if doc.Status != docmodel.StatusError {
		t.Fatalf("Expected error status, got %s", doc.Status)
	}
	if doc.ErrorReason != "index build failed" {
		t.Errorf("Unexpected error reason: %q", doc.ErrorReason)
	}
}
