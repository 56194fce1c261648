package queryengine_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"docquery/internal/docstore"
	"docquery/internal/domain/docmodel"
	"docquery/internal/index"
	"docquery/internal/queryengine"
)

type MockEmbedder struct {
	OnEmbed func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	return []float32{0.5, 0.5}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.5, 0.5}
	}
	return vectors, nil
}

type MockIndex struct {
	OnSearch func(ctx context.Context, documentID string, vector []float32, k int) ([]index.Hit, error)
}

func (m *MockIndex) BuildIndex(ctx context.Context, doc docmodel.Document, chunks []docmodel.Chunk, vectors [][]float32) error {
	return nil
}

func (m *MockIndex) Search(ctx context.Context, documentID string, vector []float32, k int) ([]index.Hit, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, documentID, vector, k)
	}
	return nil, nil
}

func (m *MockIndex) CountChunks(ctx context.Context, documentID string) (int, error) {
	return 0, nil
}

func (m *MockIndex) DropIndex(ctx context.Context, documentID string) error {
	return nil
}

type MockLLM struct {
	OnGenerate func(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, systemPrompt, userPrompt)
	}
	return "mocked answer", nil
}

func completedDoc(t *testing.T, store *docstore.MemoryDocumentStore, id string, filename string) {
	t.Helper()
	ctx := context.Background()
	doc := docmodel.Document{ID: id, Filename: filename, Status: docmodel.StatusQueued, UploadedTime: time.Now()}
	if err := store.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("seeding document: %v", err)
	}
	doc.Status = docmodel.StatusProcessing
	if err := store.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("seeding document: %v", err)
	}
	doc.Status = docmodel.StatusCompleted
	doc.ChunkCount = 3
	if err := store.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("seeding document: %v", err)
	}
}

func hit(docID string, sequence int, text string, pageStart int, score float32) index.Hit {
	return index.Hit{
		Chunk: docmodel.Chunk{
			DocumentID: docID,
			Sequence:   sequence,
			Text:       text,
			PageStart:  pageStart,
			PageEnd:    pageStart,
		},
		Score: score,
	}
}

func TestAnswerOne_HappyPath(t *testing.T) {
	store := docstore.NewMemoryDocumentStore()
	completedDoc(t, store, "doc-1", "report.pdf")

	var capturedPrompt string
	mockIndex := &MockIndex{
		OnSearch: func(ctx context.Context, documentID string, vector []float32, k int) ([]index.Hit, error) {
			// Retrieval rank deliberately out of document order
			return []index.Hit{
				hit("doc-1", 4, "later passage", 3, 0.91),
				hit("doc-1", 1, "earlier passage", 1, 0.88),
			}, nil
		},
	}
	mockLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
			capturedPrompt = userPrompt
			return "The revenue grew by twelve percent.", nil
		},
	}

	eng := queryengine.NewEngine(store, mockIndex, &MockEmbedder{}, mockLLM)
	result, err := eng.AnswerOne(context.Background(), "doc-1", "How did revenue change?")
	if err != nil {
		t.Fatalf("AnswerOne failed: %v", err)
	}

	if result.Answer != "The revenue grew by twelve percent." {
		t.Errorf("Unexpected answer: %q", result.Answer)
	}
	if result.Citation != "Page 1, Chunk 2; Page 3, Chunk 5" {
		t.Errorf("Unexpected citation: %q", result.Citation)
	}
	if result.Filename != "report.pdf" {
		t.Errorf("Unexpected filename: %q", result.Filename)
	}

	earlier := strings.Index(capturedPrompt, "earlier passage")
	later := strings.Index(capturedPrompt, "later passage")
	if earlier == -1 || later == -1 {
		t.Fatalf("Prompt missing retrieved chunks: %q", capturedPrompt)
	}
	if earlier > later {
		t.Error("Chunks not assembled in document order in the prompt")
	}
}

func TestAnswerOne_NoRelevantChunks(t *testing.T) {
	store := docstore.NewMemoryDocumentStore()
	completedDoc(t, store, "doc-1", "report.pdf")

	mockIndex := &MockIndex{
		OnSearch: func(ctx context.Context, documentID string, vector []float32, k int) ([]index.Hit, error) {
			return []index.Hit{hit("doc-1", 0, "unrelated", 1, 0.05)}, nil
		},
	}
	llmCalled := false
	mockLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
			llmCalled = true
			return "", nil
		},
	}

	eng := queryengine.NewEngine(store, mockIndex, &MockEmbedder{}, mockLLM)
	result, err := eng.AnswerOne(context.Background(), "doc-1", "Anything?")
	if err != nil {
		t.Fatalf("AnswerOne failed: %v", err)
	}

	if result.Answer != queryengine.NoAnswerText {
		t.Errorf("Unexpected answer: %q", result.Answer)
	}
	if result.Citation != "N/A" {
		t.Errorf("Unexpected citation: %q", result.Citation)
	}
	if llmCalled {
		t.Error("Generation should be skipped when nothing clears the similarity floor")
	}
}

func TestAnswerOne_DocumentNotReady(t *testing.T) {
	store := docstore.NewMemoryDocumentStore()
	doc := docmodel.Document{ID: "doc-q", Status: docmodel.StatusQueued, UploadedTime: time.Now()}
	if err := store.SaveDocument(context.Background(), doc); err != nil {
		t.Fatalf("seeding document: %v", err)
	}

	eng := queryengine.NewEngine(store, &MockIndex{}, &MockEmbedder{}, &MockLLM{})

	_, err := eng.AnswerOne(context.Background(), "doc-q", "Anything?")
	var notReady *docmodel.DocumentNotReadyError
	if !errors.As(err, &notReady) {
		t.Fatalf("Expected DocumentNotReadyError, got %v", err)
	}

	_, err = eng.AnswerOne(context.Background(), "missing", "Anything?")
	if !errors.Is(err, queryengine.ErrDocumentNotFound) {
		t.Fatalf("Expected ErrDocumentNotFound, got %v", err)
	}
}

func TestAnswerAll_MixedOutcomes(t *testing.T) {
	store := docstore.NewMemoryDocumentStore()
	completedDoc(t, store, "doc-a", "a.txt")
	completedDoc(t, store, "doc-b", "b.txt")

	mockIndex := &MockIndex{
		OnSearch: func(ctx context.Context, documentID string, vector []float32, k int) ([]index.Hit, error) {
			if documentID == "doc-b" {
				return nil, errors.New("collection lost")
			}
			return []index.Hit{hit(documentID, 0, "relevant text", 1, 0.8)}, nil
		},
	}

	eng := queryengine.NewEngine(store, mockIndex, &MockEmbedder{}, &MockLLM{})
	results, failed, err := eng.AnswerAll(context.Background(), []string{"doc-a", "doc-b", "doc-x"}, "Question?")
	if err != nil {
		t.Fatalf("AnswerAll failed: %v", err)
	}

	if len(results) != 1 || results[0].DocumentID != "doc-a" {
		t.Fatalf("Expected one result for doc-a, got %+v", results)
	}
	if len(failed) != 2 {
		t.Fatalf("Expected two failures, got %+v", failed)
	}
	if failed[0].DocumentID != "doc-x" {
		t.Errorf("Expected missing document failure first, got %+v", failed[0])
	}
	if failed[1].DocumentID != "doc-b" {
		t.Errorf("Expected search failure for doc-b, got %+v", failed[1])
	}
}

func TestAnswerAll_EmptySelectionUsesCompletedDocs(t *testing.T) {
	store := docstore.NewMemoryDocumentStore()
	completedDoc(t, store, "doc-a", "a.txt")
	queued := docmodel.Document{ID: "doc-q", Status: docmodel.StatusQueued, UploadedTime: time.Now()}
	if err := store.SaveDocument(context.Background(), queued); err != nil {
		t.Fatalf("seeding document: %v", err)
	}

	mockIndex := &MockIndex{
		OnSearch: func(ctx context.Context, documentID string, vector []float32, k int) ([]index.Hit, error) {
			return []index.Hit{hit(documentID, 0, "text", 1, 0.7)}, nil
		},
	}

	eng := queryengine.NewEngine(store, mockIndex, &MockEmbedder{}, &MockLLM{})
	results, failed, err := eng.AnswerAll(context.Background(), nil, "Question?")
	if err != nil {
		t.Fatalf("AnswerAll failed: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("Queued document should be skipped, not failed: %+v", failed)
	}
	if len(results) != 1 || results[0].DocumentID != "doc-a" {
		t.Fatalf("Expected only the completed document, got %+v", results)
	}
}
