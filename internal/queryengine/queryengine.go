package queryengine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"docquery/internal/config"
	"docquery/internal/docstore"
	"docquery/internal/domain/docmodel"
	"docquery/internal/domain/querymodel"
	"docquery/internal/embedding"
	"docquery/internal/index"
	"docquery/internal/llm"
	"docquery/internal/metrics"
	"docquery/pkg/applog"
)

// ErrDocumentNotFound is returned when a query names a document ID the store
// has never seen.
var ErrDocumentNotFound = errors.New("document not found")

// NoAnswerText is the fixed answer when retrieval finds nothing relevant.
const NoAnswerText = "No relevant information found in this document."

const noCitation = "N/A"

const answerSystemPrompt = "You are a precise document analyst. Answer the question using only the " +
	"provided context excerpts. Each excerpt is preceded by its citation in square brackets. " +
	"If the context does not contain the answer, say so plainly. Do not use outside knowledge."

// Engine answers one question against per-document indexes. Every document
// is retrieved and answered independently; one failing document never aborts
// the others.
type Engine interface {
	AnswerOne(ctx context.Context, documentID string, question string) (querymodel.QueryResult, error)
	AnswerAll(ctx context.Context, documentIDs []string, question string) ([]querymodel.QueryResult, []querymodel.FailedDocument, error)
}

type engine struct {
	store    docstore.DocumentStore
	index    index.Store
	embedder embedding.Embedder
	provider llm.Provider
	topK     int
	minScore float32
	logger   *applog.Logger
}

func NewEngine(store docstore.DocumentStore, idx index.Store, embedder embedding.Embedder, provider llm.Provider) Engine {
	return &engine{
		store:    store,
		index:    idx,
		embedder: embedder,
		provider: provider,
		topK:     config.TopKChunks,
		minScore: config.MinSimilarity,
		logger:   applog.NewLogger("QueryEngine"),
	}
}

func (e *engine) AnswerOne(ctx context.Context, documentID string, question string) (querymodel.QueryResult, error) {
	doc, err := e.readyDocument(ctx, documentID)
	if err != nil {
		return querymodel.QueryResult{}, err
	}

	vector, err := e.embedQuestion(ctx, question)
	if err != nil {
		return querymodel.QueryResult{}, err
	}
	return e.answerWithVector(ctx, doc, question, vector)
}

// AnswerAll fans the question out over the selected documents in parallel.
// An empty selection means every completed document. Results keep the
// selection order; per-document failures are reported, not fatal.
func (e *engine) AnswerAll(ctx context.Context, documentIDs []string, question string) ([]querymodel.QueryResult, []querymodel.FailedDocument, error) {
	docs, failed, err := e.resolveDocuments(ctx, documentIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(docs) == 0 {
		return nil, failed, nil
	}

	// One embedding call serves every document.
	vector, err := e.embedQuestion(ctx, question)
	if err != nil {
		return nil, nil, err
	}

	results := make([]*querymodel.QueryResult, len(docs))
	failures := make([]*querymodel.FailedDocument, len(docs))
	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(slot int, doc docmodel.Document) {
			defer wg.Done()
			result, err := e.answerWithVector(ctx, doc, question, vector)
			if err != nil {
				e.logger.Error("Per-document query failed", "document", doc.ID, "error", err)
				failures[slot] = &querymodel.FailedDocument{DocumentID: doc.ID, Reason: err.Error()}
				return
			}
			results[slot] = &result
		}(i, doc)
	}
	wg.Wait()

	answered := make([]querymodel.QueryResult, 0, len(docs))
	for _, r := range results {
		if r != nil {
			answered = append(answered, *r)
		}
	}
	for _, f := range failures {
		if f != nil {
			failed = append(failed, *f)
		}
	}
	return answered, failed, nil
}

// resolveDocuments maps the selection to queryable documents. Explicitly
// named documents that are missing or not ready become failure entries; an
// empty selection silently takes every completed document.
func (e *engine) resolveDocuments(ctx context.Context, documentIDs []string) ([]docmodel.Document, []querymodel.FailedDocument, error) {
	if len(documentIDs) == 0 {
		all, err := e.store.ListDocuments(ctx)
		if err != nil {
			return nil, nil, err
		}
		docs := make([]docmodel.Document, 0, len(all))
		for _, doc := range all {
			if doc.Status == docmodel.StatusCompleted {
				docs = append(docs, doc)
			}
		}
		return docs, nil, nil
	}

	var docs []docmodel.Document
	var failed []querymodel.FailedDocument
	for _, id := range documentIDs {
		doc, err := e.readyDocument(ctx, id)
		if err != nil {
			failed = append(failed, querymodel.FailedDocument{DocumentID: id, Reason: err.Error()})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, failed, nil
}

func (e *engine) readyDocument(ctx context.Context, documentID string) (docmodel.Document, error) {
	doc, found := e.store.GetDocument(ctx, documentID)
	if !found {
		return docmodel.Document{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
	}
	if doc.Status != docmodel.StatusCompleted {
		return docmodel.Document{}, &docmodel.DocumentNotReadyError{DocumentID: doc.ID, Status: doc.Status}
	}
	return doc, nil
}

func (e *engine) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	start := time.Now()
	vector, err := e.embedder.Embed(ctx, question)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return nil, err
	}
	return vector, nil
}

func (e *engine) answerWithVector(ctx context.Context, doc docmodel.Document, question string, vector []float32) (querymodel.QueryResult, error) {
	hits, err := e.index.Search(ctx, doc.ID, vector, e.topK)
	if err != nil {
		return querymodel.QueryResult{}, err
	}

	selected := hits[:0]
	for _, hit := range hits {
		if hit.Score >= e.minScore {
			selected = append(selected, hit)
		}
	}
	if len(selected) == 0 {
		return querymodel.QueryResult{
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			Answer:     NoAnswerText,
			Citation:   noCitation,
		}, nil
	}

	// Chunks go into the prompt in document order so overlapping neighbours
	// read naturally, regardless of their retrieval rank.
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].Chunk.Sequence < selected[j].Chunk.Sequence
	})

	var prompt strings.Builder
	prompt.WriteString("Question: ")
	prompt.WriteString(question)
	prompt.WriteString("\n\nContext from ")
	prompt.WriteString(doc.Filename)
	prompt.WriteString(":\n")
	citations := make([]string, 0, len(selected))
	for _, hit := range selected {
		citation := hit.Chunk.Citation()
		citations = append(citations, citation)
		prompt.WriteString("\n[")
		prompt.WriteString(citation)
		prompt.WriteString("]\n")
		prompt.WriteString(hit.Chunk.Text)
		prompt.WriteString("\n")
	}

	start := time.Now()
	answer, err := e.provider.Generate(ctx, answerSystemPrompt, prompt.String())
	metrics.CaptureExecutionMetrics("generation", time.Since(start))
	if err != nil {
		return querymodel.QueryResult{}, err
	}

	return querymodel.QueryResult{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Answer:     strings.TrimSpace(answer),
		Citation:   strings.Join(citations, "; "),
	}, nil
}
