package ingest

import (
	"context"
	"errors"
	"os"
	"time"

	"docquery/internal/chunk"
	"docquery/internal/config"
	"docquery/internal/docstore"
	"docquery/internal/domain/docmodel"
	"docquery/internal/embedding"
	"docquery/internal/extract"
	"docquery/internal/index"
	"docquery/internal/metrics"
	"docquery/pkg/applog"
)

// Pipeline turns an uploaded file into a per-document vector index:
// extract -> chunk -> embed -> publish. Failures end the document in error
// status with a reason; a partial index is never published.
type Pipeline struct {
	Store     docstore.DocumentStore
	Extractor *extract.Extractor
	Embedder  embedding.Embedder
	Index     index.Store
	Chunking  chunk.Config
	logger    *applog.Logger
}

func NewPipeline(store docstore.DocumentStore, extractor *extract.Extractor, embedder embedding.Embedder, idx index.Store) *Pipeline {
	return &Pipeline{
		Store:     store,
		Extractor: extractor,
		Embedder:  embedder,
		Index:     idx,
		Chunking:  chunk.DefaultConfig(),
		logger:    applog.NewLogger("IngestPipeline"),
	}
}

// Process runs one job to its terminal status. The uploaded file is removed
// from disk afterwards regardless of outcome.
func (p *Pipeline) Process(ctx context.Context, job Job) {
	log := p.logger.With("traceId", job.TraceID, "document", job.DocumentID)
	defer func() {
		if err := os.Remove(job.FilePath); err != nil && !os.IsNotExist(err) {
			log.Warn("Could not remove uploaded file", "path", job.FilePath, "error", err)
		}
	}()

	doc, found := p.Store.GetDocument(ctx, job.DocumentID)
	if !found {
		log.Error("Job references unknown document, dropping")
		return
	}

	doc.Status = docmodel.StatusProcessing
	if err := p.Store.SaveDocument(ctx, doc); err != nil {
		log.Error("Could not mark document processing", "error", err)
		return
	}

	result, err := p.Extractor.Extract(ctx, job.FilePath)
	if err != nil {
		p.fail(ctx, log, doc, err)
		return
	}
	if result.UsedOCR {
		metrics.CaptureOCRFallback()
	}

	chunks := chunk.Split(doc.ID, result.Pages, p.Chunking)
	if len(chunks) == 0 {
		p.fail(ctx, log, doc, &docmodel.ExtractionError{Path: job.FilePath, Reason: "no text content extracted"})
		return
	}
	log.Debug("Document chunked", "chunks", len(chunks), "ocr", result.UsedOCR)

	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		p.fail(ctx, log, doc, err)
		return
	}

	if err := p.Index.BuildIndex(ctx, doc, chunks, vectors); err != nil {
		p.fail(ctx, log, doc, &docmodel.IndexError{DocumentID: doc.ID, Err: err})
		return
	}

	doc.Status = docmodel.StatusCompleted
	doc.ChunkCount = len(chunks)
	doc.OCRUsed = result.UsedOCR
	doc.ProcessedTime = time.Now().UTC()
	if err := p.Store.SaveDocument(ctx, doc); err != nil {
		log.Error("Could not mark document completed", "error", err)
		return
	}
	metrics.CaptureDocumentIngested(string(docmodel.StatusCompleted))
	log.Info("Document ingested", "chunks", len(chunks), "ocr", result.UsedOCR)
}

// embedChunks embeds in bounded batches so one oversized document cannot
// blow a single provider call.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []docmodel.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += config.EmbedBatchSize {
		end := start + config.EmbedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		callStart := time.Now()
		batch, err := p.Embedder.EmbedBatch(ctx, texts[start:end])
		metrics.CaptureExecutionMetrics("embedding", time.Since(callStart))
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (p *Pipeline) fail(ctx context.Context, log *applog.Logger, doc docmodel.Document, cause error) {
	doc.Status = docmodel.StatusError
	doc.ErrorReason = failureReason(cause)
	doc.ProcessedTime = time.Now().UTC()
	if err := p.Store.SaveDocument(ctx, doc); err != nil {
		log.Error("Could not record document failure", "error", err)
	}
	metrics.CaptureDocumentIngested(string(docmodel.StatusError))
	log.Error("Document ingestion failed", "reason", doc.ErrorReason, "error", cause)
}

// failureReason maps pipeline errors onto the short reasons shown in the
// document status line.
func failureReason(err error) string {
	var extractionErr *docmodel.ExtractionError
	if errors.As(err, &extractionErr) {
		if extractionErr.Reason != "" {
			return extractionErr.Reason
		}
		return "text extraction failed"
	}
	var timeoutErr *docmodel.ServiceTimeoutError
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Service + " call timed out"
	}
	var quotaErr *docmodel.ServiceQuotaError
	if errors.As(err, &quotaErr) {
		return quotaErr.Service + " quota exceeded"
	}
	var ocrErr *docmodel.OCRUnavailableError
	if errors.As(err, &ocrErr) {
		return "ocr service unavailable"
	}
	var indexErr *docmodel.IndexError
	if errors.As(err, &indexErr) {
		return "index build failed"
	}
	return err.Error()
}
