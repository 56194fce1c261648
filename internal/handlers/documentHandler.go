package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"docquery/internal/config"
	"docquery/internal/domain/docmodel"
	"docquery/internal/index"
	"docquery/internal/ingest"
	"docquery/internal/metrics"
	"docquery/internal/queryengine"
	"docquery/internal/theme"
	"docquery/pkg/applog"
)

var (
	handlerInstance *DocumentHandler //private singleton
	once            sync.Once
	logDH           *applog.Logger
)

type DocumentHandler struct {
	service     *ingest.Service
	engine      queryengine.Engine
	synthesizer *theme.Synthesizer
	index       index.Store
}

func InitDocumentHandler(ingestService *ingest.Service, engine queryengine.Engine, synthesizer *theme.Synthesizer, indexStore index.Store) {
	once.Do(func() {
		handlerInstance = &DocumentHandler{
			service:     ingestService,
			engine:      engine,
			synthesizer: synthesizer,
			index:       indexStore,
		}

		logDH = applog.NewLogger("DocumentHandler")
		logRH = applog.NewLogger("RequestHandler")
		logDH.Info("Starting document handler")
	})
}

type newDocumentData struct {
	id       string
	filename string
	fileType string
	tempPath string
	traceId  string
}

// EnqueueDocument records the document as queued and hands it to the worker
// pool. The send blocks when the queue is full, which throttles uploads
// instead of dropping them.
func EnqueueDocument(newDoc newDocumentData) error {
	log := logDH.With("traceId", newDoc.traceId, "document", newDoc.id)
	log.Info("Queueing new document", "filename", newDoc.filename)

	ctx := context.WithValue(context.Background(), config.TraceIDKey, newDoc.traceId)
	doc := docmodel.Document{
		ID:           newDoc.id,
		Filename:     newDoc.filename,
		FileType:     newDoc.fileType,
		Status:       docmodel.StatusQueued,
		UploadedTime: time.Now().UTC(),
	}
	if err := handlerInstance.service.Store.SaveDocument(ctx, doc); err != nil {
		return err
	}

	//metrics
	metrics.IncrementJobsInQueue()

	handlerInstance.service.JobChannel <- ingest.Job{
		DocumentID: newDoc.id,
		FilePath:   newDoc.tempPath,
		Filename:   newDoc.filename,
		TraceID:    newDoc.traceId,
		EnqueuedAt: time.Now().UTC(),
	}
	log.Info("Queued document")

	// Ingestion involves batch embedding calls that can take a while, so
	// every upload asks the dispatcher for another worker. The pool caps
	// growth and idle workers retire on their own.
	atomic.AddInt64(&handlerInstance.service.RequestCount, 1)
	metrics.StartDispatcherSignalCount() //metrics
	handlerInstance.service.DispatcherChannel <- true
	return nil
}

func GetDocumentStatus(id string, traceId string) (docmodel.Document, bool) {
	ctxC := context.WithValue(context.Background(), config.TraceIDKey, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.Store.GetDocument(ctxC, id)
	}
	return docmodel.Document{}, false
}

func ListAllDocuments(ctx context.Context) ([]docmodel.Document, error) {
	return handlerInstance.service.Store.ListDocuments(ctx)
}

// DeleteDocument drops the vector index first; an orphaned record is
// recoverable, an orphaned collection is not.
func DeleteDocument(ctx context.Context, id string) error {
	if err := handlerInstance.index.DropIndex(ctx, id); err != nil {
		return err
	}
	return handlerInstance.service.Store.DeleteDocument(ctx, id)
}
