package worker

import (
	"context"
	"sync/atomic"
	"time"

	"docquery/internal/config"
	"docquery/internal/ingest"
	"docquery/internal/metrics"
)

func executeJob(job ingest.Job) {
	start := time.Now()
	status := "unknown"
	defer func() {
		metrics.CaptureIngestMetrics(status, time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TraceIDKey, job.TraceID)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobTimeout)
	defer cancel()

	logger.Debug("Processing job", "document", job.DocumentID, "traceId", job.TraceID)
	_processor.Process(ctx, job)

	if doc, found := _ingestService.Store.GetDocument(ctx, job.DocumentID); found {
		status = string(doc.Status)
	}
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}
