package ingest

import (
	"time"

	"docquery/internal/docstore"
)

// Job is one queued ingestion request. The uploaded file already sits on
// disk; the worker that picks the job up owns the file from then on.
type Job struct {
	DocumentID string
	FilePath   string
	Filename   string
	TraceID    string
	EnqueuedAt time.Time
}

// Service bundles the job queue with the document store so the web layer and
// the worker pool share one view of pending work.
type Service struct {
	JobChannel        chan Job
	RequestCount      int64
	DispatcherChannel chan bool
	Store             docstore.DocumentStore
}

type ServiceConfig struct {
	JobChannel        chan Job
	RequestCount      int64
	DispatcherChannel chan bool
	Store             docstore.DocumentStore
}

func InitIngestService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		Store:             cfg.Store,
	}
}
