package docmodel

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Document is the durable record for one uploaded file. It is created at
// upload time and mutated only by the ingestion pipeline.
type Document struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	FileType      string    `json:"file_type"`
	Status        Status    `json:"status"`
	ErrorReason   string    `json:"error_reason,omitempty"`
	OCRUsed       bool      `json:"ocr_used"`
	ChunkCount    int       `json:"chunk_count"`
	UploadedTime  time.Time `json:"uploaded_time"`
	ProcessedTime time.Time `json:"processed_time,omitempty"`
}

// CanTransition reports whether moving to next respects the monotonic
// queued -> processing -> {completed | error} machine. Terminal states
// accept no further transitions.
func (d Document) CanTransition(next Status) bool {
	switch d.Status {
	case StatusQueued:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusError
	default:
		return false
	}
}

// StatusString is the human-readable status line rendered by the web layer.
func (d Document) StatusString() string {
	if d.Status == StatusError {
		return fmt.Sprintf("error: %s", d.ErrorReason)
	}
	return string(d.Status)
}

// Chunk is the unit of retrieval: a bounded text segment with positional
// provenance. Immutable once created.
type Chunk struct {
	DocumentID string `json:"document_id"`
	Sequence   int    `json:"sequence"`
	Text       string `json:"text"`
	PageStart  int    `json:"page_start"`
	PageEnd    int    `json:"page_end"`
}

// Citation renders the chunk's provenance without re-reading the source file.
// Chunks are numbered from 1 in citations, matching the page numbering.
func (c Chunk) Citation() string {
	if c.PageEnd > c.PageStart {
		return fmt.Sprintf("Pages %d-%d, Chunk %d", c.PageStart, c.PageEnd, c.Sequence+1)
	}
	return fmt.Sprintf("Page %d, Chunk %d", c.PageStart, c.Sequence+1)
}
