package docstore

import (
	"context"
	"errors"

	"docquery/internal/domain/docmodel"
)

// ErrStatusRegression is returned when a write would move a document
// backwards through its status machine.
var ErrStatusRegression = errors.New("document status transitions are monotonic")

// DocumentStore is the process-wide status store. Updates are atomic per
// document; the ingestion pipeline is the single writer for any one
// document, the web layer only reads.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc docmodel.Document) error
	GetDocument(ctx context.Context, id string) (docmodel.Document, bool)
	ListDocuments(ctx context.Context) ([]docmodel.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// checkTransition guards monotonicity against the previously stored record.
func checkTransition(existing docmodel.Document, found bool, next docmodel.Document) error {
	if !found || existing.Status == next.Status {
		return nil
	}
	if !existing.CanTransition(next.Status) {
		return ErrStatusRegression
	}
	return nil
}
