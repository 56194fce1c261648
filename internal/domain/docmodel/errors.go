package docmodel

import "fmt"

// ExtractionError marks a file that could not be read: corrupt, empty or an
// unsupported format. Fatal for the document, recorded in its status.
type ExtractionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed for %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed for %s: %s", e.Path, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IndexError marks an embedding/index-build failure. Partial indexes are
// never published; the document ends in error status.
type IndexError struct {
	DocumentID string
	Err        error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index build failed for document %s: %v", e.DocumentID, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// DocumentNotReadyError is returned when a query targets a document whose
// status is not completed.
type DocumentNotReadyError struct {
	DocumentID string
	Status     Status
}

func (e *DocumentNotReadyError) Error() string {
	return fmt.Sprintf("document %s is not ready for querying (status %s)", e.DocumentID, e.Status)
}

// ServiceTimeoutError wraps a timed-out call to an external service. The
// caller may retry; the core never retries automatically.
type ServiceTimeoutError struct {
	Service string
	Err     error
}

func (e *ServiceTimeoutError) Error() string {
	return fmt.Sprintf("%s call timed out: %v", e.Service, e.Err)
}

func (e *ServiceTimeoutError) Unwrap() error { return e.Err }

// ServiceQuotaError wraps a quota/rate-limit rejection from an external
// service.
type ServiceQuotaError struct {
	Service string
	Err     error
}

func (e *ServiceQuotaError) Error() string {
	return fmt.Sprintf("%s quota exceeded: %v", e.Service, e.Err)
}

func (e *ServiceQuotaError) Unwrap() error { return e.Err }

// OCRUnavailableError reports that the OCR service could not process an
// image.
type OCRUnavailableError struct {
	Err error
}

func (e *OCRUnavailableError) Error() string {
	return fmt.Sprintf("ocr unavailable: %v", e.Err)
}

func (e *OCRUnavailableError) Unwrap() error { return e.Err }

// SynthesisParseError reports unparsable structured output from the
// generation service during theme synthesis. It is recovered locally via
// the plain-summary fallback and never surfaces to callers.
type SynthesisParseError struct {
	Err error
}

func (e *SynthesisParseError) Error() string {
	return fmt.Sprintf("theme synthesis output not parsable: %v", e.Err)
}

func (e *SynthesisParseError) Unwrap() error { return e.Err }
