package ocr

import "context"

// Client extracts plain text from a rendered page or image. Implementations
// wrap an external OCR service and must honor the caller's context deadline.
type Client interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}
