package embedding

import "context"

// Embedder converts text into fixed-length vectors via an external service.
// Batch calls are preferred during ingestion; failure is per-call, never
// partial.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
