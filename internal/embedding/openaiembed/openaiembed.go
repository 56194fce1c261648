package openaiembed

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"docquery/internal/config"
	"docquery/internal/customHttpClient"
	"docquery/internal/domain/docmodel"
	"docquery/internal/embedding"
	"docquery/pkg/applog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *applog.Logger
var once sync.Once
var embedder *client

type client struct {
	api   openai.Client
	model string
}

// GetOpenAIEmbeddingClient returns the OpenAI embedder, or nil when no API
// key is configured.
func GetOpenAIEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = applog.NewLogger("openai_embedding")
		if apikey == "" {
			logger.Error("OpenAI API key is not set")
			return
		}
		embedder = &client{
			api:   openai.NewClient(option.WithAPIKey(apikey), option.WithHTTPClient(customHttpClient.PooledClient())),
			model: modelName,
		}
		logger.Info("OpenAI embedding client created")
	})

	if embedder == nil {
		return nil
	}
	return embedder
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:      c.model,
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions: openai.Int(int64(config.EmbeddingDimension)),
	})
	if err != nil {
		logger.Error("Error getting embeddings from OpenAI", "error", err)
		return nil, classify(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.New("embedding count does not match input count")
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		v := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			v[j] = float32(f)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &docmodel.ServiceTimeoutError{Service: "embedding", Err: err}
	}
	var apierr *openai.Error
	if errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests {
		return &docmodel.ServiceQuotaError{Service: "embedding", Err: err}
	}
	return err
}
