package googleembed

import (
	"context"
	"errors"
	"sync"
	"time"

	"docquery/internal/config"
	"docquery/internal/domain/docmodel"
	"docquery/internal/embedding"
	"docquery/pkg/applog"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *applog.Logger
var once sync.Once
var embeddingClient *client
var dimension = config.EmbeddingDimension

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
		return
	}
	embeddingClient = &client{genAi: c, model: modelName}
	logger.Info("Google Embedding client created")
	go closeClient(ctx, embeddingClient)
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

// GetGoogleEmbeddingClient returns the Gemini embedder, or nil if
// initialization failed.
func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = applog.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TraceIDKey))

	result, err := c.doCall(ctx, genai.Text(text))
	if err != nil {
		log.Error("Error getting embedding from Google", "error", err)
		return nil, classify(err)
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TraceIDKey))

	res, err := c.doCall(ctx, getContent(texts))
	if err != nil || res == nil {
		if isQuotaHit(err) {
			log.Debug("Rate limit hit, retrying in 5 seconds")
			time.Sleep(5 * time.Second)
			res, err = c.doCall(ctx, getContent(texts))
		}
		if err != nil {
			log.Error("Error getting batch embeddings from Google", "error", err)
			return nil, classify(err)
		}
		if res == nil {
			return nil, errors.New("empty embedding response")
		}
	}

	vectors := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		vectors = append(vectors, r.Values)
	}
	if len(vectors) != len(texts) {
		return nil, errors.New("embedding count does not match input count")
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             "RETRIEVAL_DOCUMENT",
	})
}

func getContent(texts []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: t}},
		})
	}
	return contents
}

func isQuotaHit(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &docmodel.ServiceTimeoutError{Service: "embedding", Err: err}
	}
	if isQuotaHit(err) {
		return &docmodel.ServiceQuotaError{Service: "embedding", Err: err}
	}
	return err
}
