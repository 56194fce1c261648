package openaillm

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"docquery/internal/config"
	"docquery/internal/customHttpClient"
	"docquery/internal/domain/docmodel"
	"docquery/internal/llm"
	"docquery/pkg/applog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	api   openai.Client
	model string
}

var logger *applog.Logger
var openaiClient *llmClient
var once sync.Once

// GetOpenAIClient returns the OpenAI generation provider, or nil when no API
// key is configured.
func GetOpenAIClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = applog.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("OpenAI API key is not set")
			return
		}
		openaiClient = &llmClient{
			api:   openai.NewClient(option.WithAPIKey(apikey), option.WithHTTPClient(customHttpClient.PooledClient())),
			model: modelName,
		}
		logger.Info("OpenAI client created")
	})

	if openaiClient == nil {
		return nil
	}
	return openaiClient
}

func (c *llmClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TraceIDKey))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(float64(config.ModelTemperature)),
	})
	if err != nil {
		log.Error("OpenAI generation failed", "error", err)
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &docmodel.ServiceTimeoutError{Service: "generation", Err: err}
	}
	var apierr *openai.Error
	if errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests {
		return &docmodel.ServiceQuotaError{Service: "generation", Err: err}
	}
	return err
}
