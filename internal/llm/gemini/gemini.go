package gemini

import (
	"context"
	"errors"
	"sync"

	"docquery/internal/config"
	"docquery/internal/domain/docmodel"
	"docquery/internal/llm"
	"docquery/pkg/applog"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type llmClient struct {
	client *genai.Client
	model  string
}

var logger *applog.Logger
var geminiClient *llmClient
var once sync.Once

// GetGeminiClient returns the Gemini generation provider, or nil if
// initialization failed.
func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = applog.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, model: geminiClient.model}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, model: modelName}
	logger.Info("Gemini client created")
	go closeClient(ctx, geminiClient)
}

func (c *llmClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TraceIDKey))

	temperature := config.ModelTemperature
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		Temperature: &temperature,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), contentConfig)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", classify(err)
	}
	return result.Text(), nil
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &docmodel.ServiceTimeoutError{Service: "generation", Err: err}
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return &docmodel.ServiceQuotaError{Service: "generation", Err: err}
	}
	return err
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.model = ""
}
