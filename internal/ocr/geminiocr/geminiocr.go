package geminiocr

import (
	"context"
	"errors"
	"strings"
	"sync"

	"docquery/internal/config"
	"docquery/internal/domain/docmodel"
	"docquery/internal/ocr"
	"docquery/pkg/applog"
	"google.golang.org/genai"
)

const ocrInstruction = "Extract all text from this document exactly as it appears. " +
	"Separate pages with a single form feed character. Output only the extracted text, nothing else."

var logger *applog.Logger
var once sync.Once
var ocrClient *client

type client struct {
	genAi *genai.Client
	model string
}

// GetGeminiOCRClient returns the Gemini-vision backed OCR client, or nil if
// initialization failed.
func GetGeminiOCRClient(ctx context.Context, modelName string, apikey string) ocr.Client {
	once.Do(func() {
		logger = applog.NewLogger("gemini_ocr")
		newGeminiOCR(ctx, modelName, apikey)
	})

	if ocrClient == nil {
		return nil
	}
	return &client{genAi: ocrClient.genAi, model: ocrClient.model}
}

func newGeminiOCR(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini OCR client:", "error", err)
		return
	}
	ocrClient = &client{genAi: c, model: modelName}
	logger.Info("Gemini OCR client created")
	go closeClient(ctx, ocrClient)
}

func closeClient(ctx context.Context, c *client) {
	<-ctx.Done()
	logger.Info("Closing Gemini OCR client")
	c.genAi = nil
	c.model = ""
}

func (c *client) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TraceIDKey))
	log.Debug("running OCR", "mimeType", mimeType, "bytes", len(data))

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			{Text: ocrInstruction},
		},
	}}

	temperature := float32(0)
	result, err := c.genAi.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &docmodel.ServiceTimeoutError{Service: "ocr", Err: err}
		}
		return "", &docmodel.OCRUnavailableError{Err: err}
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", &docmodel.OCRUnavailableError{Err: errors.New("empty ocr response")}
	}
	return text, nil
}
