package theme_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docquery/internal/domain/querymodel"
	"docquery/internal/theme"
)

type MockLLM struct {
	OnGenerate func(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, systemPrompt, userPrompt)
	}
	return "", nil
}

var twoResults = []querymodel.QueryResult{
	{DocumentID: "doc-a", Filename: "a.pdf", Answer: "Revenue grew.", Citation: "Page 1, Chunk 2"},
	{DocumentID: "doc-b", Filename: "b.pdf", Answer: "Revenue also grew.", Citation: "Page 4, Chunk 1"},
}

func TestSynthesize_NoResults(t *testing.T) {
	s := theme.NewSynthesizer(&MockLLM{})
	got := s.Synthesize(context.Background(), "Anything?", nil)
	if got.Answer != theme.NoDocumentsAnswer {
		t.Errorf("Unexpected answer: %q", got.Answer)
	}
	if got.Themes != nil {
		t.Errorf("Expected no themes, got %+v", got.Themes)
	}
}

func TestSynthesize_SingleResultShortcut(t *testing.T) {
	llmCalled := false
	s := theme.NewSynthesizer(&MockLLM{
		OnGenerate: func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
			llmCalled = true
			return "", nil
		},
	})

	got := s.Synthesize(context.Background(), "Anything?", twoResults[:1])
	if llmCalled {
		t.Error("Single result should not trigger a generation call")
	}
	if got.Answer != "Revenue grew." {
		t.Errorf("Unexpected answer: %q", got.Answer)
	}
	if len(got.Themes) != 1 || got.Themes[0].Name != "Single Document Analysis" {
		t.Fatalf("Unexpected themes: %+v", got.Themes)
	}
	if len(got.Themes[0].Citations) != 1 || got.Themes[0].Citations[0] != "Page 1, Chunk 2" {
		t.Errorf("Citation not carried into theme: %+v", got.Themes[0].Citations)
	}
}

func TestSynthesize_ThemesAcrossDocuments(t *testing.T) {
	s := theme.NewSynthesizer(&MockLLM{
		OnGenerate: func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
			if !strings.Contains(userPrompt, "doc-a") || !strings.Contains(userPrompt, "doc-b") {
				t.Errorf("Prompt missing per-document answers: %q", userPrompt)
			}
			return "```json\n" +
				`{"themes":[{"name":"Revenue Growth","description":"Both reports show growth.","documents":["doc-a","doc-b","doc-fake"]}],"answer":"Revenue grew across both reports."}` +
				"\n```", nil
		},
	})

	got := s.Synthesize(context.Background(), "How did revenue change?", twoResults)
	if got.Answer != "Revenue grew across both reports." {
		t.Errorf("Unexpected answer: %q", got.Answer)
	}
	if len(got.Themes) != 1 {
		t.Fatalf("Expected one theme, got %+v", got.Themes)
	}
	th := got.Themes[0]
	if th.Name != "Revenue Growth" {
		t.Errorf("Unexpected theme name: %q", th.Name)
	}
	if len(th.SupportingDocuments) != 2 {
		t.Errorf("Fabricated document id not dropped: %+v", th.SupportingDocuments)
	}
	if len(th.Citations) != 2 || th.Citations[0] != "Page 1, Chunk 2" {
		t.Errorf("Citations not carried from inputs: %+v", th.Citations)
	}
}

func TestSynthesize_UnparsableFallsBack(t *testing.T) {
	s := theme.NewSynthesizer(&MockLLM{
		OnGenerate: func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
			return "I could not produce JSON, sorry.", nil
		},
	})

	got := s.Synthesize(context.Background(), "Anything?", twoResults)
	if got.Themes != nil {
		t.Errorf("Expected no themes on parse failure, got %+v", got.Themes)
	}
	if !strings.Contains(got.Answer, "a.pdf: Revenue grew.") || !strings.Contains(got.Answer, "b.pdf: Revenue also grew.") {
		t.Errorf("Fallback answer missing per-document content: %q", got.Answer)
	}
}

func TestSynthesize_GenerationErrorFallsBack(t *testing.T) {
	s := theme.NewSynthesizer(&MockLLM{
		OnGenerate: func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
			return "", errors.New("service down")
		},
	})

	got := s.Synthesize(context.Background(), "Anything?", twoResults)
	if got.Themes != nil {
		t.Errorf("Expected no themes on generation failure, got %+v", got.Themes)
	}
	if got.Answer == "" {
		t.Error("Fallback answer empty")
	}
}
