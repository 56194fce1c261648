package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docquery/internal/domain/docmodel"
	"docquery/internal/domain/querymodel"
	"docquery/internal/llm"
	"docquery/internal/metrics"
	"docquery/pkg/applog"
)

// NoDocumentsAnswer is the synthesized answer when no document produced a
// usable result for the query.
const NoDocumentsAnswer = "No documents were processed for this query."

const singleDocumentTheme = "Single Document Analysis"

const synthesisSystemPrompt = "You are a research synthesizer. You receive per-document answers to one " +
	"question and identify the common themes across them. Respond with JSON only, no prose and no " +
	"markdown fences, in exactly this shape: " +
	`{"themes":[{"name":"...","description":"...","documents":["doc id","..."]}],"answer":"..."}` +
	" Every document id you list must come from the input. The answer field is a consolidated " +
	"answer to the question across all documents."

// Synthesis is the cross-document half of a query response: the clustered
// themes plus one consolidated answer.
type Synthesis struct {
	Themes []querymodel.Theme `json:"themes"`
	Answer string             `json:"answer"`
}

type synthesisOutput struct {
	Themes []struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Documents   []string `json:"documents"`
	} `json:"themes"`
	Answer string `json:"answer"`
}

// Synthesizer clusters per-document answers into themes with one generation
// call. Generation or parse failures degrade to a plain concatenated answer
// rather than failing the query.
type Synthesizer struct {
	provider llm.Provider
	logger   *applog.Logger
}

func NewSynthesizer(provider llm.Provider) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		logger:   applog.NewLogger("ThemeSynthesizer"),
	}
}

func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []querymodel.QueryResult) Synthesis {
	if len(results) == 0 {
		return Synthesis{Answer: NoDocumentsAnswer}
	}
	if len(results) == 1 {
		return singleResult(results[0])
	}

	start := time.Now()
	raw, err := s.provider.Generate(ctx, synthesisSystemPrompt, synthesisPrompt(question, results))
	metrics.CaptureExecutionMetrics("synthesis", time.Since(start))
	if err != nil {
		s.logger.Error("Theme generation failed, falling back to plain answer", "error", err)
		return fallback(results)
	}

	parsed, err := parseSynthesis(raw)
	if err != nil {
		s.logger.Error("Theme output unparsable, falling back to plain answer", "error", &docmodel.SynthesisParseError{Err: err})
		return fallback(results)
	}

	return s.assemble(parsed, results)
}

func synthesisPrompt(question string, results []querymodel.QueryResult) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nPer-document answers:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "\nDocument ID: %s\nFilename: %s\nAnswer: %s\nCitations: %s\n", r.DocumentID, r.Filename, r.Answer, r.Citation)
	}
	return b.String()
}

// parseSynthesis tolerates markdown fences around the JSON body, a habit of
// generation models even when told not to.
func parseSynthesis(raw string) (synthesisOutput, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var out synthesisOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return synthesisOutput{}, err
	}
	if out.Answer == "" && len(out.Themes) == 0 {
		return synthesisOutput{}, fmt.Errorf("empty synthesis output")
	}
	return out, nil
}

// assemble grounds the model output against the actual inputs: document IDs
// the model invented are dropped, citations come from the per-document
// results rather than the model.
func (s *Synthesizer) assemble(parsed synthesisOutput, results []querymodel.QueryResult) Synthesis {
	citationByDoc := make(map[string]string, len(results))
	for _, r := range results {
		citationByDoc[r.DocumentID] = r.Citation
	}

	themes := make([]querymodel.Theme, 0, len(parsed.Themes))
	for _, t := range parsed.Themes {
		var supporting []string
		var citations []string
		for _, id := range t.Documents {
			citation, known := citationByDoc[id]
			if !known {
				s.logger.Warn("Dropping fabricated document id from theme", "theme", t.Name, "document", id)
				continue
			}
			supporting = append(supporting, id)
			if citation != "" && citation != "N/A" {
				citations = append(citations, citation)
			}
		}
		if len(supporting) == 0 {
			continue
		}
		themes = append(themes, querymodel.Theme{
			Name:                t.Name,
			Description:         t.Description,
			SupportingDocuments: supporting,
			Citations:           citations,
		})
	}

	answer := strings.TrimSpace(parsed.Answer)
	if answer == "" {
		return fallbackWithThemes(results, themes)
	}
	return Synthesis{Themes: themes, Answer: answer}
}

func singleResult(result querymodel.QueryResult) Synthesis {
	var citations []string
	if result.Citation != "" && result.Citation != "N/A" {
		citations = []string{result.Citation}
	}
	return Synthesis{
		Themes: []querymodel.Theme{{
			Name:                singleDocumentTheme,
			Description:         "Only one document produced an answer for this query.",
			SupportingDocuments: []string{result.DocumentID},
			Citations:           citations,
		}},
		Answer: result.Answer,
	}
}

func fallback(results []querymodel.QueryResult) Synthesis {
	return fallbackWithThemes(results, nil)
}

func fallbackWithThemes(results []querymodel.QueryResult, themes []querymodel.Theme) Synthesis {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Filename, r.Answer))
	}
	return Synthesis{Themes: themes, Answer: strings.Join(parts, "\n\n")}
}
