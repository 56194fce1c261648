package llm

import "context"

// Provider generates text from a system instruction and a user prompt.
// Implementations run at temperature 0 so repeated queries keep their
// citations stable.
type Provider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
