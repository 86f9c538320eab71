package advisor

import (
	"context"
	"fmt"
	"strings"

	"pdfrag/internal/types"
)

// ModelInfo describes one entry in the static model catalog.
type ModelInfo struct {
	Name        string
	Provider    string
	BestFor     string
	Pricing     string
	Limitations string
}

// DefaultCatalog is the built-in model list the advisor chooses from.
var DefaultCatalog = []ModelInfo{
	{
		Name:        "gpt-4o",
		Provider:    "OpenAI",
		BestFor:     "complex reasoning, tool use, multimodal input",
		Pricing:     "$2.50 / 1M input tokens, $10 / 1M output tokens",
		Limitations: "higher latency and cost than small models",
	},
	{
		Name:        "gpt-4o-mini",
		Provider:    "OpenAI",
		BestFor:     "high-volume chat, classification, summarization",
		Pricing:     "$0.15 / 1M input tokens, $0.60 / 1M output tokens",
		Limitations: "weaker on multi-step reasoning",
	},
	{
		Name:        "claude-3-5-sonnet",
		Provider:    "Anthropic",
		BestFor:     "long documents, careful writing, coding",
		Pricing:     "$3 / 1M input tokens, $15 / 1M output tokens",
		Limitations: "no built-in image generation",
	},
	{
		Name:        "gemini-1.5-pro",
		Provider:    "Google",
		BestFor:     "very long context windows, video and audio input",
		Pricing:     "$1.25 / 1M input tokens, $5 / 1M output tokens",
		Limitations: "rate limits on the free tier",
	},
	{
		Name:        "gemini-1.5-flash",
		Provider:    "Google",
		BestFor:     "fast, cheap responses at scale",
		Pricing:     "$0.075 / 1M input tokens, $0.30 / 1M output tokens",
		Limitations: "less capable on hard reasoning tasks",
	},
	{
		Name:        "llama-3.1-70b",
		Provider:    "Meta (open weights)",
		BestFor:     "self-hosting, fine-tuning, data privacy",
		Pricing:     "free weights; infrastructure cost only",
		Limitations: "needs significant GPU resources to run well",
	},
}

// Advisor asks a generative model to pick a catalog entry for a
// free-text need.
type Advisor struct {
	catalog   []ModelInfo
	generator types.Generator
}

func New(generator types.Generator, catalog []ModelInfo) (*Advisor, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("model catalog is empty")
	}

	return &Advisor{
		catalog:   catalog,
		generator: generator,
	}, nil
}

// Recommend returns the generated recommendation text for the query.
func (a *Advisor) Recommend(ctx context.Context, query string) (string, error) {
	response, err := a.generator.Generate(ctx, a.BuildPrompt(query))
	if err != nil {
		return "", fmt.Errorf("recommendation failed: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// BuildPrompt renders the catalog and the user's need into a single
// selection prompt.
func (a *Advisor) BuildPrompt(query string) string {
	var b strings.Builder

	b.WriteString("You help developers choose an AI model. Pick the single best model ")
	b.WriteString("from the list below for the user's need, name it, and explain the choice briefly.\n\nModels:\n")

	for _, m := range a.catalog {
		b.WriteString(fmt.Sprintf("- %s (%s)\n  Best for: %s\n  Pricing: %s\n  Limitations: %s\n",
			m.Name, m.Provider, m.BestFor, m.Pricing, m.Limitations))
	}

	b.WriteString(fmt.Sprintf("\nUser need: %s\n", query))

	return b.String()
}
