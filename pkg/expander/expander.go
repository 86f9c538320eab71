package expander

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pdfrag/internal/models"
	"pdfrag/internal/types"
)

const paraphraseTemplate = `Rewrite the following question in 3 different ways:
1. Focusing on technical details
2. Focusing on practical use
3. Focusing on the underlying concept

Question: %s

Respond with a JSON array of exactly 3 strings and nothing else.`

// Fallback phrasings used when the paraphrase response cannot be
// parsed. Pure string substitution so this path can never fail.
var fallbackTemplates = []string{
	"What are the technical details of: %s",
	"How is this used in practice: %s",
	"Explain the concept behind: %s",
}

// Expander produces query variations for multi-query retrieval.
type Expander struct {
	generator types.Generator
}

func New(generator types.Generator) *Expander {
	return &Expander{generator: generator}
}

// Expand returns the variations to search with. The original query is
// always the first element. If the paraphrase call fails the original
// is returned alone; if only parsing fails, templated variations are
// substituted.
func (e *Expander) Expand(ctx context.Context, query string) []models.QueryVariation {
	variations := []models.QueryVariation{
		{Text: query, Origin: models.OriginOriginal},
	}

	response, err := e.generator.Generate(ctx, fmt.Sprintf(paraphraseTemplate, query))
	if err != nil {
		return variations
	}

	paraphrases, err := parseParaphrases(response)
	if err != nil {
		for _, tmpl := range fallbackTemplates {
			variations = append(variations, models.QueryVariation{
				Text:   fmt.Sprintf(tmpl, query),
				Origin: models.OriginTemplate,
			})
		}
		return variations
	}

	for _, p := range paraphrases {
		variations = append(variations, models.QueryVariation{
			Text:   p,
			Origin: models.OriginParaphrase,
		})
	}

	return variations
}

// parseParaphrases expects a JSON array of exactly 3 non-empty
// strings, optionally wrapped in markdown code fences.
func parseParaphrases(response string) ([]string, error) {
	cleaned := stripCodeFences(response)

	var paraphrases []string
	if err := json.Unmarshal([]byte(cleaned), &paraphrases); err != nil {
		return nil, fmt.Errorf("failed to parse paraphrases: %v", err)
	}

	if len(paraphrases) != 3 {
		return nil, fmt.Errorf("expected 3 paraphrases, got %d", len(paraphrases))
	}

	for _, p := range paraphrases {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("empty paraphrase in response")
		}
	}

	return paraphrases, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
