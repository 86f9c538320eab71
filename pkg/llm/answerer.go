package llm

import (
	"context"
	"fmt"
	"strings"

	"pdfrag/internal/models"
	"pdfrag/internal/types"
)

const (
	// InsufficientContext is returned when retrieval produced nothing
	// to answer from.
	InsufficientContext = "I don't have enough information in the indexed documents to answer that."

	// Apology is returned when answer generation itself fails.
	Apology = "Sorry, I couldn't generate an answer right now. Please try again."
)

// Answerer turns a query and its retrieved context into a
// natural-language answer.
type Answerer struct {
	generator types.Generator
}

func NewAnswerer(generator types.Generator) *Answerer {
	return &Answerer{generator: generator}
}

// Answer builds the context prompt and asks the generator. Generation
// failures degrade to a fixed apology; an empty context short-circuits
// to the insufficient-information response.
func (a *Answerer) Answer(ctx context.Context, query string, hits []models.RetrievalHit) string {
	if len(hits) == 0 {
		return InsufficientContext
	}

	response, err := a.generator.Generate(ctx, a.BuildPrompt(query, hits))
	if err != nil {
		return Apology
	}

	return strings.TrimSpace(response)
}

// BuildPrompt embeds every retrieved text, labeled with the variation
// that found it, followed by the original question.
func (a *Answerer) BuildPrompt(query string, hits []models.RetrievalHit) string {
	var b strings.Builder

	b.WriteString("Answer the question using only the context below. ")
	b.WriteString("If the context does not contain the answer, say you don't have enough information.\n\nContext:\n")

	for i, hit := range hits {
		label := hit.Variation.Text
		if label == "" {
			label = "unknown"
		}
		b.WriteString(fmt.Sprintf("[%d] (found via: %s)\n%s\n\n", i+1, label, hit.Content))
	}

	b.WriteString(fmt.Sprintf("Question: %s\nAnswer:", query))

	return b.String()
}
