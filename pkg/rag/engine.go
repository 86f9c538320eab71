package rag

import (
	"context"

	"pdfrag/internal/models"
	"pdfrag/internal/types"
	"pdfrag/pkg/expander"
	"pdfrag/pkg/llm"
	"pdfrag/pkg/retriever"
)

type EngineConfig struct {
	TopK int
}

// Engine ties the QA pipeline together: expand the query, fan out the
// searches, merge the hits, generate the answer.
type Engine struct {
	config    EngineConfig
	expander  *expander.Expander
	retriever *retriever.Retriever
	answerer  *llm.Answerer
}

func NewEngine(config EngineConfig, generator types.Generator, embedder types.Embedder, store types.VectorStore) *Engine {
	if config.TopK == 0 {
		config.TopK = 4
	}

	return &Engine{
		config:    config,
		expander:  expander.New(generator),
		retriever: retriever.New(embedder, store),
		answerer:  llm.NewAnswerer(generator),
	}
}

// Ask answers one query. Failures inside a single query degrade to
// fallback responses; Ask itself never returns an error.
func (e *Engine) Ask(ctx context.Context, query string) Answer {
	variations := e.expander.Expand(ctx, query)
	hits := e.retriever.Retrieve(ctx, variations, e.config.TopK)
	text := e.answerer.Answer(ctx, query, hits)

	return Answer{
		Text:       text,
		Hits:       hits,
		Variations: variations,
	}
}

// Answer is the result of one QA round: the generated text plus the
// retrieval trace that produced it.
type Answer struct {
	Text       string
	Hits       []models.RetrievalHit
	Variations []models.QueryVariation
}
