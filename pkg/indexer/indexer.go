package indexer

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"pdfrag/internal/models"
	"pdfrag/internal/types"
)

type IndexerConfig struct {
	BatchSize  int
	RateLimit  float64 // embedding calls per second
	OnProgress func(stored int)
}

// Indexer runs the extract -> split -> embed -> upsert pipeline.
// Chunks are embedded and stored in sequential batches so that only
// one batch of outbound embedding calls is in flight at a time.
type Indexer struct {
	config    IndexerConfig
	extractor types.Extractor
	splitter  types.Splitter
	embedder  types.Embedder
	store     types.VectorStore
	limiter   *rate.Limiter
}

func NewWithConfig(config IndexerConfig, extractor types.Extractor, splitter types.Splitter, embedder types.Embedder, store types.VectorStore) *Indexer {
	if config.BatchSize == 0 {
		config.BatchSize = 20
	}
	if config.RateLimit == 0 {
		config.RateLimit = 10.0
	}

	return &Indexer{
		config:    config,
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		limiter:   rate.NewLimiter(rate.Limit(config.RateLimit), config.BatchSize),
	}
}

// Index extracts, chunks, embeds, and stores one document. Returns
// the number of chunks stored. Any failure here is fatal to the run;
// there is no fallback for a partially indexed corpus.
func (ix *Indexer) Index(ctx context.Context, doc models.Document) (int, error) {
	chunks, err := ix.splitter.Split(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to split document: %v", err)
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document %s produced no chunks", doc.ID)
	}

	if err := ix.store.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	stored := 0
	for start := 0; start < len(chunks); start += ix.config.BatchSize {
		end := start + ix.config.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		vectors, err := ix.embedBatch(ctx, batch)
		if err != nil {
			return stored, err
		}

		if err := ix.store.Upsert(ctx, batch, vectors); err != nil {
			return stored, fmt.Errorf("failed to store batch: %v", err)
		}

		stored += len(batch)
		if ix.config.OnProgress != nil {
			ix.config.OnProgress(stored)
		}
	}

	return stored, nil
}

// IndexFile extracts a file through the configured extractor first.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (int, error) {
	text, err := ix.extractor.Extract(path)
	if err != nil {
		return 0, err
	}

	doc := models.Document{
		ID:      path,
		Source:  path,
		Content: text,
	}

	return ix.Index(ctx, doc)
}

func (ix *Indexer) embedBatch(ctx context.Context, batch []models.Chunk) ([][]float32, error) {
	if err := ix.limiter.WaitN(ctx, len(batch)); err != nil {
		return nil, fmt.Errorf("rate limiter: %v", err)
	}

	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	vectors, err := ix.embedder.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed batch: %v", err)
	}
	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
	}

	return vectors, nil
}
