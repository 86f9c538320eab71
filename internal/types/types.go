package types

import (
	"context"

	"pdfrag/internal/models"
)

// Core interfaces. Components receive these instead of constructing
// their own clients, so tests can substitute fakes.

// Extractor turns a source file into plain text.
type Extractor interface {
	Extract(path string) (string, error)
}

// Splitter breaks a document into indexable chunks.
type Splitter interface {
	Split(doc models.Document) ([]models.Chunk, error)
}

// Embedder maps texts to fixed-dimension vectors.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// VectorStore is the vector index: a collection of (id, vector, payload)
// points searchable by cosine similarity.
type VectorStore interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, limit int) ([]models.RetrievalHit, error)
	Count(ctx context.Context) (int64, error)
	Close()
}
