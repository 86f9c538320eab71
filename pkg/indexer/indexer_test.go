package indexer_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfrag/internal/models"
	"pdfrag/pkg/indexer"
	"pdfrag/pkg/processor"
)

type fakeExtractor struct {
	text string
	err  error
}

func (e fakeExtractor) Extract(path string) (string, error) {
	return e.text, e.err
}

type countingEmbedder struct {
	mu         sync.Mutex
	batchSizes []int
	err        error
}

func (e *countingEmbedder) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.mu.Lock()
	e.batchSizes = append(e.batchSizes, len(texts))
	e.mu.Unlock()

	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1}
	}
	return vectors, nil
}

type recordingStore struct {
	mu      sync.Mutex
	upserts [][]models.Chunk
	err     error
}

func (s *recordingStore) EnsureCollection(ctx context.Context) error { return nil }
func (s *recordingStore) Close()                                     {}

func (s *recordingStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, batch := range s.upserts {
		n += int64(len(batch))
	}
	return n, nil
}

func (s *recordingStore) Upsert(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if s.err != nil {
		return s.err
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("length mismatch")
	}
	s.mu.Lock()
	s.upserts = append(s.upserts, chunks)
	s.mu.Unlock()
	return nil
}

func (s *recordingStore) Search(ctx context.Context, vector []float32, limit int) ([]models.RetrievalHit, error) {
	return nil, nil
}

func newIndexer(cfg indexer.IndexerConfig, ext fakeExtractor, emb *countingEmbedder, store *recordingStore) *indexer.Indexer {
	proc := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 50, ChunkOverlap: 0})
	return indexer.NewWithConfig(cfg, ext, &proc, emb, store)
}

func TestIndex_BatchesSequentially(t *testing.T) {
	emb := &countingEmbedder{}
	store := &recordingStore{}

	// Enough text for well over one batch of chunks at size 50.
	text := strings.Repeat("Some words to fill a chunk with content. ", 60)
	ix := newIndexer(indexer.IndexerConfig{BatchSize: 20, RateLimit: 1000}, fakeExtractor{text: text}, emb, store)

	stored, err := ix.IndexFile(context.Background(), "big.pdf")

	require.NoError(t, err)
	count, _ := store.Count(context.Background())
	assert.Equal(t, int64(stored), count)

	// Every batch but the last is exactly the batch size, and there is
	// one upsert per embedding batch.
	require.NotEmpty(t, emb.batchSizes)
	for _, size := range emb.batchSizes[:len(emb.batchSizes)-1] {
		assert.Equal(t, 20, size)
	}
	assert.LessOrEqual(t, emb.batchSizes[len(emb.batchSizes)-1], 20)
	assert.Len(t, store.upserts, len(emb.batchSizes))
}

func TestIndex_ProgressCallback(t *testing.T) {
	emb := &countingEmbedder{}
	store := &recordingStore{}

	var progress []int
	cfg := indexer.IndexerConfig{
		BatchSize: 20,
		RateLimit: 1000,
		OnProgress: func(stored int) {
			progress = append(progress, stored)
		},
	}

	text := strings.Repeat("More filler text for chunking purposes. ", 60)
	ix := newIndexer(cfg, fakeExtractor{text: text}, emb, store)

	stored, err := ix.IndexFile(context.Background(), "doc.pdf")

	require.NoError(t, err)
	require.NotEmpty(t, progress)
	assert.Equal(t, stored, progress[len(progress)-1])
	for i := 1; i < len(progress); i++ {
		assert.Greater(t, progress[i], progress[i-1])
	}
}

func TestIndex_EmbeddingFailureIsFatal(t *testing.T) {
	emb := &countingEmbedder{err: fmt.Errorf("embedding service down")}
	store := &recordingStore{}

	ix := newIndexer(indexer.IndexerConfig{BatchSize: 20, RateLimit: 1000}, fakeExtractor{text: "some text"}, emb, store)

	_, err := ix.IndexFile(context.Background(), "doc.pdf")

	require.Error(t, err)
	assert.Empty(t, store.upserts)
}

func TestIndex_ExtractionFailureIsFatal(t *testing.T) {
	emb := &countingEmbedder{}
	store := &recordingStore{}

	ix := newIndexer(indexer.IndexerConfig{}, fakeExtractor{err: fmt.Errorf("unreadable pdf")}, emb, store)

	_, err := ix.IndexFile(context.Background(), "broken.pdf")

	require.Error(t, err)
}

func TestIndex_EmptyDocumentIsAnError(t *testing.T) {
	emb := &countingEmbedder{}
	store := &recordingStore{}

	ix := newIndexer(indexer.IndexerConfig{}, fakeExtractor{}, emb, store)

	_, err := ix.Index(context.Background(), models.Document{ID: "empty", Content: ""})

	require.Error(t, err)
}
