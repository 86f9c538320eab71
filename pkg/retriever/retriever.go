package retriever

import (
	"context"
	"sort"
	"sync"

	"pdfrag/internal/models"
	"pdfrag/internal/types"
)

// identityKeyLength is how much of a hit's content is used to decide
// that two hits are the same underlying chunk. A prefix rather than
// the full text: chunks sharing their first 100 characters collapse.
const identityKeyLength = 100

// Retriever runs one nearest-neighbor search per query variation and
// merges the results.
type Retriever struct {
	embedder types.Embedder
	store    types.VectorStore
}

func New(embedder types.Embedder, store types.VectorStore) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
	}
}

// Retrieve fans out one search per variation, then deduplicates,
// ranks, and truncates to k.
func (r *Retriever) Retrieve(ctx context.Context, variations []models.QueryVariation, k int) []models.RetrievalHit {
	return Merge(r.FanOut(ctx, variations, k), k)
}

// FanOut searches every variation concurrently. Each hit is tagged
// with the variation that produced it. A failed search contributes an
// empty result list; it never aborts the batch. All searches settle
// before this returns.
func (r *Retriever) FanOut(ctx context.Context, variations []models.QueryVariation, k int) []models.RetrievalHit {
	results := make([][]models.RetrievalHit, len(variations))

	var wg sync.WaitGroup
	for i, variation := range variations {
		wg.Add(1)
		go func(i int, variation models.QueryVariation) {
			defer wg.Done()

			hits, err := r.searchOne(ctx, variation, k)
			if err != nil {
				return
			}
			results[i] = hits
		}(i, variation)
	}
	wg.Wait()

	var flat []models.RetrievalHit
	for _, hits := range results {
		flat = append(flat, hits...)
	}

	return flat
}

func (r *Retriever) searchOne(ctx context.Context, variation models.QueryVariation, k int) ([]models.RetrievalHit, error) {
	embeddings, err := r.embedder.CreateEmbedding(ctx, []string{variation.Text})
	if err != nil {
		return nil, err
	}

	var vector []float32
	for _, emb := range embeddings {
		vector = append(vector, emb...)
	}

	hits, err := r.store.Search(ctx, vector, k)
	if err != nil {
		return nil, err
	}

	for i := range hits {
		hits[i].Variation = variation
	}

	return hits, nil
}

// Merge collapses hits with the same identity key, keeping the
// highest-scoring occurrence (ties keep whichever arrived first), then
// sorts by score descending and truncates to k.
func Merge(hits []models.RetrievalHit, k int) []models.RetrievalHit {
	seen := make(map[string]int)
	merged := make([]models.RetrievalHit, 0, len(hits))

	for _, hit := range hits {
		key := identityKey(hit.Content)
		if idx, ok := seen[key]; ok {
			if hit.Score > merged[idx].Score {
				merged[idx] = hit
			}
			continue
		}
		seen[key] = len(merged)
		merged = append(merged, hit)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if k > 0 && len(merged) > k {
		merged = merged[:k]
	}

	return merged
}

func identityKey(content string) string {
	runes := []rune(content)
	if len(runes) > identityKeyLength {
		runes = runes[:identityKeyLength]
	}
	return string(runes)
}
