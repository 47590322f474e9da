package retriever

import (
	"context"
	"fmt"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// Semantic retrieves passages by embedding the question and querying the
// vector index. Results come back in index order, untouched; re-ranking is
// a separate, optional stage.
type Semantic struct {
	embedder port.Embedder
	index    port.VectorIndex
	store    port.DocumentStore
}

func NewSemantic(embedder port.Embedder, index port.VectorIndex, store port.DocumentStore) *Semantic {
	return &Semantic{
		embedder: embedder,
		index:    index,
		store:    store,
	}
}

func (r *Semantic) Retrieve(ctx context.Context, question string, k int) ([]domain.ScoredPassage, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", domain.ErrConfiguration, k)
	}

	// An empty corpus is a valid state, not an error; the synthesizer
	// handles "no relevant passages" explicitly.
	if r.index.Len() == 0 {
		return nil, nil
	}

	vectors, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query vector, got %d", domain.ErrEmbeddingService, len(vectors))
	}

	hits, err := r.index.Search(vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]domain.ScoredPassage, 0, len(hits))
	for _, hit := range hits {
		passage, err := r.store.GetPassage(hit.PassageID)
		if err != nil {
			continue
		}
		results = append(results, domain.ScoredPassage{
			Passage: passage,
			Score:   hit.Score,
		})
	}
	return results, nil
}
