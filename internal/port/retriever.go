package port

import (
	"context"

	"docqa/internal/domain"
)

// Retriever finds the passages most relevant to a question.
type Retriever interface {
	// Retrieve returns up to k passages ordered by descending relevance.
	// An empty corpus yields an empty result, not an error.
	Retrieve(ctx context.Context, question string, k int) ([]domain.ScoredPassage, error)
}

// Reranker reorders an over-fetched candidate set. It is an optional
// pipeline stage; retrieval is correct without it.
type Reranker interface {
	Rerank(candidates []domain.ScoredPassage, k int) []domain.ScoredPassage
}
