package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks bad caller-supplied parameters. Never retried.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrEmptyDocument is a non-fatal warning: the document had no text
	// and was not indexed. Processing of other documents continues.
	ErrEmptyDocument = errors.New("document contains no text")

	// ErrEmbeddingService marks a transient embedding backend failure.
	ErrEmbeddingService = errors.New("embedding service failure")

	// ErrGenerationService marks a transient generation backend failure.
	ErrGenerationService = errors.New("generation service failure")

	// ErrTimeout marks an external call that exceeded its budget.
	ErrTimeout = errors.New("external call timed out")
)

// DimensionMismatchError reports a vector whose dimensionality disagrees
// with the corpus. It usually means the embedding model changed underneath
// an existing index; writes halt until the fault is cleared.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: want %d, got %d", e.Want, e.Got)
}
