package port

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorIndex stores passage vectors and answers nearest-neighbor queries.
// It is append-only: the base system has no delete or update path.
type VectorIndex interface {
	// Add appends a vector with a back-reference to its passage.
	Add(vector []float32, passageID string) error

	// Search returns up to k hits ordered by descending cosine similarity,
	// ties broken by ascending insertion order.
	Search(query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimension returns the fixed vector dimension.
	Dimension() int
}

// VectorHit is a single nearest-neighbor result.
type VectorHit struct {
	PassageID string
	Score     float64
}
