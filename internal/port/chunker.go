package port

import "docqa/internal/domain"

type Chunker interface {
	Chunk(doc domain.Document) ([]domain.Passage, error)
}
