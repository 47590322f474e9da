package port

import "docqa/internal/domain"

// DocumentStore holds the corpus of documents and their passages.
// The corpus grows monotonically and lives only for the process lifetime.
type DocumentStore interface {
	// PutDocument stores a document together with all of its passages.
	PutDocument(doc domain.Document, passages []domain.Passage) error

	GetDocument(id string) (domain.Document, error)

	// ListDocuments returns documents in upload order.
	ListDocuments() ([]domain.Document, error)

	GetPassage(id string) (domain.Passage, error)

	PassagesByDocument(docID string) ([]domain.Passage, error)

	Stats() domain.Stats
}
