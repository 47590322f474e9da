package domain

import "time"

// Document is an uploaded text document. Documents are immutable once
// stored; uploading the same content again creates a new document.
type Document struct {
	ID         string
	Name       string
	Text       string
	UploadedAt time.Time
}

// Passage is a bounded span of a document's text treated as one
// retrievable unit. Start and End are rune offsets into the source text,
// End exclusive.
type Passage struct {
	ID    string
	DocID string
	Seq   int
	Start int
	End   int
	Text  string
}

// ScoredPassage pairs a passage with its similarity score for a query.
type ScoredPassage struct {
	Passage Passage
	Score   float64
}

// Citation identifies a passage that contributed to an answer.
type Citation struct {
	PassageID string  `json:"passage_id"`
	DocID     string  `json:"document_id"`
	DocName   string  `json:"document_name"`
	Score     float64 `json:"score"`
}

// Answer is the synthesized response to a question, with provenance.
type Answer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
}

// Turn is one question/answer exchange in a chat session.
type Turn struct {
	Question string
	Answer   string
}

// Stats summarizes the corpus.
type Stats struct {
	Documents     int
	Passages      int
	AvgPassageLen float64
}
