package memstore

import (
	"fmt"
	"sync"

	"docqa/internal/domain"
)

// Corpus is the in-memory document store. It grows monotonically for the
// lifetime of the process: documents are immutable once stored and there
// is no delete path. Writers are exclusive, readers run concurrently.
type Corpus struct {
	mu          sync.RWMutex
	docs        map[string]domain.Document
	order       []string
	passages    map[string]domain.Passage
	docPassages map[string][]string
	passageLen  int
}

func NewCorpus() *Corpus {
	return &Corpus{
		docs:        make(map[string]domain.Document),
		passages:    make(map[string]domain.Passage),
		docPassages: make(map[string][]string),
	}
}

// PutDocument stores a document and all of its passages in one exclusive
// section, so readers never observe a half-appended document.
func (s *Corpus) PutDocument(doc domain.Document, passages []domain.Passage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return fmt.Errorf("document already stored: %s", doc.ID)
	}

	s.docs[doc.ID] = doc
	s.order = append(s.order, doc.ID)
	for _, p := range passages {
		s.passages[p.ID] = p
		s.docPassages[doc.ID] = append(s.docPassages[doc.ID], p.ID)
		s.passageLen += len([]rune(p.Text))
	}
	return nil
}

func (s *Corpus) GetDocument(id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("document not found: %s", id)
	}
	return doc, nil
}

// ListDocuments returns documents in upload order.
func (s *Corpus) ListDocuments() ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.order))
	for _, id := range s.order {
		docs = append(docs, s.docs[id])
	}
	return docs, nil
}

func (s *Corpus) GetPassage(id string) (domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.passages[id]
	if !ok {
		return domain.Passage{}, fmt.Errorf("passage not found: %s", id)
	}
	return p, nil
}

func (s *Corpus) PassagesByDocument(docID string) ([]domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.docPassages[docID]
	passages := make([]domain.Passage, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.passages[id]; ok {
			passages = append(passages, p)
		}
	}
	return passages, nil
}

func (s *Corpus) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	avg := 0.0
	if len(s.passages) > 0 {
		avg = float64(s.passageLen) / float64(len(s.passages))
	}
	return domain.Stats{
		Documents:     len(s.docs),
		Passages:      len(s.passages),
		AvgPassageLen: avg,
	}
}
