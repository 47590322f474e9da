package chunker

import (
	"fmt"

	"docqa/internal/domain"
)

// SentenceChunker packs whole sentences into passages of at most maxChars
// runes, with a configurable number of sentences repeated between
// neighboring passages. Sentences are never split; a single sentence longer
// than maxChars becomes its own oversized passage.
type SentenceChunker struct {
	maxChars         int
	overlapSentences int
}

func NewSentenceChunker(maxChars, overlapSentences int) (*SentenceChunker, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: max chars must be positive, got %d", domain.ErrConfiguration, maxChars)
	}
	if overlapSentences < 0 {
		return nil, fmt.Errorf("%w: sentence overlap must not be negative, got %d", domain.ErrConfiguration, overlapSentences)
	}
	return &SentenceChunker{maxChars: maxChars, overlapSentences: overlapSentences}, nil
}

type span struct {
	start int
	end   int
}

func (c *SentenceChunker) Chunk(doc domain.Document) ([]domain.Passage, error) {
	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil, nil
	}

	sentences := splitSentences(runes)

	var passages []domain.Passage
	i := 0
	for i < len(sentences) {
		j := i
		length := 0
		for j < len(sentences) {
			sentLen := sentences[j].end - sentences[j].start
			if j > i && length+sentLen > c.maxChars {
				break
			}
			length += sentLen
			j++
		}

		start := sentences[i].start
		end := sentences[j-1].end
		passages = append(passages, domain.Passage{
			ID:    passageID(doc.ID, len(passages)),
			DocID: doc.ID,
			Seq:   len(passages),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})

		if j == len(sentences) {
			break
		}

		next := j - c.overlapSentences
		if next <= i {
			next = i + 1
		}
		i = next
	}

	return passages, nil
}

// splitSentences returns contiguous rune spans, one per sentence. A
// sentence ends after a run of terminators; inter-sentence whitespace is
// attached to the following span so the union of spans covers every rune.
func splitSentences(runes []rune) []span {
	var spans []span
	start := 0
	i := 0
	for i < len(runes) {
		if isTerminator(runes[i]) {
			for i < len(runes) && isTerminator(runes[i]) {
				i++
			}
			spans = append(spans, span{start: start, end: i})
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		spans = append(spans, span{start: start, end: len(runes)})
	}
	return spans
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
