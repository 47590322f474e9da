package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unicode"

	"docqa/internal/domain"
)

// WindowChunker slides a fixed-size rune window across document text,
// stepping by size-overlap. The final window is truncated to the remaining
// text. In word-safe mode cut points never land inside a word: window ends
// shrink back to the last boundary and window starts advance past partial
// words, trading some overlap for clean cuts.
type WindowChunker struct {
	size     int
	overlap  int
	wordSafe bool
}

func NewWindowChunker(size, overlap int, wordSafe bool) (*WindowChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be in [0, size), got size=%d overlap=%d",
			domain.ErrConfiguration, size, overlap)
	}
	return &WindowChunker{size: size, overlap: overlap, wordSafe: wordSafe}, nil
}

func (c *WindowChunker) Chunk(doc domain.Document) ([]domain.Passage, error) {
	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil, nil
	}

	var passages []domain.Passage
	start := 0
	for start < len(runes) {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		if c.wordSafe && end < len(runes) {
			end = shrinkToBoundary(runes, start, end)
		}

		passages = append(passages, domain.Passage{
			ID:    passageID(doc.ID, len(passages)),
			DocID: doc.ID,
			Seq:   len(passages),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}

		next := end - c.overlap
		if c.wordSafe {
			next = advanceToWordStart(runes, next, end)
		}
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return passages, nil
}

// shrinkToBoundary pulls the cut point back so it does not split a word.
// A window holding a single unbroken word keeps the hard cut.
func shrinkToBoundary(runes []rune, start, end int) int {
	if isBoundary(runes[end-1]) || isBoundary(runes[end]) {
		return end
	}
	for i := end - 1; i > start; i-- {
		if isBoundary(runes[i]) {
			return i + 1
		}
	}
	return end
}

// advanceToWordStart moves the next window start forward past a partial
// word. Coverage holds because the previous window already reaches end;
// the overlap only shrinks, never the covered span.
func advanceToWordStart(runes []rune, next, end int) int {
	if next <= 0 || isBoundary(runes[next-1]) {
		return next
	}
	for i := next; i < end; i++ {
		if isBoundary(runes[i]) {
			return i + 1
		}
	}
	return end
}

func isBoundary(r rune) bool {
	return unicode.IsSpace(r)
}

// passageID derives a stable ID from the document and passage sequence.
func passageID(docID string, seq int) string {
	data := fmt.Sprintf("%s:%d", docID, seq)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
