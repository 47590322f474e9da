package retriever

import (
	"math"
	"strings"
	"unicode"

	"docqa/internal/domain"
)

// MMR implements Maximal Marginal Relevance over retrieved passages, using
// word-set Jaccard similarity for the redundancy term. It is the optional
// re-ranking stage: off by default, plugged in behind port.Reranker.
type MMR struct {
	lambda       float64
	dedupJaccard float64
}

func NewMMR(lambda, dedupJaccard float64) *MMR {
	return &MMR{
		lambda:       lambda,
		dedupJaccard: dedupJaccard,
	}
}

// Rerank selects up to k passages balancing relevance against redundancy:
// MMR(c) = lambda * relevance(c) - (1-lambda) * max_similarity(c, selected).
// Candidates above the dedup threshold against a selected passage are
// skipped entirely.
func (m *MMR) Rerank(candidates []domain.ScoredPassage, k int) []domain.ScoredPassage {
	if len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	maxScore := candidates[0].Score
	for _, c := range candidates {
		if c.Score > maxScore {
			maxScore = c.Score
		}
	}
	// Cosine scores can be negative; dividing by the magnitude keeps the
	// relevance ordering intact either way.
	norm := math.Abs(maxScore)
	if norm == 0 {
		norm = 1
	}

	tokens := make([]map[string]struct{}, len(candidates))
	for i, c := range candidates {
		tokens[i] = wordSet(c.Passage.Text)
	}

	selected := make([]domain.ScoredPassage, 0, k)
	selectedTokens := make([]map[string]struct{}, 0, k)
	used := make([]bool, len(candidates))

	for len(selected) < k {
		bestIdx := -1
		bestMMR := -1e9

		for i, candidate := range candidates {
			if used[i] {
				continue
			}

			relevance := candidate.Score / norm

			maxSim := 0.0
			for _, sel := range selectedTokens {
				if sim := jaccard(tokens[i], sel); sim > maxSim {
					maxSim = sim
				}
			}
			if maxSim > m.dedupJaccard {
				used[i] = true
				continue
			}

			mmr := m.lambda*relevance - (1-m.lambda)*maxSim
			if mmr > bestMMR {
				bestMMR = mmr
				bestIdx = i
			}
		}

		if bestIdx == -1 {
			break
		}
		used[bestIdx] = true
		selected = append(selected, candidates[bestIdx])
		selectedTokens = append(selectedTokens, tokens[bestIdx])
	}

	return selected
}

func wordSet(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
