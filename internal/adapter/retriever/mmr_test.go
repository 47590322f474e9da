package retriever

import (
	"testing"

	"docqa/internal/domain"
)

func scored(text string, score float64) domain.ScoredPassage {
	return domain.ScoredPassage{
		Passage: domain.Passage{ID: text, Text: text},
		Score:   score,
	}
}

func TestMMREmptyCandidates(t *testing.T) {
	if got := NewMMR(0.7, 0.8).Rerank(nil, 3); got != nil {
		t.Errorf("expected nil for empty candidates, got %v", got)
	}
}

func TestMMRDropsNearDuplicates(t *testing.T) {
	candidates := []domain.ScoredPassage{
		scored("the quick brown fox jumps", 1.0),
		scored("the quick brown fox jumps high", 0.95),
		scored("entirely different topic sentence", 0.5),
	}

	got := NewMMR(0.7, 0.8).Rerank(candidates, 3)
	if len(got) != 2 {
		t.Fatalf("expected the near-duplicate dropped, got %d results", len(got))
	}
	if got[0].Passage.ID != candidates[0].Passage.ID {
		t.Errorf("first result %q, want the top-scoring passage", got[0].Passage.ID)
	}
	if got[1].Passage.ID != candidates[2].Passage.ID {
		t.Errorf("second result %q, want the distinct passage", got[1].Passage.ID)
	}
}

func TestMMRBalancesRelevanceAndDiversity(t *testing.T) {
	candidates := []domain.ScoredPassage{
		scored("alpha beta gamma delta", 1.0),
		scored("alpha beta gamma epsilon", 0.9),
		scored("zeta eta theta iota", 0.8),
	}

	// Pure relevance keeps score order.
	byScore := NewMMR(1.0, 0.95).Rerank(candidates, 2)
	if byScore[1].Passage.ID != candidates[1].Passage.ID {
		t.Errorf("lambda=1 second pick %q, want the second-highest score", byScore[1].Passage.ID)
	}

	// Lower lambda penalizes overlap with the already-selected passage
	// enough to prefer the dissimilar one.
	diverse := NewMMR(0.5, 0.95).Rerank(candidates, 2)
	if diverse[0].Passage.ID != candidates[0].Passage.ID {
		t.Fatalf("first pick %q, want the top-scoring passage", diverse[0].Passage.ID)
	}
	if diverse[1].Passage.ID != candidates[2].Passage.ID {
		t.Errorf("lambda=0.5 second pick %q, want the diverse passage", diverse[1].Passage.ID)
	}
}

func TestMMRNegativeScoresKeepOrder(t *testing.T) {
	candidates := []domain.ScoredPassage{
		scored("barely off topic", -0.1),
		scored("strongly off topic", -0.9),
	}

	got := NewMMR(1.0, 0.95).Rerank(candidates, 2)
	if got[0].Passage.ID != candidates[0].Passage.ID {
		t.Errorf("first pick %q, want the least negative score first", got[0].Passage.ID)
	}
}

func TestMMRKLargerThanCandidates(t *testing.T) {
	candidates := []domain.ScoredPassage{
		scored("one subject here", 0.9),
		scored("another subject there", 0.8),
	}
	got := NewMMR(0.7, 0.8).Rerank(candidates, 10)
	if len(got) != 2 {
		t.Errorf("expected all %d candidates, got %d", len(candidates), len(got))
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"alpha beta", "alpha beta", 1.0},
		{"alpha beta", "gamma delta", 0.0},
		{"alpha beta gamma", "beta gamma delta", 0.5},
		{"", "", 1.0},
		{"alpha", "", 0.0},
	}
	for _, tt := range tests {
		got := jaccard(wordSet(tt.a), wordSet(tt.b))
		if got != tt.want {
			t.Errorf("jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
