package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// SessionStore records chat turns per session.
type SessionStore interface {
	Append(sessionID string, turn domain.Turn)
	History(sessionID string) []domain.Turn
}

// Asker is the question answering pipeline: retrieve, optionally rerank,
// filter, synthesize, record the turn.
type Asker struct {
	retriever port.Retriever
	reranker  port.Reranker
	synth     *Synthesizer
	sessions  SessionStore
	topK      int
	minScore  float64
	log       *slog.Logger
}

func NewAsker(retriever port.Retriever, reranker port.Reranker, synth *Synthesizer, sessions SessionStore, topK int, minScore float64, log *slog.Logger) (*Asker, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", domain.ErrConfiguration, topK)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Asker{
		retriever: retriever,
		reranker:  reranker,
		synth:     synth,
		sessions:  sessions,
		topK:      topK,
		minScore:  minScore,
		log:       log,
	}, nil
}

// Ask answers one question. k <= 0 falls back to the configured top-k.
// With a reranker present the retriever over-fetches so the reranker has
// candidates to trade between relevance and diversity.
func (u *Asker) Ask(ctx context.Context, sessionID, question string, k int) (domain.Answer, error) {
	if k <= 0 {
		k = u.topK
	}

	fetchK := k
	if u.reranker != nil {
		fetchK = k * 2
	}

	results, err := u.retriever.Retrieve(ctx, question, fetchK)
	if err != nil {
		return domain.Answer{}, err
	}

	if u.reranker != nil {
		results = u.reranker.Rerank(results, k)
	}

	if u.minScore > 0 {
		// The retriever may hand out a shared slice (the query cache
		// does), so never compact in place.
		filtered := make([]domain.ScoredPassage, 0, len(results))
		for _, sp := range results {
			if sp.Score >= u.minScore {
				filtered = append(filtered, sp)
			}
		}
		results = filtered
	}
	if len(results) > k {
		results = results[:k]
	}

	var history []domain.Turn
	if u.sessions != nil && sessionID != "" {
		history = u.sessions.History(sessionID)
	}

	answer, err := u.synth.Synthesize(ctx, question, results, history)
	if err != nil {
		return domain.Answer{}, err
	}

	if u.sessions != nil && sessionID != "" {
		u.sessions.Append(sessionID, domain.Turn{Question: question, Answer: answer.Text})
	}

	u.log.Debug("question answered",
		"session", sessionID,
		"passages", len(results),
		"citations", len(answer.Citations))

	return answer, nil
}
