package memstore

import (
	"sync"

	"docqa/internal/domain"
)

const defaultMaxTurns = 50

// Sessions keeps per-session chat history. Retention is bounded so a
// long-lived session cannot grow without limit; how much of the history
// reaches the prompt is the synthesizer's decision.
type Sessions struct {
	mu       sync.RWMutex
	turns    map[string][]domain.Turn
	maxTurns int
}

func NewSessions(maxTurns int) *Sessions {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &Sessions{
		turns:    make(map[string][]domain.Turn),
		maxTurns: maxTurns,
	}
}

func (s *Sessions) Append(sessionID string, turn domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.turns[sessionID], turn)
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.turns[sessionID] = turns
}

// History returns a copy of the session's turns, oldest first.
func (s *Sessions) History(sessionID string) []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[sessionID]
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}
