package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// Memory is an in-memory, append-only vector index scored by exhaustive
// linear scan. Vectors are L2-normalized at insert, so cosine similarity
// is a plain dot product at query time. Brute force is the documented
// strategy for the corpus sizes this system targets; an approximate
// structure can replace it behind the same Add/Search contract.
type Memory struct {
	mu      sync.RWMutex
	dim     int
	records []record
	fault   error
}

type record struct {
	passageID string
	vector    []float32
}

func NewMemory(dimension int) (*Memory, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: index dimension must be positive, got %d", domain.ErrConfiguration, dimension)
	}
	return &Memory{dim: dimension}, nil
}

// Add appends a vector. A dimension mismatch inserts nothing and latches a
// fault that rejects all further writes: mismatched vectors mean the
// embedding model drifted and continuing would corrupt the index. Reads
// keep working against the records already present.
func (m *Memory) Add(vector []float32, passageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fault != nil {
		return fmt.Errorf("index writes halted: %w", m.fault)
	}
	if len(vector) != m.dim {
		err := &domain.DimensionMismatchError{Want: m.dim, Got: len(vector)}
		m.fault = err
		return err
	}

	v := make([]float32, len(vector))
	copy(v, vector)
	normalize(v)
	m.records = append(m.records, record{passageID: passageID, vector: v})
	return nil
}

// Search scores the query against every stored vector. Results are ordered
// by descending similarity; equal scores fall back to insertion order so
// output is deterministic. k larger than the index returns everything.
func (m *Memory) Search(query []float32, k int) ([]port.VectorHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrConfiguration, k)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(query) != m.dim {
		return nil, &domain.DimensionMismatchError{Want: m.dim, Got: len(query)}
	}
	if len(m.records) == 0 {
		return nil, nil
	}

	q := make([]float32, len(query))
	copy(q, query)
	normalize(q)

	type scored struct {
		seq   int
		score float64
	}
	scores := make([]scored, len(m.records))
	for i, rec := range m.records {
		scores[i] = scored{seq: i, score: dot(q, rec.vector)}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].seq < scores[j].seq
	})

	if k > len(scores) {
		k = len(scores)
	}
	hits := make([]port.VectorHit, k)
	for i := 0; i < k; i++ {
		hits[i] = port.VectorHit{
			PassageID: m.records[scores[i].seq].passageID,
			Score:     scores[i].score,
		}
	}
	return hits, nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *Memory) Dimension() int {
	return m.dim
}

// Fault returns the latched write fault, if any.
func (m *Memory) Fault() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fault
}

// ClearFault re-enables writes after the operator resolved the model drift.
func (m *Memory) ClearFault() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fault = nil
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
