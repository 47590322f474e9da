package embedding

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"docqa/internal/domain"
)

// flakyBackend fails the first failures calls, then behaves like a mock.
type flakyBackend struct {
	*MockBackend
	failures int
	calls    int
}

func (b *flakyBackend) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	b.calls++
	if b.calls <= b.failures {
		return nil, errors.New("connection reset")
	}
	return b.MockBackend.Embed(ctx, texts)
}

// lyingBackend reports one dimension but returns another.
type lyingBackend struct {
	*MockBackend
}

func (b *lyingBackend) Dimension() int { return b.MockBackend.Dimension() + 1 }

func newTestService(backend interface {
	Embed(context.Context, []string) ([][]float32, error)
	Dimension() int
	ModelName() string
}, batchSize int) *Service {
	s := NewService(backend, batchSize, 0)
	s.retryWait = time.Millisecond
	return s
}

func TestServiceOrderPreservingBatches(t *testing.T) {
	texts := []string{
		"the first text",
		"a second text entirely",
		"third",
		"the fourth one",
		"fifth and last",
	}

	batched := newTestService(NewMockBackend(64), 2)
	single := newTestService(NewMockBackend(64), 1)

	got, err := batched.Embed(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(got))
	}

	for i, text := range texts {
		want, err := single.Embed(context.Background(), []string{text})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got[i], want[0]) {
			t.Errorf("batched vector %d differs from single-item embedding", i)
		}
	}
}

func TestServiceNormalizesVectors(t *testing.T) {
	s := newTestService(NewMockBackend(64), 8)

	vectors, err := s.Embed(context.Background(), []string{"some words to embed"})
	if err != nil {
		t.Fatal(err)
	}

	var norm float64
	for _, x := range vectors[0] {
		norm += float64(x) * float64(x)
	}
	if math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("vector norm %v, want 1.0", norm)
	}
}

func TestServiceEmptyInput(t *testing.T) {
	s := newTestService(NewMockBackend(64), 8)
	vectors, err := s.Embed(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if vectors != nil {
		t.Errorf("expected nil for empty input, got %d vectors", len(vectors))
	}
}

func TestServiceRetriesOnce(t *testing.T) {
	backend := &flakyBackend{MockBackend: NewMockBackend(32), failures: 1}
	s := newTestService(backend, 8)

	vectors, err := s.Embed(context.Background(), []string{"text"})
	if err != nil {
		t.Fatalf("expected the single retry to succeed, got %v", err)
	}
	if len(vectors) != 1 {
		t.Fatalf("expected 1 vector, got %d", len(vectors))
	}
	if backend.calls != 2 {
		t.Errorf("backend called %d times, want 2", backend.calls)
	}
}

func TestServiceSurfacesFailureAfterRetry(t *testing.T) {
	backend := &flakyBackend{MockBackend: NewMockBackend(32), failures: 2}
	s := newTestService(backend, 8)

	_, err := s.Embed(context.Background(), []string{"text"})
	if !errors.Is(err, domain.ErrEmbeddingService) {
		t.Fatalf("expected ErrEmbeddingService, got %v", err)
	}
	if backend.calls != 2 {
		t.Errorf("backend called %d times, want exactly 2 (one retry)", backend.calls)
	}
}

func TestServiceDimensionMismatch(t *testing.T) {
	s := newTestService(&lyingBackend{NewMockBackend(32)}, 8)

	_, err := s.Embed(context.Background(), []string{"text"})
	var mismatch *domain.DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
	// No retry for model drift.
	if errors.Is(err, domain.ErrEmbeddingService) {
		t.Error("dimension mismatch must not be classified as transient")
	}
}

func TestMockBackendDeterministic(t *testing.T) {
	b := NewMockBackend(128)

	first, err := b.Embed(context.Background(), []string{"the dog barked"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Embed(context.Background(), []string{"the dog barked"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("mock embeddings are not deterministic")
	}

	for i := range first[0] {
		if first[0][i] != 0 {
			return
		}
	}
	t.Error("mock embedding is the zero vector")
}

func TestMockBackendSharedVocabularyScoresHigher(t *testing.T) {
	b := NewMockBackend(256)
	s := newTestService(b, 8)

	vectors, err := s.Embed(context.Background(), []string{
		"the dog barked loudly",
		"a dog barked in the yard",
		"quantum chromodynamics lattice simulations",
	})
	if err != nil {
		t.Fatal(err)
	}

	related := cosine(vectors[0], vectors[1])
	unrelated := cosine(vectors[0], vectors[2])
	if related <= unrelated {
		t.Errorf("related similarity %v not above unrelated %v", related, unrelated)
	}
}

func cosine(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
