package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"docqa/internal/domain"
	"docqa/internal/port"
)

const (
	defaultBatchSize = 32
	defaultRetryWait = 500 * time.Millisecond
)

// Service wraps an embedding backend with the behavior the retrieval core
// owns: batching to amortize call latency, a single retry with backoff on
// transient failure, dimension validation on every call, and L2
// normalization so cosine similarity reduces to a dot product downstream.
// It implements port.Embedder itself.
type Service struct {
	backend   port.Embedder
	batchSize int
	retryWait time.Duration
	timeout   time.Duration
}

func NewService(backend port.Embedder, batchSize int, timeout time.Duration) *Service {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Service{
		backend:   backend,
		batchSize: batchSize,
		retryWait: defaultRetryWait,
		timeout:   timeout,
	}
}

func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += s.batchSize {
		end := i + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := s.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", i, end-1, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// embedBatch calls the backend once, retrying exactly once after a backoff
// on transient failure. Any further retry policy belongs to the caller.
func (s *Service) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	vectors, err := s.callBackend(ctx, batch)
	if errors.Is(err, domain.ErrEmbeddingService) {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", domain.ErrTimeout, ctx.Err())
		case <-time.After(s.retryWait):
		}
		vectors, err = s.callBackend(ctx, batch)
	}
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("%w: backend returned %d vectors for %d texts",
			domain.ErrEmbeddingService, len(vectors), len(batch))
	}

	dim := s.backend.Dimension()
	for _, v := range vectors {
		if len(v) != dim {
			return nil, &domain.DimensionMismatchError{Want: dim, Got: len(v)}
		}
		l2normalize(v)
	}
	return vectors, nil
}

func (s *Service) callBackend(ctx context.Context, batch []string) ([][]float32, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	vectors, err := s.backend.Embed(ctx, batch)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", domain.ErrTimeout, err)
		}
		if errors.Is(err, domain.ErrEmbeddingService) || errors.Is(err, domain.ErrTimeout) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
	}
	return vectors, nil
}

func (s *Service) Dimension() int {
	return s.backend.Dimension()
}

func (s *Service) ModelName() string {
	return s.backend.ModelName()
}

// l2normalize scales the vector to unit length in place.
func l2normalize(v []float32) {
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
