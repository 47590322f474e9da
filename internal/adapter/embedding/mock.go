package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// MockBackend is a deterministic offline embedder: a hashed bag of words.
// Texts sharing vocabulary land near each other, which is enough for
// demos and for reproducible retrieval tests without a network call.
type MockBackend struct {
	dim int
}

func NewMockBackend(dimension int) *MockBackend {
	if dimension <= 0 {
		dimension = 256
	}
	return &MockBackend{dim: dimension}
}

func (b *MockBackend) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, b.dim)
		for _, word := range tokenize(text) {
			v[bucket(word, b.dim)]++
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (b *MockBackend) Dimension() int {
	return b.dim
}

func (b *MockBackend) ModelName() string {
	return "mock-bow"
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func bucket(word string, dim int) int {
	h := fnv.New32a()
	h.Write([]byte(word))
	return int(h.Sum32() % uint32(dim))
}
