package index

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"docqa/internal/domain"
)

func TestNewMemoryRejectsBadDimension(t *testing.T) {
	if _, err := NewMemory(0); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	m, err := NewMemory(3)
	if err != nil {
		t.Fatal(err)
	}

	vectors := [][]float32{
		{1, 0, 0},
		{0, 2, 0},
		{3, 3, 0},
	}
	for i, v := range vectors {
		if err := m.Add(v, fmt.Sprintf("p%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	for i, v := range vectors {
		hits, err := m.Search(v, m.Len())
		if err != nil {
			t.Fatal(err)
		}
		if len(hits) != len(vectors) {
			t.Fatalf("expected %d hits, got %d", len(vectors), len(hits))
		}
		if hits[0].PassageID != fmt.Sprintf("p%d", i) {
			t.Errorf("vector %d: expected itself first, got %s", i, hits[0].PassageID)
		}
		if math.Abs(hits[0].Score-1.0) > 1e-6 {
			t.Errorf("self-similarity %v, want 1.0", hits[0].Score)
		}
	}
}

func TestMemorySearchOrdering(t *testing.T) {
	m, err := NewMemory(2)
	if err != nil {
		t.Fatal(err)
	}

	// p0 opposite the query, p1 orthogonal, p2 aligned.
	if err := m.Add([]float32{-1, 0}, "p0"); err != nil {
		t.Fatal(err)
	}
	if err := m.Add([]float32{0, 1}, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := m.Add([]float32{1, 0}, "p2"); err != nil {
		t.Fatal(err)
	}

	hits, err := m.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"p2", "p1", "p0"}
	for i, id := range want {
		if hits[i].PassageID != id {
			t.Errorf("hit %d: got %s, want %s", i, hits[i].PassageID, id)
		}
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Error("hits are not in descending score order")
		}
	}
}

func TestMemoryTieBreakInsertionOrder(t *testing.T) {
	m, err := NewMemory(2)
	if err != nil {
		t.Fatal(err)
	}

	// Identical vectors score identically; insertion order must decide.
	for i := 0; i < 4; i++ {
		if err := m.Add([]float32{1, 1}, fmt.Sprintf("p%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := m.Search([]float32{1, 1}, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i, h := range hits {
		if h.PassageID != fmt.Sprintf("p%d", i) {
			t.Errorf("tie at position %d broken as %s, want p%d", i, h.PassageID, i)
		}
	}
}

func TestMemoryKLargerThanIndex(t *testing.T) {
	m, err := NewMemory(2)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Add([]float32{1, 0}, "p0"); err != nil {
		t.Fatal(err)
	}

	hits, err := m.Search([]float32{1, 0}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected all 1 record, got %d", len(hits))
	}
}

func TestMemorySearchValidation(t *testing.T) {
	m, err := NewMemory(2)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Search([]float32{1, 0}, 0); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for k=0, got %v", err)
	}

	var mismatch *domain.DimensionMismatchError
	if _, err := m.Search([]float32{1, 0, 0}, 1); !errors.As(err, &mismatch) {
		t.Errorf("expected DimensionMismatchError for bad query, got %v", err)
	}
}

func TestMemoryEmptySearch(t *testing.T) {
	m, err := NewMemory(2)
	if err != nil {
		t.Fatal(err)
	}
	hits, err := m.Search([]float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits on empty index, got %d", len(hits))
	}
}

func TestMemoryDimensionMismatchHaltsWrites(t *testing.T) {
	m, err := NewMemory(768)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Add(make([]float32, 768), "p0"); err != nil {
		t.Fatal(err)
	}

	var mismatch *domain.DimensionMismatchError
	err = m.Add(make([]float32, 384), "p1")
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
	if mismatch.Want != 768 || mismatch.Got != 384 {
		t.Errorf("mismatch reported want=%d got=%d", mismatch.Want, mismatch.Got)
	}
	if m.Len() != 1 {
		t.Errorf("index size changed after rejected add: %d", m.Len())
	}

	// Writes stay halted, even for correctly sized vectors.
	if err := m.Add(make([]float32, 768), "p2"); !errors.As(err, &mismatch) {
		t.Errorf("expected halted writes to surface the fault, got %v", err)
	}
	if m.Fault() == nil {
		t.Error("expected latched fault")
	}

	// Reads still work.
	if _, err := m.Search(make([]float32, 768), 1); err != nil {
		t.Errorf("search failed while writes halted: %v", err)
	}

	m.ClearFault()
	if err := m.Add(make([]float32, 768), "p2"); err != nil {
		t.Errorf("add failed after fault cleared: %v", err)
	}
}

func TestMemoryConcurrentReadersAndWriter(t *testing.T) {
	m, err := NewMemory(4)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = m.Add([]float32{1, 2, 3, 4}, fmt.Sprintf("p%d", i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := m.Search([]float32{1, 2, 3, 4}, 5); err != nil {
				t.Errorf("concurrent search failed: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	if m.Len() != 200 {
		t.Errorf("expected 200 records, got %d", m.Len())
	}
}
