package llm

import (
	"context"
	"fmt"
	"strings"
)

// Mock answers deterministically without a network call: it echoes the
// prompt's citation markers so the pipeline, including citation handling,
// can be exercised offline.
type Mock struct{}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Complete(_ context.Context, prompt string) (string, error) {
	markers := citationMarkers(prompt)
	if len(markers) == 0 {
		return "No supporting passages were provided.", nil
	}
	return fmt.Sprintf("Based on the provided passages %s, this is a mock answer.",
		strings.Join(markers, " ")), nil
}

func (m *Mock) ModelName() string {
	return "mock"
}

// citationMarkers extracts the distinct [n] markers in prompt order.
func citationMarkers(prompt string) []string {
	seen := make(map[string]struct{})
	var markers []string
	for i := 0; i < len(prompt); i++ {
		if prompt[i] != '[' {
			continue
		}
		j := i + 1
		for j < len(prompt) && prompt[j] >= '0' && prompt[j] <= '9' {
			j++
		}
		if j > i+1 && j < len(prompt) && prompt[j] == ']' {
			marker := prompt[i : j+1]
			if _, ok := seen[marker]; !ok {
				seen[marker] = struct{}{}
				markers = append(markers, marker)
			}
			i = j
		}
	}
	return markers
}
