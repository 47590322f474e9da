package port

import "context"

// LLM is an opaque text-completion service used for answer synthesis.
type LLM interface {
	// Complete generates text for the prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
