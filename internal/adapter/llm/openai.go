package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"docqa/internal/domain"
)

// OpenAI generates answers through the chat completions API. The assembled
// prompt travels as a single user message; grounding instructions live in
// the prompt template, not in a system message, so every provider sees the
// exact same text.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAI(model, apiKeyEnv string, timeout time.Duration) (*OpenAI, error) {
	if apiKeyEnv == "" {
		apiKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(apiKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: environment variable %s is not set", domain.ErrConfiguration, apiKeyEnv)
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{
		client:  openai.NewClient(key),
		model:   model,
		timeout: timeout,
	}, nil
}

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: generation timed out after %s", domain.ErrTimeout, o.timeout)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationService, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion response", domain.ErrGenerationService)
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) ModelName() string {
	return o.model
}
