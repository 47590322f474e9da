package embedding

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend generates embeddings through the OpenAI embeddings API.
// Batching, retries and dimension validation live in Service; this type
// only speaks the wire protocol.
type OpenAIBackend struct {
	client *openai.Client
	model  string
	dim    int
}

func NewOpenAIBackend(apiKeyEnv, model string, dimension int) (*OpenAIBackend, error) {
	key := os.Getenv(apiKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	if dimension <= 0 {
		switch model {
		case "text-embedding-3-large":
			dimension = 3072
		default:
			dimension = 1536
		}
	}

	return &OpenAIBackend{
		client: openai.NewClient(key),
		model:  model,
		dim:    dimension,
	}, nil
}

func (b *OpenAIBackend) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := b.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(b.model),
		Input: texts,
	})
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			continue
		}
		v := make([]float32, len(data.Embedding))
		for i, x := range data.Embedding {
			v[i] = float32(x)
		}
		vectors[data.Index] = v
	}

	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("no embedding returned for input %d", i)
		}
	}
	return vectors, nil
}

func (b *OpenAIBackend) Dimension() int {
	return b.dim
}

func (b *OpenAIBackend) ModelName() string {
	return b.model
}
