package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend generates embeddings through the OpenAI embeddings API.
// One Embed call maps to one CreateEmbeddings request carrying the whole
// batch.
type OpenAIBackend struct {
	client *openai.Client
	model  string
	dim    int
}

// NewOpenAIBackend creates an OpenAI embedding backend. The API key is passed
// in by the caller; components never read the environment themselves.
func NewOpenAIBackend(apiKey, baseURL, model string) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, errors.New("missing OpenAI API key")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Name returns the backend identifier.
func (b *OpenAIBackend) Name() string { return "openai/" + b.model }

// Dimension returns the vector dimensionality observed on the first call,
// 0 before that.
func (b *OpenAIBackend) Dimension() int { return b.dim }

// Embed sends the whole batch in one API request, preserving input order.
func (b *OpenAIBackend) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := b.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(b.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("OpenAI returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vectors[d.Index] = d.Embedding
	}
	if b.dim == 0 && len(vectors) > 0 {
		b.dim = len(vectors[0])
	}
	return vectors, nil
}
