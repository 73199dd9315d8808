package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OllamaBackend generates embeddings through a local Ollama server. The batch
// endpoint takes the whole input slice in one call.
type OllamaBackend struct {
	baseURL string
	model   string
	client  *http.Client
	dim     int
}

// NewOllamaBackend creates an Ollama embedding backend. Empty arguments fall
// back to the local default server and model.
func NewOllamaBackend(baseURL, model string, timeout time.Duration) *OllamaBackend {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OllamaBackend{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (b *OllamaBackend) Name() string { return "ollama/" + b.model }

// Dimension returns the vector dimensionality observed on the first call,
// 0 before that.
func (b *OllamaBackend) Dimension() int { return b.dim }

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed sends the whole batch in a single /api/embed call.
func (b *OllamaBackend) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: b.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}

	var embedResp ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(embedResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("Ollama returned %d embeddings for %d inputs", len(embedResp.Embeddings), len(texts))
	}
	if b.dim == 0 && len(embedResp.Embeddings) > 0 {
		b.dim = len(embedResp.Embeddings[0])
	}
	return embedResp.Embeddings, nil
}
