package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
)

// OllamaBackend generates answers via a local Ollama server.
type OllamaBackend struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaBackend creates an Ollama answer backend.
func NewOllamaBackend(baseURL, model string) *OllamaBackend {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaBackend{
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

// Name identifies the backend in logs and health output.
func (b *OllamaBackend) Name() string { return "ollama" }

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Answer generates a grounded answer for the question from the context
// passages.
func (b *OllamaBackend) Answer(ctx context.Context, question string, contexts []string) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  b.model,
		Prompt: BuildPrompt(question, contexts),
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: calling ollama: %v", entities.ErrGenerationBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: ollama returned status %d", entities.ErrGenerationBackend, resp.StatusCode)
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", entities.ErrGenerationBackend, err)
	}

	return genResp.Response, nil
}
