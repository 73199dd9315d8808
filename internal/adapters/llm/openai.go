package llm

import (
	"context"
	"fmt"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend generates answers via the OpenAI chat completions API.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend creates an OpenAI answer backend. baseURL overrides the
// API endpoint for compatible servers.
func NewOpenAIBackend(apiKey, baseURL, model string) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key is empty", entities.ErrInvalidConfiguration)
	}
	if model == "" {
		model = openai.GPT4oMini
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

// Name identifies the backend in logs and health output.
func (b *OpenAIBackend) Name() string { return "openai" }

// Answer generates a grounded answer for the question from the context
// passages.
func (b *OpenAIBackend) Answer(ctx context.Context, question string, contexts []string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(question, contexts)},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", entities.ErrGenerationBackend, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", entities.ErrGenerationBackend)
	}
	return resp.Choices[0].Message.Content, nil
}
