package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
)

// OpenAI generates text with an OpenAI-compatible chat completion API.
type OpenAI struct {
	model *openai.ChatModel
}

// NewOpenAI creates an OpenAI chat model client.
func NewOpenAI(ctx context.Context, cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: openai: api key is required")
	}
	temp := cfg.Temperature
	maxTokens := cfg.MaxTokens
	m, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: &temp,
		MaxTokens:   &maxTokens,
		HTTPClient:  &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("ai: openai: %w", err)
	}
	return &OpenAI{model: m}, nil
}

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := o.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(SystemMessage(prompt)),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("ai: openai: %w: %w", ErrUpstream, err)
	}
	if msg == nil || msg.Content == "" {
		return "", fmt.Errorf("ai: openai: %w", ErrEmptyResponse)
	}
	return msg.Content, nil
}
