package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

// FunctionRequest is the body of a generate-ai-response call.
type FunctionRequest struct {
	Prompt string `json:"prompt"`
}

// FunctionResponse is the body returned by a generate-ai-response call.
// Exactly one of the fields is set.
type FunctionResponse struct {
	GeneratedText string `json:"generatedText,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Function calls a remote generate-ai-response endpoint, such as the one
// served by another instance under /api/functions/generate-ai-response.
type Function struct {
	url    string
	token  string
	client *http.Client
}

// NewFunction creates a client for the endpoint at cfg.BaseURL. A non-empty
// cfg.APIKey is sent as a bearer token.
func NewFunction(cfg Config) (*Function, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ai: function: base url is required")
	}
	return &Function{
		url:    cfg.BaseURL,
		token:  cfg.APIKey,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (f *Function) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := sonic.Marshal(FunctionRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("ai: function: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: function: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: function: %w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("ai: function: read: %w: %w", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "error").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("ai: function: status %d: %s: %w", resp.StatusCode, msg, ErrUpstream)
	}
	text := gjson.GetBytes(raw, "generatedText").String()
	if text == "" {
		return "", fmt.Errorf("ai: function: %w", ErrEmptyResponse)
	}
	return text, nil
}
