package ai

import (
	"context"
	"fmt"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderDisabled = "disabled"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderFunction = "function"
)

// Default generation parameters.
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
)

// Config selects and parameterises a provider.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Model == "" {
		switch c.Provider {
		case ProviderOpenAI:
			c.Model = DefaultOpenAIModel
		case ProviderGemini:
			c.Model = DefaultGeminiModel
		}
	}
	return c
}

// New builds the Generator named by cfg.Provider. An empty provider means
// disabled.
func New(ctx context.Context, cfg Config) (Generator, error) {
	cfg = cfg.withDefaults()
	switch cfg.Provider {
	case "", ProviderDisabled:
		return Disabled{}, nil
	case ProviderOpenAI:
		return NewOpenAI(ctx, cfg)
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	case ProviderFunction:
		return NewFunction(cfg)
	}
	return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
}

// Disabled always fails with ErrDisabled.
type Disabled struct{}

func (Disabled) Generate(context.Context, string) (string, error) {
	return "", ErrDisabled
}
