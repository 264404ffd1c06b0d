// Package llm wraps the external text-generation providers behind a single
// chat-style contract: a system prompt and a user prompt in, free text out.
package llm

import (
	"context"
	"errors"
	"fmt"

	"alcyxob/confidence-coach/internal/config"

	"go.uber.org/zap"
)

// Completer sends one system/user prompt pair and returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

var (
	ErrNotConfigured = errors.New("text generation provider is not configured")
	ErrEmptyResponse = errors.New("text generation provider returned no content")
)

// New returns the Completer selected by cfg.Provider.
// A missing API key yields a disabled completer so the service still runs
// on fallback plans.
func New(cfg config.LLMConfig, logger *zap.Logger) (Completer, error) {
	if cfg.Provider != "none" && cfg.APIKey == "" {
		logger.Warn("llm api key is empty, plan generation will use the fallback plan",
			zap.String("provider", cfg.Provider))
		return Disabled{}, nil
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg), nil
	case "gemini":
		return NewGeminiClient(context.Background(), cfg)
	case "none":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Disabled always fails, which makes callers take their fallback path.
type Disabled struct{}

func (Disabled) Complete(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}
