package ai

import (
	"context"
	"fmt"

	"docuai/pkg/config"

	"go.uber.org/zap"
)

// Temperature is the fixed sampling temperature used for document generation.
const Temperature = 0.7

type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

type Completion struct {
	Content    string
	TokensUsed int
	Provider   string
}

// Provider generates document content. Implementations must ask the model for
// a single JSON object; callers validate the body with ExtractJSONObject.
type Provider interface {
	Name() string
	GenerateContent(ctx context.Context, prompt Prompt) (*Completion, error)
	Close() error
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg *config.AIConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Provider {
	case config.AIProviderGigaChat:
		return NewGigaChatProvider(ctx, &cfg.GigaChat, logger)
	case config.AIProviderVertex:
		return NewVertexProvider(ctx, &cfg.Vertex, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// estimateTokens approximates usage for providers that do not report it.
func estimateTokens(texts ...string) int {
	n := 0
	for _, t := range texts {
		n += len([]rune(t))
	}
	return (n + 3) / 4
}
