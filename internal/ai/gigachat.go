package ai

import (
	"context"
	"fmt"
	"strings"

	"docuai/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

const providerGigaChat = "gigachat"

type GigaChatProvider struct {
	client    *gigago.Client
	modelName string
	logger    *zap.Logger
}

func NewGigaChatProvider(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GIGACHAT_API_KEY is required")
	}

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	logger.Info("Using GigaChat provider", zap.String("model", cfg.Model))
	return &GigaChatProvider{
		client:    client,
		modelName: cfg.Model,
		logger:    logger,
	}, nil
}

func (p *GigaChatProvider) Name() string { return providerGigaChat }

func (p *GigaChatProvider) GenerateContent(ctx context.Context, prompt Prompt) (*Completion, error) {
	// models carry their own system instruction, so each call gets a fresh one
	model := p.client.GenerativeModel(p.modelName)
	configureModel(model, prompt)

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt.User},
	}

	resp, err := model.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from GigaChat")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	p.logger.Debug("GigaChat completion received", zap.Int("length", len(content)))

	return &Completion{
		Content:    content,
		TokensUsed: usedTokens(resp.Usage, prompt, content),
		Provider:   providerGigaChat,
	}, nil
}

func configureModel(model *gigago.GenerativeModel, prompt Prompt) {
	model.SystemInstruction = prompt.System
	model.Temperature = Temperature
	if prompt.MaxTokens > 0 {
		model.MaxTokens = int32(prompt.MaxTokens)
	}
}

// usedTokens prefers the billed total and estimates only when the API
// reported nothing.
func usedTokens(usage gigago.UsageStats, prompt Prompt, content string) int {
	if usage.TotalTokens > 0 {
		return usage.TotalTokens
	}
	return estimateTokens(prompt.System, prompt.User, content)
}

func (p *GigaChatProvider) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
