package ai

import (
	"context"
	"fmt"
	"strings"

	"docuai/pkg/config"

	"cloud.google.com/go/vertexai/genai"
	"go.uber.org/zap"
)

const providerVertex = "vertex"

// VertexProvider calls Gemini on Vertex AI with JSON-only responses.
type VertexProvider struct {
	client    *genai.Client
	modelName string
	logger    *zap.Logger
}

func NewVertexProvider(ctx context.Context, cfg *config.VertexConfig, logger *zap.Logger) (*VertexProvider, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("VERTEX_PROJECT_ID and VERTEX_AI_REGION are required")
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	logger.Info("Using Vertex AI provider", zap.String("model", cfg.Model), zap.String("region", cfg.Region))
	return &VertexProvider{client: client, modelName: cfg.Model, logger: logger}, nil
}

func (p *VertexProvider) Name() string { return providerVertex }

func (p *VertexProvider) GenerateContent(ctx context.Context, prompt Prompt) (*Completion, error) {
	model := p.client.GenerativeModel(p.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.System)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](Temperature),
	}
	if prompt.MaxTokens > 0 {
		model.GenerationConfig.MaxOutputTokens = genai.Ptr(int32(prompt.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.User))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	content := textFromResponse(resp)
	if content == "" {
		return nil, fmt.Errorf("empty response from gemini")
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	if tokens == 0 {
		tokens = estimateTokens(prompt.System, prompt.User, content)
	}

	return &Completion{Content: content, TokensUsed: tokens, Provider: providerVertex}, nil
}

func textFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}

func (p *VertexProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
