package ai

import (
	"testing"

	"github.com/Role1776/gigago"
	"github.com/stretchr/testify/assert"
)

func TestConfigureModel(t *testing.T) {
	tests := []struct {
		name      string
		maxTokens int
		want      int32
	}{
		{"limit applied", 2048, 2048},
		{"zero keeps client default", 0, 999999999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &gigago.GenerativeModel{MaxTokens: 999999999}
			configureModel(model, Prompt{System: "sys", User: "user", MaxTokens: tt.maxTokens})

			assert.Equal(t, tt.want, model.MaxTokens)
			assert.Equal(t, "sys", model.SystemInstruction)
			assert.Equal(t, float64(Temperature), model.Temperature)
		})
	}
}

func TestUsedTokens(t *testing.T) {
	prompt := Prompt{System: "abcd", User: "efgh"}
	tests := []struct {
		name  string
		usage gigago.UsageStats
		want  int
	}{
		{"reported total", gigago.UsageStats{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150}, 150},
		{"nothing reported", gigago.UsageStats{}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usedTokens(tt.usage, prompt, "ijkl"))
		})
	}
}
