package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/hallmarks/internal/config"
)

func TestNewClientOpenAI(t *testing.T) {
	c, err := NewClient(context.Background(), config.LLMConfig{
		Provider: "openai",
		Model:    "gpt-4",
		APIKey:   "test-key",
	})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)
}

func TestNewClientClaude(t *testing.T) {
	c, err := NewClient(context.Background(), config.LLMConfig{
		Provider: "claude",
		Model:    "claude-sonnet-4-20250514",
		APIKey:   "test-key",
	})
	require.NoError(t, err)
	assert.IsType(t, &ClaudeClient{}, c)
}

func TestNewClientOllamaUsesOpenAICompat(t *testing.T) {
	c, err := NewClient(context.Background(), config.LLMConfig{
		Provider: "ollama",
		Model:    "llama3",
	})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)
}

func TestNewClientProviderCaseInsensitive(t *testing.T) {
	c, err := NewClient(context.Background(), config.LLMConfig{
		Provider: "OpenAI",
		Model:    "gpt-4",
		APIKey:   "test-key",
	})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestNewClientUnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), config.LLMConfig{Provider: "magic"})
	assert.Error(t, err)
}
