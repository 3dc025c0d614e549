package client

import (
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/config"
	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/client/anthropic"
	"github.com/fpt/notice-cli/pkg/client/gemini"
	"github.com/fpt/notice-cli/pkg/client/ollama"
	"github.com/fpt/notice-cli/pkg/client/openai"
)

// NewLLMClient creates a tool calling LLM client based on settings.
// No request is made; an empty apiKey is rejected by hosted backends.
func NewLLMClient(settings config.LLMSettings, apiKey string, temperature float64) (domain.ToolCallingLLM, error) {
	switch settings.Backend {
	case config.BackendGroq, "":
		return openai.NewGroqClient(openai.Options{
			APIKey:      apiKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: temperature,
		})
	case config.BackendOpenAI:
		return openai.NewOpenAIClient(openai.Options{
			APIKey:      apiKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: temperature,
		})
	case config.BackendAnthropic, "claude":
		return anthropic.NewAnthropicClient(apiKey, settings.Model, settings.MaxTokens, temperature)
	case config.BackendGemini:
		return gemini.NewGeminiClient(apiKey, settings.Model, settings.MaxTokens, temperature)
	case config.BackendOllama:
		return ollama.NewOllamaClient(settings.BaseURL, settings.Model, settings.MaxTokens, temperature)
	default:
		return nil, errors.Errorf("unsupported LLM backend: %s", settings.Backend)
	}
}

// NewClientWithToolManager attaches toolManager to a client that supports tool calling.
func NewClientWithToolManager(client domain.LLM, toolManager domain.ToolManager) (domain.ToolCallingLLM, error) {
	toolCallingClient, ok := client.(domain.ToolCallingLLM)
	if !ok {
		return nil, errors.Wrapf(domain.ErrInvalidClientType, "%T", client)
	}
	toolCallingClient.SetToolManager(toolManager)
	return toolCallingClient, nil
}
