package ollama

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/ollama/ollama/api"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

const (
	DefaultHost      = "http://localhost:11434"
	defaultModel     = "llama3.1:8b"
	defaultMaxTokens = 2048
)

// OllamaClient implements domain.ToolCallingLLM against a local Ollama server.
type OllamaClient struct {
	client      *api.Client
	model       string
	maxTokens   int
	temperature float64
	toolManager domain.ToolManager

	mu        sync.Mutex
	lastUsage message.TokenUsage
}

// NewOllamaClient creates a client for the Ollama server at host. Nothing is
// contacted until the first Chat call.
func NewOllamaClient(host, model string, maxTokens int, temperature float64) (*OllamaClient, error) {
	if host == "" {
		host = DefaultHost
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid Ollama host %q", host)
	}
	if model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &OllamaClient{
		client:      api.NewClient(base, http.DefaultClient),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

func (c *OllamaClient) ModelID() string { return c.model }

func (c *OllamaClient) LastTokenUsage() (message.TokenUsage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsage, c.lastUsage.TotalTokens > 0
}

func (c *OllamaClient) SetToolManager(toolManager domain.ToolManager) {
	c.toolManager = toolManager
}

func (c *OllamaClient) Chat(ctx context.Context, messages []message.Message) (message.Message, error) {
	return c.ChatWithToolChoice(ctx, messages, domain.NewToolChoiceAuto())
}

// ChatWithToolChoice sends the conversation to Ollama. Ollama has no native
// tool choice, so "none" is expressed by omitting the tools.
func (c *OllamaClient) ChatWithToolChoice(ctx context.Context, messages []message.Message, toolChoice domain.ToolChoice) (message.Message, error) {
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: toOllamaMessages(messages),
		Options: map[string]any{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}
	if c.toolManager != nil && toolChoice.Type != domain.ToolChoiceNone {
		req.Tools = convertToOllamaTools(c.toolManager.GetTools())
	}

	result, usage, err := c.chat(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := toDomainMessageFromOllama(result)
	msg.SetTokenUsage(usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	return msg, nil
}

func (c *OllamaClient) chat(ctx context.Context, req *api.ChatRequest) (api.Message, message.TokenUsage, error) {
	var result api.Message
	var usage message.TokenUsage
	var content strings.Builder

	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if len(resp.Message.ToolCalls) > 0 {
			result.ToolCalls = append(result.ToolCalls, resp.Message.ToolCalls...)
		}
		if resp.Done {
			usage = message.TokenUsage{
				InputTokens:  resp.PromptEvalCount,
				OutputTokens: resp.EvalCount,
				TotalTokens:  resp.PromptEvalCount + resp.EvalCount,
			}
			result.Role = resp.Message.Role
		}
		return nil
	})
	if err != nil {
		return api.Message{}, usage, errors.Wrap(err, "ollama chat error")
	}
	result.Content = content.String()

	c.mu.Lock()
	c.lastUsage = usage
	c.mu.Unlock()
	return result, usage, nil
}
