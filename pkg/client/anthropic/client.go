package anthropic

import (
	"context"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

const (
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 2048
)

// AnthropicClient handles communication with Claude models.
// Implements domain.ToolCallingLLM.
type AnthropicClient struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float64
	toolManager domain.ToolManager

	mu        sync.Mutex
	lastUsage message.TokenUsage
}

// NewAnthropicClient creates a Claude client. No request is made until Chat is called.
func NewAnthropicClient(apiKey, model string, maxTokens int, temperature float64, opts ...option.RequestOption) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	if model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &AnthropicClient{
		client:      anthropic.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

func (c *AnthropicClient) ModelID() string { return c.model }

func (c *AnthropicClient) LastTokenUsage() (message.TokenUsage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsage, c.lastUsage.TotalTokens > 0
}

func (c *AnthropicClient) SetToolManager(toolManager domain.ToolManager) {
	c.toolManager = toolManager
}

func (c *AnthropicClient) Chat(ctx context.Context, messages []message.Message) (message.Message, error) {
	return c.ChatWithToolChoice(ctx, messages, domain.NewToolChoiceAuto())
}

// ChatWithToolChoice sends the conversation to Claude with tool choice control
func (c *AnthropicClient) ChatWithToolChoice(ctx context.Context, messages []message.Message, toolChoice domain.ToolChoice) (message.Message, error) {
	system, conversation := toAnthropicMessages(messages)

	params := anthropic.MessageNewParams{
		MaxTokens:   int64(c.maxTokens),
		Messages:    conversation,
		Model:       anthropic.Model(c.model),
		Temperature: anthropic.Float(c.temperature),
		System:      system,
	}
	if c.toolManager != nil {
		if tools := convertToolsToAnthropic(c.toolManager.GetTools()); len(tools) > 0 {
			params.Tools = tools
			params.ToolChoice = convertToolChoiceToAnthropic(toolChoice)
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "anthropic request failed")
	}

	c.mu.Lock()
	c.lastUsage = message.TokenUsage{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		TotalTokens:  int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}
	usage := c.lastUsage
	c.mu.Unlock()

	msg, err := fromAnthropicContent(resp.Content)
	if err != nil {
		return nil, err
	}
	msg.SetTokenUsage(usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	return msg, nil
}
