package openai

import (
	"context"
	"sync"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

const (
	// GroqBaseURL is Groq's OpenAI-compatible endpoint.
	GroqBaseURL = "https://api.groq.com/openai/v1"

	defaultGroqModel   = "llama-3.1-8b-instant"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultMaxTokens   = 2048
)

// ChatClient talks to any OpenAI-compatible Chat Completions endpoint
// (OpenAI itself, Groq). Implements domain.ToolCallingLLM.
type ChatClient struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
	toolManager domain.ToolManager

	mu        sync.Mutex
	lastUsage message.TokenUsage
}

// Options configure a ChatClient.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	// RequestOptions are appended last, mainly for tests.
	RequestOptions []option.RequestOption
}

// NewGroqClient creates a client for Groq-hosted models.
func NewGroqClient(opts Options) (*ChatClient, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = GroqBaseURL
	}
	if opts.Model == "" {
		opts.Model = defaultGroqModel
	}
	return NewChatClient(opts)
}

// NewOpenAIClient creates a client for OpenAI-hosted models.
func NewOpenAIClient(opts Options) (*ChatClient, error) {
	if opts.Model == "" {
		opts.Model = defaultOpenAIModel
	}
	return NewChatClient(opts)
}

// NewChatClient builds the client without making any request.
func NewChatClient(opts Options) (*ChatClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	reqOpts = append(reqOpts, opts.RequestOptions...)

	return &ChatClient{
		client:      openai.NewClient(reqOpts...),
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}, nil
}

func (c *ChatClient) ModelID() string { return c.model }

func (c *ChatClient) LastTokenUsage() (message.TokenUsage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsage, c.lastUsage.TotalTokens > 0
}

func (c *ChatClient) SetToolManager(toolManager domain.ToolManager) {
	c.toolManager = toolManager
}

func (c *ChatClient) Chat(ctx context.Context, messages []message.Message) (message.Message, error) {
	return c.ChatWithToolChoice(ctx, messages, domain.NewToolChoiceAuto())
}

// ChatWithToolChoice sends one Chat Completions request.
func (c *ChatClient) ChatWithToolChoice(ctx context.Context, messages []message.Message, toolChoice domain.ToolChoice) (message.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(c.model),
		Messages:            toChatMessages(messages),
		Temperature:         openai.Float(c.temperature),
		MaxCompletionTokens: openai.Int(int64(c.maxTokens)),
	}
	if c.toolManager != nil {
		if tools := convertTools(c.toolManager.GetTools()); len(tools) > 0 {
			params.Tools = tools
			params.ToolChoice = convertToolChoice(toolChoice)
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if raw, ok := failedGeneration(err); ok {
			return nil, &domain.MalformedGenerationError{Raw: raw, Err: err}
		}
		return nil, errors.Wrap(err, "chat completion request failed")
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	usage := message.TokenUsage{
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:  int(completion.Usage.TotalTokens),
	}
	c.mu.Lock()
	c.lastUsage = usage
	c.mu.Unlock()

	msg, err := fromChatCompletionMessage(completion.Choices[0].Message)
	if err != nil {
		return nil, err
	}
	msg.SetTokenUsage(usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	return msg, nil
}
