package gemini

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	pkgLogger "github.com/fpt/notice-cli/pkg/logger"
	"github.com/fpt/notice-cli/pkg/message"
)

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 2048
)

var geminiLogger = pkgLogger.NewComponentLogger("gemini-client")

// GeminiClient implements domain.ToolCallingLLM on the Gemini API.
type GeminiClient struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float32
	toolManager domain.ToolManager

	mu        sync.Mutex
	lastUsage message.TokenUsage
}

// NewGeminiClient creates a Gemini client. Creating the SDK client does not contact the API.
func NewGeminiClient(apiKey, model string, maxTokens int, temperature float64) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Gemini client")
	}
	if model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &GeminiClient{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
	}, nil
}

func (c *GeminiClient) ModelID() string { return c.model }

func (c *GeminiClient) LastTokenUsage() (message.TokenUsage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsage, c.lastUsage.TotalTokens > 0
}

func (c *GeminiClient) SetToolManager(toolManager domain.ToolManager) {
	c.toolManager = toolManager
}

func (c *GeminiClient) Chat(ctx context.Context, messages []message.Message) (message.Message, error) {
	return c.ChatWithToolChoice(ctx, messages, domain.NewToolChoiceAuto())
}

func (c *GeminiClient) ChatWithToolChoice(ctx context.Context, messages []message.Message, toolChoice domain.ToolChoice) (message.Message, error) {
	contents, systemInstruction := toGeminiContents(messages)

	config := &genai.GenerateContentConfig{
		MaxOutputTokens:   int32(c.maxTokens),
		Temperature:       genai.Ptr(c.temperature),
		SystemInstruction: systemInstruction,
	}
	if c.toolManager != nil {
		if tools := convertToolsToGemini(c.toolManager.GetTools()); len(tools) > 0 {
			config.Tools = tools
			config.ToolConfig = convertToolChoiceToGemini(toolChoice)
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, errors.Wrap(err, "gemini request failed")
	}

	var usage message.TokenUsage
	if resp.UsageMetadata != nil {
		usage = message.TokenUsage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
		geminiLogger.Debug("Gemini usage", "model", c.model, "input", usage.InputTokens, "output", usage.OutputTokens)
	}
	c.mu.Lock()
	c.lastUsage = usage
	c.mu.Unlock()

	if len(resp.Candidates) == 0 {
		return nil, errors.New("no response from Gemini")
	}

	msg := fromGeminiResponse(resp)
	msg.SetTokenUsage(usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	return msg, nil
}

// fromGeminiResponse prefers function calls over text, as the other clients do.
func fromGeminiResponse(resp *genai.GenerateContentResponse) message.Message {
	var calls []*message.ToolCallMessage
	if content := resp.Candidates[0].Content; content != nil {
		for _, part := range content.Parts {
			if fc := part.FunctionCall; fc != nil {
				calls = append(calls, message.NewToolCallMessageWithID(fc.ID, message.ToolName(fc.Name), message.ToolArgumentValues(fc.Args)))
			}
		}
	}
	switch len(calls) {
	case 0:
		return message.NewAssistantMessage(resp.Text())
	case 1:
		return calls[0]
	default:
		return message.NewToolCallBatch(calls)
	}
}
