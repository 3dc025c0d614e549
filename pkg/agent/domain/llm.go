package domain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/message"
)

var ErrInvalidClientType = errors.New("invalid client type for tool calling")

// LLM represents the base language model interface for basic chat functionality
type LLM interface {
	// Chat sends the conversation to the model and returns its reply
	Chat(ctx context.Context, messages []message.Message) (message.Message, error)
	// ModelID returns a stable identifier for the underlying model
	ModelID() string
}

// ToolCallingLLM extends LLM with tool calling capabilities
type ToolCallingLLM interface {
	LLM

	// SetToolManager sets the tool manager for this client
	SetToolManager(toolManager ToolManager)

	// ChatWithToolChoice sends a message to the LLM with tool choice control
	ChatWithToolChoice(ctx context.Context, messages []message.Message, toolChoice ToolChoice) (message.Message, error)
}

// TokenUsageProvider is implemented by clients that report usage of their last call
type TokenUsageProvider interface {
	LastTokenUsage() (message.TokenUsage, bool)
}
