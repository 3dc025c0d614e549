package message

import "time"

// TokenUsage holds token usage information for a message
type TokenUsage struct {
	InputTokens  int // Tokens consumed for input (prompt + transcript + scratchpad)
	OutputTokens int // Tokens generated in response
	TotalTokens  int // Total tokens (input + output)
}

type MessageType int

const (
	MessageTypeUser MessageType = iota
	MessageTypeAssistant
	MessageTypeSystem
	MessageTypeToolCall
	MessageTypeToolCallBatch
	MessageTypeToolResult
)

// String returns the string representation of MessageType
func (m MessageType) String() string {
	switch m {
	case MessageTypeUser:
		return "user"
	case MessageTypeAssistant:
		return "assistant"
	case MessageTypeSystem:
		return "system"
	case MessageTypeToolCall:
		return "tool_call"
	case MessageTypeToolCallBatch:
		return "tool_call_batch"
	case MessageTypeToolResult:
		return "tool_result"
	default:
		return "unknown"
	}
}

type Message interface {
	// ID returns the unique identifier of the message
	ID() string

	// Type returns the type of the message (e.g., user, assistant, tool call)
	Type() MessageType

	// Content returns the content of the message
	Content() string

	// Timestamp returns the time when the message was created
	Timestamp() time.Time

	// String returns the string representation of the message
	String() string

	// TruncatedString returns a short, user-friendly representation for log lines
	TruncatedString() string

	// Token usage information
	InputTokens() int
	OutputTokens() int
	TotalTokens() int

	// SetTokenUsage sets the token usage information for this message
	SetTokenUsage(inputTokens, outputTokens, totalTokens int)

	// Metadata returns the metadata map for the message
	Metadata() map[string]any
}
