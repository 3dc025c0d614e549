package message

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chat message with neutral format for multi-backend support
type ChatMessage struct {
	id         string
	typ        MessageType
	content    string
	timestamp  time.Time
	metadata   map[string]any
	tokenUsage TokenUsage
}

// NewChatMessage creates a new chat message with current timestamp
func NewChatMessage(msgType MessageType, content string) *ChatMessage {
	return &ChatMessage{
		id:        generateMessageID(),
		typ:       msgType,
		content:   content,
		timestamp: time.Now(),
	}
}

func NewSystemMessage(content string) *ChatMessage {
	return NewChatMessage(MessageTypeSystem, content)
}

func NewUserMessage(content string) *ChatMessage {
	return NewChatMessage(MessageTypeUser, content)
}

func NewAssistantMessage(content string) *ChatMessage {
	return NewChatMessage(MessageTypeAssistant, content)
}

func (c *ChatMessage) ID() string {
	return c.id
}

func (c *ChatMessage) Type() MessageType {
	return c.typ
}

func (c *ChatMessage) Content() string {
	return c.content
}

func (c *ChatMessage) Timestamp() time.Time {
	return c.timestamp
}

func (c *ChatMessage) String() string {
	tokensInfo := ""
	if c.tokenUsage.TotalTokens > 0 {
		tokensInfo = fmt.Sprintf(", Tokens: %d (in:%d out:%d)",
			c.tokenUsage.TotalTokens, c.tokenUsage.InputTokens, c.tokenUsage.OutputTokens)
	}
	return fmt.Sprintf("Message(ID: %s, Type: %s, Content: %q, Timestamp: %s%s)",
		c.id, c.typ, c.content, c.timestamp.Format(time.RFC3339), tokensInfo)
}

// Token usage methods
func (c *ChatMessage) InputTokens() int {
	return c.tokenUsage.InputTokens
}

func (c *ChatMessage) OutputTokens() int {
	return c.tokenUsage.OutputTokens
}

func (c *ChatMessage) TotalTokens() int {
	return c.tokenUsage.TotalTokens
}

func (c *ChatMessage) SetTokenUsage(inputTokens, outputTokens, totalTokens int) {
	c.tokenUsage = TokenUsage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  totalTokens,
	}
}

// Metadata returns the metadata map for the message
func (c *ChatMessage) Metadata() map[string]any {
	if c.metadata == nil {
		return make(map[string]any)
	}
	return c.metadata
}

// SetMetadata sets a key-value pair in the metadata map
func (c *ChatMessage) SetMetadata(key string, value any) {
	if c.metadata == nil {
		c.metadata = make(map[string]any)
	}
	c.metadata[key] = value
}

// TruncatedString returns a truncated representation used in debug logs
func (c *ChatMessage) TruncatedString() string {
	switch c.typ {
	case MessageTypeUser:
		return fmt.Sprintf("👤 %s", Truncate(c.content, 150))
	case MessageTypeAssistant:
		return fmt.Sprintf("⚖️ %s", Truncate(c.content, 200))
	case MessageTypeSystem:
		return ""
	default:
		return fmt.Sprintf("[%s] %s", c.typ, Truncate(c.content, 100))
	}
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func generateMessageID() string {
	return "msg_" + uuid.NewString()
}
