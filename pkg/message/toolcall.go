package message

import (
	"fmt"
	"time"
)

// ToolCallMessage represents a tool call request emitted by the model
type ToolCallMessage struct {
	ChatMessage
	name      ToolName
	arguments ToolArgumentValues
}

// NewToolCallMessage creates a new tool call message
func NewToolCallMessage(toolName ToolName, toolArgs ToolArgumentValues) *ToolCallMessage {
	return NewToolCallMessageWithID(generateMessageID(), toolName, toolArgs)
}

// NewToolCallMessageWithID creates a tool call message that keeps the provider's call ID
func NewToolCallMessageWithID(id string, toolName ToolName, toolArgs ToolArgumentValues) *ToolCallMessage {
	if id == "" {
		id = generateMessageID()
	}
	return &ToolCallMessage{
		ChatMessage: ChatMessage{
			id:        id,
			typ:       MessageTypeToolCall,
			content:   fmt.Sprintf("Calling tool: %s with args: %v", toolName, toolArgs),
			timestamp: time.Now(),
		},
		name:      toolName,
		arguments: toolArgs,
	}
}

func (c *ToolCallMessage) ToolName() ToolName {
	return c.name
}

func (c *ToolCallMessage) ToolArguments() ToolArgumentValues {
	return c.arguments
}

func (c *ToolCallMessage) TruncatedString() string {
	return fmt.Sprintf("🔧 Used tool: %s", c.name)
}

// ToolResultMessage represents a tool execution result. Its ID is the ID of
// the call it answers.
type ToolResultMessage struct {
	ChatMessage
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

// NewToolResultMessage creates a new tool result message
func NewToolResultMessage(callID string, result string, err string) *ToolResultMessage {
	content := result
	if err != "" {
		content = fmt.Sprintf("Error: %s", err)
	}
	return &ToolResultMessage{
		ChatMessage: ChatMessage{
			id:        callID,
			typ:       MessageTypeToolResult,
			content:   content,
			timestamp: time.Now(),
		},
		Result: result,
		Error:  err,
	}
}

// CallID returns the ID of the tool call this result answers
func (t *ToolResultMessage) CallID() string {
	return t.id
}

func (t *ToolResultMessage) TruncatedString() string {
	content := t.Result
	if t.Error != "" {
		content = fmt.Sprintf("Error: %s", t.Error)
	}
	return fmt.Sprintf("   ↳ %s", Truncate(content, 100))
}
