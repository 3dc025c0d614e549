package message

import (
	"fmt"
	"time"
)

// ToolCallBatchMessage represents multiple tool calls in a single assistant turn
type ToolCallBatchMessage struct {
	ChatMessage
	calls []*ToolCallMessage
}

// NewToolCallBatch creates a batch message from individual tool calls
func NewToolCallBatch(calls []*ToolCallMessage) *ToolCallBatchMessage {
	return &ToolCallBatchMessage{ChatMessage: ChatMessage{
		id:        generateMessageID(),
		typ:       MessageTypeToolCallBatch,
		content:   fmt.Sprintf("batch: %d tool calls", len(calls)),
		timestamp: time.Now(),
	}, calls: calls}
}

func (b *ToolCallBatchMessage) Calls() []*ToolCallMessage { return b.calls }

func (b *ToolCallBatchMessage) TruncatedString() string {
	return fmt.Sprintf("🔧 Requested %d tools (batch)", len(b.calls))
}
