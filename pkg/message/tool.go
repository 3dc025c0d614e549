package message

import (
	"context"
)

type ToolName string
type ToolDescription string
type ToolArgumentValues map[string]any

// ToolResult represents the result of a tool execution
type ToolResult struct {
	Text  string // Text content of the result
	Error string // Error message (if any)
}

// NewToolResultText creates a tool result with only text content
func NewToolResultText(text string) ToolResult {
	return ToolResult{Text: text}
}

// NewToolResultError creates a tool result with an error
func NewToolResultError(errorMsg string) ToolResult {
	return ToolResult{Error: errorMsg}
}

func (t ToolName) String() string {
	return string(t)
}

func (t ToolDescription) String() string {
	return string(t)
}

// String returns the named argument as a string, or "" when absent or not a string.
func (v ToolArgumentValues) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Tool represents a tool definition
type Tool interface {
	Name() ToolName
	Description() ToolDescription
	Arguments() []ToolArgument
	Handler() func(ctx context.Context, args ToolArgumentValues) (ToolResult, error)
}

type ToolArgument struct {
	Name        ToolName
	Description ToolDescription
	Required    bool
	Type        string
}
