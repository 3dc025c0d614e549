package openai

import (
	"encoding/json"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

var validSchemaTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"array":   true,
	"object":  true,
}

func convertArgumentToProperty(arg message.ToolArgument) map[string]any {
	argType := strings.TrimSpace(arg.Type)
	if !validSchemaTypes[argType] {
		argType = "string"
	}
	return map[string]any{
		"type":        argType,
		"description": arg.Description.String(),
	}
}

func convertTools(tools map[message.ToolName]message.Tool) []openai.ChatCompletionToolUnionParam {
	var out []openai.ChatCompletionToolUnionParam
	for _, tool := range tools {
		properties := make(map[string]any)
		required := []string{}
		for _, arg := range tool.Arguments() {
			properties[string(arg.Name)] = convertArgumentToProperty(arg)
			if arg.Required {
				required = append(required, string(arg.Name))
			}
		}

		out = append(out, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        string(tool.Name()),
			Description: openai.String(tool.Description().String()),
			Parameters: shared.FunctionParameters{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		}))
	}
	return out
}

// convertToolChoice maps the domain choice to the string form every
// OpenAI-compatible provider accepts. A named tool becomes "required"
// since the agent only ever exposes one tool.
func convertToolChoice(toolChoice domain.ToolChoice) openai.ChatCompletionToolChoiceOptionUnionParam {
	value := "auto"
	switch toolChoice.Type {
	case domain.ToolChoiceNone:
		value = "none"
	case domain.ToolChoiceAny, domain.ToolChoiceTool:
		value = "required"
	}
	return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String(value)}
}

func toChatMessages(messages []message.Message) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	for _, msg := range messages {
		switch msg.Type() {
		case message.MessageTypeSystem:
			out = append(out, openai.SystemMessage(msg.Content()))
		case message.MessageTypeUser:
			out = append(out, openai.UserMessage(msg.Content()))
		case message.MessageTypeAssistant:
			out = append(out, openai.AssistantMessage(msg.Content()))
		case message.MessageTypeToolCall:
			if call, ok := msg.(*message.ToolCallMessage); ok {
				out = append(out, assistantToolCall(call))
			}
		case message.MessageTypeToolResult:
			if result, ok := msg.(*message.ToolResultMessage); ok {
				out = append(out, openai.ToolMessage(result.Content(), result.CallID()))
			}
		}
	}
	return out
}

func assistantToolCall(call *message.ToolCallMessage) openai.ChatCompletionMessageParamUnion {
	args, err := json.Marshal(call.ToolArguments())
	if err != nil {
		args = []byte("{}")
	}
	return openai.ChatCompletionMessageParamUnion{
		OfAssistant: &openai.ChatCompletionAssistantMessageParam{
			ToolCalls: []openai.ChatCompletionMessageToolCallUnionParam{{
				OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
					ID: call.ID(),
					Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      string(call.ToolName()),
						Arguments: string(args),
					},
				},
			}},
		},
	}
}

// fromChatCompletionMessage converts the first choice to a neutral message.
// Tool calls take precedence over content.
func fromChatCompletionMessage(m openai.ChatCompletionMessage) (message.Message, error) {
	if len(m.ToolCalls) == 0 {
		return message.NewAssistantMessage(m.Content), nil
	}

	calls := make([]*message.ToolCallMessage, 0, len(m.ToolCalls))
	for _, tc := range m.ToolCalls {
		args := make(map[string]any)
		if raw := strings.TrimSpace(tc.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, &domain.MalformedGenerationError{Raw: raw, Err: errors.Wrap(err, "failed to parse tool arguments")}
			}
		}
		calls = append(calls, message.NewToolCallMessageWithID(tc.ID, message.ToolName(tc.Function.Name), args))
	}
	if len(calls) == 1 {
		return calls[0], nil
	}
	return message.NewToolCallBatch(calls), nil
}
