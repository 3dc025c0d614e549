package ollama

import (
	"github.com/ollama/ollama/api"

	"github.com/fpt/notice-cli/pkg/message"
)

// toDomainMessageFromOllama converts the accumulated Ollama reply. Tool calls
// win over content.
func toDomainMessageFromOllama(msg api.Message) message.Message {
	switch len(msg.ToolCalls) {
	case 0:
		return message.NewAssistantMessage(msg.Content)
	case 1:
		tc := msg.ToolCalls[0]
		return message.NewToolCallMessage(message.ToolName(tc.Function.Name), toolArguments(tc.Function.Arguments))
	default:
		calls := make([]*message.ToolCallMessage, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			calls = append(calls, message.NewToolCallMessage(message.ToolName(tc.Function.Name), toolArguments(tc.Function.Arguments)))
		}
		return message.NewToolCallBatch(calls)
	}
}

func toolArguments(args api.ToolCallFunctionArguments) message.ToolArgumentValues {
	return message.ToolArgumentValues(args.ToMap())
}

func toOllamaArguments(values message.ToolArgumentValues) api.ToolCallFunctionArguments {
	args := api.NewToolCallFunctionArguments()
	for k, v := range values {
		args.Set(k, v)
	}
	return args
}

func toOllamaMessages(messages []message.Message) []api.Message {
	var out []api.Message
	for _, msg := range messages {
		switch msg.Type() {
		case message.MessageTypeUser, message.MessageTypeAssistant, message.MessageTypeSystem:
			out = append(out, api.Message{Role: msg.Type().String(), Content: msg.Content()})
		case message.MessageTypeToolCall:
			if call, ok := msg.(*message.ToolCallMessage); ok {
				out = append(out, api.Message{
					Role: "assistant",
					ToolCalls: []api.ToolCall{{
						Function: api.ToolCallFunction{
							Name:      string(call.ToolName()),
							Arguments: toOllamaArguments(call.ToolArguments()),
						},
					}},
				})
			}
		case message.MessageTypeToolResult:
			out = append(out, api.Message{Role: "tool", Content: msg.Content()})
		}
	}
	return out
}

func convertToOllamaTools(tools map[message.ToolName]message.Tool) api.Tools {
	var ollamaTools api.Tools
	for _, tool := range tools {
		properties := api.NewToolPropertiesMap()
		var required []string
		for _, arg := range tool.Arguments() {
			properties.Set(string(arg.Name), api.ToolProperty{
				Type:        api.PropertyType{arg.Type},
				Description: string(arg.Description),
			})
			if arg.Required {
				required = append(required, string(arg.Name))
			}
		}

		ollamaTools = append(ollamaTools, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        string(tool.Name()),
				Description: tool.Description().String(),
				Parameters: api.ToolFunctionParameters{
					Type:       "object",
					Properties: properties,
					Required:   required,
				},
			},
		})
	}
	return ollamaTools
}
