package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

// convertToolChoiceToAnthropic converts domain ToolChoice to Anthropic format
func convertToolChoiceToAnthropic(toolChoice domain.ToolChoice) anthropic.ToolChoiceUnionParam {
	switch toolChoice.Type {
	case domain.ToolChoiceAny:
		return anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
	case domain.ToolChoiceTool:
		return anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: string(toolChoice.Name)},
		}
	case domain.ToolChoiceNone:
		return anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	default:
		return anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
}

func convertToolsToAnthropic(tools map[message.ToolName]message.Tool) []anthropic.ToolUnionParam {
	var anthropicTools []anthropic.ToolUnionParam

	for _, tool := range tools {
		properties := make(map[string]any)
		var required []string
		for _, arg := range tool.Arguments() {
			properties[string(arg.Name)] = map[string]any{
				"type":        arg.Type,
				"description": arg.Description.String(),
			}
			if arg.Required {
				required = append(required, string(arg.Name))
			}
		}

		anthropicTools = append(anthropicTools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        string(tool.Name()),
				Description: anthropic.String(tool.Description().String()),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   required,
				},
			},
		})
	}

	return anthropicTools
}

// toAnthropicMessages splits neutral messages into the system prompt and the
// alternating conversation Claude expects.
func toAnthropicMessages(messages []message.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var out []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Type() {
		case message.MessageTypeSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content()})
		case message.MessageTypeUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content())))
		case message.MessageTypeAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content())))
		case message.MessageTypeToolCall:
			if call, ok := msg.(*message.ToolCallMessage); ok {
				out = append(out, anthropic.NewAssistantMessage(
					anthropic.NewToolUseBlock(call.ID(), call.ToolArguments(), string(call.ToolName())),
				))
			}
		case message.MessageTypeToolResult:
			if result, ok := msg.(*message.ToolResultMessage); ok {
				block := anthropic.ToolResultBlockParam{
					ToolUseID: result.CallID(),
					Content: []anthropic.ToolResultBlockParamContentUnion{
						{OfText: &anthropic.TextBlockParam{Text: result.Content()}},
					},
				}
				if result.Error != "" {
					block.IsError = anthropic.Bool(true)
				}
				out = append(out, anthropic.NewUserMessage(anthropic.ContentBlockParamUnion{OfToolResult: &block}))
			}
		}
	}

	return system, out
}

// fromAnthropicContent converts response blocks to a neutral message. Tool use
// blocks take precedence over text.
func fromAnthropicContent(blocks []anthropic.ContentBlockUnion) (message.Message, error) {
	var text strings.Builder
	var calls []*message.ToolCallMessage

	for _, block := range blocks {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(variant.Text)
		case anthropic.ToolUseBlock:
			args := make(map[string]any)
			if len(variant.Input) > 0 {
				if err := json.Unmarshal(variant.Input, &args); err != nil {
					return nil, &domain.MalformedGenerationError{Raw: string(variant.Input), Err: errors.Wrap(err, "failed to parse tool arguments")}
				}
			}
			calls = append(calls, message.NewToolCallMessageWithID(variant.ID, message.ToolName(variant.Name), args))
		}
	}

	switch len(calls) {
	case 0:
		return message.NewAssistantMessage(text.String()), nil
	case 1:
		return calls[0], nil
	default:
		return message.NewToolCallBatch(calls), nil
	}
}
