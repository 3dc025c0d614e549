package gemini

import (
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

func convertToolsToGemini(tools map[message.ToolName]message.Tool) []*genai.Tool {
	var decls []*genai.FunctionDeclaration
	for _, tool := range tools {
		properties := make(map[string]*genai.Schema)
		var required []string
		for _, arg := range tool.Arguments() {
			properties[string(arg.Name)] = &genai.Schema{
				Type:        geminiType(arg.Type),
				Description: arg.Description.String(),
			}
			if arg.Required {
				required = append(required, string(arg.Name))
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        string(tool.Name()),
			Description: tool.Description().String(),
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   required,
			},
		})
	}
	if len(decls) == 0 {
		return nil
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func geminiType(t string) genai.Type {
	switch strings.ToLower(t) {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// convertToolChoiceToGemini converts domain ToolChoice to a native FunctionCallingConfig
func convertToolChoiceToGemini(toolChoice domain.ToolChoice) *genai.ToolConfig {
	cfg := &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto}
	switch toolChoice.Type {
	case domain.ToolChoiceNone:
		cfg.Mode = genai.FunctionCallingConfigModeNone
	case domain.ToolChoiceAny:
		cfg.Mode = genai.FunctionCallingConfigModeAny
	case domain.ToolChoiceTool:
		cfg.Mode = genai.FunctionCallingConfigModeAny
		cfg.AllowedFunctionNames = []string{string(toolChoice.Name)}
	}
	return &genai.ToolConfig{FunctionCallingConfig: cfg}
}

// toGeminiContents converts messages to Gemini contents. Tool calls and
// results are replayed as text so call IDs need not round-trip.
func toGeminiContents(messages []message.Message) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var system []string

	for _, msg := range messages {
		switch msg.Type() {
		case message.MessageTypeSystem:
			system = append(system, msg.Content())
		case message.MessageTypeUser:
			contents = append(contents, genai.NewContentFromText(msg.Content(), genai.RoleUser))
		case message.MessageTypeAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content(), genai.RoleModel))
		case message.MessageTypeToolCall:
			if call, ok := msg.(*message.ToolCallMessage); ok {
				args, _ := json.Marshal(call.ToolArguments())
				text := "[Function call: " + string(call.ToolName()) + "(" + string(args) + ")]"
				contents = append(contents, genai.NewContentFromText(text, genai.RoleModel))
			}
		case message.MessageTypeToolResult:
			contents = append(contents, genai.NewContentFromText("[Function result: "+msg.Content()+"]", genai.RoleUser))
		}
	}

	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
}
