package ollama

import (
	"context"
	"testing"

	"github.com/fpt/notice-cli/pkg/message"
)

type queryTool struct{}

func (queryTool) Name() message.ToolName               { return "tavily_search_results_json" }
func (queryTool) Description() message.ToolDescription { return "search" }
func (queryTool) Arguments() []message.ToolArgument {
	return []message.ToolArgument{{Name: "query", Description: "search query", Type: "string", Required: true}}
}
func (queryTool) Handler() func(context.Context, message.ToolArgumentValues) (message.ToolResult, error) {
	return nil
}

func TestToolCallArgumentsSurviveConversion(t *testing.T) {
	call := message.NewToolCallMessage("tavily_search_results_json", message.ToolArgumentValues{"query": "deposit refund"})
	msgs := toOllamaMessages([]message.Message{call})
	if len(msgs) != 1 || len(msgs[0].ToolCalls) != 1 {
		t.Fatalf("messages = %+v", msgs)
	}

	back := toDomainMessageFromOllama(msgs[0])
	tc, ok := back.(*message.ToolCallMessage)
	if !ok {
		t.Fatalf("got %T, want *message.ToolCallMessage", back)
	}
	if tc.ToolArguments().String("query") != "deposit refund" {
		t.Errorf("arguments = %v", tc.ToolArguments())
	}
}

func TestConvertToOllamaToolsListsProperties(t *testing.T) {
	tools := convertToOllamaTools(map[message.ToolName]message.Tool{"tavily_search_results_json": queryTool{}})
	if len(tools) != 1 {
		t.Fatalf("tools = %d, want 1", len(tools))
	}
	params := tools[0].Function.Parameters
	if _, ok := params.Properties.Get("query"); !ok {
		t.Error("query property missing")
	}
	if len(params.Required) != 1 || params.Required[0] != "query" {
		t.Errorf("required = %v", params.Required)
	}
}
