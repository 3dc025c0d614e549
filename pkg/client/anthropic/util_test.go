package anthropic

import (
	"testing"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

func TestConvertToolChoiceToAnthropic(t *testing.T) {
	if got := convertToolChoiceToAnthropic(domain.NewToolChoiceNone()); got.OfNone == nil {
		t.Error("expected none tool choice")
	}
	if got := convertToolChoiceToAnthropic(domain.NewToolChoiceTool("tavily_search_results_json")); got.OfTool == nil || got.OfTool.Name != "tavily_search_results_json" {
		t.Errorf("expected named tool choice, got %+v", got)
	}
	if got := convertToolChoiceToAnthropic(domain.ToolChoice{}); got.OfAuto == nil {
		t.Error("expected auto as default tool choice")
	}
}

func TestToAnthropicMessagesSeparatesSystem(t *testing.T) {
	call := message.NewToolCallMessageWithID("toolu_1", "tavily_search_results_json", message.ToolArgumentValues{"query": "deposit"})
	msgs := []message.Message{
		message.NewSystemMessage("You are a Consumer Rights Lawyer."),
		message.NewUserMessage("My landlord kept my deposit"),
		call,
		message.NewToolResultMessage(call.ID(), `{"answer":"refund"}`, ""),
	}

	system, conv := toAnthropicMessages(msgs)
	if len(system) != 1 || system[0].Text != "You are a Consumer Rights Lawyer." {
		t.Fatalf("unexpected system blocks %+v", system)
	}
	if len(conv) != 3 {
		t.Fatalf("expected 3 conversation messages, got %d", len(conv))
	}
	result := conv[2].Content[0].OfToolResult
	if result == nil || result.ToolUseID != "toolu_1" {
		t.Errorf("tool result should reference the tool use ID, got %+v", conv[2].Content[0])
	}
}

func TestNewAnthropicClientRequiresKey(t *testing.T) {
	if _, err := NewAnthropicClient("", "", 0, 0); err == nil {
		t.Fatal("expected error without API key")
	}
	c, err := NewAnthropicClient("sk-test", "", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ModelID() != defaultModel {
		t.Errorf("expected default model, got %s", c.ModelID())
	}
	if _, ok := c.LastTokenUsage(); ok {
		t.Error("expected no usage before the first call")
	}
}
