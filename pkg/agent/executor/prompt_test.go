package executor

import (
	"strings"
	"testing"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

func TestTemplateRenderOrder(t *testing.T) {
	tpl := DefaultTemplate()
	transcript := []domain.TranscriptEntry{
		{Role: domain.UserTurn, Text: "u1"},
		{Role: domain.AgentTurn, Text: "a1"},
	}
	scratch := []message.Message{message.NewUserMessage("s1")}

	msgs := tpl.Render(transcript, "input", scratch)
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(msgs))
	}
	wantTypes := []message.MessageType{
		message.MessageTypeSystem,
		message.MessageTypeUser,
		message.MessageTypeAssistant,
		message.MessageTypeUser,
		message.MessageTypeUser,
	}
	wantContent := []string{DefaultSystemPrompt, "u1", "a1", "input", "s1"}
	for i, m := range msgs {
		if m.Type() != wantTypes[i] || m.Content() != wantContent[i] {
			t.Errorf("msg %d = %s %q", i, m.Type(), m.Content())
		}
	}
}

func TestDefaultSystemPromptPolicy(t *testing.T) {
	for _, phrase := range []string{
		"Consumer Rights Lawyer",
		"Search for the law ONCE",
		"NEVER search twice",
		`"General Consumer Rights"`,
		"Material Breach",
		"Time is of the Essence",
	} {
		if !strings.Contains(DefaultSystemPrompt, phrase) {
			t.Errorf("system prompt missing %q", phrase)
		}
	}
}
