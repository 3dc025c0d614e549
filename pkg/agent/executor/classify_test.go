package executor

import (
	"testing"

	"github.com/fpt/notice-cli/pkg/message"
)

func TestClassify(t *testing.T) {
	known := (&fakeTools{}).GetTools()

	tests := []struct {
		name      string
		resp      message.Message
		wantKind  string
		wantQuery string
	}{
		{name: "nil", resp: nil, wantKind: "unparsable"},
		{name: "structured call", resp: message.NewToolCallMessage(searchTool, message.ToolArgumentValues{"query": " deposit "}), wantKind: "tool", wantQuery: "deposit"},
		{name: "unknown tool", resp: message.NewToolCallMessage("browse", message.ToolArgumentValues{"query": "x"}), wantKind: "unparsable"},
		{name: "call without query", resp: message.NewToolCallMessage(searchTool, message.ToolArgumentValues{}), wantKind: "unparsable"},
		{name: "batch uses first valid call", resp: message.NewToolCallBatch([]*message.ToolCallMessage{
			message.NewToolCallMessage("browse", nil),
			message.NewToolCallMessage(searchTool, message.ToolArgumentValues{"query": "b"}),
			message.NewToolCallMessage(searchTool, message.ToolArgumentValues{"query": "c"}),
		}), wantKind: "tool", wantQuery: "b"},
		{name: "plain letter", resp: message.NewAssistantMessage("  To, The Manager\n...  "), wantKind: "final"},
		{name: "empty text", resp: message.NewAssistantMessage(" \n"), wantKind: "unparsable"},
		{name: "function tag", resp: message.NewAssistantMessage(`<function=tavily_search_results_json>{"query": "rent deposit law"}</function>`), wantKind: "tool", wantQuery: "rent deposit law"},
		{name: "function tag without closing bracket", resp: message.NewAssistantMessage(`<function=tavily_search_results_json{"query": "refund"}></function>`), wantKind: "tool", wantQuery: "refund"},
		{name: "malformed function tag", resp: message.NewAssistantMessage(`<function=tavily_search_results_json>{"query": </function>`), wantKind: "unparsable"},
		{name: "json call", resp: message.NewAssistantMessage(`{"name": "tavily_search_results_json", "parameters": {"query": "warranty"}}`), wantKind: "tool", wantQuery: "warranty"},
		{name: "bare json", resp: message.NewAssistantMessage(`{"letter": "x"}`), wantKind: "unparsable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.resp, known)
			switch v := d.(type) {
			case ToolCallRequest:
				if tt.wantKind != "tool" {
					t.Fatalf("got tool call %+v, want %s", v, tt.wantKind)
				}
				if v.Query != tt.wantQuery {
					t.Errorf("query = %q, want %q", v.Query, tt.wantQuery)
				}
			case FinalAnswer:
				if tt.wantKind != "final" {
					t.Fatalf("got final answer %q, want %s", v.Text, tt.wantKind)
				}
			case Unparsable:
				if tt.wantKind != "unparsable" {
					t.Fatalf("got unparsable (%s), want %s", v.Reason, tt.wantKind)
				}
			default:
				t.Fatalf("unexpected decision %T", d)
			}
		})
	}
}

func TestClassifyTrimsFinalAnswer(t *testing.T) {
	d := Classify(message.NewAssistantMessage("\n LETTER \n"), nil)
	if fa, ok := d.(FinalAnswer); !ok || fa.Text != "LETTER" {
		t.Errorf("unexpected decision %+v", d)
	}
}
