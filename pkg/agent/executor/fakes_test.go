package executor

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/pkg/agent/domain"
	"github.com/fpt/notice-cli/pkg/message"
)

const searchTool message.ToolName = "tavily_search_results_json"

type reply struct {
	msg message.Message
	err error
}

// scriptedLLM returns replies in order and records every request.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []reply
	calls   [][]message.Message
	choices []domain.ToolChoice
}

func newScriptedLLM(replies ...reply) *scriptedLLM {
	return &scriptedLLM{replies: replies}
}

func (s *scriptedLLM) Chat(ctx context.Context, msgs []message.Message) (message.Message, error) {
	return s.ChatWithToolChoice(ctx, msgs, domain.NewToolChoiceAuto())
}

func (s *scriptedLLM) ChatWithToolChoice(ctx context.Context, msgs []message.Message, choice domain.ToolChoice) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, msgs)
	s.choices = append(s.choices, choice)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.replies) == 0 {
		return nil, errors.New("no scripted reply left")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.msg, r.err
}

func (s *scriptedLLM) ModelID() string { return "scripted" }

func (s *scriptedLLM) SetToolManager(domain.ToolManager) {}

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// conversationLLM searches first and answers once a tool result is present.
// It is stateless, so it can serve concurrent runs.
type conversationLLM struct{}

func (conversationLLM) Chat(ctx context.Context, msgs []message.Message) (message.Message, error) {
	return conversationLLM{}.ChatWithToolChoice(ctx, msgs, domain.NewToolChoiceAuto())
}

func (conversationLLM) ChatWithToolChoice(_ context.Context, msgs []message.Message, _ domain.ToolChoice) (message.Message, error) {
	last := msgs[len(msgs)-1]
	if last.Type() == message.MessageTypeToolResult {
		return message.NewAssistantMessage("NOTICE: refund under Section 2(11)."), nil
	}
	return message.NewToolCallMessage(searchTool, message.ToolArgumentValues{"query": "refund law"}), nil
}

func (conversationLLM) ModelID() string                   { return "conversation" }
func (conversationLLM) SetToolManager(domain.ToolManager) {}

// fakeTools is a tool manager with a single search tool.
type fakeTools struct {
	mu      sync.Mutex
	result  message.ToolResult
	err     error
	queries []string
}

type fakeTool struct{ name message.ToolName }

func (t fakeTool) Name() message.ToolName               { return t.name }
func (t fakeTool) Description() message.ToolDescription { return "search" }
func (t fakeTool) Arguments() []message.ToolArgument {
	return []message.ToolArgument{{Name: "query", Required: true, Type: "string"}}
}
func (t fakeTool) Handler() func(context.Context, message.ToolArgumentValues) (message.ToolResult, error) {
	return nil
}

func (f *fakeTools) RegisterTool(message.ToolName, message.ToolDescription, []message.ToolArgument, func(context.Context, message.ToolArgumentValues) (message.ToolResult, error)) {
}

func (f *fakeTools) GetTools() map[message.ToolName]message.Tool {
	return map[message.ToolName]message.Tool{searchTool: fakeTool{name: searchTool}}
}

func (f *fakeTools) CallTool(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, args.String("query"))
	return f.result, f.err
}

func (f *fakeTools) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func okRecord() message.ToolResult {
	return message.NewToolResultText(`{"query":"refund law","answer":"Section 2(11) of the Consumer Protection Act, 2019","results":[{"title":"CPA","url":"https://example.org","content":"deficiency in service"}]}`)
}

func toolCall(query string) reply {
	return reply{msg: message.NewToolCallMessage(searchTool, message.ToolArgumentValues{"query": query})}
}

func answer(text string) reply {
	return reply{msg: message.NewAssistantMessage(text)}
}

func newTestExecutor(t interface{ Fatalf(string, ...any) }, llm domain.ToolCallingLLM, tools domain.ToolManager, policy Policy) *Executor {
	e, err := New(Config{Model: llm, Tools: tools, Template: DefaultTemplate(), Policy: policy})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}
